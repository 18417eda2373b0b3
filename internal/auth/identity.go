package auth

// Identity represents a normalized external authentication identity
// returned by an OAuth provider. It contains facts only, no decisions.
type Identity struct {
	Provider    string            // e.g. "mailchimp", "google"
	ExternalID  string            // provider-scoped unique user identifier
	DisplayName string            // human-readable name, may be empty
	Email       string            // email asserted by provider, may be empty
	AvatarURL   string            // profile picture URL, may be empty
	RawClaims   map[string]string // flat view of the extracted claims
}
