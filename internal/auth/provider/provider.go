package provider

import (
	"context"

	"mailchimp-auth/internal/auth"
)

// OAuthProvider defines the contract every external auth provider
// must implement. Implementations return identity facts only and
// must not perform user creation, linking, or session management.
type OAuthProvider interface {
	// Name returns the provider identifier (e.g. "mailchimp", "google").
	Name() string

	// Configured reports whether client credentials are present. A login
	// must never redirect to a provider with incomplete credentials.
	Configured() bool

	// AuthCodeURL returns the OAuth authorization URL.
	// State and PKCE parameters are provided by the caller; providers
	// that do not support PKCE ignore the challenge.
	AuthCodeURL(state string, codeChallenge string) string

	// ExchangeCode exchanges the authorization code for provider credentials
	// and returns a normalized identity. No auth decisions are made here.
	ExchangeCode(
		ctx context.Context,
		code string,
		codeVerifier string,
	) (*auth.Identity, error)
}
