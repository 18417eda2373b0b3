package mailchimp

import (
	"encoding/json"

	"mailchimp-auth/internal/auth"
)

// MailChimp nests identity fields under a "login" object in the
// userinfo (metadata) response.
type userInfo struct {
	Login struct {
		LoginID    string `json:"login_id"`
		LoginName  string `json:"login_name"`
		LoginEmail string `json:"login_email"`
		Avatar     string `json:"avatar"`
	} `json:"login"`
}

// MapClaims parses the raw userinfo JSON into a normalized identity.
// Pure and deterministic: same input, same output. Empty string fields
// count as absent. A missing login_id fails with ErrIdentityIncomplete:
// it is the only correlation key for repeat logins, so the flow must
// not continue without it.
func MapClaims(raw []byte) (*auth.Identity, error) {
	var info userInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, &auth.MalformedResponse{Err: err}
	}

	login := info.Login
	if login.LoginID == "" {
		return nil, auth.ErrIdentityIncomplete
	}

	claims := map[string]string{
		"login_id": login.LoginID,
	}
	if login.LoginName != "" {
		claims["login_name"] = login.LoginName
	}
	if login.LoginEmail != "" {
		claims["login_email"] = login.LoginEmail
	}
	if login.Avatar != "" {
		claims["avatar"] = login.Avatar
	}

	return &auth.Identity{
		Provider:    providerName,
		ExternalID:  login.LoginID,
		DisplayName: login.LoginName,
		Email:       login.LoginEmail,
		AvatarURL:   login.Avatar,
		RawClaims:   claims,
	}, nil
}
