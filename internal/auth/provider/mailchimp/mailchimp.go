package mailchimp

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"mailchimp-auth/internal/auth"
	"mailchimp-auth/internal/logger"

	"golang.org/x/oauth2"
)

const providerName = "mailchimp"

// Fixed MailChimp OAuth2 endpoints. These must match what the app
// registration at MailChimp points at; the callback path in particular
// is registered with the provider out-of-band.
const (
	AuthorizationEndpoint = "https://login.mailchimp.com/oauth2/authorize"
	TokenEndpoint         = "https://login.mailchimp.com/oauth2/token"
	UserInfoEndpoint      = "https://login.mailchimp.com/oauth2/metadata"

	CallbackPath = "/signin-mailchimp"
	ClaimsIssuer = "MailChimp"
)

// maximum size of a userinfo body we are willing to buffer
const maxUserInfoBytes = 1 << 20

// Provider implements plain OAuth2 (no OIDC, no id_token) against
// MailChimp. Identity facts come from a separate userinfo fetch.
type Provider struct {
	clientID     string
	clientSecret string

	oauthConfig      *oauth2.Config
	userInfoEndpoint string
	http             *http.Client
}

// New builds the MailChimp provider. Empty credentials are allowed so the
// provider can be registered before it is configured; Configured() gates
// any actual login attempt.
func New(clientID, clientSecret, redirectURL string) *Provider {
	return &Provider{
		clientID:     clientID,
		clientSecret: clientSecret,
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:  AuthorizationEndpoint,
				TokenURL: TokenEndpoint,
			},
		},
		userInfoEndpoint: UserInfoEndpoint,
		http:             &http.Client{Timeout: 10 * time.Second},
	}
}

// Name returns the provider identifier used by the registry.
func (p *Provider) Name() string {
	return providerName
}

// Configured reports whether both client credentials are present.
func (p *Provider) Configured() bool {
	return p.clientID != "" && p.clientSecret != ""
}

// AuthCodeURL builds the OAuth authorization URL. MailChimp's token
// endpoint does not accept PKCE parameters, so the challenge is ignored.
func (p *Provider) AuthCodeURL(state string, _ string) string {
	return p.oauthConfig.AuthCodeURL(state)
}

// ExchangeCode exchanges the authorization code for an access token,
// fetches the userinfo document and returns the normalized identity.
// The code is single-use at the provider, so nothing here retries.
func (p *Provider) ExchangeCode(
	ctx context.Context,
	code string,
	_ string,
) (*auth.Identity, error) {

	if !p.Configured() {
		return nil, auth.ErrNotConfigured
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.http)

	token, err := p.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, classifyExchangeError(err)
	}

	raw, err := p.fetchUserInfo(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	identity, err := MapClaims(raw)
	if err != nil {
		return nil, err
	}

	logger.Info("mailchimp userinfo mapped", map[string]any{
		"external_id_present": identity.ExternalID != "",
		"email_present":       identity.Email != "",
		"avatar_present":      identity.AvatarURL != "",
	})

	return identity, nil
}

// fetchUserInfo retrieves the raw userinfo JSON using the access token.
// Outbound network call only; no local state mutation.
func (p *Provider) fetchUserInfo(ctx context.Context, accessToken string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoEndpoint, nil)
	if err != nil {
		return nil, &auth.NetworkError{Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, &auth.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUserInfoBytes))
	if err != nil {
		return nil, &auth.NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &auth.ProviderRejected{
			Status: resp.StatusCode,
			Body:   string(body),
		}
	}

	return body, nil
}

// classifyExchangeError maps oauth2 exchange failures onto the login
// failure taxonomy: non-2xx → ProviderRejected, transport → NetworkError,
// anything else (undecodable token body) → MalformedResponse.
func classifyExchangeError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		status := 0
		if retrieveErr.Response != nil {
			status = retrieveErr.Response.StatusCode
		}
		return &auth.ProviderRejected{
			Status: status,
			Body:   string(retrieveErr.Body),
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &auth.NetworkError{Err: err}
	}

	return &auth.MalformedResponse{Err: err}
}
