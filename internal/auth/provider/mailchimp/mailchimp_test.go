package mailchimp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"mailchimp-auth/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testProvider points a configured provider at fake token and userinfo
// endpoints.
func testProvider(tokenURL, userInfoURL string) *Provider {
	p := New("client-id", "client-secret", "https://app.example/signin-mailchimp")
	p.oauthConfig.Endpoint.AuthURL = tokenURL + "/authorize"
	p.oauthConfig.Endpoint.TokenURL = tokenURL
	p.userInfoEndpoint = userInfoURL
	return p
}

func tokenServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestExchangeCodeSuccess(t *testing.T) {
	token := tokenServer(t, http.StatusOK,
		`{"access_token":"tok-123","token_type":"bearer"}`)

	userInfo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"login":{"login_id":"u1","login_name":"Ann","login_email":"a@x.com","avatar":"http://x/a.png"}}`))
	}))
	t.Cleanup(userInfo.Close)

	p := testProvider(token.URL, userInfo.URL)

	identity, err := p.ExchangeCode(context.Background(), "code-1", "")
	require.NoError(t, err)

	assert.Equal(t, "u1", identity.ExternalID)
	assert.Equal(t, "Ann", identity.DisplayName)
	assert.Equal(t, "a@x.com", identity.Email)
	assert.Equal(t, "http://x/a.png", identity.AvatarURL)
}

func TestExchangeCodeProviderRejected(t *testing.T) {
	token := tokenServer(t, http.StatusBadRequest,
		`{"error":"invalid_grant"}`)

	var userInfoCalls atomic.Int32
	userInfo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userInfoCalls.Add(1)
	}))
	t.Cleanup(userInfo.Close)

	p := testProvider(token.URL, userInfo.URL)

	identity, err := p.ExchangeCode(context.Background(), "used-code", "")
	assert.Nil(t, identity)

	var rejected *auth.ProviderRejected
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, http.StatusBadRequest, rejected.Status)
	assert.Contains(t, rejected.Body, "invalid_grant")

	// the flow must short-circuit before the userinfo fetch
	assert.Equal(t, int32(0), userInfoCalls.Load())
}

func TestExchangeCodeNetworkError(t *testing.T) {
	// a server that is already closed yields a connection failure
	token := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	tokenURL := token.URL
	token.Close()

	p := testProvider(tokenURL, "http://unused.invalid")

	identity, err := p.ExchangeCode(context.Background(), "code-1", "")
	assert.Nil(t, identity)

	var netErr *auth.NetworkError
	assert.True(t, errors.As(err, &netErr))
}

func TestExchangeCodeUserInfoRejected(t *testing.T) {
	token := tokenServer(t, http.StatusOK,
		`{"access_token":"tok-123","token_type":"bearer"}`)

	userInfo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"expired token"}`))
	}))
	t.Cleanup(userInfo.Close)

	p := testProvider(token.URL, userInfo.URL)

	identity, err := p.ExchangeCode(context.Background(), "code-1", "")
	assert.Nil(t, identity)

	var rejected *auth.ProviderRejected
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, http.StatusUnauthorized, rejected.Status)
	assert.Contains(t, rejected.Body, "expired token")
}

func TestExchangeCodeUserInfoMalformed(t *testing.T) {
	token := tokenServer(t, http.StatusOK,
		`{"access_token":"tok-123","token_type":"bearer"}`)

	userInfo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	t.Cleanup(userInfo.Close)

	p := testProvider(token.URL, userInfo.URL)

	identity, err := p.ExchangeCode(context.Background(), "code-1", "")
	assert.Nil(t, identity)

	var malformed *auth.MalformedResponse
	assert.True(t, errors.As(err, &malformed))
}

func TestExchangeCodeNotConfigured(t *testing.T) {
	p := New("", "", "https://app.example/signin-mailchimp")

	identity, err := p.ExchangeCode(context.Background(), "code-1", "")
	assert.Nil(t, identity)
	assert.ErrorIs(t, err, auth.ErrNotConfigured)
}

func TestConfigured(t *testing.T) {
	assert.True(t, New("id", "secret", "url").Configured())
	assert.False(t, New("id", "", "url").Configured())
	assert.False(t, New("", "secret", "url").Configured())
}

func TestAuthCodeURLCarriesState(t *testing.T) {
	p := New("client-id", "client-secret", "https://app.example/signin-mailchimp")

	u := p.AuthCodeURL("state-xyz", "ignored-challenge")
	assert.Contains(t, u, AuthorizationEndpoint)
	assert.Contains(t, u, "state=state-xyz")
	assert.Contains(t, u, "client_id=client-id")
	assert.Contains(t, u, "response_type=code")
	// MailChimp gets no PKCE parameters
	assert.NotContains(t, u, "code_challenge")
}
