package mailchimp

import (
	"errors"
	"testing"

	"mailchimp-auth/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapClaimsFullProfile(t *testing.T) {
	raw := []byte(`{"login":{"login_id":"u1","login_name":"Ann","login_email":"a@x.com","avatar":"http://x/a.png"}}`)

	identity, err := MapClaims(raw)
	require.NoError(t, err)

	assert.Equal(t, "mailchimp", identity.Provider)
	assert.Equal(t, "u1", identity.ExternalID)
	assert.Equal(t, "Ann", identity.DisplayName)
	assert.Equal(t, "a@x.com", identity.Email)
	assert.Equal(t, "http://x/a.png", identity.AvatarURL)
	assert.Equal(t, map[string]string{
		"login_id":    "u1",
		"login_name":  "Ann",
		"login_email": "a@x.com",
		"avatar":      "http://x/a.png",
	}, identity.RawClaims)
}

func TestMapClaimsPreservesExternalIDExactly(t *testing.T) {
	// no trimming, no case folding
	raw := []byte(`{"login":{"login_id":" MiXeD-042 "}}`)

	identity, err := MapClaims(raw)
	require.NoError(t, err)
	assert.Equal(t, " MiXeD-042 ", identity.ExternalID)
}

func TestMapClaimsMissingLoginID(t *testing.T) {
	cases := map[string]string{
		"no login object": `{}`,
		"no login_id":     `{"login":{"login_name":"Ann"}}`,
		"empty login_id":  `{"login":{"login_id":"","login_name":"Ann"}}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			identity, err := MapClaims([]byte(raw))
			assert.Nil(t, identity)
			assert.ErrorIs(t, err, auth.ErrIdentityIncomplete)
		})
	}
}

func TestMapClaimsOptionalFieldsAbsent(t *testing.T) {
	raw := []byte(`{"login":{"login_id":"u2","login_email":""}}`)

	identity, err := MapClaims(raw)
	require.NoError(t, err)

	assert.Equal(t, "u2", identity.ExternalID)
	assert.Empty(t, identity.DisplayName)
	assert.Empty(t, identity.Email)
	assert.Empty(t, identity.AvatarURL)

	// empty strings count as absent, not as claims
	assert.Equal(t, map[string]string{"login_id": "u2"}, identity.RawClaims)
}

func TestMapClaimsMalformedJSON(t *testing.T) {
	identity, err := MapClaims([]byte(`{"login":`))
	assert.Nil(t, identity)

	var malformed *auth.MalformedResponse
	assert.True(t, errors.As(err, &malformed))
}

func TestMapClaimsDeterministic(t *testing.T) {
	raw := []byte(`{"login":{"login_id":"u1","login_name":"Ann","login_email":"a@x.com","avatar":"http://x/a.png"}}`)

	first, err := MapClaims(raw)
	require.NoError(t, err)
	second, err := MapClaims(raw)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
