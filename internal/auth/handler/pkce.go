package handler

import (
	"crypto/sha256"
	"encoding/base64"

	"mailchimp-auth/internal/utils"
)

// generatePKCE returns a fresh verifier and its S256 challenge. The
// verifier travels server-side inside the authorization request record,
// never through the browser.
func generatePKCE() (verifier string, challenge string) {
	verifier = utils.RandomString(32)

	hash := sha256.Sum256([]byte(verifier))
	challenge = base64.RawURLEncoding.EncodeToString(hash[:])

	return verifier, challenge
}
