package state

import (
	"context"
	"time"
)

// TTL bounds the replay window of a pending authorization request.
const TTL = 10 * time.Minute

// AuthorizationRequest is the per-login-attempt record created at the
// start of a login and consumed exactly once at the callback. It carries
// everything the callback needs that must not round-trip through the
// provider.
type AuthorizationRequest struct {
	State        string    `json:"state"`         // unguessable, also the storage key
	Provider     string    `json:"provider"`      // provider the attempt was started for
	ReturnURL    string    `json:"return_url"`    // where to send the user after login
	CodeVerifier string    `json:"code_verifier"` // PKCE verifier, empty for providers without PKCE
	CreatedAt    time.Time `json:"created_at"`
}

// Expired reports whether the request is past its replay window.
func (r *AuthorizationRequest) Expired(now time.Time) bool {
	return now.After(r.CreatedAt.Add(TTL))
}

// Store persists pending authorization requests keyed by state.
// Consume is get-and-delete: a state can never validate twice, which
// also closes the door on replayed callbacks.
type Store interface {
	Save(ctx context.Context, req AuthorizationRequest) error
	Consume(ctx context.Context, state string) (*AuthorizationRequest, error)
}
