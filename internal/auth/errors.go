package auth

import (
	"errors"
	"fmt"
)

// Every login attempt fails at most once; none of these are retried
// internally. NotConfigured and InvalidState are safe to show as a
// generic redirect; the rest are logged server-side in full and
// surfaced to the user as "authentication failed".
var (
	// ErrNotConfigured means the provider has no client credentials and
	// must not redirect the browser anywhere.
	ErrNotConfigured = errors.New("auth: provider not configured")

	// ErrInvalidState means the callback state did not match a live
	// authorization request for this session.
	ErrInvalidState = errors.New("auth: invalid or expired state")

	// ErrIdentityIncomplete means the provider's userinfo response had no
	// usable external identifier. Without it there is no stable key to
	// correlate repeat logins, so the flow must not continue.
	ErrIdentityIncomplete = errors.New("auth: identity missing external id")
)

// NetworkError wraps a transport-level failure (connect, timeout) on an
// outbound provider call.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("auth: network failure: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ProviderRejected is a non-2xx answer from a provider endpoint. Body is
// kept for server-side logging only and must never reach the user.
type ProviderRejected struct {
	Status int
	Body   string
}

func (e *ProviderRejected) Error() string {
	return fmt.Sprintf("auth: provider rejected request: status %d", e.Status)
}

// MalformedResponse wraps a provider response body that could not be
// decoded.
type MalformedResponse struct {
	Err error
}

func (e *MalformedResponse) Error() string {
	return fmt.Sprintf("auth: malformed provider response: %v", e.Err)
}

func (e *MalformedResponse) Unwrap() error { return e.Err }
