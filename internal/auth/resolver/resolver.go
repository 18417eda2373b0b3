package resolver

import (
	"context"

	"mailchimp-auth/internal/auth"
)

// Resolver determines which internal user an external identity belongs to.
// It is the ONLY place where identity-to-user mapping logic lives.
// created reports whether the user was auto-registered by this call, so
// the caller can run one-time registration side effects (avatar upload).
type Resolver interface {
	Resolve(
		ctx context.Context,
		identity *auth.Identity,
	) (userID string, created bool, err error)
}
