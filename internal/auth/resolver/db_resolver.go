package resolver

import (
	"context"
	"database/sql"
	"errors"

	"mailchimp-auth/internal/auth"
	"mailchimp-auth/internal/db"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// DBResolver resolves identities using the database.
type DBResolver struct {
	db *db.DB
}

func NewDBResolver(db *db.DB) *DBResolver {
	return &DBResolver{db: db}
}

func (r *DBResolver) Resolve(
	ctx context.Context,
	identity *auth.Identity,
) (string, bool, error) {

	if identity == nil {
		return "", false, errors.New("identity is nil")
	}
	if identity.ExternalID == "" {
		return "", false, auth.ErrIdentityIncomplete
	}

	// Two concurrent first logins for the same identity (or email) race
	// each other's inserts. The loser's transaction rolls back on the
	// unique constraint, and one more pass finds the winner's committed
	// rows through the normal lookup paths.
	userID, created, err := r.resolveOnce(ctx, identity)
	if err != nil && isUniqueViolation(err) {
		userID, created, err = r.resolveOnce(ctx, identity)
	}
	return userID, created, err
}

func (r *DBResolver) resolveOnce(
	ctx context.Context,
	identity *auth.Identity,
) (string, bool, error) {

	// 1. Try identity lookup (provider + external_id)
	var userID uuid.UUID
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id
		FROM public.identities
		WHERE provider = $1
		  AND external_id = $2
	`,
		identity.Provider,
		identity.ExternalID,
	).Scan(&userID)

	if err == nil {
		return userID.String(), false, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return "", false, err
	}

	// Creation is transactional so a lost race leaves no orphaned user
	// row behind.
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", false, err
	}
	defer func() { _ = tx.Rollback() }()

	// 2. Try email-based linking (existing user, new provider).
	// Providers may omit the email; then only a fresh user makes sense.
	found := false
	if identity.Email != "" {
		err = tx.QueryRowContext(ctx, `
			SELECT id
			FROM public.users
			WHERE LOWER(email) = LOWER($1)
		`,
			identity.Email,
		).Scan(&userID)

		switch {
		case err == nil:
			found = true
		case errors.Is(err, sql.ErrNoRows):
		default:
			return "", false, err
		}
	}

	created := false
	if !found {
		// 3. Create new user, carrying over the provider's display name
		err = tx.QueryRowContext(ctx, `
			INSERT INTO public.users (email, email_verified, display_name)
			VALUES ($1, false, $2)
			RETURNING id
		`,
			identity.Email,
			identity.DisplayName,
		).Scan(&userID)

		if err != nil {
			return "", false, err
		}
		created = true
	}

	// 4. Create identity mapping
	_, err = tx.ExecContext(ctx, `
		INSERT INTO public.identities (user_id, provider, external_id)
		VALUES ($1, $2, $3)
	`,
		userID,
		identity.Provider,
		identity.ExternalID,
	)

	if err != nil {
		return "", false, err
	}

	if err := tx.Commit(); err != nil {
		return "", false, err
	}

	return userID.String(), created, nil
}

// isUniqueViolation reports whether err is a postgres unique_violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
