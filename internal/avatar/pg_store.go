package avatar

import (
	"context"

	"mailchimp-auth/internal/db"

	"github.com/google/uuid"
)

// PGStore writes pictures to postgres and links them to the user row.
type PGStore struct {
	db *db.DB
}

func NewPGStore(db *db.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) SavePicture(
	ctx context.Context,
	userID string,
	mimeType string,
	data []byte,
) error {

	var pictureID uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO pictures (mime_type, picture_binary)
		VALUES ($1, $2)
		RETURNING id
	`, mimeType, data).Scan(&pictureID)

	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE users
		SET avatar_picture_id = $1, updated_at = NOW()
		WHERE id = $2
	`, pictureID, userID)

	return err
}
