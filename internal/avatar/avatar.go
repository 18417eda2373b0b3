// Package avatar downloads a user's external profile picture and stores
// it locally. Ingestion is strictly best-effort: callers log failures and
// carry on, a missing avatar must never fail a login.
package avatar

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"time"
)

// DefaultMaxBytes caps the avatar download size when no explicit
// limit is configured.
const DefaultMaxBytes = 20000

const fallbackMimeType = "image/png"

// Store persists avatar bytes and links them to the owning user.
type Store interface {
	SavePicture(ctx context.Context, userID string, mimeType string, data []byte) error
}

// Ingestor fetches avatar bytes from a URL and hands them to a Store.
type Ingestor struct {
	store    Store
	maxBytes int64
	http     *http.Client
}

func NewIngestor(store Store, maxBytes int64) *Ingestor {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Ingestor{
		store:    store,
		maxBytes: maxBytes,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Ingest downloads the avatar and stores it for the user. Any error is
// the caller's to log and ignore.
func (i *Ingestor) Ingest(ctx context.Context, userID string, avatarURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, avatarURL, nil)
	if err != nil {
		return fmt.Errorf("avatar: bad url: %w", err)
	}

	resp, err := i.http.Do(req)
	if err != nil {
		return fmt.Errorf("avatar: download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("avatar: download failed: status %d", resp.StatusCode)
	}

	// Read one byte past the cap to detect oversize without buffering
	// the whole thing.
	data, err := io.ReadAll(io.LimitReader(resp.Body, i.maxBytes+1))
	if err != nil {
		return fmt.Errorf("avatar: read failed: %w", err)
	}
	if int64(len(data)) > i.maxBytes {
		return fmt.Errorf("avatar: exceeds maximum size of %d bytes", i.maxBytes)
	}

	if err := i.store.SavePicture(ctx, userID, mimeTypeFor(avatarURL), data); err != nil {
		return fmt.Errorf("avatar: store failed: %w", err)
	}

	return nil
}

// mimeTypeFor guesses the content type from the URL's file extension,
// defaulting to image/png.
func mimeTypeFor(avatarURL string) string {
	u, err := url.Parse(avatarURL)
	if err != nil {
		return fallbackMimeType
	}
	if t := mime.TypeByExtension(path.Ext(u.Path)); t != "" {
		return t
	}
	return fallbackMimeType
}
