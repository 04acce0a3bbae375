// Package image binds uploaded logo files to listings. At most one logo is
// associated with a listing at a time; the association is carried on the
// record as an object-storage key.
package image

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"agencydir/internal/config"
	"agencydir/internal/storage"
)

// ErrUnsupportedUpload is returned for uploads that exceed the configured
// size cap or carry a media type outside the allow-list. The triggering
// create/update must be rejected as a whole.
var ErrUnsupportedUpload = errors.New("unsupported upload")

// LogoUpload is a fully received upload payload. Content must be read in
// full by Attach before any record write begins.
type LogoUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Manager binds at most one uploaded file to a record.
type Manager interface {
	// Attach stores the upload and returns the object key to set on the
	// record as its image reference.
	Attach(ctx context.Context, up LogoUpload) (string, error)
	// Detach releases the association; the key no longer resolves after a
	// successful call. Detaching an empty or already-released key is a no-op.
	Detach(ctx context.Context, imageRef string) error
	// Discard removes a just-attached object when the record write that
	// should have referenced it failed.
	Discard(ctx context.Context, imageRef string) error
}

type manager struct {
	store   storage.Storage
	maxSize int64
	allowed map[string]struct{}
}

// NewManager builds a Manager over the given object storage, bounded by the
// upload configuration.
func NewManager(store storage.Storage, cfg config.UploadConfig) Manager {
	allowed := make(map[string]struct{}, len(cfg.AllowedTypes))
	for _, t := range cfg.AllowedTypes {
		allowed[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	return &manager{store: store, maxSize: cfg.MaxSizeBytes, allowed: allowed}
}

func (m *manager) Attach(ctx context.Context, up LogoUpload) (string, error) {
	if up.Content == nil {
		return "", fmt.Errorf("%w: empty payload", ErrUnsupportedUpload)
	}
	if m.maxSize > 0 && up.Size > m.maxSize {
		return "", fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrUnsupportedUpload, up.Size, m.maxSize)
	}
	mediaType := normalizeMediaType(up.ContentType)
	if _, ok := m.allowed[mediaType]; !ok {
		return "", fmt.Errorf("%w: media type %q", ErrUnsupportedUpload, up.ContentType)
	}

	// Generate key using UUID + original extension
	ext := strings.ToLower(filepath.Ext(up.Filename))
	key := filepath.ToSlash(filepath.Join("agencies", uuid.New().String()+ext))

	_, err := m.store.Put(ctx, key, up.Content, storage.PutObjectOptions{
		Size:        up.Size,
		ContentType: mediaType,
		Metadata: map[string]string{
			"original-filename": up.Filename,
		},
	})
	if err != nil {
		return "", fmt.Errorf("store logo: %w", err)
	}
	return key, nil
}

func (m *manager) Detach(ctx context.Context, imageRef string) error {
	if imageRef == "" {
		return nil
	}
	if err := m.store.Delete(ctx, imageRef); err != nil {
		return fmt.Errorf("release logo: %w", err)
	}
	return nil
}

func (m *manager) Discard(ctx context.Context, imageRef string) error {
	if imageRef == "" {
		return nil
	}
	return m.store.Delete(ctx, imageRef)
}

// normalizeMediaType lowers the type and strips any parameters, so
// "image/png; charset=binary" matches an "image/png" allow-list entry.
func normalizeMediaType(ct string) string {
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		return strings.ToLower(mt)
	}
	return strings.ToLower(strings.TrimSpace(ct))
}
