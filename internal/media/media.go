// Package media stores profile photos behind a backend-agnostic interface.
// The filesystem backend serves local development; the S3 backend serves
// production (including MinIO via a custom base endpoint).
package media

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"talenthunt/internal/platform/config"
)

//go:generate mockgen -source=media.go -destination=mocks/media_mock.go -package=mocks

// Store is the profile-photo storage contract. Keys are opaque references
// produced by NewKey and persisted on the profile as PhotoRef.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// NewKey builds a date-partitioned storage key. The extension is carried so
// the serving handler can derive a content type.
func NewKey(now time.Time, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	d := now.UTC()
	return fmt.Sprintf("photos/%d/%02d/%02d/%s%s", d.Year(), d.Month(), d.Day(), uuid.NewString(), ext)
}

// NewFromConfig selects the backend named in the configuration.
func NewFromConfig(cfg config.MediaConfig) (Store, error) {
	switch cfg.Backend {
	case "fs":
		return NewFSStore(cfg.FSRoot)
	case "s3":
		return NewS3Store(cfg)
	default:
		return nil, fmt.Errorf("unknown media backend %q", cfg.Backend)
	}
}
