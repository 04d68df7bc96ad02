// Package storage persists uploaded images on local disk or in an S3-compatible bucket.
package storage

import (
	"context"
	"fmt"

	"socialnet/internal/config"
	"socialnet/internal/model"
)

// ImageStore stores encoded images under a folder and returns where clients can fetch them.
type ImageStore interface {
	Put(ctx context.Context, folder, ext, contentType string, body []byte) (*model.UploadResult, error)
	// Delete removes an object by key. A missing object is not an error.
	Delete(ctx context.Context, key string) error
	// KeyFromURL maps a stored URL back to its key. ok is false for URLs this store did not issue.
	KeyFromURL(url string) (key string, ok bool)
}

// New builds the store selected by cfg.StorageBackend.
func New(ctx context.Context, cfg *config.Config) (ImageStore, error) {
	switch cfg.StorageBackend {
	case config.StorageLocal, "":
		return NewLocalStore(cfg.UploadDir, cfg.UploadURLPrefix)
	case config.StorageS3:
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
