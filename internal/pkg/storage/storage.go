package storage

import (
	"context"
	"io"
)

// Storage is the minimal object store used for room images
type Storage interface {
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	GetURL(key string) string
}

// Config selects and configures a backend. Local disk is used when S3Bucket is empty.
type Config struct {
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string

	LocalDir     string
	LocalBaseURL string
}

// New returns the backend described by cfg
func New(ctx context.Context, cfg Config) (Storage, error) {
	if cfg.S3Bucket != "" {
		return NewS3Storage(ctx, cfg)
	}
	return NewLocalStorage(cfg.LocalDir, cfg.LocalBaseURL)
}
