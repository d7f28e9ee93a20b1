package storage

import (
	"context"
	"fmt"

	"github.com/graphbench/graphbench/internal/config"
)

// NewFromConfig opens the object storage selected by cfg.Type.
func NewFromConfig(ctx context.Context, cfg config.StorageConfig) (ObjectStorage, error) {
	switch cfg.Type {
	case "local", "":
		store, err := NewLocalStorage(cfg.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "s3":
		s3cfg := DefaultS3Config()
		if cfg.S3.Region != "" {
			s3cfg.Region = cfg.S3.Region
		}
		s3cfg.Endpoint = cfg.S3.Endpoint
		s3cfg.UsePathStyle = cfg.S3.UsePathStyle
		store, err := NewS3Storage(ctx, cfg.S3.Bucket, s3cfg)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
