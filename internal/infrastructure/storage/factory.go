package storage

import (
	"context"
	"fmt"

	catalogapp "github.com/shopcart/backend/internal/application/catalog"
	infraconfig "github.com/shopcart/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// New creates the image storage selected by cfg.Driver. The S3 driver makes
// sure its bucket exists.
func New(ctx context.Context, cfg *infraconfig.StorageConfig, logger *zap.Logger) (catalogapp.ImageStorage, error) {
	switch cfg.Driver {
	case infraconfig.StorageDriverS3:
		s3Storage, err := NewS3ObjectStorage(cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s3Storage, nil
	case infraconfig.StorageDriverLocal, "":
		return NewLocalObjectStorage(cfg.LocalPath, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}
