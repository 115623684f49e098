package storage

import (
	"context"
	"fmt"

	"github.com/byteledger/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewDocumentStorage builds the configured backend. The S3 bucket is created
// when missing.
func NewDocumentStorage(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (DocumentStorage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Backend {
	case "", "filesystem":
		return NewFileSystemStorage(&FileSystemStorageConfig{
			BasePath: cfg.BasePath,
			BaseURL:  cfg.BaseURL,
			Logger:   logger,
		})
	case "s3":
		s3Storage, err := NewS3DocumentStorage(ctx, &cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s3Storage, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
