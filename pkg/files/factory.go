package files

import (
	"context"
	"fmt"

	"portfolio/pkg/config"
)

// NewStoreFromConfig creates the Store selected by STORAGE_BACKEND.
// Stores holding a client also implement io.Closer.
func NewStoreFromConfig(ctx context.Context, cfg *config.Config, namer Namer) (Store, error) {
	switch cfg.StorageBackend {
	case config.BackendLocal, "":
		if cfg.UploadDir == "" {
			return nil, fmt.Errorf("local storage requires UPLOAD_DIR to be set")
		}
		return NewLocalStore(cfg.UploadDir, cfg.MaxUploadBytes, namer), nil
	case config.BackendMemory:
		return NewMemoryStore(cfg.MaxUploadBytes, namer), nil
	case config.BackendGCS:
		if cfg.BucketName == "" {
			return nil, config.ErrBucketNameNotSet
		}
		return NewGCSStore(ctx, cfg.BucketName, cfg.BucketPrefix, cfg.MaxUploadBytes, namer)
	case config.BackendS3:
		if cfg.BucketName == "" {
			return nil, config.ErrBucketNameNotSet
		}
		return NewS3Store(ctx, S3Options{
			Bucket:          cfg.BucketName,
			Prefix:          cfg.BucketPrefix,
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
			MaxBytes:        cfg.MaxUploadBytes,
		}, namer)
	default:
		return nil, fmt.Errorf("%w: %s", config.ErrUnknownBackend, cfg.StorageBackend)
	}
}
