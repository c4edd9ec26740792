// Package store persists a finished numbering run's per-rank output under a
// per-run, per-rank key, on local disk or Tencent COS, grounded on the
// teacher's internal/storage package.
package store

import (
	"context"
	"fmt"
	"io"

	"github.com/meshnum/pkg/config"
)

// Store is the object-storage abstraction a run's checkpoint is written
// through.
type Store interface {
	Upload(ctx context.Context, key string, reader io.Reader) error
	UploadFile(ctx context.Context, key string, localPath string) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	DownloadFile(ctx context.Context, key string, localPath string) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	GetURL(key string) string
}

// Type names a storage backend.
type Type string

const (
	TypeLocal Type = "local"
	TypeCOS   Type = "cos"
)

// New creates a Store from cfg.
func New(cfg *config.StoreConfig) (Store, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	switch Type(cfg.Type) {
	case TypeCOS:
		return NewCOSStore(&COSConfig{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			SecretID:  cfg.SecretID,
			SecretKey: cfg.SecretKey,
			Domain:    cfg.Domain,
			Scheme:    cfg.Scheme,
		})
	default:
		return NewLocalStore(cfg.LocalPath)
	}
}

// ValidateConfig validates cfg the way the run's configuration layer
// expects, mirroring the teacher's storage.ValidateConfig.
func ValidateConfig(cfg *config.StoreConfig) error {
	if cfg == nil {
		return fmt.Errorf("store config is nil")
	}

	t := Type(cfg.Type)
	if t == "" {
		t = TypeLocal
	}
	if t != TypeCOS && t != TypeLocal {
		return fmt.Errorf("unsupported store type: %s", cfg.Type)
	}

	if t == TypeCOS {
		if cfg.Bucket == "" {
			return fmt.Errorf("COS bucket is required")
		}
		if cfg.Region == "" {
			return fmt.Errorf("COS region is required")
		}
		if cfg.SecretID == "" || cfg.SecretKey == "" {
			return fmt.Errorf("COS credentials are required")
		}
	}

	if t == TypeLocal && cfg.LocalPath == "" {
		return fmt.Errorf("local store path is required")
	}

	return nil
}
