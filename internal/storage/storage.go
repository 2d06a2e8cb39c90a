package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	cfg "github.com/templui/pushups/internal/config"
)

// ErrNotFound is returned by Load when nothing was ever saved for a slice
var ErrNotFound = errors.New("slice not found")

// Backend persists whole slices as opaque serialized values.
// Sequential Save calls for the same slice must be applied in order.
type Backend interface {
	// Load returns the last saved value or ErrNotFound
	Load(ctx context.Context, slice string) ([]byte, error)

	// Save replaces the stored value of slice
	Save(ctx context.Context, slice string, value []byte) error
}

// New creates the backend selected by the app config.
// database is required for the sqlite and postgres drivers.
func New(ctx context.Context, c *cfg.Config, database *sqlx.DB) (Backend, error) {
	slog.Debug("initializing storage", "driver", c.StorageDriver)

	switch c.StorageDriver {
	case cfg.StorageSQLite, cfg.StoragePostgres:
		if database == nil {
			return nil, fmt.Errorf("%s storage requires a database connection", c.StorageDriver)
		}
		return NewSQLBackend(database), nil
	case cfg.StorageS3:
		return NewS3Backend(ctx, S3Config{
			Region:    c.S3Region,
			Bucket:    c.S3Bucket,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			Endpoint:  c.S3Endpoint,
			Prefix:    c.S3Prefix,
		})
	case cfg.StorageMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
}
