package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// SQLBackend stores each slice as one row of the slices table.
// The table is created by db.RunMigrations.
type SQLBackend struct {
	db *sqlx.DB
}

func NewSQLBackend(db *sqlx.DB) *SQLBackend {
	return &SQLBackend{db: db}
}

func (b *SQLBackend) Load(ctx context.Context, slice string) ([]byte, error) {
	var value string
	query := `SELECT value FROM slices WHERE name = $1`

	err := b.db.GetContext(ctx, &value, query, slice)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return []byte(value), nil
}

func (b *SQLBackend) Save(ctx context.Context, slice string, value []byte) error {
	query := `INSERT INTO slices (name, value, updated_at)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	_, err := b.db.ExecContext(ctx, query, slice, string(value), time.Now().UTC())
	return err
}
