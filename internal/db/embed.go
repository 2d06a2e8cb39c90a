package db

import "embed"

// migrationsFS holds the goose SQL migrations for the slices table.
//
//go:embed migrations/*.sql
var migrationsFS embed.FS
