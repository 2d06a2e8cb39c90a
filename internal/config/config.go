package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageS3       = "s3"
	StorageMemory   = "memory"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string

	// Storage backend: sqlite, postgres, s3 or memory
	StorageDriver string

	// Database (sqlite and postgres drivers)
	DBDriver     string
	DBConnection string

	// Storage (S3-compatible: MinIO, AWS S3, Cloudflare R2, etc.)
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string // Optional: for S3-compatible services
	S3Prefix    string

	// Persistence writes
	WriteRetries int
	WriteTimeout time.Duration

	// Observability (optional)
	SentryDSN string

	// Reminders
	EmailFrom     string
	ResendAPIKey  string
	ReminderEmail string

	// Timezone used for record dates; empty means the system zone
	Timezone string
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	cfg := &Config{
		AppName: envString("APP_NAME", "Pushups"),
		AppEnv:  envString("APP_ENV", "development"),

		StorageDriver: envString("STORAGE_DRIVER", StorageSQLite),

		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/pushups.db?_pragma=journal_mode(WAL)"),

		S3Region:    envString("S3_REGION", ""),
		S3Bucket:    envString("S3_BUCKET", ""),
		S3AccessKey: envString("S3_ACCESS_KEY", ""),
		S3SecretKey: envString("S3_SECRET_KEY", ""),
		S3Endpoint:  envString("S3_ENDPOINT", ""),
		S3Prefix:    envString("S3_PREFIX", "pushups/"),

		WriteRetries: envInt("WRITE_RETRIES", 3),
		WriteTimeout: envDuration("WRITE_TIMEOUT", 10*time.Second),

		SentryDSN: envString("SENTRY_DSN", ""),

		EmailFrom:     envString("EMAIL_FROM", "reminders@example.com"),
		ResendAPIKey:  envString("RESEND_API_KEY", ""),
		ReminderEmail: envString("REMINDER_EMAIL", ""),

		Timezone: envString("TIMEZONE", ""),
	}

	// postgres storage implies the pgx driver
	if cfg.StorageDriver == StoragePostgres && os.Getenv("DB_DRIVER") == "" {
		cfg.DBDriver = "pgx"
	}

	if cfg.StorageDriver == StorageS3 {
		validateS3(cfg)
	}

	return cfg
}

// validateS3 ensures the bucket settings are present when S3 is the backend.
func validateS3(cfg *Config) {
	if cfg.S3Bucket == "" || cfg.S3Region == "" {
		slog.Error("s3 storage requires S3_BUCKET and S3_REGION",
			"hint", "set STORAGE_DRIVER=sqlite for local use")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Location resolves Timezone, falling back to the system zone
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		slog.Warn("config invalid timezone, using local", "timezone", c.Timezone, "error", err)
		return time.Local
	}
	return loc
}

// RemindersByEmail reports whether reminders should go out through Resend
func (c *Config) RemindersByEmail() bool {
	return envBool("REMINDER_BY_EMAIL", c.ResendAPIKey != "" && c.ReminderEmail != "")
}
