package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/templui/pushups/internal/config"
	"github.com/templui/pushups/internal/db"
	"github.com/templui/pushups/internal/migrate"
	"github.com/templui/pushups/internal/reminder"
	"github.com/templui/pushups/internal/storage"
	"github.com/templui/pushups/internal/store"
	"github.com/templui/pushups/internal/telemetry"
)

type App struct {
	Cfg       *config.Config
	DB        *sqlx.DB
	Store     *store.Store
	Telemetry *telemetry.Reporter
	Location  *time.Location

	// MigrationErr is set when a data migration failed on startup.
	// The store stays usable.
	MigrationErr error
}

// New opens the configured backend, loads the store and applies pending
// data migrations. notifier may be nil.
func New(ctx context.Context, cfg *config.Config, notifier migrate.Notifier) (*App, error) {
	loc := cfg.Location()
	reporter := telemetry.NewSentry(cfg.SentryDSN, slog.Default())

	// Database (sql drivers only)
	var database *sqlx.DB
	if cfg.StorageDriver == config.StorageSQLite || cfg.StorageDriver == config.StoragePostgres {
		var err error
		database, err = db.Init(ctx, cfg.DBDriver, cfg.DBConnection)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}

		err = db.RunMigrations(database.DB, cfg.DBDriver)
		if err != nil {
			db.Close(database)
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	backend, err := storage.New(ctx, cfg, database)
	if err != nil {
		db.Close(database)
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return newApp(ctx, cfg, database, backend, reporter, notifier, loc)
}

// NewWithBackend builds an app over an already opened backend
func NewWithBackend(ctx context.Context, cfg *config.Config, backend storage.Backend, notifier migrate.Notifier) (*App, error) {
	return newApp(ctx, cfg, nil, backend, telemetry.Nop(), notifier, cfg.Location())
}

func newApp(
	ctx context.Context,
	cfg *config.Config,
	database *sqlx.DB,
	backend storage.Backend,
	reporter *telemetry.Reporter,
	notifier migrate.Notifier,
	loc *time.Location,
) (*App, error) {
	s, err := store.New(ctx, backend,
		store.WithLocation(loc),
		store.WithErrorReporter(reporter),
		store.WithWriteRetries(cfg.WriteRetries, 100*time.Millisecond),
		store.WithWriteTimeout(cfg.WriteTimeout),
	)
	if err != nil {
		db.Close(database)
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	a := &App{
		Cfg:       cfg,
		DB:        database,
		Store:     s,
		Telemetry: reporter,
		Location:  loc,
	}

	runner := migrate.NewRunner(migrate.DefaultSteps(loc), reporter, notifier, slog.Default())
	version, err := runner.Run(ctx, s)
	if err != nil {
		a.MigrationErr = err
	}
	slog.Debug("data schema", "version", version, "latest", runner.CurrentVersion())

	return a, nil
}

// ReminderSender picks email delivery when configured. Otherwise
// reminders are printed to w, or logged when w is nil.
func (a *App) ReminderSender(w io.Writer) reminder.Sender {
	if a.Cfg.RemindersByEmail() {
		return reminder.NewEmailSender(
			a.Cfg.ResendAPIKey,
			a.Cfg.EmailFrom,
			a.Cfg.ReminderEmail,
			a.Cfg.AppName,
			a.Cfg.IsDevelopment(),
		)
	}
	if w == nil {
		return reminder.LogSender{Logger: slog.Default()}
	}
	return reminder.WriterSender{W: w}
}

// StartReminders keeps a daily reminder in sync with the settings until
// ctx is done or the returned stop func is called.
func (a *App) StartReminders(ctx context.Context, sender reminder.Sender) (stop func()) {
	scheduler := reminder.NewScheduler(sender,
		reminder.WithNow(a.Store.Now),
		reminder.WithSchedulerLogger(slog.Default()))

	unsubscribe := reminder.Sync(ctx, a.Store, scheduler)
	return func() {
		unsubscribe()
		scheduler.CancelReminders()
		scheduler.Wait()
	}
}

var ErrProductionRollback = errors.New("refusing to roll back the database schema in production")

// RollbackSchema closes the store and rolls back the newest table
// migration. It is a development tool and drops stored slices.
func (a *App) RollbackSchema(ctx context.Context) error {
	if a.Cfg.IsProduction() {
		return ErrProductionRollback
	}
	if a.DB == nil {
		return fmt.Errorf("storage driver %q has no database schema", a.Cfg.StorageDriver)
	}

	err := a.Store.Close(ctx)
	if err != nil {
		return fmt.Errorf("failed to flush store: %w", err)
	}
	return db.MigrateDown(a.DB.DB, a.Cfg.DBDriver)
}

// telemetryFlushTimeout bounds how long Close waits for queued reports
const telemetryFlushTimeout = 2 * time.Second

// Close flushes pending writes, sends queued reports and releases the
// database.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Store != nil {
		errs = append(errs, a.Store.Close(ctx))
	}
	// After the store so its final write errors are sent too
	a.Telemetry.Flush(telemetryFlushTimeout)
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
