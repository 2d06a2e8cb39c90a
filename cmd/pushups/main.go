package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/templui/pushups/cmd/pushups/cmd"
	"github.com/templui/pushups/internal/app"
	"github.com/templui/pushups/internal/config"
	"github.com/templui/pushups/internal/logger"
	"github.com/templui/pushups/internal/migrate"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli := cmd.New(open)
	err := cli.Command().ExecuteContext(ctx)

	closeCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	closeErr := cli.Close(closeCtx)
	if closeErr != nil {
		slog.Error("failed to close app", "error", closeErr)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func open(ctx context.Context, notifier migrate.Notifier) (*app.App, error) {
	cfg := config.Load()

	logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)

	a, err := app.New(ctx, cfg, notifier)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return nil, err
	}
	if a.MigrationErr != nil {
		slog.Warn("continuing after migration failure", "error", a.MigrationErr)
	}
	return a, nil
}
