// Package cli holds the start-up steps shared by the budgetbook commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"budgetbook/internal/backend"
	"budgetbook/internal/config"
	"budgetbook/internal/export"
	"budgetbook/internal/log"
	"budgetbook/internal/sheets"
	gsheet "budgetbook/internal/sheets/google"
)

// SetupLogger builds the process logger from LOG_LEVEL/LOG_FORMAT and makes
// it the slog default.
func SetupLogger(component string) *log.Logger {
	logger := log.New(log.ConfigFromEnv(component))
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration or exits on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// OpenBackend creates the configured document store.
func OpenBackend(ctx context.Context, logger *log.Logger, cfg *config.Config) (*backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("create %s backend: %w", bcfg.Type, err)
	}
	return res, nil
}

// Exporters returns every export destination enabled in cfg. A destination
// that fails to initialize is logged and skipped.
func Exporters(ctx context.Context, logger *log.Logger, cfg *config.Config) []sheets.RowExporter {
	var out []sheets.RowExporter
	if cfg.GoogleSpreadsheetID != "" {
		if c, err := gsheet.NewFromEnv(ctx); err != nil {
			logger.Error("Failed to initialize Google Sheets exporter", "error", err)
		} else {
			out = append(out, c)
			logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
		}
	}
	if cfg.BlobServiceURL != "" {
		if u, err := export.NewBlobUploader(cfg.BlobServiceURL, cfg.ExportContainer, cfg.UserID); err != nil {
			logger.Error("Failed to initialize blob exporter", "error", err)
		} else {
			out = append(out, u)
			logger.Info("Blob export enabled", "container", cfg.ExportContainer)
		}
	}
	return out
}

// GracefulShutdown returns a context cancelled on SIGINT/SIGTERM. cleanup
// runs after cancellation, bounded by timeout; done closes when it returns.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
		case <-ctx.Done():
		}
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		logger.Info("Shutdown complete")
	}()

	return ctx, done
}
