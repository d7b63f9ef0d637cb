// Package cli provides process bootstrap helpers for cmd/ledger.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"ledger/internal/backend"
	"ledger/internal/config"
	applog "ledger/internal/log"
)

// LoadEnvFile loads the .env file if present.
// Errors are ignored silently as the file is optional.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the application logger for the given level name and
// installs it as the slog default.
func SetupLogger(level string) *applog.Logger {
	cfg := applog.DefaultConfig()
	if lvl, err := applog.ParseLevel(level); err == nil {
		cfg.Level = lvl
	}
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration and validates it. A validation
// failure is logged as a configuration error and returned.
func LoadAndValidateConfig(logger *applog.Logger) (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed",
			applog.NewFields().
				WithOperation(applog.OpStartup).
				WithErrorType(applog.ErrorTypeConfiguration).
				WithError(err).
				ToSlice()...)
		return nil, err
	}
	return cfg, nil
}

// InitBackend opens the configured transaction store. The returned cleanup
// must be called on shutdown to release it.
func InitBackend(ctx context.Context, logger *applog.Logger, cfg *config.Config) (backend.Backend, backend.CleanupFunc, error) {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}

	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to initialize backend",
			applog.FieldBackend, backendCfg.Type.String(),
			applog.FieldPath, backendCfg.SQLiteDBPath,
			applog.FieldError, err)
		return nil, nil, fmt.Errorf("open %s backend: %w", backendCfg.Type, err)
	}

	cleanup := res.Cleanup
	if cleanup == nil {
		cleanup = func() error { return nil }
	}
	return res.Backend, cleanup, nil
}

// Shutdown runs cleanup and logs, rather than returns, any failure.
func Shutdown(logger *applog.Logger, cleanup backend.CleanupFunc) {
	if cleanup == nil {
		return
	}
	if err := cleanup(); err != nil {
		logger.Error("Failed to close backend", applog.FieldOperation, applog.OpShutdown, applog.FieldError, err)
		return
	}
	logger.Debug("Backend closed", applog.FieldOperation, applog.OpShutdown)
}

// Fatal prints err to stderr and exits with status 1.
func Fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}
