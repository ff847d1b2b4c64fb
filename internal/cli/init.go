// Package cli provides common CLI initialization utilities.
// This package consolidates repeated initialization patterns across
// cmd/ledger, cmd/ledger-worker, and cmd/reminder-worker.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ledger/internal/backend"
	"ledger/internal/config"
	"ledger/internal/core"
	"ledger/internal/engine"
	"ledger/internal/log"
	"ledger/internal/services"
)

// SetupLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// sets it as the default logger.
func SetupLogger(cfg *config.Config, component string) *log.Logger {
	level := log.ParseLevel(cfg.LogLevel)
	logger := log.New(log.Config{
		Level:     level,
		Component: component,
		Handler:   log.NewHandler(os.Stdout, cfg.LogFormat, level),
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration, sets up logging from it and
// validates it. Exits the process on validation failure.
func LoadAndValidateConfig(component string) (*config.Config, *log.Logger) {
	cfg := config.Load()
	logger := SetupLogger(cfg, component)
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed",
			log.FieldError, err, log.FieldOperation, log.OpValidate, log.FieldErrorType, log.ErrorTypeConfiguration)
		os.Exit(1)
	}
	return cfg, logger
}

// OpenStore creates the configured store. Exits the process on failure.
func OpenStore(ctx context.Context, logger *log.Logger, cfg *config.Config) *backend.BackendResult {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err, log.FieldErrorType, log.ErrorTypeConfiguration)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize store",
			log.FieldError, err, log.FieldErrorType, log.ErrorTypeDatabase, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	return res
}

// Thresholds parses the configured calendar thresholds. Config validation
// has already rejected bad values.
func Thresholds(cfg *config.Config) (engine.Thresholds, error) {
	expense := core.ParseAmount(cfg.HighExpenseThreshold)
	if err := expense.Validate(); err != nil {
		return engine.Thresholds{}, fmt.Errorf("high expense threshold: %w", err)
	}
	income := core.ParseAmount(cfg.HighIncomeThreshold)
	if err := income.Validate(); err != nil {
		return engine.Thresholds{}, fmt.Errorf("high income threshold: %w", err)
	}
	return engine.Thresholds{HighExpense: expense, HighIncome: income}, nil
}

// ServiceOptions builds the options shared by every service from config.
func ServiceOptions(cfg *config.Config, logger *log.Logger) (services.Options, error) {
	th, err := Thresholds(cfg)
	if err != nil {
		return services.Options{}, err
	}
	return services.Options{
		Currency:   cfg.CurrencySymbol,
		Thresholds: th,
		Logger:     logger.Logger,
	}, nil
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup(shutdownCtx)
		}

		cancel()

		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached", log.FieldOperation, log.OpShutdown, log.FieldErrorType, log.ErrorTypeTimeout)
		} else {
			logger.Info("Shutdown complete", log.FieldOperation, log.OpShutdown)
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
