package main

import (
	"context"
	"os"
	"time"

	"ledger/internal/cache"
	"ledger/internal/cli"
	"ledger/internal/log"
	"ledger/internal/notify"
	"ledger/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentReminder)

	logger.Info("Starting reminder-worker")

	ctx := context.Background()

	backendResult := cli.OpenStore(ctx, logger, cfg)
	if backendResult.Cleanup != nil {
		defer func() {
			if err := backendResult.Cleanup(); err != nil {
				logger.Error("Store cleanup failed", log.FieldError, err)
			}
		}()
	}

	opts, err := cli.ServiceOptions(cfg, logger)
	if err != nil {
		logger.Error("Invalid service options", log.FieldError, err)
		os.Exit(1)
	}

	// New reminders must invalidate the API's shared views.
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisViewCache(ctx, cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			logger.Warn("Failed to connect to Redis, cached views may lag", log.FieldError, err)
		} else {
			defer rc.Close()
			opts.Cache = rc
		}
	}

	var mailer services.Mailer
	if cfg.EmailEnabled() {
		mailer = notify.NewSender(notify.Config{
			Host:        cfg.SMTPHost,
			Port:        cfg.SMTPPort,
			Username:    cfg.SMTPUsername,
			Password:    cfg.SMTPPassword,
			SenderEmail: cfg.SenderEmail,
		})
		logger.Info("Reminder emails enabled", "smtp_host", cfg.SMTPHost)
	} else {
		logger.Info("Reminder emails disabled - no SMTP_HOST configured")
	}

	processor := services.NewReminderProcessor(backendResult.Store, mailer, services.ReminderProcessorConfig{
		Schedule:    cfg.ReminderSchedule,
		DueSoonDays: cfg.ReminderDueSoonDays,
		RunOnStart:  true,
	}, opts)

	runCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := processor.Stop(shutdownCtx); err != nil {
			logger.Error("Reminder processor stop failed", log.FieldError, err)
		}
	})

	if err := processor.Start(runCtx); err != nil {
		logger.Error("Failed to start reminder processor", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(runCtx, done)
	logger.Info("Reminder-worker shutdown complete")
}
