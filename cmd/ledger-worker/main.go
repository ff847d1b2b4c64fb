package main

import (
	"context"
	"errors"
	"os"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/cli"
	"ledger/internal/log"
	"ledger/internal/sheets"
	gsheet "ledger/internal/sheets/google"
	memsheet "ledger/internal/sheets/memory"
	"ledger/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentWorker)

	logger.Info("Starting ledger-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the export worker")
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	backendResult := cli.OpenStore(ctx, logger, cfg)
	if backendResult.Cleanup != nil {
		defer func() {
			if err := backendResult.Cleanup(); err != nil {
				logger.Error("Store cleanup failed", log.FieldError, err)
			}
		}()
	}

	var exporter sheets.Exporter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		if err := client.EnsureHeader(ctx); err != nil {
			logger.Error("Failed to prepare export sheet", log.FieldError, err)
			os.Exit(1)
		}
		exporter = client
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	} else {
		exporter = memsheet.New()
		logger.Info("Google Sheets disabled - exporting to memory only")
	}

	syncWorker := worker.NewSyncWorker(backendResult.Store, exporter)

	// Catch up on changes published while the worker was down.
	logger.Info("Performing startup export...", log.FieldOperation, log.OpStartup)
	if n, err := syncWorker.ExportAll(ctx); err != nil {
		logger.Error("Startup export failed", log.FieldError, err, log.FieldOperation, log.OpStartup, "exported", n)
	} else {
		logger.Info("Startup export complete", log.FieldOperation, log.OpStartup, "exported", n)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	logger.Info("Consuming transaction changes", "queue", cfg.AMQPQueue)
	if err := amqpClient.ConsumeTransactionChanges(ctx, syncWorker.HandleTransactionChanged); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
