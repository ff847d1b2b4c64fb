package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/auth"
	"ledger/internal/cache"
	"ledger/internal/cli"
	apphttp "ledger/internal/http"
	"ledger/internal/log"
	"ledger/internal/middleware/recovery"
	"ledger/internal/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentApp)

	if err := recovery.Init(cfg.SentryDSN, "", version); err != nil {
		logger.Warn("Sentry initialization failed, continuing without error reporting", log.FieldError, err)
	}
	defer recovery.Flush(2 * time.Second)

	ctx := context.Background()

	backendResult := cli.OpenStore(ctx, logger, cfg)
	st := backendResult.Store
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

	// Dashboard views: Redis when configured, otherwise an in-process LRU.
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisViewCache(ctx, cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			logger.Error("Failed to connect to Redis", log.FieldError, err, log.FieldErrorType, log.ErrorTypeNetwork)
			os.Exit(1)
		}
		defer rc.Close()
		opts.Cache = rc
		logger.Info("Redis view cache enabled", "ttl", cfg.CacheTTL)
	} else {
		lc := cache.NewLocalViewCache(1000, cfg.CacheTTL)
		cacheManager := cache.NewManager(logger.Logger)
		cacheManager.Register(lc.LRU())
		cacheManager.StartCleanup(cfg.CacheTTL)
		defer cacheManager.Stop()
		opts.Cache = lc
	}

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, sheet export disabled",
				log.FieldError, err, log.FieldErrorType, log.ErrorTypeNetwork)
		} else {
			defer amqpClient.Close()
			opts.Publisher = amqpClient
			logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange)
		}
	} else {
		logger.Info("AMQP disabled - transaction changes will not be exported")
	}

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)
	budgets := services.NewBudgetService(st, opts)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Ledger:             services.NewLedgerService(st, opts),
		Budgets:            budgets,
		Dashboard:          services.NewDashboardService(st, budgets, opts),
		Accounts:           services.NewAccountService(st, tokens, opts),
		Tokens:             tokens,
		Store:              st,
		Logger:             logger.WithComponent(log.ComponentHTTP),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	logger.Info("Starting ledger server", "port", cfg.Port, "backend", cfg.DataBackend, "version", version)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
