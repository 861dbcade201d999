package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"moneytracker/internal/amqp"
	"moneytracker/internal/auth"
	"moneytracker/internal/cli"
	apphttp "moneytracker/internal/http"
	"moneytracker/internal/log"
	"moneytracker/internal/report"
	"moneytracker/internal/services"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentApp)
	logger.Info("Starting moneytracker", log.FieldOperation, log.OpStartup)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	if cfg.SeedOnStart {
		if _, err := cli.Seed(ctx, logger, repo); err != nil {
			logger.Error("Failed to seed categories", log.FieldError, err)
			os.Exit(1)
		}
	}

	// Events are best effort: without a broker the app keeps working and
	// simply does not export.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to connect to AMQP, transaction events disabled", log.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
			logger.Info("AMQP publisher ready", "exchange", cfg.AMQPExchange)
		}
	}

	deps := apphttp.Dependencies{
		Store:        repo,
		Users:        auth.NewPasswordAuthenticator(repo),
		Sessions:     auth.NewSessionManager(cfg.SessionSecret, cfg.SessionTTL, cfg.SecureCookies),
		Transactions: services.NewTransactionService(repo, publisher),
		Categories:   services.NewCategoryService(repo),
		Reports:      report.NewAggregator(repo),
	}
	srv, err := apphttp.NewServer(":"+cfg.Port, deps, apphttp.Options{
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})
	if err != nil {
		logger.Error("Failed to build HTTP server", log.FieldError, err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully", log.FieldOperation, log.OpShutdown)
}
