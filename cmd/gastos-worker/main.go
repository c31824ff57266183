package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"gastos/internal/amqp"
	"gastos/internal/config"
	applog "gastos/internal/log"
	"gastos/internal/sheets"
	gsheet "gastos/internal/sheets/google"
	mem "gastos/internal/sheets/memory"
	"gastos/internal/storage"
	"gastos/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     applog.LevelFromEnv(),
		Component: "gastos-worker",
	})
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// Without a spreadsheet the worker writes to an in-process ledger, which
	// keeps the pipeline observable in local development.
	var (
		appender sheets.ExpenseAppender
		remover  sheets.ExpenseRemover
	)
	if cfg.GoogleSpreadsheetID != "" {
		cli, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		appender, remover = cli, cli
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		ledger := mem.New()
		appender, remover = ledger, ledger
		logger.Info("Google Sheets disabled - exporting to in-memory ledger")
	}

	// AMQP is optional here too: the periodic sweep over the pending backlog
	// is a complete export path, messages only tighten the latency.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
	} else {
		logger.Info("AMQP disabled - relying on the periodic sweep only")
	}

	exportWorker := worker.NewExportWorker(repo, appender, remover, cfg.ExportBatchSize)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Drain anything queued while the worker was down before consuming.
	if err := exportWorker.StartupCheck(ctx); err != nil {
		logger.Error("Startup export check failed", "error", err)
		// keep running, the periodic sweep retries
	}

	g, gctx := errgroup.WithContext(ctx)

	if amqpClient != nil {
		g.Go(func() error {
			err := amqpClient.ConsumeMessages(gctx, exportWorker.HandleExportMessage, exportWorker.HandleDeleteMessage)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(cfg.ExportInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := exportWorker.ProcessPending(gctx); err != nil {
					logger.Error("Periodic export failed", "error", err)
				}
			}
		}
	})

	logger.Info("Worker started",
		"batch_size", cfg.ExportBatchSize,
		"interval", cfg.ExportInterval)

	if err := g.Wait(); err != nil {
		logger.Error("Worker error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
