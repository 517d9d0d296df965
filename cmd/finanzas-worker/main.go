package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finanzas/internal/amqp"
	"finanzas/internal/config"
	applog "finanzas/internal/log"
	"finanzas/internal/store"
	"finanzas/internal/store/memory"
	"finanzas/internal/store/sqlite"
	"finanzas/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Component: "finanzas-worker",
	})
	applog.SetDefault(logger)

	logger.Info("Starting finanzas-worker")

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	// The worker reads ledgers back to enrich its audit records, so it
	// needs the same store the server writes to.
	var st store.AccountStore
	switch cfg.DataBackend {
	case "sqlite":
		s, err := sqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to open SQLite store", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		st = s
	default:
		st = memory.New()
		logger.Warn("Memory backend shares nothing with the server; audit records will be incomplete")
	}
	defer st.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	auditWorker := worker.NewAuditWorker(st)

	go func() {
		if err := amqpClient.ConsumeTransactionEvents(ctx, auditWorker.HandleTransactionEvent); err != nil {
			if err != context.Canceled {
				logger.Error("Message consumption failed", "error", err)
			}
			cancel()
		}
	}()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	cancel()
	logger.Info("Shutting down worker...")
	time.Sleep(2 * time.Second)
	logger.Info("Worker shutdown complete")
}
