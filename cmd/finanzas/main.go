package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"finanzas/internal/amqp"
	"finanzas/internal/config"
	apphttp "finanzas/internal/http"
	applog "finanzas/internal/log"
	"finanzas/internal/services"
	"finanzas/internal/session"
	"finanzas/internal/store"
	"finanzas/internal/store/memory"
	"finanzas/internal/store/sqlite"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Component: "finanzas",
	})
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	var st store.AccountStore
	switch cfg.DataBackend {
	case "sqlite":
		s, err := sqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to open SQLite store", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		st = s
		logger.Info("Initialized sqlite backend", "path", cfg.SQLiteDBPath)
	default:
		st = memory.New()
		logger.Info("Initialized memory backend")
	}
	defer st.Close()

	// AMQP is optional; without it mutations simply go unpublished.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		publisher = client
		logger.Info("AMQP publishing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	rate := decimal.RequireFromString(cfg.ExchangeRate)
	tracker := services.NewTracker(st, session.NewManager(st), publisher, rate)

	// Pick up the session a previous run left behind, if any.
	if sess, err := tracker.Resume(context.Background()); err == nil {
		logger.Info("Resumed persisted session", "account_id", sess.Account.ID)
	} else if !errors.Is(err, session.ErrNoSession) {
		logger.Warn("Failed to resume persisted session", "error", err)
	}

	srv := apphttp.NewServer(":"+cfg.Port, tracker)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting finanzas server", "port", cfg.Port, "backend", cfg.DataBackend, "rate", rate)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
