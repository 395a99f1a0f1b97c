package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/existflow/deadlines/internal/config"
	"github.com/existflow/deadlines/internal/logger"
	"github.com/existflow/deadlines/internal/storage"
	"github.com/existflow/deadlines/internal/store"
	"github.com/existflow/deadlines/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load config, using defaults: %v", err)
		cfg = config.DefaultConfig()
	}

	if err := logger.Init(logger.Config{
		Level:      logger.ParseLevel(cfg.LogLevel),
		FilePath:   cfg.LogFile,
		MaxSize:    10 * 1024 * 1024, // 10MB
		MaxBackups: 5,
		Console:    true,
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	err = run(cfg)
	if err != nil {
		logger.Error("Server exited with error", logger.F("error", err))
	}
	_ = logger.Close()
	if err != nil {
		os.Exit(1)
	}
}

// run serves until SIGINT/SIGTERM; every deferred cleanup runs before it returns
func run(cfg *config.Config) error {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}

	opts := []store.Option{
		store.WithKey(cfg.Storage.Key),
		store.WithPersistEmpty(cfg.PersistEmpty),
	}
	if !cfg.Seed {
		opts = append(opts, store.NoSeed())
	}
	st := store.New(kv, opts...)
	if _, err := st.Load(ctx); err != nil {
		_ = st.Close()
		return fmt.Errorf("failed to load deadlines: %w", err)
	}

	srv := server.New(st, server.Options{})
	defer func() {
		if err := srv.Close(); err != nil {
			logger.Error("Error closing server", logger.F("error", err))
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Deadlines server starting", logger.F("port", port), logger.F("storage", cfg.Storage.Driver))
		if err := srv.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown failed", logger.F("error", err))
	}
	logger.Info("Deadlines server stopped")
	return serveErr
}
