package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fuckp0/feedsheild/internal/blocker"
	"github.com/fuckp0/feedsheild/internal/config"
	"github.com/fuckp0/feedsheild/internal/payments"
	"github.com/fuckp0/feedsheild/internal/server"
	"github.com/fuckp0/feedsheild/internal/storage"

	sentrysdk "github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 1. Error reporting (no-op without a DSN)
	if cfg.SentryDSN != "" {
		if err := sentrysdk.Init(sentrysdk.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
			log.Fatalf("Failed to initialize sentry: %v", err)
		}
		defer sentrysdk.Flush(2 * time.Second)
	}

	// 2. Database
	store, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// 3. Background auto-blocker
	tracker := blocker.NewTracker(store)
	runner := blocker.NewRunner(store, tracker, blocker.DefaultInterval)
	runner.Start()

	// 4. HTTP API
	provider := payments.NewStripeProvider(cfg.StripeAPIKey)
	api := server.New(cfg, store, provider)

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: api.Router(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("API listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	// Wait for interrupt or server error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("Received signal %v, initiating graceful shutdown...", sig)
	case err := <-serverErrors:
		log.Printf("Server error: %v, initiating shutdown...", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	if err := runner.Shutdown(shutdownCtx); err != nil {
		log.Printf("Auto-blocker shutdown error: %v", err)
	}
	if err := store.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("Server shutdown complete")
}
