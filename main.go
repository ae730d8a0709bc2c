package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"easyncd/config"
	"easyncd/internal/bootstrap"
	"easyncd/pkg/logger"

	"github.com/joho/godotenv"
)

const shutdownTimeout = 30 * time.Second

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}

	// NewServer initializes the logger from cfg (level, AS_REDACT);
	// logger.Init takes effect only once, so nothing logs before it.
	app, cleanup, err := bootstrap.NewServer(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize server: %v", err)
	}
	defer cleanup()

	if envErr != nil {
		logger.Debug("No .env file found, using environment variables")
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server (timeout: %v)...", shutdownTimeout)

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		done := make(chan error, 1)
		go func() { done <- app.Shutdown() }()

		select {
		case err := <-done:
			if err != nil {
				logger.Error("Error shutting down: %v", err)
			} else {
				logger.Info("Server shut down gracefully")
			}
		case <-ctx.Done():
			logger.Warn("Server shutdown timed out, forcing exit")
			os.Exit(1)
		}
	}()

	logger.Info("Starting server on %s", cfg.ListenAddr)
	if err := app.Listen(cfg.ListenAddr); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
