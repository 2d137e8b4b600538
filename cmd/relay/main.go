package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AchilleasB/rentals/marketplace-service/internal/adapters/messaging"
	"github.com/AchilleasB/rentals/marketplace-service/internal/adapters/outbox"
	"github.com/AchilleasB/rentals/marketplace-service/internal/adapters/repository"
	"github.com/AchilleasB/rentals/marketplace-service/internal/adapters/respond"
	"github.com/AchilleasB/rentals/marketplace-service/internal/config"
)

func main() {
	logger := config.NewLogger(os.Stdout, os.Getenv("APP_ENV"), slog.LevelInfo).With("service", "booking-relay")
	slog.SetDefault(logger)
	logger.Info("starting booking event relay")

	cfg, err := config.LoadRelayConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := repository.ConnectPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := repository.EnsureEventSchema(ctx, db); err != nil {
		logger.Error("failed to create event schema", "error", err)
		os.Exit(1)
	}

	broker, err := messaging.NewRabbitMQBroker(cfg.RabbitMQURL, cfg.BookingQueueName)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", "error", err)
		os.Exit(1)
	}
	defer broker.Close()
	logger.Info("connected to rabbitmq", "queue", cfg.BookingQueueName)

	relay := outbox.NewRelay(db, cfg.DatabaseURL, broker, logger)

	healthMux := http.NewServeMux()
	healthMux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		status, code := "UP", http.StatusOK
		if !relay.IsHealthy() {
			status, code = "DOWN", http.StatusServiceUnavailable
		}
		respond.JSON(w, code, map[string]string{"status": status, "component": "booking-relay"})
	})
	healthMux.HandleFunc("GET /health/ready", func(w http.ResponseWriter, r *http.Request) {
		status, code := "UP", http.StatusOK
		if !relay.IsReady() || !broker.IsConnected() {
			status, code = "DOWN", http.StatusServiceUnavailable
		}
		respond.JSON(w, code, map[string]string{"status": status, "component": "booking-relay"})
	})

	healthServer := &http.Server{
		Addr:              ":" + cfg.HealthPort,
		Handler:           healthMux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("starting health server", "port", cfg.HealthPort)
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server error", "error", err)
		}
	}()

	errChan := make(chan error, 1)
	go func() {
		if err := relay.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("received signal, shutting down", "signal", sig.String())
	case err := <-errChan:
		logger.Error("relay worker failed, shutting down", "error", err)
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("error shutting down health server", "error", err)
	}
	logger.Info("shutdown complete")
}
