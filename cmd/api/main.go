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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/AchilleasB/rentals/marketplace-service/internal/adapters/blob"
	"github.com/AchilleasB/rentals/marketplace-service/internal/adapters/cache"
	"github.com/AchilleasB/rentals/marketplace-service/internal/adapters/handler"
	"github.com/AchilleasB/rentals/marketplace-service/internal/adapters/metrics"
	"github.com/AchilleasB/rentals/marketplace-service/internal/adapters/repository"
	"github.com/AchilleasB/rentals/marketplace-service/internal/adapters/respond"
	"github.com/AchilleasB/rentals/marketplace-service/internal/adapters/security"
	"github.com/AchilleasB/rentals/marketplace-service/internal/clock"
	"github.com/AchilleasB/rentals/marketplace-service/internal/config"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/ports"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := config.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, err := repository.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		logger.Error("failed to connect to mongo", "error", err)
		os.Exit(1)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()
	db := mongoClient.Database(cfg.MongoDatabase)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		logger.Error("failed to create mongo indexes", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to mongo", "database", cfg.MongoDatabase)

	mongoCB := repository.NewMongoBreaker()
	identities := repository.NewMongoIdentityRepository(db, mongoCB)
	listings := repository.NewMongoListingRepository(db, mongoCB)
	bookings := repository.NewMongoBookingRepository(db, mongoCB)
	images := blob.NewGridFSStore(db)

	checks := []handler.DependencyCheck{
		{Name: "mongo", Ping: func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }},
	}

	// The event log is optional; without it bookings still work and the
	// history endpoint returns empty histories.
	var events ports.BookingEventStore
	if cfg.DatabaseURL != "" {
		pg, err := repository.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		if err := repository.EnsureEventSchema(ctx, pg); err != nil {
			logger.Error("failed to create event schema", "error", err)
			os.Exit(1)
		}
		events = repository.NewPostgresEventStore(pg)
		checks = append(checks, handler.DependencyCheck{Name: "postgres", Ping: pg.PingContext})
		logger.Info("booking event log enabled")
	} else {
		logger.Warn("DB_CONNECTION_STRING not set, booking event log disabled")
	}

	var revocations ports.TokenRevocations
	if cfg.RedisAddress != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		revocations = cache.NewRedisRevocations(redisClient, time.Now)
		checks = append(checks, handler.DependencyCheck{
			Name: "redis",
			Ping: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
		logger.Info("connected to redis, logout revocation enabled")
	} else {
		logger.Warn("REDIS_ADDRESS not set, logout is client-side only")
	}

	clk := clock.Real()
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	tokens := security.NewJWTTokens(cfg.JWTPrivateKey, cfg.JWTPublicKey, cfg.TokenTTL, clk)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	router := handler.NewRouter(handler.RouterConfig{
		Auth:         services.NewAuthService(identities, hasher, tokens, revocations, logger),
		Registration: services.NewRegistrationService(identities, hasher, tokens, clk),
		Listings: services.NewListingService(listings, identities, images, clk, services.ListingLimits{
			MaxImageBytes: cfg.MaxUploadBytes,
			MaxImages:     services.DefaultMaxImages,
		}, logger),
		Bookings:       services.NewBookingService(bookings, listings, identities, events, clk, logger),
		Admin:          services.NewAdminService(identities, listings, bookings, events, logger),
		Health:         handler.NewHealthHandler(checks...),
		Metrics:        m,
		Errors:         &respond.Errors{Debug: !cfg.IsProduction(), Logger: logger},
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes,
		MaxImages:      services.DefaultMaxImages,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("starting server", "port", cfg.Port, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		logger.Error("server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("error shutting down server", "error", err)
	}
	logger.Info("server stopped")
}
