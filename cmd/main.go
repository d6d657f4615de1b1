/**
 * @description
 * This is the main entry point for the geosentinel billing service. It is
 * responsible for initializing all components of the service, including
 * configuration, database connection, the payment provider client, the
 * message broker producer, Redis, repositories, the core application
 * services, the subscription lapse scheduler, and the HTTP server. It wires
 * everything together and starts the service.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/PaulDecu/SaasGeoSentinel-sub001/internal/api"
	"github.com/PaulDecu/SaasGeoSentinel-sub001/internal/app"
	"github.com/PaulDecu/SaasGeoSentinel-sub001/internal/config"
	"github.com/PaulDecu/SaasGeoSentinel-sub001/internal/scheduler"
	"github.com/PaulDecu/SaasGeoSentinel-sub001/internal/store"
	"github.com/PaulDecu/SaasGeoSentinel-sub001/pkg/mollieclient"
	"github.com/PaulDecu/SaasGeoSentinel-sub001/pkg/rabbitmq"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Load application configuration from environment variables
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if strings.TrimSpace(cfg.MollieAPIKey) == "" {
		logger.Error("payment provider api key must be configured", "env", "MOLLIE_API_KEY")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Establish a connection pool to the PostgreSQL database.
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Error("unable to parse database URL", "error", err)
		os.Exit(1)
	}

	// Configure connection pool for high-traffic scenarios
	poolConfig.MaxConns = 100
	poolConfig.MinConns = 20
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	// Disable prepared statement caching to work with PgBouncer transaction pooling
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()
	logger.Info("database connection established")

	// Initialize the RabbitMQ producer to publish billing events. A broker
	// outage must not prevent payments from being accepted, so fall back to
	// a no-op publisher when the dial fails.
	var producer rabbitmq.Publisher
	rabbitProducer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL)
	if err != nil {
		logger.Warn("rabbitmq producer unavailable, using fallback", "error", err)
		producer = &rabbitmq.EventProducerFallback{}
	} else {
		defer rabbitProducer.Close()
		producer = rabbitProducer
		logger.Info("rabbitmq producer connected")
	}

	// Initialize the Redis client used for nearby query rate limiting.
	// Missing Redis degrades to unlimited queries rather than failing boot.
	var redisClient *redis.Client
	if strings.TrimSpace(cfg.RedisURL) == "" {
		logger.Warn("redis url missing, nearby query rate limiting disabled", "env", "REDIS_URL")
	} else {
		redisOptions, parseErr := redis.ParseURL(cfg.RedisURL)
		if parseErr != nil {
			logger.Warn("redis url parse failed, nearby query rate limiting disabled", "error", parseErr)
		} else {
			redisClient = redis.NewClient(redisOptions)
			pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
			if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
				logger.Warn("redis ping failed, nearby query rate limiting disabled", "error", pingErr)
				redisClient.Close()
				redisClient = nil
			} else {
				defer redisClient.Close()
				logger.Info("redis connected")
			}
			cancelPing()
		}
	}

	// Initialize the payment provider client.
	mollieClient := mollieclient.NewClient(cfg.MollieAPIBaseURL, cfg.MollieAPIKey)

	// Initialize application layers.
	repository := store.NewPostgresRepository(dbpool)
	paymentService := app.NewPaymentService(repository, mollieClient, producer, cfg)
	riskService := app.NewRiskService(repository, cfg)

	var limiter *app.RedisQueryRateLimiter
	if redisClient != nil {
		limiter = app.NewRedisQueryRateLimiter(redisClient, cfg.RedisRateLimitPrefix)
	}

	handlers := api.NewHandlers(paymentService, riskService, limiter, cfg.NearbyRateLimitPerMinute)
	router := api.NewRouter(handlers, cfg.JWKSURL)

	// Start the subscription lapse scheduler.
	jobs := scheduler.NewJobs(repository, logger)
	sched, err := scheduler.New(jobs, cfg.SubscriptionLapseSchedule, logger)
	if err != nil {
		logger.Error("invalid lapse schedule", "schedule", cfg.SubscriptionLapseSchedule, "error", err)
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	// Configure and start the HTTP server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	go func() {
		logger.Info("starting server", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for an OS signal
	<-sigCh
	logger.Info("shutdown signal received, gracefully shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	logger.Info("server stopped")
}
