/**
 * @description
 * This is the main entry point for the integration-service. It wires together
 * configuration, the database pool, the RabbitMQ producer, the StatTaq API
 * client, repositories, services, the replay scheduler, and the HTTP router,
 * then starts the server and handles graceful shutdown.
 */
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/Hempp/gradeup-nil-sub012/internal/api"
	"github.com/Hempp/gradeup-nil-sub012/internal/app"
	"github.com/Hempp/gradeup-nil-sub012/internal/config"
	"github.com/Hempp/gradeup-nil-sub012/internal/store"
	"github.com/Hempp/gradeup-nil-sub012/pkg/rabbitmq"
	"github.com/Hempp/gradeup-nil-sub012/pkg/stattaqclient"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Load .env for local development; in deployment the environment is set
	// by the platform and this is a no-op.
	_ = godotenv.Load()

	// Load application configuration from environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up channel to listen for OS signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Establish connection to the PostgreSQL database
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Error("unable to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = 50
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	// Use simple protocol so the pool works behind PgBouncer transaction
	// pooling without statement cache errors.
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()
	logger.Info("database connection established")

	// Connect the sync-job producer
	producer, err := rabbitmq.NewProducer(cfg.AMQPURL)
	if err != nil {
		logger.Error("unable to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer producer.Close()
	logger.Info("message broker connection established")

	// External provider client
	statTaq := stattaqclient.NewClient(cfg.StatTaqAPIBaseURL, cfg.StatTaqClientID, cfg.StatTaqClientSecret, cfg.StatTaqCallbackURL)

	// Repositories
	events := store.NewEventRepository(dbpool)
	links := store.NewLinkRepository(dbpool)
	verifications := store.NewVerificationRepository(dbpool)
	audits := store.NewAuditRepository(dbpool)

	// Application services
	verifier := app.NewSignatureVerifier(cfg.StatTaqWebhookSecret)
	if cfg.StatTaqWebhookSecret == "" {
		logger.Warn("STATTAQ_WEBHOOK_SECRET is not set; webhook signature verification is skipped")
	}
	pipeline := app.NewPipeline(verifier, events, links, producer)
	verificationSvc := app.NewVerificationService(verifications)
	connectSvc := app.NewConnectService(links, audits, statTaq)

	// Replay scheduler for events that never finished routing
	jobs := app.NewJobs(pipeline, events, logger, cfg)
	scheduler := app.NewScheduler(jobs, logger, cfg)
	scheduler.Start()
	defer scheduler.Stop()

	// HTTP layer
	validate := validator.New()
	router := api.NewRouter(
		api.NewWebhookHandler(pipeline),
		api.NewConnectHandler(connectSvc, validate),
		api.NewVerificationHandler(verificationSvc, validate),
		cfg.JWKSURL,
	)

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

	<-sigCh
	logger.Info("shutdown signal received, gracefully shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	logger.Info("server stopped")
}
