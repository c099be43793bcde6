package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ledger-service/config"
	natsEvents "ledger-service/internal/adapter/events/nats"
	httpHandler "ledger-service/internal/adapter/http/handler"
	pgStorage "ledger-service/internal/adapter/storage/postgres"
	redisStorage "ledger-service/internal/adapter/storage/redis"
	"ledger-service/internal/core/ports"
	"ledger-service/internal/service"
	"ledger-service/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Ledger Service")

	ctx := context.Background()

	// Run schema migrations before opening the pool
	if cfg.Database.Migrate {
		if err := pgStorage.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}
		log.Info().Msg("Migrations applied")
	}

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	accountRepo := pgStorage.NewAccountRepo(pool)
	journalRepo := pgStorage.NewJournalRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	statementCache := redisStorage.NewStatementCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Optional NATS publisher: empty URL disables journal events.
	var publisher ports.EventPublisher
	if cfg.Nats.URL != "" {
		natsPub, err := natsEvents.NewPublisher(cfg.Nats.URL, cfg.Nats.Subject, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to NATS")
		}
		defer natsPub.Close()
		publisher = natsPub
		log.Info().Str("subject", cfg.Nats.Subject).Msg("NATS publisher connected")
	}

	// Initialize business services
	ledgerSvc := service.NewLedgerService(
		accountRepo,
		journalRepo,
		transactor,
		statementCache,
		publisher,
		cfg.Ledger.AccountCount,
		cfg.Ledger.ApplyMaxRetries,
		cfg.Ledger.ApplyRetryBackoff,
		log,
	)
	statementSvc := service.NewStatementService(
		accountRepo,
		journalRepo,
		transactor,
		statementCache,
		cfg.Ledger.StatementCacheTTL,
		cfg.Ledger.StatementEntries,
		cfg.Ledger.AccountCount,
		log,
	)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		LedgerSvc:      ledgerSvc,
		StatementSvc:   statementSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
