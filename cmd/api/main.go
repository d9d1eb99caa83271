package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"donation-ledger/config"
	httpHandler "donation-ledger/internal/adapter/http/handler"
	"donation-ledger/internal/adapter/provider"
	pgStorage "donation-ledger/internal/adapter/storage/postgres"
	redisStorage "donation-ledger/internal/adapter/storage/redis"
	"donation-ledger/internal/core/ports"
	"donation-ledger/internal/service"
	"donation-ledger/pkg/logger"
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
		Msg("Starting Donation Ledger")

	ctx := context.Background()

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
	paymentRepo := pgStorage.NewPaymentRepo(pool)
	donationRepo := pgStorage.NewDonationRepo(pool)
	walletRepo := pgStorage.NewWalletRepo(pool)
	ledgerRepo := pgStorage.NewLedgerRepo(pool)
	pointsRepo := pgStorage.NewPointsRepo(pool)
	statsRepo := pgStorage.NewStatsRepo(pool)
	notifRepo := pgStorage.NewNotificationRepo(pool)
	quarRepo := pgStorage.NewQuarantineRepo(pool)
	conflictRepo := pgStorage.NewConflictRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	settlementCache := redisStorage.NewSettlementCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize provider gateways
	sigSvc := service.NewHMACSignatureService()
	httpClient := &http.Client{Timeout: 10 * time.Second}
	gatewayLog := logger.WithComponent(log, "gateway")
	registry := provider.NewRegistry(
		provider.NewMpesaGateway(cfg.Providers.Mpesa, sigSvc, httpClient, gatewayLog),
		provider.NewFlowGateway(cfg.Providers.Flow, sigSvc, httpClient, gatewayLog),
		provider.NewTillGateway(cfg.Providers.Till, httpClient, gatewayLog),
	)

	// Initialize core services
	identitySvc := service.NewJWTIdentityVerifier(cfg.Identity.JWTSecret, cfg.Identity.Issuer)
	projectorSvc := service.NewProjectorService(
		walletRepo,
		ledgerRepo,
		pointsRepo,
		statsRepo,
		notifRepo,
		cfg.Reconcile.PointsUnit,
		cfg.Reconcile.LevelThresholds,
		logger.WithComponent(log, "projector"),
	)
	reconcileSvc := service.NewReconciliationService(
		paymentRepo,
		donationRepo,
		quarRepo,
		conflictRepo,
		projectorSvc,
		settlementCache,
		transactor,
		logger.WithComponent(log, "reconciler"),
	)
	initiationSvc := service.NewInitiationService(paymentRepo, donationRepo, registry, transactor, logger.WithComponent(log, "initiation"))
	reportingSvc := service.NewReportingService(donationRepo, walletRepo, ledgerRepo, statsRepo, logger.WithComponent(log, "reporting"))

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		InitiationSvc:  initiationSvc,
		ReconcileSvc:   reconcileSvc,
		ReportingSvc:   reportingSvc,
		Gateways:       registry,
		Verifier:       registry.RedirectVerifier(),
		IdentitySvc:    identitySvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		SuccessURL:     cfg.Reconcile.SuccessURL,
		FailureURL:     cfg.Reconcile.FailureURL,
		Logger:         log,
	})

	// Start the polling fallback: provider-side sweeps plus quarantine drain.
	pollCtx, stopPoller := context.WithCancel(ctx)
	poller := service.NewPoller(
		registry.PollSources(),
		reconcileSvc,
		quarRepo,
		cfg.Reconcile.PollInterval,
		cfg.Reconcile.PollWindow,
		logger.WithComponent(log, "poller"),
	)
	go poller.Run(pollCtx)

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

	stopPoller()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
