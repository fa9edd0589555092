package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gold-trading-gateway/config"
	httpHandler "gold-trading-gateway/internal/adapter/http/handler"
	"gold-trading-gateway/internal/adapter/pricefeed"
	pgStorage "gold-trading-gateway/internal/adapter/storage/postgres"
	redisStorage "gold-trading-gateway/internal/adapter/storage/redis"
	"gold-trading-gateway/internal/core/ports"
	"gold-trading-gateway/internal/service"
	"gold-trading-gateway/pkg/database"
	"gold-trading-gateway/pkg/logger"

	"github.com/shopspring/decimal"
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
		Msg("Starting Gold Trading Gateway")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// Run schema migrations
	if err := database.RunMigrations(log, cfg.Database.DSN(), "migrations"); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// Initialize repositories
	userRepo := pgStorage.NewUserRepo(pool)
	walletRepo := pgStorage.NewWalletRepo(pool)
	orderRepo := pgStorage.NewOrderRepo(pool)
	txRepo := pgStorage.NewTransactionRepo(pool)
	snapshotRepo := pgStorage.NewSnapshotRepo(pool)
	settingsRepo := pgStorage.NewSettingsRepo(pool)
	transactor := pgStorage.NewTransactor(pool, log)

	// Initialize Redis stores
	tickerCache := redisStorage.NewTickerCache(rdb)

	// Initialize core services
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	// Spot providers: ordered chain, first usable quote wins.
	feedClient := &http.Client{Timeout: cfg.PriceFeed.RequestTimeout}
	spotSource := pricefeed.NewChain(log,
		pricefeed.NewGoldAPIProvider(cfg.PriceFeed.GoldAPIURL, cfg.PriceFeed.GoldAPIKey, feedClient),
		pricefeed.NewMetalsDevProvider(cfg.PriceFeed.MetalsDevURL, cfg.PriceFeed.MetalsDevKey, feedClient),
	)

	// Initialize business services
	locks := service.NewUserLocks()
	authSvc := service.NewAuthService(userRepo, hashSvc, tokenSvc)
	pricingSvc := service.NewPricingService(
		snapshotRepo,
		settingsRepo,
		spotSource,
		tickerCache,
		decimal.NewFromFloat(cfg.PriceFeed.ConversionRate),
		log,
	)
	tradingSvc := service.NewTradingService(walletRepo, orderRepo, txRepo, settingsRepo, pricingSvc, transactor, locks, log)
	fundsSvc := service.NewFundsService(walletRepo, txRepo, transactor, locks, log)
	adminSvc := service.NewAdminService(settingsRepo, orderRepo, log)
	reportingSvc := service.NewReportingService(txRepo, orderRepo, snapshotRepo)

	// Seed charts on a cold start, then keep snapshots fresh in the background.
	if err := pricingSvc.EnsureHistory(ctx); err != nil {
		log.Warn().Err(err).Msg("price history seeding failed, charts may start empty")
	}
	pricingSvc.StartRefreshLoop(ctx)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		PricingSvc:     pricingSvc,
		TradingSvc:     tradingSvc,
		FundsSvc:       fundsSvc,
		AdminSvc:       adminSvc,
		ReportingSvc:   reportingSvc,
		TokenSvc:       tokenSvc,
		UserRepo:       userRepo,
		AdminUsers:     cfg.Admin.List(),
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
