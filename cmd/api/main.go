package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stock-trade-ledger/config"
	httpHandler "stock-trade-ledger/internal/adapter/http/handler"
	"stock-trade-ledger/internal/adapter/marketdata"
	pgStorage "stock-trade-ledger/internal/adapter/storage/postgres"
	redisStorage "stock-trade-ledger/internal/adapter/storage/redis"
	"stock-trade-ledger/internal/core/ports"
	"stock-trade-ledger/internal/service"
	"stock-trade-ledger/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load(os.Getenv("STL_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("stock-trade-ledger", cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Stock Trade Ledger")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("jwt.secret must be set")
	}
	if cfg.MarketData.APIKey == "" {
		log.Warn().Msg("market_data.api_key is empty, price lookups will fail")
	}

	ctx := context.Background()

	// PostgreSQL
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	if cfg.Database.Migrate {
		if err := pgStorage.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply schema")
		}
		log.Info().Msg("Schema applied")
	}

	// Redis
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Repositories
	tradeRepo := pgStorage.NewTradeRepo(pool)
	tickerRepo := pgStorage.NewTickerRepo(pool)
	walletRepo := pgStorage.NewWalletRepo()
	holdingRepo := pgStorage.NewHoldingRepo(pool)
	walletLogRepo := pgStorage.NewWalletLogRepo()
	transactor := pgStorage.NewTransactor(pool)

	// Price oracle behind the quote cache
	oracle := marketdata.NewClient(cfg.MarketData, logger.Component(log, "oracle"))
	quoteSvc := service.NewQuoteService(
		oracle,
		redisStorage.NewQuoteCache(rdb),
		cfg.Trading.QuoteRefreshHour,
		logger.Component(log, "quotes"),
	)

	// Core services
	wallets := service.NewWalletLedger(walletRepo, logger.Component(log, "wallet_ledger"))
	holdings := service.NewHoldingsLedger(holdingRepo, logger.Component(log, "holdings_ledger"))
	tradeSvc := service.NewTradeService(
		tradeRepo,
		tickerRepo,
		wallets,
		holdings,
		service.NewAuditLog(walletLogRepo),
		service.NewOrderValidator(),
		quoteSvc,
		transactor,
		logger.Component(log, "executor"),
	)
	orderPageSvc := service.NewOrderPageService(tickerRepo, holdingRepo, wallets, quoteSvc, transactor)
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	switch cfg.Server.Mode {
	case gin.ReleaseMode, gin.TestMode, gin.DebugMode:
		gin.SetMode(cfg.Server.Mode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		TradeSvc:       tradeSvc,
		OrderPageSvc:   orderPageSvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: redisStorage.NewRateLimitStore(rdb),
		HealthCheckers: []ports.HealthChecker{
			pgStorage.NewHealthCheck(pool),
			redisStorage.NewHealthCheck(rdb),
		},
		Logger: logger.Component(log, "http"),
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

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
