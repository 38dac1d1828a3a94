package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	httpAdapter "github.com/iho/chainvault/internal/adapter/http"
	"github.com/iho/chainvault/internal/adapter/http/handler"
	postgresRepo "github.com/iho/chainvault/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/chainvault/internal/adapter/repository/redis"
	"github.com/iho/chainvault/internal/chain"
	"github.com/iho/chainvault/internal/domain"
	"github.com/iho/chainvault/internal/infrastructure/config"
	"github.com/iho/chainvault/internal/infrastructure/logging"
	"github.com/iho/chainvault/internal/infrastructure/metrics"
	"github.com/iho/chainvault/internal/infrastructure/postgres"
	"github.com/iho/chainvault/internal/infrastructure/redis"
	"github.com/iho/chainvault/internal/reconciler"
	"github.com/iho/chainvault/internal/usecase"
)

func main() {
	// Setup logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	slogger := logging.New(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	ctx := context.Background()

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns, cfg.DatabaseTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Connect to the chain RPC endpoint
	chainClient, err := chain.Dial(ctx, cfg.ChainRPCURL, cfg.ChainID)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to chain RPC")
	}
	defer chainClient.Close()
	log.Info().Int64("chain_id", cfg.ChainID).Str("network", cfg.Network).Msg("connected to chain RPC")

	m := metrics.New()
	chainClient.WithMetrics(m)

	// Key derivation and signing
	keyring, err := chain.NewKeyring(cfg.Mnemonic)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize keyring")
	}

	gasMargin, err := decimal.NewFromString(cfg.GasPriceMargin)
	if err != nil {
		log.Fatal().Err(err).Str("value", cfg.GasPriceMargin).Msg("invalid gas price margin")
	}

	assets := domain.AssetRegistry{
		Native: cfg.NativeSymbol,
		Token:  cfg.TokenSymbol,
	}

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	addressRepo := postgresRepo.NewAddressRepository(pool)
	balanceRepo := postgresRepo.NewBalanceRepository(pool)
	txRepo := postgresRepo.NewTransactionRepository(pool)
	processedRepo := postgresRepo.NewProcessedRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	cache := redisRepo.NewCache(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier()

	// Chain components
	wallet := chain.NewWallet(chainClient, keyring, idGen, assets, cfg.TokenContract, cfg.ChainID, gasMargin)
	detector := chain.NewCachedDetector(
		chain.NewDetector(chainClient, cfg.TokenContract, assets, slogger.Logger),
		cache,
		cfg.DetectionCacheTTL,
		slogger.Logger,
	)

	// Receipt reconciler
	rec := reconciler.New(reconciler.Config{
		TxManager:     txManager,
		TxRepo:        txRepo,
		BalanceRepo:   balanceRepo,
		Client:        chainClient,
		Logger:        slogger.Logger,
		Metrics:       m,
		Interval:      cfg.ReconcileInterval,
		MaxPendingAge: cfg.ReconcileMaxPendingAge,
	})
	if err := rec.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start reconciler")
	}
	defer rec.Stop()

	// Initialize use cases
	addressUC := usecase.NewAddressUseCase(txManager, addressRepo, keyring)
	balanceUC := usecase.NewBalanceUseCase(addressRepo, balanceRepo, txRepo, cfg.ChainID)
	historyUC := usecase.NewHistoryUseCase(addressRepo, txRepo, cfg.ChainID)
	depositUC := usecase.NewDepositUseCase(txManager, addressRepo, balanceRepo, txRepo, processedRepo, detector, idGen, cfg.ChainID).
		WithRetrier(retrier).
		WithMetrics(m)
	withdrawUC := usecase.NewWithdrawUseCase(txManager, addressRepo, balanceRepo, txRepo, processedRepo, wallet, rec, assets, cfg.ChainID).
		WithMetrics(m)

	// Initialize handlers
	addressHandler := handler.NewAddressHandler(addressUC, cfg.Network)
	balanceHandler := handler.NewBalanceHandler(balanceUC, cfg.Network, cfg.NativeSymbol)
	transactionHandler := handler.NewTransactionHandler(depositUC, historyUC, cfg.Network, cfg.NativeSymbol)
	withdrawHandler := handler.NewWithdrawHandler(withdrawUC, cfg.Network)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AddressHandler:     addressHandler,
		BalanceHandler:     balanceHandler,
		TransactionHandler: transactionHandler,
		WithdrawHandler:    withdrawHandler,
		HealthHandler:      healthHandler,
		IdempotencyStore:   idempotencyStore,
		Metrics:            m,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown: stop accepting requests, then stop the
	// reconciler via the deferred Stop.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
