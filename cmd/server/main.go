package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/finvault/bankd/internal/adapter/http"
	"github.com/finvault/bankd/internal/adapter/http/handler"
	fileRepo "github.com/finvault/bankd/internal/adapter/repository/file"
	postgresRepo "github.com/finvault/bankd/internal/adapter/repository/postgres"
	redisRepo "github.com/finvault/bankd/internal/adapter/repository/redis"
	"github.com/finvault/bankd/internal/infrastructure/auth"
	"github.com/finvault/bankd/internal/infrastructure/config"
	"github.com/finvault/bankd/internal/infrastructure/idgen"
	"github.com/finvault/bankd/internal/infrastructure/logger"
	"github.com/finvault/bankd/internal/infrastructure/postgres"
	"github.com/finvault/bankd/internal/infrastructure/redis"
	"github.com/finvault/bankd/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "bankd",
	})
	log.Logger = appLogger

	if cfg.JWTSecret == "" {
		appLogger.Fatal().Msg("JWT_SECRET must be set")
	}

	ctx := context.Background()

	// Repositories come in two flavors; pick per config.
	var (
		pool            *pgxpool.Pool
		txManager       usecase.TransactionManager
		accountRepo     usecase.AccountRepository
		txnRepo         usecase.TransactionRepository
		transferRepo    usecase.TransferRepository
		userRepo        usecase.UserRepository
		beneficiaryRepo usecase.BeneficiaryRepository
		retrier         usecase.Retrier = usecase.NoopRetrier{}
	)

	switch cfg.StorageDriver {
	case "postgres":
		pool, err = postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns, cfg.DatabaseTimeout)
		if err != nil {
			appLogger.Fatal().Err(err).Msg("failed to connect to postgres")
		}
		defer pool.Close()

		if err := postgres.RunMigrations(cfg.DatabaseURL, "./migrations", appLogger); err != nil {
			appLogger.Fatal().Err(err).Msg("failed to run migrations")
		}
		appLogger.Info().Msg("connected to postgres")

		txManager = postgresRepo.NewTxManager(pool)
		accountRepo = postgresRepo.NewAccountRepository(pool)
		txnRepo = postgresRepo.NewTransactionRepository(pool)
		transferRepo = postgresRepo.NewTransferRepository(pool)
		userRepo = postgresRepo.NewUserRepository(pool)
		beneficiaryRepo = postgresRepo.NewBeneficiaryRepository(pool)
		retrier = postgresRepo.NewRetrier(appLogger)

	case "file":
		store, err := fileRepo.Open(cfg.DataDir)
		if err != nil {
			appLogger.Fatal().Err(err).Msg("failed to open file store")
		}
		appLogger.Info().Str("dir", cfg.DataDir).Msg("opened file store")

		txManager = fileRepo.NewTxManager(store)
		accountRepo = fileRepo.NewAccountRepository(store)
		txnRepo = fileRepo.NewTransactionRepository(store)
		transferRepo = fileRepo.NewTransferRepository(store)
		userRepo = fileRepo.NewUserRepository(store)
		beneficiaryRepo = fileRepo.NewBeneficiaryRepository(store)

	default:
		appLogger.Fatal().Str("driver", cfg.StorageDriver).Msg("unknown storage driver")
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	appLogger.Info().Msg("connected to redis")

	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	cache := redisRepo.NewCache(redisClient)
	loginLimiter := redisRepo.NewLoginLimiter(redisClient, cfg.LoginWindow)

	idGen := idgen.NewULIDGenerator()
	refGen := idgen.NewReferenceGenerator()

	// Initialize use cases
	ledgerUC := usecase.NewLedgerUseCase(accountRepo, txnRepo, idGen)
	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, ledgerUC, idGen, refGen)
	txnUC := usecase.NewTransactionUseCase(txManager, accountRepo, txnRepo, ledgerUC, refGen)
	transferUC := usecase.NewTransferUseCase(txManager, accountRepo, transferRepo, beneficiaryRepo, ledgerUC, idGen, refGen, cache, appLogger)
	userUC := usecase.NewUserUseCase(userRepo, loginLimiter, cfg.LoginMaxAttempts, idGen)
	beneficiaryUC := usecase.NewBeneficiaryUseCase(beneficiaryRepo, accountRepo, idGen)
	reconciliationUC := usecase.NewReconciliationUseCase(txManager, accountRepo, txnRepo, transferRepo, appLogger)

	// Fail transfers stranded pending by a previous crash.
	swept, err := reconciliationUC.SweepStalePending(ctx, cfg.StalePendingAge)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to sweep stale pending transfers")
	}
	if swept > 0 {
		appLogger.Warn().Int("count", swept).Msg("swept stale pending transfers")
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)

	// Initialize handlers
	userHandler := handler.NewUserHandler(userUC, jwtManager)
	accountHandler := handler.NewAccountHandler(accountUC, txnUC)
	txnHandler := handler.NewTransactionHandler(txnUC, accountUC)
	transferHandler := handler.NewTransferHandler(transferUC, accountUC, retrier)
	beneficiaryHandler := handler.NewBeneficiaryHandler(beneficiaryUC)
	reconciliationHandler := handler.NewReconciliationHandler(reconciliationUC, accountUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		UserHandler:           userHandler,
		AccountHandler:        accountHandler,
		TransactionHandler:    txnHandler,
		TransferHandler:       transferHandler,
		BeneficiaryHandler:    beneficiaryHandler,
		ReconciliationHandler: reconciliationHandler,
		HealthHandler:         healthHandler,
		JWTManager:            jwtManager,
		IdempotencyStore:      idempotencyStore,
		IdempotencyTTL:        cfg.IdempotencyTTL,
		Logger:                appLogger,
		RateLimitRPS:          cfg.RateLimitRPS,
		RateLimitBurst:        cfg.RateLimitBurst,
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
		appLogger.Info().Str("port", cfg.HTTPPort).Str("driver", cfg.StorageDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info().Msg("server stopped")
}
