package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/agencyledger/internal/adapter/http"
	"github.com/iho/agencyledger/internal/adapter/http/handler"
	apimiddleware "github.com/iho/agencyledger/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/agencyledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/agencyledger/internal/adapter/repository/redis"
	"github.com/iho/agencyledger/internal/infrastructure/auth"
	"github.com/iho/agencyledger/internal/infrastructure/config"
	"github.com/iho/agencyledger/internal/infrastructure/logger"
	"github.com/iho/agencyledger/internal/infrastructure/metrics"
	"github.com/iho/agencyledger/internal/infrastructure/postgres"
	"github.com/iho/agencyledger/internal/infrastructure/redis"
	"github.com/iho/agencyledger/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if cfg.MigrationsPath != "" {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	appMetrics := metrics.New()

	txManager := postgresRepo.NewTxManager(pool)
	bookingRepo := postgresRepo.NewBookingRepository(pool)
	paymentRepo := postgresRepo.NewPaymentRepository(pool)
	issuerRepo := postgresRepo.NewIssuerRepository(pool)
	issuerPayRepo := postgresRepo.NewIssuerPaymentRepository(pool)
	treasuryRepo := postgresRepo.NewTreasuryRepository(pool)
	expenseRepo := postgresRepo.NewExpenseRepository(pool)
	advanceRepo := postgresRepo.NewAdvanceRepository(pool)
	userRepo := postgresRepo.NewUserRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier()

	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	treasuryUC := usecase.NewTreasuryUseCase(txManager, treasuryRepo, auditRepo, idGen, appMetrics).
		WithRetrier(retrier)
	bookingUC := usecase.NewBookingUseCase(txManager, bookingRepo, treasuryUC, auditRepo, idGen, appMetrics)
	cancellationUC := usecase.NewCancellationUseCase(txManager, bookingRepo, treasuryUC, auditRepo, idGen, appMetrics)
	paymentUC := usecase.NewPaymentUseCase(txManager, bookingRepo, paymentRepo, treasuryUC, auditRepo, idGen, appMetrics)
	issuerUC := usecase.NewIssuerUseCase(txManager, issuerRepo, issuerPayRepo, bookingRepo, treasuryUC, auditRepo, idGen, cache, appMetrics)
	expenseUC := usecase.NewExpenseUseCase(txManager, expenseRepo, treasuryUC, auditRepo, idGen, appMetrics)
	advanceUC := usecase.NewAdvanceUseCase(txManager, advanceRepo, treasuryUC, auditRepo, idGen, appMetrics)
	userUC := usecase.NewUserUseCase(userRepo, auditRepo, idGen)

	var jwtManager *auth.JWTManager
	if cfg.AuthEnabled {
		if cfg.JWTSecret == "" {
			log.Fatal().Msg("AUTH_ENABLED requires JWT_SECRET to be set")
		}
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		BookingHandler:   handler.NewBookingHandler(bookingUC, cancellationUC),
		PaymentHandler:   handler.NewPaymentHandler(paymentUC),
		TreasuryHandler:  handler.NewTreasuryHandler(treasuryUC),
		IssuerHandler:    handler.NewIssuerHandler(issuerUC),
		ExpenseHandler:   handler.NewExpenseHandler(expenseUC),
		AdvanceHandler:   handler.NewAdvanceHandler(advanceUC),
		AuthHandler:      handler.NewAuthHandler(userUC, jwtManager),
		UserHandler:      handler.NewUserHandler(userUC),
		AuditHandler:     handler.NewAuditHandler(auditRepo),
		HealthHandler:    handler.NewHealthHandler(pool, redisClient),
		JWTManager:       jwtManager,
		IdempotencyStore: idempotencyStore,
		RateLimiter:      apimiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		Logging:          apimiddleware.NewLoggingMiddleware(appLogger),
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
