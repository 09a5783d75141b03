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

	"tableserve-backend/config"
	"tableserve-backend/internal/adapter/banking"
	"tableserve-backend/internal/adapter/gateway"
	httphandler "tableserve-backend/internal/adapter/http/handler"
	"tableserve-backend/internal/adapter/storage/postgres"
	redisstore "tableserve-backend/internal/adapter/storage/redis"
	"tableserve-backend/internal/service"
	"tableserve-backend/pkg/logger"
)

func main() {
	cfg, err := config.Load(os.Getenv("TSV_CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Database.Migrate {
		if err := postgres.Migrate(cfg.Database.DSN()); err != nil {
			log.Fatal().Err(err).Msg("running migrations")
		}
		log.Info().Msg("migrations applied")
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("connecting to postgres")
	}
	defer pool.Close()

	redisClient, err := redisstore.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("connecting to redis")
	}
	defer redisClient.Close()

	// Storage adapters
	transactor := postgres.NewTransactor(pool)
	walletRepo := postgres.NewWalletRepo(pool)
	txRepo := postgres.NewTransactionRepo(pool)
	bookingRepo := postgres.NewBookingRepo(pool)
	userRepo := postgres.NewUserRepo(pool)
	claimStore := redisstore.NewClaimStore(redisClient)
	rateLimits := redisstore.NewRateLimitStore(redisClient)

	// External clients
	verifier := gateway.NewVerifier(cfg.Gateway)
	accounts := banking.NewProvider(cfg.Banking)

	// Services
	hashSvc := service.NewHashService()
	tokenSvc := service.NewTokenService(cfg.JWT)
	authSvc := service.NewAuthService(userRepo, hashSvc, tokenSvc, log)
	settlementSvc := service.NewSettlementService(
		transactor, txRepo, walletRepo, verifier, claimStore,
		log, cfg.Settlement.VerifyTimeout, cfg.Settlement.ClaimTTL,
	)
	walletSvc := service.NewWalletService(walletRepo, txRepo, userRepo, accounts, log)
	bookingSvc := service.NewBookingService(transactor, bookingRepo, walletRepo, txRepo, walletSvc, settlementSvc, log)
	reconSvc := service.NewReconciliationService(walletRepo, txRepo, log)

	router := httphandler.SetupRouter(httphandler.RouterDeps{
		Auth:       httphandler.NewAuthHandler(authSvc, log),
		Payment:    httphandler.NewPaymentHandler(settlementSvc, log),
		Wallet:     httphandler.NewWalletHandler(walletSvc, reconSvc, log),
		Booking:    httphandler.NewBookingHandler(bookingSvc, log),
		Health:     httphandler.NewHealthHandler(postgres.NewHealth(pool), redisstore.NewHealth(redisClient)),
		Tokens:     tokenSvc,
		RateLimits: rateLimits,
		Logger:     log,
		Mode:       cfg.Server.Mode,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
