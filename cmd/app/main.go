package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quizgate/internal/config"
	"quizgate/internal/infra/logging"
	"quizgate/internal/infra/metrics"
	"quizgate/internal/infra/ratelimit"
	red "quizgate/internal/infra/redis"
	"quizgate/internal/infra/security"
	"quizgate/internal/infra/store"
	"quizgate/internal/infra/web"
	"quizgate/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, no sampling)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}
	metrics.MustRegister()

	// ---- Storage ----
	st, err := store.New(cfg.Store.DataDir, cfg.Server.LockTimeout, logger)
	if err != nil {
		log.Fatalf("store: %v", err)
	}

	// ---- Rate limiting ----
	var limiter ratelimit.Limiter
	switch cfg.RateLimit.Backend {
	case "redis":
		redisClient, err := red.NewClient(ctx, &cfg.RateLimit.Redis)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer redisClient.Close()
		limiter = ratelimit.NewRedisLimiter(redisClient)
		logger.Info().Str("backend", "redis").Msg("rate limiter ready")
	default:
		mem := ratelimit.NewMemoryLimiter(st, logger)
		go mem.Sweep(ctx, time.Minute)
		limiter = mem
		logger.Info().Str("backend", "memory").Msg("rate limiter ready")
	}

	// ---- Use cases ----
	codec := security.NewTokenCodec(cfg.Auth.SecretKey)
	activationUC := usecase.NewActivationUseCase(st, codec, cfg.Auth.DefaultGrantDays, cfg.Auth.BindUA, logger)
	adminUC := usecase.NewAdminUseCase(st, codec, cfg.Auth.AdminPassword, cfg.Auth.DefaultGrantDays, cfg.Auth.AdminTokenHours, logger)
	referralUC := usecase.NewReferralUseCase(st, logger)
	analyticsUC := usecase.NewAnalyticsUseCase(st, logger)
	siteUC := usecase.NewSiteUseCase(st, cfg.Content.FreePreviewQuestions, logger)
	catalogUC := usecase.NewCatalogUseCase(st, logger)

	// ---- HTTP server ----
	srv := web.NewServer(
		cfg.Server.Port,
		activationUC, adminUC, referralUC, analyticsUC, siteUC, catalogUC,
		limiter, logger,
	)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
		logger.Info().Msg("shutdown requested")
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
}
