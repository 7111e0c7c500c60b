package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"saishi/internal/cli"
	apphttp "saishi/internal/http"
	"saishi/internal/log"
	"saishi/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentApp)

	_, bcfg, be := cli.InitBackend(context.Background(), logger, cfg)

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		Tournaments:        services.NewTournamentService(be.Store, be.Publisher),
		Aggregator:         services.NewAggregator(be.Store),
		Checks:             be.Checks,
		Logger:             logger.WithComponent(log.ComponentHTTP),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		RecentLimit:        cfg.RecentLimit,
	})
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	logger.Info("Starting saishi server",
		"port", cfg.Port,
		"backend", bcfg.Type.String(),
		"sync_publisher", be.Publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
