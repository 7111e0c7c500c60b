package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/go-co-op/gocron/v2"

	"saishi/internal/amqp"
	"saishi/internal/backend"
	"saishi/internal/cli"
	"saishi/internal/log"
	"saishi/internal/services"
	"saishi/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentWorker)
	logger.Info("Starting saishi-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker", "error_type", log.ErrorTypeConfiguration)
		os.Exit(1)
	}

	bcfg, err := backend.WorkerConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err, "error_type", log.ErrorTypeConfiguration)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	factory := backend.NewFactory(logger.WithComponent(log.ComponentStorage).Logger)
	be, err := factory.CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err)
		os.Exit(1)
	}
	defer be.Cleanup()

	mirror, err := factory.CreateMirror(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize mirror", log.FieldError, err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(be.Store, services.NewAggregator(be.Store), mirror)

	// Messages published while the worker was down are lost to the mirror
	// until a rebuild, so rebuild once before consuming.
	logger.Info("Performing startup reconcile")
	if err := syncWorker.Reconcile(ctx); err != nil {
		logger.LogError(ctx, "Startup reconcile failed", err, log.OpReconcile, nil)
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		logger.Error("Failed to create scheduler", log.FieldError, err)
		os.Exit(1)
	}
	if _, err := syncWorker.Schedule(ctx, scheduler, cfg.SyncInterval); err != nil {
		logger.Error("Failed to schedule reconcile job", log.FieldError, err)
		os.Exit(1)
	}
	scheduler.Start()
	logger.Info("Reconcile job scheduled", "interval", cfg.SyncInterval.String())

	go func() {
		if err := amqpClient.ConsumeTournamentSync(ctx, syncWorker.HandleSyncMessage); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", log.FieldError, err)
		}
		cancel()
	}()

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		cancel()
		if err := scheduler.Shutdown(); err != nil {
			logger.Error("Scheduler shutdown error", log.FieldError, err)
		}
	})

	select {
	case <-shutdownCtx.Done():
		<-done
	case <-ctx.Done():
		if shutdownCtx.Err() != nil {
			<-done
			break
		}
		logger.Warn("Worker stopped without a shutdown signal")
		if err := scheduler.Shutdown(); err != nil {
			logger.Error("Scheduler shutdown error", log.FieldError, err)
		}
	}
	logger.Info("Worker shutdown complete")
}
