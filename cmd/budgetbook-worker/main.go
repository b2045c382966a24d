package main

import (
	"context"
	"errors"
	"os"
	"time"

	"budgetbook/internal/amqp"
	"budgetbook/internal/cache"
	"budgetbook/internal/cli"
	"budgetbook/internal/log"
	"budgetbook/internal/services"
	"budgetbook/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting budgetbook-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	res, err := cli.OpenBackend(context.Background(), logger, cfg)
	if err != nil {
		logger.Error("Failed to open backend", "error", err)
		os.Exit(1)
	}

	exporter := services.NewExportService(cli.Exporters(context.Background(), logger, cfg)...)
	if !exporter.Enabled() {
		logger.Warn("No export destination configured; messages will be acknowledged without exporting")
	}

	var processor *services.ExportProcessor
	if res.Exports != nil {
		processor = services.NewExportProcessor(res.Exports, exporter, services.ExportProcessorConfig{
			PollInterval: cfg.ExportInterval,
			BatchSize:    cfg.ExportBatchSize,
		})
	}

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if processor != nil {
			if err := processor.Stop(ctx); err != nil {
				logger.Warn("Export processor did not stop cleanly", "error", err)
			}
		}
		if amqpClient != nil {
			_ = amqpClient.Close()
		}
		if err := res.Close(); err != nil {
			logger.Warn("Backend cleanup failed", "error", err)
		}
	})

	if c, ok := res.Store.(*cache.Store); ok {
		go c.Janitor(ctx, cfg.CacheTTL)
	}

	if processor != nil {
		if err := processor.Start(ctx); err != nil {
			logger.Error("Failed to start export processor", "error", err)
		}
	} else {
		logger.Info("Backend does not track exports; pending sweep disabled", "backend", cfg.DataBackend)
	}

	if amqpClient != nil {
		w := worker.NewExportWorker(res.Store, exporter, res.Exports)
		go func() {
			if err := amqpClient.ConsumeMonthSaved(ctx, w.HandleMonthSaved); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", "error", err)
			}
		}()
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	<-ctx.Done()
	<-done
}
