package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vnmap-dataprep/internal/config"
	"github.com/vnmap-dataprep/internal/infrastructure/overpass"
	"github.com/vnmap-dataprep/internal/pkg/logger"
	"github.com/vnmap-dataprep/internal/repository/file"
	"github.com/vnmap-dataprep/internal/usecase"
	"github.com/vnmap-dataprep/internal/worker"
)

const jobName = "download-roads"

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	baseLog, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer baseLog.Sync()

	runID := uuid.NewString()
	log := logger.WithRun(baseLog, jobName, runID)

	// 3. Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Initialize Overpass client for the bulk endpoint
	opts := overpass.BulkOptions(cfg)
	client := overpass.NewOverpassClient(opts, log)
	query := overpass.BulkQuery(opts.CountryISO, opts.RoadTypes, opts.QueryTimeout)

	log.Info("Configuration loaded",
		zap.Strings("endpoints", opts.Endpoints),
		zap.Strings("road_types", opts.RoadTypes),
		zap.String("output", cfg.Roads.BulkOutput))

	// 5. Initialize use case
	bulkUC := usecase.NewRoadBulkUseCase(
		client,
		file.NewDocumentRepository(log),
		query,
		cfg.Roads.BulkOutput,
		log,
	)

	// 6. Run
	runner := worker.NewRunner(log, runID, cfg.Metrics.PushgatewayURL)
	err = runner.Run(ctx, worker.NewJob(jobName, func(ctx context.Context) error {
		_, err := bulkUC.Download(ctx)
		return err
	}))
	if err != nil {
		log.Fatal("Download failed", zap.Error(err))
	}
}
