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
	"github.com/vnmap-dataprep/internal/domain/repository"
	"github.com/vnmap-dataprep/internal/mapping"
	"github.com/vnmap-dataprep/internal/pkg/logger"
	"github.com/vnmap-dataprep/internal/repository/file"
	"github.com/vnmap-dataprep/internal/repository/postgres"
	"github.com/vnmap-dataprep/internal/usecase"
	"github.com/vnmap-dataprep/internal/worker"
)

const jobName = "convert-boundaries"

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

	// 4. Load name mapping
	names, err := mapping.LoadNameMap(cfg.Boundary.NameMapFile)
	if err != nil {
		log.Fatal("Failed to load name map", zap.Error(err))
	}

	// 5. Connect to PostgreSQL (optional)
	var sink repository.BoundaryRepository
	if cfg.Database.Enabled {
		db, err := postgres.New(ctx, cfg, log)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Failed to close PostgreSQL connection", zap.Error(err))
			}
		}()
		if err := db.EnsureSchema(ctx); err != nil {
			log.Fatal("Failed to prepare schema", zap.Error(err))
		}
		sink = postgres.NewBoundaryRepository(db)
	}

	// 6. Initialize use case
	convertUC := usecase.NewBoundaryConvertUseCase(
		file.NewDocumentRepository(log),
		sink,
		names,
		cfg.Boundary,
		log,
	)

	// 7. Run
	runner := worker.NewRunner(log, runID, cfg.Metrics.PushgatewayURL)
	err = runner.Run(ctx, worker.NewJob(jobName, func(ctx context.Context) error {
		_, err := convertUC.Convert(ctx)
		return err
	}))
	if err != nil {
		log.Fatal("Conversion failed", zap.Error(err))
	}
}
