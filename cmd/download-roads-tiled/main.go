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
	"github.com/vnmap-dataprep/internal/infrastructure/overpass"
	"github.com/vnmap-dataprep/internal/pkg/logger"
	"github.com/vnmap-dataprep/internal/repository/cache"
	"github.com/vnmap-dataprep/internal/repository/file"
	"github.com/vnmap-dataprep/internal/repository/postgres"
	"github.com/vnmap-dataprep/internal/usecase"
	"github.com/vnmap-dataprep/internal/worker"
)

const jobName = "download-roads-tiled"

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

	log.Info("Configuration loaded",
		zap.Float64s("bounds", cfg.Roads.Bounds[:]),
		zap.Float64("grid_size", cfg.Roads.GridSize),
		zap.Int("workers", cfg.Roads.Workers),
		zap.Strings("endpoints", cfg.Overpass.Endpoints),
		zap.Int("max_retries", cfg.Overpass.MaxRetries))

	// 3. Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Connect to Redis (optional tile cache)
	var tileCache repository.TileCacheRepository
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(ctx, cfg, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Failed to close Redis connection", zap.Error(err))
			}
		}()
		tileCache = cache.NewTileCacheRepository(redisClient)
	}

	// 5. Connect to PostgreSQL (optional)
	var sink repository.RoadRepository
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
		sink = postgres.NewRoadRepository(db)
	}

	// 6. Initialize use case
	tileUC := usecase.NewRoadTileUseCase(
		overpass.NewOverpassClient(overpass.TileOptions(cfg), log),
		tileCache,
		file.NewDocumentRepository(log),
		sink,
		cfg,
		log,
	)

	// 7. Run
	runner := worker.NewRunner(log, runID, cfg.Metrics.PushgatewayURL)
	err = runner.Run(ctx, worker.NewJob(jobName, func(ctx context.Context) error {
		_, err := tileUC.Run(ctx)
		return err
	}))
	if err != nil {
		log.Fatal("Tiled download failed", zap.Error(err))
	}
}
