package usecase

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vnmap-dataprep/internal/config"
	"github.com/vnmap-dataprep/internal/domain"
	"github.com/vnmap-dataprep/internal/domain/repository"
	"github.com/vnmap-dataprep/internal/grid"
	"github.com/vnmap-dataprep/internal/metrics"
	"github.com/vnmap-dataprep/internal/pkg/errors"
)

const (
	tiledDocVersion = "1.0"
	tiledDocSource  = "OpenStreetMap Overpass (Full Detail)"
)

// tileResult is what a worker hands to the reducer.
type tileResult struct {
	tile   domain.Tile
	groups SegmentGroups
	cached bool
	err    error
}

// RoadTileUseCase downloads the road network tile by tile with a bounded pool
// of workers and folds the results into one document.
type RoadTileUseCase struct {
	client repository.OverpassRepository
	cache  repository.TileCacheRepository
	docs   repository.DocumentRepository
	sink   repository.RoadRepository
	roads  config.RoadsConfig
	ttl    time.Duration
	logger *zap.Logger
}

// NewRoadTileUseCase создает use case потайловой загрузки. cache и sink могут быть nil.
func NewRoadTileUseCase(
	client repository.OverpassRepository,
	cache repository.TileCacheRepository,
	docs repository.DocumentRepository,
	sink repository.RoadRepository,
	cfg *config.Config,
	logger *zap.Logger,
) *RoadTileUseCase {
	return &RoadTileUseCase{
		client: client,
		cache:  cache,
		docs:   docs,
		sink:   sink,
		roads:  cfg.Roads,
		ttl:    cfg.Cache.TileTTL,
		logger: logger,
	}
}

// Run fetches every tile of the configured grid. Failed tiles are reported and
// skipped. On cancellation in-flight fetches are awaited and nothing is written.
func (uc *RoadTileUseCase) Run(ctx context.Context) (*domain.TileReport, error) {
	tiles, err := grid.Partition(uc.roads.Bounds, uc.roads.GridSize)
	if err != nil {
		return nil, err
	}

	report := &domain.TileReport{Total: len(tiles)}
	rows, cols := grid.Dimensions(uc.roads.Bounds, uc.roads.GridSize)
	uc.logger.Info("Starting tiled download",
		zap.Int("tiles", len(tiles)),
		zap.Int("rows", rows),
		zap.Int("cols", cols),
		zap.Int("workers", uc.roads.Workers),
		zap.Float64("grid_size", uc.roads.GridSize),
		zap.Strings("road_types", uc.roads.Types))

	results := make(chan tileResult, uc.roads.Workers)

	var g errgroup.Group
	g.SetLimit(uc.roads.Workers)

	go func() {
		for _, tile := range tiles {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				results <- uc.fetchTile(ctx, tile)
				return nil
			})
		}
		g.Wait()
		close(results)
	}()

	agg := NewSegmentAggregator()
	start := time.Now()
	completed := 0

	for res := range results {
		completed++

		if res.err != nil {
			if ctx.Err() != nil {
				continue
			}
			report.Failed = append(report.Failed, res.tile)
			status := metrics.TileFailed
			if errors.Is(res.err, errors.ErrRateLimitExhausted) {
				status = metrics.TileRateLimited
			}
			metrics.TilesTotal.WithLabelValues(status).Inc()
			uc.logger.Warn("Tile failed, skipping",
				zap.Int("completed", completed),
				zap.Int("total", len(tiles)),
				zap.String("tile", res.tile.String()),
				zap.Error(res.err))
			continue
		}

		agg.Merge(res.groups)
		if res.cached {
			report.Cached++
			metrics.TilesTotal.WithLabelValues(metrics.TileCached).Inc()
		} else {
			report.Fetched++
			metrics.TilesTotal.WithLabelValues(metrics.TileOK).Inc()
		}

		uc.logger.Info("Tile done",
			zap.Int("completed", completed),
			zap.Int("total", len(tiles)),
			zap.String("tile", res.tile.String()),
			zap.Bool("cached", res.cached),
			zap.Int("roads_in_tile", len(res.groups)),
			zap.Int("roads_merged", agg.Len()),
			zap.Duration("elapsed", time.Since(start).Round(100*time.Millisecond)))
	}

	if err := ctx.Err(); err != nil {
		uc.logger.Warn("Download interrupted, no output written",
			zap.Int("completed", completed),
			zap.Int("total", len(tiles)))
		return report, err
	}

	sort.Slice(report.Failed, func(i, j int) bool { return report.Failed[i].Index < report.Failed[j].Index })

	features, err := agg.Features()
	if err != nil {
		return report, err
	}
	report.RoadsMerged = len(features)

	doc := domain.NewDocument(tiledDocVersion, tiledDocSource, "", time.Now(), features)
	size, err := uc.docs.WriteJSON(uc.roads.Output, doc, true)
	if err != nil {
		return report, err
	}
	metrics.RoadFeatures.Set(float64(doc.Total))

	if uc.sink != nil {
		if err := uc.sink.SaveRoads(ctx, doc.Features); err != nil {
			return report, err
		}
	}

	uc.logger.Info("Tiled download finished",
		zap.Int("roads", doc.Total),
		zap.Int("segments", agg.Segments()),
		zap.Int("fetched", report.Fetched),
		zap.Int("cached", report.Cached),
		zap.Int("failed", len(report.Failed)),
		zap.String("output", uc.roads.Output),
		zap.Int64("bytes", size),
		zap.Duration("elapsed", time.Since(start).Round(time.Second)))

	if !report.Complete() {
		failed := make([]string, 0, len(report.Failed))
		for _, t := range report.Failed {
			failed = append(failed, t.String())
		}
		uc.logger.Warn("Coverage is partial", zap.Strings("failed_tiles", failed))

		if uc.roads.FailOnPartial {
			return report, errors.ErrPartialCoverage.Wrapf("%d of %d tiles failed", len(report.Failed), report.Total)
		}
	}

	return report, nil
}

func (uc *RoadTileUseCase) fetchTile(ctx context.Context, tile domain.Tile) tileResult {
	var query string
	if uc.cache != nil {
		query = uc.client.TileQuery(tile)
		if resp, ok := uc.cachedTile(ctx, query); ok {
			return tileResult{tile: tile, groups: GroupElements(resp.Elements), cached: true}
		}
	}

	resp, err := uc.client.FetchTile(ctx, tile)
	if err != nil {
		return tileResult{tile: tile, err: err}
	}

	if uc.cache != nil {
		if data, err := json.Marshal(resp); err == nil {
			if err := uc.cache.SetTile(ctx, query, data, uc.ttl); err != nil {
				uc.logger.Warn("Failed to cache tile", zap.String("tile", tile.String()), zap.Error(err))
			}
		}
	}

	return tileResult{tile: tile, groups: GroupElements(resp.Elements)}
}

func (uc *RoadTileUseCase) cachedTile(ctx context.Context, query string) (*domain.OverpassResponse, bool) {
	data, err := uc.cache.GetTile(ctx, query)
	if err != nil {
		uc.logger.Warn("Tile cache unavailable, fetching", zap.Error(err))
		return nil, false
	}
	if data == nil {
		return nil, false
	}

	var resp domain.OverpassResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		uc.logger.Warn("Corrupt tile cache entry, fetching", zap.Error(err))
		return nil, false
	}
	metrics.TileCacheHitsTotal.Inc()
	return &resp, true
}
