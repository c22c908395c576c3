package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Tile outcome labels.
const (
	TileOK          = "ok"
	TileCached      = "cached"
	TileFailed      = "failed"
	TileRateLimited = "rate_limited"
)

// Registry holds the job metrics. Batch jobs push it once at the end of a run.
var Registry = prometheus.NewRegistry()

var (
	TilesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vnmap_tiles_total",
		Help: "Tiles processed by outcome",
	}, []string{"status"})
	OverpassRetriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vnmap_overpass_retries_total",
		Help: "Requests re-sent to another mirror after HTTP 429",
	})
	OverpassRateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vnmap_overpass_rate_limited_total",
		Help: "HTTP 429 responses received",
	})
	OverpassRequestDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "vnmap_overpass_request_duration_ms",
		Help:    "Overpass request duration in milliseconds",
		Buckets: []float64{100, 500, 1000, 5000, 15000, 30000, 60000, 120000, 200000},
	})
	TileCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vnmap_tile_cache_hits_total",
		Help: "Tiles served from the tile cache",
	})
	RoadFeatures = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "vnmap_road_features",
		Help: "Road features in the last written document",
	})
	RegionFeatures = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "vnmap_region_features",
		Help: "Region features in the last written document",
	}, []string{"layer"})
	DissolvedUnitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vnmap_dissolved_units_total",
		Help: "Units built by dissolving more than one source region",
	})
)

func init() {
	Registry.MustRegister(TilesTotal)
	Registry.MustRegister(OverpassRetriesTotal)
	Registry.MustRegister(OverpassRateLimitedTotal)
	Registry.MustRegister(OverpassRequestDurationMs)
	Registry.MustRegister(TileCacheHitsTotal)
	Registry.MustRegister(RoadFeatures)
	Registry.MustRegister(RegionFeatures)
	Registry.MustRegister(DissolvedUnitsTotal)
}

// Push sends the registry to a Pushgateway under job and run_id.
func Push(ctx context.Context, gatewayURL, job, runID string) error {
	return push.New(gatewayURL, job).
		Gatherer(Registry).
		Grouping("run_id", runID).
		PushContext(ctx)
}
