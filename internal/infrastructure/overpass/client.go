package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/vnmap-dataprep/internal/config"
	"github.com/vnmap-dataprep/internal/domain"
	"github.com/vnmap-dataprep/internal/domain/repository"
	"github.com/vnmap-dataprep/internal/metrics"
	apperrors "github.com/vnmap-dataprep/internal/pkg/errors"
)

const maxErrorBody = 512

// Options configures a client. Endpoints are used round-robin.
type Options struct {
	Endpoints      []string
	RoadTypes      []string
	CountryISO     string
	QueryTimeout   time.Duration
	RequestTimeout time.Duration
	RetryDelay     time.Duration
	MaxRetries     int
}

// TileOptions builds options for the tiled downloader (mirror pool).
func TileOptions(cfg *config.Config) Options {
	return Options{
		Endpoints:      cfg.Overpass.Endpoints,
		RoadTypes:      cfg.Roads.Types,
		CountryISO:     cfg.Overpass.CountryISO,
		QueryTimeout:   cfg.Overpass.QueryTimeout,
		RequestTimeout: cfg.Overpass.RequestTimeout,
		RetryDelay:     cfg.Overpass.RetryDelay,
		MaxRetries:     cfg.Overpass.MaxRetries,
	}
}

// BulkOptions builds options for the single country-wide request.
func BulkOptions(cfg *config.Config) Options {
	opts := TileOptions(cfg)
	opts.Endpoints = []string{cfg.Overpass.BulkEndpoint}
	opts.RoadTypes = DefaultBulkRoadTypes
	opts.QueryTimeout = BulkQueryTimeout
	if opts.RequestTimeout < BulkQueryTimeout {
		opts.RequestTimeout = BulkQueryTimeout + 30*time.Second
	}
	return opts
}

type client struct {
	httpClient *http.Client
	opts       Options
	logger     *zap.Logger
}

// NewOverpassClient создает новый клиент для Overpass API
func NewOverpassClient(opts Options, logger *zap.Logger) repository.OverpassRepository {
	return &client{
		httpClient: &http.Client{
			Timeout: opts.RequestTimeout,
		},
		opts:   opts,
		logger: logger,
	}
}

func (c *client) TileQuery(tile domain.Tile) string {
	return TileQuery(c.opts.CountryISO, c.opts.RoadTypes, c.opts.QueryTimeout, tile)
}

// FetchTile starts the mirror rotation at the tile index so neighbouring tiles
// spread over the pool.
func (c *client) FetchTile(ctx context.Context, tile domain.Tile) (*domain.OverpassResponse, error) {
	resp, err := c.Query(ctx, c.TileQuery(tile), tile.Index)
	if err != nil {
		return nil, fmt.Errorf("tile %d (%s): %w", tile.Index, tile, err)
	}
	return resp, nil
}

func (c *client) Query(ctx context.Context, query string, startIndex int) (*domain.OverpassResponse, error) {
	body, err := c.QueryRaw(ctx, query, startIndex)
	if err != nil {
		return nil, err
	}

	var resp domain.OverpassResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("Failed to decode response", zap.Error(err))
		return nil, apperrors.ErrTileFetchFailed.Wrapf("decode response: %w", err)
	}

	if resp.Remark != "" {
		c.logger.Warn("Overpass returned a remark, result may be truncated",
			zap.String("remark", resp.Remark))
	}

	return &resp, nil
}

// QueryRaw retries HTTP 429 on the next mirror after RetryDelay, at most MaxRetries
// times. Other failures are not retried.
func (c *client) QueryRaw(ctx context.Context, query string, startIndex int) ([]byte, error) {
	if len(c.opts.Endpoints) == 0 {
		return nil, apperrors.ErrInvalidConfig.Wrapf("no overpass endpoints configured")
	}

	form := url.Values{"data": {query}}.Encode()
	attempt := 0

	operation := func() ([]byte, error) {
		endpoint := c.endpoint(startIndex + attempt)
		attempt++

		status, body, err := c.post(ctx, endpoint, form)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, backoff.Permanent(ctxErr)
			}
			c.logger.Error("Failed to execute request",
				zap.String("endpoint", endpoint),
				zap.Error(err))
			return nil, backoff.Permanent(apperrors.ErrTileFetchFailed.Wrapf("%s: %w", endpoint, err))
		}

		switch status {
		case http.StatusOK:
			return body, nil

		case http.StatusTooManyRequests:
			metrics.OverpassRateLimitedTotal.Inc()
			return nil, apperrors.ErrRateLimitExhausted.
				WithDetails(map[string]interface{}{"attempts": attempt, "endpoint": endpoint}).
				Wrapf("%d attempts, last endpoint %s", attempt, endpoint)

		default:
			c.logger.Error("Overpass API returned error",
				zap.String("endpoint", endpoint),
				zap.Int("status_code", status),
				zap.String("body", truncate(body)))
			return nil, backoff.Permanent(
				apperrors.ErrTileFetchFailed.Wrapf("%s: status %d, body: %s", endpoint, status, truncate(body)))
		}
	}

	notify := func(err error, delay time.Duration) {
		metrics.OverpassRetriesTotal.Inc()
		c.logger.Warn("Rate limited, retrying on next mirror",
			zap.String("endpoint", c.endpoint(startIndex+attempt-1)),
			zap.String("next_endpoint", c.endpoint(startIndex+attempt)),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay))
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.opts.RetryDelay), uint64(c.opts.MaxRetries)),
		ctx,
	)

	body, err := backoff.RetryNotifyWithData[[]byte](operation, policy, notify)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrRateLimitExhausted) {
			c.logger.Error("Rate limited, retries exhausted", zap.Int("attempts", attempt))
		}
		return nil, err
	}
	return body, nil
}

func (c *client) endpoint(i int) string {
	n := len(c.opts.Endpoints)
	return c.opts.Endpoints[((i%n)+n)%n]
}

func (c *client) post(ctx context.Context, endpoint, form string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Calling Overpass API", zap.String("endpoint", endpoint))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	metrics.OverpassRequestDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}

	return resp.StatusCode, body, nil
}

func truncate(body []byte) string {
	if len(body) > maxErrorBody {
		return string(body[:maxErrorBody]) + "..."
	}
	return string(body)
}
