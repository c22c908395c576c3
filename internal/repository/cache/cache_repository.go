package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vnmap-dataprep/internal/domain/repository"
	apperrors "github.com/vnmap-dataprep/internal/pkg/errors"
)

const tileKeyPrefix = "overpass:tile:"

type tileCacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewTileCacheRepository(redis *Redis) repository.TileCacheRepository {
	return &tileCacheRepository{
		client: redis.Client(),
		logger: redis.logger,
	}
}

// TileKey maps a query text to its cache key. Identical queries share an entry,
// so changing road types or the country invalidates old tiles.
func TileKey(query string) string {
	sum := sha1.Sum([]byte(query))
	return tileKeyPrefix + hex.EncodeToString(sum[:])
}

func (r *tileCacheRepository) GetTile(ctx context.Context, query string) ([]byte, error) {
	key := TileKey(query)
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // Cache miss
	}
	if err != nil {
		r.logger.Error("Failed to get tile from cache", zap.String("key", key), zap.Error(err))
		return nil, apperrors.ErrCacheError.Wrapf("get %s: %w", key, err)
	}

	r.logger.Debug("Cache hit", zap.String("key", key))
	return val, nil
}

func (r *tileCacheRepository) SetTile(ctx context.Context, query string, data []byte, ttl time.Duration) error {
	key := TileKey(query)
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		r.logger.Error("Failed to set tile cache", zap.String("key", key), zap.Error(err))
		return apperrors.ErrCacheError.Wrapf("set %s: %w", key, err)
	}

	r.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}
