package repository

import (
	"context"
	"time"
)

// TileCacheRepository хранит ответы Overpass по тайлам между запусками
type TileCacheRepository interface {
	// GetTile возвращает закешированный ответ; промах кеша - (nil, nil)
	GetTile(ctx context.Context, key string) ([]byte, error)

	// SetTile сохраняет ответ с TTL
	SetTile(ctx context.Context, key string, data []byte, ttl time.Duration) error
}
