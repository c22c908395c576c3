package repository

import (
	"context"

	"github.com/vnmap-dataprep/internal/domain"
)

// OverpassRepository определяет методы для работы с Overpass API
type OverpassRepository interface {
	// TileQuery возвращает текст запроса для тайла (используется и как ключ кеша)
	TileQuery(tile domain.Tile) string

	// FetchTile загружает дороги в пределах тайла
	FetchTile(ctx context.Context, tile domain.Tile) (*domain.OverpassResponse, error)

	// Query выполняет произвольный запрос, начиная ротацию зеркал с startIndex
	Query(ctx context.Context, query string, startIndex int) (*domain.OverpassResponse, error)

	// QueryRaw выполняет запрос и возвращает тело ответа без изменений
	QueryRaw(ctx context.Context, query string, startIndex int) ([]byte, error)
}
