package repository

import (
	"context"

	"github.com/vnmap-dataprep/internal/domain"
)

// BoundaryRepository сохраняет административные границы во внешнее хранилище
type BoundaryRepository interface {
	// SaveRegions заменяет слой layer переданными границами
	SaveRegions(ctx context.Context, layer string, features []domain.RegionFeature) error
}
