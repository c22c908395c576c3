package repository

import (
	"context"

	"github.com/vnmap-dataprep/internal/domain"
)

// RoadRepository сохраняет собранные дороги во внешнее хранилище
type RoadRepository interface {
	SaveRoads(ctx context.Context, features []domain.RoadFeature) error
}
