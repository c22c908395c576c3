package testhelpers

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/vnmap-dataprep/internal/domain/repository"
	"github.com/vnmap-dataprep/internal/repository/postgres"
)

// NewBoundaryRepositoryForTest creates a boundary repository with test database and logger
func NewBoundaryRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.BoundaryRepository {
	return postgres.NewBoundaryRepository(postgres.NewDBForTest(db, logger))
}

// NewRoadRepositoryForTest creates a road repository with test database and logger
func NewRoadRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.RoadRepository {
	return postgres.NewRoadRepository(postgres.NewDBForTest(db, logger))
}
