package postgres

import (
	"context"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/vnmap-dataprep/internal/domain"
	"github.com/vnmap-dataprep/internal/domain/repository"
	"github.com/vnmap-dataprep/internal/pkg/errors"
)

type boundaryRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewBoundaryRepository создает новый экземпляр BoundaryRepository
func NewBoundaryRepository(db *DB) repository.BoundaryRepository {
	return &boundaryRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

// SaveRegions заменяет все границы слоя в одной транзакции
func (r *boundaryRepository) SaveRegions(ctx context.Context, layer string, features []domain.RegionFeature) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.ErrDatabaseError.Wrapf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM region_boundaries WHERE layer = $1`, layer); err != nil {
		r.logger.Error("Failed to clear layer", zap.String("layer", layer), zap.Error(err))
		return errors.ErrDatabaseError.Wrapf("clear layer %s: %w", layer, err)
	}

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO region_boundaries
			(layer, name, type, admin_level, gadm_id, merged_from, bbox, geometry)
		VALUES
			($1, $2, $3, $4, NULLIF($5, ''), $6, $7, ST_SetSRID(ST_GeomFromGeoJSON($8), 4326))
	`)
	if err != nil {
		return errors.ErrDatabaseError.Wrapf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, f := range features {
		geom, err := json.Marshal(f.Geometry)
		if err != nil {
			return errors.ErrInputInvalid.Wrapf("region %s geometry: %w", f.Name, err)
		}

		mergedFrom := f.MergedFrom
		if mergedFrom == nil {
			mergedFrom = []string{}
		}

		_, err = stmt.ExecContext(ctx,
			layer, f.Name, string(f.Type), f.AdminLevel, f.GadmID,
			pq.Array(mergedFrom), pq.Array(f.BBox[:]), string(geom),
		)
		if err != nil {
			r.logger.Error("Failed to insert region",
				zap.String("layer", layer),
				zap.String("name", f.Name),
				zap.Error(err))
			return errors.ErrDatabaseError.Wrapf("insert region %s: %w", f.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.ErrDatabaseError.Wrapf("commit: %w", err)
	}

	r.logger.Info("Regions saved",
		zap.String("layer", layer),
		zap.Int("count", len(features)))
	return nil
}
