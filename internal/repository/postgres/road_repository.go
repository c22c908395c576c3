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

type roadRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewRoadRepository создает новый экземпляр RoadRepository
func NewRoadRepository(db *DB) repository.RoadRepository {
	return &roadRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

// SaveRoads заменяет содержимое таблицы roads результатом последнего запуска
func (r *roadRepository) SaveRoads(ctx context.Context, features []domain.RoadFeature) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.ErrDatabaseError.Wrapf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `TRUNCATE TABLE roads`); err != nil {
		return errors.ErrDatabaseError.Wrapf("truncate roads: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO roads (name, ref, road_type, bbox, geometry)
		VALUES ($1, $2, $3, $4, ST_SetSRID(ST_GeomFromGeoJSON($5), 4326))
	`)
	if err != nil {
		return errors.ErrDatabaseError.Wrapf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, f := range features {
		geom, err := json.Marshal(f.Geometry)
		if err != nil {
			return errors.ErrInputInvalid.Wrapf("road %s geometry: %w", f.Name, err)
		}

		if _, err := stmt.ExecContext(ctx, f.Name, f.Ref, f.RoadType, pq.Array(f.BBox[:]), string(geom)); err != nil {
			r.logger.Error("Failed to insert road",
				zap.String("name", f.Name),
				zap.String("ref", f.Ref),
				zap.Error(err))
			return errors.ErrDatabaseError.Wrapf("insert road %s/%s: %w", f.Name, f.Ref, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.ErrDatabaseError.Wrapf("commit: %w", err)
	}

	r.logger.Info("Roads saved", zap.Int("count", len(features)))
	return nil
}
