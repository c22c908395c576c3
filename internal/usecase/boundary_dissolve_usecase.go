package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/vnmap-dataprep/internal/config"
	"github.com/vnmap-dataprep/internal/domain"
	"github.com/vnmap-dataprep/internal/domain/repository"
	"github.com/vnmap-dataprep/internal/geometry"
	"github.com/vnmap-dataprep/internal/mapping"
	"github.com/vnmap-dataprep/internal/metrics"
	"github.com/vnmap-dataprep/internal/pkg/errors"
)

const (
	dissolvedDocVersion = "2.1"
	dissolvedDocSource  = "GADM 4.1 (simplified/smoothed) - Dissolved"
	dissolvedDocNote    = "%d đơn vị hành chính - Quy hoạch 2025 (Đã xóa biên giới trong)"
)

// BoundaryDissolveUseCase builds the post-merger layout from the converted
// boundary document and a merge plan.
type BoundaryDissolveUseCase struct {
	docs      repository.DocumentRepository
	sink      repository.BoundaryRepository
	plan      *mapping.MergePlan
	dissolver geometry.Dissolver
	cfg       config.BoundaryConfig
	logger    *zap.Logger
}

// NewBoundaryDissolveUseCase создает use case объединения провинций. sink может быть nil.
func NewBoundaryDissolveUseCase(
	docs repository.DocumentRepository,
	sink repository.BoundaryRepository,
	plan *mapping.MergePlan,
	dissolver geometry.Dissolver,
	cfg config.BoundaryConfig,
	logger *zap.Logger,
) *BoundaryDissolveUseCase {
	return &BoundaryDissolveUseCase{
		docs:      docs,
		sink:      sink,
		plan:      plan,
		dissolver: dissolver,
		cfg:       cfg,
		logger:    logger,
	}
}

// Dissolve fails as a whole when any union fails; no output is written then.
func (uc *BoundaryDissolveUseCase) Dissolve(ctx context.Context) (*domain.Document[domain.RegionFeature], error) {
	var src domain.Document[domain.RegionFeature]
	if err := uc.docs.ReadJSON(uc.cfg.Output, &src); err != nil {
		return nil, err
	}

	var country *domain.RegionFeature
	provinces := make(map[string]orb.Geometry)
	order := make([]string, 0, len(src.Features))
	for i := range src.Features {
		f := &src.Features[i]
		if f.Geometry == nil || f.Geometry.Geometry() == nil {
			return nil, errors.ErrInputInvalid.Wrapf("%s: feature %q has no geometry", uc.cfg.Output, f.Name)
		}
		if f.IsCountry() {
			country = f
			continue
		}
		if _, dup := provinces[f.Name]; !dup {
			order = append(order, f.Name)
		}
		provinces[f.Name] = f.Geometry.Geometry()
	}

	missing, err := uc.plan.Check(order)
	if err != nil {
		return nil, err
	}
	owners := uc.plan.SourceOwners()
	for _, name := range missing {
		uc.logger.Warn("Merge plan source not found in input",
			zap.String("source", name),
			zap.String("unit", owners[name]))
	}

	features := make([]domain.RegionFeature, 0, len(uc.plan.Units)+len(order)+1)

	if country != nil {
		feature, err := uc.regionFeature(CountryName, domain.RegionTypeCountry, country.Geometry.Geometry(), nil)
		if err != nil {
			return nil, err
		}
		features = append(features, feature)
	}

	processed := make(map[string]struct{}, len(order))
	skipped := 0

	for _, unit := range uc.plan.Units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var (
			geoms []orb.Geometry
			found []string
		)
		for _, name := range unit.Sources {
			if g, ok := provinces[name]; ok {
				geoms = append(geoms, g)
				found = append(found, name)
				processed[name] = struct{}{}
			}
		}

		if len(geoms) == 0 {
			skipped++
			uc.logger.Warn("Unit skipped, no source province found",
				zap.String("unit", unit.Name),
				zap.Strings("sources", unit.Sources))
			continue
		}

		merged := geoms[0]
		var mergedFrom []string
		if len(geoms) > 1 {
			merged, err = uc.dissolver.Dissolve(geoms)
			if err != nil {
				uc.logger.Error("Failed to dissolve unit",
					zap.String("unit", unit.Name),
					zap.Strings("sources", found),
					zap.Error(err))
				return nil, fmt.Errorf("unit %q: %w", unit.Name, err)
			}
			mergedFrom = found
			metrics.DissolvedUnitsTotal.Inc()
		}

		feature, err := uc.regionFeature(unit.Name, domain.RegionTypeProvince, merged, mergedFrom)
		if err != nil {
			return nil, err
		}
		features = append(features, feature)

		uc.logger.Debug("Unit built",
			zap.String("unit", unit.Name),
			zap.Strings("merged_from", mergedFrom))
	}

	kept := 0
	for _, name := range order {
		if _, ok := processed[name]; ok {
			continue
		}
		feature, err := uc.regionFeature(name, domain.RegionTypeProvince, provinces[name], nil)
		if err != nil {
			return nil, err
		}
		features = append(features, feature)
		kept++
		uc.logger.Info("Province kept unchanged, not in merge plan", zap.String("name", name))
	}

	units := 0
	for i := range features {
		if !features[i].IsCountry() {
			units++
		}
	}

	doc := domain.NewDocument(dissolvedDocVersion, dissolvedDocSource, fmt.Sprintf(dissolvedDocNote, units), time.Now(), features)

	size, err := uc.docs.WriteJSON(uc.cfg.Output2025, doc, false)
	if err != nil {
		return nil, err
	}
	metrics.RegionFeatures.WithLabelValues(Layer2025).Set(float64(doc.Total))

	if uc.sink != nil {
		if err := uc.sink.SaveRegions(ctx, Layer2025, doc.Features); err != nil {
			return nil, err
		}
	}

	uc.logger.Info("Boundaries dissolved",
		zap.Int("features", doc.Total),
		zap.Int("units", units),
		zap.Int("skipped_units", skipped),
		zap.Int("unplanned_provinces", kept),
		zap.String("output", uc.cfg.Output2025),
		zap.Int64("bytes", size))

	return doc, nil
}

func (uc *BoundaryDissolveUseCase) regionFeature(
	name string,
	regionType domain.RegionType,
	g orb.Geometry,
	mergedFrom []string,
) (domain.RegionFeature, error) {
	bbox, err := geometry.ComputeBBox(g)
	if err != nil {
		return domain.RegionFeature{}, errors.ErrInputInvalid.Wrapf("%s: %w", name, err)
	}

	level := domain.AdminLevelProvince
	if regionType == domain.RegionTypeCountry {
		level = domain.AdminLevelCountry
	}

	return domain.RegionFeature{
		Name:       name,
		Type:       regionType,
		AdminLevel: level,
		MergedFrom: mergedFrom,
		BBox:       geometry.RoundBBoxOutward(bbox, uc.cfg.BBoxPrecision),
		Geometry:   geojson.NewGeometry(g),
	}, nil
}
