package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

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
	CountryName = "Việt Nam"

	LayerGADM = "gadm"
	Layer2025 = "2025"

	gadmDocVersion = "1.0"
	gadmDocSource  = "GADM 4.1 (geodata.ucdavis.edu)"
	gadmDocNote    = "Dữ liệu 63 tỉnh/thành (trước sáp nhập)"

	gadmNameProperty = "NAME_1"
	gadmIDProperty   = "GID_1"
)

// BoundaryConvertUseCase turns the raw GADM country and province layers into
// the application boundary document.
type BoundaryConvertUseCase struct {
	docs   repository.DocumentRepository
	sink   repository.BoundaryRepository
	names  *mapping.NameMap
	cfg    config.BoundaryConfig
	logger *zap.Logger
}

// NewBoundaryConvertUseCase создает use case конвертации GADM. sink может быть nil.
func NewBoundaryConvertUseCase(
	docs repository.DocumentRepository,
	sink repository.BoundaryRepository,
	names *mapping.NameMap,
	cfg config.BoundaryConfig,
	logger *zap.Logger,
) *BoundaryConvertUseCase {
	return &BoundaryConvertUseCase{
		docs:   docs,
		sink:   sink,
		names:  names,
		cfg:    cfg,
		logger: logger,
	}
}

func (uc *BoundaryConvertUseCase) Convert(ctx context.Context) (*domain.Document[domain.RegionFeature], error) {
	var country geojson.FeatureCollection
	if err := uc.docs.ReadJSON(uc.cfg.CountryInput, &country); err != nil {
		return nil, err
	}

	var provinces geojson.FeatureCollection
	if err := uc.docs.ReadJSON(uc.cfg.ProvincesInput, &provinces); err != nil {
		return nil, err
	}

	features := make([]domain.RegionFeature, 0, len(country.Features)+len(provinces.Features))

	for i, f := range country.Features {
		bbox, err := featureBBox(f)
		if err != nil {
			return nil, errors.ErrInputInvalid.Wrapf("%s feature %d: %w", uc.cfg.CountryInput, i, err)
		}

		features = append(features, domain.RegionFeature{
			Name:       CountryName,
			Type:       domain.RegionTypeCountry,
			AdminLevel: domain.AdminLevelCountry,
			BBox:       bbox,
			Geometry:   geojson.NewGeometry(f.Geometry),
		})
		uc.logger.Info("Country converted", zap.String("bbox", formatBBox(bbox)))
	}

	sourceNames := make([]string, 0, len(provinces.Features))
	for i, f := range provinces.Features {
		sourceName := f.Properties.MustString(gadmNameProperty, "")
		sourceNames = append(sourceNames, sourceName)
		name := uc.names.Remap(sourceName)

		bbox, err := featureBBox(f)
		if err != nil {
			return nil, errors.ErrInputInvalid.Wrapf("%s feature %d (%s): %w", uc.cfg.ProvincesInput, i, sourceName, err)
		}

		features = append(features, domain.RegionFeature{
			Name:       name,
			Type:       domain.RegionTypeProvince,
			AdminLevel: domain.AdminLevelProvince,
			GadmID:     f.Properties.MustString(gadmIDProperty, ""),
			BBox:       bbox,
			Geometry:   geojson.NewGeometry(f.Geometry),
		})
		uc.logger.Debug("Province converted",
			zap.String("source_name", sourceName),
			zap.String("name", name),
			zap.String("bbox", formatBBox(bbox)))
	}

	if unmapped := uc.names.Unmapped(sourceNames); len(unmapped) > 0 {
		if uc.cfg.StrictNames {
			return nil, errors.ErrInvalidMapping.Wrapf("names without mapping: %s", strings.Join(unmapped, ", "))
		}
		uc.logger.Warn("Province names kept unchanged, no mapping entry",
			zap.Strings("names", unmapped))
	}

	doc := domain.NewDocument(gadmDocVersion, gadmDocSource, gadmDocNote, time.Now(), features)

	size, err := uc.docs.WriteJSON(uc.cfg.Output, doc, true)
	if err != nil {
		return nil, err
	}
	metrics.RegionFeatures.WithLabelValues(LayerGADM).Set(float64(doc.Total))

	if uc.sink != nil {
		if err := uc.sink.SaveRegions(ctx, LayerGADM, doc.Features); err != nil {
			return nil, err
		}
	}

	uc.logger.Info("Boundaries converted",
		zap.Int("features", doc.Total),
		zap.Int("provinces", len(provinces.Features)),
		zap.String("output", uc.cfg.Output),
		zap.Int64("bytes", size))

	return doc, nil
}

func featureBBox(f *geojson.Feature) (domain.BBox, error) {
	if f == nil {
		return domain.BBox{}, errors.ErrEmptyGeometry
	}
	return geometry.ComputeBBox(f.Geometry)
}

func formatBBox(b domain.BBox) string {
	return fmt.Sprintf("%.2f,%.2f - %.2f,%.2f", b[0], b[1], b[2], b[3])
}
