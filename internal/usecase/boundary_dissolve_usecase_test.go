package usecase_test

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vnmap-dataprep/internal/config"
	"github.com/vnmap-dataprep/internal/domain"
	"github.com/vnmap-dataprep/internal/domain/repository"
	"github.com/vnmap-dataprep/internal/geometry"
	"github.com/vnmap-dataprep/internal/mapping"
	apperrors "github.com/vnmap-dataprep/internal/pkg/errors"
	"github.com/vnmap-dataprep/internal/repository/file"
	"github.com/vnmap-dataprep/internal/usecase"
)

func region(name string, regionType domain.RegionType, g orb.Geometry) domain.RegionFeature {
	bbox, _ := geometry.ComputeBBox(g)
	level := domain.AdminLevelProvince
	if regionType == domain.RegionTypeCountry {
		level = domain.AdminLevelCountry
	}
	return domain.RegionFeature{
		Name:       name,
		Type:       regionType,
		AdminLevel: level,
		BBox:       bbox,
		Geometry:   geojson.NewGeometry(g),
	}
}

// dissolveFixture writes a converted document with a country and the unit
// squares A (0..1), B (1..2) sharing an edge, and C (2..3).
func dissolveFixture(t *testing.T, docs repository.DocumentRepository) config.BoundaryConfig {
	t.Helper()
	dir := t.TempDir()
	cfg := config.BoundaryConfig{
		Output:        filepath.Join(dir, "vn_boundaries.json"),
		Output2025:    filepath.Join(dir, "vn_boundaries_2025.json"),
		BBoxPrecision: 4,
	}

	doc := domain.NewDocument("1.0", "test", "", time.Now(), []domain.RegionFeature{
		region("Việt Nam", domain.RegionTypeCountry, orb.MultiPolygon{rect(0, 0, 3, 1)}),
		region("A", domain.RegionTypeProvince, rect(0, 0, 1, 1)),
		region("B", domain.RegionTypeProvince, rect(1, 0, 2, 1)),
		region("C", domain.RegionTypeProvince, rect(2, 0.00005, 3, 1.00001)),
	})
	_, err := docs.WriteJSON(cfg.Output, doc, true)
	require.NoError(t, err)
	return cfg
}

func testPlan(t *testing.T, yaml string) *mapping.MergePlan {
	t.Helper()
	plan, err := mapping.ParseMergePlan([]byte(yaml))
	require.NoError(t, err)
	return plan
}

const abPlan = `
name: test
units:
  - name: AB
    sources: [A, B]
  - name: Ghost
    sources: [Nowhere]
`

func TestBoundaryDissolveUseCase_Dissolve(t *testing.T) {
	logger := zap.NewNop()
	docs := file.NewDocumentRepository(logger)
	ctx := context.Background()

	t.Run("adjacent squares dissolve into one polygon", func(t *testing.T) {
		cfg := dissolveFixture(t, docs)
		sink := &MockBoundaryRepository{}
		sink.On("SaveRegions", ctx, usecase.Layer2025, mock.MatchedBy(func(f []domain.RegionFeature) bool {
			return len(f) == 3
		})).Return(nil)

		uc := usecase.NewBoundaryDissolveUseCase(docs, sink, testPlan(t, abPlan), geometry.NewOverlayDissolver(), cfg, logger)

		doc, err := uc.Dissolve(ctx)
		require.NoError(t, err)

		assert.Equal(t, "2.1", doc.Version)
		assert.Equal(t, "GADM 4.1 (simplified/smoothed) - Dissolved", doc.Source)
		assert.Equal(t, "2 đơn vị hành chính - Quy hoạch 2025 (Đã xóa biên giới trong)", doc.Note)
		require.Equal(t, 3, doc.Total)

		assert.Equal(t, "Việt Nam", doc.Features[0].Name)
		assert.True(t, doc.Features[0].IsCountry())

		ab := doc.Features[1]
		assert.Equal(t, "AB", ab.Name)
		assert.Equal(t, []string{"A", "B"}, ab.MergedFrom)
		poly, ok := ab.Geometry.Geometry().(orb.Polygon)
		require.True(t, ok, "got %T", ab.Geometry.Geometry())
		assert.Len(t, poly, 1)
		assert.InDelta(t, 2.0, math.Abs(planar.Area(poly)), 1e-9)
		assert.Equal(t, domain.BBox{0, 0, 1, 2}, ab.BBox)

		c := doc.Features[2]
		assert.Equal(t, "C", c.Name)
		assert.Nil(t, c.MergedFrom)
		assert.InDelta(t, 0.0, c.BBox.MinLat(), 1e-12)
		assert.InDelta(t, 1.0001, c.BBox.MaxLat(), 1e-12)
		assert.GreaterOrEqual(t, c.BBox.MaxLat(), 1.00001)

		raw, err := os.ReadFile(cfg.Output2025)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "\n", "output is compact")
		assert.NotContains(t, string(raw), `"merged_from":null`)

		sink.AssertExpectations(t)
	})

	t.Run("single source is kept as is", func(t *testing.T) {
		cfg := dissolveFixture(t, docs)
		dissolver := &MockDissolver{}

		plan := testPlan(t, `
units:
  - name: Only A
    sources: [A, Gone]
`)
		uc := usecase.NewBoundaryDissolveUseCase(docs, nil, plan, dissolver, cfg, logger)

		doc, err := uc.Dissolve(ctx)
		require.NoError(t, err)

		assert.Equal(t, "Only A", doc.Features[1].Name)
		assert.Nil(t, doc.Features[1].MergedFrom)
		assert.Equal(t, []string{"Việt Nam", "Only A", "B", "C"}, names(doc.Features))
		dissolver.AssertNotCalled(t, "Dissolve", mock.Anything)
	})

	t.Run("dissolve failure aborts without output", func(t *testing.T) {
		cfg := dissolveFixture(t, docs)
		dissolver := &MockDissolver{}
		dissolver.On("Dissolve", mock.Anything).
			Return(nil, apperrors.ErrDissolveFailed.Wrapf("topology exception"))

		uc := usecase.NewBoundaryDissolveUseCase(docs, nil, testPlan(t, abPlan), dissolver, cfg, logger)

		doc, err := uc.Dissolve(ctx)
		assert.Nil(t, doc)
		assert.True(t, errors.Is(err, apperrors.ErrDissolveFailed))
		assert.Contains(t, err.Error(), `"AB"`)

		_, statErr := os.Stat(cfg.Output2025)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("missing converted document", func(t *testing.T) {
		cfg := config.BoundaryConfig{
			Output:     filepath.Join(t.TempDir(), "absent.json"),
			Output2025: filepath.Join(t.TempDir(), "out.json"),
		}
		uc := usecase.NewBoundaryDissolveUseCase(docs, nil, testPlan(t, abPlan), geometry.NewOverlayDissolver(), cfg, logger)

		_, err := uc.Dissolve(ctx)
		assert.True(t, errors.Is(err, apperrors.ErrInputNotFound))
	})
}

func names(features []domain.RegionFeature) []string {
	out := make([]string, 0, len(features))
	for _, f := range features {
		out = append(out, f.Name)
	}
	return out
}
