package postgres_test

import (
	"context"
	"testing"

	"github.com/lib/pq"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/suite"

	"github.com/vnmap-dataprep/internal/domain"
	"github.com/vnmap-dataprep/internal/domain/repository"
	"github.com/vnmap-dataprep/internal/repository/postgres/testhelpers"
)

// BoundaryRepositoryTestSuite tests BoundaryRepository against PostGIS
type BoundaryRepositoryTestSuite struct {
	suite.Suite
	testDB *testhelpers.TestDB
	repo   repository.BoundaryRepository
	ctx    context.Context
}

func (s *BoundaryRepositoryTestSuite) SetupSuite() {
	s.testDB = testhelpers.SetupTestDB(s.T())
	s.repo = testhelpers.NewBoundaryRepositoryForTest(s.testDB.DB, s.testDB.Logger)
}

func (s *BoundaryRepositoryTestSuite) TearDownSuite() {
	if s.testDB != nil {
		s.testDB.Close()
	}
}

func (s *BoundaryRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.Require().NoError(s.testDB.Cleanup(s.ctx))
}

func square(minX, minY, maxX, maxY float64) *geojson.Geometry {
	return geojson.NewGeometry(orb.Polygon{{
		{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY},
	}})
}

func (s *BoundaryRepositoryTestSuite) TestSaveRegions_InsertsLayer() {
	features := []domain.RegionFeature{
		{
			Name:       "Việt Nam",
			Type:       domain.RegionTypeCountry,
			AdminLevel: domain.AdminLevelCountry,
			BBox:       domain.BBox{0, 0, 1, 2},
			Geometry:   square(0, 0, 2, 1),
		},
		{
			Name:       "Tuyên Quang",
			Type:       domain.RegionTypeProvince,
			AdminLevel: domain.AdminLevelProvince,
			MergedFrom: []string{"Hà Giang", "Tuyên Quang"},
			BBox:       domain.BBox{0, 0, 1, 2},
			Geometry:   square(0, 0, 2, 1),
		},
	}

	err := s.repo.SaveRegions(s.ctx, "2025", features)
	s.Require().NoError(err)

	var count int
	s.Require().NoError(s.testDB.DB.Get(&count, `SELECT COUNT(*) FROM region_boundaries WHERE layer = '2025'`))
	s.Equal(2, count)

	var mergedFrom pq.StringArray
	s.Require().NoError(s.testDB.DB.Get(&mergedFrom,
		`SELECT merged_from FROM region_boundaries WHERE layer = '2025' AND name = 'Tuyên Quang'`))
	s.Equal(pq.StringArray{"Hà Giang", "Tuyên Quang"}, mergedFrom)

	var area float64
	s.Require().NoError(s.testDB.DB.Get(&area,
		`SELECT ST_Area(geometry) FROM region_boundaries WHERE layer = '2025' AND name = 'Việt Nam'`))
	s.InDelta(2.0, area, 1e-9)
}

func (s *BoundaryRepositoryTestSuite) TestSaveRegions_ReplacesOnlyItsLayer() {
	old := []domain.RegionFeature{{Name: "A", Type: domain.RegionTypeProvince, AdminLevel: 4, Geometry: square(0, 0, 1, 1)}}
	s.Require().NoError(s.repo.SaveRegions(s.ctx, "gadm", old))
	s.Require().NoError(s.repo.SaveRegions(s.ctx, "2025", old))

	replacement := []domain.RegionFeature{{Name: "B", Type: domain.RegionTypeProvince, AdminLevel: 4, Geometry: square(0, 0, 1, 1)}}
	s.Require().NoError(s.repo.SaveRegions(s.ctx, "2025", replacement))

	var names []string
	s.Require().NoError(s.testDB.DB.Select(&names, `SELECT layer || ':' || name FROM region_boundaries ORDER BY layer, name`))
	s.Equal([]string{"2025:B", "gadm:A"}, names)
}

func TestBoundaryRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(BoundaryRepositoryTestSuite))
}
