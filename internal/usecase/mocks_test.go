package usecase_test

import (
	"context"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/mock"

	"github.com/vnmap-dataprep/internal/domain"
)

// MockOverpassRepository accepts either fixed values or a func(domain.Tile) for
// per-tile answers.
type MockOverpassRepository struct {
	mock.Mock
}

func (m *MockOverpassRepository) TileQuery(tile domain.Tile) string {
	args := m.Called(tile)
	if fn, ok := args.Get(0).(func(domain.Tile) string); ok {
		return fn(tile)
	}
	return args.String(0)
}

func (m *MockOverpassRepository) FetchTile(ctx context.Context, tile domain.Tile) (*domain.OverpassResponse, error) {
	args := m.Called(ctx, tile)
	if fn, ok := args.Get(0).(func(domain.Tile) (*domain.OverpassResponse, error)); ok {
		return fn(tile)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OverpassResponse), args.Error(1)
}

func (m *MockOverpassRepository) Query(ctx context.Context, query string, startIndex int) (*domain.OverpassResponse, error) {
	args := m.Called(ctx, query, startIndex)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OverpassResponse), args.Error(1)
}

func (m *MockOverpassRepository) QueryRaw(ctx context.Context, query string, startIndex int) ([]byte, error) {
	args := m.Called(ctx, query, startIndex)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockTileCacheRepository struct {
	mock.Mock
}

func (m *MockTileCacheRepository) GetTile(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockTileCacheRepository) SetTile(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, data, ttl)
	return args.Error(0)
}

type MockBoundaryRepository struct {
	mock.Mock
}

func (m *MockBoundaryRepository) SaveRegions(ctx context.Context, layer string, features []domain.RegionFeature) error {
	args := m.Called(ctx, layer, features)
	return args.Error(0)
}

type MockRoadRepository struct {
	mock.Mock
}

func (m *MockRoadRepository) SaveRoads(ctx context.Context, features []domain.RoadFeature) error {
	args := m.Called(ctx, features)
	return args.Error(0)
}

type MockDissolver struct {
	mock.Mock
}

func (m *MockDissolver) Dissolve(geoms []orb.Geometry) (orb.Geometry, error) {
	args := m.Called(geoms)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(orb.Geometry), args.Error(1)
}
