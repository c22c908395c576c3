package grid

import (
	"errors"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnmap-dataprep/internal/domain"
	apperrors "github.com/vnmap-dataprep/internal/pkg/errors"
)

func TestPartition_VietnamDefaults(t *testing.T) {
	tiles, err := Partition(domain.BBox{8, 102, 24, 110}, 0.5)
	require.NoError(t, err)

	// 16 degrees of latitude and 8 of longitude at 0.5 degrees.
	assert.Len(t, tiles, 32*16)

	first := tiles[0]
	assert.Equal(t, 0, first.Index)
	assert.Equal(t, 8.0, first.Lat)
	assert.Equal(t, 102.0, first.Lon)

	last := tiles[len(tiles)-1]
	assert.Equal(t, len(tiles)-1, last.Index)
	assert.InDelta(t, 23.5, last.Lat, 1e-9)
	assert.InDelta(t, 109.5, last.Lon, 1e-9)
}

func TestPartition_OvershootLastCell(t *testing.T) {
	bounds := domain.BBox{0, 0, 1.2, 0.7}
	tiles, err := Partition(bounds, 0.5)
	require.NoError(t, err)

	rows, cols := Dimensions(bounds, 0.5)
	assert.Equal(t, 3, rows)
	assert.Equal(t, 2, cols)
	assert.Len(t, tiles, rows*cols)

	last := tiles[len(tiles)-1].BBox()
	assert.GreaterOrEqual(t, last.MaxLat(), bounds.MaxLat())
	assert.GreaterOrEqual(t, last.MaxLon(), bounds.MaxLon())
}

func TestPartition_SpanJustPastWholeCells(t *testing.T) {
	cases := []struct {
		name   string
		bounds domain.BBox
		size   float64
		rows   int
		cols   int
	}{
		{"latitude", domain.BBox{0, 0, 1 + 1e-10, 1}, 1, 2, 1},
		{"longitude", domain.BBox{0, 0, 1, 2 + 1e-12}, 1, 1, 3},
		{"exact multiple", domain.BBox{0, 0, 1, 2}, 1, 1, 2},
		{"tenths", domain.BBox{0, 0, 0.3, 0.3}, 0.1, 3, 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tiles, err := Partition(tc.bounds, tc.size)
			require.NoError(t, err)

			rows, cols := Dimensions(tc.bounds, tc.size)
			assert.Equal(t, tc.rows, rows)
			assert.Equal(t, tc.cols, cols)
			require.Len(t, tiles, rows*cols)

			last := tiles[len(tiles)-1].BBox()
			assert.GreaterOrEqual(t, last.MaxLat(), tc.bounds.MaxLat())
			assert.GreaterOrEqual(t, last.MaxLon(), tc.bounds.MaxLon())
		})
	}
}

func TestPartition_CoversWithoutGapsOrOverlap(t *testing.T) {
	cases := []struct {
		bounds domain.BBox
		size   float64
	}{
		{domain.BBox{8, 102, 24, 110}, 0.5},
		{domain.BBox{10.3, 105.1, 11.9, 107.05}, 0.37},
		{domain.BBox{-1, -1, 1, 1}, 3},
	}

	for _, tc := range cases {
		tiles, err := Partition(tc.bounds, tc.size)
		require.NoError(t, err)

		// Sample a lattice offset off the cell edges: each point must land in exactly one tile.
		steps := 37
		dLat := (tc.bounds.MaxLat() - tc.bounds.MinLat()) / float64(steps)
		dLon := (tc.bounds.MaxLon() - tc.bounds.MinLon()) / float64(steps)
		for i := 0; i < steps; i++ {
			for j := 0; j < steps; j++ {
				p := orb.Point{
					tc.bounds.MinLon() + (float64(j)+0.3141)*dLon,
					tc.bounds.MinLat() + (float64(i)+0.3141)*dLat,
				}
				hits := 0
				for _, tile := range tiles {
					b := tile.BBox()
					if p.Lat() >= b.MinLat() && p.Lat() < b.MaxLat() &&
						p.Lon() >= b.MinLon() && p.Lon() < b.MaxLon() {
						hits++
					}
				}
				assert.Equal(t, 1, hits, "point %v covered %d times", p, hits)
			}
		}

		// Neighbours share their edge exactly.
		_, cols := Dimensions(tc.bounds, tc.size)
		for _, tile := range tiles {
			if tile.Col+1 < cols {
				right := tiles[tile.Index+1]
				assert.InDelta(t, tile.BBox().MaxLon(), right.BBox().MinLon(), 1e-9)
			}
			if tile.Index+cols < len(tiles) {
				above := tiles[tile.Index+cols]
				assert.InDelta(t, tile.BBox().MaxLat(), above.BBox().MinLat(), 1e-9)
			}
		}
	}
}

func TestPartition_Invalid(t *testing.T) {
	_, err := Partition(domain.BBox{0, 0, 1, 1}, 0)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidGrid))

	_, err = Partition(domain.BBox{0, 0, 1, 1}, -0.5)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidGrid))

	_, err = Partition(domain.BBox{2, 0, 1, 1}, 0.5)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidGrid))
}
