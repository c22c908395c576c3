// Package grid splits a bounding box into fixed-size square tiles.
package grid

import (
	"math"

	"github.com/vnmap-dataprep/internal/domain"
	apperrors "github.com/vnmap-dataprep/internal/pkg/errors"
)

// Partition covers bounds with size×size degree tiles, row-major from the
// south-west corner. The last row and column may extend past the boundary.
func Partition(bounds domain.BBox, size float64) ([]domain.Tile, error) {
	if size <= 0 || math.IsNaN(size) || math.IsInf(size, 0) {
		return nil, apperrors.ErrInvalidGrid.Wrapf("cell size must be positive, got %v", size)
	}
	if !bounds.IsValid() {
		return nil, apperrors.ErrInvalidGrid.Wrapf("empty or inverted bounds %v", bounds)
	}

	rows, cols := Dimensions(bounds, size)

	tiles := make([]domain.Tile, 0, rows*cols)
	for row := 0; row < rows; row++ {
		lat := bounds.MinLat() + float64(row)*size
		for col := 0; col < cols; col++ {
			tiles = append(tiles, domain.Tile{
				Index: len(tiles),
				Row:   row,
				Col:   col,
				Lat:   lat,
				Lon:   bounds.MinLon() + float64(col)*size,
				Size:  size,
			})
		}
	}

	return tiles, nil
}

// Dimensions returns the row and column counts Partition would produce.
func Dimensions(bounds domain.BBox, size float64) (rows, cols int) {
	if size <= 0 || !bounds.IsValid() {
		return 0, 0
	}
	return cellCount(bounds.MinLat(), bounds.MaxLat(), size), cellCount(bounds.MinLon(), bounds.MaxLon(), size)
}

// cellCount is the smallest n whose last cell reaches hi. The edge is computed
// the way Tile.BBox computes it, so the check matches the tiles exactly.
func cellCount(lo, hi, size float64) int {
	edge := func(n int) float64 { return lo + float64(n-1)*size + size }

	n := int(math.Ceil((hi - lo) / size))
	if n < 1 {
		n = 1
	}
	for edge(n) < hi {
		n++
	}
	for n > 1 && edge(n-1) >= hi {
		n--
	}
	return n
}
