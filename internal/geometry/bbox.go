package geometry

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/vnmap-dataprep/internal/domain"
	apperrors "github.com/vnmap-dataprep/internal/pkg/errors"
)

// ComputeBBox returns the min/max over every coordinate of g, whatever its type.
func ComputeBBox(g orb.Geometry) (domain.BBox, error) {
	if g == nil {
		return domain.BBox{}, apperrors.ErrEmptyGeometry
	}
	b := g.Bound()
	if b.IsEmpty() {
		return domain.BBox{}, apperrors.ErrEmptyGeometry
	}
	return domain.BBox{b.Min.Lat(), b.Min.Lon(), b.Max.Lat(), b.Max.Lon()}, nil
}

// RoundBBoxOutward rounds to the given number of decimals, flooring minima and
// ceiling maxima so the result still encloses the original box. precision <= 0
// leaves the box untouched.
func RoundBBoxOutward(b domain.BBox, precision int) domain.BBox {
	if precision <= 0 {
		return b
	}
	scale := math.Pow10(precision)
	return domain.BBox{
		floorTo(b[0], scale),
		floorTo(b[1], scale),
		ceilTo(b[2], scale),
		ceilTo(b[3], scale),
	}
}

func floorTo(v, scale float64) float64 {
	r := math.Floor(v*scale) / scale
	if r > v {
		r = (math.Floor(v*scale) - 1) / scale
	}
	return r
}

func ceilTo(v, scale float64) float64 {
	r := math.Ceil(v*scale) / scale
	if r < v {
		r = (math.Ceil(v*scale) + 1) / scale
	}
	return r
}
