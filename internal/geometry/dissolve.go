package geometry

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	sf "github.com/peterstace/simplefeatures/geom"

	apperrors "github.com/vnmap-dataprep/internal/pkg/errors"
)

// Dissolver unions region polygons into one areal geometry without shared borders.
type Dissolver interface {
	Dissolve(geoms []orb.Geometry) (orb.Geometry, error)
}

// OverlayDissolver runs a planar overlay union. Any failure is returned as
// ErrDissolveFailed; there is no concatenation fallback.
type OverlayDissolver struct{}

func NewOverlayDissolver() *OverlayDissolver {
	return &OverlayDissolver{}
}

func (d *OverlayDissolver) Dissolve(geoms []orb.Geometry) (orb.Geometry, error) {
	if len(geoms) == 0 {
		return nil, apperrors.ErrDissolveFailed.Wrapf("no geometries to dissolve")
	}
	for i, g := range geoms {
		if !isAreal(g) {
			return nil, apperrors.ErrDissolveFailed.Wrapf("input %d is %T, want Polygon or MultiPolygon", i, g)
		}
	}
	if len(geoms) == 1 {
		return geoms[0], nil
	}

	acc, err := toSimple(geoms[0])
	if err != nil {
		return nil, apperrors.ErrDissolveFailed.Wrapf("input 0: %w", err)
	}
	for i := 1; i < len(geoms); i++ {
		next, err := toSimple(geoms[i])
		if err != nil {
			return nil, apperrors.ErrDissolveFailed.Wrapf("input %d: %w", i, err)
		}
		acc, err = sf.Union(acc, next)
		if err != nil {
			return nil, apperrors.ErrDissolveFailed.Wrapf("union with input %d: %w", i, err)
		}
	}

	if acc.IsEmpty() {
		return nil, apperrors.ErrDissolveFailed.Wrapf("union is empty")
	}

	out, err := fromSimple(acc)
	if err != nil {
		return nil, apperrors.ErrDissolveFailed.Wrap(err)
	}
	if !isAreal(out) {
		return nil, apperrors.ErrDissolveFailed.Wrapf("union produced %T", out)
	}
	return out, nil
}

func isAreal(g orb.Geometry) bool {
	switch g.(type) {
	case orb.Polygon, orb.MultiPolygon:
		return true
	}
	return false
}

// GeoJSON is the bridge between orb and simplefeatures.
func toSimple(g orb.Geometry) (sf.Geometry, error) {
	data, err := geojson.NewGeometry(g).MarshalJSON()
	if err != nil {
		return sf.Geometry{}, fmt.Errorf("marshal geometry: %w", err)
	}
	sg, err := sf.UnmarshalGeoJSON(data)
	if err != nil {
		return sf.Geometry{}, fmt.Errorf("build overlay geometry: %w", err)
	}
	return sg, nil
}

func fromSimple(g sf.Geometry) (orb.Geometry, error) {
	data, err := g.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal union: %w", err)
	}
	gj, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, fmt.Errorf("decode union: %w", err)
	}
	return gj.Geometry(), nil
}
