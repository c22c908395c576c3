package domain

import "github.com/paulmach/orb"

// BBox is a bounding box in [min_lat, min_lon, max_lat, max_lon] order.
// It serializes as a plain JSON array.
type BBox [4]float64

func (b BBox) MinLat() float64 { return b[0] }
func (b BBox) MinLon() float64 { return b[1] }
func (b BBox) MaxLat() float64 { return b[2] }
func (b BBox) MaxLon() float64 { return b[3] }

// Contains reports whether the point (lon, lat) lies inside or on the box.
func (b BBox) Contains(p orb.Point) bool {
	return p.Lat() >= b.MinLat() && p.Lat() <= b.MaxLat() &&
		p.Lon() >= b.MinLon() && p.Lon() <= b.MaxLon()
}

// IsValid reports whether min values do not exceed max values.
func (b BBox) IsValid() bool {
	return b.MinLat() < b.MaxLat() && b.MinLon() < b.MaxLon()
}
