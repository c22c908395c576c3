package domain

import "github.com/paulmach/orb/geojson"

// RoadKey identifies a road. Segments sharing a key are concatenated into one feature.
type RoadKey struct {
	Name     string
	Ref      string
	RoadType string
}

// Less orders keys by name, then ref, then road type.
func (k RoadKey) Less(other RoadKey) bool {
	if k.Name != other.Name {
		return k.Name < other.Name
	}
	if k.Ref != other.Ref {
		return k.Ref < other.Ref
	}
	return k.RoadType < other.RoadType
}

// RoadFeature - дорога со всеми собранными сегментами (MultiLineString)
type RoadFeature struct {
	Name     string            `json:"name"`
	Ref      string            `json:"ref"`
	RoadType string            `json:"road_type"`
	BBox     BBox              `json:"bbox"`
	Geometry *geojson.Geometry `json:"geometry"`
}
