package domain

import "github.com/paulmach/orb"

// OverpassResponse is the JSON body returned by an Overpass interpreter for `out geom`.
type OverpassResponse struct {
	Version   float64           `json:"version,omitempty"`
	Generator string            `json:"generator,omitempty"`
	Remark    string            `json:"remark,omitempty"`
	Elements  []OverpassElement `json:"elements"`
}

// OverpassElement is one OSM element with inline geometry.
type OverpassElement struct {
	Type     string            `json:"type"`
	ID       int64             `json:"id"`
	Tags     map[string]string `json:"tags,omitempty"`
	Geometry []OverpassPoint   `json:"geometry,omitempty"`
}

type OverpassPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// LineString converts the element geometry into [lon, lat] order.
func (e *OverpassElement) LineString() orb.LineString {
	ls := make(orb.LineString, 0, len(e.Geometry))
	for _, p := range e.Geometry {
		ls = append(ls, orb.Point{p.Lon, p.Lat})
	}
	return ls
}

// Tag returns the tag value or an empty string.
func (e *OverpassElement) Tag(key string) string {
	if e.Tags == nil {
		return ""
	}
	return e.Tags[key]
}
