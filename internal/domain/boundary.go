package domain

import "github.com/paulmach/orb/geojson"

// RegionType - тип административной единицы
type RegionType string

const (
	RegionTypeCountry  RegionType = "country"
	RegionTypeProvince RegionType = "province"
)

const (
	AdminLevelCountry  = 2
	AdminLevelProvince = 4
)

// RegionFeature - административная граница в формате приложения
type RegionFeature struct {
	Name       string            `json:"name"`
	Type       RegionType        `json:"type"`
	AdminLevel int               `json:"admin_level"`
	GadmID     string            `json:"gadm_id,omitempty"`
	MergedFrom []string          `json:"merged_from,omitempty"`
	BBox       BBox              `json:"bbox"`
	Geometry   *geojson.Geometry `json:"geometry"`
}

// IsCountry reports whether the feature is the country outline.
func (f *RegionFeature) IsCountry() bool {
	return f.Type == RegionTypeCountry
}
