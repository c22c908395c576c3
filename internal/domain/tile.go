package domain

import "fmt"

// Tile is one cell of the download grid. Lat/Lon is the south-west corner.
type Tile struct {
	Index int     `json:"index"`
	Row   int     `json:"row"`
	Col   int     `json:"col"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Size  float64 `json:"size"`
}

// BBox returns the tile rectangle.
func (t Tile) BBox() BBox {
	return BBox{t.Lat, t.Lon, t.Lat + t.Size, t.Lon + t.Size}
}

func (t Tile) String() string {
	return fmt.Sprintf("%g,%g", t.Lat, t.Lon)
}

// TileReport summarizes a tiled download run.
type TileReport struct {
	Total       int
	Fetched     int
	Cached      int
	Failed      []Tile
	RoadsMerged int
}

// Complete reports whether every tile produced data.
func (r *TileReport) Complete() bool {
	return len(r.Failed) == 0
}
