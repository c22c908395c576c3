package overpass

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vnmap-dataprep/internal/domain"
)

// DefaultBulkRoadTypes are the classes fetched by the single country-wide query.
var DefaultBulkRoadTypes = []string{"motorway", "trunk", "primary", "secondary"}

// BulkQueryTimeout is the server-side timeout of the country-wide query.
const BulkQueryTimeout = 600 * time.Second

// TileQuery selects ways of the given highway classes inside both the country
// area and the tile rectangle.
func TileQuery(countryISO string, roadTypes []string, timeout time.Duration, tile domain.Tile) string {
	var b strings.Builder
	writeHeader(&b, countryISO, timeout)
	b.WriteString("(\n")
	fmt.Fprintf(&b, "  way[\"highway\"~\"^(%s)$\"](area.searchArea)(%s);\n",
		strings.Join(roadTypes, "|"), bboxFilter(tile.BBox()))
	b.WriteString(");\nout geom;\n")
	return b.String()
}

// BulkQuery selects the main road classes plus every way carrying a route ref.
func BulkQuery(countryISO string, roadTypes []string, timeout time.Duration) string {
	var b strings.Builder
	writeHeader(&b, countryISO, timeout)
	b.WriteString("(\n")
	fmt.Fprintf(&b, "  way[\"highway\"~\"^(%s)$\"](area.searchArea);\n", strings.Join(roadTypes, "|"))
	b.WriteString("  way[\"highway\"][\"ref\"](area.searchArea);\n")
	b.WriteString(");\nout geom;\n")
	return b.String()
}

func writeHeader(b *strings.Builder, countryISO string, timeout time.Duration) {
	fmt.Fprintf(b, "[out:json][timeout:%d];\n", int(timeout.Seconds()))
	fmt.Fprintf(b, "area[\"ISO3166-1\"=\"%s\"]->.searchArea;\n", countryISO)
}

// bboxFilter renders Overpass (south,west,north,east).
func bboxFilter(b domain.BBox) string {
	return strings.Join([]string{
		formatCoord(b.MinLat()),
		formatCoord(b.MinLon()),
		formatCoord(b.MaxLat()),
		formatCoord(b.MaxLon()),
	}, ",")
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
