package usecase

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/vnmap-dataprep/internal/domain"
	"github.com/vnmap-dataprep/internal/geometry"
)

// SegmentGroups holds the way geometries of one batch keyed by road identity.
type SegmentGroups map[domain.RoadKey][]orb.LineString

// GroupElements groups ways by (name, ref, highway). Ways with neither name nor
// ref, and ways without geometry, are dropped.
func GroupElements(elements []domain.OverpassElement) SegmentGroups {
	groups := make(SegmentGroups)
	for i := range elements {
		el := &elements[i]

		name := el.Tag("name")
		ref := el.Tag("ref")
		if name == "" && ref == "" {
			continue
		}
		if len(el.Geometry) == 0 {
			continue
		}

		key := domain.RoadKey{Name: name, Ref: ref, RoadType: el.Tag("highway")}
		groups[key] = append(groups[key], el.LineString())
	}
	return groups
}

// SegmentAggregator accumulates segments across tiles. It is not safe for
// concurrent use; one goroutine owns it.
type SegmentAggregator struct {
	roads    map[domain.RoadKey]orb.MultiLineString
	segments int
}

func NewSegmentAggregator() *SegmentAggregator {
	return &SegmentAggregator{
		roads: make(map[domain.RoadKey]orb.MultiLineString),
	}
}

// Merge appends every key's segments. Segments are concatenated, never joined.
func (a *SegmentAggregator) Merge(partial SegmentGroups) {
	for key, segs := range partial {
		a.roads[key] = append(a.roads[key], segs...)
		a.segments += len(segs)
	}
}

// Len returns the number of distinct roads.
func (a *SegmentAggregator) Len() int {
	return len(a.roads)
}

// Segments returns the number of merged segments.
func (a *SegmentAggregator) Segments() int {
	return a.segments
}

// Features returns one MultiLineString feature per road, sorted by key.
func (a *SegmentAggregator) Features() ([]domain.RoadFeature, error) {
	keys := make([]domain.RoadKey, 0, len(a.roads))
	for k := range a.roads {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	features := make([]domain.RoadFeature, 0, len(keys))
	for _, k := range keys {
		mls := a.roads[k]
		bbox, err := geometry.ComputeBBox(mls)
		if err != nil {
			return nil, err
		}
		features = append(features, domain.RoadFeature{
			Name:     k.Name,
			Ref:      k.Ref,
			RoadType: k.RoadType,
			BBox:     bbox,
			Geometry: geojson.NewGeometry(mls),
		})
	}
	return features, nil
}
