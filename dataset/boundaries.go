package dataset

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// NameProperty is the feature property holding the region name.
const NameProperty = "NOMGEO"

// Boundary is the outline of one region.
type Boundary struct {
	Name     string
	Geometry orb.Geometry
}

// Boundaries is the geographic boundary collection, one feature per region.
type Boundaries struct {
	Features []Boundary
}

// ReadBoundaries loads a GeoJSON FeatureCollection from a file.
func ReadBoundaries(path string) (*Boundaries, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	b, err := ParseBoundaries(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// ParseBoundaries decodes a FeatureCollection whose features carry a
// NOMGEO name and a polygon or multipolygon geometry.
func ParseBoundaries(data []byte) (*Boundaries, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	b := &Boundaries{Features: make([]Boundary, 0, len(fc.Features))}
	for i, f := range fc.Features {
		name, _ := f.Properties[NameProperty].(string)
		if name == "" {
			return nil, fmt.Errorf("%w: feature %d has no %s", ErrMalformedInput, i, NameProperty)
		}
		switch f.Geometry.(type) {
		case orb.Polygon, orb.MultiPolygon:
		default:
			return nil, fmt.Errorf("%w: feature %q: unsupported geometry %T", ErrMalformedInput, name, f.Geometry)
		}
		b.Features = append(b.Features, Boundary{Name: name, Geometry: f.Geometry})
	}
	return b, nil
}

// Bound returns the bounding box of all features.
func (b *Boundaries) Bound() orb.Bound {
	if len(b.Features) == 0 {
		return orb.Bound{}
	}
	bound := b.Features[0].Geometry.Bound()
	for _, f := range b.Features[1:] {
		bound = bound.Union(f.Geometry.Bound())
	}
	return bound
}

// Names returns feature names in file order.
func (b *Boundaries) Names() []string {
	out := make([]string, len(b.Features))
	for i, f := range b.Features {
		out[i] = f.Name
	}
	return out
}
