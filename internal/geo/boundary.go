package geo

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gleam/dashboard/internal/dto"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

var ErrInvalidBoundary = errors.New("geo: invalid boundary file")

// Boundary is a parsed kelurahan or RW outline.
type Boundary struct {
	Path       string
	Raw        json.RawMessage
	Collection *geojson.FeatureCollection
	Bound      orb.Bound
}

// Parse accepts a FeatureCollection, a single Feature or a bare polygon geometry.
func Parse(path string, data []byte) (*Boundary, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidBoundary, path, err)
	}

	var fc *geojson.FeatureCollection
	switch head.Type {
	case "FeatureCollection":
		parsed, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidBoundary, path, err)
		}
		fc = parsed
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidBoundary, path, err)
		}
		fc = geojson.NewFeatureCollection().Append(f)
	case "Polygon", "MultiPolygon":
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidBoundary, path, err)
		}
		fc = geojson.NewFeatureCollection().Append(geojson.NewFeature(g.Geometry()))
	default:
		return nil, fmt.Errorf("%w: %s: unsupported type %q", ErrInvalidBoundary, path, head.Type)
	}

	var (
		bound orb.Bound
		found bool
	)
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		if !found {
			bound = f.Geometry.Bound()
			found = true
			continue
		}
		bound = bound.Union(f.Geometry.Bound())
	}
	if !found {
		return nil, fmt.Errorf("%w: %s: no geometry", ErrInvalidBoundary, path)
	}

	return &Boundary{
		Path:       path,
		Raw:        json.RawMessage(data),
		Collection: fc,
		Bound:      bound,
	}, nil
}

// Contains reports whether the point falls inside any polygon of the boundary.
func (b *Boundary) Contains(lat, lon float64) bool {
	pt := orb.Point{lon, lat}
	if !b.Bound.Contains(pt) {
		return false
	}
	for _, f := range b.Collection.Features {
		if f == nil {
			continue
		}
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			if planar.PolygonContains(g, pt) {
				return true
			}
		case orb.MultiPolygon:
			if planar.MultiPolygonContains(g, pt) {
				return true
			}
		}
	}
	return false
}

func (b *Boundary) Bounds() *dto.Bounds {
	return &dto.Bounds{
		MinLat: b.Bound.Min.Lat(),
		MinLon: b.Bound.Min.Lon(),
		MaxLat: b.Bound.Max.Lat(),
		MaxLon: b.Bound.Max.Lon(),
	}
}
