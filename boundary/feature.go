// Package boundary supplies country boundary polygons keyed by catalog ID.
package boundary

import (
	"fmt"

	geojson "github.com/paulmach/go.geojson"
)

// Country is a catalog record. Only ID is required; Lat/Lng are used to
// center the camera when present.
type Country struct {
	ID    string   `toml:"id" json:"id"`
	Name  string   `toml:"name" json:"name"`
	Lat   *float64 `toml:"lat" json:"lat,omitempty"`
	Lng   *float64 `toml:"lng" json:"lng,omitempty"`
	Color string   `toml:"color" json:"color,omitempty"`

	// Aliases are extra boundary-data names that resolve to this ID, e.g.
	// "United States of America" for "usa".
	Aliases []string `toml:"aliases" json:"aliases,omitempty"`
}

// Feature is one country's boundary geometry plus the catalog record it
// belongs to. Features are read-only once returned by a Source.
type Feature struct {
	ID         string
	Name       string
	Geometry   *geojson.Geometry
	Properties map[string]interface{}
	Country    *Country
}

// Parts returns the ring sets of the geometry: one entry for a Polygon, one
// per member for a MultiPolygon. Each ring set is the outer ring followed by
// its holes, positions as [lon, lat].
func (f *Feature) Parts() [][][][]float64 {
	if f == nil || f.Geometry == nil {
		return nil
	}
	switch {
	case f.Geometry.IsPolygon():
		return [][][][]float64{f.Geometry.Polygon}
	case f.Geometry.IsMultiPolygon():
		return f.Geometry.MultiPolygon
	}
	return nil
}

// Label is the display name: catalog name, then feature name, then
// properties["name"].
func (f *Feature) Label() string {
	if f.Country != nil && f.Country.Name != "" {
		return f.Country.Name
	}
	if f.Name != "" {
		return f.Name
	}
	if n, ok := f.Properties["name"].(string); ok && n != "" {
		return n
	}
	return "Unknown"
}

func (f *Feature) String() string {
	return fmt.Sprintf("Feature(%s, %q)", f.ID, f.Label())
}

// featureName reads the "name" property used to join boundary data with the
// catalog.
func featureName(f *geojson.Feature) string {
	if f == nil {
		return ""
	}
	if n, ok := f.Properties["name"].(string); ok {
		return n
	}
	return ""
}

func copyProperties(p map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(p)+2)
	for k, v := range p {
		out[k] = v
	}
	return out
}
