package boundary

import (
	"fmt"
	"io"

	geojson "github.com/paulmach/go.geojson"
)

// LoadGeoJSON reads a GeoJSON FeatureCollection. Features whose geometry is
// not a Polygon or MultiPolygon are kept; the polygon builder ignores them.
func LoadGeoJSON(r io.Reader) (*geojson.FeatureCollection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read geojson: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}
	return fc, nil
}
