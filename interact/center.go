package interact

import (
	"math"

	"github.com/echoflaresat/globeview/boundary"
	"github.com/echoflaresat/globeview/earth"
	"github.com/echoflaresat/globeview/polygon"
)

// CenterOf picks the point to fly to for a clicked polygon: the catalog
// coordinates, then coordinates found in the feature properties, then the
// centroid of the rendered mesh, then the centroid of the raw rings.
func CenterOf(p *polygon.Rendered) (earth.GeoCoordinate, bool) {
	if p == nil {
		return earth.GeoCoordinate{}, false
	}
	f := p.Feature
	if c, ok := countryCenter(f); ok {
		return c, true
	}
	if c, ok := propertyCenter(f); ok {
		return c, true
	}
	if c, ok := polygon.MeshCentroid(p.Fill); ok {
		return c, true
	}
	if f != nil {
		return polygon.RingCentroid(f)
	}
	return earth.GeoCoordinate{}, false
}

func countryCenter(f *boundary.Feature) (earth.GeoCoordinate, bool) {
	if f == nil || f.Country == nil || f.Country.Lat == nil || f.Country.Lng == nil {
		return earth.GeoCoordinate{}, false
	}
	c := earth.GeoCoordinate{Lat: *f.Country.Lat, Lon: *f.Country.Lng}
	return c, c.Valid()
}

func propertyCenter(f *boundary.Feature) (earth.GeoCoordinate, bool) {
	if f == nil || f.Properties == nil {
		return earth.GeoCoordinate{}, false
	}
	props := f.Properties
	coords, _ := props["coordinates"].([]interface{})

	lat, ok := firstNumber(props["lat"], props["latitude"], index(coords, 1))
	if !ok {
		return earth.GeoCoordinate{}, false
	}
	lon, ok := firstNumber(props["lng"], props["lon"], props["longitude"], index(coords, 0))
	if !ok {
		return earth.GeoCoordinate{}, false
	}
	c := earth.GeoCoordinate{Lat: lat, Lon: lon}
	return c, c.Valid()
}

func index(xs []interface{}, i int) interface{} {
	if i < len(xs) {
		return xs[i]
	}
	return nil
}

func firstNumber(vals ...interface{}) (float64, bool) {
	for _, v := range vals {
		var f float64
		switch n := v.(type) {
		case float64:
			f = n
		case float32:
			f = float64(n)
		case int:
			f = float64(n)
		case int64:
			f = float64(n)
		default:
			continue
		}
		if !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f, true
		}
	}
	return 0, false
}
