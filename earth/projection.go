// Package earth holds the globe's coordinate conventions: the mapping between
// geographic coordinates and points on the Y-up render sphere, and the solar
// direction used for lighting.
package earth

import (
	"errors"
	"math"

	"github.com/echoflaresat/globeview/vectors"
)

const (
	deg2rad = math.Pi / 180.0
	rad2deg = 180.0 / math.Pi
)

// ErrInvalidCoordinate reports a NaN or infinite latitude/longitude.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// GeoCoordinate is a latitude/longitude pair in degrees.
type GeoCoordinate struct {
	Lat float64
	Lon float64
}

// Valid reports whether the coordinate is finite and in range.
func (g GeoCoordinate) Valid() bool {
	if math.IsNaN(g.Lat) || math.IsNaN(g.Lon) {
		return false
	}
	return g.Lat >= -90 && g.Lat <= 90 && g.Lon >= -180 && g.Lon <= 180
}

// Clamp returns g with latitude clamped to [-90,90] and longitude clamped to
// [-180,180]. NaN or infinite input yields ErrInvalidCoordinate.
func (g GeoCoordinate) Clamp() (GeoCoordinate, error) {
	if math.IsNaN(g.Lat) || math.IsNaN(g.Lon) || math.IsInf(g.Lat, 0) || math.IsInf(g.Lon, 0) {
		return GeoCoordinate{}, ErrInvalidCoordinate
	}
	return GeoCoordinate{
		Lat: math.Max(-90, math.Min(90, g.Lat)),
		Lon: math.Max(-180, math.Min(180, g.Lon)),
	}, nil
}

// ToPoint3D maps (lat, lon) in degrees onto a sphere of the given radius.
//
// phi is the colatitude (0 at the north pole) and theta is lon+180. The sign
// and offset convention matches the equirectangular wrap of the surface
// texture: u = (lon+180)/360, v = (90-lat)/180.
func ToPoint3D(lat, lon, radius float64) vectors.Vec3 {
	phi := (90 - lat) * deg2rad
	theta := (lon + 180) * deg2rad
	return vectors.Vec3{
		X: -radius * math.Sin(phi) * math.Cos(theta),
		Y: radius * math.Cos(phi),
		Z: radius * math.Sin(phi) * math.Sin(theta),
	}
}

// ToGeoCoordinate is the inverse of ToPoint3D. Longitude is normalized into
// [-180, 180]; at the poles it is undefined and comes back as whatever atan2
// yields.
func ToGeoCoordinate(p vectors.Vec3, radius float64) GeoCoordinate {
	cosPhi := p.Y / radius
	if cosPhi > 1 {
		cosPhi = 1
	} else if cosPhi < -1 {
		cosPhi = -1
	}
	lat := 90 - math.Acos(cosPhi)*rad2deg
	lon := math.Atan2(p.Z, -p.X)*rad2deg - 180
	if lon < -180 {
		lon += 360
	}
	return GeoCoordinate{Lat: lat, Lon: lon}
}

// UV returns equirectangular texture coordinates for a point on the unit
// sphere, u growing eastward from the antimeridian and v growing southward.
func UV(p vectors.Vec3) (u, v float64) {
	g := ToGeoCoordinate(p.Normalize(), 1)
	return (g.Lon + 180) / 360, (90 - g.Lat) / 180
}
