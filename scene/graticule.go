package scene

import (
	"github.com/echoflaresat/globeview/earth"
	"github.com/echoflaresat/globeview/vectors"
)

// GraticuleRings returns the unit-sphere loops of the lat/lon grid: parallels
// every GraticuleStep degrees (poles excluded) and full meridian circles,
// each sampled every GraticuleSample degrees.
func GraticuleRings() [][]vectors.Vec3 {
	var rings [][]vectors.Vec3
	for lat := -90 + GraticuleStep; lat < 90; lat += GraticuleStep {
		var ring []vectors.Vec3
		for lon := -180; lon < 180; lon += GraticuleSample {
			ring = append(ring, earth.ToPoint3D(float64(lat), float64(lon), 1))
		}
		rings = append(rings, ring)
	}
	// A meridian and its antimeridian form one great circle.
	for lon := -180; lon < 0; lon += GraticuleStep {
		var ring []vectors.Vec3
		for lat := 90; lat > -90; lat -= GraticuleSample {
			ring = append(ring, earth.ToPoint3D(float64(lat), float64(lon), 1))
		}
		for lat := -90; lat < 90; lat += GraticuleSample {
			ring = append(ring, earth.ToPoint3D(float64(lat), float64(lon+180), 1))
		}
		rings = append(rings, ring)
	}
	return rings
}
