package polygon

import (
	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"

	"github.com/echoflaresat/globeview/boundary"
	"github.com/echoflaresat/globeview/earth"
	"github.com/echoflaresat/globeview/vectors"
)

// centroidSamples is roughly how many mesh vertices MeshCentroid averages.
const centroidSamples = 20

// MeshCentroid estimates the center of a rendered mesh by averaging about
// twenty evenly strided vertices and projecting the mean back onto the
// sphere. ok is false for an empty mesh or a mean at the origin.
func MeshCentroid(m Mesh) (c earth.GeoCoordinate, ok bool) {
	n := len(m.Vertices)
	if n == 0 {
		return earth.GeoCoordinate{}, false
	}
	step := n / centroidSamples
	if step < 1 {
		step = 1
	}
	var sum vectors.Vec3
	for i := 0; i < n; i += step {
		sum = sum.Add(m.Vertices[i])
	}
	dir := sum.Normalize()
	if dir == (vectors.Vec3{}) {
		return earth.GeoCoordinate{}, false
	}
	return earth.ToGeoCoordinate(dir, 1), true
}

// RingCentroid averages every raw boundary position of f on the unit sphere.
// It is the last resort when neither coordinates nor a mesh are available.
func RingCentroid(f *boundary.Feature) (c earth.GeoCoordinate, ok bool) {
	var sum r3.Vector
	count := 0
	for _, rings := range f.Parts() {
		for _, ring := range rings {
			for _, pos := range ring {
				if len(pos) < 2 {
					continue
				}
				p := s2.PointFromLatLng(s2.LatLngFromDegrees(pos[1], pos[0]))
				sum = sum.Add(p.Vector)
				count++
			}
		}
	}
	if count == 0 || sum.Norm() == 0 {
		return earth.GeoCoordinate{}, false
	}
	ll := s2.LatLngFromPoint(s2.Point{Vector: sum.Normalize()})
	return earth.GeoCoordinate{Lat: ll.Lat.Degrees(), Lon: ll.Lng.Degrees()}, true
}
