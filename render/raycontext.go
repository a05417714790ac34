package render

import (
	"math"

	"github.com/echoflaresat/globeview/vectors"
)

// RayContext carries per-ray state shared by the shading passes.
type RayContext struct {
	Origin       vectors.Vec3
	RayDirection vectors.Vec3

	// T is the distance to the globe surface, or -1 on a miss.
	T             float64
	HitPoint      vectors.Vec3
	SurfaceNormal vectors.Vec3
	ViewDotNormal float64
}

// SetRayDirection intersects the ray with a globe of radius r centered at
// the origin and fills in the hit fields.
func (c *RayContext) SetRayDirection(dir vectors.Vec3, r float64) {
	c.RayDirection = dir
	c.T = intersectSphere(c.Origin, dir, r)
	if c.T < 0 {
		return
	}
	c.HitPoint = c.Origin.Add(dir.Scale(c.T))
	c.SurfaceNormal = c.HitPoint.Normalize()
	c.ViewDotNormal = -c.SurfaceNormal.Dot(dir)
}

// Hit reports whether the ray reached the globe.
func (c *RayContext) Hit() bool { return c.T > 0 }

// Depth is the globe distance, or +Inf on a miss; anything farther is
// hidden by the globe.
func (c *RayContext) Depth() float64 {
	if c.T > 0 {
		return c.T
	}
	return math.Inf(1)
}

// intersectSphere returns the closest positive t of O + t*D on the sphere of
// radius r around the origin, or -1. D must be a unit vector.
func intersectSphere(O, D vectors.Vec3, r float64) float64 {
	hit, t1, t2 := intersectSphereFull(O, D, vectors.Vec3{}, r)
	if !hit {
		return -1.0
	}
	if t1 > 0 {
		return t1
	}
	if t2 > 0 {
		return t2
	}
	return -1.0
}

// intersectSphereFull returns both roots, nearest first, of the ray against
// a sphere around center.
func intersectSphereFull(O, D, center vectors.Vec3, r float64) (bool, float64, float64) {
	oc := O.Sub(center)
	b := 2.0 * oc.Dot(D)
	c := oc.Dot(oc) - r*r

	discriminant := b*b - 4.0*c
	if discriminant < 0 {
		return false, 0, 0
	}
	sqrtDisc := math.Sqrt(discriminant)
	return true, (-b - sqrtDisc) / 2.0, (-b + sqrtDisc) / 2.0
}

// intersectTriangle is Möller–Trumbore without culling.
func intersectTriangle(o, d, v0, v1, v2 vectors.Vec3) (float64, bool) {
	e1 := v1.Sub(v0)
	e2 := v2.Sub(v0)
	p := d.Cross(e2)
	det := e1.Dot(p)
	if math.Abs(det) < 1e-12 {
		return 0, false
	}
	inv := 1 / det
	s := o.Sub(v0)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := d.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := e2.Dot(q) * inv
	return t, t > 1e-9
}
