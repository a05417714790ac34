// Package interact turns pointer input into country hover and click events.
package interact

import (
	"math"
	"sort"

	"github.com/echoflaresat/globeview/scene"
	"github.com/echoflaresat/globeview/vectors"
)

const rayEpsilon = 1e-9

// Hit is one ray/triangle intersection in world space.
type Hit struct {
	Node     *scene.Node
	Point    vectors.Vec3
	Distance float64
	Face     int
}

// Intersect casts the ray against the triangles of nodes, both faces, and
// returns every hit sorted nearest first. dir need not be normalized.
func Intersect(origin, dir vectors.Vec3, nodes []*scene.Node) []Hit {
	dir = dir.Normalize()
	var hits []Hit
	for _, n := range nodes {
		if n == nil || n.Geometry == nil || len(n.Geometry.Indices) == 0 {
			continue
		}
		world := n.WorldMatrix()
		inv := world.Inv()
		lo := scene.TransformPoint(inv, origin)
		ld := scene.TransformDir(inv, dir)

		g := n.Geometry
		if !raySphere(lo, ld, g.BoundingCenter, g.BoundingRadius) {
			continue
		}
		for i := range g.Indices {
			a, b, c := g.Triangle(i)
			t, ok := triangle(lo, ld, a, b, c)
			if !ok {
				continue
			}
			p := scene.TransformPoint(world, lo.Add(ld.Scale(t)))
			hits = append(hits, Hit{
				Node:     n,
				Point:    p,
				Distance: vectors.Distance(origin, p),
				Face:     i,
			})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits
}

// triangle is the Möller–Trumbore test without back-face culling.
func triangle(o, d, v0, v1, v2 vectors.Vec3) (float64, bool) {
	e1 := v1.Sub(v0)
	e2 := v2.Sub(v0)
	p := d.Cross(e2)
	det := e1.Dot(p)
	if math.Abs(det) < rayEpsilon {
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
	if t <= rayEpsilon {
		return 0, false
	}
	return t, true
}

// raySphere reports whether the ray passes within radius of center ahead
// of the origin, or starts inside.
func raySphere(o, d, center vectors.Vec3, radius float64) bool {
	oc := center.Sub(o)
	dd := d.Dot(d)
	if dd == 0 {
		return false
	}
	t := oc.Dot(d) / dd
	if oc.Dot(oc) <= radius*radius {
		return true
	}
	if t < 0 {
		return false
	}
	closest := o.Add(d.Scale(t))
	return vectors.Distance(closest, center) <= radius
}

// FrontFacing keeps the hits on the camera side of the globe: those whose
// outward normal, the normalized hit point, points towards the camera.
// Order is preserved.
func FrontFacing(hits []Hit, cameraPos vectors.Vec3) []Hit {
	var out []Hit
	for _, h := range hits {
		normal := h.Point.Normalize()
		if normal.Dot(cameraPos.Sub(h.Point)) > 0 {
			out = append(out, h)
		}
	}
	return out
}
