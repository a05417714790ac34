// Package vectors holds the float64 3D vector used for world-space points,
// directions and normals, with conversions to the mgl64 matrix types.
package vectors

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is a 3D vector. Y is up in world space.
type Vec3 struct {
	X, Y, Z float64
}

// Unit axes.
var (
	UnitX = Vec3{X: 1}
	UnitY = Vec3{Y: 1}
	UnitZ = Vec3{Z: 1}
)

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Neg() Vec3            { return v.Scale(-1) }
func (v Vec3) Dot(o Vec3) float64   { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Cross returns v × o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return FromMgl(v.Mgl().Cross(o.Mgl()))
}

// Norm is the Euclidean length.
func (v Vec3) Norm() float64 { return math.Sqrt(v.Dot(v)) }

// Normalize returns v scaled to unit length; the zero vector stays zero.
func (v Vec3) Normalize() Vec3 {
	if n := v.Norm(); n > 0 {
		return v.Scale(1 / n)
	}
	return Vec3{}
}

// Lerp interpolates linearly from v (t=0) to o (t=1).
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	return v.Add(o.Sub(v).Scale(t))
}

// Orthogonal returns some unit vector perpendicular to v.
func (v Vec3) Orthogonal() Vec3 {
	axis := UnitX
	if math.Abs(v.X) >= 0.9 {
		axis = UnitY
	}
	return v.Cross(axis).Normalize()
}

func (v Vec3) IsNaN() bool {
	return math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z)
}

// Mgl converts v for use with mgl64 matrices.
func (v Vec3) Mgl() mgl64.Vec3 { return mgl64.Vec3{v.X, v.Y, v.Z} }

func FromMgl(m mgl64.Vec3) Vec3 { return Vec3{m[0], m[1], m[2]} }

// TransformPoint applies m to v as a point (w = 1), dividing by w when the
// matrix is projective.
func (v Vec3) TransformPoint(m mgl64.Mat4) Vec3 {
	h := m.Mul4x1(v.Mgl().Vec4(1))
	if w := h.W(); w != 0 && w != 1 {
		return FromMgl(h.Vec3()).Scale(1 / w)
	}
	return FromMgl(h.Vec3())
}

// TransformDir applies m to v as a direction (w = 0).
func (v Vec3) TransformDir(m mgl64.Mat4) Vec3 {
	return FromMgl(m.Mul4x1(v.Mgl().Vec4(0)).Vec3())
}

func Distance(a, b Vec3) float64 { return a.Sub(b).Norm() }

// Mean averages pts; an empty slice gives the zero vector.
func Mean(pts []Vec3) Vec3 {
	var sum Vec3
	for _, p := range pts {
		sum = sum.Add(p)
	}
	if len(pts) == 0 {
		return sum
	}
	return sum.Scale(1 / float64(len(pts)))
}
