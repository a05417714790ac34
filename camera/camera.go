// Package camera holds the perspective camera, the orbit controls that move
// it around the globe, and the animator used for fly-to transitions.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/echoflaresat/globeview/vectors"
)

const (
	DefaultFOV  = 50.0
	DefaultNear = 0.1
	DefaultFar  = 1000.0
)

// Camera is a pinhole camera looking at Target.
type Camera struct {
	FOVDeg float64
	Near   float64
	Far    float64
	Aspect float64

	Position vectors.Vec3
	Target   vectors.Vec3
	Up       vectors.Vec3
}

// New places a camera on the +Z axis at distance from the origin.
func New(distance, aspect float64) *Camera {
	if aspect <= 0 {
		aspect = 1
	}
	return &Camera{
		FOVDeg:   DefaultFOV,
		Near:     DefaultNear,
		Far:      DefaultFar,
		Aspect:   aspect,
		Position: vectors.Vec3{Z: distance},
		Up:       vectors.Vec3{Y: 1},
	}
}

// SetAspect updates the aspect ratio from a viewport size.
func (c *Camera) SetAspect(width, height int) {
	if width > 0 && height > 0 {
		c.Aspect = float64(width) / float64(height)
	}
}

// Distance is the distance from the camera to its target.
func (c *Camera) Distance() float64 {
	return vectors.Distance(c.Position, c.Target)
}

// View returns the world-to-camera matrix.
func (c *Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.Position.Mgl(), c.Target.Mgl(), c.Up.Mgl())
}

// Projection returns the perspective projection matrix.
func (c *Camera) Projection() mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(c.FOVDeg), c.Aspect, c.Near, c.Far)
}

// Basis returns the forward, right and up unit vectors of the view.
func (c *Camera) Basis() (fwd, right, up vectors.Vec3) {
	fwd = c.Target.Sub(c.Position).Normalize()
	right = fwd.Cross(c.Up)
	if right.Norm() < 1e-9 {
		right = fwd.Orthogonal()
	}
	right = right.Normalize()
	up = right.Cross(fwd).Normalize()
	return fwd, right, up
}

// Ray returns the world-space ray through normalized device coordinates
// (x right, y up, both in [-1, 1]).
func (c *Camera) Ray(ndcX, ndcY float64) (origin, dir vectors.Vec3) {
	fwd, right, up := c.Basis()
	tanHalf := math.Tan(mgl64.DegToRad(c.FOVDeg) / 2)

	dir = right.Scale(ndcX * tanHalf * c.Aspect).
		Add(up.Scale(ndcY * tanHalf)).
		Add(fwd)
	return c.Position, dir.Normalize()
}

// PixelRay returns the ray through the fractional pixel (x, y) of a
// width×height image, y growing downwards.
func (c *Camera) PixelRay(x, y float64, width, height int) (origin, dir vectors.Vec3) {
	nx, ny := ScreenToNDC(x, y, width, height)
	return c.Ray(nx, ny)
}

// ScreenToNDC maps screen coordinates to normalized device coordinates.
func ScreenToNDC(x, y float64, width, height int) (float64, float64) {
	return 2*x/float64(width) - 1, 1 - 2*y/float64(height)
}

// Project maps a world point to normalized device coordinates. ok is false
// for points behind the camera.
func (c *Camera) Project(p vectors.Vec3) (ndcX, ndcY, depth float64, ok bool) {
	clip := c.Projection().Mul4(c.View()).Mul4x1(p.Mgl().Vec4(1))
	if clip.W() <= 0 {
		return 0, 0, 0, false
	}
	return clip.X() / clip.W(), clip.Y() / clip.W(), clip.Z() / clip.W(), true
}

// ProjectToScreen is Project followed by the inverse of ScreenToNDC.
func (c *Camera) ProjectToScreen(p vectors.Vec3, width, height int) (x, y float64, ok bool) {
	nx, ny, _, ok := c.Project(p)
	if !ok {
		return 0, 0, false
	}
	return (nx + 1) / 2 * float64(width), (1 - ny) / 2 * float64(height), true
}
