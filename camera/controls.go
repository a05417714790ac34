package camera

import (
	"math"

	"github.com/echoflaresat/globeview/vectors"
)

// State is what currently drives the camera.
type State int

const (
	Idle State = iota
	Dragging
	AutoRotating
	Animating
)

func (s State) String() string {
	switch s {
	case Dragging:
		return "dragging"
	case AutoRotating:
		return "auto-rotating"
	case Animating:
		return "animating"
	default:
		return "idle"
	}
}

const (
	DefaultRotateSpeed     = 0.5
	DefaultDampingFactor   = 0.05
	DefaultZoomSpeed       = 0.02
	DefaultMinDistance     = 1.5
	DefaultMaxDistance     = 10.0
	DefaultAutoRotateSpeed = 0.8

	// polarEpsilon keeps the camera off the poles where the up vector
	// degenerates.
	polarEpsilon = 1e-6
)

type spherical struct {
	radius, phi, theta float64
}

func sphericalFrom(v vectors.Vec3) spherical {
	r := v.Norm()
	if r == 0 {
		return spherical{}
	}
	return spherical{
		radius: r,
		theta:  math.Atan2(v.X, v.Z),
		phi:    math.Acos(math.Max(-1, math.Min(1, v.Y/r))),
	}
}

func (s spherical) vec() vectors.Vec3 {
	sinPhi := math.Sin(s.phi)
	return vectors.Vec3{
		X: s.radius * sinPhi * math.Sin(s.theta),
		Y: s.radius * math.Cos(s.phi),
		Z: s.radius * sinPhi * math.Cos(s.theta),
	}
}

// Controls orbits a camera around a fixed target. Dragging rotates with
// optional damping; zoom happens only through explicit gestures.
type Controls struct {
	cam *Camera

	Enabled         bool
	RotateSpeed     float64
	EnableDamping   bool
	DampingFactor   float64
	ZoomSpeed       float64
	MinDistance     float64
	MaxDistance     float64
	AutoRotateSpeed float64

	autoRotate bool
	dragging   bool
	animating  bool

	lastX, lastY float64
	height       float64

	sph   spherical
	delta spherical
}

// NewControls attaches controls with default tuning to cam.
func NewControls(cam *Camera) *Controls {
	c := &Controls{
		cam:             cam,
		Enabled:         true,
		RotateSpeed:     DefaultRotateSpeed,
		EnableDamping:   true,
		DampingFactor:   DefaultDampingFactor,
		ZoomSpeed:       DefaultZoomSpeed,
		MinDistance:     DefaultMinDistance,
		MaxDistance:     DefaultMaxDistance,
		AutoRotateSpeed: DefaultAutoRotateSpeed,
		height:          1,
	}
	c.Sync()
	return c
}

// Camera returns the controlled camera.
func (c *Controls) Camera() *Camera { return c.cam }

// State reports the dominant driver, highest priority first.
func (c *Controls) State() State {
	switch {
	case c.animating:
		return Animating
	case c.dragging:
		return Dragging
	case c.autoRotate:
		return AutoRotating
	default:
		return Idle
	}
}

func (c *Controls) AutoRotate() bool { return c.autoRotate }

func (c *Controls) SetAutoRotate(on bool) { c.autoRotate = on }

// SetViewport sets the height used to convert drag pixels into angles.
func (c *Controls) SetViewport(width, height int) {
	if height > 0 {
		c.height = float64(height)
	}
}

// SetZoomBounds changes the allowed distance range and re-clamps the camera.
func (c *Controls) SetZoomBounds(min, max float64) {
	if min > max {
		min, max = max, min
	}
	c.MinDistance, c.MaxDistance = min, max
	c.SetDistance(c.sph.radius)
}

// Distance is the cached camera distance.
func (c *Controls) Distance() float64 { return c.sph.radius }

// SetDistance moves the camera along its current direction, clamped to the
// zoom bounds.
func (c *Controls) SetDistance(d float64) {
	c.sph.radius = c.clampDistance(d)
	c.apply()
}

// clampDistance bounds d to the zoom range. NaN keeps the current
// distance, or the minimum if that is not a number either.
func (c *Controls) clampDistance(d float64) float64 {
	if math.IsNaN(d) {
		d = c.sph.radius
		if math.IsNaN(d) {
			d = c.MinDistance
		}
	}
	return math.Max(c.MinDistance, math.Min(c.MaxDistance, d))
}

// Sync re-derives the spherical cache from the camera position and drops
// any pending rotation. Call it after moving the camera directly.
func (c *Controls) Sync() {
	c.sph = sphericalFrom(c.cam.Position.Sub(c.cam.Target))
	c.delta = spherical{}
}

// BeginAnimation hands the camera to an animator; Update leaves it alone
// until EndAnimation.
func (c *Controls) BeginAnimation() {
	c.animating = true
	c.dragging = false
	c.delta = spherical{}
}

// EndAnimation returns control to the user and adopts the animated position.
func (c *Controls) EndAnimation() {
	c.animating = false
	c.Sync()
}

func (c *Controls) DragStart(x, y float64) {
	if !c.Enabled || c.animating {
		return
	}
	c.dragging = true
	c.lastX, c.lastY = x, y
}

func (c *Controls) DragMove(x, y float64) {
	if !c.dragging {
		return
	}
	dx, dy := x-c.lastX, y-c.lastY
	c.lastX, c.lastY = x, y

	c.delta.theta -= 2 * math.Pi * dx / c.height * c.RotateSpeed
	c.delta.phi -= 2 * math.Pi * dy / c.height * c.RotateSpeed
}

func (c *Controls) DragEnd() { c.dragging = false }

// Wheel zooms by one step in the direction of deltaY. It only acts when a
// ctrl or meta modifier is held on a non-touch device and reports whether
// it did.
func (c *Controls) Wheel(deltaY float64, modifier, touch bool) bool {
	if !c.Enabled || c.animating || touch || !modifier || deltaY == 0 {
		return false
	}
	factor := 1 + c.ZoomSpeed
	if deltaY < 0 {
		factor = 1 - c.ZoomSpeed
	}
	c.SetDistance(c.sph.radius * factor)
	return true
}

// Pinch zooms by a two-finger scale factor (>1 spreads, moving closer). It
// only acts on touch devices.
func (c *Controls) Pinch(scale float64, touch bool) bool {
	if !c.Enabled || c.animating || !touch || !(scale > 0) || math.IsInf(scale, 0) {
		return false
	}
	c.SetDistance(c.sph.radius / scale)
	return true
}

// Update applies pending rotation, with damping if enabled, and writes the
// camera position. It reports whether the camera moved.
func (c *Controls) Update() bool {
	if c.animating {
		return false
	}
	before := c.cam.Position

	if c.EnableDamping {
		c.sph.theta += c.delta.theta * c.DampingFactor
		c.sph.phi += c.delta.phi * c.DampingFactor
		c.delta.theta *= 1 - c.DampingFactor
		c.delta.phi *= 1 - c.DampingFactor
	} else {
		c.sph.theta += c.delta.theta
		c.sph.phi += c.delta.phi
		c.delta = spherical{}
	}
	c.sph.radius = c.clampDistance(c.sph.radius)
	c.apply()

	return vectors.Distance(before, c.cam.Position) > 1e-12
}

func (c *Controls) apply() {
	c.sph.phi = math.Max(polarEpsilon, math.Min(math.Pi-polarEpsilon, c.sph.phi))
	c.cam.Position = c.cam.Target.Add(c.sph.vec())
}
