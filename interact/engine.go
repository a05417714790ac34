package interact

import (
	"github.com/echoflaresat/globeview/boundary"
	"github.com/echoflaresat/globeview/camera"
	"github.com/echoflaresat/globeview/earth"
	"github.com/echoflaresat/globeview/scene"
)

// PrimaryButton is the main mouse button, as reported by the viewer.
const PrimaryButton = 0

// Event is a pointer event in viewport pixels.
type Event struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Button int     `json:"button"`
	Ctrl   bool    `json:"ctrl,omitempty"`
	Meta   bool    `json:"meta,omitempty"`
}

type (
	HoverFunc      func(current, previous *boundary.Feature, ev Event)
	ClickFunc      func(f *boundary.Feature, ev Event)
	GlobeClickFunc func(ev Event)
)

// Engine resolves pointer events against the hit-test meshes of a scene.
// The On* slots are read when an event fires, so swapping them takes
// effect on the next event.
type Engine struct {
	Enabled    bool
	AutoCenter bool

	OnHover      HoverFunc
	OnClick      ClickFunc
	OnGlobeClick GlobeClickFunc

	cam      *camera.Camera
	controls *camera.Controls
	rotator  AutoRotator
	center   func(earth.GeoCoordinate)

	targets       []*scene.Node
	hovered       *boundary.Feature
	width, height int
}

// NewEngine returns an enabled engine with auto-centering on. center is
// called with the chosen point after a country click.
func NewEngine(controls *camera.Controls, center func(earth.GeoCoordinate)) *Engine {
	return &Engine{
		Enabled:    true,
		AutoCenter: true,
		cam:        controls.Camera(),
		controls:   controls,
		rotator:    controls,
		center:     center,
		width:      1,
		height:     1,
	}
}

// AutoRotator owns the auto-rotate flag clicks stop and toggle.
type AutoRotator interface {
	AutoRotate() bool
	SetAutoRotate(on bool)
}

// SetRotator routes click-driven auto-rotate changes through r instead of
// the orbit controls.
func (e *Engine) SetRotator(r AutoRotator) { e.rotator = r }

// SetTargets replaces the hit-test meshes. A hovered country gets a leave
// notification first, since its meshes are gone.
func (e *Engine) SetTargets(nodes []*scene.Node) {
	e.targets = nodes
	if previous := e.hovered; previous != nil {
		e.hovered = nil
		if fn := e.OnHover; fn != nil {
			fn(nil, previous, Event{})
		}
	}
}

func (e *Engine) SetViewport(width, height int) {
	if width > 0 && height > 0 {
		e.width, e.height = width, height
	}
}

// Hovered is the country under the pointer after the last Move.
func (e *Engine) Hovered() *boundary.Feature { return e.hovered }

// Pick returns the nearest front-facing hit under the pixel.
func (e *Engine) Pick(x, y float64) (Hit, bool) {
	origin, dir := e.cam.PixelRay(x, y, e.width, e.height)
	hits := FrontFacing(Intersect(origin, dir, e.targets), e.cam.Position)
	if len(hits) == 0 {
		return Hit{}, false
	}
	return hits[0], true
}

func featureOf(h Hit) *boundary.Feature {
	if h.Node == nil || h.Node.Polygon == nil {
		return nil
	}
	return h.Node.Polygon.Feature
}

// Move updates the hovered country and fires OnHover when it changes.
func (e *Engine) Move(ev Event) {
	if !e.Enabled {
		return
	}
	var current *boundary.Feature
	if h, ok := e.Pick(ev.X, ev.Y); ok {
		current = featureOf(h)
	}
	if current == e.hovered {
		return
	}
	previous := e.hovered
	e.hovered = current
	if fn := e.OnHover; fn != nil {
		fn(current, previous, ev)
	}
}

// Click handles a click. On a country it stops auto-rotation, fires
// OnClick and optionally centers on the country; elsewhere a primary
// click toggles auto-rotation and fires OnGlobeClick.
func (e *Engine) Click(ev Event) {
	if !e.Enabled {
		return
	}
	if h, ok := e.Pick(ev.X, ev.Y); ok {
		f := featureOf(h)
		e.rotator.SetAutoRotate(false)
		if fn := e.OnClick; fn != nil {
			fn(f, ev)
		}
		if e.AutoCenter && e.center != nil {
			if c, ok := CenterOf(h.Node.Polygon); ok {
				e.center(c)
			}
		}
		return
	}
	if ev.Button != PrimaryButton {
		return
	}
	e.rotator.SetAutoRotate(!e.rotator.AutoRotate())
	if fn := e.OnGlobeClick; fn != nil {
		fn(ev)
	}
}
