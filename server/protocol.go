package server

import (
	"time"

	"github.com/echoflaresat/globeview/boundary"
	"github.com/echoflaresat/globeview/camera"
	"github.com/echoflaresat/globeview/globe"
	"github.com/echoflaresat/globeview/interact"
)

// Viewer to server message types.
const (
	msgMove        = "move"
	msgDown        = "down"
	msgUp          = "up"
	msgClick       = "click"
	msgWheel       = "wheel"
	msgPinch       = "pinch"
	msgResize      = "resize"
	msgDevice      = "device"
	msgPointOfView = "pointOfView"
	msgAutoRotate  = "autoRotate"
)

// Server to viewer event types. Frames travel as binary JPEG messages.
const (
	evStatus     = "status"
	evError      = "error"
	evReady      = "ready"
	evHover      = "hover"
	evClick      = "click"
	evGlobeClick = "globeClick"
)

// inbound is every field any viewer message may carry.
type inbound struct {
	Type string `json:"type"`

	interact.Event
	DeltaY float64 `json:"deltaY"`
	Scale  float64 `json:"scale"`

	Width  int `json:"width"`
	Height int `json:"height"`

	camera.Device

	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Altitude   float64 `json:"altitude"`
	DurationMs *int    `json:"durationMs,omitempty"`

	Enabled bool `json:"enabled"`
}

type country struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func countryOf(f *boundary.Feature) *country {
	if f == nil {
		return nil
	}
	return &country{ID: f.ID, Name: f.Label()}
}

type outbound struct {
	Type     string          `json:"type"`
	State    string          `json:"state,omitempty"`
	Message  string          `json:"message,omitempty"`
	Retry    bool            `json:"retry,omitempty"`
	Width    int             `json:"width,omitempty"`
	Height   int             `json:"height,omitempty"`
	Country  *country        `json:"country,omitempty"`
	Previous *country        `json:"previous,omitempty"`
	Event    *interact.Event `json:"event,omitempty"`
}

// apply runs one viewer message against the globe. It reports false for an
// unknown type.
func (m inbound) apply(g *globe.Globe) bool {
	switch m.Type {
	case msgMove:
		g.DragMove(m.X, m.Y)
		g.PointerMove(m.Event)
	case msgDown:
		g.DragStart(m.X, m.Y)
	case msgUp:
		g.DragEnd()
	case msgClick:
		g.Click(m.Event)
	case msgWheel:
		g.Wheel(m.DeltaY, m.Ctrl, m.Meta)
	case msgPinch:
		g.Pinch(m.Scale)
	case msgResize:
		g.Resize(m.Width, m.Height)
	case msgDevice:
		g.SetDevice(m.Device)
	case msgPointOfView:
		d := g.Config().Globe.Transition()
		if m.DurationMs != nil {
			d = time.Duration(*m.DurationMs) * time.Millisecond
		}
		// Errors are NaN coordinates, which JSON cannot carry.
		_ = g.PointOfView(m.Lat, m.Lng, m.Altitude, d)
	case msgAutoRotate:
		g.SetAutoRotate(m.Enabled)
	default:
		return false
	}
	return true
}
