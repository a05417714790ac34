package scene

import (
	"github.com/echoflaresat/globeview/colors"
	"github.com/echoflaresat/globeview/earth"
)

const (
	MarkerAltitude    = 1.02
	MarkerRadius      = 0.02
	MarkerGlowRadius  = 0.03
	MarkerOpacity     = 0.9
	MarkerGlowOpacity = 0.3
)

// MarkerColor is the highlight color of the selection marker.
var MarkerColor = colors.Red()

// SetMarker replaces the selection marker with a new one at (lat, lon),
// parented to the globe so it turns with it.
func (s *Scene) SetMarker(lat, lon float64) {
	s.ClearMarker()
	if s.disposed {
		return
	}

	pos := earth.ToPoint3D(lat, lon, MarkerAltitude)

	dotMat := s.res.NewMaterial(Unlit, MarkerColor)
	dotMat.Transparent = true
	dotMat.Opacity = MarkerOpacity
	dot := NewMesh("marker", s.res.NewSphereGeometry(MarkerRadius, 16, 16), dotMat)
	dot.Position = pos

	glowMat := s.res.NewMaterial(Unlit, MarkerColor)
	glowMat.Transparent = true
	glowMat.Opacity = MarkerGlowOpacity
	glow := NewMesh("marker-glow", s.res.NewSphereGeometry(MarkerGlowRadius, 16, 16), glowMat)
	glow.Position = pos

	g := NewGroup("marker-group")
	g.Add(dot, glow)
	s.Globe.Add(g)
	s.marker = g
}

// ClearMarker removes and disposes the marker, if any.
func (s *Scene) ClearMarker() {
	if s.marker == nil {
		return
	}
	if p := s.marker.Parent(); p != nil {
		p.Remove(s.marker)
	}
	s.marker.dispose()
	s.marker = nil
}

// Marker returns the current marker group, or nil.
func (s *Scene) Marker() *Node { return s.marker }
