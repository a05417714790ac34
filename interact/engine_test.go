package interact

import (
	"math"
	"testing"

	geojson "github.com/paulmach/go.geojson"

	"github.com/echoflaresat/globeview/boundary"
	"github.com/echoflaresat/globeview/camera"
	"github.com/echoflaresat/globeview/earth"
	"github.com/echoflaresat/globeview/polygon"
	"github.com/echoflaresat/globeview/scene"
)

const size = 100

// box is a lat/lon rectangle centered on (lat, lon).
func box(id string, lat, lon, half float64) *boundary.Feature {
	ring := [][]float64{
		{lon - half, lat - half},
		{lon + half, lat - half},
		{lon + half, lat + half},
		{lon - half, lat + half},
	}
	return &boundary.Feature{ID: id, Geometry: geojson.NewPolygonGeometry([][][]float64{ring})}
}

type fixture struct {
	scene    *scene.Scene
	controls *camera.Controls
	engine   *Engine
	centers  []earth.GeoCoordinate
}

func newFixture(t *testing.T, features ...*boundary.Feature) *fixture {
	t.Helper()
	polys := polygon.BuildAll(features, polygon.Options{Offset: 0.0001})
	s, err := scene.Build(scene.Config{}, polys, scene.NewResources())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(s.Dispose)

	cam := camera.New(3, 1)
	fx := &fixture{scene: s, controls: camera.NewControls(cam)}
	fx.engine = NewEngine(fx.controls, func(c earth.GeoCoordinate) {
		fx.centers = append(fx.centers, c)
	})
	fx.engine.SetViewport(size, size)
	fx.engine.SetTargets(s.HitTargets)
	return fx
}

type hoverCall struct {
	current, previous *boundary.Feature
}

func (fx *fixture) recordHovers() *[]hoverCall {
	var calls []hoverCall
	fx.engine.OnHover = func(current, previous *boundary.Feature, _ Event) {
		calls = append(calls, hoverCall{current, previous})
	}
	return &calls
}

var (
	center = Event{X: size / 2, Y: size / 2}
	corner = Event{X: 0, Y: 0}
)

func TestHoverFiresOncePerChange(t *testing.T) {
	// Longitude -90 faces a camera on +Z.
	a := box("A", 0, -90, 10)
	fx := newFixture(t, a)
	calls := fx.recordHovers()

	fx.engine.Move(center)
	fx.engine.Move(center)
	if len(*calls) != 1 {
		t.Fatalf("got %d hover events, want 1", len(*calls))
	}
	if c := (*calls)[0]; c.current.ID != "A" || c.previous != nil {
		t.Fatalf("first event = (%v, %v), want (A, nil)", c.current, c.previous)
	}

	fx.engine.Move(corner)
	fx.engine.Move(corner)
	if len(*calls) != 2 {
		t.Fatalf("got %d hover events, want 2", len(*calls))
	}
	if c := (*calls)[1]; c.current != nil || c.previous.ID != "A" {
		t.Fatalf("second event = (%v, %v), want (nil, A)", c.current, c.previous)
	}
}

func TestBackFaceRejected(t *testing.T) {
	// The antipode of the visible hemisphere center.
	b := box("B", 0, 90, 10)
	fx := newFixture(t, b)

	origin, dir := fx.controls.Camera().PixelRay(center.X, center.Y, size, size)
	if hits := Intersect(origin, dir, fx.scene.HitTargets); len(hits) == 0 {
		t.Fatal("ray should pass through the far side polygon")
	}
	if _, ok := fx.engine.Pick(center.X, center.Y); ok {
		t.Fatal("far side polygon was picked")
	}
}

func TestPickFollowsGlobeRotation(t *testing.T) {
	a := box("A", 0, -90, 10)
	b := box("B", 0, 90, 10)
	fx := newFixture(t, a, b)

	h, ok := fx.engine.Pick(center.X, center.Y)
	if !ok || featureOf(h).ID != "A" {
		t.Fatalf("picked %v, want A", featureOf(h))
	}

	fx.scene.Globe.Rotation.Y = math.Pi
	h, ok = fx.engine.Pick(center.X, center.Y)
	if !ok || featureOf(h).ID != "B" {
		t.Fatalf("after half a turn picked %v, want B", featureOf(h))
	}
	if math.Abs(h.Point.Z-1) > 0.05 {
		t.Fatalf("hit point %+v should be on the near side", h.Point)
	}
}

func TestClickCountry(t *testing.T) {
	lat, lng := 1.5, -91.0
	a := box("A", 0, -90, 10)
	a.Country = &boundary.Country{ID: "A", Lat: &lat, Lng: &lng}
	fx := newFixture(t, a)
	fx.controls.SetAutoRotate(true)

	var clicked *boundary.Feature
	fx.engine.OnClick = func(f *boundary.Feature, _ Event) { clicked = f }
	fx.engine.OnGlobeClick = func(Event) { t.Fatal("globe click fired for a country") }

	fx.engine.Click(center)
	if clicked != a {
		t.Fatalf("clicked = %v, want A", clicked)
	}
	if fx.controls.AutoRotate() {
		t.Fatal("country click did not stop auto-rotation")
	}
	if len(fx.centers) != 1 || fx.centers[0] != (earth.GeoCoordinate{Lat: lat, Lon: lng}) {
		t.Fatalf("centers = %+v", fx.centers)
	}

	fx.engine.AutoCenter = false
	fx.engine.Click(center)
	if len(fx.centers) != 1 {
		t.Fatal("centered with auto-center off")
	}
}

func TestClickBackground(t *testing.T) {
	fx := newFixture(t, box("A", 0, -90, 10))
	globeClicks := 0
	fx.engine.OnGlobeClick = func(Event) { globeClicks++ }

	fx.engine.Click(corner)
	if !fx.controls.AutoRotate() || globeClicks != 1 {
		t.Fatalf("first click: autoRotate=%v clicks=%d", fx.controls.AutoRotate(), globeClicks)
	}
	fx.engine.Click(corner)
	if fx.controls.AutoRotate() || globeClicks != 2 {
		t.Fatalf("second click: autoRotate=%v clicks=%d", fx.controls.AutoRotate(), globeClicks)
	}

	fx.engine.Click(Event{Button: 2})
	if globeClicks != 2 {
		t.Fatal("secondary button fired a globe click")
	}
}

func TestDisabledEngineIgnoresPointer(t *testing.T) {
	fx := newFixture(t, box("A", 0, -90, 10))
	calls := fx.recordHovers()
	fx.engine.Enabled = false
	fx.engine.Move(center)
	fx.engine.Click(center)
	if len(*calls) != 0 || fx.engine.Hovered() != nil {
		t.Fatal("disabled engine reacted to the pointer")
	}
}

func TestSwappedCallbackUsedOnNextEvent(t *testing.T) {
	fx := newFixture(t, box("A", 0, -90, 10))
	first, second := 0, 0
	fx.engine.OnHover = func(*boundary.Feature, *boundary.Feature, Event) { first++ }
	fx.engine.Move(center)
	fx.engine.OnHover = func(*boundary.Feature, *boundary.Feature, Event) { second++ }
	fx.engine.Move(corner)
	if first != 1 || second != 1 {
		t.Fatalf("first=%d second=%d", first, second)
	}
}

func TestSetTargetsSendsLeave(t *testing.T) {
	fx := newFixture(t, box("A", 0, -90, 10))
	calls := fx.recordHovers()
	fx.engine.SetTargets(nil)
	if len(*calls) != 0 {
		t.Fatalf("leave fired with nothing hovered: %v", *calls)
	}

	fx.engine.SetTargets(fx.scene.HitTargets)
	fx.engine.Move(center)
	fx.engine.SetTargets(fx.scene.HitTargets)
	if len(*calls) != 2 {
		t.Fatalf("got %d hover events, want 2", len(*calls))
	}
	if c := (*calls)[1]; c.current != nil || c.previous.ID != "A" {
		t.Fatalf("leave event = (%v, %v), want (nil, A)", c.current, c.previous)
	}
	if fx.engine.Hovered() != nil {
		t.Fatalf("hovered = %v after SetTargets", fx.engine.Hovered())
	}
}

type rotateFlag struct{ on bool }

func (f *rotateFlag) AutoRotate() bool      { return f.on }
func (f *rotateFlag) SetAutoRotate(on bool) { f.on = on }

func TestClicksUseRotator(t *testing.T) {
	fx := newFixture(t, box("A", 0, -90, 10))
	r := &rotateFlag{on: true}
	fx.engine.SetRotator(r)

	fx.engine.Click(center)
	if r.on {
		t.Fatal("country click left auto-rotate on")
	}
	fx.engine.Click(corner)
	if !r.on {
		t.Fatal("background click did not toggle auto-rotate")
	}
	if fx.controls.AutoRotate() {
		t.Fatal("controls flag changed behind the rotator")
	}
}
