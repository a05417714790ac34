package camera

import (
	"math"
	"testing"

	"github.com/echoflaresat/globeview/vectors"
)

func newControls() (*Camera, *Controls) {
	cam := New(3, 1)
	c := NewControls(cam)
	c.SetViewport(400, 400)
	return cam, c
}

func TestWheelRequiresModifierAndMouse(t *testing.T) {
	cam, c := newControls()

	if c.Wheel(100, false, false) {
		t.Fatal("wheel without modifier zoomed")
	}
	if c.Wheel(100, true, true) {
		t.Fatal("wheel on a touch device zoomed")
	}
	if !near(cam.Distance(), 3, 1e-12) {
		t.Fatalf("distance changed to %v", cam.Distance())
	}

	c.Wheel(100, true, false)
	if !near(cam.Distance(), 3*1.02, 1e-9) {
		t.Fatalf("zoom out: distance = %v, want %v", cam.Distance(), 3*1.02)
	}
	c.Wheel(-100, true, false)
	if !near(cam.Distance(), 3*1.02*0.98, 1e-9) {
		t.Fatalf("zoom in: distance = %v", cam.Distance())
	}
}

func TestZoomClamping(t *testing.T) {
	cam, c := newControls()
	for i := 0; i < 500; i++ {
		c.Wheel(-1, true, false)
		c.Update()
		if d := cam.Distance(); d < c.MinDistance-1e-9 || d > c.MaxDistance+1e-9 {
			t.Fatalf("distance %v escaped [%v, %v]", d, c.MinDistance, c.MaxDistance)
		}
	}
	if !near(cam.Distance(), DefaultMinDistance, 1e-9) {
		t.Fatalf("distance = %v, want min %v", cam.Distance(), DefaultMinDistance)
	}
	for i := 0; i < 500; i++ {
		c.Wheel(1, true, false)
	}
	if !near(cam.Distance(), DefaultMaxDistance, 1e-9) {
		t.Fatalf("distance = %v, want max %v", cam.Distance(), DefaultMaxDistance)
	}

	for _, scale := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), 0, -2} {
		if c.Pinch(scale, true) {
			t.Fatalf("pinch %v zoomed", scale)
		}
		if !near(cam.Distance(), DefaultMaxDistance, 1e-9) {
			t.Fatalf("pinch %v: distance = %v", scale, cam.Distance())
		}
	}
	c.SetDistance(math.NaN())
	if !near(cam.Distance(), DefaultMaxDistance, 1e-9) {
		t.Fatalf("SetDistance(NaN): distance = %v", cam.Distance())
	}
}

func TestPinchOnlyOnTouch(t *testing.T) {
	cam, c := newControls()
	if c.Pinch(2, false) {
		t.Fatal("pinch on a mouse device zoomed")
	}
	c.Pinch(1.5, true)
	if !near(cam.Distance(), 2, 1e-9) {
		t.Fatalf("distance after pinch = %v, want 2", cam.Distance())
	}
}

func TestSetZoomBoundsReclamps(t *testing.T) {
	cam, c := newControls()
	c.SetZoomBounds(4, 8)
	if !near(cam.Distance(), 4, 1e-9) {
		t.Fatalf("distance = %v, want 4", cam.Distance())
	}
}

func TestDragWithDampingConverges(t *testing.T) {
	cam, c := newControls()
	c.DragStart(200, 200)
	c.DragMove(300, 200)
	c.DragEnd()

	// Total rotation is 2π·dx/h·rotateSpeed = π/4 around the vertical axis.
	for i := 0; i < 2000; i++ {
		c.Update()
	}
	want := math.Pi / 4
	theta := math.Atan2(cam.Position.X, cam.Position.Z)
	if !near(theta, -want, 1e-6) {
		t.Fatalf("theta = %v, want %v", theta, -want)
	}
	if !near(cam.Distance(), 3, 1e-9) {
		t.Fatalf("drag changed the distance to %v", cam.Distance())
	}
	if cam.Target != (vectors.Vec3{}) {
		t.Fatal("target moved")
	}
}

func TestDampingIsGradual(t *testing.T) {
	cam, c := newControls()
	c.DragStart(0, 0)
	c.DragMove(100, 0)
	start := cam.Position
	c.Update()
	first := vectors.Distance(start, cam.Position)
	next := cam.Position
	c.Update()
	second := vectors.Distance(next, cam.Position)
	if first == 0 || second >= first {
		t.Fatalf("expected decaying steps, got %v then %v", first, second)
	}
}

func TestPolarClamp(t *testing.T) {
	cam, c := newControls()
	c.EnableDamping = false
	c.DragStart(0, 0)
	c.DragMove(0, 10000)
	c.Update()
	if cam.Position.IsNaN() {
		t.Fatal("camera position is NaN")
	}
	if !near(cam.Distance(), 3, 1e-9) {
		t.Fatalf("distance = %v, want 3", cam.Distance())
	}
	if y := cam.Position.Y / cam.Distance(); !near(y, 1, 1e-9) || y > 1 {
		t.Fatalf("camera not parked just short of the pole: y/r = %v", y)
	}
}

func TestAnimationSuspendsUpdate(t *testing.T) {
	cam, c := newControls()
	c.DragStart(0, 0)
	c.DragMove(50, 0)
	c.BeginAnimation()
	if c.State() != Animating {
		t.Fatalf("state = %v", c.State())
	}
	cam.Position = vectors.Vec3{X: 5}
	if c.Update() {
		t.Fatal("Update moved the camera during an animation")
	}
	c.EndAnimation()
	c.Update()
	if !near(cam.Position.X, 5, 1e-6) || !near(c.Distance(), 5, 1e-9) {
		t.Fatalf("controls did not adopt the animated position: %+v", cam.Position)
	}
}

func TestStatePriority(t *testing.T) {
	_, c := newControls()
	if c.State() != Idle {
		t.Fatalf("initial state = %v", c.State())
	}
	c.SetAutoRotate(true)
	if c.State() != AutoRotating {
		t.Fatalf("state = %v", c.State())
	}
	c.DragStart(0, 0)
	if c.State() != Dragging {
		t.Fatalf("state = %v", c.State())
	}
	c.DragEnd()
	c.Enabled = false
	c.DragStart(0, 0)
	if c.State() == Dragging {
		t.Fatal("disabled controls started a drag")
	}
}
