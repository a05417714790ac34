package camera

import (
	"math"
	"testing"
	"time"

	"github.com/echoflaresat/globeview/vectors"
)

func TestEaseInOutQuad(t *testing.T) {
	cases := map[float64]float64{0: 0, 0.25: 0.125, 0.5: 0.5, 0.75: 0.875, 1: 1}
	for in, want := range cases {
		if got := EaseInOutQuad(in); !near(got, want, 1e-12) {
			t.Errorf("EaseInOutQuad(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestAnimatorReachesTarget(t *testing.T) {
	cam := New(3, 1)
	a := NewAnimator(cam)
	start := time.Unix(0, 0)
	from := vectors.Vec3{Z: 3}
	to := vectors.Vec3{X: 3}
	a.Start(from, to, start, time.Second)

	if a.Step(start.Add(500 * time.Millisecond)) {
		t.Fatal("finished halfway")
	}
	mid := cam.Position
	if !near(mid.Norm(), 3, 1e-9) {
		t.Fatalf("camera left the orbit sphere: |p| = %v", mid.Norm())
	}
	if !near(mid.X, mid.Z, 1e-9) {
		t.Fatalf("halfway point %+v is not on the bisector", mid)
	}

	if !a.Step(start.Add(time.Second)) {
		t.Fatal("did not report completion")
	}
	if cam.Position != to {
		t.Fatalf("final position = %+v", cam.Position)
	}
	if a.Step(start.Add(2 * time.Second)) {
		t.Fatal("reported completion twice")
	}
}

func TestAnimatorOverride(t *testing.T) {
	cam := New(3, 1)
	a := NewAnimator(cam)
	start := time.Unix(0, 0)
	a.Start(vectors.Vec3{Z: 3}, vectors.Vec3{X: 3}, start, time.Second)
	a.Step(start.Add(300 * time.Millisecond))

	now := start.Add(400 * time.Millisecond)
	second := vectors.Vec3{Y: 3}
	a.Start(cam.Position, second, now, time.Second)
	if !a.Step(now.Add(time.Second)) || cam.Position != second {
		t.Fatalf("last started transition did not win: %+v", cam.Position)
	}
}

func TestAnimatorZeroDuration(t *testing.T) {
	cam := New(3, 1)
	a := NewAnimator(cam)
	now := time.Unix(0, 0)
	a.Start(cam.Position, vectors.Vec3{Y: 4}, now, 0)
	if !a.Step(now) || cam.Position.Y != 4 {
		t.Fatalf("zero-duration transition: %+v", cam.Position)
	}
}

func TestInterpolateAntipodal(t *testing.T) {
	from := vectors.Vec3{Z: 2}
	to := vectors.Vec3{Z: -4}
	p := Interpolate(from, to, 0.5)
	if !near(p.Norm(), 3, 1e-9) || math.IsNaN(p.X) {
		t.Fatalf("antipodal midpoint = %+v", p)
	}
	if !near(p.Z, 0, 1e-9) {
		t.Fatalf("midpoint should be on the equator of the path: %+v", p)
	}
}

func TestManualClock(t *testing.T) {
	start := time.Unix(100, 0)
	c := NewManualClock(start)
	c.Advance(time.Second)
	if got := c.Now(); !got.Equal(start.Add(time.Second)) {
		t.Fatalf("Now = %v", got)
	}
}
