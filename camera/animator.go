package camera

import (
	"math"
	"time"

	"github.com/echoflaresat/globeview/vectors"
)

// EaseInOutQuad accelerates through the first half and decelerates
// through the second.
func EaseInOutQuad(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return 1 - math.Pow(-2*t+2, 2)/2
}

// Animator moves the camera from one position to another over time. The
// direction is interpolated along the great circle and the distance
// linearly, so the camera orbits rather than cutting through the globe.
type Animator struct {
	cam *Camera

	active   bool
	from, to vectors.Vec3
	start    time.Time
	duration time.Duration
}

func NewAnimator(cam *Camera) *Animator {
	return &Animator{cam: cam}
}

// Active reports whether a transition is in progress.
func (a *Animator) Active() bool { return a.active }

// Start begins a transition, replacing any in progress.
func (a *Animator) Start(from, to vectors.Vec3, now time.Time, duration time.Duration) {
	a.active = true
	a.from, a.to = from, to
	a.start = now
	a.duration = duration
	a.cam.Position = from
}

// Cancel stops the transition where it is.
func (a *Animator) Cancel() { a.active = false }

// Step moves the camera to its position at now. It reports true exactly
// once, on the step that reaches the target.
func (a *Animator) Step(now time.Time) bool {
	if !a.active {
		return false
	}
	t := 1.0
	if a.duration > 0 {
		t = float64(now.Sub(a.start)) / float64(a.duration)
	}
	if t >= 1 {
		a.cam.Position = a.to
		a.active = false
		return true
	}
	a.cam.Position = Interpolate(a.from, a.to, EaseInOutQuad(math.Max(0, t)))
	return false
}

// Interpolate blends two positions around the origin: spherical
// interpolation of the direction, linear interpolation of the length.
func Interpolate(from, to vectors.Vec3, t float64) vectors.Vec3 {
	r := from.Norm() + (to.Norm()-from.Norm())*t
	return slerp(from.Normalize(), to.Normalize(), t).Scale(r)
}

func slerp(a, b vectors.Vec3, t float64) vectors.Vec3 {
	dot := math.Max(-1, math.Min(1, a.Dot(b)))
	switch {
	case dot > 1-1e-9:
		return a.Lerp(b, t).Normalize()
	case dot < -1+1e-9:
		// Antipodal: any great circle will do.
		return rotateVec(a, a.Orthogonal(), math.Cos(math.Pi*t), math.Sin(math.Pi*t))
	}
	omega := math.Acos(dot)
	s := math.Sin(omega)
	return a.Scale(math.Sin((1-t)*omega) / s).Add(b.Scale(math.Sin(t*omega) / s))
}

// rotateVec applies Rodrigues' rotation formula: rotate v around axis by (cosT, sinT).
func rotateVec(v, axis vectors.Vec3, cosT, sinT float64) vectors.Vec3 {
	return v.Scale(cosT).
		Add(axis.Cross(v).Scale(sinT)).
		Add(axis.Scale(axis.Dot(v) * (1.0 - cosT)))
}
