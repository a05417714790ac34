package render

import (
	"math"

	"github.com/echoflaresat/globeview/colors"
	"github.com/echoflaresat/globeview/earth"
	"github.com/echoflaresat/globeview/scene"
	"github.com/echoflaresat/globeview/vectors"
)

// bumpGain converts texel height differences into normal tilt before
// BumpScale is applied.
const bumpGain = 20.0

// Smoothstep performs a Hermite interpolation between 0 and 1 across [edge0, edge1].
// Returns 0 if x < edge0, 1 if x > edge1.
func Smoothstep(edge0, edge1, x float64) float64 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0.0
		}
		return 1.0
	}

	t := Clip((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3.0 - 2.0*t)
}

// Clip clamps x into the inclusive range [min, max].
func Clip(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}

// shade returns the color seen along dir: background, globe, fills,
// markers and the atmosphere rim, back to front.
func (f *frame) shade(rc *RayContext, dir vectors.Vec3) colors.Color4 {
	c := f.renderBackground(dir)

	depth := math.Inf(1)
	if f.globe != nil {
		rc.SetRayDirection(dir, f.globe.radius)
		if rc.Hit() {
			c = f.renderEarthSurface(rc)
			depth = rc.Depth()
		}
	}

	c = f.applyAtmosphere(rc.Origin, dir, depth, c)
	c = f.applyFills(rc.Origin, dir, depth, c)
	c = f.applyMarkers(rc.Origin, dir, depth, c)
	return c.Clamp01()
}

func (f *frame) renderBackground(dir vectors.Vec3) colors.Color4 {
	b := f.background
	if b == nil {
		return colors.Black()
	}
	local := scene.TransformDir(b.toLocal, dir)
	if b.tex != nil {
		return b.color.Mul(b.tex.Sample(local))
	}
	return b.color.Add(starfield(local))
}

// starfield scatters fixed pseudo-random stars over the sky directions.
func starfield(d vectors.Vec3) colors.Color4 {
	const cells = 300.0
	x := int64(math.Floor(d.X * cells))
	y := int64(math.Floor(d.Y * cells))
	z := int64(math.Floor(d.Z * cells))

	h := uint64(x)*0x9E3779B97F4A7C15 ^ uint64(y)*0xC2B2AE3D27D4EB4F ^ uint64(z)*0x165667B19E3779F9
	h ^= h >> 29
	h *= 0xBF58476D1CE4E5B9
	h ^= h >> 32
	if h%1000 >= 2 {
		return colors.Color4{}
	}
	b := 0.4 + 0.6*float64(h>>40&0xff)/255
	return colors.Color4{R: b, G: b, B: b}
}

// renderEarthSurface lights the textured globe at the ray's hit point.
func (f *frame) renderEarthSurface(rc *RayContext) colors.Color4 {
	g := f.globe
	local := scene.TransformPoint(g.toLocal, rc.HitPoint)

	base := g.color
	if g.tex != nil {
		base = base.Mul(g.tex.Sample(local))
	}

	normal := rc.SurfaceNormal
	if g.bump != nil && g.bumpScale != 0 {
		normal = scene.TransformDir(g.toWorld, bumpNormal(local.Normalize(), g)).Normalize()
	}

	ndl := normal.Dot(f.lightDir)
	diffuse := math.Max(0, ndl)
	if f.sun {
		diffuse = Smoothstep(-0.1, 0.1, ndl) * math.Max(0.2, ndl)
	}

	light := f.ambient.Add(f.light.ScaleRGB(diffuse))
	out := base.Mul(light)
	out.A = 1
	return out
}

// bumpNormal tilts the local surface normal n against the height gradient
// of the bump map.
func bumpNormal(n vectors.Vec3, g *globeLayer) vectors.Vec3 {
	u, v := earth.UV(n)
	du := 1.0 / float64(g.bump.Width)
	dv := 1.0 / float64(g.bump.Height)

	dhEast := g.bump.Elevation(u+du, v) - g.bump.Elevation(u-du, v)
	dhNorth := g.bump.Elevation(u, v-dv) - g.bump.Elevation(u, v+dv)

	east := vectors.Vec3{Y: 1}.Cross(n)
	if east.Norm() < 1e-9 {
		return n
	}
	east = east.Normalize()
	north := n.Cross(east)

	tilt := east.Scale(dhEast).Add(north.Scale(dhNorth)).Scale(g.bumpScale * bumpGain)
	return n.Sub(tilt).Normalize()
}

// applyAtmosphere adds the rim glow of the back-facing atmosphere shell,
// which only shows where the globe does not cover it.
func (f *frame) applyAtmosphere(o, dir vectors.Vec3, depth float64, base colors.Color4) colors.Color4 {
	a := f.atmosphere
	if a == nil {
		return base
	}
	hit, _, tFar := intersectSphereFull(o, dir, vectors.Vec3{}, a.radius)
	if !hit || tFar <= 0 || tFar >= depth {
		return base
	}
	n := o.Add(dir.Scale(tFar)).Normalize()
	nView := scene.TransformDir(a.view, n).Normalize()
	intensity := math.Pow(math.Max(0, 1-nView.Z), a.power) * a.coefficient
	return base.Additive(a.color, intensity)
}

// applyFills composites the translucent country fills on the camera side
// of the globe, far to near. Large fan triangles are chords that dip below
// the surface, so visibility uses the front-facing test instead of the
// globe depth.
func (f *frame) applyFills(o, dir vectors.Vec3, depth float64, base colors.Color4) colors.Color4 {
	type hit struct {
		t float64
		l *fillLayer
	}
	var hits []hit
	for i := range f.fills {
		l := &f.fills[i]
		if hit, _, t2 := intersectSphereFull(o, dir, l.center, l.radius); !hit || t2 < 0 {
			continue
		}
		best := math.Inf(1)
		for _, tri := range l.tris {
			if t, ok := intersectTriangle(o, dir, tri[0], tri[1], tri[2]); ok && t < best {
				best = t
			}
		}
		if math.IsInf(best, 1) {
			continue
		}
		if p := o.Add(dir.Scale(best)); best < depth || frontFacing(p, o) {
			hits = append(hits, hit{best, l})
		}
	}
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].t > hits[j-1].t; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
	for _, h := range hits {
		base = base.Over(h.l.color, h.l.opacity)
	}
	return base
}

func (f *frame) applyMarkers(o, dir vectors.Vec3, depth float64, base colors.Color4) colors.Color4 {
	for _, m := range f.markers {
		hit, t1, _ := intersectSphereFull(o, dir, m.center, m.radius)
		if !hit || t1 <= 0 || t1 >= depth {
			continue
		}
		base = base.Over(m.color, m.opacity)
	}
	return base
}

// frontFacing reports whether the outward normal at p faces the eye.
func frontFacing(p, eye vectors.Vec3) bool {
	return p.Normalize().Dot(eye.Sub(p)) > 0
}
