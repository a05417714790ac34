// Package polygon turns country boundary rings into border loops and
// triangulated fill meshes on the globe surface.
package polygon

import (
	"log/slog"

	"github.com/echoflaresat/globeview/boundary"
	"github.com/echoflaresat/globeview/earth"
	"github.com/echoflaresat/globeview/vectors"
)

// MaxOffset is the largest surface offset accepted for borders and fills.
const MaxOffset = 0.01

// closeEpsilon is the distance below which the last ring point is treated as
// a repeat of the first.
const closeEpsilon = 1e-4

// Triangulation selects how fill rings are split into triangles.
type Triangulation int

const (
	// Fan triangulates around the first vertex. Only correct for convex
	// or near-convex rings.
	Fan Triangulation = iota
	// EarClip handles concave rings and holes.
	EarClip
)

func (t Triangulation) String() string {
	switch t {
	case EarClip:
		return "earclip"
	default:
		return "fan"
	}
}

// ParseTriangulation maps "fan" and "earclip" to a Triangulation.
func ParseTriangulation(s string) (Triangulation, bool) {
	switch s {
	case "", "fan":
		return Fan, true
	case "earclip", "ear-clip", "ear_clip":
		return EarClip, true
	}
	return Fan, false
}

type Options struct {
	Fill          bool
	Offset        float64
	Triangulation Triangulation
	Logger        *slog.Logger
}

// Mesh is an indexed triangle list.
type Mesh struct {
	Vertices []vectors.Vec3
	Indices  [][3]int
}

// Empty reports whether the mesh has no triangles.
func (m Mesh) Empty() bool { return len(m.Vertices) == 0 || len(m.Indices) == 0 }

// Rendered is the output for one polygon part of a feature.
type Rendered struct {
	Feature *boundary.Feature
	Part    int

	// Border is the closed border loop: the first point is repeated last.
	Border []vectors.Vec3

	// Fill is the visible fill when Filled is set, otherwise an invisible
	// stand-in of identical shape used for hit testing.
	Fill   Mesh
	Filled bool
}

// ClampOffset clamps a surface offset into [0, MaxOffset].
func ClampOffset(offset float64) float64 {
	if offset < 0 {
		return 0
	}
	if offset > MaxOffset {
		return MaxOffset
	}
	return offset
}

// Radii returns the border and fill radii for the given options.
func Radii(opts Options) (border, fill float64) {
	off := ClampOffset(opts.Offset)
	border = 1 + off
	fill = border
	if opts.Fill {
		fill = 1 + off*0.9
	}
	return border, fill
}

// BuildAll builds every feature in order.
func BuildAll(features []*boundary.Feature, opts Options) []*Rendered {
	var out []*Rendered
	for _, f := range features {
		out = append(out, Build(f, opts)...)
	}
	return out
}

// Build produces one Rendered per usable polygon part of f. Degenerate rings
// are skipped with a warning; Build never fails.
func Build(f *boundary.Feature, opts Options) []*Rendered {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	borderR, fillR := Radii(opts)

	var out []*Rendered
	for part, rings := range f.Parts() {
		if len(rings) == 0 {
			continue
		}
		outer := projectRing(rings[0])
		if len(outer) < 3 {
			log.Warn("skipping degenerate ring",
				"feature", f.ID, "part", part, "points", len(outer))
			continue
		}

		r := &Rendered{
			Feature: f,
			Part:    part,
			Border:  closeLoop(scaled(outer, borderR)),
			Filled:  opts.Fill,
		}

		switch opts.Triangulation {
		case EarClip:
			var holes [][]vectors.Vec3
			for _, h := range rings[1:] {
				if hp := projectRing(h); len(hp) >= 3 {
					holes = append(holes, hp)
				}
			}
			mesh, err := earClip(outer, holes)
			if err != nil {
				log.Warn("ear clipping failed, using fan",
					"feature", f.ID, "part", part, "error", err)
				mesh = Mesh{Vertices: outer, Indices: FanIndices(len(outer))}
			}
			mesh.Vertices = scaled(mesh.Vertices, fillR)
			r.Fill = mesh
		default:
			r.Fill = Mesh{
				Vertices: scaled(outer, fillR),
				Indices:  FanIndices(len(outer)),
			}
		}
		out = append(out, r)
	}
	return out
}

// FanIndices returns the triangles (0, i, i+1) for i in [1, n-2].
func FanIndices(n int) [][3]int {
	if n < 3 {
		return nil
	}
	idx := make([][3]int, 0, n-2)
	for i := 1; i < n-1; i++ {
		idx = append(idx, [3]int{0, i, i + 1})
	}
	return idx
}

// projectRing maps [lon, lat] positions to the unit sphere and drops the
// closing duplicate.
func projectRing(ring [][]float64) []vectors.Vec3 {
	pts := make([]vectors.Vec3, 0, len(ring))
	for _, c := range ring {
		if len(c) < 2 {
			continue
		}
		pts = append(pts, earth.ToPoint3D(c[1], c[0], 1))
	}
	if n := len(pts); n > 1 && vectors.Distance(pts[0], pts[n-1]) < closeEpsilon {
		pts = pts[:n-1]
	}
	return pts
}

func scaled(pts []vectors.Vec3, r float64) []vectors.Vec3 {
	out := make([]vectors.Vec3, len(pts))
	for i, p := range pts {
		out[i] = p.Scale(r)
	}
	return out
}

func closeLoop(pts []vectors.Vec3) []vectors.Vec3 {
	return append(pts, pts[0])
}
