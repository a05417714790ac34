package polygon

import (
	"math"
	"testing"

	geojson "github.com/paulmach/go.geojson"

	"github.com/echoflaresat/globeview/boundary"
	"github.com/echoflaresat/globeview/earth"
	"github.com/echoflaresat/globeview/vectors"
)

func feature(id string, rings ...[][]float64) *boundary.Feature {
	return &boundary.Feature{ID: id, Geometry: geojson.NewPolygonGeometry(rings)}
}

func triArea(a, b, c vectors.Vec3) float64 {
	return b.Sub(a).Cross(c.Sub(a)).Norm() / 2
}

func meshArea(m Mesh) float64 {
	total := 0.0
	for _, t := range m.Indices {
		total += triArea(m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]])
	}
	return total
}

func TestSquareRing(t *testing.T) {
	f := feature("sq", [][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}})
	got := Build(f, Options{Fill: true})
	if len(got) != 1 {
		t.Fatalf("got %d parts, want 1", len(got))
	}
	r := got[0]
	if len(r.Fill.Indices) != 2 {
		t.Fatalf("got %d triangles, want 2", len(r.Fill.Indices))
	}
	want := [][3]int{{0, 1, 2}, {0, 2, 3}}
	for i := range want {
		if r.Fill.Indices[i] != want[i] {
			t.Fatalf("triangle %d = %v, want %v", i, r.Fill.Indices[i], want[i])
		}
	}
	// The two triangles share only the diagonal 0-2 and cover the quad.
	v := r.Fill.Vertices
	quad := triArea(v[0], v[1], v[2]) + triArea(v[0], v[2], v[3])
	alt := triArea(v[0], v[1], v[3]) + triArea(v[1], v[2], v[3])
	if math.Abs(quad-alt) > 1e-9 {
		t.Fatalf("fan area %v differs from other diagonal split %v", quad, alt)
	}
	if r.Feature != f {
		t.Fatalf("rendered polygon not tagged with its feature")
	}
}

func TestFanCountAndArea(t *testing.T) {
	for n := 3; n <= 24; n++ {
		// Regular n-gon in the z=0 plane.
		pts := make([]vectors.Vec3, n)
		for i := range pts {
			a := 2 * math.Pi * float64(i) / float64(n)
			pts[i] = vectors.Vec3{X: math.Cos(a), Y: math.Sin(a)}
		}
		m := Mesh{Vertices: pts, Indices: FanIndices(n)}
		if len(m.Indices) != n-2 {
			t.Fatalf("n=%d: %d triangles, want %d", n, len(m.Indices), n-2)
		}
		shoelace := 0.0
		for i := range pts {
			j := (i + 1) % n
			shoelace += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
		}
		shoelace = math.Abs(shoelace) / 2
		if got := meshArea(m); math.Abs(got-shoelace) > 1e-9 {
			t.Fatalf("n=%d: fan area %v, polygon area %v", n, got, shoelace)
		}
	}
	if FanIndices(2) != nil {
		t.Fatalf("FanIndices(2) should be nil")
	}
}

func TestClosingDuplicateDropped(t *testing.T) {
	open := feature("a", [][]float64{{0, 0}, {5, 0}, {5, 5}})
	closed := feature("b", [][]float64{{0, 0}, {5, 0}, {5, 5}, {0, 0}})
	ro := Build(open, Options{})[0]
	rc := Build(closed, Options{})[0]
	if len(ro.Fill.Vertices) != 3 || len(rc.Fill.Vertices) != 3 {
		t.Fatalf("vertices open=%d closed=%d, want 3 and 3", len(ro.Fill.Vertices), len(rc.Fill.Vertices))
	}
	if len(rc.Border) != 4 || rc.Border[0] != rc.Border[3] {
		t.Fatalf("border not closed: %v", rc.Border)
	}
}

func TestDegenerateRingSkipped(t *testing.T) {
	f := &boundary.Feature{ID: "m", Geometry: geojson.NewMultiPolygonGeometry(
		[][][]float64{{{0, 0}, {1, 1}, {0, 0}}},
		[][][]float64{{{10, 10}, {11, 10}, {11, 11}, {10, 11}, {10, 10}}},
		[][][]float64{},
	)}
	got := Build(f, Options{})
	if len(got) != 1 || got[0].Part != 1 {
		t.Fatalf("got %d parts, want only part 1", len(got))
	}
	if Build(&boundary.Feature{ID: "nil"}, Options{}) != nil {
		t.Fatalf("feature without geometry produced output")
	}
}

func TestRadii(t *testing.T) {
	cases := []struct {
		fill          bool
		offset        float64
		border, fill2 float64
	}{
		{true, 0.005, 1.005, 1.0045},
		{false, 0.005, 1.005, 1.005},
		{true, 0.5, 1.01, 1.009},
		{true, -1, 1, 1},
	}
	for _, c := range cases {
		b, f := Radii(Options{Fill: c.fill, Offset: c.offset})
		if math.Abs(b-c.border) > 1e-12 || math.Abs(f-c.fill2) > 1e-12 {
			t.Fatalf("Radii(fill=%v, off=%v) = (%v,%v), want (%v,%v)", c.fill, c.offset, b, f, c.border, c.fill2)
		}
	}

	r := Build(feature("x", [][]float64{{0, 0}, {3, 0}, {3, 3}}), Options{Fill: true, Offset: 1})[0]
	for _, v := range r.Border {
		if math.Abs(v.Norm()-1.01) > 1e-12 {
			t.Fatalf("border radius %v, want 1.01", v.Norm())
		}
	}
	for _, v := range r.Fill.Vertices {
		if math.Abs(v.Norm()-1.009) > 1e-12 {
			t.Fatalf("fill radius %v, want 1.009", v.Norm())
		}
	}
}

func TestEarClipConcave(t *testing.T) {
	// An L shape: fan from vertex 0 would cover the missing corner.
	ring := [][]float64{{0, 0}, {4, 0}, {4, 1}, {1, 1}, {1, 4}, {0, 4}}
	f := feature("L", ring)

	r := Build(f, Options{Fill: true, Triangulation: EarClip})[0]
	if len(r.Fill.Indices) != 4 {
		t.Fatalf("got %d triangles, want 4", len(r.Fill.Indices))
	}
	for _, tri := range r.Fill.Indices {
		c := vectors.Mean([]vectors.Vec3{
			r.Fill.Vertices[tri[0]], r.Fill.Vertices[tri[1]], r.Fill.Vertices[tri[2]],
		}).Normalize()
		g := earth.ToGeoCoordinate(c, 1)
		if g.Lat > 1.05 && g.Lon > 1.05 {
			t.Fatalf("triangle centroid %+v lies in the notch", g)
		}
	}
}

func TestEarClipHole(t *testing.T) {
	outer := [][]float64{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}
	hole := [][]float64{{4, 4}, {4, 6}, {6, 6}, {6, 4}, {4, 4}}
	r := Build(feature("ring", outer, hole), Options{Fill: true, Triangulation: EarClip})[0]
	if len(r.Fill.Vertices) != 8 {
		t.Fatalf("got %d vertices, want 8", len(r.Fill.Vertices))
	}
	if len(r.Fill.Indices) != 8 {
		t.Fatalf("got %d triangles, want 8", len(r.Fill.Indices))
	}
	// The fan path ignores holes entirely.
	fan := Build(feature("ring", outer, hole), Options{Fill: true})[0]
	if len(fan.Fill.Vertices) != 4 {
		t.Fatalf("fan kept hole vertices")
	}
}

func TestParseTriangulation(t *testing.T) {
	if tr, ok := ParseTriangulation("earclip"); !ok || tr != EarClip {
		t.Fatalf("earclip not parsed")
	}
	if tr, ok := ParseTriangulation(""); !ok || tr != Fan {
		t.Fatalf("empty should default to fan")
	}
	if _, ok := ParseTriangulation("delaunay"); ok {
		t.Fatalf("unknown mode accepted")
	}
}
