package scene

import (
	"math"
	"testing"

	geojson "github.com/paulmach/go.geojson"

	"github.com/echoflaresat/globeview/boundary"
	"github.com/echoflaresat/globeview/colors"
	"github.com/echoflaresat/globeview/polygon"
)

func square(id, color string) *boundary.Feature {
	return &boundary.Feature{
		ID:       id,
		Geometry: geojson.NewPolygonGeometry([][][]float64{{{0, 0}, {10, 0}, {10, 10}, {0, 10}}}),
		Country:  &boundary.Country{ID: id, Color: color},
	}
}

func testConfig() Config {
	return Config{
		GlobeImageURL:      "globe.png",
		BumpImageURL:       "bump.png",
		BumpScale:          0.05,
		ShowAtmosphere:     true,
		AtmosphereColor:    colors.MustParse("lightskyblue"),
		AtmosphereAltitude: 0.15,
		ShowGraticules:     true,
		GraticuleColor:     colors.White(),
		Fill:               true,
	}
}

func build(t *testing.T, cfg Config, features ...*boundary.Feature) (*Scene, *Resources) {
	t.Helper()
	res := NewResources()
	polys := polygon.BuildAll(features, polygon.Options{Fill: cfg.Fill, Offset: 0.0001})
	s, err := Build(cfg, polys, res)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return s, res
}

func TestDisposeReleasesEverything(t *testing.T) {
	s, res := build(t, testConfig(), square("A", "#ff0000"), square("B", ""))
	s.SetMarker(10, 20)
	if res.Total() == 0 {
		t.Fatal("no resources registered")
	}
	if got := res.Live(KindTexture); got != 2 {
		t.Fatalf("live textures = %d, want 2 (background has no image)", got)
	}

	s.Dispose()
	s.Dispose()
	for _, k := range []Kind{KindGeometry, KindMaterial, KindTexture} {
		if n := res.Live(k); n != 0 {
			t.Errorf("live %s after Dispose = %d, want 0", k, n)
		}
	}
	if len(s.Root.Children()) != 0 {
		t.Fatal("root still has children after Dispose")
	}
}

func TestMarkerReplaceDisposesPrevious(t *testing.T) {
	s, res := build(t, testConfig())
	defer s.Dispose()

	before := res.Total()
	s.SetMarker(0, 0)
	withOne := res.Total()
	if withOne != before+4 {
		t.Fatalf("marker registered %d resources, want 4", withOne-before)
	}
	first := s.Marker()

	s.SetMarker(45, 90)
	if res.Total() != withOne {
		t.Fatalf("live resources after replace = %d, want %d", res.Total(), withOne)
	}
	if first.Parent() != nil {
		t.Fatal("old marker still attached")
	}
	if s.Marker().Parent() != s.Globe {
		t.Fatal("marker is not a child of the globe")
	}

	s.ClearMarker()
	if res.Total() != before || s.Marker() != nil {
		t.Fatal("ClearMarker did not release the marker")
	}
}

func TestMarkerPosition(t *testing.T) {
	s, _ := build(t, testConfig())
	defer s.Dispose()

	s.SetMarker(30, -60)
	dot := s.Marker().Children()[0]
	if r := dot.Position.Norm(); math.Abs(r-MarkerAltitude) > 1e-9 {
		t.Fatalf("marker radius = %v, want %v", r, MarkerAltitude)
	}
}

func TestParallax(t *testing.T) {
	s, _ := build(t, testConfig())
	defer s.Dispose()

	s.Globe.Rotation.X = 0.2
	s.Globe.Rotation.Y = 1.0
	s.UpdateParallax(ParallaxFactor)
	if math.Abs(s.Background.Rotation.Y+0.3) > 1e-12 || math.Abs(s.Background.Rotation.X+0.06) > 1e-12 {
		t.Fatalf("background rotation = %+v", s.Background.Rotation)
	}
}

func TestOptionalLayers(t *testing.T) {
	cfg := testConfig()
	s, _ := build(t, cfg)
	if s.Atmosphere == nil || s.Graticule == nil {
		t.Fatal("atmosphere and graticule expected")
	}
	if got := len(s.Graticule.Children()); got != 11 {
		t.Fatalf("graticule lines = %d, want 5 parallels + 6 meridian circles", got)
	}
	if s.Atmosphere.Parent() != s.Globe {
		t.Fatal("atmosphere must turn with the globe")
	}
	s.Dispose()

	cfg.ShowAtmosphere = false
	cfg.ShowGraticules = false
	s, _ = build(t, cfg)
	defer s.Dispose()
	if s.Atmosphere != nil || s.Graticule != nil {
		t.Fatal("disabled layers were built")
	}
}

func TestPolygonMaterials(t *testing.T) {
	cfg := testConfig()
	s, _ := build(t, cfg, square("A", "#ff0000"), square("B", ""))
	if len(s.HitTargets) != 2 || len(s.Borders) != 2 {
		t.Fatalf("got %d hit targets and %d borders", len(s.HitTargets), len(s.Borders))
	}
	a := s.HitTargets[0]
	if a.Polygon == nil || a.Polygon.Feature.ID != "A" {
		t.Fatal("hit target does not carry its polygon")
	}
	if a.Material.Opacity != FillOpacity || !a.Material.Visible {
		t.Fatalf("fill material = %+v", a.Material)
	}
	if a.Material.Color.Hex() != "#ff0000" {
		t.Fatalf("fill color = %s", a.Material.Color.Hex())
	}
	if got := s.Borders[1].Material.Color.Hex(); got != "#00ff00" {
		t.Fatalf("default border color = %s", got)
	}
	s.Dispose()

	capColor := colors.MustParse("#0000ff")
	cfg.CapColor = &capColor
	cfg.Fill = false
	s, _ = build(t, cfg, square("A", "#ff0000"))
	defer s.Dispose()
	hit := s.HitTargets[0]
	if hit.Material.Visible || hit.Material.Side != DoubleSide {
		t.Fatalf("hit mesh without fill must be invisible and double sided: %+v", hit.Material)
	}
	if s.Borders[0].Material.Color.Hex() != "#ff0000" {
		t.Fatal("cap color must not recolor the border")
	}
}

func TestBuildRequiresResources(t *testing.T) {
	if _, err := Build(testConfig(), nil, nil); err == nil {
		t.Fatal("Build without resources succeeded")
	}
}
