package render

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	geojson "github.com/paulmach/go.geojson"

	"github.com/echoflaresat/globeview/boundary"
	"github.com/echoflaresat/globeview/camera"
	"github.com/echoflaresat/globeview/colors"
	"github.com/echoflaresat/globeview/polygon"
	"github.com/echoflaresat/globeview/scene"
	"github.com/echoflaresat/globeview/texture"
)

const size = 100

func solid(c color.NRGBA) *texture.Texture {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return texture.New(img)
}

type fixture struct {
	scene *scene.Scene
	cam   *camera.Camera
}

func baseConfig() scene.Config {
	return scene.Config{
		GlobeImageURL:      "globe",
		BackgroundImageURL: "sky",
		AtmosphereColor:    colors.MustParse("lightskyblue"),
		AtmosphereAltitude: 0.15,
		GraticuleColor:     colors.White(),
	}
}

// newFixture builds a scene with a green globe on a blue sky, seen from
// +Z where longitude -90 faces the camera.
func newFixture(t *testing.T, cfg scene.Config, features ...*boundary.Feature) *fixture {
	t.Helper()
	polys := polygon.BuildAll(features, polygon.Options{Fill: cfg.Fill, Offset: 0.0001})
	s, err := scene.Build(cfg, polys, scene.NewResources())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(s.Dispose)
	for _, tex := range s.Textures {
		switch tex.Source() {
		case "globe":
			tex.Set(solid(color.NRGBA{G: 200, A: 255}))
		case "sky":
			tex.Set(solid(color.NRGBA{B: 80, A: 255}))
		}
	}
	return &fixture{scene: s, cam: camera.New(3, 1)}
}

func (fx *fixture) render(t *testing.T, opts Options) *image.NRGBA {
	t.Helper()
	img, err := New(opts).Render(context.Background(), fx.scene, fx.cam, size, size)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return img
}

func TestRenderRejectsEmptyFrame(t *testing.T) {
	fx := newFixture(t, baseConfig())
	_, err := New(Options{}).Render(context.Background(), fx.scene, fx.cam, 0, 10)
	if !errors.Is(err, ErrEmptyFrame) {
		t.Fatalf("err = %v, want ErrEmptyFrame", err)
	}
}

func TestRenderGlobeAndSky(t *testing.T) {
	fx := newFixture(t, baseConfig())
	img := fx.render(t, Options{})

	center := img.NRGBAAt(size/2, size/2)
	if center.G < 150 || center.R != 0 || center.B != 0 {
		t.Fatalf("center pixel = %v, want lit green", center)
	}
	corner := img.NRGBAAt(0, 0)
	if corner.B < 78 || corner.B > 80 || corner.G != 0 || corner.R != 0 {
		t.Fatalf("corner pixel = %v, want sky blue", corner)
	}
}

func TestRenderDeterministicAcrossWorkers(t *testing.T) {
	fx := newFixture(t, baseConfig())
	one := fx.render(t, Options{Workers: 1, Supersampling: 2})
	many := fx.render(t, Options{Workers: 7, Supersampling: 2})
	if !bytes.Equal(one.Pix, many.Pix) {
		t.Fatal("images differ between worker counts")
	}
}

func TestAtmosphereBrightensTheRim(t *testing.T) {
	cfg := baseConfig()
	plain := newFixture(t, cfg).render(t, Options{})
	cfg.ShowAtmosphere = true
	glow := newFixture(t, cfg).render(t, Options{})

	// Just outside the limb, inside the atmosphere shell.
	x, y := 91, size/2
	if sum(glow.NRGBAAt(x, y)) <= sum(plain.NRGBAAt(x, y)) {
		t.Fatalf("rim pixel not brighter: %v vs %v", glow.NRGBAAt(x, y), plain.NRGBAAt(x, y))
	}
	if glow.NRGBAAt(0, 0) != plain.NRGBAAt(0, 0) {
		t.Fatal("atmosphere leaked into the corner")
	}
}

func TestGraticuleDrawn(t *testing.T) {
	cfg := baseConfig()
	plain := newFixture(t, cfg).render(t, Options{})
	cfg.ShowGraticules = true
	grid := newFixture(t, cfg).render(t, Options{})

	// The equator and the -90° meridian cross at the image center.
	changed := false
	for y := size/2 - 1; y <= size/2; y++ {
		for x := size/2 - 1; x <= size/2; x++ {
			changed = changed || grid.NRGBAAt(x, y) != plain.NRGBAAt(x, y)
		}
	}
	if !changed {
		t.Fatal("graticule not drawn through the center")
	}
}

func box(id string, lat, lon, half float64) *boundary.Feature {
	ring := [][]float64{
		{lon - half, lat - half},
		{lon + half, lat - half},
		{lon + half, lat + half},
		{lon - half, lat + half},
	}
	return &boundary.Feature{
		ID:       id,
		Geometry: geojson.NewPolygonGeometry([][][]float64{ring}),
		Country:  &boundary.Country{ID: id, Color: "#ff0000"},
	}
}

func TestFillsOnlyOnNearSide(t *testing.T) {
	cfg := baseConfig()
	cfg.Fill = true

	near := newFixture(t, cfg, box("near", 0, -90, 10)).render(t, Options{})
	if c := near.NRGBAAt(size/2, size/2); c.R < 100 {
		t.Fatalf("near fill not visible: %v", c)
	}

	far := newFixture(t, cfg, box("far", 0, 90, 10)).render(t, Options{})
	if c := far.NRGBAAt(size/2, size/2); c.R != 0 {
		t.Fatalf("far fill showed through the globe: %v", c)
	}
}

func TestHitMeshesInvisibleWithoutFills(t *testing.T) {
	cfg := baseConfig()
	img := newFixture(t, cfg, box("near", 0, -90, 10)).render(t, Options{})
	// The border loop is 10° away from the center; the interior stays green.
	if c := img.NRGBAAt(size/2, size/2); c.R != 0 {
		t.Fatalf("hit mesh was drawn: %v", c)
	}
}

func TestMarkerVisible(t *testing.T) {
	fx := newFixture(t, baseConfig())
	fx.scene.SetMarker(0, -90)
	img := fx.render(t, Options{})
	if c := img.NRGBAAt(size/2, size/2); c.R < 200 {
		t.Fatalf("marker not drawn at the center: %v", c)
	}
}

func TestRenderCanceled(t *testing.T) {
	fx := newFixture(t, baseConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(Options{}).Render(ctx, fx.scene, fx.cam, size, size); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestSmoothstep(t *testing.T) {
	if Smoothstep(0, 1, -1) != 0 || Smoothstep(0, 1, 2) != 1 || Smoothstep(0, 1, 0.5) != 0.5 {
		t.Fatal("Smoothstep endpoints or midpoint wrong")
	}
}

func sum(c color.NRGBA) int { return int(c.R) + int(c.G) + int(c.B) }
