package earth

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/echoflaresat/globeview/vectors"
)

func near(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func TestToPoint3DKnownPoints(t *testing.T) {
	cases := []struct {
		name     string
		lat, lon float64
		want     vectors.Vec3
	}{
		{"null island", 0, 0, vectors.Vec3{X: 1, Y: 0, Z: 0}},
		{"north pole", 90, 0, vectors.Vec3{X: 0, Y: 1, Z: 0}},
		{"south pole", -90, 0, vectors.Vec3{X: 0, Y: -1, Z: 0}},
		{"90 east", 0, 90, vectors.Vec3{X: 0, Y: 0, Z: -1}},
		{"90 west", 0, -90, vectors.Vec3{X: 0, Y: 0, Z: 1}},
		{"antimeridian", 0, 180, vectors.Vec3{X: -1, Y: 0, Z: 0}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ToPoint3D(c.lat, c.lon, 1)
			if vectors.Distance(got, c.want) > 1e-9 {
				t.Fatalf("ToPoint3D(%v,%v) = %+v, want %+v", c.lat, c.lon, got, c.want)
			}
		})
	}
}

func TestToPoint3DRadius(t *testing.T) {
	p := ToPoint3D(37.5, -122.3, 1.005)
	if !near(p.Norm(), 1.005, 1e-12) {
		t.Fatalf("|p| = %v, want 1.005", p.Norm())
	}
}

func TestRoundTrip(t *testing.T) {
	for lat := -85.0; lat <= 85; lat += 12.5 {
		for lon := -175.0; lon <= 175; lon += 17.5 {
			for _, r := range []float64{1, 1.02, 3} {
				g := ToGeoCoordinate(ToPoint3D(lat, lon, r), r)
				if !near(g.Lat, lat, 1e-6) || !near(g.Lon, lon, 1e-6) {
					t.Fatalf("round trip (%v,%v,r=%v) = (%v,%v)", lat, lon, r, g.Lat, g.Lon)
				}
			}
		}
	}
}

func TestToGeoCoordinateLongitudeRange(t *testing.T) {
	for lon := -179.0; lon <= 179; lon += 1 {
		g := ToGeoCoordinate(ToPoint3D(10, lon, 1), 1)
		if g.Lon < -180 || g.Lon > 180 {
			t.Fatalf("lon %v mapped out of range: %v", lon, g.Lon)
		}
	}
}

func TestToGeoCoordinateClampsAcosInput(t *testing.T) {
	g := ToGeoCoordinate(vectors.Vec3{Y: 1.0000001}, 1)
	if math.IsNaN(g.Lat) || !near(g.Lat, 90, 1e-9) {
		t.Fatalf("lat = %v, want 90", g.Lat)
	}
}

func TestClamp(t *testing.T) {
	g, err := GeoCoordinate{Lat: 95, Lon: -200}.Clamp()
	if err != nil {
		t.Fatalf("Clamp error: %v", err)
	}
	if g.Lat != 90 || g.Lon != -180 {
		t.Fatalf("Clamp = %+v", g)
	}
	if !g.Valid() {
		t.Fatalf("clamped coordinate should be valid")
	}
	if _, err := (GeoCoordinate{Lat: math.NaN()}).Clamp(); !errors.Is(err, ErrInvalidCoordinate) {
		t.Fatalf("NaN clamp err = %v, want ErrInvalidCoordinate", err)
	}
	if (GeoCoordinate{Lat: 0, Lon: math.NaN()}).Valid() {
		t.Fatalf("NaN longitude reported valid")
	}
}

func TestUV(t *testing.T) {
	u, v := UV(ToPoint3D(0, 0, 1))
	if !near(u, 0.5, 1e-9) || !near(v, 0.5, 1e-9) {
		t.Fatalf("UV(0,0) = (%v,%v), want (0.5,0.5)", u, v)
	}
	u, v = UV(ToPoint3D(45, -90, 1))
	if !near(u, 0.25, 1e-9) || !near(v, 0.25, 1e-9) {
		t.Fatalf("UV(45,-90) = (%v,%v), want (0.25,0.25)", u, v)
	}
}

func TestSunDirectionNearEquinoxNoon(t *testing.T) {
	// Around the March equinox at 12:00 UTC the subsolar point sits close to
	// (0°, 0°).
	ts := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	sun := SunDirection(ts)
	if !near(sun.Norm(), 1, 1e-9) {
		t.Fatalf("|sun| = %v", sun.Norm())
	}
	g := ToGeoCoordinate(sun, 1)
	if math.Abs(g.Lat) > 1.5 || math.Abs(g.Lon) > 3 {
		t.Fatalf("subsolar point = %+v, want near (0,0)", g)
	}
}
