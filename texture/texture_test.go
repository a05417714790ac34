package texture

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/echoflaresat/globeview/earth"
)

// quadrants builds a 4x2 image: west half red, east half blue, top row
// brighter than the bottom row.
func quadrants() *Texture {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			v := uint8(255)
			if y == 1 {
				v = 128
			}
			if x < 2 {
				img.SetNRGBA(x, y, color.NRGBA{R: v, A: 255})
			} else {
				img.SetNRGBA(x, y, color.NRGBA{B: v, A: 255})
			}
		}
	}
	return New(img)
}

func TestSampleFollowsProjection(t *testing.T) {
	tex := quadrants()
	cases := []struct {
		name     string
		lat, lon float64
		red      bool
		bright   bool
	}{
		{"north west", 45, -90, true, true},
		{"north east", 45, 90, false, true},
		{"south west", -45, -90, true, false},
		{"south east", -45, 90, false, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := tex.Sample(earth.ToPoint3D(c.lat, c.lon, 1))
			if (got.R > 0) != c.red {
				t.Fatalf("color %+v, red=%v expected", got, c.red)
			}
			ch := got.B
			if c.red {
				ch = got.R
			}
			if (ch > 0.9) != c.bright {
				t.Fatalf("channel %v, bright=%v expected", ch, c.bright)
			}
		})
	}
}

func TestSampleUVWrapsHorizontally(t *testing.T) {
	tex := quadrants()
	if a, b := tex.SampleUV(0.1, 0.2), tex.SampleUV(1.1, 0.2); a != b {
		t.Fatalf("u did not wrap: %+v vs %+v", a, b)
	}
	if a, b := tex.SampleUV(0.1, 1.5), tex.SampleUV(0.1, 0.99); a != b {
		t.Fatalf("v did not clamp: %+v vs %+v", a, b)
	}
}

func TestElevation(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 2))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	tex := New(img)
	if h := tex.Elevation(0.5, 0.5); math.Abs(h-1) > 1e-9 {
		t.Fatalf("height = %v, want 1", h)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte("not an image")); err == nil {
		t.Fatalf("garbage decoded")
	}
}
