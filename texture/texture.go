// Package texture decodes equirectangular surface images and samples them by
// direction on the globe.
package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg" // register JPEG format with image.Decode
	_ "image/png"  // register PNG format with image.Decode
	"math"

	"github.com/echoflaresat/tiff"

	"github.com/echoflaresat/globeview/colors"
	"github.com/echoflaresat/globeview/earth"
	"github.com/echoflaresat/globeview/vectors"
)

// Texture is an RGBA image wrapped around the sphere: u grows eastward from
// the antimeridian, v grows southward from the north pole.
type Texture struct {
	Width  int
	Height int

	// Exactly one of pix and lazy is set.
	pix  *image.NRGBA
	lazy image.Image
}

// New wraps img, converting it to NRGBA once so sampling avoids the
// color.Color interface.
func New(img image.Image) *Texture {
	b := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || b.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	}
	return &Texture{Width: b.Dx(), Height: b.Dy(), pix: nrgba}
}

// NewLazy wraps an image whose pixels are decoded on access, such as a
// memory-mapped TIFF. Pixels are read through At.
func NewLazy(img image.Image) *Texture {
	b := img.Bounds()
	return &Texture{Width: b.Dx(), Height: b.Dy(), lazy: img}
}

// Decode reads a TIFF, PNG or JPEG image from data.
func Decode(data []byte) (*Texture, error) {
	img, err := tiff.Decode(bytes.NewReader(data))

	// fallback to image codecs
	if err != nil {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("decode texture: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("decode texture: empty image")
	}
	return New(img), nil
}

// Sample returns the texel under direction p (any length).
func (t *Texture) Sample(p vectors.Vec3) colors.Color4 {
	u, v := earth.UV(p)
	return t.SampleUV(u, v)
}

// SampleUV does a nearest-texel lookup; u wraps, v clamps.
func (t *Texture) SampleUV(u, v float64) colors.Color4 {
	return t.getColorAtXY(t.getXY(u, v))
}

// Bilinear interpolates the four texels around (u, v).
func (t *Texture) Bilinear(u, v float64) colors.Color4 {
	fx := u*float64(t.Width) - 0.5
	fy := v*float64(t.Height) - 0.5
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	c00 := t.getColorAtXY(x0, y0)
	c10 := t.getColorAtXY(x0+1, y0)
	c01 := t.getColorAtXY(x0, y0+1)
	c11 := t.getColorAtXY(x0+1, y0+1)
	return c00.Mix(c10, tx).Mix(c01.Mix(c11, tx), ty)
}

// Elevation returns the luminance at (u, v) in [0, 1], for bump maps.
func (t *Texture) Elevation(u, v float64) float64 {
	c := t.Bilinear(u, v)
	return 0.299*c.R + 0.587*c.G + 0.114*c.B
}

func (t *Texture) getXY(u, v float64) (int, int) {
	u = u - math.Floor(u)
	x := int(u * float64(t.Width))
	y := int(v * float64(t.Height))
	return x, y
}

func (t *Texture) getColorAtXY(x, y int) colors.Color4 {
	x %= t.Width
	if x < 0 {
		x += t.Width
	}
	if y < 0 {
		y = 0
	} else if y >= t.Height {
		y = t.Height - 1
	}

	if t.lazy != nil {
		return colors.FromStandardColor(t.lazy.At(x, y))
	}

	i := t.pix.PixOffset(x, y)
	p := t.pix.Pix[i : i+4 : i+4]
	return colors.Color4{
		R: float64(p[0]) / 255,
		G: float64(p[1]) / 255,
		B: float64(p[2]) / 255,
		A: float64(p[3]) / 255,
	}
}
