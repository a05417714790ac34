package colors

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// Color4 is a linear RGBA color with float64 components in [0,1].
// Alpha is straight (not premultiplied).
type Color4 struct {
	R, G, B, A float64
}

func New(r, g, b, a float64) Color4 {
	return Color4{R: r, G: g, B: b, A: a}
}

func (c Color4) RGBA() (r, g, b, a uint32) {
	rf := clamp01(c.R)
	gf := clamp01(c.G)
	bf := clamp01(c.B)
	af := clamp01(c.A)

	// Convert to pre-multiplied 16-bit values
	return uint32(rf * af * 65535),
		uint32(gf * af * 65535),
		uint32(bf * af * 65535),
		uint32(af * 65535)
}

func FromStandardColor(c color.Color) Color4 {
	// Fast path: already a Color4
	if c4, ok := c.(Color4); ok {
		return c4
	}

	r16, g16, b16, a16 := c.RGBA()
	if a16 == 0 {
		return Color4{R: 0, G: 0, B: 0, A: 0}
	}

	// De-premultiply and normalize to [0,1]
	invA := float64(0xFFFF) / float64(a16)
	return Color4{
		R: float64(r16) * invA / 65535.0,
		G: float64(g16) * invA / 65535.0,
		B: float64(b16) * invA / 65535.0,
		A: float64(a16) / 65535.0,
	}
}

// Parse accepts CSS color names ("lightskyblue"), "#rrggbb", "#rgb" and
// "0xrrggbb". The result is opaque.
func Parse(s string) (Color4, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return Color4{}, fmt.Errorf("empty color")
	}
	if rgba, ok := colornames.Map[s]; ok {
		return FromStandardColor(rgba), nil
	}
	if strings.HasPrefix(s, "0x") {
		s = "#" + s[2:]
	}
	if len(s) == 4 && s[0] == '#' {
		s = "#" + strings.Repeat(s[1:2], 2) + strings.Repeat(s[2:3], 2) + strings.Repeat(s[3:4], 2)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color4{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return Color4{R: c.R, G: c.G, B: c.B, A: 1}, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) Color4 {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

func Red() Color4 {
	return Color4{R: 1, G: 0, B: 0, A: 1}
}

func White() Color4 {
	return Color4{R: 1, G: 1, B: 1, A: 1}
}

func Black() Color4 {
	return Color4{R: 0, G: 0, B: 0, A: 1}
}

// Add returns c + o (component-wise).
func (c Color4) Add(o Color4) Color4 {
	return Color4{c.R + o.R, c.G + o.G, c.B + o.B, c.A + o.A}
}

// Mul returns c * o (component-wise).
func (c Color4) Mul(o Color4) Color4 {
	return Color4{c.R * o.R, c.G * o.G, c.B * o.B, c.A * o.A}
}

func (c Color4) WithAlpha(a float64) Color4 {
	return Color4{R: c.R, G: c.G, B: c.B, A: a}
}

// Scale returns c * s (scalar).
func (c Color4) Scale(s float64) Color4 {
	return Color4{c.R * s, c.G * s, c.B * s, c.A * s}
}

// ScaleRGB scales the color channels and leaves alpha untouched.
func (c Color4) ScaleRGB(s float64) Color4 {
	return Color4{c.R * s, c.G * s, c.B * s, c.A}
}

// Mix returns lerp(c, o, t) = c*(1-t) + o*t.
func (c Color4) Mix(o Color4, t float64) Color4 {
	return Color4{
		R: c.R*(1-t) + o.R*t,
		G: c.G*(1-t) + o.G*t,
		B: c.B*(1-t) + o.B*t,
		A: c.A*(1-t) + o.A*t,
	}
}

// Over composites o over c using o's alpha scaled by opacity.
func (c Color4) Over(o Color4, opacity float64) Color4 {
	w := clamp01(o.A * opacity)
	return Color4{
		R: c.R*(1-w) + o.R*w,
		G: c.G*(1-w) + o.G*w,
		B: c.B*(1-w) + o.B*w,
		A: c.A + (1-c.A)*w,
	}
}

// Additive adds o weighted by intensity to the color channels.
func (c Color4) Additive(o Color4, intensity float64) Color4 {
	return Color4{
		R: c.R + o.R*intensity,
		G: c.G + o.G*intensity,
		B: c.B + o.B*intensity,
		A: c.A,
	}
}

// Clamp01 clamps each component into [0,1].
func (c Color4) Clamp01() Color4 {
	return Color4{
		R: clamp01(c.R),
		G: clamp01(c.G),
		B: clamp01(c.B),
		A: clamp01(c.A),
	}
}

func (c Color4) ToNRGBA() color.NRGBA {
	return color.NRGBA{
		to8bit(c.R),
		to8bit(c.G),
		to8bit(c.B),
		to8bit(c.A),
	}
}

// Hex returns the "#rrggbb" form, ignoring alpha.
func (c Color4) Hex() string {
	cc := c.Clamp01()
	return colorful.Color{R: cc.R, G: cc.G, B: cc.B}.Hex()
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// to8bit truncates toward zero.
func to8bit(x float64) uint8 {
	return uint8(255.0 * clamp01(x))
}
