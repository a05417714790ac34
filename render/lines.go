package render

import (
	"image"
	"math"

	"github.com/echoflaresat/globeview/colors"
)

// drawLines rasterizes borders and graticule lines over the shaded image.
// Segments on the far hemisphere are skipped.
func (f *frame) drawLines(img *image.NRGBA) {
	eye := f.cam.Position
	for _, l := range f.lines {
		n := len(l.points)
		segs := n - 1
		if l.loop {
			segs = n
		}
		for i := 0; i < segs; i++ {
			a, b := l.points[i], l.points[(i+1)%n]
			if !frontFacing(a.Add(b).Scale(0.5), eye) {
				continue
			}
			ax, ay, okA := f.cam.ProjectToScreen(a, f.width, f.height)
			bx, by, okB := f.cam.ProjectToScreen(b, f.width, f.height)
			if !okA || !okB {
				continue
			}
			drawSegment(img, ax, ay, bx, by, l.color, l.opacity)
		}
	}
}

// drawSegment steps along the longer axis one pixel at a time, blending
// each covered pixel once. Shared endpoints of consecutive segments are
// left to the next segment.
func drawSegment(img *image.NRGBA, x0, y0, x1, y1 float64, c colors.Color4, opacity float64) {
	dx, dy := x1-x0, y1-y0
	steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
	if steps == 0 {
		blendPixel(img, int(x0), int(y0), c, opacity)
		return
	}
	for i := 0; i < steps; i++ {
		t := float64(i) / float64(steps)
		blendPixel(img, int(math.Floor(x0+dx*t)), int(math.Floor(y0+dy*t)), c, opacity)
	}
}

func blendPixel(img *image.NRGBA, x, y int, c colors.Color4, opacity float64) {
	if !(image.Point{X: x, Y: y}.In(img.Rect)) {
		return
	}
	base := colors.FromStandardColor(img.NRGBAAt(x, y))
	img.SetNRGBA(x, y, base.Over(c, opacity).ToNRGBA())
}
