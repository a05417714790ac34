// Package render ray-traces a globe scene into an image on the CPU.
package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/echoflaresat/globeview/camera"
	"github.com/echoflaresat/globeview/colors"
	"github.com/echoflaresat/globeview/scene"
)

var ErrEmptyFrame = errors.New("render: frame has zero size")

// Options tune quality and parallelism.
type Options struct {
	// Supersampling is the per-axis sample count; 1 or less disables it.
	Supersampling int

	// Workers bounds the number of concurrent row bands. Zero means
	// GOMAXPROCS.
	Workers int

	// SunTime, when set, lights the globe from the Sun's true direction at
	// that instant instead of the scene's directional light.
	SunTime time.Time
}

// Renderer draws scenes with fixed options. It is safe for concurrent use.
type Renderer struct {
	opts    Options
	offsets [][2]float64
}

func New(opts Options) *Renderer {
	if opts.Supersampling < 1 {
		opts.Supersampling = 1
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Renderer{
		opts:    opts,
		offsets: GenerateSupersamplingOffsets(opts.Supersampling),
	}
}

// At returns a renderer with the same options that lights the globe from
// the Sun at t.
func (r *Renderer) At(t time.Time) *Renderer {
	c := *r
	c.opts.SunTime = t
	return &c
}

// Render draws s as seen by cam into a width×height image.
func (r *Renderer) Render(ctx context.Context, s *scene.Scene, cam *camera.Camera, width, height int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyFrame, width, height)
	}
	if s == nil || s.Disposed() {
		return nil, errors.New("render: no scene")
	}

	f := newFrame(s, cam, width, height, r.opts.SunTime)
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	if err := r.raytraceScenePixels(ctx, f, img); err != nil {
		return nil, err
	}
	f.drawLines(img)
	return img, nil
}

// raytraceScenePixels shades every pixel, one row band per worker.
func (r *Renderer) raytraceScenePixels(ctx context.Context, f *frame, img *image.NRGBA) error {
	g, ctx := errgroup.WithContext(ctx)
	bands := r.opts.Workers
	if bands > f.height {
		bands = f.height
	}
	rows := (f.height + bands - 1) / bands
	n := float64(len(r.offsets))

	for y0 := 0; y0 < f.height; y0 += rows {
		y0, y1 := y0, min(y0+rows, f.height)
		g.Go(func() error {
			rc := &RayContext{Origin: f.cam.Position}
			for y := y0; y < y1; y++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				for x := 0; x < f.width; x++ {
					accum := colors.Color4{}
					for _, off := range r.offsets {
						_, dir := f.cam.PixelRay(float64(x)+0.5+off[0], float64(y)+0.5+off[1], f.width, f.height)
						accum = accum.Add(f.shade(rc, dir))
					}
					c := accum.Scale(1.0 / n)
					c.A = 1
					img.SetNRGBA(x, y, c.ToNRGBA())
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// GenerateSupersamplingOffsets returns n×n offsets in [-0.5, +0.5] for
// supersampling, as pairs (dx, dy) with pixel-center spacing.
func GenerateSupersamplingOffsets(n int) [][2]float64 {
	if n <= 0 {
		return nil
	}
	step := 1.0 / float64(n)
	out := make([][2]float64, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			dx := (float64(i)+0.5)*step - 0.5
			dy := (float64(j)+0.5)*step - 0.5
			out = append(out, [2]float64{dx, dy})
		}
	}
	return out
}
