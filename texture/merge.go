package texture

import (
	"fmt"
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// Image returns the underlying image.
func (t *Texture) Image() image.Image {
	if t.pix != nil {
		return t.pix
	}
	return t.lazy
}

// Merge lays out cols×rows equally sized tiles, row by row from the
// north-west corner, into one equirectangular image.
func Merge(cols, rows int, tiles []*Texture) (*image.NRGBA, error) {
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("merge: bad layout %dx%d", cols, rows)
	}
	if len(tiles) != cols*rows {
		return nil, fmt.Errorf("merge: layout %dx%d needs %d tiles, got %d", cols, rows, cols*rows, len(tiles))
	}
	w, h := tiles[0].Width, tiles[0].Height
	canvas := image.NewNRGBA(image.Rect(0, 0, cols*w, rows*h))
	for i, tile := range tiles {
		if tile.Width != w || tile.Height != h {
			return nil, fmt.Errorf("merge: tile %d is %dx%d, want %dx%d", i, tile.Width, tile.Height, w, h)
		}
		src := tile.Image()
		x, y := (i%cols)*w, (i/cols)*h
		draw.Draw(canvas, image.Rect(x, y, x+w, y+h), src, src.Bounds().Min, draw.Src)
	}
	return canvas, nil
}

// Resize scales img to width, keeping the 2:1 equirectangular aspect of
// the input. A non-positive or larger width returns img unchanged.
func Resize(img *image.NRGBA, width int) *image.NRGBA {
	b := img.Bounds()
	if width <= 0 || width >= b.Dx() {
		return img
	}
	height := max(1, b.Dy()*width/b.Dx())
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}
