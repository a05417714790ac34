package tiff

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"image"
	"image/color"
	"io"

	lru "github.com/hashicorp/golang-lru"
)

// blockCacheSize is how many decoded strips or tiles stay resident.
const blockCacheSize = 200

// Image is a lazily decoded TIFF. Strips are treated as full-width tiles.
type Image struct {
	header Header
	reader io.ReaderAt
	cache  *lru.Cache // block index -> []byte

	blockW, blockH int
	across         int
	offsets        []int
	byteCounts     []int
}

// Open parses the header and prepares lazy access to the pixel data. It
// returns ErrInvalidTiffHeader for non-TIFF input.
func Open(r io.ReaderAt) (*Image, error) {
	header, err := parseHeader(r)
	if err != nil {
		return nil, err
	}
	if err := header.validate(); err != nil {
		return nil, err
	}

	img := &Image{header: header, reader: r}
	if header.Tiled() {
		img.blockW, img.blockH = header.TileWidth, header.TileHeight
		img.offsets, img.byteCounts = header.TileOffsets, header.TileByteCounts
	} else {
		img.blockW, img.blockH = header.Width, header.RowsPerStrip
		img.offsets, img.byteCounts = header.StripOffsets, header.StripByteCounts
	}
	img.across = (header.Width + img.blockW - 1) / img.blockW

	// lru.New only fails for a non-positive size.
	img.cache, _ = lru.New(blockCacheSize)
	return img, nil
}

// Header returns the parsed header.
func (t *Image) Header() Header { return t.header }

func (t *Image) ColorModel() color.Model {
	return color.RGBAModel
}

func (t *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, t.header.Width, t.header.Height)
}

// At returns the pixel at (x, y). Unreadable blocks yield transparent black.
func (t *Image) At(x, y int) color.Color {
	h := t.header
	if x < 0 || y < 0 || x >= h.Width || y >= h.Height {
		return color.RGBA{}
	}

	index := (y/t.blockH)*t.across + x/t.blockW
	block, err := t.block(index)
	if err != nil {
		return color.RGBA{}
	}

	localX := x % t.blockW
	localY := y % t.blockH
	rowStride := t.blockW * h.SamplesPerPixel
	pixOffset := localY*rowStride + localX*h.SamplesPerPixel
	if pixOffset+h.SamplesPerPixel > len(block) {
		return color.RGBA{}
	}

	if h.Photometric == PhotometricRGB {
		return color.RGBA{
			R: block[pixOffset],
			G: block[pixOffset+1],
			B: block[pixOffset+2],
			A: 255,
		}
	}
	v := block[pixOffset]
	return color.RGBA{R: v, G: v, B: v, A: 255}
}

func (t *Image) block(index int) ([]byte, error) {
	if val, ok := t.cache.Get(index); ok {
		return val.([]byte), nil
	}
	if index >= len(t.offsets) {
		return nil, fmt.Errorf("block %d out of range", index)
	}

	buf := make([]byte, t.byteCounts[index])
	if _, err := t.reader.ReadAt(buf, int64(t.offsets[index])); err != nil && err != io.EOF {
		return nil, fmt.Errorf("read block %d: %w", index, err)
	}

	if t.header.Compression == CompressionDeflate {
		r, err := zlib.NewReader(bytes.NewReader(buf))
		if err != nil {
			return nil, fmt.Errorf("inflate block %d: %w", index, err)
		}
		defer r.Close()
		if buf, err = io.ReadAll(r); err != nil {
			return nil, fmt.Errorf("inflate block %d: %w", index, err)
		}
	}
	t.cache.Add(index, buf)
	return buf, nil
}
