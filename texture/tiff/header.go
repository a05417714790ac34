// Package tiff reads uncompressed or deflate-compressed 8-bit RGB and
// grayscale TIFFs lazily from an io.ReaderAt, decoding strips or tiles on
// demand. It exists for very large equirectangular textures that are
// memory-mapped instead of decoded up front.
package tiff

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Header is the subset of the first IFD needed to locate pixel data.
type Header struct {
	ByteOrder       binary.ByteOrder
	Width, Height   int
	SamplesPerPixel int
	BitsPerSample   []int
	Photometric     int
	Compression     int
	PlanarConfig    int

	// Strip layout
	RowsPerStrip    int
	StripOffsets    []int
	StripByteCounts []int

	// Tile layout
	TileWidth      int
	TileHeight     int
	TileOffsets    []int
	TileByteCounts []int
}

// https://www.loc.gov/preservation/digital/formats/content/tiff_tags.shtml
const (
	TagImageWidth                = 256
	TagImageLength               = 257
	TagBitsPerSample             = 258
	TagCompression               = 259
	TagPhotometricInterpretation = 262
	TagStripOffsets              = 273
	TagSamplesPerPixel           = 277
	TagRowsPerStrip              = 278
	TagStripByteCounts           = 279
	TagPlanarConfiguration       = 284
	TagTileWidth                 = 322
	TagTileLength                = 323
	TagTileOffsets               = 324
	TagTileByteCounts            = 325
)

const (
	CompressionNone    = 1
	CompressionDeflate = 8

	PhotometricBlackIsZero = 1
	PhotometricRGB         = 2
)

// ErrInvalidTiffHeader means the data is not a TIFF at all; callers fall
// back to other decoders.
var ErrInvalidTiffHeader = errors.New("invalid TIFF header")

// ErrUnsupported means the data is a TIFF this package cannot read lazily.
var ErrUnsupported = errors.New("unsupported TIFF layout")

func parseHeader(reader io.ReaderAt) (Header, error) {
	read := func(offset int64, size int) ([]byte, error) {
		buf := make([]byte, size)
		_, err := reader.ReadAt(buf, offset)
		return buf, err
	}

	raw, err := read(0, 8)
	if err != nil {
		return Header{}, ErrInvalidTiffHeader
	}

	var bo binary.ByteOrder
	switch string(raw[0:2]) {
	case "II":
		bo = binary.LittleEndian
	case "MM":
		bo = binary.BigEndian
	default:
		return Header{}, ErrInvalidTiffHeader
	}
	if bo.Uint16(raw[2:4]) != 42 {
		return Header{}, ErrInvalidTiffHeader
	}
	ifdOffset := int64(bo.Uint32(raw[4:8]))

	entryCountRaw, err := read(ifdOffset, 2)
	if err != nil {
		return Header{}, fmt.Errorf("read IFD: %w", err)
	}
	numEntries := int(bo.Uint16(entryCountRaw))
	entriesRaw, err := read(ifdOffset+2, numEntries*12)
	if err != nil {
		return Header{}, fmt.Errorf("read IFD entries: %w", err)
	}

	hdr := Header{
		ByteOrder:       bo,
		SamplesPerPixel: 1,
		Photometric:     -1,
		Compression:     CompressionNone,
		PlanarConfig:    1,
	}

	for i := 0; i < numEntries; i++ {
		entry := entriesRaw[i*12 : (i+1)*12]
		tag := bo.Uint16(entry[0:2])
		typ := bo.Uint16(entry[2:4])
		count := bo.Uint32(entry[4:8])

		// SHORT (3) values are left-justified in the value field; LONG (4)
		// fill it.
		scalar := func() int {
			if typ == 3 {
				return int(bo.Uint16(entry[8:10]))
			}
			return int(bo.Uint32(entry[8:12]))
		}
		array := func() ([]int, error) {
			size := 4
			if typ == 3 {
				size = 2
			}
			if int(count)*size <= 4 {
				out := make([]int, count)
				for k := range out {
					if size == 2 {
						out[k] = int(bo.Uint16(entry[8+2*k:]))
					} else {
						out[k] = int(bo.Uint32(entry[8:12]))
					}
				}
				return out, nil
			}
			buf, err := read(int64(bo.Uint32(entry[8:12])), int(count)*size)
			if err != nil {
				return nil, fmt.Errorf("read tag %d: %w", tag, err)
			}
			out := make([]int, count)
			for k := range out {
				if size == 2 {
					out[k] = int(bo.Uint16(buf[k*2:]))
				} else {
					out[k] = int(bo.Uint32(buf[k*4:]))
				}
			}
			return out, nil
		}

		switch tag {
		case TagImageWidth:
			hdr.Width = scalar()
		case TagImageLength:
			hdr.Height = scalar()
		case TagBitsPerSample:
			hdr.BitsPerSample, err = array()
		case TagCompression:
			hdr.Compression = scalar()
		case TagPhotometricInterpretation:
			hdr.Photometric = scalar()
		case TagStripOffsets:
			hdr.StripOffsets, err = array()
		case TagSamplesPerPixel:
			hdr.SamplesPerPixel = scalar()
		case TagRowsPerStrip:
			hdr.RowsPerStrip = scalar()
		case TagStripByteCounts:
			hdr.StripByteCounts, err = array()
		case TagPlanarConfiguration:
			hdr.PlanarConfig = scalar()
		case TagTileWidth:
			hdr.TileWidth = scalar()
		case TagTileLength:
			hdr.TileHeight = scalar()
		case TagTileOffsets:
			hdr.TileOffsets, err = array()
		case TagTileByteCounts:
			hdr.TileByteCounts, err = array()
		}
		if err != nil {
			return Header{}, err
		}
	}

	if hdr.RowsPerStrip <= 0 || hdr.RowsPerStrip > hdr.Height {
		hdr.RowsPerStrip = hdr.Height
	}
	return hdr, nil
}

// Tiled reports whether pixel data is organized in tiles rather than strips.
func (h Header) Tiled() bool {
	return h.TileWidth > 0 && h.TileHeight > 0
}

func (h Header) validate() error {
	if h.Width <= 0 || h.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrUnsupported, h.Width, h.Height)
	}
	if h.Compression != CompressionNone && h.Compression != CompressionDeflate {
		return fmt.Errorf("%w: compression %d", ErrUnsupported, h.Compression)
	}
	if h.PlanarConfig != 1 {
		return fmt.Errorf("%w: planar configuration %d", ErrUnsupported, h.PlanarConfig)
	}
	if len(h.BitsPerSample) == 0 || h.BitsPerSample[0] != 8 {
		return fmt.Errorf("%w: bits per sample %v", ErrUnsupported, h.BitsPerSample)
	}
	switch h.Photometric {
	case PhotometricBlackIsZero:
		if h.SamplesPerPixel != 1 {
			return fmt.Errorf("%w: grayscale with %d samples", ErrUnsupported, h.SamplesPerPixel)
		}
	case PhotometricRGB:
		if h.SamplesPerPixel != 3 {
			return fmt.Errorf("%w: RGB with %d samples", ErrUnsupported, h.SamplesPerPixel)
		}
	default:
		return fmt.Errorf("%w: photometric %d", ErrUnsupported, h.Photometric)
	}
	if h.Tiled() {
		if len(h.TileOffsets) == 0 || len(h.TileOffsets) != len(h.TileByteCounts) {
			return fmt.Errorf("%w: tile offsets/byte counts", ErrUnsupported)
		}
		return nil
	}
	if len(h.StripOffsets) == 0 || len(h.StripOffsets) != len(h.StripByteCounts) {
		return fmt.Errorf("%w: strip offsets/byte counts", ErrUnsupported)
	}
	return nil
}
