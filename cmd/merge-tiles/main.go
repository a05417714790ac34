// Command merge-tiles joins equirectangular tiles (TIFF, PNG or JPEG) into
// one globe surface image, optionally scaled down for serving.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/echoflaresat/globeview/texture"
)

func main() {
	layout := flag.String("layout", "1x1", "Tile layout as <cols>x<rows>, tiles listed row by row from the north-west")
	out := flag.String("out", "globe.jpg", "Output image (.png, .jpg or .jpeg)")
	width := flag.Int("width", 0, "Scale the result down to this width; 0 keeps full size")
	quality := flag.Int("quality", 90, "JPEG quality")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <tile1> <tile2> ...\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cols, rows, err := parseLayout(*layout)
	if err != nil {
		log.Fatal(err)
	}

	tiles := make([]*texture.Texture, 0, flag.NArg())
	for _, path := range flag.Args() {
		fmt.Printf("Processing %s\n", path)
		tile, err := texture.Open(path)
		if err != nil {
			log.Fatalf("Could not load tile: %v", err)
		}
		tiles = append(tiles, tile)
	}

	canvas, err := texture.Merge(cols, rows, tiles)
	if err != nil {
		log.Fatal(err)
	}
	if err := save(*out, texture.Resize(canvas, *width), *quality); err != nil {
		log.Fatal(err)
	}
}

func parseLayout(s string) (cols, rows int, err error) {
	parts := strings.Split(s, "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid layout %q (expected NxM)", s)
	}
	if cols, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, fmt.Errorf("invalid cols: %w", err)
	}
	if rows, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, fmt.Errorf("invalid rows: %w", err)
	}
	return cols, rows, nil
}

func save(output string, img image.Image, quality int) error {
	fmt.Printf("-> creating %s\n", output)
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(output)); ext {
	case ".png":
		return png.Encode(f, img)
	case ".jpg", ".jpeg":
		return jpeg.Encode(f, img, &jpeg.Options{Quality: quality})
	default:
		return fmt.Errorf("unsupported output format: %s", ext)
	}
}
