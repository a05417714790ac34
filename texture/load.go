package texture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/exp/mmap"

	"github.com/echoflaresat/globeview/texture/tiff"
)

// Open reads a texture from a local path. Large uncompressed or deflated
// TIFFs stay memory-mapped and are decoded lazily; anything else is decoded
// fully.
func Open(path string) (*Texture, error) {
	reader, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture %s: %w", path, err)
	}

	img, err := tiff.Open(reader)
	if err == nil {
		return NewLazy(img), nil
	}
	if !errors.Is(err, tiff.ErrInvalidTiffHeader) && !errors.Is(err, tiff.ErrUnsupported) {
		reader.Close()
		return nil, fmt.Errorf("open texture %s: %w", path, err)
	}

	data := make([]byte, reader.Len())
	_, err = reader.ReadAt(data, 0)
	reader.Close()
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read texture %s: %w", path, err)
	}
	tex, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tex, nil
}

// Fetch downloads and decodes a texture over HTTP(S).
func Fetch(ctx context.Context, client *http.Client, url string) (*Texture, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch texture: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch texture %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch texture %s: status %s", url, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch texture %s: %w", url, err)
	}
	tex, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}
	return tex, nil
}

func isRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}
