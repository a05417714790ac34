package scene

import (
	"sync/atomic"

	"github.com/echoflaresat/globeview/texture"
)

// Texture is a handle for an image that may still be loading. Renderers
// treat an empty handle as "not yet available" and keep drawing.
type Texture struct {
	resource

	src string
	img atomic.Pointer[texture.Texture]
}

// NewTexture registers an empty handle for src.
func (r *Resources) NewTexture(src string) *Texture {
	t := &Texture{src: src}
	t.register(r, KindTexture)
	return t
}

// Source is the URL or path the handle was created for.
func (t *Texture) Source() string { return t.src }

// Set swaps in a loaded image. It reports false, and keeps nothing, once
// the handle is disposed.
func (t *Texture) Set(img *texture.Texture) bool {
	if t.Disposed() {
		return false
	}
	t.img.Store(img)
	return true
}

// Image returns the loaded image, or nil.
func (t *Texture) Image() *texture.Texture {
	if t == nil {
		return nil
	}
	return t.img.Load()
}

// Dispose releases the image and deregisters the handle.
func (t *Texture) Dispose() {
	t.img.Store(nil)
	t.resource.Dispose()
}
