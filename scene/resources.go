package scene

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Kind classifies GPU-style resources.
type Kind int

const (
	KindGeometry Kind = iota
	KindMaterial
	KindTexture
	numKinds
)

func (k Kind) String() string {
	switch k {
	case KindGeometry:
		return "geometry"
	case KindMaterial:
		return "material"
	case KindTexture:
		return "texture"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Resources counts live geometries, materials and textures. Every resource
// registers on creation and deregisters on its first Dispose, so a leak shows
// up as a non-zero Live count after teardown.
type Resources struct {
	mu       sync.Mutex
	live     [numKinds]int
	created  [numKinds]int
	onChange func(kind Kind, live int)
}

func NewResources() *Resources {
	return &Resources{}
}

// OnChange installs a hook called with the new live count after every
// registration or disposal, e.g. to export a gauge.
func (r *Resources) OnChange(fn func(kind Kind, live int)) {
	r.mu.Lock()
	r.onChange = fn
	r.mu.Unlock()
}

// Live returns the number of undisposed resources of kind.
func (r *Resources) Live(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.live[kind]
}

// Created returns how many resources of kind were ever registered.
func (r *Resources) Created(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.created[kind]
}

// Total returns the number of live resources of all kinds.
func (r *Resources) Total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, v := range r.live {
		n += v
	}
	return n
}

func (r *Resources) add(kind Kind, delta int) {
	r.mu.Lock()
	r.live[kind] += delta
	if delta > 0 {
		r.created[kind] += delta
	}
	live, fn := r.live[kind], r.onChange
	r.mu.Unlock()
	if fn != nil {
		fn(kind, live)
	}
}

// resource is embedded by Geometry, Material and Texture.
type resource struct {
	owner    *Resources
	kind     Kind
	disposed atomic.Bool
}

func (r *resource) register(owner *Resources, kind Kind) {
	r.owner = owner
	r.kind = kind
	if owner != nil {
		owner.add(kind, 1)
	}
}

// Dispose releases the resource. Only the first call has an effect.
func (r *resource) Dispose() {
	if !r.disposed.CompareAndSwap(false, true) {
		return
	}
	if r.owner != nil {
		r.owner.add(r.kind, -1)
	}
}

// Disposed reports whether Dispose has been called.
func (r *resource) Disposed() bool {
	return r.disposed.Load()
}
