// Package loader provides a memoized, shared asynchronous load.
package loader

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Lazy runs load at most once at a time. Concurrent callers share the
// in-flight attempt and its outcome; a success is kept for every later
// call, a failure is not, so the next call tries again.
type Lazy[T any] struct {
	load  func(context.Context) (T, error)
	group singleflight.Group

	mu    sync.RWMutex
	value T
	ok    bool
}

func NewLazy[T any](load func(context.Context) (T, error)) *Lazy[T] {
	return &Lazy[T]{load: load}
}

// Get returns the cached value or waits for a load. The load runs detached
// from any single caller's cancellation; ctx only bounds this caller's wait.
func (l *Lazy[T]) Get(ctx context.Context) (T, error) {
	if v, ok := l.cached(); ok {
		return v, nil
	}

	ch := l.group.DoChan("", func() (interface{}, error) {
		if v, ok := l.cached(); ok {
			return v, nil
		}
		v, err := l.load(context.WithoutCancel(ctx))
		if err != nil {
			return v, err
		}
		l.mu.Lock()
		l.value, l.ok = v, true
		l.mu.Unlock()
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			var zero T
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Ready reports whether a value has been loaded.
func (l *Lazy[T]) Ready() bool {
	_, ok := l.cached()
	return ok
}

// Reset forgets the cached value.
func (l *Lazy[T]) Reset() {
	l.mu.Lock()
	var zero T
	l.value, l.ok = zero, false
	l.mu.Unlock()
}

func (l *Lazy[T]) cached() (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.value, l.ok
}
