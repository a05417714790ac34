package texture

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheSize is the number of decoded textures a Loader keeps.
const DefaultCacheSize = 16

// Target receives a loaded texture. Set reports false when the target was
// disposed while the load was in flight; the result is then dropped.
type Target interface {
	Source() string
	Set(*Texture) bool
}

// Loader fetches textures in the background and memoizes decoded results,
// so every mount of the same image shares one decode.
type Loader struct {
	client  *http.Client
	cache   *lru.Cache
	group   singleflight.Group
	log     *slog.Logger
	observe func(src string, d time.Duration, err error)
	wg      sync.WaitGroup
}

type LoaderOption func(*Loader)

func WithHTTPClient(c *http.Client) LoaderOption {
	return func(l *Loader) { l.client = c }
}

func WithLogger(log *slog.Logger) LoaderOption {
	return func(l *Loader) { l.log = log }
}

func WithCacheSize(n int) LoaderOption {
	return func(l *Loader) {
		if c, err := lru.New(n); err == nil {
			l.cache = c
		}
	}
}

// WithObserver is called after every uncached load attempt.
func WithObserver(fn func(src string, d time.Duration, err error)) LoaderOption {
	return func(l *Loader) { l.observe = fn }
}

func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		client: &http.Client{Timeout: 60 * time.Second},
		log:    slog.Default(),
	}
	for _, o := range opts {
		o(l)
	}
	if l.cache == nil {
		l.cache, _ = lru.New(DefaultCacheSize)
	}
	return l
}

// Get returns the decoded texture for src, loading it at most once across
// concurrent callers.
func (l *Loader) Get(ctx context.Context, src string) (*Texture, error) {
	if v, ok := l.cache.Get(src); ok {
		return v.(*Texture), nil
	}
	v, err, _ := l.group.Do(src, func() (interface{}, error) {
		if v, ok := l.cache.Get(src); ok {
			return v, nil
		}
		start := time.Now()
		tex, err := l.load(ctx, src)
		if l.observe != nil {
			l.observe(src, time.Since(start), err)
		}
		if err != nil {
			return nil, err
		}
		l.cache.Add(src, tex)
		return tex, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Texture), nil
}

func (l *Loader) load(ctx context.Context, src string) (*Texture, error) {
	if isRemote(src) {
		return Fetch(ctx, l.client, src)
	}
	return Open(strings.TrimPrefix(src, "file://"))
}

// Load starts one background load per target and returns immediately.
// Failures are logged and leave the target empty.
func (l *Loader) Load(ctx context.Context, targets ...Target) {
	for _, t := range targets {
		if t == nil || t.Source() == "" {
			continue
		}
		l.wg.Add(1)
		go func(t Target) {
			defer l.wg.Done()
			tex, err := l.Get(ctx, t.Source())
			if err != nil {
				l.log.Warn("texture load failed", "src", t.Source(), "error", err)
				return
			}
			if !t.Set(tex) {
				l.log.Debug("texture arrived after dispose", "src", t.Source())
			}
		}(t)
	}
}

// Wait blocks until every load started so far has finished.
func (l *Loader) Wait() {
	l.wg.Wait()
}
