// Package server streams rendered globes to browsers over WebSocket. Each
// connection is one rendering surface with its own globe; boundary data
// and decoded textures are shared by all of them.
package server

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"reflect"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/echoflaresat/globeview/boundary"
	"github.com/echoflaresat/globeview/camera"
	"github.com/echoflaresat/globeview/config"
	"github.com/echoflaresat/globeview/loader"
	"github.com/echoflaresat/globeview/observability"
	"github.com/echoflaresat/globeview/texture"
)

//go:embed static
var static embed.FS

type Server struct {
	log      *slog.Logger
	metrics  *observability.Collector
	textures *texture.Loader
	clock    camera.Clock
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	cfg      config.Config
	source   *loader.Lazy[*boundary.Source]
	sessions map[*session]struct{}
	wg       sync.WaitGroup
}

type Option func(*Server)

func WithLogger(log *slog.Logger) Option {
	return func(s *Server) { s.log = log }
}

func WithMetrics(c *observability.Collector) Option {
	return func(s *Server) { s.metrics = c }
}

// WithClock drives every globe from c instead of the wall clock.
func WithClock(c camera.Clock) Option {
	return func(s *Server) { s.clock = c }
}

func New(cfg config.Config, opts ...Option) *Server {
	s := &Server{
		log:      slog.Default(),
		clock:    camera.SystemClock{},
		cfg:      cfg,
		sessions: make(map[*session]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
		},
	}
	for _, o := range opts {
		o(s)
	}
	s.textures = texture.NewLoader(
		texture.WithLogger(s.log),
		texture.WithObserver(s.metrics.TextureLoaded),
	)
	s.source = s.newSource(cfg)
	return s
}

// newSource returns a lazily loaded boundary source for cfg. Sessions
// share it; a failed load is retried by the next session.
func (s *Server) newSource(cfg config.Config) *loader.Lazy[*boundary.Source] {
	file := boundary.File{
		Path:      cfg.Boundaries.Path,
		Format:    cfg.Boundaries.Format,
		Object:    cfg.Boundaries.Object,
		CacheSize: cfg.Boundaries.CacheSize,
	}
	countries := cfg.Countries
	return loader.NewLazy(func(context.Context) (*boundary.Source, error) {
		return boundary.Open(file, countries, s.log)
	})
}

// Handler serves the viewer page, the WebSocket endpoint, health and
// metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	page, _ := fs.Sub(static, "static")
	mux.Handle("/", http.FileServer(http.FS(page)))
	mux.HandleFunc("/ws", s.serveWS)
	mux.Handle("/metrics", s.metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}

func (s *Server) config() (config.Config, *loader.Lazy[*boundary.Source]) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg, s.source
}

// Apply switches to cfg. New boundary settings or a new catalog replace the
// shared source; every open session is reconfigured and only rebuilds its
// scene if a scene-affecting setting changed. Apply blocks until the
// source is loaded.
func (s *Server) Apply(ctx context.Context, cfg config.Config) error {
	s.mu.Lock()
	if boundariesChanged(s.cfg, cfg) {
		s.source = s.newSource(cfg)
	}
	s.cfg = cfg
	lazy := s.source
	sessions := make([]*session, 0, len(s.sessions))
	for sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	src, err := lazy.Get(ctx)
	if err != nil {
		return fmt.Errorf("load boundaries: %w", err)
	}
	for _, sess := range sessions {
		sess.reconfigure(cfg, src)
	}
	s.log.Info("configuration applied", "sessions", len(sessions))
	return nil
}

func boundariesChanged(a, b config.Config) bool {
	return a.Boundaries != b.Boundaries || !reflect.DeepEqual(a.Countries, b.Countries)
}

// Sessions is the number of connected viewers.
func (s *Server) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Server) track(sess *session) {
	s.mu.Lock()
	s.sessions[sess] = struct{}{}
	s.mu.Unlock()
	s.metrics.SessionStarted()
}

func (s *Server) untrack(sess *session) {
	s.mu.Lock()
	delete(s.sessions, sess)
	s.mu.Unlock()
	s.metrics.SessionEnded()
}

// Close disconnects every session and waits for their globes to unmount.
func (s *Server) Close() {
	s.mu.RLock()
	for sess := range s.sessions {
		sess.close()
	}
	s.mu.RUnlock()
	s.wg.Wait()
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	s.wg.Add(1)
	defer s.wg.Done()

	sess := newSession(s, conn)
	s.track(sess)
	defer s.untrack(sess)

	start := time.Now()
	sess.run(r.Context())
	s.log.Debug("session closed", "remote", r.RemoteAddr, "duration", time.Since(start))
}
