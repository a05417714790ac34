// Package observability exposes Prometheus metrics for globe sessions.
package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the globe metrics. A nil *Collector is valid and
// records nothing, so callers never need to check.
type Collector struct {
	gatherer prometheus.Gatherer

	FramesRendered   prometheus.Counter
	FrameDuration    prometheus.Histogram
	ActiveSessions   prometheus.Gauge
	SceneBuilds      prometheus.Counter
	LiveResources    *prometheus.GaugeVec
	PointerEvents    *prometheus.CounterVec
	TextureLoads     *prometheus.CounterVec
	TextureLoadTimes prometheus.Histogram
}

// NewCollector registers the metrics against reg, defaulting to the global
// registry when nil. Registering twice on one registry reuses the existing
// collectors.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{gatherer: gatherer}
	var err error

	if c.FramesRendered, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "globe_frames_rendered_total",
		Help: "Frames rendered across all sessions.",
	}), "globe_frames_rendered_total"); err != nil {
		return nil, err
	}
	if c.FrameDuration, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "globe_frame_render_seconds",
		Help:    "Time to render one frame.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}), "globe_frame_render_seconds"); err != nil {
		return nil, err
	}
	if c.ActiveSessions, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "globe_active_sessions",
		Help: "Currently mounted globe sessions.",
	}), "globe_active_sessions"); err != nil {
		return nil, err
	}
	if c.SceneBuilds, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "globe_scene_builds_total",
		Help: "Scene builds, including rebuilds after configuration changes.",
	}), "globe_scene_builds_total"); err != nil {
		return nil, err
	}
	if c.LiveResources, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "globe_live_resources",
		Help: "Undisposed scene resources, by kind.",
	}, []string{"kind"}), "globe_live_resources"); err != nil {
		return nil, err
	}
	if c.PointerEvents, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "globe_pointer_events_total",
		Help: "Pointer events handled, by kind.",
	}, []string{"kind"}), "globe_pointer_events_total"); err != nil {
		return nil, err
	}
	if c.TextureLoads, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "globe_texture_loads_total",
		Help: "Texture loads, by result.",
	}, []string{"result"}), "globe_texture_loads_total"); err != nil {
		return nil, err
	}
	if c.TextureLoadTimes, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "globe_texture_load_seconds",
		Help:    "Time to fetch and decode one texture.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
	}), "globe_texture_load_seconds"); err != nil {
		return nil, err
	}
	return c, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T, name string) (T, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero T
		return zero, err
	}
	return c, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func (c *Collector) ObserveFrame(d time.Duration) {
	if c == nil {
		return
	}
	c.FramesRendered.Inc()
	c.FrameDuration.Observe(d.Seconds())
}

func (c *Collector) SessionStarted() {
	if c != nil {
		c.ActiveSessions.Inc()
	}
}

func (c *Collector) SessionEnded() {
	if c != nil {
		c.ActiveSessions.Dec()
	}
}

func (c *Collector) SceneBuilt() {
	if c != nil {
		c.SceneBuilds.Inc()
	}
}

// AddLiveResources moves the live-resource gauge for kind by delta.
func (c *Collector) AddLiveResources(kind string, delta int) {
	if c != nil {
		c.LiveResources.WithLabelValues(kind).Add(float64(delta))
	}
}

func (c *Collector) PointerEvent(kind string) {
	if c != nil {
		c.PointerEvents.WithLabelValues(kind).Inc()
	}
}

// TextureLoaded has the shape of a texture loader observer.
func (c *Collector) TextureLoaded(_ string, d time.Duration, err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.TextureLoads.WithLabelValues(result).Inc()
	c.TextureLoadTimes.Observe(d.Seconds())
}
