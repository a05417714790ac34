package observability

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	c.ObserveFrame(20 * time.Millisecond)
	c.ObserveFrame(30 * time.Millisecond)
	c.SessionStarted()
	c.SessionStarted()
	c.SessionEnded()
	c.SceneBuilt()
	c.AddLiveResources("geometry", 5)
	c.AddLiveResources("geometry", -2)
	c.PointerEvent("click")
	c.TextureLoaded("a.png", time.Second, nil)
	c.TextureLoaded("b.png", time.Second, errors.New("404"))

	if got := testutil.ToFloat64(c.FramesRendered); got != 2 {
		t.Fatalf("frames = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.ActiveSessions); got != 1 {
		t.Fatalf("sessions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.LiveResources.WithLabelValues("geometry")); got != 3 {
		t.Fatalf("live geometry = %v, want 3", got)
	}
	if got := testutil.ToFloat64(c.TextureLoads.WithLabelValues("error")); got != 1 {
		t.Fatalf("failed loads = %v, want 1", got)
	}

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "globe_scene_builds_total 1") {
		t.Fatalf("metrics output missing scene builds:\n%s", rec.Body.String())
	}
}

func TestCollectorReusesRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewCollector(reg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("second NewCollector: %v", err)
	}
	a.SceneBuilt()
	if got := testutil.ToFloat64(b.SceneBuilds); got != 1 {
		t.Fatalf("collectors not shared: %v", got)
	}
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	c.ObserveFrame(time.Millisecond)
	c.SessionStarted()
	c.PointerEvent("move")
	c.TextureLoaded("x", 0, nil)
}
