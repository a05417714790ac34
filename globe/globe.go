// Package globe owns one mounted globe: its scene, camera, controls,
// animations, pointer state and the per-frame tick that renders it onto a
// surface.
package globe

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"time"

	"github.com/charmbracelet/harmonica"

	"github.com/echoflaresat/globeview/boundary"
	"github.com/echoflaresat/globeview/camera"
	"github.com/echoflaresat/globeview/config"
	"github.com/echoflaresat/globeview/earth"
	"github.com/echoflaresat/globeview/interact"
	"github.com/echoflaresat/globeview/observability"
	"github.com/echoflaresat/globeview/polygon"
	"github.com/echoflaresat/globeview/render"
	"github.com/echoflaresat/globeview/scene"
	"github.com/echoflaresat/globeview/texture"
)

// MinViewport is the smallest accepted render size in either direction.
const MinViewport = 100

// maxFrameGap caps the time step used for auto-rotation so a stalled
// frame does not snap the globe around.
const maxFrameGap = 100 * time.Millisecond

var (
	ErrNotMounted     = errors.New("globe: not mounted")
	ErrAlreadyMounted = errors.New("globe: already mounted")
	// ErrSurface wraps failures of the rendering surface. Viewers show it
	// with a retry affordance.
	ErrSurface = errors.New("globe: rendering surface failed")
)

// Surface is where frames go: a browser session, a file, a test recorder.
type Surface interface {
	Init(width, height int) error
	Present(img *image.NRGBA) error
}

// Polygons supplies country boundaries for a list of catalog IDs.
type Polygons interface {
	CountryPolygons(ids []string) []*boundary.Feature
}

// Deps are the collaborators shared between globes. Only Source is
// required for countries to appear.
type Deps struct {
	Source  Polygons
	Loader  *texture.Loader
	Metrics *observability.Collector
	Log     *slog.Logger
	Clock   camera.Clock
}

// Globe is not safe for concurrent use; drive it from a single Loop.
type Globe struct {
	cfg     config.Config
	key     sceneKey
	source  Polygons
	loader  *texture.Loader
	metrics *observability.Collector
	log     *slog.Logger
	clock   camera.Clock

	res      *scene.Resources
	reported map[scene.Kind]int
	scene    *scene.Scene
	surface  Surface
	renderer *render.Renderer

	cam      *camera.Camera
	controls *camera.Controls
	animator *camera.Animator
	engine   *interact.Engine
	device   camera.Device

	width, height int

	ctx    context.Context
	cancel context.CancelFunc

	resumeAutoRotate bool
	spring           harmonica.Spring
	spin, spinVel    float64
	lastTick         time.Time

	marker *earth.GeoCoordinate
	dirty  bool
	loaded int
}

// buildScene is replaced in tests to simulate build failures.
var buildScene = scene.Build

func New(cfg config.Config, deps Deps) *Globe {
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	if deps.Clock == nil {
		deps.Clock = camera.SystemClock{}
	}
	if deps.Loader == nil {
		deps.Loader = texture.NewLoader(texture.WithLogger(deps.Log))
	}

	g := &Globe{
		cfg:      cfg,
		source:   deps.Source,
		loader:   deps.Loader,
		metrics:  deps.Metrics,
		log:      deps.Log,
		clock:    deps.Clock,
		res:      scene.NewResources(),
		reported: make(map[scene.Kind]int),
		width:    max(cfg.Server.Width, MinViewport),
		height:   max(cfg.Server.Height, MinViewport),
		spring:   harmonica.NewSpring(harmonica.FPS(max(cfg.Server.FrameRate, 1)), 4.0, 1.0),
	}
	g.res.OnChange(g.reportResources)

	g.cam = camera.New(cfg.Globe.CameraDistance, float64(g.width)/float64(g.height))
	g.controls = camera.NewControls(g.cam)
	g.animator = camera.NewAnimator(g.cam)
	g.engine = interact.NewEngine(g.controls, g.autoCenter)
	g.engine.SetRotator(g)

	g.controls.SetViewport(g.width, g.height)
	g.engine.SetViewport(g.width, g.height)
	g.applyLive(config.Config{}, cfg)
	g.controls.SetDistance(cfg.Globe.CameraDistance)
	return g
}

func (g *Globe) reportResources(kind scene.Kind, live int) {
	g.metrics.AddLiveResources(kind.String(), live-g.reported[kind])
	g.reported[kind] = live
}

// Mount initializes the surface and builds the scene. Textures load in
// the background; the globe renders without them until they arrive.
func (g *Globe) Mount(s Surface) error {
	if g.scene != nil {
		return ErrAlreadyMounted
	}
	if err := s.Init(g.width, g.height); err != nil {
		return fmt.Errorf("%w: %w", ErrSurface, err)
	}
	g.ctx, g.cancel = context.WithCancel(context.Background())
	if err := g.build(); err != nil {
		g.cancel()
		return err
	}
	g.surface = s
	if id := g.cfg.Globe.SelectedCountry; id != "" {
		g.selectCountry(id)
	}
	return nil
}

// Mounted reports whether a scene is live.
func (g *Globe) Mounted() bool { return g.scene != nil }

func (g *Globe) build() error {
	sc, po, err := sceneConfig(g.cfg.Globe)
	if err != nil {
		return err
	}
	po.Logger = g.log

	var features []*boundary.Feature
	if g.source != nil {
		features = g.source.CountryPolygons(g.cfg.CountryIDs())
	}
	polys := polygon.BuildAll(features, po)

	s, err := buildScene(sc, polys, g.res)
	if err != nil {
		return fmt.Errorf("build scene: %w", err)
	}
	g.scene = s
	g.key = keyOf(g.cfg)

	targets := make([]texture.Target, 0, len(s.Textures))
	for _, t := range s.Textures {
		targets = append(targets, t)
	}
	g.loader.Load(g.ctx, targets...)

	g.engine.SetTargets(s.HitTargets)
	g.metrics.SceneBuilt()
	g.loaded = 0
	g.dirty = true
	g.log.Debug("scene built", "countries", len(features), "polygons", len(polys), "textures", len(targets))
	return nil
}

// rebuild replaces the scene, keeping the globe's spin angle and marker.
// A failed build keeps the old scene live.
func (g *Globe) rebuild() error {
	old := g.scene
	if err := g.build(); err != nil {
		return err
	}
	old.Dispose()
	g.scene.Globe.Rotation = old.Globe.Rotation
	if g.marker != nil {
		g.scene.SetMarker(g.marker.Lat, g.marker.Lon)
	}
	return nil
}

// Unmount stops any animation, cancels pending texture loads and disposes
// every resource of the scene. The globe can be mounted again.
func (g *Globe) Unmount() {
	if g.scene == nil {
		return
	}
	if g.animator.Active() {
		g.animator.Cancel()
		g.controls.EndAnimation()
		g.controls.SetAutoRotate(g.resumeAutoRotate)
	}
	g.controls.DragEnd()
	g.cancel()
	g.scene.Dispose()
	g.scene = nil
	g.surface = nil
	g.engine.SetTargets(nil)
	g.marker = nil
}

// Configure applies a new configuration. Scene-affecting changes rebuild
// the scene; everything else is applied in place.
func (g *Globe) Configure(cfg config.Config) error {
	if _, _, err := sceneConfig(cfg.Globe); err != nil {
		return err
	}
	old := g.cfg
	g.cfg = cfg
	g.applyLive(old, cfg)
	g.dirty = true

	if g.scene == nil {
		return nil
	}
	if keyOf(cfg) != g.key {
		if err := g.rebuild(); err != nil {
			return err
		}
	}
	if id := cfg.Globe.SelectedCountry; id != "" && id != old.Globe.SelectedCountry {
		g.selectCountry(id)
	}
	return nil
}

// SetSource swaps the boundary source. It takes effect on the next build.
func (g *Globe) SetSource(src Polygons) {
	g.source = src
}

func (g *Globe) applyLive(old, cfg config.Config) {
	applyControls(g.controls, cfg.Controls)
	if old.Controls.AutoRotate != cfg.Controls.AutoRotate {
		g.SetAutoRotate(cfg.Controls.AutoRotate)
	}
	g.engine.Enabled = cfg.Globe.PointerInteraction
	g.engine.AutoCenter = cfg.Globe.AutoCenterOnClick
	if old.Server.FrameRate != cfg.Server.FrameRate {
		g.spring = harmonica.NewSpring(harmonica.FPS(max(cfg.Server.FrameRate, 1)), 4.0, 1.0)
	}
	if old.Render != cfg.Render || g.renderer == nil {
		g.renderer = render.New(render.Options{
			Supersampling: cfg.Render.Supersampling,
			Workers:       cfg.Render.Workers,
		})
	}
}

func (g *Globe) Camera() *camera.Camera        { return g.cam }
func (g *Globe) Controls() *camera.Controls    { return g.controls }
func (g *Globe) Scene() *scene.Scene           { return g.scene }
func (g *Globe) Resources() *scene.Resources   { return g.res }
func (g *Globe) Hovered() *boundary.Feature    { return g.engine.Hovered() }
func (g *Globe) Size() (width, height int)     { return g.width, g.height }
func (g *Globe) SpinSpeed() float64            { return g.spin }
func (g *Globe) Animating() bool               { return g.animator.Active() }
func (g *Globe) Config() config.Config         { return g.cfg }
func (g *Globe) OnHover(fn interact.HoverFunc) { g.engine.OnHover = fn }
func (g *Globe) OnClick(fn interact.ClickFunc) { g.engine.OnClick = fn }

func (g *Globe) OnGlobeClick(fn interact.GlobeClickFunc) { g.engine.OnGlobeClick = fn }

// AutoRotate reports the auto-rotate setting. During a transition it is
// the setting that applies once the transition ends.
func (g *Globe) AutoRotate() bool {
	if g.animator.Active() {
		return g.resumeAutoRotate
	}
	return g.controls.AutoRotate()
}

// SetAutoRotate turns auto-rotation on or off. During a transition the
// setting takes effect when the transition ends.
func (g *Globe) SetAutoRotate(on bool) {
	if g.animator.Active() {
		g.resumeAutoRotate = on
		return
	}
	g.controls.SetAutoRotate(on)
}

// PointOfView flies the camera over (lat, lng) at the current zoom.
// Out-of-range coordinates are clamped; NaN is rejected. altitude is
// accepted for API compatibility and does not change the distance.
func (g *Globe) PointOfView(lat, lng, altitude float64, d time.Duration) error {
	c, err := earth.GeoCoordinate{Lat: lat, Lon: lng}.Clamp()
	if err != nil {
		return err
	}
	g.flyTo(c, d)
	return nil
}

func (g *Globe) flyTo(c earth.GeoCoordinate, d time.Duration) {
	p := earth.ToPoint3D(c.Lat, c.Lon, 1)
	if g.scene != nil {
		p = g.scene.Globe.LocalToWorld(p)
	}
	to := g.cam.Target.Add(p.Normalize().Scale(g.cam.Distance()))

	if !g.animator.Active() {
		g.resumeAutoRotate = g.controls.AutoRotate()
	}
	g.controls.SetAutoRotate(false)
	g.spin, g.spinVel = 0, 0
	g.controls.BeginAnimation()
	g.animator.Start(g.cam.Position, to, g.clock.Now(), d)
	g.dirty = true
}

func (g *Globe) autoCenter(c earth.GeoCoordinate) {
	g.centerOn(c, g.cfg.Globe.Transition())
}

// centerOn marks the point and flies to it.
func (g *Globe) centerOn(c earth.GeoCoordinate, d time.Duration) {
	c, err := c.Clamp()
	if err != nil {
		g.log.Warn("ignoring center request", "error", err)
		return
	}
	if g.scene != nil {
		g.scene.SetMarker(c.Lat, c.Lon)
		g.marker = &c
	}
	g.flyTo(c, d)
}

func (g *Globe) selectCountry(id string) {
	for _, n := range g.scene.HitTargets {
		if n.Polygon == nil || n.Polygon.Feature == nil || n.Polygon.Feature.ID != id {
			continue
		}
		g.SetAutoRotate(false)
		if c, ok := interact.CenterOf(n.Polygon); ok {
			g.centerOn(c, g.cfg.Globe.Transition())
		}
		return
	}
	g.log.Warn("selected country has no polygons", "id", id)
}

func (g *Globe) PointerMove(ev interact.Event) {
	if g.scene == nil {
		return
	}
	g.metrics.PointerEvent("move")
	g.engine.Move(ev)
}

func (g *Globe) Click(ev interact.Event) {
	if g.scene == nil {
		return
	}
	g.metrics.PointerEvent("click")
	g.engine.Click(ev)
	g.dirty = true
}

// Wheel zooms when ctrl or meta is held on a non-touch device.
func (g *Globe) Wheel(deltaY float64, ctrl, meta bool) bool {
	if g.scene == nil {
		return false
	}
	g.metrics.PointerEvent("wheel")
	zoomed := g.controls.Wheel(deltaY, ctrl || meta, g.device.Touch())
	g.dirty = g.dirty || zoomed
	return zoomed
}

// Pinch zooms on touch devices.
func (g *Globe) Pinch(scale float64) bool {
	if g.scene == nil {
		return false
	}
	g.metrics.PointerEvent("pinch")
	zoomed := g.controls.Pinch(scale, g.device.Touch())
	g.dirty = g.dirty || zoomed
	return zoomed
}

func (g *Globe) DragStart(x, y float64) {
	if g.scene == nil {
		return
	}
	g.metrics.PointerEvent("drag")
	g.controls.DragStart(x, y)
}

func (g *Globe) DragMove(x, y float64) {
	if g.scene != nil {
		g.controls.DragMove(x, y)
	}
}

func (g *Globe) DragEnd() { g.controls.DragEnd() }

// Resize changes the render size and aspect ratio without rebuilding.
func (g *Globe) Resize(width, height int) {
	g.width, g.height = max(width, MinViewport), max(height, MinViewport)
	g.cam.SetAspect(g.width, g.height)
	g.controls.SetViewport(g.width, g.height)
	g.engine.SetViewport(g.width, g.height)
	g.dirty = true
}

func (g *Globe) SetDevice(d camera.Device) {
	g.device = d
}

// Tick advances the globe to now and presents a frame if anything
// changed: animation, auto-rotation, parallax, orbit damping, then render.
func (g *Globe) Tick(now time.Time) error {
	if g.scene == nil {
		return ErrNotMounted
	}
	dt := time.Duration(0)
	if !g.lastTick.IsZero() {
		dt = min(max(now.Sub(g.lastTick), 0), maxFrameGap)
	}
	g.lastTick = now
	moved := false

	if g.animator.Active() {
		moved = true
		if g.animator.Step(now) {
			g.controls.EndAnimation()
			g.controls.SetAutoRotate(g.resumeAutoRotate)
		}
	}

	target := 0.0
	if g.controls.AutoRotate() && !g.animator.Active() {
		target = g.controls.AutoRotateSpeed
	}
	g.spin, g.spinVel = g.spring.Update(g.spin, g.spinVel, target)
	if target == 0 && math.Abs(g.spin) < 1e-4 && math.Abs(g.spinVel) < 1e-4 {
		g.spin, g.spinVel = 0, 0
	}
	if g.spin != 0 {
		// Speed is degrees per frame at 60 fps.
		g.scene.Globe.Rotation.Y += g.spin * math.Pi / 180 * dt.Seconds() * 60
		moved = true
	}
	g.scene.UpdateParallax(scene.ParallaxFactor)

	if g.controls.Update() {
		moved = true
	}

	loaded := g.loadedTextures()
	if !g.dirty && !moved && loaded == g.loaded {
		return nil
	}
	g.loaded = loaded
	g.dirty = false
	return g.draw(now)
}

func (g *Globe) draw(now time.Time) error {
	start := time.Now()
	r := g.renderer
	if g.cfg.Render.SunLighting {
		r = r.At(now)
	}
	img, err := r.Render(g.ctx, g.scene, g.cam, g.width, g.height)
	if err != nil {
		return fmt.Errorf("render frame: %w", err)
	}
	if err := g.surface.Present(img); err != nil {
		return fmt.Errorf("%w: %w", ErrSurface, err)
	}
	g.metrics.ObserveFrame(time.Since(start))
	return nil
}

func (g *Globe) loadedTextures() int {
	n := 0
	for _, t := range g.scene.Textures {
		if t.Image() != nil {
			n++
		}
	}
	return n
}
