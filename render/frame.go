package render

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/echoflaresat/globeview/camera"
	"github.com/echoflaresat/globeview/colors"
	"github.com/echoflaresat/globeview/earth"
	"github.com/echoflaresat/globeview/scene"
	"github.com/echoflaresat/globeview/texture"
	"github.com/echoflaresat/globeview/vectors"
)

// frame is a snapshot of the scene in world space, taken once per Render so
// workers never touch the scene graph.
type frame struct {
	cam           *camera.Camera
	width, height int

	globe      *globeLayer
	background *backgroundLayer
	atmosphere *atmosphereLayer
	fills      []fillLayer
	markers    []sphereLayer
	lines      []lineLayer

	ambient  colors.Color4
	light    colors.Color4
	lightDir vectors.Vec3
	sun      bool
}

type globeLayer struct {
	radius    float64
	toLocal   mgl64.Mat4
	toWorld   mgl64.Mat4
	color     colors.Color4
	tex       *texture.Texture
	bump      *texture.Texture
	bumpScale float64
}

type backgroundLayer struct {
	toLocal mgl64.Mat4
	color   colors.Color4
	tex     *texture.Texture
}

type atmosphereLayer struct {
	radius      float64
	color       colors.Color4
	power       float64
	coefficient float64
	view        mgl64.Mat4
}

type fillLayer struct {
	tris    [][3]vectors.Vec3
	center  vectors.Vec3
	radius  float64
	color   colors.Color4
	opacity float64
}

type sphereLayer struct {
	center  vectors.Vec3
	radius  float64
	color   colors.Color4
	opacity float64
}

type lineLayer struct {
	points  []vectors.Vec3
	loop    bool
	color   colors.Color4
	opacity float64
}

func shown(n *scene.Node) bool {
	return n != nil && n.VisibleInTree() && n.Material != nil && n.Material.Visible && n.Geometry != nil
}

func newFrame(s *scene.Scene, cam *camera.Camera, width, height int, sunTime time.Time) *frame {
	f := &frame{
		cam:      cam,
		width:    width,
		height:   height,
		ambient:  s.Ambient.Color.ScaleRGB(s.Ambient.Intensity),
		light:    s.Directional.Color.ScaleRGB(s.Directional.Intensity),
		lightDir: s.Directional.Position.Normalize(),
	}

	if g := s.Globe; shown(g) {
		world := g.WorldMatrix()
		f.globe = &globeLayer{
			radius:    g.Geometry.Sphere,
			toLocal:   world.Inv(),
			toWorld:   world,
			color:     g.Material.Color,
			tex:       g.Material.Map.Image(),
			bump:      g.Material.BumpMap.Image(),
			bumpScale: g.Material.BumpScale,
		}
		if !sunTime.IsZero() {
			f.sun = true
			f.lightDir = scene.TransformDir(world, earth.SunDirection(sunTime)).Normalize()
		}
	}

	if b := s.Background; shown(b) {
		f.background = &backgroundLayer{
			toLocal: b.WorldMatrix().Inv(),
			color:   b.Material.Color,
			tex:     b.Material.Map.Image(),
		}
	}

	if a := s.Atmosphere; shown(a) {
		f.atmosphere = &atmosphereLayer{
			radius:      a.Geometry.Sphere,
			color:       a.Material.Color,
			power:       a.Material.Power,
			coefficient: a.Material.Coefficient,
			view:        cam.View(),
		}
	}

	for _, n := range s.HitTargets {
		if !shown(n) || n.Material.Opacity <= 0 {
			continue
		}
		f.fills = append(f.fills, newFillLayer(n))
	}

	if m := s.Marker(); m != nil && m.VisibleInTree() {
		for _, c := range m.Children() {
			if !shown(c) {
				continue
			}
			f.markers = append(f.markers, sphereLayer{
				center:  c.LocalToWorld(vectors.Vec3{}),
				radius:  c.Geometry.Sphere,
				color:   c.Material.Color,
				opacity: c.Material.Opacity,
			})
		}
		// Larger shells first so the core composites over its glow.
		for i := 1; i < len(f.markers); i++ {
			for j := i; j > 0 && f.markers[j].radius > f.markers[j-1].radius; j-- {
				f.markers[j], f.markers[j-1] = f.markers[j-1], f.markers[j]
			}
		}
	}

	if s.Graticule != nil {
		for _, n := range s.Graticule.Children() {
			f.addLine(n)
		}
	}
	for _, n := range s.Borders {
		f.addLine(n)
	}
	return f
}

func newFillLayer(n *scene.Node) fillLayer {
	world := n.WorldMatrix()
	g := n.Geometry
	l := fillLayer{
		tris:    make([][3]vectors.Vec3, len(g.Indices)),
		center:  scene.TransformPoint(world, g.BoundingCenter),
		radius:  g.BoundingRadius,
		color:   n.Material.Color,
		opacity: n.Material.Opacity,
	}
	for i := range g.Indices {
		a, b, c := g.Triangle(i)
		l.tris[i] = [3]vectors.Vec3{
			scene.TransformPoint(world, a),
			scene.TransformPoint(world, b),
			scene.TransformPoint(world, c),
		}
	}
	return l
}

func (f *frame) addLine(n *scene.Node) {
	if !shown(n) || len(n.Geometry.Vertices) < 2 {
		return
	}
	world := n.WorldMatrix()
	pts := make([]vectors.Vec3, len(n.Geometry.Vertices))
	for i, p := range n.Geometry.Vertices {
		pts[i] = scene.TransformPoint(world, p)
	}
	f.lines = append(f.lines, lineLayer{
		points:  pts,
		loop:    n.Loop,
		color:   n.Material.Color,
		opacity: n.Material.Opacity,
	})
}
