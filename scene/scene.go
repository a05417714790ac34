package scene

import (
	"errors"
	"fmt"

	"github.com/echoflaresat/globeview/colors"
	"github.com/echoflaresat/globeview/polygon"
	"github.com/echoflaresat/globeview/vectors"
)

const (
	// GlobeSegments is the tessellation of the globe and atmosphere
	// spheres in both directions.
	GlobeSegments = 64

	// BackgroundRadius is the radius of the inverted starfield sphere.
	BackgroundRadius = 500

	// GraticuleStep is the spacing between graticule lines in degrees;
	// GraticuleSample is the spacing of points along each line.
	GraticuleStep   = 30
	GraticuleSample = 5

	GraticuleOpacity = 0.3
	FillOpacity      = 0.5

	AtmospherePower       = 6.0
	AtmosphereCoefficient = 0.04

	// ParallaxFactor scales the globe rotation applied, reversed, to the
	// background.
	ParallaxFactor = 0.3
)

// DefaultPolygonColor is used for countries without a catalog color.
var DefaultPolygonColor = colors.MustParse("#00ff00")

// Config is the scene-affecting part of the globe configuration. Changing
// any field requires a rebuild.
type Config struct {
	GlobeImageURL      string
	BumpImageURL       string
	BackgroundImageURL string
	BumpScale          float64

	ShowAtmosphere     bool
	AtmosphereColor    colors.Color4
	AtmosphereAltitude float64

	ShowGraticules bool
	GraticuleColor colors.Color4

	// CapColor overrides every fill color when set.
	CapColor *colors.Color4
	Fill     bool
}

// Light is an ambient (Position unused) or directional light.
type Light struct {
	Color     colors.Color4
	Intensity float64
	Position  vectors.Vec3
}

// Scene is one build of the globe. It owns every resource it created and
// releases them all in Dispose.
type Scene struct {
	Root       *Node
	Globe      *Node
	Atmosphere *Node
	Graticule  *Node
	Background *Node

	Ambient     Light
	Directional Light

	// HitTargets are the fill or invisible hit meshes, one per polygon part.
	HitTargets []*Node
	Borders    []*Node

	Textures []*Texture

	res      *Resources
	marker   *Node
	disposed bool
}

// ErrNoResources is returned by Build without a resource ledger.
var ErrNoResources = errors.New("scene: nil resources")

// Build assembles the globe, its optional layers and the country polygons.
// Texture handles start empty; the caller loads them.
func Build(cfg Config, polys []*polygon.Rendered, res *Resources) (*Scene, error) {
	if res == nil {
		return nil, ErrNoResources
	}
	s := &Scene{
		Root: NewGroup("root"),
		res:  res,
		Ambient: Light{
			Color:     colors.White(),
			Intensity: 0.7,
		},
		Directional: Light{
			Color:     colors.White(),
			Intensity: 0.5,
			Position:  vectors.Vec3{X: 5, Y: 3, Z: 5},
		},
	}

	s.buildGlobe(cfg)
	s.buildBackground(cfg)
	if cfg.ShowAtmosphere {
		s.buildAtmosphere(cfg)
	}
	if cfg.ShowGraticules {
		s.buildGraticule(cfg)
	}
	for _, p := range polys {
		if err := s.addPolygon(cfg, p); err != nil {
			s.Dispose()
			return nil, err
		}
	}
	return s, nil
}

func (s *Scene) newTexture(src string) *Texture {
	if src == "" {
		return nil
	}
	t := s.res.NewTexture(src)
	s.Textures = append(s.Textures, t)
	return t
}

func (s *Scene) buildGlobe(cfg Config) {
	geo := s.res.NewSphereGeometry(1, GlobeSegments, GlobeSegments)
	mat := s.res.NewMaterial(Lit, colors.White())
	mat.Map = s.newTexture(cfg.GlobeImageURL)
	mat.BumpMap = s.newTexture(cfg.BumpImageURL)
	mat.BumpScale = cfg.BumpScale

	s.Globe = NewMesh("globe", geo, mat)
	s.Root.Add(s.Globe)
}

func (s *Scene) buildBackground(cfg Config) {
	geo := s.res.NewSphereGeometry(BackgroundRadius, 60, 40)
	mat := s.res.NewMaterial(Unlit, colors.Black())
	mat.Map = s.newTexture(cfg.BackgroundImageURL)
	if mat.Map != nil {
		mat.Color = colors.White()
	}
	mat.Side = BackSide
	mat.DepthWrite = false

	s.Background = NewMesh("background", geo, mat)
	s.Root.Add(s.Background)
}

func (s *Scene) buildAtmosphere(cfg Config) {
	geo := s.res.NewSphereGeometry(1+cfg.AtmosphereAltitude, GlobeSegments, GlobeSegments)
	mat := s.res.NewMaterial(Fresnel, cfg.AtmosphereColor)
	mat.Side = BackSide
	mat.Blending = AdditiveBlending
	mat.Transparent = true
	mat.DepthWrite = false
	mat.Power = AtmospherePower
	mat.Coefficient = AtmosphereCoefficient

	s.Atmosphere = NewMesh("atmosphere", geo, mat)
	s.Globe.Add(s.Atmosphere)
}

func (s *Scene) buildGraticule(cfg Config) {
	mat := s.res.NewMaterial(Unlit, cfg.GraticuleColor)
	mat.Transparent = true
	mat.Opacity = GraticuleOpacity

	s.Graticule = NewGroup("graticule")
	for _, ring := range GraticuleRings() {
		s.Graticule.Add(NewLine("graticule-line", s.res.NewLineGeometry(ring), mat, true))
	}
	s.Globe.Add(s.Graticule)
}

func (s *Scene) addPolygon(cfg Config, p *polygon.Rendered) error {
	if p == nil || p.Fill.Empty() {
		return fmt.Errorf("scene: polygon without fill mesh")
	}
	name := "polygon"
	if p.Feature != nil {
		name = p.Feature.ID
	}

	border := polygonColor(p)
	fill := border
	if cfg.CapColor != nil {
		fill = *cfg.CapColor
	}

	geo := s.res.NewGeometry(p.Fill.Vertices, p.Fill.Indices)
	mat := s.res.NewMaterial(Unlit, fill)
	if p.Filled {
		mat.Transparent = true
		mat.Opacity = FillOpacity
		mat.DepthWrite = false
	} else {
		mat.Transparent = true
		mat.Opacity = 0
		mat.Visible = false
		mat.Side = DoubleSide
	}
	mesh := NewMesh(name, geo, mat)
	mesh.Polygon = p
	s.HitTargets = append(s.HitTargets, mesh)
	s.Globe.Add(mesh)

	// Border points already repeat the first point at the end.
	lineMat := s.res.NewMaterial(Unlit, border)
	lineMat.DepthWrite = false
	line := NewLine(name+"-border", s.res.NewLineGeometry(p.Border), lineMat, false)
	s.Borders = append(s.Borders, line)
	s.Globe.Add(line)
	return nil
}

func polygonColor(p *polygon.Rendered) colors.Color4 {
	if p.Feature != nil && p.Feature.Country != nil && p.Feature.Country.Color != "" {
		if c, err := colors.Parse(p.Feature.Country.Color); err == nil {
			return c
		}
	}
	return DefaultPolygonColor
}

// UpdateParallax counter-rotates the background by factor times the globe
// rotation.
func (s *Scene) UpdateParallax(factor float64) {
	s.Background.Rotation.X = -s.Globe.Rotation.X * factor
	s.Background.Rotation.Y = -s.Globe.Rotation.Y * factor
}

// Resources returns the ledger the scene registers with.
func (s *Scene) Resources() *Resources { return s.res }

// Dispose releases every geometry, material and texture of the scene,
// including the marker. Further calls do nothing.
func (s *Scene) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	s.ClearMarker()
	s.Root.dispose()
	for _, t := range s.Textures {
		t.Dispose()
	}
	for _, c := range append([]*Node(nil), s.Root.Children()...) {
		s.Root.Remove(c)
	}
	s.HitTargets = nil
	s.Borders = nil
}

// Disposed reports whether Dispose has run.
func (s *Scene) Disposed() bool { return s.disposed }
