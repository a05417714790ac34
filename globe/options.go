package globe

import (
	"fmt"
	"strings"

	"github.com/echoflaresat/globeview/camera"
	"github.com/echoflaresat/globeview/colors"
	"github.com/echoflaresat/globeview/config"
	"github.com/echoflaresat/globeview/polygon"
	"github.com/echoflaresat/globeview/scene"
)

// sceneKey is the comparable projection of everything that requires a
// rebuild when it changes.
type sceneKey struct {
	globeImage, bumpImage, backgroundImage string
	bumpScale                              float64

	atmosphere         bool
	atmosphereColor    string
	atmosphereAltitude float64

	graticules     bool
	graticuleColor string

	capColor      string
	fill          bool
	offset        float64
	triangulation string

	boundaries string
	countries  string
}

func keyOf(cfg config.Config) sceneKey {
	g := cfg.Globe
	var countries strings.Builder
	for _, c := range cfg.Countries {
		fmt.Fprintf(&countries, "%s|%s|%s|%s;", c.ID, c.Name, c.Color, strings.Join(c.Aliases, ","))
	}
	return sceneKey{
		globeImage:         g.GlobeImageURL,
		bumpImage:          g.BumpImageURL,
		backgroundImage:    g.BackgroundImageURL,
		bumpScale:          g.BumpScale,
		atmosphere:         g.ShowAtmosphere,
		atmosphereColor:    g.AtmosphereColor,
		atmosphereAltitude: g.AtmosphereAltitude,
		graticules:         g.ShowGraticules,
		graticuleColor:     g.GraticuleColor,
		capColor:           g.PolygonCapColor,
		fill:               g.PolygonFill,
		offset:             g.PolygonOffset,
		triangulation:      g.Triangulation,
		boundaries:         cfg.Boundaries.Path + "#" + cfg.Boundaries.Object,
		countries:          countries.String(),
	}
}

// sceneConfig converts the textual globe settings into scene and polygon
// options.
func sceneConfig(g config.GlobeConfig) (scene.Config, polygon.Options, error) {
	atmosphere, err := colors.Parse(g.AtmosphereColor)
	if err != nil {
		return scene.Config{}, polygon.Options{}, fmt.Errorf("atmosphere color: %w", err)
	}
	graticule, err := colors.Parse(g.GraticuleColor)
	if err != nil {
		return scene.Config{}, polygon.Options{}, fmt.Errorf("graticule color: %w", err)
	}
	var capColor *colors.Color4
	if g.PolygonCapColor != "" {
		c, err := colors.Parse(g.PolygonCapColor)
		if err != nil {
			return scene.Config{}, polygon.Options{}, fmt.Errorf("cap color: %w", err)
		}
		capColor = &c
	}
	tri, ok := polygon.ParseTriangulation(g.Triangulation)
	if !ok {
		return scene.Config{}, polygon.Options{}, fmt.Errorf("unknown triangulation %q", g.Triangulation)
	}

	sc := scene.Config{
		GlobeImageURL:      g.GlobeImageURL,
		BumpImageURL:       g.BumpImageURL,
		BackgroundImageURL: g.BackgroundImageURL,
		BumpScale:          g.BumpScale,
		ShowAtmosphere:     g.ShowAtmosphere,
		AtmosphereColor:    atmosphere,
		AtmosphereAltitude: g.AtmosphereAltitude,
		ShowGraticules:     g.ShowGraticules,
		GraticuleColor:     graticule,
		CapColor:           capColor,
		Fill:               g.PolygonFill,
	}
	po := polygon.Options{
		Fill:          g.PolygonFill,
		Offset:        g.PolygonOffset,
		Triangulation: tri,
	}
	return sc, po, nil
}

// applyControls copies the live-tunable settings onto the controls.
func applyControls(c *camera.Controls, ct config.ControlsConfig) {
	c.RotateSpeed = ct.RotateSpeed
	c.EnableDamping = ct.EnableDamping
	c.DampingFactor = ct.DampingFactor
	c.ZoomSpeed = ct.ZoomSpeed
	c.AutoRotateSpeed = ct.AutoRotateSpeed
	c.SetZoomBounds(ct.MinZoom, ct.MaxZoom)
}
