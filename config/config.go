// Package config loads the globe server configuration from TOML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/echoflaresat/globeview/boundary"
	"github.com/echoflaresat/globeview/colors"
	"github.com/echoflaresat/globeview/polygon"
)

type Config struct {
	Server     ServerConfig       `toml:"server"`
	Render     RenderConfig       `toml:"render"`
	Globe      GlobeConfig        `toml:"globe"`
	Controls   ControlsConfig     `toml:"controls"`
	Boundaries BoundariesConfig   `toml:"boundaries"`
	Countries  []boundary.Country `toml:"countries"`
}

type ServerConfig struct {
	Addr        string `toml:"addr"`
	FrameRate   int    `toml:"frame_rate"`
	Width       int    `toml:"width"`
	Height      int    `toml:"height"`
	JPEGQuality int    `toml:"jpeg_quality"`
}

type RenderConfig struct {
	Supersampling int  `toml:"supersampling"`
	Workers       int  `toml:"workers"`
	SunLighting   bool `toml:"sun_lighting"`
}

// GlobeConfig holds the appearance and behavior of one globe.
type GlobeConfig struct {
	GlobeImageURL      string  `toml:"globe_image_url"`
	BumpImageURL       string  `toml:"bump_image_url"`
	BackgroundImageURL string  `toml:"background_image_url"`
	BumpScale          float64 `toml:"bump_scale"`

	ShowAtmosphere     bool    `toml:"show_atmosphere"`
	AtmosphereColor    string  `toml:"atmosphere_color"`
	AtmosphereAltitude float64 `toml:"atmosphere_altitude"`

	ShowGraticules bool   `toml:"show_graticules"`
	GraticuleColor string `toml:"graticule_color"`

	// PolygonCapColor overrides every fill color when non-empty.
	PolygonCapColor string  `toml:"polygon_cap_color"`
	PolygonFill     bool    `toml:"polygon_fill"`
	PolygonOffset   float64 `toml:"polygon_offset"`
	Triangulation   string  `toml:"triangulation"`

	CameraDistance     float64 `toml:"camera_distance"`
	TransitionMillis   int     `toml:"transition_ms"`
	AutoCenterOnClick  bool    `toml:"auto_center_on_click"`
	PointerInteraction bool    `toml:"pointer_interaction"`

	// SelectedCountry, when set, stops rotation and flies to that country.
	SelectedCountry string `toml:"selected_country"`
}

type ControlsConfig struct {
	AutoRotate      bool    `toml:"auto_rotate"`
	AutoRotateSpeed float64 `toml:"auto_rotate_speed"`
	MinZoom         float64 `toml:"min_zoom"`
	MaxZoom         float64 `toml:"max_zoom"`
	RotateSpeed     float64 `toml:"rotate_speed"`
	EnableDamping   bool    `toml:"enable_damping"`
	DampingFactor   float64 `toml:"damping_factor"`
	ZoomSpeed       float64 `toml:"zoom_speed"`
}

type BoundariesConfig struct {
	Path string `toml:"path"`
	// Format is "geojson" or "topojson"; empty picks by file extension.
	Format string `toml:"format"`
	// Object names the TopoJSON object holding the countries.
	Object    string `toml:"object"`
	CacheSize int    `toml:"cache_size"`
}

// Default returns the configuration used for any key a file leaves out.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:        ":8080",
			FrameRate:   30,
			Width:       640,
			Height:      480,
			JPEGQuality: 80,
		},
		Render: RenderConfig{
			Supersampling: 1,
		},
		Globe: GlobeConfig{
			BumpScale:          0.05,
			ShowAtmosphere:     true,
			AtmosphereColor:    "lightskyblue",
			AtmosphereAltitude: 0.15,
			ShowGraticules:     false,
			GraticuleColor:     "#ffffff",
			PolygonFill:        true,
			PolygonOffset:      0.0001,
			Triangulation:      polygon.Fan.String(),
			CameraDistance:     3,
			TransitionMillis:   1000,
			AutoCenterOnClick:  true,
			PointerInteraction: true,
		},
		Controls: ControlsConfig{
			AutoRotate:      true,
			AutoRotateSpeed: 0.8,
			MinZoom:         1.5,
			MaxZoom:         10,
			RotateSpeed:     0.5,
			EnableDamping:   true,
			DampingFactor:   0.05,
			ZoomSpeed:       0.02,
		},
		Boundaries: BoundariesConfig{
			Object:    "countries",
			CacheSize: boundary.DefaultCacheSize,
		},
	}
}

// Parse decodes TOML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Transition is the fly-to duration.
func (g GlobeConfig) Transition() time.Duration {
	return time.Duration(g.TransitionMillis) * time.Millisecond
}

// CountryIDs lists the catalog IDs in file order.
func (c Config) CountryIDs() []string {
	ids := make([]string, 0, len(c.Countries))
	for _, country := range c.Countries {
		ids = append(ids, country.ID)
	}
	return ids
}

// Validate reports every problem found, joined.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Server.FrameRate > 0 && c.Server.FrameRate <= 120, "server.frame_rate %d out of range (1..120)", c.Server.FrameRate)
	check(c.Server.Width >= 100 && c.Server.Height >= 100, "server size %dx%d below 100x100", c.Server.Width, c.Server.Height)
	check(c.Server.JPEGQuality >= 1 && c.Server.JPEGQuality <= 100, "server.jpeg_quality %d out of range (1..100)", c.Server.JPEGQuality)
	check(c.Render.Supersampling >= 1, "render.supersampling must be at least 1")
	check(c.Render.Workers >= 0, "render.workers must not be negative")

	g := c.Globe
	for name, s := range map[string]string{
		"globe.atmosphere_color": g.AtmosphereColor,
		"globe.graticule_color":  g.GraticuleColor,
	} {
		if _, err := colors.Parse(s); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if g.PolygonCapColor != "" {
		if _, err := colors.Parse(g.PolygonCapColor); err != nil {
			errs = append(errs, fmt.Errorf("globe.polygon_cap_color: %w", err))
		}
	}
	if _, ok := polygon.ParseTriangulation(g.Triangulation); !ok {
		errs = append(errs, fmt.Errorf("globe.triangulation %q: want fan or earclip", g.Triangulation))
	}
	check(g.BumpScale >= 0, "globe.bump_scale must not be negative")
	check(g.AtmosphereAltitude >= 0, "globe.atmosphere_altitude must not be negative")
	check(g.TransitionMillis >= 0, "globe.transition_ms must not be negative")

	ct := c.Controls
	check(ct.MinZoom > 1, "controls.min_zoom %v must stay outside the globe (> 1)", ct.MinZoom)
	check(ct.MinZoom <= ct.MaxZoom, "controls.min_zoom %v above max_zoom %v", ct.MinZoom, ct.MaxZoom)
	check(g.CameraDistance >= ct.MinZoom && g.CameraDistance <= ct.MaxZoom,
		"globe.camera_distance %v outside [%v, %v]", g.CameraDistance, ct.MinZoom, ct.MaxZoom)
	check(ct.DampingFactor > 0 && ct.DampingFactor <= 1, "controls.damping_factor %v out of range (0..1]", ct.DampingFactor)
	check(ct.ZoomSpeed > 0 && ct.ZoomSpeed < 1, "controls.zoom_speed %v out of range (0..1)", ct.ZoomSpeed)

	if f := strings.ToLower(c.Boundaries.Format); f != "" && f != "geojson" && f != "topojson" {
		errs = append(errs, fmt.Errorf("boundaries.format %q: want geojson or topojson", c.Boundaries.Format))
	}
	check(c.Boundaries.CacheSize > 0, "boundaries.cache_size must be positive")

	seen := make(map[string]bool, len(c.Countries))
	for i, country := range c.Countries {
		if country.ID == "" {
			errs = append(errs, fmt.Errorf("countries[%d]: missing id", i))
			continue
		}
		check(!seen[country.ID], "countries[%d]: duplicate id %q", i, country.ID)
		seen[country.ID] = true
		if country.Color != "" {
			if _, err := colors.Parse(country.Color); err != nil {
				errs = append(errs, fmt.Errorf("countries[%d] %s: %w", i, country.ID, err))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
