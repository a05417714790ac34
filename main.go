package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/echoflaresat/globeview/boundary"
	"github.com/echoflaresat/globeview/config"
	"github.com/echoflaresat/globeview/globe"
	"github.com/echoflaresat/globeview/logging"
	"github.com/echoflaresat/globeview/texture"
)

type options struct {
	configPath     *string
	lat, lon, dist *float64
	width, height  *int
	supersample    *int
	country        *string
	sun            *bool
	timeStr        *string
	out            *string
	logLevel       *string
	showHelp       *bool
}

func defineFlags() options {
	return options{
		configPath: flag.String("config", "", "Path to a TOML configuration file"),

		lat:     flag.Float64("lat", 0.0, "Latitude to look at in degrees"),
		lon:     flag.Float64("lon", -90.0, "Longitude to look at in degrees"),
		dist:    flag.Float64("dist", 0, "Camera distance in globe radii (0 keeps the configured distance)"),
		country: flag.String("country", "", "Country ID to select and center (overrides -lat/-lon)"),

		width:       flag.Int("width", 0, "Output width in pixels (0 keeps server.width)"),
		height:      flag.Int("height", 0, "Output height in pixels (0 keeps server.height)"),
		supersample: flag.Int("supersample", 0, "Supersampling factor (0 keeps render.supersampling)"),
		sun:         flag.Bool("sun", false, "Shade the globe by the sun position at -time"),
		timeStr:     flag.String("time", "", "Time in RFC3339 format (e.g., 2025-08-02T15:04:05Z); defaults to now"),

		out:      flag.String("out", "globe.png", "Output PNG file path"),
		logLevel: flag.String("log-level", "warn", "Log level: debug, info, warn, error"),
		showHelp: flag.Bool("h", false, "Show this help message"),
	}
}

func printHelp() {
	fmt.Fprintf(os.Stderr, `globeview - Country Globe Snapshot

Usage:
  %[1]s [options]

`, os.Args[0])

	printGroup("View Options", []string{"lat", "lon", "dist", "country"})
	printGroup("Rendering Options", []string{"width", "height", "supersample", "sun", "time"})
	printGroup("Input/Output", []string{"config", "out"})
	printGroup("Misc", []string{"log-level", "h"})
}

func printGroup(title string, keys []string) {
	fmt.Fprintf(os.Stderr, "%s:\n", title)
	for _, name := range keys {
		if f := flag.Lookup(name); f != nil {
			fmt.Fprintf(os.Stderr, "  -%-12s %s (default %q)\n", f.Name, f.Usage, f.DefValue)
		}
	}
	fmt.Fprintln(os.Stderr)
}

func main() {
	opts := defineFlags()
	flag.Usage = printHelp
	flag.Parse()

	if *opts.showHelp {
		printHelp()
		return
	}

	cfg := loadConfigOrExit(*opts.configPath)
	applyFlags(&cfg, opts)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid options: %v", err)
	}
	renderTime := parseTimeOrExit(*opts.timeStr)

	fmt.Fprint(os.Stderr, "Generating "+*opts.out+" ")
	img, err := snapshot(cfg, *opts.lat, *opts.lon, renderTime, logging.New(logging.Config{Level: *opts.logLevel}))
	if err != nil {
		log.Fatal(err)
	}

	if err := writePNG(*opts.out, img); err != nil {
		log.Fatalf("Failed to write PNG: %v", err)
	}
	fmt.Fprintln(os.Stderr, "done")
}

func loadConfigOrExit(path string) config.Config {
	if path == "" {
		return config.Default()
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	return cfg
}

// applyFlags overrides cfg with every flag that was set to a non-zero value.
func applyFlags(cfg *config.Config, opts options) {
	if *opts.dist > 0 {
		cfg.Globe.CameraDistance = *opts.dist
	}
	if *opts.width > 0 {
		cfg.Server.Width = *opts.width
	}
	if *opts.height > 0 {
		cfg.Server.Height = *opts.height
	}
	if *opts.supersample > 0 {
		cfg.Render.Supersampling = *opts.supersample
	}
	if *opts.sun {
		cfg.Render.SunLighting = true
	}
	if *opts.country != "" {
		cfg.Globe.SelectedCountry = *opts.country
	}
	cfg.Controls.AutoRotate = false
	cfg.Globe.TransitionMillis = 0
}

func parseTimeOrExit(timeStr string) time.Time {
	if timeStr == "" {
		return time.Now()
	}
	t, err := time.Parse(time.RFC3339, timeStr)
	if err != nil {
		log.Fatalf("Invalid time format: %v", err)
	}
	return t
}

// frameSurface keeps the last presented frame.
type frameSurface struct {
	img *image.NRGBA
}

func (s *frameSurface) Init(width, height int) error { return nil }

func (s *frameSurface) Present(img *image.NRGBA) error {
	s.img = img
	return nil
}

// snapshot mounts a globe, waits for its textures and renders one frame
// looking at (lat, lon), or at the selected country when one is set.
func snapshot(cfg config.Config, lat, lon float64, at time.Time, logger *slog.Logger) (image.Image, error) {
	src, err := boundary.Open(boundary.File{
		Path:      cfg.Boundaries.Path,
		Format:    cfg.Boundaries.Format,
		Object:    cfg.Boundaries.Object,
		CacheSize: cfg.Boundaries.CacheSize,
	}, cfg.Countries, logger)
	if err != nil {
		return nil, err
	}

	textures := texture.NewLoader(texture.WithLogger(logger))
	g := globe.New(cfg, globe.Deps{Source: src, Loader: textures, Log: logger})
	if cfg.Globe.SelectedCountry == "" {
		if err := g.PointOfView(lat, lon, 0, 0); err != nil {
			return nil, err
		}
	}
	surface := &frameSurface{}
	if err := g.Mount(surface); err != nil {
		return nil, err
	}
	defer g.Unmount()
	textures.Wait()

	if err := g.Tick(at); err != nil {
		return nil, err
	}
	if surface.img == nil {
		return nil, errors.New("no frame rendered")
	}
	return surface.img, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return (&png.Encoder{CompressionLevel: png.BestSpeed}).Encode(f, img)
}
