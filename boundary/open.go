package boundary

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	geojson "github.com/paulmach/go.geojson"
)

// File describes a boundary dataset on disk.
type File struct {
	Path string
	// Format is "geojson" or "topojson"; empty picks by extension, with
	// ".topojson" and ".topo.json" read as TopoJSON.
	Format string
	// Object names the TopoJSON object holding the countries.
	Object    string
	CacheSize int
}

// Open loads f and joins it with catalog. An empty path yields a source
// with no boundaries.
func Open(f File, catalog []Country, log *slog.Logger) (*Source, error) {
	if log == nil {
		log = slog.Default()
	}
	size := f.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("boundary cache: %w", err)
	}
	opts := []SourceOption{WithCache(cache), WithLogger(log)}

	if f.Path == "" {
		return NewSource(geojson.NewFeatureCollection(), catalog, opts...), nil
	}
	r, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open boundaries: %w", err)
	}
	defer r.Close()

	var fc *geojson.FeatureCollection
	if isTopoJSON(f) {
		fc, err = LoadTopoJSON(r, f.Object)
	} else {
		fc, err = LoadGeoJSON(r)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	log.Info("boundaries loaded", "path", f.Path, "features", len(fc.Features), "countries", len(catalog))
	return NewSource(fc, catalog, opts...), nil
}

func isTopoJSON(f File) bool {
	switch strings.ToLower(f.Format) {
	case "topojson":
		return true
	case "geojson":
		return false
	}
	name := strings.ToLower(filepath.Base(f.Path))
	return strings.HasSuffix(name, ".topojson") || strings.HasSuffix(name, ".topo.json")
}
