package boundary

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	geojson "github.com/paulmach/go.geojson"
)

// DefaultCacheSize bounds the number of distinct ID lists remembered by a
// Source.
const DefaultCacheSize = 64

// Source joins boundary features with catalog records by name and serves
// per-country features. Lookups for the same ID list return the same
// *Feature values until the mappings change.
type Source struct {
	mu       sync.Mutex
	log      *slog.Logger
	byName   map[string]*geojson.Feature
	names    []string
	mappings map[string]string
	catalog  map[string]*Country
	byID     map[string]*Feature
	cache    *lru.Cache
}

// SourceOption customizes NewSource.
type SourceOption func(*Source)

// WithCache injects the ID-list cache, typically shared across sources in
// tests that want to observe eviction.
func WithCache(c *lru.Cache) SourceOption {
	return func(s *Source) { s.cache = c }
}

// WithLogger sets the logger for missing-country warnings.
func WithLogger(l *slog.Logger) SourceOption {
	return func(s *Source) { s.log = l }
}

// NewSource indexes fc by its "name" property and registers one mapping per
// catalog name and alias.
func NewSource(fc *geojson.FeatureCollection, catalog []Country, opts ...SourceOption) *Source {
	s := &Source{
		log:      slog.Default(),
		byName:   make(map[string]*geojson.Feature),
		mappings: make(map[string]string),
		catalog:  make(map[string]*Country, len(catalog)),
	}
	for _, o := range opts {
		o(s)
	}
	if s.cache == nil {
		// lru.New only fails for a non-positive size.
		s.cache, _ = lru.New(DefaultCacheSize)
	}

	if fc != nil {
		for _, f := range fc.Features {
			name := featureName(f)
			if name == "" {
				continue
			}
			s.byName[name] = f
			s.names = append(s.names, name)
			norm := normalize(name)
			if _, ok := s.byName[norm]; !ok {
				s.byName[norm] = f
			}
		}
	}

	for i := range catalog {
		c := catalog[i]
		s.catalog[c.ID] = &c
		names := c.Aliases
		if len(names) == 0 {
			names = []string{c.Name}
		}
		for _, n := range names {
			if n != "" {
				s.mappings[n] = c.ID
			}
		}
	}
	return s
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// CountryPolygons returns the features for ids in order. Unknown IDs are
// logged and skipped. Repeated calls with the same list are served from the
// cache.
func (s *Source) CountryPolygons(ids []string) []*Feature {
	key := strings.Join(ids, "\x00")
	if v, ok := s.cache.Get(key); ok {
		return v.([]*Feature)
	}

	s.mu.Lock()
	byID := s.index()
	s.mu.Unlock()

	out := make([]*Feature, 0, len(ids))
	for _, id := range ids {
		f, ok := byID[id]
		if !ok {
			s.log.Warn("country polygon not found", "id", id)
			continue
		}
		out = append(out, f)
	}
	s.cache.Add(key, out)
	return out
}

// CountryPolygon returns a single feature by ID.
func (s *Source) CountryPolygon(id string) (*Feature, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.index()[id]
	return f, ok
}

// All returns every mapped feature sorted by ID.
func (s *Source) All() []*Feature {
	s.mu.Lock()
	byID := s.index()
	s.mu.Unlock()

	out := make([]*Feature, 0, len(byID))
	for _, f := range byID {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AddMapping registers a boundary-data name for a country ID and drops every
// cached lookup.
func (s *Source) AddMapping(name, id string) {
	s.mu.Lock()
	s.mappings[name] = id
	s.byID = nil
	s.mu.Unlock()
	s.cache.Purge()
}

// Mappings returns a copy of the name to ID table.
func (s *Source) Mappings() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.mappings))
	for k, v := range s.mappings {
		out[k] = v
	}
	return out
}

// index builds the ID to feature map on first use. Callers hold s.mu.
func (s *Source) index() map[string]*Feature {
	if s.byID != nil {
		return s.byID
	}
	names := make([]string, 0, len(s.mappings))
	for n := range s.mappings {
		names = append(names, n)
	}
	sort.Strings(names)

	byID := make(map[string]*Feature, len(names))
	for _, name := range names {
		id := s.mappings[name]
		gf, ok := s.byName[name]
		if !ok {
			gf, ok = s.byName[normalize(name)]
		}
		if !ok {
			s.log.Warn("country not found in boundary data",
				"name", name, "id", id, "available", sample(s.names, 10))
			continue
		}
		props := copyProperties(gf.Properties)
		props["id"] = id
		props["name"] = name
		byID[id] = &Feature{
			ID:         id,
			Name:       name,
			Geometry:   gf.Geometry,
			Properties: props,
			Country:    s.catalog[id],
		}
	}
	s.byID = byID
	return byID
}

func sample(names []string, n int) []string {
	if len(names) <= n {
		return names
	}
	return names[:n]
}
