package boundary

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	geojson "github.com/paulmach/go.geojson"
)

type topology struct {
	Type      string                  `json:"type"`
	Transform *topoTransform          `json:"transform"`
	Arcs      [][][]float64           `json:"arcs"`
	Objects   map[string]topoGeometry `json:"objects"`
}

type topoTransform struct {
	Scale     [2]float64 `json:"scale"`
	Translate [2]float64 `json:"translate"`
}

type topoGeometry struct {
	Type       string                 `json:"type"`
	ID         interface{}            `json:"id"`
	Properties map[string]interface{} `json:"properties"`
	Arcs       json.RawMessage        `json:"arcs"`
	Geometries []topoGeometry         `json:"geometries"`
}

// LoadTopoJSON decodes a Topology and converts the named object into a
// GeoJSON FeatureCollection. An empty object name selects the only object,
// or "countries" when there are several.
func LoadTopoJSON(r io.Reader, object string) (*geojson.FeatureCollection, error) {
	var topo topology
	if err := json.NewDecoder(r).Decode(&topo); err != nil {
		return nil, fmt.Errorf("decode topojson: %w", err)
	}
	if topo.Type != "Topology" {
		return nil, fmt.Errorf("decode topojson: type %q is not Topology", topo.Type)
	}

	obj, err := topo.object(object)
	if err != nil {
		return nil, err
	}

	arcs := topo.decodeArcs()
	fc := geojson.NewFeatureCollection()

	geoms := []topoGeometry{obj}
	if obj.Type == "GeometryCollection" {
		geoms = obj.Geometries
	}
	for i, g := range geoms {
		geom, err := g.toGeometry(arcs)
		if err != nil {
			return nil, fmt.Errorf("topojson geometry %d: %w", i, err)
		}
		f := geojson.NewFeature(geom)
		f.ID = g.ID
		if g.Properties != nil {
			f.Properties = g.Properties
		}
		fc.AddFeature(f)
	}
	return fc, nil
}

func (t *topology) object(name string) (topoGeometry, error) {
	if name != "" {
		obj, ok := t.Objects[name]
		if !ok {
			return topoGeometry{}, fmt.Errorf("topojson object %q not found", name)
		}
		return obj, nil
	}
	if len(t.Objects) == 1 {
		for _, obj := range t.Objects {
			return obj, nil
		}
	}
	if obj, ok := t.Objects["countries"]; ok {
		return obj, nil
	}
	names := make([]string, 0, len(t.Objects))
	for k := range t.Objects {
		names = append(names, k)
	}
	sort.Strings(names)
	return topoGeometry{}, fmt.Errorf("topojson: ambiguous object, choose one of %v", names)
}

// decodeArcs converts every arc to absolute [lon, lat] positions. Quantized
// topologies store delta-encoded integer positions.
func (t *topology) decodeArcs() [][][]float64 {
	out := make([][][]float64, len(t.Arcs))
	for i, arc := range t.Arcs {
		pts := make([][]float64, len(arc))
		var x, y float64
		for j, p := range arc {
			if len(p) < 2 {
				continue
			}
			if t.Transform == nil {
				pts[j] = []float64{p[0], p[1]}
				continue
			}
			x += p[0]
			y += p[1]
			pts[j] = []float64{
				x*t.Transform.Scale[0] + t.Transform.Translate[0],
				y*t.Transform.Scale[1] + t.Transform.Translate[1],
			}
		}
		out[i] = pts
	}
	return out
}

func (g topoGeometry) toGeometry(arcs [][][]float64) (*geojson.Geometry, error) {
	switch g.Type {
	case "Polygon":
		var idx [][]int
		if err := json.Unmarshal(g.Arcs, &idx); err != nil {
			return nil, fmt.Errorf("polygon arcs: %w", err)
		}
		poly, err := stitchPolygon(idx, arcs)
		if err != nil {
			return nil, err
		}
		return geojson.NewPolygonGeometry(poly), nil
	case "MultiPolygon":
		var idx [][][]int
		if err := json.Unmarshal(g.Arcs, &idx); err != nil {
			return nil, fmt.Errorf("multipolygon arcs: %w", err)
		}
		multi := make([][][][]float64, 0, len(idx))
		for _, p := range idx {
			poly, err := stitchPolygon(p, arcs)
			if err != nil {
				return nil, err
			}
			multi = append(multi, poly)
		}
		return geojson.NewMultiPolygonGeometry(multi...), nil
	}
	// Points, lines and null geometries carry no country area.
	return nil, nil
}

func stitchPolygon(rings [][]int, arcs [][][]float64) ([][][]float64, error) {
	out := make([][][]float64, 0, len(rings))
	for _, ring := range rings {
		r, err := stitchRing(ring, arcs)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// stitchRing concatenates arcs; a negative index ~i means arc i reversed.
// The shared point between consecutive arcs is emitted once.
func stitchRing(indices []int, arcs [][][]float64) ([][]float64, error) {
	var ring [][]float64
	for _, i := range indices {
		reverse := i < 0
		if reverse {
			i = ^i
		}
		if i >= len(arcs) {
			return nil, fmt.Errorf("arc index %d out of range (%d arcs)", i, len(arcs))
		}
		arc := arcs[i]
		if len(ring) > 0 {
			ring = ring[:len(ring)-1]
		}
		if reverse {
			for k := len(arc) - 1; k >= 0; k-- {
				ring = append(ring, arc[k])
			}
		} else {
			ring = append(ring, arc...)
		}
	}
	return ring, nil
}
