package scene

import (
	"math"

	"github.com/echoflaresat/globeview/vectors"
)

// Geometry is vertex data in a node's local frame. Meshes use Indices;
// lines use Vertices in order.
type Geometry struct {
	resource

	Vertices []vectors.Vec3
	Normals  []vectors.Vec3
	UVs      [][2]float64
	Indices  [][3]int

	// Sphere is the analytic radius for geometries built by SphereGeometry,
	// zero otherwise. Renderers may intersect the sphere directly.
	Sphere float64

	// BoundingRadius bounds every vertex around BoundingCenter.
	BoundingCenter vectors.Vec3
	BoundingRadius float64
}

// NewGeometry registers an indexed triangle mesh.
func (r *Resources) NewGeometry(vertices []vectors.Vec3, indices [][3]int) *Geometry {
	g := &Geometry{Vertices: vertices, Indices: indices}
	g.computeBounds()
	g.register(r, KindGeometry)
	return g
}

// NewLineGeometry registers a polyline.
func (r *Resources) NewLineGeometry(points []vectors.Vec3) *Geometry {
	return r.NewGeometry(points, nil)
}

// NewSphereGeometry registers a UV sphere with the texture seam at the
// antimeridian, so u = (lon+180)/360 and v = (90-lat)/180.
func (r *Resources) NewSphereGeometry(radius float64, widthSegments, heightSegments int) *Geometry {
	if widthSegments < 3 {
		widthSegments = 3
	}
	if heightSegments < 2 {
		heightSegments = 2
	}

	n := (widthSegments + 1) * (heightSegments + 1)
	g := &Geometry{
		Vertices: make([]vectors.Vec3, 0, n),
		Normals:  make([]vectors.Vec3, 0, n),
		UVs:      make([][2]float64, 0, n),
		Sphere:   radius,
	}
	for iy := 0; iy <= heightSegments; iy++ {
		v := float64(iy) / float64(heightSegments)
		for ix := 0; ix <= widthSegments; ix++ {
			u := float64(ix) / float64(widthSegments)
			normal := vectors.Vec3{
				X: -math.Cos(u*2*math.Pi) * math.Sin(v*math.Pi),
				Y: math.Cos(v * math.Pi),
				Z: math.Sin(u*2*math.Pi) * math.Sin(v*math.Pi),
			}
			g.Vertices = append(g.Vertices, normal.Scale(radius))
			g.Normals = append(g.Normals, normal)
			g.UVs = append(g.UVs, [2]float64{u, v})
		}
	}

	row := widthSegments + 1
	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := iy*row + ix + 1
			b := iy*row + ix
			c := (iy+1)*row + ix
			d := (iy+1)*row + ix + 1
			if iy != 0 {
				g.Indices = append(g.Indices, [3]int{a, b, d})
			}
			if iy != heightSegments-1 {
				g.Indices = append(g.Indices, [3]int{b, c, d})
			}
		}
	}

	g.BoundingRadius = radius
	g.register(r, KindGeometry)
	return g
}

func (g *Geometry) computeBounds() {
	if len(g.Vertices) == 0 {
		return
	}
	g.BoundingCenter = vectors.Mean(g.Vertices)
	for _, v := range g.Vertices {
		if d := vectors.Distance(v, g.BoundingCenter); d > g.BoundingRadius {
			g.BoundingRadius = d
		}
	}
}

// Triangle returns the vertices of triangle i.
func (g *Geometry) Triangle(i int) (a, b, c vectors.Vec3) {
	t := g.Indices[i]
	return g.Vertices[t[0]], g.Vertices[t[1]], g.Vertices[t[2]]
}
