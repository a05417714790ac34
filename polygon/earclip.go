package polygon

import (
	"errors"
	"fmt"

	"github.com/rclancey/earcut"

	"github.com/echoflaresat/globeview/vectors"
)

var errHemisphere = errors.New("ring spans more than a hemisphere")

// earClip triangulates a ring with optional holes. Points are projected onto
// the plane tangent to the sphere at the ring's mean direction (gnomonic
// projection keeps great-circle edges straight), then handed to earcut.
// The returned mesh indexes the outer ring followed by each hole.
func earClip(outer []vectors.Vec3, holes [][]vectors.Vec3) (Mesh, error) {
	all := make([]vectors.Vec3, 0, len(outer))
	all = append(all, outer...)
	holeStarts := make([]int, 0, len(holes))
	for _, h := range holes {
		holeStarts = append(holeStarts, len(all))
		all = append(all, h...)
	}

	center := vectors.Mean(outer).Normalize()
	if center == (vectors.Vec3{}) {
		return Mesh{}, errHemisphere
	}
	e1 := center.Orthogonal()
	e2 := center.Cross(e1)

	flat := make([]float64, 0, 2*len(all))
	for _, p := range all {
		d := p.Dot(center)
		if d <= 1e-9 {
			return Mesh{}, errHemisphere
		}
		q := p.Scale(1 / d)
		flat = append(flat, q.Dot(e1), q.Dot(e2))
	}

	tri, err := earcut.Earcut(flat, holeStarts, 2)
	if err != nil {
		return Mesh{}, fmt.Errorf("earcut: %w", err)
	}
	if len(tri) == 0 || len(tri)%3 != 0 {
		return Mesh{}, fmt.Errorf("earcut: invalid index count %d", len(tri))
	}

	idx := make([][3]int, len(tri)/3)
	for i := range idx {
		idx[i] = [3]int{tri[3*i], tri[3*i+1], tri[3*i+2]}
	}
	return Mesh{Vertices: all, Indices: idx}, nil
}
