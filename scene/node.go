// Package scene holds the globe's scene graph: nodes with geometry and
// material resources, the builder that assembles the globe, and the marker
// overlay.
package scene

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/echoflaresat/globeview/polygon"
	"github.com/echoflaresat/globeview/vectors"
)

// NodeKind tells renderers and hit testers how to treat a node.
type NodeKind int

const (
	Group NodeKind = iota
	Mesh
	Line
)

// Node is a transform in the scene graph, optionally carrying a mesh or
// line. Rotation is Euler angles in radians applied in XYZ order.
type Node struct {
	Name     string
	Kind     NodeKind
	Position vectors.Vec3
	Rotation vectors.Vec3
	Visible  bool

	Geometry *Geometry
	Material *Material

	// Loop closes a Line back to its first point.
	Loop bool

	// Polygon is set on fill and hit-test meshes.
	Polygon *polygon.Rendered

	parent   *Node
	children []*Node
}

func NewGroup(name string) *Node {
	return &Node{Name: name, Kind: Group, Visible: true}
}

func NewMesh(name string, g *Geometry, m *Material) *Node {
	return &Node{Name: name, Kind: Mesh, Visible: true, Geometry: g, Material: m}
}

func NewLine(name string, g *Geometry, m *Material, loop bool) *Node {
	return &Node{Name: name, Kind: Line, Visible: true, Geometry: g, Material: m, Loop: loop}
}

// Add attaches children, detaching them from any previous parent.
func (n *Node) Add(children ...*Node) {
	for _, c := range children {
		if c.parent != nil {
			c.parent.Remove(c)
		}
		c.parent = n
		n.children = append(n.children, c)
	}
}

// Remove detaches c if it is a direct child.
func (n *Node) Remove(c *Node) {
	for i, ch := range n.children {
		if ch == c {
			n.children = append(n.children[:i], n.children[i+1:]...)
			c.parent = nil
			return
		}
	}
}

func (n *Node) Parent() *Node     { return n.parent }
func (n *Node) Children() []*Node { return n.children }

// Traverse visits n and its descendants depth first.
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Traverse(fn)
	}
}

// VisibleInTree reports whether n and all its ancestors are visible.
func (n *Node) VisibleInTree() bool {
	for p := n; p != nil; p = p.parent {
		if !p.Visible {
			return false
		}
	}
	return true
}

// LocalMatrix is T * Rx * Ry * Rz.
func (n *Node) LocalMatrix() mgl64.Mat4 {
	return mgl64.Translate3D(n.Position.X, n.Position.Y, n.Position.Z).
		Mul4(mgl64.HomogRotate3DX(n.Rotation.X)).
		Mul4(mgl64.HomogRotate3DY(n.Rotation.Y)).
		Mul4(mgl64.HomogRotate3DZ(n.Rotation.Z))
}

// WorldMatrix composes local matrices from the root down.
func (n *Node) WorldMatrix() mgl64.Mat4 {
	m := n.LocalMatrix()
	for p := n.parent; p != nil; p = p.parent {
		m = p.LocalMatrix().Mul4(m)
	}
	return m
}

// LocalToWorld maps a point in n's frame to world space.
func (n *Node) LocalToWorld(p vectors.Vec3) vectors.Vec3 {
	return TransformPoint(n.WorldMatrix(), p)
}

// WorldToLocal maps a world-space point into n's frame.
func (n *Node) WorldToLocal(p vectors.Vec3) vectors.Vec3 {
	return TransformPoint(n.WorldMatrix().Inv(), p)
}

// TransformPoint applies m to p with w = 1.
func TransformPoint(m mgl64.Mat4, p vectors.Vec3) vectors.Vec3 {
	return p.TransformPoint(m)
}

// TransformDir applies m to d with w = 0.
func TransformDir(m mgl64.Mat4, d vectors.Vec3) vectors.Vec3 {
	return d.TransformDir(m)
}

// dispose releases the node's geometry and material, then its children's.
func (n *Node) dispose() {
	n.Traverse(func(c *Node) {
		if c.Geometry != nil {
			c.Geometry.Dispose()
		}
		if c.Material != nil {
			c.Material.Dispose()
		}
	})
}
