package scene

import (
	"github.com/echoflaresat/globeview/colors"
)

// Side selects which triangle faces a material draws.
type Side int

const (
	FrontSide Side = iota
	BackSide
	DoubleSide
)

// Blending selects how a material combines with what is behind it.
type Blending int

const (
	NormalBlending Blending = iota
	AdditiveBlending
)

// Shading selects the lighting model.
type Shading int

const (
	// Unlit draws Color (times Map, if any) without lighting.
	Unlit Shading = iota
	// Lit applies ambient and directional light, with optional bump map.
	Lit
	// Fresnel draws a rim glow (1 - n·v)^Power * Coefficient.
	Fresnel
)

type Material struct {
	resource

	Shading     Shading
	Color       colors.Color4
	Opacity     float64
	Transparent bool
	Visible     bool
	Side        Side
	Blending    Blending
	DepthTest   bool
	DepthWrite  bool

	Map       *Texture
	BumpMap   *Texture
	BumpScale float64

	Power       float64
	Coefficient float64
}

// NewMaterial registers a visible, opaque, depth-tested material.
func (r *Resources) NewMaterial(shading Shading, color colors.Color4) *Material {
	m := &Material{
		Shading:    shading,
		Color:      color,
		Opacity:    1,
		Visible:    true,
		DepthTest:  true,
		DepthWrite: true,
	}
	m.register(r, KindMaterial)
	return m
}
