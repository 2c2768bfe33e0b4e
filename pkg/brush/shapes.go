package brush

import (
	"fmt"

	"github.com/davrell/carve/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// NewCuboid builds an axis-aligned cuboid brush filling box, every face
// carrying the given material.
func NewCuboid(worldBounds sdf.Box3, box sdf.Box3, material string) (*Brush, error) {
	size := box.Size()
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return nil, fmt.Errorf("cuboid: %w: box %v has no volume", ErrInvalidBrush, box)
	}
	planes := []geom.Plane{
		geom.PlaneFromPointNormal(box.Max, v3.Vec{X: 1}),
		geom.PlaneFromPointNormal(box.Max, v3.Vec{Y: 1}),
		geom.PlaneFromPointNormal(box.Max, v3.Vec{Z: 1}),
		geom.PlaneFromPointNormal(box.Min, v3.Vec{X: -1}),
		geom.PlaneFromPointNormal(box.Min, v3.Vec{Y: -1}),
		geom.PlaneFromPointNormal(box.Min, v3.Vec{Z: -1}),
	}
	faces := make([]*Face, len(planes))
	for i, p := range planes {
		faces[i] = NewFaceFromPlane(p, material)
	}
	return New(worldBounds, faces)
}

// NewCube builds a cube brush of the given edge length centered at
// center.
func NewCube(worldBounds sdf.Box3, center v3.Vec, edge float64, material string) (*Brush, error) {
	half := v3.Vec{X: edge / 2, Y: edge / 2, Z: edge / 2}
	return NewCuboid(worldBounds, sdf.Box3{Min: center.Sub(half), Max: center.Add(half)}, material)
}
