package brush

import (
	"fmt"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// CanTransform reports whether Transform would succeed for the same
// transformation.
func (b *Brush) CanTransform(worldBounds sdf.Box3, m sdf.M44) bool {
	return b.Clone().Transform(worldBounds, m, false) == nil
}

// Transform applies an affine transformation to every face's boundary
// plane points and rebuilds. Transforms that collapse a plane (zero
// scale) or push the brush outside worldBounds fail, leaving the brush
// unchanged. With lockUV, each surviving face's alignment is re-derived
// so its center keeps the texture coordinates it had before the
// transform.
func (b *Brush) Transform(worldBounds sdf.Box3, m sdf.M44, lockUV bool) error {
	// Snapshot per-face reference data before touching the planes.
	type uvRef struct {
		align  UVAlignment
		center v3.Vec
		normal v3.Vec
	}
	refs := make(map[*Face]uvRef, len(b.faces))

	// A mirroring transform reverses the orientation of the plane
	// points; swapping two of them keeps the normals outward.
	mirror := m.Determinant() < 0

	candidate := b.Clone()
	for _, f := range candidate.faces {
		refs[f] = uvRef{align: f.Align, center: f.winding.center(), normal: f.plane.Normal}
		pts := f.PlanePoints()
		p0, p1, p2 := m.MulPosition(pts[0]), m.MulPosition(pts[1]), m.MulPosition(pts[2])
		if mirror {
			p1, p2 = p2, p1
		}
		if err := f.setPlanePoints(p0, p1, p2); err != nil {
			return fmt.Errorf("transform: %w: transformation collapses a face plane", ErrInvalidBrush)
		}
	}
	if err := candidate.rebuild(worldBounds); err != nil {
		return fmt.Errorf("transform: %w", err)
	}
	if lockUV {
		for _, f := range candidate.faces {
			ref, ok := refs[f]
			if !ok {
				continue
			}
			f.Align = f.Align.lockTo(ref.align, ref.center, ref.normal,
				f.winding.center(), f.plane.Normal)
		}
	}
	*b = *candidate
	return nil
}

// Translate is a convenience wrapper for a pure translation transform.
func (b *Brush) Translate(worldBounds sdf.Box3, delta v3.Vec, lockUV bool) error {
	return b.Transform(worldBounds, sdf.Translate3d(delta), lockUV)
}
