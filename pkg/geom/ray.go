package geom

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Ray is a half-line used for picking.
type Ray struct {
	Origin    v3.Vec
	Direction v3.Vec
}

// NewRay builds a ray with a normalized direction.
func NewRay(origin, direction v3.Vec) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize()}
}

// PointAt returns the point at parameter t along the ray.
func (r Ray) PointAt(t float64) v3.Vec {
	return r.Origin.Add(r.Direction.MulScalar(t))
}

// IntersectPlane returns the ray parameter where the ray crosses the
// plane. The second result is false when the ray is parallel to the
// plane or the intersection lies behind the origin.
func (r Ray) IntersectPlane(p Plane) (float64, bool) {
	denom := r.Direction.Dot(p.Normal)
	if math.Abs(denom) < DistEpsilon {
		return 0, false
	}
	t := -p.DistanceTo(r.Origin) / denom
	if t < 0 {
		return 0, false
	}
	return t, true
}

// boxNormals are the outward normals of the six sides of an axis-aligned box.
var boxNormals = [6]v3.Vec{
	{X: 1}, {X: -1},
	{Y: 1}, {Y: -1},
	{Z: 1}, {Z: -1},
}

// IntersectsBox reports whether the ray hits the axis-aligned box,
// testing the six slab sides in turn. An origin inside the box counts
// as a hit.
func (r Ray) IntersectsBox(b sdf.Box3) bool {
	if b.Contains(r.Origin) {
		return true
	}
	for _, n := range boxNormals {
		denom := r.Direction.Dot(n)
		if denom == 0 {
			continue
		}
		// Pick the box corner lying on the side's plane.
		corner := b.Max
		if n.X+n.Y+n.Z < 0 {
			corner = b.Min
		}
		t := corner.Sub(r.Origin).Dot(n) / denom
		if t < 0 {
			continue
		}
		p := r.PointAt(t)
		switch {
		case n.X != 0:
			if p.Y >= b.Min.Y-DistEpsilon && p.Y <= b.Max.Y+DistEpsilon &&
				p.Z >= b.Min.Z-DistEpsilon && p.Z <= b.Max.Z+DistEpsilon {
				return true
			}
		case n.Y != 0:
			if p.X >= b.Min.X-DistEpsilon && p.X <= b.Max.X+DistEpsilon &&
				p.Z >= b.Min.Z-DistEpsilon && p.Z <= b.Max.Z+DistEpsilon {
				return true
			}
		default:
			if p.X >= b.Min.X-DistEpsilon && p.X <= b.Max.X+DistEpsilon &&
				p.Y >= b.Min.Y-DistEpsilon && p.Y <= b.Max.Y+DistEpsilon {
				return true
			}
		}
	}
	return false
}
