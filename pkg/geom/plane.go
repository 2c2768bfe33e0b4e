package geom

import (
	"errors"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrCollinearPoints is returned when three points that should define a
// plane are collinear (or coincident).
var ErrCollinearPoints = errors.New("geom: points are collinear")

// Side classifies a point against a plane.
type Side int

const (
	SideOn Side = iota
	SideFront
	SideBack
)

func (s Side) String() string {
	switch s {
	case SideOn:
		return "on"
	case SideFront:
		return "front"
	case SideBack:
		return "back"
	default:
		return "unknown"
	}
}

// Plane is an oriented plane in Hesse normal form: a point p lies on the
// plane when Normal.Dot(p) == Dist. Brush faces orient Normal away from
// the solid, so the interior half-space is DistanceTo(p) <= 0.
type Plane struct {
	Normal v3.Vec
	Dist   float64
}

// PlaneFromPoints builds the plane through a, b, c with normal
// (b-a) x (c-a), normalized. Returns ErrCollinearPoints when the three
// points do not span a plane.
func PlaneFromPoints(a, b, c v3.Vec) (Plane, error) {
	n := b.Sub(a).Cross(c.Sub(a))
	if n.Length() < PointEpsilon {
		return Plane{}, ErrCollinearPoints
	}
	n = n.Normalize()
	return Plane{Normal: n, Dist: n.Dot(a)}, nil
}

// PlaneFromPointNormal builds a plane through p with the given normal,
// which need not be unit length.
func PlaneFromPointNormal(p, normal v3.Vec) Plane {
	n := normal.Normalize()
	return Plane{Normal: n, Dist: n.Dot(p)}
}

// DistanceTo returns the signed distance from v to the plane; positive
// in front of (along) the normal.
func (p Plane) DistanceTo(v v3.Vec) float64 {
	return p.Normal.Dot(v) - p.Dist
}

// Classify places v on, in front of, or behind the plane using DistEpsilon.
func (p Plane) Classify(v v3.Vec) Side {
	d := p.DistanceTo(v)
	switch {
	case d > DistEpsilon:
		return SideFront
	case d < -DistEpsilon:
		return SideBack
	default:
		return SideOn
	}
}

// Flipped returns the same plane with the opposite orientation.
func (p Plane) Flipped() Plane {
	return Plane{Normal: p.Normal.Neg(), Dist: -p.Dist}
}

// Anchor returns an arbitrary point on the plane.
func (p Plane) Anchor() v3.Vec {
	return p.Normal.MulScalar(p.Dist)
}

// ProjectPoint returns the orthogonal projection of v onto the plane.
func (p Plane) ProjectPoint(v v3.Vec) v3.Vec {
	return v.Sub(p.Normal.MulScalar(p.DistanceTo(v)))
}

// Equals reports whether q describes the same oriented plane within tol,
// comparing both normal direction and plane distance.
func (p Plane) Equals(q Plane, tol float64) bool {
	return p.Normal.Dot(q.Normal) > 1-tol && math.Abs(p.Dist-q.Dist) < tol
}

// Basis returns two unit vectors spanning the plane, both orthogonal to
// the normal and to each other. Used to lay out windings and UV axes.
func (p Plane) Basis() (u, v v3.Vec) {
	ref := v3.Vec{X: 1}
	if math.Abs(p.Normal.X) > 0.9 {
		ref = v3.Vec{Y: 1}
	}
	u = p.Normal.Cross(ref).Normalize()
	v = p.Normal.Cross(u)
	return u, v
}
