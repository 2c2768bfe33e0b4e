// Package geom provides the scalar predicates, plane and ray primitives,
// and the convex hull construction used by the brush kernel. Vector, box
// and matrix types come from the sdfx geometry library so the rest of the
// system shares one linear-algebra vocabulary.
package geom

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

const (
	// PointEpsilon is the distance below which two positions are
	// considered the same vertex.
	PointEpsilon = 1e-6

	// DistEpsilon is the plane-distance tolerance used to classify a
	// point as lying on a plane.
	DistEpsilon = 1e-6
)

// NearEqual reports whether two scalars differ by less than tol.
func NearEqual(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

// NearEqualVec reports whether two points coincide within PointEpsilon.
func NearEqualVec(a, b v3.Vec) bool {
	return a.Sub(b).Length() < PointEpsilon
}

// SnapToGrid rounds every component of v to the nearest multiple of grid.
// A non-positive grid leaves v unchanged.
func SnapToGrid(v v3.Vec, grid float64) v3.Vec {
	if grid <= 0 {
		return v
	}
	return v3.Vec{
		X: math.Round(v.X/grid) * grid,
		Y: math.Round(v.Y/grid) * grid,
		Z: math.Round(v.Z/grid) * grid,
	}
}

// RoundToInteger rounds every component of v to the nearest integer.
func RoundToInteger(v v3.Vec) v3.Vec {
	return SnapToGrid(v, 1)
}

// Centroid returns the arithmetic mean of the given points.
// The zero vector is returned for an empty slice.
func Centroid(points []v3.Vec) v3.Vec {
	if len(points) == 0 {
		return v3.Vec{}
	}
	var sum v3.Vec
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.DivScalar(float64(len(points)))
}
