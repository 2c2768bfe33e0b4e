package brush

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// UVAlignment is a face's material alignment: paraxial projection axes
// derived from the face normal, plus offset, scale and rotation.
type UVAlignment struct {
	OffsetX  float64
	OffsetY  float64
	ScaleX   float64
	ScaleY   float64
	Rotation float64 // degrees, about the face normal
}

// DefaultAlignment returns an identity alignment.
func DefaultAlignment() UVAlignment {
	return UVAlignment{ScaleX: 1, ScaleY: 1}
}

// baseAxes holds triplets of (dominant normal, U axis, V axis) for the
// six paraxial projections.
var baseAxes = [18]v3.Vec{
	{Z: 1}, {X: 1}, {Y: -1},
	{Z: -1}, {X: 1}, {Y: -1},
	{X: 1}, {Y: 1}, {Z: -1},
	{X: -1}, {Y: 1}, {Z: -1},
	{Y: 1}, {X: 1}, {Z: -1},
	{Y: -1}, {X: 1}, {Z: -1},
}

// uvAxes selects the projection axes whose dominant direction best
// matches the face normal.
func uvAxes(normal v3.Vec) (u, v v3.Vec) {
	best, bestDot := 0, math.Inf(-1)
	for i := 0; i < 6; i++ {
		if d := normal.Dot(baseAxes[i*3]); d > bestDot {
			bestDot = d
			best = i
		}
	}
	return baseAxes[best*3+1], baseAxes[best*3+2]
}

// axes returns the alignment's effective U/V axes for a face normal,
// with rotation applied about the normal.
func (a UVAlignment) axes(normal v3.Vec) (u, v v3.Vec) {
	u, v = uvAxes(normal)
	if a.Rotation != 0 {
		m := sdf.Rotate3d(normal, a.Rotation*math.Pi/180)
		u = m.MulPosition(u)
		v = m.MulPosition(v)
	}
	return u, v
}

// TexCoords projects a world-space point into the alignment's UV space.
func (a UVAlignment) TexCoords(p, normal v3.Vec) (float64, float64) {
	sx, sy := a.ScaleX, a.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	u, v := a.axes(normal)
	return p.Dot(u)/sx + a.OffsetX, p.Dot(v)/sy + a.OffsetY
}

// lockTo adjusts the alignment's offsets so that newRef in the new
// orientation maps to the same texture coordinates oldRef had under the
// old alignment. This is the UV-lock primitive used across moves,
// snapping and transforms.
func (a UVAlignment) lockTo(old UVAlignment, oldRef, oldNormal, newRef, newNormal v3.Vec) UVAlignment {
	wantU, wantV := old.TexCoords(oldRef, oldNormal)
	haveU, haveV := a.TexCoords(newRef, newNormal)
	locked := a
	locked.OffsetX += wantU - haveU
	locked.OffsetY += wantV - haveV
	return locked
}
