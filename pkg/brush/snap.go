package brush

import (
	"fmt"

	"github.com/davrell/carve/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// CanSnapVertices reports whether SnapVertices would succeed for the
// same grid size.
func (b *Brush) CanSnapVertices(worldBounds sdf.Box3, grid float64) bool {
	return b.Clone().SnapVertices(worldBounds, grid, false) == nil
}

// SnapVertices rounds every vertex to the nearest multiple of grid and
// rebuilds. Vertices that round onto each other merge; when rounding
// collapses the brush below a solid, the brush is unchanged and an
// error is returned. A brush already on the grid is left untouched.
func (b *Brush) SnapVertices(worldBounds sdf.Box3, grid float64, uvLock bool) error {
	if grid <= 0 {
		return fmt.Errorf("snap vertices: grid size %g is not positive", grid)
	}
	snapped := make([]v3.Vec, 0, len(b.vertices))
	dirty := false
	for _, v := range b.vertices {
		s := geom.SnapToGrid(v, grid)
		if !geom.NearEqualVec(s, v) {
			dirty = true
		}
		snapped = append(snapped, s)
	}
	if !dirty {
		return nil
	}
	candidate, err := b.rebuildFromVertexSet(worldBounds, snapped, uvLock)
	if err != nil {
		return fmt.Errorf("snap vertices: %w", err)
	}
	*b = *candidate
	return nil
}

// FindIntegerPlanePoints rounds every face's three boundary plane
// points to integer coordinates and rebuilds, cleaning up drifted plane
// coefficients. On failure the brush is unchanged.
func (b *Brush) FindIntegerPlanePoints(worldBounds sdf.Box3) error {
	candidate := b.Clone()
	for _, f := range candidate.faces {
		pts := f.PlanePoints()
		p0 := geom.RoundToInteger(pts[0])
		p1 := geom.RoundToInteger(pts[1])
		p2 := geom.RoundToInteger(pts[2])
		if err := f.setPlanePoints(p0, p1, p2); err != nil {
			return fmt.Errorf("integer plane points: %w: rounded points are collinear", ErrInvalidBrush)
		}
	}
	if err := candidate.rebuild(worldBounds); err != nil {
		return fmt.Errorf("integer plane points: %w", err)
	}
	*b = *candidate
	return nil
}
