package brush

import (
	"fmt"

	"github.com/davrell/carve/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// selectionEpsilon locates selected vertices, edges and faces from
// caller-supplied positions, and re-locates them after a rebuild.
const selectionEpsilon = 100 * geom.PointEpsilon

// rebuildFromVertexSet builds a new brush whose half-space set is the
// convex hull of the given points, clipped to worldBounds, carrying
// face attributes over from this brush via the matcher. The receiver is
// not modified.
func (b *Brush) rebuildFromVertexSet(worldBounds sdf.Box3, points []v3.Vec, uvLock bool) (*Brush, error) {
	planes, err := geom.ConvexHull(points)
	if err != nil {
		return nil, fmt.Errorf("%w: vertex set does not span a solid", ErrInvalidBrush)
	}
	faces := make([]*Face, len(planes))
	for i, p := range planes {
		faces[i] = NewFaceFromPlane(p, "")
	}
	candidate := &Brush{faces: faces}
	if err := candidate.rebuild(worldBounds); err != nil {
		return nil, err
	}
	matchFaces(candidate, b.faces, uvLock)
	return candidate, nil
}

// movedVertexSet returns the brush's vertex set with the selected
// positions translated by delta. Fails when a selected position does
// not name a vertex, or a translated position leaves worldBounds.
func (b *Brush) movedVertexSet(worldBounds sdf.Box3, positions []v3.Vec, delta v3.Vec) ([]v3.Vec, error) {
	if len(positions) == 0 {
		return nil, fmt.Errorf("empty vertex selection")
	}
	selected := make(map[int]bool)
	for _, p := range positions {
		i := b.vertexIndex(p, selectionEpsilon)
		if i < 0 {
			return nil, fmt.Errorf("no vertex at %v", p)
		}
		selected[i] = true
	}
	points := make([]v3.Vec, len(b.vertices))
	for i, v := range b.vertices {
		if !selected[i] {
			points[i] = v
			continue
		}
		moved := v.Add(delta)
		if !worldBounds.Contains(moved) {
			return nil, fmt.Errorf("%w: vertex %v leaves world bounds", ErrInvalidBrush, moved)
		}
		points[i] = moved
	}
	return points, nil
}

// CanMoveVertices reports whether MoveVertices would succeed for the
// same arguments. It is a pure predicate: the brush is not modified.
func (b *Brush) CanMoveVertices(worldBounds sdf.Box3, positions []v3.Vec, delta v3.Vec) bool {
	_, err := b.Clone().MoveVertices(worldBounds, positions, delta, false)
	return err == nil
}

// MoveVertices translates the vertices at the given positions by delta
// and rebuilds the boundary representation. Coincident vertices merge,
// so the returned slice holds the canonical positions actually realized
// for the selection. Callers must check CanMoveVertices first; the move
// fails loudly (and leaves the brush unchanged) otherwise.
func (b *Brush) MoveVertices(worldBounds sdf.Box3, positions []v3.Vec, delta v3.Vec, uvLock bool) ([]v3.Vec, error) {
	points, err := b.movedVertexSet(worldBounds, positions, delta)
	if err != nil {
		return nil, fmt.Errorf("move vertices: %w", err)
	}
	candidate, err := b.rebuildFromVertexSet(worldBounds, points, uvLock)
	if err != nil {
		return nil, fmt.Errorf("move vertices: %w", err)
	}
	result := make([]v3.Vec, 0, len(positions))
	for _, p := range positions {
		i := candidate.vertexIndex(p.Add(delta), selectionEpsilon)
		if i < 0 {
			return nil, fmt.Errorf("move vertices: %w: vertex %v vanished", ErrInvalidBrush, p.Add(delta))
		}
		result = append(result, candidate.vertices[i])
	}
	*b = *candidate
	return result, nil
}

// CanMoveEdges reports whether MoveEdges would succeed for the same
// arguments.
func (b *Brush) CanMoveEdges(worldBounds sdf.Box3, segments [][2]v3.Vec, delta v3.Vec) bool {
	_, err := b.Clone().MoveEdges(worldBounds, segments, delta, false)
	return err == nil
}

// MoveEdges translates the endpoints of the given edges by delta and
// rebuilds. Unlike a vertex move, every selected edge must survive the
// rebuild; an edge collapsing or merging away fails the whole move.
// Returns the canonical positions of the moved edges.
func (b *Brush) MoveEdges(worldBounds sdf.Box3, segments [][2]v3.Vec, delta v3.Vec, uvLock bool) ([][2]v3.Vec, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("move edges: empty edge selection")
	}
	var positions []v3.Vec
	for _, s := range segments {
		if !b.HasEdge(s[0], s[1], selectionEpsilon) {
			return nil, fmt.Errorf("move edges: no edge between %v and %v", s[0], s[1])
		}
		positions = appendUniquePosition(positions, s[0])
		positions = appendUniquePosition(positions, s[1])
	}
	points, err := b.movedVertexSet(worldBounds, positions, delta)
	if err != nil {
		return nil, fmt.Errorf("move edges: %w", err)
	}
	candidate, err := b.rebuildFromVertexSet(worldBounds, points, uvLock)
	if err != nil {
		return nil, fmt.Errorf("move edges: %w", err)
	}
	result := make([][2]v3.Vec, 0, len(segments))
	for _, s := range segments {
		p1, p2 := s[0].Add(delta), s[1].Add(delta)
		if !candidate.HasEdge(p1, p2, selectionEpsilon) {
			return nil, fmt.Errorf("move edges: %w: edge %v-%v vanished", ErrInvalidBrush, p1, p2)
		}
		i1 := candidate.vertexIndex(p1, selectionEpsilon)
		i2 := candidate.vertexIndex(p2, selectionEpsilon)
		result = append(result, [2]v3.Vec{candidate.vertices[i1], candidate.vertices[i2]})
	}
	*b = *candidate
	return result, nil
}

// CanMoveFaces reports whether MoveFaces would succeed for the same
// arguments.
func (b *Brush) CanMoveFaces(worldBounds sdf.Box3, loops [][]v3.Vec, delta v3.Vec) bool {
	_, err := b.Clone().MoveFaces(worldBounds, loops, delta, false)
	return err == nil
}

// MoveFaces translates the vertices of the faces identified by the
// given vertex loops by delta and rebuilds. Every selected face must
// survive with its full loop; anything else fails the move. Returns the
// canonical loops of the moved faces.
func (b *Brush) MoveFaces(worldBounds sdf.Box3, loops [][]v3.Vec, delta v3.Vec, uvLock bool) ([][]v3.Vec, error) {
	if len(loops) == 0 {
		return nil, fmt.Errorf("move faces: empty face selection")
	}
	var positions []v3.Vec
	for _, loop := range loops {
		if b.FindFaceByVertices(loop, selectionEpsilon) == nil {
			return nil, fmt.Errorf("move faces: no face with the given vertex loop")
		}
		for _, p := range loop {
			positions = appendUniquePosition(positions, p)
		}
	}
	points, err := b.movedVertexSet(worldBounds, positions, delta)
	if err != nil {
		return nil, fmt.Errorf("move faces: %w", err)
	}
	candidate, err := b.rebuildFromVertexSet(worldBounds, points, uvLock)
	if err != nil {
		return nil, fmt.Errorf("move faces: %w", err)
	}
	result := make([][]v3.Vec, 0, len(loops))
	for _, loop := range loops {
		moved := make([]v3.Vec, len(loop))
		for i, p := range loop {
			moved[i] = p.Add(delta)
		}
		f := candidate.FindFaceByVertices(moved, selectionEpsilon)
		if f == nil {
			return nil, fmt.Errorf("move faces: %w: face vanished", ErrInvalidBrush)
		}
		result = append(result, f.Vertices())
	}
	*b = *candidate
	return result, nil
}

// CanAddVertex reports whether AddVertex would succeed for the same
// position.
func (b *Brush) CanAddVertex(worldBounds sdf.Box3, position v3.Vec) bool {
	_, err := b.Clone().AddVertex(worldBounds, position)
	return err == nil
}

// AddVertex extends the brush to include the given position as a new
// vertex. Positions inside the brush fail: they cannot appear on the
// convex boundary.
func (b *Brush) AddVertex(worldBounds sdf.Box3, position v3.Vec) (v3.Vec, error) {
	if !worldBounds.Contains(position) {
		return v3.Vec{}, fmt.Errorf("add vertex: %w: position leaves world bounds", ErrInvalidBrush)
	}
	if b.ContainsPoint(position) {
		return v3.Vec{}, fmt.Errorf("add vertex: position %v is inside the brush", position)
	}
	candidate, err := b.rebuildFromVertexSet(worldBounds, append(b.Vertices(), position), false)
	if err != nil {
		return v3.Vec{}, fmt.Errorf("add vertex: %w", err)
	}
	i := candidate.vertexIndex(position, selectionEpsilon)
	if i < 0 {
		return v3.Vec{}, fmt.Errorf("add vertex: %w: vertex not realized", ErrInvalidBrush)
	}
	*b = *candidate
	return candidate.vertices[i], nil
}

// CanRemoveVertices reports whether RemoveVertices would succeed for
// the same positions.
func (b *Brush) CanRemoveVertices(worldBounds sdf.Box3, positions []v3.Vec) bool {
	return b.Clone().RemoveVertices(worldBounds, positions) == nil
}

// RemoveVertices deletes the vertices at the given positions and
// rebuilds the brush from the remaining vertex set.
func (b *Brush) RemoveVertices(worldBounds sdf.Box3, positions []v3.Vec) error {
	if len(positions) == 0 {
		return fmt.Errorf("remove vertices: empty vertex selection")
	}
	remove := make(map[int]bool)
	for _, p := range positions {
		i := b.vertexIndex(p, selectionEpsilon)
		if i < 0 {
			return fmt.Errorf("remove vertices: no vertex at %v", p)
		}
		remove[i] = true
	}
	var remaining []v3.Vec
	for i, v := range b.vertices {
		if !remove[i] {
			remaining = append(remaining, v)
		}
	}
	candidate, err := b.rebuildFromVertexSet(worldBounds, remaining, false)
	if err != nil {
		return fmt.Errorf("remove vertices: %w", err)
	}
	*b = *candidate
	return nil
}

// appendUniquePosition appends p unless an equal position is already in
// the slice.
func appendUniquePosition(positions []v3.Vec, p v3.Vec) []v3.Vec {
	for _, q := range positions {
		if geom.NearEqualVec(p, q) {
			return positions
		}
	}
	return append(positions, p)
}
