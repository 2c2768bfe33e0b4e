package brush

import (
	"errors"
	"fmt"

	"github.com/deadsy/sdfx/sdf"
)

// Subtract computes this brush minus the union of the subtrahends. The
// difference of convex solids is generally not convex, so the result is
// a set of disjoint convex brushes; it is empty when the subtrahends
// cover the whole brush. Faces created by the cuts carry
// defaultMaterial. The receiver is not modified.
func (b *Brush) Subtract(worldBounds sdf.Box3, defaultMaterial string, subtrahends ...*Brush) ([]*Brush, error) {
	if len(subtrahends) == 0 {
		return []*Brush{b.Clone()}, nil
	}
	fragments := []*Brush{b.Clone()}
	for _, s := range subtrahends {
		var next []*Brush
		for _, frag := range fragments {
			if !frag.Intersects(s) {
				next = append(next, frag)
				continue
			}
			carved, err := carve(worldBounds, frag, s, defaultMaterial)
			if err != nil {
				return nil, fmt.Errorf("subtract: %w", err)
			}
			next = append(next, carved...)
		}
		fragments = next
	}
	return fragments, nil
}

// carve splits frag into convex pieces covering frag minus sub. Piece i
// lies in front of sub's i-th plane and behind planes 0..i-1, so the
// pieces are disjoint and their union is the difference.
func carve(worldBounds sdf.Box3, frag, sub *Brush, defaultMaterial string) ([]*Brush, error) {
	var pieces []*Brush
	for i, cutFace := range sub.faces {
		faces := make([]*Face, 0, len(frag.faces)+i+1)
		for _, f := range frag.faces {
			faces = append(faces, f.Clone())
		}
		// Outside the i-th subtrahend half-space.
		faces = append(faces, NewFaceFromPlane(cutFace.plane.Flipped(), defaultMaterial))
		// Inside the earlier ones.
		for _, prev := range sub.faces[:i] {
			faces = append(faces, NewFaceFromPlane(prev.plane, defaultMaterial))
		}
		piece, err := New(worldBounds, faces)
		if err != nil {
			if errors.Is(err, ErrInvalidBrush) {
				// This cut produces no volume here.
				continue
			}
			return nil, err
		}
		pieces = append(pieces, piece)
	}
	return pieces, nil
}

// Intersect replaces this brush with its intersection with other, by
// taking the union of both half-space sets and rebuilding. An empty
// intersection returns an error and leaves the brush unchanged.
func (b *Brush) Intersect(worldBounds sdf.Box3, other *Brush) error {
	candidate := b.Clone()
	for _, f := range other.faces {
		candidate.faces = append(candidate.faces, f.Clone())
	}
	if err := candidate.rebuild(worldBounds); err != nil {
		return fmt.Errorf("intersect: %w", err)
	}
	*b = *candidate
	return nil
}
