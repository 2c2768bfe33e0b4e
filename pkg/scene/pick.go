package scene

import (
	"sort"

	"github.com/davrell/carve/pkg/brush"
	"github.com/davrell/carve/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Hit is one face struck by a pick ray.
type Hit struct {
	Node     *BrushNode
	Face     *brush.Face
	Distance float64
	Point    v3.Vec
}

// PickResult holds the hits of one ray, nearest first.
type PickResult struct {
	Hits []Hit
}

// Empty reports whether the ray hit nothing.
func (r PickResult) Empty() bool { return len(r.Hits) == 0 }

// First returns the nearest hit.
func (r PickResult) First() (Hit, bool) {
	if len(r.Hits) == 0 {
		return Hit{}, false
	}
	return r.Hits[0], true
}

// Pick shoots a ray at the indexed brush nodes of the world. Candidate
// nodes come from the spatial index; each candidate is then tested
// face by face.
func (w *World) Pick(ray geom.Ray) PickResult {
	maxDist := w.bounds.Size().Length() * 2

	var hits []Hit
	for _, n := range w.index.SearchRay(ray, maxDist) {
		face, dist, ok := n.IntersectRay(ray)
		if !ok {
			continue
		}
		hits = append(hits, Hit{
			Node:     n,
			Face:     face,
			Distance: dist,
			Point:    ray.PointAt(dist),
		})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return PickResult{Hits: hits}
}
