package brush

import (
	"errors"
	"fmt"

	"github.com/davrell/carve/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrInvalidBrush is the failure class for every degenerate-geometry
// condition: empty half-space intersections, geometry escaping the world
// bounds, and collapsed or open meshes. Specific causes wrap it.
var ErrInvalidBrush = errors.New("brush: invalid geometry")

// vertexMergeEpsilon is the distance below which rebuild fuses
// near-coincident winding points into one canonical vertex.
const vertexMergeEpsilon = 10 * geom.PointEpsilon

// worldBoundsEpsilon is the slack allowed when checking that rebuilt
// geometry stays inside the world bounds, so that brushes may lie
// exactly on the boundary.
const worldBoundsEpsilon = 10 * geom.PointEpsilon

// Edge is one edge of the boundary representation: two vertex indices
// plus the indices of the (at most two) incident faces.
type Edge struct {
	V1, V2 int
	F1, F2 int // F2 is -1 on an open boundary edge
}

// rebuild derives the boundary representation from the brush's current
// face set, clipped to worldBounds. Redundant and degenerate faces are
// removed from the face list. On failure the brush is left untouched.
//
// The construction is the classic winding one: each face starts as a
// large polygon on its boundary plane and is clipped by every other
// face's half-space. Running it twice is a no-op: the windings are
// already inside every half-space.
func (b *Brush) rebuild(worldBounds sdf.Box3) error {
	candidates := dropRedundantFaces(b.faces)

	radius := clipRadius(worldBounds)
	var kept []*Face
	var windings []winding
	for i, f := range candidates {
		w := baseWinding(f.plane, radius)
		for j, g := range candidates {
			if i == j {
				continue
			}
			w = w.clip(g.plane)
			if w == nil {
				break
			}
		}
		if w == nil || w.degenerate() {
			continue
		}
		kept = append(kept, f)
		windings = append(windings, w)
	}
	if len(kept) < 4 {
		return fmt.Errorf("%w: half-space intersection is empty", ErrInvalidBrush)
	}

	vertices, loops := mergeVertices(windings)

	// Merging can collapse a sliver face's loop below a polygon; such
	// faces are discarded along with any vertices only they referenced.
	var survivors []*Face
	var faceLoops [][]int
	for i, loop := range loops {
		if len(loop) < 3 {
			continue
		}
		survivors = append(survivors, kept[i])
		faceLoops = append(faceLoops, loop)
	}
	if len(survivors) < 4 {
		return fmt.Errorf("%w: faces collapsed during vertex merge", ErrInvalidBrush)
	}
	kept = survivors
	loops = faceLoops
	vertices = compactVertices(vertices, loops)

	bounds := boundsOf(vertices)
	grown := worldBounds.Enlarge(v3.Vec{X: worldBoundsEpsilon, Y: worldBoundsEpsilon, Z: worldBoundsEpsilon})
	for _, v := range vertices {
		if !grown.Contains(v) {
			return fmt.Errorf("%w: geometry exceeds world bounds", ErrInvalidBrush)
		}
	}

	edges, err := deriveEdges(loops)
	if err != nil {
		return err
	}

	// Commit: snap each winding to the canonical merged vertices.
	for i, f := range kept {
		w := make(winding, len(loops[i]))
		for j, vi := range loops[i] {
			w[j] = vertices[vi]
		}
		f.winding = w
	}
	b.faces = kept
	b.vertices = vertices
	b.edges = edges
	b.bounds = bounds
	return nil
}

// dropRedundantFaces removes faces whose boundary plane duplicates an
// earlier face's plane within epsilon.
func dropRedundantFaces(faces []*Face) []*Face {
	var out []*Face
	for _, f := range faces {
		dup := false
		for _, g := range out {
			if f.plane.Equals(g.plane, geom.DistEpsilon) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, f)
		}
	}
	return out
}

// clipRadius returns a base-winding half-extent large enough that the
// quad encloses everything inside worldBounds regardless of plane
// placement.
func clipRadius(worldBounds sdf.Box3) float64 {
	return 2*(worldBounds.Min.Length()+worldBounds.Max.Length()+worldBounds.Size().Length()) + 16
}

// mergeVertices fuses near-coincident winding points into canonical
// vertices and returns the vertex list plus each winding as a loop of
// vertex indices.
func mergeVertices(windings []winding) ([]v3.Vec, [][]int) {
	var vertices []v3.Vec
	loops := make([][]int, len(windings))
	for i, w := range windings {
		loop := make([]int, 0, len(w))
		for _, p := range w {
			idx := -1
			for vi, v := range vertices {
				if p.Sub(v).Length() < vertexMergeEpsilon {
					idx = vi
					break
				}
			}
			if idx < 0 {
				idx = len(vertices)
				vertices = append(vertices, p)
			}
			// Merging can collapse consecutive loop points onto the
			// same vertex; keep the loop simple.
			if n := len(loop); n > 0 && loop[n-1] == idx {
				continue
			}
			loop = append(loop, idx)
		}
		if n := len(loop); n > 1 && loop[0] == loop[n-1] {
			loop = loop[:n-1]
		}
		loops[i] = loop
	}
	return vertices, loops
}

// compactVertices drops vertices no surviving loop references and
// remaps the loop indices in place.
func compactVertices(vertices []v3.Vec, loops [][]int) []v3.Vec {
	remap := make([]int, len(vertices))
	for i := range remap {
		remap[i] = -1
	}
	var out []v3.Vec
	for _, loop := range loops {
		for i, vi := range loop {
			if remap[vi] < 0 {
				remap[vi] = len(out)
				out = append(out, vertices[vi])
			}
			loop[i] = remap[vi]
		}
	}
	return out
}

// deriveEdges walks every face loop and collects the shared edges.
// More than two faces on one edge means the mesh is not manifold.
func deriveEdges(loops [][]int) ([]Edge, error) {
	type key struct{ lo, hi int }
	index := make(map[key]int)
	var edges []Edge
	for fi, loop := range loops {
		for i, vi := range loop {
			vj := loop[(i+1)%len(loop)]
			k := key{vi, vj}
			if k.lo > k.hi {
				k.lo, k.hi = k.hi, k.lo
			}
			ei, ok := index[k]
			if !ok {
				index[k] = len(edges)
				edges = append(edges, Edge{V1: k.lo, V2: k.hi, F1: fi, F2: -1})
				continue
			}
			if edges[ei].F2 != -1 {
				return nil, fmt.Errorf("%w: edge shared by more than two faces", ErrInvalidBrush)
			}
			edges[ei].F2 = fi
		}
	}
	for _, e := range edges {
		if e.F2 == -1 {
			return nil, fmt.Errorf("%w: open geometry", ErrInvalidBrush)
		}
	}
	return edges, nil
}

// boundsOf returns the axis-aligned bounding box of the given points.
func boundsOf(points []v3.Vec) sdf.Box3 {
	b := sdf.Box3{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		b = b.Include(p)
	}
	return b
}
