package brush

import (
	"fmt"

	"github.com/davrell/carve/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Brush is a convex solid: an ordered set of face half-spaces plus the
// boundary representation (vertices and edges) derived from their
// intersection, clipped to the world bounds it was built against.
// A brush is exclusively owned by one scene node and is not safe for
// concurrent mutation.
type Brush struct {
	faces    []*Face
	vertices []v3.Vec
	edges    []Edge
	bounds   sdf.Box3
}

// New builds a brush from a face list, taking ownership of the faces.
// Degenerate and redundant faces are removed; an empty, unbounded or
// open intersection returns an ErrInvalidBrush-wrapped error.
func New(worldBounds sdf.Box3, faces []*Face) (*Brush, error) {
	b := &Brush{faces: faces}
	if err := b.rebuild(worldBounds); err != nil {
		return nil, err
	}
	return b, nil
}

// Clone returns a deep copy of the brush.
func (b *Brush) Clone() *Brush {
	c := &Brush{
		faces:    make([]*Face, len(b.faces)),
		vertices: append([]v3.Vec(nil), b.vertices...),
		edges:    append([]Edge(nil), b.edges...),
		bounds:   b.bounds,
	}
	for i, f := range b.faces {
		c.faces[i] = f.Clone()
	}
	return c
}

// Faces returns the brush's faces. The slice is shared; callers must
// not modify it.
func (b *Brush) Faces() []*Face {
	return b.faces
}

// FaceCount returns the number of faces.
func (b *Brush) FaceCount() int {
	return len(b.faces)
}

// Vertices returns a copy of the brush's canonical vertex positions.
func (b *Brush) Vertices() []v3.Vec {
	return append([]v3.Vec(nil), b.vertices...)
}

// VertexCount returns the number of vertices.
func (b *Brush) VertexCount() int {
	return len(b.vertices)
}

// Edges returns a copy of the brush's edges.
func (b *Brush) Edges() []Edge {
	return append([]Edge(nil), b.edges...)
}

// EdgeCount returns the number of edges.
func (b *Brush) EdgeCount() int {
	return len(b.edges)
}

// EdgeEndpoints returns the canonical positions of an edge's endpoints.
func (b *Brush) EdgeEndpoints(e Edge) (v3.Vec, v3.Vec) {
	return b.vertices[e.V1], b.vertices[e.V2]
}

// Bounds returns the brush's axis-aligned bounding box.
func (b *Brush) Bounds() sdf.Box3 {
	return b.bounds
}

// Closed reports whether every edge has exactly two incident faces.
func (b *Brush) Closed() bool {
	if len(b.edges) == 0 {
		return false
	}
	for _, e := range b.edges {
		if e.F2 == -1 {
			return false
		}
	}
	return true
}

// FullySpecified reports whether every face's boundary plane is
// derivable from its current vertex loop.
func (b *Brush) FullySpecified() bool {
	for _, f := range b.faces {
		if !f.fullySpecified() {
			return false
		}
	}
	return len(b.faces) > 0
}

// HasVertex reports whether the brush has a vertex at the given
// position, within epsilon.
func (b *Brush) HasVertex(p v3.Vec, epsilon float64) bool {
	return b.vertexIndex(p, epsilon) >= 0
}

func (b *Brush) vertexIndex(p v3.Vec, epsilon float64) int {
	for i, v := range b.vertices {
		if v.Sub(p).Length() <= epsilon {
			return i
		}
	}
	return -1
}

// HasEdge reports whether the brush has an edge between the two
// positions, within epsilon.
func (b *Brush) HasEdge(p1, p2 v3.Vec, epsilon float64) bool {
	i1 := b.vertexIndex(p1, epsilon)
	i2 := b.vertexIndex(p2, epsilon)
	if i1 < 0 || i2 < 0 {
		return false
	}
	for _, e := range b.edges {
		if (e.V1 == i1 && e.V2 == i2) || (e.V1 == i2 && e.V2 == i1) {
			return true
		}
	}
	return false
}

// HasFace reports whether the brush has a face realizing the given
// vertex loop, within epsilon.
func (b *Brush) HasFace(loop []v3.Vec, epsilon float64) bool {
	return b.FindFaceByVertices(loop, epsilon) != nil
}

// ContainsPoint reports whether the point lies inside or on the brush.
func (b *Brush) ContainsPoint(p v3.Vec) bool {
	for _, f := range b.faces {
		if f.plane.Classify(p) == geom.SideFront {
			return false
		}
	}
	return true
}

// Contains reports whether every vertex of other lies inside this brush.
func (b *Brush) Contains(other *Brush) bool {
	for _, v := range other.vertices {
		if !b.ContainsPoint(v) {
			return false
		}
	}
	return true
}

// Intersects reports whether the two convex brushes overlap, using each
// brush's face planes as candidate separating planes.
func (b *Brush) Intersects(other *Brush) bool {
	return !hasSeparatingPlane(b, other) && !hasSeparatingPlane(other, b)
}

// hasSeparatingPlane reports whether any face plane of a has all of b's
// vertices strictly in front of it.
func hasSeparatingPlane(a, b *Brush) bool {
	for _, f := range a.faces {
		separates := true
		for _, v := range b.vertices {
			if f.plane.DistanceTo(v) < geom.DistEpsilon {
				separates = false
				break
			}
		}
		if separates {
			return true
		}
	}
	return false
}

// FindFaceByMaterial returns the first face carrying the given material
// name, or nil.
func (b *Brush) FindFaceByMaterial(name string) *Face {
	for _, f := range b.faces {
		if f.Material == name {
			return f
		}
	}
	return nil
}

// FindFaceByNormal returns the face whose boundary plane normal best
// matches the given direction within epsilon, or nil.
func (b *Brush) FindFaceByNormal(normal v3.Vec) *Face {
	n := normal.Normalize()
	for _, f := range b.faces {
		if f.plane.Normal.Equals(n, geom.DistEpsilon) {
			return f
		}
	}
	return nil
}

// FindFaceByPlane returns the face whose boundary plane equals the
// given plane within epsilon, or nil.
func (b *Brush) FindFaceByPlane(p geom.Plane) *Face {
	for _, f := range b.faces {
		if f.plane.Equals(p, geom.DistEpsilon) {
			return f
		}
	}
	return nil
}

// FindFaceByVertices returns the face realizing the given vertex loop
// within epsilon, or nil.
func (b *Brush) FindFaceByVertices(loop []v3.Vec, epsilon float64) *Face {
	for _, f := range b.faces {
		if f.HasVertices(loop, epsilon) {
			return f
		}
	}
	return nil
}

// IntersectRay returns the first face the ray enters and the hit
// distance. The brush's bounding box is tested first.
func (b *Brush) IntersectRay(r geom.Ray) (*Face, float64, bool) {
	if !r.IntersectsBox(b.bounds) {
		return nil, 0, false
	}
	for _, f := range b.faces {
		if t, ok := f.IntersectRay(r); ok {
			return f, t, true
		}
	}
	return nil, 0, false
}

// Volume returns the enclosed volume, computed over the face windings
// with the divergence theorem.
func (b *Brush) Volume() float64 {
	var sum float64
	for _, f := range b.faces {
		sum += f.plane.Dist * f.winding.area()
	}
	return sum / 3
}

// SetFaces replaces the whole face set and rebuilds. On failure the
// brush is unchanged.
func (b *Brush) SetFaces(worldBounds sdf.Box3, faces []*Face) error {
	candidate := &Brush{faces: faces}
	if err := candidate.rebuild(worldBounds); err != nil {
		return fmt.Errorf("set faces: %w", err)
	}
	*b = *candidate
	return nil
}

// AddFace clips the brush by one more half-space and rebuilds. On
// failure (the new half-space empties the brush) the brush is
// unchanged.
func (b *Brush) AddFace(worldBounds sdf.Box3, f *Face) error {
	candidate := b.Clone()
	candidate.faces = append(candidate.faces, f)
	if err := candidate.rebuild(worldBounds); err != nil {
		return fmt.Errorf("add face: %w", err)
	}
	*b = *candidate
	return nil
}

// RemoveFace removes the face with the given identity and rebuilds.
// Removing a face usually opens the polyhedron, in which case the brush
// is unchanged and an error is returned.
func (b *Brush) RemoveFace(worldBounds sdf.Box3, target *Face) error {
	candidate := &Brush{}
	found := false
	for _, f := range b.faces {
		if f == target {
			found = true
			continue
		}
		candidate.faces = append(candidate.faces, f.Clone())
	}
	if !found {
		return fmt.Errorf("remove face: face not part of this brush")
	}
	if err := candidate.rebuild(worldBounds); err != nil {
		return fmt.Errorf("remove face: %w", err)
	}
	*b = *candidate
	return nil
}
