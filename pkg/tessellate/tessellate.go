// Package tessellate turns brushes into triangle meshes for rendering.
// Each face winding is fan-triangulated; vertices are not shared across
// faces so every face keeps its own flat normal and texture coordinates.
package tessellate

import (
	"github.com/davrell/carve/pkg/brush"
)

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, uvs has 2 floats per vertex,
// indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	UVs      []float32 `json:"uvs"`      // [u0,v0, u1,v1, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	Name     string    `json:"name"`     // which brush this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Append merges other into m, offsetting its indices. The name of m is
// kept.
func (m *Mesh) Append(other *Mesh) {
	if other == nil || other.IsEmpty() {
		return
	}
	base := uint32(m.VertexCount())
	m.Vertices = append(m.Vertices, other.Vertices...)
	m.Normals = append(m.Normals, other.Normals...)
	m.UVs = append(m.UVs, other.UVs...)
	for _, idx := range other.Indices {
		m.Indices = append(m.Indices, base+idx)
	}
}

// Brush tessellates every face of b into the returned mesh. A nil or
// incompletely built brush yields an empty mesh.
func Brush(b *brush.Brush) *Mesh {
	m := &Mesh{}
	if b == nil {
		return m
	}
	for _, f := range b.Faces() {
		appendFace(m, f)
	}
	return m
}

// Face tessellates a single face into a fresh mesh.
func Face(f *brush.Face) *Mesh {
	m := &Mesh{}
	appendFace(m, f)
	return m
}

// appendFace fan-triangulates a face winding around its first vertex.
// Windings are counter-clockwise seen from outside, so the fan keeps
// that orientation for every triangle.
func appendFace(m *Mesh, f *brush.Face) {
	verts := f.Vertices()
	if len(verts) < 3 {
		return
	}

	normal := f.Plane().Normal
	base := uint32(m.VertexCount())
	for _, p := range verts {
		m.Vertices = append(m.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
		m.Normals = append(m.Normals, float32(normal.X), float32(normal.Y), float32(normal.Z))
		u, v := f.TexCoords(p)
		m.UVs = append(m.UVs, float32(u), float32(v))
	}
	for i := 1; i < len(verts)-1; i++ {
		m.Indices = append(m.Indices, base, base+uint32(i), base+uint32(i+1))
	}
}
