package brush

import (
	"fmt"

	"github.com/davrell/carve/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Face is one bounding half-space of a brush. The boundary plane is kept
// in three-point form (the editor's canonical storage) with the derived
// Hesse form cached; the winding is the mesh polygon this face currently
// realizes, maintained by the brush rebuild. A face is owned by exactly
// one brush and its identity is its pointer.
type Face struct {
	points   [3]v3.Vec
	plane    geom.Plane
	winding  winding
	Material string
	Align    UVAlignment
}

// NewFace builds a face from three boundary plane points, ordered so the
// normal (b-a) x (c-a) points out of the solid.
func NewFace(a, b, c v3.Vec, material string) (*Face, error) {
	p, err := geom.PlaneFromPoints(a, b, c)
	if err != nil {
		return nil, fmt.Errorf("face from points %v %v %v: %w", a, b, c, err)
	}
	return &Face{
		points:   [3]v3.Vec{a, b, c},
		plane:    p,
		Material: material,
		Align:    DefaultAlignment(),
	}, nil
}

// NewFaceFromPlane builds a face on the given boundary plane,
// synthesizing the three-point form from the plane basis.
func NewFaceFromPlane(p geom.Plane, material string) *Face {
	u, v := p.Basis()
	a := p.Anchor()
	return &Face{
		points:   [3]v3.Vec{a, a.Add(u), a.Add(u).Add(v)},
		plane:    p,
		Material: material,
		Align:    DefaultAlignment(),
	}
}

// Clone returns a deep copy of the face.
func (f *Face) Clone() *Face {
	c := *f
	c.winding = append(winding(nil), f.winding...)
	return &c
}

// Plane returns the boundary plane, normal pointing out of the solid.
func (f *Face) Plane() geom.Plane {
	return f.plane
}

// PlanePoints returns the three points defining the boundary plane.
func (f *Face) PlanePoints() [3]v3.Vec {
	return f.points
}

// setPlanePoints replaces the three-point form and rederives the plane.
func (f *Face) setPlanePoints(a, b, c v3.Vec) error {
	p, err := geom.PlaneFromPoints(a, b, c)
	if err != nil {
		return err
	}
	f.points = [3]v3.Vec{a, b, c}
	f.plane = p
	return nil
}

// Vertices returns a copy of the face's current vertex loop.
func (f *Face) Vertices() []v3.Vec {
	return append([]v3.Vec(nil), f.winding...)
}

// VertexCount returns the number of vertices in the face's loop.
func (f *Face) VertexCount() int {
	return len(f.winding)
}

// Center returns the centroid of the face polygon.
func (f *Face) Center() v3.Vec {
	return f.winding.center()
}

// Area returns the face polygon area.
func (f *Face) Area() float64 {
	return f.winding.area()
}

// TexCoords returns the texture coordinates the face's alignment assigns
// to a world-space point.
func (f *Face) TexCoords(p v3.Vec) (float64, float64) {
	return f.Align.TexCoords(p, f.plane.Normal)
}

// HasVertices reports whether the face's loop consists of the given
// positions, up to rotation and winding direction.
func (f *Face) HasVertices(loop []v3.Vec, epsilon float64) bool {
	return f.winding.equalLoop(loop, epsilon)
}

// IntersectRay returns the distance at which the ray enters the face
// from its front side, or false when the ray misses or approaches from
// behind.
func (f *Face) IntersectRay(r geom.Ray) (float64, bool) {
	if r.Direction.Dot(f.plane.Normal) >= 0 {
		return 0, false
	}
	t, ok := r.IntersectPlane(f.plane)
	if !ok {
		return 0, false
	}
	if !f.winding.containsPoint(r.PointAt(t), f.plane.Normal) {
		return 0, false
	}
	return t, true
}

// fullySpecified reports whether the face's winding still spans its
// boundary plane, i.e. the plane is derivable from current vertex data.
func (f *Face) fullySpecified() bool {
	if len(f.winding) < 3 {
		return false
	}
	// Vertex merging may pull winding points slightly off the exact
	// plane, so allow a small multiple of the classification epsilon.
	for _, v := range f.winding {
		if d := f.plane.DistanceTo(v); d > 10*geom.DistEpsilon || d < -10*geom.DistEpsilon {
			return false
		}
	}
	return true
}
