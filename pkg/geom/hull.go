package geom

import (
	"errors"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrDegenerateHull is returned when a point set does not span a solid
// (fewer than four points, or all points coplanar).
var ErrDegenerateHull = errors.New("geom: point set does not span a solid")

// hullFace is a triangle of the working hull, indices into the point set.
type hullFace struct {
	a, b, c int
	plane   Plane
}

// ConvexHull computes the convex hull of the given points and returns
// its face planes with outward normals. Triangles that share a carrier
// plane are merged, so a cube's eight corners yield exactly six planes.
//
// The construction is the classic incremental one: seed a tetrahedron
// from extreme points, then add each remaining point by deleting the
// faces it can see and stitching new triangles along the horizon. Point
// counts are brush-sized, so the quadratic worst case is irrelevant.
func ConvexHull(points []v3.Vec) ([]Plane, error) {
	pts := dedupePoints(points)
	if len(pts) < 4 {
		return nil, ErrDegenerateHull
	}

	faces, interior, err := seedTetrahedron(pts)
	if err != nil {
		return nil, err
	}

	for i := range pts {
		faces = addHullPoint(faces, pts, i, interior)
	}

	return mergeFacePlanes(faces), nil
}

// dedupePoints removes points that coincide within PointEpsilon.
func dedupePoints(points []v3.Vec) []v3.Vec {
	var out []v3.Vec
	for _, p := range points {
		dup := false
		for _, q := range out {
			if NearEqualVec(p, q) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, p)
		}
	}
	return out
}

// seedTetrahedron picks four points spanning a solid and returns the
// four outward-oriented starting faces plus an interior reference point.
func seedTetrahedron(pts []v3.Vec) ([]hullFace, v3.Vec, error) {
	// Most distant pair among all points.
	i0, i1 := 0, 1
	best := -1.0
	for i := range pts {
		for j := i + 1; j < len(pts); j++ {
			if d := pts[i].Sub(pts[j]).Length(); d > best {
				best = d
				i0, i1 = i, j
			}
		}
	}
	if best < PointEpsilon {
		return nil, v3.Vec{}, ErrDegenerateHull
	}

	// Point farthest from the line i0-i1.
	dir := pts[i1].Sub(pts[i0]).Normalize()
	i2, best := -1, PointEpsilon
	for i := range pts {
		rel := pts[i].Sub(pts[i0])
		if d := rel.Sub(dir.MulScalar(rel.Dot(dir))).Length(); d > best {
			best = d
			i2 = i
		}
	}
	if i2 < 0 {
		return nil, v3.Vec{}, ErrDegenerateHull
	}

	base, err := PlaneFromPoints(pts[i0], pts[i1], pts[i2])
	if err != nil {
		return nil, v3.Vec{}, ErrDegenerateHull
	}

	// Point farthest from the base plane.
	i3, best := -1, DistEpsilon
	for i := range pts {
		if d := math.Abs(base.DistanceTo(pts[i])); d > best {
			best = d
			i3 = i
		}
	}
	if i3 < 0 {
		return nil, v3.Vec{}, ErrDegenerateHull
	}

	interior := Centroid([]v3.Vec{pts[i0], pts[i1], pts[i2], pts[i3]})
	tris := [][3]int{
		{i0, i1, i2},
		{i0, i1, i3},
		{i0, i2, i3},
		{i1, i2, i3},
	}
	faces := make([]hullFace, 0, 4)
	for _, t := range tris {
		f, err := makeHullFace(pts, t[0], t[1], t[2], interior)
		if err != nil {
			return nil, v3.Vec{}, ErrDegenerateHull
		}
		faces = append(faces, f)
	}
	return faces, interior, nil
}

// makeHullFace builds a triangle face oriented so that the interior
// reference point lies behind its plane.
func makeHullFace(pts []v3.Vec, a, b, c int, interior v3.Vec) (hullFace, error) {
	p, err := PlaneFromPoints(pts[a], pts[b], pts[c])
	if err != nil {
		return hullFace{}, err
	}
	if p.DistanceTo(interior) > 0 {
		p = p.Flipped()
		a, c = c, a
	}
	return hullFace{a: a, b: b, c: c, plane: p}, nil
}

// addHullPoint extends the hull with pts[idx]. Points inside or on the
// current hull leave it unchanged.
func addHullPoint(faces []hullFace, pts []v3.Vec, idx int, interior v3.Vec) []hullFace {
	p := pts[idx]

	var visible, hidden []hullFace
	for _, f := range faces {
		if f.plane.DistanceTo(p) > DistEpsilon {
			visible = append(visible, f)
		} else {
			hidden = append(hidden, f)
		}
	}
	if len(visible) == 0 {
		return faces
	}

	// Horizon edges occur in exactly one visible face.
	type edge struct{ a, b int }
	count := make(map[edge]int)
	norm := func(a, b int) edge {
		if a > b {
			a, b = b, a
		}
		return edge{a, b}
	}
	for _, f := range visible {
		count[norm(f.a, f.b)]++
		count[norm(f.b, f.c)]++
		count[norm(f.c, f.a)]++
	}

	out := hidden
	for e, n := range count {
		if n != 1 {
			continue
		}
		f, err := makeHullFace(pts, e.a, e.b, idx, interior)
		if err != nil {
			// Horizon edge collinear with the apex; the neighbouring
			// horizon edges produce the covering faces instead.
			continue
		}
		out = append(out, f)
	}
	return out
}

// mergeFacePlanes collapses triangles sharing a carrier plane into a
// single plane entry.
func mergeFacePlanes(faces []hullFace) []Plane {
	var planes []Plane
	for _, f := range faces {
		found := false
		for _, p := range planes {
			if p.Equals(f.plane, DistEpsilon*10) {
				found = true
				break
			}
		}
		if !found {
			planes = append(planes, f.plane)
		}
	}
	return planes
}
