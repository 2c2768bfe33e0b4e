// Package brush implements the convex-brush geometry kernel: brushes are
// stored as an ordered set of face half-spaces, with a derived
// vertex/edge/face boundary mesh kept consistent with that set. All
// mutating operations rebuild or patch the mesh and fail without
// corrupting it.
package brush

import (
	"github.com/davrell/carve/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// winding is the ordered vertex loop of one face, counter-clockwise when
// seen from the front of the face plane.
type winding []v3.Vec

// baseWinding lays out a large quad on the plane, sized so that it
// extends past any geometry within radius of the origin. It is the
// starting polygon that the other half-spaces clip down.
func baseWinding(p geom.Plane, radius float64) winding {
	u, v := p.Basis()
	c := p.Anchor()
	ur := u.MulScalar(radius)
	vr := v.MulScalar(radius)
	return winding{
		c.Sub(ur).Sub(vr),
		c.Add(ur).Sub(vr),
		c.Add(ur).Add(vr),
		c.Sub(ur).Add(vr),
	}
}

// clip cuts the winding against a half-space, keeping the part behind
// the plane. Returns nil when fewer than three points remain.
func (w winding) clip(p geom.Plane) winding {
	if len(w) == 0 {
		return nil
	}
	var out winding
	for i, cur := range w {
		next := w[(i+1)%len(w)]
		dc := p.DistanceTo(cur)
		dn := p.DistanceTo(next)
		if dc <= geom.DistEpsilon {
			out = append(out, cur)
		}
		// Edge crosses the plane: insert the intersection point.
		if (dc > geom.DistEpsilon && dn < -geom.DistEpsilon) ||
			(dc < -geom.DistEpsilon && dn > geom.DistEpsilon) {
			t := dc / (dc - dn)
			out = append(out, cur.Add(next.Sub(cur).MulScalar(t)))
		}
	}
	if len(out) < 3 {
		return nil
	}
	return out
}

// area returns the polygon area. The winding is planar, so the projected
// cross-product sum along the normal gives the exact value.
func (w winding) area() float64 {
	if len(w) < 3 {
		return 0
	}
	var sum v3.Vec
	for i := range w {
		sum = sum.Add(w[i].Cross(w[(i+1)%len(w)]))
	}
	return sum.Length() / 2
}

// center returns the arithmetic mean of the winding points.
func (w winding) center() v3.Vec {
	return geom.Centroid(w)
}

// degenerate reports whether the winding has collapsed below a usable
// polygon.
func (w winding) degenerate() bool {
	return len(w) < 3 || w.area() < geom.PointEpsilon
}

// containsPoint reports whether a point on the winding's carrier plane
// lies inside the polygon. faceNormal orients the edge tests.
func (w winding) containsPoint(p v3.Vec, faceNormal v3.Vec) bool {
	for i, cur := range w {
		next := w[(i+1)%len(w)]
		edge := next.Sub(cur)
		if edge.Cross(p.Sub(cur)).Dot(faceNormal) < -geom.DistEpsilon {
			return false
		}
	}
	return true
}

// equalLoop reports whether the winding consists of the same vertex loop
// as other, up to rotation and direction, within epsilon.
func (w winding) equalLoop(other []v3.Vec, epsilon float64) bool {
	if len(w) != len(other) {
		return false
	}
	n := len(w)
	for offset := 0; offset < n; offset++ {
		forward, backward := true, true
		for i := 0; i < n; i++ {
			if w[i].Sub(other[(offset+i)%n]).Length() > epsilon {
				forward = false
			}
			if w[i].Sub(other[(offset-i+2*n)%n]).Length() > epsilon {
				backward = false
			}
			if !forward && !backward {
				break
			}
		}
		if forward || backward {
			return true
		}
	}
	return false
}
