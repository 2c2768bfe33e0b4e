package brush

import (
	"math"

	"github.com/davrell/carve/pkg/geom"
)

// normalTieEpsilon bounds how close two normal agreements must be before
// the matcher falls through to the displacement tie-break.
const normalTieEpsilon = 1e-6

// matchFaces carries material and alignment from the pre-edit faces onto
// the rebuilt brush. Each new face takes the old face with the best
// normal agreement; near-ties are broken by the smaller total vertex
// displacement, and exact ties by the lower old face index, which keeps
// the assignment deterministic.
func matchFaces(b *Brush, old []*Face, uvLock bool) {
	if len(old) == 0 {
		return
	}
	for _, nf := range b.faces {
		best := -1
		bestDot := math.Inf(-1)
		bestDisp := math.Inf(1)
		for i, of := range old {
			dot := nf.plane.Normal.Dot(of.plane.Normal)
			if best >= 0 && dot < bestDot-normalTieEpsilon {
				continue
			}
			disp := loopDisplacement(nf.winding, of.winding)
			if best < 0 || dot > bestDot+normalTieEpsilon ||
				disp < bestDisp-geom.PointEpsilon {
				best, bestDot, bestDisp = i, dot, disp
			}
		}
		match := old[best]
		nf.Material = match.Material
		nf.Align = match.Align
		if uvLock {
			nf.Align = nf.Align.lockTo(match.Align,
				match.winding.center(), match.plane.Normal,
				nf.winding.center(), nf.plane.Normal)
		}
	}
}

// loopDisplacement sums, over the new winding's points, the distance to
// the closest point of the old winding.
func loopDisplacement(newLoop, oldLoop winding) float64 {
	if len(oldLoop) == 0 {
		return math.Inf(1)
	}
	var total float64
	for _, p := range newLoop {
		closest := math.Inf(1)
		for _, q := range oldLoop {
			if d := p.Sub(q).Length(); d < closest {
				closest = d
			}
		}
		total += closest
	}
	return total
}
