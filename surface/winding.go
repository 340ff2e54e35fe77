package surface

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultBeta is the far field acceptance ratio used by WindingNumber when
// beta is not positive. A node is approximated as a single dipole when the
// query point lies farther than beta times the node radius from its center.
const DefaultBeta = 2.0

// WindingNumber returns the generalized winding number of the mesh at p:
// the sum of the signed solid angles subtended by every triangle divided by
// 4π. For a closed outward oriented mesh it is 1 inside and 0 outside and
// degrades gracefully for meshes with holes or self intersections.
//
// Distant subtrees are approximated by their area weighted normal dipole
// which keeps evaluation logarithmic in the number of triangles.
// Use beta = math.Inf(1) to force exact summation.
func (b *BIH) WindingNumber(p r3.Vec, beta float64) float64 {
	if len(b.faces) == 0 {
		return 0
	}
	if beta <= 0 {
		beta = DefaultBeta
	}
	return b.winding(0, p, beta) / (4 * math.Pi)
}

func (b *BIH) winding(idx int, p r3.Vec, beta float64) float64 {
	nd := &b.nodes[idx]
	if !nd.isLeaf() && !math.IsInf(beta, 1) {
		d := r3.Sub(nd.center, p)
		dist := r3.Norm(d)
		if dist > beta*nd.radius {
			return r3.Dot(d, nd.areaN) / (dist * dist * dist)
		}
	}
	if nd.isLeaf() {
		var omega float64
		for _, f := range b.faces[nd.start:nd.end] {
			omega += solidAngle(p, b.m.Triangle(f))
		}
		return omega
	}
	return b.winding(nd.child, p, beta) + b.winding(nd.child+1, p, beta)
}
