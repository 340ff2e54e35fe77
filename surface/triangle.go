package surface

import (
	"math"

	"github.com/soypat/meshsdf/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Feature identifies the part of a triangle a closest point lies on.
type Feature int

const (
	FeatureV0 Feature = iota
	FeatureV1
	FeatureV2
	// FeatureE0 is the edge from vertex 0 to vertex 1.
	FeatureE0
	// FeatureE1 is the edge from vertex 1 to vertex 2.
	FeatureE1
	// FeatureE2 is the edge from vertex 2 to vertex 0.
	FeatureE2
	FeatureFace
)

// featureTol is the parametric slack used to snap a closest point onto an
// edge or vertex.
const featureTol = 1e-12

func (f Feature) String() string {
	switch f {
	case FeatureV0, FeatureV1, FeatureV2:
		return "vertex"
	case FeatureE0, FeatureE1, FeatureE2:
		return "edge"
	case FeatureFace:
		return "face"
	}
	return "unknown"
}

// closestOnTriangle returns the point of the solid triangle t closest to p
// and the triangle feature it lies on.
//
// Based on Geometric Tools' algorithm for the distance between a point and a
// solid triangle, distributed under the Boost Software License.
func closestOnTriangle(p r3.Vec, t [3]r3.Vec) (r3.Vec, Feature) {
	diff := r3.Sub(p, t[0])
	edge0 := r3.Sub(t[1], t[0])
	edge1 := r3.Sub(t[2], t[0])

	a00 := r3.Dot(edge0, edge0)
	a01 := r3.Dot(edge0, edge1)
	a11 := r3.Dot(edge1, edge1)
	b0 := -r3.Dot(diff, edge0)
	b1 := -r3.Dot(diff, edge1)

	f00 := b0
	f10 := b0 + a00
	f01 := b0 + a01

	var p0, p1, st [2]float64
	var dt1, h0, h1 float64
	switch {
	case f00 >= 0 && f01 > 0:
		st = minEdge02(a11, b1)
	case f00 >= 0:
		p0 = [2]float64{0, f00 / (f00 - f01)}
		p1[0] = f01 / (f01 - f10)
		p1[1] = 1 - p1[0]
		dt1 = p1[1] - p0[1]
		h0 = dt1 * (a11*p0[1] + b1)
		if h0 >= 0 {
			st = minEdge02(a11, b1)
		} else if h1 = dt1 * (a01*p1[0] + a11*p1[1] + b1); h1 <= 0 {
			st = minEdge12(a01, a11, b1, f10, f01)
		} else {
			st = minInterior(p0, h0, p1, h1)
		}
	case f01 <= 0 && f10 <= 0:
		st = minEdge12(a01, a11, b1, f10, f01)
	case f01 <= 0:
		p0 = [2]float64{f00 / (f00 - f10), 0}
		p1[0] = f01 / (f01 - f10)
		p1[1] = 1 - p1[0]
		h0 = p1[1] * (a01*p0[0] + b1)
		if h0 >= 0 {
			st = p0
		} else if h1 = p1[1] * (a01*p1[0] + a11*p1[1] + b1); h1 <= 0 {
			st = minEdge12(a01, a11, b1, f10, f01)
		} else {
			st = minInterior(p0, h0, p1, h1)
		}
	case f10 <= 0:
		p0 = [2]float64{0, f00 / (f00 - f01)}
		p1[0] = f01 / (f01 - f10)
		p1[1] = 1 - p1[0]
		dt1 = p1[1] - p0[1]
		h0 = dt1 * (a11*p0[1] + b1)
		if h0 >= 0 {
			st = minEdge02(a11, b1)
		} else if h1 = dt1 * (a01*p1[0] + a11*p1[1] + b1); h1 <= 0 {
			st = minEdge12(a01, a11, b1, f10, f01)
		} else {
			st = minInterior(p0, h0, p1, h1)
		}
	default:
		p0 = [2]float64{f00 / (f00 - f10), 0}
		p1 = [2]float64{0, f00 / (f00 - f01)}
		h0 = p1[1] * (a01*p0[0] + b1)
		if h0 >= 0 {
			st = p0
		} else if h1 = p1[1] * (a11*p1[1] + b1); h1 <= 0 {
			st = minEdge02(a11, b1)
		} else {
			st = minInterior(p0, h0, p1, h1)
		}
	}
	closest := r3.Add(t[0], r3.Add(r3.Scale(st[0], edge0), r3.Scale(st[1], edge1)))
	if !d3.IsFinite(closest) {
		// Zero area triangles divide by zero above.
		return closestOnEdges(p, t)
	}
	return closest, featureOf(st[0], st[1])
}

func featureOf(s, t float64) Feature {
	switch {
	case s <= featureTol && t <= featureTol:
		return FeatureV0
	case s >= 1-featureTol && t <= featureTol:
		return FeatureV1
	case s <= featureTol && t >= 1-featureTol:
		return FeatureV2
	case t <= featureTol:
		return FeatureE0
	case s <= featureTol:
		return FeatureE2
	case s+t >= 1-featureTol:
		return FeatureE1
	}
	return FeatureFace
}

func minEdge02(a11, b1 float64) (p [2]float64) {
	switch {
	case b1 >= 0:
		p[1] = 0
	case a11+b1 <= 0:
		p[1] = 1
	default:
		p[1] = -b1 / a11
	}
	return p
}

func minEdge12(a01, a11, b1, f10, f01 float64) (p [2]float64) {
	h0 := a01 + b1 - f10
	if h0 >= 0 {
		p[1] = 0
	} else {
		h1 := a11 + b1 - f01
		if h1 <= 0 {
			p[1] = 1
		} else {
			p[1] = h0 / (h0 - h1)
		}
	}
	p[0] = 1 - p[1]
	return p
}

func minInterior(p0 [2]float64, h0 float64, p1 [2]float64, h1 float64) (p [2]float64) {
	z := h0 / (h0 - h1)
	omz := 1 - z
	p[0] = omz*p0[0] + z*p1[0]
	p[1] = omz*p0[1] + z*p1[1]
	return p
}

// closestOnEdges handles degenerate triangles by testing the three edges as
// segments.
func closestOnEdges(p r3.Vec, t [3]r3.Vec) (closest r3.Vec, feat Feature) {
	best := math.Inf(1)
	for j := 0; j < 3; j++ {
		a, b := t[j], t[(j+1)%3]
		q, u := closestOnSegment(p, a, b)
		if d2 := r3.Norm2(r3.Sub(p, q)); d2 < best {
			best = d2
			closest = q
			switch {
			case u <= featureTol:
				feat = Feature(j)
			case u >= 1-featureTol:
				feat = Feature((j + 1) % 3)
			default:
				feat = FeatureE0 + Feature(j)
			}
		}
	}
	return closest, feat
}

func closestOnSegment(p, a, b r3.Vec) (r3.Vec, float64) {
	ab := r3.Sub(b, a)
	l2 := r3.Norm2(ab)
	if l2 == 0 {
		return a, 0
	}
	u := math.Max(0, math.Min(1, r3.Dot(r3.Sub(p, a), ab)/l2))
	return r3.Add(a, r3.Scale(u, ab)), u
}

// solidAngle returns the signed solid angle subtended by triangle t at p
// using the Van Oosterom-Strackee formula. The angle is positive when p lies
// on the side opposite to the triangle's right-handed normal.
func solidAngle(p r3.Vec, t [3]r3.Vec) float64 {
	a := r3.Sub(t[0], p)
	b := r3.Sub(t[1], p)
	c := r3.Sub(t[2], p)
	la, lb, lc := r3.Norm(a), r3.Norm(b), r3.Norm(c)
	num := r3.Dot(a, r3.Cross(b, c))
	den := la*lb*lc + r3.Dot(a, b)*lc + r3.Dot(b, c)*la + r3.Dot(c, a)*lb
	return 2 * math.Atan2(num, den)
}

func centroid(t [3]r3.Vec) r3.Vec {
	return r3.Scale(1./3., r3.Add(r3.Add(t[0], t[1]), t[2]))
}

// unit returns v scaled to unit length or the zero vector when v has zero length.
func unit(v r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n == 0 || math.IsNaN(n) {
		return r3.Vec{}
	}
	return r3.Scale(1/n, v)
}
