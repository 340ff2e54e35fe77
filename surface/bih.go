package surface

import (
	"math"
	"sort"

	"github.com/soypat/meshsdf/internal/d3"
	"github.com/soypat/meshsdf/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// leafSize is the maximum number of triangles stored in a leaf node.
const leafSize = 4

// Closest describes the result of a closest point query against a mesh.
type Closest struct {
	// Point is the closest point on the surface.
	Point r3.Vec
	// Face is the index of the triangle containing Point or -1 for an
	// empty hierarchy.
	Face    int
	Feature Feature
	Dist2   float64
}

// BIH is a bounding interval hierarchy over the triangles of a mesh. It
// answers exact closest point queries with angle weighted pseudo-normals and
// stores per node dipole aggregates for fast winding number evaluation.
//
// A BIH is immutable after construction and safe for concurrent use.
type BIH struct {
	m     *mesh.Mesh
	nodes []bihNode
	// faces holds triangle indices in tree order. Each node owns a
	// contiguous range of it.
	faces []int

	faceN []r3.Vec
	edgeN map[[2]int]r3.Vec // keyed with lower vertex index first.
	vertN []r3.Vec
	area  float64
}

type bihNode struct {
	bb d3.Box
	// child is the index of the left child. Right child is child+1.
	// Leaves have child == 0 since the root is never a child.
	child      int
	start, end int

	// Dipole aggregates for far field winding numbers.
	center r3.Vec // area weighted centroid
	areaN  r3.Vec // sum of area weighted normals
	radius float64
}

func (n *bihNode) isLeaf() bool { return n.child == 0 }

// NewBIH builds the hierarchy over m. m must not be modified afterwards.
func NewBIH(m *mesh.Mesh) *BIH {
	n := m.Len()
	b := &BIH{
		m:     m,
		faces: make([]int, n),
		nodes: make([]bihNode, 1, 2*(n/leafSize)+1),
	}
	centroids := make([]r3.Vec, n)
	for i := range b.faces {
		b.faces[i] = i
		centroids[i] = centroid(m.Triangle(i))
	}
	if n > 0 {
		b.subdivide(0, 0, n, centroids)
	}
	b.pseudoNormals()
	return b
}

func (b *BIH) subdivide(idx, start, end int, centroids []r3.Vec) {
	faces := b.faces[start:end]
	bb := d3.EmptyBox()
	var areaN, weighted r3.Vec
	var area float64
	for _, f := range faces {
		tri := b.m.Triangle(f)
		for _, v := range tri {
			bb = bb.Include(v)
		}
		n := r3.Scale(0.5, r3.Cross(r3.Sub(tri[1], tri[0]), r3.Sub(tri[2], tri[0])))
		a := r3.Norm(n)
		areaN = r3.Add(areaN, n)
		weighted = r3.Add(weighted, r3.Scale(a, centroids[f]))
		area += a
	}
	center := bb.Center()
	if area > 0 {
		center = r3.Scale(1/area, weighted)
	}
	var radius float64
	for _, f := range faces {
		for _, v := range b.m.Triangle(f) {
			radius = math.Max(radius, r3.Norm(r3.Sub(v, center)))
		}
	}
	nd := bihNode{bb: bb, start: start, end: end, center: center, areaN: areaN, radius: radius}
	if idx == 0 {
		b.area = area
	}
	if len(faces) <= leafSize {
		b.nodes[idx] = nd
		return
	}
	// Classical heuristic: split at the centroid median along the longest axis.
	axis := bb.LongestAxis()
	sort.Slice(faces, func(i, j int) bool {
		return d3.Comp(centroids[faces[i]], axis) < d3.Comp(centroids[faces[j]], axis)
	})
	half := len(faces) / 2
	nd.child = len(b.nodes)
	b.nodes = append(b.nodes, bihNode{}, bihNode{})
	b.nodes[idx] = nd
	b.subdivide(nd.child, start, start+half, centroids)
	b.subdivide(nd.child+1, start+half, end, centroids)
}

// pseudoNormals computes angle weighted vertex normals, edge normals as the
// sum of adjacent face normals and unit face normals.
func (b *BIH) pseudoNormals() {
	m := b.m
	b.faceN = make([]r3.Vec, m.Len())
	b.vertN = make([]r3.Vec, len(m.Vertices))
	b.edgeN = make(map[[2]int]r3.Vec, 3*m.Len()/2)
	for i, face := range m.Faces {
		tri := m.Triangle(i)
		norm := unit(r3.Cross(r3.Sub(tri[1], tri[0]), r3.Sub(tri[2], tri[0])))
		b.faceN[i] = norm
		for j := range face {
			s1, s2 := r3.Sub(tri[(j+1)%3], tri[j]), r3.Sub(tri[(j+2)%3], tri[j])
			alpha := math.Atan2(r3.Norm(r3.Cross(s1, s2)), r3.Dot(s1, s2))
			if !math.IsNaN(alpha) {
				b.vertN[face[j]] = r3.Add(b.vertN[face[j]], r3.Scale(alpha, norm))
			}
			edge := edgeKey(face[j], face[(j+1)%3])
			b.edgeN[edge] = r3.Add(b.edgeN[edge], norm)
		}
	}
}

func edgeKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// Mesh returns the mesh the hierarchy was built over.
func (b *BIH) Mesh() *mesh.Mesh { return b.m }

// Area returns the total surface area of the mesh.
func (b *BIH) Area() float64 { return b.area }

// Bounds returns the bounding box of the mesh.
func (b *BIH) Bounds() r3.Box {
	if len(b.faces) == 0 {
		return r3.Box{}
	}
	return r3.Box(b.nodes[0].bb)
}

// FaceNormal returns the unit normal of triangle i.
func (b *BIH) FaceNormal(i int) r3.Vec { return b.faceN[i] }

// Closest finds the point on the mesh surface closest to p.
func (b *BIH) Closest(p r3.Vec) Closest {
	best := Closest{Face: -1, Dist2: math.Inf(1)}
	if len(b.faces) > 0 {
		b.closest(0, p, &best)
	}
	return best
}

func (b *BIH) closest(idx int, p r3.Vec, best *Closest) {
	nd := &b.nodes[idx]
	if nd.isLeaf() {
		for _, f := range b.faces[nd.start:nd.end] {
			q, feat := closestOnTriangle(p, b.m.Triangle(f))
			if d2 := r3.Norm2(r3.Sub(p, q)); d2 < best.Dist2 {
				*best = Closest{Point: q, Face: f, Feature: feat, Dist2: d2}
			}
		}
		return
	}
	// Visit the child whose box is closer first.
	l, r := nd.child, nd.child+1
	dl, dr := b.nodes[l].bb.MinDist2(p), b.nodes[r].bb.MinDist2(p)
	if dr < dl {
		l, r = r, l
		dl, dr = dr, dl
	}
	if dl < best.Dist2 {
		b.closest(l, p, best)
	}
	if dr < best.Dist2 {
		b.closest(r, p, best)
	}
}

// PseudoNormal returns the outward pseudo-normal of the feature c lies on.
// The returned vector is not necessarily of unit length.
func (b *BIH) PseudoNormal(c Closest) r3.Vec {
	face := b.m.Faces[c.Face]
	switch c.Feature {
	case FeatureV0, FeatureV1, FeatureV2:
		return b.vertN[face[c.Feature]]
	case FeatureE0, FeatureE1, FeatureE2:
		j := int(c.Feature - FeatureE0)
		return b.edgeN[edgeKey(face[j], face[(j+1)%3])]
	}
	return b.FaceNormal(c.Face)
}

// SignedDistance returns the exact distance from p to the surface, negative
// when the pseudo-normal at the closest feature points away from p.
func (b *BIH) SignedDistance(p r3.Vec) float64 {
	c := b.Closest(p)
	if c.Face < 0 {
		return math.Inf(1)
	}
	d := math.Sqrt(c.Dist2)
	if r3.Dot(b.PseudoNormal(c), r3.Sub(p, c.Point)) < 0 {
		return -d
	}
	return d
}

// Nearest implements Sampler using the exact closest point and its
// pseudo-normal.
func (b *BIH) Nearest(p r3.Vec) (q, n r3.Vec, dist2 float64) {
	c := b.Closest(p)
	if c.Face < 0 {
		return r3.Vec{}, r3.Vec{}, math.Inf(1)
	}
	return c.Point, b.PseudoNormal(c), c.Dist2
}
