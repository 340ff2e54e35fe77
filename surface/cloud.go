package surface

import (
	"errors"
	"math"

	"github.com/soypat/meshsdf/internal/d3"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// Sample is an oriented surface point.
type Sample struct {
	P r3.Vec // Position
	N r3.Vec // Outward normal
}

// Compare implements kdtree.Comparable.
func (s Sample) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(Sample)
	return d3.Comp(s.P, int(d)) - d3.Comp(q.P, int(d))
}

// Dims implements kdtree.Comparable.
func (s Sample) Dims() int { return 3 }

// Distance implements kdtree.Comparable and returns squared euclidean distance.
func (s Sample) Distance(c kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(s.P, c.(Sample).P))
}

// Cloud is an oriented point cloud indexed by a k-d tree for nearest
// neighbour queries. Cloud is safe for concurrent queries.
type Cloud struct {
	tree *kdtree.Tree
	len  int
}

// NewCloud builds a k-d tree over samples. The samples slice is reordered.
func NewCloud(samples []Sample) (*Cloud, error) {
	if len(samples) == 0 {
		return nil, errors.New("point cloud has no samples")
	}
	return &Cloud{tree: kdtree.New(sampleList(samples), true), len: len(samples)}, nil
}

// Len returns the number of samples in the cloud.
func (c *Cloud) Len() int { return c.len }

// Nearest implements Sampler.
func (c *Cloud) Nearest(p r3.Vec) (q, n r3.Vec, dist2 float64) {
	got, d2 := c.tree.Nearest(Sample{P: p})
	if got == nil {
		return r3.Vec{}, r3.Vec{}, math.Inf(1)
	}
	s := got.(Sample)
	return s.P, s.N, d2
}

type sampleList []Sample

// Index returns the ith element of the list of points.
func (l sampleList) Index(i int) kdtree.Comparable { return l[i] }

// Len returns the length of the list.
func (l sampleList) Len() int { return len(l) }

// Pivot partitions the list based on the dimension specified.
func (l sampleList) Pivot(d kdtree.Dim) int {
	p := samplePlane{dim: d, samples: l}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

// Slice returns a slice of the list using zero-based half
// open indexing equivalent to built-in slice indexing.
func (l sampleList) Slice(start, end int) kdtree.Interface { return l[start:end] }

// Bounds implements the kdtree.Bounder interface.
func (l sampleList) Bounds() *kdtree.Bounding {
	bb := d3.EmptyBox()
	for _, s := range l {
		bb = bb.Include(s.P)
	}
	return &kdtree.Bounding{Min: Sample{P: bb.Min}, Max: Sample{P: bb.Max}}
}

type samplePlane struct {
	dim     kdtree.Dim
	samples []Sample
}

func (p samplePlane) Less(i, j int) bool {
	return p.samples[i].Compare(p.samples[j], p.dim) < 0
}
func (p samplePlane) Swap(i, j int) {
	p.samples[i], p.samples[j] = p.samples[j], p.samples[i]
}
func (p samplePlane) Len() int {
	return len(p.samples)
}
func (p samplePlane) Slice(start, end int) kdtree.SortSlicer {
	p.samples = p.samples[start:end]
	return p
}
