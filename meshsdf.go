// Package meshsdf converts triangle meshes into dense signed distance field
// volumes quantized to one byte per voxel.
//
// Distances are negative inside the mesh and positive outside. The sign is
// decided by a chain of Strategy implementations tried in order: when one
// fails its capability probe or fails during evaluation the next one computes
// the whole volume from scratch.
package meshsdf

import (
	"math"
	"runtime"

	"github.com/soypat/meshsdf/mesh"
	"github.com/soypat/meshsdf/surface"
	"gonum.org/v1/gonum/spatial/r3"
)

// Strategy names accepted by NewStrategy.
const (
	StrategyWinding = "winding"
	StrategyNormal  = "normal"
	StrategyRaycast = "raycast"
)

// DefaultSurfaceTol is the distance under which a grid point is considered
// to lie on the mesh surface. Such points are classified outside.
const DefaultSurfaceTol = 1e-9

// Strategy computes signed distances to the mesh surface.
type Strategy interface {
	// Name identifies the strategy in logs and errors.
	Name() string
	// Probe reports whether the strategy is able to run at all. It is
	// called once before any evaluation.
	Probe() error
	// Evaluate writes the signed distance of pos[i] to dist[i]. It is
	// called concurrently on disjoint sub-slices.
	Evaluate(pos []r3.Vec, dist []float32) error
}

// Config holds the evaluator parameters.
type Config struct {
	// Strategies lists strategy names in the order they are attempted.
	Strategies []string
	// Surface selects how unsigned distances are measured.
	Surface surface.Method
	Scan    surface.ScanConfig
	// Workers is the number of goroutines used to evaluate points.
	// Zero or negative means one per CPU.
	Workers int
	// Slab is the number of X planes evaluated and written at a time.
	// Zero evaluates the whole volume at once.
	Slab       int
	SurfaceTol float64
	// Beta is the far field ratio of the winding number approximation.
	Beta float64
}

// DefaultConfig returns the winding number strategy with normal sign fallback
// over scan sampled distances.
func DefaultConfig() Config {
	return Config{
		Strategies: []string{StrategyWinding, StrategyNormal},
		Surface:    surface.MethodScan,
		Scan:       surface.DefaultScanConfig(),
		Workers:    runtime.NumCPU(),
		SurfaceTol: DefaultSurfaceTol,
		Beta:       surface.DefaultBeta,
	}
}

// Geometry bundles the acceleration structures shared by all strategies.
type Geometry struct {
	BIH *surface.BIH
	// Surface measures unsigned distances. It is either BIH itself or a
	// scanned point cloud.
	Surface    surface.Sampler
	SurfaceTol float64
	exact      bool
}

// NewGeometry builds the closest point hierarchy of a normalized mesh and the
// surface sampler selected by method.
func NewGeometry(m *mesh.Mesh, method surface.Method, scan surface.ScanConfig, tol float64) (*Geometry, error) {
	b := surface.NewBIH(m)
	s, err := surface.NewSampler(method, b, scan)
	if err != nil {
		return nil, err
	}
	return newGeometry(b, s, tol), nil
}

func newGeometry(b *surface.BIH, s surface.Sampler, tol float64) *Geometry {
	if tol < 0 {
		tol = 0
	}
	bih, exact := s.(*surface.BIH)
	return &Geometry{BIH: b, Surface: s, SurfaceTol: tol, exact: exact && bih == b}
}

// measure returns the nearest surface sample q to p, its normal n, the
// unsigned distance d and whether p lies on the exact mesh surface.
//
// With a scanned surface d is the distance to the nearest sample, never the
// exact one: volumes built from scans keep the sample cloud's distances. The
// exact query only decides onSurface. Scan distances bound the exact distance
// from above, so they cannot be used to skip it.
func (g *Geometry) measure(p r3.Vec) (q, n r3.Vec, d float64, onSurface bool) {
	q, n, d2 := g.Surface.Nearest(p)
	exact2 := d2
	if !g.exact {
		exact2 = g.BIH.Closest(p).Dist2
	}
	return q, n, math.Sqrt(d2), exact2 <= g.SurfaceTol*g.SurfaceTol
}
