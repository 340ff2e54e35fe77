package meshsdf

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/unixpickle/model3d/model3d"
	"gonum.org/v1/gonum/spatial/r3"
)

// NewStrategy returns the strategy registered under name.
func NewStrategy(name string, g *Geometry, cfg Config) (Strategy, error) {
	switch name {
	case StrategyWinding:
		return &WindingStrategy{Geometry: g, Beta: cfg.Beta}, nil
	case StrategyNormal:
		return &NormalStrategy{Geometry: g}, nil
	case StrategyRaycast:
		return &RaycastStrategy{Geometry: g}, nil
	}
	return nil, fmt.Errorf("unknown sign strategy %q", name)
}

// WindingStrategy classifies points with winding number above 0.5 as inside.
// The generalized winding number is a global measure, so small holes and
// self intersections in the mesh only perturb the sign locally.
type WindingStrategy struct {
	*Geometry
	// Beta is the far field ratio, see surface.BIH.WindingNumber.
	Beta float64
}

func (s *WindingStrategy) Name() string { return StrategyWinding }

func (s *WindingStrategy) Probe() error {
	if s.BIH.Area() <= 0 || math.IsNaN(s.BIH.Area()) {
		return errors.New("mesh has no surface area")
	}
	bb := s.BIH.Bounds()
	outside := r3.Add(bb.Max, r3.Sub(bb.Max, bb.Min))
	w := s.BIH.WindingNumber(outside, s.Beta)
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return fmt.Errorf("winding number not finite: %g", w)
	}
	return nil
}

func (s *WindingStrategy) Evaluate(pos []r3.Vec, dist []float32) error {
	for i, p := range pos {
		_, _, d, onSurface := s.measure(p)
		w := s.BIH.WindingNumber(p, s.Beta)
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("winding number at %v not finite", p)
		}
		if w > 0.5 && !onSurface {
			d = -d
		}
		dist[i] = float32(d)
	}
	return nil
}

// NormalStrategy signs distances with the outward normal at the nearest
// surface sample. It requires a consistently oriented mesh.
type NormalStrategy struct {
	*Geometry
}

func (s *NormalStrategy) Name() string { return StrategyNormal }

func (s *NormalStrategy) Probe() error {
	if s.Surface == nil {
		return errors.New("no surface sampler")
	}
	return nil
}

func (s *NormalStrategy) Evaluate(pos []r3.Vec, dist []float32) error {
	for i, p := range pos {
		q, n, d, onSurface := s.measure(p)
		if r3.Dot(n, r3.Sub(p, q)) < 0 && !onSurface {
			d = -d
		}
		dist[i] = float32(d)
	}
	return nil
}

// rayDirections are fixed irrational directions so rays rarely graze edges.
var rayDirections = []model3d.Coord3D{
	{X: -0.40475415, Y: 0.86174632, Z: -0.30588783},
	{X: -0.81025101, Y: 0.38452447, Z: -0.44230559},
	{X: -0.09226702, Y: -0.74875317, Z: -0.65639584},
	{X: -0.99668947, Y: 0.08087344, Z: 0.00834144},
	{X: 0.67074042, Y: -0.60098173, Z: 0.43465877},
}

// RaycastStrategy classifies a point as inside when most rays cast from it
// cross the surface an odd number of times. Near duplicate crossings are
// merged so that doubled triangles count as a single boundary.
type RaycastStrategy struct {
	*Geometry
	collider model3d.Collider
	epsilon  float64
}

func (s *RaycastStrategy) Name() string { return StrategyRaycast }

// Probe builds the ray collider.
func (s *RaycastStrategy) Probe() error {
	m := s.BIH.Mesh()
	if m == nil || m.Len() == 0 {
		return errors.New("mesh has no faces")
	}
	tris := make([]*model3d.Triangle, m.Len())
	for i := range tris {
		t := m.Triangle(i)
		tris[i] = &model3d.Triangle{toCoord(t[0]), toCoord(t[1]), toCoord(t[2])}
	}
	s.collider = model3d.MeshToCollider(model3d.NewMeshTriangles(tris))
	s.epsilon = s.collider.Max().Sub(s.collider.Min()).Norm() * 1e-8
	return nil
}

func (s *RaycastStrategy) Evaluate(pos []r3.Vec, dist []float32) error {
	if s.collider == nil {
		return errors.New("raycast strategy not probed")
	}
	for i, p := range pos {
		_, _, d, onSurface := s.measure(p)
		if !onSurface && s.contains(toCoord(p)) {
			d = -d
		}
		dist[i] = float32(d)
	}
	return nil
}

func (s *RaycastStrategy) contains(c model3d.Coord3D) bool {
	if !model3d.InBounds(s.collider, c) {
		return false
	}
	var odd int
	for _, dir := range rayDirections {
		if s.crossings(c, dir)%2 == 1 {
			odd++
		}
	}
	return 2*odd > len(rayDirections)
}

func (s *RaycastStrategy) crossings(c, dir model3d.Coord3D) int {
	var scales []float64
	s.collider.RayCollisions(&model3d.Ray{Origin: c, Direction: dir}, func(rc model3d.RayCollision) {
		scales = append(scales, rc.Scale)
	})
	sort.Float64s(scales)
	var last float64
	var unique int
	for _, sc := range scales {
		if sc-last > s.epsilon {
			unique++
		}
		last = sc
	}
	return unique
}

func toCoord(v r3.Vec) model3d.Coord3D { return model3d.Coord3D{X: v.X, Y: v.Y, Z: v.Z} }
