package surface

import (
	"errors"
	"fmt"
	"math"

	"github.com/fogleman/fauxgl"
	"github.com/soypat/meshsdf/internal/par"
	"gonum.org/v1/gonum/spatial/r3"
)

// ScanConfig controls how the virtual depth camera samples the surface.
type ScanConfig struct {
	// Views is the number of camera positions, distributed on a
	// Fibonacci sphere around the origin.
	Views int
	// Resolution is the width and height in pixels of each depth image.
	Resolution int
	// BoundingRadius is the radius of the sphere assumed to enclose the
	// mesh. Cameras are placed at twice this distance.
	BoundingRadius float64
	// FOV is the vertical field of view in degrees.
	FOV float64
	// Workers bounds the goroutines used to project depth pixels onto the
	// mesh. Zero or negative means one per CPU.
	Workers int
}

// DefaultScanConfig returns the camera setup used for canonical meshes
// normalized to [-1, 1]^3.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		Views:          100,
		Resolution:     400,
		BoundingRadius: 1.5,
		FOV:            60,
	}
}

// Validate checks the configuration describes a usable camera setup.
func (cfg ScanConfig) Validate() error {
	switch {
	case cfg.Views < 1:
		return fmt.Errorf("scan needs at least one view, got %d", cfg.Views)
	case cfg.Resolution < 1:
		return fmt.Errorf("scan resolution must be positive, got %d", cfg.Resolution)
	case !(cfg.BoundingRadius > 0):
		return fmt.Errorf("scan bounding radius must be positive, got %g", cfg.BoundingRadius)
	case !(cfg.FOV > 0 && cfg.FOV < 180):
		return fmt.Errorf("scan field of view must be in (0, 180) degrees, got %g", cfg.FOV)
	}
	return nil
}

// Scan renders depth images of the mesh from cfg.Views directions, lifts
// every covered pixel back to 3D, snaps it to the closest point on the mesh
// and records the face normal oriented towards the camera. Points within a
// pixel sized cell of an earlier sample are discarded.
//
// Only surfaces visible from outside the bounding sphere are sampled, so
// interior and occluded geometry does not affect the resulting distance
// field.
func Scan(b *BIH, cfg ScanConfig) (*Cloud, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(b.faces) == 0 {
		return nil, errors.New("scan of empty mesh")
	}
	fm := fauxglMesh(b)
	ctx := fauxgl.NewContext(cfg.Resolution, cfg.Resolution)
	ctx.Cull = fauxgl.CullNone

	radius := cfg.BoundingRadius
	camDist := 2 * radius
	// Depth range is padded so that geometry poking slightly out of the
	// bounding sphere is not clipped.
	near := math.Max(camDist-1.5*radius, 1e-3*radius)
	far := camDist + 1.5*radius
	footprint := 2 * far * math.Tan(cfg.FOV*math.Pi/360) / float64(cfg.Resolution)
	maxSnap2 := math.Pow(math.Max(4*footprint, 1e-3*radius), 2)
	cell := 2 * radius / float64(cfg.Resolution)

	var (
		samples []Sample
		seen    = make(map[[3]int64]struct{})
	)
	for v := 0; v < cfg.Views; v++ {
		dir := fibonacciSphere(v, cfg.Views)
		eye := r3.Scale(camDist, dir)
		up := fauxgl.Vector{Y: 1}
		if math.Abs(dir.Y) > 0.99 {
			up = fauxgl.Vector{Z: 1}
		}
		view := fauxgl.LookAt(toFaux(eye), fauxgl.Vector{}, up)
		proj := fauxgl.Perspective(cfg.FOV, 1, near, far)
		matrix := proj.Mul(view)
		ctx.Shader = fauxgl.NewSolidColorShader(matrix, fauxgl.White)
		ctx.ClearDepthBuffer()
		ctx.DrawMesh(fm)

		points := unproject(ctx, matrix.Inverse())
		snapped := make([]Sample, len(points))
		valid := make([]bool, len(points))
		err := par.For(len(points), cfg.Workers, func(lo, hi int) error {
			for i := lo; i < hi; i++ {
				c := b.Closest(points[i])
				if c.Face < 0 || c.Dist2 > maxSnap2 {
					continue
				}
				n := b.FaceNormal(c.Face)
				if r3.Dot(n, r3.Sub(eye, c.Point)) < 0 {
					n = r3.Scale(-1, n)
				}
				snapped[i] = Sample{P: c.Point, N: n}
				valid[i] = n != (r3.Vec{})
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		for i, s := range snapped {
			if !valid[i] {
				continue
			}
			key := [3]int64{
				int64(math.Floor(s.P.X / cell)),
				int64(math.Floor(s.P.Y / cell)),
				int64(math.Floor(s.P.Z / cell)),
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			samples = append(samples, s)
		}
	}
	if len(samples) == 0 {
		return nil, errors.New("scan produced no surface samples")
	}
	return NewCloud(samples)
}

// unproject maps every written depth buffer pixel back to world space.
func unproject(ctx *fauxgl.Context, inv fauxgl.Matrix) []r3.Vec {
	w, h := ctx.Width, ctx.Height
	var points []r3.Vec
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := ctx.DepthBuffer[y*w+x]
			if d > 1 {
				continue // Background.
			}
			ndc := fauxgl.Vector{
				X: (float64(x)+0.5)/float64(w)*2 - 1,
				Y: 1 - (float64(y)+0.5)/float64(h)*2,
				Z: 2*d - 1,
			}
			p := inv.MulPositionW(ndc)
			if p.W == 0 {
				continue
			}
			points = append(points, r3.Vec{X: p.X / p.W, Y: p.Y / p.W, Z: p.Z / p.W})
		}
	}
	return points
}

// fibonacciSphere returns the ith of n points evenly spread on the unit sphere.
func fibonacciSphere(i, n int) r3.Vec {
	golden := math.Pi * (3 - math.Sqrt(5))
	y := 1 - 2*(float64(i)+0.5)/float64(n)
	r := math.Sqrt(1 - y*y)
	phi := golden * float64(i)
	return r3.Vec{X: r * math.Cos(phi), Y: y, Z: r * math.Sin(phi)}
}

func fauxglMesh(b *BIH) *fauxgl.Mesh {
	tris := make([]*fauxgl.Triangle, b.m.Len())
	for i := range tris {
		t := b.m.Triangle(i)
		tris[i] = fauxgl.NewTriangleForPoints(toFaux(t[0]), toFaux(t[1]), toFaux(t[2]))
	}
	return fauxgl.NewTriangleMesh(tris)
}

func toFaux(v r3.Vec) fauxgl.Vector { return fauxgl.Vector{X: v.X, Y: v.Y, Z: v.Z} }
