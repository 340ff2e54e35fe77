// Package grid generates the regular lattice of query points that spans the
// canonical [-1, 1]^3 cube.
//
// Points are enumerated with X as the slowest varying axis and Z as the fastest,
// so flat index i decodes as
//
//	ix = i / (Y*Z)
//	iy = (i / Z) % Y
//	iz = i % Z
//
// which is also the byte order of serialized volumes.
package grid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrInvalidResolution is returned by Parse and Validate for malformed or
// non-positive resolutions.
var ErrInvalidResolution = errors.New("invalid resolution")

// Resolution holds the number of lattice points along each axis.
type Resolution struct {
	X, Y, Z int
}

// Cubic returns the N×N×N resolution.
func Cubic(n int) Resolution { return Resolution{X: n, Y: n, Z: n} }

// Parse parses either a single integer "N" meaning N×N×N or a comma separated
// triple "X,Y,Z".
func Parse(s string) (Resolution, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 1 && len(parts) != 3 {
		return Resolution{}, fmt.Errorf("%w %q: want N or X,Y,Z", ErrInvalidResolution, s)
	}
	var dims [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Resolution{}, fmt.Errorf("%w %q: %s", ErrInvalidResolution, s, err)
		}
		dims[i] = n
	}
	res := Cubic(dims[0])
	if len(parts) == 3 {
		res = Resolution{X: dims[0], Y: dims[1], Z: dims[2]}
	}
	return res, res.Validate()
}

// MaxPoints is the largest lattice accepted by Validate. Flat indices of
// valid resolutions fit in an int32.
const MaxPoints = 1<<31 - 1

// Validate returns an error if any axis has less than one point or the
// lattice holds more than MaxPoints points.
func (r Resolution) Validate() error {
	if r.X < 1 || r.Y < 1 || r.Z < 1 {
		return fmt.Errorf("%w %s: all axes must be positive", ErrInvalidResolution, r)
	}
	// Divide instead of multiplying so the check cannot overflow.
	if r.X > MaxPoints/r.Y || r.X*r.Y > MaxPoints/r.Z {
		return fmt.Errorf("%w %s: more than %d points", ErrInvalidResolution, r, MaxPoints)
	}
	return nil
}

// IsCubic reports whether all axes have the same number of points.
func (r Resolution) IsCubic() bool { return r.X == r.Y && r.Y == r.Z }

// String returns "N³" for cubic resolutions and "X×Y×Z" otherwise.
func (r Resolution) String() string {
	if r.IsCubic() {
		return strconv.Itoa(r.X) + "³"
	}
	return fmt.Sprintf("%d×%d×%d", r.X, r.Y, r.Z)
}

// Len returns the total number of lattice points.
func (r Resolution) Len() int { return r.X * r.Y * r.Z }

// Index returns the flat index of lattice point (ix, iy, iz).
func (r Resolution) Index(ix, iy, iz int) int {
	return (ix*r.Y+iy)*r.Z + iz
}

// Decode returns the lattice coordinates of flat index i.
func (r Resolution) Decode(i int) (ix, iy, iz int) {
	return i / (r.Y * r.Z), (i / r.Z) % r.Y, i % r.Z
}

// Coord returns the position of lattice point (ix, iy, iz). It indexes the
// same axis spans as Slab.
func (r Resolution) Coord(ix, iy, iz int) r3.Vec {
	return r3.Vec{
		X: Linspace(-1, 1, r.X)[ix],
		Y: Linspace(-1, 1, r.Y)[iy],
		Z: Linspace(-1, 1, r.Z)[iz],
	}
}

// Points returns every lattice point in enumeration order.
func (r Resolution) Points() []r3.Vec {
	return r.Slab(0, r.X)
}

// Slab returns the lattice points with x index in [x0, x1) in enumeration
// order. Concatenating consecutive slabs yields Points.
func (r Resolution) Slab(x0, x1 int) []r3.Vec {
	if x0 < 0 || x1 > r.X || x0 > x1 {
		panic("grid: slab out of range")
	}
	xs := Linspace(-1, 1, r.X)[x0:x1]
	ys := Linspace(-1, 1, r.Y)
	zs := Linspace(-1, 1, r.Z)
	pts := make([]r3.Vec, 0, len(xs)*len(ys)*len(zs))
	for _, x := range xs {
		for _, y := range ys {
			for _, z := range zs {
				pts = append(pts, r3.Vec{X: x, Y: y, Z: z})
			}
		}
	}
	return pts
}

// Linspace returns n evenly spaced values from start to stop inclusive.
// n == 1 returns only start.
func Linspace(start, stop float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	v := make([]float64, n)
	if n == 1 {
		v[0] = start
		return v
	}
	floats.Span(v, start, stop)
	// Span accumulates start+i*step, pin the last point to stop.
	v[n-1] = stop
	return v
}
