package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Box is a 3d axis aligned bounding box.
type Box r3.Box

// EmptyBox returns an inverted box that any call to Include will
// shrink to the included point.
func EmptyBox() Box {
	return Box{Min: Elem(math.MaxFloat64), Max: Elem(-math.MaxFloat64)}
}

// Include enlarges a 3d box to include a point.
func (a Box) Include(v r3.Vec) Box {
	return Box{
		Min: MinElem(a.Min, v),
		Max: MaxElem(a.Max, v),
	}
}

// Size returns the size of a 3d box.
func (a Box) Size() r3.Vec {
	return r3.Sub(a.Max, a.Min)
}

// Center returns the center of a 3d box.
func (a Box) Center() r3.Vec {
	return r3.Scale(0.5, r3.Add(a.Min, a.Max))
}

// LongestAxis returns the axis index (0=X, 1=Y, 2=Z) of the largest box side.
func (a Box) LongestAxis() int {
	d := a.Size()
	if d.X >= d.Y && d.X >= d.Z {
		return 0
	} else if d.Y >= d.Z {
		return 1
	}
	return 2
}

// MinDist2 returns the squared distance from p to the closest point of the box.
// Points within the box have zero distance.
func (a Box) MinDist2(p r3.Vec) float64 {
	// https://math.stackexchange.com/questions/2133217/minimal-distance-to-a-cube-in-2d-and-3d-from-a-point-lying-outside
	dx := math.Max(0, math.Max(p.X-a.Max.X, a.Min.X-p.X))
	dy := math.Max(0, math.Max(p.Y-a.Max.Y, a.Min.Y-p.Y))
	dz := math.Max(0, math.Max(p.Z-a.Max.Z, a.Min.Z-p.Z))
	return dx*dx + dy*dy + dz*dz
}
