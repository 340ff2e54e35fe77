// Package mesh loads triangulated surface meshes and normalizes them
// into the canonical [-1, 1] bounding cube.
package mesh

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/meshsdf/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// MinScale is the floor applied to the normalization scale so that
// degenerate meshes of zero extent do not cause a division by zero.
const MinScale = 1e-8

// ErrNoFaces is returned when a mesh contains no triangles.
var ErrNoFaces = errors.New("mesh contains no faces")

// Mesh is an indexed triangle mesh. Faces index into Vertices.
type Mesh struct {
	Vertices []r3.Vec
	Faces    [][3]int
}

// NormParams holds the transform applied by Normalize.
// A normalized vertex v' is obtained from its original v as (v - Center) / Scale.
type NormParams struct {
	Center r3.Vec
	Scale  float64
	// Degenerate is set when the mesh had zero extent and Scale was
	// floored to MinScale.
	Degenerate bool
}

// Len returns the number of triangles in the mesh.
func (m *Mesh) Len() int { return len(m.Faces) }

// Triangle returns the vertex positions of the ith face.
func (m *Mesh) Triangle(i int) [3]r3.Vec {
	f := m.Faces[i]
	return [3]r3.Vec{m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]}
}

// Validate checks the mesh has at least one face, that every
// face references an existing vertex and all vertices are finite.
func (m *Mesh) Validate() error {
	if len(m.Faces) == 0 {
		return ErrNoFaces
	}
	nv := len(m.Vertices)
	for i, f := range m.Faces {
		for _, idx := range f {
			if idx < 0 || idx >= nv {
				return fmt.Errorf("face %d references vertex %d, mesh has %d vertices", i, idx, nv)
			}
		}
	}
	for i, v := range m.Vertices {
		if !d3.IsFinite(v) {
			return fmt.Errorf("vertex %d is not finite: %v", i, v)
		}
	}
	return nil
}

// Bounds returns the axis aligned bounding box of the mesh vertices.
func (m *Mesh) Bounds() r3.Box {
	bb := d3.EmptyBox()
	for _, v := range m.Vertices {
		bb = bb.Include(v)
	}
	return r3.Box(bb)
}

// Normalize translates the mesh so its bounding box is centered at the origin
// and then divides every coordinate by the largest absolute coordinate, so that
// the mesh fits in [-1, 1]^3 without aspect ratio distortion.
// Vertices are modified in place.
func (m *Mesh) Normalize() NormParams {
	center := d3.Box(m.Bounds()).Center()
	maxAbs := 0.0
	for i := range m.Vertices {
		v := r3.Sub(m.Vertices[i], center)
		m.Vertices[i] = v
		maxAbs = math.Max(maxAbs, d3.Max(d3.AbsElem(v)))
	}
	scale := math.Max(maxAbs, MinScale)
	for i, v := range m.Vertices {
		m.Vertices[i] = r3.Vec{X: v.X / scale, Y: v.Y / scale, Z: v.Z / scale}
	}
	return NormParams{
		Center:     center,
		Scale:      scale,
		Degenerate: maxAbs < MinScale,
	}
}

// FromTriangles builds an indexed mesh from a triangle soup. Vertices with
// identical positions are merged.
func FromTriangles(soup [][3]r3.Vec) *Mesh {
	m := &Mesh{Faces: make([][3]int, 0, len(soup))}
	cache := make(map[r3.Vec]int, len(soup))
	for _, tri := range soup {
		var face [3]int
		for j, v := range tri {
			idx, ok := cache[v]
			if !ok {
				idx = len(m.Vertices)
				cache[v] = idx
				m.Vertices = append(m.Vertices, v)
			}
			face[j] = idx
		}
		m.Faces = append(m.Faces, face)
	}
	return m
}
