package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Box returns the closed mesh of an axis aligned box spanning min to max.
// Faces are wound counter-clockwise when viewed from outside.
func Box(min, max r3.Vec) *Mesh {
	m := &Mesh{Vertices: make([]r3.Vec, 8)}
	for i := range m.Vertices {
		v := min
		if i&1 != 0 {
			v.X = max.X
		}
		if i&2 != 0 {
			v.Y = max.Y
		}
		if i&4 != 0 {
			v.Z = max.Z
		}
		m.Vertices[i] = v
	}
	m.Faces = [][3]int{
		{0, 2, 1}, {1, 2, 3}, // -Z
		{4, 5, 6}, {5, 7, 6}, // +Z
		{0, 1, 4}, {1, 5, 4}, // -Y
		{2, 6, 3}, {3, 6, 7}, // +Y
		{0, 4, 2}, {2, 4, 6}, // -X
		{1, 3, 5}, {3, 7, 5}, // +X
	}
	return m
}

// Icosphere returns a sphere of the given radius centered at the origin built by
// subdividing an icosahedron. Each subdivision multiplies the face count by 4.
func Icosphere(radius float64, subdivisions int) *Mesh {
	t := (1 + math.Sqrt(5)) / 2
	m := &Mesh{
		Vertices: []r3.Vec{
			{X: -1, Y: t}, {X: 1, Y: t}, {X: -1, Y: -t}, {X: 1, Y: -t},
			{Y: -1, Z: t}, {Y: 1, Z: t}, {Y: -1, Z: -t}, {Y: 1, Z: -t},
			{X: t, Z: -1}, {X: t, Z: 1}, {X: -t, Z: -1}, {X: -t, Z: 1},
		},
		Faces: [][3]int{
			{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
			{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
			{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
			{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
		},
	}
	for i := range m.Vertices {
		m.Vertices[i] = r3.Scale(radius, r3.Unit(m.Vertices[i]))
	}
	for s := 0; s < subdivisions; s++ {
		midpoints := make(map[[2]int]int)
		mid := func(a, b int) int {
			key := [2]int{a, b}
			if a > b {
				key = [2]int{b, a}
			}
			if idx, ok := midpoints[key]; ok {
				return idx
			}
			v := r3.Scale(0.5, r3.Add(m.Vertices[a], m.Vertices[b]))
			m.Vertices = append(m.Vertices, r3.Scale(radius, r3.Unit(v)))
			midpoints[key] = len(m.Vertices) - 1
			return len(m.Vertices) - 1
		}
		faces := make([][3]int, 0, 4*len(m.Faces))
		for _, f := range m.Faces {
			a, b, c := mid(f[0], f[1]), mid(f[1], f[2]), mid(f[2], f[0])
			faces = append(faces,
				[3]int{f[0], a, c},
				[3]int{f[1], b, a},
				[3]int{f[2], c, b},
				[3]int{a, b, c},
			)
		}
		m.Faces = faces
	}
	return m
}
