package mesh

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/fauxgl"
	"github.com/hschendel/stl"
	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
	"gonum.org/v1/gonum/spatial/r3"
)

// Load reads the mesh file at path as a single combined mesh. The format is
// chosen by file extension: .obj, .stl (ASCII or binary), .off, .ply and .3ds.
// The returned error, if any, is of type *LoadError.
func Load(path string) (*Mesh, error) {
	m, err := load(path)
	if err == nil {
		err = m.Validate()
	}
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return m, nil
}

func load(path string) (*Mesh, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".obj":
		fp, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer fp.Close()
		return ReadOBJ(fp)
	case ".stl":
		return loadSTL(path)
	case ".off":
		return loadOFF(path)
	case ".ply", ".3ds":
		return loadFauxgl(path)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return nil, errors.Errorf("unsupported mesh format %q", ext)
}

func loadSTL(path string) (*Mesh, error) {
	solid, err := stl.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read stl")
	}
	soup := make([][3]r3.Vec, len(solid.Triangles))
	for i, t := range solid.Triangles {
		for j, v := range t.Vertices {
			soup[i][j] = r3.Vec{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
		}
	}
	return FromTriangles(soup), nil
}

func loadOFF(path string) (*Mesh, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	triangles, err := model3d.ReadOFF(fp)
	if err != nil {
		return nil, errors.Wrap(err, "read off")
	}
	soup := make([][3]r3.Vec, len(triangles))
	for i, t := range triangles {
		for j, c := range t {
			soup[i][j] = r3.Vec{X: c.X, Y: c.Y, Z: c.Z}
		}
	}
	return FromTriangles(soup), nil
}

func loadFauxgl(path string) (*Mesh, error) {
	fm, err := fauxgl.LoadMesh(path)
	if err != nil {
		return nil, errors.Wrap(err, "read "+strings.TrimPrefix(filepath.Ext(path), "."))
	}
	soup := make([][3]r3.Vec, len(fm.Triangles))
	for i, t := range fm.Triangles {
		soup[i] = [3]r3.Vec{
			fauxglToR3(t.V1.Position),
			fauxglToR3(t.V2.Position),
			fauxglToR3(t.V3.Position),
		}
	}
	return FromTriangles(soup), nil
}

func fauxglToR3(v fauxgl.Vector) r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}
