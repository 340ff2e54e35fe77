package volume

import (
	"fmt"
	"os"

	"github.com/soypat/meshsdf/grid"
)

// ShapeMismatchError is returned by Read when the file size does not match
// the declared resolution.
type ShapeMismatchError struct {
	Path string
	Got  int64
	Want int64
	Res  grid.Resolution
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("volume %s has %d bytes, resolution %s needs %d", e.Path, e.Got, e.Res, e.Want)
}

// Grid is a quantized volume laid out in grid enumeration order.
type Grid struct {
	Res  grid.Resolution
	Data []uint8
}

// At returns the voxel at lattice coordinates (ix, iy, iz).
func (g *Grid) At(ix, iy, iz int) uint8 { return g.Data[g.Res.Index(ix, iy, iz)] }

// Read loads the raw volume at path and checks its size against res.
func Read(path string, res grid.Resolution) (*Grid, error) {
	if err := res.Validate(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if want := int64(res.Len()); int64(len(data)) != want {
		return nil, &ShapeMismatchError{Path: path, Got: int64(len(data)), Want: want, Res: res}
	}
	return &Grid{Res: res, Data: data}, nil
}
