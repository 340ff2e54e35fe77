package volume

import (
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"github.com/soypat/meshsdf/grid"
	"go.uber.org/zap"
)

// Slice file names written by ExportSlices.
const (
	SliceXY = "sdf_slice_xy.png"
	SliceXZ = "sdf_slice_xz.png"
	SliceYZ = "sdf_slice_yz.png"
)

// Slices returns the three mid-plane slices of g. Image rows follow the
// first listed axis:
//
//	xy: v[:, :, Z/2]
//	xz: v[:, Y/2, :]
//	yz: v[X/2, :, :]
func (g *Grid) Slices() (xy, xz, yz *image.Gray) {
	r := g.Res
	xy = g.slice(r.X, r.Y, func(row, col int) uint8 { return g.At(row, col, r.Z/2) })
	xz = g.slice(r.X, r.Z, func(row, col int) uint8 { return g.At(row, r.Y/2, col) })
	yz = g.slice(r.Y, r.Z, func(row, col int) uint8 { return g.At(r.X/2, row, col) })
	return xy, xz, yz
}

func (g *Grid) slice(rows, cols int, at func(row, col int) uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, cols, rows))
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			img.Pix[row*img.Stride+col] = at(row, col)
		}
	}
	return img
}

// ExportSlices reads the volume at path and writes its mid-plane slices as
// grayscale PNG images into dir. Scale values above 1 upscale the images
// with nearest neighbour interpolation. It returns the written file paths.
func ExportSlices(path, dir string, res grid.Resolution, scale int, log *zap.Logger) ([]string, error) {
	if log == nil {
		log = zap.NewNop()
	}
	g, err := Read(path, res)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create slice directory")
	}
	xy, xz, yz := g.Slices()
	var written []string
	for _, s := range []struct {
		name string
		img  *image.Gray
	}{
		{SliceXY, xy},
		{SliceXZ, xz},
		{SliceYZ, yz},
	} {
		out := filepath.Join(dir, s.name)
		if err := writePNG(out, s.img, scale); err != nil {
			return written, err
		}
		log.Info("slice written", zap.String("path", out), zap.Int("width", s.img.Rect.Dx()*max(scale, 1)), zap.Int("height", s.img.Rect.Dy()*max(scale, 1)))
		written = append(written, out)
	}
	return written, nil
}

func writePNG(path string, img *image.Gray, scale int) error {
	var out image.Image = img
	if scale > 1 {
		b := img.Bounds()
		out = resize.Resize(uint(b.Dx()*scale), uint(b.Dy()*scale), img, resize.NearestNeighbor)
	}
	fp, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create slice image")
	}
	defer fp.Close()
	if err := png.Encode(fp, out); err != nil {
		return errors.Wrapf(err, "encode %s", filepath.Base(path))
	}
	return fp.Close()
}
