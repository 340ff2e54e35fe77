package meshsdf

import (
	"fmt"
	"os"

	"github.com/soypat/meshsdf/grid"
	"github.com/soypat/meshsdf/mesh"
	"github.com/soypat/meshsdf/volume"
	"go.uber.org/zap"
)

// Options configures a mesh to volume conversion.
type Options struct {
	Input      string
	Output     string
	Resolution grid.Resolution
	Eval       Config
}

// Report describes a written volume.
type Report struct {
	Output   string
	Bytes    int64
	Voxels   int
	Strategy string
	Norm     mesh.NormParams
	Min, Max float64
}

// Convert loads the mesh at opts.Input, normalizes it into [-1, 1]^3,
// evaluates its signed distance on the lattice and writes the quantized
// volume to opts.Output. No file is left at opts.Output on failure.
func Convert(opts Options, log *zap.Logger) (Report, error) {
	if log == nil {
		log = zap.NewNop()
	}
	res := opts.Resolution
	if err := res.Validate(); err != nil {
		return Report{}, err
	}

	log.Info("[1/5] load", zap.String("path", opts.Input))
	m, err := mesh.Load(opts.Input)
	if err != nil {
		return Report{}, err
	}
	log.Info("[1/5] loaded", zap.Int("vertices", len(m.Vertices)), zap.Int("faces", m.Len()))

	norm := m.Normalize()
	fields := []zap.Field{
		zap.Float64s("center", []float64{norm.Center.X, norm.Center.Y, norm.Center.Z}),
		zap.Float64("scale", norm.Scale),
	}
	if norm.Degenerate {
		log.Warn("[2/5] normalize: mesh has zero extent, scale floored", fields...)
	} else {
		log.Info("[2/5] normalize", fields...)
	}

	log.Info("[3/5] grid", zap.Stringer("resolution", res), zap.Int("points", res.Len()))
	eval, err := NewEvaluator(m, opts.Eval, log)
	if err != nil {
		return Report{}, err
	}

	w, err := volume.Create(opts.Output)
	if err != nil {
		return Report{}, err
	}
	log.Info("[4/5] evaluate", zap.Strings("strategies", eval.Strategies()), zap.String("surface", string(opts.Eval.Surface)))
	result, err := eval.Run(res, w)
	if err != nil {
		w.Abort()
		return Report{}, err
	}
	log.Info("[4/5] evaluated",
		zap.String("strategy", result.Strategy),
		zap.Float64("min", result.Min),
		zap.Float64("max", result.Max),
		zap.Int("inside", result.Inside),
	)

	log.Info("[5/5] quantize", zap.String("output", w.Path()))
	if w.Len() != int64(res.Len()) {
		w.Abort()
		return Report{}, fmt.Errorf("wrote %d voxels, resolution %s needs %d", w.Len(), res, res.Len())
	}
	if err := w.Commit(); err != nil {
		return Report{}, err
	}
	info, err := os.Stat(w.Path())
	if err != nil {
		return Report{}, err
	}
	report := Report{
		Output:   w.Path(),
		Bytes:    info.Size(),
		Voxels:   res.Len(),
		Strategy: result.Strategy,
		Norm:     norm,
		Min:      result.Min,
		Max:      result.Max,
	}
	log.Info("volume written",
		zap.String("path", report.Output),
		zap.Int64("bytes", report.Bytes),
		zap.Float64("KiB", float64(report.Bytes)/1024),
		zap.Int("voxels", report.Voxels),
	)
	return report, nil
}
