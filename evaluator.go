package meshsdf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chewxy/math32"
	"github.com/soypat/meshsdf/grid"
	"github.com/soypat/meshsdf/internal/par"
	"github.com/soypat/meshsdf/mesh"
	"github.com/soypat/meshsdf/surface"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// StrategyError records why a strategy was abandoned.
type StrategyError struct {
	Strategy string
	Err      error
}

func (e StrategyError) Error() string { return e.Strategy + ": " + e.Err.Error() }

// SDFComputationError is returned when every configured strategy failed.
type SDFComputationError struct {
	Attempts []StrategyError
}

func (e *SDFComputationError) Error() string {
	if len(e.Attempts) == 0 {
		return "sdf computation failed: no strategy available"
	}
	msgs := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		msgs[i] = a.Error()
	}
	return "sdf computation failed: " + strings.Join(msgs, "; ")
}

// Unwrap returns the error of every attempt.
func (e *SDFComputationError) Unwrap() []error {
	errs := make([]error, len(e.Attempts))
	for i, a := range e.Attempts {
		errs[i] = a.Err
	}
	return errs
}

// Sink consumes evaluated distances one X slab at a time, in order.
type Sink interface {
	WriteSlab(dist []float32) error
	// Reset discards everything written so far.
	Reset() error
}

// Result summarizes a completed evaluation.
type Result struct {
	// Strategy is the name of the strategy that produced the volume.
	Strategy string
	Min, Max float64
	// Inside is the number of voxels with negative distance.
	Inside int
}

// Evaluator computes signed distance volumes of a normalized mesh.
type Evaluator struct {
	log        *zap.Logger
	cfg        Config
	geom       *Geometry
	strategies []Strategy
	probeErrs  []StrategyError
}

// NewEvaluator builds the acceleration structures of m, which must already be
// normalized, and probes the configured strategies. Strategies failing their
// probe are skipped. If the scan surface sampler fails the exact sampler is
// used instead.
func NewEvaluator(m *mesh.Mesh, cfg Config, log *zap.Logger) (*Evaluator, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if len(cfg.Strategies) == 0 {
		cfg.Strategies = DefaultConfig().Strategies
	}
	b := surface.NewBIH(m)
	sampler, err := surface.NewSampler(cfg.Surface, b, cfg.Scan)
	if err != nil {
		if cfg.Surface == surface.MethodExact {
			return nil, err
		}
		log.Warn("surface scan failed, using exact closest points", zap.Error(err))
		sampler = b
	}
	if c, ok := sampler.(*surface.Cloud); ok {
		log.Debug("surface scanned", zap.Int("samples", c.Len()), zap.Int("views", cfg.Scan.Views))
	}
	geom := newGeometry(b, sampler, cfg.SurfaceTol)
	strategies := make([]Strategy, 0, len(cfg.Strategies))
	for _, name := range cfg.Strategies {
		s, err := NewStrategy(strings.TrimSpace(name), geom, cfg)
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, s)
	}
	return newEvaluator(geom, strategies, cfg, log), nil
}

func newEvaluator(geom *Geometry, strategies []Strategy, cfg Config, log *zap.Logger) *Evaluator {
	e := &Evaluator{log: log, cfg: cfg, geom: geom}
	for _, s := range strategies {
		if err := s.Probe(); err != nil {
			log.Warn("strategy unavailable", zap.String("strategy", s.Name()), zap.Error(err))
			e.probeErrs = append(e.probeErrs, StrategyError{Strategy: s.Name(), Err: err})
			continue
		}
		e.strategies = append(e.strategies, s)
	}
	return e
}

// Strategies returns the names of the strategies that passed their probe in
// the order they will be attempted.
func (e *Evaluator) Strategies() []string {
	names := make([]string, len(e.strategies))
	for i, s := range e.strategies {
		names[i] = s.Name()
	}
	return names
}

// Run evaluates every lattice point of res and streams the distances to
// sink in enumeration order. When a strategy fails, sink is reset and the
// next strategy recomputes the entire volume. Errors returned by sink abort
// the run immediately.
func (e *Evaluator) Run(res grid.Resolution, sink Sink) (Result, error) {
	if err := res.Validate(); err != nil {
		return Result{}, err
	}
	attempts := append([]StrategyError(nil), e.probeErrs...)
	for i, s := range e.strategies {
		if i > 0 {
			if err := sink.Reset(); err != nil {
				return Result{}, err
			}
		}
		result, err := e.run(s, res, sink)
		if err == nil {
			return result, nil
		}
		var serr sinkError
		if errors.As(err, &serr) {
			return Result{}, serr.err
		}
		e.log.Warn("strategy failed, falling back", zap.String("strategy", s.Name()), zap.Error(err))
		attempts = append(attempts, StrategyError{Strategy: s.Name(), Err: err})
	}
	return Result{}, &SDFComputationError{Attempts: attempts}
}

type sinkError struct{ err error }

func (e sinkError) Error() string { return e.err.Error() }

func (e *Evaluator) run(s Strategy, res grid.Resolution, sink Sink) (Result, error) {
	slab := e.cfg.Slab
	if slab <= 0 || slab > res.X {
		slab = res.X
	}
	result := Result{Strategy: s.Name()}
	var buf []float32
	var stats []float64
	for x0 := 0; x0 < res.X; x0 += slab {
		x1 := x0 + slab
		if x1 > res.X {
			x1 = res.X
		}
		pts := res.Slab(x0, x1)
		if cap(buf) < len(pts) {
			buf = make([]float32, len(pts))
			stats = make([]float64, len(pts))
		}
		dist := buf[:len(pts)]
		if err := e.evaluate(s, pts, dist); err != nil {
			return Result{}, err
		}
		vals := stats[:len(pts)]
		for i, d := range dist {
			if math32.IsNaN(d) || math32.IsInf(d, 0) {
				return Result{}, fmt.Errorf("non-finite distance at %v", pts[i])
			}
			vals[i] = float64(d)
			if d < 0 {
				result.Inside++
			}
		}
		lo, hi := floats.Min(vals), floats.Max(vals)
		if x0 == 0 || lo < result.Min {
			result.Min = lo
		}
		if x0 == 0 || hi > result.Max {
			result.Max = hi
		}
		if err := sink.WriteSlab(dist); err != nil {
			return Result{}, sinkError{err: err}
		}
		e.log.Debug("slab evaluated", zap.String("strategy", s.Name()), zap.Int("x0", x0), zap.Int("x1", x1))
	}
	return result, nil
}

func (e *Evaluator) evaluate(s Strategy, pts []r3.Vec, dist []float32) error {
	return par.For(len(pts), e.cfg.Workers, func(lo, hi int) error {
		return s.Evaluate(pts[lo:hi], dist[lo:hi])
	})
}

// Evaluate returns the signed distances of pts computed by the first strategy
// that succeeds.
func (e *Evaluator) Evaluate(pts []r3.Vec) ([]float32, string, error) {
	dist := make([]float32, len(pts))
	attempts := append([]StrategyError(nil), e.probeErrs...)
	for _, s := range e.strategies {
		err := e.evaluate(s, pts, dist)
		if err == nil {
			for i, d := range dist {
				if math32.IsNaN(d) || math32.IsInf(d, 0) {
					err = fmt.Errorf("non-finite distance at %v", pts[i])
					break
				}
			}
		}
		if err == nil {
			return dist, s.Name(), nil
		}
		e.log.Warn("strategy failed, falling back", zap.String("strategy", s.Name()), zap.Error(err))
		attempts = append(attempts, StrategyError{Strategy: s.Name(), Err: err})
	}
	return nil, "", &SDFComputationError{Attempts: attempts}
}
