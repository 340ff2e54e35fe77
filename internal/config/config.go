// Package config handles conversion and visualizer configuration.
package config

import (
	"fmt"
	"runtime"

	"github.com/soypat/meshsdf"
	"github.com/soypat/meshsdf/grid"
	"github.com/soypat/meshsdf/surface"
)

// Config holds all pipeline settings.
type Config struct {
	// Output is the default volume path of the conversion tool.
	Output string `yaml:"output"`
	// Resolution is either "N" or "X,Y,Z".
	Resolution string           `yaml:"resolution"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Scan       ScanConfig       `yaml:"scan"`
	Visualizer VisualizerConfig `yaml:"visualizer"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// EvaluationConfig holds signed distance evaluation settings.
type EvaluationConfig struct {
	Strategies []string `yaml:"strategies"`
	Surface    string   `yaml:"surface"`
	Workers    int      `yaml:"workers"`
	Slab       int      `yaml:"slab"`
	SurfaceTol float64  `yaml:"surface_tol"`
	Beta       float64  `yaml:"beta"`
}

// ScanConfig holds the virtual depth camera settings.
type ScanConfig struct {
	Views          int     `yaml:"views"`
	Resolution     int     `yaml:"resolution"`
	BoundingRadius float64 `yaml:"bounding_radius"`
	FOV            float64 `yaml:"fov"`
}

// VisualizerConfig holds slice export settings.
type VisualizerConfig struct {
	OutputDir  string `yaml:"output_dir"`
	Resolution int    `yaml:"resolution"`
	Scale      int    `yaml:"scale"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Output:     "public/volumes/output_sdf64.bin",
		Resolution: "64",
		Evaluation: EvaluationConfig{
			Strategies: []string{meshsdf.StrategyWinding, meshsdf.StrategyNormal},
			Surface:    string(surface.MethodScan),
			Workers:    runtime.NumCPU(),
			Slab:       0,
			SurfaceTol: meshsdf.DefaultSurfaceTol,
			Beta:       surface.DefaultBeta,
		},
		Scan: ScanConfig{
			Views:          100,
			Resolution:     400,
			BoundingRadius: 1.5,
			FOV:            60,
		},
		Visualizer: VisualizerConfig{
			OutputDir:  "public/volumes/debug",
			Resolution: 64,
			Scale:      1,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if _, err := c.GridResolution(); err != nil {
		return err
	}
	if _, err := c.EvalConfig(); err != nil {
		return err
	}
	if c.Visualizer.Resolution < 1 {
		return fmt.Errorf("visualizer resolution must be positive, got %d", c.Visualizer.Resolution)
	}
	if c.Visualizer.Scale < 1 {
		return fmt.Errorf("visualizer scale must be at least 1, got %d", c.Visualizer.Scale)
	}
	return nil
}

// GridResolution parses Resolution.
func (c *Config) GridResolution() (grid.Resolution, error) {
	return grid.Parse(c.Resolution)
}

// EvalConfig converts the evaluation and scan sections to evaluator settings.
func (c *Config) EvalConfig() (meshsdf.Config, error) {
	method, err := surface.ParseMethod(c.Evaluation.Surface)
	if err != nil {
		return meshsdf.Config{}, err
	}
	if len(c.Evaluation.Strategies) == 0 {
		return meshsdf.Config{}, fmt.Errorf("no sign strategies configured")
	}
	scan := surface.ScanConfig{
		Views:          c.Scan.Views,
		Resolution:     c.Scan.Resolution,
		BoundingRadius: c.Scan.BoundingRadius,
		FOV:            c.Scan.FOV,
		Workers:        c.Evaluation.Workers,
	}
	if method == surface.MethodScan {
		if err := scan.Validate(); err != nil {
			return meshsdf.Config{}, err
		}
	}
	return meshsdf.Config{
		Strategies: append([]string(nil), c.Evaluation.Strategies...),
		Surface:    method,
		Scan:       scan,
		Workers:    c.Evaluation.Workers,
		Slab:       c.Evaluation.Slab,
		SurfaceTol: c.Evaluation.SurfaceTol,
		Beta:       c.Evaluation.Beta,
	}, nil
}
