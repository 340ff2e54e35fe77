package config

import (
	"flag"
	"strings"
)

// Flags holds command line overrides. Zero values leave the configuration
// untouched.
type Flags struct {
	Config   string
	Debug    bool
	LogFile  string
	Strategy string
	Surface  string
	Workers  int
	Scale    int
}

// RegisterConvertFlags registers the conversion tool flags on fs.
func RegisterConvertFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	f.registerCommon(fs)
	fs.StringVar(&f.LogFile, "log-file", "", "Also write logs to a rotating file")
	fs.StringVar(&f.Strategy, "strategy", "", "Comma separated sign strategies to try in order (winding,normal,raycast)")
	fs.StringVar(&f.Surface, "surface", "", "Unsigned distance method: scan or exact")
	fs.IntVar(&f.Workers, "workers", 0, "Number of evaluation goroutines")
	return f
}

// RegisterSliceFlags registers the visualizer flags on fs.
func RegisterSliceFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	f.registerCommon(fs)
	fs.IntVar(&f.Scale, "scale", 0, "Integer upscale factor of the slice images")
	return f
}

func (f *Flags) registerCommon(fs *flag.FlagSet) {
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
	if f.Strategy != "" {
		var names []string
		for _, s := range strings.Split(f.Strategy, ",") {
			if s = strings.TrimSpace(s); s != "" {
				names = append(names, s)
			}
		}
		cfg.Evaluation.Strategies = names
	}
	if f.Surface != "" {
		cfg.Evaluation.Surface = f.Surface
	}
	if f.Workers > 0 {
		cfg.Evaluation.Workers = f.Workers
	}
	if f.Scale > 0 {
		cfg.Visualizer.Scale = f.Scale
	}
}
