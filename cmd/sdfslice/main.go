// Command sdfslice writes the three central orthogonal slices of a volume
// produced by obj2sdf as grayscale PNG images.
//
//	sdfslice [flags] <volume> [output-dir] [resolution]
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/soypat/meshsdf/internal/config"
	"github.com/soypat/meshsdf/internal/logger"
	"github.com/soypat/meshsdf/volume"
)

func main() {
	fs := flag.NewFlagSet("sdfslice", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: sdfslice [flags] <volume> [output-dir] [resolution]\n")
		fs.PrintDefaults()
	}
	flags := config.RegisterSliceFlags(fs)
	fs.Parse(os.Args[1:])
	if fs.NArg() < 1 || fs.NArg() > 3 {
		fs.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	// The visualizer defaults to a cubic volume of Visualizer.Resolution.
	cfg.Resolution = fmt.Sprint(cfg.Visualizer.Resolution)
	if fs.NArg() > 1 {
		cfg.Visualizer.OutputDir = fs.Arg(1)
	}
	if fs.NArg() > 2 {
		cfg.Resolution = fs.Arg(2)
	}
	res, err := cfg.GridResolution()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Resolution error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.LogFile)
	defer log.Sync()

	files, err := volume.ExportSlices(fs.Arg(0), cfg.Visualizer.OutputDir, res, cfg.Visualizer.Scale, log)
	if err != nil {
		var mismatch *volume.ShapeMismatchError
		if errors.As(err, &mismatch) {
			log.Error("volume size does not match resolution",
				zap.Int64("bytes", mismatch.Got),
				zap.Int64("expected", mismatch.Want),
				zap.Stringer("resolution", mismatch.Res),
			)
		} else {
			log.Error("slice export failed", zap.Error(err))
		}
		log.Sync()
		os.Exit(1)
	}
	log.Info("slices written", zap.Strings("files", files))
}
