// Command obj2sdf converts a triangle mesh into a quantized signed distance
// field volume.
//
//	obj2sdf [flags] <input> [output] [resolution]
//
// The resolution is either a single edge length or X,Y,Z.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/soypat/meshsdf"
	"github.com/soypat/meshsdf/internal/config"
	"github.com/soypat/meshsdf/internal/logger"
)

func main() {
	fs := flag.NewFlagSet("obj2sdf", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: obj2sdf [flags] <input> [output] [resolution]\n")
		fs.PrintDefaults()
	}
	flags := config.RegisterConvertFlags(fs)
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
	if fs.NArg() > 1 {
		cfg.Output = fs.Arg(1)
	}
	if fs.NArg() > 2 {
		cfg.Resolution = fs.Arg(2)
	}
	res, err := cfg.GridResolution()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Resolution error: %v\n", err)
		os.Exit(1)
	}
	eval, err := cfg.EvalConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.LogFile)
	defer log.Sync()

	start := time.Now()
	report, err := meshsdf.Convert(meshsdf.Options{
		Input:      fs.Arg(0),
		Output:     cfg.Output,
		Resolution: res,
		Eval:       eval,
	}, log)
	if err != nil {
		log.Error("conversion failed", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
	log.Info("done",
		zap.String("output", report.Output),
		zap.String("strategy", report.Strategy),
		zap.Duration("elapsed", time.Since(start)),
	)
}
