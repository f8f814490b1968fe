package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"runtime"

	"fiducial-detector/internal/camera"
	"fiducial-detector/internal/capture"
	"fiducial-detector/internal/dictionary"
	"fiducial-detector/internal/logger"
	"fiducial-detector/internal/marker"
	"fiducial-detector/internal/shutdown"
	"fiducial-detector/internal/timing"

	"github.com/rs/zerolog"
)

const (
	AppName    = "fiducial-detector"
	AppVersion = "1.0.0"
)

func main() {
	opts, err := parseOptions(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	appLogger := logger.NewConsoleLogger(determineLogLevel(opts.logLevel))
	configureRuntime(appLogger)

	if err := run(context.Background(), opts, appLogger); err != nil {
		appLogger.Error("Main", err, nil)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, log logger.Logger) error {
	shutdownManager := shutdown.NewManager(ctx, log)
	shutdownManager.Listen()
	defer shutdownManager.Shutdown()

	var dict marker.Dictionary
	if opts.dictDir != "" {
		d, err := dictionary.LoadDir(opts.dictDir, opts.dictGlob)
		if err != nil {
			return err
		}
		dict = d
		log.Info("Main", "dictionary loaded", map[string]interface{}{
			"entries": len(dict),
			"ids":     dict.IDs(),
		})
	}

	var params *camera.Parameters
	if opts.cameraPath != "" {
		p, err := camera.Load(opts.cameraPath)
		if err != nil {
			return err
		}
		params = p
	}

	detector, err := marker.NewDetector(opts.detector, dict, params, log)
	if err != nil {
		return err
	}

	source, err := capture.Open(opts.source, log)
	if err != nil {
		return err
	}
	shutdownManager.Register("frame source", source)

	tracker := timing.NewTracker()
	defer tracker.Report(log)

	log.Info("Main", "scanning", map[string]interface{}{
		"version":     AppVersion,
		"source":      source.Name(),
		"source_kind": source.Kind().String(),
		"recognition": len(dict) > 0,
	})

	s := &scanner{
		detector: detector,
		source:   source,
		tracker:  tracker,
		logger:   log,
		interval: opts.interval,
		debugDir: opts.debugDir,
		limit:    opts.maxFrames,
		smooth:   opts.smooth,
	}
	return s.Run(shutdownManager.Context())
}

func configureRuntime(log logger.Logger) {
	runtime.GOMAXPROCS(runtime.NumCPU())

	log.Debug("Main", "runtime configured", map[string]interface{}{
		"go_version": runtime.Version(),
		"gomaxprocs": runtime.NumCPU(),
	})
}

// determineLogLevel prefers the flag, then LOG_LEVEL, then DEBUG=1.
func determineLogLevel(flagValue string) zerolog.Level {
	name := flagValue
	if name == "" {
		name = os.Getenv("LOG_LEVEL")
	}
	if name == "" && os.Getenv("DEBUG") == "1" {
		return zerolog.DebugLevel
	}

	level, err := logger.ParseLevel(name)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
