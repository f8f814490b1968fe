package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"fiducial-detector/internal/dictionary"
	"fiducial-detector/internal/marker"
)

type options struct {
	source     string
	dictDir    string
	dictGlob   string
	cameraPath string
	configPath string
	logLevel   string
	debugDir   string
	interval   time.Duration
	maxFrames  int
	smooth     float64
	detector   marker.Config
}

func parseOptions(args []string, output io.Writer) (options, error) {
	defaults := marker.DefaultConfig()
	opts := options{detector: defaults}

	fs := flag.NewFlagSet(AppName, flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.source, "source", "0", "camera index, image file or video file")
	fs.StringVar(&opts.dictDir, "dict", "", "directory of marker pattern images; detection only when empty")
	fs.StringVar(&opts.dictGlob, "dict-glob", dictionary.DefaultGlob, "pattern file glob inside -dict")
	fs.StringVar(&opts.cameraPath, "camera", "", "camera parameters JSON file")
	fs.StringVar(&opts.configPath, "config", "", "detector settings JSON file; explicit detector flags take precedence")
	fs.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (default from LOG_LEVEL)")
	fs.StringVar(&opts.debugDir, "debug-dir", "", "write each frame's threshold image into this directory")
	fs.DurationVar(&opts.interval, "interval", 100*time.Millisecond, "minimum time between frames")
	fs.IntVar(&opts.maxFrames, "frames", 0, "stop after this many frames (0 = until the source ends)")
	fs.Float64Var(&opts.smooth, "smooth", 0, "gaussian sigma applied to frames before detection (0 = off)")
	fs.Float64Var(&opts.detector.EpsilonRate, "epsilon-rate", defaults.EpsilonRate, "polygon approximation tolerance relative to contour perimeter")
	fs.IntVar(&opts.detector.DiagonalLimit, "diagonal-limit", defaults.DiagonalLimit, "minimum quad diagonal in pixels")
	fs.Float64Var(&opts.detector.MatchLimit, "match-limit", defaults.MatchLimit, "pixel agreement required to accept a pattern")
	fs.IntVar(&opts.detector.SideLength, "side-length", defaults.SideLength, "rectified patch resolution")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if opts.interval < 0 {
		return opts, errors.New("-interval must not be negative")
	}
	if opts.smooth < 0 {
		return opts, errors.New("-smooth must not be negative")
	}
	if opts.maxFrames < 0 {
		return opts, errors.New("-frames must not be negative")
	}

	if opts.configPath != "" {
		if err := applyConfigFile(fs, opts.configPath, &opts.detector); err != nil {
			return opts, err
		}
	}

	opts.detector.Debug = opts.debugDir != ""
	if err := opts.detector.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

// applyConfigFile fills every detector setting whose flag was not given on the command
// line from a JSON object of snake_case keys (epsilon_rate, diagonal_limit, match_limit,
// side_length). Debug output is driven by -debug-dir alone.
func applyConfigFile(fs *flag.FlagSet, path string, cfg *marker.Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read detector config: %w", err)
	}
	var params map[string]interface{}
	if err := json.Unmarshal(data, &params); err != nil {
		return fmt.Errorf("parse detector config %s: %w", path, err)
	}
	file := marker.ConfigFromParams(params)

	explicit := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	if !explicit["epsilon-rate"] {
		cfg.EpsilonRate = file.EpsilonRate
	}
	if !explicit["diagonal-limit"] {
		cfg.DiagonalLimit = file.DiagonalLimit
	}
	if !explicit["match-limit"] {
		cfg.MatchLimit = file.MatchLimit
	}
	if !explicit["side-length"] {
		cfg.SideLength = file.SideLength
	}
	return nil
}
