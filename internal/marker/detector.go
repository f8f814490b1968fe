package marker

import (
	"errors"
	"fmt"

	"fiducial-detector/internal/camera"
	"fiducial-detector/internal/logger"
	"fiducial-detector/internal/opencv/conversion"
	"fiducial-detector/internal/processing/threshold"

	"gocv.io/x/gocv"
)

const componentName = "MarkerDetector"

// ErrNoDictionary is returned by Recognize when neither the call nor the detector
// supplies a dictionary.
var ErrNoDictionary = errors.New("recognize needs a dictionary")

// Settings is the configuration in effect for a single call.
type Settings struct {
	Config
	Dictionary Dictionary
	Camera     *camera.Parameters
}

// CallOption overrides one setting for a single call.
type CallOption func(*Settings)

func WithDictionary(d Dictionary) CallOption {
	return func(s *Settings) { s.Dictionary = d }
}

func WithCamera(p *camera.Parameters) CallOption {
	return func(s *Settings) { s.Camera = p }
}

func WithEpsilonRate(rate float64) CallOption {
	return func(s *Settings) { s.EpsilonRate = rate }
}

func WithDiagonalLimit(limit int) CallOption {
	return func(s *Settings) { s.DiagonalLimit = limit }
}

func WithMatchLimit(limit float64) CallOption {
	return func(s *Settings) { s.MatchLimit = limit }
}

func WithSideLength(side int) CallOption {
	return func(s *Settings) { s.SideLength = side }
}

func WithDebug(debug bool) CallOption {
	return func(s *Settings) { s.Debug = debug }
}

// Detector finds and identifies square markers. Its defaults are fixed at construction,
// so a single Detector may serve concurrent callers.
type Detector struct {
	defaults Settings
	logger   logger.Logger
}

// NewDetector validates the default configuration and dictionary. dict and cam may be nil.
func NewDetector(cfg Config, dict Dictionary, cam *camera.Parameters, log logger.Logger) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := dict.Validate(); err != nil {
		return nil, err
	}
	if cam != nil {
		if err := cam.Validate(); err != nil {
			return nil, err
		}
	}
	if log == nil {
		log = logger.NoOp{}
	}

	return &Detector{
		defaults: Settings{Config: cfg, Dictionary: dict, Camera: cam},
		logger:   log,
	}, nil
}

// Defaults returns a copy of the detector's settings.
func (d *Detector) Defaults() Settings {
	return d.defaults
}

func (d *Detector) settings(opts []CallOption) (Settings, error) {
	s := d.defaults
	for _, opt := range opts {
		opt(&s)
	}
	// An empty call dictionary leaves the configured one in place.
	if len(s.Dictionary) == 0 {
		s.Dictionary = d.defaults.Dictionary
	}
	if err := s.Config.Validate(); err != nil {
		return s, err
	}
	if err := s.Dictionary.Validate(); err != nil {
		return s, err
	}
	if s.Camera != nil && s.Camera != d.defaults.Camera {
		if err := s.Camera.Validate(); err != nil {
			return s, err
		}
	}
	return s, nil
}

// Detect runs the full pipeline on one frame. Without a dictionary every plausible quad is
// returned unrecognized; with one, only quads that match an entry are kept.
//
// A frame without a usable global threshold fails with threshold.ErrThresholdFailed.
func (d *Detector) Detect(frame gocv.Mat, opts ...CallOption) (*Result, error) {
	s, err := d.settings(opts)
	if err != nil {
		return nil, err
	}

	gray, err := conversion.ToGray(frame)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", threshold.ErrThresholdFailed, err)
	}
	defer gray.Close()

	thresh, value, err := threshold.Mean(gray)
	if err != nil {
		return nil, err
	}

	candidates, contours := d.findCandidates(gray, thresh, s.Config)

	result := &Result{Camera: s.Camera}
	if s.Debug {
		result.Threshold = &thresh
	} else {
		thresh.Close()
	}

	if len(s.Dictionary) == 0 {
		result.Markers = candidates
		d.logFrame(contours, candidates, result, value)
		return result, nil
	}

	matcher, err := NewMatcher(s.Dictionary, s.SideLength, s.MatchLimit)
	if err != nil {
		result.Close()
		return nil, err
	}
	defer matcher.Close()

	d.logger.Debug(componentName, "dictionary prepared", map[string]interface{}{
		"entries":     matcher.Len(),
		"side_length": s.SideLength,
	})

	for _, candidate := range candidates {
		match := d.recognize(gray, candidate.Points, matcher, s.SideLength)
		if match == nil {
			continue
		}
		candidate.Match = match
		result.Markers = append(result.Markers, candidate)
	}

	d.logFrame(contours, candidates, result, value)
	return result, nil
}

// Recognize identifies the quad in frame against the dictionary. A nil Match with a nil
// error means no entry qualified.
func (d *Detector) Recognize(points Quad, frame gocv.Mat, opts ...CallOption) (*Match, error) {
	s, err := d.settings(opts)
	if err != nil {
		return nil, err
	}
	if len(s.Dictionary) == 0 {
		return nil, ErrNoDictionary
	}

	gray, err := conversion.ToGray(frame)
	if err != nil {
		return nil, err
	}
	defer gray.Close()

	matcher, err := NewMatcher(s.Dictionary, s.SideLength, s.MatchLimit)
	if err != nil {
		return nil, err
	}
	defer matcher.Close()

	return d.recognize(gray, points, matcher, s.SideLength), nil
}

// recognize rectifies and matches one quad. Failures reject the candidate.
func (d *Detector) recognize(gray gocv.Mat, points Quad, matcher *Matcher, side int) *Match {
	patch, err := Rectify(gray, points, side)
	if err != nil {
		d.logger.Debug(componentName, "candidate rejected", map[string]interface{}{
			"points": points.Points(),
			"reason": err.Error(),
		})
		return nil
	}
	defer patch.Close()

	match, err := matcher.Match(patch)
	if err != nil {
		d.logger.Debug(componentName, "candidate rejected", map[string]interface{}{
			"points": points.Points(),
			"reason": err.Error(),
		})
		return nil
	}
	return match
}

// findCandidates traces contours on the threshold image and keeps the refined plausible quads.
func (d *Detector) findCandidates(gray, thresh gocv.Mat, cfg Config) ([]Marker, int) {
	contours := gocv.FindContours(thresh, gocv.RetrievalList, gocv.ChainApproxNone)
	defer contours.Close()

	var candidates []Marker
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)

		epsilon := cfg.EpsilonRate * gocv.ArcLength(contour, true)
		approx := gocv.ApproxPolyDP(contour, epsilon, true)
		points := approx.ToPoints()
		approx.Close()

		if !IsProbableMarker(points, cfg.DiagonalLimit) {
			continue
		}
		quad, _ := NewQuad(points)

		corners, err := RefineCorners(gray, quad)
		if err != nil {
			d.logger.Debug(componentName, "corner refinement failed", map[string]interface{}{
				"points": points,
				"reason": err.Error(),
			})
			continue
		}
		candidates = append(candidates, Marker{Points: quad, Corners: corners})
	}
	return candidates, contours.Size()
}

func (d *Detector) logFrame(contours int, candidates []Marker, result *Result, value float64) {
	d.logger.Debug(componentName, "frame processed", map[string]interface{}{
		"threshold":  value,
		"contours":   contours,
		"candidates": len(candidates),
		"markers":    len(result.Markers),
	})
}
