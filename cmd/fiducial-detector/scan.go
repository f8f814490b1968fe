package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"fiducial-detector/internal/capture"
	"fiducial-detector/internal/logger"
	"fiducial-detector/internal/marker"
	"fiducial-detector/internal/opencv/conversion"
	"fiducial-detector/internal/processing/filters"
	"fiducial-detector/internal/processing/threshold"
	"fiducial-detector/internal/timing"

	"github.com/anthonynsimon/bild/imgio"
	"gocv.io/x/gocv"
)

type scanner struct {
	detector *marker.Detector
	source   capture.Source
	tracker  *timing.Tracker
	logger   logger.Logger
	interval time.Duration
	debugDir string
	limit    int
	smooth   float64

	frames  int
	markers int
}

// Run reads and scans frames until the source ends, the frame limit is reached or ctx is
// cancelled. Still images are scanned once.
func (s *scanner) Run(ctx context.Context) error {
	frame := gocv.NewMat()
	defer frame.Close()

	ticker := time.NewTicker(max(s.interval, time.Millisecond))
	defer ticker.Stop()

	defer func() {
		s.logger.Info("Scanner", "scan finished", map[string]interface{}{
			"frames":  s.frames,
			"markers": s.markers,
		})
	}()

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		span := s.tracker.Start("capture")
		err := s.source.Read(&frame)
		s.tracker.End(span)
		if errors.Is(err, capture.ErrEndOfStream) || errors.Is(err, capture.ErrClosed) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read frame: %w", err)
		}

		if err := s.scan(frame); err != nil {
			return err
		}

		if s.source.Kind() == capture.KindImage || (s.limit > 0 && s.frames >= s.limit) {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (s *scanner) scan(frame gocv.Mat) error {
	index := s.frames
	s.frames++

	if s.smooth > 0 {
		smoothed, err := filters.Smooth(frame, s.smooth)
		if err != nil {
			return fmt.Errorf("frame %d: %w", index, err)
		}
		defer smoothed.Close()
		frame = smoothed
	}

	span := s.tracker.Start("detect")
	result, err := s.detector.Detect(frame)
	s.tracker.End(span)

	if errors.Is(err, threshold.ErrThresholdFailed) {
		s.logger.Debug("Scanner", "no threshold for frame", map[string]interface{}{
			"frame": index,
		})
		return nil
	}
	if err != nil {
		return fmt.Errorf("frame %d: %w", index, err)
	}
	defer result.Close()

	for _, m := range result.Markers {
		s.markers++
		fields := map[string]interface{}{
			"frame":   index,
			"corners": m.Corners,
		}
		if m.Match != nil {
			fields["id"] = m.Match.ID
			fields["rotation"] = m.Match.Rotation
			fields["agreement"] = m.Match.Agreement
		}
		s.logger.Info("Scanner", "marker", fields)
	}

	if result.Threshold != nil && s.debugDir != "" {
		if err := s.saveThreshold(*result.Threshold, index); err != nil {
			s.logger.Warning("Scanner", "threshold image not saved", map[string]interface{}{
				"frame": index,
				"error": err.Error(),
			})
		}
	}
	return nil
}

func (s *scanner) saveThreshold(mat gocv.Mat, index int) error {
	img, err := conversion.MatToImage(mat)
	if err != nil {
		return err
	}
	path := filepath.Join(s.debugDir, fmt.Sprintf("threshold_%06d.png", index))
	return imgio.Save(path, img, imgio.PNGEncoder())
}
