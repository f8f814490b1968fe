package threshold

import (
	"errors"
	"fmt"

	"fiducial-detector/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// ErrThresholdFailed means no usable global threshold exists for the frame.
var ErrThresholdFailed = errors.New("global threshold failed")

// Mean splits an intensity frame at its mean value. Pixels strictly brighter than the
// mean become 255, everything else 0. The returned value is the threshold used.
//
// An all-black frame has a zero threshold and is reported as ErrThresholdFailed: no
// contour extraction is meaningful on it.
func Mean(gray gocv.Mat) (gocv.Mat, float64, error) {
	if err := safe.ValidateMatForOperation(gray, "mean threshold"); err != nil {
		return gocv.NewMat(), 0, fmt.Errorf("%w: %v", ErrThresholdFailed, err)
	}
	if gray.Channels() != 1 {
		return gocv.NewMat(), 0, fmt.Errorf("%w: expected 1 channel, got %d", ErrThresholdFailed, gray.Channels())
	}

	mean := gocv.Mean(gray).Val1

	dst := gocv.NewMat()
	value := gocv.Threshold(gray, &dst, float32(mean), 255, gocv.ThresholdBinary)
	if value == 0 || dst.Empty() {
		dst.Close()
		return gocv.NewMat(), 0, ErrThresholdFailed
	}

	return dst, float64(value), nil
}

// Binarize reduces an intensity patch to the two levels {0,1} at its Otsu threshold.
func Binarize(gray gocv.Mat) (gocv.Mat, float64, error) {
	if err := safe.ValidateMatForOperation(gray, "otsu binarization"); err != nil {
		return gocv.NewMat(), 0, err
	}
	if gray.Type() != gocv.MatTypeCV8UC1 {
		return gocv.NewMat(), 0, fmt.Errorf("otsu binarization requires CV_8UC1, got type %d", int(gray.Type()))
	}

	dst := gocv.NewMat()
	value := gocv.Threshold(gray, &dst, 0, 1, gocv.ThresholdBinary|gocv.ThresholdOtsu)

	return dst, float64(value), nil
}
