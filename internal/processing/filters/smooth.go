package filters

import (
	"fmt"
	"image"

	"fiducial-detector/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// KernelSize derives an odd Gaussian kernel width from sigma, clamped to [3,15].
func KernelSize(sigma float64) int {
	kernelSize := int(sigma*6) + 1
	if kernelSize%2 == 0 {
		kernelSize++
	}
	return max(3, min(kernelSize, 15))
}

// Smooth applies a Gaussian blur of the given sigma to a frame ahead of detection. A
// non-positive sigma returns an unmodified clone. The caller owns the result.
func Smooth(src gocv.Mat, sigma float64) (gocv.Mat, error) {
	if err := safe.ValidateFrame(src, "gaussian smoothing"); err != nil {
		return gocv.NewMat(), fmt.Errorf("validation failed: %w", err)
	}

	if sigma <= 0 {
		return src.Clone(), nil
	}

	k := KernelSize(sigma)
	dst := gocv.NewMat()
	gocv.GaussianBlur(src, &dst, image.Pt(k, k), sigma, sigma, gocv.BorderDefault)
	return dst, nil
}
