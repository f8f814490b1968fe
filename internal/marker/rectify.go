package marker

import (
	"fmt"
	"image"

	"fiducial-detector/internal/geometry"
	"fiducial-detector/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// CanonicalCorners is the destination square of rectification. Quad point 0 lands on
// (0,L), 1 on (0,0), 2 on (L,0) and 3 on (L,L); this fixes which physical edge reads as
// rotation 0 and must not change, or existing dictionaries report shifted rotations.
func CanonicalCorners(side int) [4]geometry.Point2D {
	l := float64(side)
	return [4]geometry.Point2D{
		{X: 0, Y: l},
		{X: 0, Y: 0},
		{X: l, Y: 0},
		{X: l, Y: l},
	}
}

// LocalRegion is the crop rectification works on: the quad's bounding box grown by one
// pixel for interpolation and clipped to the frame.
func LocalRegion(q Quad, frame image.Rectangle) image.Rectangle {
	return q.Bounds().Inset(-1).Intersect(frame)
}

// RectifyTransform returns the homography taking the quad, expressed relative to origin,
// onto the canonical square.
func RectifyTransform(q Quad, origin image.Point, side int) (geometry.Homography, error) {
	var src [4]geometry.Point2D
	for i, p := range q {
		src[i] = geometry.FromImagePoint(p.Sub(origin))
	}
	return geometry.NewHomography(src, CanonicalCorners(side))
}

// Rectify resamples the quad's area of an intensity frame into a side×side patch, as if
// the marker plane were viewed head-on. The caller owns the returned Mat.
func Rectify(gray gocv.Mat, q Quad, side int) (gocv.Mat, error) {
	if err := safe.ValidateMatForOperation(gray, "rectification"); err != nil {
		return gocv.NewMat(), err
	}

	region, err := safe.ClipRegion(gray, LocalRegion(q, image.Rect(0, 0, gray.Cols(), gray.Rows())), "rectification")
	if err != nil {
		return gocv.NewMat(), err
	}

	h, err := RectifyTransform(q, region.Min, side)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("rectify transform: %w", err)
	}

	local := gray.Region(region)
	defer local.Close()

	m := homographyMat(h)
	defer m.Close()

	dst := gocv.NewMat()
	gocv.WarpPerspective(local, &dst, m, image.Pt(side, side))
	return dst, nil
}

func homographyMat(h geometry.Homography) gocv.Mat {
	m := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV64FC1)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			m.SetDoubleAt(r, c, h[r*3+c])
		}
	}
	return m
}
