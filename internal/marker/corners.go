package marker

import (
	"fmt"
	"image"

	"fiducial-detector/internal/geometry"

	"gocv.io/x/gocv"
)

// Corner refinement search parameters: a 5x5 window, no dead zone, stopping after 30
// iterations or once a corner moves less than 0.1px.
var (
	refineWindow   = image.Pt(5, 5)
	refineZeroZone = image.Pt(-1, -1)
	refineCriteria = gocv.NewTermCriteria(gocv.Count|gocv.EPS, 30, 0.1)
)

// Corners are the sub-pixel marker corners, ordered (p1, p0, p2, p3) relative to the
// detection order of the quad they were refined from.
type Corners [4]geometry.Point2D

// cornerOrder converts detection order into corner order.
func cornerOrder(q Quad) Corners {
	return Corners{
		geometry.FromImagePoint(q[1]),
		geometry.FromImagePoint(q[0]),
		geometry.FromImagePoint(q[2]),
		geometry.FromImagePoint(q[3]),
	}
}

// RefineCorners reorders the quad's vertices into corner order and moves each one to the
// sub-pixel corner location found by OpenCV in the intensity frame.
func RefineCorners(gray gocv.Mat, q Quad) (Corners, error) {
	corners := cornerOrder(q)
	if gray.Empty() || gray.Channels() != 1 {
		return corners, fmt.Errorf("corner refinement requires an intensity frame")
	}

	buf := gocv.NewMatWithSize(4, 2, gocv.MatTypeCV32FC1)
	defer buf.Close()
	for i, c := range corners {
		buf.SetFloatAt(i, 0, float32(c.X))
		buf.SetFloatAt(i, 1, float32(c.Y))
	}

	// cornerSubPix expects a column of 2-channel float points; the reshape shares buf's data.
	points := buf.Reshape(2, 4)
	defer points.Close()

	gocv.CornerSubPix(gray, &points, refineWindow, refineZeroZone, refineCriteria)

	for i := range corners {
		corners[i] = geometry.NewPoint2D(float64(buf.GetFloatAt(i, 0)), float64(buf.GetFloatAt(i, 1)))
	}
	return corners, nil
}
