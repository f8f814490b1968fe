package marker

import (
	"image"

	"fiducial-detector/internal/camera"

	"gocv.io/x/gocv"
)

// Marker is a detected quad. Match is nil when detection ran without a dictionary.
type Marker struct {
	Points  Quad    `json:"points"`
	Corners Corners `json:"corners"`
	Match   *Match  `json:"match,omitempty"`
}

func (m Marker) Recognized() bool {
	return m.Match != nil
}

// Result is the outcome of one Detect call.
type Result struct {
	Markers []Marker

	// Threshold is the binary image contours were traced on; set only in debug mode and
	// owned by the caller until Close.
	Threshold *gocv.Mat

	// Camera is the calibration that was in effect for the call, if any.
	Camera *camera.Parameters
}

func (r *Result) Close() {
	if r == nil || r.Threshold == nil {
		return
	}
	r.Threshold.Close()
	r.Threshold = nil
}

// Points returns the approximate corners of every marker, in result order.
func (r *Result) Points() [][4]image.Point {
	out := make([][4]image.Point, len(r.Markers))
	for i, m := range r.Markers {
		out[i] = m.Points
	}
	return out
}
