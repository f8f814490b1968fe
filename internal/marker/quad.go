package marker

import (
	"image"

	"fiducial-detector/internal/geometry"
)

// Quad is a four point polygon approximation of a contour, in detection order.
type Quad [4]image.Point

// NewQuad builds a Quad from an approximated polygon; ok is false unless the polygon has
// exactly four vertices.
func NewQuad(points []image.Point) (Quad, bool) {
	var q Quad
	if len(points) != 4 {
		return q, false
	}
	copy(q[:], points)
	return q, true
}

// Points returns the vertices as a slice.
func (q Quad) Points() []image.Point {
	return q[:]
}

// Bounds is the LocalRegion of the quad: the pixel box holding all four vertices.
func (q Quad) Bounds() image.Rectangle {
	return geometry.BoundingBox(q[:])
}

// IsProbableMarker is the cheap plausibility filter for marker outlines: a polygon passes
// only with exactly four vertices and a shorter diagonal (0-2 or 1-3) of at least limit
// pixels. Convexity and aspect ratio are left to rectification and matching.
func IsProbableMarker(points []image.Point, limit int) bool {
	if len(points) != 4 {
		return false
	}

	d := min(
		geometry.SquaredDistance(points[0], points[2]),
		geometry.SquaredDistance(points[1], points[3]),
	)
	if d >= limit*limit {
		return true
	}
	return false
}
