package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrDegenerate is returned when four correspondences do not define a projective transform,
// e.g. three of the source points are collinear.
var ErrDegenerate = errors.New("degenerate point correspondence")

// Homography is a planar projective transform stored row-major with H[8] normalised to 1.
type Homography [9]float64

// NewHomography solves the transform mapping src[i] onto dst[i] for all four points.
//
// With h33 fixed to 1 each correspondence (x,y)->(u,v) contributes two rows:
//
//	[x y 1 0 0 0 -ux -uy] h = u
//	[0 0 0 x y 1 -vx -vy] h = v
func NewHomography(src, dst [4]Point2D) (Homography, error) {
	A := mat.NewDense(8, 8, nil)
	B := mat.NewVecDense(8, nil)

	for i := 0; i < 4; i++ {
		x, y := src[i].X, src[i].Y
		u, v := dst[i].X, dst[i].Y

		A.SetRow(2*i, []float64{x, y, 1, 0, 0, 0, -u * x, -u * y})
		A.SetRow(2*i+1, []float64{0, 0, 0, x, y, 1, -v * x, -v * y})
		B.SetVec(2*i, u)
		B.SetVec(2*i+1, v)
	}

	var params mat.VecDense
	if err := params.SolveVec(A, B); err != nil {
		return Homography{}, fmt.Errorf("%w: %v", ErrDegenerate, err)
	}

	var h Homography
	for i := 0; i < 8; i++ {
		h[i] = params.AtVec(i)
		if math.IsNaN(h[i]) || math.IsInf(h[i], 0) {
			return Homography{}, ErrDegenerate
		}
	}
	h[8] = 1

	return h, nil
}

// Apply maps a point through the transform.
func (h Homography) Apply(p Point2D) Point2D {
	w := h[6]*p.X + h[7]*p.Y + h[8]
	return Point2D{
		X: (h[0]*p.X + h[1]*p.Y + h[2]) / w,
		Y: (h[3]*p.X + h[4]*p.Y + h[5]) / w,
	}
}
