package marker

import (
	"image"
	"image/color"
	"testing"

	"fiducial-detector/internal/opencv/conversion"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"
)

// Interior layouts of 7x7 cell markers; the outer ring of cells is always black.
var (
	cornerBlock = [5]string{
		"XXX..",
		"XXX..",
		"XXX..",
		".....",
		".....",
	}
	emptyInterior = [5]string{
		".....",
		".....",
		".....",
		".....",
		".....",
	}
)

// patternImage renders a marker layout with square cells of the given size.
func patternImage(interior [5]string, cell int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 7*cell, 7*cell))
	for cy := 0; cy < 7; cy++ {
		for cx := 0; cx < 7; cx++ {
			black := cx == 0 || cy == 0 || cx == 6 || cy == 6 || interior[cy-1][cx-1] == 'X'
			if black {
				continue
			}
			for y := cy * cell; y < (cy+1)*cell; y++ {
				for x := cx * cell; x < (cx+1)*cell; x++ {
					img.SetGray(x, y, color.Gray{Y: 255})
				}
			}
		}
	}
	return img
}

// rotatedCCW turns img k quarter turns counter-clockwise.
func rotatedCCW(img image.Image, k int) image.Image {
	for i := 0; i < k%4; i++ {
		img = imaging.Rotate90(img)
	}
	return img
}

// markerFrame places pattern on a white size×size canvas with its top-left corner at origin.
func markerFrame(t *testing.T, pattern image.Image, size int, origin image.Point) gocv.Mat {
	t.Helper()

	canvas := image.NewGray(image.Rect(0, 0, size, size))
	for i := range canvas.Pix {
		canvas.Pix[i] = 255
	}
	b := pattern.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			canvas.Set(origin.X+x-b.Min.X, origin.Y+y-b.Min.Y, pattern.At(x, y))
		}
	}

	mat, err := conversion.ImageToMat(canvas)
	if err != nil {
		t.Fatalf("ImageToMat: %v", err)
	}
	return mat
}

func grayMat(t *testing.T, img image.Image) gocv.Mat {
	t.Helper()
	mat, err := conversion.ImageToGray(img)
	if err != nil {
		t.Fatalf("ImageToGray: %v", err)
	}
	return mat
}

func near(a, b image.Point, tol int) bool {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx >= -tol && dx <= tol && dy >= -tol && dy <= tol
}

// imageScaled enlarges img by an integer factor without smoothing.
func imageScaled(img image.Image, factor int) image.Image {
	b := img.Bounds()
	return imaging.Resize(img, b.Dx()*factor, b.Dy()*factor, imaging.NearestNeighbor)
}
