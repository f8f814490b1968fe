package safe

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// ErrEmptyMat is returned for frames that carry no pixels.
var ErrEmptyMat = errors.New("mat is empty")

func ValidateMatForOperation(mat gocv.Mat, operation string) error {
	if mat.Empty() {
		return fmt.Errorf("%w for operation: %s", ErrEmptyMat, operation)
	}

	if mat.Rows() <= 0 || mat.Cols() <= 0 {
		return fmt.Errorf("Mat has invalid dimensions %dx%d for operation: %s",
			mat.Cols(), mat.Rows(), operation)
	}

	return nil
}

// ValidateFrame accepts 8-bit intensity, BGR and BGRA frames.
func ValidateFrame(mat gocv.Mat, operation string) error {
	if err := ValidateMatForOperation(mat, operation); err != nil {
		return err
	}

	switch mat.Type() {
	case gocv.MatTypeCV8UC1, gocv.MatTypeCV8UC3, gocv.MatTypeCV8UC4:
		return nil
	default:
		return fmt.Errorf("unsupported MatType %d for operation: %s", int(mat.Type()), operation)
	}
}

func ValidateDimensions(width, height int, operation string) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d for operation: %s", width, height, operation)
	}

	if width > 32768 || height > 32768 {
		return fmt.Errorf("dimensions %dx%d exceed maximum size for operation: %s", width, height, operation)
	}

	return nil
}

// ClipRegion intersects r with the mat bounds and rejects an empty result.
func ClipRegion(mat gocv.Mat, r image.Rectangle, operation string) (image.Rectangle, error) {
	clipped := r.Intersect(image.Rect(0, 0, mat.Cols(), mat.Rows()))
	if clipped.Empty() {
		return image.Rectangle{}, fmt.Errorf("region %v outside %dx%d for operation: %s",
			r, mat.Cols(), mat.Rows(), operation)
	}
	return clipped, nil
}
