package conversion

import (
	"fmt"
	"image"

	"fiducial-detector/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// ToGray converts a BGR or BGRA frame to single-channel intensity using OpenCV's
// BT.601 weights. Intensity frames are cloned so the caller always owns the result.
func ToGray(src gocv.Mat) (gocv.Mat, error) {
	if err := safe.ValidateFrame(src, "grayscale conversion"); err != nil {
		return gocv.NewMat(), fmt.Errorf("validation failed: %w", err)
	}

	if src.Channels() == 1 {
		return src.Clone(), nil
	}

	dst := gocv.NewMat()

	switch src.Channels() {
	case 3:
		gocv.CvtColor(src, &dst, gocv.ColorBGRToGray)
	case 4:
		gocv.CvtColor(src, &dst, gocv.ColorBGRAToGray)
	default:
		dst.Close()
		return gocv.NewMat(), fmt.Errorf("unsupported channel count: %d", src.Channels())
	}

	return dst, nil
}

// ImageToMat converts a standard Go image to a Mat. *image.Gray becomes a single-channel
// Mat, every other model becomes BGR.
func ImageToMat(img image.Image) (gocv.Mat, error) {
	if img == nil {
		return gocv.NewMat(), fmt.Errorf("input image is nil")
	}

	bounds := img.Bounds()
	if err := safe.ValidateDimensions(bounds.Dx(), bounds.Dy(), "image to Mat conversion"); err != nil {
		return gocv.NewMat(), err
	}

	switch typedImg := img.(type) {
	case *image.Gray:
		return gocv.ImageGrayToMatGray(typedImg)
	default:
		return gocv.ImageToMatRGB(img)
	}
}

// ImageToGray converts any Go image straight to an intensity Mat.
func ImageToGray(img image.Image) (gocv.Mat, error) {
	mat, err := ImageToMat(img)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("image to Mat conversion failed: %w", err)
	}
	defer mat.Close()

	return ToGray(mat)
}

// MatToImage converts GoCV Mat to standard Go image
func MatToImage(src gocv.Mat) (image.Image, error) {
	if err := safe.ValidateFrame(src, "Mat to image conversion"); err != nil {
		return nil, err
	}

	return src.ToImage()
}
