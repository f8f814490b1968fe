package conversion

import (
	"image"
	"image/color"
	"testing"

	"gocv.io/x/gocv"
)

func TestToGray_Channels(t *testing.T) {
	tests := []struct {
		name    string
		matType gocv.MatType
	}{
		{"intensity", gocv.MatTypeCV8UC1},
		{"bgr", gocv.MatTypeCV8UC3},
		{"bgra", gocv.MatTypeCV8UC4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src := gocv.NewMatWithSize(12, 20, tc.matType)
			defer src.Close()

			gray, err := ToGray(src)
			if err != nil {
				t.Fatalf("ToGray: %v", err)
			}
			defer gray.Close()

			if gray.Channels() != 1 {
				t.Errorf("channels: got %d, want 1", gray.Channels())
			}
			if gray.Rows() != 12 || gray.Cols() != 20 {
				t.Errorf("size: got %dx%d, want 20x12", gray.Cols(), gray.Rows())
			}
		})
	}
}

func TestToGray_EmptyFrame(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()

	gray, err := ToGray(empty)
	defer gray.Close()
	if err == nil {
		t.Fatal("expected error for empty frame")
	}
}

func TestToGray_UnsupportedType(t *testing.T) {
	src := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV32FC1)
	defer src.Close()

	gray, err := ToGray(src)
	defer gray.Close()
	if err == nil {
		t.Fatal("expected error for float frame")
	}
}

func TestImageToGray_UsesLuminance(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	img.Set(0, 0, color.RGBA{A: 255})

	gray, err := ImageToGray(img)
	if err != nil {
		t.Fatalf("ImageToGray: %v", err)
	}
	defer gray.Close()

	if v := gray.GetUCharAt(0, 0); v != 0 {
		t.Errorf("black pixel: got %d", v)
	}
	if v := gray.GetUCharAt(3, 3); v != 255 {
		t.Errorf("white pixel: got %d", v)
	}
}

func TestImageToMat_Gray(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 6, 3))
	img.SetGray(5, 2, color.Gray{Y: 200})

	mat, err := ImageToMat(img)
	if err != nil {
		t.Fatalf("ImageToMat: %v", err)
	}
	defer mat.Close()

	if mat.Channels() != 1 {
		t.Fatalf("channels: got %d, want 1", mat.Channels())
	}
	if v := mat.GetUCharAt(2, 5); v != 200 {
		t.Errorf("pixel (5,2): got %d, want 200", v)
	}
}

func TestImageToMat_Nil(t *testing.T) {
	if _, err := ImageToMat(nil); err == nil {
		t.Fatal("expected error for nil image")
	}
}

func TestMatToImage_RoundTrip(t *testing.T) {
	src := gocv.NewMatWithSize(5, 7, gocv.MatTypeCV8UC1)
	defer src.Close()
	src.SetUCharAt(1, 2, 77)

	img, err := MatToImage(src)
	if err != nil {
		t.Fatalf("MatToImage: %v", err)
	}

	gray, ok := img.(*image.Gray)
	if !ok {
		t.Fatalf("expected *image.Gray, got %T", img)
	}
	if v := gray.GrayAt(2, 1).Y; v != 77 {
		t.Errorf("pixel (2,1): got %d, want 77", v)
	}
}
