package capture

import (
	"errors"
	"image"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		target string
		kind   Kind
		device int
	}{
		{"0", KindDevice, 0},
		{"2", KindDevice, 2},
		{"frame.JPG", KindImage, 0},
		{"/data/scan.tiff", KindImage, 0},
		{"clip.avi", KindVideo, 0},
		{"rtsp://camera/stream", KindVideo, 0},
		{"-1", KindVideo, 0},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			kind, device := Classify(tt.target)
			if kind != tt.kind || device != tt.device {
				t.Errorf("Classify(%q) = (%v, %d), want (%v, %d)", tt.target, kind, device, tt.kind, tt.device)
			}
		})
	}
}

func TestImageSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	if err := imaging.Save(image.NewGray(image.Rect(0, 0, 64, 48)), path); err != nil {
		t.Fatal(err)
	}

	src, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if src.Kind() != KindImage || src.Name() != path {
		t.Errorf("got %v %q", src.Kind(), src.Name())
	}

	frame := gocv.NewMat()
	defer frame.Close()
	for i := 0; i < 2; i++ {
		if err := src.Read(&frame); err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if frame.Cols() != 64 || frame.Rows() != 48 || frame.Channels() != 3 {
			t.Errorf("read %d: got %dx%d with %d channels", i, frame.Cols(), frame.Rows(), frame.Channels())
		}
	}

	src.Shutdown()
	if err := src.Read(&frame); !errors.Is(err, ErrClosed) {
		t.Errorf("read after shutdown: err = %v, want ErrClosed", err)
	}
}

func TestOpen_Missing(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"missing.png", "missing.avi"} {
		if _, err := Open(filepath.Join(dir, name), nil); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
