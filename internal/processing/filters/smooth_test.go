package filters

import (
	"testing"

	"gocv.io/x/gocv"
)

func TestKernelSize(t *testing.T) {
	tests := []struct {
		sigma float64
		want  int
	}{
		{0.1, 3},
		{1, 7},
		{1.5, 11},
		{2, 13},
		{10, 15},
	}

	for _, tt := range tests {
		if got := KernelSize(tt.sigma); got != tt.want {
			t.Errorf("KernelSize(%v) = %d, want %d", tt.sigma, got, tt.want)
		}
	}
}

func TestSmooth(t *testing.T) {
	src := gocv.NewMatWithSize(40, 40, gocv.MatTypeCV8UC1)
	defer src.Close()
	src.SetTo(gocv.NewScalar(0, 0, 0, 0))
	src.SetUCharAt(20, 20, 255)

	t.Run("zero sigma clones", func(t *testing.T) {
		dst, err := Smooth(src, 0)
		if err != nil {
			t.Fatalf("Smooth: %v", err)
		}
		defer dst.Close()
		if dst.GetUCharAt(20, 20) != 255 || gocv.CountNonZero(dst) != 1 {
			t.Error("zero sigma modified the frame")
		}
	})

	t.Run("spreads a point", func(t *testing.T) {
		dst, err := Smooth(src, 1)
		if err != nil {
			t.Fatalf("Smooth: %v", err)
		}
		defer dst.Close()
		if dst.GetUCharAt(20, 20) >= 255 {
			t.Error("peak not attenuated")
		}
		if gocv.CountNonZero(dst) <= 1 {
			t.Error("point not spread to neighbours")
		}
	})

	t.Run("rejects empty", func(t *testing.T) {
		empty := gocv.NewMat()
		defer empty.Close()
		if _, err := Smooth(empty, 1); err == nil {
			t.Error("expected error")
		}
	})
}
