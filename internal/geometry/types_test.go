package geometry

import (
	"image"
	"testing"
)

func TestBoundingBox(t *testing.T) {
	tests := []struct {
		name   string
		points []image.Point
		want   image.Rectangle
	}{
		{
			name:   "empty",
			points: nil,
			want:   image.Rectangle{},
		},
		{
			name:   "single point",
			points: []image.Point{{5, 7}},
			want:   image.Rect(5, 7, 6, 8),
		},
		{
			name:   "quad",
			points: []image.Point{{10, 40}, {12, 8}, {50, 11}, {47, 45}},
			want:   image.Rect(10, 8, 51, 46),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := BoundingBox(tc.points)
			if got != tc.want {
				t.Errorf("BoundingBox() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSquaredDistance(t *testing.T) {
	if d := SquaredDistance(image.Pt(0, 0), image.Pt(3, 4)); d != 25 {
		t.Errorf("SquaredDistance = %d, want 25", d)
	}
	if d := FromImagePoint(image.Pt(3, 4)).Distance(Point2D{}); d != 5 {
		t.Errorf("Distance = %v, want 5", d)
	}
}
