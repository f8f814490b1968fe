// Package camera holds intrinsic calibration of the capturing camera. The detector carries
// it alongside its results; nothing in this module computes pose from it.
package camera

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

var ErrInvalidParameters = errors.New("invalid camera parameters")

// Parameters is the pinhole intrinsics plus lens distortion, as produced by a calibration run.
type Parameters struct {
	Width        int           `json:"width,omitempty"`
	Height       int           `json:"height,omitempty"`
	CameraMatrix [3][3]float64 `json:"camera_matrix"`
	DistCoeffs   []float64     `json:"dist_coeffs"`
}

// FocalLength returns (fx, fy).
func (p *Parameters) FocalLength() (float64, float64) {
	return p.CameraMatrix[0][0], p.CameraMatrix[1][1]
}

// PrincipalPoint returns (cx, cy).
func (p *Parameters) PrincipalPoint() (float64, float64) {
	return p.CameraMatrix[0][2], p.CameraMatrix[1][2]
}

func (p *Parameters) Validate() error {
	fx, fy := p.FocalLength()
	if fx <= 0 || fy <= 0 {
		return fmt.Errorf("%w: focal lengths must be positive, got fx=%v fy=%v", ErrInvalidParameters, fx, fy)
	}
	if p.CameraMatrix[2] != [3]float64{0, 0, 1} {
		return fmt.Errorf("%w: last camera_matrix row must be [0 0 1], got %v", ErrInvalidParameters, p.CameraMatrix[2])
	}
	switch len(p.DistCoeffs) {
	case 0, 4, 5, 8, 12, 14:
	default:
		return fmt.Errorf("%w: unsupported dist_coeffs length %d", ErrInvalidParameters, len(p.DistCoeffs))
	}
	for i, c := range p.DistCoeffs {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("%w: dist_coeffs[%d] is not finite", ErrInvalidParameters, i)
		}
	}
	if p.Width < 0 || p.Height < 0 {
		return fmt.Errorf("%w: negative image size %dx%d", ErrInvalidParameters, p.Width, p.Height)
	}
	return nil
}

// Decode reads and validates a JSON calibration document.
func Decode(r io.Reader) (*Parameters, error) {
	var p Parameters
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode camera parameters: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Load reads calibration from a JSON file.
func Load(path string) (*Parameters, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open camera parameters: %w", err)
	}
	defer f.Close()

	p, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}
