package marker

import (
	"fmt"
	"image"

	"fiducial-detector/internal/opencv/conversion"
	"fiducial-detector/internal/processing/threshold"

	"gocv.io/x/gocv"
)

// Match identifies a recognized marker. Rotation is the number of 90° counter-clockwise
// turns of the reference pattern that best agreed with the patch.
type Match struct {
	ID        int     `json:"id"`
	Rotation  int     `json:"rotation"`
	Agreement float64 `json:"agreement"`
}

type reference struct {
	id        int
	rotations [4]gocv.Mat
}

func (r *reference) close() {
	for i := range r.rotations {
		r.rotations[i].Close()
	}
}

// Matcher holds the binarized, resized and rotated dictionary patterns for one call.
type Matcher struct {
	refs  []reference
	side  int
	limit float64
}

// NewMatcher prepares every dictionary entry at side×side. The matcher must be closed.
func NewMatcher(dict Dictionary, side int, limit float64) (*Matcher, error) {
	if side <= 0 {
		return nil, fmt.Errorf("invalid side length %d", side)
	}

	m := &Matcher{side: side, limit: limit}
	for _, entry := range dict {
		ref, err := prepareReference(entry, side)
		if err != nil {
			m.Close()
			return nil, fmt.Errorf("dictionary entry %d: %w", entry.ID, err)
		}
		m.refs = append(m.refs, ref)
	}
	return m, nil
}

func prepareReference(entry Entry, side int) (reference, error) {
	ref := reference{id: entry.ID}

	gray, err := conversion.ImageToGray(entry.Pattern)
	if err != nil {
		return ref, err
	}
	defer gray.Close()

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(gray, &resized, image.Pt(side, side), 0, 0, gocv.InterpolationLinear)

	bin, _, err := threshold.Binarize(resized)
	if err != nil {
		bin.Close()
		return ref, err
	}

	ref.rotations[0] = bin
	for i := 1; i < len(ref.rotations); i++ {
		next := gocv.NewMat()
		gocv.Rotate(ref.rotations[i-1], &next, gocv.Rotate90CounterClockwise)
		ref.rotations[i] = next
	}
	return ref, nil
}

// Match binarizes a rectified patch and walks the dictionary in order. The first entry
// whose best rotation agrees on more than the limit fraction of pixels is returned; a nil
// Match means nothing qualified.
func (m *Matcher) Match(patch gocv.Mat) (*Match, error) {
	if patch.Rows() != m.side || patch.Cols() != m.side {
		return nil, fmt.Errorf("patch is %dx%d, matcher expects %dx%d",
			patch.Cols(), patch.Rows(), m.side, m.side)
	}

	bin, _, err := threshold.Binarize(patch)
	if err != nil {
		return nil, err
	}
	defer bin.Close()

	eq := gocv.NewMat()
	defer eq.Close()

	for _, ref := range m.refs {
		best, rotation := 0.0, 0
		for i, rot := range ref.rotations {
			if a := m.agreement(bin, rot, &eq); a > best {
				best, rotation = a, i
			}
		}
		if best > m.limit {
			return &Match{ID: ref.id, Rotation: rotation, Agreement: best}, nil
		}
	}
	return nil, nil
}

// agreement is the fraction of positions where a and b hold the same value.
func (m *Matcher) agreement(a, b gocv.Mat, scratch *gocv.Mat) float64 {
	gocv.Compare(a, b, scratch, gocv.CompareEQ)
	return float64(gocv.CountNonZero(*scratch)) / float64(m.side*m.side)
}

// Len is the number of prepared dictionary entries.
func (m *Matcher) Len() int {
	return len(m.refs)
}

func (m *Matcher) Close() {
	for i := range m.refs {
		m.refs[i].close()
	}
	m.refs = nil
}
