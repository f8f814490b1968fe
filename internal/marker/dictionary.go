package marker

import (
	"fmt"
	"image"
)

// Entry pairs a marker identifier with its reference pattern. The pattern may have any
// resolution and color model; it is reduced to a binary side×side grid before matching.
type Entry struct {
	ID      int
	Pattern image.Image
}

// Dictionary is an ordered pattern library. Matching stops at the first entry that clears
// the match limit, so the order of entries decides between ambiguous patterns.
type Dictionary []Entry

// Add appends an entry and returns the extended dictionary.
func (d Dictionary) Add(id int, pattern image.Image) Dictionary {
	return append(d, Entry{ID: id, Pattern: pattern})
}

// IDs lists identifiers in matching order.
func (d Dictionary) IDs() []int {
	ids := make([]int, len(d))
	for i, e := range d {
		ids[i] = e.ID
	}
	return ids
}

func (d Dictionary) Validate() error {
	for i, e := range d {
		if e.Pattern == nil {
			return fmt.Errorf("dictionary entry %d (id %d) has no pattern", i, e.ID)
		}
		if e.Pattern.Bounds().Empty() {
			return fmt.Errorf("dictionary entry %d (id %d) has an empty pattern", i, e.ID)
		}
	}
	return nil
}
