// Package dictionary builds marker dictionaries from directories of pattern images.
package dictionary

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"fiducial-detector/internal/marker"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultGlob matches the pattern files of a marker set.
const DefaultGlob = "*.jpg"

var ErrNoPatterns = errors.New("no marker patterns found")

type file struct {
	id   int
	name string
	path string
}

// ParseID extracts the marker identifier from a pattern file name: the leading run of
// digits of the base name, so "12.jpg" and "012_arrow.png" both yield 12.
func ParseID(name string) (int, error) {
	base := filepath.Base(name)
	end := strings.IndexFunc(base, func(r rune) bool { return !unicode.IsDigit(r) })
	if end == -1 {
		end = len(base)
	}
	if end == 0 {
		return 0, fmt.Errorf("file name %q does not start with a marker id", base)
	}
	id, err := strconv.Atoi(base[:end])
	if err != nil {
		return 0, fmt.Errorf("file name %q: %w", base, err)
	}
	return id, nil
}

// LoadDir reads every file of dir matching glob into a dictionary ordered by id, then by
// file name. Duplicate ids are kept; the first in that order wins at match time.
func LoadDir(dir, glob string) (marker.Dictionary, error) {
	if glob == "" {
		glob = DefaultGlob
	}

	paths, err := filepath.Glob(filepath.Join(dir, glob))
	if err != nil {
		return nil, fmt.Errorf("match %q: %w", glob, err)
	}

	files := make([]file, 0, len(paths))
	for _, path := range paths {
		id, err := ParseID(path)
		if err != nil {
			return nil, err
		}
		files = append(files, file{id: id, name: filepath.Base(path), path: path})
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s matching %q", ErrNoPatterns, dir, glob)
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].id != files[j].id {
			return files[i].id < files[j].id
		}
		return files[i].name < files[j].name
	})

	dict := make(marker.Dictionary, 0, len(files))
	for _, f := range files {
		img, err := imaging.Open(f.path)
		if err != nil {
			return nil, fmt.Errorf("load pattern %s: %w", f.name, err)
		}
		dict = dict.Add(f.id, img)
	}
	return dict, nil
}
