// Package source holds the decoded input images and templates of a run.
//
// A [Set] is built once at startup from the input directory and is read-only
// afterwards. [Set.Get] resolves any non-negative index cyclically, so a batch
// may ask for more images than were discovered:
//
//	set, err := source.Load(ctx, "input", logger)
//	img, err := set.Get(4) // with three inputs, a copy of image 1
package source

import (
	"context"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/matzehuels/lethalposters/pkg/errors"
)

// Extensions lists the input file extensions, matched case-insensitively.
var Extensions = []string{".png", ".jpg", ".jpeg"}

// Set is an ordered collection of decoded input images.
// It is safe for concurrent reads.
type Set struct {
	images []*image.NRGBA
	names  []string
}

// New creates a set from already decoded images. Names default to the index.
func New(images ...image.Image) *Set {
	s := &Set{}
	for _, img := range images {
		s.add("", img)
	}
	return s
}

func (s *Set) add(name string, img image.Image) {
	s.images = append(s.images, imaging.Clone(img))
	s.names = append(s.names, name)
}

// Len returns the number of images in the set.
func (s *Set) Len() int {
	return len(s.images)
}

// Name returns the file name image i was loaded from, or "" for in-memory images.
func (s *Set) Name(i int) string {
	if i < 0 || len(s.names) == 0 {
		return ""
	}
	return s.names[i%len(s.names)]
}

// Get returns an independent copy of the image at position i mod Len.
// Callers may mutate the result freely.
func (s *Set) Get(i int) (*image.NRGBA, error) {
	if len(s.images) == 0 {
		return nil, errors.New(errors.ErrCodeEmptySource, "no input images to read index %d from", i)
	}
	if i < 0 {
		return nil, errors.New(errors.ErrCodeCyclicIndex, "negative image index %d", i)
	}
	return imaging.Clone(s.images[i%len(s.images)]), nil
}

// Release drops every image reference held by the set.
func (s *Set) Release() {
	s.images = nil
	s.names = nil
}

// IsImageFile reports whether name has one of the accepted [Extensions].
func IsImageFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Discover lists the image files directly inside dir, in file-name order.
// Sub-directories and files with other extensions are skipped.
func Discover(dir string, logger *log.Logger) ([]string, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeEmptySource, err, "read input directory %s", dir)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !IsImageFile(e.Name()) {
			logger.Debug("skipping non-image file", "file", e.Name())
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}

// Load discovers and decodes every image in dir.
// A file that fails to decode aborts the load; an empty result is an
// EMPTY_SOURCE error.
func Load(ctx context.Context, dir string, logger *log.Logger) (*Set, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	paths, err := Discover(dir, logger)
	if err != nil {
		return nil, err
	}

	s := &Set{}
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := imaging.Open(p)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInputDecode, err, "decode input image %s", p)
		}
		logger.Debug("loaded input image", "index", s.Len(), "file", filepath.Base(p),
			"width", img.Bounds().Dx(), "height", img.Bounds().Dy())
		s.add(filepath.Base(p), img)
	}

	if s.Len() == 0 {
		return nil, errors.New(errors.ErrCodeEmptySource, "could not find any input images in %s", dir)
	}
	return s, nil
}
