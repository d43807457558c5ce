package source

import (
	"image"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/lethalposters/pkg/errors"
	"github.com/matzehuels/lethalposters/pkg/geometry"
)

// Default template file names, looked up in the working directory.
const (
	PostersTemplateFile  = "posters_template.png"
	PaintingTemplateFile = "painting_template.png"
)

// Template is a read-only base image. Generators draw on [Template.Copy],
// never on the template itself, so one template serves the whole batch.
type Template struct {
	name string
	img  *image.NRGBA
}

// NewTemplate wraps an already decoded image. Every region must fit inside
// the image bounds.
func NewTemplate(name string, img image.Image, regions ...geometry.Region) (*Template, error) {
	t := &Template{name: name, img: imaging.Clone(img)}
	for _, r := range regions {
		if err := r.Validate(t.img.Bounds()); err != nil {
			return nil, errors.Wrap(errors.ErrCodeTemplateLoad, err, "template %s cannot hold region %v", name, r)
		}
	}
	return t, nil
}

// LoadTemplate decodes the template at path and checks it against regions.
func LoadTemplate(path string, regions ...geometry.Region) (*Template, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeTemplateLoad, err, "load template %s", path)
	}
	return NewTemplate(filepath.Base(path), img, regions...)
}

// Name returns the template's file name.
func (t *Template) Name() string { return t.name }

// Bounds returns the template's bounds.
func (t *Template) Bounds() image.Rectangle { return t.img.Bounds() }

// Copy returns an independent, writable copy of the template.
func (t *Template) Copy() *image.NRGBA {
	return imaging.Clone(t.img)
}
