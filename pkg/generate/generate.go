// Package generate builds the poster atlas, tip card and painting for one
// input index.
//
// Every generator reads from a shared, read-only [RunContext] and returns a
// fresh image; templates are copied before anything is drawn on them, so the
// generators are safe to call concurrently for different indices.
package generate

import (
	"image"

	"github.com/matzehuels/lethalposters/pkg/composite"
	"github.com/matzehuels/lethalposters/pkg/errors"
	"github.com/matzehuels/lethalposters/pkg/geometry"
	"github.com/matzehuels/lethalposters/pkg/output"
	"github.com/matzehuels/lethalposters/pkg/source"
)

// RunContext is the immutable state shared by every generator call of a run.
type RunContext struct {
	posters  *source.Template
	painting *source.Template
	images   *source.Set
	spec     output.Spec
}

// NewRunContext validates and bundles the run inputs.
func NewRunContext(posters, painting *source.Template, images *source.Set, spec output.Spec) (*RunContext, error) {
	if posters == nil || painting == nil {
		return nil, errors.New(errors.ErrCodeTemplateLoad, "both the posters and painting templates are required")
	}
	if images == nil || images.Len() == 0 {
		return nil, errors.New(errors.ErrCodeEmptySource, "could not find any input images")
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &RunContext{posters: posters, painting: painting, images: images, spec: spec}, nil
}

// Len returns the number of input images, which is also the number of indices
// a batch processes.
func (rc *RunContext) Len() int { return rc.images.Len() }

// Spec returns the output configuration of the run.
func (rc *RunContext) Spec() output.Spec { return rc.spec }

// Images returns the input image set.
func (rc *RunContext) Images() *source.Set { return rc.images }

// Release drops the images held by the run. The context must not be used afterwards.
func (rc *RunContext) Release() {
	rc.images.Release()
	rc.posters = nil
	rc.painting = nil
}

// Atlas composes five consecutive images, starting at index, onto a copy of
// the posters template. Image index+k fills atlas slot k.
func Atlas(rc *RunContext, index int) (*image.NRGBA, error) {
	base := rc.posters.Copy()
	regions := geometry.AtlasRegions()

	posters := make([]*image.NRGBA, len(regions))
	for k := range regions {
		img, err := rc.images.Get(index + k)
		if err != nil {
			return nil, err
		}
		posters[k] = img
	}

	for k, r := range regions {
		composite.Place(base, posters[k], r, composite.Contain, composite.TopRight)
	}
	return base, nil
}

// Tip draws the image at index onto a blank tip canvas. The canvas mode
// follows the output format: transparent RGBA for PNG, black RGB for JPEG.
func Tip(rc *RunContext, index int) (*image.NRGBA, error) {
	base := composite.NewCanvas(geometry.TipSize(), rc.spec.Mode())
	img, err := rc.images.Get(index)
	if err != nil {
		return nil, err
	}
	return composite.Place(base, img, geometry.TipRegion(), composite.Contain, composite.TopRight), nil
}

// Painting fills the painting frame of a copy of the painting template with
// the image at index, cropped to the exact frame size.
func Painting(rc *RunContext, index int) (*image.NRGBA, error) {
	base := rc.painting.Copy()
	img, err := rc.images.Get(index)
	if err != nil {
		return nil, err
	}
	return composite.Place(base, img, geometry.PaintingRegion(), composite.CoverCrop, composite.TopLeft), nil
}

// Func generates one output image for an input index.
type Func func(rc *RunContext, index int) (*image.NRGBA, error)

// Generator pairs an output category with the function producing it.
type Generator struct {
	Category output.Category
	Generate Func
}

// Generators lists the generators in the order a batch runs them.
var Generators = []Generator{
	{Category: output.Posters, Generate: Atlas},
	{Category: output.Tips, Generate: Tip},
	{Category: output.Paintings, Generate: Painting},
}

// Result is one generated image and the category it belongs to.
type Result struct {
	Category output.Category
	Image    *image.NRGBA
}

// All runs every generator for index. For JPEG output all three images are
// converted to RGB before they are returned.
func All(rc *RunContext, index int) ([]Result, error) {
	results := make([]Result, 0, len(Generators))
	for _, g := range Generators {
		img, err := g.Generate(rc, index)
		if err != nil {
			return nil, err
		}
		if !rc.spec.Format.IsPNG() {
			img = composite.ToRGB(img)
		}
		results = append(results, Result{Category: g.Category, Image: img})
	}
	return results, nil
}
