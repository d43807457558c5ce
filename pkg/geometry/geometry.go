// Package geometry holds the fixed pixel layout of every generated output.
//
// The values mirror the in-game texture atlases: five poster slots on the
// poster template, one painting frame on the painting template, and the
// standalone tip card. Slot order is significant; the k-th atlas region
// always receives the k-th fetched image.
package geometry

import (
	"fmt"
	"image"
)

// Region is a target rectangle inside a base canvas, in pixels.
type Region struct {
	X, Y          int
	Width, Height int
}

// Rect converts r to an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Min returns the top-left corner of r.
func (r Region) Min() image.Point {
	return image.Pt(r.X, r.Y)
}

// Size returns the width and height of r.
func (r Region) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// Validate checks that r has a positive area and, when bounds is non-empty,
// lies entirely within bounds.
func (r Region) Validate(bounds image.Rectangle) error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("region %v has non-positive size", r)
	}
	if !bounds.Empty() && !r.Rect().In(bounds) {
		return fmt.Errorf("region %v exceeds canvas %v", r, bounds)
	}
	return nil
}

func (r Region) String() string {
	return fmt.Sprintf("[%d,%d,%d,%d]", r.X, r.Y, r.Width, r.Height)
}

// Size is a width/height pair in pixels.
type Size struct {
	Width, Height int
}

// Bounds returns the rectangle of a canvas of this size anchored at the origin.
func (s Size) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.Width, s.Height)
}

// AtlasSlots is the number of poster slots on the atlas.
const AtlasSlots = 5

var atlasRegions = [AtlasSlots]Region{
	{X: 0, Y: 0, Width: 341, Height: 559},
	{X: 346, Y: 0, Width: 284, Height: 559},
	{X: 641, Y: 58, Width: 274, Height: 243},
	{X: 184, Y: 620, Width: 411, Height: 364},
	{X: 632, Y: 320, Width: 372, Height: 672},
}

var (
	tipSize        = Size{Width: 796, Height: 1024}
	paintingSize   = Size{Width: 243, Height: 324}
	paintingOffset = image.Point{X: 264, Y: 19}
)

// AtlasRegions returns the poster slots in slot order.
// The returned slice is a copy.
func AtlasRegions() []Region {
	out := make([]Region, AtlasSlots)
	copy(out, atlasRegions[:])
	return out
}

// TipSize returns the size of a tip card canvas.
func TipSize() Size { return tipSize }

// TipRegion returns the whole tip canvas as a region.
func TipRegion() Region {
	return Region{Width: tipSize.Width, Height: tipSize.Height}
}

// PaintingSize returns the exact size painted content is forced to.
func PaintingSize() Size { return paintingSize }

// PaintingOffset returns where painted content is placed on the template.
func PaintingOffset() image.Point { return paintingOffset }

// PaintingRegion returns the painting frame on the painting template.
func PaintingRegion() Region {
	return Region{X: paintingOffset.X, Y: paintingOffset.Y, Width: paintingSize.Width, Height: paintingSize.Height}
}
