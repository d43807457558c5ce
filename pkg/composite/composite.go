// Package composite places source images into fixed regions of a base canvas.
//
// A placement is described by a [FitPolicy] (how the content is scaled) and an
// [Anchor] (where the scaled content sits inside the region). Resampling always
// uses the Lanczos filter from disintegration/imaging.
//
// [Place] draws onto the base canvas in place. Callers that need the original
// canvas untouched must pass a copy, such as one from imaging.Clone.
package composite

import (
	"fmt"
	"image"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/lethalposters/pkg/geometry"
)

// FitPolicy selects how content is scaled into a region.
type FitPolicy int

const (
	// Contain scales content uniformly so it fits entirely inside the region.
	// One axis may end up shorter than the region.
	Contain FitPolicy = iota
	// CoverCrop scales content uniformly until it covers the region, then
	// crops the overflow around the center so the result matches exactly.
	CoverCrop
)

func (p FitPolicy) String() string {
	switch p {
	case Contain:
		return "contain"
	case CoverCrop:
		return "cover-crop"
	default:
		return fmt.Sprintf("FitPolicy(%d)", int(p))
	}
}

// Anchor selects where scaled content is placed inside its region.
type Anchor int

const (
	// TopRight aligns the content's right edge with the region's right edge
	// and its top edge with the region's top edge.
	TopRight Anchor = iota
	// TopLeft places the content's top-left corner on the region origin.
	TopLeft
)

func (a Anchor) String() string {
	switch a {
	case TopRight:
		return "top-right"
	case TopLeft:
		return "top-left"
	default:
		return fmt.Sprintf("Anchor(%d)", int(a))
	}
}

// Place scales content into r according to policy, positions it with anchor
// and draws it onto base, replacing the pixels underneath (alpha included).
// The base canvas is modified and returned.
func Place(base *image.NRGBA, content image.Image, r geometry.Region, policy FitPolicy, anchor Anchor) *image.NRGBA {
	var fitted *image.NRGBA
	switch policy {
	case CoverCrop:
		fitted = Cover(content, r.Size())
	default:
		fitted = ContainImage(content, r.Size())
	}

	pos := anchorPoint(r, fitted.Bounds().Size(), anchor)
	dst := image.Rectangle{Min: pos, Max: pos.Add(fitted.Bounds().Size())}
	draw.Draw(base, dst, fitted, fitted.Bounds().Min, draw.Src)
	return base
}

func anchorPoint(r geometry.Region, size image.Point, anchor Anchor) image.Point {
	switch anchor {
	case TopLeft:
		return r.Min()
	default:
		return image.Pt(r.X+r.Width-size.X, r.Y)
	}
}

// ContainSize returns the size src is resized to so that it fits inside box
// while keeping its aspect ratio. The constrained axis takes the box size and
// the other axis is rounded half-to-even, never below one pixel.
func ContainSize(src image.Point, box geometry.Size) geometry.Size {
	if src.X <= 0 || src.Y <= 0 {
		return geometry.Size{}
	}
	srcRatio := float64(src.X) / float64(src.Y)
	boxRatio := float64(box.Width) / float64(box.Height)

	out := box
	switch {
	case srcRatio > boxRatio:
		out.Height = int(math.RoundToEven(float64(src.Y) / float64(src.X) * float64(box.Width)))
	case srcRatio < boxRatio:
		out.Width = int(math.RoundToEven(float64(src.X) / float64(src.Y) * float64(box.Height)))
	}
	out.Width = max(out.Width, 1)
	out.Height = max(out.Height, 1)
	return out
}

// ContainImage resizes img to [ContainSize] of box using the Lanczos filter.
// Smaller images are scaled up.
func ContainImage(img image.Image, box geometry.Size) *image.NRGBA {
	size := ContainSize(img.Bounds().Size(), box)
	if size.Width == 0 {
		return &image.NRGBA{}
	}
	return imaging.Resize(img, size.Width, size.Height, imaging.Lanczos)
}

// Cover resizes and center-crops img to exactly size.
func Cover(img image.Image, size geometry.Size) *image.NRGBA {
	return imaging.Fill(img, size.Width, size.Height, imaging.Center, imaging.Lanczos)
}
