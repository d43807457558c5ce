package composite

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/lethalposters/pkg/geometry"
)

// Mode is the color mode a canvas is produced in.
type Mode int

const (
	// RGBA keeps an alpha channel; blank pixels are fully transparent.
	RGBA Mode = iota
	// RGB is fully opaque; blank pixels are black.
	RGB
)

func (m Mode) String() string {
	if m == RGB {
		return "RGB"
	}
	return "RGBA"
}

// NewCanvas returns a blank canvas of the given size and mode.
func NewCanvas(size geometry.Size, mode Mode) *image.NRGBA {
	fill := color.NRGBA{}
	if mode == RGB {
		fill.A = 0xff
	}
	return imaging.New(size.Width, size.Height, fill)
}

// ToRGB returns a copy of img with the alpha channel discarded. Color values
// are kept as stored, so transparent pixels keep whatever color they carried.
func ToRGB(img image.Image) *image.NRGBA {
	out := imaging.Clone(img)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}

// ModeOf reports RGB when every pixel of img is opaque and RGBA otherwise.
func ModeOf(img *image.NRGBA) Mode {
	if img.Opaque() {
		return RGB
	}
	return RGBA
}
