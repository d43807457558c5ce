// Package output resolves how composited images are encoded and where they
// are written.
//
// A [Spec] is the validated format/compression/optimize choice for a run and
// drives a single [Save] path. A [Layout] maps an output category and input
// index onto the mod's plugin directory tree.
package output

import (
	"fmt"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/lethalposters/pkg/composite"
	"github.com/matzehuels/lethalposters/pkg/errors"
)

// Format is the closed set of output formats, numbered as on the prompt.
type Format int

const (
	RawPNG Format = iota
	OptimizedPNG
	RawJPEG
	CompressedJPEG
)

// Formats lists every format in prompt order.
var Formats = []Format{RawPNG, OptimizedPNG, RawJPEG, CompressedJPEG}

// Level bounds per format family.
const (
	MinPNGLevel  = 0
	MaxPNGLevel  = 9
	MinJPEGLevel = 0
	MaxJPEGLevel = 95
)

// DefaultJPEGQuality is used for raw JPEG output.
const DefaultJPEGQuality = 75

// ParseFormat converts a prompt number into a Format.
func ParseFormat(n int) (Format, error) {
	if n < int(RawPNG) || n > int(CompressedJPEG) {
		return 0, errors.New(errors.ErrCodeInvalidConfig, "format %d is invalid (must be 0-3)", n)
	}
	return Format(n), nil
}

// IsPNG reports whether f belongs to the PNG family.
func (f Format) IsPNG() bool { return f == RawPNG || f == OptimizedPNG }

// IsModified reports whether f takes a compression level and optimize flag.
func (f Format) IsModified() bool { return f == OptimizedPNG || f == CompressedJPEG }

// Ext returns the file extension without the dot.
func (f Format) Ext() string {
	if f.IsPNG() {
		return "png"
	}
	return "jpg"
}

// Mode returns the color mode generators should produce for f.
func (f Format) Mode() composite.Mode {
	if f.IsPNG() {
		return composite.RGBA
	}
	return composite.RGB
}

// LevelRange returns the valid compression level bounds for f's family.
func (f Format) LevelRange() (lo, hi int) {
	if f.IsPNG() {
		return MinPNGLevel, MaxPNGLevel
	}
	return MinJPEGLevel, MaxJPEGLevel
}

func (f Format) String() string {
	switch f {
	case RawPNG:
		return "PNG - Raw"
	case OptimizedPNG:
		return "PNG - Modified"
	case RawJPEG:
		return "JPG - Raw"
	case CompressedJPEG:
		return "JPG - Modified"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// LevelHint describes the level scale of f's family for prompts and help text.
func (f Format) LevelHint() string {
	if f.IsPNG() {
		return "0=None, 1=Best Quality, 6=Default, 9=Best Compression"
	}
	return "0=Best Compression, 75=Default, 95=Best Quality"
}

// Spec is the resolved output configuration of a run.
type Spec struct {
	Format   Format `toml:"format"`
	Level    int    `toml:"compression"`
	Optimize bool   `toml:"optimize"`
}

// NewSpec validates the raw prompt values and builds a Spec.
// Level and optimize are ignored for raw formats.
func NewSpec(format, level int, optimize bool) (Spec, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return Spec{}, err
	}
	s := Spec{Format: f}
	if f.IsModified() {
		s.Level = level
		s.Optimize = optimize
	}
	return s, s.Validate()
}

// Validate checks the format and, for modified formats, the level range.
func (s Spec) Validate() error {
	if _, err := ParseFormat(int(s.Format)); err != nil {
		return err
	}
	if !s.Format.IsModified() {
		return nil
	}
	lo, hi := s.Format.LevelRange()
	if s.Level < lo || s.Level > hi {
		return errors.New(errors.ErrCodeInvalidConfig, "compression %d is invalid for %s (must be %d-%d)", s.Level, s.Format, lo, hi)
	}
	return nil
}

// Ext returns the file extension for s.
func (s Spec) Ext() string { return s.Format.Ext() }

// Mode returns the color mode for s.
func (s Spec) Mode() composite.Mode { return s.Format.Mode() }

// EncodeOptions translates s into imaging encoder options.
func (s Spec) EncodeOptions() []imaging.EncodeOption {
	if s.Format.IsPNG() {
		return []imaging.EncodeOption{imaging.PNGCompressionLevel(s.pngLevel())}
	}
	return []imaging.EncodeOption{imaging.JPEGQuality(s.jpegQuality())}
}

// pngLevel maps the zlib 0-9 scale onto the levels the Go encoder offers.
// Optimize always selects the best compression.
func (s Spec) pngLevel() png.CompressionLevel {
	if s.Format == RawPNG {
		return png.DefaultCompression
	}
	if s.Optimize {
		return png.BestCompression
	}
	switch {
	case s.Level == 0:
		return png.NoCompression
	case s.Level <= 3:
		return png.BestSpeed
	case s.Level <= 6:
		return png.DefaultCompression
	default:
		return png.BestCompression
	}
}

// jpegQuality returns the encoder quality. The encoder floor is 1.
func (s Spec) jpegQuality() int {
	if s.Format == RawJPEG {
		return DefaultJPEGQuality
	}
	return max(s.Level, 1)
}

func (s Spec) String() string {
	if !s.Format.IsModified() {
		return s.Format.String()
	}
	return fmt.Sprintf("%s (compression %d, optimize %t)", s.Format, s.Level, s.Optimize)
}
