package output

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/disintegration/imaging"
)

// Category is one of the three generated output families.
type Category string

const (
	Posters   Category = "posters"
	Tips      Category = "tips"
	Paintings Category = "paintings"
)

// Categories lists every category in generation order.
var Categories = []Category{Posters, Tips, Paintings}

// Layout maps categories onto directories below an output root.
type Layout struct {
	Root string
}

// Dir returns the directory holding images of category c.
func (l Layout) Dir(c Category) string {
	switch c {
	case Paintings:
		return filepath.Join(l.Root, "BepInEx", "plugins", "LethalPaintings", "paintings")
	default:
		return filepath.Join(l.Root, "BepInEx", "plugins", "LethalPosters", string(c))
	}
}

// Path returns the file an image of category c for input index is written to.
func (l Layout) Path(c Category, index int, s Spec) string {
	return filepath.Join(l.Dir(c), strconv.Itoa(index)+"."+s.Ext())
}

// Ensure creates every category directory.
func (l Layout) Ensure() error {
	for _, c := range Categories {
		if err := os.MkdirAll(l.Dir(c), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", l.Dir(c), err)
		}
	}
	return nil
}

// Encode writes img to w in the format and with the settings of s. PNG output
// always carries an alpha channel, opaque images included.
func Encode(w io.Writer, img image.Image, s Spec) error {
	if !s.Format.IsPNG() {
		return imaging.Encode(w, img, imaging.JPEG, s.EncodeOptions()...)
	}
	if o, ok := img.(interface{ Opaque() bool }); !ok || o.Opaque() {
		return encodeRGBA(w, img, s.pngLevel())
	}
	return imaging.Encode(w, img, imaging.PNG, s.EncodeOptions()...)
}

// Save encodes img according to s and writes it to path, replacing any
// existing file. The image is encoded to a temporary file in the same
// directory and renamed over path once complete.
func Save(img image.Image, path string, s Spec) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = Encode(tmp, img, s); err != nil {
		tmp.Close()
		return fmt.Errorf("encode %s: %w", s.Ext(), err)
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
