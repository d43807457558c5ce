package output

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/lethalposters/pkg/composite"
	"github.com/matzehuels/lethalposters/pkg/errors"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		n       int
		want    Format
		wantErr bool
	}{
		{0, RawPNG, false},
		{1, OptimizedPNG, false},
		{2, RawJPEG, false},
		{3, CompressedJPEG, false},
		{4, 0, true},
		{-1, 0, true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.n)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%d) error = %v, wantErr %v", tt.n, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidConfig) {
			t.Errorf("ParseFormat(%d) error code = %v, want INVALID_CONFIG", tt.n, errors.GetCode(err))
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestFormatProperties(t *testing.T) {
	tests := []struct {
		f        Format
		png      bool
		modified bool
		ext      string
		mode     composite.Mode
	}{
		{RawPNG, true, false, "png", composite.RGBA},
		{OptimizedPNG, true, true, "png", composite.RGBA},
		{RawJPEG, false, false, "jpg", composite.RGB},
		{CompressedJPEG, false, true, "jpg", composite.RGB},
	}

	for _, tt := range tests {
		t.Run(tt.f.String(), func(t *testing.T) {
			if tt.f.IsPNG() != tt.png {
				t.Errorf("IsPNG() = %v", tt.f.IsPNG())
			}
			if tt.f.IsModified() != tt.modified {
				t.Errorf("IsModified() = %v", tt.f.IsModified())
			}
			if tt.f.Ext() != tt.ext {
				t.Errorf("Ext() = %q", tt.f.Ext())
			}
			if tt.f.Mode() != tt.mode {
				t.Errorf("Mode() = %v", tt.f.Mode())
			}
		})
	}
}

func TestNewSpecValidation(t *testing.T) {
	tests := []struct {
		name     string
		format   int
		level    int
		optimize bool
		wantErr  bool
	}{
		{"raw png ignores level", 0, 500, true, false},
		{"png level min", 1, 0, false, false},
		{"png level max", 1, 9, false, false},
		{"png level too high", 1, 10, false, true},
		{"png level negative", 1, -1, false, true},
		{"raw jpeg ignores level", 2, -7, false, false},
		{"jpeg quality zero", 3, 0, false, false},
		{"jpeg quality max", 3, 95, true, false},
		{"jpeg quality too high", 3, 96, false, true},
		{"format out of range", 4, 0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSpec(tt.format, tt.level, tt.optimize)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewSpec() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, errors.ErrCodeInvalidConfig) {
					t.Errorf("error code = %v, want INVALID_CONFIG", errors.GetCode(err))
				}
				return
			}
			if !s.Format.IsModified() && (s.Level != 0 || s.Optimize) {
				t.Errorf("raw spec kept level/optimize: %+v", s)
			}
		})
	}
}

func TestPNGLevelMapping(t *testing.T) {
	tests := []struct {
		spec Spec
		want png.CompressionLevel
	}{
		{Spec{Format: RawPNG}, png.DefaultCompression},
		{Spec{Format: OptimizedPNG, Level: 0}, png.NoCompression},
		{Spec{Format: OptimizedPNG, Level: 1}, png.BestSpeed},
		{Spec{Format: OptimizedPNG, Level: 6}, png.DefaultCompression},
		{Spec{Format: OptimizedPNG, Level: 9}, png.BestCompression},
		{Spec{Format: OptimizedPNG, Level: 1, Optimize: true}, png.BestCompression},
	}
	for _, tt := range tests {
		if got := tt.spec.pngLevel(); got != tt.want {
			t.Errorf("%v: pngLevel() = %v, want %v", tt.spec, got, tt.want)
		}
	}
}

func TestJPEGQuality(t *testing.T) {
	tests := []struct {
		spec Spec
		want int
	}{
		{Spec{Format: RawJPEG}, DefaultJPEGQuality},
		{Spec{Format: CompressedJPEG, Level: 0}, 1},
		{Spec{Format: CompressedJPEG, Level: 60}, 60},
	}
	for _, tt := range tests {
		if got := tt.spec.jpegQuality(); got != tt.want {
			t.Errorf("%v: jpegQuality() = %d, want %d", tt.spec, got, tt.want)
		}
	}
}

func TestLayoutPaths(t *testing.T) {
	l := Layout{Root: "output"}
	pngSpec := Spec{Format: RawPNG}
	jpgSpec := Spec{Format: CompressedJPEG, Level: 80}

	tests := []struct {
		c     Category
		index int
		spec  Spec
		want  string
	}{
		{Posters, 0, pngSpec, filepath.Join("output", "BepInEx", "plugins", "LethalPosters", "posters", "0.png")},
		{Tips, 12, jpgSpec, filepath.Join("output", "BepInEx", "plugins", "LethalPosters", "tips", "12.jpg")},
		{Paintings, 3, pngSpec, filepath.Join("output", "BepInEx", "plugins", "LethalPaintings", "paintings", "3.png")},
	}
	for _, tt := range tests {
		if got := l.Path(tt.c, tt.index, tt.spec); got != tt.want {
			t.Errorf("Path(%s, %d) = %q, want %q", tt.c, tt.index, got, tt.want)
		}
	}
}

func TestLayoutEnsure(t *testing.T) {
	l := Layout{Root: t.TempDir()}
	if err := l.Ensure(); err != nil {
		t.Fatalf("Ensure error: %v", err)
	}
	for _, c := range Categories {
		if info, err := os.Stat(l.Dir(c)); err != nil || !info.IsDir() {
			t.Errorf("directory for %s missing: %v", c, err)
		}
	}
}

func TestSaveModes(t *testing.T) {
	dir := t.TempDir()
	img := imaging.New(8, 8, color.NRGBA{R: 200, A: 0x80})

	pngPath := filepath.Join(dir, "0.png")
	if err := Save(img, pngPath, Spec{Format: RawPNG}); err != nil {
		t.Fatalf("Save png: %v", err)
	}
	decoded, err := imaging.Open(pngPath)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if a := color.NRGBAModel.Convert(decoded.At(0, 0)).(color.NRGBA).A; a != 0x80 {
		t.Errorf("png alpha = %d, want 128", a)
	}

	jpgPath := filepath.Join(dir, "0.jpg")
	if err := Save(composite.ToRGB(img), jpgPath, Spec{Format: CompressedJPEG, Level: 90}); err != nil {
		t.Fatalf("Save jpg: %v", err)
	}
	data, err := os.ReadFile(jpgPath)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode jpg config: %v", err)
	}
	if cfg.ColorModel != color.YCbCrModel {
		t.Errorf("jpg color model = %v, want YCbCr (RGB without alpha)", cfg.ColorModel)
	}
}

func TestSaveOverwritesAndIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "1.png")
	spec := Spec{Format: OptimizedPNG, Level: 9}
	img := imaging.New(16, 16, color.NRGBA{G: 0xff, A: 0xff})

	if err := os.WriteFile(path, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Save(img, path, spec); err != nil {
		t.Fatalf("first save: %v", err)
	}
	first, _ := os.ReadFile(path)
	if err := Save(img, path, spec); err != nil {
		t.Fatalf("second save: %v", err)
	}
	second, _ := os.ReadFile(path)

	if !bytes.Equal(first, second) {
		t.Error("saving the same image twice should produce identical bytes")
	}
	if bytes.Equal(first, []byte("stale")) {
		t.Error("existing file was not replaced")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected no leftover temp files, found %d entries", len(entries))
	}
}

func TestSaveOpaquePNGKeepsAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 37, 23))
	for y := 0; y < 23; y++ {
		for x := 0; x < 37; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(7 * x), G: uint8(11 * y), B: uint8(x * y), A: 0xff})
		}
	}

	specs := []Spec{
		{Format: RawPNG},
		{Format: OptimizedPNG, Level: 0},
		{Format: OptimizedPNG, Level: 2},
		{Format: OptimizedPNG, Level: 6, Optimize: true},
	}
	for _, spec := range specs {
		t.Run(spec.String(), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "0.png")
			if err := Save(img, path, spec); err != nil {
				t.Fatalf("Save: %v", err)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}

			cfg, err := png.DecodeConfig(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("decode config: %v", err)
			}
			if cfg.ColorModel != color.NRGBAModel || cfg.Width != 37 || cfg.Height != 23 {
				t.Errorf("config = %v %dx%d, want NRGBA 37x23", cfg.ColorModel, cfg.Width, cfg.Height)
			}

			decoded, err := png.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			got, ok := decoded.(*image.NRGBA)
			if !ok {
				t.Fatalf("decoded %T, want *image.NRGBA", decoded)
			}
			if !bytes.Equal(got.Pix, img.Pix) {
				t.Error("decoded pixels differ from the saved image")
			}

			var again bytes.Buffer
			if err := Encode(&again, img, spec); err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(again.Bytes(), data) {
				t.Error("encoding the same image twice should produce identical bytes")
			}
		})
	}
}

func TestEncodeOpaqueSubImage(t *testing.T) {
	full := imaging.New(10, 10, color.NRGBA{B: 0xff, A: 0xff})
	full.SetNRGBA(5, 5, color.NRGBA{R: 0xff, A: 0xff})
	sub := full.SubImage(image.Rect(4, 4, 8, 8))

	var buf bytes.Buffer
	if err := Encode(&buf, sub, Spec{Format: RawPNG}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Bounds() != image.Rect(0, 0, 4, 4) {
		t.Fatalf("bounds = %v, want 4x4 at the origin", decoded.Bounds())
	}
	if got := decoded.(*image.NRGBA).NRGBAAt(1, 1); got != (color.NRGBA{R: 0xff, A: 0xff}) {
		t.Errorf("pixel (1,1) = %v, want the red pixel from (5,5)", got)
	}
}

func TestSaveMissingDirectory(t *testing.T) {
	err := Save(image.NewNRGBA(image.Rect(0, 0, 1, 1)), filepath.Join(t.TempDir(), "nope", "0.png"), Spec{})
	if err == nil {
		t.Error("Save into a missing directory should fail")
	}
}
