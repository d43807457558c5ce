package batch

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/lethalposters/pkg/errors"
	"github.com/matzehuels/lethalposters/pkg/generate"
	"github.com/matzehuels/lethalposters/pkg/geometry"
	"github.com/matzehuels/lethalposters/pkg/observability"
	"github.com/matzehuels/lethalposters/pkg/output"
	"github.com/matzehuels/lethalposters/pkg/source"
)

func testRunContext(t *testing.T, spec output.Spec, n int) *generate.RunContext {
	t.Helper()
	posters, err := source.NewTemplate("posters", imaging.New(1024, 1024, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}), geometry.AtlasRegions()...)
	if err != nil {
		t.Fatal(err)
	}
	painting, err := source.NewTemplate("painting", imaging.New(512, 512, color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}), geometry.PaintingRegion())
	if err != nil {
		t.Fatal(err)
	}
	images := make([]image.Image, n)
	for i := range images {
		images[i] = imaging.New(60+i*20, 90, color.NRGBA{R: uint8(40 * i), G: 0x60, B: 0xa0, A: 0xff})
	}
	rc, err := generate.NewRunContext(posters, painting, source.New(images...), spec)
	if err != nil {
		t.Fatal(err)
	}
	return rc
}

func readAll(t *testing.T, layout output.Layout, spec output.Spec, n int) map[string][]byte {
	t.Helper()
	files := make(map[string][]byte)
	for i := 0; i < n; i++ {
		for _, c := range output.Categories {
			path := layout.Path(c, i, spec)
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read %s: %v", path, err)
			}
			rel, _ := filepath.Rel(layout.Root, path)
			files[rel] = data
		}
	}
	return files
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		workers int
		want    int
		wantErr bool
	}{
		{0, DefaultWorkers, false},
		{1, 1, false},
		{8, 8, false},
		{-1, 0, true},
		{MaxWorkers + 1, 0, true},
	}
	for _, tt := range tests {
		o := Options{Workers: tt.workers}
		err := o.ValidateAndSetDefaults()
		if (err != nil) != tt.wantErr {
			t.Errorf("workers %d: error = %v, wantErr %v", tt.workers, err, tt.wantErr)
			continue
		}
		if err != nil {
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("workers %d: code = %v, want INVALID_CONFIG", tt.workers, errors.GetCode(err))
			}
			continue
		}
		if o.Workers != tt.want {
			t.Errorf("workers %d: got %d, want %d", tt.workers, o.Workers, tt.want)
		}
	}
}

func TestRunWritesEveryOutput(t *testing.T) {
	spec := output.Spec{Format: output.RawPNG}
	rc := testRunContext(t, spec, 3)
	layout := output.Layout{Root: t.TempDir()}

	summary, err := NewRunner(layout, nil).Run(context.Background(), rc, Options{})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if summary.Written != 9 || summary.Processed != 3 || summary.Images != 3 {
		t.Errorf("summary = %+v, want 9 written, 3 processed", summary)
	}
	if summary.RunID == "" {
		t.Error("summary should carry a run id")
	}

	files := readAll(t, layout, spec, 3)
	cfg, err := png.DecodeConfig(bytes.NewReader(files[filepath.Join("BepInEx", "plugins", "LethalPosters", "posters", "0.png")]))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 1024 || cfg.Height != 1024 {
		t.Errorf("poster size = %dx%d", cfg.Width, cfg.Height)
	}

	tip, err := png.DecodeConfig(bytes.NewReader(files[filepath.Join("BepInEx", "plugins", "LethalPosters", "tips", "2.png")]))
	if err != nil {
		t.Fatal(err)
	}
	if tip.Width != 796 || tip.Height != 1024 {
		t.Errorf("tip size = %dx%d, want 796x1024", tip.Width, tip.Height)
	}
	if tip.ColorModel != color.NRGBAModel {
		t.Errorf("PNG tip color model = %v, want NRGBA (alpha kept)", tip.ColorModel)
	}
}

func TestRunJPEGOutputsAreRGB(t *testing.T) {
	spec := output.Spec{Format: output.CompressedJPEG, Level: 85}
	rc := testRunContext(t, spec, 2)
	layout := output.Layout{Root: t.TempDir()}

	if _, err := NewRunner(layout, nil).Run(context.Background(), rc, Options{}); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	for name, data := range readAll(t, layout, spec, 2) {
		cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if cfg.ColorModel != color.YCbCrModel {
			t.Errorf("%s: color model = %v, want YCbCr", name, cfg.ColorModel)
		}
	}
}

func TestRunIsIdempotentAndWorkerIndependent(t *testing.T) {
	spec := output.Spec{Format: output.OptimizedPNG, Level: 4}
	rc := testRunContext(t, spec, 4)
	ctx := context.Background()

	first := output.Layout{Root: t.TempDir()}
	if _, err := NewRunner(first, nil).Run(ctx, rc, Options{}); err != nil {
		t.Fatal(err)
	}
	want := readAll(t, first, spec, 4)

	// Same directory again, then a parallel run elsewhere.
	if _, err := NewRunner(first, nil).Run(ctx, rc, Options{}); err != nil {
		t.Fatal(err)
	}
	parallel := output.Layout{Root: t.TempDir()}
	if _, err := NewRunner(parallel, nil).Run(ctx, rc, Options{Workers: 3}); err != nil {
		t.Fatal(err)
	}

	for name, got := range readAll(t, first, spec, 4) {
		if !bytes.Equal(got, want[name]) {
			t.Errorf("%s changed on re-run", name)
		}
	}
	for name, got := range readAll(t, parallel, spec, 4) {
		if !bytes.Equal(got, want[name]) {
			t.Errorf("%s differs between sequential and parallel runs", name)
		}
	}
}

// blockSave turns the output path of one category/index into a directory so
// that renaming the encoded file onto it fails.
func blockSave(t *testing.T, layout output.Layout, c output.Category, index int, spec output.Spec) {
	t.Helper()
	path := layout.Path(c, index, spec)
	if err := os.MkdirAll(filepath.Join(path, "occupied"), 0o755); err != nil {
		t.Fatal(err)
	}
}

func TestRunFailFastAttemptsEverySaveOfTheIndex(t *testing.T) {
	spec := output.Spec{Format: output.RawPNG}
	rc := testRunContext(t, spec, 3)
	layout := output.Layout{Root: t.TempDir()}
	blockSave(t, layout, output.Tips, 1, spec)

	summary, err := NewRunner(layout, nil).Run(context.Background(), rc, Options{})
	if !errors.Is(err, errors.ErrCodePersistence) {
		t.Fatalf("err = %v, want PERSISTENCE", err)
	}
	if summary.Processed != 1 {
		t.Errorf("Processed = %d, want 1", summary.Processed)
	}

	// The other two outputs of index 1 were still written.
	for _, c := range []output.Category{output.Posters, output.Paintings} {
		if _, err := os.Stat(layout.Path(c, 1, spec)); err != nil {
			t.Errorf("%s for index 1 missing: %v", c, err)
		}
	}
	// Index 2 never started.
	if _, err := os.Stat(layout.Path(output.Posters, 2, spec)); !os.IsNotExist(err) {
		t.Errorf("index 2 should not be processed after a failure, stat err = %v", err)
	}
}

func TestRunKeepGoingCollectsFailures(t *testing.T) {
	spec := output.Spec{Format: output.RawPNG}
	rc := testRunContext(t, spec, 3)

	for _, workers := range []int{1, 2} {
		layout := output.Layout{Root: t.TempDir()}
		blockSave(t, layout, output.Paintings, 0, spec)
		blockSave(t, layout, output.Posters, 2, spec)

		summary, err := NewRunner(layout, nil).Run(context.Background(), rc, Options{Workers: workers, KeepGoing: true})
		if !errors.Is(err, errors.ErrCodePersistence) {
			t.Fatalf("workers %d: err = %v, want PERSISTENCE", workers, err)
		}
		if len(summary.Failures) != 2 || summary.Failures[0].Index != 0 || summary.Failures[1].Index != 2 {
			t.Errorf("workers %d: failures = %+v, want indices [0 2]", workers, summary.Failures)
		}
		if summary.Written != 7 || summary.Processed != 1 {
			t.Errorf("workers %d: written %d processed %d, want 7 and 1", workers, summary.Written, summary.Processed)
		}
		if _, err := os.Stat(layout.Path(output.Tips, 2, spec)); err != nil {
			t.Errorf("workers %d: index 2 tip missing: %v", workers, err)
		}
	}
}

func TestRunCancelled(t *testing.T) {
	spec := output.Spec{Format: output.RawPNG}
	rc := testRunContext(t, spec, 2)
	layout := output.Layout{Root: t.TempDir()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := NewRunner(layout, nil).Run(ctx, rc, Options{})
	if err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if summary.Written != 0 {
		t.Errorf("Written = %d, want 0", summary.Written)
	}
}

type recordingHooks struct {
	observability.NoopBatchHooks
	mu      sync.Mutex
	saves   int
	indices []int
	total   int
}

func (h *recordingHooks) OnBatchStart(_ context.Context, _ string, total int) { h.total = total }

func (h *recordingHooks) OnIndexComplete(_ context.Context, index int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.indices = append(h.indices, index)
}

func (h *recordingHooks) OnSave(context.Context, int, string, string, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.saves++
}

func TestRunEmitsHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetBatchHooks(hooks)
	defer observability.Reset()

	spec := output.Spec{Format: output.RawJPEG}
	rc := testRunContext(t, spec, 3)
	if _, err := NewRunner(output.Layout{Root: t.TempDir()}, nil).Run(context.Background(), rc, Options{}); err != nil {
		t.Fatal(err)
	}

	if hooks.total != 3 {
		t.Errorf("OnBatchStart total = %d, want 3", hooks.total)
	}
	if hooks.saves != 9 {
		t.Errorf("OnSave calls = %d, want 9", hooks.saves)
	}
	for i, idx := range hooks.indices {
		if idx != i {
			t.Errorf("sequential run completed index %d at position %d", idx, i)
		}
	}
}
