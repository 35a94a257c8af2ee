package tiler

import (
	"errors"
	"image"
	"image/color"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/menta2k/pairgen/pkg/imgio"
	"github.com/menta2k/pairgen/pkg/params"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// createTestImage creates an image whose red/green channels encode the
// pixel coordinates, so crops reveal where they were taken from.
func createTestImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.NRGBA{uint8(x % 256), uint8(y % 256), 0, 255})
		}
	}
	return img
}

func writeTestImage(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := imgio.Save(createTestImage(w, h), path, imgio.FormatPNG, 0); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"zero scale min", func(c *Config) { c.ScaleMin = 0 }, true},
		{"inverted scale range", func(c *Config) { c.ScaleMin = 2; c.ScaleMax = 1 }, true},
		{"zero width", func(c *Config) { c.OutputWidth = 0 }, true},
		{"zero retries", func(c *Config) { c.MaxRetries = 0 }, true},
		{"bad format", func(c *Config) { c.Format = "gif" }, true},
		{"bad quality", func(c *Config) { c.Quality = 0 }, true},
		{"jpeg format", func(c *Config) { c.Format = "jpeg" }, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := DefaultConfig()
			c.mutate(&cfg)
			err := cfg.Validate()
			if c.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !c.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestGridEmitsExactTiles(t *testing.T) {
	dir := t.TempDir()
	outDir := t.TempDir()
	srcPath := writeTestImage(t, dir, "big.png", 1000, 1000)

	cfg := DefaultConfig()
	cfg.ScaleMin = 1.0
	cfg.ScaleMax = 1.0
	cfg.OutputWidth = 300
	cfg.OutputHeight = 300
	cfg.MaxRetries = 5

	tl := New(cfg, params.NewSeeded(1), newTestLogger())
	res, err := tl.ExtractFile(srcPath, outDir)
	if err != nil {
		t.Fatalf("ExtractFile failed: %v", err)
	}

	if res.Outcome != OutcomeGrid {
		t.Fatalf("outcome = %s, want grid", res.Outcome)
	}
	if len(res.Paths) != 9 {
		t.Fatalf("expected exactly 9 tiles (3x3), got %d", len(res.Paths))
	}

	unique := map[string]bool{}
	for _, p := range res.Paths {
		unique[p] = true
		img, err := imgio.Load(p)
		if err != nil {
			t.Fatalf("tile unreadable: %v", err)
		}
		if b := img.Bounds(); b.Dx() != 300 || b.Dy() != 300 {
			t.Errorf("tile %s is %dx%d, want 300x300", p, b.Dx(), b.Dy())
		}
	}
	if len(unique) != 9 {
		t.Errorf("tile filenames collide: %d unique of 9", len(unique))
	}
}

func TestGridTilesDoNotOverlap(t *testing.T) {
	// Row-major grid rectangles must exactly partition the covered
	// sub-rectangle.
	covered := map[image.Point]int{}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r := gridRect(j, i, 300, 300)
			if r.Dx() != 300 || r.Dy() != 300 {
				t.Fatalf("grid cell (%d,%d) has size %dx%d", j, i, r.Dx(), r.Dy())
			}
			// Sample the corners; full pixel iteration is redundant for
			// axis-aligned rects.
			for _, pt := range []image.Point{r.Min, {r.Max.X - 1, r.Min.Y}, {r.Min.X, r.Max.Y - 1}, {r.Max.X - 1, r.Max.Y - 1}} {
				covered[pt]++
			}
		}
	}
	for pt, n := range covered {
		if n > 1 {
			t.Fatalf("pixel %v covered by %d tiles", pt, n)
		}
	}

	union := image.Rectangle{}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			union = union.Union(gridRect(j, i, 300, 300))
		}
	}
	if union != image.Rect(0, 0, 900, 900) {
		t.Errorf("grid union = %v, want (0,0)-(900,900)", union)
	}
}

func TestPreFilterSkipsSmallImages(t *testing.T) {
	dir := t.TempDir()
	outDir := t.TempDir()
	srcPath := writeTestImage(t, dir, "tiny.png", 40, 40)

	cfg := DefaultConfig() // 512x512 tiles
	tl := New(cfg, params.NewSeeded(1), newTestLogger())

	res, err := tl.ExtractFile(srcPath, outDir)
	if err != nil {
		t.Fatalf("undersized source must not error: %v", err)
	}
	if res.Outcome != OutcomeSkipped {
		t.Errorf("outcome = %s, want skipped", res.Outcome)
	}
	if len(res.Paths) != 0 {
		t.Errorf("skip produced %d files", len(res.Paths))
	}
}

func TestScaleSearchExhausted(t *testing.T) {
	dir := t.TempDir()
	outDir := t.TempDir()
	// 120x120 passes the pre-filter for 100x100 tiles, but the only
	// possible factor 0.5 rescales to 60x60 — always too small.
	srcPath := writeTestImage(t, dir, "mid.png", 120, 120)

	cfg := DefaultConfig()
	cfg.ScaleMin = 0.5
	cfg.ScaleMax = 0.5
	cfg.OutputWidth = 100
	cfg.OutputHeight = 100
	cfg.MaxRetries = 10

	tl := New(cfg, params.NewSeeded(1), newTestLogger())
	res, err := tl.ExtractFile(srcPath, outDir)

	if !errors.Is(err, ErrScaleSearchExhausted) {
		t.Fatalf("expected ErrScaleSearchExhausted, got %v", err)
	}
	if res.Outcome != OutcomeExhausted {
		t.Errorf("outcome = %s, want exhausted", res.Outcome)
	}
	if len(res.Paths) != 0 {
		t.Errorf("failed search produced %d files", len(res.Paths))
	}
}

func TestFallbackCropStaysInBounds(t *testing.T) {
	outDir := t.TempDir()

	cfg := DefaultConfig()
	cfg.OutputWidth = 300
	cfg.OutputHeight = 200

	// A 350x250 image fits one 300x200 crop with left in [0,50] and
	// top in [0,50].
	scaled := createTestImage(350, 250)

	for seed := int64(1); seed <= 5; seed++ {
		tl := New(cfg, params.NewSeeded(seed), newTestLogger())
		outPath, err := tl.emitFallback(scaled, outDir, "src")
		if err != nil {
			t.Fatalf("emitFallback failed: %v", err)
		}

		img, err := imgio.Load(outPath)
		if err != nil {
			t.Fatalf("fallback crop unreadable: %v", err)
		}
		b := img.Bounds()
		if b.Dx() != 300 || b.Dy() != 200 {
			t.Fatalf("fallback crop is %dx%d, want 300x200", b.Dx(), b.Dy())
		}

		// The source encodes coordinates in the red/green channels, so
		// the crop's first pixel reveals its origin.
		r, g, _, _ := img.At(b.Min.X, b.Min.Y).RGBA()
		left, top := int(r>>8), int(g>>8)
		if left > 50 {
			t.Errorf("seed %d: crop left %d exceeds 50", seed, left)
		}
		if top > 50 {
			t.Errorf("seed %d: crop top %d exceeds 50", seed, top)
		}
	}
}

func TestFallbackRejectsImpossibleCrop(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OutputWidth = 300
	cfg.OutputHeight = 200

	tl := New(cfg, params.NewSeeded(1), newTestLogger())
	// 350x150: no 300x200 crop can fit a height of 150.
	if _, err := tl.emitFallback(createTestImage(350, 150), t.TempDir(), "src"); err == nil {
		t.Error("expected error for crop larger than image")
	}
}

func TestTileFilenamesUniqueAcrossStems(t *testing.T) {
	dir := t.TempDir()
	outDir := t.TempDir()

	cfg := DefaultConfig()
	cfg.ScaleMin = 1.0
	cfg.ScaleMax = 1.0
	cfg.OutputWidth = 300
	cfg.OutputHeight = 300

	tl := New(cfg, params.NewSeeded(1), newTestLogger())

	// Two different files, same stem due to matching base names
	a := writeTestImage(t, dir, "dup.png", 600, 600)
	sub := t.TempDir()
	b := writeTestImage(t, sub, "dup.png", 600, 600)

	resA, err := tl.ExtractFile(a, outDir)
	if err != nil {
		t.Fatal(err)
	}
	resB, err := tl.ExtractFile(b, outDir)
	if err != nil {
		t.Fatal(err)
	}

	seen := map[string]bool{}
	for _, p := range append(resA.Paths, resB.Paths...) {
		if seen[p] {
			t.Fatalf("duplicate tile filename: %s", p)
		}
		seen[p] = true
	}
	if len(seen) != 8 {
		t.Errorf("expected 8 tiles total (2x2 each), got %d", len(seen))
	}
}

func TestOutcomeString(t *testing.T) {
	if OutcomeGrid.String() != "grid" || OutcomeFallback.String() != "fallback" ||
		OutcomeSkipped.String() != "skipped" || OutcomeExhausted.String() != "exhausted" {
		t.Error("unexpected outcome names")
	}
}
