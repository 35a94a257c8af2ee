// Package tiler slices randomly rescaled images into fixed-size crops
// for training-set generation. A bounded-retry search picks a feasible
// scale factor, the rescaled image is decomposed into a grid of
// non-overlapping tiles, and a single randomly placed crop stands in
// when no full grid tile fits.
package tiler

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"github.com/menta2k/pairgen/pkg/imgio"
	"github.com/menta2k/pairgen/pkg/params"
)

// ErrScaleSearchExhausted is reported when the retry budget runs out
// without finding a scale factor that leaves room for a single tile.
var ErrScaleSearchExhausted = errors.New("no feasible scale factor found")

// Config holds the tiling settings for one run.
type Config struct {
	ScaleMin     float64 `json:"scale_min" mapstructure:"scale_min"`
	ScaleMax     float64 `json:"scale_max" mapstructure:"scale_max"`
	OutputWidth  int     `json:"output_width" mapstructure:"output_width"`
	OutputHeight int     `json:"output_height" mapstructure:"output_height"`
	MaxRetries   int     `json:"max_retries" mapstructure:"max_retries"`
	Format       string  `json:"format" mapstructure:"format"`
	Quality      int     `json:"quality" mapstructure:"quality"`
}

// DefaultConfig returns the tiling defaults.
func DefaultConfig() Config {
	return Config{
		ScaleMin:     0.01,
		ScaleMax:     1.0,
		OutputWidth:  512,
		OutputHeight: 512,
		MaxRetries:   100,
		Format:       "png",
		Quality:      90,
	}
}

// Validate checks the configuration, rejecting malformed ranges before
// any image is touched.
func (c Config) Validate() error {
	if c.ScaleMin <= 0 || c.ScaleMax <= 0 {
		return fmt.Errorf("scale bounds must be positive, got [%g, %g]", c.ScaleMin, c.ScaleMax)
	}
	if c.ScaleMin > c.ScaleMax {
		return fmt.Errorf("scale-min %g exceeds scale-max %g", c.ScaleMin, c.ScaleMax)
	}
	if c.OutputWidth < 1 || c.OutputHeight < 1 {
		return fmt.Errorf("output size must be positive, got %dx%d", c.OutputWidth, c.OutputHeight)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max retries must be positive, got %d", c.MaxRetries)
	}
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("quality must be between 1 and 100, got %d", c.Quality)
	}
	if _, err := imgio.ParseFormat(c.Format); err != nil {
		return err
	}
	return nil
}

// Outcome is the terminal state reached for one source image. The four
// outcomes are mutually exclusive per image.
type Outcome int

// Possible terminal states.
const (
	// OutcomeGrid means one or more non-overlapping grid tiles were written.
	OutcomeGrid Outcome = iota
	// OutcomeFallback means exactly one randomly placed crop was written.
	OutcomeFallback
	// OutcomeSkipped means the original image was smaller than one tile.
	OutcomeSkipped
	// OutcomeExhausted means the scale search ran out of retries.
	OutcomeExhausted
)

// String returns a short name for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeGrid:
		return "grid"
	case OutcomeFallback:
		return "fallback"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Result reports what ExtractFile produced for one image.
type Result struct {
	Outcome Outcome
	Scale   float64
	Paths   []string
}

// Tiler extracts fixed-size crops from rescaled source images. Output
// filenames embed a per-run token and a monotonic sequence number, so
// they are unique within and across runs even when source stems repeat.
type Tiler struct {
	cfg    Config
	sel    *params.Selector
	log    *logrus.Logger
	format imgio.Format
	run    string
	seq    int
}

// New creates a tiler. The caller is expected to have validated cfg
// already.
func New(cfg Config, sel *params.Selector, log *logrus.Logger) *Tiler {
	format, err := imgio.ParseFormat(cfg.Format)
	if err != nil {
		format = imgio.FormatPNG
	}
	return &Tiler{
		cfg:    cfg,
		sel:    sel,
		log:    log,
		format: format,
		run:    sel.Token(),
	}
}

// ExtractFile extracts tiles from the image at path into outDir.
//
// Images smaller than one output tile in either dimension are skipped
// without error; a failed scale search returns ErrScaleSearchExhausted
// so the caller can report it and continue with the next file.
func (t *Tiler) ExtractFile(path, outDir string) (Result, error) {
	img, err := imgio.Load(path)
	if err != nil {
		return Result{}, fmt.Errorf("load %s: %w", path, err)
	}

	b := img.Bounds()
	if b.Dx() < t.cfg.OutputWidth || b.Dy() < t.cfg.OutputHeight {
		t.log.WithField("path", path).Debug("image smaller than tile size, skipping")
		return Result{Outcome: OutcomeSkipped}, nil
	}

	factor, ok := t.searchScale(b.Dx(), b.Dy())
	if !ok {
		return Result{Outcome: OutcomeExhausted}, fmt.Errorf(
			"%s: %w after %d attempts", path, ErrScaleSearchExhausted, t.cfg.MaxRetries)
	}

	sw := int(float64(b.Dx()) * factor)
	sh := int(float64(b.Dy()) * factor)
	scaled := imaging.Resize(img, sw, sh, imaging.Lanczos)

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	across := sw / t.cfg.OutputWidth
	down := sh / t.cfg.OutputHeight

	if across >= 1 && down >= 1 {
		paths, err := t.emitGrid(scaled, outDir, stem, across, down)
		if err != nil {
			return Result{}, err
		}
		t.log.WithFields(logrus.Fields{
			"path":  path,
			"scale": factor,
			"tiles": len(paths),
		}).Info("extracted grid tiles")
		return Result{Outcome: OutcomeGrid, Scale: factor, Paths: paths}, nil
	}

	outPath, err := t.emitFallback(scaled, outDir, stem)
	if err != nil {
		return Result{}, err
	}
	t.log.WithFields(logrus.Fields{
		"path":  path,
		"scale": factor,
	}).Info("extracted fallback crop")
	return Result{Outcome: OutcomeFallback, Scale: factor, Paths: []string{outPath}}, nil
}

// searchScale draws scale factors until one leaves both scaled
// dimensions at least as large as the output tile, giving up after the
// configured retry budget.
func (t *Tiler) searchScale(w, h int) (float64, bool) {
	for i := 0; i < t.cfg.MaxRetries; i++ {
		factor := t.sel.Uniform(t.cfg.ScaleMin, t.cfg.ScaleMax)
		sw := int(float64(w) * factor)
		sh := int(float64(h) * factor)
		if sw >= t.cfg.OutputWidth && sh >= t.cfg.OutputHeight {
			return factor, true
		}
	}
	return 0, false
}

// emitGrid crops the full grid of non-overlapping tiles in row-major
// order and saves each one.
func (t *Tiler) emitGrid(scaled *image.NRGBA, outDir, stem string, across, down int) ([]string, error) {
	paths := make([]string, 0, across*down)
	for i := 0; i < down; i++ {
		for j := 0; j < across; j++ {
			rect := gridRect(j, i, t.cfg.OutputWidth, t.cfg.OutputHeight)
			tile := imaging.Crop(scaled, rect)
			outPath := t.nextPath(outDir, stem)
			if err := imgio.Save(tile, outPath, t.format, t.cfg.Quality); err != nil {
				return nil, fmt.Errorf("save %s: %w", outPath, err)
			}
			paths = append(paths, outPath)
		}
	}
	return paths, nil
}

// emitFallback saves a single crop at a uniformly random position that
// lies entirely within the scaled image.
func (t *Tiler) emitFallback(scaled *image.NRGBA, outDir, stem string) (string, error) {
	b := scaled.Bounds()
	if b.Dx() < t.cfg.OutputWidth || b.Dy() < t.cfg.OutputHeight {
		return "", fmt.Errorf("scaled image %dx%d cannot fit a %dx%d crop",
			b.Dx(), b.Dy(), t.cfg.OutputWidth, t.cfg.OutputHeight)
	}
	left := t.sel.IntBetween(0, b.Dx()-t.cfg.OutputWidth)
	top := t.sel.IntBetween(0, b.Dy()-t.cfg.OutputHeight)
	tile := imaging.Crop(scaled, image.Rect(left, top, left+t.cfg.OutputWidth, top+t.cfg.OutputHeight))

	outPath := t.nextPath(outDir, stem)
	if err := imgio.Save(tile, outPath, t.format, t.cfg.Quality); err != nil {
		return "", fmt.Errorf("save %s: %w", outPath, err)
	}
	return outPath, nil
}

// nextPath builds the next unique output filename for this run.
func (t *Tiler) nextPath(outDir, stem string) string {
	name := fmt.Sprintf("%s_%s_%04d%s", stem, t.run, t.seq, t.format.Ext())
	t.seq++
	return filepath.Join(outDir, name)
}

// gridRect returns the exact crop rectangle of the grid cell at column
// j, row i.
func gridRect(j, i, w, h int) image.Rectangle {
	return image.Rect(j*w, i*h, (j+1)*w, (i+1)*h)
}
