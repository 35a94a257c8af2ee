// Package pairgen builds synthetic training-data pairs for image
// models.
//
// Two engines sit behind one facade: a degradation pipeline that
// produces a corrupted counterpart of each source image (rescale,
// optional blur, optional synthetic noise, lossy or lossless
// re-encode), and a tiling engine that randomly rescales an image and
// slices it into fixed-size crops. A folder-diff helper rounds out the
// toolbox for keeping paired datasets in sync.
//
// Basic usage:
//
//	package main
//
//	import (
//		"log"
//
//		"github.com/menta2k/pairgen"
//		"github.com/menta2k/pairgen/pkg/degrade"
//	)
//
//	func main() {
//		pg := pairgen.New()
//
//		cfg := degrade.DefaultConfig()
//		cfg.Blur = true
//		cfg.Noise = true
//		cfg.SaveAsJPEG = true
//
//		if err := pg.DegradePath("dataset/clean", "dataset/corrupted", cfg); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// Every random decision — algorithm choices left unset, blur radii,
// JPEG quality, tile scale factors and crop positions — flows through a
// single seedable selector, so runs are reproducible under a fixed
// seed. Randomized fields are re-drawn independently for each image in
// a batch, never cached across files.
package pairgen

import (
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/menta2k/pairgen/internal/utils"
	"github.com/menta2k/pairgen/internal/walker"
	"github.com/menta2k/pairgen/pkg/degrade"
	"github.com/menta2k/pairgen/pkg/params"
	"github.com/menta2k/pairgen/pkg/tiler"
)

// Version of the pairgen library
const Version = "1.0.0"

// Pairgen provides a high-level interface to the degradation pipeline
// and the tiling engine.
type Pairgen struct {
	sel *params.Selector
	log *logrus.Logger
}

// New creates a Pairgen with a time-seeded random source and a default
// logger.
func New() *Pairgen {
	return NewWithOptions(0, nil)
}

// NewWithOptions creates a Pairgen with an explicit seed (zero means
// time-seeded) and logger (nil means the logrus standard logger).
func NewWithOptions(seed int64, log *logrus.Logger) *Pairgen {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Pairgen{
		sel: params.NewSeeded(seed),
		log: log,
	}
}

// NewWithRand creates a Pairgen drawing from the given random source.
func NewWithRand(rng *rand.Rand, log *logrus.Logger) *Pairgen {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Pairgen{
		sel: params.New(rng),
		log: log,
	}
}

// DegradePath degrades the image file or directory tree at inputPath,
// writing one corrupted output per source image into outputDir
// (created if absent). Per-file failures are logged and the batch
// continues; only a bad root path or configuration aborts the run.
func (p *Pairgen) DegradePath(inputPath, outputDir string, cfg degrade.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := utils.EnsureDir(outputDir); err != nil {
		return err
	}

	pipe := degrade.New(cfg, p.sel, p.log)
	processed, failed := 0, 0
	err := walker.New(p.log).Walk(inputPath, func(path string) {
		p.log.WithField("path", path).Info("processing file")
		if _, err := pipe.ProcessFile(path, outputDir); err != nil {
			failed++
			p.log.WithField("path", path).WithError(err).Error("degrade failed")
			return
		}
		processed++
	})
	if err != nil {
		return err
	}

	p.log.WithFields(logrus.Fields{
		"processed": processed,
		"failed":    failed,
	}).Info("degradation run complete")
	return nil
}

// TilePath extracts fixed-size crops from the image file or directory
// tree at inputPath into outputDir (created if absent). Undersized
// sources are skipped silently; a file whose scale search exhausts its
// retry budget is reported and the batch continues.
func (p *Pairgen) TilePath(inputPath, outputDir string, cfg tiler.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := utils.EnsureDir(outputDir); err != nil {
		return err
	}

	t := tiler.New(cfg, p.sel, p.log)
	tiles, failed := 0, 0
	err := walker.New(p.log).Walk(inputPath, func(path string) {
		res, err := t.ExtractFile(path, outputDir)
		if err != nil {
			failed++
			p.log.WithField("path", path).WithError(err).Error("tiling failed")
			return
		}
		tiles += len(res.Paths)
	})
	if err != nil {
		return err
	}

	p.log.WithFields(logrus.Fields{
		"tiles":  tiles,
		"failed": failed,
	}).Info("tiling run complete")
	return nil
}
