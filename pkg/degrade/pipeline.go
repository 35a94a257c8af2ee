// Package degrade applies a configurable corruption chain to source
// images: rescale, optional blur, optional synthetic noise, and a final
// lossy or lossless re-encode. Each image gets an independently resolved
// parameter set, so a batch run produces diverse degradations.
package degrade

import (
	"fmt"
	"image"
	"math"
	"path/filepath"
	"strings"

	"github.com/disintegration/gift"
	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"github.com/menta2k/pairgen/pkg/imgio"
	"github.com/menta2k/pairgen/pkg/params"
)

// Gaussian blur sigma is drawn from this range per image, even when the
// blur algorithm itself was chosen explicitly.
const (
	gaussianSigmaMin = 0.5
	gaussianSigmaMax = 2.0
)

// Fixed mix ratio for blending synthetic noise into the image.
const noiseBlendOpacity = 0.5

// Config holds the degradation settings for one run. Empty algorithm
// fields mean "pick randomly per image".
type Config struct {
	Scale          float64 `json:"scale" mapstructure:"scale"`
	ScalingAlgo    string  `json:"scaling_algo" mapstructure:"scaling_algo"`
	Blur           bool    `json:"blur" mapstructure:"blur"`
	BlurType       string  `json:"blur_type" mapstructure:"blur_type"`
	Noise          bool    `json:"noise" mapstructure:"noise"`
	NoiseIntensity float64 `json:"noise_intensity" mapstructure:"noise_intensity"`
	SaveAsJPEG     bool    `json:"save_as_jpeg" mapstructure:"save_as_jpeg"`
	JPEGQualityMin int     `json:"jpeg_quality_min" mapstructure:"jpeg_quality_min"`
	JPEGQualityMax int     `json:"jpeg_quality_max" mapstructure:"jpeg_quality_max"`
}

// DefaultConfig returns the degradation defaults.
func DefaultConfig() Config {
	return Config{
		Scale:          0.25,
		NoiseIntensity: 10.0,
		JPEGQualityMin: 75,
		JPEGQualityMax: 95,
	}
}

// Validate checks the configuration, catching malformed ranges and
// unknown algorithm names before any image is touched.
func (c Config) Validate() error {
	if c.Scale <= 0 {
		return fmt.Errorf("scale must be positive, got %g", c.Scale)
	}
	if c.ScalingAlgo != "" && !params.IsScalingAlgo(c.ScalingAlgo) {
		return fmt.Errorf("unknown scaling algorithm: %s", c.ScalingAlgo)
	}
	if c.BlurType != "" && !params.IsBlurType(c.BlurType) {
		return fmt.Errorf("unknown blur type: %s", c.BlurType)
	}
	if c.NoiseIntensity < 0 {
		return fmt.Errorf("noise intensity must be non-negative, got %g", c.NoiseIntensity)
	}
	if c.JPEGQualityMin < 0 || c.JPEGQualityMax > 100 || c.JPEGQualityMin > c.JPEGQualityMax {
		return fmt.Errorf("jpeg quality range [%d, %d] is invalid", c.JPEGQualityMin, c.JPEGQualityMax)
	}
	return nil
}

// Resolved captures the concrete parameter choices made for one image.
type Resolved struct {
	ScalingAlgo string
	BlurType    string
	BlurSigma   float64
	JPEGQuality int
}

// Pipeline degrades source images according to a Config, resolving any
// unset choices per image through a params.Selector.
type Pipeline struct {
	cfg Config
	sel *params.Selector
	log *logrus.Logger
}

// New creates a degradation pipeline. The caller is expected to have
// validated cfg already.
func New(cfg Config, sel *params.Selector, log *logrus.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, sel: sel, log: log}
}

// resolve draws the per-image parameter set. Called once per image so
// batch runs never reuse a random choice across files.
func (p *Pipeline) resolve() Resolved {
	r := Resolved{
		ScalingAlgo: p.sel.ScalingAlgo(p.cfg.ScalingAlgo),
	}
	if p.cfg.Blur {
		r.BlurType = p.sel.BlurType(p.cfg.BlurType)
		if r.BlurType == params.BlurGaussian {
			r.BlurSigma = p.sel.Uniform(gaussianSigmaMin, gaussianSigmaMax)
		}
	}
	if p.cfg.SaveAsJPEG {
		r.JPEGQuality = p.sel.IntBetween(p.cfg.JPEGQualityMin, p.cfg.JPEGQualityMax)
	}
	return r
}

// Apply runs the scale, blur and noise stages on img and returns the
// degraded raster along with the choices that produced it. Encoding is
// left to the caller.
func (p *Pipeline) Apply(img image.Image) (*image.NRGBA, Resolved) {
	r := p.resolve()

	b := img.Bounds()
	sw := scaledDim(b.Dx(), p.cfg.Scale)
	sh := scaledDim(b.Dy(), p.cfg.Scale)
	out := imaging.Resize(img, sw, sh, resampleFilter(r.ScalingAlgo))

	if p.cfg.Blur {
		out = applyBlur(out, r)
	}
	if p.cfg.Noise {
		noise := p.noiseImage(sw, sh)
		out = imaging.Overlay(out, noise, image.Pt(0, 0), noiseBlendOpacity)
	}
	return out, r
}

// ProcessFile degrades the image at path and writes exactly one output
// file to outDir, named after the input stem. Inputs sharing a stem
// overwrite each other; this is a documented limitation.
func (p *Pipeline) ProcessFile(path, outDir string) (string, error) {
	img, err := imgio.Load(path)
	if err != nil {
		return "", fmt.Errorf("load %s: %w", path, err)
	}

	out, r := p.Apply(img)

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	format := imgio.FormatPNG
	if p.cfg.SaveAsJPEG {
		format = imgio.FormatJPEG
	}
	outPath := filepath.Join(outDir, stem+format.Ext())
	if err := imgio.Save(out, outPath, format, r.JPEGQuality); err != nil {
		return "", fmt.Errorf("save %s: %w", outPath, err)
	}

	fields := logrus.Fields{
		"path":   outPath,
		"algo":   r.ScalingAlgo,
		"format": string(format),
	}
	if p.cfg.Blur {
		fields["blur"] = r.BlurType
	}
	if p.cfg.SaveAsJPEG {
		fields["quality"] = r.JPEGQuality
	}
	p.log.WithFields(fields).Info("saved degraded image")
	return outPath, nil
}

// scaledDim applies the scale factor to one dimension, rounding to the
// nearest pixel with a 1px floor so tiny factors cannot produce an
// empty image.
func scaledDim(d int, scale float64) int {
	s := int(math.Round(float64(d) * scale))
	if s < 1 {
		s = 1
	}
	return s
}

// resampleFilter maps an algorithm name to the imaging resampling
// kernel used for the resize.
func resampleFilter(algo string) imaging.ResampleFilter {
	switch algo {
	case params.ScaleDownUp:
		return imaging.CatmullRom
	case params.ScaleLinear:
		return imaging.Linear
	case params.ScaleCubicMitchell:
		return imaging.Hamming
	case params.ScaleLanczos:
		return imaging.Lanczos
	case params.ScaleGauss:
		return imaging.Gaussian
	case params.ScaleBox:
		return imaging.Box
	default:
		return imaging.Lanczos
	}
}

// smoothKernel is a mild 3x3 smoothing convolution: a heavy center with
// uniform neighbors.
var smoothKernel = []float32{
	1, 1, 1,
	1, 5, 1,
	1, 1, 1,
}

// applyBlur runs the resolved blur algorithm. Blurring never changes
// image dimensions.
func applyBlur(img *image.NRGBA, r Resolved) *image.NRGBA {
	switch r.BlurType {
	case params.BlurGaussian:
		return imaging.Blur(img, r.BlurSigma)
	case params.BlurAverage:
		return drawFilter(img, gift.Mean(3, true))
	case params.BlurAnisotropic:
		return drawFilter(img, gift.Convolution(smoothKernel, true, false, false, 0))
	default:
		return img
	}
}

// drawFilter applies a single gift filter to img.
func drawFilter(img *image.NRGBA, f gift.Filter) *image.NRGBA {
	g := gift.New(f)
	dst := image.NewNRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return dst
}

// noiseImage builds a monochrome raster whose pixels are normally
// distributed around mid-gray with the configured intensity as standard
// deviation.
func (p *Pipeline) noiseImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		v := 128 + p.sel.Normal(p.cfg.NoiseIntensity)
		g := uint8(math.Max(0, math.Min(255, v)))
		img.Pix[i] = g
		img.Pix[i+1] = g
		img.Pix[i+2] = g
		img.Pix[i+3] = 0xff
	}
	return img
}
