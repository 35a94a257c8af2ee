// Package params resolves partially specified processing options into
// concrete values. Any field left unset is drawn uniformly at random
// from its enumerated domain, and continuous parameters (scale factors,
// blur radii, quality levels) are sampled from configured intervals.
//
// All randomness flows through a Selector so that batch runs are
// reproducible under a fixed seed.
package params

import (
	"fmt"
	"math/rand"
	"time"
)

// Scaling algorithm names accepted by the degradation pipeline.
const (
	ScaleDownUp        = "down_up"
	ScaleLinear        = "linear"
	ScaleCubicMitchell = "cubic_mitchell"
	ScaleLanczos       = "lanczos"
	ScaleGauss         = "gauss"
	ScaleBox           = "box"
)

// Blur algorithm names accepted by the degradation pipeline.
const (
	BlurAverage     = "average"
	BlurGaussian    = "gaussian"
	BlurAnisotropic = "anisotropic"
)

var scalingAlgos = []string{
	ScaleDownUp,
	ScaleLinear,
	ScaleCubicMitchell,
	ScaleLanczos,
	ScaleGauss,
	ScaleBox,
}

var blurTypes = []string{
	BlurAverage,
	BlurGaussian,
	BlurAnisotropic,
}

// ScalingAlgos returns the names of every supported scaling algorithm.
func ScalingAlgos() []string {
	out := make([]string, len(scalingAlgos))
	copy(out, scalingAlgos)
	return out
}

// BlurTypes returns the names of every supported blur algorithm.
func BlurTypes() []string {
	out := make([]string, len(blurTypes))
	copy(out, blurTypes)
	return out
}

// IsScalingAlgo reports whether name is a supported scaling algorithm.
func IsScalingAlgo(name string) bool {
	for _, algo := range scalingAlgos {
		if name == algo {
			return true
		}
	}
	return false
}

// IsBlurType reports whether name is a supported blur algorithm.
func IsBlurType(name string) bool {
	for _, bt := range blurTypes {
		if name == bt {
			return true
		}
	}
	return false
}

// Selector draws configuration values from a random source. Construct
// with New or NewSeeded; the zero value is not usable.
type Selector struct {
	rng *rand.Rand
}

// New creates a Selector backed by the given random source.
func New(rng *rand.Rand) *Selector {
	return &Selector{rng: rng}
}

// NewSeeded creates a Selector seeded with the given value. A seed of
// zero selects a time-based seed, making each run unique.
func NewSeeded(seed int64) *Selector {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Selector{rng: rand.New(rand.NewSource(seed))}
}

// ScalingAlgo resolves a scaling algorithm choice. A non-empty override
// wins; otherwise one algorithm is picked uniformly at random.
func (s *Selector) ScalingAlgo(override string) string {
	if override != "" {
		return override
	}
	return scalingAlgos[s.rng.Intn(len(scalingAlgos))]
}

// BlurType resolves a blur algorithm choice. A non-empty override wins;
// otherwise one algorithm is picked uniformly at random.
func (s *Selector) BlurType(override string) string {
	if override != "" {
		return override
	}
	return blurTypes[s.rng.Intn(len(blurTypes))]
}

// Uniform draws a value uniformly from the closed interval [min, max].
func (s *Selector) Uniform(min, max float64) float64 {
	if min == max {
		return min
	}
	return min + s.rng.Float64()*(max-min)
}

// IntBetween draws an integer uniformly from [min, max], inclusive on
// both ends.
func (s *Selector) IntBetween(min, max int) int {
	if min == max {
		return min
	}
	return min + s.rng.Intn(max-min+1)
}

// Normal draws a normally distributed value with mean zero and the
// given standard deviation.
func (s *Selector) Normal(stddev float64) float64 {
	return s.rng.NormFloat64() * stddev
}

// Token returns a short random hex token, used to keep output filenames
// unique across runs.
func (s *Selector) Token() string {
	return fmt.Sprintf("%08x", s.rng.Uint32())
}
