package window

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeHamming
	TypeBlackman
)

// String returns the window name.
func (t Type) String() string {
	switch t {
	case TypeRectangular:
		return "Rectangular"
	case TypeHann:
		return "Hann"
	case TypeHamming:
		return "Hamming"
	case TypeBlackman:
		return "Blackman"
	default:
		return "Unknown"
	}
}

// Option configures window generation.
type Option func(*config)

type config struct {
	periodic bool
}

// WithPeriodic configures periodic form (FFT framing) instead of symmetric form.
func WithPeriodic() Option {
	return func(c *config) {
		c.periodic = true
	}
}

// Generate returns window coefficients of the given length.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}

	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	den := float64(length - 1)
	if cfg.periodic {
		den = float64(length)
	}

	out := make([]float64, length)
	if den == 0 {
		out[0] = 1
		return out
	}

	for i := range out {
		x := 2 * math.Pi * float64(i) / den
		out[i] = eval(t, x)
	}

	return out
}

// Apply multiplies buf in place by coeffs. Mismatched lengths are a no-op.
func Apply(buf, coeffs []float64) {
	if len(buf) == 0 || len(buf) != len(coeffs) {
		return
	}

	vecmath.MulBlockInPlace(buf, coeffs)
}

// ApplyTo writes samples*coeffs to dst. All three slices must share a length.
func ApplyTo(dst, samples, coeffs []float64) {
	if len(dst) != len(samples) || len(samples) != len(coeffs) {
		return
	}

	vecmath.MulBlock(dst, samples, coeffs)
}

// CoherentGain returns the mean coefficient, the amplitude correction for a
// windowed sinusoid.
func CoherentGain(coeffs []float64) float64 {
	if len(coeffs) == 0 {
		return 0
	}

	sum := 0.0
	for _, c := range coeffs {
		sum += c
	}

	return sum / float64(len(coeffs))
}

func eval(t Type, x float64) float64 {
	switch t {
	case TypeHann:
		return 0.5 - 0.5*math.Cos(x)
	case TypeHamming:
		return 0.54 - 0.46*math.Cos(x)
	case TypeBlackman:
		return 0.42 - 0.5*math.Cos(x) + 0.08*math.Cos(2*x)
	default:
		return 1
	}
}
