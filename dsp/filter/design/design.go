package design

import (
	"math"

	"github.com/cwbudde/algo-lanes/dsp/core"
	"github.com/cwbudde/algo-lanes/dsp/filter/biquad"
)

const (
	defaultQ = 1 / math.Sqrt2

	// maxNormalizedFreq keeps designs strictly below Nyquist.
	maxNormalizedFreq = 0.49
	minQ              = 0.05
)

// Lowpass designs an RBJ lowpass biquad at freq (Hz) with quality factor q.
// freq is clamped below Nyquist so a full-range cutoff (22050 Hz at 44.1 kHz)
// still yields a stable section.
func Lowpass(freq, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(ClampCutoff(freq, sampleRate), sampleRate)
	if !ok {
		return biquad.Passthrough()
	}

	q = normalizedQ(q)
	cw := math.Cos(w0)
	sw := math.Sin(w0)
	alpha := sw / (2 * q)

	b1 := 1 - cw
	b0 := b1 / 2
	b2 := b0
	a0 := 1 + alpha
	a1 := -2 * cw
	a2 := 1 - alpha

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// ResonanceToQ maps a resonance peak in dB to the Q of a second-order
// lowpass, whose gain at the cutoff equals Q.
func ResonanceToQ(resonanceDB float64) float64 {
	return math.Max(core.DBToLinear(resonanceDB), minQ)
}

// ClampCutoff limits freq to (0, 0.49*sampleRate].
func ClampCutoff(freq, sampleRate float64) float64 {
	limit := sampleRate * maxNormalizedFreq
	if freq > limit {
		return limit
	}
	return freq
}

func normalizedW0(freq, sampleRate float64) (float64, bool) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return 0, false
	}

	nyquist := sampleRate / 2
	if freq <= 0 || freq >= nyquist || !core.IsFinite(freq) {
		return 0, false
	}

	return 2 * math.Pi * freq / sampleRate, true
}

func normalizedQ(q float64) float64 {
	if q <= 0 || !core.IsFinite(q) {
		return defaultQ
	}

	return q
}

func normalizeBiquad(b0, b1, b2, a0, a1, a2 float64) biquad.Coefficients {
	if a0 == 0 || !core.IsFinite(a0) {
		return biquad.Passthrough()
	}

	return biquad.Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}
}
