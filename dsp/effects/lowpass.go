package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-lanes/dsp/core"
	"github.com/cwbudde/algo-lanes/dsp/filter/biquad"
	"github.com/cwbudde/algo-lanes/dsp/filter/design"
)

const (
	defaultLowPassCutoff    = 6900.0
	defaultLowPassResonance = 0.0

	MinCutoffHz     = 10.0
	MaxCutoffHz     = 22050.0
	MinResonanceDB  = -20.0
	MaxResonanceDB  = 40.0
	minSampleRateHz = 1.0
)

// LowPass is a resonant second-order low-pass filter.
type LowPass struct {
	sampleRate float64
	cutoff     float64
	resonance  float64

	section *biquad.Section
}

// NewLowPass creates a low-pass filter with the cutoff fully open at
// 6.9 kHz and a flat (0 dB) resonance.
func NewLowPass(sampleRate float64) (*LowPass, error) {
	if err := validateSampleRate("low-pass", sampleRate); err != nil {
		return nil, err
	}

	lp := &LowPass{
		sampleRate: sampleRate,
		cutoff:     defaultLowPassCutoff,
		resonance:  defaultLowPassResonance,
		section:    biquad.NewSection(biquad.Passthrough()),
	}
	lp.updateCoefficients()

	return lp, nil
}

// SetCutoff sets the cutoff frequency in Hz within [10, 22050].
func (lp *LowPass) SetCutoff(hz float64) error {
	if !core.InRange(hz, MinCutoffHz, MaxCutoffHz) {
		return fmt.Errorf("low-pass cutoff must be in [%g, %g]: %f", MinCutoffHz, MaxCutoffHz, hz)
	}

	lp.cutoff = hz
	lp.updateCoefficients()

	return nil
}

// SetResonance sets the resonance peak in dB within [-20, 40].
func (lp *LowPass) SetResonance(db float64) error {
	if !core.InRange(db, MinResonanceDB, MaxResonanceDB) {
		return fmt.Errorf("low-pass resonance must be in [%g, %g]: %f", MinResonanceDB, MaxResonanceDB, db)
	}

	lp.resonance = db
	lp.updateCoefficients()

	return nil
}

// Cutoff returns the cutoff frequency in Hz.
func (lp *LowPass) Cutoff() float64 { return lp.cutoff }

// Resonance returns the resonance in dB.
func (lp *LowPass) Resonance() float64 { return lp.resonance }

// Coefficients returns the active biquad coefficients.
func (lp *LowPass) Coefficients() biquad.Coefficients { return lp.section.Coefficients }

// ProcessSample filters one sample.
func (lp *LowPass) ProcessSample(x float64) float64 {
	return lp.section.ProcessSample(x)
}

// ProcessInPlace filters buf in place.
func (lp *LowPass) ProcessInPlace(buf []float64) {
	lp.section.ProcessBlock(buf)
}

// Reset clears filter state.
func (lp *LowPass) Reset() {
	lp.section.Reset()
}

func (lp *LowPass) updateCoefficients() {
	lp.section.SetCoefficients(design.Lowpass(lp.cutoff, design.ResonanceToQ(lp.resonance), lp.sampleRate))
}

func validateSampleRate(name string, sampleRate float64) error {
	if sampleRate < minSampleRateHz || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%s sample rate must be > 0 and finite: %f", name, sampleRate)
	}
	return nil
}
