package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-lanes/dsp/core"
	"github.com/cwbudde/algo-lanes/dsp/delay"
	"github.com/cwbudde/algo-lanes/dsp/filter/biquad"
	"github.com/cwbudde/algo-lanes/dsp/filter/design"
)

const (
	defaultDelayTimeSeconds = 1.0
	defaultDelayFeedback    = 0.5
	defaultDelayToneCutoff  = 15000.0
	defaultDelayMix         = 1.0

	MinDelayTimeSeconds = 0.0
	MaxDelayTimeSeconds = 2.0

	// maxFeedbackGain bounds the applied loop gain; ±100 % would never decay.
	maxFeedbackGain = 0.995
)

// Delay is a feedback delay whose wet path runs through a low-pass tone
// filter, mixed with the dry signal.
type Delay struct {
	sampleRate   float64
	delaySeconds float64
	feedback     float64
	toneCutoff   float64
	mix          float64

	delaySamples float64
	line         *delay.Line
	tone         *biquad.Section
}

// NewDelay creates a delay with the defaults of a fresh delay unit: 1 s,
// 50 % feedback, 15 kHz wet tone and a fully wet mix.
func NewDelay(sampleRate float64) (*Delay, error) {
	if err := validateSampleRate("delay", sampleRate); err != nil {
		return nil, err
	}

	line, err := delay.New(int(math.Ceil(MaxDelayTimeSeconds*sampleRate)) + 4)
	if err != nil {
		return nil, fmt.Errorf("delay line: %w", err)
	}

	d := &Delay{
		sampleRate:   sampleRate,
		delaySeconds: defaultDelayTimeSeconds,
		feedback:     defaultDelayFeedback,
		toneCutoff:   defaultDelayToneCutoff,
		mix:          defaultDelayMix,
		line:         line,
		tone:         biquad.NewSection(biquad.Passthrough()),
	}
	d.updateDelaySamples()
	d.updateTone()

	return d, nil
}

// SetTime sets delay time in seconds within [0, 2]. Times shorter than one
// frame are rendered as a one-frame delay.
func (d *Delay) SetTime(seconds float64) error {
	if !core.InRange(seconds, MinDelayTimeSeconds, MaxDelayTimeSeconds) {
		return fmt.Errorf("delay time must be in [%g, %g]: %f",
			MinDelayTimeSeconds, MaxDelayTimeSeconds, seconds)
	}

	d.delaySeconds = seconds
	d.updateDelaySamples()

	return nil
}

// SetFeedback sets the signed feedback amount in [-1, 1].
func (d *Delay) SetFeedback(feedback float64) error {
	if !core.InRange(feedback, -1, 1) {
		return fmt.Errorf("delay feedback must be in [-1, 1]: %f", feedback)
	}

	d.feedback = feedback

	return nil
}

// SetToneCutoff sets the wet-path low-pass cutoff in Hz within [10, 22050].
func (d *Delay) SetToneCutoff(hz float64) error {
	if !core.InRange(hz, MinCutoffHz, MaxCutoffHz) {
		return fmt.Errorf("delay tone cutoff must be in [%g, %g]: %f", MinCutoffHz, MaxCutoffHz, hz)
	}

	d.toneCutoff = hz
	d.updateTone()

	return nil
}

// SetMix sets wet amount in [0, 1].
func (d *Delay) SetMix(mix float64) error {
	if !core.InRange(mix, 0, 1) {
		return fmt.Errorf("delay mix must be in [0, 1]: %f", mix)
	}

	d.mix = mix

	return nil
}

// Reset clears delay and tone state.
func (d *Delay) Reset() {
	d.line.Reset()
	d.tone.Reset()
}

// ProcessSample processes one sample.
func (d *Delay) ProcessSample(input float64) float64 {
	wet := d.tone.ProcessSample(d.line.ReadFractional(d.delaySamples))

	fb := core.Clamp(d.feedback, -maxFeedbackGain, maxFeedbackGain)
	d.line.Write(core.FlushDenormals(input + wet*fb))

	return input*(1-d.mix) + wet*d.mix
}

// ProcessInPlace applies delay to buf in place.
func (d *Delay) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = d.ProcessSample(buf[i])
	}
}

// Time returns delay time in seconds.
func (d *Delay) Time() float64 { return d.delaySeconds }

// Feedback returns the signed feedback amount in [-1, 1].
func (d *Delay) Feedback() float64 { return d.feedback }

// ToneCutoff returns the wet-path cutoff in Hz.
func (d *Delay) ToneCutoff() float64 { return d.toneCutoff }

// Mix returns wet amount in [0, 1].
func (d *Delay) Mix() float64 { return d.mix }

// DelaySamples returns the effective delay in frames.
func (d *Delay) DelaySamples() float64 { return d.delaySamples }

func (d *Delay) updateDelaySamples() {
	d.delaySamples = core.Clamp(d.delaySeconds*d.sampleRate, 1, d.line.MaxDelay())
}

func (d *Delay) updateTone() {
	d.tone.SetCoefficients(design.Lowpass(d.toneCutoff, 0, d.sampleRate))
}
