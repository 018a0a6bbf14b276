package asset

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cwbudde/algo-lanes/dsp/resample"
)

// PCM is decoded, interleaved float32 audio. It must not be modified after
// it is handed to a lane.
type PCM struct {
	ID         string
	SampleRate float64
	Channels   int
	Samples    []float32
}

// New wraps interleaved samples. The slice is not copied.
func New(id string, sampleRate float64, channels int, samples []float32) (*PCM, error) {
	p := &PCM{ID: id, SampleRate: sampleRate, Channels: channels, Samples: samples}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// Validate checks the format fields and sample count.
func (p *PCM) Validate() error {
	switch {
	case p.SampleRate <= 0 || math.IsNaN(p.SampleRate) || math.IsInf(p.SampleRate, 0):
		return fmt.Errorf("asset %q: sample rate must be > 0: %f", p.ID, p.SampleRate)
	case p.Channels < 1:
		return fmt.Errorf("asset %q: channels must be >= 1: %d", p.ID, p.Channels)
	case len(p.Samples)%p.Channels != 0:
		return fmt.Errorf("asset %q: %d samples is not a whole number of %d-channel frames",
			p.ID, len(p.Samples), p.Channels)
	}

	return nil
}

// Frames returns the number of frames.
func (p *PCM) Frames() int {
	if p.Channels == 0 {
		return 0
	}

	return len(p.Samples) / p.Channels
}

// Duration returns the playing time of one pass.
func (p *PCM) Duration() time.Duration {
	return time.Duration(float64(p.Frames()) / p.SampleRate * float64(time.Second))
}

// Conform returns p resampled to sampleRate. p is returned unchanged when
// the rates already match.
func (p *PCM) Conform(sampleRate float64) (*PCM, error) {
	if p.SampleRate == sampleRate {
		return p, nil
	}

	samples, err := resample.Interleaved(p.Samples, p.Channels, p.SampleRate, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("asset %q: conform %g -> %g Hz: %w", p.ID, p.SampleRate, sampleRate, err)
	}

	return &PCM{ID: p.ID, SampleRate: sampleRate, Channels: p.Channels, Samples: samples}, nil
}

// Tone synthesizes a sine of freq Hz at amplitude amp, identical on every
// channel. It backs dry runs and tests that have no audio files.
func Tone(id string, freq, amp, seconds, sampleRate float64, channels int) (*PCM, error) {
	if seconds <= 0 || freq <= 0 {
		return nil, errors.New("asset: tone needs positive frequency and length")
	}

	frames := int(math.Round(seconds * sampleRate))
	samples := make([]float32, frames*max(channels, 0))

	for i := range frames {
		v := float32(amp * math.Sin(2*math.Pi*freq*float64(i)/sampleRate))
		for ch := range channels {
			samples[i*channels+ch] = v
		}
	}

	return New(id, sampleRate, channels, samples)
}
