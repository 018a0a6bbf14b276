// Package testutil holds deterministic signals and tolerance assertions
// shared by the DSP, lane and engine tests.
package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates amplitude·sin(2π·freqHz·n/sampleRate).
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Impulse generates a unit impulse at pos.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// DC generates a constant signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Ramp returns frames where sample i is i/scale. With a power-of-two scale
// every value survives a float32 round trip exactly, so rendered output can
// be mapped back to a source frame.
func Ramp(length int, scale float64) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = float64(i) / scale
	}
	return out
}

// Interleave packs equally long channels into interleaved float32 frames.
func Interleave(channels ...[]float64) []float32 {
	if len(channels) == 0 {
		return nil
	}

	frames := len(channels[0])
	out := make([]float32, frames*len(channels))
	for ch, s := range channels {
		for i := 0; i < frames && i < len(s); i++ {
			out[i*len(channels)+ch] = float32(s[i])
		}
	}
	return out
}

// Channel extracts channel ch of interleaved float32 frames as float64.
func Channel(interleaved []float32, channels, ch int) []float64 {
	if channels <= 0 {
		return nil
	}

	out := make([]float64, len(interleaved)/channels)
	for i := range out {
		out[i] = float64(interleaved[i*channels+ch])
	}
	return out
}
