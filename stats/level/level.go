// Package level measures the signal level of decoded lane assets: peak, RMS,
// DC offset, crest factor and clipping, per channel and over all channels.
package level

import (
	"math"

	"github.com/cwbudde/algo-lanes/dsp/core"
)

// ClipThreshold is the absolute sample value counted as clipped.
const ClipThreshold = 0.999

// Stats summarizes one channel, or the whole signal.
type Stats struct {
	Frames   int
	DC       float64 // mean
	RMS      float64
	Peak     float64 // max absolute sample
	PeakPos  int     // frame index of the first peak
	Crest    float64 // peak / RMS, 0 when RMS is 0
	Clipped  int     // samples at or above ClipThreshold
	Crossing int     // zero crossings
}

// PeakDB returns Peak in dBFS.
func (s Stats) PeakDB() float64 { return ampToDB(s.Peak) }

// RMSDB returns RMS in dBFS.
func (s Stats) RMSDB() float64 { return ampToDB(s.RMS) }

// CrestDB returns the crest factor in dB, or 0 for silence.
func (s Stats) CrestDB() float64 {
	if s.Crest == 0 {
		return 0
	}

	return 20 * math.Log10(s.Crest)
}

func ampToDB(v float64) float64 {
	if v == 0 {
		return math.Inf(-1)
	}

	return core.LinearToDB(math.Abs(v))
}

// Meter accumulates statistics over blocks of one channel.
type Meter struct {
	n       int
	mean    float64
	sumSq   float64
	peak    float64
	peakPos int
	clipped int
	cross   int
	last    float64
}

// Update adds samples. The mean uses a running update to stay stable over
// long assets.
func (m *Meter) Update(samples ...float64) {
	for _, x := range samples {
		m.n++
		m.mean += (x - m.mean) / float64(m.n)
		m.sumSq += x * x

		if a := math.Abs(x); a > m.peak {
			m.peak = a
			m.peakPos = m.n - 1
		}

		if math.Abs(x) >= ClipThreshold {
			m.clipped++
		}

		if m.n > 1 && m.last*x < 0 {
			m.cross++
		}

		m.last = x
	}
}

// Result returns the statistics collected so far.
func (m *Meter) Result() Stats {
	if m.n == 0 {
		return Stats{}
	}

	s := Stats{
		Frames:   m.n,
		DC:       m.mean,
		RMS:      math.Sqrt(m.sumSq / float64(m.n)),
		Peak:     m.peak,
		PeakPos:  m.peakPos,
		Clipped:  m.clipped,
		Crossing: m.cross,
	}

	if s.RMS > 0 {
		s.Crest = s.Peak / s.RMS
	}

	return s
}

// Reset clears the meter.
func (m *Meter) Reset() {
	*m = Meter{}
}

// Report holds per-channel statistics and their combination.
type Report struct {
	Channels []Stats
	Total    Stats
}

// Measure analyzes interleaved samples with the given channel count. The
// total treats every sample alike; Total.Frames is the frame count and
// Total.PeakPos the frame holding the loudest sample.
func Measure(samples []float32, channels int) Report {
	if channels < 1 {
		return Report{}
	}

	meters := make([]Meter, channels)
	var total Meter

	for i, s := range samples {
		v := float64(s)
		meters[i%channels].Update(v)
		total.Update(v)
	}

	r := Report{Channels: make([]Stats, channels)}
	for ch := range meters {
		r.Channels[ch] = meters[ch].Result()
	}

	r.Total = total.Result()
	r.Total.Frames = len(samples) / channels
	r.Total.PeakPos /= channels
	// crossings are only meaningful within a channel
	r.Total.Crossing = 0
	for _, c := range r.Channels {
		r.Total.Crossing += c.Crossing
	}

	return r
}
