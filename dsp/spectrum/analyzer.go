package spectrum

import (
	"errors"
	"fmt"
	"math"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-lanes/dsp/window"
)

const (
	MinAnalyzerSize     = 64
	MaxAnalyzerSize     = 16384
	DefaultAnalyzerSize = 2048
)

var errAnalyzerSize = errors.New("spectrum: analyzer size must be a power of two")

// Analyzer keeps the most recent Size samples of a signal and computes a
// single-sided Hann-windowed magnitude spectrum on demand.
//
// Write is called from the render goroutine and never blocks: when a reader
// holds the ring, the written samples are dropped. Spectrum is called from
// the control side; concurrent Spectrum calls are serialized.
type Analyzer struct {
	size       int
	sampleRate float64

	mu     sync.Mutex
	ring   []float64
	write  int
	filled int

	readMu sync.Mutex
	frame  []float64
	win    []float64
	norm   float64
	in     []complex128
	out    []complex128
	plan   *algofft.Plan[complex128]
}

// NewAnalyzer creates an analyzer over size samples at sampleRate.
func NewAnalyzer(size int, sampleRate float64) (*Analyzer, error) {
	if size < MinAnalyzerSize || size > MaxAnalyzerSize || size&(size-1) != 0 {
		return nil, fmt.Errorf("%w in [%d, %d]: %d", errAnalyzerSize, MinAnalyzerSize, MaxAnalyzerSize, size)
	}

	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("spectrum: sample rate must be > 0 and finite: %f", sampleRate)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("spectrum: init fft plan: %w", err)
	}

	win := window.Generate(window.TypeHann, size, window.WithPeriodic())

	return &Analyzer{
		size:       size,
		sampleRate: sampleRate,
		ring:       make([]float64, size),
		frame:      make([]float64, size),
		win:        win,
		norm:       float64(size) * window.CoherentGain(win),
		in:         make([]complex128, size),
		out:        make([]complex128, size),
		plan:       plan,
	}, nil
}

// Size returns the FFT length.
func (a *Analyzer) Size() int { return a.size }

// Bins returns the number of single-sided bins, Size/2+1.
func (a *Analyzer) Bins() int { return a.size/2 + 1 }

// BinFrequency returns the center frequency of bin k in Hz.
func (a *Analyzer) BinFrequency(k int) float64 {
	return float64(k) * a.sampleRate / float64(a.size)
}

// Write appends samples to the ring.
func (a *Analyzer) Write(samples []float64) {
	if !a.mu.TryLock() {
		return
	}
	defer a.mu.Unlock()

	if len(samples) > a.size {
		samples = samples[len(samples)-a.size:]
	}

	for _, s := range samples {
		a.ring[a.write] = s
		a.write++
		if a.write >= a.size {
			a.write = 0
		}
	}

	a.filled = min(a.filled+len(samples), a.size)
}

// Reset discards buffered samples. Like Write it never waits: while a
// reader holds the ring the reset is skipped.
func (a *Analyzer) Reset() {
	if !a.mu.TryLock() {
		return
	}
	defer a.mu.Unlock()

	clear(a.ring)
	a.write = 0
	a.filled = 0
}

// Filled reports how many samples are buffered, up to Size.
func (a *Analyzer) Filled() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.filled
}

// Spectrum returns Bins() magnitudes in dB, floored at FloorDB. A sinusoid of
// amplitude 1 reads close to 0 dB. Unfilled history counts as silence.
func (a *Analyzer) Spectrum() ([]float64, error) {
	a.readMu.Lock()
	defer a.readMu.Unlock()

	a.mu.Lock()
	n := copy(a.frame, a.ring[a.write:])
	copy(a.frame[n:], a.ring[:a.write])
	a.mu.Unlock()

	for i, s := range a.frame {
		a.in[i] = complex(s*a.win[i], 0)
	}

	if err := a.plan.Forward(a.out, a.in); err != nil {
		return nil, fmt.Errorf("spectrum: forward fft: %w", err)
	}

	bins := a.Bins()
	db := make([]float64, bins)
	MagnitudeInto(db, a.out[:bins])

	last := bins - 1
	for k := range db {
		db[k] /= a.norm
		if k > 0 && k < last {
			db[k] *= 2
		}
	}

	AmplitudeToDB(db)

	return db, nil
}
