package resample

import (
	"errors"
	"math"
)

var (
	// ErrInvalidRatio indicates an invalid up/down ratio.
	ErrInvalidRatio = errors.New("resample: invalid ratio")
	// ErrInvalidRate indicates an invalid input/output sample rate.
	ErrInvalidRate = errors.New("resample: invalid sample rate")
)

// Quality controls anti-aliasing filter length and window.
type Quality int

const (
	// QualityFast uses 16 taps per phase (~55 dB stopband).
	QualityFast Quality = iota
	// QualityBalanced uses 32 taps per phase (~75 dB stopband).
	QualityBalanced
	// QualityBest uses 64 taps per phase (~90 dB stopband).
	QualityBest
)

type config struct {
	tapsPerPhase int
	cutoffScale  float64
	kaiserBeta   float64
	maxDen       int
}

func configFor(q Quality) config {
	switch q {
	case QualityFast:
		return config{tapsPerPhase: 16, cutoffScale: 0.88, kaiserBeta: 5.0, maxDen: 4096}
	case QualityBest:
		return config{tapsPerPhase: 64, cutoffScale: 0.96, kaiserBeta: 9.0, maxDen: 4096}
	default:
		return config{tapsPerPhase: 32, cutoffScale: 0.92, kaiserBeta: 7.5, maxDen: 4096}
	}
}

// Option configures the resampler.
type Option func(*options)

type options struct {
	quality Quality
}

// WithQuality selects a predefined anti-aliasing quality mode.
func WithQuality(q Quality) Option {
	return func(o *options) {
		o.quality = q
	}
}

func resolve(opts []Option) config {
	o := options{quality: QualityBalanced}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return configFor(o.quality)
}

// Resampler performs streaming rational sample-rate conversion.
type Resampler struct {
	up   int
	down int

	phases     [][]float64
	maxPhaseLn int
	center     float64

	phase      int
	inputIndex int
	totalIn    int
	history    []float64
	work       []float64
}

// NewRational creates a resampler for ratio up/down.
func NewRational(up, down int, opts ...Option) (*Resampler, error) {
	if up <= 0 || down <= 0 {
		return nil, ErrInvalidRatio
	}

	g := gcd(up, down)
	up /= g
	down /= g

	cfg := resolve(opts)

	phases, maxPhaseLn, err := designPolyphase(up, down, cfg)
	if err != nil {
		return nil, err
	}

	return &Resampler{
		up:         up,
		down:       down,
		phases:     phases,
		maxPhaseLn: maxPhaseLn,
		center:     0.5 * float64(cfg.tapsPerPhase*up),
		history:    make([]float64, 0, max(0, maxPhaseLn-1)),
	}, nil
}

// NewForRates creates a resampler by approximating outRate/inRate as a ratio.
func NewForRates(inRate, outRate float64, opts ...Option) (*Resampler, error) {
	if !validRate(inRate) || !validRate(outRate) {
		return nil, ErrInvalidRate
	}

	up, down := approximateRatio(outRate/inRate, resolve(opts).maxDen)

	return NewRational(up, down, opts...)
}

// Ratio returns reduced up/down conversion factors.
func (r *Resampler) Ratio() (up, down int) {
	return r.up, r.down
}

// Latency returns the filter group delay in output samples.
func (r *Resampler) Latency() float64 {
	return r.center / float64(r.down)
}

// Reset clears internal filter state.
func (r *Resampler) Reset() {
	r.phase = 0
	r.inputIndex = 0
	r.totalIn = 0
	r.history = r.history[:0]
}

// Process converts an input block and keeps state for the next call.
func (r *Resampler) Process(input []float64) []float64 {
	if len(input) == 0 {
		return nil
	}

	out := make([]float64, 0, r.PredictOutputLen(len(input)))

	r.work = append(append(r.work[:0], r.history...), input...)
	work := r.work

	baseIndex := r.totalIn - len(r.history)
	lastAvail := r.totalIn + len(input) - 1

	for r.inputIndex <= lastAvail {
		var y float64

		for k, c := range r.phases[r.phase] {
			idx := r.inputIndex - k
			if idx < baseIndex {
				break
			}

			y += c * work[idx-baseIndex]
		}

		out = append(out, y)

		r.phase += r.down
		r.inputIndex += r.phase / r.up
		r.phase %= r.up
	}

	r.totalIn += len(input)

	keep := min(max(0, r.maxPhaseLn-1), len(work))
	r.history = append(r.history[:0], work[len(work)-keep:]...)

	return out
}

// PredictOutputLen returns the number of samples the next Process call with
// inputLen samples will produce.
func (r *Resampler) PredictOutputLen(inputLen int) int {
	if inputLen <= 0 {
		return 0
	}

	lastAvail := r.totalIn + inputLen - 1
	i := r.inputIndex
	phase := r.phase

	count := 0
	for i <= lastAvail {
		count++
		phase += r.down
		i += phase / r.up
		phase %= r.up
	}

	return count
}

func validRate(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
