// Package lane implements one independently playable audio lane: an
// immutable decoded asset rendered through an exclusively owned effect chain
// into an output voice.
//
// Transport calls (Play, Stop, parameter changes) come from one control
// goroutine. The voice's render goroutine drives Read. The two sides share
// only atomics: state, pending seek, published position and the chain's
// parameter slots.
package lane

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-lanes/asset"
	"github.com/cwbudde/algo-lanes/dsp/buffer"
	"github.com/cwbudde/algo-lanes/dsp/core"
	"github.com/cwbudde/algo-lanes/dsp/effectchain"
	"github.com/cwbudde/algo-lanes/dsp/spectrum"
	"github.com/cwbudde/algo-lanes/output"
)

// ErrPlaybackStartFailed is returned when the voice refuses to start. The
// lane stays Stopped.
var ErrPlaybackStartFailed = errors.New("lane: playback start failed")

// LoopForever repeats the asset until the lane is stopped.
const LoopForever = -1

const (
	defaultBlockSize = 512
	noSeek           = -1
)

// State is the transport state.
type State int32

const (
	Stopped State = iota
	Playing
)

func (s State) String() string {
	if s == Playing {
		return "playing"
	}

	return "stopped"
}

type options struct {
	loops     int
	blockSize int
	analyzer  *spectrum.Analyzer
	onFinish  func(index int)
}

// Option configures a Lane.
type Option func(*options)

// WithLoops sets how many extra passes follow the first one. 0 plays once,
// LoopForever repeats until stopped.
func WithLoops(n int) Option {
	return func(o *options) {
		if n >= LoopForever {
			o.loops = n
		}
	}
}

// WithBlockSize sets the maximum frames processed per chain call.
func WithBlockSize(frames int) Option {
	return func(o *options) {
		if frames > 0 {
			o.blockSize = frames
		}
	}
}

// WithAnalyzer feeds the lane's processed output into a.
func WithAnalyzer(a *spectrum.Analyzer) Option {
	return func(o *options) {
		o.analyzer = a
	}
}

// WithOnFinish registers fn to be called when the final pass ends by
// itself. fn runs on the render goroutine and must not block.
func WithOnFinish(fn func(index int)) Option {
	return func(o *options) {
		o.onFinish = fn
	}
}

// Lane is one playback lane.
type Lane struct {
	index  int
	pcm    *asset.PCM
	chain  *effectchain.Chain
	format output.Format
	opts   options
	voice  output.Voice

	state    atomic.Int32
	seek     atomic.Int64
	position atomic.Int64
	ended    atomic.Bool
	peak     atomic.Uint64
	gain     *core.Param

	// Render-goroutine state.
	cursor    int
	loopsDone int
	gainSeen  uint64
	linear    float64
	block     *buffer.Block
	out       []byte
	pending   []byte
	mono      []float64
}

// New creates a Stopped lane at frame 0 and registers its voice with
// renderer. pcm is conformed to the renderer's sample rate when needed.
// The chain must be built for the renderer's channel count.
func New(index int, pcm *asset.PCM, chain *effectchain.Chain, renderer output.Renderer, opts ...Option) (*Lane, error) {
	o := options{blockSize: defaultBlockSize}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	if pcm == nil || chain == nil || renderer == nil {
		return nil, fmt.Errorf("lane %d: asset, chain and renderer are required", index)
	}

	if err := pcm.Validate(); err != nil {
		return nil, fmt.Errorf("lane %d: %w", index, err)
	}

	if pcm.Frames() == 0 {
		return nil, fmt.Errorf("lane %d: asset %q has no frames", index, pcm.ID)
	}

	format := renderer.Format()
	if format.Channels < 1 || format.SampleRate <= 0 {
		return nil, fmt.Errorf("lane %d: invalid output format %+v", index, format)
	}

	if got := chain.Context().Channels; got != format.Channels {
		return nil, fmt.Errorf("lane %d: chain has %d channels, output has %d", index, got, format.Channels)
	}

	pcm, err := pcm.Conform(format.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("lane %d: %w", index, err)
	}

	l := &Lane{
		index:  index,
		pcm:    pcm,
		chain:  chain,
		format: format,
		opts:   o,
		gain:   core.NewParam(1),
		linear: 1,
		block:  buffer.NewBlock(format.Channels, o.blockSize),
		out:    make([]byte, o.blockSize*format.FrameBytes()),
		mono:   make([]float64, o.blockSize),
	}
	l.seek.Store(noSeek)

	voice, err := renderer.NewVoice(l)
	if err != nil {
		return nil, fmt.Errorf("lane %d: voice: %w", index, err)
	}
	l.voice = voice

	return l, nil
}

// Index returns the lane's position in its pool.
func (l *Lane) Index() int { return l.index }

// Asset returns the lane's immutable asset.
func (l *Lane) Asset() *asset.PCM { return l.pcm }

// Loops returns the configured extra pass count.
func (l *Lane) Loops() int { return l.opts.loops }

// State returns the transport state.
func (l *Lane) State() State { return State(l.state.Load()) }

// IsPlaying reports whether the lane is Playing.
func (l *Lane) IsPlaying() bool { return l.State() == Playing }

// Play starts or resumes rendering from the current position. It is a no-op
// when already Playing. A lane that finished by itself restarts from frame 0.
func (l *Lane) Play() error {
	if !l.state.CompareAndSwap(int32(Stopped), int32(Playing)) {
		return nil
	}

	// A device player latches EOF after the last pass; only a seek
	// releases it.
	if l.ended.Load() {
		l.seek.Store(0)

		if err := l.voice.Rewind(); err != nil {
			l.state.Store(int32(Stopped))

			return fmt.Errorf("%w: lane %d: rewind: %w", ErrPlaybackStartFailed, l.index, err)
		}
	}

	if err := l.voice.Play(); err != nil {
		l.voice.Pause()
		l.state.Store(int32(Stopped))

		return fmt.Errorf("%w: lane %d: %w", ErrPlaybackStartFailed, l.index, err)
	}

	return nil
}

// Stop halts rendering. With reset, the next Play starts at frame 0. Stop
// takes effect immediately for IsPlaying; the device may take one buffer to
// go silent.
func (l *Lane) Stop(reset bool) error {
	l.state.Store(int32(Stopped))
	l.voice.Pause()

	if !reset {
		return nil
	}

	l.seek.Store(0)

	if err := l.voice.Rewind(); err != nil {
		return fmt.Errorf("lane %d: rewind: %w", l.index, err)
	}

	return nil
}

// Close releases the voice. The lane must not be used afterwards.
func (l *Lane) Close() error {
	l.state.Store(int32(Stopped))
	return l.voice.Close()
}

// Position returns the playback position in frames within the current pass.
// A pending rewind is reported immediately, and a lane that played to its
// end reports 0 since the next Play starts over.
func (l *Lane) Position() int64 {
	if s := l.seek.Load(); s != noSeek {
		return s
	}

	if l.ended.Load() {
		return 0
	}

	return l.position.Load()
}

// SetGain sets the lane's linear output gain.
func (l *Lane) SetGain(linear float64) error {
	if linear < 0 || math.IsNaN(linear) || math.IsInf(linear, 0) {
		return fmt.Errorf("lane %d: gain must be finite and >= 0: %v", l.index, linear)
	}

	l.gain.Store(linear)

	return nil
}

// Gain returns the linear output gain.
func (l *Lane) Gain() float64 { return l.gain.Load() }

// Peak returns the absolute peak of the most recently rendered block.
func (l *Lane) Peak() float64 { return math.Float64frombits(l.peak.Load()) }

// Spectrum returns the analyzer's magnitude spectrum in dB, or nil when the
// lane has no analyzer.
func (l *Lane) Spectrum() ([]float64, error) {
	if l.opts.analyzer == nil {
		return nil, nil
	}

	return l.opts.analyzer.Spectrum()
}

// SetEffectParameter forwards to the chain. It never changes transport state.
func (l *Lane) SetEffectParameter(role effectchain.Role, key effectchain.ParamKey, value float64) error {
	return l.chain.SetParameter(role, key, value)
}

// EffectParameter returns the last value set on the chain.
func (l *Lane) EffectParameter(role effectchain.Role, key effectchain.ParamKey) (float64, error) {
	return l.chain.Parameter(role, key)
}

// EffectParameters returns the full parameter set of the node with role.
func (l *Lane) EffectParameters(role effectchain.Role) (map[effectchain.ParamKey]float64, error) {
	return l.chain.Parameters(role)
}

// Roles returns the chain layout.
func (l *Lane) Roles() []effectchain.Role { return l.chain.Roles() }
