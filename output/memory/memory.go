// Package memory implements output.Router and output.Renderer without a
// device. Audio is pulled explicitly with Renderer.Render, which makes
// rendering deterministic for tests and dry runs.
package memory

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/cwbudde/algo-lanes/dsp/buffer"
	"github.com/cwbudde/algo-lanes/output"
)

// Router records route activations.
type Router struct {
	mu         sync.Mutex
	calls      []bool
	fail       error
	active     bool
	useSpeaker bool
}

// NewRouter returns an inactive router.
func NewRouter() *Router {
	return &Router{}
}

// Activate records the route, or fails with a *output.RouteError when a
// failure is armed.
func (r *Router) Activate(useSpeaker bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, useSpeaker)

	if r.fail != nil {
		return &output.RouteError{UseSpeaker: useSpeaker, Err: r.fail}
	}

	r.active = true
	r.useSpeaker = useSpeaker

	return nil
}

// SetFailure makes every later Activate fail with err. nil clears it.
func (r *Router) SetFailure(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.fail = err
}

// Calls returns the route argument of every Activate call.
func (r *Router) Calls() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]bool(nil), r.calls...)
}

// Route reports whether a route is active and whether it is the speaker.
func (r *Router) Route() (active, useSpeaker bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.active, r.useSpeaker
}

// Renderer hands out Voices and pulls audio from them on Render.
type Renderer struct {
	format output.Format

	mu        sync.Mutex
	voices    []*Voice
	failVoice error
	failPlay  map[int]error
}

// NewRenderer returns a renderer for format.
func NewRenderer(format output.Format) *Renderer {
	return &Renderer{format: format, failPlay: make(map[int]error)}
}

// Format returns the configured format.
func (r *Renderer) Format() output.Format { return r.format }

// NewVoice wraps src. Voices are numbered in creation order from 0.
func (r *Renderer) NewVoice(src io.ReadSeeker) (output.Voice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failVoice != nil {
		return nil, r.failVoice
	}

	v := &Voice{
		index:      len(r.voices),
		src:        src,
		frameBytes: r.format.FrameBytes(),
		renderer:   r,
	}
	r.voices = append(r.voices, v)

	return v, nil
}

// FailNewVoice makes NewVoice fail with err. nil clears it.
func (r *Renderer) FailNewVoice(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.failVoice = err
}

// FailPlay makes Play on the voice with the given creation index fail with
// err. nil clears it. The failure also applies to voices created later with
// that index.
func (r *Renderer) FailPlay(index int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err == nil {
		delete(r.failPlay, index)
		return
	}

	r.failPlay[index] = err
}

func (r *Renderer) playFailure(index int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.failPlay[index]
}

// Voices returns every voice created so far, closed ones included.
func (r *Renderer) Voices() []*Voice {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]*Voice(nil), r.voices...)
}

// Live returns voices that have not been closed.
func (r *Renderer) Live() []*Voice {
	var live []*Voice
	for _, v := range r.Voices() {
		if !v.Closed() {
			live = append(live, v)
		}
	}

	return live
}

// Render pulls frames from every live, playing voice and returns what each
// produced, indexed like Live. Silent voices yield nil.
func (r *Renderer) Render(frames int) ([][]float32, error) {
	live := r.Live()
	out := make([][]float32, len(live))

	var errs []error
	for i, v := range live {
		samples, err := v.Pull(frames)
		if err != nil {
			errs = append(errs, fmt.Errorf("voice %d: %w", v.index, err))
		}

		out[i] = samples
	}

	return out, errors.Join(errs...)
}

// Voice is a pull-driven output.Voice. Transport calls never wait for a
// Pull in progress.
type Voice struct {
	index      int
	src        io.ReadSeeker
	frameBytes int
	renderer   *Renderer

	playing atomic.Bool
	closed  atomic.Bool
	eof     atomic.Bool

	mu       sync.Mutex
	rendered int64
	scratch  []byte
}

// Index returns the voice's creation index.
func (v *Voice) Index() int { return v.index }

// Play starts pulling on the next Render. Like a device player, a voice
// whose source reported io.EOF stays paused until Rewind.
func (v *Voice) Play() error {
	if err := v.renderer.playFailure(v.index); err != nil {
		return err
	}

	if v.closed.Load() {
		return output.ErrDeviceUnavailable
	}

	if v.eof.Load() {
		return nil
	}

	v.playing.Store(true)

	return nil
}

// Pause stops pulling.
func (v *Voice) Pause() {
	v.playing.Store(false)
}

// Rewind seeks the source to the start and clears a latched EOF. The
// source must tolerate Seek concurrently with Read.
func (v *Voice) Rewind() error {
	if _, err := v.src.Seek(0, io.SeekStart); err != nil {
		return err
	}

	v.eof.Store(false)

	return nil
}

// EOF reports whether the source reported io.EOF since the last Rewind.
func (v *Voice) EOF() bool {
	return v.eof.Load()
}

// IsPlaying reports whether the voice is pulling audio.
func (v *Voice) IsPlaying() bool {
	return v.playing.Load()
}

// Close stops the voice for good.
func (v *Voice) Close() error {
	v.playing.Store(false)
	v.closed.Store(true)

	return nil
}

// Closed reports whether Close was called.
func (v *Voice) Closed() bool {
	return v.closed.Load()
}

// Rendered returns the number of frames pulled so far.
func (v *Voice) Rendered() int64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.rendered
}

// Pull reads up to frames frames when playing. Like a device player, the
// voice stops by itself and latches EOF when the source reports io.EOF.
func (v *Voice) Pull(frames int) ([]float32, error) {
	if !v.playing.Load() || frames <= 0 {
		return nil, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	need := frames * v.frameBytes
	if cap(v.scratch) < need {
		v.scratch = make([]byte, need)
	}
	buf := v.scratch[:need]

	n, err := io.ReadFull(v.src, buf)
	n -= n % v.frameBytes
	v.rendered += int64(n / v.frameBytes)

	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		v.eof.Store(true)
		v.playing.Store(false)
		err = nil
	case err != nil:
		v.playing.Store(false)
	}

	return buffer.Float32LE(buf[:n]), err
}
