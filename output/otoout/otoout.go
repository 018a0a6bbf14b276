// Package otoout renders lanes on the system audio device through oto.
//
// oto supports a single device context per process, so a Session is the
// process-wide output owner: open it once, pass it to the engine as both
// Router and Renderer, and Close it at shutdown.
package otoout

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/cwbudde/algo-lanes/output"
)

const (
	defaultSampleRate = 48000
	defaultChannels   = 2
	defaultBuffer     = 40 * time.Millisecond
)

type options struct {
	sampleRate int
	channels   int
	buffer     time.Duration
	logger     *log.Logger
}

// Option configures a Session.
type Option func(*options)

// WithSampleRate sets the device sample rate in Hz.
func WithSampleRate(hz int) Option {
	return func(o *options) {
		if hz > 0 {
			o.sampleRate = hz
		}
	}
}

// WithChannels sets the device channel count (1 or 2).
func WithChannels(n int) Option {
	return func(o *options) {
		if n == 1 || n == 2 {
			o.channels = n
		}
	}
}

// WithBufferSize sets the device buffer duration.
func WithBufferSize(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.buffer = d
		}
	}
}

// WithLogger sets the logger for route changes.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Session is the oto device context.
type Session struct {
	opts options
	ctx  *oto.Context

	mu         sync.Mutex
	active     bool
	useSpeaker bool
	closed     bool
}

func newOptions(opts []Option) options {
	o := options{
		sampleRate: defaultSampleRate,
		channels:   defaultChannels,
		buffer:     defaultBuffer,
		logger:     log.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

// Open creates the device context and waits until it is ready.
func Open(opts ...Option) (*Session, error) {
	o := newOptions(opts)

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   o.sampleRate,
		ChannelCount: o.channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   o.buffer,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", output.ErrDeviceUnavailable, err)
	}
	<-ready

	return &Session{opts: o, ctx: ctx, active: true}, nil
}

// Format returns the device format.
func (s *Session) Format() output.Format {
	return output.Format{SampleRate: float64(s.opts.sampleRate), Channels: s.opts.channels}
}

// Activate resumes the device. oto has no route selection; the speaker
// preference is recorded and reported but the system default device keeps
// playing.
func (s *Session) Activate(useSpeaker bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return &output.RouteError{UseSpeaker: useSpeaker, Err: errors.New("session closed")}
	}

	if err := s.ctx.Err(); err != nil {
		return &output.RouteError{UseSpeaker: useSpeaker, Err: err}
	}

	if !s.active {
		if err := s.ctx.Resume(); err != nil {
			return &output.RouteError{UseSpeaker: useSpeaker, Err: err}
		}
		s.active = true
	}

	if s.useSpeaker != useSpeaker {
		s.opts.logger.Printf("otoout: route preference speaker=%t (system default device)", useSpeaker)
	}
	s.useSpeaker = useSpeaker

	return nil
}

// UseSpeaker returns the recorded route preference.
func (s *Session) UseSpeaker() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.useSpeaker
}

// Suspend pauses the device without closing the session.
func (s *Session) Suspend() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return nil
	}

	if err := s.ctx.Suspend(); err != nil {
		return fmt.Errorf("otoout: suspend: %w", err)
	}
	s.active = false

	return nil
}

// Close suspends the device. oto contexts cannot be reopened within a
// process.
func (s *Session) Close() error {
	err := s.Suspend()

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	return err
}

// NewVoice creates an oto player reading from src.
func (s *Session) NewVoice(src io.ReadSeeker) (output.Voice, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()

	if closed {
		return nil, fmt.Errorf("%w: session closed", output.ErrDeviceUnavailable)
	}

	if err := s.ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", output.ErrDeviceUnavailable, err)
	}

	return &voice{session: s, player: s.ctx.NewPlayer(src)}, nil
}

type voice struct {
	session *Session
	player  *oto.Player
}

func (v *voice) Play() error {
	if err := v.session.ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", output.ErrDeviceUnavailable, err)
	}

	if err := v.player.Err(); err != nil {
		return fmt.Errorf("%w: %w", output.ErrDeviceUnavailable, err)
	}

	v.player.Play()

	return nil
}

func (v *voice) Pause() {
	v.player.Pause()
}

func (v *voice) Rewind() error {
	if _, err := v.player.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("otoout: rewind: %w", err)
	}

	return nil
}

func (v *voice) IsPlaying() bool {
	return v.player.IsPlaying()
}

// Close pauses the player. The player is released once unreferenced.
func (v *voice) Close() error {
	v.player.Pause()
	return nil
}
