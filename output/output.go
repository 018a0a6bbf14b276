package output

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrRoute matches every *RouteError.
	ErrRoute = errors.New("output: route change failed")

	// ErrDeviceUnavailable is returned when the device cannot render.
	ErrDeviceUnavailable = errors.New("output: device unavailable")
)

// Format describes the sample layout a Renderer consumes.
type Format struct {
	SampleRate float64
	Channels   int
}

// FrameBytes returns the size of one float32 interleaved frame.
func (f Format) FrameBytes() int {
	return 4 * f.Channels
}

// Router owns the process-wide output route. Activate is idempotent.
type Router interface {
	Activate(useSpeaker bool) error
}

// Renderer creates one Voice per lane. Voices pull from src on a goroutine
// owned by the Renderer.
type Renderer interface {
	Format() Format
	NewVoice(src io.ReadSeeker) (Voice, error)
}

// Voice is one lane's playback handle on the device. Play returns once the
// device has been told to start, not once audio is audible.
type Voice interface {
	Play() error
	Pause()
	// Rewind discards buffered audio and seeks the source to the start.
	Rewind() error
	IsPlaying() bool
	Close() error
}

// RouteError reports a failed route change.
type RouteError struct {
	UseSpeaker bool
	Err        error
}

func (e *RouteError) Error() string {
	route := "default"
	if e.UseSpeaker {
		route = "speaker"
	}

	return fmt.Sprintf("output: activate %s route: %v", route, e.Err)
}

func (e *RouteError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrRoute) match any RouteError.
func (e *RouteError) Is(target error) bool { return target == ErrRoute }
