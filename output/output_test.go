package output

import (
	"errors"
	"fmt"
	"testing"
)

func TestRouteErrorMatching(t *testing.T) {
	cause := errors.New("session busy")
	err := fmt.Errorf("configure: %w", &RouteError{UseSpeaker: true, Err: cause})

	if !errors.Is(err, ErrRoute) {
		t.Fatal("errors.Is(err, ErrRoute) = false")
	}

	if !errors.Is(err, cause) {
		t.Fatal("RouteError does not unwrap to its cause")
	}

	var re *RouteError
	if !errors.As(err, &re) || !re.UseSpeaker {
		t.Fatalf("errors.As() = %v, %+v", errors.As(err, &re), re)
	}

	if got := re.Error(); got != "output: activate speaker route: session busy" {
		t.Fatalf("Error() = %q", got)
	}
}

func TestFormatFrameBytes(t *testing.T) {
	if got := (Format{SampleRate: 48000, Channels: 2}).FrameBytes(); got != 8 {
		t.Fatalf("FrameBytes() = %d, want 8", got)
	}
}
