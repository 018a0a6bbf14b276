package asset

import (
	"errors"
	"io"
	"slices"
	"testing"
	"testing/fstest"
)

func testFS() fstest.MapFS {
	tone := make([]float64, 2*441)
	return fstest.MapFS{
		"bass.wav":        {Data: pcm16WAV(44100, 2, tone)},
		"drums.wav":       {Data: pcm16WAV(48000, 1, make([]float64, 480))},
		"broken.wav":      {Data: []byte("RIFFxxxxWAVE")},
		"loops/stack.wav": {Data: pcm16WAV(48000, 2, make([]float64, 96))},
		"notes.txt":       {Data: []byte("hello")},
	}
}

func TestLibraryLoadByExtensionSearch(t *testing.T) {
	lib := NewLibrary(testFS())

	pcm, err := lib.Load("bass")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if pcm.ID != "bass" || pcm.Frames() != 441 || pcm.SampleRate != 44100 {
		t.Fatalf("pcm = %q %d frames %v Hz", pcm.ID, pcm.Frames(), pcm.SampleRate)
	}
}

func TestLibraryLoadRegisteredPath(t *testing.T) {
	lib := NewLibrary(testFS(), WithResources(Resource{ID: "stack", Title: "Stack 1", Path: "loops/stack.wav"}))

	pcm, err := lib.Load("stack")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if pcm.Frames() != 48 {
		t.Fatalf("frames = %d, want 48", pcm.Frames())
	}

	r, ok := lib.Resource("stack")
	if !ok || r.Title != "Stack 1" {
		t.Fatalf("Resource() = %+v, %v", r, ok)
	}
}

func TestLibraryConformsSampleRate(t *testing.T) {
	lib := NewLibrary(testFS(), WithSampleRate(48000))

	pcm, err := lib.Load("bass")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if pcm.SampleRate != 48000 || pcm.Frames() != 480 {
		t.Fatalf("pcm = %v Hz %d frames, want 48000 Hz 480 frames", pcm.SampleRate, pcm.Frames())
	}
}

func TestLibraryErrors(t *testing.T) {
	lib := NewLibrary(testFS(), WithResources(Resource{ID: "ghost", Path: "ghost.wav"}))

	tests := []struct {
		id   string
		want error
	}{
		{"missing", ErrResourceNotFound},
		{"ghost", ErrResourceNotFound},
		{"broken", ErrDecodeFailed},
		{"notes.txt", ErrResourceNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if _, err := lib.Load(tt.id); !errors.Is(err, tt.want) {
				t.Fatalf("Load(%q) error = %v, want %v", tt.id, err, tt.want)
			}
		})
	}
}

func TestLibraryCustomDecoder(t *testing.T) {
	fsys := fstest.MapFS{"beep.raw": {Data: []byte{1, 2, 3, 4}}}

	raw := DecoderFunc(func(r io.Reader) (*PCM, error) {
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}

		samples := make([]float32, len(b))
		for i, v := range b {
			samples[i] = float32(v) / 10
		}

		return New("", 1000, 1, samples)
	})

	lib := NewLibrary(fsys, WithDecoder(".RAW", raw))

	pcm, err := lib.Load("beep")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if pcm.Frames() != 4 || pcm.Samples[3] != 0.4 {
		t.Fatalf("pcm = %v", pcm.Samples)
	}
}

func TestLibraryDecoderFailureIsWrapped(t *testing.T) {
	cause := errors.New("codec exploded")
	fsys := fstest.MapFS{"x.bin": {Data: []byte{0}}}

	lib := NewLibrary(fsys, WithDecoder(".bin", DecoderFunc(func(io.Reader) (*PCM, error) {
		return nil, cause
	})))

	_, err := lib.Load("x")
	if !errors.Is(err, ErrDecodeFailed) || !errors.Is(err, cause) {
		t.Fatalf("Load() error = %v, want ErrDecodeFailed wrapping cause", err)
	}
}

func TestLibraryLoadAllStopsAtFirstFailure(t *testing.T) {
	lib := NewLibrary(testFS())

	out, err := lib.LoadAll("bass", "drums", "missing")
	if !errors.Is(err, ErrResourceNotFound) || out != nil {
		t.Fatalf("LoadAll() = %v, %v", out, err)
	}
}

func TestLibraryResourcesOrder(t *testing.T) {
	lib := NewLibrary(nil)
	for _, id := range []string{"b", "a", "c", "a"} {
		if err := lib.Add(Resource{ID: id}); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	var ids []string
	for _, r := range lib.Resources() {
		ids = append(ids, r.ID)
	}

	if !slices.Equal(ids, []string{"b", "a", "c"}) {
		t.Fatalf("order = %v, want [b a c]", ids)
	}

	if _, err := lib.Load("a"); !errors.Is(err, ErrResourceNotFound) {
		t.Fatalf("Load() without fs error = %v", err)
	}
}
