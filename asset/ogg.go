package asset

import (
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"
)

// OggDecoder decodes Ogg Vorbis files.
type OggDecoder struct{}

// Decode reads an entire Ogg Vorbis stream.
func (OggDecoder) Decode(r io.Reader) (*PCM, error) {
	samples, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("ogg: %w", err)
	}

	return New("", float64(format.SampleRate), format.Channels, samples)
}
