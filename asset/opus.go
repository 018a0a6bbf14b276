//go:build opus

package asset

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/hraban/opus.v2"
)

// opusSampleRate is the fixed output rate of libopusfile.
const opusSampleRate = 48000

func init() {
	builtinDecoders[".opus"] = OpusDecoder{Channels: 2}
}

// OpusDecoder decodes Ogg Opus files through libopusfile. Channels must
// match the channel count of the stream; it defaults to stereo.
type OpusDecoder struct {
	Channels int
}

// Decode reads an entire Ogg Opus stream.
func (d OpusDecoder) Decode(r io.Reader) (*PCM, error) {
	channels := d.Channels
	if channels <= 0 {
		channels = 2
	}

	stream, err := opus.NewStream(r)
	if err != nil {
		return nil, fmt.Errorf("opus: %w", err)
	}
	defer stream.Close()

	// 120 ms per read, the largest Opus packet.
	chunk := make([]float32, opusSampleRate*120/1000*channels)

	var samples []float32
	for {
		n, err := stream.ReadFloat32(chunk)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("opus: %w", err)
		}

		samples = append(samples, chunk[:n*channels]...)
	}

	return New("", opusSampleRate, channels, samples)
}
