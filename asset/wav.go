package asset

import (
	"fmt"
	"io"

	"github.com/gopxl/beep/v2/wav"
)

const wavChunkFrames = 4096

// WAVDecoder decodes RIFF/WAVE files. Mono files stay mono; files with two
// or more channels are decoded as stereo.
type WAVDecoder struct{}

// Decode reads an entire WAV stream.
func (WAVDecoder) Decode(r io.Reader) (*PCM, error) {
	stream, format, err := wav.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("wav: %w", err)
	}
	defer stream.Close()

	channels := 2
	if format.NumChannels == 1 {
		channels = 1
	}

	samples := make([]float32, 0, max(stream.Len(), 0)*channels)
	chunk := make([][2]float64, wavChunkFrames)

	for {
		n, ok := stream.Stream(chunk)
		for _, frame := range chunk[:n] {
			samples = append(samples, float32(frame[0]))
			if channels == 2 {
				samples = append(samples, float32(frame[1]))
			}
		}

		if !ok {
			break
		}
	}

	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("wav: %w", err)
	}

	return New("", float64(format.SampleRate), channels, samples)
}
