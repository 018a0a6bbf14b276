package buffer

// Block is a planar multi-channel float64 buffer. Every channel slice has
// the same length, Frames.
type Block struct {
	channels [][]float64
	frames   int
}

// NewBlock returns a zero-filled block. Negative sizes are treated as zero.
func NewBlock(channels, frames int) *Block {
	b := &Block{}
	b.Resize(channels, frames)
	return b
}

// Channels returns the channel count.
func (b *Block) Channels() int {
	return len(b.channels)
}

// Frames returns the number of frames per channel.
func (b *Block) Frames() int {
	return b.frames
}

// Channel returns the samples of channel ch. Mutations are visible through
// the block.
func (b *Block) Channel(ch int) []float64 {
	return b.channels[ch]
}

// Resize sets the shape to channels × frames, reusing existing capacity when
// possible. Newly exposed samples are zeroed.
func (b *Block) Resize(channels, frames int) {
	if channels < 0 {
		channels = 0
	}
	if frames < 0 {
		frames = 0
	}

	prevChannels := len(b.channels)
	if channels <= cap(b.channels) {
		b.channels = b.channels[:channels]
	} else {
		grown := make([][]float64, channels)
		copy(grown, b.channels)
		b.channels = grown
	}

	for ch := range b.channels {
		s := b.channels[ch]
		oldLen := len(s)
		if ch >= prevChannels {
			oldLen = 0
		}

		if frames <= cap(s) {
			s = s[:frames]
		} else {
			grown := make([]float64, frames)
			copy(grown, s)
			s = grown
		}

		for i := oldLen; i < frames; i++ {
			s[i] = 0
		}

		b.channels[ch] = s
	}

	b.frames = frames
}

// Zero sets every sample to 0.
func (b *Block) Zero() {
	for _, s := range b.channels {
		clear(s)
	}
}

// ZeroFrom sets frames [start, Frames) of every channel to 0.
func (b *Block) ZeroFrom(start int) {
	if start < 0 {
		start = 0
	}
	if start >= b.frames {
		return
	}

	for _, s := range b.channels {
		clear(s[start:])
	}
}

// Peak returns the largest absolute sample across all channels.
func (b *Block) Peak() float64 {
	peak := 0.0
	for _, s := range b.channels {
		for _, v := range s {
			if v < 0 {
				v = -v
			}
			if v > peak {
				peak = v
			}
		}
	}

	return peak
}

// Copy returns a deep copy of the block.
func (b *Block) Copy() *Block {
	c := NewBlock(b.Channels(), b.frames)
	for ch, s := range b.channels {
		copy(c.channels[ch], s)
	}

	return c
}
