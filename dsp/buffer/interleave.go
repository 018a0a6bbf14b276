package buffer

import (
	"encoding/binary"
	"math"
)

// BytesPerSample is the size of one float32 little-endian sample.
const BytesPerSample = 4

// FrameBytes returns the size in bytes of one interleaved float32 frame.
func FrameBytes(channels int) int {
	return channels * BytesPerSample
}

// Deinterleave copies frames from interleaved src, starting at frame offset,
// into channels of b beginning at frame dstOffset. It returns the number of
// frames copied, limited by both src and the block.
func (b *Block) Deinterleave(src []float32, srcChannels, offset, dstOffset int) int {
	if srcChannels <= 0 || offset < 0 || dstOffset < 0 {
		return 0
	}

	available := len(src)/srcChannels - offset
	n := min(available, b.frames-dstOffset)
	if n <= 0 {
		return 0
	}

	for ch, dst := range b.channels {
		sc := ch
		if sc >= srcChannels {
			sc = srcChannels - 1
		}

		base := offset*srcChannels + sc
		for i := range n {
			dst[dstOffset+i] = float64(src[base+i*srcChannels])
		}
	}

	return n
}

// PutFloat32LE interleaves the first frames frames of b into dst as float32
// little-endian samples. dst must hold frames*FrameBytes(Channels()) bytes.
// It returns the number of bytes written.
func (b *Block) PutFloat32LE(dst []byte, frames int) int {
	frames = min(frames, b.frames, len(dst)/FrameBytes(max(1, b.Channels())))
	if frames <= 0 || b.Channels() == 0 {
		return 0
	}

	stride := FrameBytes(b.Channels())
	for ch, s := range b.channels {
		off := ch * BytesPerSample
		for i := range frames {
			binary.LittleEndian.PutUint32(dst[i*stride+off:], math.Float32bits(float32(s[i])))
		}
	}

	return frames * stride
}

// Float32LE decodes interleaved float32 little-endian samples.
func Float32LE(src []byte) []float32 {
	out := make([]float32, len(src)/BytesPerSample)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[i*BytesPerSample:]))
	}

	return out
}
