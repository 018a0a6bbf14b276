package lane

import (
	"errors"
	"io"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-lanes/dsp/core"
)

var errWhence = errors.New("lane: invalid seek whence")

// Read renders interleaved float32 little-endian frames into p. It returns
// io.EOF once the final pass has been delivered. Read is called by the
// voice's render goroutine only.
func (l *Lane) Read(p []byte) (int, error) {
	l.applySeek()

	n := copy(p, l.pending)
	l.pending = l.pending[n:]

	frameBytes := l.format.FrameBytes()

	for n < len(p) {
		want := min(l.opts.blockSize, (len(p)-n+frameBytes-1)/frameBytes)

		frames := l.render(want)
		if frames == 0 {
			break
		}

		size := l.block.PutFloat32LE(l.out, frames)
		c := copy(p[n:], l.out[:size])
		n += c
		l.pending = l.out[c:size]

		if frames < want {
			break
		}
	}

	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}

	return n, nil
}

// Seek schedules a jump to a byte offset of the first pass. It never blocks
// and is applied at the start of the next Read.
func (l *Lane) Seek(offset int64, whence int) (int64, error) {
	frameBytes := int64(l.format.FrameBytes())

	var frame int64
	switch whence {
	case io.SeekStart:
		frame = offset / frameBytes
	case io.SeekCurrent:
		frame = l.Position() + offset/frameBytes
	case io.SeekEnd:
		frame = int64(l.pcm.Frames()) + offset/frameBytes
	default:
		return 0, errWhence
	}

	frame = max(0, min(frame, int64(l.pcm.Frames())))
	l.seek.Store(frame)

	return frame * frameBytes, nil
}

func (l *Lane) applySeek() {
	s := l.seek.Swap(noSeek)
	if s == noSeek {
		return
	}

	l.cursor = int(s)
	l.loopsDone = 0
	l.pending = nil
	l.ended.Store(false)
	l.position.Store(s)
	l.chain.Reset()

	if l.opts.analyzer != nil {
		l.opts.analyzer.Reset()
	}
}

// render fills up to frames frames of l.block, wrapping at loop boundaries
// inside the block, and runs the chain. It returns the frames produced.
func (l *Lane) render(frames int) int {
	if v, changed := l.gain.Changed(&l.gainSeen); changed {
		l.linear = v
	}

	total := l.pcm.Frames()
	l.block.Resize(l.format.Channels, frames)

	filled := 0
	for filled < frames {
		got := l.block.Deinterleave(l.pcm.Samples, l.pcm.Channels, l.cursor, filled)
		filled += got
		l.cursor += got

		if l.cursor < total {
			continue
		}

		if l.opts.loops != LoopForever && l.loopsDone >= l.opts.loops {
			break
		}

		l.loopsDone++
		l.cursor = 0
	}

	l.position.Store(int64(l.cursor))

	if filled == 0 {
		l.finish()
		return 0
	}

	l.block.Resize(l.format.Channels, filled)
	l.chain.Process(l.block)

	for ch := range l.block.Channels() {
		s := l.block.Channel(ch)
		if l.linear != 1 {
			vecmath.ScaleBlock(s, s, l.linear)
		}
	}

	l.peak.Store(math.Float64bits(l.block.Peak()))
	l.analyze(filled)

	if filled < frames {
		l.finish()
	}

	return filled
}

func (l *Lane) analyze(frames int) {
	if l.opts.analyzer == nil {
		return
	}

	l.mono = core.EnsureLen(l.mono, frames)
	mono := l.mono
	copy(mono, l.block.Channel(0))

	if ch := l.block.Channels(); ch > 1 {
		for c := 1; c < ch; c++ {
			vecmath.AddBlockInPlace(mono, l.block.Channel(c))
		}
		vecmath.ScaleBlock(mono, mono, 1/float64(ch))
	}

	l.opts.analyzer.Write(mono)
}

// finish marks the natural end of the final pass once.
func (l *Lane) finish() {
	if l.ended.Swap(true) {
		return
	}

	if l.state.CompareAndSwap(int32(Playing), int32(Stopped)) && l.opts.onFinish != nil {
		l.opts.onFinish(l.index)
	}
}
