package core

import (
	"math"
	"sync/atomic"
)

// Param is a single-writer/single-reader float64 slot. The control goroutine
// publishes with Store, the render goroutine picks the latest value up with
// Load or Changed. Neither side ever blocks.
type Param struct {
	bits    atomic.Uint64
	version atomic.Uint64
}

// NewParam returns a slot holding v.
func NewParam(v float64) *Param {
	p := &Param{}
	p.bits.Store(math.Float64bits(v))
	return p
}

// Store publishes v.
func (p *Param) Store(v float64) {
	p.bits.Store(math.Float64bits(v))
	p.version.Add(1)
}

// Load returns the most recently published value.
func (p *Param) Load() float64 {
	return math.Float64frombits(p.bits.Load())
}

// Version increments on every Store.
func (p *Param) Version() uint64 {
	return p.version.Load()
}

// Changed returns the current value and reports whether it was published
// after seen. seen is updated in place; it belongs to the reader.
func (p *Param) Changed(seen *uint64) (float64, bool) {
	v := p.version.Load()
	if v == *seen {
		return p.Load(), false
	}
	*seen = v
	return p.Load(), true
}
