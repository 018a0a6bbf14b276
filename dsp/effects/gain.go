package effects

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-lanes/dsp/core"
)

const (
	MinGainDB = -80.0
	MaxGainDB = 12.0
)

// Gain scales a signal by a level in dB. -80 dB is treated as silence.
type Gain struct {
	db     float64
	linear float64
}

// NewGain returns a unity gain stage.
func NewGain() *Gain {
	return &Gain{db: 0, linear: 1}
}

// SetGain sets the level in dB within [-80, 12].
func (g *Gain) SetGain(db float64) error {
	if !core.InRange(db, MinGainDB, MaxGainDB) {
		return fmt.Errorf("gain must be in [%g, %g]: %f", MinGainDB, MaxGainDB, db)
	}

	g.db = db
	g.linear = core.DBToLinear(db)
	if db <= MinGainDB {
		g.linear = 0
	}

	return nil
}

// Gain returns the level in dB.
func (g *Gain) Gain() float64 { return g.db }

// Linear returns the linear factor.
func (g *Gain) Linear() float64 { return g.linear }

// ProcessInPlace scales buf in place.
func (g *Gain) ProcessInPlace(buf []float64) {
	if g.linear == 1 {
		return
	}

	vecmath.ScaleBlock(buf, buf, g.linear)
}
