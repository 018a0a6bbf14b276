package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-lanes/dsp/core"
)

const (
	defaultDistortionDecimation = 0.0
	defaultSoftClipGainDB       = -6.0

	MinSoftClipGainDB = -80.0
	MaxSoftClipGainDB = 20.0

	// maxDecimationHold is the sample-and-hold length at 100 % decimation.
	maxDecimationHold = 32
)

// Distortion combines sample-and-hold decimation with a cubic soft clipper.
//
// Decimation is expressed in percent: 0 % passes every sample, 100 % holds
// each sample for 32 frames. The soft-clip gain drives the clipper; low gains
// are level compensated so the stage is transparent at -80 dB.
type Distortion struct {
	sampleRate float64
	decimation float64
	gainDB     float64

	hold        int
	drive       float64
	makeup      float64
	holdCounter int
	holdValue   float64
}

// NewDistortion creates a distortion with no decimation and -6 dB drive.
func NewDistortion(sampleRate float64) (*Distortion, error) {
	if err := validateSampleRate("distortion", sampleRate); err != nil {
		return nil, err
	}

	d := &Distortion{
		sampleRate: sampleRate,
		decimation: defaultDistortionDecimation,
		gainDB:     defaultSoftClipGainDB,
	}
	d.updateHold()
	d.updateDrive()

	return d, nil
}

// SetDecimation sets decimation in percent within [0, 100].
func (d *Distortion) SetDecimation(percent float64) error {
	if !core.InRange(percent, 0, 100) {
		return fmt.Errorf("distortion decimation must be in [0, 100]: %f", percent)
	}

	d.decimation = percent
	d.updateHold()

	return nil
}

// SetSoftClipGain sets the clipper drive in dB within [-80, 20].
func (d *Distortion) SetSoftClipGain(db float64) error {
	if !core.InRange(db, MinSoftClipGainDB, MaxSoftClipGainDB) {
		return fmt.Errorf("distortion soft-clip gain must be in [%g, %g]: %f",
			MinSoftClipGainDB, MaxSoftClipGainDB, db)
	}

	d.gainDB = db
	d.updateDrive()

	return nil
}

// Decimation returns the decimation in percent.
func (d *Distortion) Decimation() float64 { return d.decimation }

// SoftClipGain returns the clipper drive in dB.
func (d *Distortion) SoftClipGain() float64 { return d.gainDB }

// HoldLength returns the active sample-and-hold length in frames.
func (d *Distortion) HoldLength() int { return d.hold }

// Reset clears the sample-and-hold state.
func (d *Distortion) Reset() {
	d.holdCounter = 0
	d.holdValue = 0
}

// ProcessSample processes one sample.
func (d *Distortion) ProcessSample(input float64) float64 {
	if d.holdCounter == 0 {
		d.holdValue = input
	}

	d.holdCounter++
	if d.holdCounter >= d.hold {
		d.holdCounter = 0
	}

	return core.Clamp(softClip(d.holdValue*d.drive)*d.makeup, -1, 1)
}

// ProcessInPlace applies the distortion to buf in place.
func (d *Distortion) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = d.ProcessSample(buf[i])
	}
}

func (d *Distortion) updateHold() {
	d.hold = 1 + int(math.Round(core.PercentToUnit(d.decimation)*(maxDecimationHold-1)))
	if d.holdCounter >= d.hold {
		d.holdCounter = 0
	}
}

func (d *Distortion) updateDrive() {
	d.drive = core.DBToLinear(d.gainDB)
	// softClip has slope 1.5 at the origin. Makeup restores unity gain for
	// small signals; ProcessSample caps the result at full scale.
	d.makeup = 1 / math.Min(1.5*d.drive, 1)
}

func softClip(x float64) float64 {
	if math.Abs(x) < 1 {
		return 1.5 * (x - (x*x*x)/3)
	}

	return math.Copysign(1, x)
}
