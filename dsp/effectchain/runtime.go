package effectchain

import (
	"fmt"

	"github.com/cwbudde/algo-lanes/dsp/effects"
)

// Context provides environmental information that effect runtimes need.
type Context struct {
	SampleRate float64
	Channels   int
}

func (c Context) validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be > 0: %f", c.SampleRate)
	}

	if c.Channels < 1 {
		return fmt.Errorf("channels must be >= 1: %d", c.Channels)
	}

	return nil
}

// Runtime is one mono processing instance of a node. A node holds one
// Runtime per channel. All methods run on the render goroutine.
type Runtime interface {
	// Apply sets a parameter in the units of the parameter table. The value
	// has already been validated.
	Apply(key ParamKey, value float64) error
	Process(block []float64)
	Reset()
}

func unsupported(role Role, key ParamKey) error {
	return fmt.Errorf("%w: %s has no parameter %q", ErrInvalidParameter, role, key)
}

type lowPassRuntime struct {
	fx *effects.LowPass
}

func (r *lowPassRuntime) Apply(key ParamKey, value float64) error {
	switch key {
	case KeyCutoff:
		return r.fx.SetCutoff(value)
	case KeyResonance:
		return r.fx.SetResonance(value)
	default:
		return unsupported(RoleLowPass, key)
	}
}

func (r *lowPassRuntime) Process(block []float64) { r.fx.ProcessInPlace(block) }
func (r *lowPassRuntime) Reset()                  { r.fx.Reset() }

type delayRuntime struct {
	fx *effects.Delay
}

func (r *delayRuntime) Apply(key ParamKey, value float64) error {
	switch key {
	case KeyFeedback:
		return r.fx.SetFeedback(value / 100)
	case KeyDelayTime:
		return r.fx.SetTime(value)
	case KeyLowPassCutoff:
		return r.fx.SetToneCutoff(value)
	case KeyWetDryMix:
		return r.fx.SetMix(value / 100)
	default:
		return unsupported(RoleDelay, key)
	}
}

func (r *delayRuntime) Process(block []float64) { r.fx.ProcessInPlace(block) }
func (r *delayRuntime) Reset()                  { r.fx.Reset() }

type distortionRuntime struct {
	fx *effects.Distortion
}

func (r *distortionRuntime) Apply(key ParamKey, value float64) error {
	switch key {
	case KeyDecimation:
		return r.fx.SetDecimation(value)
	case KeySoftClipGain:
		return r.fx.SetSoftClipGain(value)
	default:
		return unsupported(RoleDistortion, key)
	}
}

func (r *distortionRuntime) Process(block []float64) { r.fx.ProcessInPlace(block) }
func (r *distortionRuntime) Reset()                  { r.fx.Reset() }

type gainRuntime struct {
	fx *effects.Gain
}

func (r *gainRuntime) Apply(key ParamKey, value float64) error {
	if key != KeyGain {
		return unsupported(RoleGain, key)
	}

	return r.fx.SetGain(value)
}

func (r *gainRuntime) Process(block []float64) { r.fx.ProcessInPlace(block) }
func (r *gainRuntime) Reset()                  {}
