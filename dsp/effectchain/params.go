package effectchain

import (
	"fmt"

	"github.com/cwbudde/algo-lanes/dsp/core"
)

// ParamKey names a node parameter.
type ParamKey string

const (
	KeyCutoff        ParamKey = "cutoff"
	KeyResonance     ParamKey = "resonance"
	KeyFeedback      ParamKey = "feedback"
	KeyDelayTime     ParamKey = "delayTime"
	KeyLowPassCutoff ParamKey = "lowPassCutoff"
	KeyWetDryMix     ParamKey = "wetDryMix"
	KeyDecimation    ParamKey = "decimation"
	KeySoftClipGain  ParamKey = "softClipGain"
	KeyGain          ParamKey = "gain"
)

// Cutoff range offered by a standalone filter control surface. The node
// itself accepts the full [10, 22050] Hz range.
const (
	FilterViewCutoffMin = 200.0
	FilterViewCutoffMax = 12000.0
)

// ParamSpec documents one parameter of a role.
type ParamSpec struct {
	Role    Role
	Key     ParamKey
	Min     float64
	Max     float64
	Default float64
	Unit    string
}

// Contains reports whether v is finite and within [Min, Max].
func (s ParamSpec) Contains(v float64) bool {
	return core.InRange(v, s.Min, s.Max)
}

var paramTable = []ParamSpec{
	{RoleLowPass, KeyCutoff, 10, 22050, 6900, "Hz"},
	{RoleLowPass, KeyResonance, -20, 40, 0, "dB"},
	{RoleDelay, KeyFeedback, -100, 100, 50, "%"},
	{RoleDelay, KeyDelayTime, 0, 2, 1, "s"},
	{RoleDelay, KeyLowPassCutoff, 10, 22050, 15000, "Hz"},
	{RoleDelay, KeyWetDryMix, 0, 100, 100, "%"},
	{RoleDistortion, KeyDecimation, 0, 100, 0, "%"},
	{RoleDistortion, KeySoftClipGain, -80, 20, -6, "dB"},
	{RoleGain, KeyGain, -80, 12, 0, "dB"},
}

// Specs returns the parameter set of role in table order. Source and Sink
// have none.
func Specs(role Role) []ParamSpec {
	var out []ParamSpec
	for _, s := range paramTable {
		if s.Role == role {
			out = append(out, s)
		}
	}

	return out
}

// Spec returns the ParamSpec for key on role.
func Spec(role Role, key ParamKey) (ParamSpec, bool) {
	for _, s := range paramTable {
		if s.Role == role && s.Key == key {
			return s, true
		}
	}

	return ParamSpec{}, false
}

// Validate checks key and value against role's table.
func Validate(role Role, key ParamKey, value float64) error {
	s, ok := Spec(role, key)
	if !ok {
		return fmt.Errorf("%w: %s has no parameter %q", ErrInvalidParameter, role, key)
	}

	if !s.Contains(value) {
		return fmt.Errorf("%w: %s.%s must be in [%g, %g] %s: %v",
			ErrInvalidParameter, role, key, s.Min, s.Max, s.Unit, value)
	}

	return nil
}
