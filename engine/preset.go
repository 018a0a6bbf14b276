package engine

import (
	"slices"

	"github.com/cwbudde/algo-lanes/dsp/effectchain"
	"github.com/cwbudde/algo-lanes/lane"
)

// Preset adjusts a freshly built lane. Presets run before the lane is
// published, so they never race with playback.
type Preset func(l *lane.Lane) error

// ClassicChain starts the delay dry: no delay time, no feedback, half wet.
// Lanes without a delay node are left unchanged.
func ClassicChain(l *lane.Lane) error {
	if !slices.Contains(l.Roles(), effectchain.RoleDelay) {
		return nil
	}

	settings := []struct {
		key   effectchain.ParamKey
		value float64
	}{
		{effectchain.KeyDelayTime, 0},
		{effectchain.KeyFeedback, 0},
		{effectchain.KeyWetDryMix, 50},
	}

	for _, s := range settings {
		if err := l.SetEffectParameter(effectchain.RoleDelay, s.key, s.value); err != nil {
			return err
		}
	}

	return nil
}
