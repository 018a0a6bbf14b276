package effectchain

import "errors"

var errFactory = errors.New("factory failed")

// scaleRuntime multiplies every sample by its gain parameter in linear units.
type scaleRuntime struct {
	factor  float64
	applied []float64
	resets  int
}

func (s *scaleRuntime) Apply(_ ParamKey, value float64) error {
	s.factor = value
	s.applied = append(s.applied, value)

	return nil
}

func (s *scaleRuntime) Process(block []float64) {
	for i := range block {
		block[i] *= s.factor
	}
}

func (s *scaleRuntime) Reset() { s.resets++ }

// recordingRegistry registers scaleRuntime for RoleGain and keeps every
// instance it creates.
func recordingRegistry(created *[]*scaleRuntime) *Registry {
	r := NewRegistry()
	r.MustRegister(RoleGain, func(_ Context) (Runtime, error) {
		rt := &scaleRuntime{}
		*created = append(*created, rt)

		return rt, nil
	})

	return r
}

func failingRegistry() *Registry {
	r := DefaultRegistry()
	r.factories[RoleDelay] = func(_ Context) (Runtime, error) {
		return nil, errFactory
	}

	return r
}

var stereo = Context{SampleRate: 48000, Channels: 2}
