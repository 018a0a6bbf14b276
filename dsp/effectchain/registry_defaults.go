package effectchain

import "github.com/cwbudde/algo-lanes/dsp/effects"

// DefaultRegistry returns a Registry with the built-in lane effects.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.MustRegister(RoleLowPass, func(ctx Context) (Runtime, error) {
		fx, err := effects.NewLowPass(ctx.SampleRate)
		if err != nil {
			return nil, err
		}

		return &lowPassRuntime{fx: fx}, nil
	})
	r.MustRegister(RoleDelay, func(ctx Context) (Runtime, error) {
		fx, err := effects.NewDelay(ctx.SampleRate)
		if err != nil {
			return nil, err
		}

		return &delayRuntime{fx: fx}, nil
	})
	r.MustRegister(RoleDistortion, func(ctx Context) (Runtime, error) {
		fx, err := effects.NewDistortion(ctx.SampleRate)
		if err != nil {
			return nil, err
		}

		return &distortionRuntime{fx: fx}, nil
	})
	r.MustRegister(RoleGain, func(_ Context) (Runtime, error) {
		return &gainRuntime{fx: effects.NewGain()}, nil
	})

	return r
}
