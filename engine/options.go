package engine

import (
	"log"

	"github.com/cwbudde/algo-lanes/dsp/effectchain"
	"github.com/cwbudde/algo-lanes/dsp/spectrum"
	"github.com/cwbudde/algo-lanes/lane"
)

type options struct {
	blockSize    int
	loops        int
	effectRoles  []effectchain.Role
	plainRoles   []effectchain.Role
	registry     *effectchain.Registry
	analyzerSize int
	presets      []Preset
	logger       *log.Logger
}

// Option configures a Pool.
type Option func(*options)

// DefaultEffectRoles is the chain built for lanes with effects.
var DefaultEffectRoles = []effectchain.Role{
	effectchain.RoleSource,
	effectchain.RoleLowPass,
	effectchain.RoleDelay,
	effectchain.RoleDistortion,
	effectchain.RoleGain,
	effectchain.RoleSink,
}

// PlainRoles is the chain built for lanes without effects.
var PlainRoles = []effectchain.Role{
	effectchain.RoleSource,
	effectchain.RoleGain,
	effectchain.RoleSink,
}

func defaultOptions() options {
	return options{
		blockSize:    512,
		loops:        0,
		effectRoles:  DefaultEffectRoles,
		plainRoles:   PlainRoles,
		analyzerSize: spectrum.DefaultAnalyzerSize,
		logger:       log.Default(),
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	if o.registry == nil {
		o.registry = effectchain.DefaultRegistry()
	}

	return o
}

// WithBlockSize sets the maximum frames each lane renders per chain call.
func WithBlockSize(frames int) Option {
	return func(o *options) {
		if frames > 0 {
			o.blockSize = frames
		}
	}
}

// WithLoops sets the loop count of every lane built afterwards.
// lane.LoopForever repeats until stopped.
func WithLoops(n int) Option {
	return func(o *options) {
		if n >= lane.LoopForever {
			o.loops = n
		}
	}
}

// WithEffectRoles replaces the chain layout used when BuildLanes is called
// with effects.
func WithEffectRoles(roles ...effectchain.Role) Option {
	return func(o *options) {
		if len(roles) > 0 {
			o.effectRoles = append([]effectchain.Role(nil), roles...)
		}
	}
}

// WithRegistry sets the effect factories used to build chains.
func WithRegistry(r *effectchain.Registry) Option {
	return func(o *options) {
		if r != nil {
			o.registry = r
		}
	}
}

// WithAnalyzerSize sets the FFT size of each lane's spectrum analyzer.
// 0 disables analysis.
func WithAnalyzerSize(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.analyzerSize = n
		}
	}
}

// WithPreset runs p on every lane right after it is built.
func WithPreset(p Preset) Option {
	return func(o *options) {
		if p != nil {
			o.presets = append(o.presets, p)
		}
	}
}

// WithLogger sets the logger for route and build events.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
