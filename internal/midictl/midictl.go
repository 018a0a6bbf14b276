// Package midictl maps MIDI controller input to engine commands.
//
// Note-on messages toggle lanes and select the lane the knobs act on;
// control-change messages set effect parameters of the selected lane,
// scaled from the 0..127 controller range onto the parameter's range.
package midictl

import (
	"fmt"
	"log"
	"math"
	"strings"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/cwbudde/algo-lanes/dsp/effectchain"
	"github.com/cwbudde/algo-lanes/engine"
)

// Commander is the part of engine.Pool the controller drives.
type Commander interface {
	Dispatch(cmd engine.Command) (float64, error)
	Snapshot() engine.Snapshot
}

// Knob binds a controller number to a parameter.
type Knob struct {
	CC   uint8
	Role effectchain.Role
	Key  effectchain.ParamKey
}

// Mapping describes a controller layout.
type Mapping struct {
	// FirstLaneNote toggles lane 0; lane i uses FirstLaneNote+i.
	FirstLaneNote uint8
	// StopAllNote stops and rewinds every lane.
	StopAllNote uint8
	// RouteNote toggles the speaker route.
	RouteNote uint8
	Knobs     []Knob
}

// DefaultMapping fits common pad controllers: pads from C1 toggle lanes and
// the first eight knobs (CC 21..28) cover the effect parameters.
func DefaultMapping() Mapping {
	return Mapping{
		FirstLaneNote: 36,
		StopAllNote:   48,
		RouteNote:     49,
		Knobs: []Knob{
			{21, effectchain.RoleLowPass, effectchain.KeyCutoff},
			{22, effectchain.RoleLowPass, effectchain.KeyResonance},
			{23, effectchain.RoleDelay, effectchain.KeyDelayTime},
			{24, effectchain.RoleDelay, effectchain.KeyFeedback},
			{25, effectchain.RoleDelay, effectchain.KeyLowPassCutoff},
			{26, effectchain.RoleDelay, effectchain.KeyWetDryMix},
			{27, effectchain.RoleDistortion, effectchain.KeyDecimation},
			{28, effectchain.RoleDistortion, effectchain.KeySoftClipGain},
		},
	}
}

// Controller turns MIDI messages into pool commands.
type Controller struct {
	pool    Commander
	mapping Mapping
	logger  *log.Logger

	mu       sync.Mutex
	selected int
}

// New returns a controller for pool. A nil logger uses log.Default.
func New(pool Commander, mapping Mapping, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}

	return &Controller{pool: pool, mapping: mapping, logger: logger}
}

// Selected returns the lane knobs currently act on.
func (c *Controller) Selected() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.selected
}

// Commands translates msg without running it. Unmapped messages yield nil.
func (c *Controller) Commands(msg gomidi.Message) []engine.Command {
	var channel, key, velocity, cc, value uint8

	switch {
	case msg.GetNoteOn(&channel, &key, &velocity) && velocity > 0:
		return c.noteCommands(key)
	case msg.GetControlChange(&channel, &cc, &value):
		for _, k := range c.mapping.Knobs {
			if k.CC != cc {
				continue
			}

			spec, ok := effectchain.Spec(k.Role, k.Key)
			if !ok {
				return nil
			}

			return []engine.Command{{
				Op:    engine.OpSetParameter,
				Lane:  c.Selected(),
				Role:  k.Role,
				Key:   k.Key,
				Value: Scale(spec, value),
			}}
		}
	}

	return nil
}

func (c *Controller) noteCommands(key uint8) []engine.Command {
	snap := c.pool.Snapshot()

	switch key {
	case c.mapping.StopAllNote:
		return []engine.Command{{Op: engine.OpStopAll, Reset: true}}
	case c.mapping.RouteNote:
		return []engine.Command{{Op: engine.OpSetOutputRoute, UseSpeaker: !snap.UseSpeaker}}
	}

	if key < c.mapping.FirstLaneNote {
		return nil
	}

	lane := int(key - c.mapping.FirstLaneNote)
	if lane >= len(snap.Playing) {
		return nil
	}

	c.mu.Lock()
	c.selected = lane
	c.mu.Unlock()

	if snap.Playing[lane] {
		return []engine.Command{{Op: engine.OpStop, Lane: lane}}
	}

	return []engine.Command{{Op: engine.OpPlay, Lane: lane}}
}

// Handle dispatches every command msg maps to. Failures are logged; a
// controller has nowhere to report them.
func (c *Controller) Handle(msg gomidi.Message) {
	for _, cmd := range c.Commands(msg) {
		if _, err := c.pool.Dispatch(cmd); err != nil {
			c.logger.Printf("midictl: %v: %v", cmd, err)
		}
	}
}

// Listen feeds messages from in to Handle until stop is called.
func (c *Controller) Listen(in drivers.In) (stop func(), err error) {
	stop, err = gomidi.ListenTo(in, func(msg gomidi.Message, _ int32) {
		c.Handle(msg)
	})
	if err != nil {
		return nil, fmt.Errorf("midictl: listen on %s: %w", in, err)
	}

	return stop, nil
}

// FindInPort returns the first input port whose name contains name,
// case-insensitively.
func FindInPort(name string) (drivers.In, error) {
	want := strings.ToLower(name)
	for _, in := range gomidi.GetInPorts() {
		if strings.Contains(strings.ToLower(in.String()), want) {
			return in, nil
		}
	}

	return nil, fmt.Errorf("midictl: no MIDI input matching %q", name)
}

// Scale maps a 0..127 controller value onto spec's range. Frequencies are
// swept logarithmically, everything else linearly.
func Scale(spec effectchain.ParamSpec, value uint8) float64 {
	t := float64(min(value, 127)) / 127

	if spec.Unit == "Hz" && spec.Min > 0 {
		return spec.Min * math.Pow(spec.Max/spec.Min, t)
	}

	return spec.Min + t*(spec.Max-spec.Min)
}
