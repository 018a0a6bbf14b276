package engine

import (
	"fmt"
	"strings"

	"github.com/cwbudde/algo-lanes/dsp/effectchain"
)

// Op selects the pool operation a Command performs.
type Op int

const (
	OpPlay Op = iota
	OpStop
	OpPlayAll
	OpStopAll
	OpSetParameter
	OpParameter
	OpSetGain
	OpSetOutputRoute
)

var opNames = [...]string{
	OpPlay:           "play",
	OpStop:           "stop",
	OpPlayAll:        "playAll",
	OpStopAll:        "stopAll",
	OpSetParameter:   "setParameter",
	OpParameter:      "parameter",
	OpSetGain:        "setGain",
	OpSetOutputRoute: "setOutputRoute",
}

func (o Op) String() string {
	if o < 0 || int(o) >= len(opNames) {
		return fmt.Sprintf("op(%d)", int(o))
	}

	return opNames[o]
}

// ParseOp resolves an operation name case-insensitively.
func ParseOp(name string) (Op, error) {
	for i, n := range opNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return Op(i), nil
		}
	}

	return 0, fmt.Errorf("engine: unknown op %q", name)
}

// Command is a single tagged request against a Pool. Fields not used by Op
// are ignored.
type Command struct {
	Op         Op
	Lane       int
	Role       effectchain.Role
	Key        effectchain.ParamKey
	Value      float64
	Reset      bool
	UseSpeaker bool
}

func (c Command) String() string {
	switch c.Op {
	case OpPlay:
		return fmt.Sprintf("play lane %d", c.Lane)
	case OpStop:
		return fmt.Sprintf("stop lane %d reset=%t", c.Lane, c.Reset)
	case OpStopAll:
		return fmt.Sprintf("stop all reset=%t", c.Reset)
	case OpSetParameter:
		return fmt.Sprintf("set lane %d %s.%s=%g", c.Lane, c.Role, c.Key, c.Value)
	case OpParameter:
		return fmt.Sprintf("get lane %d %s.%s", c.Lane, c.Role, c.Key)
	case OpSetGain:
		return fmt.Sprintf("set lane %d gain=%g", c.Lane, c.Value)
	case OpSetOutputRoute:
		return fmt.Sprintf("route speaker=%t", c.UseSpeaker)
	default:
		return c.Op.String()
	}
}

// Dispatch runs cmd. The returned value is the parameter value for
// OpParameter, the lane gain for OpSetGain, and 0 otherwise.
func (p *Pool) Dispatch(cmd Command) (float64, error) {
	switch cmd.Op {
	case OpPlay:
		return 0, p.Play(cmd.Lane)
	case OpStop:
		return 0, p.Stop(cmd.Lane, cmd.Reset)
	case OpPlayAll:
		return 0, p.PlayAll()
	case OpStopAll:
		return 0, p.StopAll(cmd.Reset)
	case OpSetParameter:
		return 0, p.SetParameter(cmd.Lane, cmd.Role, cmd.Key, cmd.Value)
	case OpParameter:
		return p.Parameter(cmd.Lane, cmd.Role, cmd.Key)
	case OpSetGain:
		if err := p.SetGain(cmd.Lane, cmd.Value); err != nil {
			return 0, err
		}

		return cmd.Value, nil
	case OpSetOutputRoute:
		return 0, p.SetOutputRoute(cmd.UseSpeaker)
	default:
		return 0, fmt.Errorf("engine: unknown command %v", cmd.Op)
	}
}
