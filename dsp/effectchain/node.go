package effectchain

import (
	"fmt"

	"github.com/cwbudde/algo-lanes/dsp/core"
)

// Node is one stage of a chain. Parameter reads and writes are safe from the
// control goroutine while the render goroutine processes.
type Node struct {
	role  Role
	specs []ParamSpec
	slots []*core.Param
	next  int

	// Render-side state.
	runtimes []Runtime
	seen     []uint64
}

func newNode(ctx Context, role Role, factory Factory) (*Node, error) {
	specs := Specs(role)

	n := &Node{
		role:  role,
		specs: specs,
		slots: make([]*core.Param, len(specs)),
		seen:  make([]uint64, len(specs)),
		next:  -1,
	}

	for i, s := range specs {
		n.slots[i] = core.NewParam(s.Default)
	}

	if factory == nil {
		return n, nil
	}

	n.runtimes = make([]Runtime, ctx.Channels)
	for ch := range n.runtimes {
		rt, err := factory(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s channel %d: %w", role, ch, err)
		}

		if rt == nil {
			return nil, fmt.Errorf("%s channel %d: factory returned nil runtime", role, ch)
		}

		for _, s := range specs {
			if err := rt.Apply(s.Key, s.Default); err != nil {
				return nil, fmt.Errorf("%s channel %d: default %s: %w", role, ch, s.Key, err)
			}
		}

		n.runtimes[ch] = rt
	}

	return n, nil
}

// Role returns the node's role.
func (n *Node) Role() Role { return n.role }

// Next returns the arena index of the following node, or -1 for the sink.
func (n *Node) Next() int { return n.next }

// Specs returns the node's parameter set.
func (n *Node) Specs() []ParamSpec {
	return append([]ParamSpec(nil), n.specs...)
}

// SetParameter validates value and publishes it to the render goroutine.
// Rejected values leave the previous value in place.
func (n *Node) SetParameter(key ParamKey, value float64) error {
	i, err := n.slot(key)
	if err != nil {
		return err
	}

	if err := Validate(n.role, key, value); err != nil {
		return err
	}

	n.slots[i].Store(value)

	return nil
}

// Parameter returns the last value set for key.
func (n *Node) Parameter(key ParamKey) (float64, error) {
	i, err := n.slot(key)
	if err != nil {
		return 0, err
	}

	return n.slots[i].Load(), nil
}

// Parameters returns every parameter of the node with its last-set value.
func (n *Node) Parameters() map[ParamKey]float64 {
	out := make(map[ParamKey]float64, len(n.specs))
	for i, s := range n.specs {
		out[s.Key] = n.slots[i].Load()
	}

	return out
}

func (n *Node) slot(key ParamKey) (int, error) {
	for i, s := range n.specs {
		if s.Key == key {
			return i, nil
		}
	}

	return -1, fmt.Errorf("%w: %s has no parameter %q", ErrInvalidParameter, n.role, key)
}

// sync applies values published since the last block.
func (n *Node) sync() {
	for i, p := range n.slots {
		v, changed := p.Changed(&n.seen[i])
		if !changed {
			continue
		}

		for _, rt := range n.runtimes {
			// Values were validated on publish.
			_ = rt.Apply(n.specs[i].Key, v)
		}
	}
}

func (n *Node) process(channels func(ch int) []float64) {
	if len(n.runtimes) == 0 {
		return
	}

	n.sync()

	for ch, rt := range n.runtimes {
		rt.Process(channels(ch))
	}
}

func (n *Node) reset() {
	for _, rt := range n.runtimes {
		rt.Reset()
	}
}
