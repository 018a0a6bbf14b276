package effectchain

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-lanes/dsp/buffer"
)

// Chain owns the nodes of one lane in an arena. Links are indices, so the
// chain can be dropped as a whole without tearing down node pointers.
//
// Parameter methods may be called from any single control goroutine. Process
// and Reset belong to the render goroutine.
type Chain struct {
	ctx   Context
	nodes []*Node
	head  int
}

// Build constructs a chain with nodes in the order of roles. A trailing Sink
// is appended when missing. At most one Source is allowed and it must come
// first; a Sink may only appear last. Any failure returns
// ErrChainConstructionFailed and no chain.
func Build(ctx Context, registry *Registry, roles ...Role) (*Chain, error) {
	c, err := build(ctx, registry, roles)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrChainConstructionFailed, err)
	}

	return c, nil
}

func build(ctx Context, registry *Registry, roles []Role) (*Chain, error) {
	if err := ctx.validate(); err != nil {
		return nil, err
	}

	if registry == nil {
		return nil, errors.New("nil registry")
	}

	if len(roles) == 0 {
		return nil, errors.New("empty chain")
	}

	if roles[len(roles)-1] != RoleSink {
		roles = append(append([]Role(nil), roles...), RoleSink)
	}

	for i, role := range roles {
		switch {
		case role == RoleSource && i != 0:
			return nil, fmt.Errorf("source at position %d, must be first", i)
		case role == RoleSink && i != len(roles)-1:
			return nil, fmt.Errorf("sink at position %d, must be last", i)
		}
	}

	c := &Chain{ctx: ctx, nodes: make([]*Node, 0, len(roles))}

	for i, role := range roles {
		var factory Factory
		if !role.structural() {
			factory = registry.Lookup(role)
			if factory == nil {
				return nil, fmt.Errorf("%w: %s", ErrUnknownRole, role)
			}
		}

		n, err := newNode(ctx, role, factory)
		if err != nil {
			return nil, err
		}

		if i > 0 {
			c.nodes[i-1].next = i
		}

		c.nodes = append(c.nodes, n)
	}

	return c, nil
}

// Context returns the chain context.
func (c *Chain) Context() Context { return c.ctx }

// Len returns the number of nodes, Source and Sink included.
func (c *Chain) Len() int { return len(c.nodes) }

// Node returns the node at arena index i.
func (c *Chain) Node(i int) *Node { return c.nodes[i] }

// Roles returns node roles in processing order.
func (c *Chain) Roles() []Role {
	roles := make([]Role, 0, len(c.nodes))
	for i := c.head; i >= 0; i = c.nodes[i].next {
		roles = append(roles, c.nodes[i].role)
	}

	return roles
}

// Find returns the first node with role, or nil.
func (c *Chain) Find(role Role) *Node {
	for i := c.head; i >= 0; i = c.nodes[i].next {
		if c.nodes[i].role == role {
			return c.nodes[i]
		}
	}

	return nil
}

// SetParameter forwards to the first node with role.
func (c *Chain) SetParameter(role Role, key ParamKey, value float64) error {
	n, err := c.find(role)
	if err != nil {
		return err
	}

	return n.SetParameter(key, value)
}

// Parameter returns the last value set for key on the first node with role.
func (c *Chain) Parameter(role Role, key ParamKey) (float64, error) {
	n, err := c.find(role)
	if err != nil {
		return 0, err
	}

	return n.Parameter(key)
}

// Parameters returns the full parameter set of the first node with role.
func (c *Chain) Parameters(role Role) (map[ParamKey]float64, error) {
	n, err := c.find(role)
	if err != nil {
		return nil, err
	}

	return n.Parameters(), nil
}

func (c *Chain) find(role Role) (*Node, error) {
	n := c.Find(role)
	if n == nil {
		return nil, fmt.Errorf("%w: no %s node in chain", ErrInvalidParameter, role)
	}

	return n, nil
}

// Process runs block through every node from head to sink. Extra block
// channels beyond the chain's are left untouched.
func (c *Chain) Process(block *buffer.Block) {
	if block.Channels() < c.ctx.Channels {
		return
	}

	for i := c.head; i >= 0; i = c.nodes[i].next {
		c.nodes[i].process(block.Channel)
	}
}

// Reset clears the processing state of every node. Parameters are kept.
func (c *Chain) Reset() {
	for _, n := range c.nodes {
		n.reset()
	}
}
