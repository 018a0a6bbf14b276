// Package effectchain wires a lane's DSP stages into an ordered chain.
//
// A Chain is an arena of Nodes linked by index, from an optional Source to a
// terminal Sink. Each Node exposes a fixed, role-specific parameter set. Values
// are validated and published from the control goroutine through lock-free
// slots and picked up by the render goroutine at the start of the next block.
// Changes apply instantaneously, without a ramp.
package effectchain
