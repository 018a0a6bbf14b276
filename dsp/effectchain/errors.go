package effectchain

import "errors"

var (
	// ErrChainConstructionFailed is returned when a chain cannot be built.
	// No partial chain is returned alongside it.
	ErrChainConstructionFailed = errors.New("effectchain: chain construction failed")

	// ErrInvalidParameter is returned for unknown keys, out-of-range or
	// non-finite values, and roles absent from the chain.
	ErrInvalidParameter = errors.New("effectchain: invalid parameter")

	// ErrUnknownRole is returned when a role has no registered factory.
	ErrUnknownRole = errors.New("effectchain: unknown role")
)
