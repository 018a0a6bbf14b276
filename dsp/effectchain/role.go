package effectchain

import (
	"fmt"
	"strings"
)

// Role identifies what a node does in a chain.
type Role int

const (
	RoleSource Role = iota
	RoleLowPass
	RoleDelay
	RoleDistortion
	RoleGain
	RoleSink
)

var roleNames = [...]string{
	RoleSource:     "source",
	RoleLowPass:    "lowpass",
	RoleDelay:      "delay",
	RoleDistortion: "distortion",
	RoleGain:       "gain",
	RoleSink:       "sink",
}

// String returns the lower-case role name.
func (r Role) String() string {
	if r < 0 || int(r) >= len(roleNames) {
		return fmt.Sprintf("role(%d)", int(r))
	}

	return roleNames[r]
}

// ParseRole resolves a role name case-insensitively.
func ParseRole(name string) (Role, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for r, n := range roleNames {
		if n == name {
			return Role(r), nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownRole, name)
}

// structural reports whether r only marks the ends of a chain.
func (r Role) structural() bool {
	return r == RoleSource || r == RoleSink
}
