package effectchain

import (
	"errors"
	"testing"
)

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	f := func(_ Context) (Runtime, error) { return &scaleRuntime{}, nil }

	if err := r.Register(RoleGain, f); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err := r.Register(RoleGain, f); !errors.Is(err, errDuplicateRole) {
		t.Fatalf("duplicate Register() error = %v", err)
	}

	if err := r.Register(RoleSink, f); err == nil {
		t.Fatal("Register(RoleSink) expected error")
	}

	if err := r.Register(RoleDelay, nil); err == nil {
		t.Fatal("Register(nil) expected error")
	}

	if r.Lookup(RoleGain) == nil || r.Lookup(RoleDelay) != nil {
		t.Fatal("Lookup returned unexpected factories")
	}
}

func TestDefaultRegistryCoversEffectRoles(t *testing.T) {
	r := DefaultRegistry()

	for _, role := range []Role{RoleLowPass, RoleDelay, RoleDistortion, RoleGain} {
		f := r.Lookup(role)
		if f == nil {
			t.Fatalf("no factory for %s", role)
		}

		rt, err := f(stereo)
		if err != nil {
			t.Fatalf("factory(%s) error = %v", role, err)
		}

		for _, s := range Specs(role) {
			if err := rt.Apply(s.Key, s.Max); err != nil {
				t.Fatalf("%s.Apply(%s, max) error = %v", role, s.Key, err)
			}
		}

		if err := rt.Apply("bogus", 0); !errors.Is(err, ErrInvalidParameter) {
			t.Fatalf("%s.Apply(bogus) error = %v", role, err)
		}
	}
}

func TestMustRegisterPanicsOnDuplicate(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()

	r := DefaultRegistry()
	r.MustRegister(RoleGain, func(_ Context) (Runtime, error) { return nil, nil })
}
