package engine

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-lanes/dsp/effectchain"
)

func TestParseOp(t *testing.T) {
	for op := OpPlay; op <= OpSetOutputRoute; op++ {
		got, err := ParseOp(op.String())
		if err != nil || got != op {
			t.Fatalf("ParseOp(%q) = %v, %v", op.String(), got, err)
		}
	}

	if got, err := ParseOp(" PLAYALL "); err != nil || got != OpPlayAll {
		t.Fatalf("ParseOp() case-insensitive = %v, %v", got, err)
	}

	if _, err := ParseOp("rewind"); err == nil {
		t.Fatal("ParseOp(rewind): expected error")
	}

	if s := Op(99).String(); s != "op(99)" {
		t.Fatalf("String() = %q", s)
	}
}

func TestDispatch(t *testing.T) {
	f := newFixture(t)
	f.build(t, true)

	tests := []struct {
		name    string
		cmd     Command
		want    float64
		wantErr error
	}{
		{"play", Command{Op: OpPlay, Lane: 0}, 0, nil},
		{"set", Command{Op: OpSetParameter, Lane: 0, Role: effectchain.RoleDistortion, Key: effectchain.KeyDecimation, Value: 30}, 0, nil},
		{"get", Command{Op: OpParameter, Lane: 0, Role: effectchain.RoleDistortion, Key: effectchain.KeyDecimation}, 30, nil},
		{"bad key", Command{Op: OpSetParameter, Lane: 0, Role: effectchain.RoleDistortion, Key: effectchain.KeyCutoff, Value: 1}, 0, effectchain.ErrInvalidParameter},
		{"gain", Command{Op: OpSetGain, Lane: 2, Value: 0.5}, 0.5, nil},
		{"bad lane", Command{Op: OpStop, Lane: 7}, 0, ErrInvalidLaneIndex},
		{"play all", Command{Op: OpPlayAll}, 0, nil},
		{"stop all", Command{Op: OpStopAll, Reset: true}, 0, nil},
		{"route", Command{Op: OpSetOutputRoute, UseSpeaker: true}, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.pool.Dispatch(tt.cmd)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Dispatch(%v) error = %v, want %v", tt.cmd, err, tt.wantErr)
			}

			if got != tt.want {
				t.Fatalf("Dispatch(%v) = %v, want %v", tt.cmd, got, tt.want)
			}
		})
	}

	if _, err := f.pool.Dispatch(Command{Op: Op(42)}); err == nil {
		t.Fatal("Dispatch(unknown op): expected error")
	}

	if !f.pool.Snapshot().UseSpeaker {
		t.Fatal("route command not applied")
	}
}
