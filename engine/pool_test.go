package engine

import (
	"context"
	"errors"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/cwbudde/algo-lanes/asset"
	"github.com/cwbudde/algo-lanes/dsp/effectchain"
	"github.com/cwbudde/algo-lanes/lane"
	"github.com/cwbudde/algo-lanes/output"
)

func TestNewValidation(t *testing.T) {
	f := newFixture(t)

	if _, err := New(nil, f.renderer, asset.NewLibrary(nil)); err == nil {
		t.Fatal("New() with nil router: expected error")
	}

	if got := f.pool.Config(); got.SampleRate != 48000 || got.Channels != 2 || got.BlockSize != 512 {
		t.Fatalf("Config() = %+v", got)
	}

	if s := f.pool.Snapshot(); len(s.Playing) != 0 {
		t.Fatalf("empty pool snapshot = %v", s.Playing)
	}
}

func TestStopWithResetRestartsEveryLane(t *testing.T) {
	f := newFixture(t)
	f.build(t, false)

	for i := range laneIDs {
		if err := f.pool.Play(i); err != nil {
			t.Fatalf("Play(%d) error = %v", i, err)
		}
	}

	if _, err := f.renderer.Render(40); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	for i := range laneIDs {
		if err := f.pool.Stop(i, true); err != nil {
			t.Fatalf("Stop(%d) error = %v", i, err)
		}

		if f.pool.Snapshot().Playing[i] {
			t.Fatalf("lane %d playing after Stop", i)
		}

		if pos := f.pool.Status()[i].Position; pos != 0 {
			t.Fatalf("lane %d position = %d, want 0", i, pos)
		}
	}

	if err := f.pool.PlayAll(); err != nil {
		t.Fatalf("PlayAll() error = %v", err)
	}

	for i, v := range f.firstLeft(t) {
		if v != 0 {
			t.Fatalf("lane %d restarted at %v, want frame 0", i, v)
		}
	}
}

func TestParameterRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.build(t, true)

	tests := []struct {
		role  effectchain.Role
		key   effectchain.ParamKey
		value float64
	}{
		{effectchain.RoleLowPass, effectchain.KeyCutoff, 1234.5},
		{effectchain.RoleLowPass, effectchain.KeyResonance, -7.25},
		{effectchain.RoleDelay, effectchain.KeyFeedback, -37.5},
		{effectchain.RoleDelay, effectchain.KeyDelayTime, 0.333},
		{effectchain.RoleDelay, effectchain.KeyLowPassCutoff, 9000},
		{effectchain.RoleDelay, effectchain.KeyWetDryMix, 12},
		{effectchain.RoleDistortion, effectchain.KeyDecimation, 42},
		{effectchain.RoleDistortion, effectchain.KeySoftClipGain, -80},
		{effectchain.RoleGain, effectchain.KeyGain, 6},
	}

	for _, playing := range []bool{false, true} {
		if playing {
			if err := f.pool.PlayAll(); err != nil {
				t.Fatalf("PlayAll() error = %v", err)
			}
		}

		for i := range laneIDs {
			for _, tt := range tests {
				if err := f.pool.SetParameter(i, tt.role, tt.key, tt.value); err != nil {
					t.Fatalf("SetParameter(%d, %s, %s) error = %v", i, tt.role, tt.key, err)
				}

				got, err := f.pool.Parameter(i, tt.role, tt.key)
				if err != nil || got != tt.value {
					t.Fatalf("Parameter(%d, %s, %s) = %v, %v, want %v", i, tt.role, tt.key, got, err, tt.value)
				}
			}

			if got := f.pool.Snapshot().Playing[i]; got != playing {
				t.Fatalf("lane %d playing = %v after parameter changes, want %v", i, got, playing)
			}
		}
	}
}

func TestPlayAllIsBestEffort(t *testing.T) {
	f := newFixture(t)
	f.build(t, true)

	if got := f.pool.Snapshot().Playing; !slices.Equal(got, []bool{false, false, false, false}) {
		t.Fatalf("initial snapshot = %v", got)
	}

	device := errors.New("device busy")
	f.renderer.FailPlay(2, device)

	err := f.pool.PlayAll()

	var bulk *BulkError
	if !errors.As(err, &bulk) {
		t.Fatalf("PlayAll() error = %v, want *BulkError", err)
	}

	if !slices.Equal(bulk.Failed, []int{2}) || !bulk.Contains(2) || bulk.Contains(0) {
		t.Fatalf("Failed = %v, want [2]", bulk.Failed)
	}

	if !errors.Is(err, lane.ErrPlaybackStartFailed) || !errors.Is(err, device) {
		t.Fatalf("PlayAll() error = %v, want wrapped start failure", err)
	}

	if got := f.pool.Snapshot().Playing; !slices.Equal(got, []bool{true, true, false, true}) {
		t.Fatalf("snapshot = %v, want [true true false true]", got)
	}

	f.renderer.FailPlay(2, nil)

	if err := f.pool.PlayAll(); err != nil {
		t.Fatalf("PlayAll() retry error = %v", err)
	}

	if got := f.pool.Snapshot().Playing; !slices.Equal(got, []bool{true, true, true, true}) {
		t.Fatalf("snapshot = %v, want all playing", got)
	}
}

func TestInvalidDelayTimeKeepsPreviousValue(t *testing.T) {
	f := newFixture(t)
	f.build(t, true)

	if err := f.pool.SetParameter(1, effectchain.RoleDelay, effectchain.KeyDelayTime, 0.5); err != nil {
		t.Fatalf("SetParameter() error = %v", err)
	}

	for _, bad := range []float64{2.01, -0.1, math.NaN(), math.Inf(1)} {
		err := f.pool.SetParameter(1, effectchain.RoleDelay, effectchain.KeyDelayTime, bad)
		if !errors.Is(err, effectchain.ErrInvalidParameter) {
			t.Fatalf("SetParameter(%v) error = %v, want ErrInvalidParameter", bad, err)
		}

		got, err := f.pool.Parameter(1, effectchain.RoleDelay, effectchain.KeyDelayTime)
		if err != nil || got != 0.5 {
			t.Fatalf("Parameter() = %v, %v, want 0.5", got, err)
		}
	}

	for _, edge := range []float64{0, 2} {
		if err := f.pool.SetParameter(1, effectchain.RoleDelay, effectchain.KeyDelayTime, edge); err != nil {
			t.Fatalf("SetParameter(%v) error = %v", edge, err)
		}
	}
}

func TestSetOutputRouteStopsLanesFirst(t *testing.T) {
	f := newFixture(t)
	f.build(t, true)

	if err := f.pool.SetParameter(0, effectchain.RoleLowPass, effectchain.KeyCutoff, 800); err != nil {
		t.Fatalf("SetParameter() error = %v", err)
	}

	if err := f.pool.PlayAll(); err != nil {
		t.Fatalf("PlayAll() error = %v", err)
	}

	before := f.pool.Snapshot()

	if err := f.pool.SetOutputRoute(true); err != nil {
		t.Fatalf("SetOutputRoute() error = %v", err)
	}

	for _, v := range f.renderer.Voices()[:len(laneIDs)] {
		if v.IsPlaying() {
			t.Fatalf("voice %d still playing after route change", v.Index())
		}
	}

	after := f.pool.Snapshot()
	if !slices.Equal(after.Playing, []bool{false, false, false, false}) || !after.UseSpeaker {
		t.Fatalf("snapshot = %+v", after)
	}

	if after.Generation == before.Generation {
		t.Fatal("generation unchanged after lanes were rebuilt")
	}

	if active, speaker := f.router.Route(); !active || !speaker {
		t.Fatalf("router route = %v, %v", active, speaker)
	}

	if got, _ := f.pool.Parameter(0, effectchain.RoleLowPass, effectchain.KeyCutoff); got != 800 {
		t.Fatalf("cutoff after rebuild = %v, want 800", got)
	}

	if err := f.pool.PlayAll(); err != nil {
		t.Fatalf("PlayAll() after route change error = %v", err)
	}

	if got := f.pool.Snapshot().Playing; !slices.Equal(got, []bool{true, true, true, true}) {
		t.Fatalf("snapshot = %v, want all playing", got)
	}

	if live := len(f.renderer.Live()); live != len(laneIDs) {
		t.Fatalf("live voices = %d, want %d", live, len(laneIDs))
	}
}

func TestRouteFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.build(t, false)

	if err := f.pool.Configure(context.Background(), false); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}

	_ = f.pool.PlayAll()
	f.router.SetFailure(errors.New("no speaker"))

	err := f.pool.SetOutputRoute(true)
	if !errors.Is(err, output.ErrRoute) {
		t.Fatalf("SetOutputRoute() error = %v, want ErrRoute", err)
	}

	var re *output.RouteError
	if !errors.As(err, &re) || !re.UseSpeaker {
		t.Fatalf("SetOutputRoute() error = %v, want *RouteError", err)
	}

	s := f.pool.Snapshot()
	if s.UseSpeaker || slices.Contains(s.Playing, true) {
		t.Fatalf("snapshot = %+v, want previous route and stopped lanes", s)
	}

	if err := f.pool.Play(0); err != nil {
		t.Fatalf("Play() after route failure error = %v", err)
	}
}

func TestBuildLanesIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	f.build(t, true)

	before := f.pool.Snapshot().Generation
	ids := append(slices.Clone(laneIDs), "missing")

	err := f.pool.BuildLanes(t.Context(), ids, true)
	if !errors.Is(err, ErrEngineBuildFailed) {
		t.Fatalf("BuildLanes() error = %v, want ErrEngineBuildFailed", err)
	}

	if !errors.Is(err, asset.ErrResourceNotFound) {
		t.Fatalf("BuildLanes() error = %v, want cause ErrResourceNotFound", err)
	}

	if f.pool.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", f.pool.Len())
	}

	if live := f.renderer.Live(); len(live) != 0 {
		t.Fatalf("%d voices left open", len(live))
	}

	s := f.pool.Snapshot()
	if len(s.Playing) != 0 || s.Generation == before {
		t.Fatalf("snapshot = %+v", s)
	}

	if err := f.pool.Play(0); !errors.Is(err, ErrInvalidLaneIndex) {
		t.Fatalf("Play() on empty pool error = %v", err)
	}

	if err := f.pool.PlayAll(); !errors.Is(err, ErrNoLanes) {
		t.Fatalf("PlayAll() on empty pool error = %v", err)
	}
}

func TestBuildLanesVoiceFailure(t *testing.T) {
	f := newFixture(t)
	f.renderer.FailNewVoice(output.ErrDeviceUnavailable)

	err := f.pool.BuildLanes(t.Context(), laneIDs, false)
	if !errors.Is(err, ErrEngineBuildFailed) || !errors.Is(err, output.ErrDeviceUnavailable) {
		t.Fatalf("BuildLanes() error = %v", err)
	}

	if f.pool.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", f.pool.Len())
	}
}

func TestBuildLanesCanceled(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := f.pool.BuildLanes(ctx, laneIDs, false)
	if !errors.Is(err, ErrEngineBuildFailed) || !errors.Is(err, context.Canceled) {
		t.Fatalf("BuildLanes() error = %v", err)
	}
}

func TestInvalidLaneIndex(t *testing.T) {
	f := newFixture(t)
	f.build(t, false)

	for _, i := range []int{-1, len(laneIDs)} {
		if err := f.pool.Play(i); !errors.Is(err, ErrInvalidLaneIndex) {
			t.Fatalf("Play(%d) error = %v", i, err)
		}

		if err := f.pool.Stop(i, false); !errors.Is(err, ErrInvalidLaneIndex) {
			t.Fatalf("Stop(%d) error = %v", i, err)
		}

		if _, err := f.pool.Parameter(i, effectchain.RoleGain, effectchain.KeyGain); !errors.Is(err, ErrInvalidLaneIndex) {
			t.Fatalf("Parameter(%d) error = %v", i, err)
		}
	}
}

func TestPlainLanesHaveGainOnly(t *testing.T) {
	f := newFixture(t)
	f.build(t, false)

	roles, err := f.pool.Roles(0)
	if err != nil {
		t.Fatalf("Roles() error = %v", err)
	}

	if !slices.Equal(roles, PlainRoles) {
		t.Fatalf("Roles() = %v, want %v", roles, PlainRoles)
	}

	err = f.pool.SetParameter(0, effectchain.RoleDelay, effectchain.KeyFeedback, 10)
	if !errors.Is(err, effectchain.ErrInvalidParameter) {
		t.Fatalf("SetParameter() on plain lane error = %v", err)
	}
}

func TestClassicChainPreset(t *testing.T) {
	f := newFixture(t, WithPreset(ClassicChain))
	f.build(t, true)

	params, err := f.pool.Parameters(3, effectchain.RoleDelay)
	if err != nil {
		t.Fatalf("Parameters() error = %v", err)
	}

	want := map[effectchain.ParamKey]float64{
		effectchain.KeyDelayTime:     0,
		effectchain.KeyFeedback:      0,
		effectchain.KeyWetDryMix:     50,
		effectchain.KeyLowPassCutoff: 15000,
	}

	for k, v := range want {
		if params[k] != v {
			t.Fatalf("%s = %v, want %v", k, params[k], v)
		}
	}

	g := newFixture(t, WithPreset(ClassicChain))
	g.build(t, false)
}

func TestNaturalEndUpdatesSnapshot(t *testing.T) {
	f := newFixture(t, WithAnalyzerSize(0))
	f.build(t, false)

	updates, cancel := f.pool.Subscribe()
	defer cancel()

	if err := f.pool.Play(1); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	if s := <-updates; !s.Playing[1] {
		t.Fatalf("snapshot after Play = %v", s.Playing)
	}

	if _, err := f.renderer.Render(2 * rampFrames); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	timeout := time.After(2 * time.Second)

	for {
		select {
		case s := <-updates:
			if !s.Playing[1] {
				return
			}
		case <-timeout:
			t.Fatalf("no snapshot with lane 1 stopped; last = %+v", f.pool.Snapshot())
		}
	}
}

func TestLoopingLanesKeepPlaying(t *testing.T) {
	f := newFixture(t, WithLoops(lane.LoopForever))
	f.build(t, false)

	_ = f.pool.PlayAll()

	if _, err := f.renderer.Render(5 * rampFrames); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if got := f.pool.Snapshot().Playing; !slices.Equal(got, []bool{true, true, true, true}) {
		t.Fatalf("snapshot = %v", got)
	}
}

func TestSubscribeLatestWins(t *testing.T) {
	f := newFixture(t)
	f.build(t, false)

	updates, cancel := f.pool.Subscribe()

	for i := range laneIDs {
		_ = f.pool.Play(i)
	}

	s := <-updates
	if !slices.Equal(s.Playing, []bool{true, true, true, true}) {
		t.Fatalf("buffered snapshot = %v, want latest", s.Playing)
	}

	cancel()
	cancel()

	if _, ok := <-updates; ok {
		t.Fatal("channel open after cancel")
	}
}

func TestLevelsAndSpectrum(t *testing.T) {
	f := newFixture(t, WithAnalyzerSize(64))
	f.build(t, false)

	_ = f.pool.Play(0)

	if _, err := f.renderer.Render(80); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	levels := f.pool.Levels()
	if len(levels) != len(laneIDs) || levels[0] <= 0 || levels[1] != 0 {
		t.Fatalf("Levels() = %v", levels)
	}

	spec, err := f.pool.Spectrum(0)
	if err != nil || len(spec) != 33 {
		t.Fatalf("Spectrum() = %d bins, %v", len(spec), err)
	}

	if _, err := f.pool.Spectrum(9); !errors.Is(err, ErrInvalidLaneIndex) {
		t.Fatalf("Spectrum(9) error = %v", err)
	}
}

func TestSetGain(t *testing.T) {
	f := newFixture(t)
	f.build(t, false)

	if err := f.pool.SetGain(0, 0.25); err != nil {
		t.Fatalf("SetGain() error = %v", err)
	}

	if err := f.pool.SetGain(0, -1); err == nil {
		t.Fatal("SetGain(-1): expected error")
	}

	if got := f.pool.Status()[0].Gain; got != 0.25 {
		t.Fatalf("Gain = %v, want 0.25", got)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.build(t, false)

	updates, _ := f.pool.Subscribe()
	_ = f.pool.PlayAll()

	if err := f.pool.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if err := f.pool.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	if live := f.renderer.Live(); len(live) != 0 {
		t.Fatalf("%d voices open after Close", len(live))
	}

	for range updates {
	}

	if err := f.pool.Play(0); !errors.Is(err, ErrClosed) {
		t.Fatalf("Play() after Close error = %v", err)
	}

	if err := f.pool.BuildLanes(t.Context(), laneIDs, false); !errors.Is(err, ErrClosed) {
		t.Fatalf("BuildLanes() after Close error = %v", err)
	}
}
