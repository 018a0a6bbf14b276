package level

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-lanes/internal/testutil"
)

const tolerance = 1e-9

func TestMeterSine(t *testing.T) {
	// 100 full cycles of a 480 Hz sine at 48 kHz.
	sine := testutil.DeterministicSine(480, 48000, 0.5, 10000)

	var m Meter
	m.Update(sine[:4000]...)
	m.Update(sine[4000:]...)
	s := m.Result()

	if s.Frames != len(sine) {
		t.Fatalf("Frames = %d, want %d", s.Frames, len(sine))
	}

	if math.Abs(s.RMS-0.5/math.Sqrt2) > 1e-6 {
		t.Fatalf("RMS = %v, want %v", s.RMS, 0.5/math.Sqrt2)
	}

	if math.Abs(s.Peak-0.5) > 1e-6 {
		t.Fatalf("Peak = %v, want 0.5", s.Peak)
	}

	if math.Abs(s.DC) > 1e-6 {
		t.Fatalf("DC = %v, want ~0", s.DC)
	}

	if math.Abs(s.CrestDB()-20*math.Log10(math.Sqrt2)) > 1e-4 {
		t.Fatalf("CrestDB = %v", s.CrestDB())
	}

	if s.Clipped != 0 {
		t.Fatalf("Clipped = %d, want 0", s.Clipped)
	}
}

func TestMeterEdgeCases(t *testing.T) {
	tests := []struct {
		name    string
		input   []float64
		rms     float64
		peak    float64
		dc      float64
		clipped int
		cross   int
	}{
		{name: "empty"},
		{name: "silence", input: make([]float64, 8)},
		{name: "dc", input: []float64{0.25, 0.25, 0.25, 0.25}, rms: 0.25, peak: 0.25, dc: 0.25},
		{name: "square", input: []float64{1, -1, 1, -1}, rms: 1, peak: 1, clipped: 4, cross: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Meter
			m.Update(tt.input...)
			s := m.Result()

			if math.Abs(s.RMS-tt.rms) > tolerance || math.Abs(s.Peak-tt.peak) > tolerance ||
				math.Abs(s.DC-tt.dc) > tolerance {
				t.Fatalf("got rms=%v peak=%v dc=%v, want %v %v %v", s.RMS, s.Peak, s.DC, tt.rms, tt.peak, tt.dc)
			}

			if s.Clipped != tt.clipped || s.Crossing != tt.cross {
				t.Fatalf("got clipped=%d cross=%d, want %d %d", s.Clipped, s.Crossing, tt.clipped, tt.cross)
			}

			if s.RMS == 0 && (s.Crest != 0 || s.CrestDB() != 0) {
				t.Fatalf("crest of silence = %v", s.Crest)
			}
		})
	}
}

func TestSilencePeakDB(t *testing.T) {
	var m Meter
	if db := m.Result().PeakDB(); !math.IsInf(db, -1) {
		t.Fatalf("PeakDB of silence = %v, want -Inf", db)
	}
}

func TestMeterReset(t *testing.T) {
	var m Meter
	m.Update(1, -1)
	m.Reset()

	if s := m.Result(); s != (Stats{}) {
		t.Fatalf("after Reset = %+v", s)
	}
}

func TestMeasureStereo(t *testing.T) {
	left := []float64{0.5, 0.5, 0.5, 0.5}
	right := []float64{0, -0.25, 0, 0.25}
	r := Measure(testutil.Interleave(left, right), 2)

	if len(r.Channels) != 2 {
		t.Fatalf("channels = %d", len(r.Channels))
	}

	if r.Channels[0].Peak != 0.5 || r.Channels[1].Peak != 0.25 {
		t.Fatalf("channel peaks = %v %v", r.Channels[0].Peak, r.Channels[1].Peak)
	}

	if r.Channels[1].PeakPos != 1 {
		t.Fatalf("right PeakPos = %d, want 1", r.Channels[1].PeakPos)
	}

	if r.Total.Frames != 4 || r.Total.Peak != 0.5 || r.Total.PeakPos != 0 {
		t.Fatalf("total = %+v", r.Total)
	}

	if r.Total.Crossing != 0 {
		t.Fatalf("total crossings = %d, want 0", r.Total.Crossing)
	}
}

func TestMeasureInvalidChannels(t *testing.T) {
	if r := Measure([]float32{1, 2}, 0); r.Channels != nil {
		t.Fatalf("Measure with 0 channels = %+v", r)
	}
}
