package effects

import (
	"math"
	"testing"
)

func TestDistortionDefaults(t *testing.T) {
	d, err := NewDistortion(44100)
	if err != nil {
		t.Fatalf("NewDistortion: %v", err)
	}

	if d.Decimation() != 0 || d.SoftClipGain() != -6 {
		t.Fatalf("defaults = decimation %v gain %v", d.Decimation(), d.SoftClipGain())
	}

	if d.HoldLength() != 1 {
		t.Fatalf("hold = %d, want 1", d.HoldLength())
	}
}

func TestDistortionValidation(t *testing.T) {
	d, err := NewDistortion(44100)
	if err != nil {
		t.Fatalf("NewDistortion: %v", err)
	}

	if err := d.SetDecimation(101); err == nil {
		t.Fatal("expected decimation error")
	}

	if err := d.SetSoftClipGain(21); err == nil {
		t.Fatal("expected gain error")
	}

	if err := d.SetSoftClipGain(-81); err == nil {
		t.Fatal("expected gain error")
	}
}

func TestDistortionLowDriveIsTransparent(t *testing.T) {
	d, err := NewDistortion(44100)
	if err != nil {
		t.Fatalf("NewDistortion: %v", err)
	}

	mustSet(t, d.SetSoftClipGain(MinSoftClipGainDB))

	for _, x := range []float64{-1, -0.5, 0, 0.3, 1} {
		if got := d.ProcessSample(x); math.Abs(got-x) > 1e-3 {
			t.Fatalf("ProcessSample(%v) = %v, want ~%v", x, got, x)
		}
	}
}

func TestDistortionHighDriveIsBounded(t *testing.T) {
	d, err := NewDistortion(44100)
	if err != nil {
		t.Fatalf("NewDistortion: %v", err)
	}

	mustSet(t, d.SetSoftClipGain(MaxSoftClipGainDB))

	for _, x := range []float64{-4, -1, -0.2, 0.2, 1, 4} {
		got := d.ProcessSample(x)
		if math.Abs(got) > 1 {
			t.Fatalf("ProcessSample(%v) = %v, want |y| <= 1", x, got)
		}

		if math.Signbit(got) != math.Signbit(x) {
			t.Fatalf("ProcessSample(%v) = %v flipped sign", x, got)
		}
	}
}

func TestDistortionStaysWithinFullScale(t *testing.T) {
	tests := []struct {
		name        string
		gainDB      float64
		transparent bool
	}{
		{name: "default", gainDB: defaultSoftClipGainDB, transparent: true},
		{name: "cold", gainDB: -20, transparent: true},
		{name: "unity", gainDB: 0},
		{name: "hot", gainDB: MaxSoftClipGainDB},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDistortion(48000)
			if err != nil {
				t.Fatalf("NewDistortion: %v", err)
			}

			mustSet(t, d.SetSoftClipGain(tt.gainDB))

			for _, x := range []float64{-8, -2, -1, 1, 2, 8} {
				if got := d.ProcessSample(x); math.Abs(got) > 1 {
					t.Fatalf("ProcessSample(%v) = %v, want |y| <= 1", x, got)
				}
			}

			if !tt.transparent {
				return
			}

			if got := d.ProcessSample(0.01); math.Abs(got-0.01) > 1e-3 {
				t.Fatalf("ProcessSample(0.01) = %v, want ~0.01", got)
			}
		})
	}
}

func TestDistortionDecimationHoldsSamples(t *testing.T) {
	d, err := NewDistortion(44100)
	if err != nil {
		t.Fatalf("NewDistortion: %v", err)
	}

	mustSet(t, d.SetSoftClipGain(MinSoftClipGainDB))
	mustSet(t, d.SetDecimation(100))

	if d.HoldLength() != maxDecimationHold {
		t.Fatalf("hold = %d, want %d", d.HoldLength(), maxDecimationHold)
	}

	buf := make([]float64, 2*maxDecimationHold)
	for i := range buf {
		buf[i] = float64(i) / float64(len(buf))
	}

	d.ProcessInPlace(buf)

	for i := 1; i < maxDecimationHold; i++ {
		if buf[i] != buf[0] {
			t.Fatalf("buf[%d] = %v, want held %v", i, buf[i], buf[0])
		}
	}

	if buf[maxDecimationHold] == buf[0] {
		t.Fatal("hold did not advance after a full period")
	}
}
