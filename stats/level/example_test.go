package level_test

import (
	"fmt"

	"github.com/cwbudde/algo-lanes/stats/level"
)

func ExampleMeasure() {
	r := level.Measure([]float32{1, 0.5, -1, -0.5}, 2)
	fmt.Printf("left=%.1f right=%.1f frames=%d\n", r.Channels[0].Peak, r.Channels[1].Peak, r.Total.Frames)

	// Output:
	// left=1.0 right=0.5 frames=2
}

func ExampleMeter() {
	var m level.Meter
	m.Update(1, -1)
	m.Update(1, -1)
	s := m.Result()
	fmt.Printf("rms=%.1f zc=%d\n", s.RMS, s.Crossing)

	// Output:
	// rms=1.0 zc=3
}
