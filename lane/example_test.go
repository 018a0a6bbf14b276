package lane_test

import (
	"fmt"

	"github.com/cwbudde/algo-lanes/asset"
	"github.com/cwbudde/algo-lanes/dsp/effectchain"
	"github.com/cwbudde/algo-lanes/lane"
	"github.com/cwbudde/algo-lanes/output"
	"github.com/cwbudde/algo-lanes/output/memory"
)

func ExampleLane() {
	format := output.Format{SampleRate: 48000, Channels: 2}
	renderer := memory.NewRenderer(format)

	pcm, _ := asset.Tone("beep", 440, 0.5, 0.01, format.SampleRate, 2)
	chain, _ := effectchain.Build(effectchain.Context{SampleRate: 48000, Channels: 2},
		effectchain.DefaultRegistry(), effectchain.RoleSource, effectchain.RoleLowPass)

	l, _ := lane.New(0, pcm, chain, renderer)
	_ = l.Play()

	_, _ = renderer.Render(240)
	fmt.Println(l.State(), l.Position())

	_ = l.Stop(true)
	fmt.Println(l.State(), l.Position())
	// Output:
	// playing 240
	// stopped 0
}
