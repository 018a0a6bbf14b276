package engine

import (
	"bytes"
	"io"
	"io/fs"
	"log"
	"testing"
	"testing/fstest"

	"github.com/cwbudde/algo-lanes/asset"
	"github.com/cwbudde/algo-lanes/output"
	"github.com/cwbudde/algo-lanes/output/memory"
)

const rampFrames = 100

var stereo = output.Format{SampleRate: 48000, Channels: 2}

var laneIDs = []string{"bass", "drums", "stack1", "stack2"}

// rampDecoder turns every byte b into the mono sample b/128.
var rampDecoder = asset.DecoderFunc(func(r io.Reader) (*asset.PCM, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	samples := make([]float32, len(data))
	for i, b := range data {
		samples[i] = float32(b) / 128
	}

	return asset.New("", stereo.SampleRate, 1, samples)
})

func rampFS() fs.FS {
	data := make([]byte, rampFrames)
	for i := range data {
		data[i] = byte(i)
	}

	fsys := fstest.MapFS{}
	for _, id := range laneIDs {
		fsys[id+".ramp"] = &fstest.MapFile{Data: bytes.Clone(data)}
	}

	return fsys
}

func discard() *log.Logger { return log.New(io.Discard, "", 0) }

type fixture struct {
	pool     *Pool
	router   *memory.Router
	renderer *memory.Renderer
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	f := &fixture{router: memory.NewRouter(), renderer: memory.NewRenderer(stereo)}
	lib := asset.NewLibrary(rampFS(), asset.WithDecoder(".ramp", rampDecoder))

	opts = append([]Option{WithLogger(discard())}, opts...)

	p, err := New(f.router, f.renderer, lib, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	t.Cleanup(func() { _ = p.Close() })
	f.pool = p

	return f
}

func (f *fixture) build(t *testing.T, withEffects bool) {
	t.Helper()

	if err := f.pool.BuildLanes(t.Context(), laneIDs, withEffects); err != nil {
		t.Fatalf("BuildLanes() error = %v", err)
	}
}

// firstLeft renders one frame and returns the left sample per live voice,
// or -1 for a voice that produced nothing.
func (f *fixture) firstLeft(t *testing.T) []float32 {
	t.Helper()

	out, err := f.renderer.Render(1)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	left := make([]float32, len(out))
	for i, s := range out {
		left[i] = -1
		if len(s) > 0 {
			left[i] = s[0]
		}
	}

	return left
}

// guardRouter counts the voices still playing each time a route is
// activated.
type guardRouter struct {
	*memory.Router

	renderer  *memory.Renderer
	playingAt []int
}

func (g *guardRouter) Activate(useSpeaker bool) error {
	n := 0
	for _, v := range g.renderer.Live() {
		if v.IsPlaying() {
			n++
		}
	}

	g.playingAt = append(g.playingAt, n)

	return g.Router.Activate(useSpeaker)
}
