package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/cwbudde/algo-lanes/asset"
	"github.com/cwbudde/algo-lanes/dsp/core"
	"github.com/cwbudde/algo-lanes/dsp/effectchain"
	"github.com/cwbudde/algo-lanes/dsp/spectrum"
	"github.com/cwbudde/algo-lanes/lane"
	"github.com/cwbudde/algo-lanes/output"
)

// Loader resolves asset identifiers to decoded audio. *asset.Library
// implements it.
type Loader interface {
	Load(id string) (*asset.PCM, error)
}

// LaneStatus is a point-in-time view of one lane for display.
type LaneStatus struct {
	Index    int
	AssetID  string
	Playing  bool
	Position int64
	Frames   int
	Gain     float64
	Peak     float64
}

// Pool is a fixed-size set of lanes sharing one output route.
type Pool struct {
	router   output.Router
	renderer output.Renderer
	loader   Loader
	opts     options
	cfg      core.ProcessorConfig

	mu          sync.Mutex
	lanes       []*lane.Lane
	assets      []*asset.PCM
	withEffects bool
	useSpeaker  bool
	generation  uuid.UUID
	snapshot    Snapshot
	closed      bool

	hub      *hub
	finished chan int
	done     chan struct{}
	wg       sync.WaitGroup
}

// New returns an empty pool rendering through renderer. Sample rate and
// channel count come from renderer.Format.
func New(router output.Router, renderer output.Renderer, loader Loader, opts ...Option) (*Pool, error) {
	if router == nil || renderer == nil || loader == nil {
		return nil, errors.New("engine: router, renderer and loader are required")
	}

	format := renderer.Format()
	if format.Channels != 1 && format.Channels != 2 {
		return nil, fmt.Errorf("engine: output must be mono or stereo: %d channels", format.Channels)
	}

	if format.SampleRate <= 0 {
		return nil, fmt.Errorf("engine: output sample rate must be > 0: %f", format.SampleRate)
	}

	o := applyOptions(opts)

	p := &Pool{
		router:   router,
		renderer: renderer,
		loader:   loader,
		opts:     o,
		cfg: core.ApplyProcessorOptions(
			core.WithSampleRate(format.SampleRate),
			core.WithChannels(format.Channels),
			core.WithBlockSize(o.blockSize),
		),
		generation: uuid.New(),
		hub:        newHub(),
		finished:   make(chan int, 64),
		done:       make(chan struct{}),
	}
	p.refreshLocked()

	p.wg.Add(1)
	go p.watch()

	return p, nil
}

// Config returns the processing settings shared by every lane.
func (p *Pool) Config() core.ProcessorConfig { return p.cfg }

// Configure applies output routing. Playing lanes are stopped first, keeping
// their positions. On failure the previous route stays in effect, the error
// is logged and returned, and the pool remains usable.
func (p *Pool) Configure(ctx context.Context, useSpeaker bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	defer p.refreshLocked()

	p.silenceLocked()

	return p.activateLocked(useSpeaker)
}

// silenceLocked stops every playing lane without rewinding it.
func (p *Pool) silenceLocked() {
	if !slices.ContainsFunc(p.lanes, (*lane.Lane).IsPlaying) {
		return
	}

	if err := bulkApply("stop all", p.lanes, func(l *lane.Lane) error { return l.Stop(false) }); err != nil {
		p.opts.logger.Printf("engine: stop before route change: %v", err)
	}
}

func (p *Pool) activateLocked(useSpeaker bool) error {
	if err := p.router.Activate(useSpeaker); err != nil {
		p.opts.logger.Printf("engine: route activation failed: %v", err)
		return err
	}

	p.useSpeaker = useSpeaker

	return nil
}

// BuildLanes replaces the pool's lanes with one lane per asset id. Lanes
// with effects use the effect chain layout, others the plain one. If any
// lane fails, BuildLanes returns ErrEngineBuildFailed and the pool is left
// without lanes.
func (p *Pool) BuildLanes(ctx context.Context, ids []string, withEffects bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	defer p.refreshLocked()

	if err := p.teardownLocked(); err != nil {
		p.opts.logger.Printf("engine: teardown: %v", err)
	}

	pcms := make([]*asset.PCM, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return p.failBuildLocked(err)
		}

		pcm, err := p.loader.Load(id)
		if err != nil {
			return p.failBuildLocked(err)
		}

		pcms = append(pcms, pcm)
	}

	if err := p.buildLocked(pcms, withEffects); err != nil {
		return p.failBuildLocked(err)
	}

	return nil
}

func (p *Pool) failBuildLocked(err error) error {
	p.lanes = nil
	p.assets = nil
	p.generation = uuid.New()
	p.opts.logger.Printf("engine: build lanes: %v", err)

	return fmt.Errorf("%w: %w", ErrEngineBuildFailed, err)
}

// buildLocked constructs every lane or none.
func (p *Pool) buildLocked(pcms []*asset.PCM, withEffects bool) error {
	roles := p.opts.plainRoles
	if withEffects {
		roles = p.opts.effectRoles
	}

	ctx := effectchain.Context{SampleRate: p.cfg.SampleRate, Channels: p.cfg.Channels}
	lanes := make([]*lane.Lane, 0, len(pcms))
	assets := make([]*asset.PCM, 0, len(pcms))

	for i, pcm := range pcms {
		l, err := p.newLane(ctx, i, pcm, roles)
		if err != nil {
			closeLanes(lanes)
			return err
		}

		lanes = append(lanes, l)
		assets = append(assets, l.Asset())
	}

	p.lanes = lanes
	p.assets = assets
	p.withEffects = withEffects
	p.generation = uuid.New()

	return nil
}

func (p *Pool) newLane(ctx effectchain.Context, i int, pcm *asset.PCM, roles []effectchain.Role) (*lane.Lane, error) {
	chain, err := effectchain.Build(ctx, p.opts.registry, roles...)
	if err != nil {
		return nil, fmt.Errorf("lane %d: %w", i, err)
	}

	laneOpts := []lane.Option{
		lane.WithLoops(p.opts.loops),
		lane.WithBlockSize(p.cfg.BlockSize),
		lane.WithOnFinish(p.notifyFinish),
	}

	if p.opts.analyzerSize > 0 {
		a, err := spectrum.NewAnalyzer(p.opts.analyzerSize, p.cfg.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("lane %d: %w", i, err)
		}

		laneOpts = append(laneOpts, lane.WithAnalyzer(a))
	}

	l, err := lane.New(i, pcm, chain, p.renderer, laneOpts...)
	if err != nil {
		return nil, err
	}

	for _, preset := range p.opts.presets {
		if err := preset(l); err != nil {
			_ = l.Close()
			return nil, fmt.Errorf("lane %d: preset: %w", i, err)
		}
	}

	return l, nil
}

func (p *Pool) teardownLocked() error {
	var errs []error
	for _, l := range p.lanes {
		if err := l.Stop(false); err != nil {
			errs = append(errs, err)
		}
	}

	errs = append(errs, closeLanes(p.lanes))
	p.lanes = nil

	return errors.Join(errs...)
}

func closeLanes(lanes []*lane.Lane) error {
	var errs []error
	for _, l := range lanes {
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("lane %d: %w", l.Index(), err))
		}
	}

	return errors.Join(errs...)
}

// Len returns the number of lanes.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.lanes)
}

func (p *Pool) laneLocked(i int) (*lane.Lane, error) {
	if p.closed {
		return nil, ErrClosed
	}

	if i < 0 || i >= len(p.lanes) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidLaneIndex, i, len(p.lanes))
	}

	return p.lanes[i], nil
}

// Play starts lane i.
func (p *Pool) Play(i int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	l, err := p.laneLocked(i)
	if err != nil {
		return err
	}

	defer p.refreshLocked()

	return l.Play()
}

// Stop halts lane i, rewinding it when reset is set.
func (p *Pool) Stop(i int, reset bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	l, err := p.laneLocked(i)
	if err != nil {
		return err
	}

	defer p.refreshLocked()

	return l.Stop(reset)
}

// PlayAll starts every lane in index order. A failing lane does not stop
// the others; failures are reported together in a *BulkError.
func (p *Pool) PlayAll() error {
	return p.bulk("play all", (*lane.Lane).Play)
}

// StopAll halts every lane in index order.
func (p *Pool) StopAll(reset bool) error {
	return p.bulk("stop all", func(l *lane.Lane) error { return l.Stop(reset) })
}

func (p *Pool) bulk(op string, fn func(*lane.Lane) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	if len(p.lanes) == 0 {
		return ErrNoLanes
	}

	defer p.refreshLocked()

	return bulkApply(op, p.lanes, fn)
}

func bulkApply(op string, lanes []*lane.Lane, fn func(*lane.Lane) error) error {
	var be *BulkError
	for _, l := range lanes {
		if err := fn(l); err != nil {
			if be == nil {
				be = &BulkError{Op: op}
			}

			be.Failed = append(be.Failed, l.Index())
			be.Errs = append(be.Errs, err)
		}
	}

	if be != nil {
		return be
	}

	return nil
}

// SetParameter sets an effect parameter on lane i. Transport state is not
// affected.
func (p *Pool) SetParameter(i int, role effectchain.Role, key effectchain.ParamKey, value float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	l, err := p.laneLocked(i)
	if err != nil {
		return err
	}

	defer p.refreshLocked()

	return l.SetEffectParameter(role, key, value)
}

// Parameter returns the last value set for an effect parameter on lane i.
func (p *Pool) Parameter(i int, role effectchain.Role, key effectchain.ParamKey) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	l, err := p.laneLocked(i)
	if err != nil {
		return 0, err
	}

	return l.EffectParameter(role, key)
}

// Parameters returns every parameter of the node with role on lane i.
func (p *Pool) Parameters(i int, role effectchain.Role) (map[effectchain.ParamKey]float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	l, err := p.laneLocked(i)
	if err != nil {
		return nil, err
	}

	return l.EffectParameters(role)
}

// Roles returns the chain layout of lane i.
func (p *Pool) Roles(i int) ([]effectchain.Role, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	l, err := p.laneLocked(i)
	if err != nil {
		return nil, err
	}

	return l.Roles(), nil
}

// SetGain sets the linear output gain of lane i.
func (p *Pool) SetGain(i int, linear float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	l, err := p.laneLocked(i)
	if err != nil {
		return err
	}

	return l.SetGain(linear)
}

// SetOutputRoute silences every lane, switches the route and rebuilds the
// lanes on the new route with their effect settings carried over. If the
// router fails, the lanes stay stopped on the previous route.
func (p *Pool) SetOutputRoute(useSpeaker bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	defer p.refreshLocked()

	p.silenceLocked()

	if err := p.activateLocked(useSpeaker); err != nil {
		return err
	}

	if len(p.lanes) == 0 {
		return nil
	}

	return p.rebuildLocked()
}

// rebuildLocked recreates the lanes from the cached assets and restores
// every lane's parameters and gain.
func (p *Pool) rebuildLocked() error {
	type saved struct {
		params map[effectchain.Role]map[effectchain.ParamKey]float64
		gain   float64
	}

	state := make([]saved, len(p.lanes))
	for i, l := range p.lanes {
		s := saved{params: make(map[effectchain.Role]map[effectchain.ParamKey]float64), gain: l.Gain()}
		for _, role := range l.Roles() {
			if params, err := l.EffectParameters(role); err == nil && len(params) > 0 {
				s.params[role] = params
			}
		}

		state[i] = s
	}

	assets := p.assets

	if err := p.teardownLocked(); err != nil {
		p.opts.logger.Printf("engine: teardown: %v", err)
	}

	if err := p.buildLocked(assets, p.withEffects); err != nil {
		return p.failBuildLocked(err)
	}

	for i, l := range p.lanes {
		for role, params := range state[i].params {
			for key, v := range params {
				if err := l.SetEffectParameter(role, key, v); err != nil {
					return p.failBuildLocked(err)
				}
			}
		}

		_ = l.SetGain(state[i].gain)
	}

	return nil
}

// Snapshot returns the current transport state.
func (p *Pool) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.snapshot.Clone()
}

// Subscribe returns a channel that receives the current snapshot and then
// every later one. Slow readers only see the latest snapshot. cancel
// releases the subscription; the channel is closed by cancel or Close.
func (p *Pool) Subscribe() (<-chan Snapshot, func()) {
	return p.hub.subscribe(p.Snapshot())
}

// Status returns a display view of every lane.
func (p *Pool) Status() []LaneStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]LaneStatus, len(p.lanes))
	for i, l := range p.lanes {
		out[i] = LaneStatus{
			Index:    i,
			AssetID:  l.Asset().ID,
			Playing:  l.IsPlaying(),
			Position: l.Position(),
			Frames:   l.Asset().Frames(),
			Gain:     l.Gain(),
			Peak:     l.Peak(),
		}
	}

	return out
}

// Levels returns the most recent output peak of every lane.
func (p *Pool) Levels() []float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]float64, len(p.lanes))
	for i, l := range p.lanes {
		out[i] = l.Peak()
	}

	return out
}

// Spectrum returns lane i's recent output spectrum in dB. It returns nil
// when analysis is disabled.
func (p *Pool) Spectrum(i int) ([]float64, error) {
	p.mu.Lock()
	l, err := p.laneLocked(i)
	p.mu.Unlock()

	if err != nil {
		return nil, err
	}

	return l.Spectrum()
}

// Close stops and releases every lane. Subscriber channels are closed.
// Close is idempotent.
func (p *Pool) Close() error {
	p.mu.Lock()

	if p.closed {
		p.mu.Unlock()
		return nil
	}

	err := p.teardownLocked()
	p.assets = nil
	p.generation = uuid.New()
	p.refreshLocked()
	p.closed = true
	close(p.done)
	p.mu.Unlock()

	p.wg.Wait()
	p.hub.close()

	return err
}

// refreshLocked recomputes the snapshot from live lane state and publishes
// it.
func (p *Pool) refreshLocked() {
	playing := make([]bool, len(p.lanes))
	for i, l := range p.lanes {
		playing[i] = l.IsPlaying()
	}

	p.snapshot = Snapshot{Generation: p.generation, Playing: playing, UseSpeaker: p.useSpeaker}
	p.hub.publish(p.snapshot)
}

// notifyFinish runs on a render goroutine and must not block.
func (p *Pool) notifyFinish(index int) {
	select {
	case p.finished <- index:
	default:
	}
}

func (p *Pool) watch() {
	defer p.wg.Done()

	for {
		select {
		case <-p.done:
			return
		case i := <-p.finished:
			p.mu.Lock()
			if !p.closed {
				p.refreshLocked()
			}
			p.mu.Unlock()

			p.opts.logger.Printf("engine: lane %d finished", i)
		}
	}
}
