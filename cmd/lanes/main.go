// Command lanes plays several audio loops side by side, each through its
// own effect chain, with a terminal front-end and optional MIDI control.
//
// Usage:
//
//	lanes [flags]
//
// Examples:
//
//	lanes
//	lanes -config ./lanes.json -midi launchpad
//	lanes -dry-run 2s
//	lanes -headless -no-effects
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-lanes/asset"
	"github.com/cwbudde/algo-lanes/engine"
	"github.com/cwbudde/algo-lanes/internal/config"
	"github.com/cwbudde/algo-lanes/internal/midictl"
	"github.com/cwbudde/algo-lanes/internal/tui"
	"github.com/cwbudde/algo-lanes/output"
	"github.com/cwbudde/algo-lanes/output/memory"
	"github.com/cwbudde/algo-lanes/output/otoout"
)

type flags struct {
	configPath  string
	assetDir    string
	midiPort    string
	speaker     bool
	noEffects   bool
	headless    bool
	dryRun      time.Duration
	writeConfig bool
}

func main() {
	var f flags

	defaultPath, _ := config.DefaultPath()

	flag.StringVar(&f.configPath, "config", defaultPath, "JSON config file")
	flag.StringVar(&f.assetDir, "assets", "", "asset directory (overrides config)")
	flag.StringVar(&f.midiPort, "midi", "", "MIDI input name to listen on (overrides config)")
	flag.BoolVar(&f.speaker, "speaker", false, "start on the speaker route")
	flag.BoolVar(&f.noEffects, "no-effects", false, "build lanes without effect nodes")
	flag.BoolVar(&f.headless, "headless", false, "play all lanes without the terminal UI")
	flag.DurationVar(&f.dryRun, "dry-run", 0, "render this long without an audio device and print levels")
	flag.BoolVar(&f.writeConfig, "write-config", false, "write the effective config to -config and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: lanes [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Plays audio loops on independent lanes with per-lane effects.\n")
		fmt.Fprintf(os.Stderr, "Settings come from the config file, then LANES_* variables, then flags.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(f); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(f flags) error {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}

	applyFlags(&cfg, f)

	if f.writeConfig {
		return cfg.Save(f.configPath)
	}

	interactive := !f.headless && f.dryRun == 0 &&
		(isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()))

	logger := log.New(os.Stderr, "", log.LstdFlags)
	if interactive {
		logger.SetOutput(io.Discard)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	router, renderer, closeOutput, err := openOutput(cfg, f.dryRun > 0, logger)
	if err != nil {
		return err
	}
	defer closeOutput()

	lib := asset.NewLibrary(os.DirFS(cfg.AssetDir),
		asset.WithResources(cfg.Assets...),
		asset.WithSampleRate(renderer.Format().SampleRate))

	opts := []engine.Option{
		engine.WithBlockSize(cfg.BlockSize),
		engine.WithLoops(cfg.Loops),
		engine.WithAnalyzerSize(cfg.AnalyzerSize),
		engine.WithLogger(logger),
	}
	if cfg.Classic {
		opts = append(opts, engine.WithPreset(engine.ClassicChain))
	}

	pool, err := engine.New(router, renderer, lib, opts...)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pool.Configure(ctx, cfg.UseSpeaker); err != nil {
		logger.Printf("lanes: continuing on the current route: %v", err)
	}

	if err := pool.BuildLanes(ctx, cfg.IDs(), cfg.Effects); err != nil {
		return err
	}

	if cfg.MIDIPort != "" {
		stopMIDI, err := listenMIDI(pool, cfg.MIDIPort, logger)
		if err != nil {
			logger.Printf("lanes: midi disabled: %v", err)
		} else {
			defer stopMIDI()
		}
	}

	switch {
	case f.dryRun > 0:
		return dryRun(pool, renderer.(*memory.Renderer), f.dryRun, os.Stdout)
	case interactive:
		return runTUI(ctx, pool, cfg)
	default:
		return runHeadless(ctx, pool, logger)
	}
}

func applyFlags(cfg *config.Config, f flags) {
	if f.assetDir != "" {
		cfg.AssetDir = f.assetDir
	}
	if f.midiPort != "" {
		cfg.MIDIPort = f.midiPort
	}
	if f.speaker {
		cfg.UseSpeaker = true
	}
	if f.noEffects {
		cfg.Effects = false
	}
}

// openOutput returns the device session, or an in-memory renderer for dry
// runs.
func openOutput(cfg config.Config, dry bool, logger *log.Logger) (output.Router, output.Renderer, func(), error) {
	if dry {
		r := memory.NewRenderer(output.Format{SampleRate: float64(cfg.SampleRate), Channels: cfg.Channels})
		return memory.NewRouter(), r, func() {}, nil
	}

	s, err := otoout.Open(
		otoout.WithSampleRate(cfg.SampleRate),
		otoout.WithChannels(cfg.Channels),
		otoout.WithBufferSize(time.Duration(cfg.BufferMillis)*time.Millisecond),
		otoout.WithLogger(logger),
	)
	if err != nil {
		return nil, nil, nil, err
	}

	return s, s, func() { _ = s.Close() }, nil
}

func listenMIDI(pool *engine.Pool, port string, logger *log.Logger) (func(), error) {
	in, err := midictl.FindInPort(port)
	if err != nil {
		return nil, err
	}

	return midictl.New(pool, midictl.DefaultMapping(), logger).Listen(in)
}

func runTUI(ctx context.Context, pool *engine.Pool, cfg config.Config) error {
	updates, cancel := pool.Subscribe()
	defer cancel()

	p := tea.NewProgram(tui.NewModel(pool, cfg.Titles(), updates), tea.WithAltScreen(), tea.WithContext(ctx))

	final, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}

	if m, ok := final.(tui.Model); ok && m.Message() != "" {
		fmt.Fprintf(os.Stderr, "warning: %s\n", m.Message())
	}

	return err
}

// runHeadless plays every lane and logs snapshot changes until ctx ends.
func runHeadless(ctx context.Context, pool *engine.Pool, logger *log.Logger) error {
	updates, cancel := pool.Subscribe()
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case s, ok := <-updates:
				if !ok {
					return nil
				}
				logger.Printf("lanes: playing %v", s.Playing)
			}
		}
	})

	g.Go(func() error {
		if err := pool.PlayAll(); err != nil {
			logger.Printf("lanes: %v", err)
		}

		<-ctx.Done()

		return pool.StopAll(false)
	})

	return g.Wait()
}

// dryRun renders d of audio through r in 10 ms steps and prints per-lane
// levels.
func dryRun(pool *engine.Pool, r *memory.Renderer, d time.Duration, w io.Writer) error {
	if err := pool.PlayAll(); err != nil {
		fmt.Fprintf(w, "play all: %v\n", err)
	}

	format := r.Format()
	step := int(format.SampleRate / 100)
	total := int(d.Seconds() * format.SampleRate)

	for done := 0; done < total; done += step {
		if _, err := r.Render(min(step, total-done)); err != nil {
			return err
		}
	}

	for _, st := range pool.Status() {
		fmt.Fprintf(w, "lane %d %-8s playing=%-5t position=%d/%d peak=%.3f\n",
			st.Index, st.AssetID, st.Playing, st.Position, st.Frames, st.Peak)
	}

	return nil
}
