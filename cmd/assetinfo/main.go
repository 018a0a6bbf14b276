// Command assetinfo decodes the configured lane assets and prints their
// format, length, peak level and dominant frequency.
//
// Usage:
//
//	assetinfo [flags] [asset-id ...]
//
// Without arguments it prints info for every configured asset.
//
// Examples:
//
//	assetinfo
//	assetinfo -rate 48000 bass drums
//	assetinfo -fft 8192 -assets ./loops
//	assetinfo -list
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/algo-lanes/asset"
	"github.com/cwbudde/algo-lanes/dsp/core"
	"github.com/cwbudde/algo-lanes/dsp/spectrum"
	"github.com/cwbudde/algo-lanes/internal/config"
	"github.com/cwbudde/algo-lanes/stats/level"
)

func main() {
	defaultPath, _ := config.DefaultPath()

	configPath := flag.String("config", defaultPath, "JSON config file")
	assetDir := flag.String("assets", "", "asset directory (overrides config)")
	rate := flag.Float64("rate", 0, "conform assets to this sample rate before analysis (0 keeps the file rate)")
	fftSize := flag.Int("fft", spectrum.DefaultAnalyzerSize, "FFT size for the dominant frequency")
	list := flag.Bool("list", false, "list configured asset ids")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: assetinfo [flags] [asset-id ...]\n\n")
		fmt.Fprintf(os.Stderr, "Decodes lane assets and prints their properties.\n")
		fmt.Fprintf(os.Stderr, "Without arguments, prints info for every configured asset.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  assetinfo bass drums\n")
		fmt.Fprintf(os.Stderr, "  assetinfo -rate 48000 -fft 8192\n")
		fmt.Fprintf(os.Stderr, "  assetinfo -list\n")
	}
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *assetDir != "" {
		cfg.AssetDir = *assetDir
	}

	if *list {
		printList(os.Stdout, cfg)
		return
	}

	ids := flag.Args()
	if len(ids) == 0 {
		ids = cfg.IDs()
	}

	opts := []asset.LibraryOption{asset.WithResources(cfg.Assets...)}
	if *rate > 0 {
		opts = append(opts, asset.WithSampleRate(*rate))
	}

	lib := asset.NewLibrary(os.DirFS(cfg.AssetDir), opts...)

	if failed := printAnalysis(os.Stdout, lib, ids, *fftSize); failed > 0 {
		os.Exit(1)
	}
}

func printList(w io.Writer, cfg config.Config) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tTitle\tPath\n")

	for _, a := range cfg.Assets {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", a.ID, a.Title, a.Path)
	}

	_ = tw.Flush()
}

type analysis struct {
	level      level.Stats
	dominantHz float64
	dominantDB float64
}

// analyze measures pcm's level over all channels and finds the loudest
// spectral bin of its mono mix over the first fftSize frames.
func analyze(pcm *asset.PCM, fftSize int) (analysis, error) {
	res := analysis{level: level.Measure(pcm.Samples, pcm.Channels).Total}

	a, err := spectrum.NewAnalyzer(fftSize, pcm.SampleRate)
	if err != nil {
		return res, err
	}

	mono := make([]float64, min(pcm.Frames(), fftSize))
	a.Write(mono[:core.Downmix(mono, pcm.Samples, pcm.Channels)])

	db, err := a.Spectrum()
	if err != nil {
		return res, err
	}

	res.dominantDB = spectrum.FloorDB
	for k := 1; k < len(db); k++ {
		if db[k] > res.dominantDB {
			res.dominantDB = db[k]
			res.dominantHz = a.BinFrequency(k)
		}
	}

	return res, nil
}

func printAnalysis(w io.Writer, lib *asset.Library, ids []string, fftSize int) int {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tRate [Hz]\tChannels\tFrames\tDuration\tPeak [dBFS]\tRMS [dBFS]\tCrest [dB]\tClipped\tDominant [Hz]\n")
	fmt.Fprintf(tw, "--\t---------\t--------\t------\t--------\t-----------\t----------\t----------\t-------\t-------------\n")

	failed := 0

	for _, id := range ids {
		pcm, err := lib.Load(id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			failed++
			continue
		}

		res, err := analyze(pcm, fftSize)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: %s: %v\n", id, err)
			failed++
			continue
		}

		fmt.Fprintf(tw, "%s\t%.0f\t%d\t%d\t%s\t%.2f\t%.2f\t%.2f\t%d\t%.1f\n",
			id,
			pcm.SampleRate,
			pcm.Channels,
			pcm.Frames(),
			pcm.Duration().Round(1e6),
			res.level.PeakDB(),
			res.level.RMSDB(),
			res.level.CrestDB(),
			res.level.Clipped,
			res.dominantHz,
		)
	}

	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}

	return failed
}
