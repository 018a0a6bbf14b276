// Package config loads the lanes CLI configuration from a JSON file with
// LANES_* environment overrides on top.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-lanes/asset"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LANES_"

// Config is the complete CLI configuration.
type Config struct {
	// AssetDir is the directory resolved against asset paths.
	AssetDir string           `json:"assetDir"`
	Assets   []asset.Resource `json:"assets"`

	Effects bool `json:"effects"`
	Classic bool `json:"classic"`
	// Loops is the extra pass count per lane; -1 loops until stopped.
	Loops int `json:"loops"`

	UseSpeaker   bool `json:"useSpeaker"`
	SampleRate   int  `json:"sampleRate"`
	Channels     int  `json:"channels"`
	BufferMillis int  `json:"bufferMillis"`
	BlockSize    int  `json:"blockSize"`
	AnalyzerSize int  `json:"analyzerSize"`

	// MIDIPort selects the first MIDI input whose name contains it.
	// Empty disables MIDI control.
	MIDIPort string `json:"midiPort"`
}

// Default returns the built-in configuration with the four demo loops.
func Default() Config {
	return Config{
		AssetDir: "assets",
		Assets: []asset.Resource{
			{ID: "bass", Title: "Bass", Path: "NW_DDNP_115_kit_just_bass_G#min.wav"},
			{ID: "drums", Title: "Drums", Path: "OS_VLV_115_Drum_Loop_3__Full_.wav"},
			{ID: "hope", Title: "Hope Stack", Path: "OS_UTP2_115_Cmin_Hope_Stack.wav"},
			{ID: "silk", Title: "Silk Stack", Path: "OS_VLV_115_Amin_Silk_Stack__Original_.wav"},
		},
		Effects:      true,
		Classic:      true,
		Loops:        -1,
		SampleRate:   48000,
		Channels:     2,
		BufferMillis: 40,
		BlockSize:    512,
		AnalyzerSize: 2048,
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, "algo-lanes", "config.json"), nil
}

// Load reads path over Default and applies environment overrides. A missing
// file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("config: %w", err)
		default:
			if err := json.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}

	return cfg, cfg.Validate()
}

// ApplyEnv overrides fields from LANES_* variables looked up with lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"ASSET_DIR": &c.AssetDir,
		"MIDI_PORT": &c.MIDIPort,
	}
	for name, dst := range strs {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"EFFECTS":     &c.Effects,
		"CLASSIC":     &c.Classic,
		"USE_SPEAKER": &c.UseSpeaker,
	}
	for name, dst := range bools {
		if v, ok := lookup(EnvPrefix + name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("config: %s%s: %w", EnvPrefix, name, err)
			}
			*dst = b
		}
	}

	ints := map[string]*int{
		"LOOPS":         &c.Loops,
		"SAMPLE_RATE":   &c.SampleRate,
		"CHANNELS":      &c.Channels,
		"BUFFER_MS":     &c.BufferMillis,
		"BLOCK_SIZE":    &c.BlockSize,
		"ANALYZER_SIZE": &c.AnalyzerSize,
	}
	for name, dst := range ints {
		if v, ok := lookup(EnvPrefix + name); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("config: %s%s: %w", EnvPrefix, name, err)
			}
			*dst = n
		}
	}

	if v, ok := lookup(EnvPrefix + "ASSETS"); ok {
		c.Assets = parseAssets(v)
	}

	return nil
}

// parseAssets reads "id=path,id=path". An entry without '=' uses the id as
// its path.
func parseAssets(v string) []asset.Resource {
	var out []asset.Resource
	for _, entry := range strings.Split(v, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		id, path, ok := strings.Cut(entry, "=")
		if !ok {
			path = id
			id = strings.TrimSuffix(filepath.Base(id), filepath.Ext(id))
		}

		out = append(out, asset.Resource{ID: strings.TrimSpace(id), Path: strings.TrimSpace(path)})
	}

	return out
}

// Validate checks ranges the engine would otherwise reject late.
func (c Config) Validate() error {
	var errs []error

	if len(c.Assets) == 0 {
		errs = append(errs, errors.New("no assets configured"))
	}

	seen := make(map[string]bool, len(c.Assets))
	for _, a := range c.Assets {
		if a.ID == "" {
			errs = append(errs, errors.New("asset with empty id"))
		}
		if seen[a.ID] {
			errs = append(errs, fmt.Errorf("duplicate asset id %q", a.ID))
		}
		seen[a.ID] = true
	}

	if c.Loops < -1 {
		errs = append(errs, fmt.Errorf("loops must be >= -1: %d", c.Loops))
	}
	if c.SampleRate < 8000 || c.SampleRate > 192000 {
		errs = append(errs, fmt.Errorf("sample rate out of range: %d", c.SampleRate))
	}
	if c.Channels != 1 && c.Channels != 2 {
		errs = append(errs, fmt.Errorf("channels must be 1 or 2: %d", c.Channels))
	}
	if c.BufferMillis <= 0 {
		errs = append(errs, fmt.Errorf("buffer must be > 0 ms: %d", c.BufferMillis))
	}
	if c.BlockSize <= 0 {
		errs = append(errs, fmt.Errorf("block size must be > 0: %d", c.BlockSize))
	}
	if c.AnalyzerSize < 0 {
		errs = append(errs, fmt.Errorf("analyzer size must be >= 0: %d", c.AnalyzerSize))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	return nil
}

// IDs returns the asset ids in order.
func (c Config) IDs() []string {
	ids := make([]string, len(c.Assets))
	for i, a := range c.Assets {
		ids[i] = a.ID
	}

	return ids
}

// Titles maps asset ids to display titles, falling back to the id.
func (c Config) Titles() map[string]string {
	out := make(map[string]string, len(c.Assets))
	for _, a := range c.Assets {
		out[a.ID] = a.Title
		if a.Title == "" {
			out[a.ID] = a.ID
		}
	}

	return out
}

// Save writes c to path as indented JSON, creating parent directories.
func (c Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	return os.WriteFile(path, append(data, '\n'), 0o644)
}
