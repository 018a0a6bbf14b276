package asset

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
)

// Resource names one loadable asset.
type Resource struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Path  string `json:"path"`
}

// Library resolves identifiers to decoded PCM.
type Library struct {
	fsys       fs.FS
	resources  map[string]Resource
	order      []string
	decoders   map[string]Decoder
	sampleRate float64
}

// LibraryOption configures a Library.
type LibraryOption func(*Library)

// WithDecoder registers d for files ending in ext (".wav", ".flac", ...),
// replacing any built-in decoder for it.
func WithDecoder(ext string, d Decoder) LibraryOption {
	return func(l *Library) {
		l.decoders[strings.ToLower(ext)] = d
	}
}

// WithSampleRate conforms every loaded asset to rate.
func WithSampleRate(rate float64) LibraryOption {
	return func(l *Library) {
		if rate > 0 {
			l.sampleRate = rate
		}
	}
}

// WithResources registers resources up front.
func WithResources(resources ...Resource) LibraryOption {
	return func(l *Library) {
		for _, r := range resources {
			_ = l.Add(r)
		}
	}
}

// NewLibrary creates a library reading from fsys.
func NewLibrary(fsys fs.FS, opts ...LibraryOption) *Library {
	l := &Library{
		fsys:      fsys,
		resources: make(map[string]Resource),
		decoders:  make(map[string]Decoder, len(builtinDecoders)),
	}

	for ext, d := range builtinDecoders {
		l.decoders[ext] = d
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Add registers r. An empty Path defaults to the first file named ID with a
// decodable extension.
func (l *Library) Add(r Resource) error {
	if r.ID == "" {
		return errors.New("asset: resource id must not be empty")
	}

	if r.Title == "" {
		r.Title = r.ID
	}

	if _, exists := l.resources[r.ID]; !exists {
		l.order = append(l.order, r.ID)
	}

	l.resources[r.ID] = r

	return nil
}

// Resources returns registered resources in registration order.
func (l *Library) Resources() []Resource {
	out := make([]Resource, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.resources[id])
	}

	return out
}

// Resource returns the registered resource for id.
func (l *Library) Resource(id string) (Resource, bool) {
	r, ok := l.resources[id]
	return r, ok
}

// Extensions returns the decodable file extensions, sorted.
func (l *Library) Extensions() []string {
	exts := make([]string, 0, len(l.decoders))
	for ext := range l.decoders {
		exts = append(exts, ext)
	}

	slices.Sort(exts)

	return exts
}

// Load decodes the asset for id.
func (l *Library) Load(id string) (*PCM, error) {
	name, err := l.resolve(id)
	if err != nil {
		return nil, err
	}

	dec, ok := l.decoders[strings.ToLower(path.Ext(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %s: no decoder for %q", ErrDecodeFailed, id, path.Ext(name))
	}

	f, err := l.fsys.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s (%s)", ErrResourceNotFound, id, name)
		}

		return nil, fmt.Errorf("%w: %s: %w", ErrDecodeFailed, id, err)
	}
	defer f.Close()

	pcm, err := dec.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecodeFailed, id, err)
	}

	pcm.ID = id

	if pcm.Frames() == 0 {
		return nil, fmt.Errorf("%w: %s: no audio frames", ErrDecodeFailed, id)
	}

	if l.sampleRate > 0 {
		pcm, err = pcm.Conform(l.sampleRate)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecodeFailed, err)
		}
	}

	return pcm, nil
}

// LoadAll loads ids in order and stops at the first failure.
func (l *Library) LoadAll(ids ...string) ([]*PCM, error) {
	out := make([]*PCM, 0, len(ids))
	for _, id := range ids {
		pcm, err := l.Load(id)
		if err != nil {
			return nil, err
		}

		out = append(out, pcm)
	}

	return out, nil
}

func (l *Library) resolve(id string) (string, error) {
	if l.fsys == nil {
		return "", fmt.Errorf("%w: %s: no file system", ErrResourceNotFound, id)
	}

	if r, ok := l.resources[id]; ok && r.Path != "" {
		return r.Path, nil
	}

	if _, ok := l.decoders[strings.ToLower(path.Ext(id))]; ok {
		if _, err := fs.Stat(l.fsys, id); err == nil {
			return id, nil
		}
	}

	for _, ext := range l.Extensions() {
		name := id + ext
		if _, err := fs.Stat(l.fsys, name); err == nil {
			return name, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrResourceNotFound, id)
}
