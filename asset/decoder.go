package asset

import (
	"errors"
	"io"
)

var (
	// ErrResourceNotFound is returned when an identifier resolves to no file.
	ErrResourceNotFound = errors.New("asset: resource not found")

	// ErrDecodeFailed is returned when a file exists but cannot be decoded.
	ErrDecodeFailed = errors.New("asset: decode failed")
)

// Decoder turns an encoded stream into PCM. Implementations read r to the
// end and block until decoding is complete.
type Decoder interface {
	Decode(r io.Reader) (*PCM, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(r io.Reader) (*PCM, error)

// Decode calls f(r).
func (f DecoderFunc) Decode(r io.Reader) (*PCM, error) {
	return f(r)
}

// builtinDecoders maps lower-case file extensions to decoders. Optional
// codecs add themselves from build-tagged files.
var builtinDecoders = map[string]Decoder{
	".wav": WAVDecoder{},
	".ogg": OggDecoder{},
}
