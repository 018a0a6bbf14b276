// Package output defines the contracts between the lane engine and the
// audio device: a Router that owns the physical route and a Renderer that
// turns each lane's byte stream into a Voice.
//
// Lanes produce interleaved float32 little-endian frames in the Renderer's
// Format.
package output
