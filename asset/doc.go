// Package asset loads decoded audio for lanes.
//
// A Library resolves resource identifiers to files in an fs.FS, decodes them
// by extension and conforms them to the output sample rate. Decoding happens
// only at construction time; the resulting PCM is immutable and shared
// read-only with the render path.
package asset
