// Package effects provides the per-lane audio processors: a resonant
// low-pass filter, a feedback delay with a toned wet path, a decimating
// soft-clip distortion and a gain stage.
//
// Processors are mono and single-threaded. Setters validate their input and
// leave the previous value untouched on error. Lock-free publication of
// parameter changes from a control goroutine is handled one level up, in
// dsp/effectchain.
package effects
