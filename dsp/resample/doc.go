// Package resample converts sample rates with a rational polyphase FIR.
//
// Decoded assets are conformed to the output device rate once, at load time,
// with Interleaved. The streaming Resampler is exposed for callers that need
// block-wise conversion.
package resample
