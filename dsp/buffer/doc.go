// Package buffer provides planar multi-channel sample blocks for render
// paths, plus conversion to and from the interleaved float32 little-endian
// layout audio devices consume.
package buffer
