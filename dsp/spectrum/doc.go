// Package spectrum provides magnitude helpers over complex FFT bins and a
// streaming Analyzer that turns recently rendered lane audio into a
// magnitude spectrum in dB.
package spectrum
