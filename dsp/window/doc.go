// Package window generates the analysis windows used ahead of the lane
// spectrum FFT.
package window
