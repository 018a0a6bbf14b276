// Package design provides the RBJ low-pass designer used by lane filters.
//
// Functions in this package produce biquad coefficients consumable by
// dsp/filter/biquad for runtime processing.
package design
