// Package interp provides the interpolation primitives used by the delay
// line when a lane's delay time is not an integer number of frames.
//
//   - [Linear2]:  2-point linear interpolation
//   - [Hermite4]: 4-point cubic Hermite (default)
package interp
