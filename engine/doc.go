// Package engine manages a fixed-size pool of playback lanes.
//
// A Pool owns the lanes built from one set of assets, applies output routing
// through an output.Router, and publishes an immutable Snapshot of every
// lane's transport state after each mutating call. All Pool methods are safe
// for concurrent use by several control surfaces; the render goroutines
// driving the lanes never take the pool lock.
package engine
