// Package clock schedules callbacks on a single turn queue.
//
// All the callbacks scheduled with a Clock run one at a time, never in parallel.
// A cancelled handle's callback never runs, even if the timer already fired and
// the callback is waiting on the queue.
package clock

import "time"

// Handle identifies a scheduled callback. The zero Handle is never returned by a Clock.
type Handle uint64

// Clock schedules callbacks on a single turn queue.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// After runs fn once, after d.
	After(d time.Duration, fn func()) Handle
	// Every runs fn every d until cancelled.
	Every(d time.Duration, fn func()) Handle
	// Cancel cancels a scheduled callback. Cancelling an unknown or already fired handle is a no-op.
	Cancel(h Handle)
	// Go runs work outside the turn queue, and when finished, runs done on the turn queue.
	Go(work func(), done func())
}
