//go:build !tinygo

package core

import "sync"

// interruptState stands in for the saved interrupt mask on regular Go
type interruptState uintptr

// schedulerMu plays the role of the interrupt mask around the timer list.
// Unlike the hardware mask it does not nest.
var schedulerMu sync.Mutex

// disableInterrupts enters the scheduler critical section
func disableInterrupts() interruptState {
	schedulerMu.Lock()
	return 0
}

// restoreInterrupts leaves the scheduler critical section
func restoreInterrupts(state interruptState) {
	schedulerMu.Unlock()
}
