//go:build tinygo

package core

import "runtime/interrupt"

// criticalSection masks interrupts for its duration.
// Single core: with interrupts off no handler can run between Lock and Unlock.
type criticalSection struct {
	state interrupt.State
}

func (c *criticalSection) Lock() {
	state := interrupt.Disable()
	c.state = state
}

func (c *criticalSection) Unlock() {
	interrupt.Restore(c.state)
}
