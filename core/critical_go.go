//go:build !tinygo

package core

import "sync"

// criticalSection serializes access to shared state on regular Go, where
// interrupt handlers are modelled as goroutines.
type criticalSection struct {
	mu sync.Mutex
}

func (c *criticalSection) Lock() {
	c.mu.Lock()
}

func (c *criticalSection) Unlock() {
	c.mu.Unlock()
}
