// Package sim provides simulated hardware for running the stopwatch on a
// desktop machine.
package sim

import (
	"errors"
	"sync"

	"stopwatch/core"
)

var (
	ErrNotOutput = errors.New("sim: pin is not an output")
	ErrNotInput  = errors.New("sim: pin is not an input")
)

type mode uint8

const (
	modeUnset mode = iota
	modeOutput
	modeInput
	modeInputPullUp
)

type interruptLine struct {
	edge    core.Edge
	handler func(core.GPIOPin)
}

// GPIO is an in-memory GPIODriver. Outputs are written by firmware code,
// inputs are driven from outside with Drive or Press.
type GPIO struct {
	mu         sync.Mutex
	levels     map[core.GPIOPin]bool
	modes      map[core.GPIOPin]mode
	interrupts map[core.GPIOPin]interruptLine
	observers  []func(core.GPIOPin, bool)
}

// NewGPIO creates a simulated port with every pin unconfigured and low
func NewGPIO() *GPIO {
	return &GPIO{
		levels:     make(map[core.GPIOPin]bool),
		modes:      make(map[core.GPIOPin]mode),
		interrupts: make(map[core.GPIOPin]interruptLine),
	}
}

// Observe registers fn to be called after every output write
func (g *GPIO) Observe(fn func(pin core.GPIOPin, level bool)) {
	g.mu.Lock()
	g.observers = append(g.observers, fn)
	g.mu.Unlock()
}

func (g *GPIO) ConfigureOutput(pin core.GPIOPin) error {
	g.mu.Lock()
	g.modes[pin] = modeOutput
	g.mu.Unlock()
	return nil
}

func (g *GPIO) ConfigureInput(pin core.GPIOPin) error {
	g.mu.Lock()
	g.modes[pin] = modeInput
	g.mu.Unlock()
	return nil
}

// ConfigureInputPullUp makes the pin an input that idles high
func (g *GPIO) ConfigureInputPullUp(pin core.GPIOPin) error {
	g.mu.Lock()
	g.modes[pin] = modeInputPullUp
	g.levels[pin] = true
	g.mu.Unlock()
	return nil
}

func (g *GPIO) SetPin(pin core.GPIOPin, value bool) error {
	g.mu.Lock()
	if g.modes[pin] != modeOutput {
		g.mu.Unlock()
		return ErrNotOutput
	}
	g.levels[pin] = value
	observers := g.observers
	g.mu.Unlock()

	for _, fn := range observers {
		fn(pin, value)
	}
	return nil
}

func (g *GPIO) GetPin(pin core.GPIOPin) (bool, error) {
	return g.Level(pin), nil
}

func (g *GPIO) SetInterrupt(pin core.GPIOPin, edge core.Edge, handler func(core.GPIOPin)) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if handler == nil {
		delete(g.interrupts, pin)
		return nil
	}
	g.interrupts[pin] = interruptLine{edge: edge, handler: handler}
	return nil
}

// Level returns the current level of any pin
func (g *GPIO) Level(pin core.GPIOPin) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.levels[pin]
}

// Drive sets an input pin from outside and raises the interrupt if the
// transition matches the configured edge.
func (g *GPIO) Drive(pin core.GPIOPin, level bool) error {
	g.mu.Lock()
	m := g.modes[pin]
	if m != modeInput && m != modeInputPullUp {
		g.mu.Unlock()
		return ErrNotInput
	}
	prev := g.levels[pin]
	g.levels[pin] = level
	line, ok := g.interrupts[pin]
	g.mu.Unlock()

	if !ok || prev == level {
		return nil
	}
	if (level && line.edge == core.EdgeRising) || (!level && line.edge == core.EdgeFalling) {
		line.handler(pin)
	}
	return nil
}

// Press moves an input away from its idle level and back, like a push
// button. Pulled-up lines idle high, others idle low.
func (g *GPIO) Press(pin core.GPIOPin) error {
	g.mu.Lock()
	idle := g.modes[pin] == modeInputPullUp
	g.mu.Unlock()

	if err := g.Drive(pin, !idle); err != nil {
		return err
	}
	return g.Drive(pin, idle)
}
