package sim

import (
	"sync"

	"stopwatch/core"
)

// Panel stands in for the decoder and the six 7-segment digits.
// A digit position keeps the last value it showed while it was the only
// enabled position, the way the eye keeps a multiplexed digit.
type Panel struct {
	gpio *GPIO
	pins core.GPIODisplayPins

	mu      sync.Mutex
	digits  [core.NumDigits]uint8
	strobes [core.NumDigits]uint32
}

// NewPanel attaches a panel to the display lines of a simulated port
func NewPanel(gpio *GPIO, pins core.GPIODisplayPins) *Panel {
	p := &Panel{gpio: gpio, pins: pins}
	gpio.Observe(p.update)
	return p
}

func (p *Panel) update(core.GPIOPin, bool) {
	lit := -1
	for i, pin := range p.pins.Enables {
		if p.gpio.Level(pin) != p.pins.EnableActiveLow {
			if lit >= 0 {
				return // More than one digit enabled: nothing readable
			}
			lit = i
		}
	}
	if lit < 0 {
		return
	}

	var value uint8
	for bit, pin := range p.pins.Bus {
		if p.gpio.Level(pin) {
			value |= 1 << uint(bit)
		}
	}

	p.mu.Lock()
	p.digits[lit] = value
	p.strobes[lit]++
	p.mu.Unlock()
}

// Digits returns the latched digit of every position, seconds-low first
func (p *Panel) Digits() [core.NumDigits]uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.digits
}

// Strobes returns how many writes each position has seen while lit
func (p *Panel) Strobes() [core.NumDigits]uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.strobes
}

// Reading formats the panel as HH:MM:SS
func (p *Panel) Reading() string {
	d := p.Digits()
	buf := []byte{
		'0' + d[5], '0' + d[4], ':',
		'0' + d[3], '0' + d[2], ':',
		'0' + d[1], '0' + d[0],
	}
	return string(buf)
}
