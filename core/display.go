package core

import (
	"errors"
	"sync/atomic"
	"time"
)

// DefaultDwell is how long each digit stays lit: six positions give a
// 30ms refresh, about 33Hz.
const DefaultDwell = 5 * time.Millisecond

var ErrDigitRange = errors.New("display: digit position out of range")

// Frame decomposes a reading into the six displayed digits:
// seconds low, seconds high, minutes low, minutes high, hours low, hours high.
func Frame(t ElapsedTime) [NumDigits]uint8 {
	return [NumDigits]uint8{
		t.Seconds % 10,
		t.Seconds / 10,
		t.Minutes % 10,
		t.Minutes / 10,
		uint8(t.Hours % 10),
		uint8(t.Hours / 10),
	}
}

// GPIODisplayPins describes a BCD-decoder display wired to plain GPIO
type GPIODisplayPins struct {
	Bus             [4]GPIOPin         // Decoder inputs A..D, bit 0 first
	Enables         [NumDigits]GPIOPin // One enable per position, position 0 first
	EnableActiveLow bool               // Enables are asserted by driving low
}

// GPIODisplay drives an external 7-segment decoder over a 4-bit bus and
// six digit-enable lines.
type GPIODisplay struct {
	gpio GPIODriver
	pins GPIODisplayPins
}

// NewGPIODisplay creates a display on top of a GPIO driver
func NewGPIODisplay(gpio GPIODriver, pins GPIODisplayPins) *GPIODisplay {
	return &GPIODisplay{gpio: gpio, pins: pins}
}

// ConfigureDisplay sets every line to output, asserts all enables and
// drives zero onto the bus so the panel powers up showing 000000.
func (d *GPIODisplay) ConfigureDisplay() error {
	for _, pin := range d.pins.Bus {
		if err := d.gpio.ConfigureOutput(pin); err != nil {
			return err
		}
		if err := d.gpio.SetPin(pin, false); err != nil {
			return err
		}
	}
	for _, pin := range d.pins.Enables {
		if err := d.gpio.ConfigureOutput(pin); err != nil {
			return err
		}
		if err := d.gpio.SetPin(pin, d.level(true)); err != nil {
			return err
		}
	}
	return nil
}

// ShowDigit implements DisplayDriver.
// Every other enable is released before the target one is asserted, so at
// no point are two digits lit. Then the value goes out on the bus. Only the
// low nibble reaches the decoder.
func (d *GPIODisplay) ShowDigit(position uint8, value uint8) error {
	if position >= NumDigits {
		return ErrDigitRange
	}

	for i, pin := range d.pins.Enables {
		if uint8(i) == position {
			continue
		}
		if err := d.gpio.SetPin(pin, d.level(false)); err != nil {
			return err
		}
	}
	if err := d.gpio.SetPin(d.pins.Enables[position], d.level(true)); err != nil {
		return err
	}

	for bit, pin := range d.pins.Bus {
		if err := d.gpio.SetPin(pin, value&(1<<uint(bit)) != 0); err != nil {
			return err
		}
	}
	return nil
}

func (d *GPIODisplay) level(asserted bool) bool {
	if d.pins.EnableActiveLow {
		return !asserted
	}
	return asserted
}

// Snapshotter provides consistent readings to the renderer
type Snapshotter interface {
	Snapshot() ElapsedTime
}

// Multiplexer time-slices one decoder across the six digit positions.
// It is the only cooperative task: it runs on the main loop and every
// interrupt may preempt it between positions.
type Multiplexer struct {
	source  Snapshotter
	display DisplayDriver
	dwell   time.Duration
	sleep   func(time.Duration)
	frames  uint32
}

// NewMultiplexer creates a multiplexer that holds each digit for dwell.
// A zero dwell leaves the pacing to the display hardware.
func NewMultiplexer(source Snapshotter, display DisplayDriver, dwell time.Duration) *Multiplexer {
	return &Multiplexer{
		source:  source,
		display: display,
		dwell:   dwell,
		sleep:   time.Sleep,
	}
}

// SetSleep replaces the dwell delay function
func (m *Multiplexer) SetSleep(sleep func(time.Duration)) {
	m.sleep = sleep
}

// Dwell returns the per-digit hold time
func (m *Multiplexer) Dwell() time.Duration {
	return m.dwell
}

// Cycle renders one full frame. The counter is read once per frame so the
// six digits always come from the same reading.
func (m *Multiplexer) Cycle() error {
	frame := Frame(m.source.Snapshot())

	for pos, digit := range frame {
		if err := m.display.ShowDigit(uint8(pos), digit); err != nil {
			return err
		}
		if m.dwell > 0 {
			m.sleep(m.dwell)
		}
	}

	atomic.AddUint32(&m.frames, 1)
	return nil
}

// Run renders frames until stop is closed. A nil stop channel runs forever.
func (m *Multiplexer) Run(stop <-chan struct{}) error {
	for {
		select {
		case <-stop:
			return nil
		default:
		}

		if err := m.Cycle(); err != nil {
			return err
		}
	}
}

// Frames returns the number of completed frames
func (m *Multiplexer) Frames() uint32 {
	return atomic.LoadUint32(&m.frames)
}
