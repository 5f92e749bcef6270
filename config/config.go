package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"stopwatch/core"
)

// Display backends
const (
	DisplayGPIO    = "gpio"    // BCD decoder on GPIO, software dwell
	DisplayPIO     = "pio"     // BCD decoder on consecutive pins, PIO-timed dwell
	DisplayMAX7219 = "max7219" // MAX7219 in code-B decode mode over SPI
)

// Dwell limits: below the minimum the decoder does not settle, above the
// maximum six positions refresh slower than about 20Hz and flicker.
const (
	MinDwellUS = 100
	MaxDwellUS = 8000
)

var (
	ErrBusPins      = errors.New("config: bus_pins needs exactly 4 pins")
	ErrEnablePins   = errors.New("config: enable_pins needs exactly 6 pins")
	ErrDuplicatePin = errors.New("config: pin used twice")
	ErrDisplay      = errors.New("config: unknown display")
	ErrDwell        = errors.New("config: dwell_us out of range")
	ErrPIOPins      = errors.New("config: pio display needs bus and enable pins on 10 consecutive pins")
	ErrPreset       = errors.New("config: unknown preset")
)

// MAX7219Config holds the SPI wiring of a MAX7219 display
type MAX7219Config struct {
	CSPin     uint32 `json:"cs_pin"`
	SCKPin    uint32 `json:"sck_pin"`
	SDOPin    uint32 `json:"sdo_pin"`
	Intensity uint8  `json:"intensity"` // 0-15
}

// Board describes how a stopwatch is wired
type Board struct {
	Preset          string        `json:"preset"`           // "avr" or "rp2040"
	ClockHz         uint32        `json:"clock_hz"`         // Timer input clock
	Prescaler       uint32        `json:"prescaler"`        // Timer clock divider
	DwellUS         uint32        `json:"dwell_us"`         // Per-digit hold time
	Display         string        `json:"display"`          // gpio, pio or max7219
	BusPins         []uint32      `json:"bus_pins"`         // Decoder inputs A..D
	EnablePins      []uint32      `json:"enable_pins"`      // Digit enables, seconds-low first
	EnableActiveLow bool          `json:"enable_active_low"`
	ResetPin        uint32        `json:"reset_pin"`
	PausePin        uint32        `json:"pause_pin"`
	ResumePin       uint32        `json:"resume_pin"`
	MAX7219         MAX7219Config `json:"max7219"`
	Debug           bool          `json:"debug"`
}

// LoadConfig parses a JSON board description.
// Fields missing from the JSON keep the values of the selected preset.
func LoadConfig(jsonData []byte) (*Board, error) {
	var head struct {
		Preset string `json:"preset"`
	}
	if err := json.Unmarshal(jsonData, &head); err != nil {
		return nil, err
	}

	board, err := Preset(head.Preset)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(jsonData, board); err != nil {
		return nil, err
	}

	applyDefaults(board)

	if err := board.Validate(); err != nil {
		return nil, err
	}
	return board, nil
}

// Preset returns a copy of a named board; an empty name selects rp2040
func Preset(name string) (*Board, error) {
	switch name {
	case "", "rp2040":
		return DefaultRP2040Board(), nil
	case "avr":
		return DefaultAVRBoard(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrPreset, name)
	}
}

// applyDefaults fills in missing configuration values with sensible defaults
func applyDefaults(b *Board) {
	if b.ClockHz == 0 {
		b.ClockHz = core.TimerFreq
	}
	if b.Prescaler == 0 {
		b.Prescaler = 1
	}
	if b.DwellUS == 0 {
		b.DwellUS = uint32(core.DefaultDwell / time.Microsecond)
	}
	if b.Display == "" {
		b.Display = DisplayGPIO
	}
	if b.MAX7219.Intensity > 15 {
		b.MAX7219.Intensity = 15
	}
}

// DefaultAVRBoard is the reference board: 1MHz clock with a /64 prescaler,
// decoder on PC0-PC3, enables on PA5 (seconds low) down to PA0 (hours high),
// reset on PD2, pause on PD3, resume on PB2.
//
// Pins use the AVR port numbering PA0=0, PB0=8, PC0=16, PD0=24.
func DefaultAVRBoard() *Board {
	return &Board{
		Preset:     "avr",
		ClockHz:    1000000,
		Prescaler:  64,
		DwellUS:    5000,
		Display:    DisplayGPIO,
		BusPins:    []uint32{16, 17, 18, 19},
		EnablePins: []uint32{5, 4, 3, 2, 1, 0},
		ResetPin:   26,
		PausePin:   27,
		ResumePin:  10,
	}
}

// DefaultRP2040Board uses the 1MHz RP2040 timer. Bus and enables sit on
// GPIO2-GPIO11 so the same wiring works for the gpio and pio displays.
func DefaultRP2040Board() *Board {
	return &Board{
		Preset:     "rp2040",
		ClockHz:    1000000,
		Prescaler:  1,
		DwellUS:    5000,
		Display:    DisplayGPIO,
		BusPins:    []uint32{2, 3, 4, 5},
		EnablePins: []uint32{6, 7, 8, 9, 10, 11},
		ResetPin:   12,
		PausePin:   13,
		ResumePin:  14,
		Debug:      true,
		MAX7219: MAX7219Config{
			CSPin:     17,
			SCKPin:    18,
			SDOPin:    19,
			Intensity: 8,
		},
	}
}

// Validate checks pin counts, pin conflicts, the display backend and the
// timer settings.
func (b *Board) Validate() error {
	switch b.Display {
	case DisplayGPIO, DisplayPIO, DisplayMAX7219:
	default:
		return fmt.Errorf("%w: %q", ErrDisplay, b.Display)
	}

	if _, err := core.CompareValue(b.ClockHz, b.Prescaler); err != nil {
		return err
	}

	if b.DwellUS < MinDwellUS || b.DwellUS > MaxDwellUS {
		return fmt.Errorf("%w: %d", ErrDwell, b.DwellUS)
	}

	used := make(map[uint32]string)
	claim := func(pin uint32, name string) error {
		if prev, ok := used[pin]; ok {
			return fmt.Errorf("%w: pin %d for %s and %s", ErrDuplicatePin, pin, prev, name)
		}
		used[pin] = name
		return nil
	}

	for _, c := range []struct {
		pin  uint32
		name string
	}{
		{b.ResetPin, "reset"},
		{b.PausePin, "pause"},
		{b.ResumePin, "resume"},
	} {
		if err := claim(c.pin, c.name); err != nil {
			return err
		}
	}

	if b.Display == DisplayMAX7219 {
		if err := claim(b.MAX7219.CSPin, "max7219 cs"); err != nil {
			return err
		}
		if err := claim(b.MAX7219.SCKPin, "max7219 sck"); err != nil {
			return err
		}
		return claim(b.MAX7219.SDOPin, "max7219 sdo")
	}

	if len(b.BusPins) != 4 {
		return ErrBusPins
	}
	if len(b.EnablePins) != core.NumDigits {
		return ErrEnablePins
	}
	for i, pin := range b.BusPins {
		if err := claim(pin, "bus "+string(rune('A'+i))); err != nil {
			return err
		}
	}
	for i, pin := range b.EnablePins {
		if err := claim(pin, fmt.Sprintf("enable %d", i)); err != nil {
			return err
		}
	}

	if b.Display == DisplayPIO {
		base := b.BusPins[0]
		for i, pin := range append(append([]uint32{}, b.BusPins...), b.EnablePins...) {
			if pin != base+uint32(i) {
				return ErrPIOPins
			}
		}
	}
	return nil
}

// Dwell returns the per-digit hold time
func (b *Board) Dwell() time.Duration {
	return time.Duration(b.DwellUS) * time.Microsecond
}

// Options converts the board to stopwatch options.
// The PIO display times its own dwell, so the multiplexer does not sleep.
func (b *Board) Options() core.Options {
	opts := core.Options{
		ClockHz:   b.ClockHz,
		Prescaler: b.Prescaler,
		Dwell:     b.Dwell(),
		Controls: core.ControlLines{
			Reset:  core.GPIOPin(b.ResetPin),
			Pause:  core.GPIOPin(b.PausePin),
			Resume: core.GPIOPin(b.ResumePin),
		},
	}
	if b.Display == DisplayPIO {
		opts.Dwell = 0
	}
	return opts
}

// DisplayPins returns the GPIO display wiring. Call only after Validate.
func (b *Board) DisplayPins() core.GPIODisplayPins {
	var pins core.GPIODisplayPins
	for i := range pins.Bus {
		pins.Bus[i] = core.GPIOPin(b.BusPins[i])
	}
	for i := range pins.Enables {
		pins.Enables[i] = core.GPIOPin(b.EnablePins[i])
	}
	pins.EnableActiveLow = b.EnableActiveLow
	return pins
}
