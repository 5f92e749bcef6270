//go:build rp2040

package main

import (
	"machine"

	"tinygo.org/x/drivers/max72xx"

	"stopwatch/config"
	"stopwatch/core"
)

// MAX7219 registers
const (
	max7219Digit0      = 0x01
	max7219DecodeMode  = 0x09
	max7219Intensity   = 0x0A
	max7219ScanLimit   = 0x0B
	max7219Shutdown    = 0x0C
	max7219DisplayTest = 0x0F

	// Code B font on digits 0-5
	max7219DecodeDigits = 0x3F
)

// MAX7219Display drives the six digits through a MAX7219 over SPI.
// The chip multiplexes on its own; ShowDigit only sends digits that changed.
type MAX7219Display struct {
	bus       *machine.SPI
	dev       *max72xx.Device
	cfg       config.MAX7219Config
	shown     [core.NumDigits]uint8
	shownMask uint8
}

// NewMAX7219Display creates the display on the given SPI bus
func NewMAX7219Display(bus *machine.SPI, cfg config.MAX7219Config) *MAX7219Display {
	return &MAX7219Display{
		bus: bus,
		dev: max72xx.NewDevice(bus, machine.Pin(cfg.CSPin)),
		cfg: cfg,
	}
}

// ConfigureDisplay sets up SPI and the chip, then shows zeros
func (d *MAX7219Display) ConfigureDisplay() error {
	err := d.bus.Configure(machine.SPIConfig{
		Frequency: 1000000,
		SCK:       machine.Pin(d.cfg.SCKPin),
		SDO:       machine.Pin(d.cfg.SDOPin),
		Mode:      0,
	})
	if err != nil {
		return err
	}
	d.dev.Configure()

	d.dev.WriteCommand(max7219DisplayTest, 0)
	d.dev.WriteCommand(max7219DecodeMode, max7219DecodeDigits)
	d.dev.WriteCommand(max7219ScanLimit, core.NumDigits-1)
	d.dev.WriteCommand(max7219Intensity, d.cfg.Intensity&0x0F)

	d.shownMask = 0
	for i := uint8(0); i < core.NumDigits; i++ {
		if err := d.ShowDigit(i, 0); err != nil {
			return err
		}
	}

	d.dev.WriteCommand(max7219Shutdown, 1)
	return nil
}

// ShowDigit writes the low nibble of value to digit register position
func (d *MAX7219Display) ShowDigit(position uint8, value uint8) error {
	if position >= core.NumDigits {
		return core.ErrDigitRange
	}
	value &= 0x0F

	bit := uint8(1) << position
	if d.shownMask&bit != 0 && d.shown[position] == value {
		return nil
	}
	d.dev.WriteCommand(max7219Digit0+position, value)
	d.shown[position] = value
	d.shownMask |= bit
	return nil
}
