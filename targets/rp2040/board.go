//go:build rp2040

package main

import (
	"machine"

	"stopwatch/config"
	"stopwatch/core"
	"stopwatch/targets/pio"
)

// displayBackend selects the display at build time:
//
//	tinygo flash -target=pico -ldflags="-X main.displayBackend=pio" ./targets/rp2040
var displayBackend = config.DisplayGPIO

// loadBoard returns the RP2040 board with the selected display backend
func loadBoard() (*config.Board, error) {
	board := config.DefaultRP2040Board()
	board.Display = displayBackend
	return board, board.Validate()
}

// newDisplay builds the display driver the board asks for
func newDisplay(board *config.Board, gpio core.GPIODriver) core.DisplayDriver {
	switch board.Display {
	case config.DisplayPIO:
		return pio.NewPIODisplay(0, 0, machine.Pin(board.BusPins[0]), board.Dwell(), board.EnableActiveLow)
	case config.DisplayMAX7219:
		return NewMAX7219Display(machine.SPI0, board.MAX7219)
	default:
		return core.NewGPIODisplay(gpio, board.DisplayPins())
	}
}
