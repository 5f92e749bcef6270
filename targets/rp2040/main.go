//go:build rp2040

package main

import (
	"machine"
	"time"

	"stopwatch/core"
)

// displayErrors counts display loop failures and panics
var displayErrors uint32

func main() {
	// Disable watchdog on boot to clear any previous state
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	InitDebugUART()

	board, err := loadBoard()
	if err != nil {
		DebugPrintln("[BOARD] " + err.Error())
		fatal()
	}
	core.SetDebugEnabled(debugEnabled && board.Debug)

	// Initialize clock
	InitClock()

	gpioDriver := NewRPGPIODriver()
	core.SetGPIODriver(gpioDriver)

	timerDriver := NewRPAlarmTimer(board.ClockHz)
	core.SetTimerDriver(timerDriver)

	sw := core.New(board.Options(), gpioDriver, timerDriver, newDisplay(board, gpioDriver))
	if err := sw.Start(); err != nil {
		DebugPrintln("[STOPWATCH] start failed: " + err.Error())
		fatal()
	}

	// The display loop owns the main goroutine; ticks and buttons arrive
	// from interrupts.
	for {
		func() {
			defer func() {
				if r := recover(); r != nil {
					displayErrors++
				}
			}()

			if err := sw.Run(nil); err != nil {
				displayErrors++
				DebugPrintln("[STOPWATCH] display: " + err.Error())
				time.Sleep(100 * time.Millisecond)
			}
		}()
	}
}

// fatal flashes the LED rapidly forever
func fatal() {
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		led.High()
		time.Sleep(100 * time.Millisecond)
		led.Low()
		time.Sleep(100 * time.Millisecond)
	}
}
