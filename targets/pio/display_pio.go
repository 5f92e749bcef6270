//go:build rp2040

package pio

// PIO display backend using tinygo-org/pio.
// Bus and enables sit on ten consecutive pins starting at base:
//
//	Bits 0-3: BCD digit (decoder inputs A..D)
//	Bits 4-9: digit enables, seconds-low first
//
// The state machine holds every word on the pins for one dwell, so the
// multiplexer hands it words without sleeping.

import (
	"errors"
	"machine"
	"time"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"

	"stopwatch/core"
)

const (
	displayPins   = 4 + core.NumDigits
	holdDelay     = 31                // out pins, 10 [31]
	cyclesPerWord = 1 + 1 + holdDelay // pull + out + delay
	displayOrigin = 0
)

var (
	errNoStateMachine = errors.New("pio: state machine in use")
	errDwellRange     = errors.New("pio: dwell out of range for clock divider")
)

// buildDisplayProgram creates the display PIO program using AssemblerV0
func buildDisplayProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Pull(false, true).Encode(),                                     // 0: pull block
		asm.Out(rp2pio.OutDestPins, displayPins).Delay(holdDelay).Encode(), // 1: out pins, 10 [31]
		// .wrap
	}
}

// clockDivider returns the integer divider that makes one word last dwell
func clockDivider(sysHz uint32, dwell time.Duration) (uint16, error) {
	div := uint64(sysHz) * uint64(dwell/time.Microsecond) / 1000000 / cyclesPerWord
	if div == 0 || div > 0xFFFF {
		return 0, errDwellRange
	}
	return uint16(div), nil
}

// displayWord packs one digit into a pin word
func displayWord(position uint8, value uint8, activeLow bool) uint32 {
	enables := uint32(1) << position
	if activeLow {
		enables = ^enables & (1<<core.NumDigits - 1)
	}
	return uint32(value&0x0F) | enables<<4
}

// PIODisplay implements core.DisplayDriver on a PIO state machine
type PIODisplay struct {
	pio       *rp2pio.PIO
	sm        rp2pio.StateMachine
	base      machine.Pin
	dwell     time.Duration
	activeLow bool
	offset    uint8
}

// NewPIODisplay creates a PIO display
// pioNum: 0 for PIO0, 1 for PIO1
// smNum: 0-3 for state machine number
func NewPIODisplay(pioNum, smNum uint8, base machine.Pin, dwell time.Duration, activeLow bool) *PIODisplay {
	var pioHW *rp2pio.PIO
	if pioNum == 0 {
		pioHW = rp2pio.PIO0
	} else {
		pioHW = rp2pio.PIO1
	}

	return &PIODisplay{
		pio:       pioHW,
		sm:        pioHW.StateMachine(smNum),
		base:      base,
		dwell:     dwell,
		activeLow: activeLow,
	}
}

// ConfigureDisplay loads the program, drives the power-on pattern
// (bus 0, every enable asserted) and starts the state machine.
func (d *PIODisplay) ConfigureDisplay() error {
	div, err := clockDivider(machine.CPUFrequency(), d.dwell)
	if err != nil {
		return err
	}

	if !d.sm.TryClaim() {
		return errNoStateMachine
	}

	program := buildDisplayProgram()
	offset, err := d.pio.AddProgram(program, displayOrigin)
	if err != nil {
		return err
	}
	d.offset = offset

	for i := machine.Pin(0); i < displayPins; i++ {
		(d.base + i).Configure(machine.PinConfig{Mode: d.pio.PinMode()})
	}

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetOutPins(d.base, displayPins)
	// Shift right, explicit PULL
	cfg.SetOutShift(true, false, 32)
	cfg.SetWrap(offset+uint8(len(program))-1, offset)
	cfg.SetClkDivIntFrac(div, 0)

	d.sm.Init(offset, cfg)

	// Pin directions only stick after Init
	d.sm.SetPindirsConsecutive(d.base, displayPins, true)

	initial := uint32(0)
	if !d.activeLow {
		initial = (1<<core.NumDigits - 1) << 4
	}
	for i := uint8(0); i < displayPins; i++ {
		d.sm.SetPinsConsecutive(d.base+machine.Pin(i), 1, initial&(1<<i) != 0)
	}

	d.sm.SetEnabled(true)
	return nil
}

// ShowDigit queues one digit. It blocks while the TX FIFO is full, which
// is what paces the multiplexer.
func (d *PIODisplay) ShowDigit(position uint8, value uint8) error {
	if position >= core.NumDigits {
		return core.ErrDigitRange
	}

	for d.sm.IsTxFIFOFull() {
	}
	d.sm.TxPut(displayWord(position, value, d.activeLow))
	return nil
}
