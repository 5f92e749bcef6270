//go:build rp2040

package main

import (
	"device/rp"
	"errors"
	"runtime/interrupt"
	"runtime/volatile"
	"unsafe"

	"stopwatch/core"
)

// RP2040 Timer peripheral memory map
const (
	timerBase     = 0x40054000
	timerTIMERAWL = timerBase + 0x28 // Raw timer low word
	timerALARM3   = timerBase + 0x1C // Alarm 3 match value (writing arms it)
	timerARMED    = timerBase + 0x20 // Armed alarms, write 1 to disarm
	timerINTR     = timerBase + 0x34 // Raw interrupts, write 1 to clear
	timerINTE     = timerBase + 0x38 // Interrupt enable
	timerINTF     = timerBase + 0x3C // Interrupt force

	// Alarm 0 belongs to the TinyGo runtime's sleep
	alarm3Bit = 1 << 3

	// The timer counts microseconds
	hardwareTimerHz = 1000000
)

var (
	timerRAWL   = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))
	alarm3      = (*volatile.Register32)(unsafe.Pointer(uintptr(timerALARM3)))
	timerArmed  = (*volatile.Register32)(unsafe.Pointer(uintptr(timerARMED)))
	timerIntr   = (*volatile.Register32)(unsafe.Pointer(uintptr(timerINTR)))
	timerIntEna = (*volatile.Register32)(unsafe.Pointer(uintptr(timerINTE)))
	timerIntFrc = (*volatile.Register32)(unsafe.Pointer(uintptr(timerINTF)))
)

var errAlarmPeriod = errors.New("rp2040: alarm period out of range")

// GetHardwareTime reads the low 32 bits of the microsecond counter
func GetHardwareTime() uint32 {
	return timerRAWL.Get()
}

// InitClock points the core clock at the hardware counter
func InitClock() {
	core.SetTimeSource(GetHardwareTime)
	core.TimerInit()
}

// RPAlarmTimer implements core.TimerDriver on hardware alarm 3.
// The counter itself never stops, so gating the clock is done by disarming
// the alarm and remembering how far the next match was.
type RPAlarmTimer struct {
	clockHz   uint32
	period    uint32 // Microseconds between matches
	next      uint32 // Armed match time
	remaining uint32 // Time left to the next match while gated
	running   bool
	handler   func()
	irq       interrupt.Interrupt
}

// alarmTimer is the single instance the interrupt handler services
var alarmTimer *RPAlarmTimer

// NewRPAlarmTimer creates the alarm driver. clockHz is the timer clock the
// compare values are computed against.
func NewRPAlarmTimer(clockHz uint32) *RPAlarmTimer {
	t := &RPAlarmTimer{clockHz: clockHz}
	t.irq = interrupt.New(rp.IRQ_TIMER_IRQ_3, alarm3Handler)
	alarmTimer = t
	return t
}

// ConfigureCompare programs the match period. The alarm stays disarmed
// until the clock gate opens.
func (t *RPAlarmTimer) ConfigureCompare(prescaler uint32, compare uint32, handler func()) error {
	if t.clockHz == 0 || prescaler == 0 || compare == 0 {
		return errAlarmPeriod
	}
	period := uint64(compare) * uint64(prescaler) * hardwareTimerHz / uint64(t.clockHz)
	if period == 0 || period > 0x7FFFFFFF {
		return errAlarmPeriod
	}

	state := interrupt.Disable()
	timerArmed.Set(alarm3Bit)
	timerIntr.Set(alarm3Bit)
	t.period = uint32(period)
	t.remaining = t.period
	t.handler = handler
	t.running = false
	interrupt.Restore(state)

	timerIntEna.SetBits(alarm3Bit)
	t.irq.Enable()
	return nil
}

// SetClockGate arms (true) or disarms (false) the alarm
func (t *RPAlarmTimer) SetClockGate(enabled bool) {
	state := interrupt.Disable()
	defer interrupt.Restore(state)

	if enabled == t.running || t.period == 0 {
		return
	}

	now := GetHardwareTime()
	if enabled {
		t.next = now + t.remaining
		t.running = true
		t.arm()
		return
	}

	timerArmed.Set(alarm3Bit)
	t.running = false
	switch {
	case timerIntr.HasBits(alarm3Bit) || timerIntFrc.HasBits(alarm3Bit):
		// The match already happened and its interrupt runs once we restore
		t.remaining = t.period
	case int32(t.next-now) > 0:
		t.remaining = t.next - now
	default:
		t.remaining = 0
	}
}

// arm programs the alarm at t.next. The alarm only matches the low 32 bits
// exactly, so a match time already behind the counter would not fire for
// about 71 minutes: raise the interrupt by hand instead.
// Call with interrupts disabled.
func (t *RPAlarmTimer) arm() {
	alarm3.Set(t.next)
	if timerArmed.HasBits(alarm3Bit) && core.TimerPassed(t.next, GetHardwareTime()) {
		timerArmed.Set(alarm3Bit)
		timerIntFrc.SetBits(alarm3Bit)
	}
}

// Period returns the programmed match period in microseconds
func (t *RPAlarmTimer) Period() uint32 {
	return t.period
}

func alarm3Handler(interrupt.Interrupt) {
	timerIntFrc.ClearBits(alarm3Bit)
	timerIntr.Set(alarm3Bit)

	t := alarmTimer
	if t == nil {
		return
	}
	if t.running {
		t.next += t.period
		t.arm()
	}
	if t.handler != nil {
		t.handler()
	}
}
