package core

import "errors"

var ErrZeroCompare = errors.New("softtimer: compare value is zero")

// SoftTimer is a TimerDriver built on the software scheduler.
// It counts system ticks instead of a hardware counter, so it runs on any
// target that calls ProcessTimers, including the host simulator.
//
// SoftTimer is not safe for concurrent use. Gate it from the same goroutine
// (or interrupt level) that calls ProcessTimers.
type SoftTimer struct {
	clockHz   uint32
	timer     Timer
	period    uint32 // system ticks per compare-match
	remaining uint32 // ticks left in the current period while gated off
	handler   func()
	gated     bool
}

// NewSoftTimer creates a timer whose input clock runs at clockHz
func NewSoftTimer(clockHz uint32) *SoftTimer {
	st := &SoftTimer{clockHz: clockHz}
	st.timer.Handler = st.fire
	return st
}

// ConfigureCompare implements TimerDriver.
// The count restarts from zero and the clock is left disconnected.
func (st *SoftTimer) ConfigureCompare(prescaler uint32, compare uint32, handler func()) error {
	if st.clockHz == 0 {
		return ErrZeroClock
	}
	if prescaler == 0 {
		return ErrZeroPrescaler
	}
	if compare == 0 {
		return ErrZeroCompare
	}

	if st.gated {
		RemoveTimer(&st.timer)
		st.gated = false
	}

	period := uint64(compare) * uint64(prescaler) * TimerFreq / uint64(st.clockHz)
	if period == 0 {
		period = 1
	}
	st.period = uint32(period)
	st.remaining = st.period
	st.handler = handler
	return nil
}

// SetClockGate implements TimerDriver.
// The part of the period already counted is kept across a disconnect.
func (st *SoftTimer) SetClockGate(enabled bool) {
	if enabled == st.gated || st.period == 0 {
		return
	}

	now := GetTime()
	if enabled {
		st.timer.WakeTime = now + st.remaining
		ScheduleTimer(&st.timer)
		st.gated = true
		return
	}

	RemoveTimer(&st.timer)
	st.gated = false
	if timerIsBefore(now, st.timer.WakeTime) {
		st.remaining = st.timer.WakeTime - now
	} else {
		// Match already due but not yet dispatched; fire it on reconnect
		st.remaining = 0
	}
}

// Period returns the number of system ticks between compare-matches
func (st *SoftTimer) Period() uint32 {
	return st.period
}

func (st *SoftTimer) fire(t *Timer) uint8 {
	if st.handler != nil {
		st.handler()
	}
	t.WakeTime += st.period
	return SF_RESCHEDULE
}
