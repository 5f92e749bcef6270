package core

import (
	"errors"
	"sync/atomic"
	"time"
)

// TickPeriod is the fixed interval between compare-match events
const TickPeriod = time.Second

var (
	ErrZeroClock     = errors.New("timebase: clock frequency is zero")
	ErrZeroPrescaler = errors.New("timebase: prescaler is zero")
	ErrSlowClock     = errors.New("timebase: prescaler leaves no counts per tick")
	ErrNoTickHandler = errors.New("timebase: no tick handler")
)

// CompareValue returns the number of prescaled counts in one TickPeriod.
// For a 1MHz clock and a /64 prescaler every count takes 64us, so a
// compare value of 15625 gives one match per second.
func CompareValue(clockHz, prescaler uint32) (uint32, error) {
	if clockHz == 0 {
		return 0, ErrZeroClock
	}
	if prescaler == 0 {
		return 0, ErrZeroPrescaler
	}
	counts := uint64(clockHz) * uint64(TickPeriod/time.Microsecond) / 1000000 / uint64(prescaler)
	if counts == 0 {
		return 0, ErrSlowClock
	}
	return uint32(counts), nil
}

// TimeBase generates the one-second tick.
// It keeps no time itself: it programs the timer and gates its clock.
type TimeBase struct {
	driver    TimerDriver
	clockHz   uint32
	prescaler uint32
	compare   uint32
	onTick    func()

	// cs keeps the run state and the clock gate in step when buttons nest
	cs      criticalSection
	started uint32
	state   uint32 // RunState
}

// NewTimeBase creates a time base on top of driver.
// onTick runs in interrupt context on every compare-match.
func NewTimeBase(driver TimerDriver, clockHz, prescaler uint32, onTick func()) *TimeBase {
	return &TimeBase{
		driver:    driver,
		clockHz:   clockHz,
		prescaler: prescaler,
		onTick:    onTick,
	}
}

// Start programs the compare-match and connects the counting clock.
func (tb *TimeBase) Start() error {
	if tb.onTick == nil {
		return ErrNoTickHandler
	}

	compare, err := CompareValue(tb.clockHz, tb.prescaler)
	if err != nil {
		return err
	}

	if err := tb.driver.ConfigureCompare(tb.prescaler, compare, tb.onTick); err != nil {
		return err
	}
	tb.compare = compare

	tb.cs.Lock()
	atomic.StoreUint32(&tb.state, uint32(Running))
	atomic.StoreUint32(&tb.started, 1)
	tb.driver.SetClockGate(true)
	tb.cs.Unlock()
	return nil
}

// Pause disconnects the counting clock. Pausing twice is a no-op.
func (tb *TimeBase) Pause() {
	tb.setRunState(Paused)
}

// Resume reconnects the counting clock. Resuming a running time base is a no-op.
func (tb *TimeBase) Resume() {
	tb.setRunState(Running)
}

// setRunState changes the run state and the clock gate as one step
func (tb *TimeBase) setRunState(r RunState) {
	tb.cs.Lock()
	defer tb.cs.Unlock()

	if atomic.LoadUint32(&tb.started) == 0 {
		return
	}
	if atomic.SwapUint32(&tb.state, uint32(r)) == uint32(r) {
		return
	}
	tb.driver.SetClockGate(r == Running)
}

// State reports whether the clock is connected
func (tb *TimeBase) State() RunState {
	return RunState(atomic.LoadUint32(&tb.state))
}

// Compare returns the programmed compare value, zero before Start
func (tb *TimeBase) Compare() uint32 {
	return tb.compare
}
