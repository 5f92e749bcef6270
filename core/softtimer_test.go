package core

import (
	"errors"
	"testing"
)

// runFor advances the system clock in steps, dispatching timers after each one
func runFor(us, step uint32) {
	for elapsed := uint32(0); elapsed < us; elapsed += step {
		AdvanceTime(TimerFromUS(step))
		ProcessTimers()
	}
}

func setupSoftTimer(t *testing.T, start uint32) (*SoftTimer, *int) {
	t.Helper()
	resetTimers()
	SetTime(start)

	ticks := 0
	st := NewSoftTimer(1000000)
	if err := st.ConfigureCompare(64, 15625, func() { ticks++ }); err != nil {
		t.Fatalf("ConfigureCompare failed: %v", err)
	}
	return st, &ticks
}

func TestSoftTimerPeriod(t *testing.T) {
	st, ticks := setupSoftTimer(t, 0)
	if st.Period() != 1000000 {
		t.Fatalf("Expected period of 1000000 ticks, got %d", st.Period())
	}

	// Configured but not gated: nothing runs
	runFor(3000000, 100000)
	if *ticks != 0 {
		t.Fatalf("Expected no ticks before the clock is connected, got %d", *ticks)
	}

	st.SetClockGate(true)
	runFor(900000, 100000)
	if *ticks != 0 {
		t.Errorf("Expected no tick before one second, got %d", *ticks)
	}
	runFor(100000, 100000)
	if *ticks != 1 {
		t.Errorf("Expected 1 tick at one second, got %d", *ticks)
	}
	runFor(59000000, 500000)
	if *ticks != 60 {
		t.Errorf("Expected 60 ticks after a minute, got %d", *ticks)
	}
}

func TestSoftTimerPausePreservesPhase(t *testing.T) {
	st, ticks := setupSoftTimer(t, 0)
	st.SetClockGate(true)

	runFor(2300000, 100000)
	if *ticks != 2 {
		t.Fatalf("Expected 2 ticks, got %d", *ticks)
	}

	st.SetClockGate(false)
	runFor(10000000, 100000)
	if *ticks != 2 {
		t.Fatalf("Expected ticks to hold at 2 while gated, got %d", *ticks)
	}

	// 0.7s of the interrupted period remain
	st.SetClockGate(true)
	runFor(600000, 100000)
	if *ticks != 2 {
		t.Errorf("Expected no tick 0.6s after reconnect, got %d", *ticks)
	}
	runFor(100000, 100000)
	if *ticks != 3 {
		t.Errorf("Expected tick 0.7s after reconnect, got %d", *ticks)
	}
}

func TestSoftTimerGateIdempotent(t *testing.T) {
	st, ticks := setupSoftTimer(t, 0)
	st.SetClockGate(true)
	st.SetClockGate(true)
	runFor(1000000, 250000)
	if *ticks != 1 {
		t.Errorf("Double connect must not schedule twice, got %d ticks", *ticks)
	}

	st.SetClockGate(false)
	st.SetClockGate(false)
	st.SetClockGate(true)
	runFor(1000000, 250000)
	if *ticks != 2 {
		t.Errorf("Expected 2 ticks, got %d", *ticks)
	}
}

func TestSoftTimerDueMatchSurvivesPause(t *testing.T) {
	st, ticks := setupSoftTimer(t, 0)
	st.SetClockGate(true)

	// The match is due but ProcessTimers has not run yet
	AdvanceTime(1000000)
	st.SetClockGate(false)
	if *ticks != 0 {
		t.Fatalf("Unexpected tick %d", *ticks)
	}

	st.SetClockGate(true)
	ProcessTimers()
	if *ticks != 1 {
		t.Errorf("Expected the pending match to fire on reconnect, got %d ticks", *ticks)
	}
}

func TestSoftTimerWraparound(t *testing.T) {
	st, ticks := setupSoftTimer(t, 0xFFFFFFFF-500000)
	st.SetClockGate(true)

	runFor(900000, 100000)
	if *ticks != 0 {
		t.Errorf("Expected no tick across the wrap yet, got %d", *ticks)
	}
	runFor(100000, 100000)
	if *ticks != 1 {
		t.Errorf("Expected 1 tick after wrap, got %d", *ticks)
	}
}

func TestSoftTimerConfigureErrors(t *testing.T) {
	resetTimers()
	if err := NewSoftTimer(0).ConfigureCompare(64, 15625, func() {}); !errors.Is(err, ErrZeroClock) {
		t.Errorf("Expected ErrZeroClock, got %v", err)
	}
	if err := NewSoftTimer(1000000).ConfigureCompare(0, 15625, func() {}); !errors.Is(err, ErrZeroPrescaler) {
		t.Errorf("Expected ErrZeroPrescaler, got %v", err)
	}
	if err := NewSoftTimer(1000000).ConfigureCompare(64, 0, func() {}); !errors.Is(err, ErrZeroCompare) {
		t.Errorf("Expected ErrZeroCompare, got %v", err)
	}

	// Gating an unconfigured timer does nothing
	st := NewSoftTimer(1000000)
	st.SetClockGate(true)
	if timerList != nil {
		t.Error("Unconfigured timer was scheduled")
	}
}

func TestSoftTimerDrivesTimeBase(t *testing.T) {
	resetTimers()
	SetTime(0)

	counter := NewCounter()
	tb := NewTimeBase(NewSoftTimer(1000000), 1000000, 64, func() { counter.OnTick() })
	if err := tb.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	runFor(125000000, 250000)
	if got := counter.Snapshot(); got != (ElapsedTime{Minutes: 2, Seconds: 5}) {
		t.Errorf("Expected 00:02:05, got %s", got)
	}

	tb.Pause()
	runFor(30000000, 250000)
	if got := counter.Snapshot(); got != (ElapsedTime{Minutes: 2, Seconds: 5}) {
		t.Errorf("Paused counter moved to %s", got)
	}

	tb.Resume()
	runFor(1000000, 250000)
	if got := counter.Snapshot(); got != (ElapsedTime{Minutes: 2, Seconds: 6}) {
		t.Errorf("Expected 00:02:06 one second after resume, got %s", got)
	}
}
