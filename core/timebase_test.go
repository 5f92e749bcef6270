package core

import (
	"errors"
	"sync"
	"testing"
)

// mockTimerDriver records how the time base programs the hardware
type mockTimerDriver struct {
	prescaler  uint32
	compare    uint32
	handler    func()
	gate       bool
	gateCalls  []bool
	configured int
	err        error
}

func (m *mockTimerDriver) ConfigureCompare(prescaler uint32, compare uint32, handler func()) error {
	if m.err != nil {
		return m.err
	}
	m.prescaler = prescaler
	m.compare = compare
	m.handler = handler
	m.gate = false
	m.configured++
	return nil
}

func (m *mockTimerDriver) SetClockGate(enabled bool) {
	m.gate = enabled
	m.gateCalls = append(m.gateCalls, enabled)
}

// match simulates a compare-match; nothing happens while the clock is gated off
func (m *mockTimerDriver) match() {
	if m.gate && m.handler != nil {
		m.handler()
	}
}

func TestCompareValue(t *testing.T) {
	tests := []struct {
		clockHz   uint32
		prescaler uint32
		want      uint32
		err       error
	}{
		{1000000, 64, 15625, nil},
		{1000000, 1, 1000000, nil},
		{8000000, 256, 31250, nil},
		{16000000, 1024, 15625, nil},
		{0, 64, 0, ErrZeroClock},
		{1000000, 0, 0, ErrZeroPrescaler},
		{100, 1024, 0, ErrSlowClock},
	}

	for _, tt := range tests {
		got, err := CompareValue(tt.clockHz, tt.prescaler)
		if !errors.Is(err, tt.err) {
			t.Errorf("CompareValue(%d, %d) error = %v, want %v", tt.clockHz, tt.prescaler, err, tt.err)
			continue
		}
		if got != tt.want {
			t.Errorf("CompareValue(%d, %d) = %d, want %d", tt.clockHz, tt.prescaler, got, tt.want)
		}
	}
}

func TestTimeBaseStart(t *testing.T) {
	driver := &mockTimerDriver{}
	ticks := 0
	tb := NewTimeBase(driver, 1000000, 64, func() { ticks++ })

	if err := tb.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if driver.compare != 15625 || driver.prescaler != 64 {
		t.Errorf("Expected compare 15625 /64, got %d /%d", driver.compare, driver.prescaler)
	}
	if tb.Compare() != 15625 {
		t.Errorf("Compare() = %d, want 15625", tb.Compare())
	}
	if !driver.gate {
		t.Error("Expected clock connected after Start")
	}
	if tb.State() != Running {
		t.Errorf("Expected RUNNING, got %s", tb.State())
	}

	driver.match()
	driver.match()
	if ticks != 2 {
		t.Errorf("Expected 2 ticks, got %d", ticks)
	}
}

func TestTimeBaseStartErrors(t *testing.T) {
	driver := &mockTimerDriver{}
	if err := NewTimeBase(driver, 1000000, 64, nil).Start(); !errors.Is(err, ErrNoTickHandler) {
		t.Errorf("Expected ErrNoTickHandler, got %v", err)
	}
	if err := NewTimeBase(driver, 1000000, 0, func() {}).Start(); !errors.Is(err, ErrZeroPrescaler) {
		t.Errorf("Expected ErrZeroPrescaler, got %v", err)
	}

	hwErr := errors.New("timer busy")
	driver.err = hwErr
	if err := NewTimeBase(driver, 1000000, 64, func() {}).Start(); !errors.Is(err, hwErr) {
		t.Errorf("Expected driver error, got %v", err)
	}
}

func TestTimeBasePauseResume(t *testing.T) {
	driver := &mockTimerDriver{}
	ticks := 0
	tb := NewTimeBase(driver, 1000000, 64, func() { ticks++ })

	// Before Start the buttons have nothing to gate
	tb.Pause()
	tb.Resume()
	if len(driver.gateCalls) != 0 {
		t.Fatalf("Expected no gate changes before Start, got %v", driver.gateCalls)
	}

	if err := tb.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	tb.Pause()
	if tb.State() != Paused || driver.gate {
		t.Fatalf("Expected PAUSED with clock disconnected")
	}
	for i := 0; i < 10; i++ {
		driver.match()
	}
	if ticks != 0 {
		t.Errorf("Expected no ticks while paused, got %d", ticks)
	}

	// Repeated pause is a no-op
	tb.Pause()

	tb.Resume()
	tb.Resume()
	if tb.State() != Running || !driver.gate {
		t.Fatalf("Expected RUNNING with clock connected")
	}
	driver.match()
	if ticks != 1 {
		t.Errorf("Expected 1 tick after resume, got %d", ticks)
	}

	want := []bool{true, false, true}
	if len(driver.gateCalls) != len(want) {
		t.Fatalf("Expected gate calls %v, got %v", want, driver.gateCalls)
	}
	for i := range want {
		if driver.gateCalls[i] != want[i] {
			t.Errorf("Gate call %d: expected %v, got %v", i, want[i], driver.gateCalls[i])
		}
	}
	if driver.configured != 1 {
		t.Errorf("Pause/Resume must not reprogram the compare value, configured %d times", driver.configured)
	}
}

func TestTimeBaseNestedButtons(t *testing.T) {
	driver := &mockTimerDriver{}
	tb := NewTimeBase(driver, 1000000, 64, func() {})
	if err := tb.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(pause bool) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				if pause {
					tb.Pause()
				} else {
					tb.Resume()
				}
			}
		}(g%2 == 0)
	}
	wg.Wait()

	if (tb.State() == Running) != driver.gate {
		t.Errorf("State %s does not match clock gate %v", tb.State(), driver.gate)
	}
	for i := 1; i < len(driver.gateCalls); i++ {
		if driver.gateCalls[i] == driver.gateCalls[i-1] {
			t.Fatalf("Gate call %d repeats %v", i, driver.gateCalls[i])
		}
	}
}

func TestTimerDriverRegistry(t *testing.T) {
	SetTimerDriver(nil)
	defer SetTimerDriver(nil)

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected MustTimer to panic without a driver")
			}
		}()
		MustTimer()
	}()

	driver := &mockTimerDriver{}
	SetTimerDriver(driver)
	if GetTimerDriver() != driver || MustTimer() != driver {
		t.Error("Registered timer driver not returned")
	}
}
