package core

import "testing"

func TestScheduleTimerOrder(t *testing.T) {
	resetTimers()

	var fired []int
	mk := func(id int, wake uint32) *Timer {
		return &Timer{WakeTime: wake, Handler: func(*Timer) uint8 {
			fired = append(fired, id)
			return SF_DONE
		}}
	}

	ScheduleTimer(mk(3, 300))
	ScheduleTimer(mk(1, 100))
	ScheduleTimer(mk(2, 200))
	ScheduleTimer(mk(4, 200))

	SetTime(250)
	ProcessTimers()
	if len(fired) != 3 || fired[0] != 1 || fired[1] != 2 || fired[2] != 4 {
		t.Fatalf("Expected timers 1,2,4 in order, got %v", fired)
	}

	SetTime(300)
	ProcessTimers()
	if len(fired) != 4 || fired[3] != 3 {
		t.Errorf("Expected timer 3 last, got %v", fired)
	}
	if timerList != nil {
		t.Error("Expected empty timer list")
	}
}

func TestRescheduleCatchesUp(t *testing.T) {
	resetTimers()
	SetTime(0)

	count := 0
	timer := &Timer{WakeTime: 10, Handler: func(t *Timer) uint8 {
		count++
		t.WakeTime += 10
		return SF_RESCHEDULE
	}}
	ScheduleTimer(timer)

	// A late dispatch runs every missed period
	SetTime(55)
	ProcessTimers()
	if count != 5 {
		t.Errorf("Expected 5 runs, got %d", count)
	}
	if timer.WakeTime != 60 {
		t.Errorf("Expected next wake at 60, got %d", timer.WakeTime)
	}
}

func TestRemoveTimer(t *testing.T) {
	resetTimers()

	noop := func(*Timer) uint8 { return SF_DONE }
	a := &Timer{WakeTime: 1, Handler: noop}
	b := &Timer{WakeTime: 2, Handler: noop}
	c := &Timer{WakeTime: 3, Handler: noop}
	ScheduleTimer(a)
	ScheduleTimer(b)
	ScheduleTimer(c)

	if !RemoveTimer(b) {
		t.Error("Expected to remove middle timer")
	}
	if RemoveTimer(b) {
		t.Error("Removing twice must report false")
	}
	if !RemoveTimer(a) {
		t.Error("Expected to remove head timer")
	}
	if timerList != c || c.Next != nil {
		t.Error("Expected only timer c to remain")
	}
}

func TestTimerIsBefore(t *testing.T) {
	if !timerIsBefore(1, 2) || timerIsBefore(2, 1) || timerIsBefore(5, 5) {
		t.Error("Plain comparisons wrong")
	}
	if !timerIsBefore(0xFFFFFFF0, 0x10) {
		t.Error("Expected wrapped time to compare as before")
	}
}

func TestTimerPassed(t *testing.T) {
	tests := []struct {
		deadline, now uint32
		want          bool
	}{
		{100, 99, false},
		{100, 100, true},
		{100, 101, true},
		{0x00000010, 0xFFFFFFF0, false}, // deadline just after the wrap
		{0xFFFFFFF0, 0x00000010, true},  // now just after the wrap
	}
	for _, tt := range tests {
		if got := TimerPassed(tt.deadline, tt.now); got != tt.want {
			t.Errorf("TimerPassed(%#x, %#x) = %v, want %v", tt.deadline, tt.now, got, tt.want)
		}
	}
}

func TestTimerConversions(t *testing.T) {
	if TimerFromUS(5000) != 5000 || TimerToUS(1000000) != 1000000 {
		t.Error("Expected 1MHz system ticks")
	}

	SetTime(1000)
	TimerInit()
	AdvanceTime(250)
	if GetUptime() != 250 {
		t.Errorf("Expected uptime 250, got %d", GetUptime())
	}
}

func TestTimeSource(t *testing.T) {
	SetTimeSource(func() uint32 { return 4242 })
	defer SetTimeSource(nil)

	if GetTime() != 4242 {
		t.Errorf("Expected hardware time 4242, got %d", GetTime())
	}
	SetTimeSource(nil)
	SetTime(7)
	if GetTime() != 7 {
		t.Errorf("Expected software time 7, got %d", GetTime())
	}
}
