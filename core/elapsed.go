package core

// ElapsedTime is the stopwatch reading.
// Seconds and Minutes stay in [0,60). Hours has no upper bound and wraps
// with the underlying integer type.
type ElapsedTime struct {
	Seconds uint8
	Minutes uint8
	Hours   uint16
}

// String formats the reading as HH:MM:SS
func (t ElapsedTime) String() string {
	return pad2(int(t.Hours)) + ":" + pad2(int(t.Minutes)) + ":" + pad2(int(t.Seconds))
}

// IsZero reports whether all three fields are zero
func (t ElapsedTime) IsZero() bool {
	return t.Seconds == 0 && t.Minutes == 0 && t.Hours == 0
}

// Advance returns the reading one second later.
//
// The minute check runs even when seconds did not roll over, and clears
// seconds a second time when minutes overflow. Under sequential ticking
// seconds is already zero at that point.
func Advance(t ElapsedTime) ElapsedTime {
	t.Seconds++

	if t.Seconds == 60 {
		t.Seconds = 0
		t.Minutes++
	}

	if t.Minutes == 60 {
		t.Seconds = 0
		t.Minutes = 0
		t.Hours++
	}

	return t
}

// Counter owns the shared elapsed time.
// The tick and reset handlers are the only writers, the display multiplexer
// is the only reader. All three operations run inside a critical section so
// a reader never observes a half-applied rollover.
type Counter struct {
	cs   criticalSection
	time ElapsedTime
}

// NewCounter returns a counter at 00:00:00
func NewCounter() *Counter {
	return &Counter{}
}

// OnTick advances the counter by one second.
// Called from the time base compare-match handler.
func (c *Counter) OnTick() ElapsedTime {
	c.cs.Lock()
	c.time = Advance(c.time)
	t := c.time
	c.cs.Unlock()
	return t
}

// Reset zeroes all fields
func (c *Counter) Reset() {
	c.cs.Lock()
	c.time = ElapsedTime{}
	c.cs.Unlock()
}

// Snapshot returns a consistent copy of the current reading
func (c *Counter) Snapshot() ElapsedTime {
	c.cs.Lock()
	t := c.time
	c.cs.Unlock()
	return t
}
