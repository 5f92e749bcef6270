package core

import (
	"errors"
	"time"
)

var ErrAlreadyStarted = errors.New("stopwatch: already started")

// Options describes the board-level wiring of a stopwatch
type Options struct {
	ClockHz   uint32        // Timer input clock
	Prescaler uint32        // Timer clock divider
	Dwell     time.Duration // Per-digit hold time, zero when the display paces itself
	Controls  ControlLines  // Button inputs
}

// Stopwatch wires the elapsed-time counter, the time base, the control
// buttons and the display multiplexer together.
type Stopwatch struct {
	opts     Options
	gpio     GPIODriver
	display  DisplayDriver
	counter  *Counter
	timebase *TimeBase
	mux      *Multiplexer
	started  bool
}

// New creates a stopwatch. Nothing touches the hardware until Start.
func New(opts Options, gpio GPIODriver, timer TimerDriver, display DisplayDriver) *Stopwatch {
	s := &Stopwatch{
		opts:    opts,
		gpio:    gpio,
		display: display,
		counter: NewCounter(),
	}
	s.timebase = NewTimeBase(timer, opts.ClockHz, opts.Prescaler, s.onTick)
	s.mux = NewMultiplexer(s.counter, display, opts.Dwell)
	return s
}

// Start brings up the display, the time base and the button interrupts,
// in that order. The stopwatch starts in the running state at 00:00:00.
func (s *Stopwatch) Start() error {
	if s.started {
		return ErrAlreadyStarted
	}

	if err := s.display.ConfigureDisplay(); err != nil {
		return err
	}

	if err := s.timebase.Start(); err != nil {
		return err
	}

	handlers := ControlHandlers{
		Reset:  s.onReset,
		Pause:  s.onPause,
		Resume: s.onResume,
	}
	if err := BindControls(s.gpio, s.opts.Controls, handlers); err != nil {
		// Without buttons the stopwatch cannot be paused, so stop counting
		s.timebase.Pause()
		return err
	}

	s.started = true
	DebugPrintln("[STOPWATCH] started compare=" + utoa(s.timebase.Compare()) +
		" prescaler=" + utoa(s.opts.Prescaler))
	return nil
}

// Handle dispatches an event to the component that owns it.
// A tick while paused is dropped, as a gated clock produces no match.
func (s *Stopwatch) Handle(e Event) {
	switch e {
	case EventTick:
		if s.timebase.State() == Paused {
			return
		}
		s.onTick()
	case EventReset:
		s.onReset()
	case EventPause:
		s.onPause()
	case EventResume:
		s.onResume()
	}
}

func (s *Stopwatch) onTick() {
	t := s.counter.OnTick()
	RecordEvent(EventTick, t)
}

func (s *Stopwatch) onReset() {
	s.counter.Reset()
	RecordEvent(EventReset, ElapsedTime{})
}

func (s *Stopwatch) onPause() {
	s.timebase.Pause()
	RecordEvent(EventPause, s.counter.Snapshot())
}

func (s *Stopwatch) onResume() {
	s.timebase.Resume()
	RecordEvent(EventResume, s.counter.Snapshot())
}

// State returns the current reading and run state
func (s *Stopwatch) State() State {
	return State{
		Time: s.counter.Snapshot(),
		Run:  s.timebase.State(),
	}
}

// Run is the main loop: render a frame, then log what the interrupt handlers
// recorded meanwhile. A nil stop channel runs forever.
func (s *Stopwatch) Run(stop <-chan struct{}) error {
	for {
		select {
		case <-stop:
			return nil
		default:
		}

		if err := s.mux.Cycle(); err != nil {
			return err
		}
		LogPendingEvents()
	}
}

// Counter returns the elapsed-time counter
func (s *Stopwatch) Counter() *Counter {
	return s.counter
}

// TimeBase returns the time base generator
func (s *Stopwatch) TimeBase() *TimeBase {
	return s.timebase
}

// Multiplexer returns the display multiplexer
func (s *Stopwatch) Multiplexer() *Multiplexer {
	return s.mux
}
