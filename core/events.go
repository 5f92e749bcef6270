package core

// Event is an asynchronous stimulus delivered to the stopwatch
type Event uint8

const (
	EventTick   Event = 1 // Time base compare-match
	EventReset  Event = 2 // Reset button, falling edge
	EventPause  Event = 3 // Pause button, rising edge
	EventResume Event = 4 // Resume button, falling edge
)

// String returns the event name used in debug output
func (e Event) String() string {
	switch e {
	case EventTick:
		return "TICK"
	case EventReset:
		return "RESET"
	case EventPause:
		return "PAUSE"
	case EventResume:
		return "RESUME"
	default:
		return "UNKNOWN"
	}
}

// RunState tells whether the time base clock is connected
type RunState uint8

const (
	Running RunState = 0
	Paused  RunState = 1
)

func (r RunState) String() string {
	if r == Paused {
		return "PAUSED"
	}
	return "RUNNING"
}

// State is the complete observable stopwatch state
type State struct {
	Time ElapsedTime
	Run  RunState
}

// Apply is the pure transition function for all stopwatch events.
// Hardware drivers only decide when an event happens; what it does lives here.
func Apply(s State, e Event) State {
	switch e {
	case EventTick:
		// A gated clock produces no compare-match
		if s.Run == Running {
			s.Time = Advance(s.Time)
		}
	case EventReset:
		s.Time = ElapsedTime{}
	case EventPause:
		s.Run = Paused
	case EventResume:
		s.Run = Running
	}
	return s
}
