package core

// TimerDriver is the abstract compare-match timer that drives the time base.
// Platform-specific implementations handle actual hardware control.
type TimerDriver interface {
	// ConfigureCompare programs a periodic compare-match.
	// The counter runs at clock/prescaler and calls handler every compare counts.
	// The counting clock stays disconnected until SetClockGate(true).
	ConfigureCompare(prescaler uint32, compare uint32, handler func()) error

	// SetClockGate connects (true) or disconnects (false) the counting clock.
	// Disconnecting keeps the accumulated count and the compare value.
	SetClockGate(enabled bool)
}

// Global singleton used by core code.
var timerDriver TimerDriver

// SetTimerDriver is called by target-specific code to register its driver.
func SetTimerDriver(d TimerDriver) {
	timerDriver = d
}

// GetTimerDriver returns the registered driver, or nil
func GetTimerDriver() TimerDriver {
	return timerDriver
}

// MustTimer returns the configured driver or panics if missing.
func MustTimer() TimerDriver {
	if timerDriver == nil {
		panic("timer driver not configured")
	}
	return timerDriver
}
