package core

import "sync/atomic"

// TimerFreq is the system clock rate. Both the RP2040 timer and the reference
// AVR board run their counting clock at 1MHz.
const (
	TimerFreq = 1000000
)

var (
	systemTicks uint32
	bootTime    uint32        // System ticks at TimerInit
	timeSource  func() uint32 // Free-running hardware counter, if the target has one
)

// SetTimeSource makes GetTime read a hardware counter running at TimerFreq.
// Pass nil to go back to the software clock.
func SetTimeSource(fn func() uint32) {
	timeSource = fn
}

// GetTime returns the current system time in timer ticks
func GetTime() uint32 {
	if timeSource != nil {
		return timeSource()
	}
	return atomic.LoadUint32(&systemTicks)
}

// SetTime sets the current system time (for testing/hardware integration)
func SetTime(ticks uint32) {
	atomic.StoreUint32(&systemTicks, ticks)
}

// AdvanceTime moves the system time forward by ticks and returns the new time
func AdvanceTime(ticks uint32) uint32 {
	return atomic.AddUint32(&systemTicks, ticks)
}

// GetUptime returns ticks elapsed since TimerInit
func GetUptime() uint32 {
	return GetTime() - bootTime
}

// TimerFromUS converts microseconds to timer ticks
func TimerFromUS(us uint32) uint32 {
	return uint32(uint64(us) * TimerFreq / 1000000)
}

// TimerToUS converts timer ticks to microseconds
func TimerToUS(ticks uint32) uint32 {
	return uint32(uint64(ticks) * 1000000 / TimerFreq)
}

// TimerInit records the boot time for uptime calculation
func TimerInit() {
	bootTime = GetTime()
}

// ProcessTimers runs every software timer that is due at the current time
func ProcessTimers() {
	currentTime = GetTime()
	TimerDispatch()
}
