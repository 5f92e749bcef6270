package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// EventRecord captures one handled event for later logging
type EventRecord struct {
	Seq   uint32      // Running event number
	Event Event       // What happened
	Time  ElapsedTime // Counter value after the event
	Clock uint32      // System clock at event
}

const (
	EventRingSize = 32 // Keep the last 32 events between drains
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	// Event ring buffer, written from interrupt handlers, drained by the main loop
	eventRing    [EventRingSize]EventRecord
	eventCS      criticalSection
	eventSeq     uint32
	eventDrained uint32

	// Async debug output channel
	debugChan chan string
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// InitAsyncDebug starts the async debug output goroutine
// Call this from main() after SetDebugWriter
func InitAsyncDebug() {
	debugChan = make(chan string, 16)
	go debugOutputWorker()
}

// debugOutputWorker runs in background, drains debug channel
func debugOutputWorker() {
	for msg := range debugChan {
		if debugPrintln != nil {
			debugPrintln(msg)
		}
	}
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// DebugAsync queues a debug message for async output (non-blocking)
// Falls back to DebugPrintln when the async worker is not running.
// Never call from interrupt context.
func DebugAsync(msg string) {
	if !debugEnabled {
		return
	}
	if debugChan == nil {
		DebugPrintln(msg)
		return
	}
	select {
	case debugChan <- msg:
	default:
		// Channel full, drop message
	}
}

// RecordEvent appends an event to the ring buffer.
// Safe to call from interrupt handlers: no allocation, no output.
func RecordEvent(e Event, t ElapsedTime) {
	eventCS.Lock()
	eventRing[eventSeq%EventRingSize] = EventRecord{
		Seq:   eventSeq,
		Event: e,
		Time:  t,
		Clock: GetTime(),
	}
	eventSeq++
	eventCS.Unlock()
}

// DrainEvents passes every event recorded since the last drain to fn, oldest
// first, and returns how many were overwritten before they could be drained.
func DrainEvents(fn func(EventRecord)) (dropped uint32) {
	var pending [EventRingSize]EventRecord

	eventCS.Lock()
	start := eventDrained
	if eventSeq-start > EventRingSize {
		dropped = eventSeq - start - EventRingSize
		start = eventSeq - EventRingSize
	}
	n := eventSeq - start
	for i := uint32(0); i < n; i++ {
		pending[i] = eventRing[(start+i)%EventRingSize]
	}
	eventDrained = eventSeq
	eventCS.Unlock()

	for i := uint32(0); i < n; i++ {
		fn(pending[i])
	}
	return dropped
}

// ClearEventRing clears the event buffer
func ClearEventRing() {
	eventCS.Lock()
	for i := range eventRing {
		eventRing[i] = EventRecord{}
	}
	eventSeq = 0
	eventDrained = 0
	eventCS.Unlock()
}

// FormatEvent renders a record as a single log line. The trailing crc
// covers everything before " crc=".
func FormatEvent(r EventRecord) string {
	line := "[STOPWATCH] " + r.Event.String() +
		" t=" + r.Time.String() +
		" clock=" + utoa(r.Clock) +
		" seq=" + utoa(r.Seq)
	return line + " crc=" + hex4(CRC16([]byte(line)))
}

// LogPendingEvents writes every undrained event to the debug output
func LogPendingEvents() {
	dropped := DrainEvents(func(r EventRecord) {
		DebugPrintln(FormatEvent(r))
	})
	if dropped > 0 {
		DebugPrintln("[STOPWATCH] dropped " + utoa(dropped) + " events")
	}
}
