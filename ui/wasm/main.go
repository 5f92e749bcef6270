//go:build js && wasm
// +build js,wasm

package main

import (
	"syscall/js"

	"stopwatch/core"
	"stopwatch/host/monitor"
)

func main() {
	// Export functions to JavaScript
	js.Global().Set("stopwatchWasm", js.ValueOf(map[string]interface{}{
		"parseEvent": js.FuncOf(parseEventWrapper),
		"crc16":      js.FuncOf(crc16Wrapper),
		"advance":    js.FuncOf(advanceWrapper),
		"frame":      js.FuncOf(frameWrapper),
		"apply":      js.FuncOf(applyWrapper),
	}))

	// Keep the program running
	select {}
}

// parseEventWrapper decodes one debug UART line
// Args: line (string)
// Returns: {event, time, clock, seq} or {error}
func parseEventWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("missing line argument")
	}

	rec, err := monitor.ParseEvent(args[0].String())
	if err != nil {
		return makeError(err.Error())
	}

	result := timeResult(rec.Time)
	result["event"] = rec.Event.String()
	result["time"] = rec.Time.String()
	result["clock"] = int(rec.Clock)
	result["seq"] = int(rec.Seq)
	return js.ValueOf(result)
}

// crc16Wrapper returns the event line checksum of a string
// Args: text (string)
func crc16Wrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("missing text argument")
	}
	return js.ValueOf(int(core.CRC16([]byte(args[0].String()))))
}

// advanceWrapper applies one tick
// Args: hours, minutes, seconds (numbers)
// Returns: {hours, minutes, seconds}
func advanceWrapper(this js.Value, args []js.Value) interface{} {
	t, ok := argTime(args)
	if !ok {
		return makeError("expected hours, minutes, seconds")
	}
	return js.ValueOf(timeResult(core.Advance(t)))
}

// frameWrapper returns the six display digits, seconds-low first
// Args: hours, minutes, seconds (numbers)
func frameWrapper(this js.Value, args []js.Value) interface{} {
	t, ok := argTime(args)
	if !ok {
		return makeError("expected hours, minutes, seconds")
	}
	frame := core.Frame(t)
	digits := make([]interface{}, len(frame))
	for i, d := range frame {
		digits[i] = int(d)
	}
	return js.ValueOf(digits)
}

// applyWrapper runs the stopwatch transition function
// Args: hours, minutes, seconds, paused (bool), event ("TICK", "RESET", "PAUSE", "RESUME")
// Returns: {hours, minutes, seconds, paused}
func applyWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 5 {
		return makeError("expected hours, minutes, seconds, paused, event")
	}
	t, _ := argTime(args)

	s := core.State{Time: t, Run: core.Running}
	if args[3].Bool() {
		s.Run = core.Paused
	}

	var e core.Event
	switch args[4].String() {
	case "TICK":
		e = core.EventTick
	case "RESET":
		e = core.EventReset
	case "PAUSE":
		e = core.EventPause
	case "RESUME":
		e = core.EventResume
	default:
		return makeError("unknown event " + args[4].String())
	}

	next := core.Apply(s, e)
	result := timeResult(next.Time)
	result["paused"] = next.Run == core.Paused
	return js.ValueOf(result)
}

func argTime(args []js.Value) (core.ElapsedTime, bool) {
	if len(args) < 3 {
		return core.ElapsedTime{}, false
	}
	return core.ElapsedTime{
		Hours:   uint16(args[0].Int()),
		Minutes: uint8(args[1].Int()),
		Seconds: uint8(args[2].Int()),
	}, true
}

func timeResult(t core.ElapsedTime) map[string]interface{} {
	return map[string]interface{}{
		"hours":   int(t.Hours),
		"minutes": int(t.Minutes),
		"seconds": int(t.Seconds),
	}
}

func makeError(msg string) js.Value {
	return js.ValueOf(map[string]interface{}{"error": msg})
}
