// Package monitor follows the firmware's debug UART from the host and turns
// its event lines back into records.
package monitor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"stopwatch/core"
	"stopwatch/host/serial"
)

const eventPrefix = "[STOPWATCH] "

var (
	ErrNotEvent = errors.New("monitor: not an event line")
	ErrChecksum = errors.New("monitor: event checksum mismatch")
)

// Monitor represents a connection to a board's debug UART
type Monitor struct {
	port      serial.Port
	connected bool
}

// New wraps an already open port (useful for tests and pipes)
func New(port serial.Port) *Monitor {
	return &Monitor{port: port, connected: port != nil}
}

// Connect opens the debug UART with the firmware's default settings
func Connect(device string, baud int) (*Monitor, error) {
	cfg := serial.DefaultConfig(device)
	if baud > 0 {
		cfg.Baud = baud
	}

	port, err := serial.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open debug uart: %w", err)
	}

	// Drop whatever the board printed before we attached
	if err := port.Flush(); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to flush %s: %w", device, err)
	}

	return New(port), nil
}

// Close closes the connection
func (m *Monitor) Close() error {
	if !m.connected {
		return nil
	}
	m.connected = false
	return m.port.Close()
}

// Run reads lines until the port is closed. Every line goes to onLine,
// event lines are additionally parsed and passed to onEvent.
func (m *Monitor) Run(onLine func(string), onEvent func(core.EventRecord)) error {
	if !m.connected {
		return fmt.Errorf("not connected")
	}
	return ReadLines(m.port, func(line string) {
		if onLine != nil {
			onLine(line)
		}
		if onEvent == nil {
			return
		}
		if rec, err := ParseEvent(line); err == nil {
			onEvent(rec)
		}
	})
}

// ReadLines splits r into lines, dropping the UART's carriage returns
func ReadLines(r io.Reader, fn func(string)) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fn(strings.TrimRight(scanner.Text(), "\r"))
	}
	err := scanner.Err()
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// ParseEvent decodes a line such as
// "[STOPWATCH] RESET t=00:00:00 clock=1234 seq=7 crc=65A9".
func ParseEvent(line string) (core.EventRecord, error) {
	var rec core.EventRecord

	if !strings.HasPrefix(line, eventPrefix) {
		return rec, ErrNotEvent
	}
	body, sum, ok := strings.Cut(line, " crc=")
	if !ok {
		return rec, ErrNotEvent
	}
	want, err := strconv.ParseUint(sum, 16, 16)
	if err != nil {
		return rec, fmt.Errorf("%w: bad crc %q", ErrNotEvent, sum)
	}
	if got := core.CRC16([]byte(body)); got != uint16(want) {
		return rec, fmt.Errorf("%w: got %04X, line says %04X", ErrChecksum, got, want)
	}

	fields := strings.Fields(strings.TrimPrefix(body, eventPrefix))
	if len(fields) != 4 {
		return rec, ErrNotEvent
	}

	switch fields[0] {
	case "TICK":
		rec.Event = core.EventTick
	case "RESET":
		rec.Event = core.EventReset
	case "PAUSE":
		rec.Event = core.EventPause
	case "RESUME":
		rec.Event = core.EventResume
	default:
		return rec, ErrNotEvent
	}

	values := make(map[string]string, 3)
	for _, f := range fields[1:] {
		key, value, ok := strings.Cut(f, "=")
		if !ok {
			return rec, fmt.Errorf("%w: bad field %q", ErrNotEvent, f)
		}
		values[key] = value
	}

	t, err := parseElapsed(values["t"])
	if err != nil {
		return rec, err
	}
	rec.Time = t

	clock, err := strconv.ParseUint(values["clock"], 10, 32)
	if err != nil {
		return rec, fmt.Errorf("bad clock: %w", err)
	}
	rec.Clock = uint32(clock)

	seq, err := strconv.ParseUint(values["seq"], 10, 32)
	if err != nil {
		return rec, fmt.Errorf("bad seq: %w", err)
	}
	rec.Seq = uint32(seq)

	return rec, nil
}

func parseElapsed(s string) (core.ElapsedTime, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return core.ElapsedTime{}, fmt.Errorf("bad time %q", s)
	}

	hours, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil {
		return core.ElapsedTime{}, fmt.Errorf("bad hours: %w", err)
	}
	minutes, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil || minutes >= 60 {
		return core.ElapsedTime{}, fmt.Errorf("bad minutes %q", parts[1])
	}
	seconds, err := strconv.ParseUint(parts[2], 10, 8)
	if err != nil || seconds >= 60 {
		return core.ElapsedTime{}, fmt.Errorf("bad seconds %q", parts[2])
	}

	return core.ElapsedTime{
		Seconds: uint8(seconds),
		Minutes: uint8(minutes),
		Hours:   uint16(hours),
	}, nil
}
