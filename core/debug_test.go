package core

import "testing"

func TestEventRingDrainOrder(t *testing.T) {
	ClearEventRing()
	SetTime(500)

	RecordEvent(EventTick, ElapsedTime{Seconds: 1})
	RecordEvent(EventPause, ElapsedTime{Seconds: 1})
	RecordEvent(EventResume, ElapsedTime{Seconds: 1})

	var got []EventRecord
	dropped := DrainEvents(func(r EventRecord) { got = append(got, r) })
	if dropped != 0 {
		t.Errorf("Expected no dropped events, got %d", dropped)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(got))
	}
	want := []Event{EventTick, EventPause, EventResume}
	for i := range want {
		if got[i].Event != want[i] || got[i].Seq != uint32(i) || got[i].Clock != 500 {
			t.Errorf("Record %d: unexpected %+v", i, got[i])
		}
	}

	// A second drain sees nothing new
	n := 0
	DrainEvents(func(EventRecord) { n++ })
	if n != 0 {
		t.Errorf("Expected empty drain, got %d records", n)
	}
}

func TestEventRingOverflow(t *testing.T) {
	ClearEventRing()
	for i := 0; i < EventRingSize+5; i++ {
		RecordEvent(EventTick, ElapsedTime{Seconds: uint8(i % 60)})
	}

	var first, count uint32
	dropped := DrainEvents(func(r EventRecord) {
		if count == 0 {
			first = r.Seq
		}
		count++
	})
	if dropped != 5 {
		t.Errorf("Expected 5 dropped, got %d", dropped)
	}
	if count != EventRingSize || first != 5 {
		t.Errorf("Expected %d records starting at seq 5, got %d from %d", EventRingSize, count, first)
	}
}

func TestFormatEvent(t *testing.T) {
	line := FormatEvent(EventRecord{Seq: 7, Event: EventReset, Clock: 1234})
	want := "[STOPWATCH] RESET t=00:00:00 clock=1234 seq=7 crc=65A9"
	if line != want {
		t.Errorf("FormatEvent = %q, want %q", line, want)
	}
}

func TestDebugOutputGating(t *testing.T) {
	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	defer SetDebugWriter(func(string) {})

	SetDebugEnabled(false)
	DebugPrintln("hidden")
	DebugAsync("hidden")
	if len(lines) != 0 {
		t.Errorf("Expected no output while disabled, got %v", lines)
	}

	SetDebugEnabled(true)
	defer SetDebugEnabled(false)
	if !IsDebugEnabled() {
		t.Error("Expected debug enabled")
	}
	DebugPrintln("one")
	DebugAsync("two")
	if len(lines) != 2 || lines[0] != "one" || lines[1] != "two" {
		t.Errorf("Unexpected output %v", lines)
	}
}

func TestStrutil(t *testing.T) {
	if itoa(-42) != "-42" || itoa(0) != "0" || utoa(4294967295) != "4294967295" {
		t.Error("Integer formatting wrong")
	}
	if pad2(7) != "07" || pad2(42) != "42" || pad2(100) != "100" {
		t.Error("Two-digit padding wrong")
	}
}
