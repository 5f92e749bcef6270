package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"stopwatch/core"
	"stopwatch/host/monitor"
)

var (
	device     = flag.String("device", "/dev/ttyUSB0", "Serial device of the board's debug UART")
	baud       = flag.Int("baud", 115200, "Baud rate")
	eventsOnly = flag.Bool("events", false, "Only print stopwatch event lines")
)

func main() {
	flag.Parse()

	fmt.Printf("Connecting to %s at %d baud...\n", *device, *baud)
	mon, err := monitor.Connect(*device, *baud)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer mon.Close()

	var last core.EventRecord
	haveLast := false

	onLine := func(line string) {
		if !*eventsOnly {
			fmt.Printf("%s  %s\n", time.Now().Format("15:04:05.000"), line)
		}
	}
	onEvent := func(rec core.EventRecord) {
		if haveLast && rec.Seq != last.Seq+1 {
			fmt.Printf("%s  ! missed %d events\n", time.Now().Format("15:04:05.000"), rec.Seq-last.Seq-1)
		}
		if *eventsOnly {
			fmt.Printf("%s  %-6s %s\n", time.Now().Format("15:04:05.000"), rec.Event, rec.Time)
		}
		last = rec
		haveLast = true
	}

	if err := mon.Run(onLine, onEvent); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", *device, err)
		os.Exit(1)
	}
}
