package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"stopwatch/config"
	"stopwatch/core"
	"stopwatch/host/sim"
)

var (
	configPath = flag.String("config", "", "Board description (JSON)")
	preset     = flag.String("preset", "avr", "Board preset when no config is given (avr, rp2040)")
	speed      = flag.Float64("speed", 1.0, "Simulated seconds per real second")
	verbose    = flag.Bool("verbose", false, "Log stopwatch events to stderr")
)

// hardwareStep is how often the simulated timer hardware is serviced
const hardwareStep = 10 * time.Millisecond

func main() {
	flag.Parse()

	board, err := loadBoard()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if board.Display != config.DisplayGPIO {
		fmt.Fprintf(os.Stderr, "Error: the simulator only drives the %q display, board uses %q\n", config.DisplayGPIO, board.Display)
		os.Exit(1)
	}

	if *verbose || board.Debug {
		core.SetDebugWriter(func(s string) { fmt.Fprintln(os.Stderr, s) })
		core.SetDebugEnabled(true)
		core.InitAsyncDebug()
	}

	gpio := sim.NewGPIO()
	panel := sim.NewPanel(gpio, board.DisplayPins())
	core.SetGPIODriver(gpio)

	timer := core.NewSoftTimer(board.ClockHz)
	core.SetTimerDriver(timer)
	core.TimerInit()

	sw := core.New(board.Options(), gpio, timer, core.NewGPIODisplay(gpio, board.DisplayPins()))
	if err := sw.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to start stopwatch: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Stopwatch simulator")
	fmt.Println("===================")
	fmt.Printf("Board %s: clock %d Hz /%d, dwell %v\n", board.Preset, board.ClockHz, board.Prescaler, board.Dwell())
	printHelp()

	stop := make(chan struct{})
	buttons := make(chan string, 8)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	go readButtons(buttons)
	go runHardware(board, gpio, panel, sw, buttons, signals, stop)

	// The display loop owns the main goroutine, as on the board
	if err := sw.Run(stop); err != nil {
		fmt.Fprintf(os.Stderr, "\nError: display loop failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("\nGoodbye!")
}

func loadBoard() (*config.Board, error) {
	if *configPath == "" {
		board, err := config.Preset(*preset)
		if err != nil {
			return nil, err
		}
		return board, board.Validate()
	}

	data, err := os.ReadFile(*configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	board, err := config.LoadConfig(data)
	if err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", *configPath, err)
	}
	return board, nil
}

// readButtons turns stdin lines into button names
func readButtons(out chan<- string) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		cmd := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if cmd != "" {
			out <- cmd
		}
	}
	out <- "quit"
}

// runHardware plays the part of the timer peripheral and the interrupt
// controller: it advances the clock, dispatches compare-matches and turns
// button presses into edges, all from one goroutine.
func runHardware(board *config.Board, gpio *sim.GPIO, panel *sim.Panel, sw *core.Stopwatch,
	buttons <-chan string, signals <-chan os.Signal, stop chan<- struct{}) {

	ticker := time.NewTicker(hardwareStep)
	defer ticker.Stop()

	stepTicks := uint32(float64(core.TimerFromUS(uint32(hardwareStep/time.Microsecond))) * *speed)
	if stepTicks == 0 {
		stepTicks = 1
	}

	redraw := 0
	for {
		select {
		case <-signals:
			close(stop)
			return

		case cmd := <-buttons:
			var pin uint32
			switch cmd {
			case "r", "reset":
				pin = board.ResetPin
			case "p", "pause":
				pin = board.PausePin
			case "s", "resume":
				pin = board.ResumePin
			case "q", "quit", "exit":
				close(stop)
				return
			case "h", "help", "?":
				printHelp()
				continue
			default:
				fmt.Printf("\nUnknown command: %s (type 'help' for available commands)\n", cmd)
				continue
			}
			core.DebugAsync("[SIM] press " + cmd)
			if err := gpio.Press(core.GPIOPin(pin)); err != nil {
				fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
			}

		case <-ticker.C:
			core.AdvanceTime(stepTicks)
			core.ProcessTimers()

			redraw++
			if redraw%10 == 0 {
				fmt.Printf("\r  %s  %-7s frames=%d up=%.1fs ", panel.Reading(), sw.State().Run,
					sw.Multiplexer().Frames(), float64(core.TimerToUS(core.GetUptime()))/1e6)
			}
		}
	}
}

func printHelp() {
	fmt.Println("\nButtons (type and press enter):")
	fmt.Println("  r / reset   - Reset to 00:00:00")
	fmt.Println("  p / pause   - Pause")
	fmt.Println("  s / resume  - Resume")
	fmt.Println("  q / quit    - Exit the simulator")
	fmt.Println()
}
