package core

import "errors"

var ErrPinConflict = errors.New("controls: the same pin is bound twice")

// ControlLines are the three button inputs
type ControlLines struct {
	Reset  GPIOPin // Falling edge, internal pull-up
	Pause  GPIOPin // Rising edge, external circuit sets the idle level
	Resume GPIOPin // Falling edge, internal pull-up
}

// ControlHandlers run in interrupt context and must return quickly.
// There is no debouncing: a bouncing contact may call a handler twice.
type ControlHandlers struct {
	Reset  func()
	Pause  func()
	Resume func()
}

// controlBinding describes how one button line is wired
type controlBinding struct {
	pin     GPIOPin
	pullUp  bool
	edge    Edge
	handler func()
}

// BindControls configures the three input lines and attaches the handlers.
func BindControls(gpio GPIODriver, lines ControlLines, handlers ControlHandlers) error {
	if lines.Reset == lines.Pause || lines.Reset == lines.Resume || lines.Pause == lines.Resume {
		return ErrPinConflict
	}

	bindings := [3]controlBinding{
		{pin: lines.Reset, pullUp: true, edge: EdgeFalling, handler: handlers.Reset},
		{pin: lines.Pause, pullUp: false, edge: EdgeRising, handler: handlers.Pause},
		{pin: lines.Resume, pullUp: true, edge: EdgeFalling, handler: handlers.Resume},
	}

	for i := range bindings {
		b := &bindings[i]

		var err error
		if b.pullUp {
			err = gpio.ConfigureInputPullUp(b.pin)
		} else {
			err = gpio.ConfigureInput(b.pin)
		}
		if err != nil {
			return err
		}

		if b.handler == nil {
			continue
		}
		handler := b.handler
		if err := gpio.SetInterrupt(b.pin, b.edge, func(GPIOPin) { handler() }); err != nil {
			return err
		}
	}

	return nil
}
