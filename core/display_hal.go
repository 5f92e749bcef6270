package core

// NumDigits is the number of multiplexed digit positions
const NumDigits = 6

// DisplayDriver is the abstract digit output that the multiplexer drives.
// Platform-specific implementations handle actual hardware control.
type DisplayDriver interface {
	// ConfigureDisplay claims the output lines and sets the power-on state
	ConfigureDisplay() error

	// ShowDigit lights only the given position and puts value on the
	// decoder inputs. Position 0 is the low seconds digit.
	ShowDigit(position uint8, value uint8) error
}
