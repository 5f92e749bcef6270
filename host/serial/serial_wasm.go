//go:build wasm

package serial

import "errors"

// ErrUnsupported is returned when no serial backend exists for the platform
var ErrUnsupported = errors.New("serial: not available on wasm")

// Open is unavailable in the browser; pipe data in through monitor.New instead
func Open(cfg *Config) (Port, error) {
	return nil, ErrUnsupported
}
