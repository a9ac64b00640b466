// Package gpio provides digital pin access with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import "errors"

// Pins reads input pins and drives output pins by BCM number.
// Pins satisfies room.DigitalIO.
type Pins interface {
	// Read returns true when the input pin is high.
	Read(pin int) (bool, error)

	// Write drives the output pin high (true) or low (false).
	Write(pin int, on bool) error

	// Close drives outputs low and releases GPIO resources.
	Close() error
}

// DefaultChip is the GPIO character device on a Raspberry Pi.
const DefaultChip = "gpiochip0"

// ErrNotSupported is returned by the real implementation on platforms without
// the GPIO character device.
var ErrNotSupported = errors.New("gpio: not supported on this platform (requires Linux)")
