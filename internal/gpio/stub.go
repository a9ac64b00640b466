//go:build !linux

package gpio

// RealPins is not available on non-Linux platforms.
type RealPins struct{}

// NewRealPins returns ErrNotSupported on non-Linux platforms.
func NewRealPins(chip string, inputs, outputs []int) (*RealPins, error) {
	return nil, ErrNotSupported
}

// Read is not implemented on non-Linux platforms.
func (p *RealPins) Read(pin int) (bool, error) {
	return false, ErrNotSupported
}

// Write is not implemented on non-Linux platforms.
func (p *RealPins) Write(pin int, on bool) error {
	return ErrNotSupported
}

// Close is not implemented on non-Linux platforms.
func (p *RealPins) Close() error {
	return nil
}
