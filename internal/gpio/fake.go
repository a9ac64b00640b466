package gpio

import "fmt"

// FakePins is a test double that returns scripted input values and records writes.
type FakePins struct {
	// Inputs contains scripted values per input pin.
	// Each Read of a pin consumes its next value; the last value repeats.
	Inputs map[int][]bool

	// Writes records every Write in call order.
	Writes []Write

	// ReadErrors, if set for a pin, is returned by Read for that pin.
	ReadErrors map[int]error

	// WriteErrors, if set for a pin, is returned by Write for that pin.
	// A failed write is not recorded.
	WriteErrors map[int]error

	// Closed tracks if Close was called
	Closed bool

	index map[int]int
}

// Write is a single recorded output command.
type Write struct {
	Pin int
	On  bool
}

// NewFakePins creates a FakePins with no scripted inputs.
func NewFakePins() *FakePins {
	return &FakePins{
		Inputs:      make(map[int][]bool),
		ReadErrors:  make(map[int]error),
		WriteErrors: make(map[int]error),
		index:       make(map[int]int),
	}
}

// SetInput scripts the values returned for pin, replacing earlier ones.
func (f *FakePins) SetInput(pin int, values ...bool) {
	f.Inputs[pin] = values
	delete(f.index, pin)
}

// Read returns the next scripted value for pin.
func (f *FakePins) Read(pin int) (bool, error) {
	if err := f.ReadErrors[pin]; err != nil {
		return false, err
	}

	values := f.Inputs[pin]
	if len(values) == 0 {
		return false, fmt.Errorf("no samples configured for pin %d", pin)
	}

	i := f.index[pin]
	if i < len(values)-1 {
		f.index[pin] = i + 1
	}
	return values[i], nil
}

// Write records the command.
func (f *FakePins) Write(pin int, on bool) error {
	if err := f.WriteErrors[pin]; err != nil {
		return err
	}
	f.Writes = append(f.Writes, Write{Pin: pin, On: on})
	return nil
}

// WritesTo returns the values written to pin, oldest first.
func (f *FakePins) WritesTo(pin int) []bool {
	var out []bool
	for _, w := range f.Writes {
		if w.Pin == pin {
			out = append(out, w.On)
		}
	}
	return out
}

// Close marks the pins as closed.
func (f *FakePins) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds scripted inputs and clears recorded writes.
func (f *FakePins) Reset() {
	f.index = make(map[int]int)
	f.Writes = nil
	f.Closed = false
}
