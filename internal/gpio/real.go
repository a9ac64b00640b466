//go:build linux

package gpio

import (
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealPins drives GPIO lines through the Linux GPIO character device.
type RealPins struct {
	chip    *gpiocdev.Chip
	inputs  map[int]*gpiocdev.Line
	outputs map[int]*gpiocdev.Line
}

// NewRealPins opens chip and requests the given input and output lines.
// Inputs use pull-down to match Pi boot defaults; outputs start low.
func NewRealPins(chip string, inputs, outputs []int) (*RealPins, error) {
	c, err := gpiocdev.NewChip(chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chip, err)
	}

	p := &RealPins{
		chip:    c,
		inputs:  make(map[int]*gpiocdev.Line, len(inputs)),
		outputs: make(map[int]*gpiocdev.Line, len(outputs)),
	}

	for _, pin := range inputs {
		line, err := c.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullDown)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("request input pin %d: %w", pin, err)
		}
		p.inputs[pin] = line
	}

	for _, pin := range outputs {
		line, err := c.RequestLine(pin, gpiocdev.AsOutput(0))
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("request output pin %d: %w", pin, err)
		}
		p.outputs[pin] = line
	}

	return p, nil
}

// Read returns true when the input line is high.
func (p *RealPins) Read(pin int) (bool, error) {
	line, ok := p.inputs[pin]
	if !ok {
		return false, fmt.Errorf("pin %d not requested as input", pin)
	}
	v, err := line.Value()
	if err != nil {
		return false, fmt.Errorf("read pin %d: %w", pin, err)
	}
	return v == 1, nil
}

// Write drives the output line.
func (p *RealPins) Write(pin int, on bool) error {
	line, ok := p.outputs[pin]
	if !ok {
		return fmt.Errorf("pin %d not requested as output", pin)
	}
	v := 0
	if on {
		v = 1
	}
	if err := line.SetValue(v); err != nil {
		return fmt.Errorf("write pin %d: %w", pin, err)
	}
	return nil
}

// Close releases GPIO resources.
// Outputs are driven low, then every line is reconfigured to input with
// pull-down (matching Pi boot defaults) before closing, so the LED and fan
// are left off across restarts.
func (p *RealPins) Close() error {
	var errs []error

	for pin, line := range p.outputs {
		if err := line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("drive pin %d low: %w", pin, err))
		}
		errs = append(errs, release(pin, line)...)
	}
	for pin, line := range p.inputs {
		errs = append(errs, release(pin, line)...)
	}
	p.outputs = nil
	p.inputs = nil

	if p.chip != nil {
		if err := p.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		p.chip = nil
	}

	return errors.Join(errs...)
}

func release(pin int, line *gpiocdev.Line) []error {
	var errs []error
	if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure pin %d: %w", pin, err))
	}
	if err := line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close pin %d: %w", pin, err))
	}
	return errs
}
