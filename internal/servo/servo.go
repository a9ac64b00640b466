// Package servo drives the window servo.
// The real implementation uses the Raspberry Pi hardware PWM through go-rpio.
package servo

import (
	"fmt"

	rpio "github.com/stianeikeland/go-rpio"
)

// Servo positions the window. Satisfies room.Servo.
type Servo interface {
	// ChangeAngle sets the PWM duty cycle, in percent of the 20 ms period.
	ChangeAngle(angle int) error

	// Close stops the PWM output and releases resources.
	Close() error
}

// DefaultPin is the BCM pin carrying PWM0.
const DefaultPin = 18

const (
	frequency = 50  // Hz, standard hobby servo period
	cycleLen  = 100 // duty resolution: one step per percent
)

// dutyPin is the part of rpio.Pin the servo uses.
type dutyPin interface {
	DutyCycle(dutyLen, cycleLen uint32)
}

// RPIO drives a servo from a hardware PWM pin.
type RPIO struct {
	pin    dutyPin
	closer func() error
}

// NewRPIO maps the GPIO registers and configures pin for 50 Hz PWM.
// Requires root for /dev/mem access.
func NewRPIO(pin int) (*RPIO, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("open rpio: %w", err)
	}

	p := rpio.Pin(pin)
	p.Mode(rpio.Pwm)
	p.Freq(frequency * cycleLen)
	p.DutyCycle(0, cycleLen)

	return &RPIO{pin: p, closer: rpio.Close}, nil
}

// ChangeAngle sets the duty cycle to angle percent.
func (s *RPIO) ChangeAngle(angle int) error {
	if angle < 0 || angle > cycleLen {
		return fmt.Errorf("servo: angle %d out of range [0, %d]", angle, cycleLen)
	}
	s.pin.DutyCycle(uint32(angle), cycleLen)
	return nil
}

// Close stops the pulse train and unmaps the registers.
func (s *RPIO) Close() error {
	s.pin.DutyCycle(0, cycleLen)
	if s.closer == nil {
		return nil
	}
	if err := s.closer(); err != nil {
		return fmt.Errorf("close rpio: %w", err)
	}
	return nil
}
