package metrics

import (
	"strconv"

	"github.com/sweeney/smart-room/internal/room"
)

type thermometerDecorator struct {
	next room.Thermometer
	m    *Metrics
}

// Thermometer wraps t so every reading updates the temperature gauge.
func (m *Metrics) Thermometer(t room.Thermometer) room.Thermometer {
	return &thermometerDecorator{next: t, m: m}
}

func (t *thermometerDecorator) Temperature() (float64, error) {
	v, err := t.next.Temperature()
	if err != nil {
		t.m.collabErrors.WithLabelValues("thermometer").Inc()
		return v, err
	}
	t.m.temperature.Set(v)
	return v, nil
}

type co2Decorator struct {
	next room.CO2Sensor
	m    *Metrics
}

// CO2Sensor wraps s so every reading updates the CO2 gauge.
func (m *Metrics) CO2Sensor(s room.CO2Sensor) room.CO2Sensor {
	return &co2Decorator{next: s, m: m}
}

func (s *co2Decorator) CO2() (int, error) {
	v, err := s.next.CO2()
	if err != nil {
		s.m.collabErrors.WithLabelValues("co2").Inc()
		return v, err
	}
	s.m.co2.Set(float64(v))
	return v, nil
}

type servoDecorator struct {
	next room.Servo
	m    *Metrics
}

// Servo wraps s so every command is counted under the "window" actuator.
func (m *Metrics) Servo(s room.Servo) room.Servo {
	return &servoDecorator{next: s, m: m}
}

func (s *servoDecorator) ChangeAngle(angle int) error {
	if err := s.next.ChangeAngle(angle); err != nil {
		s.m.collabErrors.WithLabelValues("servo").Inc()
		return err
	}
	s.m.writes.WithLabelValues("window").Inc()
	return nil
}

type digitalIODecorator struct {
	next  room.DigitalIO
	names map[int]string
	m     *Metrics
}

// DigitalIO wraps io so writes are counted per actuator. names maps output
// pins to actuator labels; unnamed pins are labelled by number.
func (m *Metrics) DigitalIO(io room.DigitalIO, names map[int]string) room.DigitalIO {
	return &digitalIODecorator{next: io, names: names, m: m}
}

// ActuatorNames returns the output pin labels for p.
func ActuatorNames(p room.Pins) map[int]string {
	return map[int]string{
		p.LED: "light",
		p.Fan: "fan",
	}
}

func (d *digitalIODecorator) label(pin int) string {
	if name, ok := d.names[pin]; ok {
		return name
	}
	return "pin" + strconv.Itoa(pin)
}

func (d *digitalIODecorator) Read(pin int) (bool, error) {
	v, err := d.next.Read(pin)
	if err != nil {
		d.m.collabErrors.WithLabelValues("gpio").Inc()
	}
	return v, err
}

func (d *digitalIODecorator) Write(pin int, on bool) error {
	if err := d.next.Write(pin, on); err != nil {
		d.m.collabErrors.WithLabelValues("gpio").Inc()
		return err
	}
	d.m.writes.WithLabelValues(d.label(pin)).Inc()
	return nil
}
