package sensor

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"
	"periph.io/x/host/v3"
)

// BMP280 I2C addresses (SDO low / high).
const (
	BMP280AddrLow  = 0x76
	BMP280AddrHigh = 0x77
)

// DefaultI2CBus is the user I2C bus on a Raspberry Pi.
const DefaultI2CBus = "/dev/i2c-1"

// envSensor is the part of *bmxx80.Dev the thermometer uses.
type envSensor interface {
	Sense(e *physic.Env) error
	Halt() error
}

// BMP280 reads temperature from a Bosch BMP280 on an I2C bus.
type BMP280 struct {
	bus i2c.BusCloser
	dev envSensor
}

// NewBMP280 opens the named I2C bus and initializes the sensor at addr.
func NewBMP280(bus string, addr uint16) (*BMP280, error) {
	if addr != BMP280AddrLow && addr != BMP280AddrHigh {
		return nil, fmt.Errorf("bmp280: invalid address 0x%02x", addr)
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}

	b, err := i2creg.Open(bus)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %s: %w", bus, err)
	}

	dev, err := bmxx80.NewI2C(b, addr, &bmxx80.DefaultOpts)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("init bmp280 at 0x%02x: %w", addr, err)
	}

	return &BMP280{bus: b, dev: dev}, nil
}

// Temperature takes one measurement and returns it in °C.
func (s *BMP280) Temperature() (float64, error) {
	var e physic.Env
	if err := s.dev.Sense(&e); err != nil {
		return 0, fmt.Errorf("bmp280 sense: %w", err)
	}
	return celsius(e.Temperature), nil
}

// Close halts the sensor and closes the bus.
func (s *BMP280) Close() error {
	var errs []error
	if err := s.dev.Halt(); err != nil {
		errs = append(errs, fmt.Errorf("halt bmp280: %w", err))
	}
	if s.bus != nil {
		if err := s.bus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close i2c bus: %w", err))
		}
	}
	return errors.Join(errs...)
}

func celsius(t physic.Temperature) float64 {
	return float64(t-physic.ZeroCelsius) / float64(physic.Celsius)
}
