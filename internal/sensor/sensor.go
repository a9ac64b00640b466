// Package sensor provides the temperature and CO2 sensors used by the room
// controller, with fakes for testing without hardware.
package sensor

// Thermometer reads ambient temperature in °C. Satisfies room.Thermometer.
type Thermometer interface {
	Temperature() (float64, error)
	Close() error
}

// CO2Meter reads CO2 concentration in ppm. Satisfies room.CO2Sensor.
type CO2Meter interface {
	CO2() (int, error)
	Close() error
}
