// Package room contains the decision logic for a single-room environmental controller.
// This package has NO external dependencies (no GPIO, I2C, MQTT, OS, or time).
// All hardware is reached through the small collaborator interfaces below.
package room

// DigitalIO reads and drives digital pins.
type DigitalIO interface {
	// Read returns true when the input pin is active.
	Read(pin int) (bool, error)
	// Write drives the output pin high (true) or low (false).
	Write(pin int, on bool) error
}

// Thermometer reads ambient temperature in degrees Celsius.
type Thermometer interface {
	Temperature() (float64, error)
}

// Servo positions the window servo.
type Servo interface {
	ChangeAngle(angle int) error
}

// CO2Sensor reads carbon dioxide concentration in ppm.
type CO2Sensor interface {
	CO2() (int, error)
}

// Temperature bounds for window management, in °C.
const (
	TempLow  = 20.0
	TempHigh = 28.0
)

// Operating range of the window logic, in °C inclusive. A sample pair with
// either reading outside it never moves the window.
const (
	TempMin = 18.0
	TempMax = 30.0
)

// CO2 band for the ventilation fan, in ppm.
// The fan turns on at or above CO2High and off below CO2Low.
const (
	CO2High = 800
	CO2Low  = 500
)

// Servo positions.
const (
	AngleOpen   = 12
	AngleClosed = 2
)

// Pins addresses the digital channels used by the controller (BCM numbering).
type Pins struct {
	Infrared      int
	Photoresistor int
	LED           int
	Fan           int
}

// DefaultPins is the reference wiring.
var DefaultPins = Pins{
	Infrared:      17,
	Photoresistor: 23,
	LED:           27,
	Fan:           22,
}

// State is a point-in-time copy of the actuator state.
type State struct {
	LightOn    bool
	WindowOpen bool
	FanOn      bool
}

// EventType names an actuator transition.
type EventType string

const (
	EventLightOn      EventType = "LIGHT_ON"
	EventLightOff     EventType = "LIGHT_OFF"
	EventWindowOpen   EventType = "WINDOW_OPEN"
	EventWindowClosed EventType = "WINDOW_CLOSED"
	EventFanOn        EventType = "FAN_ON"
	EventFanOff       EventType = "FAN_OFF"
)

// Event is an actuator transition together with the resulting state.
type Event struct {
	Type  EventType
	State State
}
