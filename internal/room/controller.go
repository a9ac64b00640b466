package room

import "fmt"

// Controller maps sensor readings to actuator commands for one room.
// It is not safe for concurrent use; callers serialize management cycles.
type Controller struct {
	io    DigitalIO
	therm Thermometer
	servo Servo
	co2   CO2Sensor
	pins  Pins

	lightOn    bool
	windowOpen bool
	fanOn      bool
}

// New creates a controller with every actuator considered off/closed.
func New(io DigitalIO, therm Thermometer, servo Servo, co2 CO2Sensor, pins Pins) *Controller {
	return &Controller{
		io:    io,
		therm: therm,
		servo: servo,
		co2:   co2,
		pins:  pins,
	}
}

// Pins returns the pin assignment the controller was built with.
func (c *Controller) Pins() Pins {
	return c.pins
}

// CheckRoomOccupancy reports whether the infrared sensor detects presence.
func (c *Controller) CheckRoomOccupancy() (bool, error) {
	occupied, err := c.io.Read(c.pins.Infrared)
	if err != nil {
		return false, fmt.Errorf("read infrared pin %d: %w", c.pins.Infrared, err)
	}
	return occupied, nil
}

// CheckEnoughLight reports whether the photoresistor circuit sees enough ambient light.
func (c *Controller) CheckEnoughLight() (bool, error) {
	enough, err := c.io.Read(c.pins.Photoresistor)
	if err != nil {
		return false, fmt.Errorf("read photoresistor pin %d: %w", c.pins.Photoresistor, err)
	}
	return enough, nil
}

// ManageLightLevel turns the LED on when the room is occupied and dark, off otherwise.
// The LED is written on every call, even when the value is unchanged.
func (c *Controller) ManageLightLevel() error {
	occupied, err := c.CheckRoomOccupancy()
	if err != nil {
		return err
	}
	enough, err := c.CheckEnoughLight()
	if err != nil {
		return err
	}

	on := occupied && !enough
	if err := c.io.Write(c.pins.LED, on); err != nil {
		return fmt.Errorf("write led pin %d: %w", c.pins.LED, err)
	}
	c.lightOn = on
	return nil
}

// ManageWindow samples the temperature twice and moves the window when the
// two samples straddle a bound. Rising through a bound opens, falling closes.
// Pairs outside [TempMin, TempMax] are ignored.
// At most one servo command is issued per call.
func (c *Controller) ManageWindow() error {
	t1, err := c.therm.Temperature()
	if err != nil {
		return fmt.Errorf("read first temperature: %w", err)
	}
	t2, err := c.therm.Temperature()
	if err != nil {
		return fmt.Errorf("read second temperature: %w", err)
	}

	if !inRange(t1) || !inRange(t2) {
		return nil
	}

	switch {
	case rising(t1, t2, TempLow), rising(t1, t2, TempHigh):
		return c.moveWindow(AngleOpen, true)
	case falling(t1, t2, TempLow), falling(t1, t2, TempHigh):
		return c.moveWindow(AngleClosed, false)
	}
	return nil
}

func inRange(t float64) bool {
	return t >= TempMin && t <= TempMax
}

// rising reports t1 < bound <= t2.
func rising(t1, t2, bound float64) bool {
	return t1 < bound && bound <= t2
}

// falling reports t2 < bound <= t1.
func falling(t1, t2, bound float64) bool {
	return t2 < bound && bound <= t1
}

func (c *Controller) moveWindow(angle int, open bool) error {
	if err := c.servo.ChangeAngle(angle); err != nil {
		return fmt.Errorf("change servo angle to %d: %w", angle, err)
	}
	c.windowOpen = open
	return nil
}

// MonitorAirQuality drives the fan from the CO2 level.
// Readings in [CO2Low, CO2High) leave the fan untouched.
func (c *Controller) MonitorAirQuality() error {
	ppm, err := c.co2.CO2()
	if err != nil {
		return fmt.Errorf("read co2: %w", err)
	}

	var on bool
	switch {
	case ppm >= CO2High:
		on = true
	case ppm < CO2Low:
		on = false
	default:
		return nil
	}

	if err := c.io.Write(c.pins.Fan, on); err != nil {
		return fmt.Errorf("write fan pin %d: %w", c.pins.Fan, err)
	}
	c.fanOn = on
	return nil
}

// LightOn reports the last LED command.
func (c *Controller) LightOn() bool {
	return c.lightOn
}

// WindowOpen reports the last window command.
func (c *Controller) WindowOpen() bool {
	return c.windowOpen
}

// FanOn reports the last fan command.
func (c *Controller) FanOn() bool {
	return c.fanOn
}

// State returns a copy of the actuator state.
func (c *Controller) State() State {
	return State{
		LightOn:    c.lightOn,
		WindowOpen: c.windowOpen,
		FanOn:      c.fanOn,
	}
}
