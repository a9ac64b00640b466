package sensor

import "errors"

// FakeThermometer is a test double that returns scripted temperatures.
type FakeThermometer struct {
	// Samples contains scripted readings in °C.
	// Each call consumes the next sample; the last sample repeats.
	Samples []float64

	// Errors maps a zero-based call number to the error returned on that call.
	Errors map[int]error

	// ReadError, if set, is returned by every call.
	ReadError error

	// Calls counts Temperature calls, including failed ones.
	Calls int

	// Closed tracks if Close was called
	Closed bool

	index int
}

// NewFakeThermometer creates a FakeThermometer with the given samples.
func NewFakeThermometer(samples ...float64) *FakeThermometer {
	return &FakeThermometer{Samples: samples}
}

// SetSamples replaces the scripted readings and rewinds to the first one.
func (f *FakeThermometer) SetSamples(samples ...float64) {
	f.Samples = samples
	f.index = 0
}

// Temperature returns the next scripted reading.
func (f *FakeThermometer) Temperature() (float64, error) {
	call := f.Calls
	f.Calls++

	if f.ReadError != nil {
		return 0, f.ReadError
	}
	if err := f.Errors[call]; err != nil {
		return 0, err
	}
	if len(f.Samples) == 0 {
		return 0, errors.New("no samples configured")
	}

	v := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return v, nil
}

// Close marks the thermometer as closed.
func (f *FakeThermometer) Close() error {
	f.Closed = true
	return nil
}

// FakeCO2 is a test double that returns scripted CO2 readings.
type FakeCO2 struct {
	// Samples contains scripted readings in ppm; the last sample repeats.
	Samples []int

	// ReadError, if set, is returned by CO2.
	ReadError error

	// Calls counts CO2 calls, including failed ones.
	Calls int

	// Closed tracks if Close was called
	Closed bool

	index int
}

// NewFakeCO2 creates a FakeCO2 with the given samples.
func NewFakeCO2(samples ...int) *FakeCO2 {
	return &FakeCO2{Samples: samples}
}

// SetSamples replaces the scripted readings and rewinds to the first one.
func (f *FakeCO2) SetSamples(samples ...int) {
	f.Samples = samples
	f.index = 0
}

// CO2 returns the next scripted reading.
func (f *FakeCO2) CO2() (int, error) {
	f.Calls++

	if f.ReadError != nil {
		return 0, f.ReadError
	}
	if len(f.Samples) == 0 {
		return 0, errors.New("no samples configured")
	}

	v := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return v, nil
}

// Close marks the meter as closed.
func (f *FakeCO2) Close() error {
	f.Closed = true
	return nil
}
