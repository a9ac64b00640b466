package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/sweeney/smart-room/internal/gpio"
	"github.com/sweeney/smart-room/internal/room"
	"github.com/sweeney/smart-room/internal/sensor"
	"github.com/sweeney/smart-room/internal/servo"
)

func TestThermometerGauge(t *testing.T) {
	m := New()
	th := m.Thermometer(sensor.NewFakeThermometer(21.5))

	v, err := th.Temperature()
	if err != nil || v != 21.5 {
		t.Fatalf("expected (21.5, nil), got (%v, %v)", v, err)
	}
	if got := testutil.ToFloat64(m.temperature); got != 21.5 {
		t.Errorf("temperature gauge: got %v", got)
	}
}

func TestCollaboratorErrors(t *testing.T) {
	m := New()
	sentinel := errors.New("boom")

	fakeTherm := sensor.NewFakeThermometer(20)
	fakeTherm.ReadError = sentinel
	if _, err := m.Thermometer(fakeTherm).Temperature(); !errors.Is(err, sentinel) {
		t.Errorf("thermometer: expected sentinel, got %v", err)
	}

	fakeCO2 := sensor.NewFakeCO2(600)
	fakeCO2.ReadError = sentinel
	if _, err := m.CO2Sensor(fakeCO2).CO2(); !errors.Is(err, sentinel) {
		t.Errorf("co2: expected sentinel, got %v", err)
	}

	fakeServo := servo.NewFakeServo()
	fakeServo.Error = sentinel
	if err := m.Servo(fakeServo).ChangeAngle(room.AngleOpen); !errors.Is(err, sentinel) {
		t.Errorf("servo: expected sentinel, got %v", err)
	}

	for _, c := range []string{"thermometer", "co2", "servo"} {
		if got := testutil.ToFloat64(m.collabErrors.WithLabelValues(c)); got != 1 {
			t.Errorf("%s errors: got %v, want 1", c, got)
		}
	}
	if got := testutil.ToFloat64(m.writes.WithLabelValues("window")); got != 0 {
		t.Errorf("failed servo command should not count as write, got %v", got)
	}
}

func TestDigitalIOWrites(t *testing.T) {
	m := New()
	pins := gpio.NewFakePins()
	pins.SetInput(room.DefaultPins.Infrared, true)
	dio := m.DigitalIO(pins, ActuatorNames(room.DefaultPins))

	dio.Write(room.DefaultPins.LED, true)
	dio.Write(room.DefaultPins.LED, true)
	dio.Write(room.DefaultPins.Fan, false)
	dio.Write(5, true)

	if v, err := dio.Read(room.DefaultPins.Infrared); err != nil || !v {
		t.Errorf("read passthrough: got (%v, %v)", v, err)
	}

	tests := map[string]float64{"light": 2, "fan": 1, "pin5": 1}
	for label, want := range tests {
		if got := testutil.ToFloat64(m.writes.WithLabelValues(label)); got != want {
			t.Errorf("%s writes: got %v, want %v", label, got, want)
		}
	}
	if len(pins.Writes) != 4 {
		t.Errorf("expected 4 underlying writes, got %d", len(pins.Writes))
	}
}

func TestObserveCycleAndOperation(t *testing.T) {
	m := New()

	m.ObserveCycle(room.State{LightOn: true, FanOn: true})
	m.ObserveOperation("window", errors.New("i2c"))
	m.ObserveOperation("light", nil)

	if got := testutil.ToFloat64(m.cycles); got != 1 {
		t.Errorf("cycles: got %v", got)
	}
	if got := testutil.ToFloat64(m.actuator.WithLabelValues("light")); got != 1 {
		t.Errorf("light gauge: got %v", got)
	}
	if got := testutil.ToFloat64(m.actuator.WithLabelValues("window")); got != 0 {
		t.Errorf("window gauge: got %v", got)
	}
	if got := testutil.ToFloat64(m.opErrors.WithLabelValues("window")); got != 1 {
		t.Errorf("window op errors: got %v", got)
	}
	if got := testutil.ToFloat64(m.opErrors.WithLabelValues("light")); got != 0 {
		t.Errorf("light op errors: got %v", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.CO2Sensor(sensor.NewFakeCO2(640)).CO2()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "smartroom_co2_ppm 640") {
		t.Errorf("expected co2 gauge in output, got:\n%s", body)
	}
}

func TestServoWrites(t *testing.T) {
	m := New()
	fake := servo.NewFakeServo()
	sv := m.Servo(fake)

	sv.ChangeAngle(room.AngleOpen)
	sv.ChangeAngle(room.AngleClosed)

	if len(fake.Angles) != 2 || fake.Angles[0] != room.AngleOpen || fake.Angles[1] != room.AngleClosed {
		t.Errorf("angles not passed through: %v", fake.Angles)
	}
	if got := testutil.ToFloat64(m.writes.WithLabelValues("window")); got != 2 {
		t.Errorf("window writes: got %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.collabErrors.WithLabelValues("servo")); got != 0 {
		t.Errorf("servo errors: got %v, want 0", got)
	}
}
