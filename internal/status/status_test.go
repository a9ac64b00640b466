package status

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/smart-room/internal/room"
)

var testStart = time.Date(2026, 2, 2, 22, 0, 0, 0, time.UTC)

func testConfig() Config {
	return Config{
		PollMs:      1000,
		HeartbeatMs: 900000,
		Broker:      "tcp://localhost:1883",
		HTTPAddr:    ":8080",
		Pins:        room.DefaultPins,
		ServoPin:    18,
	}
}

func TestNewTracker(t *testing.T) {
	tr := NewTracker(testStart, "abc", testConfig())
	snap := tr.Snapshot()

	if snap.Ready() {
		t.Error("tracker should not be ready before the first cycle")
	}
	if snap.State != (room.State{}) {
		t.Errorf("expected zero state, got %+v", snap.State)
	}
	if snap.InstanceID != "abc" {
		t.Errorf("unexpected instance id: %s", snap.InstanceID)
	}
	if snap.StartTime != testStart {
		t.Errorf("unexpected start time: %v", snap.StartTime)
	}
}

func TestRecordCycle(t *testing.T) {
	tr := NewTracker(testStart, "abc", testConfig())

	next := room.State{LightOn: true, FanOn: true}
	tr.RecordCycle(CycleResult{
		State:  next,
		Events: room.Diff(room.State{}, next),
	}, testStart.Add(time.Second))

	snap := tr.Snapshot()
	if !snap.Ready() || snap.Cycles != 1 {
		t.Errorf("expected 1 cycle, got %d", snap.Cycles)
	}
	if snap.State != next {
		t.Errorf("expected state %+v, got %+v", next, snap.State)
	}
	if snap.Counts.LightOn != 1 || snap.Counts.FanOn != 1 || snap.Counts.WindowOpen != 0 {
		t.Errorf("unexpected counts: %+v", snap.Counts)
	}
	if snap.LastError != "" {
		t.Errorf("unexpected last error: %s", snap.LastError)
	}
}

func TestRecordCycleCountsAllEventTypes(t *testing.T) {
	tr := NewTracker(testStart, "abc", testConfig())

	on := room.State{LightOn: true, WindowOpen: true, FanOn: true}
	tr.RecordCycle(CycleResult{State: on, Events: room.Diff(room.State{}, on)}, testStart)
	tr.RecordCycle(CycleResult{State: room.State{}, Events: room.Diff(on, room.State{})}, testStart)

	want := EventCounts{LightOn: 1, LightOff: 1, WindowOpen: 1, WindowClosed: 1, FanOn: 1, FanOff: 1}
	if got := tr.Snapshot().Counts; got != want {
		t.Errorf("counts: got %+v, want %+v", got, want)
	}
}

func TestRecordCycleErrors(t *testing.T) {
	tr := NewTracker(testStart, "abc", testConfig())
	at := testStart.Add(5 * time.Second)

	tr.RecordCycle(CycleResult{
		WindowErr: errors.New("thermometer: i2c timeout"),
		AirErr:    errors.New("co2: short read"),
	}, at)

	snap := tr.Snapshot()
	if snap.Errors != (ErrorCounts{Window: 1, Air: 1}) {
		t.Errorf("unexpected error counts: %+v", snap.Errors)
	}
	if snap.LastError != "thermometer: i2c timeout" {
		t.Errorf("expected first error in cycle order, got %q", snap.LastError)
	}
	if !snap.LastErrorAt.Equal(at) {
		t.Errorf("unexpected last error time: %v", snap.LastErrorAt)
	}

	// A clean cycle keeps the last error for display.
	tr.RecordCycle(CycleResult{}, at.Add(time.Second))
	if tr.Snapshot().LastError == "" {
		t.Error("last error should persist across clean cycles")
	}
}

func TestCycleResultErr(t *testing.T) {
	light := errors.New("light")
	air := errors.New("air")

	if err := (CycleResult{}).Err(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if err := (CycleResult{LightErr: light, AirErr: air}).Err(); err != light {
		t.Errorf("expected light error, got %v", err)
	}
	if err := (CycleResult{AirErr: air}).Err(); err != air {
		t.Errorf("expected air error, got %v", err)
	}
}

func TestDueHeartbeat(t *testing.T) {
	tr := NewTracker(testStart, "abc", testConfig())
	interval := time.Minute

	if tr.DueHeartbeat(testStart.Add(30*time.Second), interval) {
		t.Error("heartbeat should not be due before the interval")
	}
	if !tr.DueHeartbeat(testStart.Add(time.Minute), interval) {
		t.Error("heartbeat should be due at the interval")
	}
	if tr.DueHeartbeat(testStart.Add(90*time.Second), interval) {
		t.Error("interval should restart after a heartbeat")
	}
	if !tr.DueHeartbeat(testStart.Add(2*time.Minute), interval) {
		t.Error("heartbeat should be due again")
	}
}

func TestDueHeartbeatDisabled(t *testing.T) {
	tr := NewTracker(testStart, "abc", testConfig())
	if tr.DueHeartbeat(testStart.Add(time.Hour), 0) {
		t.Error("zero interval should disable heartbeats")
	}
}

func TestSetMQTTConnected(t *testing.T) {
	tr := NewTracker(testStart, "abc", testConfig())
	tr.SetMQTTConnected(true)
	if !tr.Snapshot().MQTTConnected {
		t.Error("expected MQTT connected")
	}
	tr.SetMQTTConnected(false)
	if tr.Snapshot().MQTTConnected {
		t.Error("expected MQTT disconnected")
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	tr := NewTracker(testStart, "abc", testConfig())
	snap := tr.Snapshot()

	tr.RecordCycle(CycleResult{State: room.State{FanOn: true}}, testStart)

	if snap.State.FanOn || snap.Cycles != 0 {
		t.Error("earlier snapshot should not change")
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(testStart, "abc", testConfig())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.RecordCycle(CycleResult{State: room.State{LightOn: j%2 == 0}}, testStart)
				tr.SetMQTTConnected(j%2 == 0)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = tr.Snapshot()
				_ = tr.DueHeartbeat(testStart.Add(time.Duration(j)*time.Second), time.Second)
			}
		}()
	}
	wg.Wait()

	if got := tr.Snapshot().Cycles; got != 1000 {
		t.Errorf("expected 1000 cycles, got %d", got)
	}
}

func fixedSnapshot() Snapshot {
	return Snapshot{
		State:         room.State{LightOn: true, WindowOpen: true},
		Cycles:        42,
		Counts:        EventCounts{LightOn: 2, LightOff: 1, WindowOpen: 1},
		Errors:        ErrorCounts{Air: 3},
		LastError:     "co2: sensor status 0x0004",
		LastErrorAt:   time.Date(2026, 2, 2, 22, 5, 0, 0, time.UTC),
		StartTime:     testStart,
		Now:           testStart.Add(3*time.Minute + 500*time.Millisecond),
		InstanceID:    "3f2c9a4e-1b7d-4c2e-9a61-0d5b8e7f6a21",
		MQTTConnected: true,
		Config:        testConfig(),
	}
}

func TestFormatJSON(t *testing.T) {
	data := FormatJSON(fixedSnapshot())

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, data)
	}
	s := parsed.Status

	if s.Event != "" || s.Reason != "" {
		t.Errorf("web status should carry no event: %+v", s)
	}
	if s.Light != "ON" || s.Window != "OPEN" || s.Fan != "OFF" {
		t.Errorf("unexpected actuator states: %s %s %s", s.Light, s.Window, s.Fan)
	}
	if !s.Ready || s.Cycles != 42 {
		t.Errorf("unexpected readiness: ready=%v cycles=%d", s.Ready, s.Cycles)
	}
	if s.UptimeSeconds != 180 {
		t.Errorf("expected 180s uptime, got %d", s.UptimeSeconds)
	}
	if s.StartTime != "2026-02-02T22:00:00Z" {
		t.Errorf("unexpected start time: %s", s.StartTime)
	}
	if !s.MQTT.Connected || s.MQTT.Broker != "tcp://localhost:1883" {
		t.Errorf("unexpected mqtt: %+v", s.MQTT)
	}
	if s.Counts.LightOn != 2 || s.Counts.LightOff != 1 || s.Counts.WindowOpen != 1 {
		t.Errorf("unexpected counts: %+v", s.Counts)
	}
	if s.Errors.Air != 3 || s.Errors.LastAt != "2026-02-02T22:05:00Z" {
		t.Errorf("unexpected errors: %+v", s.Errors)
	}
	want := PinsJSON{Infrared: 17, Photoresistor: 23, LED: 27, Fan: 22, Servo: 18}
	if s.Config.Pins != want {
		t.Errorf("pins: got %+v, want %+v", s.Config.Pins, want)
	}
}

func TestFormatJSONOmitsEmptyLastError(t *testing.T) {
	snap := fixedSnapshot()
	snap.LastError = ""
	snap.LastErrorAt = time.Time{}

	data := string(FormatJSON(snap))
	if strings.Contains(data, "last_at") || strings.Contains(data, `"last"`) {
		t.Errorf("expected no last error fields: %s", data)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	data := FormatStatusEvent(fixedSnapshot(), "SHUTDOWN", "SIGTERM")

	if strings.Contains(string(data), "\n") {
		t.Error("MQTT payload should be compact")
	}

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.Event != "SHUTDOWN" || parsed.Status.Reason != "SIGTERM" {
		t.Errorf("unexpected event/reason: %s/%s", parsed.Status.Event, parsed.Status.Reason)
	}
	if parsed.Status.InstanceID != "3f2c9a4e-1b7d-4c2e-9a61-0d5b8e7f6a21" {
		t.Errorf("unexpected instance id: %s", parsed.Status.InstanceID)
	}
}

func TestOnOffOpenClosed(t *testing.T) {
	if OnOff(true) != "ON" || OnOff(false) != "OFF" {
		t.Error("OnOff mismatch")
	}
	if OpenClosed(true) != "OPEN" || OpenClosed(false) != "CLOSED" {
		t.Error("OpenClosed mismatch")
	}
}
