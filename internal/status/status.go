// Package status provides a thread-safe status tracker for the smart-room daemon.
// It is read by the HTTP handlers and by heartbeat/lifecycle publishing.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/smart-room/internal/room"
)

// Config contains daemon configuration for display.
type Config struct {
	PollMs      int64
	HeartbeatMs int64
	Broker      string
	HTTPAddr    string
	ConfigFile  string
	Pins        room.Pins
	ServoPin    int
}

// EventCounts tracks the number of each actuator transition since startup.
type EventCounts struct {
	LightOn      int
	LightOff     int
	WindowOpen   int
	WindowClosed int
	FanOn        int
	FanOff       int
}

func (c *EventCounts) add(t room.EventType) {
	switch t {
	case room.EventLightOn:
		c.LightOn++
	case room.EventLightOff:
		c.LightOff++
	case room.EventWindowOpen:
		c.WindowOpen++
	case room.EventWindowClosed:
		c.WindowClosed++
	case room.EventFanOn:
		c.FanOn++
	case room.EventFanOff:
		c.FanOff++
	}
}

// ErrorCounts tracks failed management operations since startup.
type ErrorCounts struct {
	Light  int
	Window int
	Air    int
}

// CycleResult is the outcome of one control cycle.
type CycleResult struct {
	State  room.State
	Events []room.Event

	LightErr  error
	WindowErr error
	AirErr    error
}

// Err returns the first operation error in cycle order, or nil.
func (r CycleResult) Err() error {
	for _, err := range []error{r.LightErr, r.WindowErr, r.AirErr} {
		if err != nil {
			return err
		}
	}
	return nil
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	State         room.State
	Cycles        int64
	Counts        EventCounts
	Errors        ErrorCounts
	LastError     string
	LastErrorAt   time.Time
	StartTime     time.Time
	Now           time.Time
	InstanceID    string
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Ready reports whether at least one control cycle has run.
func (s Snapshot) Ready() bool {
	return s.Cycles > 0
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu            sync.RWMutex
	snap          Snapshot
	lastHeartbeat time.Time
}

// NewTracker creates a Tracker with the given start time, instance id and config.
func NewTracker(startTime time.Time, instanceID string, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime:  startTime,
			InstanceID: instanceID,
			Config:     cfg,
		},
		lastHeartbeat: startTime,
	}
}

// RecordCycle folds a cycle result into the tracked state.
// at is the time the cycle ran; it stamps the last error.
func (t *Tracker) RecordCycle(r CycleResult, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.snap.State = r.State
	t.snap.Cycles++
	for _, e := range r.Events {
		t.snap.Counts.add(e.Type)
	}

	if r.LightErr != nil {
		t.snap.Errors.Light++
	}
	if r.WindowErr != nil {
		t.snap.Errors.Window++
	}
	if r.AirErr != nil {
		t.snap.Errors.Air++
	}
	if err := r.Err(); err != nil {
		t.snap.LastError = err.Error()
		t.snap.LastErrorAt = at
	}
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// DueHeartbeat reports whether interval has elapsed since the last heartbeat
// (or startup) and, if so, restarts the interval at now. An interval <= 0
// disables heartbeats.
func (t *Tracker) DueHeartbeat(now time.Time, interval time.Duration) bool {
	if interval <= 0 {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if now.Sub(t.lastHeartbeat) < interval {
		return false
	}
	t.lastHeartbeat = now
	return true
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
