package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	Light         string     `json:"light"`
	Window        string     `json:"window"`
	Fan           string     `json:"fan"`
	Ready         bool       `json:"ready"`
	Cycles        int64      `json:"cycles"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	InstanceID    string     `json:"instance_id"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"event_counts"`
	Errors        ErrorsJSON `json:"errors"`
	Config        ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	LightOn      int `json:"light_on"`
	LightOff     int `json:"light_off"`
	WindowOpen   int `json:"window_open"`
	WindowClosed int `json:"window_closed"`
	FanOn        int `json:"fan_on"`
	FanOff       int `json:"fan_off"`
}

// ErrorsJSON is the JSON representation of operation failures.
type ErrorsJSON struct {
	Light  int    `json:"light"`
	Window int    `json:"window"`
	Air    int    `json:"air"`
	Last   string `json:"last,omitempty"`
	LastAt string `json:"last_at,omitempty"`
}

// PinsJSON is the JSON representation of the pin assignment.
type PinsJSON struct {
	Infrared      int `json:"infrared"`
	Photoresistor int `json:"photoresistor"`
	LED           int `json:"led"`
	Fan           int `json:"fan"`
	Servo         int `json:"servo"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs      int64    `json:"poll_ms"`
	HeartbeatMs int64    `json:"heartbeat_ms"`
	Broker      string   `json:"broker"`
	HTTPAddr    string   `json:"http_addr"`
	ConfigFile  string   `json:"config_file,omitempty"`
	Pins        PinsJSON `json:"pins"`
}

// OnOff renders a boolean actuator state.
func OnOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

// OpenClosed renders the window state.
func OpenClosed(open bool) string {
	if open {
		return "OPEN"
	}
	return "CLOSED"
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Light:         OnOff(snap.State.LightOn),
		Window:        OpenClosed(snap.State.WindowOpen),
		Fan:           OnOff(snap.State.FanOn),
		Ready:         snap.Ready(),
		Cycles:        snap.Cycles,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		InstanceID:    snap.InstanceID,
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			LightOn:      snap.Counts.LightOn,
			LightOff:     snap.Counts.LightOff,
			WindowOpen:   snap.Counts.WindowOpen,
			WindowClosed: snap.Counts.WindowClosed,
			FanOn:        snap.Counts.FanOn,
			FanOff:       snap.Counts.FanOff,
		},
		Errors: ErrorsJSON{
			Light:  snap.Errors.Light,
			Window: snap.Errors.Window,
			Air:    snap.Errors.Air,
			Last:   snap.LastError,
		},
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			ConfigFile:  snap.Config.ConfigFile,
			Pins: PinsJSON{
				Infrared:      snap.Config.Pins.Infrared,
				Photoresistor: snap.Config.Pins.Photoresistor,
				LED:           snap.Config.Pins.LED,
				Fan:           snap.Config.Pins.Fan,
				Servo:         snap.Config.ServoPin,
			},
		},
	}
	if !snap.LastErrorAt.IsZero() {
		inner.Errors.LastAt = snap.LastErrorAt.UTC().Format(time.RFC3339)
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
