// Package mqtt publishes controller events to an MQTT broker, with an
// abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/sweeney/smart-room/internal/room"
)

// Topic is the MQTT topic for actuator transition events.
const Topic = "home/room/controller/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "home/room/controller/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends an actuator event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// Event is a timestamped actuator transition.
type Event struct {
	Timestamp time.Time
	Type      room.EventType
	State     room.State
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Room RoomPayload `json:"room"`
}

// RoomPayload contains the event details and the resulting actuator states.
type RoomPayload struct {
	Timestamp string        `json:"timestamp"`
	Event     string        `json:"event"`
	Light     ActuatorState `json:"light"`
	Window    ActuatorState `json:"window"`
	Fan       ActuatorState `json:"fan"`
}

// ActuatorState represents a single actuator's state.
type ActuatorState struct {
	State string `json:"state"`
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

func openClosed(open bool) string {
	if open {
		return "OPEN"
	}
	return "CLOSED"
}

// FormatPayload creates the JSON payload for an actuator event.
func FormatPayload(event Event) ([]byte, error) {
	payload := Payload{
		Room: RoomPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(event.Type),
			Light:     ActuatorState{State: onOff(event.State.LightOn)},
			Window:    ActuatorState{State: openClosed(event.State.WindowOpen)},
			Fan:       ActuatorState{State: onOff(event.State.FanOn)},
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// NewInstanceID returns a random identifier for this process.
func NewInstanceID() string {
	return uuid.NewString()
}

// ClientID derives a broker client id from an instance id, so two daemons
// on the same broker never kick each other off.
func ClientID(instanceID string) string {
	id := instanceID
	if u, err := uuid.Parse(instanceID); err == nil {
		id = u.String()
	}
	if len(id) > 8 {
		id = id[:8]
	}
	return "smart-room-" + id
}
