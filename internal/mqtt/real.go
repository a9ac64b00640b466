package mqtt

import (
	"errors"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

const (
	bufferCapacity = 256
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

// RealPublisher publishes to an actual MQTT broker. While the connection is
// down, messages are buffered and replayed in order on reconnect.
type RealPublisher struct {
	client paho.Client
	log    zerolog.Logger

	mu       sync.Mutex
	buf      *ringBuffer[bufferedMsg]
	flushing bool
}

// NewRealPublisher creates a publisher for the given broker. If the broker is
// not reachable within the connect timeout the publisher is still returned and
// keeps retrying in the background.
func NewRealPublisher(broker, clientID string, log zerolog.Logger) (*RealPublisher, error) {
	p := newPublisher(nil, log)

	will, err := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "LWT"})
	if err != nil {
		return nil, fmt.Errorf("format will payload: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetBinaryWill(TopicSystem, will, 1, true).
		SetOnConnectHandler(func(paho.Client) {
			log.Info().Str("broker", broker).Msg("mqtt connected")
			p.flush()
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Warn().Err(err).Msg("mqtt connection lost")
		})

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		log.Warn().Str("broker", broker).Msg("mqtt broker not reachable yet, buffering")
		return p, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

func newPublisher(client paho.Client, log zerolog.Logger) *RealPublisher {
	return &RealPublisher{
		client: client,
		log:    log,
		buf:    newRingBuffer[bufferedMsg](bufferCapacity),
	}
}

// Publish sends an actuator event to the MQTT broker.
func (p *RealPublisher) Publish(event Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	// QoS 0 (at-most-once), not retained
	return p.publish(bufferedMsg{topic: Topic, payload: payload})
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	// QoS 1 (at-least-once) for lifecycle events
	return p.publish(bufferedMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
}

// publish sends msg directly only when connected with nothing queued ahead
// of it; otherwise it queues msg so delivery order is preserved.
func (p *RealPublisher) publish(msg bufferedMsg) error {
	p.mu.Lock()
	connected := p.client.IsConnectionOpen()
	if connected && !p.flushing && p.buf.len() == 0 {
		p.mu.Unlock()
		return p.send(msg)
	}
	firstDrop := p.buf.push(msg)
	replay := connected && !p.flushing
	p.mu.Unlock()

	if firstDrop {
		p.log.Warn().Int("capacity", bufferCapacity).Msg("mqtt buffer full, dropping oldest")
	}
	if replay {
		p.flush()
	}
	return nil
}

func (p *RealPublisher) send(msg bufferedMsg) error {
	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	if !token.WaitTimeout(publishTimeout) {
		return errors.New("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", msg.topic, err)
	}
	return nil
}

// flush replays buffered messages, oldest first, until the buffer stays
// empty. Messages queued while a replay is running are sent by that replay.
func (p *RealPublisher) flush() {
	p.mu.Lock()
	if p.flushing {
		p.mu.Unlock()
		return
	}
	p.flushing = true
	p.mu.Unlock()

	replayed := 0
	for {
		p.mu.Lock()
		msgs := p.buf.drain()
		if len(msgs) == 0 {
			p.flushing = false
			p.mu.Unlock()
			break
		}
		p.mu.Unlock()

		for _, msg := range msgs {
			if err := p.send(msg); err != nil {
				p.log.Error().Err(err).Msg("replay buffered message")
			}
		}
		replayed += len(msgs)
	}

	if replayed > 0 {
		p.log.Info().Int("count", replayed).Msg("replayed buffered messages")
	}
}

// Buffered returns the number of messages waiting for a connection.
func (p *RealPublisher) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.len()
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second quiesce
	return nil
}
