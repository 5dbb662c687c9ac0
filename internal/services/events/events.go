// Package events mirrors public room activity onto NATS so other services
// (dashboards, moderation, analytics) can follow rooms without joining them.
// Private data such as card values is never published.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	RoomCreated  = "created"
	RoomDeleted  = "deleted"
	RoundStarted = "round-started"
	HostChanged  = "host-changed"

	DefaultSubjectPrefix = "liarbar"
)

type Event struct {
	RoomID string    `json:"roomId"`
	Type   string    `json:"type"`
	At     time.Time `json:"at"`
	Data   any       `json:"data,omitempty"`
}

// Publisher is fire-and-forget: failures are logged, never returned to
// the caller handling a command.
type Publisher interface {
	Publish(roomID, eventType string, data any)
	Healthy() error
	Close()
}

// Subject returns "<prefix>.room.<roomID>.<eventType>".
func Subject(prefix, roomID, eventType string) string {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return fmt.Sprintf("%s.room.%s.%s", prefix, roomID, eventType)
}

type nopPublisher struct{}

func NewNop() Publisher { return nopPublisher{} }

func (nopPublisher) Publish(string, string, any) {}
func (nopPublisher) Healthy() error              { return nil }
func (nopPublisher) Close()                      {}

type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
	log    *zap.Logger
	now    func() time.Time
}

// Connect dials url; reconnects forever in the background afterwards.
func Connect(url, prefix string, logger *zap.Logger) (*NATSPublisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.Named("events")

	conn, err := nats.Connect(url,
		nats.Name("liarbar"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("nats disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	log.Info("nats connected", zap.String("url", conn.ConnectedUrl()))

	return &NATSPublisher{conn: conn, prefix: prefix, log: log, now: time.Now}, nil
}

func (p *NATSPublisher) Publish(roomID, eventType string, data any) {
	body, err := json.Marshal(Event{RoomID: roomID, Type: eventType, At: p.now().UTC(), Data: data})
	if err != nil {
		p.log.Error("encode event", zap.String("room", roomID), zap.String("type", eventType), zap.Error(err))
		return
	}
	subject := Subject(p.prefix, roomID, eventType)
	if err := p.conn.Publish(subject, body); err != nil {
		p.log.Warn("publish event", zap.String("subject", subject), zap.Error(err))
	}
}

func (p *NATSPublisher) Healthy() error {
	if status := p.conn.Status(); status != nats.CONNECTED {
		return fmt.Errorf("nats connection is %s", status)
	}
	return nil
}

// Close flushes pending events before closing.
func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.log.Warn("drain nats", zap.Error(err))
	}
}
