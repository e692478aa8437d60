// Package events announces record changes on NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// DefaultSubjectPrefix is prepended to "<kind>.<action>".
const DefaultSubjectPrefix = "testbench.records"

// Action is what happened to a record.
type Action string

const (
	Created Action = "created"
	Updated Action = "updated"
	Deleted Action = "deleted"
)

// RecordEvent is the JSON payload of every published message.
type RecordEvent struct {
	Kind   string    `json:"kind"`
	Action Action    `json:"action"`
	ID     uuid.UUID `json:"id"`
	At     time.Time `json:"at"`
}

// Publisher is implemented by every event sink. Publish never fails the
// caller; delivery problems are logged.
type Publisher interface {
	Publish(ctx context.Context, ev RecordEvent)
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, RecordEvent) {}

func (Nop) Close() error { return nil }

// conn is the part of *nats.Conn the publisher needs.
type conn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// NATSPublisher publishes events as core NATS messages.
type NATSPublisher struct {
	conn   conn
	prefix string
	logger *zap.Logger
}

// Connect dials url and returns a publisher that sends on
// "<prefix>.<kind>.<action>".
func Connect(url, prefix string, logger *zap.Logger) (*NATSPublisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	nc, err := nats.Connect(url,
		nats.Name("testbench"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return newNATSPublisher(nc, prefix, logger), nil
}

func newNATSPublisher(c conn, prefix string, logger *zap.Logger) *NATSPublisher {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATSPublisher{conn: c, prefix: prefix, logger: logger}
}

// Subject returns the subject an event is published on.
func (p *NATSPublisher) Subject(ev RecordEvent) string {
	return fmt.Sprintf("%s.%s.%s", p.prefix, ev.Kind, ev.Action)
}

func (p *NATSPublisher) Publish(ctx context.Context, ev RecordEvent) {
	if err := ctx.Err(); err != nil {
		p.logger.Warn("event dropped", zap.String("kind", ev.Kind), zap.Error(err))
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		p.logger.Error("failed to encode event", zap.Error(err))
		return
	}

	subject := p.Subject(ev)
	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Warn("failed to publish event",
			zap.String("subject", subject),
			zap.Stringer("id", ev.ID),
			zap.Error(err))
	}
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}
