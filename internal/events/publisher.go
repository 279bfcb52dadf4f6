// Package events publishes a dispatch event to Kafka for each completed
// invocation. Publishing is strictly best effort; a broker outage never
// touches the user-facing result.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/foundrgate/foundrgate/internal/commands"
	"github.com/foundrgate/foundrgate/internal/config"
)

// DispatchEvent is the wire envelope, one per completed invocation.
type DispatchEvent struct {
	InvocationID string    `json:"invocation_id"`
	Command      string    `json:"command"`
	Action       string    `json:"action,omitempty"`
	UserID       string    `json:"user_id"`
	Outcome      string    `json:"outcome"`
	At           time.Time `json:"at"`
}

// messageWriter is the slice of kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher emits dispatch events.
type Publisher struct {
	writer messageWriter
	log    *slog.Logger
}

func (p *Publisher) logger() *slog.Logger {
	if p.log != nil {
		return p.log
	}
	return slog.Default()
}

// NewPublisher builds a Kafka-backed publisher, or nil when events are
// disabled in config.
func NewPublisher(cfg config.EventsConfig, log *slog.Logger) *Publisher {
	if !cfg.Enabled || strings.TrimSpace(cfg.Brokers) == "" {
		return nil
	}
	if log == nil {
		log = slog.Default()
	}
	brokers := strings.Split(cfg.Brokers, ",")
	for i := range brokers {
		brokers[i] = strings.TrimSpace(brokers[i])
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 100 * time.Millisecond,
	}
	return &Publisher{writer: writer, log: log}
}

// Close flushes and closes the underlying writer. Nil-safe.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}

// DispatchCompleted publishes one event; failures are logged and dropped.
// Nil-safe so a disabled publisher can be passed around directly.
func (p *Publisher) DispatchCompleted(ctx context.Context, c commands.Completion) {
	if p == nil {
		return
	}
	event := DispatchEvent{
		InvocationID: c.ID,
		Command:      c.Command,
		Action:       c.Action,
		UserID:       c.UserID,
		Outcome:      string(c.Outcome),
		At:           c.At,
	}
	value, err := json.Marshal(event)
	if err != nil {
		p.logger().Warn("event marshal failed", "id", c.ID, "error", err)
		return
	}
	msg := kafka.Message{
		Key:   []byte(c.UserID),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger().Warn("event publish failed", "id", c.ID, "error", err)
	}
}
