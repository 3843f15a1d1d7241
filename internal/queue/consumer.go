package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/labstack/gommon/log"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Sink stores one seat event.
type Sink interface {
	Record(ctx context.Context, ev SeatEvent) error
}

// AuditConsumer drains the seat event queue into one or more sinks.
type AuditConsumer struct {
	url    string
	queue  string
	logger *log.Logger
	sinks  []Sink
}

// NewAuditConsumer returns a consumer for queue on the broker at url.
func NewAuditConsumer(url, queue string, logger *log.Logger, sinks ...Sink) *AuditConsumer {
	return &AuditConsumer{url: url, queue: queue, logger: logger, sinks: sinks}
}

// Run connects to the broker and consumes until ctx is done, reconnecting
// with exponential backoff when the connection drops. It returns ctx.Err().
func (c *AuditConsumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.logger.Warnf("audit-consumer: dial broker: %v; retrying in %s", err, backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warnf("audit-consumer: consume loop ended: %v; reconnecting", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *AuditConsumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.logger.Warnf("audit-consumer: set QoS: %v", err)
	}
	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.Handle(ctx, d.Body); err != nil {
				c.logger.Errorf("audit-consumer: handle message: %v", err)
				_ = d.Nack(false, false) // do not requeue poison messages
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Handle decodes one message body and hands it to every sink.
func (c *AuditConsumer) Handle(ctx context.Context, body []byte) error {
	var ev SeatEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	for _, s := range c.sinks {
		if err := s.Record(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// FileSink appends one line per event to <Dir>/seat_events.log.
type FileSink struct {
	Dir string
	mu  sync.Mutex
}

// Record writes ev as a single human-readable line.
func (s *FileSink) Record(_ context.Context, ev SeatEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", s.Dir, err)
	}
	f, err := os.OpenFile(filepath.Join(s.Dir, "seat_events.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatLine(ev)); err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// FormatLine renders ev as it appears in the audit log.
func FormatLine(ev SeatEvent) string {
	return fmt.Sprintf("[%s] %s | event_id=%s | user_id=%d | seat_id=%d | source=%s | command=%q\n",
		ev.OccurredAt, ev.Type, ev.EventID, ev.UserID, ev.SeatID, ev.Source, ev.Command)
}
