// Package service publishes seat events derived from executed commands to
// RabbitMQ. Publishing never interrupts command processing: failures are
// logged and the command stream carries on.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/akvarun/PassFlow/internal/command"
	"github.com/akvarun/PassFlow/internal/queue"
)

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends seat events to a durable queue. It dials lazily and
// redials after a failed publish. It is safe for concurrent use.
type Publisher struct {
	url    string
	queue  string
	source string
	logger *log.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   channel
	dial func() (channel, error)

	now   func() time.Time
	newID func() string
}

// NewPublisher returns a publisher for queue on the broker at url. source
// tags every event ("batch" or "http").
func NewPublisher(url, queueName, source string, logger *log.Logger) *Publisher {
	p := &Publisher{
		url:    url,
		queue:  queueName,
		source: source,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  func() string { return uuid.NewString() },
	}
	p.dial = p.dialBroker
	return p
}

func (p *Publisher) dialBroker() (channel, error) {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("channel open: %w", err)
	}
	// idempotent; durable so events survive broker restarts
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("queue declare: %w", err)
	}
	p.conn = conn
	return ch, nil
}

// Publish sends ev as a persistent JSON message.
func (p *Publisher) Publish(ctx context.Context, ev queue.SeatEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil {
		ch, err := p.dial()
		if err != nil {
			return err
		}
		p.ch = ch
	}
	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID,
		Type:         ev.Type,
		Timestamp:    p.now(),
		Body:         body,
	})
	if err != nil {
		p.resetLocked()
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Observe publishes the events of one executed command. It implements
// command.Observer.
func (p *Publisher) Observe(ctx context.Context, out command.Outcome) {
	for _, ev := range Events(out, p.source, p.now(), p.newID) {
		if err := p.Publish(ctx, ev); err != nil {
			p.logger.Errorf("publisher: %s user=%d seat=%d: %v", ev.Type, ev.UserID, ev.SeatID, err)
		}
	}
}

// Close releases the broker connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()
	return nil
}

func (p *Publisher) resetLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// Events converts an outcome into seat events: releases first, then
// assignments, each in the order the engine performed them.
func Events(out command.Outcome, source string, at time.Time, newID func() string) []queue.SeatEvent {
	if len(out.Released)+len(out.Assigned) == 0 {
		return nil
	}
	ts := at.Format(time.RFC3339Nano)
	cmd := out.Command.String()
	evs := make([]queue.SeatEvent, 0, len(out.Released)+len(out.Assigned))
	for _, r := range out.Released {
		evs = append(evs, queue.SeatEvent{
			EventID: newID(), Type: queue.SeatReleased, UserID: r.UserID, SeatID: r.SeatID,
			Source: source, Command: cmd, OccurredAt: ts,
		})
	}
	for _, r := range out.Assigned {
		evs = append(evs, queue.SeatEvent{
			EventID: newID(), Type: queue.SeatAssigned, UserID: r.UserID, SeatID: r.SeatID,
			Source: source, Command: cmd, OccurredAt: ts,
		})
	}
	return evs
}
