package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/akvarun/PassFlow/internal/model"
	"github.com/akvarun/PassFlow/internal/queue"
)

const seatEventsSchema = `CREATE TABLE IF NOT EXISTS seat_events (
	id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
	event_id    CHAR(36)     NOT NULL,
	type        VARCHAR(32)  NOT NULL,
	user_id     BIGINT       NOT NULL,
	seat_id     BIGINT       NOT NULL,
	source      VARCHAR(16)  NOT NULL,
	command     VARCHAR(255) NOT NULL,
	occurred_at DATETIME(6)  NOT NULL,
	created_at  DATETIME(6)  NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
	UNIQUE KEY uq_seat_events_event_id (event_id),
	KEY idx_seat_events_user (user_id, occurred_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// SeatEventRepo provides access to the seat_events table.
type SeatEventRepo struct {
	db *sqlx.DB
}

// NewSeatEventRepo returns a SeatEventRepo bound to db.
func NewSeatEventRepo(db *sqlx.DB) *SeatEventRepo { return &SeatEventRepo{db: db} }

// EnsureSchema creates the seat_events table when it does not exist.
func (r *SeatEventRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, seatEventsSchema); err != nil {
		return fmt.Errorf("create seat_events: %w", err)
	}
	return nil
}

// Record inserts ev. Redelivered events with an already stored event ID are
// ignored, which makes Record safe to call for every broker delivery.
func (r *SeatEventRepo) Record(ctx context.Context, ev queue.SeatEvent) error {
	rec, err := toRecord(ev)
	if err != nil {
		return err
	}
	_, err = r.db.NamedExecContext(ctx,
		`INSERT IGNORE INTO seat_events (event_id, type, user_id, seat_id, source, command, occurred_at)
		 VALUES (:event_id, :type, :user_id, :seat_id, :source, :command, :occurred_at)`,
		rec,
	)
	if err != nil {
		return fmt.Errorf("insert seat event %s: %w", ev.EventID, err)
	}
	return nil
}

// ListByUser returns up to limit events for userID, newest first.
func (r *SeatEventRepo) ListByUser(ctx context.Context, userID, limit int) ([]model.SeatEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	events := []model.SeatEvent{}
	err := r.db.SelectContext(ctx, &events,
		`SELECT id, event_id, type, user_id, seat_id, source, command, occurred_at, created_at
		   FROM seat_events
		  WHERE user_id = ?
		  ORDER BY occurred_at DESC, id DESC
		  LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list seat events for user %d: %w", userID, err)
	}
	return events, nil
}

func toRecord(ev queue.SeatEvent) (model.SeatEvent, error) {
	if ev.EventID == "" {
		return model.SeatEvent{}, fmt.Errorf("missing event id: %w", ErrInvalidEvent)
	}
	if ev.Type != queue.SeatAssigned && ev.Type != queue.SeatReleased {
		return model.SeatEvent{}, fmt.Errorf("type %q: %w", ev.Type, ErrInvalidEvent)
	}
	at, err := ev.Time()
	if err != nil {
		return model.SeatEvent{}, fmt.Errorf("occurred_at %q: %w", ev.OccurredAt, ErrInvalidEvent)
	}
	cmd := ev.Command
	if len(cmd) > 255 {
		cmd = cmd[:255]
	}
	return model.SeatEvent{
		EventID:    ev.EventID,
		Type:       ev.Type,
		UserID:     int64(ev.UserID),
		SeatID:     int64(ev.SeatID),
		Source:     ev.Source,
		Command:    cmd,
		OccurredAt: at.UTC(),
	}, nil
}
