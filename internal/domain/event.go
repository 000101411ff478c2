package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type EventStatus string

const (
	EventStatusPending   EventStatus = "pending"
	EventStatusConfirmed EventStatus = "confirmed"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

var ErrUnknownStatus = errors.New("unknown event status")

// ActiveEventStatuses lists the statuses that occupy calendar time.
var ActiveEventStatuses = []EventStatus{EventStatusPending, EventStatusConfirmed}

func ParseEventStatus(s string) (EventStatus, error) {
	switch st := EventStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case EventStatusPending, EventStatusConfirmed, EventStatusCompleted, EventStatusCancelled:
		return st, nil
	}
	return "", ErrUnknownStatus
}

// Occupies reports whether an event in this status blocks availability.
func (s EventStatus) Occupies() bool {
	return s == EventStatusPending || s == EventStatusConfirmed
}

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID          uuid.UUID   `bun:"id,pk,type:uuid"`
	Title       string      `bun:"title,notnull"`
	ClientName  string      `bun:"client_name,notnull"`
	ClientEmail string      `bun:"client_email"`
	ClientPhone string      `bun:"client_phone"`
	Category    string      `bun:"category"`
	Notes       string      `bun:"notes"`
	StartTime   time.Time   `bun:"start_time,notnull"`
	EndTime     time.Time   `bun:"end_time,notnull"`
	AllDay      bool        `bun:"all_day,notnull"`
	Status      EventStatus `bun:"status,notnull"`
	CreatedAt   time.Time   `bun:"created_at,notnull"`
	UpdatedAt   time.Time   `bun:"updated_at,notnull"`
}

func (e *Event) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	return stamp(query, &e.ID, &e.CreatedAt, &e.UpdatedAt)
}
