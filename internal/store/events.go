package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"dresscutur/backend/internal/domain"
)

type EventFilter struct {
	From     *time.Time
	To       *time.Time
	Status   *domain.EventStatus
	Category string
	Limit    int
	Offset   int
}

type EventRepository interface {
	// ListActive returns occupying events starting within [start, end).
	ListActive(ctx context.Context, start, end time.Time) ([]domain.Event, error)
	List(ctx context.Context, filter EventFilter) ([]domain.Event, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Event, error)
	// CreateBooking inserts ev unless it occupies time and collides with an
	// occupying event or closure on the same day. Collisions return ErrSlotTaken.
	CreateBooking(ctx context.Context, ev domain.Event, day time.Time) (domain.Event, error)
	Update(ctx context.Context, ev domain.Event) (domain.Event, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.EventStatus) error
	Delete(ctx context.Context, id uuid.UUID) error

	CompletePast(ctx context.Context, now time.Time) (int64, error)
	CancelStalePending(ctx context.Context, createdBefore, now time.Time) (int64, error)
}

type ClosureRepository interface {
	Create(ctx context.Context, series domain.ClosureSeries) (domain.ClosureSeries, error)
	List(ctx context.Context) ([]domain.ClosureSeries, error)
	// ListStartingBefore returns series whose dtstart is before end.
	ListStartingBefore(ctx context.Context, end time.Time) ([]domain.ClosureSeries, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
