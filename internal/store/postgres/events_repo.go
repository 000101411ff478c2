package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"dresscutur/backend/internal/domain"
	"dresscutur/backend/internal/store"
)

type EventRepo struct {
	db *bun.DB
}

func NewEventRepo(db *bun.DB) *EventRepo {
	return &EventRepo{db: db}
}

// dayReader is the read side CreateBooking needs inside its transaction.
type dayReader interface {
	ListActive(ctx context.Context, start, end time.Time) ([]domain.Event, error)
	ListClosuresStartingBefore(ctx context.Context, end time.Time) ([]domain.ClosureSeries, error)
}

type bookingTx struct {
	tx bun.Tx
}

func (r *EventRepo) ListActive(ctx context.Context, start, end time.Time) ([]domain.Event, error) {
	return listActive(ctx, r.db, start, end)
}

func listActive(ctx context.Context, db bun.IDB, start, end time.Time) ([]domain.Event, error) {
	var rows []domain.Event
	err := db.NewSelect().
		Model(&rows).
		Where("status IN (?)", bun.In(domain.ActiveEventStatuses)).
		Where("start_time >= ?", start).
		Where("start_time < ?", end).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *EventRepo) List(ctx context.Context, filter store.EventFilter) ([]domain.Event, error) {
	var rows []domain.Event
	q := r.db.NewSelect().Model(&rows)
	if filter.From != nil {
		q = q.Where("start_time >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("start_time < ?", *filter.To)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	if err := q.OrderExpr("start_time DESC").Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *EventRepo) Get(ctx context.Context, id uuid.UUID) (domain.Event, error) {
	var ev domain.Event
	err := r.db.NewSelect().
		Model(&ev).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return domain.Event{}, translateError(err)
	}
	return ev, nil
}

func (r *EventRepo) CreateBooking(ctx context.Context, ev domain.Event, day time.Time) (domain.Event, error) {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockDay(ctx, tx, day); err != nil {
			return err
		}
		if ev.Status.Occupies() {
			if err := ensureSlotFree(ctx, bookingTx{tx: tx}, ev, day); err != nil {
				return err
			}
		}
		_, err := tx.NewInsert().Model(&ev).Exec(ctx)
		return err
	})
	if err != nil {
		return domain.Event{}, translateError(err)
	}
	return ev, nil
}

func lockDay(ctx context.Context, tx bun.Tx, day time.Time) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", "booking:"+day.Format(time.DateOnly)).Exec(ctx)
	return err
}

func (t bookingTx) ListActive(ctx context.Context, start, end time.Time) ([]domain.Event, error) {
	return listActive(ctx, t.tx, start, end)
}

func (t bookingTx) ListClosuresStartingBefore(ctx context.Context, end time.Time) ([]domain.ClosureSeries, error) {
	return listClosuresStartingBefore(ctx, t.tx, end)
}

// ensureSlotFree rejects ev when the day already holds an all-day block, when
// ev is all-day and anything occupies the day, or when intervals overlap.
func ensureSlotFree(ctx context.Context, r dayReader, ev domain.Event, day time.Time) error {
	dayEnd := day.AddDate(0, 0, 1)

	existing, err := r.ListActive(ctx, day, dayEnd)
	if err != nil {
		return err
	}

	series, err := r.ListClosuresStartingBefore(ctx, dayEnd)
	if err != nil {
		return err
	}
	for _, s := range series {
		occs, err := domain.GenerateWeeklyClosures(s, day, dayEnd)
		if err != nil {
			return err
		}
		for _, o := range occs {
			existing = append(existing, o.AsEvent())
		}
	}

	for _, e := range existing {
		if e.ID == ev.ID && ev.ID != uuid.Nil {
			continue
		}
		if e.AllDay || ev.AllDay {
			return store.ErrSlotTaken
		}
		if ev.StartTime.Before(e.EndTime) && e.StartTime.Before(ev.EndTime) {
			return store.ErrSlotTaken
		}
	}
	return nil
}

func (r *EventRepo) Update(ctx context.Context, ev domain.Event) (domain.Event, error) {
	res, err := r.db.NewUpdate().
		Model(&ev).
		WherePK().
		ExcludeColumn("id", "created_at").
		Exec(ctx)
	if err != nil {
		return domain.Event{}, translateError(err)
	}
	if err := requireAffected(res); err != nil {
		return domain.Event{}, err
	}
	return r.Get(ctx, ev.ID)
}

func (r *EventRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.EventStatus) error {
	res, err := r.db.NewUpdate().
		Model((*domain.Event)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return translateError(err)
	}
	return requireAffected(res)
}

func (r *EventRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*domain.Event)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *EventRepo) CompletePast(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.NewUpdate().
		Model((*domain.Event)(nil)).
		Set("status = ?", domain.EventStatusCompleted).
		Set("updated_at = ?", now).
		Where("status = ?", domain.EventStatusConfirmed).
		Where("end_time < ?", now).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *EventRepo) CancelStalePending(ctx context.Context, createdBefore, now time.Time) (int64, error) {
	res, err := r.db.NewUpdate().
		Model((*domain.Event)(nil)).
		Set("status = ?", domain.EventStatusCancelled).
		Set("updated_at = ?", now).
		Where("status = ?", domain.EventStatusPending).
		Where("created_at < ?", createdBefore).
		Where("start_time < ?", now).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
