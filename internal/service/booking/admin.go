package booking

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"dresscutur/backend/internal/domain"
	"dresscutur/backend/internal/store"
)

const maxListLimit = 500

type EventInput struct {
	Title       string
	ClientName  string
	ClientEmail string
	ClientPhone string
	Category    string
	Notes       string
	StartTime   time.Time
	EndTime     time.Time
	AllDay      bool
	// Status defaults to confirmed for events entered from the back office.
	Status string
}

func (s *Service) ListEvents(ctx context.Context, filter store.EventFilter) ([]domain.Event, error) {
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, validationError("limit and offset must not be negative")
	}
	if filter.Limit == 0 || filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, validationError("to must not be before from")
	}
	return s.events.List(ctx, filter)
}

func (s *Service) GetEvent(ctx context.Context, id uuid.UUID) (domain.Event, error) {
	if id == uuid.Nil {
		return domain.Event{}, validationError("event_id is required")
	}
	return s.events.Get(ctx, id)
}

func (s *Service) CreateEvent(ctx context.Context, in EventInput) (domain.Event, error) {
	ev, err := s.eventFromInput(in)
	if err != nil {
		return domain.Event{}, err
	}
	created, err := s.events.CreateBooking(ctx, ev, s.localDay(ev.StartTime.In(s.loc)))
	if err != nil {
		return domain.Event{}, err
	}
	s.log.Info("event created", slog.String("event_id", created.ID.String()), slog.String("status", string(created.Status)))
	return created, nil
}

// UpdateEvent replaces every editable field of the event. Overlaps with other
// timed events are rejected by the store.
func (s *Service) UpdateEvent(ctx context.Context, id uuid.UUID, in EventInput) (domain.Event, error) {
	if id == uuid.Nil {
		return domain.Event{}, validationError("event_id is required")
	}
	ev, err := s.eventFromInput(in)
	if err != nil {
		return domain.Event{}, err
	}
	ev.ID = id
	return s.events.Update(ctx, ev)
}

func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	if id == uuid.Nil {
		return validationError("event_id is required")
	}
	st, err := domain.ParseEventStatus(status)
	if err != nil {
		return validationError("invalid status")
	}
	if err := s.events.UpdateStatus(ctx, id, st); err != nil {
		return err
	}
	s.log.Info("event status changed", slog.String("event_id", id.String()), slog.String("status", string(st)))
	return nil
}

func (s *Service) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return validationError("event_id is required")
	}
	return s.events.Delete(ctx, id)
}

func (s *Service) eventFromInput(in EventInput) (domain.Event, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.Event{}, validationError("title is required")
	}

	status := domain.EventStatusConfirmed
	if strings.TrimSpace(in.Status) != "" {
		st, err := domain.ParseEventStatus(in.Status)
		if err != nil {
			return domain.Event{}, validationError("invalid status")
		}
		status = st
	}

	if in.StartTime.IsZero() {
		return domain.Event{}, validationError("start_time is required")
	}

	ev := domain.Event{
		Title:       title,
		ClientName:  strings.TrimSpace(in.ClientName),
		ClientEmail: strings.TrimSpace(in.ClientEmail),
		ClientPhone: strings.TrimSpace(in.ClientPhone),
		Category:    strings.TrimSpace(in.Category),
		Notes:       strings.TrimSpace(in.Notes),
		AllDay:      in.AllDay,
		Status:      status,
	}

	if in.AllDay {
		day := domain.StartOfDay(in.StartTime.In(s.loc))
		ev.StartTime = day.UTC()
		ev.EndTime = day.AddDate(0, 0, 1).UTC()
		return ev, nil
	}

	start := in.StartTime.UTC()
	end := in.EndTime.UTC()
	if !end.After(start) {
		return domain.Event{}, validationError("end_time must be after start_time")
	}
	if end.Sub(start) > 24*time.Hour {
		return domain.Event{}, validationError("duration too long")
	}
	ev.StartTime = start
	ev.EndTime = end
	return ev, nil
}

type ClosureInput struct {
	Title     string
	TimeZone  string
	StartTime time.Time
	EndTime   time.Time
	AllDay    bool
	Interval  int
	ByWeekday []int16
	Until     *time.Time
	Count     *int
}

func (s *Service) CreateClosure(ctx context.Context, in ClosureInput) (domain.ClosureSeries, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.ClosureSeries{}, validationError("title is required")
	}

	tz := strings.TrimSpace(in.TimeZone)
	if tz == "" {
		tz = s.loc.String()
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return domain.ClosureSeries{}, validationError("invalid time_zone")
	}

	if in.StartTime.IsZero() {
		return domain.ClosureSeries{}, validationError("start_time is required")
	}
	start := in.StartTime.UTC()
	end := in.EndTime.UTC()
	if in.AllDay {
		start = domain.StartOfDay(in.StartTime.In(loc)).UTC()
		end = start.Add(24 * time.Hour)
	}
	if !end.After(start) {
		return domain.ClosureSeries{}, validationError("end_time must be after start_time")
	}
	if end.Sub(start) > 24*time.Hour {
		return domain.ClosureSeries{}, validationError("duration too long")
	}

	interval := in.Interval
	if interval == 0 {
		interval = 1
	}
	if interval < 1 {
		return domain.ClosureSeries{}, validationError("interval must be at least 1")
	}

	weekdays := in.ByWeekday
	if len(weekdays) == 0 {
		wd := int16(start.In(loc).Weekday())
		if wd == 0 {
			wd = 7
		}
		weekdays = []int16{wd}
	}
	normalized := make([]int16, 0, len(weekdays))
	for _, wd := range weekdays {
		if wd < 1 || wd > 7 {
			return domain.ClosureSeries{}, validationError("invalid weekday")
		}
		if !slices.Contains(normalized, wd) {
			normalized = append(normalized, wd)
		}
	}
	slices.Sort(normalized)

	var until *time.Time
	if in.Until != nil {
		u := in.Until.UTC()
		if u.Before(start) {
			return domain.ClosureSeries{}, validationError("until must be after start_time")
		}
		until = &u
	}
	var count *int
	if in.Count != nil {
		c := *in.Count
		if c < 1 {
			return domain.ClosureSeries{}, validationError("count must be at least 1")
		}
		count = &c
	}

	series := domain.ClosureSeries{
		Title:           title,
		Timezone:        tz,
		DTStart:         start,
		DurationSeconds: int(end.Sub(start) / time.Second),
		Interval:        interval,
		ByWeekday:       normalized,
		Until:           until,
		Count:           count,
		AllDay:          in.AllDay,
	}

	created, err := s.closures.Create(ctx, series)
	if err != nil {
		return domain.ClosureSeries{}, err
	}
	s.log.Info("closure created", slog.String("closure_id", created.ID.String()), slog.String("title", created.Title))
	return created, nil
}

func (s *Service) ListClosures(ctx context.Context) ([]domain.ClosureSeries, error) {
	return s.closures.List(ctx)
}

func (s *Service) DeleteClosure(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return validationError("closure_id is required")
	}
	return s.closures.Delete(ctx, id)
}
