package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"dresscutur/backend/internal/domain"
	"dresscutur/backend/internal/store"
)

// MaxRangeDays bounds a busy-dates query.
const MaxRangeDays = 366

var ErrCalendarUnavailable = errors.New("calendar unavailable")

// notifyTimeout bounds a booking notification once it is detached from the
// request.
const notifyTimeout = 30 * time.Second

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

type Notifier interface {
	BookingReceived(ctx context.Context, ev domain.Event) error
}

type Options struct {
	Hours           domain.BusinessHours
	Location        *time.Location
	DefaultDuration time.Duration
	Notifier        Notifier
	Logger          *slog.Logger
	Now             func() time.Time
}

type Service struct {
	events   store.EventRepository
	closures store.ClosureRepository

	hours           domain.BusinessHours
	loc             *time.Location
	defaultDuration time.Duration
	notifier        Notifier
	log             *slog.Logger
	now             func() time.Time

	notifications sync.WaitGroup
}

func NewService(events store.EventRepository, closures store.ClosureRepository, opts Options) *Service {
	s := &Service{
		events:          events,
		closures:        closures,
		hours:           opts.Hours,
		loc:             opts.Location,
		defaultDuration: opts.DefaultDuration,
		notifier:        opts.Notifier,
		log:             opts.Logger,
		now:             opts.Now,
	}
	if s.hours == (domain.BusinessHours{}) {
		s.hours = domain.DefaultBusinessHours()
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.defaultDuration <= 0 {
		s.defaultDuration = time.Hour
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	s.log = s.log.With(slog.String("component", "service.booking"))
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *Service) Hours() domain.BusinessHours {
	return s.hours
}

func (s *Service) Location() *time.Location {
	return s.loc
}

// Today is midnight of the current day in the atelier's location.
func (s *Service) Today() time.Time {
	return domain.StartOfDay(s.now().In(s.loc))
}

// localDay reinterprets the calendar date of t in the atelier's location.
func (s *Service) localDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc)
}

// BusyDates reports occupancy for every date from start to end inclusive.
func (s *Service) BusyDates(ctx context.Context, start, end time.Time) ([]domain.BusyDate, error) {
	if start.IsZero() || end.IsZero() {
		return nil, validationError("start and end are required")
	}
	first := s.localDay(start)
	last := s.localDay(end)
	if last.Before(first) {
		return nil, validationError("end must not be before start")
	}
	if last.Sub(first) > MaxRangeDays*24*time.Hour {
		return nil, validationError(fmt.Sprintf("range must not exceed %d days", MaxRangeDays))
	}

	events, err := s.occupancy(ctx, first, last.AddDate(0, 0, 1))
	if err != nil {
		s.log.Error("calendar load failed", slog.Any("err", err), slog.Time("start", first), slog.Time("end", last))
		return nil, fmt.Errorf("%w: %w", ErrCalendarUnavailable, err)
	}

	return domain.ComputeBusyDates(events, first, last)
}

// occupancy merges stored events and expanded closures within [start, end).
func (s *Service) occupancy(ctx context.Context, start, end time.Time) ([]domain.Event, error) {
	events, err := s.events.ListActive(ctx, start, end)
	if err != nil {
		return nil, err
	}
	series, err := s.closures.ListStartingBefore(ctx, end)
	if err != nil {
		return nil, err
	}
	for _, cs := range series {
		occs, err := domain.GenerateWeeklyClosures(cs, start, end)
		if err != nil {
			return nil, fmt.Errorf("closure %s: %w", cs.ID, err)
		}
		for _, o := range occs {
			events = append(events, o.AsEvent())
		}
	}
	return events, nil
}

// Slots lists the free start times for date. Dates that cannot be selected
// yield an empty list.
func (s *Service) Slots(ctx context.Context, date time.Time) ([]string, error) {
	if date.IsZero() {
		return nil, validationError("date is required")
	}
	day := s.localDay(date)
	busy, err := s.BusyDates(ctx, day, day)
	if err != nil {
		return nil, err
	}
	if !domain.IsDateSelectable(day, busy, s.Today(), s.hours) {
		return []string{}, nil
	}
	return domain.AvailableTimeSlotsForDate(day, busy, s.hours), nil
}

type BookInput struct {
	ClientName  string
	ClientEmail string
	ClientPhone string
	Category    string
	Notes       string
	Date        time.Time
	// Time is the slot label, "H:MM" or "HH:MM". Required unless AllDay.
	Time           string
	AllDay         bool
	Duration       time.Duration
	IdempotencyKey string
}

func (s *Service) Book(ctx context.Context, in BookInput) (domain.Event, error) {
	name := strings.TrimSpace(in.ClientName)
	if name == "" {
		return domain.Event{}, validationError("client_name is required")
	}
	email := strings.TrimSpace(in.ClientEmail)
	phone := strings.TrimSpace(in.ClientPhone)
	if email == "" && phone == "" {
		return domain.Event{}, validationError("client_email or client_phone is required")
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		return domain.Event{}, validationError("category is required")
	}
	if in.Date.IsZero() {
		return domain.Event{}, validationError("date is required")
	}

	day := s.localDay(in.Date)

	var id uuid.UUID
	if key := strings.TrimSpace(in.IdempotencyKey); key != "" {
		if len(key) > 256 {
			return domain.Event{}, validationError("idempotency_key too long")
		}
		id = uuid.NewSHA1(uuid.NameSpaceOID, []byte("dresscutur:book:"+key))
		existing, err := s.events.Get(ctx, id)
		switch {
		case err == nil:
			if existing.ClientName != name || !s.localDay(existing.StartTime.In(s.loc)).Equal(day) {
				return domain.Event{}, store.ErrConflict
			}
			return existing, nil
		case !errors.Is(err, store.ErrNotFound):
			return domain.Event{}, err
		}
	}

	busy, err := s.BusyDates(ctx, day, day)
	if err != nil {
		return domain.Event{}, err
	}
	if !domain.IsDateSelectable(day, busy, s.Today(), s.hours) {
		return domain.Event{}, validationError("date is not available")
	}

	ev := domain.Event{
		ID:          id,
		Title:       category + " - " + name,
		ClientName:  name,
		ClientEmail: email,
		ClientPhone: phone,
		Category:    category,
		Notes:       strings.TrimSpace(in.Notes),
		Status:      domain.EventStatusPending,
	}

	if in.AllDay {
		if _, taken := domain.FindBusyDate(day, busy); taken {
			return domain.Event{}, store.ErrSlotTaken
		}
		ev.AllDay = true
		ev.StartTime = day.UTC()
		ev.EndTime = day.AddDate(0, 0, 1).UTC()
	} else {
		if strings.TrimSpace(in.Time) == "" {
			return domain.Event{}, validationError("time is required")
		}
		hour, minute, err := domain.ParseSlotLabel(strings.TrimSpace(in.Time))
		if err != nil {
			return domain.Event{}, validationError(err.Error())
		}
		if hour < s.hours.OpenHour || hour >= s.hours.CloseHour {
			return domain.Event{}, validationError("time is outside business hours")
		}
		if !s.onSlotGrid(hour, minute) {
			return domain.Event{}, validationError("time must be a listed slot")
		}

		duration := in.Duration
		if duration == 0 {
			duration = s.defaultDuration
		}
		if duration < 0 {
			return domain.Event{}, validationError("duration must be positive")
		}

		y, m, d := day.Date()
		start := time.Date(y, m, d, hour, minute, 0, 0, s.loc)
		end := start.Add(duration)
		if end.After(time.Date(y, m, d, s.hours.CloseHour, 0, 0, 0, s.loc)) {
			return domain.Event{}, validationError("booking must end by closing time")
		}
		if start.Before(s.now()) {
			return domain.Event{}, validationError("time has already passed")
		}
		if !slices.Contains(domain.AvailableTimeSlotsForDate(day, busy, s.hours), domain.SlotLabel(hour, minute)) {
			return domain.Event{}, store.ErrSlotTaken
		}
		ev.StartTime = start.UTC()
		ev.EndTime = end.UTC()
	}

	created, err := s.events.CreateBooking(ctx, ev, day)
	if err != nil {
		return domain.Event{}, err
	}

	s.log.Info(
		"booking created",
		slog.String("event_id", created.ID.String()),
		slog.String("category", created.Category),
		slog.Time("start_time", created.StartTime),
		slog.Bool("all_day", created.AllDay),
	)

	s.notify(ctx, created)

	return created, nil
}

// onSlotGrid reports whether hour:minute is a slot start counted from opening.
func (s *Service) onSlotGrid(hour, minute int) bool {
	step := s.hours.SlotDuration
	if step <= 0 {
		step = time.Hour
	}
	offset := time.Duration(hour-s.hours.OpenHour)*time.Hour + time.Duration(minute)*time.Minute
	return offset%step == 0
}

// notify sends the confirmation in the background so a slow provider cannot
// hold the request open after the booking is stored.
func (s *Service) notify(ctx context.Context, ev domain.Event) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	s.notifications.Add(1)
	go func() {
		defer s.notifications.Done()
		defer cancel()
		if err := s.notifier.BookingReceived(ctx, ev); err != nil {
			s.log.Warn("booking notification failed", slog.Any("err", err), slog.String("event_id", ev.ID.String()))
		}
	}()
}

// Wait blocks until notifications already started have finished.
func (s *Service) Wait() {
	s.notifications.Wait()
}
