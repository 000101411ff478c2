package booking

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"dresscutur/backend/internal/domain"
	"dresscutur/backend/internal/store"
)

type fakeEvents struct {
	listActiveFn   func(ctx context.Context, start, end time.Time) ([]domain.Event, error)
	listFn         func(ctx context.Context, filter store.EventFilter) ([]domain.Event, error)
	getFn          func(ctx context.Context, id uuid.UUID) (domain.Event, error)
	createFn       func(ctx context.Context, ev domain.Event, day time.Time) (domain.Event, error)
	updateFn       func(ctx context.Context, ev domain.Event) (domain.Event, error)
	updateStatusFn func(ctx context.Context, id uuid.UUID, status domain.EventStatus) error
	deleteFn       func(ctx context.Context, id uuid.UUID) error
}

func (f *fakeEvents) ListActive(ctx context.Context, start, end time.Time) ([]domain.Event, error) {
	if f.listActiveFn == nil {
		panic("ListActive not configured")
	}
	return f.listActiveFn(ctx, start, end)
}

func (f *fakeEvents) List(ctx context.Context, filter store.EventFilter) ([]domain.Event, error) {
	if f.listFn == nil {
		panic("List not configured")
	}
	return f.listFn(ctx, filter)
}

func (f *fakeEvents) Get(ctx context.Context, id uuid.UUID) (domain.Event, error) {
	if f.getFn == nil {
		panic("Get not configured")
	}
	return f.getFn(ctx, id)
}

func (f *fakeEvents) CreateBooking(ctx context.Context, ev domain.Event, day time.Time) (domain.Event, error) {
	if f.createFn == nil {
		panic("CreateBooking not configured")
	}
	return f.createFn(ctx, ev, day)
}

func (f *fakeEvents) Update(ctx context.Context, ev domain.Event) (domain.Event, error) {
	if f.updateFn == nil {
		panic("Update not configured")
	}
	return f.updateFn(ctx, ev)
}

func (f *fakeEvents) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.EventStatus) error {
	if f.updateStatusFn == nil {
		panic("UpdateStatus not configured")
	}
	return f.updateStatusFn(ctx, id, status)
}

func (f *fakeEvents) Delete(ctx context.Context, id uuid.UUID) error {
	if f.deleteFn == nil {
		panic("Delete not configured")
	}
	return f.deleteFn(ctx, id)
}

func (f *fakeEvents) CompletePast(ctx context.Context, now time.Time) (int64, error) {
	panic("CompletePast not configured")
}

func (f *fakeEvents) CancelStalePending(ctx context.Context, createdBefore, now time.Time) (int64, error) {
	panic("CancelStalePending not configured")
}

type fakeClosures struct {
	createFn func(ctx context.Context, series domain.ClosureSeries) (domain.ClosureSeries, error)
	series   []domain.ClosureSeries
}

func (f *fakeClosures) Create(ctx context.Context, series domain.ClosureSeries) (domain.ClosureSeries, error) {
	if f.createFn == nil {
		panic("Create not configured")
	}
	return f.createFn(ctx, series)
}

func (f *fakeClosures) List(ctx context.Context) ([]domain.ClosureSeries, error) {
	return f.series, nil
}

func (f *fakeClosures) ListStartingBefore(ctx context.Context, end time.Time) ([]domain.ClosureSeries, error) {
	return f.series, nil
}

func (f *fakeClosures) Delete(ctx context.Context, id uuid.UUID) error {
	panic("Delete not configured")
}

type fakeNotifier struct {
	got     []domain.Event
	err     error
	ctxErrs []error
	block   chan struct{}
}

func (f *fakeNotifier) BookingReceived(ctx context.Context, ev domain.Event) error {
	if f.block != nil {
		<-f.block
	}
	f.got = append(f.got, ev)
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	return f.err
}

// Monday 2024-06-10, 12:30 UTC.
var fixedNow = time.Date(2024, 6, 10, 12, 30, 0, 0, time.UTC)

func newTestService(events *fakeEvents, closures *fakeClosures, n Notifier) *Service {
	if closures == nil {
		closures = &fakeClosures{}
	}
	return NewService(events, closures, Options{
		Location: time.UTC,
		Notifier: n,
		Now:      func() time.Time { return fixedNow },
	})
}

func day(d int) time.Time {
	return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC)
}

func eventsReturning(evs ...domain.Event) *fakeEvents {
	return &fakeEvents{
		listActiveFn: func(ctx context.Context, start, end time.Time) ([]domain.Event, error) {
			return evs, nil
		},
	}
}

func assertValidation(t *testing.T, err error, want string) {
	t.Helper()
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error = %v (%T), want *ValidationError", err, err)
	}
	if want != "" && vErr.Error() != want {
		t.Fatalf("error = %q, want %q", vErr.Error(), want)
	}
}

func TestBusyDates_Validation(t *testing.T) {
	svc := newTestService(eventsReturning(), nil, nil)

	_, err := svc.BusyDates(context.Background(), day(12), day(11))
	assertValidation(t, err, "end must not be before start")

	_, err = svc.BusyDates(context.Background(), day(1), day(1).AddDate(1, 1, 0))
	assertValidation(t, err, "range must not exceed 366 days")

	_, err = svc.BusyDates(context.Background(), time.Time{}, day(1))
	assertValidation(t, err, "start and end are required")
}

func TestBusyDates_QueriesWholeDays(t *testing.T) {
	var gotStart, gotEnd time.Time
	svc := newTestService(&fakeEvents{
		listActiveFn: func(ctx context.Context, start, end time.Time) ([]domain.Event, error) {
			gotStart, gotEnd = start, end
			return nil, nil
		},
	}, nil, nil)

	got, err := svc.BusyDates(context.Background(), day(10).Add(15*time.Hour), day(12).Add(9*time.Hour))
	if err != nil {
		t.Fatalf("BusyDates error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("busy dates = %#v, want empty non-nil", got)
	}
	if !gotStart.Equal(day(10)) || !gotEnd.Equal(day(13)) {
		t.Fatalf("window = [%v, %v), want [%v, %v)", gotStart, gotEnd, day(10), day(13))
	}
}

func TestBusyDates_UpstreamFailureIsCalendarUnavailable(t *testing.T) {
	boom := errors.New("connection refused")
	svc := newTestService(&fakeEvents{
		listActiveFn: func(ctx context.Context, start, end time.Time) ([]domain.Event, error) {
			return nil, boom
		},
	}, nil, nil)

	_, err := svc.BusyDates(context.Background(), day(10), day(11))
	if !errors.Is(err, ErrCalendarUnavailable) {
		t.Fatalf("error = %v, want %v", err, ErrCalendarUnavailable)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want to wrap %v", err, boom)
	}
}

func TestBusyDates_IncludesClosures(t *testing.T) {
	lunch := domain.ClosureSeries{
		ID:              uuid.MustParse("00000000-0000-0000-0000-0000000000c1"),
		Title:           "lunch",
		Timezone:        "UTC",
		DTStart:         time.Date(2024, 6, 3, 13, 0, 0, 0, time.UTC),
		DurationSeconds: 3600,
		Interval:        1,
		ByWeekday:       []int16{1},
	}
	svc := newTestService(eventsReturning(), &fakeClosures{series: []domain.ClosureSeries{lunch}}, nil)

	got, err := svc.BusyDates(context.Background(), day(10), day(16))
	if err != nil {
		t.Fatalf("BusyDates error: %v", err)
	}
	if len(got) != 1 || !got[0].Date.Equal(day(10)) || got[0].IsFullDay {
		t.Fatalf("busy dates = %#v, want one partial entry on 2024-06-10", got)
	}
	if len(got[0].TimeSlots) != 1 || got[0].TimeSlots[0].Start.Hour() != 13 {
		t.Fatalf("time slots = %#v, want 13:00 closure", got[0].TimeSlots)
	}
}

func TestSlots(t *testing.T) {
	booked := domain.Event{
		StartTime: day(10).Add(14 * time.Hour),
		EndTime:   day(10).Add(15 * time.Hour),
		Status:    domain.EventStatusConfirmed,
	}
	svc := newTestService(eventsReturning(booked), nil, nil)

	got, err := svc.Slots(context.Background(), day(10))
	if err != nil {
		t.Fatalf("Slots error: %v", err)
	}
	want := []string{"10:00", "11:00", "12:00", "13:00", "15:00", "16:00", "17:00", "18:00"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("slots = %v, want %v", got, want)
	}

	for name, d := range map[string]time.Time{"past": day(9), "sunday": day(16)} {
		t.Run(name, func(t *testing.T) {
			got, err := svc.Slots(context.Background(), d)
			if err != nil {
				t.Fatalf("Slots error: %v", err)
			}
			if got == nil || len(got) != 0 {
				t.Fatalf("slots = %#v, want empty", got)
			}
		})
	}
}

func validBooking() BookInput {
	return BookInput{
		ClientName:  "  Camille  ",
		ClientEmail: "camille@example.com",
		Category:    "alterations",
		Date:        day(11),
		Time:        "14:00",
	}
}

func TestBook_CreatesPendingBookingAndNotifies(t *testing.T) {
	var got domain.Event
	var gotDay time.Time
	events := eventsReturning()
	events.createFn = func(ctx context.Context, ev domain.Event, d time.Time) (domain.Event, error) {
		got, gotDay = ev, d
		ev.ID = uuid.MustParse("00000000-0000-0000-0000-0000000000e1")
		return ev, nil
	}
	n := &fakeNotifier{err: errors.New("smtp down")}
	svc := newTestService(events, nil, n)

	created, err := svc.Book(context.Background(), validBooking())
	if err != nil {
		t.Fatalf("Book error: %v", err)
	}
	if got.Status != domain.EventStatusPending {
		t.Fatalf("status = %q, want pending", got.Status)
	}
	if got.ClientName != "Camille" {
		t.Fatalf("client name = %q, want trimmed", got.ClientName)
	}
	if !got.StartTime.Equal(day(11).Add(14*time.Hour)) || !got.EndTime.Equal(day(11).Add(15*time.Hour)) {
		t.Fatalf("interval = [%v, %v)", got.StartTime, got.EndTime)
	}
	if !gotDay.Equal(day(11)) {
		t.Fatalf("day = %v, want %v", gotDay, day(11))
	}
	svc.Wait()
	if len(n.got) != 1 || n.got[0].ID != created.ID {
		t.Fatalf("notifier calls = %#v", n.got)
	}
}

func TestBook_NotificationOutlivesRequest(t *testing.T) {
	events := eventsReturning()
	events.createFn = func(ctx context.Context, ev domain.Event, d time.Time) (domain.Event, error) {
		return ev, nil
	}
	n := &fakeNotifier{block: make(chan struct{})}
	svc := newTestService(events, nil, n)

	ctx, cancel := context.WithCancel(context.Background())
	if _, err := svc.Book(ctx, validBooking()); err != nil {
		t.Fatalf("Book error: %v", err)
	}
	cancel()
	close(n.block)
	svc.Wait()

	if len(n.ctxErrs) != 1 || n.ctxErrs[0] != nil {
		t.Fatalf("notification context errors = %v, want one live context", n.ctxErrs)
	}
}

func TestBook_UsesWallClockOnDaylightSavingDay(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	var got domain.Event
	events := eventsReturning()
	events.createFn = func(ctx context.Context, ev domain.Event, d time.Time) (domain.Event, error) {
		got = ev
		return ev, nil
	}
	hours := domain.DefaultBusinessHours()
	hours.ClosedWeekday = time.Monday
	svc := NewService(events, &fakeClosures{}, Options{
		Hours:    hours,
		Location: paris,
		Now:      func() time.Time { return time.Date(2024, 3, 25, 9, 0, 0, 0, time.UTC) },
	})

	tests := []struct {
		date      time.Time
		wantStart time.Time
	}{
		{date: time.Date(2024, 3, 31, 0, 0, 0, 0, paris), wantStart: time.Date(2024, 3, 31, 8, 0, 0, 0, time.UTC)},
		{date: time.Date(2024, 10, 27, 0, 0, 0, 0, paris), wantStart: time.Date(2024, 10, 27, 9, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.date.Format(time.DateOnly), func(t *testing.T) {
			if tt.date.Month() == time.October {
				svc.now = func() time.Time { return time.Date(2024, 10, 20, 9, 0, 0, 0, time.UTC) }
			}
			in := validBooking()
			in.Date = tt.date
			in.Time = "10:00"
			if _, err := svc.Book(context.Background(), in); err != nil {
				t.Fatalf("Book error: %v", err)
			}
			if !got.StartTime.Equal(tt.wantStart) {
				t.Fatalf("start = %v, want %v", got.StartTime, tt.wantStart)
			}
			if local := got.StartTime.In(paris); local.Hour() != 10 || local.Minute() != 0 {
				t.Fatalf("local start = %v, want 10:00", local)
			}
			if !got.EndTime.Equal(tt.wantStart.Add(time.Hour)) {
				t.Fatalf("end = %v, want one hour after start", got.EndTime)
			}
		})
	}
}

func TestBook_ClosingBoundOnDaylightSavingDay(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	events := eventsReturning()
	events.createFn = func(ctx context.Context, ev domain.Event, d time.Time) (domain.Event, error) {
		return ev, nil
	}
	hours := domain.DefaultBusinessHours()
	hours.ClosedWeekday = time.Monday
	svc := NewService(events, &fakeClosures{}, Options{
		Hours:    hours,
		Location: paris,
		Now:      func() time.Time { return time.Date(2024, 10, 20, 9, 0, 0, 0, time.UTC) },
	})

	// 2024-10-27 lasts 25 hours in Paris.
	in := validBooking()
	in.Date = time.Date(2024, 10, 27, 0, 0, 0, 0, paris)
	in.Time = "18:00"
	if _, err := svc.Book(context.Background(), in); err != nil {
		t.Fatalf("last slot of the day rejected: %v", err)
	}
}

func TestBook_AllDay(t *testing.T) {
	var got domain.Event
	events := eventsReturning()
	events.createFn = func(ctx context.Context, ev domain.Event, d time.Time) (domain.Event, error) {
		got = ev
		return ev, nil
	}
	svc := newTestService(events, nil, nil)

	in := validBooking()
	in.Time = ""
	in.AllDay = true
	if _, err := svc.Book(context.Background(), in); err != nil {
		t.Fatalf("Book error: %v", err)
	}
	if !got.AllDay || !got.StartTime.Equal(day(11)) || !got.EndTime.Equal(day(12)) {
		t.Fatalf("event = %#v, want all-day on 2024-06-11", got)
	}
}

func TestBook_Rejections(t *testing.T) {
	occupied := domain.Event{
		StartTime: day(11).Add(14 * time.Hour),
		EndTime:   day(11).Add(15 * time.Hour),
		Status:    domain.EventStatusPending,
	}

	tests := []struct {
		name    string
		mutate  func(in *BookInput)
		events  []domain.Event
		wantMsg string
		wantErr error
	}{
		{name: "missing name", mutate: func(in *BookInput) { in.ClientName = " " }, wantMsg: "client_name is required"},
		{name: "no contact", mutate: func(in *BookInput) { in.ClientEmail = "" }, wantMsg: "client_email or client_phone is required"},
		{name: "missing time", mutate: func(in *BookInput) { in.Time = "" }, wantMsg: "time is required"},
		{name: "bad time", mutate: func(in *BookInput) { in.Time = "2pm" }, wantMsg: `invalid time "2pm"`},
		{name: "off the slot grid", mutate: func(in *BookInput) { in.Time = "14:30" }, wantMsg: "time must be a listed slot"},
		{name: "before opening", mutate: func(in *BookInput) { in.Time = "9:00" }, wantMsg: "time is outside business hours"},
		{name: "runs past closing", mutate: func(in *BookInput) { in.Time = "18:00"; in.Duration = 2 * time.Hour }, wantMsg: "booking must end by closing time"},
		{name: "sunday", mutate: func(in *BookInput) { in.Date = day(16) }, wantMsg: "date is not available"},
		{name: "past date", mutate: func(in *BookInput) { in.Date = day(7) }, wantMsg: "date is not available"},
		{name: "earlier today", mutate: func(in *BookInput) { in.Date = day(10); in.Time = "11:00" }, wantMsg: "time has already passed"},
		{name: "occupied hour", events: []domain.Event{occupied}, wantErr: store.ErrSlotTaken},
		{name: "all-day on busy date", mutate: func(in *BookInput) { in.AllDay = true }, events: []domain.Event{occupied}, wantErr: store.ErrSlotTaken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(eventsReturning(tt.events...), nil, nil)
			in := validBooking()
			if tt.mutate != nil {
				tt.mutate(&in)
			}
			_, err := svc.Book(context.Background(), in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			assertValidation(t, err, tt.wantMsg)
		})
	}
}

func TestBook_IdempotencyKeyReplaysExistingBooking(t *testing.T) {
	existing := domain.Event{
		ClientName: "Camille",
		StartTime:  day(11).Add(14 * time.Hour),
		EndTime:    day(11).Add(15 * time.Hour),
		Status:     domain.EventStatusPending,
	}
	var gotID uuid.UUID
	svc := newTestService(&fakeEvents{
		getFn: func(ctx context.Context, id uuid.UUID) (domain.Event, error) {
			gotID = id
			ev := existing
			ev.ID = id
			return ev, nil
		},
	}, nil, nil)

	in := validBooking()
	in.IdempotencyKey = "k1"
	got, err := svc.Book(context.Background(), in)
	if err != nil {
		t.Fatalf("Book error: %v", err)
	}
	want := uuid.NewSHA1(uuid.NameSpaceOID, []byte("dresscutur:book:k1"))
	if gotID != want || got.ID != want {
		t.Fatalf("id = %s, want %s", got.ID, want)
	}

	in.ClientName = "Someone else"
	if _, err := svc.Book(context.Background(), in); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("error = %v, want %v", err, store.ErrConflict)
	}
}

func TestBook_IdempotencyKeyFirstUse(t *testing.T) {
	events := eventsReturning()
	events.getFn = func(ctx context.Context, id uuid.UUID) (domain.Event, error) {
		return domain.Event{}, store.ErrNotFound
	}
	var got domain.Event
	events.createFn = func(ctx context.Context, ev domain.Event, d time.Time) (domain.Event, error) {
		got = ev
		return ev, nil
	}
	svc := newTestService(events, nil, nil)

	in := validBooking()
	in.IdempotencyKey = "k2"
	if _, err := svc.Book(context.Background(), in); err != nil {
		t.Fatalf("Book error: %v", err)
	}
	if got.ID != uuid.NewSHA1(uuid.NameSpaceOID, []byte("dresscutur:book:k2")) {
		t.Fatalf("id = %s, want deterministic id", got.ID)
	}
}
