package domain

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func at(day string, hour int) time.Time {
	d, err := time.ParseInLocation("2006-01-02", day, time.UTC)
	if err != nil {
		panic(err)
	}
	return d.Add(time.Duration(hour) * time.Hour)
}

func timed(day string, startHour, endHour int) Event {
	return Event{StartTime: at(day, startHour), EndTime: at(day, endHour), Status: EventStatusConfirmed}
}

func allDay(day string) Event {
	return Event{StartTime: at(day, 0), EndTime: at(day, 24), AllDay: true, Status: EventStatusConfirmed}
}

func TestComputeBusyDates_GroupsSameDateInEncounterOrder(t *testing.T) {
	events := []Event{
		timed("2024-06-10", 14, 15),
		timed("2024-06-10", 10, 11),
	}

	got, err := ComputeBusyDates(events, at("2024-06-01", 0), at("2024-06-30", 0))
	if err != nil {
		t.Fatalf("ComputeBusyDates error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1", len(got))
	}
	if !got[0].Date.Equal(at("2024-06-10", 0)) {
		t.Fatalf("date = %v, want 2024-06-10", got[0].Date)
	}
	if got[0].IsFullDay {
		t.Fatalf("expected partial day")
	}
	if len(got[0].TimeSlots) != 2 {
		t.Fatalf("len(slots) = %d, want 2", len(got[0].TimeSlots))
	}
	if got[0].TimeSlots[0].Start.Hour() != 14 || got[0].TimeSlots[1].Start.Hour() != 10 {
		t.Fatalf("slots reordered: %+v", got[0].TimeSlots)
	}
}

func TestComputeBusyDates_AllDayDominatesInEitherOrder(t *testing.T) {
	orders := map[string][]Event{
		"all-day first": {allDay("2024-06-11"), timed("2024-06-11", 12, 13)},
		"all-day last":  {timed("2024-06-11", 12, 13), allDay("2024-06-11")},
	}

	for name, events := range orders {
		t.Run(name, func(t *testing.T) {
			got, err := ComputeBusyDates(events, at("2024-06-01", 0), at("2024-06-30", 0))
			if err != nil {
				t.Fatalf("ComputeBusyDates error: %v", err)
			}
			if len(got) != 1 || !got[0].IsFullDay {
				t.Fatalf("got %+v, want one full day", got)
			}
		})
	}
}

func TestComputeBusyDates_EmptyInput(t *testing.T) {
	got, err := ComputeBusyDates(nil, at("2024-06-01", 0), at("2024-06-30", 0))
	if err != nil {
		t.Fatalf("ComputeBusyDates error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("got %#v, want empty non-nil slice", got)
	}
}

func TestComputeBusyDates_IsDeterministic(t *testing.T) {
	events := []Event{
		timed("2024-06-12", 11, 12),
		allDay("2024-06-13"),
		timed("2024-06-10", 10, 11),
		timed("2024-06-12", 16, 17),
	}
	start, end := at("2024-06-01", 0), at("2024-06-30", 0)

	first, err := ComputeBusyDates(events, start, end)
	if err != nil {
		t.Fatalf("ComputeBusyDates error: %v", err)
	}
	second, err := ComputeBusyDates(events, start, end)
	if err != nil {
		t.Fatalf("ComputeBusyDates error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("results differ:\n%+v\n%+v", first, second)
	}
	if !first[0].Date.Equal(at("2024-06-12", 0)) || !first[2].Date.Equal(at("2024-06-10", 0)) {
		t.Fatalf("dates not in first-seen order: %+v", first)
	}
}

func TestComputeBusyDates_SkipsInactiveAndOutOfRange(t *testing.T) {
	cancelled := timed("2024-06-10", 10, 11)
	cancelled.Status = EventStatusCancelled
	completed := timed("2024-06-10", 11, 12)
	completed.Status = EventStatusCompleted

	events := []Event{
		cancelled,
		completed,
		timed("2024-05-31", 10, 11),
		timed("2024-07-01", 10, 11),
		timed("2024-06-30", 18, 19),
	}

	got, err := ComputeBusyDates(events, at("2024-06-01", 0), at("2024-06-30", 0))
	if err != nil {
		t.Fatalf("ComputeBusyDates error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1: %+v", len(got), got)
	}
	if !got[0].Date.Equal(at("2024-06-30", 0)) {
		t.Fatalf("date = %v, want 2024-06-30 (range end is inclusive by day)", got[0].Date)
	}
}

func TestComputeBusyDates_KeysByRangeLocation(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Fatalf("LoadLocation error: %v", err)
	}

	// 23:30 UTC on the 10th is already the 11th in Paris.
	ev := Event{
		StartTime: time.Date(2024, 6, 10, 23, 30, 0, 0, time.UTC),
		EndTime:   time.Date(2024, 6, 11, 0, 30, 0, 0, time.UTC),
		Status:    EventStatusPending,
	}
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, paris)
	end := time.Date(2024, 6, 30, 0, 0, 0, 0, paris)

	got, err := ComputeBusyDates([]Event{ev}, start, end)
	if err != nil {
		t.Fatalf("ComputeBusyDates error: %v", err)
	}
	want := time.Date(2024, 6, 11, 0, 0, 0, 0, paris)
	if len(got) != 1 || !got[0].Date.Equal(want) {
		t.Fatalf("got %+v, want date %v", got, want)
	}
}

func TestComputeBusyDates_InvalidRange(t *testing.T) {
	_, err := ComputeBusyDates(nil, at("2024-06-30", 0), at("2024-06-01", 0))
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("error = %v, want %v", err, ErrInvalidRange)
	}
}

func TestIsDateSelectable(t *testing.T) {
	hours := DefaultBusinessHours()
	today := at("2024-06-10", 15)
	busy := []BusyDate{
		{Date: at("2024-06-12", 0), IsFullDay: true},
		{Date: at("2024-06-13", 0), TimeSlots: []TimeSlot{{Start: at("2024-06-13", 10), End: at("2024-06-13", 11)}}},
	}

	tests := []struct {
		name string
		date time.Time
		want bool
	}{
		{name: "yesterday", date: at("2024-06-09", 0), want: false},
		{name: "long ago", date: at("2023-01-02", 0), want: false},
		{name: "today", date: at("2024-06-10", 0), want: true},
		{name: "tomorrow", date: at("2024-06-11", 0), want: true},
		{name: "full day", date: at("2024-06-12", 0), want: false},
		{name: "partially booked", date: at("2024-06-13", 0), want: true},
		{name: "sunday", date: at("2024-06-16", 0), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDateSelectable(tt.date, busy, today, hours); got != tt.want {
				t.Fatalf("IsDateSelectable(%s) = %v, want %v", tt.date.Format("2006-01-02"), got, tt.want)
			}
		})
	}
}

func TestIsDateSelectable_SundayRegardlessOfBookings(t *testing.T) {
	hours := DefaultBusinessHours()
	today := at("2024-06-01", 0)
	for _, day := range []string{"2024-06-02", "2024-06-09", "2024-06-16", "2024-06-23", "2024-06-30"} {
		if IsDateSelectable(at(day, 0), nil, today, hours) {
			t.Fatalf("%s is a Sunday and must not be selectable", day)
		}
	}
}

func TestAvailableTimeSlotsForDate_FreeDay(t *testing.T) {
	got := AvailableTimeSlotsForDate(at("2024-06-10", 0), nil, DefaultBusinessHours())
	want := []string{"10:00", "11:00", "12:00", "13:00", "14:00", "15:00", "16:00", "17:00", "18:00"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestAvailableTimeSlotsForDate_FullDayIsEmpty(t *testing.T) {
	busy := []BusyDate{{
		Date:      at("2024-06-10", 0),
		IsFullDay: true,
		TimeSlots: []TimeSlot{{Start: at("2024-06-10", 10), End: at("2024-06-10", 11)}},
	}}
	got := AvailableTimeSlotsForDate(at("2024-06-10", 0), busy, DefaultBusinessHours())
	if len(got) != 0 {
		t.Fatalf("got %v, want no slots", got)
	}
}

func TestAvailableTimeSlotsForDate_RemovesOccupiedHour(t *testing.T) {
	busy := []BusyDate{{
		Date:      at("2024-06-10", 0),
		TimeSlots: []TimeSlot{{Start: at("2024-06-10", 14), End: at("2024-06-10", 15)}},
	}}
	got := AvailableTimeSlotsForDate(at("2024-06-10", 0), busy, DefaultBusinessHours())
	want := []string{"10:00", "11:00", "12:00", "13:00", "15:00", "16:00", "17:00", "18:00"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestAvailableTimeSlotsForDate_InvertedHoursYieldNoSlots(t *testing.T) {
	for _, hours := range []BusinessHours{
		{OpenHour: 19, CloseHour: 10, SlotDuration: time.Hour},
		{OpenHour: 12, CloseHour: 12, SlotDuration: time.Hour},
	} {
		got := AvailableTimeSlotsForDate(at("2024-06-10", 0), nil, hours)
		if got == nil || len(got) != 0 {
			t.Fatalf("hours %+v: got %#v, want empty non-nil slice", hours, got)
		}
	}
}

func TestAvailableTimeSlotsForDate_OtherDatesDoNotInterfere(t *testing.T) {
	busy := []BusyDate{{Date: at("2024-06-11", 0), IsFullDay: true}}
	got := AvailableTimeSlotsForDate(at("2024-06-10", 0), busy, DefaultBusinessHours())
	if len(got) != 9 {
		t.Fatalf("len(got) = %d, want 9", len(got))
	}
}

func TestAvailabilityScenario(t *testing.T) {
	events := []Event{
		timed("2024-06-10", 10, 11),
		timed("2024-06-10", 14, 15),
	}

	busy, err := ComputeBusyDates(events, at("2024-06-10", 0), at("2024-06-10", 0))
	if err != nil {
		t.Fatalf("ComputeBusyDates error: %v", err)
	}
	wantBusy := []BusyDate{{
		Date: at("2024-06-10", 0),
		TimeSlots: []TimeSlot{
			{Start: at("2024-06-10", 10), End: at("2024-06-10", 11)},
			{Start: at("2024-06-10", 14), End: at("2024-06-10", 15)},
		},
	}}
	if !reflect.DeepEqual(busy, wantBusy) {
		t.Fatalf("busy = %+v, want %+v", busy, wantBusy)
	}

	got := AvailableTimeSlotsForDate(at("2024-06-10", 0), busy, BusinessHours{OpenHour: 10, CloseHour: 19, SlotDuration: time.Hour})
	want := []string{"11:00", "12:00", "13:00", "15:00", "16:00", "17:00", "18:00"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("slots = %v, want %v", got, want)
	}
}

func TestBusinessHoursValidate(t *testing.T) {
	if err := DefaultBusinessHours().Validate(); err != nil {
		t.Fatalf("default hours invalid: %v", err)
	}
	bad := []BusinessHours{
		{OpenHour: 19, CloseHour: 10, SlotDuration: time.Hour},
		{OpenHour: -1, CloseHour: 10, SlotDuration: time.Hour},
		{OpenHour: 10, CloseHour: 25, SlotDuration: time.Hour},
		{OpenHour: 10, CloseHour: 19},
	}
	for _, h := range bad {
		if err := h.Validate(); err == nil {
			t.Fatalf("expected error for %+v", h)
		}
	}
}

func TestParseSlotLabel(t *testing.T) {
	for in, want := range map[string][2]int{"9:00": {9, 0}, "14:00": {14, 0}, "09:30": {9, 30}} {
		h, m, err := ParseSlotLabel(in)
		if err != nil {
			t.Fatalf("ParseSlotLabel(%q) error: %v", in, err)
		}
		if h != want[0] || m != want[1] {
			t.Fatalf("ParseSlotLabel(%q) = %d:%d, want %d:%d", in, h, m, want[0], want[1])
		}
	}
	if _, _, err := ParseSlotLabel("noon"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestParseEventStatus(t *testing.T) {
	st, err := ParseEventStatus(" Confirmed ")
	if err != nil || st != EventStatusConfirmed {
		t.Fatalf("ParseEventStatus = %q, %v", st, err)
	}
	if _, err := ParseEventStatus("archived"); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("error = %v, want %v", err, ErrUnknownStatus)
	}
	for _, st := range ActiveEventStatuses {
		if !st.Occupies() {
			t.Fatalf("%s must occupy time", st)
		}
	}
	if EventStatusCancelled.Occupies() || EventStatusCompleted.Occupies() {
		t.Fatalf("cancelled and completed events must not occupy time")
	}
}
