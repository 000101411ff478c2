package domain

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidRange = errors.New("range end must not be before range start")

// TimeSlot is one occupied interval within a day.
type TimeSlot struct {
	Start time.Time
	End   time.Time
}

// BusyDate summarizes occupancy for one calendar date. TimeSlots is only
// meaningful when IsFullDay is false.
type BusyDate struct {
	Date      time.Time
	IsFullDay bool
	TimeSlots []TimeSlot
}

// BusinessHours describes when bookings can start. Slot starts run from
// OpenHour up to, but excluding, CloseHour.
type BusinessHours struct {
	OpenHour      int
	CloseHour     int
	SlotDuration  time.Duration
	ClosedWeekday time.Weekday
}

func DefaultBusinessHours() BusinessHours {
	return BusinessHours{
		OpenHour:      10,
		CloseHour:     19,
		SlotDuration:  time.Hour,
		ClosedWeekday: time.Sunday,
	}
}

func (h BusinessHours) Validate() error {
	if h.OpenHour < 0 || h.OpenHour > 23 {
		return errors.New("open hour must be between 0 and 23")
	}
	if h.CloseHour <= h.OpenHour || h.CloseHour > 24 {
		return errors.New("close hour must be after open hour and at most 24")
	}
	if h.SlotDuration <= 0 {
		return errors.New("slot duration must be positive")
	}
	if h.ClosedWeekday < time.Sunday || h.ClosedWeekday > time.Saturday {
		return errors.New("invalid closed weekday")
	}
	return nil
}

type dayKey struct {
	year  int
	month time.Month
	day   int
}

func keyOf(t time.Time) dayKey {
	y, m, d := t.Date()
	return dayKey{year: y, month: m, day: d}
}

func (k dayKey) before(o dayKey) bool {
	if k.year != o.year {
		return k.year < o.year
	}
	if k.month != o.month {
		return k.month < o.month
	}
	return k.day < o.day
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ComputeBusyDates groups events by the calendar date of their start, in the
// location of rangeStart. Events outside the range or in a status that does not
// occupy time are ignored. An all-day event marks its date full for good; other
// events append their interval in encounter order.
func ComputeBusyDates(events []Event, rangeStart, rangeEnd time.Time) ([]BusyDate, error) {
	loc := rangeStart.Location()
	first := keyOf(rangeStart)
	last := keyOf(rangeEnd.In(loc))
	if last.before(first) {
		return nil, ErrInvalidRange
	}

	out := make([]BusyDate, 0, len(events))
	index := make(map[dayKey]int, len(events))

	for _, ev := range events {
		if !ev.Status.Occupies() {
			continue
		}
		start := ev.StartTime.In(loc)
		k := keyOf(start)
		if k.before(first) || last.before(k) {
			continue
		}

		i, ok := index[k]
		if !ok {
			out = append(out, BusyDate{Date: StartOfDay(start)})
			i = len(out) - 1
			index[k] = i
		}

		if ev.AllDay {
			out[i].IsFullDay = true
			continue
		}
		out[i].TimeSlots = append(out[i].TimeSlots, TimeSlot{Start: start, End: ev.EndTime.In(loc)})
	}

	return out, nil
}

// FindBusyDate returns the entry for date's calendar day, if any.
func FindBusyDate(date time.Time, busyDates []BusyDate) (BusyDate, bool) {
	k := keyOf(date)
	for _, bd := range busyDates {
		if keyOf(bd.Date.In(date.Location())) == k {
			return bd, true
		}
	}
	return BusyDate{}, false
}

// IsDateSelectable reports whether a booking may be placed on date. Past days,
// the closed weekday and fully booked days are not selectable; today is.
func IsDateSelectable(date time.Time, busyDates []BusyDate, today time.Time, hours BusinessHours) bool {
	if keyOf(date).before(keyOf(today.In(date.Location()))) {
		return false
	}
	if date.Weekday() == hours.ClosedWeekday {
		return false
	}
	if bd, ok := FindBusyDate(date, busyDates); ok && bd.IsFullDay {
		return false
	}
	return true
}

// AvailableTimeSlotsForDate lists the free slot labels ("H:MM", no leading zero)
// for date within business hours. A candidate is taken when a recorded slot
// starts in the same hour.
func AvailableTimeSlotsForDate(date time.Time, busyDates []BusyDate, hours BusinessHours) []string {
	bd, found := FindBusyDate(date, busyDates)
	if (found && bd.IsFullDay) || hours.CloseHour <= hours.OpenHour {
		return []string{}
	}

	occupied := make(map[int]struct{})
	if found {
		for _, s := range bd.TimeSlots {
			occupied[s.Start.In(date.Location()).Hour()] = struct{}{}
		}
	}

	step := hours.SlotDuration
	if step <= 0 {
		step = time.Hour
	}

	out := make([]string, 0, hours.CloseHour-hours.OpenHour)
	for m := time.Duration(hours.OpenHour) * time.Hour; m < time.Duration(hours.CloseHour)*time.Hour; m += step {
		h := int(m / time.Hour)
		if _, taken := occupied[h]; taken {
			continue
		}
		out = append(out, SlotLabel(h, int((m%time.Hour)/time.Minute)))
	}
	return out
}

func SlotLabel(hour, minute int) string {
	return fmt.Sprintf("%d:%02d", hour, minute)
}

// ParseSlotLabel accepts "H:MM" or "HH:MM".
func ParseSlotLabel(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q", s)
	}
	return t.Hour(), t.Minute(), nil
}
