package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ClosureSeries blocks the calendar on a weekly rhythm: lunch breaks, a
// standing fitting day, holidays spanning several weeks.
type ClosureSeries struct {
	bun.BaseModel `bun:"table:closure_series"`

	ID              uuid.UUID  `bun:"id,pk,type:uuid"`
	Title           string     `bun:"title,notnull"`
	Timezone        string     `bun:"timezone,notnull"`
	DTStart         time.Time  `bun:"dtstart,notnull"`
	DurationSeconds int        `bun:"duration_seconds,notnull"`
	Interval        int        `bun:"interval,notnull"`
	ByWeekday       []int16    `bun:"byweekday,array,notnull"`
	Until           *time.Time `bun:"until"`
	Count           *int       `bun:"count"`
	AllDay          bool       `bun:"all_day,notnull"`
	CreatedAt       time.Time  `bun:"created_at,notnull"`
	UpdatedAt       time.Time  `bun:"updated_at,notnull"`
}

func (s *ClosureSeries) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	return stamp(query, &s.ID, &s.CreatedAt, &s.UpdatedAt)
}

type ClosureOccurrence struct {
	SeriesID  uuid.UUID
	Title     string
	StartTime time.Time
	EndTime   time.Time
	AllDay    bool
}

// AsEvent lets an occurrence take part in availability like a confirmed booking.
func (o ClosureOccurrence) AsEvent() Event {
	return Event{
		ID:        o.SeriesID,
		Title:     o.Title,
		StartTime: o.StartTime,
		EndTime:   o.EndTime,
		AllDay:    o.AllDay,
		Status:    EventStatusConfirmed,
	}
}

// GenerateWeeklyClosures expands series into the occurrences overlapping
// [windowStart, windowEnd). Weekdays are ISO numbered, Monday=1 .. Sunday=7.
// Count is honoured from DTStart regardless of the window.
func GenerateWeeklyClosures(series ClosureSeries, windowStart, windowEnd time.Time) ([]ClosureOccurrence, error) {
	if series.DurationSeconds <= 0 {
		return nil, errors.New("invalid duration")
	}
	loc, err := time.LoadLocation(series.Timezone)
	if err != nil {
		return nil, errors.New("invalid time_zone")
	}

	days := make(map[time.Weekday]struct{}, len(series.ByWeekday))
	for _, wd := range series.ByWeekday {
		if wd < 1 || wd > 7 {
			return nil, errors.New("invalid weekday")
		}
		days[time.Weekday(wd%7)] = struct{}{}
	}
	if len(days) == 0 {
		return nil, errors.New("at least one weekday is required")
	}

	interval := series.Interval
	if interval < 1 {
		interval = 1
	}

	dtstart := series.DTStart.In(loc)
	firstMonday := isoMonday(dtstart)
	duration := time.Duration(series.DurationSeconds) * time.Second

	out := make([]ClosureOccurrence, 0, 8)
	emitted := 0
	for day := StartOfDay(dtstart); day.Before(windowEnd); day = day.AddDate(0, 0, 1) {
		if _, ok := days[day.Weekday()]; !ok {
			continue
		}
		weeks := int(isoMonday(day).Sub(firstMonday).Hours()/24) / 7
		if weeks%interval != 0 {
			continue
		}

		start := time.Date(day.Year(), day.Month(), day.Day(), dtstart.Hour(), dtstart.Minute(), dtstart.Second(), 0, loc)
		if start.Before(dtstart) {
			continue
		}
		if series.Until != nil && start.After(*series.Until) {
			break
		}
		if series.Count != nil && emitted >= *series.Count {
			break
		}
		emitted++

		end := start.Add(duration)
		if end.After(windowStart) {
			out = append(out, ClosureOccurrence{
				SeriesID:  series.ID,
				Title:     series.Title,
				StartTime: start,
				EndTime:   end,
				AllDay:    series.AllDay,
			})
		}
	}

	return out, nil
}

func isoMonday(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return d.AddDate(0, 0, -offset)
}
