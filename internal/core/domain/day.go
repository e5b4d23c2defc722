package domain

import "time"

// DayFormat is the ISO-8601 layout used to render and parse days.
const DayFormat = "2006-01-02"

// Day is a calendar date normalized to UTC midnight. It is the only temporal
// key used for conversion rates and for bucketing postponed events: equality
// and ordering are by date alone, the time of day is always stripped.
type Day struct {
	t time.Time
}

// NewDay returns the Day for the given year, month and day of month.
func NewDay(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf strips the time-of-day component of t and returns the resulting Day.
func DayOf(t time.Time) Day {
	u := t.UTC()
	return NewDay(u.Year(), u.Month(), u.Day())
}

// Today returns the current UTC date.
func Today() Day {
	return DayOf(time.Now())
}

// ParseDay parses an ISO-8601 date string (YYYY-MM-DD).
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayFormat, s)
	if err != nil {
		return Day{}, err
	}
	return DayOf(t), nil
}

// Time returns the canonical time.Time representation: midnight UTC of that day.
func (d Day) Time() time.Time {
	return d.t
}

// Equal reports whether d and o are the same calendar date.
func (d Day) Equal(o Day) bool {
	return d.t.Equal(o.t)
}

// Before reports whether d is an earlier date than o.
func (d Day) Before(o Day) bool {
	return d.t.Before(o.t)
}

// IsToday reports whether d is the current UTC date.
func (d Day) IsToday() bool {
	return d.Equal(Today())
}

// AddDays returns the Day n days after d (n may be negative).
func (d Day) AddDays(n int) Day {
	return DayOf(d.t.AddDate(0, 0, n))
}

// IsZero reports whether d is the zero value.
func (d Day) IsZero() bool {
	return d.t.IsZero()
}

func (d Day) String() string {
	return d.t.Format(DayFormat)
}
