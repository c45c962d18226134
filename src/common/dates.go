package common

import (
	"time"
	"vrbs/src/config"
)

// DateOnly drops the time-of-day component. All calendar math in this
// package runs on UTC midnight values.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(config.DATE_PARSE_FORMAT, s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOnly(t), nil
}

func FormatDate(t time.Time) string {
	return t.Format(config.DATE_PARSE_FORMAT)
}

func SameDay(a time.Time, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}

// WithinInclusive reports whether day falls inside [start, end], both ends
// counted.
func WithinInclusive(day time.Time, start time.Time, end time.Time) bool {
	d := DateOnly(day)
	return !d.Before(DateOnly(start)) && !d.After(DateOnly(end))
}

// DaysBetween enumerates every calendar day from start through end
// inclusive. An end before start yields an empty slice.
func DaysBetween(start time.Time, end time.Time) []time.Time {
	from := DateOnly(start)
	to := DateOnly(end)
	days := []time.Time{}
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
