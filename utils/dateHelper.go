package utils

import (
	"strings"
	"time"
)

var flexibleDateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05.999999Z",
}

// ParseFlexibleDate parses report query dates. Values are interpreted as UTC.
func ParseFlexibleDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range flexibleDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, Errorf(ErrInvalidDateFormat, "%q", s)
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayRange returns [midnight, next midnight) for the day containing t.
func DayRange(t time.Time) (time.Time, time.Time) {
	start := StartOfDay(t)
	return start, start.AddDate(0, 0, 1)
}

// ParseFlexibleEndDate is ParseFlexibleDate, except a bare YYYY-MM-DD covers the whole day.
func ParseFlexibleEndDate(s string) (time.Time, error) {
	t, err := ParseFlexibleDate(s)
	if err != nil {
		return t, err
	}
	if len(strings.TrimSpace(s)) == len("2006-01-02") {
		_, end := DayRange(t)
		return end.Add(-time.Nanosecond), nil
	}
	return t, nil
}
