package utils

import (
	"errors"
	"testing"
	"time"
)

func TestParseFlexibleDate(t *testing.T) {
	want := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)
	for _, s := range []string{"2024-03-05T14:30:00", "2024-03-05T14:30:00.000000", "2024-03-05T14:30:00Z", " 2024-03-05T14:30:00 "} {
		got, err := ParseFlexibleDate(s)
		if err != nil {
			t.Fatalf("ParseFlexibleDate(%q): %v", s, err)
		}
		if !got.Equal(want) {
			t.Fatalf("ParseFlexibleDate(%q) = %s, want %s", s, got, want)
		}
	}

	day, err := ParseFlexibleDate("2024-03-05")
	if err != nil {
		t.Fatalf("ParseFlexibleDate: %v", err)
	}
	if !day.Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected midnight, got %s", day)
	}

	for _, s := range []string{"", "05/03/2024", "2024-13-01", "yesterday"} {
		if _, err := ParseFlexibleDate(s); !errors.Is(err, ErrInvalidDateFormat) {
			t.Fatalf("ParseFlexibleDate(%q): expected ErrInvalidDateFormat, got %v", s, err)
		}
	}
}

func TestParseFlexibleEndDate(t *testing.T) {
	got, err := ParseFlexibleEndDate("2024-03-05")
	if err != nil {
		t.Fatalf("ParseFlexibleEndDate: %v", err)
	}
	want := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}

	got, err = ParseFlexibleEndDate("2024-03-05T08:00:00")
	if err != nil {
		t.Fatalf("ParseFlexibleEndDate: %v", err)
	}
	if !got.Equal(time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("explicit time should be kept, got %s", got)
	}
}

func TestDayRange(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	// 2024-03-06 01:00 at +7 is still the 5th in UTC
	start, end := DayRange(time.Date(2024, 3, 6, 1, 0, 0, 0, loc))
	if !start.Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start %s", start)
	}
	if end.Sub(start) != 24*time.Hour {
		t.Fatalf("expected a 24h range, got %s", end.Sub(start))
	}
}
