package isodate

import (
	"testing"
	"time"
)

func TestValidDate(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"2026-08-28", true},
		{"1999-01-01", true},
		{"2026-02-30", false},
		{"28/08/2026", false}, // locale display format is rejected
		{"2026-8-28", false},
		{"", false},
	}
	for _, c := range cases {
		if got := ValidDate(c.in); got != c.want {
			t.Errorf("ValidDate(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestValidTime(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"09:30", true},
		{"23:59", true},
		{"24:00", false},
		{"9:30", false},
		{"09:30:00", false},
		{"", false},
	}
	for _, c := range cases {
		if got := ValidTime(c.in); got != c.want {
			t.Errorf("ValidTime(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestWeekBounds(t *testing.T) {
	// 2026-08-28 is a Friday.
	mon, sun := WeekBounds(time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC))
	if mon != "2026-08-24" {
		t.Errorf("monday = %s", mon)
	}
	if sun != "2026-08-30" {
		t.Errorf("sunday = %s", sun)
	}

	// A Monday is its own week start.
	mon, sun = WeekBounds(time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC))
	if mon != "2026-08-24" || sun != "2026-08-30" {
		t.Errorf("bounds = %s..%s", mon, sun)
	}

	// Sunday belongs to the week started the previous Monday.
	mon, sun = WeekBounds(time.Date(2026, 8, 30, 23, 0, 0, 0, time.UTC))
	if mon != "2026-08-24" || sun != "2026-08-30" {
		t.Errorf("bounds = %s..%s", mon, sun)
	}
}
