// Package isodate validates and formats the wire/storage representation of
// calendar dates and times of day. The store only ever sees ISO 8601
// YYYY-MM-DD dates and 24-hour HH:MM times; converting to or from any locale
// display format is the UI's job.
package isodate

import "time"

const (
	// DateLayout is the storage/wire format for calendar dates.
	DateLayout = "2006-01-02"
	// TimeLayout is the storage/wire format for times of day.
	TimeLayout = "15:04"
)

// ValidDate reports whether s is a valid ISO 8601 calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ValidTime reports whether s is a valid 24-hour HH:MM time of day.
func ValidTime(s string) bool {
	_, err := time.Parse(TimeLayout, s)
	return err == nil
}

// Today returns the current calendar date in storage form.
func Today() string {
	return time.Now().Format(DateLayout)
}

// Format renders t as a storage-form date.
func Format(t time.Time) string {
	return t.Format(DateLayout)
}

// WeekBounds returns the Monday and Sunday of the calendar week containing t,
// both in storage form.
func WeekBounds(t time.Time) (monday, sunday string) {
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	start := t.AddDate(0, 0, -offset)
	return Format(start), Format(start.AddDate(0, 0, 6))
}
