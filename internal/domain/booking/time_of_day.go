package booking

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire and storage format of a booking date.
const DateLayout = "2006-01-02"

// TimeOfDay is a wall-clock time without date or zone, at second precision.
type TimeOfDay struct {
	hour, minute, second int
}

// NewTimeOfDay returns a TimeOfDay or an error if a component is out of range.
func NewTimeOfDay(hour, minute, second int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %02d:%02d:%02d", hour, minute, second)
	}
	return TimeOfDay{hour: hour, minute: minute, second: second}, nil
}

// MustTimeOfDay is NewTimeOfDay for constants; it panics on invalid input.
func MustTimeOfDay(hour, minute, second int) TimeOfDay {
	t, err := NewTimeOfDay(hour, minute, second)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseTimeOfDay accepts HH:MM, HH:MM:SS and HH:MM:SS.ffffff, optionally
// followed by Z or a ±HH:MM offset. The offset is dropped, not applied:
// "10:00+02:00" is 10:00. Fractional seconds are truncated.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	clock := strings.TrimSpace(s)
	if i := strings.IndexAny(clock, "Zz+-"); i >= 0 {
		clock = clock[:i]
	}
	if i := strings.IndexByte(clock, '.'); i >= 0 {
		clock = clock[:i]
	}

	parts := strings.Split(clock, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return TimeOfDay{}, fmt.Errorf("invalid time %q: expected HH:MM or HH:MM:SS", s)
	}

	values := make([]int, 3)
	for i, p := range parts {
		if len(p) == 0 || len(p) > 2 {
			return TimeOfDay{}, fmt.Errorf("invalid time %q", s)
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return TimeOfDay{}, fmt.Errorf("invalid time %q", s)
		}
		values[i] = n
	}

	t, err := NewTimeOfDay(values[0], values[1], values[2])
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time %q", s)
	}
	return t, nil
}

func (t TimeOfDay) Hour() int   { return t.hour }
func (t TimeOfDay) Minute() int { return t.minute }
func (t TimeOfDay) Second() int { return t.second }

// Seconds returns the number of seconds since midnight.
func (t TimeOfDay) Seconds() int {
	return t.hour*3600 + t.minute*60 + t.second
}

func (t TimeOfDay) Before(u TimeOfDay) bool { return t.Seconds() < u.Seconds() }

func (t TimeOfDay) After(u TimeOfDay) bool { return t.Seconds() > u.Seconds() }

// String formats as HH:MM:SS.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.hour, t.minute, t.second)
}

// ParseDate parses a YYYY-MM-DD date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return d, nil
}

// DateOf truncates t to its calendar date in t's own location, returned as
// midnight UTC so dates from different zones compare by calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
