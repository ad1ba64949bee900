package marq

import (
	"fmt"
	"strings"
	"time"
)

// DateTimeData holds the parts of a {date time} literal. Parts that were not
// written are zero and the Has flags tell which halves are present.
type DateTimeData struct {
	Year, Month, Day     int
	Hour, Minute, Second int
	HasDate, HasTime     bool
	HasSeconds           bool
}

func (*DateTimeData) payload() {}

var (
	dateLayouts = []string{"2006-01-02"}
	timeLayouts = []string{"15:04:05", "15:04"}
)

// ParseDateTime parses "date", "time" or "date time" where date is
// YYYY-MM-DD and time is HH:MM or HH:MM:SS. A 'T' may join date and time.
func ParseDateTime(raw string) (DateTimeData, bool) {
	var dt DateTimeData
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return dt, false
	}
	datePart, timePart := raw, ""
	if i := strings.IndexAny(raw, " T"); i >= 0 {
		datePart, timePart = raw[:i], strings.TrimSpace(raw[i+1:])
		if timePart == "" {
			return dt, false
		}
	}
	if !strings.Contains(datePart, "-") {
		if timePart != "" {
			return dt, false
		}
		datePart, timePart = "", datePart
	}
	if datePart != "" {
		t, ok := parseLayouts(datePart, dateLayouts)
		if !ok {
			return dt, false
		}
		dt.Year, dt.Month, dt.Day = t.Year(), int(t.Month()), t.Day()
		dt.HasDate = true
	}
	if timePart != "" {
		t, ok := parseLayouts(timePart, timeLayouts)
		if !ok {
			return dt, false
		}
		dt.Hour, dt.Minute, dt.Second = t.Hour(), t.Minute(), t.Second()
		dt.HasTime = true
		dt.HasSeconds = strings.Count(timePart, ":") == 2
	}
	return dt, true
}

func parseLayouts(s string, layouts []string) (time.Time, bool) {
	for _, layout := range layouts {
		if len(s) != len(layout) {
			continue
		}
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// String formats the value back to its canonical literal form.
func (d DateTimeData) String() string {
	var b strings.Builder
	if d.HasDate {
		fmt.Fprintf(&b, "%04d-%02d-%02d", d.Year, d.Month, d.Day)
	}
	if d.HasTime {
		if d.HasDate {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%02d:%02d", d.Hour, d.Minute)
		if d.HasSeconds {
			fmt.Fprintf(&b, ":%02d", d.Second)
		}
	}
	return b.String()
}

// Time returns the value as a UTC time. Missing date parts default to the
// zero date.
func (d DateTimeData) Time() time.Time {
	year, month, day := d.Year, time.Month(d.Month), d.Day
	if !d.HasDate {
		year, month, day = 0, time.January, 1
	}
	return time.Date(year, month, day, d.Hour, d.Minute, d.Second, 0, time.UTC)
}
