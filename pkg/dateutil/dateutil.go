package dateutil

import "time"

// DayLayout is the wire format for calendar dates.
const DayLayout = "2006-01-02"

// DayBounds returns the [start, end) calendar-day window containing t,
// normalized to UTC. Token buckets on the write side and day queries on the
// read side must both go through this so an appointment never straddles
// buckets.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := t.UTC().Truncate(24 * time.Hour)
	return start, start.AddDate(0, 0, 1)
}

// DayKey returns the canonical YYYY-MM-DD key for the calendar day containing t.
func DayKey(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// ParseDay parses a YYYY-MM-DD string into a UTC day-start time.
func ParseDay(s string) (time.Time, error) {
	return time.Parse(DayLayout, s)
}
