package core

import (
	"strings"
	"time"
)

// TimestampLayout is the wire format of every persisted timestamp.
// It is fixed-width and zero-padded so lexicographic order on the serialized
// strings matches chronological order.
const TimestampLayout = "2006-01-02 15:04:05"

// FormatTimestamp serializes t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ParseTimestamp parses a TimestampLayout string; the zero time on failure.
func ParseTimestamp(s string) time.Time {
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}
