package utils

import (
	"fmt"
	"time"
)

var timeFormats = []string{
	time.RFC3339Nano,                      // 2006-01-02T15:04:05.999999999Z07:00
	time.RFC3339,                          // 2006-01-02T15:04:05Z07:00
	"2006-01-02 15:04:05",                 // SQLite default format
	"2006-01-02 15:04:05.999999999-07:00", // SQLite with nanoseconds and offset
}

// ParseTimeWithFallback accepts the timestamp layouts found in the
// activities table and in server responses.
func ParseTimeWithFallback(timeStr string) (time.Time, error) {
	for _, format := range timeFormats {
		if t, err := time.Parse(format, timeStr); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse time '%s' with any known format", timeStr)
}

// FormatTimestamp renders an RFC3339 timestamp from the API for terminal
// output, falling back to the raw string.
func FormatTimestamp(timeStr string) string {
	t, err := ParseTimeWithFallback(timeStr)
	if err != nil {
		return timeStr
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
