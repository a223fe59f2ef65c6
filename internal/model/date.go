package model

import (
	"fmt"
	"time"
)

// DateFormat is the ISO-8601 day format used for purchase dates.
const DateFormat = "2006-01-02"

// readDateFormat is permissive on read: it allows single-digit month and day.
const readDateFormat = "2006-1-2"

// ParseDate parses a day-granularity date like "2024-01-01" (or "2024-1-1")
// into its midnight-UTC representation.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(readDateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want %s): %w", s, DateFormat, err)
	}
	return NormalizeDate(t), nil
}
