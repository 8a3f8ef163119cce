package sqlite

import (
	"time"
)

// FormatTimeForDB formats a time.Time value as a UTC RFC3339 string. Storing
// every instant in UTC keeps lexical comparisons in SQL equal to
// chronological ones.
func FormatTimeForDB(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// FormatTimePtrForDB formats a *time.Time value as RFC3339 string, returning nil if the pointer is nil
func FormatTimePtrForDB(t *time.Time) any {
	if t == nil {
		return nil
	}
	return FormatTimeForDB(*t)
}

// ParseTimeFromDB parses an RFC3339 formatted time string from the database
func ParseTimeFromDB(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// ParseNullTimeFromDB parses a nullable time column.
func ParseNullTimeFromDB(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := ParseTimeFromDB(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
