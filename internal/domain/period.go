package domain

import (
	"fmt"
	"time"

	"workhours/internal/errors"
)

// PeriodKind enumerates the reporting bucket sizes.
type PeriodKind string

const (
	PeriodDay    PeriodKind = "day"
	PeriodWeek   PeriodKind = "week"
	PeriodMonth  PeriodKind = "month"
	PeriodCustom PeriodKind = "custom"
)

// ParsePeriodKind validates a kind name coming from user input.
func ParsePeriodKind(s string) (PeriodKind, error) {
	switch k := PeriodKind(s); k {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodCustom:
		return k, nil
	default:
		return "", errors.NewInvalidInputError("period kind", s, "must be day, week, month or custom")
	}
}

// Period is a half-open reporting bucket [Start, End).
type Period struct {
	Kind  PeriodKind
	Start time.Time
	End   time.Time
}

// Length returns the wall-clock length of the period.
func (p Period) Length() time.Duration {
	return p.End.Sub(p.Start)
}

// Intersects reports whether [start, end) shares any instant with the period.
func (p Period) Intersects(start, end time.Time) bool {
	return start.Before(p.End) && end.After(p.Start)
}

// Label renders the period for report output.
func (p Period) Label() string {
	switch p.Kind {
	case PeriodDay:
		return p.Start.Format("2006-01-02")
	case PeriodWeek:
		year, week := p.Start.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case PeriodMonth:
		return p.Start.Format("2006-01")
	default:
		return p.Start.Format(time.RFC3339) + "/" + p.End.Format(time.RFC3339)
	}
}

// OverlapResult records the seconds an interval shares with one period.
type OverlapResult struct {
	IntervalID  int64
	Period      Period
	PeriodIndex int // position of Period in the request
	Seconds     int64
}
