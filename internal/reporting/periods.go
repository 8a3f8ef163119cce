package reporting

import (
	"time"

	"workhours/internal/domain"
	"workhours/internal/errors"
)

// maxPeriods bounds a single request so a typo in a date cannot allocate
// millions of buckets.
const maxPeriods = 10000

// PeriodRequest describes the buckets a report aggregates into.
//
// With an explicit Start/End the range is split on calendar boundaries of
// Kind (custom yields exactly one period). Without one, the range is Count
// consecutive calendar buckets starting with the bucket containing Anchor.
// Weeks are ISO weeks starting Monday; months are calendar months. All
// boundaries are computed in Location.
type PeriodRequest struct {
	Kind     domain.PeriodKind
	Anchor   time.Time
	Location *time.Location
	Start    *time.Time
	End      *time.Time
	Count    int
}

// BuildPeriods returns ordered, contiguous, non-overlapping periods whose
// union is exactly the requested range.
func BuildPeriods(req PeriodRequest) ([]domain.Period, error) {
	loc := req.Location
	if loc == nil {
		loc = time.UTC
	}

	switch req.Kind {
	case domain.PeriodDay, domain.PeriodWeek, domain.PeriodMonth, domain.PeriodCustom:
	default:
		return nil, errors.NewInvalidInputError("kind", string(req.Kind), "must be one of day, week, month, custom")
	}

	start, end, err := resolveRange(req, loc)
	if err != nil {
		return nil, err
	}

	if req.Kind == domain.PeriodCustom {
		return []domain.Period{{Kind: domain.PeriodCustom, Start: start, End: end}}, nil
	}
	return splitRange(req.Kind, start, end, loc)
}

func resolveRange(req PeriodRequest, loc *time.Location) (time.Time, time.Time, error) {
	if req.Start != nil || req.End != nil {
		if req.Start == nil || req.End == nil {
			return time.Time{}, time.Time{}, errors.NewInvalidInputError("range", nil, "both start and end are required")
		}
		start, end := req.Start.In(loc), req.End.In(loc)
		if !start.Before(end) {
			return time.Time{}, time.Time{}, errors.NewInvalidRangeError(start, end, "start must be before end")
		}
		return start, end, nil
	}

	if req.Kind == domain.PeriodCustom {
		return time.Time{}, time.Time{}, errors.NewInvalidInputError("range", nil, "custom periods need an explicit range")
	}
	count := req.Count
	if count == 0 {
		count = 1
	}
	if count < 0 || count > maxPeriods {
		return time.Time{}, time.Time{}, errors.NewInvalidInputError("count", count, "must be between 1 and 10000")
	}

	anchor := req.Anchor
	if anchor.IsZero() {
		return time.Time{}, time.Time{}, errors.NewInvalidInputError("anchor", nil, "anchor date is required")
	}
	start := bucketStart(req.Kind, anchor.In(loc))
	end := start
	for i := 0; i < count; i++ {
		next := nextBoundary(req.Kind, end)
		if !next.After(end) {
			return time.Time{}, time.Time{}, errors.NewInvalidRangeError(end, next, "calendar boundary does not advance")
		}
		end = next
	}
	return start, end, nil
}

func splitRange(kind domain.PeriodKind, start, end time.Time, loc *time.Location) ([]domain.Period, error) {
	var periods []domain.Period
	cur := start
	for cur.Before(end) {
		if len(periods) == maxPeriods {
			return nil, errors.NewInvalidRangeError(start, end, "range produces too many periods")
		}
		next := nextBoundary(kind, bucketStart(kind, cur.In(loc)))
		if !next.After(cur) {
			return nil, errors.NewInvalidRangeError(cur, next, "calendar boundary does not advance")
		}
		if next.After(end) {
			next = end
		}
		periods = append(periods, domain.Period{Kind: kind, Start: cur, End: next})
		cur = next
	}
	if len(periods) == 0 {
		return nil, errors.NewInvalidRangeError(start, end, "range contains no periods")
	}
	return periods, nil
}

// bucketStart returns the calendar boundary at or before t in t's location.
func bucketStart(kind domain.PeriodKind, t time.Time) time.Time {
	y, m, d := t.Date()
	switch kind {
	case domain.PeriodWeek:
		offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
		return localMidnight(y, m, d-offset, t.Location())
	case domain.PeriodMonth:
		return localMidnight(y, m, 1, t.Location())
	default:
		return localMidnight(y, m, d, t.Location())
	}
}

// nextBoundary returns the boundary following a bucket start. Calendar
// arithmetic keeps DST days at 23 or 25 hours. Bucket starts come from
// localMidnight, so their local date is the bucket's own.
func nextBoundary(kind domain.PeriodKind, start time.Time) time.Time {
	y, m, d := start.Date()
	switch kind {
	case domain.PeriodWeek:
		return localMidnight(y, m, d+7, start.Location())
	case domain.PeriodMonth:
		return localMidnight(y, m+1, 1, start.Location())
	default:
		return localMidnight(y, m, d+1, start.Location())
	}
}

// localMidnight returns the first instant of the calendar day y-m-d in loc.
// Out-of-range months and days are normalized as time.Date does. Where a DST
// change skips midnight the day starts at the transition.
func localMidnight(y int, m time.Month, d int, loc *time.Location) time.Time {
	y, m, d = time.Date(y, m, d, 12, 0, 0, 0, time.UTC).Date()
	t := time.Date(y, m, d, 0, 0, 0, 0, loc)
	if ty, tm, td := t.Date(); ty == y && tm == m && td == d {
		return t
	}
	// Midnight does not exist and resolved into the previous day; the day
	// begins where that zone offset ends.
	if _, end := t.ZoneBounds(); !end.IsZero() && !end.Before(t) {
		return end
	}
	return t.Add(time.Hour)
}
