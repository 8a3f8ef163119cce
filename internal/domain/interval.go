package domain

import (
	"time"

	"workhours/internal/errors"
)

// Interval is one continuous span of tracked work time owned by a single
// owner. A nil End means the interval is still running.
type Interval struct {
	ID        int64
	OwnerID   int64
	ProjectID *int64
	// TenantID is nil for records of the default tenant.
	TenantID *string
	Start    time.Time
	End      *time.Time
	Note     string
}

// NewInterval creates a running interval for the given owner.
func NewInterval(ownerID int64, tenantID *string, start time.Time) Interval {
	return Interval{
		OwnerID:  ownerID,
		TenantID: tenantID,
		Start:    start,
	}
}

// IsRunning returns true if the interval has no recorded end.
func (iv Interval) IsRunning() bool {
	return iv.End == nil
}

// Stop returns a copy of the interval closed at end.
func (iv Interval) Stop(end time.Time) Interval {
	iv.End = &end
	return iv
}

// EffectiveEnd returns End when set and now otherwise.
func (iv Interval) EffectiveEnd(now time.Time) (time.Time, error) {
	return EffectiveEnd(iv, now)
}

// Duration returns the effective duration of the interval at now.
func (iv Interval) Duration(now time.Time) (time.Duration, error) {
	end, err := EffectiveEnd(iv, now)
	if err != nil {
		return 0, err
	}
	if end.Before(iv.Start) {
		// running interval that starts after now
		return 0, nil
	}
	return end.Sub(iv.Start), nil
}

// EffectiveEnd resolves the end of an interval for aggregation. The result
// for a running interval is not persisted and changes with now.
func EffectiveEnd(iv Interval, now time.Time) (time.Time, error) {
	if iv.End == nil {
		return now, nil
	}
	if iv.End.Before(iv.Start) {
		return time.Time{}, errors.NewInvalidIntervalError(iv.ID, iv.Start, *iv.End)
	}
	return *iv.End, nil
}
