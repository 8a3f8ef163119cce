package validation

import (
	"time"

	"workhours/internal/domain"
)

// IntervalValidator provides validation for interval operations
type IntervalValidator struct {
	validator *Validator
}

// NewIntervalValidator creates a new interval validator
func NewIntervalValidator(v *Validator) *IntervalValidator {
	if v == nil {
		v = NewValidator()
	}
	return &IntervalValidator{validator: v}
}

// ValidateInterval validates an interval before it is stored. now bounds the
// accepted dates.
func (iv *IntervalValidator) ValidateInterval(interval domain.Interval, now time.Time) error {
	validationError := NewValidationError()

	if !iv.validator.IsValidID(interval.OwnerID) {
		validationError.AddInvalidValueError("owner_id", interval.OwnerID, "must be a positive integer")
	}
	if interval.ProjectID != nil && !iv.validator.IsValidID(*interval.ProjectID) {
		validationError.AddInvalidValueError("project_id", *interval.ProjectID, "must be a positive integer")
	}

	if interval.Start.IsZero() {
		validationError.AddRequiredError("start_time")
	} else if !iv.validator.IsReasonableDate(interval.Start, now) {
		validationError.AddInvalidValueError("start_time", interval.Start, "must be within reasonable date range")
	}

	if interval.End != nil {
		if !iv.validator.IsValidTimeRange(interval.Start, interval.End) {
			validationError.AddInvalidRangeError("time_range", map[string]time.Time{
				"start": interval.Start,
				"end":   *interval.End,
			}, "end time must not be before start time")
		} else if !iv.validator.IsValidDuration(interval.End.Sub(interval.Start)) {
			validationError.AddInvalidValueError("duration", interval.End.Sub(interval.Start),
				"must not exceed "+iv.validator.MaxDuration().String())
		}
	}

	return validationError.OrNil()
}

// ValidateQuery validates interval search criteria
func (iv *IntervalValidator) ValidateQuery(q domain.IntervalQuery) error {
	validationError := NewValidationError()

	if q.OwnerID != nil && !iv.validator.IsValidID(*q.OwnerID) {
		validationError.AddInvalidValueError("owner_id", *q.OwnerID, "must be a positive integer")
	}
	if q.ProjectID != nil && !iv.validator.IsValidID(*q.ProjectID) {
		validationError.AddInvalidValueError("project_id", *q.ProjectID, "must be a positive integer")
	}
	if q.From != nil && q.To != nil && !q.From.Before(*q.To) {
		validationError.AddInvalidRangeError("date_range", map[string]time.Time{
			"from": *q.From,
			"to":   *q.To,
		}, "from must be before to")
	}
	if q.Limit < 0 {
		validationError.AddInvalidValueError("limit", q.Limit, "must not be negative")
	}

	return validationError.OrNil()
}
