package validation

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"workhours/internal/config"
)

var namePattern = regexp.MustCompile(`^[\p{L}\p{N} \-_.,&'()/]+$`)

// Validator provides common validation utilities
type Validator struct {
	config *config.Config
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// NewValidatorWithConfig creates a new validator instance with configuration
func NewValidatorWithConfig(cfg *config.Config) *Validator {
	return &Validator{config: cfg}
}

// IsNonEmptyString checks if a string is not empty after trimming whitespace
func (v *Validator) IsNonEmptyString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsValidNameLength checks the trimmed rune count against configured limits
func (v *Validator) IsValidNameLength(name string) bool {
	length := utf8.RuneCountInString(strings.TrimSpace(name))
	return length >= v.nameMinLength() && length <= v.nameMaxLength()
}

// IsValidName rejects control characters and unusual punctuation
func (v *Validator) IsValidName(name string) bool {
	return namePattern.MatchString(name)
}

// IsValidTimeRange checks that a closed interval does not end before it
// starts. Zero-length intervals are valid.
func (v *Validator) IsValidTimeRange(start time.Time, end *time.Time) bool {
	if end == nil {
		return true // Running interval, no end time
	}
	return !end.Before(start)
}

// IsValidDuration checks if a duration is within configured bounds
func (v *Validator) IsValidDuration(d time.Duration) bool {
	return d >= 0 && d <= v.maxDuration()
}

// IsValidID checks that an identifier is positive
func (v *Validator) IsValidID(id int64) bool {
	return id > 0
}

// IsValidTimezone checks that tz names a loadable IANA zone. The empty
// string is accepted and means "use the default".
func (v *Validator) IsValidTimezone(tz string) bool {
	if tz == "" {
		return true
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// IsReasonableDate checks t is between ten years before and one year after now
func (v *Validator) IsReasonableDate(t, now time.Time) bool {
	return t.After(now.AddDate(-10, 0, 0)) && t.Before(now.AddDate(1, 0, 0))
}

func (v *Validator) nameMinLength() int {
	if v.config != nil {
		return v.config.Validation.NameMinLength
	}
	return 1 // Default minimum
}

func (v *Validator) nameMaxLength() int {
	if v.config != nil {
		return v.config.Validation.NameMaxLength
	}
	return 255 // Default maximum
}

// MaxDuration returns the configured maximum interval length
func (v *Validator) MaxDuration() time.Duration {
	return v.maxDuration()
}

func (v *Validator) maxDuration() time.Duration {
	if v.config != nil {
		return v.config.Validation.MaxDuration
	}
	return 24 * time.Hour // Default maximum
}
