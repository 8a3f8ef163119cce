package validation

import (
	"strings"
)

// NameValidator validates tenant, owner and project input
type NameValidator struct {
	validator *Validator
}

// NewNameValidator creates a new name validator
func NewNameValidator(v *Validator) *NameValidator {
	if v == nil {
		v = NewValidator()
	}
	return &NameValidator{validator: v}
}

// ValidateName checks a display name stored in field
func (nv *NameValidator) ValidateName(field, name string) error {
	validationError := NewValidationError()
	nv.checkName(validationError, field, name)
	return validationError.OrNil()
}

// ValidateTenant checks a new tenant's name and time zone
func (nv *NameValidator) ValidateTenant(name, timezone string) error {
	validationError := NewValidationError()
	nv.checkName(validationError, "tenant_name", name)
	if !nv.validator.IsValidTimezone(timezone) {
		validationError.AddInvalidFormatError("timezone", timezone, "an IANA time zone such as Europe/Berlin")
	}
	return validationError.OrNil()
}

// ValidateOwner checks a new owner's name and hourly rate
func (nv *NameValidator) ValidateOwner(name string, hourlyRateCents int64) error {
	validationError := NewValidationError()
	nv.checkName(validationError, "owner_name", name)
	if hourlyRateCents < 0 {
		validationError.AddInvalidValueError("hourly_rate", hourlyRateCents, "must not be negative")
	}
	return validationError.OrNil()
}

func (nv *NameValidator) checkName(ve *ValidationError, field, name string) {
	trimmed := strings.TrimSpace(name)
	switch {
	case !nv.validator.IsNonEmptyString(trimmed):
		ve.AddRequiredError(field)
	case !nv.validator.IsValidNameLength(trimmed):
		ve.AddInvalidLengthError(field, name, nv.validator.nameMinLength(), nv.validator.nameMaxLength())
	case !nv.validator.IsValidName(trimmed):
		ve.AddInvalidCharacterError(field, name)
	}
}
