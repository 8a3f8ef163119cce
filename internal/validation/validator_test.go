package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workhours/internal/config"
	"workhours/internal/domain"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestValidator_Names(t *testing.T) {
	v := NewValidator()

	assert.False(t, v.IsNonEmptyString(" \t\n"))
	assert.True(t, v.IsNonEmptyString(" acme "))

	assert.True(t, v.IsValidName("Müller & Söhne (EU)"))
	assert.False(t, v.IsValidName("line\nbreak"))
	assert.False(t, v.IsValidName("semi;colon"))

	assert.True(t, v.IsValidNameLength(strings.Repeat("ä", 255)), "length counts runes")
	assert.False(t, v.IsValidNameLength(strings.Repeat("a", 256)))

	cfg := config.NewConfig()
	cfg.Validation.NameMaxLength = 4
	assert.False(t, NewValidatorWithConfig(cfg).IsValidNameLength("Globex"))
}

func TestValidator_Times(t *testing.T) {
	v := NewValidator()
	start := now
	same := now
	before := now.Add(-time.Minute)

	assert.True(t, v.IsValidTimeRange(start, nil))
	assert.True(t, v.IsValidTimeRange(start, &same), "zero-length intervals are valid")
	assert.False(t, v.IsValidTimeRange(start, &before))

	assert.True(t, v.IsValidDuration(0))
	assert.True(t, v.IsValidDuration(24*time.Hour))
	assert.False(t, v.IsValidDuration(25*time.Hour))

	assert.True(t, v.IsReasonableDate(now.AddDate(-1, 0, 0), now))
	assert.False(t, v.IsReasonableDate(now.AddDate(-11, 0, 0), now))
	assert.False(t, v.IsReasonableDate(now.AddDate(2, 0, 0), now))

	assert.True(t, v.IsValidTimezone(""))
	assert.True(t, v.IsValidTimezone("America/New_York"))
	assert.False(t, v.IsValidTimezone("Mars/Olympus"))
}

func TestIntervalValidator_ValidateInterval(t *testing.T) {
	iv := NewIntervalValidator(nil)
	end := now.Add(8 * time.Hour)
	backwards := now.Add(-time.Hour)
	tooLong := now.Add(30 * time.Hour)
	badProject := int64(0)

	tests := []struct {
		name   string
		input  domain.Interval
		fields []string
	}{
		{"valid closed", domain.Interval{OwnerID: 1, Start: now, End: &end}, nil},
		{"valid running", domain.Interval{OwnerID: 1, Start: now}, nil},
		{"missing owner and start", domain.Interval{}, []string{"owner_id", "start_time"}},
		{"end before start", domain.Interval{OwnerID: 1, Start: now, End: &backwards}, []string{"time_range"}},
		{"too long", domain.Interval{OwnerID: 1, Start: now, End: &tooLong}, []string{"duration"}},
		{"bad project", domain.Interval{OwnerID: 1, ProjectID: &badProject, Start: now}, []string{"project_id"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := iv.ValidateInterval(tt.input, now)
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			ve := err.(*ValidationError)
			var fields []string
			for _, fe := range ve.Errors {
				fields = append(fields, fe.Field)
			}
			assert.Equal(t, tt.fields, fields)
		})
	}
}

func TestIntervalValidator_ValidateQuery(t *testing.T) {
	iv := NewIntervalValidator(nil)
	later := now.Add(time.Hour)

	assert.NoError(t, iv.ValidateQuery(domain.IntervalQuery{From: &now, To: &later}))
	assert.Error(t, iv.ValidateQuery(domain.IntervalQuery{From: &later, To: &now}))
	assert.Error(t, iv.ValidateQuery(domain.IntervalQuery{From: &now, To: &now}))
	assert.Error(t, iv.ValidateQuery(domain.IntervalQuery{Limit: -1}))
}

func TestNameValidator(t *testing.T) {
	nv := NewNameValidator(nil)

	assert.NoError(t, nv.ValidateTenant("Acme GmbH", "Europe/Berlin"))
	assert.NoError(t, nv.ValidateTenant("Acme GmbH", ""))

	err := nv.ValidateTenant("", "Nowhere/Land")
	require.Error(t, err)
	assert.Len(t, err.(*ValidationError).Errors, 2)

	assert.NoError(t, nv.ValidateOwner("Ada Lovelace", 12000))
	err = nv.ValidateOwner("Ada", -1)
	require.Error(t, err)
	assert.Equal(t, "hourly_rate", err.(*ValidationError).Errors[0].Field)

	assert.NoError(t, nv.ValidateName("project_name", "Website v2"))
	err = nv.ValidateName("project_name", "tab\there")
	require.Error(t, err)
	assert.Equal(t, ErrorTypeInvalidCharacter, err.(*ValidationError).Errors[0].Type)
}
