package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workhours/internal/errors"
	"workhours/internal/tenancy"
)

func TestParseTimeShorthand(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"30m", 30 * time.Minute, false},
		{"2h", 2 * time.Hour, false},
		{"1d", 24 * time.Hour, false},
		{"2w", 14 * 24 * time.Hour, false},
		{"3mo", 90 * 24 * time.Hour, false},
		{"1y", 365 * 24 * time.Hour, false},
		{"", 0, true},
		{"2", 0, true},
		{"h", 0, true},
		{"-2h", 0, true},
		{"2x", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseTimeShorthand(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTimeArg(t *testing.T) {
	original := timeNow
	timeNow = func() time.Time { return cliNow }
	defer func() { timeNow = original }()

	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	tests := []struct {
		input string
		want  time.Time
	}{
		{"now", cliNow},
		{"today", time.Date(2024, 3, 13, 0, 0, 0, 0, berlin)},
		{"2h", cliNow.Add(-2 * time.Hour)},
		{"2024-03-11", time.Date(2024, 3, 11, 0, 0, 0, 0, berlin)},
		{"2024-03-11 22:00", time.Date(2024, 3, 11, 22, 0, 0, 0, berlin)},
		{"2024-03-11 22:00:30", time.Date(2024, 3, 11, 22, 0, 30, 0, berlin)},
		{"2024-03-11T22:00", time.Date(2024, 3, 11, 22, 0, 0, 0, berlin)},
		{"2024-03-11T21:00:00Z", time.Date(2024, 3, 11, 21, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseTimeArg(tt.input, berlin)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}

	_, err = parseTimeArg("yesterday-ish", berlin)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))

	missing, err := optionalTime("", berlin)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestParseScopeFlag(t *testing.T) {
	scope, err := parseScopeFlag("")
	require.NoError(t, err)
	assert.Nil(t, scope, "no flag leaves the actor's default")

	scope, err = parseScopeFlag("all")
	require.NoError(t, err)
	assert.Equal(t, tenancy.KindAllTenants, scope.Kind())

	scope, err = parseScopeFlag("default")
	require.NoError(t, err)
	assert.Equal(t, tenancy.KindDefaultTenant, scope.Kind())

	scope, err = parseScopeFlag("acme")
	require.NoError(t, err)
	id, ok := scope.TenantID()
	assert.True(t, ok)
	assert.Equal(t, "acme", id)
}

func TestOptionalID(t *testing.T) {
	assert.Nil(t, optionalID(0))
	require.NotNil(t, optionalID(7))
	assert.Equal(t, int64(7), *optionalID(7))
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "60.00/h", formatRate(6000))
	assert.Equal(t, "45.05/h", formatRate(4505))
	assert.Equal(t, "480.00", formatCents(48000))
	assert.Equal(t, "0.07", formatCents(7))
	assert.Equal(t, "-1.50", formatCents(-150))
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"ID", "Name"}, [][]string{{"1", "Ada"}, {"22", "Bob"}})
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "ID")
	assert.Contains(t, lines[1], "──")
	assert.Equal(t, "1   Ada", lines[2])
	assert.Equal(t, "22  Bob", lines[3])

	assert.Empty(t, renderTable(nil, nil))
}

func TestRenderHoursChart(t *testing.T) {
	assert.Contains(t, renderHoursChart([]float64{3}, "hours per day"), "Not enough periods")
	chart := renderHoursChart([]float64{1, 8, 4}, "hours per day")
	assert.Contains(t, chart, "hours per day")
}

func TestTruncateCell(t *testing.T) {
	assert.Equal(t, "short", truncateCell("short", 10))
	got := truncateCell("a rather long note about the review", 10)
	assert.Equal(t, 10, lipgloss.Width(got))
	assert.True(t, strings.HasSuffix(got, "…"))
}
