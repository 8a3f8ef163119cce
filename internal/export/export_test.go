package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workhours/internal/domain"
	"workhours/internal/services"
	"workhours/internal/tenancy"
)

var exportedAt = time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)

func sampleViews() []services.IntervalView {
	start := time.Date(2024, 3, 11, 21, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	tenant := "acme"
	project := int64(5)

	return []services.IntervalView{
		{
			Interval:    domain.Interval{ID: 1, OwnerID: 2, ProjectID: &project, TenantID: &tenant, Start: start, End: &end, Note: "worked on feature"},
			OwnerName:   "Ada",
			ProjectName: "Website",
			Seconds:     3600,
		},
		{
			Interval:  domain.Interval{ID: 2, OwnerID: 3, Start: start, Note: `notes with "quotes" and, commas`},
			OwnerName: `Bob "B"`,
			Seconds:   90,
		},
	}
}

func sampleReport(byProject bool) *services.Report {
	day := domain.Period{
		Kind:  domain.PeriodDay,
		Start: time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC),
	}
	scope, _ := tenancy.ForTenant("acme")
	return &services.Report{
		Scope:        scope,
		Location:     time.UTC,
		Periods:      []domain.Period{day},
		Rows:         []services.ReportRow{{Period: day, OwnerID: 2, OwnerName: "Ada", ProjectID: 5, ProjectName: "Website", Seconds: 7200}},
		TotalSeconds: 7200,
		Intervals:    1,
		ByProject:    byProject,
	}
}

func readCSV(t *testing.T, r io.Reader) [][]string {
	t.Helper()
	records, err := csv.NewReader(r).ReadAll()
	require.NoError(t, err)
	return records
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("csv")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestIntervalsToCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, IntervalsToCSV(&buf, sampleViews()))

	records := readCSV(t, &buf)
	require.Len(t, records, 3, "header + 2 data rows")
	assert.Equal(t, []string{"ID", "Tenant", "Owner", "Project", "Start", "End", "Duration (s)", "Duration", "Note"}, records[0])
	assert.Equal(t, []string{"1", "acme", "Ada", "Website", "2024-03-11T21:00:00Z", "2024-03-11T22:00:00Z", "3600", "01:00:00", "worked on feature"}, records[1])

	running := records[2]
	assert.Equal(t, "<default>", running[1])
	assert.Empty(t, running[5], "running intervals have no end")
	assert.Equal(t, "00:01:30", running[7])
	assert.Equal(t, `Bob "B"`, running[2], "quotes survive")
	assert.Equal(t, `notes with "quotes" and, commas`, running[8])
}

func TestIntervalsToCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, IntervalsToCSV(&buf, nil))
	assert.Len(t, readCSV(t, &buf), 1, "header only")
}

func TestReportToCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ReportToCSV(&buf, sampleReport(false)))
	records := readCSV(t, &buf)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"Period", "Period Start", "Period End", "Owner ID", "Owner", "Seconds", "Duration"}, records[0])
	assert.Equal(t, []string{"2024-03-11", "2024-03-11T00:00:00Z", "2024-03-12T00:00:00Z", "2", "Ada", "7200", "02:00:00"}, records[1])

	buf.Reset()
	require.NoError(t, ReportToCSV(&buf, sampleReport(true)))
	records = readCSV(t, &buf)
	assert.Equal(t, []string{"Period", "Period Start", "Period End", "Owner ID", "Owner", "Project ID", "Project", "Seconds", "Duration"}, records[0])
	assert.Equal(t, "Website", records[1][6])
}

func TestPayrollToCSV(t *testing.T) {
	lines := []services.PayrollLine{{
		Period:          sampleReport(false).Periods[0],
		OwnerID:         2,
		OwnerName:       "Ada",
		Seconds:         4800,
		Hours:           1.33,
		HourlyRateCents: 4500,
		GrossCents:      6000,
	}}
	var buf bytes.Buffer
	require.NoError(t, PayrollToCSV(&buf, lines))
	records := readCSV(t, &buf)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"2024-03-11", "2", "Ada", "4800", "1.33", "4500", "6000"}, records[1])
}

func TestIntervalsToJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, IntervalsToJSON(&buf, sampleViews(), exportedAt))

	var result jsonIntervalExport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, "2024-03-13T12:00:00Z", result.ExportedAt)
	assert.Equal(t, 2, result.Count)
	require.Len(t, result.Entries, 2)

	e := result.Entries[0]
	assert.Equal(t, int64(1), e.ID)
	assert.Equal(t, "Website", e.Project)
	require.NotNil(t, e.ProjectID)
	assert.Equal(t, int64(5), *e.ProjectID)
	assert.Equal(t, "01:00:00", e.Duration)

	assert.Empty(t, result.Entries[1].EndTime)
	assert.NotContains(t, buf.String()[strings.Index(buf.String(), `"id": 2`):], `"end_time"`, "running intervals omit end_time")
}

func TestIntervalsToJSON_EmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, IntervalsToJSON(&buf, nil, exportedAt))
	assert.Contains(t, buf.String(), `"entries": []`)
}

func TestReportToJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ReportToJSON(&buf, sampleReport(false), exportedAt))

	var result jsonReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, "tenant:acme", result.Scope)
	assert.Equal(t, "UTC", result.Timezone)
	assert.Equal(t, int64(7200), result.TotalSeconds)
	require.Len(t, result.Periods, 1)
	assert.Equal(t, "2024-03-11", result.Periods[0].Label)
	require.Len(t, result.Rows, 1)
	assert.Nil(t, result.Rows[0].ProjectID, "project ids only appear in project breakdowns")

	buf.Reset()
	require.NoError(t, ReportToJSON(&buf, sampleReport(true), exportedAt))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	require.NotNil(t, result.Rows[0].ProjectID)
	assert.Equal(t, "Website", result.Rows[0].Project)
}

func TestPayrollToJSON(t *testing.T) {
	var buf bytes.Buffer
	lines := []services.PayrollLine{{Period: sampleReport(false).Periods[0], OwnerID: 2, OwnerName: "Ada", Seconds: 3600, Hours: 1, HourlyRateCents: 6000, GrossCents: 6000}}
	require.NoError(t, PayrollToJSON(&buf, lines, exportedAt))

	var result jsonPayroll
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, 1, result.Count)
	assert.Equal(t, int64(6000), result.Lines[0].GrossCents)
}

func TestToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intervals.csv")
	require.NoError(t, ToFile(path, func(w io.Writer) error {
		return IntervalsToCSV(w, sampleViews())
	}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Len(t, readCSV(t, f), 3)

	err = ToFile("/nonexistent/dir/file.csv", func(io.Writer) error { return nil })
	assert.Error(t, err)
}
