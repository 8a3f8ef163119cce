package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"workhours/internal/domain"
	"workhours/internal/services"
)

type jsonIntervalExport struct {
	ExportedAt string         `json:"exported_at"`
	Count      int            `json:"count"`
	Entries    []jsonInterval `json:"entries"`
}

type jsonInterval struct {
	ID          int64  `json:"id"`
	Tenant      string `json:"tenant"`
	OwnerID     int64  `json:"owner_id"`
	Owner       string `json:"owner"`
	ProjectID   *int64 `json:"project_id,omitempty"`
	Project     string `json:"project,omitempty"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time,omitempty"`
	DurationSec int64  `json:"duration_seconds"`
	Duration    string `json:"duration"`
	Note        string `json:"note,omitempty"`
}

type jsonReport struct {
	ExportedAt   string          `json:"exported_at"`
	Scope        string          `json:"scope"`
	Timezone     string          `json:"timezone"`
	ByProject    bool            `json:"by_project"`
	TotalSeconds int64           `json:"total_seconds"`
	Intervals    int             `json:"intervals"`
	Periods      []jsonPeriod    `json:"periods"`
	Rows         []jsonReportRow `json:"rows"`
}

type jsonPeriod struct {
	Label string `json:"label"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type jsonReportRow struct {
	Period    string `json:"period"`
	OwnerID   int64  `json:"owner_id"`
	Owner     string `json:"owner"`
	ProjectID *int64 `json:"project_id,omitempty"`
	Project   string `json:"project,omitempty"`
	Seconds   int64  `json:"seconds"`
	Duration  string `json:"duration"`
}

type jsonPayroll struct {
	ExportedAt string            `json:"exported_at"`
	Count      int               `json:"count"`
	Lines      []jsonPayrollLine `json:"lines"`
}

type jsonPayrollLine struct {
	Period          string  `json:"period"`
	OwnerID         int64   `json:"owner_id"`
	Owner           string  `json:"owner"`
	Seconds         int64   `json:"seconds"`
	Hours           float64 `json:"hours"`
	HourlyRateCents int64   `json:"hourly_rate_cents"`
	GrossCents      int64   `json:"gross_cents"`
}

// IntervalsToJSON writes the intervals as one indented document.
func IntervalsToJSON(w io.Writer, views []services.IntervalView, exportedAt time.Time) error {
	export := jsonIntervalExport{
		ExportedAt: exportedAt.UTC().Format(time.RFC3339),
		Count:      len(views),
		Entries:    make([]jsonInterval, 0, len(views)),
	}

	for _, v := range views {
		iv := v.Interval
		endStr := ""
		if iv.End != nil {
			endStr = iv.End.UTC().Format(time.RFC3339)
		}
		export.Entries = append(export.Entries, jsonInterval{
			ID:          iv.ID,
			Tenant:      domain.TenantLabel(iv.TenantID),
			OwnerID:     iv.OwnerID,
			Owner:       v.OwnerName,
			ProjectID:   iv.ProjectID,
			Project:     v.ProjectName,
			StartTime:   iv.Start.UTC().Format(time.RFC3339),
			EndTime:     endStr,
			DurationSec: v.Seconds,
			Duration:    formatDuration(v.Seconds),
			Note:        iv.Note,
		})
	}
	return writeJSON(w, export)
}

// ReportToJSON writes a report with its periods and rows.
func ReportToJSON(w io.Writer, report *services.Report, exportedAt time.Time) error {
	tz := "UTC"
	if report.Location != nil {
		tz = report.Location.String()
	}
	export := jsonReport{
		ExportedAt:   exportedAt.UTC().Format(time.RFC3339),
		Scope:        report.Scope.String(),
		Timezone:     tz,
		ByProject:    report.ByProject,
		TotalSeconds: report.TotalSeconds,
		Intervals:    report.Intervals,
		Periods:      make([]jsonPeriod, 0, len(report.Periods)),
		Rows:         make([]jsonReportRow, 0, len(report.Rows)),
	}

	for _, p := range report.Periods {
		export.Periods = append(export.Periods, jsonPeriod{
			Label: p.Label(),
			Start: p.Start.Format(time.RFC3339),
			End:   p.End.Format(time.RFC3339),
		})
	}
	for _, r := range report.Rows {
		row := jsonReportRow{
			Period:   r.Period.Label(),
			OwnerID:  r.OwnerID,
			Owner:    r.OwnerName,
			Seconds:  r.Seconds,
			Duration: formatDuration(r.Seconds),
		}
		if report.ByProject {
			projectID := r.ProjectID
			row.ProjectID = &projectID
			row.Project = r.ProjectName
		}
		export.Rows = append(export.Rows, row)
	}
	return writeJSON(w, export)
}

// PayrollToJSON writes payroll lines.
func PayrollToJSON(w io.Writer, lines []services.PayrollLine, exportedAt time.Time) error {
	export := jsonPayroll{
		ExportedAt: exportedAt.UTC().Format(time.RFC3339),
		Count:      len(lines),
		Lines:      make([]jsonPayrollLine, 0, len(lines)),
	}
	for _, l := range lines {
		export.Lines = append(export.Lines, jsonPayrollLine{
			Period:          l.Period.Label(),
			OwnerID:         l.OwnerID,
			Owner:           l.OwnerName,
			Seconds:         l.Seconds,
			Hours:           l.Hours,
			HourlyRateCents: l.HourlyRateCents,
			GrossCents:      l.GrossCents,
		})
	}
	return writeJSON(w, export)
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
