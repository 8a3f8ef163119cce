// Package export writes intervals, reports and payroll rollups as CSV or
// JSON.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"workhours/internal/domain"
	"workhours/internal/services"
)

// Format names an export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name from user input.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want csv or json)", s)
	}
}

// ToFile creates path and hands it to write.
func ToFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// IntervalsToCSV writes one row per interval. Running intervals have an
// empty end.
func IntervalsToCSV(w io.Writer, views []services.IntervalView) error {
	cw := csv.NewWriter(w)

	// Header
	if err := cw.Write([]string{"ID", "Tenant", "Owner", "Project", "Start", "End", "Duration (s)", "Duration", "Note"}); err != nil {
		return err
	}

	for _, v := range views {
		iv := v.Interval
		endStr := ""
		if iv.End != nil {
			endStr = iv.End.UTC().Format(time.RFC3339)
		}
		row := []string{
			strconv.FormatInt(iv.ID, 10),
			domain.TenantLabel(iv.TenantID),
			v.OwnerName,
			v.ProjectName,
			iv.Start.UTC().Format(time.RFC3339),
			endStr,
			strconv.FormatInt(v.Seconds, 10),
			formatDuration(v.Seconds),
			iv.Note,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReportToCSV writes one row per report row. Period bounds are rendered in
// the report's time zone.
func ReportToCSV(w io.Writer, report *services.Report) error {
	cw := csv.NewWriter(w)

	header := []string{"Period", "Period Start", "Period End", "Owner ID", "Owner"}
	if report.ByProject {
		header = append(header, "Project ID", "Project")
	}
	header = append(header, "Seconds", "Duration")
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range report.Rows {
		row := []string{
			r.Period.Label(),
			r.Period.Start.Format(time.RFC3339),
			r.Period.End.Format(time.RFC3339),
			strconv.FormatInt(r.OwnerID, 10),
			r.OwnerName,
		}
		if report.ByProject {
			row = append(row, strconv.FormatInt(r.ProjectID, 10), r.ProjectName)
		}
		row = append(row, strconv.FormatInt(r.Seconds, 10), formatDuration(r.Seconds))
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// PayrollToCSV writes one row per payroll line with money in cents.
func PayrollToCSV(w io.Writer, lines []services.PayrollLine) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"Period", "Owner ID", "Owner", "Seconds", "Hours", "Rate (cents/h)", "Gross (cents)"}); err != nil {
		return err
	}
	for _, l := range lines {
		row := []string{
			l.Period.Label(),
			strconv.FormatInt(l.OwnerID, 10),
			l.OwnerName,
			strconv.FormatInt(l.Seconds, 10),
			strconv.FormatFloat(l.Hours, 'f', 2, 64),
			strconv.FormatInt(l.HourlyRateCents, 10),
			strconv.FormatInt(l.GrossCents, 10),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
