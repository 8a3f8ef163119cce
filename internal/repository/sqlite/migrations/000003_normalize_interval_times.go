package migrations

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"workhours/internal/logging"
)

func init() {
	RegisterGoMigration(3, upNormalizeIntervalTimes, downNormalizeIntervalTimes)
}

// upNormalizeIntervalTimes rewrites every interval timestamp as UTC RFC3339.
// Range queries compare timestamps as text, which is only chronological when
// all values share one offset and one layout.
func upNormalizeIntervalTimes(tx *sql.Tx) error {
	type row struct {
		id    int64
		start string
		end   sql.NullString
	}

	rows, err := tx.Query("SELECT id, start_time, end_time FROM intervals")
	if err != nil {
		return fmt.Errorf("failed to query intervals: %w", err)
	}
	var pending []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.start, &r.end); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan interval: %w", err)
		}
		pending = append(pending, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read intervals: %w", err)
	}

	stmt, err := tx.Prepare("UPDATE intervals SET start_time = ?, end_time = ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare interval update: %w", err)
	}
	defer stmt.Close()

	for _, r := range pending {
		start, err := normalizeTimestamp(r.start)
		if err != nil {
			return fmt.Errorf("interval %d start_time: %w", r.id, err)
		}
		var end any
		if r.end.Valid && r.end.String != "" {
			e, err := normalizeTimestamp(r.end.String)
			if err != nil {
				return fmt.Errorf("interval %d end_time: %w", r.id, err)
			}
			end = e
		}
		if _, err := stmt.Exec(start, end, r.id); err != nil {
			return fmt.Errorf("failed to update interval %d: %w", r.id, err)
		}
	}

	logging.Debugf("normalized %d interval timestamps to UTC", len(pending))
	return nil
}

// downNormalizeIntervalTimes is a no-op: UTC RFC3339 is valid input for every
// earlier schema version.
func downNormalizeIntervalTimes(*sql.Tx) error {
	return nil
}

// normalizeTimestamp parses the layouts earlier versions wrote and returns
// the instant as UTC RFC3339. Values without an offset are taken as UTC.
func normalizeTimestamp(value string) (string, error) {
	if idx := strings.Index(value, " m="); idx != -1 {
		value = value[:idx]
	}

	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999 -0700 MST",
		"2006-01-02 15:04:05.999999999 -0700",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC().Format(time.RFC3339), nil
		}
	}
	return "", fmt.Errorf("could not parse time format: %s", value)
}
