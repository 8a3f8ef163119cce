package cli

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTenantCommands(t *testing.T) {
	c := newTestCLI(t)

	_, err := c.execute(t, c.as(c.acme, c.ada, "tenant", "add", "Initech")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create tenant: permission denied")

	out, err := c.execute(t, "--super", "tenant", "add", "Initech", "--timezone", "America/New_York")
	require.NoError(t, err)
	assert.Contains(t, out, "Created tenant Initech")
	assert.Contains(t, out, "America/New_York")

	out, err = c.execute(t, "--super", "tenant", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Acme")
	assert.Contains(t, out, "Globex")
	assert.Contains(t, out, "Initech")

	out, err = c.execute(t, c.as(c.globex, c.gus, "tenant", "list")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Globex")
	assert.NotContains(t, out, "Acme", "members only see their own tenant")
}

func TestDirectoryCommands(t *testing.T) {
	c := newTestCLI(t)

	out, err := c.execute(t, c.as(c.acme, c.ada, "owner", "add", "Carol", "--rate", "5050")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Carol in "+c.acme)

	out, err = c.execute(t, c.as(c.acme, c.ada, "owner", "list")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Carol")
	assert.Contains(t, out, "50.50/h")
	assert.NotContains(t, out, "Gus")

	out, err = c.execute(t, "--super", "owner", "add", "Dora", "--scope", "default")
	require.NoError(t, err)
	assert.Contains(t, out, "Dora in <default>")

	out, err = c.execute(t, c.as(c.acme, c.ada, "project", "add", "Website")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Created project")

	out, err = c.execute(t, c.as(c.globex, c.gus, "project", "list")...)
	require.NoError(t, err)
	assert.Equal(t, "No projects found\n", out)

	_, err = c.execute(t, c.as(c.acme, c.ada, "owner", "list", "--scope", c.globex)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestTimerCommands(t *testing.T) {
	c := newTestCLI(t)
	ada := func(args ...string) []string { return c.as(c.acme, c.ada, args...) }

	out, err := c.execute(t, ada("current")...)
	require.NoError(t, err)
	assert.Equal(t, "No timer is running\n", out)

	out, err = c.execute(t, ada("start", "code", "review")...)
	require.NoError(t, err)
	assert.Contains(t, out, "at 2024-03-13 13:00", "times print in the tenant zone")

	out, err = c.execute(t, ada("current")...)
	require.NoError(t, err)
	assert.Contains(t, out, "since 2024-03-13 13:00")
	assert.Contains(t, out, ": code review")

	out, err = c.execute(t, ada("start", "meeting")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Stopped interval 1")
	assert.Contains(t, out, "Started interval 2")

	out, err = c.execute(t, ada("stop")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Stopped interval 2 after 0m")

	_, err = c.execute(t, ada("stop")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "running interval not found")

	out, err = c.execute(t, ada("add", "--start", "2024-03-11 22:00", "--end", "2024-03-12 06:00", "night", "shift")...)
	require.NoError(t, err)
	assert.Contains(t, out, "2024-03-11 22:00 - 2024-03-12 06:00 (8h 0m)")

	_, err = c.execute(t, ada("add", "--start", "2024-03-12 06:00")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "usage: wh add")

	out, err = c.execute(t, ada("delete", "1")...)
	require.NoError(t, err)
	assert.Equal(t, "Deleted interval 1\n", out)

	_, err = c.execute(t, ada("delete", "abc")...)
	require.Error(t, err)

	_, err = c.execute(t, c.as(c.globex, c.gus, "delete", "2")...)
	require.Error(t, err, "intervals of other tenants are invisible")
}

func TestListCommand_Isolation(t *testing.T) {
	c := newTestCLI(t)
	c.addInterval(t, c.ada, c.at(11, 9), c.at(11, 17))
	c.addInterval(t, c.gus, c.at(11, 9), c.at(11, 10))

	out, err := c.execute(t, c.as(c.acme, c.bob, "list")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Ada")
	assert.Contains(t, out, "8h 0m")
	assert.NotContains(t, out, "Gus")

	out, err = c.execute(t, "--super", "list", "--scope", "all")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada")
	assert.Contains(t, out, "Gus")

	out, err = c.execute(t, c.as(c.acme, c.bob, "list", "1h")...)
	require.NoError(t, err)
	assert.Equal(t, "No intervals found\n", out)

	_, err = c.execute(t, c.as(c.acme, c.bob, "list", "--scope", c.globex)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")

	_, err = c.execute(t, "--owner", "1", "list")
	require.Error(t, err, "a regular actor needs a tenant")
}

func TestListCommand_LimitShowsTotal(t *testing.T) {
	c := newTestCLI(t)
	c.addInterval(t, c.ada, c.at(11, 9), c.at(11, 10))
	c.addInterval(t, c.ada, c.at(11, 11), c.at(11, 12))
	c.addInterval(t, c.bob, c.at(12, 9), c.at(12, 10))
	c.addInterval(t, c.gus, c.at(12, 9), c.at(12, 10))

	out, err := c.execute(t, c.as(c.acme, c.ada, "list", "--limit", "2")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Showing 2 of 3 intervals", "the total stays inside the tenant")

	out, err = c.execute(t, c.as(c.acme, c.ada, "list", "--limit", "5")...)
	require.NoError(t, err)
	assert.NotContains(t, out, "Showing")
}

func TestReportCommand(t *testing.T) {
	c := newTestCLI(t)
	c.addInterval(t, c.ada, c.at(11, 22), c.at(12, 6))

	out, err := c.execute(t, c.as(c.acme, c.ada, "report", "--kind", "day", "--from", "2024-03-11", "--to", "2024-03-13")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Report by day (tenant:"+c.acme+", Europe/Berlin)")
	assert.Contains(t, out, "2024-03-11")
	assert.Contains(t, out, "2h 0m")
	assert.Contains(t, out, "2024-03-12")
	assert.Contains(t, out, "6h 0m")
	assert.Contains(t, out, "Total: 8h 0m across 1 intervals")

	out, err = c.execute(t, c.as(c.acme, c.ada, "report", "--kind", "day", "--count", "3", "--anchor", "2024-03-13", "--chart")...)
	require.NoError(t, err)
	assert.Contains(t, out, "hours per day")

	out, err = c.execute(t, c.as(c.globex, c.gus, "report", "--kind", "week", "--anchor", "2024-03-11")...)
	require.NoError(t, err)
	assert.Contains(t, out, "No tracked time in this range")

	_, err = c.execute(t, c.as(c.acme, c.ada, "report", "--kind", "custom")...)
	require.Error(t, err)

	_, err = c.execute(t, c.as(c.acme, c.ada, "report", "--kind", "fortnight")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be day, week, month or custom")
}

func TestPayrollAndTodayCommands(t *testing.T) {
	c := newTestCLI(t)
	c.addInterval(t, c.ada, c.at(11, 9), c.at(11, 17))
	c.addInterval(t, c.bob, c.at(12, 9), c.at(12, 10))

	out, err := c.execute(t, c.as(c.acme, c.ada, "payroll", "--kind", "week", "--anchor", "2024-03-11")...)
	require.NoError(t, err)
	assert.Contains(t, out, "2024-W11")
	assert.Contains(t, out, "8.00")
	assert.Contains(t, out, "60.00/h")
	assert.Contains(t, out, "480.00")
	assert.Contains(t, out, "Total gross: 525.00")

	out, err = c.execute(t, c.as(c.acme, c.ada, "today", "--date", "2024-03-12")...)
	require.NoError(t, err)
	assert.Contains(t, out, "2024-03-12")
	assert.Contains(t, out, "Tracked:   1h 0m")
	assert.Contains(t, out, "Owners:    1")
}

func TestExportCommand(t *testing.T) {
	c := newTestCLI(t)
	c.addInterval(t, c.ada, c.at(11, 22), c.at(12, 6))
	c.addInterval(t, c.gus, c.at(11, 9), c.at(11, 10))

	out, err := c.execute(t, c.as(c.acme, c.ada, "export", "--format", "csv", "--from", "2024-03-11", "--to", "2024-03-13")...)
	require.NoError(t, err)
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2, "header + Ada's interval only")
	assert.Equal(t, "Ada", records[1][2])

	path := filepath.Join(t.TempDir(), "report.json")
	out, err = c.execute(t, c.as(c.acme, c.ada, "export", "report", "--kind", "day", "--from", "2024-03-11", "--to", "2024-03-13", "--format", "json", "--output", path)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported report to "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var report struct {
		TotalSeconds int64 `json:"total_seconds"`
		Rows         []struct {
			Period string `json:"period"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, int64(28800), report.TotalSeconds)
	require.Len(t, report.Rows, 2)
	assert.Equal(t, "2024-03-11", report.Rows[0].Period)

	out, err = c.execute(t, c.as(c.acme, c.ada, "export", "payroll", "--kind", "week", "--anchor", "2024-03-11")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Gross (cents)")

	_, err = c.execute(t, c.as(c.acme, c.ada, "export", "--format", "xlsx")...)
	require.Error(t, err)

	_, err = c.execute(t, c.as(c.acme, c.ada, "export", "tasks")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "usage: wh export")
}

func TestFeatureCommands(t *testing.T) {
	c := newTestCLI(t)

	out, err := c.execute(t, c.as(c.acme, c.ada, "feature", "get", "anomaly_detection")...)
	require.NoError(t, err)
	assert.Equal(t, "anomaly_detection: off (global)\n", out)

	_, err = c.execute(t, c.as(c.acme, c.ada, "feature", "set", "anomaly_detection", "on", "--level", "global")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")

	out, err = c.execute(t, "--super", "feature", "set", "anomaly_detection", "on", "--level", "global")
	require.NoError(t, err)
	assert.Equal(t, "Set anomaly_detection to on at global level\n", out)

	_, err = c.execute(t, c.as(c.acme, c.ada, "feature", "set", "anomaly_detection", "off", "--level", "tenant")...)
	require.NoError(t, err)

	out, err = c.execute(t, c.as(c.acme, c.ada, "feature", "get", "anomaly_detection")...)
	require.NoError(t, err)
	assert.Equal(t, "anomaly_detection: off (tenant)\n", out)

	out, err = c.execute(t, c.as(c.globex, c.gus, "feature", "get", "anomaly_detection")...)
	require.NoError(t, err)
	assert.Equal(t, "anomaly_detection: on (global)\n", out)

	_, err = c.execute(t, c.as(c.acme, c.ada, "feature", "set", "anomaly_detection", "maybe")...)
	require.Error(t, err)
}

func TestConfigShow_SkipsStorage(t *testing.T) {
	out, err := executeWith(t, failingOpener, "--default-timezone", "Europe/Berlin", "--workers", "8", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "[reporting]")
	assert.Contains(t, out, `default_timezone = "Europe/Berlin"`)
	assert.Contains(t, out, "workers = 8")

	_, err = executeWith(t, failingOpener, "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage must not be opened")

	_, err = executeWith(t, failingOpener, "--default-timezone", "Mars/Olympus", "config", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}
