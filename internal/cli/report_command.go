package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"workhours/internal/domain"
	"workhours/internal/services"
)

// reportOptions holds the flags shared by report, payroll and export.
type reportOptions struct {
	kind      string
	from      string
	to        string
	anchor    string
	count     int
	scope     string
	ownerID   int64
	projectID int64
	byProject bool
}

func (o *reportOptions) bind(cmd *cobra.Command, withBreakdown bool) {
	flags := cmd.Flags()
	flags.StringVar(&o.kind, "kind", "", "Period kind: day, week, month or custom (default from WH_REPORT_DEFAULT_KIND)")
	flags.StringVar(&o.from, "from", "", "Range start; with --to it replaces the anchor")
	flags.StringVar(&o.to, "to", "", "Range end (exclusive)")
	flags.StringVar(&o.anchor, "anchor", "", "A time inside the last period (default: now)")
	flags.IntVar(&o.count, "count", 1, "Number of consecutive periods ending with the anchor's")
	flags.StringVar(&o.scope, "scope", "", "Scope to report on: all, default or a tenant id")
	flags.Int64Var(&o.ownerID, "for", 0, "Only this owner's time")
	flags.Int64Var(&o.projectID, "project", 0, "Only time booked on this project")
	if withBreakdown {
		flags.BoolVar(&o.byProject, "by-project", false, "Break each owner's time down by project")
	}
}

// request converts the flags into a report request.
func (o *reportOptions) request(ctx context.Context, app *App) (services.ReportRequest, error) {
	kindName := o.kind
	if kindName == "" {
		kindName = app.config.Reporting.DefaultKind
	}
	kind, err := domain.ParsePeriodKind(kindName)
	if err != nil {
		return services.ReportRequest{}, err
	}
	scope, err := parseScopeFlag(o.scope)
	if err != nil {
		return services.ReportRequest{}, err
	}

	loc := app.location(ctx)
	req := services.ReportRequest{
		Kind:      kind,
		Count:     o.count,
		Scope:     scope,
		OwnerID:   optionalID(o.ownerID),
		ProjectID: optionalID(o.projectID),
		ByProject: o.byProject,
	}
	if req.From, err = optionalTime(o.from, loc); err != nil {
		return services.ReportRequest{}, err
	}
	if req.To, err = optionalTime(o.to, loc); err != nil {
		return services.ReportRequest{}, err
	}
	if req.Anchor, err = optionalTime(o.anchor, loc); err != nil {
		return services.ReportRequest{}, err
	}
	return req, nil
}

// ReportCommand handles the report command
type ReportCommand struct {
	app          *App
	opts         reportOptions
	chart        bool
	errorHandler *ErrorHandler
}

// Execute prints a period report
func (c *ReportCommand) Execute(ctx context.Context, args []string) error {
	req, err := c.opts.request(ctx, c.app)
	if err != nil {
		return c.errorHandler.Handle("build report", err)
	}
	report, err := c.app.services.ReportingService.BuildReport(ctx, c.app.actor, req)
	if err != nil {
		return c.errorHandler.Handle("build report", err)
	}

	c.app.println(renderTitle(fmt.Sprintf("Report by %s (%s, %s)", req.Kind, report.Scope, report.Location)))
	if len(report.Rows) == 0 {
		c.app.println("No tracked time in this range")
	} else {
		headers := []string{"Period", "Owner"}
		if report.ByProject {
			headers = append(headers, "Project")
		}
		headers = append(headers, "Duration", "Hours")

		rows := make([][]string, 0, len(report.Rows))
		for _, row := range report.Rows {
			cells := []string{row.Period.Label(), row.OwnerName}
			if report.ByProject {
				cells = append(cells, row.ProjectName)
			}
			cells = append(cells,
				services.FormatSeconds(row.Seconds),
				strconv.FormatFloat(services.SecondsToHours(row.Seconds), 'f', 2, 64))
			rows = append(rows, cells)
		}
		c.app.printf("%s", renderTable(headers, rows))
	}
	c.app.printf("%s %s across %d intervals\n", styleBold.Render("Total:"), services.FormatSeconds(report.TotalSeconds), report.Intervals)

	if c.chart {
		c.app.println()
		c.app.println(renderHoursChart(periodHours(report), "hours per "+string(req.Kind)))
	}
	return nil
}

// periodHours sums each period's rows into hours, in period order.
func periodHours(report *services.Report) []float64 {
	index := make(map[int64]int, len(report.Periods))
	for i, p := range report.Periods {
		index[p.Start.Unix()] = i
	}
	hours := make([]float64, len(report.Periods))
	for _, row := range report.Rows {
		if i, ok := index[row.Period.Start.Unix()]; ok {
			hours[i] += float64(row.Seconds) / 3600
		}
	}
	return hours
}

// PayrollCommand handles the payroll command
type PayrollCommand struct {
	app          *App
	opts         reportOptions
	errorHandler *ErrorHandler
}

// Execute prints pay due per owner and period
func (c *PayrollCommand) Execute(ctx context.Context, args []string) error {
	req, err := c.opts.request(ctx, c.app)
	if err != nil {
		return c.errorHandler.Handle("build payroll", err)
	}
	lines, err := c.app.services.ReportingService.Payroll(ctx, c.app.actor, req)
	if err != nil {
		return c.errorHandler.Handle("build payroll", err)
	}
	if len(lines) == 0 {
		c.app.println("No tracked time in this range")
		return nil
	}

	var gross int64
	rows := make([][]string, 0, len(lines))
	for _, l := range lines {
		gross += l.GrossCents
		rows = append(rows, []string{
			l.Period.Label(),
			l.OwnerName,
			strconv.FormatFloat(l.Hours, 'f', 2, 64),
			formatRate(l.HourlyRateCents),
			formatCents(l.GrossCents),
		})
	}
	c.app.printf("%s", renderTable([]string{"Period", "Owner", "Hours", "Rate", "Gross"}, rows))
	c.app.printf("%s %s\n", styleBold.Render("Total gross:"), formatCents(gross))
	return nil
}

// TodayCommand handles the today command
type TodayCommand struct {
	app          *App
	date         string
	errorHandler *ErrorHandler
}

// Execute prints the statistics of one tenant day
func (c *TodayCommand) Execute(ctx context.Context, args []string) error {
	var (
		stats *services.DayStatistics
		err   error
	)
	if c.date == "" {
		stats, err = c.app.services.ReportingService.GetTodayStatistics(ctx, c.app.actor)
	} else {
		var day time.Time
		if day, err = parseTimeArg(c.date, c.app.location(ctx)); err == nil {
			stats, err = c.app.services.ReportingService.GetDayStatistics(ctx, c.app.actor, day)
		}
	}
	if err != nil {
		return c.errorHandler.Handle("get day statistics", err)
	}

	c.app.println(renderTitle(stats.Date.Format("Monday 2006-01-02")))
	c.app.printf("Tracked:   %s\n", stats.TotalTime)
	c.app.printf("Owners:    %d\n", stats.OwnerCount)
	c.app.printf("Intervals: %d", stats.IntervalCount)
	if stats.RunningCount > 0 {
		c.app.printf(" (%s)", styleRunning.Render(fmt.Sprintf("%d running", stats.RunningCount)))
	}
	c.app.println()
	return nil
}

func (r *RootCommand) reportCommand() *cobra.Command {
	report := &ReportCommand{errorHandler: NewErrorHandler()}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Aggregate tracked time into periods",
		Long: `Aggregate tracked time into consecutive periods. Intervals are split exactly
at period boundaries, which are computed in the tenant's time zone. Weeks
start on Monday.

Examples:
  wh report                                  # This week
  wh report --kind day --count 7             # The last seven days
  wh report --kind month --by-project
  wh report --kind custom --from 2024-03-01 --to 2024-03-16
  wh --super report --scope all --kind week --count 4 --chart`,
		Args: cobra.NoArgs,
		RunE: r.run(func(app *App) Command {
			report.app = app
			return report
		}),
	}
	report.opts.bind(cmd, true)
	cmd.Flags().BoolVar(&report.chart, "chart", false, "Plot hours per period")
	return cmd
}

func (r *RootCommand) payrollCommand() *cobra.Command {
	payroll := &PayrollCommand{errorHandler: NewErrorHandler()}
	cmd := &cobra.Command{
		Use:   "payroll",
		Short: "Compute pay due per owner and period",
		Long:  "Compute hours and gross pay per owner and period from each owner's hourly rate. Amounts are rounded to the nearest cent.",
		Args:  cobra.NoArgs,
		RunE: r.run(func(app *App) Command {
			payroll.app = app
			return payroll
		}),
	}
	payroll.opts.bind(cmd, false)
	return cmd
}

func (r *RootCommand) todayCommand() *cobra.Command {
	today := &TodayCommand{errorHandler: NewErrorHandler()}
	cmd := &cobra.Command{
		Use:   "today",
		Short: "Show statistics for today or another day",
		Args:  cobra.NoArgs,
		RunE: r.run(func(app *App) Command {
			today.app = app
			return today
		}),
	}
	cmd.Flags().StringVar(&today.date, "date", "", "Day to show instead of today (YYYY-MM-DD)")
	return cmd
}
