package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"workhours/internal/errors"
	"workhours/internal/export"
)

// ExportCommand handles the export command
type ExportCommand struct {
	app          *App
	format       string
	output       string
	filter       intervalFilter
	report       reportOptions
	errorHandler *ErrorHandler
}

// Execute writes intervals, a report or payroll lines as CSV or JSON to
// stdout or --output.
func (c *ExportCommand) Execute(ctx context.Context, args []string) error {
	what := "intervals"
	if len(args) > 0 {
		what = args[0]
	}
	format, err := export.ParseFormat(c.format)
	if err != nil {
		return c.errorHandler.Handle("export", errors.NewInvalidInputError("format", c.format, err.Error()))
	}

	var write func(io.Writer) error
	switch what {
	case "intervals":
		write, err = c.intervals(ctx, format)
	case "report":
		write, err = c.reportWriter(ctx, format)
	case "payroll":
		write, err = c.payroll(ctx, format)
	default:
		err = errUsage("export", "wh export [intervals|report|payroll] --format csv|json")
	}
	if err != nil {
		return c.errorHandler.Handle("export "+what, err)
	}

	if c.output == "" {
		return c.errorHandler.Handle("export "+what, write(c.app.out))
	}
	if err := export.ToFile(c.output, write); err != nil {
		return c.errorHandler.Handle("export "+what, err)
	}
	c.app.printf("Exported %s to %s\n", what, c.output)
	return nil
}

func (c *ExportCommand) intervals(ctx context.Context, format export.Format) (func(io.Writer) error, error) {
	views, err := c.filter.search(ctx, c.app, nil)
	if err != nil {
		return nil, err
	}
	exportedAt := timeNow()
	return func(w io.Writer) error {
		if format == export.FormatJSON {
			return export.IntervalsToJSON(w, views, exportedAt)
		}
		return export.IntervalsToCSV(w, views)
	}, nil
}

func (c *ExportCommand) reportWriter(ctx context.Context, format export.Format) (func(io.Writer) error, error) {
	req, err := c.report.request(ctx, c.app)
	if err != nil {
		return nil, err
	}
	report, err := c.app.services.ReportingService.BuildReport(ctx, c.app.actor, req)
	if err != nil {
		return nil, err
	}
	return func(w io.Writer) error {
		if format == export.FormatJSON {
			return export.ReportToJSON(w, report, report.GeneratedAt)
		}
		return export.ReportToCSV(w, report)
	}, nil
}

func (c *ExportCommand) payroll(ctx context.Context, format export.Format) (func(io.Writer) error, error) {
	req, err := c.report.request(ctx, c.app)
	if err != nil {
		return nil, err
	}
	lines, err := c.app.services.ReportingService.Payroll(ctx, c.app.actor, req)
	if err != nil {
		return nil, err
	}
	exportedAt := timeNow()
	return func(w io.Writer) error {
		if format == export.FormatJSON {
			return export.PayrollToJSON(w, lines, exportedAt)
		}
		return export.PayrollToCSV(w, lines)
	}, nil
}

func (r *RootCommand) exportCommand() *cobra.Command {
	exp := &ExportCommand{errorHandler: NewErrorHandler()}
	cmd := &cobra.Command{
		Use:       "export [intervals|report|payroll]",
		Short:     "Export data as CSV or JSON",
		ValidArgs: []string{"intervals", "report", "payroll"},
		Long: `Export intervals, a period report or payroll lines.

Intervals are selected with --from, --to, --for, --project and --running.
Reports and payroll take the report flags (--kind, --count, --anchor, ...).
Without --output the export is written to stdout.

Examples:
  wh export --format csv > intervals.csv
  wh export report --kind month --by-project --format json --output march.json
  wh export payroll --kind week --count 2 --format csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: r.run(func(app *App) Command {
			exp.app = app
			return exp
		}),
	}

	flags := cmd.Flags()
	flags.StringVar(&exp.format, "format", string(export.FormatCSV), "Export format: csv or json")
	flags.StringVarP(&exp.output, "output", "o", "", "File to write instead of stdout")

	// interval selection; scope and owner flags are shared with the report
	flags.StringVar(&exp.filter.from, "from", "", "Range start")
	flags.StringVar(&exp.filter.to, "to", "", "Range end (exclusive)")
	flags.BoolVar(&exp.filter.running, "running", false, "Only running intervals (intervals export)")
	flags.IntVar(&exp.filter.limit, "limit", 0, "Maximum number of intervals (intervals export)")
	flags.StringVar(&exp.report.kind, "kind", "", "Period kind for report and payroll exports")
	flags.StringVar(&exp.report.anchor, "anchor", "", "A time inside the last period (default: now)")
	flags.IntVar(&exp.report.count, "count", 1, "Number of consecutive periods")
	flags.BoolVar(&exp.report.byProject, "by-project", false, "Break report rows down by project")
	flags.StringVar(&exp.report.scope, "scope", "", "Scope to export: all, default or a tenant id")
	flags.Int64Var(&exp.report.ownerID, "for", 0, "Only this owner's data")
	flags.Int64Var(&exp.report.projectID, "project", 0, "Only data booked on this project")

	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		exp.filter.scope = exp.report.scope
		exp.filter.ownerID = exp.report.ownerID
		exp.filter.projectID = exp.report.projectID
		exp.report.from = exp.filter.from
		exp.report.to = exp.filter.to
	}
	return cmd
}
