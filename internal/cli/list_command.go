package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"workhours/internal/domain"
	"workhours/internal/services"
	"workhours/internal/tenancy"
)

// intervalFilter holds the flags that select intervals.
type intervalFilter struct {
	scope     string
	from      string
	to        string
	ownerID   int64
	projectID int64
	running   bool
	limit     int
}

func (f *intervalFilter) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.scope, "scope", "", "Scope to search: all, default or a tenant id")
	flags.StringVar(&f.from, "from", "", "Only intervals that end after this time")
	flags.StringVar(&f.to, "to", "", "Only intervals that start before this time")
	flags.Int64Var(&f.ownerID, "for", 0, "Only this owner's intervals")
	flags.Int64Var(&f.projectID, "project", 0, "Only intervals booked on this project")
	flags.BoolVar(&f.running, "running", false, "Only running intervals")
	flags.IntVar(&f.limit, "limit", 0, "Maximum number of intervals")
}

// search runs the filter. A leading shorthand argument such as "2d" selects
// intervals from that long ago until now.
func (f *intervalFilter) search(ctx context.Context, app *App, args []string) ([]services.IntervalView, error) {
	scope, query, err := f.query(ctx, app, args)
	if err != nil {
		return nil, err
	}
	return app.services.SearchService.SearchIntervals(ctx, app.actor, scope, query)
}

// query converts the flags and the optional shorthand argument into a scope
// and an interval query.
func (f *intervalFilter) query(ctx context.Context, app *App, args []string) (*tenancy.TenantScope, domain.IntervalQuery, error) {
	scope, err := parseScopeFlag(f.scope)
	if err != nil {
		return nil, domain.IntervalQuery{}, err
	}

	loc := app.location(ctx)
	query := domain.IntervalQuery{
		OwnerID:     optionalID(f.ownerID),
		ProjectID:   optionalID(f.projectID),
		RunningOnly: f.running,
		Limit:       f.limit,
	}
	if len(args) > 0 {
		d, err := parseTimeShorthand(args[0])
		if err != nil {
			return nil, query, errUsage("list", "wh list [30m|2h|1d|2w|3mo|1y]")
		}
		now := timeNow()
		from := now.Add(-d)
		query.From, query.To = &from, &now
	}
	if query.From == nil {
		if query.From, err = optionalTime(f.from, loc); err != nil {
			return nil, query, err
		}
	}
	if query.To == nil {
		if query.To, err = optionalTime(f.to, loc); err != nil {
			return nil, query, err
		}
	}
	return scope, query, nil
}

// ListCommand handles the list command
type ListCommand struct {
	app          *App
	filter       intervalFilter
	errorHandler *ErrorHandler
}

// Execute prints one line per interval, oldest first
func (c *ListCommand) Execute(ctx context.Context, args []string) error {
	scope, query, err := c.filter.query(ctx, c.app, args)
	if err != nil {
		return c.errorHandler.Handle("list intervals", err)
	}
	views, err := c.app.services.SearchService.SearchIntervals(ctx, c.app.actor, scope, query)
	if err != nil {
		return c.errorHandler.Handle("list intervals", err)
	}
	if len(views) == 0 {
		c.app.println("No intervals found")
		return nil
	}

	loc := c.app.location(ctx)
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		iv := v.Interval
		rows = append(rows, []string{
			strconv.FormatInt(iv.ID, 10),
			domain.TenantLabel(iv.TenantID),
			v.OwnerName,
			v.ProjectName,
			iv.Start.In(loc).Format(clockLayout),
			formatEnd(iv, loc),
			v.Duration,
			truncateCell(iv.Note, maxNoteWidth),
		})
	}
	c.app.printf("%s", renderTable([]string{"ID", "Tenant", "Owner", "Project", "Start", "End", "Duration", "Note"}, rows))

	if query.Limit > 0 && len(views) == query.Limit {
		total, err := c.app.services.SearchService.CountIntervals(ctx, c.app.actor, scope, query)
		if err != nil {
			return c.errorHandler.Handle("count intervals", err)
		}
		c.app.println(styleDim.Render(fmt.Sprintf("Showing %d of %d intervals", len(views), total)))
	}
	return nil
}

func (r *RootCommand) listCommand() *cobra.Command {
	list := &ListCommand{errorHandler: NewErrorHandler()}
	cmd := &cobra.Command{
		Use:   "list [time]",
		Short: "List intervals",
		Long: `List intervals with optional filtering.

Time filters support: 30m, 2h, 1d, 2w, 3mo, 1y

Examples:
  wh list                        # List every interval in scope
  wh list 1d                     # Intervals touching the last day
  wh list --from 2024-03-01 --to 2024-04-01 --for 3
  wh --super list --scope default --running`,
		Args: cobra.MaximumNArgs(1),
		RunE: r.run(func(app *App) Command {
			list.app = app
			return list
		}),
	}
	list.filter.bind(cmd)
	return cmd
}
