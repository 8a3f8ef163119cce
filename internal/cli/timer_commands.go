package cli

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"workhours/internal/domain"
	"workhours/internal/errors"
	"workhours/internal/services"
)

const clockLayout = "2006-01-02 15:04"

// StartCommand handles the start command
type StartCommand struct {
	app          *App
	ownerID      int64
	projectID    int64
	errorHandler *ErrorHandler
}

// Execute starts a timer, stopping the owner's running one first. Arguments
// form the note.
func (c *StartCommand) Execute(ctx context.Context, args []string) error {
	current, _ := c.app.services.TimerService.Current(ctx, c.app.actor, optionalID(c.ownerID))

	interval, err := c.app.services.TimerService.Start(ctx, c.app.actor, services.StartRequest{
		OwnerID:   optionalID(c.ownerID),
		ProjectID: optionalID(c.projectID),
		Note:      strings.Join(args, " "),
	})
	if err != nil {
		return c.errorHandler.Handle("start timer", err)
	}

	if current != nil {
		c.app.printf("Stopped interval %d\n", current.ID)
	}
	c.app.printf("Started interval %d for owner %d at %s\n",
		interval.ID, interval.OwnerID, interval.Start.In(c.app.location(ctx)).Format(clockLayout))
	return nil
}

// StopCommand handles the stop command
type StopCommand struct {
	app          *App
	ownerID      int64
	errorHandler *ErrorHandler
}

// Execute stops the owner's running interval
func (c *StopCommand) Execute(ctx context.Context, args []string) error {
	interval, err := c.app.services.TimerService.Stop(ctx, c.app.actor, optionalID(c.ownerID))
	if err != nil {
		return c.errorHandler.Handle("stop timer", err)
	}
	c.app.printf("Stopped interval %d after %s\n", interval.ID, services.FormatDuration(interval.End.Sub(interval.Start)))
	return nil
}

// CurrentCommand handles the current command
type CurrentCommand struct {
	app          *App
	ownerID      int64
	errorHandler *ErrorHandler
}

// Execute shows the owner's running interval
func (c *CurrentCommand) Execute(ctx context.Context, args []string) error {
	interval, err := c.app.services.TimerService.Current(ctx, c.app.actor, optionalID(c.ownerID))
	if err != nil {
		return c.errorHandler.Handle("get current interval", err)
	}
	if interval == nil {
		c.app.println("No timer is running")
		return nil
	}

	elapsed := timeNow().Sub(interval.Start)
	c.app.printf("%s interval %d since %s (%s)", styleRunning.Render("Running"),
		interval.ID, interval.Start.In(c.app.location(ctx)).Format(clockLayout), services.FormatDuration(elapsed))
	if interval.Note != "" {
		c.app.printf(": %s", interval.Note)
	}
	c.app.println()
	return nil
}

// AddCommand handles the add command
type AddCommand struct {
	app          *App
	ownerID      int64
	projectID    int64
	start        string
	end          string
	errorHandler *ErrorHandler
}

// Execute records a finished interval
func (c *AddCommand) Execute(ctx context.Context, args []string) error {
	if c.start == "" || c.end == "" {
		return c.errorHandler.Handle("add interval", errUsage("add", `wh add --start "2024-03-11 09:00" --end "2024-03-11 12:30" [note]`))
	}
	loc := c.app.location(ctx)
	start, err := parseTimeArg(c.start, loc)
	if err != nil {
		return c.errorHandler.Handle("add interval", err)
	}
	end, err := parseTimeArg(c.end, loc)
	if err != nil {
		return c.errorHandler.Handle("add interval", err)
	}

	interval, err := c.app.services.TimerService.Add(ctx, c.app.actor, services.AddRequest{
		OwnerID:   optionalID(c.ownerID),
		ProjectID: optionalID(c.projectID),
		Start:     start,
		End:       end,
		Note:      strings.Join(args, " "),
	})
	if err != nil {
		return c.errorHandler.Handle("add interval", err)
	}
	c.app.printf("Added interval %d: %s - %s (%s)\n", interval.ID,
		interval.Start.In(loc).Format(clockLayout), interval.End.In(loc).Format(clockLayout),
		services.FormatDuration(interval.End.Sub(interval.Start)))
	return nil
}

// DeleteCommand handles the delete command
type DeleteCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// Execute deletes intervals by id
func (c *DeleteCommand) Execute(ctx context.Context, args []string) error {
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return c.errorHandler.Handle("delete interval", errors.NewInvalidInputError("id", arg, "must be a positive integer"))
		}
		if err := c.app.services.TimerService.Delete(ctx, c.app.actor, id); err != nil {
			return c.errorHandler.Handle("delete interval", err)
		}
		c.app.printf("Deleted interval %d\n", id)
	}
	return nil
}

func (r *RootCommand) timerCommands() []*cobra.Command {
	start := &StartCommand{errorHandler: NewErrorHandler()}
	startCmd := &cobra.Command{
		Use:   "start [note]",
		Short: "Start a timer",
		Long:  "Start tracking time for an owner. A timer that is already running for the owner is stopped first.",
		RunE: r.run(func(app *App) Command {
			start.app = app
			return start
		}),
	}
	startCmd.Flags().Int64Var(&start.ownerID, "for", 0, "Owner to start the timer for (default: the acting owner)")
	startCmd.Flags().Int64Var(&start.projectID, "project", 0, "Project to book the time on")

	stop := &StopCommand{errorHandler: NewErrorHandler()}
	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the running timer",
		Args:  cobra.NoArgs,
		RunE: r.run(func(app *App) Command {
			stop.app = app
			return stop
		}),
	}
	stopCmd.Flags().Int64Var(&stop.ownerID, "for", 0, "Owner whose timer to stop (default: the acting owner)")

	current := &CurrentCommand{errorHandler: NewErrorHandler()}
	currentCmd := &cobra.Command{
		Use:   "current",
		Short: "Show the running timer",
		Args:  cobra.NoArgs,
		RunE: r.run(func(app *App) Command {
			current.app = app
			return current
		}),
	}
	currentCmd.Flags().Int64Var(&current.ownerID, "for", 0, "Owner to show (default: the acting owner)")

	add := &AddCommand{errorHandler: NewErrorHandler()}
	addCmd := &cobra.Command{
		Use:   "add [note]",
		Short: "Record a finished interval",
		Long: `Record an interval after the fact. Times without a zone are read in the
acting tenant's time zone.

Examples:
  wh add --start "2024-03-11 22:00" --end "2024-03-12 06:00" night shift
  wh add --start 3h --end 1h --project 2`,
		RunE: r.run(func(app *App) Command {
			add.app = app
			return add
		}),
	}
	addCmd.Flags().Int64Var(&add.ownerID, "for", 0, "Owner the interval belongs to (default: the acting owner)")
	addCmd.Flags().Int64Var(&add.projectID, "project", 0, "Project to book the time on")
	addCmd.Flags().StringVar(&add.start, "start", "", "Start time")
	addCmd.Flags().StringVar(&add.end, "end", "", "End time")

	del := &DeleteCommand{errorHandler: NewErrorHandler()}
	deleteCmd := &cobra.Command{
		Use:   "delete [interval id...]",
		Short: "Delete intervals",
		Long:  "Delete whole intervals by id. This operation cannot be undone.",
		Args:  cobra.MinimumNArgs(1),
		RunE: r.run(func(app *App) Command {
			del.app = app
			return del
		}),
	}

	return []*cobra.Command{startCmd, stopCmd, currentCmd, addCmd, deleteCmd}
}

// formatEnd renders an interval end, or the running marker.
func formatEnd(iv domain.Interval, loc *time.Location) string {
	if iv.End == nil {
		return styleRunning.Render(runningLabel)
	}
	return iv.End.In(loc).Format(clockLayout)
}
