package cli

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"workhours/internal/config"
	"workhours/internal/errors"
	"workhours/internal/services"
	"workhours/internal/tenancy"
)

// timeNow is a variable that can be replaced in tests
var timeNow = time.Now

// Command is a handler for one CLI command
type Command interface {
	Execute(ctx context.Context, args []string) error
}

// App represents one invocation of the CLI: the services, the effective
// configuration and the actor every request runs as.
type App struct {
	services *services.ServiceContainer
	config   *config.Config
	actor    tenancy.Actor
	out      io.Writer
}

// NewApp creates a new CLI application instance with dependency injection
func NewApp(svc *services.ServiceContainer, cfg *config.Config, out io.Writer) *App {
	return &App{
		services: svc,
		config:   cfg,
		actor:    cfg.ResolveActor(),
		out:      out,
	}
}

// location returns the zone user-supplied times are read in: the actor's
// tenant zone when it has one, the configured default otherwise.
func (a *App) location(ctx context.Context) *time.Location {
	fallback, err := a.config.DefaultLocation()
	if err != nil {
		fallback = time.UTC
	}
	if a.actor.TenantID == nil {
		return fallback
	}
	tenant, err := a.services.TenantService.GetTenant(ctx, a.actor, *a.actor.TenantID)
	if err != nil {
		return fallback
	}
	loc, err := tenant.Location(fallback)
	if err != nil {
		return fallback
	}
	return loc
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

var shorthandPattern = regexp.MustCompile(`^(\d+)(m|h|d|w|mo|y)$`)

// parseTimeShorthand parses time shorthand like "30m", "2h", "1d", etc.
func parseTimeShorthand(shorthand string) (time.Duration, error) {
	matches := shorthandPattern.FindStringSubmatch(shorthand)
	if matches == nil {
		return 0, fmt.Errorf("invalid time format: %s", shorthand)
	}

	value, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, fmt.Errorf("invalid number in time format: %s", shorthand)
	}

	unit := matches[2]
	var duration time.Duration

	switch unit {
	case "m":
		duration = time.Duration(value) * time.Minute
	case "h":
		duration = time.Duration(value) * time.Hour
	case "d":
		duration = time.Duration(value) * 24 * time.Hour
	case "w":
		duration = time.Duration(value) * 7 * 24 * time.Hour
	case "mo":
		duration = time.Duration(value) * 30 * 24 * time.Hour
	case "y":
		duration = time.Duration(value) * 365 * 24 * time.Hour
	default:
		return 0, fmt.Errorf("invalid time unit: %s", unit)
	}

	return duration, nil
}

// timeLayouts are tried in order for absolute times without a zone.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseTimeArg reads a point in time from the command line. It accepts
// "now", "today", a shorthand meaning that long ago, RFC 3339, or a local
// date and time interpreted in loc.
func parseTimeArg(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	now := timeNow().In(loc)

	switch value {
	case "now":
		return now, nil
	case "today":
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
	}
	if d, err := parseTimeShorthand(value); err == nil {
		return now.Add(-d), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.NewInvalidInputError("time", value, "use now, today, a shorthand like 2h, RFC 3339 or YYYY-MM-DD [HH:MM]")
}

// optionalTime parses value when it is set.
func optionalTime(value string, loc *time.Location) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := parseTimeArg(value, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseScopeFlag turns a --scope value into a requested scope. An empty value
// leaves the choice to the actor's defaults.
func parseScopeFlag(value string) (*tenancy.TenantScope, error) {
	if value == "" {
		return nil, nil
	}
	scope, err := tenancy.Parse(value)
	if err != nil {
		return nil, errors.NewInvalidInputError("scope", value, "use all, default or a tenant id")
	}
	return &scope, nil
}

// optionalID maps an unset (zero) id flag to nil.
func optionalID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}
