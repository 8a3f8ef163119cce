package cli

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"workhours/internal/errors"
	"workhours/internal/repository/sqlite"
	"workhours/internal/services"
)

// FeatureSetCommand handles "feature set"
type FeatureSetCommand struct {
	app          *App
	level        string
	scope        string
	ownerID      int64
	errorHandler *ErrorHandler
}

// Execute sets one layer of a feature flag: wh feature set NAME on|off
func (c *FeatureSetCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return c.errorHandler.Handle("set feature", errUsage("feature set", "wh feature set NAME on|off --level global|tenant|owner"))
	}
	enabled, err := parseSwitch(args[1])
	if err != nil {
		return c.errorHandler.Handle("set feature", err)
	}
	scope, err := parseScopeFlag(c.scope)
	if err != nil {
		return c.errorHandler.Handle("set feature", err)
	}

	update := services.FlagUpdate{
		Name:    args[0],
		Level:   sqlite.FlagLevel(c.level),
		Scope:   scope,
		OwnerID: optionalID(c.ownerID),
		Enabled: enabled,
	}
	if err := c.app.services.FeatureService.SetFlag(ctx, c.app.actor, update); err != nil {
		return c.errorHandler.Handle("set feature", err)
	}
	c.app.printf("Set %s to %s at %s level\n", update.Name, onOff(enabled), c.level)
	return nil
}

// FeatureGetCommand handles "feature get"
type FeatureGetCommand struct {
	app          *App
	ownerID      int64
	errorHandler *ErrorHandler
}

// Execute resolves flags for an owner and shows which layer decided each
func (c *FeatureGetCommand) Execute(ctx context.Context, args []string) error {
	for _, name := range args {
		state, err := c.app.services.FeatureService.Explain(ctx, c.app.actor, name, optionalID(c.ownerID))
		if err != nil {
			return c.errorHandler.Handle("get feature", err)
		}
		c.app.printf("%s: %s (%s)\n", state.Name, onOff(state.Enabled), state.Source)
	}
	return nil
}

func parseSwitch(value string) (bool, error) {
	switch value {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, errors.NewInvalidInputError("value", value, "must be on or off")
	}
	return b, nil
}

func onOff(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}

func (r *RootCommand) featureCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feature",
		Short: "Manage layered feature flags",
		Long: `Feature flags resolve in three layers: an owner override beats the tenant
default, which beats the global value. Unset flags are off.`,
	}

	set := &FeatureSetCommand{errorHandler: NewErrorHandler()}
	setCmd := &cobra.Command{
		Use:   "set [name] [on|off]",
		Short: "Set a flag at one layer",
		Args:  cobra.ExactArgs(2),
		RunE: r.run(func(app *App) Command {
			set.app = app
			return set
		}),
	}
	setCmd.Flags().StringVar(&set.level, "level", string(sqlite.FlagLevelOwner), "Layer to set: global, tenant or owner")
	setCmd.Flags().StringVar(&set.scope, "scope", "", "Tenant for tenant-level flags: default or a tenant id")
	setCmd.Flags().Int64Var(&set.ownerID, "for", 0, "Owner for owner-level flags (default: the acting owner)")

	get := &FeatureGetCommand{errorHandler: NewErrorHandler()}
	getCmd := &cobra.Command{
		Use:   "get [name...]",
		Short: "Resolve flags for an owner",
		Args:  cobra.MinimumNArgs(1),
		RunE: r.run(func(app *App) Command {
			get.app = app
			return get
		}),
	}
	getCmd.Flags().Int64Var(&get.ownerID, "for", 0, "Owner to resolve for (default: the acting owner)")

	cmd.AddCommand(setCmd, getCmd)
	return cmd
}
