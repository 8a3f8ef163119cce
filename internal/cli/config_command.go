package cli

import (
	"context"

	"github.com/spf13/cobra"

	"workhours/internal/config"
)

// ConfigShowCommand handles "config show"
type ConfigShowCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// Execute prints the effective configuration as TOML. The output can be
// saved as the config file.
func (c *ConfigShowCommand) Execute(ctx context.Context, args []string) error {
	if err := config.WriteTOML(c.app.out, c.app.config); err != nil {
		return c.errorHandler.Handle("show configuration", err)
	}
	return nil
}

func (r *RootCommand) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	show := &ConfigShowCommand{errorHandler: NewErrorHandler()}
	showCmd := &cobra.Command{
		Use:         "show",
		Short:       "Print the effective configuration as TOML",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipStorage: "true"},
		RunE: r.run(func(app *App) Command {
			show.app = app
			return show
		}),
	}

	cmd.AddCommand(showCmd)
	return cmd
}
