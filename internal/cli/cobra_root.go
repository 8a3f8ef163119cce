package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"workhours/internal/config"
	"workhours/internal/logging"
	"workhours/internal/services"
)

// skipStorage marks commands that run without opening the database.
const skipStorage = "skip-storage"

// Opener builds the services for one invocation from the effective
// configuration. The returned function releases them.
type Opener func(cfg *config.Config) (*services.ServiceContainer, func() error, error)

// OpenSQLite opens the configured SQLite database and wires the services.
func OpenSQLite(cfg *config.Config) (*services.ServiceContainer, func() error, error) {
	repo, err := config.CreateRepository(cfg)
	if err != nil {
		return nil, nil, err
	}
	settings, err := services.SettingsFromConfig(cfg)
	if err != nil {
		repo.Close()
		return nil, nil, err
	}
	return services.NewServiceContainer(repo, settings), repo.Close, nil
}

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd    *cobra.Command
	loader *config.Loader
	open   Opener
	config *config.Config
	app    *App
	close  func() error
}

// NewRootCommand creates the root cobra command with global flags
func NewRootCommand(loader *config.Loader, open Opener) *RootCommand {
	root := &RootCommand{
		loader: loader,
		open:   open,
	}

	root.cmd = &cobra.Command{
		Use:   "wh",
		Short: "Multi-tenant work hours tracking and reporting",
		Long: `Workhours (wh) records work intervals for the owners of many tenants and
aggregates them into day, week, month or custom periods.

FEATURES:
  • Start and stop timers, or record finished intervals after the fact
  • Split intervals exactly at period boundaries in each tenant's time zone
  • Per-owner and per-project reports, payroll rollups and daily statistics
  • Strict tenant isolation: regular actors only ever see their own tenant
  • Export intervals, reports and payroll as CSV or JSON

EXAMPLES:
  wh --super tenant add "Acme" --timezone Europe/Berlin
  wh --tenant <id> --owner 1 start "code review"
  wh --tenant <id> --owner 1 stop
  wh --tenant <id> report --kind week --count 4 --by-project
  wh --super report --scope all --kind month
  wh --tenant <id> export report --format csv --output march.csv

CONFIGURATION:
  Configuration follows this priority order: command-line flags > environment variables > .env > config file > defaults
  The config file is read from $WH_CONFIG or ~/.workhours/config.toml.

  Database Configuration:
    WH_DB_DIR                              Database directory (default: ~/.workhours)
    WH_DB_FILENAME                         Database filename (default: workhours.db)
    WH_DB_QUERY_TIMEOUT                    Query timeout (default: 10s)

  Reporting Configuration:
    WH_REPORT_TIMEZONE                     Zone for the default tenant (default: UTC)
    WH_REPORT_STRICT_SCOPE                 Re-check loaded rows against the scope (default: on outside production)
    WH_REPORT_WORKERS                      Parallel aggregation workers (default: 4)
    WH_REPORT_DEFAULT_KIND                 Default period kind (default: week)

  Validation Configuration:
    WH_VALIDATION_NAME_MIN                 Min name length (default: 1)
    WH_VALIDATION_NAME_MAX                 Max name length (default: 255)
    WH_VALIDATION_MAX_DURATION             Max interval duration (default: 24h)

  Actor Configuration:
    WH_ACTOR_OWNER_ID                      Acting owner id
    WH_ACTOR_TENANT_ID                     Acting tenant id
    WH_ACTOR_SUPER                         Act as a platform super-actor (default: false)

  Application Configuration:
    WH_ENV                                 Environment name (default: development)
    WH_APP_TIMEOUT                         Application timeout (default: 60s)
    WH_APP_VERBOSE                         Enable verbose output (default: false)
    WH_DEBUG                               Enable debug logging

TIME FORMATS:
  now, today, 2024-03-11, "2024-03-11 09:30", RFC 3339, or a shorthand meaning that long ago:
    30m, 2h, 1d, 2w, 3mo, 1y

GETTING HELP:
  wh [command] --help                      # Get help for any specific command
  wh completion bash                       # Generate bash completion script`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return root.prepare(cmd)
		},
	}

	// Add global flags for configuration overrides
	root.addGlobalFlags()

	// Add all subcommands
	root.addSubcommands()

	return root
}

// Command exposes the cobra command for tests and completion.
func (r *RootCommand) Command() *cobra.Command {
	return r.cmd
}

// Execute runs the root command and releases the services afterwards
func (r *RootCommand) Execute() error {
	err := r.cmd.Execute()
	if r.close != nil {
		if closeErr := r.close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close database: %w", closeErr)
		}
		r.close = nil
	}
	return err
}

// SetArgs sets the arguments the next Execute parses.
func (r *RootCommand) SetArgs(args []string) {
	r.cmd.SetArgs(args)
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	// Database configuration
	flags.String("db-dir", "", "Database directory (overrides WH_DB_DIR)")
	flags.String("db-filename", "", "Database filename, :memory: for a throwaway database (overrides WH_DB_FILENAME)")
	flags.Duration("db-query-timeout", 0, "Database query timeout (overrides WH_DB_QUERY_TIMEOUT)")

	// Reporting configuration
	flags.String("default-timezone", "", "Time zone of the default tenant (overrides WH_REPORT_TIMEZONE)")
	flags.Bool("strict-scope", false, "Re-check loaded rows against the scope (overrides WH_REPORT_STRICT_SCOPE)")
	flags.Int("workers", 0, "Parallel aggregation workers (overrides WH_REPORT_WORKERS)")

	// Actor configuration
	flags.Int64("owner", 0, "Acting owner id (overrides WH_ACTOR_OWNER_ID)")
	flags.String("tenant", "", "Acting tenant id (overrides WH_ACTOR_TENANT_ID)")
	flags.Bool("super", false, "Act as a platform super-actor (overrides WH_ACTOR_SUPER)")

	// Application configuration
	flags.String("env", "", "Environment name (overrides WH_ENV)")
	flags.Duration("app-timeout", 0, "Application timeout (overrides WH_APP_TIMEOUT)")
	flags.Bool("verbose", false, "Enable verbose output (overrides WH_APP_VERBOSE)")
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	r.cmd.AddCommand(
		r.tenantCommand(),
		r.ownerCommand(),
		r.projectCommand(),
	)
	r.cmd.AddCommand(r.timerCommands()...)
	r.cmd.AddCommand(
		r.listCommand(),
		r.reportCommand(),
		r.payrollCommand(),
		r.todayCommand(),
		r.exportCommand(),
		r.featureCommand(),
		r.configCommand(),
	)
}

// prepare loads the configuration with flag overrides, configures logging
// and opens the services unless the command runs without storage.
func (r *RootCommand) prepare(cmd *cobra.Command) error {
	cfg, err := r.loader.LoadWithOverrides(r.getOverridesFromFlags())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	r.config = cfg
	logging.Configure(cmd.ErrOrStderr(), cfg.Application.Verbose)
	logging.Debugf("running %s as %+v", cmd.CommandPath(), cfg.ResolveActor())

	if cmd.Annotations[skipStorage] == "true" {
		r.app = &App{config: cfg, actor: cfg.ResolveActor(), out: cmd.OutOrStdout()}
		return nil
	}

	svc, closeFn, err := r.open(cfg)
	if err != nil {
		return err
	}
	r.close = closeFn
	r.app = NewApp(svc, cfg, cmd.OutOrStdout())
	return nil
}

// run adapts a handler constructor to a cobra RunE with the application timeout
func (r *RootCommand) run(handler func(app *App) Command) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), r.getAppTimeout())
		defer cancel()

		return handler(r.app).Execute(ctx, args)
	}
}

// getAppTimeout returns the configured application timeout
func (r *RootCommand) getAppTimeout() time.Duration {
	if r.config != nil {
		return r.config.Application.Timeout
	}
	return 60 * time.Second // Default timeout
}

// getOverridesFromFlags collects the global flags the user actually set
func (r *RootCommand) getOverridesFromFlags() *config.ConfigOverrides {
	flags := r.cmd.PersistentFlags()
	overrides := &config.ConfigOverrides{}

	// Database configuration
	if changed(flags, "db-dir") {
		v, _ := flags.GetString("db-dir")
		overrides.DBDir = &v
	}
	if changed(flags, "db-filename") {
		v, _ := flags.GetString("db-filename")
		overrides.DBFilename = &v
	}
	if changed(flags, "db-query-timeout") {
		v, _ := flags.GetDuration("db-query-timeout")
		overrides.DBQueryTimeout = &v
	}

	// Reporting configuration
	if changed(flags, "default-timezone") {
		v, _ := flags.GetString("default-timezone")
		overrides.Timezone = &v
	}
	if changed(flags, "strict-scope") {
		v, _ := flags.GetBool("strict-scope")
		overrides.StrictScope = &v
	}
	if changed(flags, "workers") {
		v, _ := flags.GetInt("workers")
		overrides.Workers = &v
	}

	// Actor configuration
	if changed(flags, "owner") {
		v, _ := flags.GetInt64("owner")
		overrides.OwnerID = &v
	}
	if changed(flags, "tenant") {
		v, _ := flags.GetString("tenant")
		overrides.TenantID = &v
	}
	if changed(flags, "super") {
		v, _ := flags.GetBool("super")
		overrides.Super = &v
	}

	// Application configuration
	if changed(flags, "env") {
		v, _ := flags.GetString("env")
		overrides.Environment = &v
	}
	if changed(flags, "app-timeout") {
		v, _ := flags.GetDuration("app-timeout")
		overrides.Timeout = &v
	}
	if changed(flags, "verbose") {
		v, _ := flags.GetBool("verbose")
		overrides.Verbose = &v
	}

	return overrides
}

func changed(flags *pflag.FlagSet, name string) bool {
	f := flags.Lookup(name)
	return f != nil && f.Changed
}
