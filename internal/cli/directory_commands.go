package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"workhours/internal/domain"
	"workhours/internal/errors"
)

// TenantAddCommand handles "tenant add"
type TenantAddCommand struct {
	app          *App
	timezone     string
	errorHandler *ErrorHandler
}

// Execute creates a tenant. Only platform super-actors may do this.
func (c *TenantAddCommand) Execute(ctx context.Context, args []string) error {
	name := strings.Join(args, " ")
	tenant, err := c.app.services.TenantService.CreateTenant(ctx, c.app.actor, name, c.timezone)
	if err != nil {
		return c.errorHandler.Handle("create tenant", err)
	}
	c.app.printf("Created tenant %s (%s, %s)\n", tenant.Name, tenant.ID, tenant.Timezone)
	return nil
}

// TenantListCommand handles "tenant list"
type TenantListCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// Execute lists the tenants visible to the actor
func (c *TenantListCommand) Execute(ctx context.Context, args []string) error {
	tenants, err := c.app.services.TenantService.ListTenants(ctx, c.app.actor)
	if err != nil {
		return c.errorHandler.Handle("list tenants", err)
	}
	if len(tenants) == 0 {
		c.app.println("No tenants found")
		return nil
	}
	rows := make([][]string, 0, len(tenants))
	for _, t := range tenants {
		rows = append(rows, []string{t.ID, t.Name, t.Timezone})
	}
	c.app.printf("%s", renderTable([]string{"ID", "Name", "Timezone"}, rows))
	return nil
}

// OwnerAddCommand handles "owner add"
type OwnerAddCommand struct {
	app          *App
	scope        string
	rateCents    int64
	errorHandler *ErrorHandler
}

// Execute creates an owner in the actor's tenant, or the tenant named by
// --scope for super-actors.
func (c *OwnerAddCommand) Execute(ctx context.Context, args []string) error {
	scope, err := parseScopeFlag(c.scope)
	if err != nil {
		return c.errorHandler.Handle("create owner", err)
	}
	owner, err := c.app.services.DirectoryService.CreateOwner(ctx, c.app.actor, scope, strings.Join(args, " "), c.rateCents)
	if err != nil {
		return c.errorHandler.Handle("create owner", err)
	}
	c.app.printf("Created owner %d: %s in %s\n", owner.ID, owner.Name, domain.TenantLabel(owner.TenantID))
	return nil
}

// OwnerListCommand handles "owner list"
type OwnerListCommand struct {
	app          *App
	scope        string
	errorHandler *ErrorHandler
}

// Execute lists owners in scope
func (c *OwnerListCommand) Execute(ctx context.Context, args []string) error {
	scope, err := parseScopeFlag(c.scope)
	if err != nil {
		return c.errorHandler.Handle("list owners", err)
	}
	owners, err := c.app.services.DirectoryService.ListOwners(ctx, c.app.actor, scope)
	if err != nil {
		return c.errorHandler.Handle("list owners", err)
	}
	if len(owners) == 0 {
		c.app.println("No owners found")
		return nil
	}
	rows := make([][]string, 0, len(owners))
	for _, o := range owners {
		rows = append(rows, []string{
			strconv.FormatInt(o.ID, 10),
			domain.TenantLabel(o.TenantID),
			o.Name,
			formatRate(o.HourlyRateCents),
		})
	}
	c.app.printf("%s", renderTable([]string{"ID", "Tenant", "Name", "Rate"}, rows))
	return nil
}

// ProjectAddCommand handles "project add"
type ProjectAddCommand struct {
	app          *App
	scope        string
	errorHandler *ErrorHandler
}

// Execute creates a project
func (c *ProjectAddCommand) Execute(ctx context.Context, args []string) error {
	scope, err := parseScopeFlag(c.scope)
	if err != nil {
		return c.errorHandler.Handle("create project", err)
	}
	project, err := c.app.services.DirectoryService.CreateProject(ctx, c.app.actor, scope, strings.Join(args, " "))
	if err != nil {
		return c.errorHandler.Handle("create project", err)
	}
	c.app.printf("Created project %d: %s in %s\n", project.ID, project.Name, domain.TenantLabel(project.TenantID))
	return nil
}

// ProjectListCommand handles "project list"
type ProjectListCommand struct {
	app          *App
	scope        string
	errorHandler *ErrorHandler
}

// Execute lists projects in scope
func (c *ProjectListCommand) Execute(ctx context.Context, args []string) error {
	scope, err := parseScopeFlag(c.scope)
	if err != nil {
		return c.errorHandler.Handle("list projects", err)
	}
	projects, err := c.app.services.DirectoryService.ListProjects(ctx, c.app.actor, scope)
	if err != nil {
		return c.errorHandler.Handle("list projects", err)
	}
	if len(projects) == 0 {
		c.app.println("No projects found")
		return nil
	}
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{strconv.FormatInt(p.ID, 10), domain.TenantLabel(p.TenantID), p.Name})
	}
	c.app.printf("%s", renderTable([]string{"ID", "Tenant", "Name"}, rows))
	return nil
}

func (r *RootCommand) tenantCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Manage tenants",
	}

	add := &TenantAddCommand{errorHandler: NewErrorHandler()}
	addCmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Create a tenant (super-actors only)",
		Args:  cobra.MinimumNArgs(1),
		RunE: r.run(func(app *App) Command {
			add.app = app
			return add
		}),
	}
	addCmd.Flags().StringVar(&add.timezone, "timezone", "", "IANA time zone the tenant's periods are cut in (default UTC)")

	list := &TenantListCommand{errorHandler: NewErrorHandler()}
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List tenants",
		Args:  cobra.NoArgs,
		RunE: r.run(func(app *App) Command {
			list.app = app
			return list
		}),
	}

	cmd.AddCommand(addCmd, listCmd)
	return cmd
}

func (r *RootCommand) ownerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "owner",
		Short: "Manage owners whose time is tracked",
	}

	add := &OwnerAddCommand{errorHandler: NewErrorHandler()}
	addCmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Create an owner",
		Args:  cobra.MinimumNArgs(1),
		RunE: r.run(func(app *App) Command {
			add.app = app
			return add
		}),
	}
	addCmd.Flags().StringVar(&add.scope, "scope", "", "Tenant to create the owner in: default or a tenant id")
	addCmd.Flags().Int64Var(&add.rateCents, "rate", 0, "Hourly rate in cents")

	list := &OwnerListCommand{errorHandler: NewErrorHandler()}
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List owners",
		Args:  cobra.NoArgs,
		RunE: r.run(func(app *App) Command {
			list.app = app
			return list
		}),
	}
	listCmd.Flags().StringVar(&list.scope, "scope", "", "Scope to list: all, default or a tenant id")

	cmd.AddCommand(addCmd, listCmd)
	return cmd
}

func (r *RootCommand) projectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	add := &ProjectAddCommand{errorHandler: NewErrorHandler()}
	addCmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Create a project",
		Args:  cobra.MinimumNArgs(1),
		RunE: r.run(func(app *App) Command {
			add.app = app
			return add
		}),
	}
	addCmd.Flags().StringVar(&add.scope, "scope", "", "Tenant to create the project in: default or a tenant id")

	list := &ProjectListCommand{errorHandler: NewErrorHandler()}
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: r.run(func(app *App) Command {
			list.app = app
			return list
		}),
	}
	listCmd.Flags().StringVar(&list.scope, "scope", "", "Scope to list: all, default or a tenant id")

	cmd.AddCommand(addCmd, listCmd)
	return cmd
}

// errUsage reports a command invoked with unusable arguments.
func errUsage(command, usage string) error {
	return errors.NewInvalidInputError("command", command, "usage: "+usage)
}
