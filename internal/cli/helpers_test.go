package cli

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/require"

	"workhours/internal/config"
	"workhours/internal/reporting"
	"workhours/internal/repository/sqlite"
	"workhours/internal/services"
	"workhours/internal/tenancy"
)

// cliNow is a Wednesday; Berlin is on UTC+1.
var cliNow = time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)

// testCLI runs commands against one in-memory database shared by every
// invocation.
type testCLI struct {
	svc    *services.ServiceContainer
	super  tenancy.Actor
	berlin *time.Location

	acme, globex string
	ada, bob     int64
	gus          int64
}

func newTestCLI(t *testing.T) *testCLI {
	t.Helper()
	ctx := context.Background()

	original := timeNow
	timeNow = func() time.Time { return cliNow }
	t.Cleanup(func() { timeNow = original })

	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	svc := services.NewServiceContainer(repo, services.Settings{
		Clock:       reporting.FixedClock(cliNow),
		StrictScope: true,
		Workers:     2,
	})
	c := &testCLI{svc: svc, super: tenancy.Actor{PlatformSuperActor: true}, berlin: berlin}

	acme, err := svc.TenantService.CreateTenant(ctx, c.super, "Acme", "Europe/Berlin")
	require.NoError(t, err)
	globex, err := svc.TenantService.CreateTenant(ctx, c.super, "Globex", "UTC")
	require.NoError(t, err)
	c.acme, c.globex = acme.ID, globex.ID

	c.ada = c.createOwner(t, c.acme, "Ada", 6000)
	c.bob = c.createOwner(t, c.acme, "Bob", 4500)
	c.gus = c.createOwner(t, c.globex, "Gus", 5000)
	return c
}

func (c *testCLI) createOwner(t *testing.T, tenantID, name string, rate int64) int64 {
	t.Helper()
	scope, err := tenancy.ForTenant(tenantID)
	require.NoError(t, err)
	owner, err := c.svc.DirectoryService.CreateOwner(context.Background(), c.super, &scope, name, rate)
	require.NoError(t, err)
	return owner.ID
}

func (c *testCLI) open(*config.Config) (*services.ServiceContainer, func() error, error) {
	return c.svc, func() error { return nil }, nil
}

// execute runs one wh invocation and captures its output.
func (c *testCLI) execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWith(t, c.open, args...)
}

// as prefixes args with the flags of a regular actor.
func (c *testCLI) as(tenantID string, owner int64, args ...string) []string {
	return append([]string{"--tenant", tenantID, "--owner", strconv.FormatInt(owner, 10)}, args...)
}

func (c *testCLI) addInterval(t *testing.T, owner int64, start, end time.Time) {
	t.Helper()
	_, err := c.svc.TimerService.Add(context.Background(), c.super, services.AddRequest{OwnerID: &owner, Start: start, End: end})
	require.NoError(t, err)
}

func (c *testCLI) at(day, hour int) time.Time {
	return time.Date(2024, 3, day, hour, 0, 0, 0, c.berlin)
}

func executeWith(t *testing.T, open Opener, args ...string) (string, error) {
	t.Helper()
	loader := config.NewLoader().WithConfigFile("").WithEnvFiles()
	root := NewRootCommand(loader, open)
	buf := new(bytes.Buffer)
	root.Command().SetOut(buf)
	root.Command().SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func failingOpener(*config.Config) (*services.ServiceContainer, func() error, error) {
	return nil, nil, errors.New("storage must not be opened")
}
