package services

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/require"

	"workhours/internal/reporting"
	"workhours/internal/repository/sqlite"
	"workhours/internal/tenancy"
)

// fixtureNow is a Wednesday, before the 2024 European DST switch.
var fixtureNow = time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)

type recordingObserver struct {
	events []UseCaseEvent
}

func (r *recordingObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	r.events = append(r.events, event)
}

// fixture holds two tenants plus the default tenant, each with owners.
type fixture struct {
	repo     sqlite.Repository
	svc      *ServiceContainer
	observer *recordingObserver
	berlin   *time.Location

	super  tenancy.Actor
	acme   string
	globex string

	ada, bob, gus, dora int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	observer := &recordingObserver{}
	svc := NewServiceContainer(repo, Settings{
		Clock:           reporting.FixedClock(fixtureNow),
		DefaultLocation: time.UTC,
		StrictScope:     true,
		Workers:         2,
		Observer:        observer,
	})

	f := &fixture{repo: repo, svc: svc, observer: observer, berlin: berlin}
	f.super = tenancy.Actor{PlatformSuperActor: true}

	acme, err := svc.TenantService.CreateTenant(ctx, f.super, "Acme", "Europe/Berlin")
	require.NoError(t, err)
	globex, err := svc.TenantService.CreateTenant(ctx, f.super, "Globex", "UTC")
	require.NoError(t, err)
	f.acme, f.globex = acme.ID, globex.ID

	f.ada = f.createOwner(t, f.scope(t, f.acme), "Ada", 6000)
	f.bob = f.createOwner(t, f.scope(t, f.acme), "Bob", 4500)
	f.gus = f.createOwner(t, f.scope(t, f.globex), "Gus", 5000)
	f.dora = f.createOwner(t, tenancy.DefaultTenant(), "Dora", 3000)
	return f
}

func (f *fixture) scope(t *testing.T, tenantID string) tenancy.TenantScope {
	t.Helper()
	scope, err := tenancy.ForTenant(tenantID)
	require.NoError(t, err)
	return scope
}

func (f *fixture) createOwner(t *testing.T, scope tenancy.TenantScope, name string, rate int64) int64 {
	t.Helper()
	owner, err := f.svc.DirectoryService.CreateOwner(context.Background(), f.super, &scope, name, rate)
	require.NoError(t, err)
	return owner.ID
}

// member is a regular actor of tenantID acting as owner.
func (f *fixture) member(tenantID string, owner int64) tenancy.Actor {
	id := tenantID
	return tenancy.Actor{OwnerID: owner, TenantID: &id}
}

// addInterval records a finished interval for owner as a super-actor.
func (f *fixture) addInterval(t *testing.T, owner int64, project *int64, start, end time.Time) int64 {
	t.Helper()
	iv, err := f.svc.TimerService.Add(context.Background(), f.super, AddRequest{
		OwnerID:   &owner,
		ProjectID: project,
		Start:     start,
		End:       end,
	})
	require.NoError(t, err)
	return iv.ID
}

func (f *fixture) at(day, hour int) time.Time {
	return time.Date(2024, 3, day, hour, 0, 0, 0, f.berlin)
}

func ptr[T any](v T) *T { return &v }
