package services

import (
	"context"
	"time"

	"workhours/internal/config"
	"workhours/internal/errors"
	"workhours/internal/logging"
	"workhours/internal/reporting"
	"workhours/internal/repository/sqlite"
	"workhours/internal/tenancy"
	"workhours/internal/validation"
)

// Settings carries the configuration services need at run time.
type Settings struct {
	Clock           reporting.Clock
	DefaultLocation *time.Location
	StrictScope     bool
	Workers         int
	Validator       *validation.Validator
	Observer        UseCaseObserver
}

// SettingsFromConfig derives service settings from the application config.
func SettingsFromConfig(cfg *config.Config) (Settings, error) {
	loc, err := cfg.DefaultLocation()
	if err != nil {
		return Settings{}, errors.NewInvalidInputError("default_timezone", cfg.Reporting.DefaultTimezone, err.Error())
	}
	return Settings{
		Clock:           reporting.SystemClock,
		DefaultLocation: loc,
		StrictScope:     cfg.StrictScopeEnabled(),
		Workers:         cfg.Reporting.Workers,
		Validator:       validation.NewValidatorWithConfig(cfg),
		Observer:        NewLogUseCaseObserver(logging.Logger),
	}, nil
}

func (s Settings) withDefaults() Settings {
	if s.Clock == nil {
		s.Clock = reporting.SystemClock
	}
	if s.DefaultLocation == nil {
		s.DefaultLocation = time.UTC
	}
	if s.Workers < 1 {
		s.Workers = 1
	}
	if s.Validator == nil {
		s.Validator = validation.NewValidator()
	}
	if s.Observer == nil {
		s.Observer = NoopUseCaseObserver{}
	}
	return s
}

// NewServiceContainer wires every service against one repository.
func NewServiceContainer(repo sqlite.Repository, settings Settings) *ServiceContainer {
	settings = settings.withDefaults()
	return &ServiceContainer{
		TenantService:    NewTenantService(repo, settings),
		DirectoryService: NewDirectoryService(repo, settings),
		TimerService:     NewTimerService(repo, settings),
		SearchService:    NewSearchService(repo, settings),
		ReportingService: NewReportingService(repo, settings),
		FeatureService:   NewFeatureService(repo, settings),
	}
}

// writeTenant resolves the single tenant a write lands in. Writes never run
// across all tenants, and a concrete tenant must exist.
func writeTenant(ctx context.Context, repo sqlite.Repository, actor tenancy.Actor, requested *tenancy.TenantScope) (*string, error) {
	scope, err := tenancy.EffectiveScope(actor, requested)
	if err != nil {
		return nil, err
	}
	switch scope.Kind() {
	case tenancy.KindDefaultTenant:
		return nil, nil
	case tenancy.KindTenant:
		id, _ := scope.TenantID()
		if _, err := repo.GetTenant(ctx, id); err != nil {
			return nil, err
		}
		return &id, nil
	default:
		return nil, errors.NewInvalidInputError("scope", scope.String(), "writes need a single tenant: pass --tenant")
	}
}

// ownerFor returns the owner a request acts on, defaulting to the actor, as
// long as that owner is visible to the actor.
func ownerFor(ctx context.Context, repo sqlite.Repository, actor tenancy.Actor, ownerID *int64) (*sqlite.Owner, error) {
	id := actor.OwnerID
	if ownerID != nil {
		id = *ownerID
	}
	if id <= 0 {
		return nil, errors.NewInvalidInputError("owner", id, "no owner given and no acting owner configured")
	}
	scope, err := tenancy.EffectiveScope(actor, nil)
	if err != nil {
		return nil, err
	}
	return repo.GetOwner(ctx, scope, id)
}
