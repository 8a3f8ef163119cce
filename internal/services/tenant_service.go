package services

import (
	"context"
	"strings"

	"workhours/internal/domain"
	"workhours/internal/errors"
	"workhours/internal/repository/sqlite"
	"workhours/internal/tenancy"
	"workhours/internal/validation"
)

// tenantServiceImpl implements the TenantService interface
type tenantServiceImpl struct {
	repo      sqlite.Repository
	mapper    *domain.TenantMapper
	validator *validation.NameValidator
}

// NewTenantService creates a new TenantService instance
func NewTenantService(repo sqlite.Repository, settings Settings) TenantService {
	settings = settings.withDefaults()
	return &tenantServiceImpl{
		repo:      repo,
		mapper:    domain.NewTenantMapper(),
		validator: validation.NewNameValidator(settings.Validator),
	}
}

// CreateTenant registers a new tenant. Only platform super-actors may do so.
func (s *tenantServiceImpl) CreateTenant(ctx context.Context, actor tenancy.Actor, name, timezone string) (*domain.Tenant, error) {
	if !actor.PlatformSuperActor {
		return nil, errors.NewPermissionError("create", "tenant")
	}
	name = strings.TrimSpace(name)
	if timezone == "" {
		timezone = "UTC"
	}
	if err := s.validator.ValidateTenant(name, timezone); err != nil {
		return nil, err
	}

	tenant := domain.NewTenant(name, timezone)
	row := s.mapper.ToDatabase(tenant)
	if err := s.repo.CreateTenant(ctx, &row); err != nil {
		return nil, err
	}
	return &tenant, nil
}

// GetTenant returns a tenant the actor can see
func (s *tenantServiceImpl) GetTenant(ctx context.Context, actor tenancy.Actor, id string) (*domain.Tenant, error) {
	scope, err := tenancy.EffectiveScope(actor, nil)
	if err != nil {
		return nil, err
	}
	if !scope.Matches(&id) {
		return nil, errors.NewNotFoundError("tenant", id)
	}
	row, err := s.repo.GetTenant(ctx, id)
	if err != nil {
		return nil, err
	}
	tenant := s.mapper.FromDatabase(*row)
	return &tenant, nil
}

// ListTenants returns every tenant for super-actors and the actor's own
// tenant otherwise.
func (s *tenantServiceImpl) ListTenants(ctx context.Context, actor tenancy.Actor) ([]domain.Tenant, error) {
	scope, err := tenancy.EffectiveScope(actor, nil)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListTenants(ctx)
	if err != nil {
		return nil, err
	}
	rows = tenancy.FilterSlice(rows, scope, func(t *sqlite.Tenant) *string { return &t.ID })
	return s.mapper.FromDatabaseSlice(rows), nil
}
