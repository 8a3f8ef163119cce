package services

import (
	"context"
	"strings"

	"workhours/internal/domain"
	"workhours/internal/repository/sqlite"
	"workhours/internal/tenancy"
	"workhours/internal/validation"
)

// directoryServiceImpl implements the DirectoryService interface
type directoryServiceImpl struct {
	repo          sqlite.Repository
	ownerMapper   *domain.OwnerMapper
	projectMapper *domain.ProjectMapper
	validator     *validation.NameValidator
}

// NewDirectoryService creates a new DirectoryService instance
func NewDirectoryService(repo sqlite.Repository, settings Settings) DirectoryService {
	settings = settings.withDefaults()
	return &directoryServiceImpl{
		repo:          repo,
		ownerMapper:   domain.NewOwnerMapper(),
		projectMapper: domain.NewProjectMapper(),
		validator:     validation.NewNameValidator(settings.Validator),
	}
}

// CreateOwner adds an employee to the tenant the scope resolves to
func (d *directoryServiceImpl) CreateOwner(ctx context.Context, actor tenancy.Actor, scope *tenancy.TenantScope, name string, hourlyRateCents int64) (*domain.Owner, error) {
	name = strings.TrimSpace(name)
	if err := d.validator.ValidateOwner(name, hourlyRateCents); err != nil {
		return nil, err
	}
	tenantID, err := writeTenant(ctx, d.repo, actor, scope)
	if err != nil {
		return nil, err
	}

	row := d.ownerMapper.ToDatabase(domain.Owner{TenantID: tenantID, Name: name, HourlyRateCents: hourlyRateCents})
	if err := d.repo.CreateOwner(ctx, &row); err != nil {
		return nil, err
	}
	owner := d.ownerMapper.FromDatabase(row)
	return &owner, nil
}

// ListOwners returns the owners visible in scope
func (d *directoryServiceImpl) ListOwners(ctx context.Context, actor tenancy.Actor, scope *tenancy.TenantScope) ([]domain.Owner, error) {
	effective, err := tenancy.EffectiveScope(actor, scope)
	if err != nil {
		return nil, err
	}
	rows, err := d.repo.ListOwners(ctx, effective)
	if err != nil {
		return nil, err
	}
	return d.ownerMapper.FromDatabaseSlice(rows), nil
}

// CreateProject adds a project to the tenant the scope resolves to
func (d *directoryServiceImpl) CreateProject(ctx context.Context, actor tenancy.Actor, scope *tenancy.TenantScope, name string) (*domain.Project, error) {
	name = strings.TrimSpace(name)
	if err := d.validator.ValidateName("project_name", name); err != nil {
		return nil, err
	}
	tenantID, err := writeTenant(ctx, d.repo, actor, scope)
	if err != nil {
		return nil, err
	}

	row := d.projectMapper.ToDatabase(domain.Project{TenantID: tenantID, Name: name})
	if err := d.repo.CreateProject(ctx, &row); err != nil {
		return nil, err
	}
	project := d.projectMapper.FromDatabase(row)
	return &project, nil
}

// ListProjects returns the projects visible in scope
func (d *directoryServiceImpl) ListProjects(ctx context.Context, actor tenancy.Actor, scope *tenancy.TenantScope) ([]domain.Project, error) {
	effective, err := tenancy.EffectiveScope(actor, scope)
	if err != nil {
		return nil, err
	}
	rows, err := d.repo.ListProjects(ctx, effective)
	if err != nil {
		return nil, err
	}
	return d.projectMapper.FromDatabaseSlice(rows), nil
}
