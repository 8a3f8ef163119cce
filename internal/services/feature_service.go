package services

import (
	"context"
	"strings"

	"workhours/internal/errors"
	"workhours/internal/features"
	"workhours/internal/repository/sqlite"
	"workhours/internal/tenancy"
)

// featureServiceImpl implements the FeatureService interface
type featureServiceImpl struct {
	repo sqlite.Repository
}

// NewFeatureService creates a new FeatureService instance
func NewFeatureService(repo sqlite.Repository, settings Settings) FeatureService {
	return &featureServiceImpl{repo: repo}
}

// SetFlag stores one layer of a flag. Global values are reserved for
// platform super-actors; tenant and owner values stay inside the actor's
// scope.
func (f *featureServiceImpl) SetFlag(ctx context.Context, actor tenancy.Actor, update FlagUpdate) error {
	name := strings.TrimSpace(update.Name)
	if name == "" {
		return errors.NewInvalidInputError("flag", update.Name, "name cannot be empty")
	}

	flag := &sqlite.FeatureFlag{Name: name, Level: update.Level, Enabled: update.Enabled}
	switch update.Level {
	case sqlite.FlagLevelGlobal:
		if !actor.PlatformSuperActor {
			return errors.NewPermissionError("set", "global feature flag")
		}
	case sqlite.FlagLevelTenant:
		tenantID, err := writeTenant(ctx, f.repo, actor, update.Scope)
		if err != nil {
			return err
		}
		flag.TenantID = tenantID
	case sqlite.FlagLevelOwner:
		owner, err := ownerFor(ctx, f.repo, actor, update.OwnerID)
		if err != nil {
			return err
		}
		flag.OwnerID = &owner.ID
	default:
		return errors.NewInvalidInputError("flag level", update.Level, "must be global, tenant or owner")
	}
	return f.repo.SetFeatureFlag(ctx, flag)
}

// IsEnabled resolves a flag for an owner, defaulting to the acting owner
func (f *featureServiceImpl) IsEnabled(ctx context.Context, actor tenancy.Actor, name string, ownerID *int64) (bool, error) {
	state, err := f.Explain(ctx, actor, name, ownerID)
	if err != nil {
		return false, err
	}
	return state.Enabled, nil
}

// Explain resolves a flag and reports which layer decided it. The tenant
// layer is the owner's tenant when an owner is known and the actor's
// otherwise.
func (f *featureServiceImpl) Explain(ctx context.Context, actor tenancy.Actor, name string, ownerID *int64) (*FlagState, error) {
	tenantID := actor.TenantID
	var owner *sqlite.Owner
	if ownerID != nil || actor.OwnerID > 0 {
		o, err := ownerFor(ctx, f.repo, actor, ownerID)
		if err != nil {
			return nil, err
		}
		owner = o
		tenantID = o.TenantID
	}

	global, err := f.lookup(ctx, name, sqlite.FlagLevelGlobal, nil, nil)
	if err != nil {
		return nil, err
	}
	tenantDefault, err := f.lookup(ctx, name, sqlite.FlagLevelTenant, tenantID, nil)
	if err != nil {
		return nil, err
	}
	var override *bool
	if owner != nil {
		override, err = f.lookup(ctx, name, sqlite.FlagLevelOwner, nil, &owner.ID)
		if err != nil {
			return nil, err
		}
	}

	enabled, source := features.Explain(global != nil && *global, tenantDefault, override)
	return &FlagState{Name: name, Enabled: enabled, Source: source}, nil
}

// lookup returns the stored value of one layer, or nil when it is unset.
func (f *featureServiceImpl) lookup(ctx context.Context, name string, level sqlite.FlagLevel, tenantID *string, ownerID *int64) (*bool, error) {
	flag, err := f.repo.GetFeatureFlag(ctx, name, level, tenantID, ownerID)
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &flag.Enabled, nil
}
