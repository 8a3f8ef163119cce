package tenancy

import (
	"workhours/internal/errors"
)

// Actor is the resolved identity of whoever issues a request.
type Actor struct {
	OwnerID            int64
	TenantID           *string
	PlatformSuperActor bool
}

// EffectiveScope resolves the scope an actor's request runs under.
//
// Platform super-actors get the requested scope, or every tenant when they
// request none. Regular actors are always pinned to their own tenant; asking
// for any other scope is a permission error, and a regular actor without a
// tenant is a scope violation.
func EffectiveScope(actor Actor, requested *TenantScope) (TenantScope, error) {
	if actor.PlatformSuperActor {
		if requested == nil {
			return AllTenants(), nil
		}
		if !requested.IsValid() {
			return TenantScope{}, errors.NewInvalidInputError("scope", requested.String(), "scope is not valid")
		}
		return *requested, nil
	}

	if actor.TenantID == nil || *actor.TenantID == "" {
		return TenantScope{}, errors.NewScopeViolationError("actor", "non-platform actor has no tenant")
	}

	own, err := ForTenant(*actor.TenantID)
	if err != nil {
		return TenantScope{}, err
	}
	if requested != nil && !requested.Equal(own) {
		return TenantScope{}, errors.NewPermissionError("read", requested.String())
	}
	return own, nil
}
