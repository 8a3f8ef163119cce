// Package tenancy restricts every data read to the requesting actor's tenant.
//
// Three scopes exist and are never interchangeable: all tenants (no
// filtering, platform super-actors only), the default tenant (records whose
// tenant id is NULL, created before multi-tenancy) and one concrete tenant.
// A NULL tenant id is never a wildcard in either direction.
package tenancy

import (
	"fmt"

	"workhours/internal/errors"
)

// Kind distinguishes the three scope variants. The zero value is invalid.
type Kind int

const (
	kindInvalid Kind = iota
	KindAllTenants
	KindDefaultTenant
	KindTenant
)

// TenantScope is a tagged tenant filter. Construct it with AllTenants,
// DefaultTenant or ForTenant; the zero value matches nothing.
type TenantScope struct {
	kind     Kind
	tenantID string
}

// AllTenants returns the unrestricted scope.
func AllTenants() TenantScope {
	return TenantScope{kind: KindAllTenants}
}

// DefaultTenant returns the scope that matches only NULL-tenant records.
func DefaultTenant() TenantScope {
	return TenantScope{kind: KindDefaultTenant}
}

// ForTenant returns the scope for one concrete tenant. An empty id is
// rejected rather than silently turned into another scope.
func ForTenant(id string) (TenantScope, error) {
	if id == "" {
		return TenantScope{}, errors.NewInvalidInputError("tenant", id, "tenant id cannot be empty")
	}
	return TenantScope{kind: KindTenant, tenantID: id}, nil
}

// FromRecord returns the scope a record with the given tenant id belongs to.
func FromRecord(tenantID *string) TenantScope {
	if tenantID == nil {
		return DefaultTenant()
	}
	return TenantScope{kind: KindTenant, tenantID: *tenantID}
}

// Kind returns the scope variant.
func (s TenantScope) Kind() Kind { return s.kind }

// TenantID returns the concrete tenant id; ok is false for the other kinds.
func (s TenantScope) TenantID() (string, bool) {
	return s.tenantID, s.kind == KindTenant
}

// IsValid reports whether the scope was built by a constructor.
func (s TenantScope) IsValid() bool {
	switch s.kind {
	case KindAllTenants, KindDefaultTenant:
		return true
	case KindTenant:
		return s.tenantID != ""
	default:
		return false
	}
}

// IsUnrestricted reports whether the scope performs no filtering.
func (s TenantScope) IsUnrestricted() bool {
	return s.kind == KindAllTenants
}

// Matches reports whether a record with the given tenant id is visible.
func (s TenantScope) Matches(tenantID *string) bool {
	switch s.kind {
	case KindAllTenants:
		return true
	case KindDefaultTenant:
		return tenantID == nil
	case KindTenant:
		return tenantID != nil && *tenantID == s.tenantID
	default:
		return false
	}
}

// Equal compares two scopes by kind and tenant.
func (s TenantScope) Equal(other TenantScope) bool {
	return s.kind == other.kind && s.tenantID == other.tenantID
}

// String renders the scope for logs and error messages.
func (s TenantScope) String() string {
	switch s.kind {
	case KindAllTenants:
		return "all-tenants"
	case KindDefaultTenant:
		return "default-tenant"
	case KindTenant:
		return "tenant:" + s.tenantID
	default:
		return "invalid-scope"
	}
}

// Parse turns a command-line value into a scope: "all", "default" or a
// tenant id.
func Parse(value string) (TenantScope, error) {
	switch value {
	case "all", "*":
		return AllTenants(), nil
	case "default":
		return DefaultTenant(), nil
	default:
		scope, err := ForTenant(value)
		if err != nil {
			return TenantScope{}, fmt.Errorf("parse scope: %w", err)
		}
		return scope, nil
	}
}
