package domain

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is an isolated customer organisation.
type Tenant struct {
	ID       string
	Name     string
	Timezone string
}

// NewTenant creates a tenant with a freshly generated identifier.
func NewTenant(name, timezone string) Tenant {
	return Tenant{
		ID:       uuid.NewString(),
		Name:     name,
		Timezone: timezone,
	}
}

// Location loads the tenant's time zone, falling back to fallback when the
// tenant has none configured.
func (t Tenant) Location(fallback *time.Location) (*time.Location, error) {
	if t.Timezone == "" {
		return fallback, nil
	}
	return time.LoadLocation(t.Timezone)
}

// Owner is an employee whose time is tracked.
type Owner struct {
	ID              int64
	TenantID        *string
	Name            string
	HourlyRateCents int64
}

// Project groups intervals for breakdown views.
type Project struct {
	ID       int64
	TenantID *string
	Name     string
}

// IsValid checks if the project has a name.
func (p Project) IsValid() bool {
	return p.Name != ""
}

// String returns the project name for display purposes.
func (p Project) String() string {
	return p.Name
}

// TenantLabel renders a nullable tenant id for display.
func TenantLabel(id *string) string {
	if id == nil {
		return "<default>"
	}
	return *id
}
