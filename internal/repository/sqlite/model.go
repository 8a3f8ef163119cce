package sqlite

import "time"

// Tenant is a row of the tenants table.
type Tenant struct {
	ID        string
	Name      string
	Timezone  string
	CreatedAt time.Time
}

// Owner represents an employee whose time is tracked.
// TenantID is nil for rows of the default tenant.
type Owner struct {
	ID              int64
	TenantID        *string
	Name            string
	HourlyRateCents int64
}

// Project represents a project intervals can be booked against
type Project struct {
	ID       int64
	TenantID *string
	Name     string
}

// Interval represents a single tracked span of work
type Interval struct {
	ID        int64
	OwnerID   int64
	ProjectID *int64
	TenantID  *string
	StartTime time.Time
	EndTime   *time.Time // Using pointer to allow NULL values
	Note      string
}

// FlagLevel is the layer a feature flag row applies to.
type FlagLevel string

const (
	FlagLevelGlobal FlagLevel = "global"
	FlagLevelTenant FlagLevel = "tenant"
	FlagLevelOwner  FlagLevel = "owner"
)

// FeatureFlag is one stored flag value. Tenant rows use TenantID (nil for the
// default tenant); owner rows use only OwnerID.
type FeatureFlag struct {
	ID        int64
	Name      string
	Level     FlagLevel
	TenantID  *string
	OwnerID   *int64
	Enabled   bool
	UpdatedAt time.Time
}
