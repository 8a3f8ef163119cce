package services

import (
	"context"
	"time"

	"workhours/internal/domain"
	"workhours/internal/features"
	"workhours/internal/repository/sqlite"
	"workhours/internal/tenancy"
)

// ReportRequest describes one report. Nil pointers fall back to defaults:
// the actor's own scope, "now" as anchor and every owner and project.
type ReportRequest struct {
	Kind      domain.PeriodKind
	From      *time.Time
	To        *time.Time
	Count     int
	Anchor    *time.Time
	Scope     *tenancy.TenantScope
	OwnerID   *int64
	ProjectID *int64
	ByProject bool
}

// ReportRow is the time one owner spent in one period. ProjectID is only set
// for project breakdowns; reporting.NoProject marks unassigned time.
type ReportRow struct {
	Period      domain.Period `json:"period"`
	OwnerID     int64         `json:"owner_id"`
	OwnerName   string        `json:"owner_name"`
	ProjectID   int64         `json:"project_id,omitempty"`
	ProjectName string        `json:"project_name,omitempty"`
	Seconds     int64         `json:"seconds"`
}

// Report is the result of aggregating intervals into periods. A report whose
// range contains "now" is a snapshot of running intervals.
type Report struct {
	Scope        tenancy.TenantScope `json:"-"`
	Location     *time.Location      `json:"-"`
	Periods      []domain.Period     `json:"periods"`
	Rows         []ReportRow         `json:"rows"`
	TotalSeconds int64               `json:"total_seconds"`
	Intervals    int                 `json:"intervals"`
	ByProject    bool                `json:"by_project"`
	GeneratedAt  time.Time           `json:"generated_at"`
}

// PayrollLine is the pay due to one owner for one period.
type PayrollLine struct {
	Period          domain.Period `json:"period"`
	OwnerID         int64         `json:"owner_id"`
	OwnerName       string        `json:"owner_name"`
	Seconds         int64         `json:"seconds"`
	Hours           float64       `json:"hours"`
	HourlyRateCents int64         `json:"hourly_rate_cents"`
	GrossCents      int64         `json:"gross_cents"`
}

// DayStatistics represents summary statistics for a specific day
type DayStatistics struct {
	Date          time.Time `json:"date"`
	TotalSeconds  int64     `json:"total_seconds"`
	TotalTime     string    `json:"total_time"`
	OwnerCount    int       `json:"owner_count"`
	IntervalCount int       `json:"interval_count"`
	RunningCount  int       `json:"running_count"`
}

// IntervalView is an interval with display names and its duration at the
// time it was loaded.
type IntervalView struct {
	Interval    domain.Interval `json:"interval"`
	OwnerName   string          `json:"owner_name"`
	ProjectName string          `json:"project_name,omitempty"`
	Seconds     int64           `json:"seconds"`
	Duration    string          `json:"duration"`
}

// StartRequest starts a timer. A nil OwnerID means the acting owner.
type StartRequest struct {
	OwnerID   *int64
	ProjectID *int64
	Note      string
}

// AddRequest records a finished interval after the fact.
type AddRequest struct {
	OwnerID   *int64
	ProjectID *int64
	Start     time.Time
	End       time.Time
	Note      string
}

// FlagUpdate sets one feature flag layer. Tenant-level updates use Scope
// (nil means the actor's own tenant); owner-level updates use OwnerID.
type FlagUpdate struct {
	Name    string
	Level   sqlite.FlagLevel
	Scope   *tenancy.TenantScope
	OwnerID *int64
	Enabled bool
}

// FlagState is a resolved feature flag and the layer that decided it.
type FlagState struct {
	Name    string          `json:"name"`
	Enabled bool            `json:"enabled"`
	Source  features.Source `json:"source"`
}

// TenantService manages tenants
type TenantService interface {
	CreateTenant(ctx context.Context, actor tenancy.Actor, name, timezone string) (*domain.Tenant, error)
	GetTenant(ctx context.Context, actor tenancy.Actor, id string) (*domain.Tenant, error)
	ListTenants(ctx context.Context, actor tenancy.Actor) ([]domain.Tenant, error)
}

// DirectoryService manages owners and projects inside a tenant
type DirectoryService interface {
	CreateOwner(ctx context.Context, actor tenancy.Actor, scope *tenancy.TenantScope, name string, hourlyRateCents int64) (*domain.Owner, error)
	ListOwners(ctx context.Context, actor tenancy.Actor, scope *tenancy.TenantScope) ([]domain.Owner, error)
	CreateProject(ctx context.Context, actor tenancy.Actor, scope *tenancy.TenantScope, name string) (*domain.Project, error)
	ListProjects(ctx context.Context, actor tenancy.Actor, scope *tenancy.TenantScope) ([]domain.Project, error)
}

// TimerService handles the interval lifecycle
type TimerService interface {
	Start(ctx context.Context, actor tenancy.Actor, req StartRequest) (*domain.Interval, error)
	Stop(ctx context.Context, actor tenancy.Actor, ownerID *int64) (*domain.Interval, error)
	Add(ctx context.Context, actor tenancy.Actor, req AddRequest) (*domain.Interval, error)
	Delete(ctx context.Context, actor tenancy.Actor, id int64) error
	Current(ctx context.Context, actor tenancy.Actor, ownerID *int64) (*domain.Interval, error)
}

// SearchService lists intervals for display and export
type SearchService interface {
	SearchIntervals(ctx context.Context, actor tenancy.Actor, scope *tenancy.TenantScope, query domain.IntervalQuery) ([]IntervalView, error)
	CountIntervals(ctx context.Context, actor tenancy.Actor, scope *tenancy.TenantScope, query domain.IntervalQuery) (int64, error)
}

// ReportingService builds period reports
type ReportingService interface {
	BuildReport(ctx context.Context, actor tenancy.Actor, req ReportRequest) (*Report, error)
	Payroll(ctx context.Context, actor tenancy.Actor, req ReportRequest) ([]PayrollLine, error)
	GetDayStatistics(ctx context.Context, actor tenancy.Actor, date time.Time) (*DayStatistics, error)
	GetTodayStatistics(ctx context.Context, actor tenancy.Actor) (*DayStatistics, error)
}

// FeatureService reads and writes layered feature flags
type FeatureService interface {
	SetFlag(ctx context.Context, actor tenancy.Actor, update FlagUpdate) error
	IsEnabled(ctx context.Context, actor tenancy.Actor, name string, ownerID *int64) (bool, error)
	Explain(ctx context.Context, actor tenancy.Actor, name string, ownerID *int64) (*FlagState, error)
}

// ServiceContainer manages all services and their dependencies
type ServiceContainer struct {
	TenantService    TenantService
	DirectoryService DirectoryService
	TimerService     TimerService
	SearchService    SearchService
	ReportingService ReportingService
	FeatureService   FeatureService
}
