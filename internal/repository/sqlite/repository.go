package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"workhours/internal/errors"
	"workhours/internal/repository/sqlite/migrations"
	"workhours/internal/tenancy"

	_ "modernc.org/sqlite"
)

const intervalColumns = `intervals.id, intervals.owner_id, intervals.project_id, intervals.tenant_id,
	intervals.start_time, intervals.end_time, intervals.note`

// SearchOptions contains all possible search parameters for intervals.
// From/To select intervals intersecting [From, To); a running interval
// intersects when it started before To.
type SearchOptions struct {
	OwnerID     *int64
	ProjectID   *int64
	From        *time.Time
	To          *time.Time
	RunningOnly bool
	Limit       int
}

// Repository defines the interface for database operations. Every read or
// write of tenant-owned rows takes the scope it runs under.
type Repository interface {
	// Tenants
	CreateTenant(ctx context.Context, tenant *Tenant) error
	GetTenant(ctx context.Context, id string) (*Tenant, error)
	ListTenants(ctx context.Context) ([]*Tenant, error)

	// Owners and projects
	CreateOwner(ctx context.Context, owner *Owner) error
	GetOwner(ctx context.Context, scope tenancy.TenantScope, id int64) (*Owner, error)
	ListOwners(ctx context.Context, scope tenancy.TenantScope) ([]*Owner, error)
	CreateProject(ctx context.Context, project *Project) error
	GetProject(ctx context.Context, scope tenancy.TenantScope, id int64) (*Project, error)
	ListProjects(ctx context.Context, scope tenancy.TenantScope) ([]*Project, error)

	// Intervals
	CreateInterval(ctx context.Context, interval *Interval) error
	StartInterval(ctx context.Context, scope tenancy.TenantScope, interval *Interval) ([]*Interval, error)
	GetInterval(ctx context.Context, scope tenancy.TenantScope, id int64) (*Interval, error)
	UpdateInterval(ctx context.Context, scope tenancy.TenantScope, interval *Interval) error
	DeleteInterval(ctx context.Context, scope tenancy.TenantScope, id int64) error
	SearchIntervals(ctx context.Context, scope tenancy.TenantScope, opts SearchOptions) ([]*Interval, error)
	CountIntervals(ctx context.Context, scope tenancy.TenantScope, opts SearchOptions) (int64, error)

	// Feature flags
	SetFeatureFlag(ctx context.Context, flag *FeatureFlag) error
	GetFeatureFlag(ctx context.Context, name string, level FlagLevel, tenantID *string, ownerID *int64) (*FeatureFlag, error)

	// Utility
	Close() error
}

// Options tunes a repository.
type Options struct {
	// QueryTimeout bounds every statement; zero disables the bound.
	QueryTimeout time.Duration
}

// SQLiteRepository implements the Repository interface
type SQLiteRepository struct {
	db   *sql.DB
	opts Options
}

// New creates a new SQLite repository instance
func New(dbPath string) (*SQLiteRepository, error) {
	return NewWithOptions(dbPath, Options{})
}

// NewWithOptions opens dbPath, enables foreign keys and runs pending
// migrations.
func NewWithOptions(dbPath string, opts Options) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.NewDatabaseError("open database", err)
	}
	// SQLite has a single writer, and ":memory:" databases exist per
	// connection, so the pool is pinned to one connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("enable foreign keys", err)
	}

	// Run migrations
	if err := migrations.RunMigrations(db); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("run migrations", err)
	}

	return &SQLiteRepository{db: db, opts: opts}, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return WithQueryTimeout(ctx, r.opts.QueryTimeout)
}

// CreateTenant creates a new tenant
func (r *SQLiteRepository) CreateTenant(ctx context.Context, tenant *Tenant) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	if tenant.ID == "" {
		return errors.NewInvalidInputError("tenant id", tenant.ID, "must not be empty")
	}
	if tenant.CreatedAt.IsZero() {
		tenant.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO tenants (id, name, timezone, created_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, tenant.ID, tenant.Name, tenant.Timezone, FormatTimeForDB(tenant.CreatedAt))
	if err != nil {
		return HandleDatabaseError("create tenant", err)
	}
	return nil
}

// GetTenant retrieves a tenant by ID
func (r *SQLiteRepository) GetTenant(ctx context.Context, id string) (*Tenant, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	query := `SELECT id, name, timezone, created_at FROM tenants WHERE id = ?`
	return QuerySingle(ctx, r.db, query, ScanTenant, "tenant", id, id)
}

// ListTenants retrieves all tenants ordered by name
func (r *SQLiteRepository) ListTenants(ctx context.Context) ([]*Tenant, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	query := `SELECT id, name, timezone, created_at FROM tenants ORDER BY name ASC`
	return QueryMultiple(ctx, r.db, query, ScanTenants, "tenants")
}

// CreateOwner creates a new owner
func (r *SQLiteRepository) CreateOwner(ctx context.Context, owner *Owner) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	query := `INSERT INTO owners (tenant_id, name, hourly_rate_cents) VALUES (?, ?, ?)`
	id, err := ExecuteWithLastInsertID(ctx, r.db, query, owner.TenantID, owner.Name, owner.HourlyRateCents)
	if err != nil {
		return err
	}
	owner.ID = id
	return nil
}

// GetOwner retrieves an owner by ID within scope
func (r *SQLiteRepository) GetOwner(ctx context.Context, scope tenancy.TenantScope, id int64) (*Owner, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	qb := NewQueryBuilder(`SELECT id, tenant_id, name, hourly_rate_cents FROM owners`)
	qb.Where("id = ?", id)
	if err := tenancy.ApplyScope(qb, scope, "tenant_id"); err != nil {
		return nil, err
	}
	query, args := qb.Build()
	return QuerySingle(ctx, r.db, query, ScanOwner, "owner", strconv.FormatInt(id, 10), args...)
}

// ListOwners retrieves all owners within scope
func (r *SQLiteRepository) ListOwners(ctx context.Context, scope tenancy.TenantScope) ([]*Owner, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	qb := NewQueryBuilder(`SELECT id, tenant_id, name, hourly_rate_cents FROM owners`)
	if err := tenancy.ApplyScope(qb, scope, "tenant_id"); err != nil {
		return nil, err
	}
	query, args := qb.OrderBy("name ASC, id ASC").Build()
	return QueryMultiple(ctx, r.db, query, ScanOwners, "owners", args...)
}

// CreateProject creates a new project
func (r *SQLiteRepository) CreateProject(ctx context.Context, project *Project) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	query := `INSERT INTO projects (tenant_id, name) VALUES (?, ?)`
	id, err := ExecuteWithLastInsertID(ctx, r.db, query, project.TenantID, project.Name)
	if err != nil {
		return err
	}
	project.ID = id
	return nil
}

// GetProject retrieves a project by ID within scope
func (r *SQLiteRepository) GetProject(ctx context.Context, scope tenancy.TenantScope, id int64) (*Project, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	qb := NewQueryBuilder(`SELECT id, tenant_id, name FROM projects`)
	qb.Where("id = ?", id)
	if err := tenancy.ApplyScope(qb, scope, "tenant_id"); err != nil {
		return nil, err
	}
	query, args := qb.Build()
	return QuerySingle(ctx, r.db, query, ScanProject, "project", strconv.FormatInt(id, 10), args...)
}

// ListProjects retrieves all projects within scope
func (r *SQLiteRepository) ListProjects(ctx context.Context, scope tenancy.TenantScope) ([]*Project, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	qb := NewQueryBuilder(`SELECT id, tenant_id, name FROM projects`)
	if err := tenancy.ApplyScope(qb, scope, "tenant_id"); err != nil {
		return nil, err
	}
	query, args := qb.OrderBy("name ASC, id ASC").Build()
	return QueryMultiple(ctx, r.db, query, ScanProjects, "projects", args...)
}

// CreateInterval creates a new interval
func (r *SQLiteRepository) CreateInterval(ctx context.Context, interval *Interval) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	query := `
	INSERT INTO intervals (owner_id, project_id, tenant_id, start_time, end_time, note)
	VALUES (?, ?, ?, ?, ?, ?)`

	id, err := ExecuteWithLastInsertID(ctx, r.db, query,
		interval.OwnerID, interval.ProjectID, interval.TenantID,
		FormatTimeForDB(interval.StartTime), FormatTimePtrForDB(interval.EndTime), interval.Note)
	if err != nil {
		return err
	}

	interval.ID = id
	return nil
}

// StartInterval stops the owner's running intervals in scope and inserts
// interval in one transaction. Running intervals end at the new start, or at
// their own start if that is later. It returns the stopped intervals.
func (r *SQLiteRepository) StartInterval(ctx context.Context, scope tenancy.TenantScope, interval *Interval) ([]*Interval, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, HandleDatabaseError("begin interval start", err)
	}
	defer tx.Rollback()

	qb := NewQueryBuilder(`SELECT ` + intervalColumns + ` FROM intervals`)
	if err := applySearch(qb, scope, SearchOptions{OwnerID: &interval.OwnerID, RunningOnly: true}); err != nil {
		return nil, err
	}
	query, args := qb.OrderBy("intervals.start_time ASC, intervals.id ASC").Build()
	running, err := QueryMultiple(ctx, tx, query, ScanIntervals, "intervals", args...)
	if err != nil {
		return nil, err
	}

	for _, row := range running {
		end := interval.StartTime
		if end.Before(row.StartTime) {
			end = row.StartTime
		}
		row.EndTime = &end
		err := ExecuteWithRowsAffected(ctx, tx, `UPDATE intervals SET end_time = ? WHERE id = ?`,
			"interval", strconv.FormatInt(row.ID, 10), FormatTimeForDB(end), row.ID)
		if err != nil {
			return nil, err
		}
	}

	id, err := ExecuteWithLastInsertID(ctx, tx, `
	INSERT INTO intervals (owner_id, project_id, tenant_id, start_time, end_time, note)
	VALUES (?, ?, ?, ?, ?, ?)`,
		interval.OwnerID, interval.ProjectID, interval.TenantID,
		FormatTimeForDB(interval.StartTime), FormatTimePtrForDB(interval.EndTime), interval.Note)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, HandleDatabaseError("commit interval start", err)
	}
	interval.ID = id
	return running, nil
}

// GetInterval retrieves an interval by ID within scope
func (r *SQLiteRepository) GetInterval(ctx context.Context, scope tenancy.TenantScope, id int64) (*Interval, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	qb := NewQueryBuilder(`SELECT ` + intervalColumns + ` FROM intervals`)
	qb.Where("intervals.id = ?", id)
	if err := tenancy.ApplyScope(qb, scope, "intervals.tenant_id"); err != nil {
		return nil, err
	}
	query, args := qb.Build()
	return QuerySingle(ctx, r.db, query, ScanInterval, "interval", strconv.FormatInt(id, 10), args...)
}

// UpdateInterval updates an existing interval. The tenant of an interval
// never changes; an interval outside scope is reported as not found.
func (r *SQLiteRepository) UpdateInterval(ctx context.Context, scope tenancy.TenantScope, interval *Interval) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	qb := NewQueryBuilder(`UPDATE intervals SET owner_id = ?, project_id = ?, start_time = ?, end_time = ?, note = ?`,
		interval.OwnerID, interval.ProjectID, FormatTimeForDB(interval.StartTime), FormatTimePtrForDB(interval.EndTime), interval.Note)
	qb.Where("id = ?", interval.ID)
	if err := tenancy.ApplyScope(qb, scope, "tenant_id"); err != nil {
		return err
	}
	query, args := qb.Build()
	return ExecuteWithRowsAffected(ctx, r.db, query, "interval", strconv.FormatInt(interval.ID, 10), args...)
}

// DeleteInterval deletes an interval by ID within scope
func (r *SQLiteRepository) DeleteInterval(ctx context.Context, scope tenancy.TenantScope, id int64) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	qb := NewQueryBuilder(`DELETE FROM intervals`)
	qb.Where("id = ?", id)
	if err := tenancy.ApplyScope(qb, scope, "tenant_id"); err != nil {
		return err
	}
	query, args := qb.Build()
	return ExecuteWithRowsAffected(ctx, r.db, query, "interval", strconv.FormatInt(id, 10), args...)
}

// SearchIntervals returns the intervals in scope matching opts, ordered by
// start time. The tenant predicate is part of the statement, so nothing out
// of scope is ever loaded.
func (r *SQLiteRepository) SearchIntervals(ctx context.Context, scope tenancy.TenantScope, opts SearchOptions) ([]*Interval, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	qb := NewQueryBuilder(`SELECT ` + intervalColumns + ` FROM intervals`)
	if err := applySearch(qb, scope, opts); err != nil {
		return nil, err
	}
	query, args := qb.OrderBy("intervals.start_time ASC, intervals.id ASC").Limit(opts.Limit).Build()
	return QueryMultiple(ctx, r.db, query, ScanIntervals, "intervals", args...)
}

// CountIntervals counts the intervals in scope matching opts
func (r *SQLiteRepository) CountIntervals(ctx context.Context, scope tenancy.TenantScope, opts SearchOptions) (int64, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	qb := NewQueryBuilder(`SELECT COUNT(*) FROM intervals`)
	if err := applySearch(qb, scope, opts); err != nil {
		return 0, err
	}
	query, args := qb.Build()
	return QueryCount(ctx, r.db, query, "intervals", args...)
}

func applySearch(qb *QueryBuilder, scope tenancy.TenantScope, opts SearchOptions) error {
	if err := tenancy.ApplyScope(qb, scope, "intervals.tenant_id"); err != nil {
		return err
	}
	if opts.From != nil && opts.To != nil && !opts.From.Before(*opts.To) {
		return errors.NewInvalidRangeError(*opts.From, *opts.To, "from must be before to")
	}
	if opts.OwnerID != nil {
		qb.Where("intervals.owner_id = ?", *opts.OwnerID)
	}
	if opts.ProjectID != nil {
		qb.Where("intervals.project_id = ?", *opts.ProjectID)
	}
	if opts.RunningOnly {
		qb.Where("intervals.end_time IS NULL")
	}
	if opts.To != nil {
		qb.Where("intervals.start_time < ?", FormatTimeForDB(*opts.To))
	}
	if opts.From != nil {
		qb.Where("intervals.end_time IS NULL OR intervals.end_time > ?", FormatTimeForDB(*opts.From))
	}
	return nil
}

// SetFeatureFlag stores a flag value, replacing any value at the same level
// and key.
func (r *SQLiteRepository) SetFeatureFlag(ctx context.Context, flag *FeatureFlag) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	if err := validateFlagKey(flag.Level, flag.TenantID, flag.OwnerID); err != nil {
		return err
	}
	if flag.UpdatedAt.IsZero() {
		flag.UpdatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return HandleDatabaseError("begin feature flag update", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM feature_flags WHERE name = ? AND level = ? AND tenant_id IS ? AND owner_id IS ?`,
		flag.Name, string(flag.Level), flag.TenantID, flag.OwnerID)
	if err != nil {
		return HandleDatabaseError("replace feature flag", err)
	}

	id, err := ExecuteWithLastInsertID(ctx, tx,
		`INSERT INTO feature_flags (name, level, tenant_id, owner_id, enabled, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		flag.Name, string(flag.Level), flag.TenantID, flag.OwnerID, flag.Enabled, FormatTimeForDB(flag.UpdatedAt))
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return HandleDatabaseError("commit feature flag", err)
	}
	flag.ID = id
	return nil
}

// GetFeatureFlag returns the flag stored at exactly this level and key.
// A nil tenantID addresses the default tenant's row, never every tenant.
func (r *SQLiteRepository) GetFeatureFlag(ctx context.Context, name string, level FlagLevel, tenantID *string, ownerID *int64) (*FeatureFlag, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	if err := validateFlagKey(level, tenantID, ownerID); err != nil {
		return nil, err
	}

	query := `
	SELECT id, name, level, tenant_id, owner_id, enabled, updated_at
	FROM feature_flags
	WHERE name = ? AND level = ? AND tenant_id IS ? AND owner_id IS ?`
	return QuerySingle(ctx, r.db, query, ScanFeatureFlag, "feature flag", fmt.Sprintf("%s@%s", name, level),
		name, string(level), tenantID, ownerID)
}

func validateFlagKey(level FlagLevel, tenantID *string, ownerID *int64) error {
	switch level {
	case FlagLevelGlobal:
		if tenantID != nil || ownerID != nil {
			return errors.NewInvalidInputError("feature flag", level, "global flags take no tenant or owner")
		}
	case FlagLevelTenant:
		if ownerID != nil {
			return errors.NewInvalidInputError("feature flag", level, "tenant flags take no owner")
		}
	case FlagLevelOwner:
		if ownerID == nil || tenantID != nil {
			return errors.NewInvalidInputError("feature flag", level, "owner flags take an owner and no tenant")
		}
	default:
		return errors.NewInvalidInputError("feature flag level", level, "must be global, tenant or owner")
	}
	return nil
}
