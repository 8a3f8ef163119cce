package sqlite

import (
	"fmt"
)

// Scanner interface defines the common scanning behavior for both sql.Row and sql.Rows
type Scanner interface {
	Scan(dest ...any) error
}

// Rows interface defines the common behavior for sql.Rows
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanAll[T any](rows Rows, scanOne func(Scanner) (*T, error)) ([]*T, error) {
	var out []*T
	for rows.Next() {
		item, err := scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

// ScanTenant scans a single tenant from a database row
func ScanTenant(scanner Scanner) (*Tenant, error) {
	tenant := &Tenant{}
	var createdAt string
	if err := scanner.Scan(&tenant.ID, &tenant.Name, &tenant.Timezone, &createdAt); err != nil {
		return nil, err
	}
	t, err := ParseTimeFromDB(createdAt)
	if err != nil {
		return nil, fmt.Errorf("tenant %s created_at: %w", tenant.ID, err)
	}
	tenant.CreatedAt = t
	return tenant, nil
}

// ScanTenants scans multiple tenants from database rows
func ScanTenants(rows Rows) ([]*Tenant, error) {
	return scanAll(rows, ScanTenant)
}

// ScanOwner scans a single owner from a database row
func ScanOwner(scanner Scanner) (*Owner, error) {
	owner := &Owner{}
	if err := scanner.Scan(&owner.ID, &owner.TenantID, &owner.Name, &owner.HourlyRateCents); err != nil {
		return nil, err
	}
	return owner, nil
}

// ScanOwners scans multiple owners from database rows
func ScanOwners(rows Rows) ([]*Owner, error) {
	return scanAll(rows, ScanOwner)
}

// ScanProject scans a single project from a database row
func ScanProject(scanner Scanner) (*Project, error) {
	project := &Project{}
	if err := scanner.Scan(&project.ID, &project.TenantID, &project.Name); err != nil {
		return nil, err
	}
	return project, nil
}

// ScanProjects scans multiple projects from database rows
func ScanProjects(rows Rows) ([]*Project, error) {
	return scanAll(rows, ScanProject)
}

// ScanInterval scans a single interval from a database row. Times are stored
// as RFC3339 text and parsed here rather than by the driver.
func ScanInterval(scanner Scanner) (*Interval, error) {
	iv := &Interval{}
	var start string
	var end *string

	err := scanner.Scan(
		&iv.ID,
		&iv.OwnerID,
		&iv.ProjectID,
		&iv.TenantID,
		&start,
		&end,
		&iv.Note,
	)
	if err != nil {
		return nil, err
	}

	if iv.StartTime, err = ParseTimeFromDB(start); err != nil {
		return nil, fmt.Errorf("interval %d start_time: %w", iv.ID, err)
	}
	if iv.EndTime, err = ParseNullTimeFromDB(end); err != nil {
		return nil, fmt.Errorf("interval %d end_time: %w", iv.ID, err)
	}

	return iv, nil
}

// ScanIntervals scans multiple intervals from database rows
func ScanIntervals(rows Rows) ([]*Interval, error) {
	return scanAll(rows, ScanInterval)
}

// ScanFeatureFlag scans a single feature flag from a database row
func ScanFeatureFlag(scanner Scanner) (*FeatureFlag, error) {
	flag := &FeatureFlag{}
	var level, updatedAt string
	err := scanner.Scan(&flag.ID, &flag.Name, &level, &flag.TenantID, &flag.OwnerID, &flag.Enabled, &updatedAt)
	if err != nil {
		return nil, err
	}
	flag.Level = FlagLevel(level)
	if flag.UpdatedAt, err = ParseTimeFromDB(updatedAt); err != nil {
		return nil, fmt.Errorf("feature flag %d updated_at: %w", flag.ID, err)
	}
	return flag, nil
}

// ScanFeatureFlags scans multiple feature flags from database rows
func ScanFeatureFlags(rows Rows) ([]*FeatureFlag, error) {
	return scanAll(rows, ScanFeatureFlag)
}
