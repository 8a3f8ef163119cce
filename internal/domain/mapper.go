package domain

import (
	"workhours/internal/repository/sqlite"
)

// TenantMapper handles conversion between domain and database Tenant models.
type TenantMapper struct{}

// NewTenantMapper creates a new TenantMapper instance.
func NewTenantMapper() *TenantMapper {
	return &TenantMapper{}
}

// ToDatabase converts a domain Tenant to a database Tenant.
func (m *TenantMapper) ToDatabase(t Tenant) sqlite.Tenant {
	return sqlite.Tenant{ID: t.ID, Name: t.Name, Timezone: t.Timezone}
}

// FromDatabase converts a database Tenant to a domain Tenant.
func (m *TenantMapper) FromDatabase(t sqlite.Tenant) Tenant {
	return Tenant{ID: t.ID, Name: t.Name, Timezone: t.Timezone}
}

// FromDatabaseSlice converts database Tenants to domain Tenants.
func (m *TenantMapper) FromDatabaseSlice(rows []*sqlite.Tenant) []Tenant {
	return mapSlice(rows, m.FromDatabase)
}

// OwnerMapper handles conversion between domain and database Owner models.
type OwnerMapper struct{}

// NewOwnerMapper creates a new OwnerMapper instance.
func NewOwnerMapper() *OwnerMapper {
	return &OwnerMapper{}
}

// ToDatabase converts a domain Owner to a database Owner.
func (m *OwnerMapper) ToDatabase(o Owner) sqlite.Owner {
	return sqlite.Owner{ID: o.ID, TenantID: o.TenantID, Name: o.Name, HourlyRateCents: o.HourlyRateCents}
}

// FromDatabase converts a database Owner to a domain Owner.
func (m *OwnerMapper) FromDatabase(o sqlite.Owner) Owner {
	return Owner{ID: o.ID, TenantID: o.TenantID, Name: o.Name, HourlyRateCents: o.HourlyRateCents}
}

// FromDatabaseSlice converts database Owners to domain Owners.
func (m *OwnerMapper) FromDatabaseSlice(rows []*sqlite.Owner) []Owner {
	return mapSlice(rows, m.FromDatabase)
}

// ProjectMapper handles conversion between domain and database Project models.
type ProjectMapper struct{}

// NewProjectMapper creates a new ProjectMapper instance.
func NewProjectMapper() *ProjectMapper {
	return &ProjectMapper{}
}

// ToDatabase converts a domain Project to a database Project.
func (m *ProjectMapper) ToDatabase(p Project) sqlite.Project {
	return sqlite.Project{ID: p.ID, TenantID: p.TenantID, Name: p.Name}
}

// FromDatabase converts a database Project to a domain Project.
func (m *ProjectMapper) FromDatabase(p sqlite.Project) Project {
	return Project{ID: p.ID, TenantID: p.TenantID, Name: p.Name}
}

// FromDatabaseSlice converts database Projects to domain Projects.
func (m *ProjectMapper) FromDatabaseSlice(rows []*sqlite.Project) []Project {
	return mapSlice(rows, m.FromDatabase)
}

// IntervalMapper handles conversion between domain and database Interval models.
type IntervalMapper struct{}

// NewIntervalMapper creates a new IntervalMapper instance.
func NewIntervalMapper() *IntervalMapper {
	return &IntervalMapper{}
}

// ToDatabase converts a domain Interval to a database Interval.
func (m *IntervalMapper) ToDatabase(iv Interval) sqlite.Interval {
	return sqlite.Interval{
		ID:        iv.ID,
		OwnerID:   iv.OwnerID,
		ProjectID: iv.ProjectID,
		TenantID:  iv.TenantID,
		StartTime: iv.Start,
		EndTime:   iv.End,
		Note:      iv.Note,
	}
}

// FromDatabase converts a database Interval to a domain Interval.
func (m *IntervalMapper) FromDatabase(iv sqlite.Interval) Interval {
	return Interval{
		ID:        iv.ID,
		OwnerID:   iv.OwnerID,
		ProjectID: iv.ProjectID,
		TenantID:  iv.TenantID,
		Start:     iv.StartTime,
		End:       iv.EndTime,
		Note:      iv.Note,
	}
}

// FromDatabaseSlice converts database Intervals to domain Intervals.
func (m *IntervalMapper) FromDatabaseSlice(rows []*sqlite.Interval) []Interval {
	return mapSlice(rows, m.FromDatabase)
}

// SearchOptionsMapper handles conversion between domain and database search options.
type SearchOptionsMapper struct{}

// NewSearchOptionsMapper creates a new SearchOptionsMapper instance.
func NewSearchOptionsMapper() *SearchOptionsMapper {
	return &SearchOptionsMapper{}
}

// ToDatabase converts a domain IntervalQuery to database SearchOptions.
func (m *SearchOptionsMapper) ToDatabase(q IntervalQuery) sqlite.SearchOptions {
	return sqlite.SearchOptions{
		OwnerID:     q.OwnerID,
		ProjectID:   q.ProjectID,
		From:        q.From,
		To:          q.To,
		RunningOnly: q.RunningOnly,
		Limit:       q.Limit,
	}
}

func mapSlice[D any, S any](rows []*S, fn func(S) D) []D {
	out := make([]D, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		out = append(out, fn(*row))
	}
	return out
}
