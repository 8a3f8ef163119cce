package tenancy

import (
	"workhours/internal/errors"
)

// Filter is implemented by query builders that accept predicates.
type Filter interface {
	Where(condition string, args ...any)
}

// ApplyScope restricts a query to the scope. AllTenants leaves the query
// unchanged; the default tenant becomes "column IS NULL" because
// "column = NULL" never matches in SQL. It must run before any
// aggregation, pagination or count.
func ApplyScope(q Filter, scope TenantScope, column string) error {
	switch scope.kind {
	case KindAllTenants:
		return nil
	case KindDefaultTenant:
		q.Where(column + " IS NULL")
		return nil
	case KindTenant:
		if scope.tenantID == "" {
			break
		}
		q.Where(column+" = ?", scope.tenantID)
		return nil
	}
	return errors.NewScopeViolationError("query", "refusing to run with "+scope.String())
}

// FilterSlice keeps the items whose tenant id matches the scope.
func FilterSlice[T any](items []T, scope TenantScope, tenantOf func(T) *string) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if scope.Matches(tenantOf(item)) {
			out = append(out, item)
		}
	}
	return out
}
