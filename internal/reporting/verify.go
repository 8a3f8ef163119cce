package reporting

import (
	"fmt"

	"workhours/internal/domain"
	"workhours/internal/errors"
	"workhours/internal/tenancy"
)

// VerifyScope fails on the first interval outside scope. The aggregator
// never calls it; report builders run it when strict scope checking is on.
func VerifyScope(intervals []domain.Interval, scope tenancy.TenantScope) error {
	if scope.IsUnrestricted() {
		return nil
	}
	for _, iv := range intervals {
		if !scope.Matches(iv.TenantID) {
			return errors.NewScopeViolationError(
				fmt.Sprintf("interval %d", iv.ID),
				fmt.Sprintf("tenant %s outside %s", domain.TenantLabel(iv.TenantID), scope),
			)
		}
	}
	return nil
}
