package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"workhours/internal/tenancy"
)

func TestQueryBuilder_Build(t *testing.T) {
	qb := NewQueryBuilder("SELECT id FROM intervals")
	query, args := qb.Build()
	assert.Equal(t, "SELECT id FROM intervals", query)
	assert.Empty(t, args)

	qb.Where("owner_id = ?", int64(3))
	qb.Where("end_time IS NULL")
	query, args = qb.OrderBy("start_time ASC").Limit(10).Build()
	assert.Equal(t, "SELECT id FROM intervals WHERE (owner_id = ?) AND (end_time IS NULL) ORDER BY start_time ASC LIMIT ?", query)
	assert.Equal(t, []any{int64(3), 10}, args)
}

func TestQueryBuilder_BaseArgsComeFirst(t *testing.T) {
	qb := NewQueryBuilder("UPDATE intervals SET note = ?", "hello")
	qb.Where("id = ?", int64(5))
	query, args := qb.Build()
	assert.Equal(t, "UPDATE intervals SET note = ? WHERE (id = ?)", query)
	assert.Equal(t, []any{"hello", int64(5)}, args)
}

func TestQueryBuilder_TenantScope(t *testing.T) {
	acme, err := tenancy.ForTenant("acme")
	assert.NoError(t, err)

	tests := []struct {
		name     string
		scope    tenancy.TenantScope
		expected string
		args     []any
	}{
		{"all tenants adds nothing", tenancy.AllTenants(), "SELECT id FROM intervals", nil},
		{"default tenant is IS NULL", tenancy.DefaultTenant(), "SELECT id FROM intervals WHERE (intervals.tenant_id IS NULL)", nil},
		{"tenant binds its id", acme, "SELECT id FROM intervals WHERE (intervals.tenant_id = ?)", []any{"acme"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qb := NewQueryBuilder("SELECT id FROM intervals")
			assert.NoError(t, tenancy.ApplyScope(qb, tt.scope, "intervals.tenant_id"))
			query, args := qb.Build()
			assert.Equal(t, tt.expected, query)
			assert.Equal(t, len(tt.args), len(args))
			for i := range tt.args {
				assert.Equal(t, tt.args[i], args[i])
			}
		})
	}

	var zero tenancy.TenantScope
	assert.Error(t, tenancy.ApplyScope(NewQueryBuilder("SELECT 1"), zero, "tenant_id"))
}
