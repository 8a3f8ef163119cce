package tenancy

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workhours/internal/errors"
)

func strPtr(s string) *string { return &s }

type recordingFilter struct {
	conditions []string
	args       []any
}

func (f *recordingFilter) Where(condition string, args ...any) {
	f.conditions = append(f.conditions, condition)
	f.args = append(f.args, args...)
}

func mustTenant(t *testing.T, id string) TenantScope {
	t.Helper()
	scope, err := ForTenant(id)
	require.NoError(t, err)
	return scope
}

func TestTenantScope_Matches(t *testing.T) {
	acme := mustTenant(t, "acme")

	tests := []struct {
		name     string
		scope    TenantScope
		tenantID *string
		expected bool
	}{
		{"tenant scope matches same tenant", acme, strPtr("acme"), true},
		{"tenant scope rejects other tenant", acme, strPtr("globex"), false},
		{"tenant scope rejects null tenant", acme, nil, false},
		{"default scope matches null tenant", DefaultTenant(), nil, true},
		{"default scope rejects concrete tenant", DefaultTenant(), strPtr("acme"), false},
		{"default scope rejects empty string tenant", DefaultTenant(), strPtr(""), false},
		{"all tenants matches concrete tenant", AllTenants(), strPtr("acme"), true},
		{"all tenants matches null tenant", AllTenants(), nil, true},
		{"zero value matches nothing", TenantScope{}, nil, false},
		{"zero value rejects concrete tenant", TenantScope{}, strPtr("acme"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.scope.Matches(tt.tenantID))
		})
	}
}

func TestTenantScope_DefaultIsNotUnrestricted(t *testing.T) {
	assert.False(t, DefaultTenant().Equal(AllTenants()))
	assert.False(t, DefaultTenant().IsUnrestricted())
	assert.True(t, AllTenants().IsUnrestricted())
}

func TestForTenant_RejectsEmptyID(t *testing.T) {
	_, err := ForTenant("")
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))
}

func TestFromRecord(t *testing.T) {
	assert.True(t, FromRecord(nil).Equal(DefaultTenant()))
	assert.True(t, FromRecord(strPtr("acme")).Equal(mustTenant(t, "acme")))
}

func TestParse(t *testing.T) {
	all, err := Parse("all")
	require.NoError(t, err)
	assert.True(t, all.IsUnrestricted())

	def, err := Parse("default")
	require.NoError(t, err)
	assert.Equal(t, KindDefaultTenant, def.Kind())

	scope, err := Parse("acme")
	require.NoError(t, err)
	id, ok := scope.TenantID()
	assert.True(t, ok)
	assert.Equal(t, "acme", id)

	_, err = Parse("")
	assert.Error(t, err)
}

func TestApplyScope(t *testing.T) {
	t.Run("all tenants leaves query unchanged", func(t *testing.T) {
		f := &recordingFilter{}
		require.NoError(t, ApplyScope(f, AllTenants(), "tenant_id"))
		assert.Empty(t, f.conditions)
	})

	t.Run("default tenant uses IS NULL", func(t *testing.T) {
		f := &recordingFilter{}
		require.NoError(t, ApplyScope(f, DefaultTenant(), "intervals.tenant_id"))
		assert.Equal(t, []string{"intervals.tenant_id IS NULL"}, f.conditions)
		assert.Empty(t, f.args)
	})

	t.Run("concrete tenant uses equality", func(t *testing.T) {
		f := &recordingFilter{}
		require.NoError(t, ApplyScope(f, mustTenant(t, "acme"), "tenant_id"))
		assert.Equal(t, []string{"tenant_id = ?"}, f.conditions)
		assert.Equal(t, []any{"acme"}, f.args)
	})

	t.Run("zero scope fails closed", func(t *testing.T) {
		f := &recordingFilter{}
		err := ApplyScope(f, TenantScope{}, "tenant_id")
		require.Error(t, err)
		assert.True(t, errors.IsErrorType(err, errors.ErrorTypeScopeViolation))
		assert.Empty(t, f.conditions)
	})
}

func TestEffectiveScope(t *testing.T) {
	acme := mustTenant(t, "acme")
	globex := mustTenant(t, "globex")
	def := DefaultTenant()

	t.Run("regular actor is pinned to own tenant", func(t *testing.T) {
		scope, err := EffectiveScope(Actor{OwnerID: 1, TenantID: strPtr("acme")}, nil)
		require.NoError(t, err)
		assert.True(t, scope.Equal(acme))
	})

	t.Run("regular actor may restate own tenant", func(t *testing.T) {
		scope, err := EffectiveScope(Actor{TenantID: strPtr("acme")}, &acme)
		require.NoError(t, err)
		assert.True(t, scope.Equal(acme))
	})

	t.Run("regular actor cannot read another tenant", func(t *testing.T) {
		_, err := EffectiveScope(Actor{TenantID: strPtr("acme")}, &globex)
		require.Error(t, err)
		assert.True(t, errors.IsErrorType(err, errors.ErrorTypePermission))
	})

	t.Run("regular actor cannot widen to default tenant", func(t *testing.T) {
		_, err := EffectiveScope(Actor{TenantID: strPtr("acme")}, &def)
		require.Error(t, err)
		assert.True(t, errors.IsErrorType(err, errors.ErrorTypePermission))
	})

	t.Run("regular actor without tenant fails closed", func(t *testing.T) {
		_, err := EffectiveScope(Actor{OwnerID: 3}, nil)
		require.Error(t, err)
		assert.True(t, errors.IsErrorType(err, errors.ErrorTypeScopeViolation))
	})

	t.Run("platform super-actor defaults to all tenants", func(t *testing.T) {
		scope, err := EffectiveScope(Actor{PlatformSuperActor: true}, nil)
		require.NoError(t, err)
		assert.True(t, scope.IsUnrestricted())
	})

	t.Run("platform super-actor may select default tenant", func(t *testing.T) {
		scope, err := EffectiveScope(Actor{PlatformSuperActor: true, TenantID: strPtr("acme")}, &def)
		require.NoError(t, err)
		assert.True(t, scope.Equal(def))
	})

	t.Run("platform super-actor cannot pass zero scope", func(t *testing.T) {
		_, err := EffectiveScope(Actor{PlatformSuperActor: true}, &TenantScope{})
		assert.Error(t, err)
	})
}

type record struct {
	id     int
	tenant *string
}

// TestFilterSlice_Isolation checks tenant isolation over random record sets:
// a tenant scope never sees another tenant or NULL, and the default scope
// never sees a concrete tenant.
func TestFilterSlice_Isolation(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tenants := []*string{nil, strPtr("a"), strPtr("b"), strPtr("c")}

	for trial := 0; trial < 100; trial++ {
		records := make([]record, rng.Intn(40))
		for i := range records {
			records[i] = record{id: i, tenant: tenants[rng.Intn(len(tenants))]}
		}
		tenantOf := func(r record) *string { return r.tenant }

		for _, id := range []string{"a", "b", "c"} {
			scope := mustTenant(t, id)
			for _, r := range FilterSlice(records, scope, tenantOf) {
				require.NotNil(t, r.tenant, "trial %d: scope %s leaked a NULL-tenant record", trial, scope)
				assert.Equal(t, id, *r.tenant, "trial %d: scope %s leaked record %d", trial, scope, r.id)
			}
		}

		for _, r := range FilterSlice(records, DefaultTenant(), tenantOf) {
			assert.Nil(t, r.tenant, fmt.Sprintf("trial %d: default scope leaked record %d", trial, r.id))
		}

		assert.Len(t, FilterSlice(records, AllTenants(), tenantOf), len(records))
	}
}
