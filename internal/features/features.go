// Package features resolves layered feature flags.
package features

// Resolve returns the effective value of a flag. A user override wins over
// the tenant default, which wins over the global value. A nil layer is unset.
func Resolve(global bool, tenantDefault *bool, userOverride *bool) bool {
	if userOverride != nil {
		return *userOverride
	}
	if tenantDefault != nil {
		return *tenantDefault
	}
	return global
}

// Source names the layer a resolved value came from.
type Source string

const (
	SourceGlobal Source = "global"
	SourceTenant Source = "tenant"
	SourceOwner  Source = "owner"
)

// Explain is Resolve plus the layer that decided the outcome.
func Explain(global bool, tenantDefault *bool, userOverride *bool) (bool, Source) {
	switch {
	case userOverride != nil:
		return *userOverride, SourceOwner
	case tenantDefault != nil:
		return *tenantDefault, SourceTenant
	default:
		return global, SourceGlobal
	}
}
