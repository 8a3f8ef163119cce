package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	on, off := true, false

	tests := []struct {
		name     string
		global   bool
		tenant   *bool
		user     *bool
		expected bool
		source   Source
	}{
		{"global only", true, nil, nil, true, SourceGlobal},
		{"tenant overrides global", true, &off, nil, false, SourceTenant},
		{"user overrides tenant", false, &off, &on, true, SourceOwner},
		{"user overrides global", true, nil, &off, false, SourceOwner},
		{"tenant enables over disabled global", false, &on, nil, true, SourceTenant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Resolve(tt.global, tt.tenant, tt.user))
			value, source := Explain(tt.global, tt.tenant, tt.user)
			assert.Equal(t, tt.expected, value)
			assert.Equal(t, tt.source, source)
		})
	}
}
