package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolatedLoader returns a loader that reads no files from the developer's
// machine.
func isolatedLoader(t *testing.T) *Loader {
	t.Helper()
	for _, key := range []string{
		"WH_DB_DIR", "WH_DB_FILENAME", "WH_DB_QUERY_TIMEOUT", "WH_REPORT_TIMEZONE",
		"WH_REPORT_STRICT_SCOPE", "WH_REPORT_WORKERS", "WH_ACTOR_OWNER_ID",
		"WH_ACTOR_TENANT_ID", "WH_ACTOR_SUPER", "WH_ENV", "WH_APP_VERBOSE",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return NewLoader().WithConfigFile("").WithEnvFiles()
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "workhours.db", cfg.Database.Filename)
	assert.Equal(t, "UTC", cfg.Reporting.DefaultTimezone)
	assert.Equal(t, 4, cfg.Reporting.Workers)
	assert.True(t, cfg.StrictScopeEnabled(), "strict outside production")

	cfg.Application.Environment = EnvironmentProduction
	assert.False(t, cfg.StrictScopeEnabled())

	on := true
	cfg.Reporting.StrictScope = &on
	assert.True(t, cfg.StrictScopeEnabled(), "explicit setting wins")
}

func TestLoadFromEnvironment(t *testing.T) {
	loader := isolatedLoader(t)
	t.Setenv("WH_DB_DIR", "/tmp/wh")
	t.Setenv("WH_DB_QUERY_TIMEOUT", "3s")
	t.Setenv("WH_REPORT_TIMEZONE", "Europe/Berlin")
	t.Setenv("WH_REPORT_STRICT_SCOPE", "false")
	t.Setenv("WH_REPORT_WORKERS", "8")
	t.Setenv("WH_ACTOR_OWNER_ID", "12")
	t.Setenv("WH_ACTOR_TENANT_ID", "acme")
	t.Setenv("WH_ACTOR_SUPER", "true")

	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/wh", cfg.Database.Dir)
	assert.Equal(t, 3*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, "Europe/Berlin", cfg.Reporting.DefaultTimezone)
	assert.False(t, cfg.StrictScopeEnabled())
	assert.Equal(t, 8, cfg.Reporting.Workers)

	actor := cfg.ResolveActor()
	assert.Equal(t, int64(12), actor.OwnerID)
	require.NotNil(t, actor.TenantID)
	assert.Equal(t, "acme", *actor.TenantID)
	assert.True(t, actor.PlatformSuperActor)
}

func TestResolveActor_EmptyTenantIsNil(t *testing.T) {
	cfg := NewConfig()
	cfg.Actor.TenantID = "   "
	assert.Nil(t, cfg.ResolveActor().TenantID)
}

func TestLoad_ConfigFile(t *testing.T) {
	loader := isolatedLoader(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[database]
filename = "team.db"
query_timeout = "2s"

[reporting]
default_timezone = "America/New_York"
strict_scope = true
workers = 2

[actor]
owner_id = 5
tenant_id = "globex"
`), 0o600))

	// Environment still wins over the file.
	t.Setenv("WH_REPORT_WORKERS", "6")

	cfg, err := loader.WithConfigFile(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "team.db", cfg.Database.Filename)
	assert.Equal(t, 2*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, "America/New_York", cfg.Reporting.DefaultTimezone)
	assert.Equal(t, 6, cfg.Reporting.Workers)
	assert.Equal(t, "globex", cfg.Actor.TenantID)
	assert.True(t, cfg.StrictScopeEnabled())
}

func TestLoad_ConfigFileErrors(t *testing.T) {
	dir := t.TempDir()

	unknown := filepath.Join(dir, "unknown.toml")
	require.NoError(t, os.WriteFile(unknown, []byte("[reporting]\nweekstart = \"sunday\"\n"), 0o600))
	_, err := isolatedLoader(t).WithConfigFile(unknown).Load()
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "reporting.weekstart", cfgErr.Field)

	broken := filepath.Join(dir, "broken.toml")
	require.NoError(t, os.WriteFile(broken, []byte("[reporting\n"), 0o600))
	_, err = isolatedLoader(t).WithConfigFile(broken).Load()
	assert.Error(t, err)

	// A missing file is not an error.
	_, err = isolatedLoader(t).WithConfigFile(filepath.Join(dir, "absent.toml")).Load()
	assert.NoError(t, err)
}

func TestLoad_EnvFile(t *testing.T) {
	loader := isolatedLoader(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("WH_ACTOR_OWNER_ID=77\nWH_ENV=production\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("WH_ACTOR_OWNER_ID")
		os.Unsetenv("WH_ENV")
	})

	cfg, err := loader.WithEnvFiles(path).Load()
	require.NoError(t, err)
	assert.Equal(t, int64(77), cfg.Actor.OwnerID)
	assert.False(t, cfg.StrictScopeEnabled())
}

func TestLoadWithOverrides(t *testing.T) {
	filename := ":memory:"
	tenant := "initech"
	super := true
	workers := 0

	cfg, err := isolatedLoader(t).LoadWithOverrides(&ConfigOverrides{DBFilename: &filename, TenantID: &tenant, Super: &super})
	require.NoError(t, err)
	assert.Equal(t, ":memory:", cfg.GetDatabasePath())
	assert.Equal(t, "initech", cfg.Actor.TenantID)
	assert.True(t, cfg.Actor.PlatformSuperActor)

	_, err = isolatedLoader(t).LoadWithOverrides(&ConfigOverrides{Workers: &workers})
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "reporting.workers", cfgErr.Field)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty dir", func(c *Config) { c.Database.Dir = "" }, "database.dir"},
		{"bad timezone", func(c *Config) { c.Reporting.DefaultTimezone = "Mars/Base" }, "reporting.default_timezone"},
		{"bad kind", func(c *Config) { c.Reporting.DefaultKind = "year" }, "reporting.default_kind"},
		{"name lengths", func(c *Config) { c.Validation.NameMaxLength = 0 }, "validation.name_max_length"},
		{"negative owner", func(c *Config) { c.Actor.OwnerID = -1 }, "actor.owner_id"},
		{"timeout", func(c *Config) { c.Application.Timeout = 0 }, "application.timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestWriteTOML_RoundTrip(t *testing.T) {
	cfg := NewConfig()
	cfg.Actor.TenantID = "acme"

	var buf bytes.Buffer
	require.NoError(t, WriteTOML(&buf, cfg))
	assert.Contains(t, buf.String(), `tenant_id = "acme"`)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	loaded, err := isolatedLoader(t).WithConfigFile(path).Load()
	require.NoError(t, err)
	assert.Equal(t, cfg.Database, loaded.Database)
	assert.Equal(t, "acme", loaded.Actor.TenantID)
}
