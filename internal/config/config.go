package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"workhours/internal/tenancy"
)

// EnvironmentProduction disables the strict scope check unless it is
// configured explicitly.
const EnvironmentProduction = "production"

// Config holds all configuration options for the workhours application
type Config struct {
	Database    DatabaseConfig    `toml:"database"`
	Reporting   ReportingConfig   `toml:"reporting"`
	Validation  ValidationConfig  `toml:"validation"`
	Actor       ActorConfig       `toml:"actor"`
	Application ApplicationConfig `toml:"application"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Dir            string        `toml:"dir" env:"WH_DB_DIR"`
	Filename       string        `toml:"filename" env:"WH_DB_FILENAME"`
	QueryTimeout   time.Duration `toml:"query_timeout" env:"WH_DB_QUERY_TIMEOUT"`
	DirPermissions uint32        `toml:"dir_permissions" env:"WH_DB_DIR_PERMISSIONS"`
}

// ReportingConfig holds report generation settings
type ReportingConfig struct {
	// DefaultTimezone is used for tenants without their own time zone and for
	// the default tenant.
	DefaultTimezone string `toml:"default_timezone" env:"WH_REPORT_TIMEZONE"`
	// StrictScope re-checks every loaded interval against the request scope.
	// Unset means on everywhere except production.
	StrictScope *bool  `toml:"strict_scope" env:"WH_REPORT_STRICT_SCOPE"`
	Workers     int    `toml:"workers" env:"WH_REPORT_WORKERS"`
	DefaultKind string `toml:"default_kind" env:"WH_REPORT_DEFAULT_KIND"`
}

// ValidationConfig holds validation rules configuration
type ValidationConfig struct {
	NameMinLength int           `toml:"name_min_length" env:"WH_VALIDATION_NAME_MIN"`
	NameMaxLength int           `toml:"name_max_length" env:"WH_VALIDATION_NAME_MAX"`
	MaxDuration   time.Duration `toml:"max_duration" env:"WH_VALIDATION_MAX_DURATION"`
}

// ActorConfig identifies who runs the command.
type ActorConfig struct {
	OwnerID            int64  `toml:"owner_id" env:"WH_ACTOR_OWNER_ID"`
	TenantID           string `toml:"tenant_id" env:"WH_ACTOR_TENANT_ID"`
	PlatformSuperActor bool   `toml:"platform_super_actor" env:"WH_ACTOR_SUPER"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Environment string        `toml:"environment" env:"WH_ENV"`
	Timeout     time.Duration `toml:"timeout" env:"WH_APP_TIMEOUT"`
	Verbose     bool          `toml:"verbose" env:"WH_APP_VERBOSE"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultDBDir := filepath.Join(homeDir, ".workhours")

	return &Config{
		Database: DatabaseConfig{
			Dir:            defaultDBDir,
			Filename:       "workhours.db",
			QueryTimeout:   10 * time.Second,
			DirPermissions: 0755,
		},
		Reporting: ReportingConfig{
			DefaultTimezone: "UTC",
			Workers:         4,
			DefaultKind:     "week",
		},
		Validation: ValidationConfig{
			NameMinLength: 1,
			NameMaxLength: 255,
			MaxDuration:   24 * time.Hour,
		},
		Application: ApplicationConfig{
			Environment: "development",
			Timeout:     60 * time.Second,
		},
	}
}

// GetDatabasePath returns the full path to the database file
func (c *Config) GetDatabasePath() string {
	if c.Database.Filename == ":memory:" {
		return c.Database.Filename
	}
	return filepath.Join(c.Database.Dir, c.Database.Filename)
}

// GetQueryTimeout returns the database query timeout
func (c *Config) GetQueryTimeout() time.Duration {
	return c.Database.QueryTimeout
}

// StrictScopeEnabled reports whether reports verify loaded data against the
// request scope.
func (c *Config) StrictScopeEnabled() bool {
	if c.Reporting.StrictScope != nil {
		return *c.Reporting.StrictScope
	}
	return c.Application.Environment != EnvironmentProduction
}

// DefaultLocation loads the configured default time zone.
func (c *Config) DefaultLocation() (*time.Location, error) {
	return time.LoadLocation(c.Reporting.DefaultTimezone)
}

// ResolveActor converts the actor section into the identity requests run as.
// An empty tenant id means the actor belongs to no tenant.
func (c *Config) ResolveActor() tenancy.Actor {
	actor := tenancy.Actor{
		OwnerID:            c.Actor.OwnerID,
		PlatformSuperActor: c.Actor.PlatformSuperActor,
	}
	if id := strings.TrimSpace(c.Actor.TenantID); id != "" {
		actor.TenantID = &id
	}
	return actor
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() error {
	// Database configuration
	if dir := os.Getenv("WH_DB_DIR"); dir != "" {
		c.Database.Dir = dir
	}
	if filename := os.Getenv("WH_DB_FILENAME"); filename != "" {
		c.Database.Filename = filename
	}
	if timeout := os.Getenv("WH_DB_QUERY_TIMEOUT"); timeout != "" {
		c.Database.QueryTimeout = ParseDurationWithFallback(timeout, c.Database.QueryTimeout)
	}
	if perms := os.Getenv("WH_DB_DIR_PERMISSIONS"); perms != "" {
		c.Database.DirPermissions = ParseUint32WithFallback(perms, 8, c.Database.DirPermissions)
	}

	// Reporting configuration
	if tz := os.Getenv("WH_REPORT_TIMEZONE"); tz != "" {
		c.Reporting.DefaultTimezone = tz
	}
	if strict := os.Getenv("WH_REPORT_STRICT_SCOPE"); strict != "" {
		if b, err := strconv.ParseBool(strict); err == nil {
			c.Reporting.StrictScope = &b
		}
	}
	if workers := os.Getenv("WH_REPORT_WORKERS"); workers != "" {
		c.Reporting.Workers = ParseIntWithFallback(workers, c.Reporting.Workers)
	}
	if kind := os.Getenv("WH_REPORT_DEFAULT_KIND"); kind != "" {
		c.Reporting.DefaultKind = kind
	}

	// Validation configuration
	if minLen := os.Getenv("WH_VALIDATION_NAME_MIN"); minLen != "" {
		c.Validation.NameMinLength = ParseIntWithFallback(minLen, c.Validation.NameMinLength)
	}
	if maxLen := os.Getenv("WH_VALIDATION_NAME_MAX"); maxLen != "" {
		c.Validation.NameMaxLength = ParseIntWithFallback(maxLen, c.Validation.NameMaxLength)
	}
	if maxDur := os.Getenv("WH_VALIDATION_MAX_DURATION"); maxDur != "" {
		c.Validation.MaxDuration = ParseDurationWithFallback(maxDur, c.Validation.MaxDuration)
	}

	// Actor configuration
	if owner := os.Getenv("WH_ACTOR_OWNER_ID"); owner != "" {
		if id, err := strconv.ParseInt(owner, 10, 64); err == nil {
			c.Actor.OwnerID = id
		}
	}
	if tenant, ok := os.LookupEnv("WH_ACTOR_TENANT_ID"); ok {
		c.Actor.TenantID = tenant
	}
	if super := os.Getenv("WH_ACTOR_SUPER"); super != "" {
		c.Actor.PlatformSuperActor = ParseBoolWithFallback(super, c.Actor.PlatformSuperActor)
	}

	// Application configuration
	if env := os.Getenv("WH_ENV"); env != "" {
		c.Application.Environment = env
	}
	if timeout := os.Getenv("WH_APP_TIMEOUT"); timeout != "" {
		c.Application.Timeout = ParseDurationWithFallback(timeout, c.Application.Timeout)
	}
	if verbose := os.Getenv("WH_APP_VERBOSE"); verbose != "" {
		c.Application.Verbose = ParseBoolWithFallback(verbose, c.Application.Verbose)
	}

	return nil
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	// Validate database configuration
	if c.Database.Dir == "" {
		return &ConfigError{Field: "database.dir", Message: "database directory cannot be empty"}
	}
	if c.Database.Filename == "" {
		return &ConfigError{Field: "database.filename", Message: "database filename cannot be empty"}
	}
	if c.Database.QueryTimeout <= 0 {
		return &ConfigError{Field: "database.query_timeout", Message: "query timeout must be positive"}
	}

	// Validate reporting configuration
	if _, err := c.DefaultLocation(); err != nil {
		return &ConfigError{Field: "reporting.default_timezone", Message: "unknown time zone " + strconv.Quote(c.Reporting.DefaultTimezone)}
	}
	if c.Reporting.Workers < 1 {
		return &ConfigError{Field: "reporting.workers", Message: "workers must be at least 1"}
	}
	switch c.Reporting.DefaultKind {
	case "day", "week", "month":
	default:
		return &ConfigError{Field: "reporting.default_kind", Message: "default kind must be day, week or month"}
	}

	// Validate validation configuration
	if c.Validation.NameMinLength < 1 {
		return &ConfigError{Field: "validation.name_min_length", Message: "name minimum length must be at least 1"}
	}
	if c.Validation.NameMaxLength < c.Validation.NameMinLength {
		return &ConfigError{Field: "validation.name_max_length", Message: "name maximum length must be greater than minimum length"}
	}
	if c.Validation.MaxDuration <= 0 {
		return &ConfigError{Field: "validation.max_duration", Message: "max duration must be positive"}
	}

	// Validate actor configuration
	if c.Actor.OwnerID < 0 {
		return &ConfigError{Field: "actor.owner_id", Message: "owner id cannot be negative"}
	}

	// Validate application configuration
	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
