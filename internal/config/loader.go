package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Loader handles loading configuration from multiple sources
type Loader struct {
	config     *Config
	configFile string
	envFiles   []string
}

// NewLoader creates a new configuration loader. The config file defaults to
// $WH_CONFIG or ~/.workhours/config.toml; the env file to ./.env.
func NewLoader() *Loader {
	return &Loader{
		config:     NewConfig(),
		configFile: DefaultConfigPath(),
		envFiles:   []string{".env"},
	}
}

// DefaultConfigPath returns the config file location.
func DefaultConfigPath() string {
	if path := os.Getenv("WH_CONFIG"); path != "" {
		return path
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".workhours", "config.toml")
}

// WithConfigFile sets the TOML file to read. An empty path skips the file.
func (l *Loader) WithConfigFile(path string) *Loader {
	l.configFile = path
	return l
}

// WithEnvFiles sets the dotenv files to read.
func (l *Loader) WithEnvFiles(paths ...string) *Loader {
	l.envFiles = paths
	return l
}

// Load loads configuration using the cascading strategy:
// 1. Start with defaults
// 2. Override with the TOML config file, if present
// 3. Override with environment variables, .env files filling unset ones
// 4. Override with command line flags (handled by cobra)
func (l *Loader) Load() (*Config, error) {
	// Step 1: Start with defaults (already done in NewConfig)

	// Step 2: Load the config file
	if err := l.loadFile(); err != nil {
		return nil, err
	}

	// Step 3: Load from environment variables
	for _, path := range l.envFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		// godotenv never overrides variables that are already set.
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	if err := l.config.LoadFromEnvironment(); err != nil {
		return nil, err
	}

	// Step 4: Validate the configuration
	if err := l.config.Validate(); err != nil {
		return nil, err
	}

	return l.config, nil
}

func (l *Loader) loadFile() error {
	if l.configFile == "" {
		return nil
	}
	meta, err := toml.DecodeFile(l.configFile, l.config)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", l.configFile, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return &ConfigError{Field: undecoded[0].String(), Message: "unknown configuration key"}
	}
	return nil
}

// LoadWithOverrides loads configuration and applies command line overrides
func (l *Loader) LoadWithOverrides(overrides *ConfigOverrides) (*Config, error) {
	// Load base configuration
	config, err := l.Load()
	if err != nil {
		return nil, err
	}

	// Apply command line overrides
	if overrides != nil {
		l.applyOverrides(config, overrides)
	}

	// Re-validate after applying overrides
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// WriteTOML encodes the configuration as TOML.
func WriteTOML(w io.Writer, config *Config) error {
	return toml.NewEncoder(w).Encode(config)
}

// ConfigOverrides holds command line flag overrides
type ConfigOverrides struct {
	// Database overrides
	DBDir          *string
	DBFilename     *string
	DBQueryTimeout *time.Duration

	// Reporting overrides
	Timezone    *string
	StrictScope *bool
	Workers     *int

	// Actor overrides
	OwnerID  *int64
	TenantID *string
	Super    *bool

	// Application overrides
	Environment *string
	Timeout     *time.Duration
	Verbose     *bool
}

// applyOverrides applies command line overrides to the configuration
func (l *Loader) applyOverrides(config *Config, overrides *ConfigOverrides) {
	// Database overrides
	if overrides.DBDir != nil {
		config.Database.Dir = *overrides.DBDir
	}
	if overrides.DBFilename != nil {
		config.Database.Filename = *overrides.DBFilename
	}
	if overrides.DBQueryTimeout != nil {
		config.Database.QueryTimeout = *overrides.DBQueryTimeout
	}

	// Reporting overrides
	if overrides.Timezone != nil {
		config.Reporting.DefaultTimezone = *overrides.Timezone
	}
	if overrides.StrictScope != nil {
		strict := *overrides.StrictScope
		config.Reporting.StrictScope = &strict
	}
	if overrides.Workers != nil {
		config.Reporting.Workers = *overrides.Workers
	}

	// Actor overrides
	if overrides.OwnerID != nil {
		config.Actor.OwnerID = *overrides.OwnerID
	}
	if overrides.TenantID != nil {
		config.Actor.TenantID = *overrides.TenantID
	}
	if overrides.Super != nil {
		config.Actor.PlatformSuperActor = *overrides.Super
	}

	// Application overrides
	if overrides.Environment != nil {
		config.Application.Environment = *overrides.Environment
	}
	if overrides.Timeout != nil {
		config.Application.Timeout = *overrides.Timeout
	}
	if overrides.Verbose != nil {
		config.Application.Verbose = *overrides.Verbose
	}
}

// ParseDurationWithFallback parses a duration string with a fallback value
func ParseDurationWithFallback(s string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return fallback
}

// ParseIntWithFallback parses an integer string with a fallback value
func ParseIntWithFallback(s string, fallback int) int {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return fallback
}

// ParseBoolWithFallback parses a boolean string with a fallback value
func ParseBoolWithFallback(s string, fallback bool) bool {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return fallback
}

// ParseUint32WithFallback parses a uint32 string with a fallback value
func ParseUint32WithFallback(s string, base int, fallback uint32) uint32 {
	if u, err := strconv.ParseUint(s, base, 32); err == nil {
		return uint32(u)
	}
	return fallback
}
