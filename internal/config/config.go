package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Scan profiles. Thorough deepens per-tool coverage at the cost of
// longer runs.
const (
	ProfileNormal   = "normal"
	ProfileThorough = "thorough"
)

// Config holds all configuration for VulnPipe
type Config struct {
	// Root directory of the run tree
	RunsDir string `mapstructure:"runs_dir"`

	// Scan profile (normal, thorough)
	Profile string `mapstructure:"profile"`

	// Severity at or above which the scan exit code signals failure
	// (0 disables the check)
	FailSeverity int `mapstructure:"fail_severity"`

	// Output format (text, json, both)
	Format string `mapstructure:"format"`

	// Per-tool execution timeout in seconds (0 uses registry defaults)
	ToolTimeout int `mapstructure:"tool_timeout"`

	// Substitute mock envelopes for missing scanner binaries
	MockMissing bool `mapstructure:"mock_missing"`

	// Verbose output
	Verbose bool `mapstructure:"verbose"`

	// Debug mode
	Debug bool `mapstructure:"debug"`
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		RunsDir:      "runs",
		Profile:      ProfileNormal,
		FailSeverity: 0,
		Format:       "text",
		ToolTimeout:  0,
		MockMissing:  false,
		Verbose:      false,
		Debug:        false,
	}
}

// Load loads configuration with the following precedence (lowest to highest):
// 1. Default values
// 2. Config file (~/.vulnpipe.yaml or ./vulnpipe.yaml)
// 3. Environment variables (VULNPIPE_*)
// 4. CLI flags (handled by caller)
func Load() (*Config, error) {
	return LoadFromFile("")
}

// LoadFromFile loads configuration from a specific file path
// If path is empty, it searches for config in standard locations
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("runs_dir", defaults.RunsDir)
	v.SetDefault("profile", defaults.Profile)
	v.SetDefault("fail_severity", defaults.FailSeverity)
	v.SetDefault("format", defaults.Format)
	v.SetDefault("tool_timeout", defaults.ToolTimeout)
	v.SetDefault("mock_missing", defaults.MockMissing)
	v.SetDefault("verbose", defaults.Verbose)
	v.SetDefault("debug", defaults.Debug)

	v.SetConfigName("vulnpipe")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// 1. Current directory
		v.AddConfigPath(".")

		// 2. Home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}

		// 3. XDG config directory
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			v.AddConfigPath(filepath.Join(xdgConfig, "vulnpipe"))
		}
	}

	v.SetEnvPrefix("VULNPIPE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is OK, we'll use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	validFormats := map[string]bool{
		"text": true,
		"json": true,
		"both": true,
	}
	if !validFormats[c.Format] {
		return fmt.Errorf("invalid format: %s (must be text, json, or both)", c.Format)
	}

	// Empty profile means normal.
	if c.Profile != "" && c.Profile != ProfileNormal && c.Profile != ProfileThorough {
		return fmt.Errorf("invalid profile: %s (must be normal or thorough)", c.Profile)
	}

	if c.FailSeverity < 0 || c.FailSeverity > 5 {
		return fmt.Errorf("fail_severity must be between 0 and 5")
	}

	if c.ToolTimeout < 0 {
		return fmt.Errorf("tool_timeout cannot be negative")
	}

	if c.RunsDir == "" {
		return fmt.Errorf("runs_dir cannot be empty")
	}

	return nil
}

// RunsPath returns the absolute path to the run tree root
func (c *Config) RunsPath() (string, error) {
	// Expand ~ to home directory
	if len(c.RunsDir) >= 2 && c.RunsDir[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, c.RunsDir[2:]), nil
	}

	absPath, err := filepath.Abs(c.RunsDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	return absPath, nil
}

// ToolTimeoutDuration converts the configured timeout to a Duration.
func (c *Config) ToolTimeoutDuration() time.Duration {
	return time.Duration(c.ToolTimeout) * time.Second
}

// ShouldFailOnSeverity checks if a run's max severity trips the
// configured threshold
func (c *Config) ShouldFailOnSeverity(maxSeverity int) bool {
	if c.FailSeverity == 0 {
		return false
	}
	return maxSeverity >= c.FailSeverity
}

// GenerateSampleConfig generates a sample configuration file content
func GenerateSampleConfig() string {
	return `# VulnPipe Configuration
# Save this file as ~/.vulnpipe.yaml or ./vulnpipe.yaml

# Root directory of the run tree
runs_dir: runs

# Scan profile: normal or thorough
profile: normal

# Fail the scan exit code when any finding reaches this severity (1-5)
# Set to 0 to disable
fail_severity: 0

# Output format: text, json, or both
format: text

# Per-tool execution timeout in seconds (0 uses per-tool defaults)
tool_timeout: 0

# Substitute mock envelopes when a scanner binary is missing
mock_missing: false

# Enable verbose output
verbose: false

# Enable debug mode
debug: false
`
}
