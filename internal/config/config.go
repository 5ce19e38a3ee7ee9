package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"
)

// Config represents the rootcmd configuration
type Config struct {
	Version   string    `yaml:"version"`
	Shell     Shell     `yaml:"shell"`
	Execution Execution `yaml:"execution,omitempty"`
	History   History   `yaml:"history,omitempty"`
	Lock      Lock      `yaml:"lock,omitempty"`
}

// Shell describes how the elevated shell is started
type Shell struct {
	Path string   `yaml:"path"`
	Args []string `yaml:"args,omitempty"`
}

// Execution holds per-command execution settings
type Execution struct {
	Timeout  time.Duration `yaml:"timeout,omitempty"` // 0 disables the timeout
	Classify string        `yaml:"classify,omitempty"`
}

// History configures the audit store of executed commands
type History struct {
	Enabled *bool  `yaml:"enabled,omitempty"` // nil = enabled
	Path    string `yaml:"path,omitempty"`
}

// Lock configures the advisory lock used by exclusive runs
type Lock struct {
	Path string `yaml:"path,omitempty"`
}

const (
	ConfigDirName         = "rootcmd"
	ConfigFileName        = "config.yml"
	CurrentVersion        = "1.0"
	DefaultShellPath      = "su"
	ClassifyStderr        = "stderr"
	ClassifyExitCode      = "exit-code"
	historyFileName       = "history.db"
	lockFileName          = "rootcmd.lock"
	configDirPermissions  = 0o755
	configFilePermissions = 0o600
)

// Variables to allow mocking in tests
var (
	userConfigDir = os.UserConfigDir
	userCacheDir  = os.UserCacheDir
)

// SupportedClassifications lists the accepted execution.classify values
func SupportedClassifications() []string {
	return []string{ClassifyStderr, ClassifyExitCode}
}

// DefaultConfig returns a validated configuration with every default applied
func DefaultConfig() *Config {
	cfg := &Config{}
	// Validate only fills defaults on an empty config
	_ = cfg.Validate()
	return cfg
}

// DefaultPath returns the per-user configuration file path
func DefaultPath() (string, error) {
	dir, err := userConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(dir, ConfigDirName, ConfigFileName), nil
}

// LoadConfig loads configuration from path. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// SaveConfig writes configuration to path, creating its directory
func SaveConfig(path string, config *Config) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), configDirPermissions); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, configFilePermissions); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate fills defaults and validates the configuration
func (c *Config) Validate() error {
	if c.Version == "" {
		c.Version = CurrentVersion
	}

	if c.Shell.Path == "" {
		c.Shell.Path = DefaultShellPath
	}

	switch c.Execution.Classify {
	case "":
		c.Execution.Classify = ClassifyStderr
	case ClassifyStderr, ClassifyExitCode:
	default:
		return fmt.Errorf("invalid classify '%s', must be '%s' or '%s'",
			c.Execution.Classify, ClassifyStderr, ClassifyExitCode)
	}

	if c.Execution.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Execution.Timeout)
	}

	return nil
}

// HistoryEnabled reports whether executed commands are recorded
func (c *Config) HistoryEnabled() bool {
	return c.History.Enabled == nil || *c.History.Enabled
}

// ResolveHistoryPath returns the configured history database path, or the
// default under the user cache directory
func (c *Config) ResolveHistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	dir, err := userCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user cache directory: %w", err)
	}
	return filepath.Join(dir, ConfigDirName, historyFileName), nil
}

// ResolveLockPath returns the configured lock file path, or one in the temp directory
func (c *Config) ResolveLockPath() string {
	if c.Lock.Path != "" {
		return c.Lock.Path
	}
	return filepath.Join(os.TempDir(), lockFileName)
}

// Template returns the commented configuration written by 'rootcmd init'
func Template() string {
	return `# rootcmd configuration
version: "1.0"

# Elevated shell used for every command
shell:
  # Escalation binary; the command is written to its stdin followed by "exit"
  path: su
  # Extra arguments for the escalation binary
  # args: ["-c", "sh"]

execution:
  # Kill the elevated shell after this long (0s disables the timeout)
  timeout: 0s

  # How a finished command is classified:
  #   stderr    - any stderr text is a failure, whatever the exit code
  #   exit-code - a non-zero exit is a failure; stderr is kept as extra detail
  classify: stderr

# Audit history of executed commands (SQLite)
history:
  enabled: true
  # path: /var/lib/rootcmd/history.db

# Advisory lock taken by 'rootcmd run --exclusive'
# lock:
#   path: /tmp/rootcmd.lock
`
}
