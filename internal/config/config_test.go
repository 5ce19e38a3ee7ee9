package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"
)

func TestLoadConfig_NonExistentFile(t *testing.T) {
	tempDir := t.TempDir()

	config, err := LoadConfig(filepath.Join(tempDir, ConfigFileName))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if config.Version != CurrentVersion {
		t.Errorf("Expected version %s, got %s", CurrentVersion, config.Version)
	}

	if config.Shell.Path != DefaultShellPath {
		t.Errorf("Expected default shell path '%s', got %s", DefaultShellPath, config.Shell.Path)
	}

	if config.Execution.Classify != ClassifyStderr {
		t.Errorf("Expected default classify '%s', got %s", ClassifyStderr, config.Execution.Classify)
	}

	if config.Execution.Timeout != 0 {
		t.Errorf("Expected no timeout by default, got %s", config.Execution.Timeout)
	}

	if !config.HistoryEnabled() {
		t.Error("Expected history to be enabled by default")
	}
}

func TestLoadConfig_ValidFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, ConfigFileName)

	configContent := `version: "1.0"
shell:
  path: /system/xbin/su
  args: ["--mount-master"]
execution:
  timeout: 30s
  classify: exit-code
history:
  enabled: false
  path: /data/local/tmp/history.db
lock:
  path: /data/local/tmp/rootcmd.lock
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if config.Shell.Path != "/system/xbin/su" {
		t.Errorf("Expected shell path '/system/xbin/su', got %s", config.Shell.Path)
	}

	if len(config.Shell.Args) != 1 || config.Shell.Args[0] != "--mount-master" {
		t.Errorf("Expected shell args [--mount-master], got %v", config.Shell.Args)
	}

	if config.Execution.Timeout != 30*time.Second {
		t.Errorf("Expected timeout 30s, got %s", config.Execution.Timeout)
	}

	if config.Execution.Classify != ClassifyExitCode {
		t.Errorf("Expected classify '%s', got %s", ClassifyExitCode, config.Execution.Classify)
	}

	if config.HistoryEnabled() {
		t.Error("Expected history to be disabled")
	}

	historyPath, err := config.ResolveHistoryPath()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if historyPath != "/data/local/tmp/history.db" {
		t.Errorf("Expected configured history path, got %s", historyPath)
	}

	if config.ResolveLockPath() != "/data/local/tmp/rootcmd.lock" {
		t.Errorf("Expected configured lock path, got %s", config.ResolveLockPath())
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, ConfigFileName)

	if err := os.WriteFile(configPath, []byte("shell: [unclosed"), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid YAML")
	}

	if !strings.Contains(err.Error(), "failed to parse config file") {
		t.Errorf("Expected parse error, got %v", err)
	}
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "unknown classify",
			content: "execution:\n  classify: sometimes\n",
			want:    "invalid classify 'sometimes'",
		},
		{
			name:    "negative timeout",
			content: "execution:\n  timeout: -5s\n",
			want:    "timeout must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), ConfigFileName)
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write test config: %v", err)
			}

			_, err := LoadConfig(configPath)
			if err == nil {
				t.Fatal("Expected validation error")
			}

			if !strings.Contains(err.Error(), "invalid configuration") || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestSaveConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nested", ConfigFileName)

	enabled := true
	config := &Config{
		Shell:     Shell{Path: "/sbin/su"},
		Execution: Execution{Timeout: 45 * time.Second},
		History:   History{Enabled: &enabled},
	}

	if err := SaveConfig(configPath, config); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("Config file was not created: %v", err)
	}
	if info.Mode().Perm() != configFilePermissions {
		t.Errorf("Expected permissions %o, got %o", configFilePermissions, info.Mode().Perm())
	}

	loaded, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}

	if loaded.Shell.Path != "/sbin/su" {
		t.Errorf("Expected shell path '/sbin/su', got %s", loaded.Shell.Path)
	}
	if loaded.Execution.Timeout != 45*time.Second {
		t.Errorf("Expected timeout 45s, got %s", loaded.Execution.Timeout)
	}
	if loaded.Execution.Classify != ClassifyStderr {
		t.Errorf("Expected defaulted classify, got %s", loaded.Execution.Classify)
	}
}

func TestSaveConfig_Invalid(t *testing.T) {
	config := &Config{Execution: Execution{Classify: "bogus"}}

	err := SaveConfig(filepath.Join(t.TempDir(), ConfigFileName), config)
	if err == nil {
		t.Fatal("Expected error for invalid config")
	}
}

func TestDefaultPath(t *testing.T) {
	original := userConfigDir
	t.Cleanup(func() { userConfigDir = original })

	userConfigDir = func() (string, error) { return "/home/test/.config", nil }

	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if path != filepath.Join("/home/test/.config", ConfigDirName, ConfigFileName) {
		t.Errorf("Unexpected default path %s", path)
	}

	userConfigDir = func() (string, error) { return "", errors.New("$HOME is not defined") }
	if _, err := DefaultPath(); err == nil {
		t.Error("Expected error when config dir is unknown")
	}
}

func TestResolveHistoryPath_Default(t *testing.T) {
	original := userCacheDir
	t.Cleanup(func() { userCacheDir = original })
	userCacheDir = func() (string, error) { return "/home/test/.cache", nil }

	path, err := DefaultConfig().ResolveHistoryPath()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if path != filepath.Join("/home/test/.cache", ConfigDirName, historyFileName) {
		t.Errorf("Unexpected history path %s", path)
	}
}

func TestResolveLockPath_Default(t *testing.T) {
	path := DefaultConfig().ResolveLockPath()

	if path != filepath.Join(os.TempDir(), lockFileName) {
		t.Errorf("Unexpected lock path %s", path)
	}
}

func TestTemplate(t *testing.T) {
	var config Config
	if err := yaml.Unmarshal([]byte(Template()), &config); err != nil {
		t.Fatalf("Template is not valid YAML: %v", err)
	}

	if err := config.Validate(); err != nil {
		t.Fatalf("Template does not validate: %v", err)
	}

	if config.Shell.Path != DefaultShellPath {
		t.Errorf("Expected template shell path '%s', got %s", DefaultShellPath, config.Shell.Path)
	}
	if config.Execution.Classify != ClassifyStderr {
		t.Errorf("Expected template classify '%s', got %s", ClassifyStderr, config.Execution.Classify)
	}
}

func TestSupportedClassifications(t *testing.T) {
	got := SupportedClassifications()
	if len(got) != 2 || got[0] != ClassifyStderr || got[1] != ClassifyExitCode {
		t.Errorf("Unexpected classifications %v", got)
	}
}
