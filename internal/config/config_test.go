package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harrison/bulkcomplete/internal/models"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.API.BaseURL = "https://grc.example.com"
	cfg.Context.Parent = &models.ObjectRef{Type: "Audit", ID: 42}
	cfg.History.DBPath = "/tmp/history.db"
	return cfg
}

// TestDefaultConfig verifies default configuration values
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.RequestTimeout != 30*time.Second {
		t.Errorf("API.RequestTimeout = %v, want 30s", cfg.API.RequestTimeout)
	}
	if cfg.Tracking.PollInterval != 2*time.Second {
		t.Errorf("Tracking.PollInterval = %v, want 2s", cfg.Tracking.PollInterval)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled = false, want true")
	}
}

// TestLoadConfigValidFile tests loading a valid YAML config file
func TestLoadConfigValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `api:
  base_url: https://grc.example.com
  api_token: secret
  request_timeout: 10s
tracking:
  poll_interval: 500ms
  poll_timeout: 5m
log_level: debug
log_dir: /tmp/logs
current_user:
  id: 384
  email: auditor@example.com
context:
  parent:
    type: Audit
    id: 42
  status_filter: ["In Progress"]
drive:
  check_path: /api/gdrive/check
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.API.BaseURL != "https://grc.example.com" {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.Token != "secret" {
		t.Errorf("API.Token = %q, want secret", cfg.API.Token)
	}
	if cfg.API.RequestTimeout != 10*time.Second {
		t.Errorf("API.RequestTimeout = %v, want 10s", cfg.API.RequestTimeout)
	}
	if cfg.Tracking.PollInterval != 500*time.Millisecond {
		t.Errorf("Tracking.PollInterval = %v, want 500ms", cfg.Tracking.PollInterval)
	}
	if cfg.Tracking.PollTimeout != 5*time.Minute {
		t.Errorf("Tracking.PollTimeout = %v, want 5m", cfg.Tracking.PollTimeout)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.CurrentUser.ID != 384 || cfg.CurrentUser.Email != "auditor@example.com" {
		t.Errorf("CurrentUser = %+v", cfg.CurrentUser)
	}
	if cfg.Context.Parent == nil || cfg.Context.Parent.ID != 42 || cfg.Context.Parent.Type != "Audit" {
		t.Errorf("Context.Parent = %+v", cfg.Context.Parent)
	}
	if len(cfg.Context.StatusFilter) != 1 || cfg.Context.StatusFilter[0] != "In Progress" {
		t.Errorf("Context.StatusFilter = %v", cfg.Context.StatusFilter)
	}
	if cfg.Drive.CheckPath != "/api/gdrive/check" {
		t.Errorf("Drive.CheckPath = %q", cfg.Drive.CheckPath)
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled should keep its default when the section is absent")
	}
}

// TestLoadConfigMissingFile returns defaults for a missing file
func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoadConfigHistoryDisabled(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("history:\n  enabled: false\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.History.Enabled {
		t.Error("History.Enabled = true, want false")
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"malformed yaml", "api: [unclosed", "failed to parse config file"},
		{"bad duration", "tracking:\n  poll_interval: soon\n", "invalid tracking.poll_interval format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}
			_, err := LoadConfig(configPath)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadConfig() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfigFromDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, HomeDirName), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, HomeDirName, "config.yaml"), []byte("log_level: warn\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFromDir(dir)
	if err != nil {
		t.Fatalf("LoadConfigFromDir() error = %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
}

func TestLoadEnvAndApplyEnv(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	content := EnvBaseURL + "=https://env.example.com\n" + EnvAPIToken + "=from-file\n"
	if err := os.WriteFile(envFile, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	// godotenv does not override variables that are already set
	t.Setenv(EnvAPIToken, "from-process")
	t.Setenv(EnvBaseURL, "")
	os.Unsetenv(EnvBaseURL)

	if err := LoadEnv(envFile); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	cfg := DefaultConfig()
	cfg.ApplyEnv()

	if cfg.API.BaseURL != "https://env.example.com" {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.Token != "from-process" {
		t.Errorf("API.Token = %q, want from-process", cfg.API.Token)
	}

	if err := LoadEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("LoadEnv() on missing file error = %v", err)
	}
}

func TestMergeWithFlags(t *testing.T) {
	cfg := validConfig()
	url := "https://other.example.com"
	level := "trace"
	mine := true
	parent := models.ObjectRef{Type: "Audit", ID: 7}

	cfg.MergeWithFlags(&url, &level, nil, &mine, &parent)

	if cfg.API.BaseURL != url {
		t.Errorf("API.BaseURL = %q, want %q", cfg.API.BaseURL, url)
	}
	if cfg.LogLevel != "trace" {
		t.Errorf("LogLevel = %q, want trace", cfg.LogLevel)
	}
	if !cfg.Context.MyAssessments {
		t.Error("Context.MyAssessments = false, want true")
	}
	if cfg.Context.Parent.ID != 7 {
		t.Errorf("Context.Parent.ID = %d, want 7", cfg.Context.Parent.ID)
	}
	parent.ID = 8
	if cfg.Context.Parent.ID != 7 {
		t.Error("MergeWithFlags must copy the parent reference")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing base url", func(c *Config) { c.API.BaseURL = "" }, "api.base_url is required"},
		{"relative base url", func(c *Config) { c.API.BaseURL = "grc" }, "api.base_url must be an absolute URL"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, `invalid log_level "loud"`},
		{"zero poll interval", func(c *Config) { c.Tracking.PollInterval = 0 }, "tracking.poll_interval must be >"},
		{"bad email", func(c *Config) { c.CurrentUser.Email = "nobody" }, "current_user.email must be an email address"},
		{"parent without id", func(c *Config) { c.Context.Parent = &models.ObjectRef{Type: "Audit"} }, "context.parent.id is required"},
		{"no scope", func(c *Config) { c.Context.Parent = nil }, "context.parent is required"},
		{"my assessments without email", func(c *Config) {
			c.Context.Parent = nil
			c.Context.MyAssessments = true
		}, "current_user.email is required"},
		{"relative check path", func(c *Config) { c.Drive.CheckPath = "api/check" }, "drive.check_path failed"},
		{"history without path", func(c *Config) { c.History.DBPath = "" }, "history.db_path cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestGetHomeAndResolvePaths(t *testing.T) {
	home := filepath.Join(t.TempDir(), "home")
	t.Setenv(EnvHome, home)

	got, err := GetHome()
	if err != nil {
		t.Fatalf("GetHome() error = %v", err)
	}
	if got != home {
		t.Errorf("GetHome() = %q, want %q", got, home)
	}
	if _, err := os.Stat(home); err != nil {
		t.Errorf("home directory not created: %v", err)
	}

	cfg := DefaultConfig()
	cfg.ResolvePaths(home)
	if cfg.History.DBPath != filepath.Join(home, "history.db") {
		t.Errorf("History.DBPath = %q", cfg.History.DBPath)
	}
	if cfg.LockPath != filepath.Join(home, "complete.lock") {
		t.Errorf("LockPath = %q", cfg.LockPath)
	}
}
