package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/harrison/bulkcomplete/internal/models"
)

// Environment variables that override the config file.
const (
	EnvBaseURL   = "BULKCOMPLETE_BASE_URL"
	EnvAPIToken  = "BULKCOMPLETE_API_TOKEN"
	EnvUserEmail = "BULKCOMPLETE_USER_EMAIL"
)

// APIConfig represents the backend connection settings
type APIConfig struct {
	// BaseURL is the root URL of the GRC backend
	BaseURL string `yaml:"base_url" validate:"required,url"`

	// Token is sent as a bearer token when set
	Token string `yaml:"api_token"`

	// RequestTimeout bounds a single HTTP call (0 = no timeout)
	RequestTimeout time.Duration `yaml:"request_timeout" validate:"gte=0"`
}

// TrackingConfig represents background task polling settings
type TrackingConfig struct {
	// PollInterval is the delay between two status requests
	PollInterval time.Duration `yaml:"poll_interval" validate:"gt=0"`

	// PollTimeout stops tracking after this long (0 = wait until done)
	PollTimeout time.Duration `yaml:"poll_timeout" validate:"gte=0"`
}

// UserConfig identifies the operator on the backend
type UserConfig struct {
	ID    int64  `yaml:"id" validate:"gte=0"`
	Email string `yaml:"email" validate:"omitempty,email"`
}

// ContextConfig scopes the assessment list
type ContextConfig struct {
	// MyAssessments lists the operator's own assessments
	MyAssessments bool `yaml:"my_assessments"`

	// Parent is the object (usually an audit) the assessments are relevant to
	Parent *models.ObjectRef `yaml:"parent" validate:"omitempty"`

	// StatusFilter overrides the statuses assessments are listed from
	StatusFilter []string `yaml:"status_filter" validate:"omitempty,dive,required"`
}

// DriveConfig represents the Drive authorization pre-check
type DriveConfig struct {
	// CheckPath is requested before every submission; empty disables the check
	CheckPath string `yaml:"check_path" validate:"omitempty,startswith=/"`
}

// HistoryConfig represents the local submission log
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	DBPath  string `yaml:"db_path"`
}

// Config represents bulkcomplete configuration options
type Config struct {
	API      APIConfig      `yaml:"api"`
	Tracking TrackingConfig `yaml:"tracking"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level" validate:"oneof=trace debug info warn error"`

	// LogDir is the directory where log files are written (empty = console only)
	LogDir string `yaml:"log_dir"`

	CurrentUser UserConfig    `yaml:"current_user"`
	Context     ContextConfig `yaml:"context"`
	Drive       DriveConfig   `yaml:"drive"`
	History     HistoryConfig `yaml:"history"`

	// LockPath is the file lock held while submitting
	LockPath string `yaml:"lock_path"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			RequestTimeout: 30 * time.Second,
		},
		Tracking: TrackingConfig{
			PollInterval: 2 * time.Second,
			PollTimeout:  30 * time.Minute,
		},
		LogLevel: "info",
		History: HistoryConfig{
			Enabled: true,
		},
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Use a temporary struct to handle duration parsing
	type yamlAPI struct {
		BaseURL        string `yaml:"base_url"`
		Token          string `yaml:"api_token"`
		RequestTimeout string `yaml:"request_timeout"`
	}
	type yamlTracking struct {
		PollInterval string `yaml:"poll_interval"`
		PollTimeout  string `yaml:"poll_timeout"`
	}
	type yamlConfig struct {
		API         yamlAPI       `yaml:"api"`
		Tracking    yamlTracking  `yaml:"tracking"`
		LogLevel    string        `yaml:"log_level"`
		LogDir      string        `yaml:"log_dir"`
		CurrentUser UserConfig    `yaml:"current_user"`
		Context     ContextConfig `yaml:"context"`
		Drive       DriveConfig   `yaml:"drive"`
		History     HistoryConfig `yaml:"history"`
		LockPath    string        `yaml:"lock_path"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply non-zero values from file (merging with defaults)
	if yamlCfg.API.BaseURL != "" {
		cfg.API.BaseURL = yamlCfg.API.BaseURL
	}
	if yamlCfg.API.Token != "" {
		cfg.API.Token = yamlCfg.API.Token
	}
	if err := mergeDuration(&cfg.API.RequestTimeout, yamlCfg.API.RequestTimeout, "api.request_timeout"); err != nil {
		return nil, err
	}
	if err := mergeDuration(&cfg.Tracking.PollInterval, yamlCfg.Tracking.PollInterval, "tracking.poll_interval"); err != nil {
		return nil, err
	}
	if err := mergeDuration(&cfg.Tracking.PollTimeout, yamlCfg.Tracking.PollTimeout, "tracking.poll_timeout"); err != nil {
		return nil, err
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.LogDir != "" {
		cfg.LogDir = yamlCfg.LogDir
	}
	if yamlCfg.CurrentUser.ID != 0 {
		cfg.CurrentUser.ID = yamlCfg.CurrentUser.ID
	}
	if yamlCfg.CurrentUser.Email != "" {
		cfg.CurrentUser.Email = yamlCfg.CurrentUser.Email
	}
	if yamlCfg.Context.MyAssessments {
		cfg.Context.MyAssessments = true
	}
	if yamlCfg.Context.Parent != nil {
		cfg.Context.Parent = yamlCfg.Context.Parent
	}
	if len(yamlCfg.Context.StatusFilter) > 0 {
		cfg.Context.StatusFilter = yamlCfg.Context.StatusFilter
	}
	if yamlCfg.Drive.CheckPath != "" {
		cfg.Drive.CheckPath = yamlCfg.Drive.CheckPath
	}
	if yamlCfg.LockPath != "" {
		cfg.LockPath = yamlCfg.LockPath
	}

	// history.enabled defaults to true, so only an explicit key may turn it off
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err == nil {
		if historySection, exists := rawMap["history"]; exists && historySection != nil {
			historyMap, _ := historySection.(map[string]interface{})
			if _, exists := historyMap["enabled"]; exists {
				cfg.History.Enabled = yamlCfg.History.Enabled
			}
			if _, exists := historyMap["db_path"]; exists {
				cfg.History.DBPath = yamlCfg.History.DBPath
			}
		}
	}

	return cfg, nil
}

func mergeDuration(dst *time.Duration, raw, key string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid %s format %q: %w", key, raw, err)
	}
	*dst = d
	return nil
}

// LoadConfigFromDir loads configuration from .bulkcomplete/config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	configPath := filepath.Join(dir, HomeDirName, "config.yaml")
	return LoadConfig(configPath)
}

// LoadEnv reads KEY=value pairs from envFile into the process environment
// without overriding variables that are already set. A missing file is not an error.
func LoadEnv(envFile string) error {
	if envFile == "" {
		return nil
	}
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", envFile, err)
	}
	return nil
}

// ApplyEnv overrides credentials and identity from the environment
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv(EnvAPIToken); v != "" {
		c.API.Token = v
	}
	if v := os.Getenv(EnvUserEmail); v != "" {
		c.CurrentUser.Email = v
	}
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
func (c *Config) MergeWithFlags(baseURL *string, logLevel *string, logDir *string, myAssessments *bool, parent *models.ObjectRef) {
	if baseURL != nil {
		c.API.BaseURL = *baseURL
	}
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if logDir != nil {
		c.LogDir = *logDir
	}
	if myAssessments != nil {
		c.Context.MyAssessments = *myAssessments
	}
	if parent != nil {
		p := *parent
		c.Context.Parent = &p
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report yaml keys instead of Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return formatValidationError(verrs[0])
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	if c.Context.MyAssessments {
		if c.CurrentUser.Email == "" {
			return fmt.Errorf("current_user.email is required when context.my_assessments is set")
		}
	} else if c.Context.Parent == nil {
		return fmt.Errorf("context.parent is required unless context.my_assessments is set")
	}

	if c.History.Enabled && c.History.DBPath == "" {
		return fmt.Errorf("history.db_path cannot be empty when history is enabled")
	}

	return nil
}

func formatValidationError(fe validator.FieldError) error {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)
	case "url":
		return fmt.Errorf("%s must be an absolute URL, got %q", field, fe.Value())
	case "email":
		return fmt.Errorf("%s must be an email address, got %q", field, fe.Value())
	case "oneof":
		return fmt.Errorf("invalid %s %q, must be one of: %s", field, fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt", "gte":
		return fmt.Errorf("%s must be %s %s, got %v", field, map[string]string{"gt": ">", "gte": ">="}[fe.Tag()], fe.Param(), fe.Value())
	default:
		return fmt.Errorf("%s failed %q validation", field, fe.Tag())
	}
}
