// Package config loads the checker configuration from the environment and an
// optional YAML file.
package config

import (
	"fmt"
	"strings"
	"time"

	"sheet_display/internal/checkpoint"
	"sheet_display/internal/document"
	"sheet_display/internal/notify"
	"sheet_display/internal/retry"

	"github.com/gookit/validate"
	"github.com/spf13/viper"
)

const (
	BackendGoogle   = "google"
	BackendWorkbook = "workbook"
)

type Config struct {
	DirectoryID    string        `mapstructure:"directory_id" validate:"required"`
	TemplateID     string        `mapstructure:"template_id"`
	CheckInterval  time.Duration `mapstructure:"check_interval" validate:"required|min:1"`
	FailureBackoff time.Duration `mapstructure:"failure_backoff" validate:"required|min:1"`

	Quota       document.Quota    `mapstructure:"quota"`
	Resilience  ResilienceConfig  `mapstructure:"resilience"`
	Checkpoint  checkpoint.Config `mapstructure:"checkpoint"`
	Server      ServerConfig      `mapstructure:"server"`
	Backend     BackendConfig     `mapstructure:"backend"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
	Notify      notify.Config     `mapstructure:"notify"`
}

type ServerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

type BackendConfig struct {
	Kind        string `mapstructure:"kind" validate:"required|in:google,workbook"`
	WorkbookDir string `mapstructure:"workbook_dir"`
}

// CredentialsConfig selects the service account. A non-empty File wins over
// the GOOGLE_* variables; Suffix selects an alternate set such as GOOGLE_PROJECT_ID2.
type CredentialsConfig struct {
	File   string `mapstructure:"file"`
	Suffix string `mapstructure:"suffix"`
}

var envBindings = map[string]string{
	"directory_id":               "DISPLAY_SHEET_LOG_ID",
	"template_id":                "TEMPLATE_SPREADSHEET_ID",
	"check_interval":             "CHECK_INTERVAL",
	"failure_backoff":            "FAILURE_BACKOFF",
	"quota.max_calls":            "QUOTA_MAX_CALLS",
	"quota.period":               "QUOTA_PERIOD",
	"quota.global_per_second":    "QUOTA_GLOBAL_PER_SECOND",
	"checkpoint.driver":          "CHECKPOINT_DRIVER",
	"checkpoint.path":            "CHECKPOINT_PATH",
	"checkpoint.valkey.address":  "VALKEY_ADDR",
	"checkpoint.valkey.password": "VALKEY_PASSWORD",
	"checkpoint.valkey.db":       "VALKEY_DB",
	"checkpoint.valkey.key":      "VALKEY_KEY",
	"checkpoint.valkey.tls":      "VALKEY_TLS",
	"server.enabled":             "SERVER_ENABLED",
	"server.address":             "SERVER_ADDRESS",
	"backend.kind":               "BACKEND",
	"backend.workbook_dir":       "WORKBOOK_DIR",
	"credentials.file":           "GOOGLE_APPLICATION_CREDENTIALS",
	"credentials.suffix":         "GOOGLE_CREDENTIALS_SUFFIX",
	"notify.enabled":             "NTFY_ENABLED",
	"notify.url":                 "NTFY_URL",
	"notify.topic":               "NTFY_TOPIC",
	"notify.priority":            "NTFY_PRIORITY",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("check_interval", 10*time.Second)
	v.SetDefault("failure_backoff", 60*time.Second)

	v.SetDefault("quota.max_calls", 50)
	v.SetDefault("quota.period", 60*time.Second)
	v.SetDefault("quota.global_per_second", 0)

	setRetryDefaults(v, "resilience.directory_read", DefaultResilienceConfig.DirectoryRead)
	setRetryDefaults(v, "resilience.checkpoint_save", DefaultResilienceConfig.CheckpointSave)

	v.SetDefault("checkpoint.driver", "file")
	v.SetDefault("checkpoint.path", "data/checkpoints.json")
	v.SetDefault("checkpoint.valkey.key", checkpoint.Key)

	v.SetDefault("server.enabled", true)
	v.SetDefault("server.address", ":9090")

	v.SetDefault("backend.kind", BackendGoogle)
	v.SetDefault("backend.workbook_dir", "workbooks")

	v.SetDefault("notify.enabled", false)
	v.SetDefault("notify.url", "https://ntfy.sh")
	v.SetDefault("notify.topic", "sheet-display")
	v.SetDefault("notify.max_retries", 3)
	v.SetDefault("notify.base_delay", time.Second)
	v.SetDefault("notify.max_delay", 30*time.Second)
}

func setRetryDefaults(v *viper.Viper, prefix string, c retry.Config) {
	v.SetDefault(prefix+".max_retries", c.MaxRetries)
	v.SetDefault(prefix+".base_delay", c.BaseDelay)
	v.SetDefault(prefix+".max_delay", c.MaxDelay)
	v.SetDefault(prefix+".timeout", c.Timeout)
}

// Load reads the configuration. Environment variables override the file at
// path, which may be empty.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}
	conf.Backend.Kind = strings.ToLower(strings.TrimSpace(conf.Backend.Kind))
	conf.Checkpoint.Driver = strings.ToLower(strings.TrimSpace(conf.Checkpoint.Driver))

	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

// Validate checks the configuration as a whole.
func (c *Config) Validate() error {
	v := validate.Struct(c)
	if !v.Validate() {
		return fmt.Errorf("invalid config: %w", v.Errors.OneError())
	}
	if c.Backend.Kind == BackendWorkbook && c.Backend.WorkbookDir == "" {
		return fmt.Errorf("invalid config: backend.workbook_dir is required for the workbook backend")
	}
	switch c.Checkpoint.Driver {
	case "file", "sqlite":
		if c.Checkpoint.Path == "" {
			return fmt.Errorf("invalid config: checkpoint.path is required for the %s driver", c.Checkpoint.Driver)
		}
	case "valkey":
		if c.Checkpoint.Valkey.Address == "" {
			return fmt.Errorf("invalid config: checkpoint.valkey.address is required for the valkey driver")
		}
	}
	return nil
}
