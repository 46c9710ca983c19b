// Package config loads the userdir configuration from a YAML file, applies
// USERDIR_* environment overrides and validates the result.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "USERDIR"

const (
	defaultEndpoint = "https://jsonplaceholder.typicode.com/users"
	defaultTimeout  = 10 * time.Second
)

// Config holds all userdir configuration.
type Config struct {
	Source  SourceConfig  `yaml:"source"`
	UI      UIConfig      `yaml:"ui"`
	Sort    SortConfig    `yaml:"sort"`
	Logging LoggingConfig `yaml:"logging"`
}

// SourceConfig selects where user records come from. File wins over Endpoint.
type SourceConfig struct {
	Endpoint string `yaml:"endpoint" validate:"required_without=File,omitempty,url"`
	File     string `yaml:"file,omitempty"`
	Timeout  string `yaml:"timeout" validate:"omitempty,duration"`
}

// SortConfig selects how sort keys are compared.
type SortConfig struct {
	Collation string `yaml:"collation" validate:"omitempty,oneof=ordinal locale"`
	Locale    string `yaml:"locale,omitempty" validate:"omitempty,bcp47_language_tag"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Endpoint: defaultEndpoint,
			Timeout:  defaultTimeout.String(),
		},
		UI: UIConfig{
			Theme: ThemeAuto,
		},
		Sort: SortConfig{
			Collation: "ordinal",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			File:   filepath.Join(".userdir", "logs", "userdir.log"),
		},
	}
}

// DefaultConfigPath returns .userdir/config.yaml under the working directory.
func DefaultConfigPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return filepath.Join(".userdir", "config.yaml")
	}
	return filepath.Join(cwd, ".userdir", "config.yaml")
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied on top.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// envOverrides mirrors the USERDIR_* variables. Empty values leave the
// file configuration untouched. Keys come from split_words rather than
// envconfig tags so unprefixed variables such as DEBUG are never consulted.
type envOverrides struct {
	Endpoint string `split_words:"true"`
	File     string `split_words:"true"`
	Timeout  string `split_words:"true"`
	Theme    string `split_words:"true"`
	LogLevel string `split_words:"true"`
	LogFile  string `split_words:"true"`
	Debug    string `split_words:"true"`
}

func (c *Config) applyEnvOverrides() error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	if env.Endpoint != "" {
		c.Source.Endpoint = env.Endpoint
	}
	if env.File != "" {
		c.Source.File = env.File
	}
	if env.Timeout != "" {
		c.Source.Timeout = env.Timeout
	}
	if env.Theme != "" {
		c.UI.Theme = strings.ToLower(env.Theme)
	}
	if env.LogLevel != "" {
		c.Logging.Level = strings.ToLower(env.LogLevel)
	}
	if env.LogFile != "" {
		c.Logging.File = env.LogFile
	}
	if env.Debug != "" {
		debug, err := strconv.ParseBool(env.Debug)
		if err != nil {
			return fmt.Errorf("invalid %s_DEBUG: %w", EnvPrefix, err)
		}
		c.Logging.DebugMode = debug
	}
	return nil
}

// GetTimeout returns the source timeout as a duration.
func (c *Config) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Source.Timeout)
	if err != nil || d <= 0 {
		return defaultTimeout
	}
	return d
}

// UsesFile reports whether records are read from a local file.
func (c *Config) UsesFile() bool {
	return c.Source.File != ""
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
		d, err := time.ParseDuration(fl.Field().String())
		return err == nil && d > 0
	})
	return v
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
