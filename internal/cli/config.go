package cli

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/hcms-console/hcms-console/internal/session"
)

// Config is the terminal client configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Session SessionConfig `mapstructure:"session"`
	Output  OutputConfig  `mapstructure:"output"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// APIConfig points at the HCMS REST API.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SessionConfig locates the persisted credential.
type SessionConfig struct {
	TokenFile string `mapstructure:"token_file"`
}

// OutputConfig controls terminal formatting.
type OutputConfig struct {
	Colors   bool   `mapstructure:"colors"`
	Currency string `mapstructure:"currency"`
}

// LoggingConfig controls diagnostic output on stderr.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// LoadConfig reads .hcmsctl.yaml (or cfgFile) and HCMSCTL_* variables.
// HCMSCTL_API_BASE_URL overrides api.base_url.
func LoadConfig(cfgFile string) (*Config, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".hcmsctl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/hcmsctl")
	}

	v.SetEnvPrefix("HCMSCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if cfg.Session.TokenFile == "" {
		path, err := session.DefaultTokenPath()
		if err != nil {
			return nil, err
		}
		cfg.Session.TokenFile = path
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8080/api")
	v.SetDefault("api.timeout", "10s")
	v.SetDefault("session.token_file", "")
	v.SetDefault("output.colors", true)
	v.SetDefault("output.currency", "USD")
	v.SetDefault("logging.level", "warn")
}

func (c *Config) validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got %q", c.API.BaseURL)
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.API.Timeout <= 0 {
		return errors.New("api.timeout must be positive")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}
	return nil
}
