package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// StartupMode defines how ctidash handles initialization failures
type StartupMode string

const (
	// StartupModeStrict fails fast on any initialization error (default)
	StartupModeStrict StartupMode = "strict"
	// StartupModeGraceful starts without a feed client, answering threat requests with 500
	StartupModeGraceful StartupMode = "graceful"
)

// EnvPrefix is prepended to every environment override
const EnvPrefix = "CTIDASH"

// Config holds all configuration for the ctidash service
type Config struct {
	// StartupMode controls how initialization failures are handled
	StartupMode StartupMode `mapstructure:"startup_mode" validate:"oneof=strict graceful"`

	Log struct {
		Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
		Format string `mapstructure:"format" validate:"oneof=console json"`
	} `mapstructure:"log"`

	API struct {
		Host                string        `mapstructure:"host" validate:"required"`
		Port                int           `mapstructure:"port" validate:"min=1,max=65535"`
		FrontendOrigin      string        `mapstructure:"frontend_origin" validate:"required,url"`
		DefaultLookbackDays int           `mapstructure:"default_lookback_days" validate:"min=1,max=36500"`
		MaxLookbackDays     int           `mapstructure:"max_lookback_days" validate:"min=1,max=36500,gtefield=DefaultLookbackDays"`
		ReadHeaderTimeout   time.Duration `mapstructure:"read_header_timeout" validate:"gt=0"`
		ReadTimeout         time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
		WriteTimeout        time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
		IdleTimeout         time.Duration `mapstructure:"idle_timeout" validate:"gt=0"`
	} `mapstructure:"api"`

	Feed struct {
		BaseURL        string        `mapstructure:"base_url" validate:"required,url"`
		RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
		PageSize       int           `mapstructure:"page_size" validate:"min=1,max=500"`
		MaxPages       int           `mapstructure:"max_pages" validate:"min=1"`
	} `mapstructure:"feed"`

	Secrets struct {
		Provider string `mapstructure:"provider" validate:"oneof=env vault aws"`
		Vault    struct {
			Address string `mapstructure:"address"`
			Token   string `mapstructure:"token"`
			Path    string `mapstructure:"path"`
		} `mapstructure:"vault"`
		AWS struct {
			Region    string `mapstructure:"region"`
			AccessKey string `mapstructure:"access_key"`
			SecretKey string `mapstructure:"secret_key"`
			SecretID  string `mapstructure:"secret_id"`
		} `mapstructure:"aws"`
	} `mapstructure:"secrets"`
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("startup_mode", string(StartupModeStrict))

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")

	viper.SetDefault("api.host", "0.0.0.0")
	viper.SetDefault("api.port", 8000)
	viper.SetDefault("api.frontend_origin", "http://localhost:3000")
	viper.SetDefault("api.default_lookback_days", 7)
	viper.SetDefault("api.max_lookback_days", 365)
	viper.SetDefault("api.read_header_timeout", 10*time.Second)
	viper.SetDefault("api.read_timeout", 15*time.Second)
	// a lookback fetch can page through the whole feed
	viper.SetDefault("api.write_timeout", 90*time.Second)
	viper.SetDefault("api.idle_timeout", 60*time.Second)

	viper.SetDefault("feed.base_url", "https://otx.alienvault.com/api/v1")
	viper.SetDefault("feed.request_timeout", 60*time.Second)
	viper.SetDefault("feed.page_size", 50)
	viper.SetDefault("feed.max_pages", 20)

	viper.SetDefault("secrets.provider", "env")
	viper.SetDefault("secrets.vault.address", "")
	viper.SetDefault("secrets.vault.token", "")
	viper.SetDefault("secrets.vault.path", "secret/data/ctidash")
	viper.SetDefault("secrets.aws.region", "us-east-1")
	viper.SetDefault("secrets.aws.access_key", "")
	viper.SetDefault("secrets.aws.secret_key", "")
	viper.SetDefault("secrets.aws.secret_id", "ctidash/secrets")
}

// loadFromEnv sets up environment variable loading
func loadFromEnv() {
	// .env never overrides variables already set in the process
	_ = gotenv.Load()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()
	loadFromEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, will use defaults and env vars
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	config.Normalize()

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Normalize lower-cases enum-like settings so env overrides are case-insensitive
func (c *Config) Normalize() {
	c.StartupMode = StartupMode(strings.ToLower(strings.TrimSpace(string(c.StartupMode))))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	c.Secrets.Provider = strings.ToLower(strings.TrimSpace(c.Secrets.Provider))
	c.API.FrontendOrigin = strings.TrimRight(strings.TrimSpace(c.API.FrontendOrigin), "/")
	c.Feed.BaseURL = strings.TrimRight(strings.TrimSpace(c.Feed.BaseURL), "/")
}

// IsGracefulMode returns true if the startup mode is graceful
func (c *Config) IsGracefulMode() bool {
	return c.StartupMode == StartupModeGraceful
}

// ListenAddr returns the host:port the HTTP server binds to
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

// validateConfig validates the configuration for correctness
func validateConfig(config *Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(config); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value: %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}

	switch config.Secrets.Provider {
	case "vault":
		if config.Secrets.Vault.Address == "" {
			return fmt.Errorf("secrets.vault.address is required when secrets.provider is vault")
		}
	case "aws":
		if config.Secrets.AWS.Region == "" {
			return fmt.Errorf("secrets.aws.region is required when secrets.provider is aws")
		}
	}

	return nil
}
