// Package config loads the GoatChat configuration from file and environment.
// Every knob has a default so the service starts with no config file at all;
// environment variables use the GOATCHAT_ prefix (GOATCHAT_SERVER_ADDR, ...).
package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for the service.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Closure   ClosureConfig   `mapstructure:"closure"`
	Feedback  FeedbackConfig  `mapstructure:"feedback"`
	Chat      ChatConfig      `mapstructure:"chat"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig selects the SQL driver and DSN.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// ClosureConfig holds the silence thresholds for the conversation wind-down
// dialogue. These are named options, never hard-coded in the policy.
type ClosureConfig struct {
	// Silence before the "anything else?" prompt.
	FirstPromptThreshold time.Duration `mapstructure:"first_prompt_threshold"`
	// Silence before the close-confirmation prompt.
	CloseThreshold time.Duration `mapstructure:"close_threshold"`
	// Silence before the conversation is closed.
	FinalCloseThreshold time.Duration `mapstructure:"final_close_threshold"`
	// Idle conversation state older than this is evicted by the cleanup task.
	StateTTL time.Duration `mapstructure:"state_ttl"`
	// How often the cleanup task runs.
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// FeedbackConfig bounds the accepted rating range.
type FeedbackConfig struct {
	MinRating int `mapstructure:"min_rating"`
	MaxRating int `mapstructure:"max_rating"`
}

// ChatConfig holds chatbot settings.
type ChatConfig struct {
	// Path to the YAML canned-response catalog.
	CatalogPath string `mapstructure:"catalog_path"`
	// Display name the bot signs replies with.
	BotName string `mapstructure:"bot_name"`
}

// RateLimitConfig bounds per-client request rates.
type RateLimitConfig struct {
	RequestsPerHour int `mapstructure:"requests_per_hour"`
}

var (
	mu      sync.RWMutex
	current *Config
)

// Load reads configuration from the given file (optional) plus environment
// and stores it as the process-wide config returned by Get.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("GOATCHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	mu.Lock()
	current = &cfg
	mu.Unlock()

	return &cfg, nil
}

// Get returns the last loaded configuration, or nil before Load.
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", "goatchat.db")

	v.SetDefault("closure.first_prompt_threshold", "60s")
	v.SetDefault("closure.close_threshold", "180s")
	v.SetDefault("closure.final_close_threshold", "300s")
	v.SetDefault("closure.state_ttl", "1h")
	v.SetDefault("closure.cleanup_interval", "5m")

	v.SetDefault("feedback.min_rating", 1)
	v.SetDefault("feedback.max_rating", 5)

	v.SetDefault("chat.catalog_path", "responses.yaml")
	v.SetDefault("chat.bot_name", "GoatChat")

	v.SetDefault("rate_limit.requests_per_hour", 1000)
}

func (c *Config) validate() error {
	if c.Closure.FirstPromptThreshold <= 0 ||
		c.Closure.CloseThreshold <= c.Closure.FirstPromptThreshold ||
		c.Closure.FinalCloseThreshold <= c.Closure.CloseThreshold {
		return fmt.Errorf("closure thresholds must be increasing: first=%s close=%s final=%s",
			c.Closure.FirstPromptThreshold, c.Closure.CloseThreshold, c.Closure.FinalCloseThreshold)
	}
	if c.Feedback.MinRating >= c.Feedback.MaxRating {
		return fmt.Errorf("feedback rating range is empty: min=%d max=%d",
			c.Feedback.MinRating, c.Feedback.MaxRating)
	}
	return nil
}
