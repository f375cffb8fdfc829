// Package config provides configuration management for the pattern ranking tool.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Data          DataConfig         `mapstructure:"data"`
	Rank          RankConfig         `mapstructure:"rank"`
	Cache         CacheConfig        `mapstructure:"cache"`
	Logging       LoggingConfig      `mapstructure:"logging"`
	UI            UIConfig           `mapstructure:"ui"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Directions    map[string]string  `mapstructure:"directions"`
	Credentials   Credentials        `mapstructure:"-"` // Loaded separately
}

// DataConfig holds price series retrieval configuration.
type DataConfig struct {
	Timeframe       string `mapstructure:"timeframe"`         // 1d, H1, M15, ...
	Range           string `mapstructure:"range"`             // 60d, 1y, max, ...
	Timezone        string `mapstructure:"timezone"`          // IANA name
	AutoForexSuffix bool   `mapstructure:"auto_forex_suffix"` // EURUSD -> EURUSD=X
}

// RankConfig holds pattern ranking configuration.
type RankConfig struct {
	Horizon  int  `mapstructure:"horizon"`   // forward-return window in bars
	Top      int  `mapstructure:"top"`       // 0 = show all
	SaveRuns bool `mapstructure:"save_runs"` // persist run history
}

// CacheConfig holds local candle cache configuration.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level   string `mapstructure:"level"` // debug, info, warn, error
	Console bool   `mapstructure:"console"`
	File    bool   `mapstructure:"file"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
	TimeFormat   string `mapstructure:"time_format"`
}

// NotificationConfig holds notification configuration.
type NotificationConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Level    string         `mapstructure:"level"` // all, ranks_only, errors_only
	Terminal TerminalConfig `mapstructure:"terminal"`
	Webhook  WebhookConfig  `mapstructure:"webhook"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// TerminalConfig holds terminal notification configuration.
type TerminalConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Bell    bool `mapstructure:"bell"`
}

// WebhookConfig holds webhook notification configuration.
type WebhookConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

// TelegramConfig holds Telegram notification configuration.
// The bot token and chat id live in credentials.toml.
type TelegramConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Credentials holds API credentials.
type Credentials struct {
	Telegram TelegramCredentials `mapstructure:"telegram"`
}

// TelegramCredentials holds Telegram bot credentials.
type TelegramCredentials struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/candlerank"
	}
	return filepath.Join(home, ".config", "candlerank")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

	// Load main config
	if err := loadConfigFile(configDir, cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	// Load credentials
	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir string, cfg *Config) error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	// Set defaults
	v.SetDefault("data.timeframe", "1d")
	v.SetDefault("data.range", "1y")
	v.SetDefault("data.timezone", "UTC")
	v.SetDefault("data.auto_forex_suffix", true)
	v.SetDefault("rank.horizon", 5)
	v.SetDefault("rank.top", 0)
	v.SetDefault("rank.save_runs", true)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", true)
	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.date_format", "02-Jan-2006")
	v.SetDefault("ui.time_format", "15:04:05")
	v.SetDefault("notifications.enabled", false)
	v.SetDefault("notifications.level", "all")
	v.SetDefault("notifications.terminal.enabled", true)
	v.SetDefault("notifications.terminal.bell", true)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, create template
			return createTemplateConfig(configDir)
		}
		return err
	}

	return v.Unmarshal(cfg)
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createTemplateCredentials(configDir)
		}
		return err
	}

	return v.Unmarshal(creds)
}

func applyEnvOverrides(cfg *Config) {
	// Telegram credentials
	if v := os.Getenv("CANDLERANK_TELEGRAM_TOKEN"); v != "" {
		cfg.Credentials.Telegram.BotToken = v
	}
	if v := os.Getenv("CANDLERANK_TELEGRAM_CHAT"); v != "" {
		cfg.Credentials.Telegram.ChatID = v
	}

	// Reporting timezone
	if v := os.Getenv("CANDLERANK_TIMEZONE"); v != "" {
		cfg.Data.Timezone = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Rank.Horizon < 1 {
		return fmt.Errorf("rank.horizon must be at least 1, got %d", c.Rank.Horizon)
	}
	if c.Rank.Top < 0 {
		return fmt.Errorf("rank.top must be non-negative, got %d", c.Rank.Top)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must be non-negative")
	}

	if _, err := time.LoadLocation(c.Data.Timezone); err != nil {
		return fmt.Errorf("invalid data.timezone %q: %w", c.Data.Timezone, err)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	switch c.Notifications.Level {
	case "", "all", "ranks_only", "errors_only":
	default:
		return fmt.Errorf("invalid notifications.level: %s (must be all, ranks_only, or errors_only)", c.Notifications.Level)
	}

	for name, dir := range c.Directions {
		switch dir {
		case "bullish", "bearish", "signed":
		default:
			return fmt.Errorf("invalid direction for pattern %s: %s (must be bullish, bearish, or signed)", name, dir)
		}
	}

	return nil
}

// Location returns the configured reporting timezone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Data.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// TelegramConfigured returns true if Telegram notifications can be sent.
func (c *Config) TelegramConfigured() bool {
	return c.Notifications.Telegram.Enabled &&
		c.Credentials.Telegram.BotToken != "" &&
		c.Credentials.Telegram.ChatID != ""
}
