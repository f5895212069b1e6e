// Package config provides configuration management for the trader.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"ib-trader/internal/broker"
	"ib-trader/internal/errors"
	"ib-trader/internal/logging"
	"ib-trader/internal/wire"
	"ib-trader/pkg/utils"
)

// Config holds all application configuration.
type Config struct {
	Connection ConnectionConfig `mapstructure:"connection"`
	API        APIConfig        `mapstructure:"api"`
	Capture    CaptureConfig    `mapstructure:"capture"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Logging    LoggingConfig    `mapstructure:"logging"`

	// File is the config file that was read, empty when defaults were used.
	File string `mapstructure:"-"`
}

// ConnectionConfig holds the TWS / IB Gateway endpoint.
type ConnectionConfig struct {
	Host                 string        `mapstructure:"host"`
	Port                 int           `mapstructure:"port"`
	ClientID             int64         `mapstructure:"client_id"`
	ConnectTimeout       time.Duration `mapstructure:"connect_timeout"`
	ConnectOptions       string        `mapstructure:"connect_options"`
	OptionalCapabilities string        `mapstructure:"optional_capabilities"`
	Reconnect            bool          `mapstructure:"reconnect"`
	MaxRetries           int           `mapstructure:"max_retries"`
}

// APIConfig holds protocol level settings.
type APIConfig struct {
	MinVersion        int           `mapstructure:"min_version"`
	MaxVersion        int           `mapstructure:"max_version"`
	MessagesPerSecond float64       `mapstructure:"messages_per_second"`
	MarketDataType    int64         `mapstructure:"market_data_type"` // 1 live, 2 frozen, 3 delayed, 4 delayed frozen
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
}

// CaptureConfig controls raw inbound frame capture.
type CaptureConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// StorageConfig controls the SQLite recorder.
type StorageConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DBPath  string `mapstructure:"db_path"`
}

// LoggingConfig mirrors logging.LogConfig.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "ib-trader")
	}
	return filepath.Join(home, ".config", "ib-trader")
}

// ConfigPath returns the config file path inside configDir.
func ConfigPath(configDir string) string {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	return filepath.Join(configDir, "config.toml")
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("connection.host", "127.0.0.1")
	v.SetDefault("connection.port", 7497)
	v.SetDefault("connection.client_id", 0)
	v.SetDefault("connection.connect_timeout", "10s")
	v.SetDefault("connection.connect_options", "")
	v.SetDefault("connection.optional_capabilities", "")
	v.SetDefault("connection.reconnect", false)
	v.SetDefault("connection.max_retries", 5)

	v.SetDefault("api.min_version", wire.MinClientVer)
	v.SetDefault("api.max_version", wire.MaxClientVer)
	v.SetDefault("api.messages_per_second", 45.0)
	v.SetDefault("api.market_data_type", 1)
	v.SetDefault("api.request_timeout", "30s")

	v.SetDefault("capture.enabled", false)
	v.SetDefault("capture.path", filepath.Join(configDir, "capture", "inbound.bin"))

	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.db_path", filepath.Join(configDir, "trader.db"))

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", false)
	v.SetDefault("logging.file_path", filepath.Join(configDir, "logs", "trader.log"))
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 7)
	v.SetDefault("logging.max_age", 30)
}

func bindEnv(v *viper.Viper) {
	v.BindEnv("connection.host", "TWS_HOST")
	v.BindEnv("connection.port", "TWS_PORT")
	v.BindEnv("connection.client_id", "TWS_CLIENT_ID")
	v.BindEnv("logging.level", "TRADER_LOG_LEVEL")
}

// Load loads configuration from configDir. If configDir is empty the default
// directory is used. A missing config.toml is replaced by the template and the
// defaults are returned.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, configDir)
	bindEnv(v)

	file := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(errors.ErrConfigInvalid, fmt.Sprintf("reading config.toml: %v", err))
		}
		if err := createTemplateConfig(configDir); err != nil {
			return nil, err
		}
	} else {
		file = v.ConfigFileUsed()
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(errors.ErrConfigInvalid, fmt.Sprintf("decoding config: %v", err))
	}
	cfg.File = file
	cfg.Capture.Path = expandHome(cfg.Capture.Path)
	cfg.Storage.DBPath = expandHome(cfg.Storage.DBPath)
	cfg.Logging.FilePath = expandHome(cfg.Logging.FilePath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Connection.Host) == "" {
		return invalid("connection.host must not be empty")
	}
	if c.Connection.Port <= 0 || c.Connection.Port > 65535 {
		return invalid("connection.port must be between 1 and 65535, got %d", c.Connection.Port)
	}
	if c.Connection.ClientID < 0 {
		return invalid("connection.client_id must be non-negative")
	}
	if c.Connection.ConnectTimeout <= 0 {
		return invalid("connection.connect_timeout must be positive")
	}
	if c.Connection.MaxRetries < 0 {
		return invalid("connection.max_retries must be non-negative")
	}

	if c.API.MinVersion < wire.MinClientVer || c.API.MaxVersion > wire.MaxClientVer || c.API.MinVersion > c.API.MaxVersion {
		return invalid("api version range %d..%d must lie within %d..%d",
			c.API.MinVersion, c.API.MaxVersion, wire.MinClientVer, wire.MaxClientVer)
	}
	if c.API.MessagesPerSecond <= 0 || c.API.MessagesPerSecond > 50 {
		return invalid("api.messages_per_second must be in (0, 50]")
	}
	if c.API.MarketDataType < 1 || c.API.MarketDataType > 4 {
		return invalid("api.market_data_type must be 1, 2, 3 or 4")
	}
	if c.API.RequestTimeout <= 0 {
		return invalid("api.request_timeout must be positive")
	}

	if c.Capture.Enabled && c.Capture.Path == "" {
		return invalid("capture.path is required when capture is enabled")
	}
	if c.Storage.Enabled && c.Storage.DBPath == "" {
		return invalid("storage.db_path is required when storage is enabled")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "disabled", "off":
	default:
		return invalid("logging.level %q is not a known level", c.Logging.Level)
	}
	if c.Logging.File && c.Logging.FilePath == "" {
		return invalid("logging.file_path is required when file logging is enabled")
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return errors.Wrapf(errors.ErrConfigInvalid, format, args...)
}

// BrokerConfig converts the connection settings for broker.NewClient.
func (c *Config) BrokerConfig() broker.Config {
	bc := broker.DefaultConfig()
	bc.Host = c.Connection.Host
	bc.Port = c.Connection.Port
	bc.ClientID = c.Connection.ClientID
	bc.ConnectOptions = c.Connection.ConnectOptions
	bc.OptionalCapabilities = c.Connection.OptionalCapabilities
	bc.ConnectTimeout = c.Connection.ConnectTimeout
	bc.MinVersion = c.API.MinVersion
	bc.MaxVersion = c.API.MaxVersion
	bc.MessagesPerSecond = c.API.MessagesPerSecond
	bc.Reconnect = c.Connection.Reconnect

	retry := utils.DefaultRetryConfig()
	if c.Connection.MaxRetries > 0 {
		retry.MaxAttempts = c.Connection.MaxRetries
	}
	bc.Retry = retry

	if c.Capture.Enabled {
		bc.CapturePath = c.Capture.Path
	}
	return bc
}

// LogConfig converts the logging section for logging.NewLoggerWithConfig.
func (c *Config) LogConfig() logging.LogConfig {
	return logging.LogConfig{
		Level:      c.Logging.Level,
		Console:    c.Logging.Console,
		File:       c.Logging.File,
		FilePath:   c.Logging.FilePath,
		MaxSize:    c.Logging.MaxSize,
		MaxBackups: c.Logging.MaxBackups,
		MaxAge:     c.Logging.MaxAge,
	}
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
