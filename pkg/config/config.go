// Package config provides configuration management for meshnum.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Numbering NumberingConfig `mapstructure:"numbering"`
	Transport TransportConfig `mapstructure:"transport"`
	Store     StoreConfig     `mapstructure:"store"`
	History   HistoryConfig   `mapstructure:"history"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
}

// NumberingConfig holds the two numbering-scheme flags from spec.md §6 plus
// the rank count a run numbers across.
type NumberingConfig struct {
	DataDir   string `mapstructure:"data_dir"`
	FullStyle bool   `mapstructure:"full_style"`
	WithFaces bool   `mapstructure:"with_faces"`
	RankCount int    `mapstructure:"rank_count"`
}

// TransportConfig selects the in-process query/reply channel substrate.
type TransportConfig struct {
	Kind       string `mapstructure:"kind"` // "channel" is the only implementation today
	BufferSize int    `mapstructure:"buffer_size"`
}

// StoreConfig holds output-persistence configuration.
type StoreConfig struct {
	Type      string `mapstructure:"type"` // cos or local
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	SecretID  string `mapstructure:"secret_id"`
	SecretKey string `mapstructure:"secret_key"`
	Domain    string `mapstructure:"domain"`     // e.g., "myqcloud.com"
	Scheme    string `mapstructure:"scheme"`     // e.g., "https" or "http"
	LocalPath string `mapstructure:"local_path"` // for local storage
}

// HistoryConfig holds run-history database configuration.
type HistoryConfig struct {
	Type     string `mapstructure:"type"` // sqlite, postgres or mysql
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	MaxConns int    `mapstructure:"max_conns"`
}

// TelemetryConfig selects the OpenTelemetry exporter protocol at the
// config-file level (pkg/telemetry itself still reads its own env vars).
type TelemetryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Protocol string `mapstructure:"protocol"` // grpc, http, or none
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	// Format selects the utils.Logger implementation: "text" (default) for
	// utils.DefaultLogger, which tags each line with the WithField rank
	// context scheduler.runRank attaches; "std" for utils.StdLogger, a
	// thinner wrapper over the standard library logger.
	Format string `mapstructure:"format"`
}

// Load reads configuration from the specified file path.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// Determine config file path
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/meshnum")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		// Check if it's a "file not found" error (either viper's type or os error)
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, use defaults
			fmt.Println("Config file not found, using defaults")
		} else if os.IsNotExist(err) {
			// File specified but doesn't exist, use defaults
			fmt.Printf("Config file %s not found, using defaults\n", configPath)
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Allow environment variables to override config
	v.SetEnvPrefix("MESHNUM")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadFromReader loads configuration from an in-memory buffer (useful for testing).
func LoadFromReader(configType string, content []byte) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Numbering defaults
	v.SetDefault("numbering.data_dir", "./data")
	v.SetDefault("numbering.full_style", false)
	v.SetDefault("numbering.with_faces", true)
	v.SetDefault("numbering.rank_count", 1)

	// Transport defaults
	v.SetDefault("transport.kind", "channel")
	v.SetDefault("transport.buffer_size", 64)

	// Store defaults
	v.SetDefault("store.type", "local")
	v.SetDefault("store.local_path", "./store")

	// History defaults
	v.SetDefault("history.type", "sqlite")
	v.SetDefault("history.database", "meshnum.db")
	v.SetDefault("history.max_conns", 10)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.protocol", "grpc")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.output_path", "./logs")
	v.SetDefault("log.format", "text")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.History.Type {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported history database type: %s", c.History.Type)
	}

	if c.Numbering.RankCount < 1 {
		return fmt.Errorf("rank count must be at least 1")
	}

	switch c.Store.Type {
	case "local", "cos":
	default:
		return fmt.Errorf("unsupported store type: %s", c.Store.Type)
	}

	return nil
}

// EnsureDataDir creates the numbering data directory if it doesn't exist.
func (c *Config) EnsureDataDir() error {
	if c.Numbering.DataDir == "" {
		return nil
	}
	return os.MkdirAll(c.Numbering.DataDir, 0755)
}

// GetRunDir returns the run-specific directory path for a named run.
func (c *Config) GetRunDir(runID string) string {
	return filepath.Join(c.Numbering.DataDir, runID)
}
