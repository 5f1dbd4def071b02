// Package config loads server settings from the environment, a .env file and
// an optional config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mmynk/tabby/internal/calculator"
)

// Storage backends.
const (
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds the server settings.
type Config struct {
	Port        int    `mapstructure:"port"`
	Storage     string `mapstructure:"storage"`
	DBPath      string `mapstructure:"db_path"`
	DatabaseURL string `mapstructure:"database_url"`
	StaticPath  string `mapstructure:"static_path"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// UnassignedPolicy is the default for stored bills and for ComputeTotals
	// calls that do not pick one.
	UnassignedPolicy string   `mapstructure:"unassigned_policy"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// CalculatorDefaults turns the configured policy into engine options.
func (c *Config) CalculatorDefaults() (calculator.Options, error) {
	opts := calculator.DefaultOptions()
	policy, err := calculator.ParseUnassignedPolicy(c.UnassignedPolicy)
	if err != nil {
		return opts, err
	}
	opts.Unassigned = policy
	return opts, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("storage", StorageSQLite)
	v.SetDefault("db_path", "./data/bills.db")
	v.SetDefault("database_url", "")
	v.SetDefault("static_path", "../frontend/static")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("unassigned_policy", string(calculator.UnassignedInBase))
	v.SetDefault("allowed_origins", []string{"*"})
}

// Load reads settings. Environment variables use the TABBY_ prefix
// (TABBY_PORT, TABBY_DB_PATH, ...). A .env file in the working directory is
// loaded first if present; variables already set in the environment win.
// configFile may be empty.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("TABBY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks that the settings can start a server.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}

	switch c.Storage {
	case StorageSQLite:
		if c.DBPath == "" {
			return errors.New("db_path is required for sqlite storage")
		}
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return errors.New("database_url is required for postgres storage")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown storage %q", c.Storage)
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log_format %q", c.LogFormat)
	}

	if _, err := c.CalculatorDefaults(); err != nil {
		return err
	}
	return nil
}
