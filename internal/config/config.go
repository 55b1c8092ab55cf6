package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for the tool.
type Config struct {
	Store  StoreConfig  `mapstructure:"store"`
	Driver DriverConfig `mapstructure:"driver"`
	Log    LogConfig    `mapstructure:"log"`
}

// StoreConfig controls where connection profiles and secrets persist.
type StoreConfig struct {
	Dir           string `mapstructure:"dir"`
	Namespace     string `mapstructure:"namespace"`
	SecretBackend string `mapstructure:"secret_backend"` // file or aws
	AWSRegion     string `mapstructure:"aws_region"`
	AWSPrefix     string `mapstructure:"aws_prefix"`
}

// DriverConfig controls how database handles are opened.
type DriverConfig struct {
	Default        string        `mapstructure:"default"` // sqlserver or postgres
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// LogConfig controls the log destination and verbosity.
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// Load reads configuration from $HOME/.config/sqlwayfarer/config.yaml
// (or the current directory) with SQLWAYFARER_* environment overrides.
// A missing config file yields the defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.config/sqlwayfarer")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvPrefix("SQLWAYFARER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	base := filepath.Join(home, ".config", "sqlwayfarer")

	v.SetDefault("store.dir", filepath.Join(base, "store"))
	v.SetDefault("store.namespace", "sqlwayfarer")
	v.SetDefault("store.secret_backend", "file")
	v.SetDefault("store.aws_prefix", "sqlwayfarer")
	v.SetDefault("driver.default", "sqlserver")
	v.SetDefault("driver.connect_timeout", 15*time.Second)
	v.SetDefault("log.file", filepath.Join(base, "sqlwayfarer.log"))
	v.SetDefault("log.level", "info")
}

// Validate rejects configuration values the rest of the tool cannot act on.
func Validate(cfg *Config) error {
	switch cfg.Store.SecretBackend {
	case "file", "aws":
	default:
		return fmt.Errorf("invalid store.secret_backend %q (expected file or aws)", cfg.Store.SecretBackend)
	}
	switch cfg.Driver.Default {
	case "sqlserver", "postgres":
	default:
		return fmt.Errorf("invalid driver.default %q (expected sqlserver or postgres)", cfg.Driver.Default)
	}
	if cfg.Driver.ConnectTimeout <= 0 {
		return fmt.Errorf("driver.connect_timeout must be positive")
	}
	return nil
}
