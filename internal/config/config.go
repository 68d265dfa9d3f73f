// Package config loads netmark settings from netmark.yaml and NETMARK_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/nikbrunner/netmark/internal/storage"
)

// Config represents the runtime configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Storage StorageConfig `mapstructure:"storage"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Trash   TrashConfig   `mapstructure:"trash"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Probe   ProbeConfig   `mapstructure:"probe"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	Key    string `mapstructure:"key"`
}

// RedisConfig holds Redis connection options for the redis driver.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Prefix   string        `mapstructure:"prefix"`
}

// TrashConfig tunes the trash lifecycle.
type TrashConfig struct {
	Retention           time.Duration `mapstructure:"retention"`
	SweepInterval       time.Duration `mapstructure:"sweep_interval"`
	SearchIncludesTrash bool          `mapstructure:"search_includes_trash"`
}

// MetricsConfig enables the Prometheus endpoint of the watch command.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"` // empty disables the endpoint
}

// ProbeConfig tunes reachability checks.
type ProbeConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	Concurrency int           `mapstructure:"concurrency"`
}

// StorageBackend converts the storage settings for storage.Open.
func (c *Config) StorageBackend() storage.Config {
	return storage.Config{
		Driver: c.Storage.Driver,
		Path:   c.Storage.Path,
		Redis: storage.RedisConfig{
			Addr:     c.Redis.Addr,
			Username: c.Redis.Username,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
			Timeout:  c.Redis.Timeout,
			Prefix:   c.Redis.Prefix,
		},
	}
}

// Load reads configuration. An explicit file must exist; otherwise
// netmark.yaml is looked up in the given paths, $XDG_CONFIG_HOME/netmark,
// ~/.config/netmark and the working directory, and may be absent.
func Load(file string, paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("NETMARK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", file, err)
		}
	} else {
		v.SetConfigName("netmark")
		v.SetConfigType("yaml")
		for _, path := range paths {
			v.AddConfigPath(path)
		}
		for _, path := range searchPaths() {
			v.AddConfigPath(path)
		}

		if err := v.ReadInConfig(); err != nil {
			var cfgErr viper.ConfigFileNotFoundError
			if !errors.As(err, &cfgErr) {
				return nil, fmt.Errorf("config: read file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.Storage.Path = expandHome(cfg.Storage.Path)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case storage.DriverFile, storage.DriverSQLite, storage.DriverRedis, storage.DriverMemory:
	default:
		return fmt.Errorf("config: unknown storage.driver %q", c.Storage.Driver)
	}
	if c.Trash.Retention <= 0 {
		return fmt.Errorf("config: trash.retention must be positive, got %s", c.Trash.Retention)
	}
	if c.Trash.SweepInterval <= 0 {
		return fmt.Errorf("config: trash.sweep_interval must be positive, got %s", c.Trash.SweepInterval)
	}
	if c.Probe.Concurrency < 1 {
		c.Probe.Concurrency = 1
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.pretty", true)

	v.SetDefault("storage.driver", storage.DriverFile)
	v.SetDefault("storage.path", "~/.config/netmark/data")
	v.SetDefault("storage.key", storage.DefaultKey)

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.username", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.timeout", "5s")
	v.SetDefault("redis.prefix", storage.DefaultRedisPrefix)

	v.SetDefault("trash.retention", "2m")
	v.SetDefault("trash.sweep_interval", "5s")
	v.SetDefault("trash.search_includes_trash", false)

	v.SetDefault("metrics.addr", "")

	v.SetDefault("probe.timeout", "3s")
	v.SetDefault("probe.concurrency", 8)
}

func searchPaths() []string {
	var paths []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "netmark"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "netmark"))
	}
	return append(paths, ".")
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
