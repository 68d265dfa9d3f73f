package storage

import (
	"os"
	"path/filepath"
	"time"
)

// Supported backend drivers.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Config selects and configures a Backend.
type Config struct {
	Driver string
	Path   string // data directory for the file and sqlite drivers
	Redis  RedisConfig
}

// RedisConfig holds Redis connection options.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	Timeout  time.Duration
	Prefix   string // key prefix, defaults to "netmark:"
}

// DefaultDataDir returns the default data directory: ~/.config/netmark/data
func DefaultDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "netmark", "data"), nil
}
