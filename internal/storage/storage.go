package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultKey is the key holding the whole application state blob.
const DefaultKey = "netmark_data"

// ErrNotFound is returned by Get when the key holds nothing.
var ErrNotFound = errors.New("storage: key not found")

// Backend is an opaque key-value persistence slot.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// FileBackend implements Backend with one JSON file per key.
type FileBackend struct {
	dir string
}

// NewFileBackend creates a new FileBackend rooted at dir.
func NewFileBackend(dir string) *FileBackend {
	return &FileBackend{dir: dir}
}

// Path returns the file used for key.
func (s *FileBackend) Path(key string) string {
	return filepath.Join(s.dir, sanitizeKey(key)+".json")
}

// Get reads the value stored under key.
func (s *FileBackend) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Set writes the value to a temporary file and renames it into place, so a
// reader never observes a partial write.
// Creates the directory if it doesn't exist.
func (s *FileBackend) Set(_ context.Context, key string, value []byte) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, sanitizeKey(key)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, s.Path(key))
}

// Remove deletes the file for key. Removing a missing key is not an error.
func (s *FileBackend) Remove(_ context.Context, key string) error {
	err := os.Remove(s.Path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Close implements Backend.
func (s *FileBackend) Close() error { return nil }

func sanitizeKey(key string) string {
	return strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
}

// Open opens the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Backend, error) {
	switch cfg.Driver {
	case DriverFile, "":
		return NewFileBackend(cfg.Path), nil
	case DriverSQLite:
		return NewSQLiteBackend(ctx, filepath.Join(cfg.Path, "netmark.db"))
	case DriverRedis:
		client, err := ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return NewRedisBackend(client, cfg.Redis.Prefix), nil
	case DriverMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
}
