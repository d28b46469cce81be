package config

import (
	"errors"
	"os"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	defaultSaveDebounce = 500 * time.Millisecond
	defaultLoadGrace    = 100 * time.Millisecond
)

type Config struct {
	Logging LoggingConfig `toml:"logging"`
	Storage StorageConfig `toml:"storage"`
	Sync    SyncConfig    `toml:"sync"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

type StorageConfig struct {
	Backend string `toml:"backend"`
}

// SyncConfig carries the save debounce and post-load grace window. Both are
// policy values, not invariants; zero means "use the default".
type SyncConfig struct {
	SaveDebounceMS int `toml:"save_debounce_ms"`
	LoadGraceMS    int `toml:"load_grace_ms"`
}

func Default() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Storage: StorageConfig{Backend: "bbolt"},
	}
}

func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	return loadFromPath(path)
}

func loadFromPath(path string) (Config, error) {
	cfg := Default()
	if err := readTOML(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) LogLevel() string {
	level := strings.TrimSpace(c.Logging.Level)
	if level == "" {
		return "info"
	}
	return level
}

func (c Config) StorageBackend() string {
	backend := strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if backend == "" {
		return "bbolt"
	}
	return backend
}

func (c Config) SaveDebounce() time.Duration {
	if c.Sync.SaveDebounceMS <= 0 {
		return defaultSaveDebounce
	}
	return time.Duration(c.Sync.SaveDebounceMS) * time.Millisecond
}

func (c Config) LoadGrace() time.Duration {
	if c.Sync.LoadGraceMS <= 0 {
		return defaultLoadGrace
	}
	return time.Duration(c.Sync.LoadGraceMS) * time.Millisecond
}

func readTOML(path string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return toml.Unmarshal(data, out)
}
