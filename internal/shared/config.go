package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Library    LibraryConfig    `toml:"library"`
	Database   DatabaseConfig   `toml:"database"`
	Player     PlayerConfig     `toml:"player"`
	Validation ValidationConfig `toml:"validation"`
	Log        LogConfig        `toml:"log"`
}

// LibraryConfig controls where videos are stored and which files are accepted.
type LibraryConfig struct {
	Dir           string   `toml:"dir"`
	MinSize       int64    `toml:"min_size"`
	MaxSize       int64    `toml:"max_size"`
	Extensions    []string `toml:"extensions"`
	CopyRateLimit int64    `toml:"copy_rate_limit"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// PlayerConfig selects the external program used to play videos.
type PlayerConfig struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
}

// ValidationConfig toggles the ffprobe integrity check on import.
type ValidationConfig struct {
	Probe       bool   `toml:"probe"`
	FFProbePath string `toml:"ffprobe_path"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// Validate checks threshold and path settings.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Library.Dir) == "" {
		return fmt.Errorf("%w: library.dir is required", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("%w: database.path is required", ErrInvalidConfig)
	}
	if c.Library.MinSize < 0 || c.Library.MaxSize < 0 {
		return fmt.Errorf("%w: size thresholds must not be negative", ErrInvalidConfig)
	}
	if c.Library.MaxSize > 0 && c.Library.MinSize > c.Library.MaxSize {
		return fmt.Errorf("%w: library.min_size (%d) exceeds library.max_size (%d)", ErrInvalidConfig, c.Library.MinSize, c.Library.MaxSize)
	}
	if c.Library.CopyRateLimit < 0 {
		return fmt.Errorf("%w: library.copy_rate_limit must not be negative", ErrInvalidConfig)
	}
	if len(c.Library.Extensions) == 0 {
		return fmt.Errorf("%w: library.extensions must list at least one extension", ErrInvalidConfig)
	}
	return nil
}

// Resolve expands "~" in every configured path.
func (c *Config) Resolve() error {
	for _, p := range []*string{&c.Library.Dir, &c.Database.Path, &c.Log.File} {
		expanded, err := ExpandPath(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	return WriteConfigFile(path, false)
}

// WriteConfigFile writes the embedded example config to path, replacing an existing file only when overwrite is set.
// The new content goes to a temp file that is renamed over path, so a failed write leaves the old file in place.
func WriteConfigFile(path string, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("config file already exists at %s: %w", path, os.ErrExist)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(exampleConf); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace config file: %w", err)
	}

	return nil
}
