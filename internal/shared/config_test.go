package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Library.Dir != "~/.vidshelf/videos" {
			t.Errorf("expected library dir ~/.vidshelf/videos, got %s", config.Library.Dir)
		}

		if config.Database.Path != "~/.vidshelf/vidshelf.db" {
			t.Errorf("expected database path ~/.vidshelf/vidshelf.db, got %s", config.Database.Path)
		}

		if config.Library.MinSize != 1 {
			t.Errorf("expected min size 1, got %d", config.Library.MinSize)
		}

		if config.Library.MaxSize != 4294967296 {
			t.Errorf("expected max size 4294967296, got %d", config.Library.MaxSize)
		}

		if len(config.Library.Extensions) == 0 {
			t.Error("expected default extensions")
		}

		if config.Validation.FFProbePath != "ffprobe" {
			t.Errorf("expected ffprobe path ffprobe, got %s", config.Validation.FFProbePath)
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); !errors.Is(err, os.ErrExist) {
			t.Errorf("creating config file again should fail with ErrExist, got %v", err)
		}
	})

	t.Run("WriteConfigFile overwrite", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")
		if err := os.WriteFile(configPath, []byte("old"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if err := WriteConfigFile(configPath, true); err != nil {
			t.Fatalf("WriteConfigFile() error = %v", err)
		}
		if _, err := LoadConfig(configPath); err != nil {
			t.Errorf("overwritten config does not load: %v", err)
		}

		entries, _ := os.ReadDir(tmpDir)
		if len(entries) != 1 {
			t.Errorf("expected only the config file to remain, got %d entries", len(entries))
		}
	})

	t.Run("WriteConfigFile failure keeps existing target", func(t *testing.T) {
		tmpDir := t.TempDir()
		target := filepath.Join(tmpDir, "config.toml")
		kept := filepath.Join(target, "keep.txt")
		if err := os.MkdirAll(target, 0755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		if err := os.WriteFile(kept, []byte("keep"), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		if err := WriteConfigFile(target, true); err == nil {
			t.Fatal("expected rename over a non-empty directory to fail")
		}
		if _, err := os.Stat(kept); err != nil {
			t.Errorf("existing content should survive a failed write: %v", err)
		}

		entries, _ := os.ReadDir(tmpDir)
		if len(entries) != 1 {
			t.Errorf("expected temp file to be cleaned up, got %d entries", len(entries))
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[library]
dir = "/custom/videos"
max_size = 2048
copy_rate_limit = 1048576

[database]
path = "/custom/path.db"

[player]
command = "mpv"
args = ["--fs"]

[log]
level = "debug"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Library.Dir != "/custom/videos" {
			t.Errorf("expected library dir /custom/videos, got %s", config.Library.Dir)
		}

		if config.Library.MaxSize != 2048 {
			t.Errorf("expected max size 2048, got %d", config.Library.MaxSize)
		}

		if config.Library.MinSize != 1 {
			t.Errorf("expected min size to keep default 1, got %d", config.Library.MinSize)
		}

		if config.Player.Command != "mpv" || len(config.Player.Args) != 1 {
			t.Errorf("expected player mpv [--fs], got %s %v", config.Player.Command, config.Player.Args)
		}

		if config.Log.Level != "debug" {
			t.Errorf("expected log level debug, got %s", config.Log.Level)
		}
	})

	t.Run("LoadConfig rejects invalid thresholds", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[library]\nmin_size = 100\nmax_size = 10\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig("/nonexistent/config.toml"); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("Resolve expands home", func(t *testing.T) {
		home, err := os.UserHomeDir()
		if err != nil {
			t.Skipf("no home directory: %v", err)
		}

		config := DefaultConfig()
		if err := config.Resolve(); err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}

		want := filepath.Join(home, ".vidshelf", "videos")
		if config.Library.Dir != want {
			t.Errorf("expected %s, got %s", want, config.Library.Dir)
		}
	})
}
