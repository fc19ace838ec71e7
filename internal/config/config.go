// Package config loads the graphrec configuration from JSONC files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/tailscale/hujson"
)

// FileName is the project config file looked up in the work directory.
const FileName = ".graphrec.json"

// Config holds all configuration options.
type Config struct {
	StoreDir    string `json:"store_dir"`     //nolint:tagliatelle // snake_case for config file
	Capacity    int64  `json:"capacity"`      //nolint:tagliatelle // snake_case for config file
	SyncOnClose bool   `json:"sync_on_close"` //nolint:tagliatelle // snake_case for config file
	LogLevel    string `json:"log_level"`     //nolint:tagliatelle // snake_case for config file
}

// Overrides are values set on the command line. Nil fields are not set.
type Overrides struct {
	StoreDir    *string
	Capacity    *int64
	SyncOnClose *bool
	LogLevel    *string
}

// Sources tracks which config files were loaded.
type Sources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project or explicit config if loaded, empty otherwise
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		StoreDir:    "graph.db",
		Capacity:    1 << 20,
		SyncOnClose: true,
		LogLevel:    "warn",
	}
}

// Level returns the parsed log level. Only valid after [Load] succeeded.
func (c Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.WarnLevel
	}

	return lvl
}

// StorePath returns StoreDir resolved against workDir.
func (c Config) StorePath(workDir string) string {
	if filepath.IsAbs(c.StoreDir) {
		return c.StoreDir
	}

	return filepath.Join(workDir, c.StoreDir)
}

// fileConfig is a config file as parsed. Absent keys stay nil.
type fileConfig struct {
	StoreDir    *string `json:"store_dir"`     //nolint:tagliatelle // snake_case for config file
	Capacity    *int64  `json:"capacity"`      //nolint:tagliatelle // snake_case for config file
	SyncOnClose *bool   `json:"sync_on_close"` //nolint:tagliatelle // snake_case for config file
	LogLevel    *string `json:"log_level"`     //nolint:tagliatelle // snake_case for config file
}

// globalPath returns the path to the global config file.
// Uses $XDG_CONFIG_HOME/graphrec/config.json if set, otherwise
// ~/.config/graphrec/config.json. Returns empty string if the home
// directory cannot be determined.
func globalPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "graphrec", "config.json")
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "graphrec", "config.json")
	}

	home, err := os.UserHomeDir()
	if err == nil {
		return filepath.Join(home, ".config", "graphrec", "config.json")
	}

	return ""
}

// Load loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config ($XDG_CONFIG_HOME/graphrec/config.json)
// 3. Project config file in workDir (.graphrec.json, if exists), or the
// explicit config file configPath (if non-empty, must exist)
// 4. CLI overrides.
func Load(workDir, configPath string, overrides Overrides, env map[string]string) (Config, Sources, error) {
	cfg := Default()

	var sources Sources

	global := globalPath(env)
	if global != "" {
		fc, loaded, err := loadFile(global, false)
		if err != nil {
			return Config{}, Sources{}, err
		}

		if loaded {
			sources.Global = global
			cfg = merge(cfg, fc)
		}
	}

	project, mustExist := filepath.Join(workDir, FileName), false
	if configPath != "" {
		project, mustExist = configPath, true
		if !filepath.IsAbs(project) {
			project = filepath.Join(workDir, project)
		}
	}

	fc, loaded, err := loadFile(project, mustExist)
	if err != nil {
		return Config{}, Sources{}, err
	}

	if loaded {
		sources.Project = project
		cfg = merge(cfg, fc)
	}

	cfg = merge(cfg, fileConfig(overrides))

	err = Validate(cfg)
	if err != nil {
		return Config{}, Sources{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	return cfg, sources, nil
}

// loadFile loads a config file. If mustExist is false, a missing file is
// not an error and reports loaded=false.
func loadFile(path string, mustExist bool) (fileConfig, bool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is intentionally user-controlled
	if err != nil {
		if os.IsNotExist(err) {
			if mustExist {
				return fileConfig{}, false, fmt.Errorf("%w: %s", ErrFileNotFound, path)
			}

			return fileConfig{}, false, nil
		}

		return fileConfig{}, false, fmt.Errorf("%w %s: %w", ErrFileRead, path, err)
	}

	fc, err := parse(data)
	if err != nil {
		return fileConfig{}, false, fmt.Errorf("%w %s: %w", ErrInvalid, path, err)
	}

	if fc.StoreDir != nil && *fc.StoreDir == "" {
		return fileConfig{}, false, fmt.Errorf("%w %s: %w", ErrInvalid, path, errStoreDirEmpty)
	}

	return fc, true, nil
}

func parse(data []byte) (fileConfig, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var fc fileConfig

	err = json.Unmarshal(standardized, &fc)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSON: %w", err)
	}

	return fc, nil
}

func merge(base Config, overlay fileConfig) Config {
	if overlay.StoreDir != nil {
		base.StoreDir = *overlay.StoreDir
	}

	if overlay.Capacity != nil {
		base.Capacity = *overlay.Capacity
	}

	if overlay.SyncOnClose != nil {
		base.SyncOnClose = *overlay.SyncOnClose
	}

	if overlay.LogLevel != nil {
		base.LogLevel = *overlay.LogLevel
	}

	return base
}

// Validate checks a merged config.
func Validate(cfg Config) error {
	if cfg.StoreDir == "" {
		return errStoreDirEmpty
	}

	if cfg.Capacity < 1 {
		return fmt.Errorf("%w, got %d", errCapacityInvalid, cfg.Capacity)
	}

	_, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("%w %q", errLogLevelUnknown, cfg.LogLevel)
	}

	return nil
}

// Format returns the config as indented JSON.
func Format(cfg Config) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format config: %w", err)
	}

	return string(data), nil
}
