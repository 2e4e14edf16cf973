package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains working file locations relative to the invocation root.
type Paths struct {
	OutputDirName string `toml:"output_dir_name"`
	TempFile      string `toml:"temp_file"`
	LockDir       string `toml:"lock_dir"`
}

// Input controls batch-mode song discovery.
type Input struct {
	Extensions []string `toml:"extensions"`
}

// Output controls the encoded file format.
type Output struct {
	Extension string `toml:"extension"`
}

// Effects contains settings for launching the effects engine.
type Effects struct {
	Binary      string `toml:"binary"`
	ProcessName string `toml:"process_name"`
	Preset      string `toml:"preset"`
	// SettleMillis bounds how long to wait for the engine's nodes to register.
	SettleMillis int `toml:"settle_millis"`
	PollMillis   int `toml:"poll_millis"`
	// Readiness is "poll" (watch the graph for the monitor node) or "sleep".
	Readiness string `toml:"readiness"`
}

// Graph contains PipeWire link tool and node names.
type Graph struct {
	Binary             string `toml:"binary"`
	MonitorNode        string `toml:"monitor_node"`
	RecorderNode       string `toml:"recorder_node"`
	DisconnectStrategy string `toml:"disconnect_strategy"`
}

// Recorder contains capture settings.
type Recorder struct {
	Binary       string `toml:"binary"`
	Target       string `toml:"target"`
	SettleMillis int    `toml:"settle_millis"`
}

// Player contains playback settings.
type Player struct {
	Binary string `toml:"binary"`
}

// Encoder contains encoding settings.
type Encoder struct {
	Binary    string `toml:"binary"`
	Overwrite bool   `toml:"overwrite"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format      string   `toml:"format"`
	Level       string   `toml:"level"`
	OutputPaths []string `toml:"output_paths"`
}

// Config encapsulates all configuration values for eerecord.
//
// Configuration sections by subsystem:
//   - Paths: output directory name, temporary capture file, lock directory
//   - Input: extensions matched in batch mode
//   - Output: encoded file extension
//   - Effects: Easy Effects binary, preset, and readiness wait
//   - Graph: pw-link binary, node names, and mute link selection
//   - Recorder: pw-record binary, capture target, and node settle time
//   - Player / Encoder: ffplay and ffmpeg binaries
//   - Logging: log format, level, and destinations
type Config struct {
	Paths    Paths    `toml:"paths"`
	Input    Input    `toml:"input"`
	Output   Output   `toml:"output"`
	Effects  Effects  `toml:"effects"`
	Graph    Graph    `toml:"graph"`
	Recorder Recorder `toml:"recorder"`
	Player   Player   `toml:"player"`
	Encoder  Encoder  `toml:"encoder"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPathUnexpanded)
}

// Load locates, parses, and validates a configuration file. A missing file is
// not an error; defaults are returned and the boolean reports false.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(defaultProjectConfigFileName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// OutputDir returns the encoded output directory under root.
func (c *Config) OutputDir(root string) string {
	return filepath.Join(root, c.Paths.OutputDirName)
}

// TempPath returns the temporary capture file path under root.
func (c *Config) TempPath(root string) string {
	if filepath.IsAbs(c.Paths.TempFile) {
		return c.Paths.TempFile
	}
	return filepath.Join(root, c.Paths.TempFile)
}

// LockPath returns the single-instance lock file path.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.LockDir, defaultLockFileName)
}

// EffectsSettle returns the engine readiness budget.
func (c *Config) EffectsSettle() time.Duration {
	return time.Duration(c.Effects.SettleMillis) * time.Millisecond
}

// EffectsPollInterval returns the interval between graph readiness probes.
func (c *Config) EffectsPollInterval() time.Duration {
	return time.Duration(c.Effects.PollMillis) * time.Millisecond
}

// RecorderSettle returns the recorder node registration budget.
func (c *Config) RecorderSettle() time.Duration {
	return time.Duration(c.Recorder.SettleMillis) * time.Millisecond
}

// PresetRequested reports whether a specific, non-default preset was asked for.
func PresetRequested(preset string) bool {
	preset = strings.TrimSpace(preset)
	return preset != "" && preset != PresetAuto
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultLockDir() string {
	if base, ok := os.LookupEnv("XDG_RUNTIME_DIR"); ok && strings.TrimSpace(base) != "" {
		return base
	}
	return os.TempDir()
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
