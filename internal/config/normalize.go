package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeInput()
	c.normalizeOutput()
	c.normalizeEffects()
	c.normalizeGraph()
	c.normalizeRecorder()
	c.normalizeTools()
	return c.normalizeLogging()
}

func (c *Config) normalizePaths() error {
	c.Paths.OutputDirName = strings.TrimSpace(c.Paths.OutputDirName)
	if c.Paths.OutputDirName == "" {
		c.Paths.OutputDirName = defaultOutputDirName
	}
	c.Paths.TempFile = strings.TrimSpace(c.Paths.TempFile)
	if c.Paths.TempFile == "" {
		c.Paths.TempFile = defaultTempFile
	}
	if strings.TrimSpace(c.Paths.LockDir) == "" {
		c.Paths.LockDir = defaultLockDir()
	}
	var err error
	if c.Paths.LockDir, err = expandPath(c.Paths.LockDir); err != nil {
		return fmt.Errorf("paths.lock_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeInput() {
	c.Input.Extensions = NormalizeExtensions(c.Input.Extensions)
	if len(c.Input.Extensions) == 0 {
		c.Input.Extensions = defaultInputExtensions()
	}
}

func (c *Config) normalizeOutput() {
	c.Output.Extension = strings.TrimPrefix(strings.TrimSpace(c.Output.Extension), ".")
	if c.Output.Extension == "" {
		c.Output.Extension = defaultOutputExtension
	}
}

func (c *Config) normalizeEffects() {
	c.Effects.Binary = strings.TrimSpace(c.Effects.Binary)
	if c.Effects.Binary == "" {
		c.Effects.Binary = defaultEffectsBinary
	}
	c.Effects.ProcessName = strings.TrimSpace(c.Effects.ProcessName)
	if c.Effects.ProcessName == "" {
		c.Effects.ProcessName = defaultEffectsProcessName
	}
	c.Effects.Preset = strings.TrimSpace(c.Effects.Preset)
	if c.Effects.Preset == "" {
		c.Effects.Preset = defaultPreset
	}
	if c.Effects.PollMillis <= 0 {
		c.Effects.PollMillis = defaultEffectsPollMillis
	}
	c.Effects.Readiness = strings.ToLower(strings.TrimSpace(c.Effects.Readiness))
	if c.Effects.Readiness == "" {
		c.Effects.Readiness = defaultReadiness
	}
}

func (c *Config) normalizeGraph() {
	c.Graph.Binary = strings.TrimSpace(c.Graph.Binary)
	if c.Graph.Binary == "" {
		c.Graph.Binary = defaultGraphBinary
	}
	c.Graph.MonitorNode = strings.TrimSpace(c.Graph.MonitorNode)
	if c.Graph.MonitorNode == "" {
		c.Graph.MonitorNode = defaultMonitorNode
	}
	c.Graph.RecorderNode = strings.TrimSpace(c.Graph.RecorderNode)
	if c.Graph.RecorderNode == "" {
		c.Graph.RecorderNode = defaultRecorderNode
	}
	c.Graph.DisconnectStrategy = strings.ToLower(strings.TrimSpace(c.Graph.DisconnectStrategy))
	if c.Graph.DisconnectStrategy == "" {
		c.Graph.DisconnectStrategy = defaultDisconnectStrategy
	}
}

func (c *Config) normalizeRecorder() {
	c.Recorder.Binary = strings.TrimSpace(c.Recorder.Binary)
	if c.Recorder.Binary == "" {
		c.Recorder.Binary = defaultRecorderBinary
	}
	c.Recorder.Target = strings.TrimSpace(c.Recorder.Target)
	if c.Recorder.Target == "" {
		c.Recorder.Target = defaultRecorderTarget
	}
}

func (c *Config) normalizeTools() {
	c.Player.Binary = strings.TrimSpace(c.Player.Binary)
	if c.Player.Binary == "" {
		c.Player.Binary = defaultPlayerBinary
	}
	c.Encoder.Binary = strings.TrimSpace(c.Encoder.Binary)
	if c.Encoder.Binary == "" {
		c.Encoder.Binary = defaultEncoderBinary
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	paths := make([]string, 0, len(c.Logging.OutputPaths))
	for _, p := range c.Logging.OutputPaths {
		p = strings.TrimSpace(p)
		switch p {
		case "":
			continue
		case "stdout", "stderr":
		default:
			expanded, err := expandPath(p)
			if err != nil {
				return fmt.Errorf("logging.output_paths: %w", err)
			}
			p = expanded
		}
		paths = append(paths, p)
	}
	if len(paths) == 0 {
		paths = []string{"stderr"}
	}
	c.Logging.OutputPaths = paths
	return nil
}

// NormalizeExtensions trims whitespace, splits comma separated entries, and
// drops empty and duplicate values while keeping the first-seen order. A
// leading dot is kept because discovery compares raw suffixes.
func NormalizeExtensions(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			ext := strings.TrimSpace(part)
			if ext == "" {
				continue
			}
			if _, ok := seen[ext]; ok {
				continue
			}
			seen[ext] = struct{}{}
			out = append(out, ext)
		}
	}
	return out
}
