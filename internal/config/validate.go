package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateEffects(); err != nil {
		return err
	}
	if err := c.validateGraph(); err != nil {
		return err
	}
	if err := c.validateRecorder(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	name := c.Paths.OutputDirName
	if name == "." || name == ".." || strings.ContainsRune(name, filepath.Separator) {
		return fmt.Errorf("paths.output_dir_name must be a single directory name, got %q", name)
	}
	if strings.HasSuffix(c.Paths.TempFile, string(filepath.Separator)) {
		return fmt.Errorf("paths.temp_file must name a file, got %q", c.Paths.TempFile)
	}
	return nil
}

func (c *Config) validateEffects() error {
	if c.Effects.SettleMillis < 0 {
		return errors.New("effects.settle_millis must be zero or positive")
	}
	switch c.Effects.Readiness {
	case ReadinessPoll, ReadinessSleep:
	default:
		return fmt.Errorf("effects.readiness must be %q or %q, got %q", ReadinessPoll, ReadinessSleep, c.Effects.Readiness)
	}
	return nil
}

func (c *Config) validateGraph() error {
	switch c.Graph.DisconnectStrategy {
	case DisconnectEndpoint, DisconnectAdjacent:
	default:
		return fmt.Errorf("graph.disconnect_strategy must be %q or %q, got %q", DisconnectEndpoint, DisconnectAdjacent, c.Graph.DisconnectStrategy)
	}
	if c.Graph.MonitorNode == c.Graph.RecorderNode {
		return errors.New("graph.monitor_node and graph.recorder_node must differ")
	}
	return nil
}

func (c *Config) validateRecorder() error {
	if c.Recorder.SettleMillis < 0 {
		return errors.New("recorder.settle_millis must be zero or positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
