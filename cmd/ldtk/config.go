package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the YAML config file. Command-line options win over it.
type Config struct {
	LogLevel      string `yaml:"log_level"`
	LogFormat     string `yaml:"log_format"`
	StrictVersion bool   `yaml:"strict_version"`
	Format        string `yaml:"format"`
}

func defaultConfig() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
		Format:    "text",
	}
}

func loadConfig(filename string) (Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(filename)
	if err != nil {
		return cfg, fmt.Errorf("ldtk: load %s: %w", filename, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("ldtk: unmarshal %s: %w", filename, err)
	}
	switch cfg.Format {
	case "text", "json", "yaml":
	default:
		return cfg, fmt.Errorf("ldtk: %s: unknown format %q", filename, cfg.Format)
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return cfg, fmt.Errorf("ldtk: %s: unknown log_format %q", filename, cfg.LogFormat)
	}
	return cfg, nil
}

func (c *Config) override(opts globalOptions) {
	if opts.LogLevel != "" {
		c.LogLevel = opts.LogLevel
	}
	if opts.LogFormat != "" {
		c.LogFormat = opts.LogFormat
	}
	if opts.StrictVersion {
		c.StrictVersion = true
	}
	if opts.Format != "" {
		c.Format = opts.Format
	}
}
