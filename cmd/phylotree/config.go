package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the full phylotree configuration.
type Config struct {
	TitleMarker string `yaml:"title_marker"`
	Encoding    string `yaml:"encoding"`
	MaxFileMB   int    `yaml:"max_file_mb"`
	DBPath      string `yaml:"db_path"`
}

// DefaultConfig returns sane defaults.
func DefaultConfig() *Config {
	return &Config{
		TitleMarker: "mt-MRCA",
		Encoding:    "windows-1252",
		MaxFileMB:   100,
	}
}

// LoadConfig reads and parses a YAML config file. Returns DefaultConfig
// merged with the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks that required fields are present and values are sane.
func (c *Config) Validate() error {
	if c.TitleMarker == "" {
		return fmt.Errorf("title_marker is required")
	}
	if c.Encoding == "" {
		return fmt.Errorf("encoding is required")
	}
	if c.MaxFileMB <= 0 {
		return fmt.Errorf("max_file_mb must be > 0")
	}
	return nil
}
