package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadFile loads a settings file over the reference defaults, grounded on
// the ordered-settings-file-plus-CLI-overrides contract (spec §6). The
// result is not yet validated; call Validate before use.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// FindFile searches standard locations for a settings file, returning ""
// (non-fatal) if none is found.
func FindFile() string {
	locations := []string{
		"./qcodec.yaml",
		"./qcodec.yml",
		filepath.Join(os.Getenv("HOME"), ".qcodec", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".qcodec", "config.yml"),
		"/etc/qcodec/config.yaml",
		"/etc/qcodec/config.yml",
	}
	for _, path := range locations {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// SaveFile writes cfg to path as YAML, creating parent directories as needed.
func SaveFile(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
