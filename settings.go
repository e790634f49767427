package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Settings is state seltable writes itself, as opposed to config.yaml which
// only the user edits.
type Settings struct {
	TelemetryEnabled bool   `json:"telemetry_enabled"`
	FirstRunComplete bool   `json:"first_run_complete"`
	LastDatabase     string `json:"last_database,omitempty"`
	LastTable        string `json:"last_table,omitempty"`
}

// getConfigDir returns $XDG_CONFIG_HOME/seltable, falling back to
// ~/.config/seltable.
func getConfigDir() (string, error) {
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		return filepath.Join(xdgHome, "seltable"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "seltable"), nil
}

// loadSettings reads settings.json from dir. A missing file yields the first
// run defaults.
func loadSettings(dir string) (*Settings, error) {
	data, err := os.ReadFile(filepath.Join(dir, "settings.json"))
	if errors.Is(err, os.ErrNotExist) {
		return &Settings{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read settings file: %w", err)
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("could not parse settings file: %w", err)
	}
	return &settings, nil
}

func (s *Settings) save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("could not create config directory: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal settings: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "settings.json"), data, 0o644); err != nil {
		return fmt.Errorf("could not write settings file: %w", err)
	}
	return nil
}
