// Package config loads engine tuning overrides for the CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/talonworks/sortie/pkg/battle"
)

// DefaultTuningPath returns the user-level tuning override location and
// whether the file exists.
func DefaultTuningPath() (string, bool) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}

	path := filepath.Join(homeDir, ".sortie", "tuning.yaml")
	if _, err := os.Stat(path); err != nil {
		return path, false
	}
	return path, true
}

// LoadTuning reads a tuning override file. Keys absent from the file keep
// their engine defaults, and the merged result is validated.
func LoadTuning(path string) (*battle.Tuning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tuning file: %w", err)
	}

	tuning := battle.DefaultTuning()
	if err := yaml.Unmarshal(data, tuning); err != nil {
		return nil, fmt.Errorf("failed to parse tuning file: %w", err)
	}

	if err := tuning.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tuning in %s: %w", path, err)
	}
	return tuning, nil
}
