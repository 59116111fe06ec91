package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/talonworks/sortie/pkg/battle"
)

func writeTuningFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write tuning file: %v", err)
	}
	return path
}

func TestLoadTuningMergesOntoDefaults(t *testing.T) {
	path := writeTuningFile(t, "phases:\n  prep_seconds: 2.5\nweapons:\n  missile_range: 900\n")

	tuning, err := LoadTuning(path)
	if err != nil {
		t.Fatalf("LoadTuning returned error: %v", err)
	}

	if tuning.Phases.PrepSeconds != 2.5 {
		t.Errorf("Expected prep_seconds 2.5, got %v", tuning.Phases.PrepSeconds)
	}
	if tuning.Weapons.MissileRange != 900 {
		t.Errorf("Expected missile_range 900, got %v", tuning.Weapons.MissileRange)
	}

	defaults := battle.DefaultTuning()
	if tuning.Phases.HardCapSeconds != defaults.Phases.HardCapSeconds {
		t.Errorf("Expected hard cap to keep its default %v, got %v",
			defaults.Phases.HardCapSeconds, tuning.Phases.HardCapSeconds)
	}
}

func TestLoadTuningRejectsInvalidValues(t *testing.T) {
	path := writeTuningFile(t, "phases:\n  prep_seconds: -3\n")

	if _, err := LoadTuning(path); err == nil {
		t.Fatal("Expected error for negative prep_seconds")
	}
}

func TestLoadTuningMissingFile(t *testing.T) {
	if _, err := LoadTuning(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Expected error for a missing file")
	}
}
