package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/talonworks/sortie/pkg/logger"
	"github.com/talonworks/sortie/pkg/scenario"
)

// ScenarioInfo contains information about a discovered scenario file.
type ScenarioInfo struct {
	Path     string
	Scenario scenario.Scenario
}

// DiscoverScenarios finds all scenario yaml files under dir. Files that
// fail to parse are reported and skipped so one broken file never hides
// the rest.
func DiscoverScenarios(dir string) ([]ScenarioInfo, error) {
	if dir == "" {
		dir = DefaultScenariosDir()
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	var infos []ScenarioInfo
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !isYAML(info.Name()) {
			return nil
		}

		sc, err := scenario.Load(path)
		if err != nil {
			logger.Warnf("Skipping %s: %v", path, err)
			return nil
		}
		infos = append(infos, ScenarioInfo{Path: path, Scenario: *sc})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan for scenarios: %w", err)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Scenario.Name < infos[j].Scenario.Name })
	return infos, nil
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// DefaultScenariosDir resolves the scenarios directory: the project's
// scenarios/ folder when run from a checkout, otherwise scenarios/ under
// the working directory.
func DefaultScenariosDir() string {
	if root, err := findProjectRoot(); err == nil {
		candidate := filepath.Join(root, "scenarios")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return "scenarios"
}

// findProjectRoot finds the project root by looking for go.mod.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find project root (no go.mod found)")
		}
		dir = parent
	}
}
