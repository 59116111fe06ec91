package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talonworks/sortie/pkg/battle"
)

// Load reads a scenario yaml file. The tuning block is pre-seeded with the
// engine defaults before decoding, so files override only the values they
// name and inherit the rest.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates scenario yaml.
func Parse(data []byte) (*Scenario, error) {
	sc := &Scenario{Tuning: battle.DefaultTuning()}
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if sc.Tactic == "" {
		sc.Tactic = battle.TacticAggressive
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}
