package scenario

import (
	"fmt"

	"github.com/talonworks/sortie/pkg/battle"
)

// Scenario describes one engagement setup: the allied roster, the mission
// opposition, posture and feature flags, plus optional tuning overrides and
// prompt parameters. Scenarios come from builtin presets or yaml files and
// feed the battle core through Input().
type Scenario struct {
	Name        string              `yaml:"name" json:"name"`
	Description string              `yaml:"description,omitempty" json:"description,omitempty"`
	Roster      []battle.RosterUnit `yaml:"roster" json:"roster"`
	Mission     battle.Mission      `yaml:"mission" json:"mission"`
	Tactic      battle.Tactic       `yaml:"tactic,omitempty" json:"tactic,omitempty"`
	Respawn     bool                `yaml:"respawn,omitempty" json:"respawn,omitempty"`
	Debug       bool                `yaml:"debug,omitempty" json:"debug,omitempty"`
	Seed        int64               `yaml:"seed,omitempty" json:"seed,omitempty"`

	// Tuning overrides the engine defaults when present. Loaded files
	// merge onto DefaultTuning, so a file may override a single value.
	Tuning *battle.Tuning `yaml:"tuning,omitempty" json:"-"`

	// Parameters are prompted for (or read from SORTIE_* env) before a
	// run and applied by ApplyParameters.
	Parameters []Parameter `yaml:"parameters,omitempty" json:"-"`
}

// Parameter defines a configurable scenario parameter.
type Parameter struct {
	Name        string      `yaml:"name"`
	Type        string      `yaml:"type"` // integer, float, string, boolean
	Description string      `yaml:"description"`
	Default     interface{} `yaml:"default"`
	Required    bool        `yaml:"required"`
	Min         interface{} `yaml:"min,omitempty"`
	Max         interface{} `yaml:"max,omitempty"`
	Options     []string    `yaml:"options,omitempty"` // for string enums
}

// Validate checks the scenario is runnable. Sizing limits live in the
// battle core's own input validation; this guards the host-level fields.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario name is required")
	}
	switch s.Tactic {
	case "", battle.TacticAggressive, battle.TacticDefensive:
	default:
		return fmt.Errorf("unknown tactic %q (use aggressive or defensive)", s.Tactic)
	}
	if s.Mission.EnemyCount < 0 {
		return fmt.Errorf("mission enemy count must not be negative")
	}
	for _, p := range s.Parameters {
		switch p.Type {
		case "integer", "float", "string", "boolean":
		default:
			return fmt.Errorf("parameter %s: unsupported type %q", p.Name, p.Type)
		}
	}
	if s.Tuning != nil {
		if err := s.Tuning.Validate(); err != nil {
			return fmt.Errorf("tuning: %w", err)
		}
	}
	return nil
}

// Input assembles the battle input for this scenario.
func (s *Scenario) Input() battle.Input {
	tactic := s.Tactic
	if tactic == "" {
		tactic = battle.TacticAggressive
	}
	return battle.Input{
		Roster:  s.Roster,
		Mission: s.Mission,
		Tactic:  tactic,
		Debug:   s.Debug,
		Respawn: s.Respawn,
		Label:   s.Name,
		Seed:    s.Seed,
	}
}

// ApplyParameters writes prompted values onto the scenario. Parameter
// names map onto fixed scenario fields; presets only declare names this
// switch knows.
func (s *Scenario) ApplyParameters(values map[string]interface{}) error {
	for name, value := range values {
		switch name {
		case "enemy_count":
			n, err := toInt(value)
			if err != nil {
				return fmt.Errorf("enemy_count: %w", err)
			}
			s.Mission.EnemyCount = n
		case "tactic":
			str, ok := value.(string)
			if !ok {
				return fmt.Errorf("tactic: expected a string, got %T", value)
			}
			s.Tactic = battle.Tactic(str)
		case "seed":
			n, err := toInt(value)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			s.Seed = int64(n)
		case "respawn":
			b, ok := value.(bool)
			if !ok {
				return fmt.Errorf("respawn: expected a boolean, got %T", value)
			}
			s.Respawn = b
		default:
			return fmt.Errorf("unknown parameter %q", name)
		}
	}
	return s.Validate()
}

func toInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}
