package battle

// Tactic selects the posture multiplier applied to allied power.
type Tactic string

const (
	TacticAggressive Tactic = "aggressive"
	TacticDefensive  Tactic = "defensive"
)

// CraftStats are the airframe-derived stats of a roster unit.
type CraftStats struct {
	Weapon  float64 `json:"weapon" yaml:"weapon"`
	Speed   float64 `json:"speed" yaml:"speed"`
	Agility float64 `json:"agility" yaml:"agility"`
}

// PilotStats are the assigned-personnel stats of a roster unit.
type PilotStats struct {
	Intelligence float64 `json:"intelligence" yaml:"intelligence"`
	Endurance    float64 `json:"endurance" yaml:"endurance"`
}

// RosterUnit is one combat-capable unit supplied by the squadron layer.
type RosterUnit struct {
	Name  string     `json:"name" yaml:"name"`
	Craft CraftStats `json:"craft" yaml:"craft"`
	Pilot PilotStats `json:"pilot" yaml:"pilot"`
}

// RewardBlock is the mission's payout before victory scaling.
type RewardBlock struct {
	Credits int `json:"credits" yaml:"credits"`
	Salvage int `json:"salvage" yaml:"salvage"`
}

// Mission defines the opposition and the payout on offer.
type Mission struct {
	Name       string      `json:"name" yaml:"name"`
	EnemyCount int         `json:"enemyCount" yaml:"enemy_count"`
	EnemyStats Stats       `json:"enemyStats" yaml:"enemy_stats"`
	Rewards    RewardBlock `json:"rewards" yaml:"rewards"`
}

// Input is everything a battle consumes at construction. The core reads
// nothing else for the rest of its life.
type Input struct {
	Roster  []RosterUnit
	Mission Mission
	Tactic  Tactic

	// Feature flags.
	Debug   bool // hosts may surface extra state; the core only records it
	Respawn bool // wrecked units reset after a fixed delay instead of retiring

	// Label and Seed feed the battle's deterministic random source.
	Label string
	Seed  int64

	// Precomputed, when set, is reused instead of generating a fresh
	// outcome. Preview tooling saves an Outcome and replays it here.
	Precomputed *Outcome

	// Observer, when set, receives executed events and phase changes
	// synchronously during Advance.
	Observer Observer
}

// ExecutedEvent reports one script event the simulation has consumed.
type ExecutedEvent struct {
	Event  ScheduledEvent
	Index  int
	Forced bool    // landed by deadline enforcement rather than emergent fire
	At     float64 // battle seconds when it executed
}

// Observer receives battle milestones as they happen. Implementations run
// on the caller's tick and must not retain the event structs.
type Observer interface {
	OnEvent(ev ExecutedEvent)
	OnPhaseChange(from, to Phase, elapsed float64)
}
