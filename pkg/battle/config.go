package battle

import "fmt"

// Tuning groups every balance and behavior constant the engine reads. One
// immutable value is passed into New; nothing consults package-level
// mutable state, so tests can run alternate balances side by side.
type Tuning struct {
	Script    ScriptTuning    `yaml:"script"`
	Phases    PhaseTuning     `yaml:"phases"`
	Flight    FlightTuning    `yaml:"flight"`
	Formation FormationTuning `yaml:"formation"`
	Weapons   WeaponTuning    `yaml:"weapons"`
	Reconcile ReconcileTuning `yaml:"reconcile"`
	Rewards   RewardTuning    `yaml:"rewards"`
	Respawn   RespawnTuning   `yaml:"respawn"`
}

// ScriptTuning drives the outcome generator.
type ScriptTuning struct {
	AggressiveMultiplier float64 `yaml:"aggressive_multiplier"`
	DefensiveMultiplier  float64 `yaml:"defensive_multiplier"`

	OpeningOffsetSeconds float64 `yaml:"opening_offset_seconds"` // first exchange no earlier than this
	TimelineSeconds      float64 `yaml:"timeline_seconds"`       // exchange window length
	MinExchangeInterval  float64 `yaml:"min_exchange_interval"`
	MaxExchangeInterval  float64 `yaml:"max_exchange_interval"`

	BaseHitChance         float64 `yaml:"base_hit_chance"`
	HitChancePerStatPoint float64 `yaml:"hit_chance_per_stat_point"` // applied to attacker int minus defender agility
	MinHitChance          float64 `yaml:"min_hit_chance"`
	MaxHitChance          float64 `yaml:"max_hit_chance"`

	KillChancePerWeaponPoint float64 `yaml:"kill_chance_per_weapon_point"`
	MinKillChance            float64 `yaml:"min_kill_chance"`
	MaxKillChance            float64 `yaml:"max_kill_chance"`

	MinHitDamage float64 `yaml:"min_hit_damage"`
	MaxHitDamage float64 `yaml:"max_hit_damage"`

	EscapeFraction       float64 `yaml:"escape_fraction"` // losers flee below this surviving fraction
	EscapeStaggerSeconds float64 `yaml:"escape_stagger_seconds"`

	MaxUnitsPerSide int `yaml:"max_units_per_side"`
}

// PhaseTuning drives the battle phase clock.
type PhaseTuning struct {
	PrepSeconds                   float64 `yaml:"prep_seconds"`
	DisengageAfterLastKillSeconds float64 `yaml:"disengage_after_last_kill_seconds"`
	DisengageLeadSeconds          float64 `yaml:"disengage_lead_seconds"` // before the hard cap
	DisengageSeconds              float64 `yaml:"disengage_seconds"`
	HardCapSeconds                float64 `yaml:"hard_cap_seconds"`
}

// FlightTuning drives steering, flocking and translation.
type FlightTuning struct {
	BaseSpeed         float64 `yaml:"base_speed"`           // m/s at speed stat 0
	SpeedPerStatPoint float64 `yaml:"speed_per_stat_point"` // m/s per speed point

	BaseTurnRate            float64 `yaml:"base_turn_rate"` // rad/s at agility 0
	TurnRatePerAgilityPoint float64 `yaml:"turn_rate_per_agility_point"`
	VelocityEaseRate        float64 `yaml:"velocity_ease_rate"` // per second
	BankFactor              float64 `yaml:"bank_factor"`

	WorldRadius   float64 `yaml:"world_radius"`
	SpawnRadius   float64 `yaml:"spawn_radius"`
	SpawnSpacing  float64 `yaml:"spawn_spacing"`
	SpawnAltitude float64 `yaml:"spawn_altitude"`

	CohesionRadius   float64 `yaml:"cohesion_radius"`
	CohesionGain     float64 `yaml:"cohesion_gain"`
	SeparationRadius float64 `yaml:"separation_radius"`
	SeparationGain   float64 `yaml:"separation_gain"`

	EscapeDistance float64 `yaml:"escape_distance"` // outward look point length

	Gravity           float64 `yaml:"gravity"`
	WreckDrag         float64 `yaml:"wreck_drag"` // per second
	WreckMinSpinRate  float64 `yaml:"wreck_min_spin_rate"`
	WreckMaxSpinRate  float64 `yaml:"wreck_max_spin_rate"`
	WreckRetireMargin float64 `yaml:"wreck_retire_margin"` // of world radius
}

// FormationTuning drives enemy squad structure and wingman station keeping.
type FormationTuning struct {
	EnemySquadSize       int     `yaml:"enemy_squad_size"` // leader plus wingmen
	WingmanTrailDistance float64 `yaml:"wingman_trail_distance"`
	WingmanSpacing       float64 `yaml:"wingman_spacing"`
}

// WeaponTuning drives weapon release and the three effect kinds.
type WeaponTuning struct {
	FireConeCos     float64 `yaml:"fire_cone_cos"` // forward-dot alignment gate
	CooldownSeconds float64 `yaml:"cooldown_seconds"`
	TracerRange     float64 `yaml:"tracer_range"`
	MissileRange    float64 `yaml:"missile_range"`

	BurstCount     int     `yaml:"burst_count"`
	RoundsPerBurst int     `yaml:"rounds_per_burst"`
	RoundInterval  float64 `yaml:"round_interval"`
	BurstGap       float64 `yaml:"burst_gap"`
	TracerSpeed    float64 `yaml:"tracer_speed"`
	TracerLife     float64 `yaml:"tracer_life"`
	TracerSpread   float64 `yaml:"tracer_spread"` // radians of cosmetic jitter

	MissileSpeed     float64 `yaml:"missile_speed"`
	MissileTurnRate  float64 `yaml:"missile_turn_rate"` // rad/s homing bound
	MissileLife      float64 `yaml:"missile_life"`
	ProximityRadius  float64 `yaml:"proximity_radius"`
	LeadSeconds      float64 `yaml:"lead_seconds"` // aim ahead of target heading
	MuzzleOffset     float64 `yaml:"muzzle_offset"`

	FlarePairs        int     `yaml:"flare_pairs"`
	FlarePairInterval float64 `yaml:"flare_pair_interval"`
	FlareLife         float64 `yaml:"flare_life"`
	FlareEjectSpeed   float64 `yaml:"flare_eject_speed"`
	FlareDrag         float64 `yaml:"flare_drag"` // per second
}

// ReconcileTuning drives the script reconciliation layer.
type ReconcileTuning struct {
	LookaheadSeconds         float64 `yaml:"lookahead_seconds"`     // cinematic kill window
	NaturalGrantSeconds      float64 `yaml:"natural_grant_seconds"` // how early emergent fire may consume an event
	KillTurnBoost            float64 `yaml:"kill_turn_boost"`
	VictimTurnFactor         float64 `yaml:"victim_turn_factor"`
	DeadlineToleranceSeconds float64 `yaml:"deadline_tolerance_seconds"`
	ForcedResolveSeconds     float64 `yaml:"forced_resolve_seconds"` // forced missile flight budget
}

// RewardTuning scales the mission payout by outcome.
type RewardTuning struct {
	VictoryMultiplier float64 `yaml:"victory_multiplier"`
	DefeatMultiplier  float64 `yaml:"defeat_multiplier"`
}

// RespawnTuning drives the optional respawn feature flag.
type RespawnTuning struct {
	DelaySeconds float64 `yaml:"delay_seconds"`
}

// DefaultTuning returns the shipped balance.
func DefaultTuning() *Tuning {
	return &Tuning{
		Script: ScriptTuning{
			AggressiveMultiplier:     1.18,
			DefensiveMultiplier:      1.05,
			OpeningOffsetSeconds:     6.0,
			TimelineSeconds:          70.0,
			MinExchangeInterval:      0.9,
			MaxExchangeInterval:      2.3,
			BaseHitChance:            0.55,
			HitChancePerStatPoint:    0.004,
			MinHitChance:             0.15,
			MaxHitChance:             0.92,
			KillChancePerWeaponPoint: 0.016,
			MinKillChance:            0.08,
			MaxKillChance:            0.60,
			MinHitDamage:             9,
			MaxHitDamage:             26,
			EscapeFraction:           0.34,
			EscapeStaggerSeconds:     1.1,
			MaxUnitsPerSide:          12,
		},
		Phases: PhaseTuning{
			PrepSeconds:                   4.0,
			DisengageAfterLastKillSeconds: 6.0,
			DisengageLeadSeconds:          10.0,
			DisengageSeconds:              8.0,
			HardCapSeconds:                95.0,
		},
		Flight: FlightTuning{
			BaseSpeed:               24,
			SpeedPerStatPoint:       1.6,
			BaseTurnRate:            1.1,
			TurnRatePerAgilityPoint: 0.05,
			VelocityEaseRate:        2.2,
			BankFactor:              0.6,
			WorldRadius:             1400,
			SpawnRadius:             950,
			SpawnSpacing:            60,
			SpawnAltitude:           320,
			CohesionRadius:          260,
			CohesionGain:            9.5,
			SeparationRadius:        70,
			SeparationGain:          2400,
			EscapeDistance:          4000,
			Gravity:                 9.8,
			WreckDrag:               0.35,
			WreckMinSpinRate:        0.8,
			WreckMaxSpinRate:        2.6,
			WreckRetireMargin:       1.08,
		},
		Formation: FormationTuning{
			EnemySquadSize:       3,
			WingmanTrailDistance: 55,
			WingmanSpacing:       34,
		},
		Weapons: WeaponTuning{
			FireConeCos:       0.94,
			CooldownSeconds:   2.6,
			TracerRange:       520,
			MissileRange:      1150,
			BurstCount:        2,
			RoundsPerBurst:    5,
			RoundInterval:     0.09,
			BurstGap:          0.35,
			TracerSpeed:       420,
			TracerLife:        1.4,
			TracerSpread:      0.012,
			MissileSpeed:      150,
			MissileTurnRate:   2.4,
			MissileLife:       9.0,
			ProximityRadius:   26,
			LeadSeconds:       0.7,
			MuzzleOffset:      4.0,
			FlarePairs:        3,
			FlarePairInterval: 0.32,
			FlareLife:         3.2,
			FlareEjectSpeed:   34,
			FlareDrag:         0.8,
		},
		Reconcile: ReconcileTuning{
			LookaheadSeconds:         4.0,
			NaturalGrantSeconds:      2.5,
			KillTurnBoost:            2.4,
			VictimTurnFactor:         0.45,
			DeadlineToleranceSeconds: 0.05,
			ForcedResolveSeconds:     1.25,
		},
		Rewards: RewardTuning{
			VictoryMultiplier: 1.0,
			DefeatMultiplier:  0.3,
		},
		Respawn: RespawnTuning{
			DelaySeconds: 6.0,
		},
	}
}

// Validate checks the tuning for values the engine cannot run with.
func (t *Tuning) Validate() error {
	if t.Script.AggressiveMultiplier <= t.Script.DefensiveMultiplier {
		return fmt.Errorf("script: aggressive_multiplier (%.2f) must exceed defensive_multiplier (%.2f)",
			t.Script.AggressiveMultiplier, t.Script.DefensiveMultiplier)
	}
	if t.Script.MinExchangeInterval <= 0 || t.Script.MaxExchangeInterval < t.Script.MinExchangeInterval {
		return fmt.Errorf("script: exchange interval range [%.2f, %.2f] is invalid",
			t.Script.MinExchangeInterval, t.Script.MaxExchangeInterval)
	}
	if t.Script.TimelineSeconds <= 0 {
		return fmt.Errorf("script: timeline_seconds must be positive, got %.2f", t.Script.TimelineSeconds)
	}
	if t.Script.MinHitChance < 0 || t.Script.MaxHitChance > 1 || t.Script.MinHitChance > t.Script.MaxHitChance {
		return fmt.Errorf("script: hit chance bounds [%.2f, %.2f] are invalid",
			t.Script.MinHitChance, t.Script.MaxHitChance)
	}
	if t.Script.MinKillChance < 0 || t.Script.MaxKillChance > 1 || t.Script.MinKillChance > t.Script.MaxKillChance {
		return fmt.Errorf("script: kill chance bounds [%.2f, %.2f] are invalid",
			t.Script.MinKillChance, t.Script.MaxKillChance)
	}
	if t.Script.MinHitDamage < 1 || t.Script.MaxHitDamage < t.Script.MinHitDamage {
		return fmt.Errorf("script: hit damage range [%.2f, %.2f] is invalid",
			t.Script.MinHitDamage, t.Script.MaxHitDamage)
	}
	if t.Script.EscapeFraction < 0 || t.Script.EscapeFraction > 1 {
		return fmt.Errorf("script: escape_fraction must be within [0, 1], got %.2f", t.Script.EscapeFraction)
	}
	if t.Script.MaxUnitsPerSide < 1 {
		return fmt.Errorf("script: max_units_per_side must be at least 1, got %d", t.Script.MaxUnitsPerSide)
	}
	if t.Phases.PrepSeconds < 0 || t.Phases.DisengageSeconds <= 0 || t.Phases.HardCapSeconds <= 0 {
		return fmt.Errorf("phases: durations must be positive")
	}
	if t.Phases.HardCapSeconds <= t.Phases.PrepSeconds {
		return fmt.Errorf("phases: hard_cap_seconds (%.2f) must exceed prep_seconds (%.2f)",
			t.Phases.HardCapSeconds, t.Phases.PrepSeconds)
	}
	if t.Flight.BaseSpeed <= 0 || t.Flight.BaseTurnRate <= 0 {
		return fmt.Errorf("flight: base_speed and base_turn_rate must be positive")
	}
	if t.Flight.WorldRadius <= 0 || t.Flight.SpawnRadius <= 0 || t.Flight.SpawnRadius >= t.Flight.WorldRadius {
		return fmt.Errorf("flight: spawn_radius (%.1f) must sit inside world_radius (%.1f)",
			t.Flight.SpawnRadius, t.Flight.WorldRadius)
	}
	if t.Flight.WreckRetireMargin < 1 {
		return fmt.Errorf("flight: wreck_retire_margin must be at least 1, got %.2f", t.Flight.WreckRetireMargin)
	}
	if t.Formation.EnemySquadSize < 1 {
		return fmt.Errorf("formation: enemy_squad_size must be at least 1, got %d", t.Formation.EnemySquadSize)
	}
	if t.Weapons.FireConeCos <= 0 || t.Weapons.FireConeCos > 1 {
		return fmt.Errorf("weapons: fire_cone_cos must be within (0, 1], got %.3f", t.Weapons.FireConeCos)
	}
	if t.Weapons.BurstCount < 1 || t.Weapons.RoundsPerBurst < 1 || t.Weapons.RoundInterval <= 0 {
		return fmt.Errorf("weapons: burst shape is invalid")
	}
	if t.Weapons.TracerRange <= 0 || t.Weapons.MissileRange <= t.Weapons.TracerRange {
		return fmt.Errorf("weapons: missile_range (%.1f) must exceed tracer_range (%.1f)",
			t.Weapons.MissileRange, t.Weapons.TracerRange)
	}
	if t.Weapons.MissileSpeed <= 0 || t.Weapons.ProximityRadius <= 0 {
		return fmt.Errorf("weapons: missile_speed and proximity_radius must be positive")
	}
	if t.Reconcile.LookaheadSeconds <= 0 || t.Reconcile.ForcedResolveSeconds <= 0 {
		return fmt.Errorf("reconcile: lookahead_seconds and forced_resolve_seconds must be positive")
	}
	if t.Reconcile.KillTurnBoost < 1 {
		return fmt.Errorf("reconcile: kill_turn_boost must be at least 1, got %.2f", t.Reconcile.KillTurnBoost)
	}
	if t.Reconcile.VictimTurnFactor <= 0 || t.Reconcile.VictimTurnFactor > 1 {
		return fmt.Errorf("reconcile: victim_turn_factor must be within (0, 1], got %.2f", t.Reconcile.VictimTurnFactor)
	}
	if t.Rewards.VictoryMultiplier <= 0 || t.Rewards.DefeatMultiplier <= 0 {
		return fmt.Errorf("rewards: multipliers must be positive")
	}
	if t.Rewards.DefeatMultiplier >= t.Rewards.VictoryMultiplier {
		return fmt.Errorf("rewards: defeat_multiplier (%.2f) must be below victory_multiplier (%.2f)",
			t.Rewards.DefeatMultiplier, t.Rewards.VictoryMultiplier)
	}
	if t.Respawn.DelaySeconds <= 0 {
		return fmt.Errorf("respawn: delay_seconds must be positive, got %.2f", t.Respawn.DelaySeconds)
	}
	return nil
}
