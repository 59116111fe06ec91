package battle

import (
	"fmt"
	"math/rand"

	"github.com/talonworks/sortie/pkg/geom"
)

// Team identifies which side an entity fights for.
type Team string

const (
	TeamAllied Team = "allied"
	TeamEnemy  Team = "enemy"
)

// EntityID identifies a combat entity within one battle. Ids are
// deterministic slot names ("allied-0", "enemy-2") so a previously saved
// script can be replayed against a freshly constructed battle.
type EntityID string

// MakeEntityID builds the slot id for a team and roster index.
func MakeEntityID(team Team, slot int) EntityID {
	return EntityID(fmt.Sprintf("%s-%d", team, slot))
}

// Stats is the five-stat block that drives steering, accuracy and damage
// odds. Craft stats (weapon, speed, agility) and pilot stats (intelligence,
// endurance) are composed into one block at entity construction.
type Stats struct {
	Weapon       float64 `json:"weapon" yaml:"weapon"`
	Speed        float64 `json:"speed" yaml:"speed"`
	Agility      float64 `json:"agility" yaml:"agility"`
	Intelligence float64 `json:"intelligence" yaml:"intelligence"`
	Endurance    float64 `json:"endurance" yaml:"endurance"`
}

// Sum returns the combined stat total used by power comparisons.
func (s Stats) Sum() float64 {
	return s.Weapon + s.Speed + s.Agility + s.Intelligence + s.Endurance
}

// BurstState tracks an in-progress tracer burst sequence.
type BurstState struct {
	Active     bool
	BurstsLeft int
	RoundsLeft int
	ShotTimer  float64
	KillShot   bool // the final round of this sequence wrecks the target
	EventIndex int  // script event consumed by the kill shot; -1 otherwise
}

// FlareState tracks an in-progress countermeasure deployment. Flares eject
// in pairs with a fixed interval between pairs.
type FlareState struct {
	Deploying bool
	PairsLeft int
	PairTimer float64
}

// CombatEntity is one participating unit. Relations to other entities are
// held as ids and resolved through the battle's index each tick, never as
// direct pointers, which keeps mutually targeting units cycle-free and
// makes respawn resets trivial.
type CombatEntity struct {
	ID    EntityID
	Name  string
	Team  Team
	Slot  int // roster index; drives wingman seniority on promotion

	Position    geom.Vec3
	Velocity    geom.Vec3
	Orientation geom.Quat

	Health    float64
	MaxHealth float64

	TargetID  EntityID
	PartnerID EntityID // wingman -> leader link; empty for leaders

	Stats Stats

	// Status flags are one-directional for the life of a battle; the only
	// exception is the respawn feature, which performs a full reset.
	IsDestroyed bool // wreck left the world and fully retired
	IsWrecked   bool // killed, still falling under ballistic physics
	IsEscaping  bool
	DestroyedAt float64 // battle seconds; meaningful once IsWrecked is set

	FireCooldown   float64
	Burst          BurstState
	Countermeasure FlareState

	// Script-coupling markers, reassigned every tick by the reconciler.
	CinematicKillTargetID EntityID
	IsCinematicKillTarget bool

	spin geom.Vec3 // wreck angular velocity, rolled when the kill lands
}

// Alive reports whether the entity still flies and fights.
func (e *CombatEntity) Alive() bool {
	return !e.IsWrecked && !e.IsDestroyed
}

// IsLeader reports whether an enemy entity currently leads a squad.
func (e *CombatEntity) IsLeader() bool {
	return e.Team == TeamEnemy && e.PartnerID == ""
}

// MaxSpeed returns the entity's top speed for its speed stat.
func (e *CombatEntity) MaxSpeed(cfg *Tuning) float64 {
	return cfg.Flight.BaseSpeed + cfg.Flight.SpeedPerStatPoint*e.Stats.Speed
}

// turnRate returns the slerp rate for this entity including the cinematic
// boost for an imminent scripted killer and the fixation penalty for the
// scripted victim.
func (e *CombatEntity) turnRate(cfg *Tuning) float64 {
	rate := cfg.Flight.BaseTurnRate + cfg.Flight.TurnRatePerAgilityPoint*e.Stats.Agility
	if e.CinematicKillTargetID != "" {
		rate *= cfg.Reconcile.KillTurnBoost
	}
	if e.IsCinematicKillTarget {
		rate *= cfg.Reconcile.VictimTurnFactor
	}
	return rate
}

// alliedUnitName falls back to a callsign when the roster omits a name.
func alliedUnitName(unit RosterUnit, slot int) string {
	if unit.Name != "" {
		return unit.Name
	}
	return fmt.Sprintf("Raven-%d", slot+1)
}

// enemyUnitName numbers mission enemies by slot.
func enemyUnitName(slot int) string {
	return fmt.Sprintf("Bandit-%d", slot+1)
}

// newAlliedEntity constructs a roster unit on the allied spawn line.
func newAlliedEntity(cfg *Tuning, rng *rand.Rand, slot, total int, unit RosterUnit) *CombatEntity {
	e := &CombatEntity{
		ID:        MakeEntityID(TeamAllied, slot),
		Name:      alliedUnitName(unit, slot),
		Team:      TeamAllied,
		Slot:      slot,
		Health:    maxHealth,
		MaxHealth: maxHealth,
		Stats: Stats{
			Weapon:       unit.Craft.Weapon,
			Speed:        unit.Craft.Speed,
			Agility:      unit.Craft.Agility,
			Intelligence: unit.Pilot.Intelligence,
			Endurance:    unit.Pilot.Endurance,
		},
	}
	e.seedKinematics(cfg, rng, slot, total)
	return e
}

// newEnemyEntity constructs one mission enemy. Squad links (leader and
// wingman partner ids) are assigned by the caller once all slots exist.
func newEnemyEntity(cfg *Tuning, rng *rand.Rand, slot, total int, stats Stats) *CombatEntity {
	e := &CombatEntity{
		ID:        MakeEntityID(TeamEnemy, slot),
		Name:      enemyUnitName(slot),
		Team:      TeamEnemy,
		Slot:      slot,
		Health:    maxHealth,
		MaxHealth: maxHealth,
		Stats:     stats,
	}
	e.seedKinematics(cfg, rng, slot, total)
	return e
}

// seedKinematics places the entity on its team's spawn line facing the
// opposing side, with a little jitter so formations never overlap exactly.
// Respawned entities run through here again.
func (e *CombatEntity) seedKinematics(cfg *Tuning, rng *rand.Rand, slot, total int) {
	sign := 1.0
	if e.Team == TeamAllied {
		sign = -1.0
	}

	lateral := (float64(slot) - float64(total-1)/2) * cfg.Flight.SpawnSpacing
	e.Position = geom.Vec3{
		X: lateral + (rng.Float64()-0.5)*cfg.Flight.SpawnSpacing*0.4,
		Y: cfg.Flight.SpawnAltitude + (rng.Float64()-0.5)*40,
		Z: sign * (cfg.Flight.SpawnRadius + (rng.Float64()-0.5)*60),
	}

	// Face across the arena toward the opposing spawn line.
	forward := geom.Vec3{Z: -sign}
	e.Orientation = geom.LookRotation(forward, geom.UnitY)
	e.Velocity = forward.Scale(e.MaxSpeed(cfg) * 0.55)
}

// wreck flips the entity into its falling terminal state. The transition
// is one-directional; callers must check Alive first.
func (e *CombatEntity) wreck(cfg *Tuning, rng *rand.Rand, elapsed float64) {
	e.Health = 0
	e.IsWrecked = true
	e.DestroyedAt = elapsed
	e.TargetID = ""
	e.Burst = BurstState{}
	e.Countermeasure = FlareState{}
	e.CinematicKillTargetID = ""
	e.IsCinematicKillTarget = false
	e.FireCooldown = 0

	axis := geom.Vec3{
		X: rng.Float64()*2 - 1,
		Y: rng.Float64()*2 - 1,
		Z: rng.Float64()*2 - 1,
	}.Normalize()
	if axis.IsZero() {
		axis = geom.UnitX
	}
	rate := cfg.Flight.WreckMinSpinRate +
		rng.Float64()*(cfg.Flight.WreckMaxSpinRate-cfg.Flight.WreckMinSpinRate)
	e.spin = axis.Scale(rate)

	// Keep forward momentum but start dropping.
	e.Velocity = e.Velocity.Scale(0.8).Add(geom.Vec3{Y: -cfg.Flight.Gravity * 0.5})
}

// respawnReset returns the entity to service after the respawn delay: a
// full state reset plus reseeded kinematics, not a reversal of the
// terminal flags mid-flight.
func (e *CombatEntity) respawnReset(cfg *Tuning, rng *rand.Rand, total int) {
	e.Health = e.MaxHealth
	e.IsDestroyed = false
	e.IsWrecked = false
	e.IsEscaping = false
	e.DestroyedAt = 0
	e.TargetID = ""
	e.FireCooldown = cfg.Weapons.CooldownSeconds
	e.Burst = BurstState{}
	e.Countermeasure = FlareState{}
	e.CinematicKillTargetID = ""
	e.IsCinematicKillTarget = false
	e.spin = geom.Vec3{}
	e.seedKinematics(cfg, rng, e.Slot, total)
}

// maxHealth is fixed for every airframe in this domain.
const maxHealth = 100.0
