package battle

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"math/rand"
	"sort"
)

// SeedFor derives the battle's random seed from its label and the caller
// seed. The same pair always yields the same script, which is what lets
// preview tooling show exactly the battle a later run will play out.
func SeedFor(label string, seed int64) int64 {
	h := sha256.New()
	h.Write([]byte(label))
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(seed))
	h.Write(buf[:])
	sum := h.Sum(nil)
	return int64(binary.LittleEndian.Uint64(sum[:8]))
}

// GenerateOutcome runs the outcome generator standalone, without building
// a battle. New performs the identical generation internally, so an
// Outcome previewed here and replayed through Input.Precomputed matches
// what a fresh battle with the same label and seed would decide.
func GenerateOutcome(cfg *Tuning, in Input) (*Outcome, error) {
	if cfg == nil {
		cfg = DefaultTuning()
	}
	if err := validateInput(cfg, in); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(SeedFor(in.Label, in.Seed)))
	return generate(cfg, in.Roster, in.Mission, in.Tactic, rng), nil
}

// scriptUnit is the generator's working view of one combatant.
type scriptUnit struct {
	id      EntityID
	name    string
	team    Team
	stats   Stats
	health  float64
	alive   bool
	escaped bool
}

// generate decides the battle: victor first, then an abstracted exchange
// timeline that respects the decision, then results aggregated by
// replaying the finished script.
func generate(cfg *Tuning, roster []RosterUnit, mission Mission, tactic Tactic, rng *rand.Rand) *Outcome {
	allied := make([]*scriptUnit, 0, len(roster))
	for i, unit := range roster {
		allied = append(allied, &scriptUnit{
			id:   MakeEntityID(TeamAllied, i),
			name: alliedUnitName(unit, i),
			team: TeamAllied,
			stats: Stats{
				Weapon:       unit.Craft.Weapon,
				Speed:        unit.Craft.Speed,
				Agility:      unit.Craft.Agility,
				Intelligence: unit.Pilot.Intelligence,
				Endurance:    unit.Pilot.Endurance,
			},
			health: maxHealth,
			alive:  true,
		})
	}
	enemy := make([]*scriptUnit, 0, mission.EnemyCount)
	for i := 0; i < mission.EnemyCount; i++ {
		enemy = append(enemy, &scriptUnit{
			id:     MakeEntityID(TeamEnemy, i),
			name:   enemyUnitName(i),
			team:   TeamEnemy,
			stats:  mission.EnemyStats,
			health: maxHealth,
			alive:  true,
		})
	}

	// An empty side short-circuits to a trivial outcome with no events.
	if len(allied) == 0 || len(enemy) == 0 {
		return degenerateOutcome(cfg, allied, enemy, mission)
	}

	alliedPower := 0.0
	for _, u := range allied {
		alliedPower += u.stats.Sum()
	}
	multiplier := cfg.Script.DefensiveMultiplier
	if tactic == TacticAggressive {
		multiplier = cfg.Script.AggressiveMultiplier
	}
	alliedPower *= multiplier
	enemyPower := mission.EnemyStats.Sum() * float64(len(enemy))
	victory := alliedPower > enemyPower

	script := buildScript(cfg, rng, victory, allied, enemy)
	results := aggregateResults(cfg, victory, &script, mission, allied, enemy)
	return &Outcome{Script: script, Results: results}
}

// buildScript runs the abstracted exchange loop. The victor decision is
// already fixed; every candidate kill is gated against it.
func buildScript(cfg *Tuning, rng *rand.Rand, victory bool, allied, enemy []*scriptUnit) BattleScript {
	var events []ScheduledEvent

	cursor := cfg.Script.OpeningOffsetSeconds
	end := cfg.Script.OpeningOffsetSeconds + cfg.Script.TimelineSeconds
	lastDestroy := 0.0

	for {
		cursor += cfg.Script.MinExchangeInterval +
			rng.Float64()*(cfg.Script.MaxExchangeInterval-cfg.Script.MinExchangeInterval)
		if cursor >= end {
			break
		}
		aliveAllied := aliveOf(allied)
		aliveEnemy := aliveOf(enemy)
		if len(aliveAllied) == 0 || len(aliveEnemy) == 0 {
			break
		}

		attackers, defenders := aliveAllied, aliveEnemy
		if !alliedActs(rng, aliveAllied, aliveEnemy) {
			attackers, defenders = aliveEnemy, aliveAllied
		}
		attacker := attackers[rng.Intn(len(attackers))]
		defender := defenders[rng.Intn(len(defenders))]

		hitChance := clamp(
			cfg.Script.BaseHitChance+
				(attacker.stats.Intelligence-defender.stats.Agility)*cfg.Script.HitChancePerStatPoint,
			cfg.Script.MinHitChance, cfg.Script.MaxHitChance)
		if rng.Float64() > hitChance {
			events = append(events, ScheduledEvent{
				Timestamp: cursor,
				Type:      EventMiss,
				Attacker:  attacker.id,
				Target:    defender.id,
			})
			continue
		}

		killChance := clamp(attacker.stats.Weapon*cfg.Script.KillChancePerWeaponPoint,
			cfg.Script.MinKillChance, cfg.Script.MaxKillChance)
		kill := rng.Float64() < killChance
		if kill && !killAllowed(victory, defender, len(defenders)) {
			kill = false
		}

		if kill {
			events = append(events, ScheduledEvent{
				Timestamp: cursor,
				Type:      EventDestroy,
				Attacker:  attacker.id,
				Target:    defender.id,
				Damage:    defender.health,
			})
			defender.health = 0
			defender.alive = false
			lastDestroy = cursor
			continue
		}

		// Non-lethal hits may never finish a unit; the damage roll is
		// capped so at least one point of health survives.
		ceiling := defender.health - 1
		if ceiling < 1 {
			events = append(events, ScheduledEvent{
				Timestamp: cursor,
				Type:      EventMiss,
				Attacker:  attacker.id,
				Target:    defender.id,
			})
			continue
		}
		damage := cfg.Script.MinHitDamage +
			rng.Float64()*(cfg.Script.MaxHitDamage-cfg.Script.MinHitDamage)
		if damage > ceiling {
			damage = ceiling
		}
		defender.health -= damage
		events = append(events, ScheduledEvent{
			Timestamp: cursor,
			Type:      EventHit,
			Attacker:  attacker.id,
			Target:    defender.id,
			Damage:    damage,
		})
	}

	// The losing side's survivors break off once their numbers have
	// thinned past the escape threshold. Departures are staggered between
	// the final kill and the disengage trigger so they play out before
	// the clock winds the battle down.
	losing := enemy
	if !victory {
		losing = allied
	}
	remaining := aliveOf(losing)
	fraction := float64(len(remaining)) / float64(len(losing))
	if len(remaining) > 0 && fraction < cfg.Script.EscapeFraction {
		start := lastDestroy
		if start == 0 {
			start = math.Min(cursor, end)
		}
		horizon := start + cfg.Phases.DisengageAfterLastKillSeconds
		if hard := cfg.Phases.HardCapSeconds - cfg.Phases.DisengageLeadSeconds; horizon > hard {
			horizon = hard
		}
		step := cfg.Script.EscapeStaggerSeconds
		if maxStep := (horizon - start - 0.5) / float64(len(remaining)+1); step > maxStep {
			step = maxStep
		}
		if step < 0.05 {
			step = 0.05
		}
		at := start
		for _, u := range remaining {
			at += step * (0.6 + rng.Float64()*0.4)
			u.escaped = true
			events = append(events, ScheduledEvent{
				Timestamp: at,
				Type:      EventEscape,
				Attacker:  u.id,
			})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp < events[j].Timestamp
	})
	return BattleScript{Events: events}
}

// alliedActs picks the acting side for one exchange, weighted by each
// side's summed speed and intelligence.
func alliedActs(rng *rand.Rand, allied, enemy []*scriptUnit) bool {
	wa, we := initiativeWeight(allied), initiativeWeight(enemy)
	if wa+we <= 0 {
		return rng.Float64() < 0.5
	}
	return rng.Float64()*(wa+we) < wa
}

func initiativeWeight(units []*scriptUnit) float64 {
	total := 0.0
	for _, u := range units {
		total += u.stats.Speed + u.stats.Intelligence
	}
	return total
}

// killAllowed gates a candidate kill against the decided victor: the
// winning side may be thinned but never eliminated, so its last survivor
// cannot die.
func killAllowed(victory bool, defender *scriptUnit, defendersAlive int) bool {
	defenderWins := (defender.team == TeamAllied) == victory
	if !defenderWins {
		return true
	}
	return defendersAlive >= 2
}

func aliveOf(units []*scriptUnit) []*scriptUnit {
	alive := make([]*scriptUnit, 0, len(units))
	for _, u := range units {
		if u.alive && !u.escaped {
			alive = append(alive, u)
		}
	}
	return alive
}

// aggregateResults replays the finished script over fresh unit state and
// tallies the record the progression layer will receive.
func aggregateResults(cfg *Tuning, victory bool, script *BattleScript, mission Mission, allied, enemy []*scriptUnit) BattleResults {
	units := make([]UnitResult, 0, len(allied)+len(enemy))
	index := make(map[EntityID]*UnitResult, len(allied)+len(enemy))
	for _, u := range append(append([]*scriptUnit{}, allied...), enemy...) {
		units = append(units, UnitResult{
			ID:       u.id,
			Name:     u.name,
			Team:     u.team,
			Survived: true,
		})
		index[u.id] = &units[len(units)-1]
	}

	for _, ev := range script.Events {
		switch ev.Type {
		case EventHit:
			if att := index[ev.Attacker]; att != nil {
				att.DamageDealt += ev.Damage
			}
		case EventDestroy:
			if att := index[ev.Attacker]; att != nil {
				att.Kills++
				att.DamageDealt += ev.Damage
			}
			if tgt := index[ev.Target]; tgt != nil {
				tgt.Survived = false
			}
		case EventEscape:
			if u := index[ev.Attacker]; u != nil {
				u.Survived = false
				u.Escaped = true
			}
		}
	}

	results := BattleResults{Victory: victory, Units: units}
	for _, u := range units {
		switch {
		case u.Team == TeamAllied && u.Escaped:
			results.EscapedAllied++
		case u.Team == TeamAllied && u.Survived:
			results.SurvivingAllied++
		case u.Team == TeamAllied:
			results.DestroyedAllied++
		case u.Escaped:
			results.EscapedEnemy++
		case u.Survived:
			results.SurvivingEnemy++
		default:
			results.DestroyedEnemy++
		}
	}

	results.DurationSeconds = disengageTime(cfg, script) + cfg.Phases.DisengageSeconds

	multiplier := cfg.Rewards.DefeatMultiplier
	if victory {
		multiplier = cfg.Rewards.VictoryMultiplier
	}
	results.Credits = int(math.Round(float64(mission.Rewards.Credits) * multiplier))
	results.Salvage = int(math.Round(float64(mission.Rewards.Salvage) * multiplier))
	return results
}

// degenerateOutcome covers rosters or missions with an empty side: no
// events, everybody survives, and the clock winds down immediately.
func degenerateOutcome(cfg *Tuning, allied, enemy []*scriptUnit, mission Mission) *Outcome {
	victory := len(allied) > 0
	script := BattleScript{}
	results := aggregateResults(cfg, victory, &script, mission, allied, enemy)
	return &Outcome{Script: script, Results: results}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
