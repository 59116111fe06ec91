// Package battle runs a scripted-outcome dogfight: the result of the
// engagement is decided before the first tick, and the real-time layer's
// job is to dramatize that script faithfully, never to change it.
package battle

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// maxStepSeconds caps one Advance step. Hosts that stall for longer get a
// clamped step instead of a tunneling simulation.
const maxStepSeconds = 0.25

// Battle is one running engagement. It is not safe for concurrent use;
// the host drives Advance from a single loop and reads the snapshot it
// leaves behind.
type Battle struct {
	ID    uuid.UUID
	Label string

	cfg *Tuning
	in  Input
	rng *rand.Rand

	outcome *Outcome
	rec     *reconciler
	clock   *phaseClock

	entities []*CombatEntity
	byID     map[EntityID]*CombatEntity

	tracers   []Tracer
	missiles  []Missile
	flares    []Flare
	effectSeq uint64

	elapsed  float64
	snapshot Snapshot
}

// New builds a battle. The outcome is generated first, from a random
// stream seeded by the label and seed, and only then do entities consume
// randomness for spawn jitter, so a previewed outcome and a live battle
// built from the same input always share a script.
func New(cfg *Tuning, in Input) (*Battle, error) {
	if cfg == nil {
		cfg = DefaultTuning()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := validateInput(cfg, in); err != nil {
		return nil, err
	}

	b := &Battle{
		ID:    uuid.New(),
		Label: in.Label,
		cfg:   cfg,
		in:    in,
		rng:   rand.New(rand.NewSource(SeedFor(in.Label, in.Seed))),
		byID:  make(map[EntityID]*CombatEntity),
	}

	if in.Precomputed != nil {
		b.outcome = in.Precomputed.clone()
	} else {
		b.outcome = generate(cfg, in.Roster, in.Mission, in.Tactic, b.rng)
	}

	for i, unit := range in.Roster {
		b.addEntity(newAlliedEntity(cfg, b.rng, i, len(in.Roster), unit))
	}
	for i := 0; i < in.Mission.EnemyCount; i++ {
		b.addEntity(newEnemyEntity(cfg, b.rng, i, in.Mission.EnemyCount, in.Mission.EnemyStats))
	}
	b.linkSquads()

	b.rec = newReconciler(cfg, &b.outcome.Script)
	b.clock = newPhaseClock(cfg, &b.outcome.Script, b.outcome.Results.Victory, in.Respawn, b.onPhaseChange)
	b.rebuildSnapshot()
	return b, nil
}

func validateInput(cfg *Tuning, in Input) error {
	if len(in.Roster) > cfg.Script.MaxUnitsPerSide {
		return fmt.Errorf("roster of %d exceeds the %d unit cap", len(in.Roster), cfg.Script.MaxUnitsPerSide)
	}
	if in.Mission.EnemyCount < 0 {
		return fmt.Errorf("mission enemy count cannot be negative, got %d", in.Mission.EnemyCount)
	}
	if in.Mission.EnemyCount > cfg.Script.MaxUnitsPerSide {
		return fmt.Errorf("mission enemy count %d exceeds the %d unit cap", in.Mission.EnemyCount, cfg.Script.MaxUnitsPerSide)
	}
	if in.Precomputed != nil && !in.Precomputed.Script.Sorted() {
		return fmt.Errorf("precomputed script is not ordered by timestamp")
	}
	return nil
}

func (b *Battle) addEntity(e *CombatEntity) {
	b.entities = append(b.entities, e)
	b.byID[e.ID] = e
}

// linkSquads organizes enemies into squads of the tuned size: the first
// slot of each squad leads, the rest fly as its wingmen.
func (b *Battle) linkSquads() {
	size := b.cfg.Formation.EnemySquadSize
	if size <= 1 {
		return
	}
	for _, e := range b.entities {
		if e.Team != TeamEnemy || e.Slot%size == 0 {
			continue
		}
		leader := MakeEntityID(TeamEnemy, e.Slot-e.Slot%size)
		if b.byID[leader] != nil {
			e.PartnerID = leader
		}
	}
}

// Advance steps the battle by deltaSeconds. Within one tick, scheduled
// script work runs first so reconciliation markers are visible to this
// tick's steering, then kinematics, then projectiles, then the phase
// clock; the snapshot is rebuilt last. Terminal battles ignore Advance.
func (b *Battle) Advance(deltaSeconds float64) {
	if deltaSeconds <= 0 || b.clock.phase.Terminal() {
		return
	}
	if deltaSeconds > maxStepSeconds {
		deltaSeconds = maxStepSeconds
	}
	b.elapsed += deltaSeconds

	b.runScheduled()
	b.rec.assignCinematicKills(b.entities, b.byID, b.elapsed)
	b.enforceDeadlines()

	b.updateTargeting()
	b.updateKinematics(deltaSeconds)
	b.updateWeapons(deltaSeconds)

	b.advanceEffects(deltaSeconds)
	b.updateRespawns()

	b.clock.update(b.elapsed)
	b.rebuildSnapshot()
}

// runScheduled executes due hit, miss and escape events. Hits land as
// non-lethal damage; escapes flip the unit outbound. Destroy events are
// never run from here.
func (b *Battle) runScheduled() {
	for _, idx := range b.rec.dueScheduled(b.elapsed) {
		if !b.rec.markExecuted(idx) {
			continue
		}
		ev := b.rec.event(idx)
		switch ev.Type {
		case EventHit:
			if target := b.byID[ev.Target]; target != nil && target.Alive() {
				target.Health -= ev.Damage
				if target.Health < 1 {
					target.Health = 1 // scripted hits never finish a unit
				}
			}
		case EventEscape:
			if unit := b.byID[ev.Attacker]; unit != nil && unit.Alive() {
				unit.IsEscaping = true
				unit.TargetID = ""
			}
		}
		b.notify(ExecutedEvent{Event: ev, Index: idx, At: b.elapsed})
	}
}

// enforceDeadlines settles overdue destroy events: a lethal missile
// already chasing the target converts to forced flight, otherwise a
// guaranteed missile launches from wherever the scripted attacker is now.
func (b *Battle) enforceDeadlines() {
	for _, idx := range b.rec.overdueDestroys(b.elapsed) {
		ev := b.rec.event(idx)
		target := b.byID[ev.Target]
		if target == nil || !target.Alive() {
			// Nothing left to wreck; settle the bookkeeping so the event
			// cannot fire again.
			b.rec.markExecuted(idx)
			continue
		}
		if b.forcedInFlight(idx) {
			continue
		}
		if m := b.lethalMissileFor(idx); m != nil {
			b.forceMissile(m)
			continue
		}
		b.spawnForcedMissile(idx, b.byID[ev.Attacker], target)
	}
}

func (b *Battle) forcedInFlight(eventIndex int) bool {
	for i := range b.missiles {
		if b.missiles[i].Forced && b.missiles[i].eventIndex == eventIndex {
			return true
		}
	}
	return false
}

func (b *Battle) lethalMissileFor(eventIndex int) *Missile {
	for i := range b.missiles {
		m := &b.missiles[i]
		if m.WillDetonate && !m.Disarmed && m.eventIndex == eventIndex {
			return m
		}
	}
	return nil
}

// executeKill settles one scripted destroy event: it is marked executed
// exactly once, the target wrecks, and a dying leader's squad promotes
// first. The membership guard makes a double kill structurally impossible
// no matter how many shots converge on the same event.
func (b *Battle) executeKill(eventIndex int, forced bool) {
	if eventIndex < 0 || eventIndex >= len(b.rec.events) {
		return
	}
	ev := b.rec.event(eventIndex)
	target := b.byID[ev.Target]
	if target == nil || !target.Alive() {
		return
	}
	if !b.rec.markExecuted(eventIndex) {
		return
	}
	b.promoteLeader(target)
	target.wreck(b.cfg, b.rng, b.elapsed)
	b.notify(ExecutedEvent{Event: ev, Index: eventIndex, Forced: forced, At: b.elapsed})
}

// updateRespawns returns wrecked units to the line once the delay has
// passed. Only battles built with the respawn flag run this; their phase
// clock holds active so the fight cycles until force-ended.
func (b *Battle) updateRespawns() {
	if !b.in.Respawn {
		return
	}
	for _, e := range b.entities {
		if !e.IsWrecked || b.elapsed-e.DestroyedAt < b.cfg.Respawn.DelaySeconds {
			continue
		}
		e.respawnReset(b.cfg, b.rng, b.sideTotal(e.Team))
	}
}

func (b *Battle) sideTotal(team Team) int {
	n := 0
	for _, e := range b.entities {
		if e.Team == team {
			n++
		}
	}
	return n
}

func (b *Battle) notify(ev ExecutedEvent) {
	if b.in.Observer != nil {
		b.in.Observer.OnEvent(ev)
	}
}

func (b *Battle) onPhaseChange(from, to Phase, elapsed float64) {
	if b.in.Observer != nil {
		b.in.Observer.OnPhaseChange(from, to, elapsed)
	}
}

// ForceEnd skips straight to the decided terminal phase. Safe to call at
// any time; once the battle is terminal it does nothing.
func (b *Battle) ForceEnd() {
	if b.clock.forceEnd(b.elapsed) {
		b.rebuildSnapshot()
	}
}

// Phase returns the current battle phase.
func (b *Battle) Phase() Phase {
	return b.clock.phase
}

// Elapsed returns battle seconds simulated so far.
func (b *Battle) Elapsed() float64 {
	return b.elapsed
}

// Snapshot returns the render contract as of the last tick.
func (b *Battle) Snapshot() Snapshot {
	return b.snapshot
}

// Script returns a copy of the decided event timeline.
func (b *Battle) Script() BattleScript {
	return b.outcome.Script.clone()
}

// Outcome returns a deep copy of the script and results pair for preview
// and archival tooling.
func (b *Battle) Outcome() Outcome {
	return *b.outcome.clone()
}

// Results hands out the pre-decided results record once the battle is
// terminal. The real-time layer never recomputes it.
func (b *Battle) Results() (BattleResults, bool) {
	if !b.clock.phase.Terminal() {
		return BattleResults{}, false
	}
	return b.outcome.Results, true
}
