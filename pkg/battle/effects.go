package battle

import (
	"math"

	"github.com/talonworks/sortie/pkg/geom"
)

// Tracer is a straight-flying cannon round. It is purely cosmetic:
// lethality lives in the burst kill-shot bookkeeping, never in the round.
type Tracer struct {
	ID         uint64    `json:"id"`
	AttackerID EntityID  `json:"attackerId"`
	Position   geom.Vec3 `json:"position"`
	Velocity   geom.Vec3 `json:"velocity"`
	Life       float64   `json:"life"`
}

// Missile homes on a lead point ahead of its target at a bounded turn
// rate. WillDetonate is set only when the launch consumed a scripted
// destroy event; every other missile disarms on proximity and flies past.
// Forced missiles skip homing and close directly on the target at
// whatever speed the remaining resolve budget demands.
type Missile struct {
	ID           uint64    `json:"id"`
	AttackerID   EntityID  `json:"attackerId"`
	TargetID     EntityID  `json:"targetId"`
	Position     geom.Vec3 `json:"position"`
	Velocity     geom.Vec3 `json:"velocity"`
	Life         float64   `json:"life"`
	WillDetonate bool      `json:"willDetonate"`
	Forced       bool      `json:"forced"`
	Disarmed     bool      `json:"disarmed"`

	eventIndex    int     // script event settled on detonation; -1 for duds
	resolveBudget float64 // forced closure seconds remaining
}

// Flare is a ballistic decoy with drag and gravity and no damage model.
type Flare struct {
	ID       uint64    `json:"id"`
	Position geom.Vec3 `json:"position"`
	Velocity geom.Vec3 `json:"velocity"`
	Life     float64   `json:"life"`
}

func (b *Battle) nextEffectID() uint64 {
	b.effectSeq++
	return b.effectSeq
}

// spawnTracer emits one cannon round from the attacker's muzzle with a
// little cosmetic spread.
func (b *Battle) spawnTracer(attacker *CombatEntity) {
	dir := attacker.Orientation.Forward()
	if s := b.cfg.Weapons.TracerSpread; s > 0 {
		right := attacker.Orientation.Right()
		up := attacker.Orientation.Up()
		dir = dir.
			Add(right.Scale((b.rng.Float64()*2 - 1) * s)).
			Add(up.Scale((b.rng.Float64()*2 - 1) * s)).
			Normalize()
	}
	b.tracers = append(b.tracers, Tracer{
		ID:         b.nextEffectID(),
		AttackerID: attacker.ID,
		Position:   attacker.Position.Add(dir.Scale(b.cfg.Weapons.MuzzleOffset)),
		Velocity:   dir.Scale(b.cfg.Weapons.TracerSpeed),
		Life:       b.cfg.Weapons.TracerLife,
	})
}

// launchMissile fires at the attacker's current target. eventIndex is the
// granted script event for a lethal shot, -1 for a dud. The target starts
// its countermeasure program either way.
func (b *Battle) launchMissile(attacker, target *CombatEntity, willDetonate bool, eventIndex int) {
	forward := attacker.Orientation.Forward()
	b.missiles = append(b.missiles, Missile{
		ID:           b.nextEffectID(),
		AttackerID:   attacker.ID,
		TargetID:     target.ID,
		Position:     attacker.Position.Add(forward.Scale(b.cfg.Weapons.MuzzleOffset)),
		Velocity:     forward.Scale(b.cfg.Weapons.MissileSpeed),
		Life:         b.cfg.Weapons.MissileLife,
		WillDetonate: willDetonate,
		eventIndex:   eventIndex,
	})
	b.triggerFlares(target)
}

// spawnForcedMissile launches the deadline-enforcement round for one
// overdue destroy event. It launches from wherever the scripted attacker
// is now, wrecked or not, and ignores range and cone checks entirely.
func (b *Battle) spawnForcedMissile(eventIndex int, attacker, target *CombatEntity) {
	origin := target.Position.Add(geom.Vec3{Y: b.cfg.Weapons.MissileRange * 0.2})
	if attacker != nil {
		origin = attacker.Position
	}
	to := target.Position.Sub(origin).Normalize()
	if to.IsZero() {
		to = geom.Vec3{Y: -1}
	}
	b.missiles = append(b.missiles, Missile{
		ID:            b.nextEffectID(),
		AttackerID:    b.rec.event(eventIndex).Attacker,
		TargetID:      target.ID,
		Position:      origin,
		Velocity:      to.Scale(b.cfg.Weapons.MissileSpeed),
		Life:          b.cfg.Reconcile.ForcedResolveSeconds + 2,
		WillDetonate:  true,
		Forced:        true,
		eventIndex:    eventIndex,
		resolveBudget: b.cfg.Reconcile.ForcedResolveSeconds,
	})
	b.triggerFlares(target)
}

// forceMissile converts an in-flight lethal missile into a forced one
// when its event's deadline arrives before it connects.
func (b *Battle) forceMissile(m *Missile) {
	m.Forced = true
	m.resolveBudget = b.cfg.Reconcile.ForcedResolveSeconds
	if m.Life < m.resolveBudget+2 {
		m.Life = m.resolveBudget + 2
	}
}

// triggerFlares starts a countermeasure program on a missile's target.
// A program already running keeps its cadence.
func (b *Battle) triggerFlares(target *CombatEntity) {
	if target == nil || !target.Alive() || target.Countermeasure.Deploying {
		return
	}
	target.Countermeasure = FlareState{
		Deploying: true,
		PairsLeft: b.cfg.Weapons.FlarePairs,
	}
}

// updateCountermeasure advances one entity's flare program, ejecting
// pairs sideways on the pair cadence.
func (b *Battle) updateCountermeasure(e *CombatEntity, dt float64) {
	cm := &e.Countermeasure
	if !cm.Deploying {
		return
	}
	cm.PairTimer -= dt
	if cm.PairTimer > 0 {
		return
	}
	right := e.Orientation.Right()
	drop := geom.Vec3{Y: -b.cfg.Weapons.FlareEjectSpeed * 0.3}
	for _, sign := range []float64{-1, 1} {
		b.flares = append(b.flares, Flare{
			ID:       b.nextEffectID(),
			Position: e.Position,
			Velocity: e.Velocity.Scale(0.5).Add(right.Scale(sign * b.cfg.Weapons.FlareEjectSpeed)).Add(drop),
			Life:     b.cfg.Weapons.FlareLife,
		})
	}
	cm.PairsLeft--
	cm.PairTimer = b.cfg.Weapons.FlarePairInterval
	if cm.PairsLeft <= 0 {
		cm.Deploying = false
	}
}

// advanceEffects moves every live effect and drops the expired ones. It
// runs after kinematics so missiles home on this tick's positions.
func (b *Battle) advanceEffects(dt float64) {
	liveTracers := b.tracers[:0]
	for _, t := range b.tracers {
		t.Life -= dt
		if t.Life <= 0 {
			continue
		}
		t.Position = t.Position.Add(t.Velocity.Scale(dt))
		liveTracers = append(liveTracers, t)
	}
	b.tracers = liveTracers

	liveMissiles := b.missiles[:0]
	for _, m := range b.missiles {
		m.Life -= dt
		if m.Life <= 0 {
			continue
		}
		target := b.byID[m.TargetID]
		b.steerMissile(&m, target, dt)
		m.Position = m.Position.Add(m.Velocity.Scale(dt))

		if target != nil && target.Alive() &&
			m.Position.DistanceTo(target.Position) <= b.cfg.Weapons.ProximityRadius {
			if m.WillDetonate && !m.Disarmed {
				b.executeKill(m.eventIndex, m.Forced)
				continue // detonated
			}
			m.Disarmed = true
		}
		liveMissiles = append(liveMissiles, m)
	}
	b.missiles = liveMissiles

	liveFlares := b.flares[:0]
	for _, f := range b.flares {
		f.Life -= dt
		if f.Life <= 0 {
			continue
		}
		f.Velocity = f.Velocity.Scale(1 - math.Min(b.cfg.Weapons.FlareDrag*dt, 1))
		f.Velocity.Y -= b.cfg.Flight.Gravity * dt
		f.Position = f.Position.Add(f.Velocity.Scale(dt))
		liveFlares = append(liveFlares, f)
	}
	b.flares = liveFlares
}

// steerMissile updates one missile's velocity. Normal missiles pursue a
// lead point at a bounded turn rate; forced missiles close directly with
// speed scaled to the remaining resolve budget so the deadline holds no
// matter how the target evades.
func (b *Battle) steerMissile(m *Missile, target *CombatEntity, dt float64) {
	if m.Forced {
		m.resolveBudget -= dt
		if target == nil {
			return
		}
		to := target.Position.Sub(m.Position)
		dist := to.Magnitude()
		if dist < 1e-9 {
			return
		}
		budget := math.Max(m.resolveBudget, 0.15)
		speed := math.Max(b.cfg.Weapons.MissileSpeed*1.5, dist/budget*1.1)
		m.Velocity = to.Scale(speed / dist)
		return
	}
	if target == nil || !target.Alive() {
		return // fly straight until life runs out
	}
	lead := target.Position.Add(target.Velocity.Scale(b.cfg.Weapons.LeadSeconds))
	dir := geom.RotateToward(m.Velocity, lead.Sub(m.Position), b.cfg.Weapons.MissileTurnRate*dt)
	m.Velocity = dir.Scale(b.cfg.Weapons.MissileSpeed)
}
