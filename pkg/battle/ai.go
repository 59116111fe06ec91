package battle

import (
	"math"

	"github.com/talonworks/sortie/pkg/geom"
)

// updateTargeting refreshes every live entity's target. The reconciler's
// cinematic override wins outright; otherwise allied units hunt the
// nearest living enemy, enemy leaders pick a random living allied unit
// and stay on it, and wingmen fly on their leader.
func (b *Battle) updateTargeting() {
	for _, e := range b.entities {
		if !e.Alive() || e.IsEscaping {
			continue
		}
		if e.CinematicKillTargetID != "" {
			e.TargetID = e.CinematicKillTargetID
			continue
		}
		if current := b.byID[e.TargetID]; current != nil && current.Alive() && !current.IsEscaping {
			continue
		}
		e.TargetID = b.pickTarget(e)
	}
}

func (b *Battle) pickTarget(e *CombatEntity) EntityID {
	if e.Team == TeamAllied {
		var best EntityID
		bestDist := math.MaxFloat64
		for _, other := range b.entities {
			if other.Team != TeamEnemy || !other.Alive() || other.IsEscaping {
				continue
			}
			if d := e.Position.DistanceTo(other.Position); d < bestDist {
				best, bestDist = other.ID, d
			}
		}
		return best
	}
	if e.PartnerID != "" {
		return e.PartnerID
	}
	var pool []EntityID
	for _, other := range b.entities {
		if other.Team == TeamAllied && other.Alive() && !other.IsEscaping {
			pool = append(pool, other.ID)
		}
	}
	if len(pool) == 0 {
		return ""
	}
	return pool[b.rng.Intn(len(pool))]
}

// promoteLeader hands a dying enemy leader's squad to its senior surviving
// wingman, which inherits the leader's target; the rest of the squad
// re-links to the promoted unit. Callers invoke this before the leader's
// state is cleared by the wreck transition.
func (b *Battle) promoteLeader(dying *CombatEntity) {
	if !dying.IsLeader() {
		return
	}
	var successor *CombatEntity
	for _, e := range b.entities {
		if e.Team != TeamEnemy || !e.Alive() || e == dying || e.PartnerID != dying.ID {
			continue
		}
		if successor == nil || e.Slot < successor.Slot {
			successor = e
		}
	}
	if successor == nil {
		return
	}
	successor.PartnerID = ""
	if dying.TargetID != "" && dying.TargetID != successor.ID {
		successor.TargetID = dying.TargetID
	}
	for _, e := range b.entities {
		if e.Team == TeamEnemy && e.Alive() && e != successor && e.PartnerID == dying.ID {
			e.PartnerID = successor.ID
			e.TargetID = successor.ID
		}
	}
}

// updateKinematics steers and moves every entity. Wrecks fall under
// ballistics; live units turn toward their look point, flock with their
// squadron (allied only), ease velocity toward flight speed and integrate.
func (b *Battle) updateKinematics(dt float64) {
	center, haveCenter := b.alliedCenter()
	for _, e := range b.entities {
		if e.IsDestroyed {
			continue
		}
		if e.IsWrecked {
			b.updateWreck(e, dt)
			continue
		}

		b.steerEntity(e, b.lookPoint(e), dt)

		desired := e.Orientation.Forward().Scale(e.MaxSpeed(b.cfg))
		if e.Team == TeamAllied && !e.IsEscaping {
			desired = desired.Add(b.flockNudge(e, center, haveCenter))
		}
		ease := math.Min(b.cfg.Flight.VelocityEaseRate*dt, 1)
		e.Velocity = e.Velocity.Lerp(desired, ease)
		e.Position = e.Position.Add(e.Velocity.Scale(dt))

		b.reflectAtBoundary(e)
	}
}

// lookPoint picks what the entity should fly toward this tick: outward
// when leaving the fight, a trail slot for wingmen on escort, otherwise
// the target itself, with straight-ahead flight as the fallback.
func (b *Battle) lookPoint(e *CombatEntity) geom.Vec3 {
	if e.IsEscaping || b.clock.phase == PhaseDisengaging {
		out := e.Position.Normalize()
		if out.IsZero() {
			out = geom.UnitZ
		}
		return e.Position.Add(out.Scale(b.cfg.Flight.EscapeDistance))
	}
	target := b.byID[e.TargetID]
	if target == nil || !target.Alive() {
		return e.Position.Add(e.Orientation.Forward().Scale(200))
	}
	if e.Team == TeamEnemy && e.PartnerID != "" && target.ID == e.PartnerID && e.CinematicKillTargetID == "" {
		behind := target.Orientation.Forward().Scale(-b.cfg.Formation.WingmanTrailDistance)
		side := b.cfg.Formation.WingmanSpacing
		if e.Slot%2 == 0 {
			side = -side
		}
		return target.Position.Add(behind).Add(target.Orientation.Right().Scale(side))
	}
	return target.Position
}

// steerEntity slerps the orientation toward the look point with an up
// hint that rolls the craft into the turn.
func (b *Battle) steerEntity(e *CombatEntity, look geom.Vec3, dt float64) {
	desired := look.Sub(e.Position)
	if desired.IsZero() {
		return
	}
	dir := desired.Normalize()
	right := e.Orientation.Right()
	up := geom.UnitY.Sub(right.Scale(dir.Dot(right) * b.cfg.Flight.BankFactor))
	want := geom.LookRotation(dir, up)
	step := clamp(e.turnRate(b.cfg)*dt, 0, 1)
	e.Orientation = e.Orientation.Slerp(want, step).Normalize()
}

// flockNudge pulls an allied unit toward the team's center of mass when
// it strays past the cohesion radius and pushes it off squadmates inside
// the separation radius with an inverse-square falloff.
func (b *Battle) flockNudge(e *CombatEntity, center geom.Vec3, haveCenter bool) geom.Vec3 {
	var nudge geom.Vec3
	if haveCenter {
		toCenter := center.Sub(e.Position)
		if d := toCenter.Magnitude(); d > b.cfg.Flight.CohesionRadius {
			nudge = nudge.Add(toCenter.Scale(b.cfg.Flight.CohesionGain / d))
		}
	}
	for _, other := range b.entities {
		if other == e || other.Team != TeamAllied || !other.Alive() {
			continue
		}
		away := e.Position.Sub(other.Position)
		d := away.Magnitude()
		if d <= 1e-9 || d >= b.cfg.Flight.SeparationRadius {
			continue
		}
		nudge = nudge.Add(away.Scale(b.cfg.Flight.SeparationGain / (d * d * d)))
	}
	return nudge
}

func (b *Battle) alliedCenter() (geom.Vec3, bool) {
	var sum geom.Vec3
	n := 0
	for _, e := range b.entities {
		if e.Team == TeamAllied && e.Alive() && !e.IsEscaping {
			sum = sum.Add(e.Position)
			n++
		}
	}
	if n == 0 {
		return geom.Vec3{}, false
	}
	return sum.Scale(1 / float64(n)), true
}

// reflectAtBoundary turns a unit back toward the arena origin once it
// crosses the world sphere. Units that are leaving on purpose, escaping
// or flying out during disengagement, are exempt.
func (b *Battle) reflectAtBoundary(e *CombatEntity) {
	if e.IsEscaping || b.clock.phase == PhaseDisengaging {
		return
	}
	dist := e.Position.Magnitude()
	if dist <= b.cfg.Flight.WorldRadius {
		return
	}
	inward := e.Position.Scale(-1 / dist)
	speed := e.Velocity.Magnitude()
	if speed == 0 {
		speed = e.MaxSpeed(b.cfg) * 0.5
	}
	e.Velocity = inward.Scale(speed)
	e.Position = e.Position.Scale(b.cfg.Flight.WorldRadius / dist)
}

// updateWreck integrates ballistic fall with drag and the spin assigned
// at the kill. A wreck that drifts past the retire boundary is marked
// destroyed.
func (b *Battle) updateWreck(e *CombatEntity, dt float64) {
	e.Velocity.Y -= b.cfg.Flight.Gravity * dt
	e.Velocity = e.Velocity.Scale(1 - math.Min(b.cfg.Flight.WreckDrag*dt, 1))
	e.Position = e.Position.Add(e.Velocity.Scale(dt))

	if rate := e.spin.Magnitude(); rate > 0 {
		e.Orientation = geom.FromAxisAngle(e.spin.Scale(1/rate), rate*dt).Mul(e.Orientation).Normalize()
	}

	if e.Position.Magnitude() > b.cfg.Flight.WorldRadius*b.cfg.Flight.WreckRetireMargin {
		e.IsDestroyed = true
	}
}

// updateWeapons runs cooldowns, advances in-progress bursts and flare
// programs, and releases new fire when an entity is lined up on a living
// opponent. Lethality is decided by the reconciler at release time.
func (b *Battle) updateWeapons(dt float64) {
	for _, e := range b.entities {
		if !e.Alive() {
			continue
		}
		b.updateCountermeasure(e, dt)
		if e.FireCooldown > 0 {
			e.FireCooldown -= dt
		}
		if e.Burst.Active {
			b.advanceBurst(e, dt)
			continue
		}
		if b.clock.phase != PhaseActive || e.IsEscaping {
			continue
		}
		b.tryRelease(e)
	}
}

// advanceBurst fires rounds on the burst cadence. When the sequence was
// granted a kill, the final round of the final burst settles the script
// event.
func (b *Battle) advanceBurst(e *CombatEntity, dt float64) {
	burst := &e.Burst
	burst.ShotTimer -= dt
	for burst.ShotTimer <= 0 {
		b.spawnTracer(e)
		burst.RoundsLeft--
		if burst.RoundsLeft > 0 {
			burst.ShotTimer += b.cfg.Weapons.RoundInterval
			continue
		}
		burst.BurstsLeft--
		if burst.BurstsLeft > 0 {
			burst.RoundsLeft = b.cfg.Weapons.RoundsPerBurst
			burst.ShotTimer += b.cfg.Weapons.BurstGap
			continue
		}
		if burst.KillShot && burst.EventIndex >= 0 {
			b.executeKill(burst.EventIndex, false)
		}
		e.Burst = BurstState{EventIndex: -1}
		return
	}
}

// tryRelease fires on the current target when it is a living opponent
// inside the firing cone with a weapon off cooldown. Range picks the
// weapon: tracer burst close in, missile at reach.
func (b *Battle) tryRelease(e *CombatEntity) {
	if e.FireCooldown > 0 {
		return
	}
	target := b.byID[e.TargetID]
	if target == nil || !target.Alive() || target.Team == e.Team {
		return
	}
	to := target.Position.Sub(e.Position)
	dist := to.Magnitude()
	if dist < 1e-9 || dist > b.cfg.Weapons.MissileRange {
		return
	}
	if e.Orientation.Forward().Dot(to.Scale(1/dist)) < b.cfg.Weapons.FireConeCos {
		return
	}

	e.FireCooldown = b.cfg.Weapons.CooldownSeconds

	if dist <= b.cfg.Weapons.TracerRange {
		idx, lethal := b.rec.grantKill(e.ID, target.ID, b.elapsed+b.burstDuration())
		if !lethal {
			idx = -1
		}
		e.Burst = BurstState{
			Active:     true,
			BurstsLeft: b.cfg.Weapons.BurstCount,
			RoundsLeft: b.cfg.Weapons.RoundsPerBurst,
			KillShot:   lethal,
			EventIndex: idx,
		}
		return
	}

	idx, lethal := b.rec.grantKill(e.ID, target.ID, b.elapsed)
	if !lethal {
		idx = -1
	}
	b.launchMissile(e, target, lethal, idx)
}

// burstDuration is the wall time of a complete burst sequence, used to
// judge whether a granted kill can land before its scripted deadline.
func (b *Battle) burstDuration() float64 {
	w := b.cfg.Weapons
	return float64(w.BurstCount*w.RoundsPerBurst)*w.RoundInterval + float64(w.BurstCount-1)*w.BurstGap
}
