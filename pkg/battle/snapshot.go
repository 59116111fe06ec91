package battle

import "github.com/talonworks/sortie/pkg/geom"

// EntitySnapshot is the per-unit slice of the render contract.
type EntitySnapshot struct {
	ID          EntityID  `json:"id"`
	Name        string    `json:"name"`
	Team        Team      `json:"team"`
	Position    geom.Vec3 `json:"position"`
	Velocity    geom.Vec3 `json:"velocity"`
	Orientation geom.Quat `json:"orientation"`
	Health      float64   `json:"health"`
	MaxHealth   float64   `json:"maxHealth"`
	TargetID    EntityID  `json:"targetId,omitempty"`
	PartnerID   EntityID  `json:"partnerId,omitempty"`
	IsDestroyed bool      `json:"isDestroyed"`
	IsWrecked   bool      `json:"isWrecked"`
	IsEscaping  bool      `json:"isEscaping"`

	// Camera hints: the pair currently living out a scripted kill.
	CinematicKillTargetID EntityID `json:"cinematicKillTargetId,omitempty"`
	IsCinematicKillTarget bool     `json:"isCinematicKillTarget,omitempty"`
}

// Snapshot is the sole contract with the rendering layer: phase, timers,
// every entity's kinematic and status fields and the three effect
// collections. The battle replaces it wholesale once per tick, so callers
// may hold one without racing the engine.
type Snapshot struct {
	Phase           Phase   `json:"phase"`
	Elapsed         float64 `json:"elapsed"`
	PhaseElapsed    float64 `json:"phaseElapsed"`
	TimeToDisengage float64 `json:"timeToDisengage"`

	Entities []EntitySnapshot `json:"entities"`
	Tracers  []Tracer         `json:"tracers"`
	Missiles []Missile        `json:"missiles"`
	Flares   []Flare          `json:"flares"`
}

func (b *Battle) rebuildSnapshot() {
	snap := Snapshot{
		Phase:           b.clock.phase,
		Elapsed:         b.elapsed,
		PhaseElapsed:    b.clock.phaseElapsed(b.elapsed),
		TimeToDisengage: b.clock.timeToDisengage(b.elapsed),
		Entities:        make([]EntitySnapshot, 0, len(b.entities)),
		Tracers:         append([]Tracer(nil), b.tracers...),
		Missiles:        append([]Missile(nil), b.missiles...),
		Flares:          append([]Flare(nil), b.flares...),
	}
	for _, e := range b.entities {
		snap.Entities = append(snap.Entities, EntitySnapshot{
			ID:                    e.ID,
			Name:                  e.Name,
			Team:                  e.Team,
			Position:              e.Position,
			Velocity:              e.Velocity,
			Orientation:           e.Orientation,
			Health:                e.Health,
			MaxHealth:             e.MaxHealth,
			TargetID:              e.TargetID,
			PartnerID:             e.PartnerID,
			IsDestroyed:           e.IsDestroyed,
			IsWrecked:             e.IsWrecked,
			IsEscaping:            e.IsEscaping,
			CinematicKillTargetID: e.CinematicKillTargetID,
			IsCinematicKillTarget: e.IsCinematicKillTarget,
		})
	}
	b.snapshot = snap
}
