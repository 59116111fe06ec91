package battle

// Phase is the battle lifecycle state.
type Phase string

const (
	PhasePreparing   Phase = "preparing"
	PhaseActive      Phase = "active"
	PhaseDisengaging Phase = "disengaging"
	PhaseVictory     Phase = "victory"
	PhaseDefeat      Phase = "defeat"
)

// Terminal reports whether the phase ends the battle.
func (p Phase) Terminal() bool {
	return p == PhaseVictory || p == PhaseDefeat
}

// disengageTime returns the battle second at which disengagement begins:
// a fixed delay after the last scripted kill, or a fixed lead before the
// hard cap, whichever comes first. An empty script means a degenerate
// battle, which winds down right after the preparation phase.
func disengageTime(cfg *Tuning, script *BattleScript) float64 {
	if len(script.Events) == 0 {
		return cfg.Phases.PrepSeconds + 1
	}
	at := cfg.Phases.HardCapSeconds - cfg.Phases.DisengageLeadSeconds
	if last, ok := script.LastDestroyTime(); ok {
		if t := last + cfg.Phases.DisengageAfterLastKillSeconds; t < at {
			at = t
		}
	}
	if at < cfg.Phases.PrepSeconds {
		at = cfg.Phases.PrepSeconds
	}
	return at
}

// phaseClock walks the battle through preparing, active, disengaging and
// the terminal phase the generator decided.
type phaseClock struct {
	cfg         *Tuning
	victory     bool
	phase       Phase
	phaseStart  float64 // battle seconds when the current phase began
	disengageAt float64
	holdActive  bool // respawn battles stay active until force-ended
	changed     func(from, to Phase, elapsed float64)
}

func newPhaseClock(cfg *Tuning, script *BattleScript, victory, holdActive bool, changed func(from, to Phase, elapsed float64)) *phaseClock {
	return &phaseClock{
		cfg:         cfg,
		victory:     victory,
		phase:       PhasePreparing,
		disengageAt: disengageTime(cfg, script),
		holdActive:  holdActive,
		changed:     changed,
	}
}

// update advances the clock to the given battle time. Transitions cascade
// within one call so an oversized timestep cannot skip a phase.
func (c *phaseClock) update(elapsed float64) {
	for !c.phase.Terminal() {
		switch c.phase {
		case PhasePreparing:
			if elapsed < c.cfg.Phases.PrepSeconds {
				return
			}
			c.transition(PhaseActive, c.cfg.Phases.PrepSeconds, elapsed)
		case PhaseActive:
			if c.holdActive || elapsed < c.disengageAt {
				return
			}
			c.transition(PhaseDisengaging, c.disengageAt, elapsed)
		case PhaseDisengaging:
			endAt := c.disengageAt + c.cfg.Phases.DisengageSeconds
			if elapsed < endAt {
				return
			}
			c.transition(c.terminalPhase(), endAt, elapsed)
		}
	}
}

// forceEnd jumps straight to the decided terminal phase and reports
// whether a transition happened. Once terminal it is a no-op.
func (c *phaseClock) forceEnd(elapsed float64) bool {
	if c.phase.Terminal() {
		return false
	}
	c.transition(c.terminalPhase(), elapsed, elapsed)
	return true
}

func (c *phaseClock) terminalPhase() Phase {
	if c.victory {
		return PhaseVictory
	}
	return PhaseDefeat
}

func (c *phaseClock) transition(to Phase, at, elapsed float64) {
	from := c.phase
	c.phase = to
	c.phaseStart = at
	if c.changed != nil {
		c.changed(from, to, elapsed)
	}
}

// phaseElapsed returns seconds spent in the current phase.
func (c *phaseClock) phaseElapsed(elapsed float64) float64 {
	if d := elapsed - c.phaseStart; d > 0 {
		return d
	}
	return 0
}

// timeToDisengage returns seconds until disengagement begins, zero once
// past it or when the clock is held active for respawn play.
func (c *phaseClock) timeToDisengage(elapsed float64) float64 {
	if c.holdActive || (c.phase != PhasePreparing && c.phase != PhaseActive) {
		return 0
	}
	if d := c.disengageAt - elapsed; d > 0 {
		return d
	}
	return 0
}
