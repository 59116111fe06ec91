package battle

// reconciler makes the emergent AI's fire causally match the pre-decided
// script. It owns the execution bookkeeping: granted marks a destroy event
// claimed by an in-flight lethal shot, executed marks it consumed. An
// event can be granted at most once and executed at most once, and only
// execution wrecks the target.
type reconciler struct {
	cfg      *Tuning
	events   []ScheduledEvent
	executed []bool
	granted  []bool
}

func newReconciler(cfg *Tuning, script *BattleScript) *reconciler {
	return &reconciler{
		cfg:      cfg,
		events:   script.Events,
		executed: make([]bool, len(script.Events)),
		granted:  make([]bool, len(script.Events)),
	}
}

// assignCinematicKills rewrites the per-tick script-coupling markers. For
// every pending destroy event inside the lookahead window, the attacker is
// steered onto the scripted target (with a boosted turn rate) and the
// target flies impaired. Markers are cleared first so stale pairs from
// executed events never linger.
func (r *reconciler) assignCinematicKills(entities []*CombatEntity, byID map[EntityID]*CombatEntity, elapsed float64) {
	for _, e := range entities {
		e.CinematicKillTargetID = ""
		e.IsCinematicKillTarget = false
	}
	for i, ev := range r.events {
		if ev.Timestamp > elapsed+r.cfg.Reconcile.LookaheadSeconds {
			break
		}
		if r.executed[i] || ev.Type != EventDestroy {
			continue
		}
		attacker, target := byID[ev.Attacker], byID[ev.Target]
		if attacker == nil || target == nil || !attacker.Alive() || !target.Alive() {
			continue
		}
		// Events run in timestamp order, so an attacker with two pending
		// kills chases the earlier one.
		if attacker.CinematicKillTargetID != "" {
			continue
		}
		attacker.CinematicKillTargetID = ev.Target
		target.IsCinematicKillTarget = true
	}
}

// grantKill consumes the pending destroy event for attacker on target if
// the lethal moment lands inside the natural grant window: no earlier than
// the grant lead, no later than the scripted deadline. For tracer bursts
// the moment is the final round's landing time; for missiles it is the
// launch time, with deadline enforcement mopping up slow flights.
func (r *reconciler) grantKill(attackerID, targetID EntityID, at float64) (int, bool) {
	for i, ev := range r.events {
		if r.executed[i] || r.granted[i] || ev.Type != EventDestroy {
			continue
		}
		if ev.Attacker != attackerID || ev.Target != targetID {
			continue
		}
		if at < ev.Timestamp-r.cfg.Reconcile.NaturalGrantSeconds || at > ev.Timestamp {
			continue
		}
		r.granted[i] = true
		return i, true
	}
	return 0, false
}

// dueScheduled returns the indexes of unexecuted hit, miss and escape
// events whose timestamps have arrived. Destroy events never execute by
// timestamp alone; they land through granted fire or deadline enforcement.
func (r *reconciler) dueScheduled(elapsed float64) []int {
	var due []int
	for i, ev := range r.events {
		if ev.Timestamp > elapsed {
			break
		}
		if r.executed[i] || ev.Type == EventDestroy {
			continue
		}
		due = append(due, i)
	}
	return due
}

// overdueDestroys returns unexecuted destroy events whose deadline
// tolerance has passed, in timestamp order.
func (r *reconciler) overdueDestroys(elapsed float64) []int {
	var overdue []int
	for i, ev := range r.events {
		if ev.Timestamp > elapsed-r.cfg.Reconcile.DeadlineToleranceSeconds {
			break
		}
		if r.executed[i] || ev.Type != EventDestroy {
			continue
		}
		overdue = append(overdue, i)
	}
	return overdue
}

// markExecuted records consumption of one event. It reports false when
// the event was already consumed, which makes double execution
// structurally impossible for callers that honor the return.
func (r *reconciler) markExecuted(idx int) bool {
	if idx < 0 || idx >= len(r.executed) || r.executed[idx] {
		return false
	}
	r.executed[idx] = true
	return true
}

func (r *reconciler) event(idx int) ScheduledEvent {
	return r.events[idx]
}

// pendingDestroys reports how many destroy events remain unexecuted.
func (r *reconciler) pendingDestroys() int {
	n := 0
	for i, ev := range r.events {
		if ev.Type == EventDestroy && !r.executed[i] {
			n++
		}
	}
	return n
}
