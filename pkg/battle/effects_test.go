package battle

import "testing"

// effectsSandbox builds a 1v1 battle with an empty script so nothing fires
// or dies unless the test arranges it.
func effectsSandbox(t *testing.T, obs Observer) *Battle {
	t.Helper()
	b, err := New(nil, Input{
		Roster:      testRoster(1),
		Mission:     testMission(1),
		Tactic:      TacticAggressive,
		Label:       "effects",
		Precomputed: &Outcome{Results: BattleResults{Victory: true}},
		Observer:    obs,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return b
}

func TestDudMissileDisarmsOnProximity(t *testing.T) {
	b := effectsSandbox(t, nil)
	attacker := b.byID["allied-0"]
	target := b.byID["enemy-0"]
	target.Position = attacker.Position.Add(attacker.Orientation.Forward().Scale(300))

	b.launchMissile(attacker, target, false, -1)
	if len(b.missiles) != 1 {
		t.Fatalf("Expected 1 missile in flight, got %d", len(b.missiles))
	}

	for i := 0; i < 180 && !b.missiles[0].Disarmed; i++ {
		b.advanceEffects(tick)
	}
	if !b.missiles[0].Disarmed {
		t.Fatalf("Expected the dud to disarm on proximity")
	}
	if !target.Alive() {
		t.Errorf("A dud missile must never harm its target")
	}
	if len(b.missiles) != 1 {
		t.Errorf("Expected the disarmed missile to fly on, got %d missiles", len(b.missiles))
	}
}

func TestLethalMissileDetonatesAndSettles(t *testing.T) {
	obs := &recordingObserver{}
	b, err := New(nil, Input{
		Roster:      testRoster(1),
		Mission:     testMission(1),
		Tactic:      TacticAggressive,
		Label:       "lethal",
		Precomputed: precomputedKill(50),
		Observer:    obs,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	attacker := b.byID["allied-0"]
	target := b.byID["enemy-0"]
	target.Position = attacker.Position.Add(attacker.Orientation.Forward().Scale(300))

	b.launchMissile(attacker, target, true, 0)
	for i := 0; i < 180 && target.Alive(); i++ {
		b.advanceEffects(tick)
	}

	if !target.IsWrecked {
		t.Fatalf("Expected the lethal missile to wreck its target")
	}
	if len(b.missiles) != 0 {
		t.Errorf("Expected the missile consumed on detonation, got %d", len(b.missiles))
	}
	if got := b.rec.pendingDestroys(); got != 0 {
		t.Errorf("Expected the script event settled, %d still pending", got)
	}
	kills := obs.destroys()
	if len(kills) != 1 {
		t.Fatalf("Expected 1 executed destroy, got %d", len(kills))
	}
	if kills[0].Forced {
		t.Errorf("A missile connecting on its own is not a forced kill")
	}
}

func TestForcedMissileConvergesWithinBudget(t *testing.T) {
	b, err := New(nil, Input{
		Roster:      testRoster(1),
		Mission:     testMission(1),
		Tactic:      TacticAggressive,
		Label:       "forced",
		Precomputed: precomputedKill(50),
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	attacker := b.byID["allied-0"]
	target := b.byID["enemy-0"]

	b.spawnForcedMissile(0, attacker, target)
	steps := 0
	for ; steps < 600 && target.Alive(); steps++ {
		b.advanceEffects(tick)
	}
	if !target.IsWrecked {
		t.Fatalf("Forced missile never connected")
	}
	budget := b.cfg.Reconcile.ForcedResolveSeconds + 0.35
	if took := float64(steps) * tick; took > budget {
		t.Errorf("Forced missile took %.2fs, budget is %.2fs", took, budget)
	}
}

func TestTracerBurstIsCosmetic(t *testing.T) {
	b := effectsSandbox(t, nil)
	attacker := b.byID["allied-0"]
	target := b.byID["enemy-0"]

	attacker.Burst = BurstState{
		Active:     true,
		BurstsLeft: b.cfg.Weapons.BurstCount,
		RoundsLeft: b.cfg.Weapons.RoundsPerBurst,
		EventIndex: -1,
	}

	sawTracer := false
	for b.Elapsed() < 3.0 {
		b.Advance(tick)
		if len(b.Snapshot().Tracers) > 0 {
			sawTracer = true
		}
	}
	if !sawTracer {
		t.Fatalf("Expected tracer rounds from the burst")
	}
	if got := len(b.Snapshot().Tracers); got != 0 {
		t.Errorf("Expected all tracers expired by 3s, got %d", got)
	}
	if attacker.Burst.Active {
		t.Errorf("Expected the burst sequence to finish")
	}
	if !target.Alive() {
		t.Errorf("A burst without a granted kill must stay cosmetic")
	}
}

func TestFlareProgramEjectsPairs(t *testing.T) {
	b := effectsSandbox(t, nil)
	attacker := b.byID["allied-0"]
	target := b.byID["enemy-0"]

	b.launchMissile(attacker, target, false, -1)
	if !target.Countermeasure.Deploying {
		t.Fatalf("Expected the launch to start the target's flare program")
	}

	advanceTo(b, 1.0)
	want := 2 * b.cfg.Weapons.FlarePairs
	if got := len(b.Snapshot().Flares); got != want {
		t.Errorf("Expected %d flares in the air at 1s, got %d", want, got)
	}
	if target.Countermeasure.Deploying {
		t.Errorf("Expected the program finished after all pairs ejected")
	}

	advanceTo(b, 5.5)
	if got := len(b.Snapshot().Flares); got != 0 {
		t.Errorf("Expected all flares expired by 5.5s, got %d", got)
	}
}
