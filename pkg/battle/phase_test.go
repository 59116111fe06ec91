package battle

import "testing"

func destroyScript(timestamps ...float64) *BattleScript {
	s := &BattleScript{}
	for _, ts := range timestamps {
		s.Events = append(s.Events, ScheduledEvent{
			Timestamp: ts,
			Type:      EventDestroy,
			Attacker:  "allied-0",
			Target:    "enemy-0",
		})
	}
	return s
}

func TestDisengageTime(t *testing.T) {
	cfg := DefaultTuning()
	tests := []struct {
		name   string
		script *BattleScript
		want   float64
	}{
		{name: "after last kill", script: destroyScript(20), want: 26},
		{name: "hard cap lead wins", script: destroyScript(90), want: 85},
		{name: "no kills falls back to cap", script: &BattleScript{Events: []ScheduledEvent{{Timestamp: 10, Type: EventMiss}}}, want: 85},
		{name: "degenerate script ends early", script: &BattleScript{}, want: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := disengageTime(cfg, tt.script); got != tt.want {
				t.Errorf("Expected disengage at %.1f, got %.1f", tt.want, got)
			}
		})
	}
}

func TestPhaseClockWalk(t *testing.T) {
	cfg := DefaultTuning()
	var seen []Phase
	clock := newPhaseClock(cfg, destroyScript(20), true, false, func(from, to Phase, elapsed float64) {
		seen = append(seen, to)
	})

	if clock.phase != PhasePreparing {
		t.Fatalf("Expected preparing at start, got %s", clock.phase)
	}
	clock.update(3.9)
	if clock.phase != PhasePreparing {
		t.Errorf("Expected preparing at 3.9s, got %s", clock.phase)
	}
	clock.update(4.0)
	if clock.phase != PhaseActive {
		t.Errorf("Expected active at 4.0s, got %s", clock.phase)
	}
	clock.update(25.9)
	if clock.phase != PhaseActive {
		t.Errorf("Expected active at 25.9s, got %s", clock.phase)
	}
	clock.update(26.0)
	if clock.phase != PhaseDisengaging {
		t.Errorf("Expected disengaging at 26.0s, got %s", clock.phase)
	}
	clock.update(34.0)
	if clock.phase != PhaseVictory {
		t.Errorf("Expected victory at 34.0s, got %s", clock.phase)
	}

	want := []Phase{PhaseActive, PhaseDisengaging, PhaseVictory}
	if len(seen) != len(want) {
		t.Fatalf("Expected %d transitions, got %d: %v", len(want), len(seen), seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("Transition %d: expected %s, got %s", i, want[i], seen[i])
		}
	}
}

func TestPhaseClockCascadesLargeStep(t *testing.T) {
	cfg := DefaultTuning()
	var seen []Phase
	clock := newPhaseClock(cfg, destroyScript(20), false, false, func(from, to Phase, elapsed float64) {
		seen = append(seen, to)
	})

	// One oversized jump must still walk every intermediate phase.
	clock.update(100)
	if clock.phase != PhaseDefeat {
		t.Fatalf("Expected defeat after jump, got %s", clock.phase)
	}
	want := []Phase{PhaseActive, PhaseDisengaging, PhaseDefeat}
	if len(seen) != len(want) {
		t.Fatalf("Expected %d transitions, got %d: %v", len(want), len(seen), seen)
	}
}

func TestPhaseClockForceEnd(t *testing.T) {
	cfg := DefaultTuning()
	clock := newPhaseClock(cfg, destroyScript(20), true, false, nil)
	clock.update(10)

	if !clock.forceEnd(10) {
		t.Fatalf("Expected forceEnd to transition from active")
	}
	if clock.phase != PhaseVictory {
		t.Errorf("Expected victory after forceEnd, got %s", clock.phase)
	}
	if clock.forceEnd(11) {
		t.Errorf("Expected forceEnd on a terminal clock to be a no-op")
	}
	if clock.phase != PhaseVictory {
		t.Errorf("Expected phase to stay victory, got %s", clock.phase)
	}
}

func TestPhaseClockHoldsActiveForRespawn(t *testing.T) {
	cfg := DefaultTuning()
	clock := newPhaseClock(cfg, destroyScript(20), true, true, nil)
	clock.update(500)
	if clock.phase != PhaseActive {
		t.Errorf("Expected respawn clock to hold active, got %s", clock.phase)
	}
	if !clock.forceEnd(500) {
		t.Errorf("Expected forceEnd to close a held battle")
	}
}

func TestTerminalPhases(t *testing.T) {
	for _, p := range []Phase{PhasePreparing, PhaseActive, PhaseDisengaging} {
		if p.Terminal() {
			t.Errorf("Phase %s must not be terminal", p)
		}
	}
	for _, p := range []Phase{PhaseVictory, PhaseDefeat} {
		if !p.Terminal() {
			t.Errorf("Phase %s must be terminal", p)
		}
	}
}
