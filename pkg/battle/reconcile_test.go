package battle

import "testing"

func testReconciler(events ...ScheduledEvent) *reconciler {
	return newReconciler(DefaultTuning(), &BattleScript{Events: events})
}

func TestGrantKillWindow(t *testing.T) {
	event := ScheduledEvent{Timestamp: 10, Type: EventDestroy, Attacker: "allied-0", Target: "enemy-0", Damage: 40}
	tests := []struct {
		name     string
		attacker EntityID
		target   EntityID
		at       float64
		want     bool
	}{
		{name: "inside window", attacker: "allied-0", target: "enemy-0", at: 8.2, want: true},
		{name: "window opens at grant lead", attacker: "allied-0", target: "enemy-0", at: 7.5, want: true},
		{name: "window closes at the deadline", attacker: "allied-0", target: "enemy-0", at: 10.0, want: true},
		{name: "too early", attacker: "allied-0", target: "enemy-0", at: 7.49, want: false},
		{name: "past the deadline", attacker: "allied-0", target: "enemy-0", at: 10.01, want: false},
		{name: "wrong attacker", attacker: "allied-1", target: "enemy-0", at: 9.0, want: false},
		{name: "wrong target", attacker: "allied-0", target: "enemy-1", at: 9.0, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testReconciler(event)
			idx, ok := rec.grantKill(tt.attacker, tt.target, tt.at)
			if ok != tt.want {
				t.Fatalf("Expected grant=%v, got %v", tt.want, ok)
			}
			if ok && idx != 0 {
				t.Errorf("Expected event index 0, got %d", idx)
			}
		})
	}
}

func TestGrantKillClaimsEventOnce(t *testing.T) {
	rec := testReconciler(ScheduledEvent{Timestamp: 10, Type: EventDestroy, Attacker: "allied-0", Target: "enemy-0"})
	if _, ok := rec.grantKill("allied-0", "enemy-0", 9.0); !ok {
		t.Fatalf("Expected the first grant to succeed")
	}
	if _, ok := rec.grantKill("allied-0", "enemy-0", 9.5); ok {
		t.Errorf("Expected a granted event to refuse a second claim")
	}
}

func TestMarkExecutedOnce(t *testing.T) {
	rec := testReconciler(ScheduledEvent{Timestamp: 5, Type: EventDestroy, Attacker: "allied-0", Target: "enemy-0"})
	if !rec.markExecuted(0) {
		t.Fatalf("Expected the first execution to be recorded")
	}
	if rec.markExecuted(0) {
		t.Errorf("Expected repeat execution to be refused")
	}
	if rec.markExecuted(-1) || rec.markExecuted(1) {
		t.Errorf("Expected out-of-range indexes to be refused")
	}
	if got := rec.pendingDestroys(); got != 0 {
		t.Errorf("Expected no pending destroys, got %d", got)
	}
}

func TestDueScheduledSkipsDestroys(t *testing.T) {
	rec := testReconciler(
		ScheduledEvent{Timestamp: 5, Type: EventMiss, Attacker: "enemy-0", Target: "allied-0"},
		ScheduledEvent{Timestamp: 6, Type: EventDestroy, Attacker: "allied-0", Target: "enemy-0"},
		ScheduledEvent{Timestamp: 7, Type: EventHit, Attacker: "allied-0", Target: "enemy-1", Damage: 12},
		ScheduledEvent{Timestamp: 8, Type: EventEscape, Attacker: "enemy-1"},
	)
	if due := rec.dueScheduled(4.9); len(due) != 0 {
		t.Errorf("Expected nothing due at 4.9, got %v", due)
	}
	due := rec.dueScheduled(7.5)
	if len(due) != 2 || due[0] != 0 || due[1] != 2 {
		t.Fatalf("Expected [0 2] due at 7.5, got %v", due)
	}
	rec.markExecuted(0)
	rec.markExecuted(2)
	if due := rec.dueScheduled(9); len(due) != 1 || due[0] != 3 {
		t.Errorf("Expected only the escape due at 9, got %v", due)
	}
}

func TestOverdueDestroysHonorTolerance(t *testing.T) {
	rec := testReconciler(ScheduledEvent{Timestamp: 10, Type: EventDestroy, Attacker: "allied-0", Target: "enemy-0"})
	if overdue := rec.overdueDestroys(10.04); len(overdue) != 0 {
		t.Errorf("Expected no overdue destroys inside the tolerance, got %v", overdue)
	}
	overdue := rec.overdueDestroys(10.05)
	if len(overdue) != 1 || overdue[0] != 0 {
		t.Fatalf("Expected [0] overdue at 10.05, got %v", overdue)
	}
	rec.markExecuted(0)
	if overdue := rec.overdueDestroys(11); len(overdue) != 0 {
		t.Errorf("Expected executed events to stop being overdue, got %v", overdue)
	}
}

func TestCinematicMarkersFollowLookahead(t *testing.T) {
	attacker := &CombatEntity{ID: "allied-0", Team: TeamAllied}
	victim := &CombatEntity{ID: "enemy-0", Team: TeamEnemy}
	other := &CombatEntity{ID: "enemy-1", Team: TeamEnemy}
	entities := []*CombatEntity{attacker, victim, other}
	byID := map[EntityID]*CombatEntity{"allied-0": attacker, "enemy-0": victim, "enemy-1": other}

	rec := testReconciler(
		ScheduledEvent{Timestamp: 12, Type: EventDestroy, Attacker: "allied-0", Target: "enemy-0"},
		ScheduledEvent{Timestamp: 13, Type: EventDestroy, Attacker: "allied-0", Target: "enemy-1"},
	)

	rec.assignCinematicKills(entities, byID, 7.9)
	if attacker.CinematicKillTargetID != "" || victim.IsCinematicKillTarget {
		t.Fatalf("Expected no markers outside the lookahead window")
	}

	rec.assignCinematicKills(entities, byID, 8.1)
	if attacker.CinematicKillTargetID != "enemy-0" {
		t.Fatalf("Expected the attacker steered onto enemy-0, got %q", attacker.CinematicKillTargetID)
	}
	if !victim.IsCinematicKillTarget {
		t.Errorf("Expected the victim marked")
	}

	// Both kills pending inside the window: the earlier one wins.
	rec.assignCinematicKills(entities, byID, 9.5)
	if attacker.CinematicKillTargetID != "enemy-0" {
		t.Errorf("An attacker with two pending kills must chase the earlier one, got %q", attacker.CinematicKillTargetID)
	}
	if other.IsCinematicKillTarget {
		t.Errorf("Expected the later kill's victim unmarked while the earlier is pending")
	}

	rec.markExecuted(0)
	rec.assignCinematicKills(entities, byID, 9.6)
	if victim.IsCinematicKillTarget {
		t.Errorf("Expected executed events to release their markers")
	}
	if attacker.CinematicKillTargetID != "enemy-1" {
		t.Errorf("Expected the attacker re-steered onto its next kill, got %q", attacker.CinematicKillTargetID)
	}
}
