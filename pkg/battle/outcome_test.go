package battle

import (
	"fmt"
	"reflect"
	"testing"
)

func testRoster(n int) []RosterUnit {
	units := make([]RosterUnit, n)
	for i := range units {
		units[i] = RosterUnit{
			Name:  fmt.Sprintf("Test-%d", i+1),
			Craft: CraftStats{Weapon: 10, Speed: 5, Agility: 5},
			Pilot: PilotStats{Intelligence: 50, Endurance: 50},
		}
	}
	return units
}

func testMission(count int) Mission {
	return Mission{
		Name:       "Border Sweep",
		EnemyCount: count,
		EnemyStats: Stats{Weapon: 10, Speed: 5, Agility: 5, Intelligence: 50, Endurance: 50},
		Rewards:    RewardBlock{Credits: 1000, Salvage: 12},
	}
}

func TestGenerateDecidesVictoryFromPower(t *testing.T) {
	tests := []struct {
		name        string
		roster      int
		enemies     int
		tactic      Tactic
		wantVictory bool
	}{
		{name: "even match goes to aggression", roster: 2, enemies: 2, tactic: TacticAggressive, wantVictory: true},
		{name: "even match holds on defense", roster: 2, enemies: 2, tactic: TacticDefensive, wantVictory: true},
		{name: "outnumbered three to two", roster: 2, enemies: 3, tactic: TacticAggressive, wantVictory: false},
		{name: "outnumbered and defensive", roster: 2, enemies: 3, tactic: TacticDefensive, wantVictory: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := GenerateOutcome(nil, Input{
				Roster:  testRoster(tt.roster),
				Mission: testMission(tt.enemies),
				Tactic:  tt.tactic,
				Label:   tt.name,
			})
			if err != nil {
				t.Fatalf("GenerateOutcome failed: %v", err)
			}
			if out.Results.Victory != tt.wantVictory {
				t.Errorf("Expected victory=%v, got %v", tt.wantVictory, out.Results.Victory)
			}
		})
	}
}

func TestGenerateDegenerateSides(t *testing.T) {
	out, err := GenerateOutcome(nil, Input{
		Roster:  testRoster(2),
		Mission: testMission(0),
		Tactic:  TacticAggressive,
		Label:   "no-contact",
	})
	if err != nil {
		t.Fatalf("GenerateOutcome failed for empty mission: %v", err)
	}
	if len(out.Script.Events) != 0 {
		t.Errorf("Expected empty script, got %d events", len(out.Script.Events))
	}
	if !out.Results.Victory {
		t.Errorf("Expected victory against an empty mission")
	}
	if out.Results.SurvivingEnemy != 0 || out.Results.DestroyedEnemy != 0 || out.Results.EscapedEnemy != 0 {
		t.Errorf("Expected zeroed enemy counts, got surviving=%d destroyed=%d escaped=%d",
			out.Results.SurvivingEnemy, out.Results.DestroyedEnemy, out.Results.EscapedEnemy)
	}
	if out.Results.SurvivingAllied != 2 {
		t.Errorf("Expected 2 allied survivors, got %d", out.Results.SurvivingAllied)
	}

	out, err = GenerateOutcome(nil, Input{
		Mission: testMission(3),
		Tactic:  TacticAggressive,
		Label:   "no-roster",
	})
	if err != nil {
		t.Fatalf("GenerateOutcome failed for empty roster: %v", err)
	}
	if out.Results.Victory {
		t.Errorf("Expected defeat with an empty roster")
	}
	if len(out.Script.Events) != 0 {
		t.Errorf("Expected empty script, got %d events", len(out.Script.Events))
	}
}

func TestGeneratedScriptInvariants(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		rosterSize := 2 + int(seed%3)
		enemyCount := 2 + int(seed%4)
		out, err := GenerateOutcome(nil, Input{
			Roster:  testRoster(rosterSize),
			Mission: testMission(enemyCount),
			Tactic:  TacticAggressive,
			Label:   "invariants",
			Seed:    seed,
		})
		if err != nil {
			t.Fatalf("seed %d: GenerateOutcome failed: %v", seed, err)
		}
		r := out.Results

		if !out.Script.Sorted() {
			t.Errorf("seed %d: script is not sorted by timestamp", seed)
		}

		if got := r.SurvivingAllied + r.DestroyedAllied + r.EscapedAllied; got != rosterSize {
			t.Errorf("seed %d: allied conservation broken: %d+%d+%d != %d",
				seed, r.SurvivingAllied, r.DestroyedAllied, r.EscapedAllied, rosterSize)
		}
		if got := r.SurvivingEnemy + r.DestroyedEnemy + r.EscapedEnemy; got != enemyCount {
			t.Errorf("seed %d: enemy conservation broken: %d+%d+%d != %d",
				seed, r.SurvivingEnemy, r.DestroyedEnemy, r.EscapedEnemy, enemyCount)
		}

		// The winning side always keeps at least one unit in the fight.
		if r.Victory && r.SurvivingAllied < 1 {
			t.Errorf("seed %d: victory with no allied survivors", seed)
		}
		if !r.Victory && r.SurvivingEnemy < 1 {
			t.Errorf("seed %d: defeat with no enemy survivors", seed)
		}

		destroyed := map[EntityID]float64{}
		for _, ev := range out.Script.Events {
			switch ev.Type {
			case EventDestroy:
				if _, dup := destroyed[ev.Target]; dup {
					t.Errorf("seed %d: %s destroyed twice", seed, ev.Target)
				}
				destroyed[ev.Target] = ev.Timestamp
			case EventHit, EventMiss:
				if at, dead := destroyed[ev.Attacker]; dead && ev.Timestamp > at {
					t.Errorf("seed %d: destroyed unit %s attacks at %.2f after dying at %.2f",
						seed, ev.Attacker, ev.Timestamp, at)
				}
			case EventEscape:
				if _, dead := destroyed[ev.Attacker]; dead {
					t.Errorf("seed %d: destroyed unit %s escapes", seed, ev.Attacker)
				}
			}
		}
	}
}

func TestGenerateDeterministicForSeed(t *testing.T) {
	in := Input{
		Roster:  testRoster(3),
		Mission: testMission(4),
		Tactic:  TacticDefensive,
		Label:   "repeatable",
		Seed:    7,
	}
	first, err := GenerateOutcome(nil, in)
	if err != nil {
		t.Fatalf("GenerateOutcome failed: %v", err)
	}
	second, err := GenerateOutcome(nil, in)
	if err != nil {
		t.Fatalf("GenerateOutcome failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Same label and seed produced different outcomes")
	}
}

func TestRewardScaling(t *testing.T) {
	win, err := GenerateOutcome(nil, Input{
		Roster:  testRoster(3),
		Mission: testMission(2),
		Tactic:  TacticAggressive,
		Label:   "payday",
	})
	if err != nil {
		t.Fatalf("GenerateOutcome failed: %v", err)
	}
	if !win.Results.Victory {
		t.Fatalf("Expected a victory setup")
	}
	if win.Results.Credits != 1000 || win.Results.Salvage != 12 {
		t.Errorf("Expected full rewards 1000/12, got %d/%d", win.Results.Credits, win.Results.Salvage)
	}

	loss, err := GenerateOutcome(nil, Input{
		Roster:  testRoster(1),
		Mission: testMission(4),
		Tactic:  TacticDefensive,
		Label:   "rout",
	})
	if err != nil {
		t.Fatalf("GenerateOutcome failed: %v", err)
	}
	if loss.Results.Victory {
		t.Fatalf("Expected a defeat setup")
	}
	if loss.Results.Credits != 300 {
		t.Errorf("Expected defeat credits 300, got %d", loss.Results.Credits)
	}
	if loss.Results.Salvage != 4 {
		t.Errorf("Expected defeat salvage 4, got %d", loss.Results.Salvage)
	}
}

func TestUnitResultsMatchCounts(t *testing.T) {
	out, err := GenerateOutcome(nil, Input{
		Roster:  testRoster(3),
		Mission: testMission(3),
		Tactic:  TacticAggressive,
		Label:   "lines",
		Seed:    11,
	})
	if err != nil {
		t.Fatalf("GenerateOutcome failed: %v", err)
	}
	if len(out.Results.Units) != 6 {
		t.Fatalf("Expected 6 unit lines, got %d", len(out.Results.Units))
	}
	surviving, destroyed, escaped := 0, 0, 0
	for _, u := range out.Results.Units {
		if u.Team != TeamAllied {
			continue
		}
		switch {
		case u.Escaped:
			escaped++
		case u.Survived:
			surviving++
		default:
			destroyed++
		}
	}
	r := out.Results
	if surviving != r.SurvivingAllied || destroyed != r.DestroyedAllied || escaped != r.EscapedAllied {
		t.Errorf("Unit lines disagree with counts: %d/%d/%d vs %d/%d/%d",
			surviving, destroyed, escaped, r.SurvivingAllied, r.DestroyedAllied, r.EscapedAllied)
	}
}

func TestEscapesLandBeforeDisengage(t *testing.T) {
	cfg := DefaultTuning()
	sawEscape := false
	for seed := int64(0); seed < 30; seed++ {
		out, err := GenerateOutcome(cfg, Input{
			Roster:  testRoster(6),
			Mission: testMission(3),
			Tactic:  TacticAggressive,
			Label:   "escape-window",
			Seed:    seed,
		})
		if err != nil {
			t.Fatalf("seed %d: GenerateOutcome failed: %v", seed, err)
		}
		cutoff := disengageTime(cfg, &out.Script)
		for _, ev := range out.Script.Events {
			if ev.Type != EventEscape {
				continue
			}
			sawEscape = true
			if ev.Timestamp > cutoff {
				t.Errorf("seed %d: escape at %.2f lands after disengage at %.2f", seed, ev.Timestamp, cutoff)
			}
		}
	}
	if !sawEscape {
		t.Errorf("Expected at least one escape across 30 seeds")
	}
}
