package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/talonworks/sortie/pkg/battle"
)

func testInput(obs battle.Observer) battle.Input {
	return battle.Input{
		Roster: []battle.RosterUnit{{
			Name:  "Kestrel-1",
			Craft: battle.CraftStats{Weapon: 40, Speed: 40, Agility: 40},
			Pilot: battle.PilotStats{Intelligence: 20, Endurance: 20},
		}},
		Mission: battle.Mission{
			Name:       "debrief-proving",
			EnemyCount: 1,
			EnemyStats: battle.Stats{Weapon: 20, Speed: 20, Agility: 20, Intelligence: 10, Endurance: 10},
			Rewards:    battle.RewardBlock{Credits: 900, Salvage: 6},
		},
		Tactic:   battle.TacticAggressive,
		Label:    "debrief-proving",
		Seed:     7,
		Observer: obs,
	}
}

func TestBattleLogRecordsEventsAndPhases(t *testing.T) {
	log := NewBattleLog(false)

	log.OnEvent(battle.ExecutedEvent{
		Event: battle.ScheduledEvent{
			Timestamp: 8.0,
			Type:      battle.EventHit,
			Attacker:  "allied-0",
			Target:    "enemy-0",
			Damage:    22,
		},
		Index: 0,
		At:    8.01,
	})
	log.OnEvent(battle.ExecutedEvent{
		Event: battle.ScheduledEvent{
			Timestamp: 12.0,
			Type:      battle.EventDestroy,
			Attacker:  "allied-0",
			Target:    "enemy-0",
			Damage:    100,
		},
		Index:  1,
		Forced: true,
		At:     12.05,
	})
	log.OnPhaseChange(battle.PhasePreparing, battle.PhaseActive, 4.0)

	events := log.Events()
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if events[0].Type != battle.EventHit || events[0].Damage != 22 {
		t.Errorf("Expected hit for 22 damage, got %+v", events[0])
	}
	if !events[1].Forced {
		t.Error("Expected second event to be marked forced")
	}
	if events[1].At != 12.05 {
		t.Errorf("Expected event at 12.05, got %v", events[1].At)
	}

	phases := log.Phases()
	if len(phases) != 1 {
		t.Fatalf("Expected 1 phase change, got %d", len(phases))
	}
	if phases[0].From != battle.PhasePreparing || phases[0].To != battle.PhaseActive {
		t.Errorf("Expected preparing -> active, got %s -> %s", phases[0].From, phases[0].To)
	}

	// Returned slices are copies.
	events[0].Damage = 999
	if log.Events()[0].Damage != 22 {
		t.Error("Expected Events to return a copy")
	}
}

func TestNewDebriefRequiresTerminalBattle(t *testing.T) {
	log := NewBattleLog(false)
	in := testInput(log)

	b, err := battle.New(nil, in)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if _, err := NewDebrief(in, b, log); err == nil {
		t.Fatal("Expected error for a battle still in progress")
	}

	b.ForceEnd()

	d, err := NewDebrief(in, b, log)
	if err != nil {
		t.Fatalf("NewDebrief returned error: %v", err)
	}
	if d.ID == "" {
		t.Error("Expected a debrief ID")
	}
	if d.Scenario != "debrief-proving" {
		t.Errorf("Expected scenario debrief-proving, got %s", d.Scenario)
	}
	if d.Seed != 7 {
		t.Errorf("Expected seed 7, got %d", d.Seed)
	}

	results, _ := b.Results()
	if d.Victory != results.Victory {
		t.Errorf("Expected victory %v, got %v", results.Victory, d.Victory)
	}
	if len(d.Timeline) != len(log.Events()) {
		t.Errorf("Expected %d timeline entries, got %d", len(log.Events()), len(d.Timeline))
	}
}

func sampleDebrief() *Debrief {
	return &Debrief{
		ID:              "d1f0a0aa-0000-4000-8000-000000000000",
		Scenario:        "patrol-intercept",
		Tactic:          battle.TacticAggressive,
		Seed:            42,
		Victory:         true,
		DurationSeconds: 95.5,
		Results: battle.BattleResults{
			Victory:         true,
			SurvivingAllied: 2,
			DestroyedAllied: 1,
			DestroyedEnemy:  3,
			DurationSeconds: 95.5,
			Credits:         1200,
			Salvage:         8,
			Units: []battle.UnitResult{
				{ID: "allied-0", Name: "Kestrel-1", Team: battle.TeamAllied, Kills: 2, DamageDealt: 240, Survived: true},
				{ID: "allied-1", Name: "Kestrel-2", Team: battle.TeamAllied, Kills: 1, DamageDealt: 130},
				{ID: "enemy-0", Name: "Bandit-1", Team: battle.TeamEnemy, DamageDealt: 80, Escaped: true},
			},
		},
		Timeline: []LogEntry{
			{At: 9.2, Type: battle.EventHit, Attacker: "allied-0", Target: "enemy-0", Damage: 30},
			{At: 14.8, Type: battle.EventDestroy, Attacker: "allied-0", Target: "enemy-1", Forced: true},
			{At: 20.1, Type: battle.EventEscape, Attacker: "enemy-0"},
		},
	}
}

func TestDebriefMarkdown(t *testing.T) {
	md := sampleDebrief().Markdown()

	for _, want := range []string{
		"# Battle Debrief",
		"**Scenario:** patrol-intercept",
		"**Result:** Victory",
		"## Forces",
		"| Kestrel-1 | allied | 2 | 240 | survived |",
		"| Kestrel-2 | allied | 1 | 130 | destroyed |",
		"| Bandit-1 | enemy | 0 | 80 | escaped |",
		"destroys enemy-1 (forced)",
		"enemy-0 breaks off",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Expected markdown to contain %q", want)
		}
	}
}

func TestDebriefWriteJSON(t *testing.T) {
	d := sampleDebrief()
	path := filepath.Join(t.TempDir(), "debrief.json")

	if err := d.WriteJSON(path); err != nil {
		t.Fatalf("WriteJSON returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read debrief: %v", err)
	}

	var loaded Debrief
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("Failed to unmarshal debrief: %v", err)
	}
	if loaded.ID != d.ID {
		t.Errorf("Expected ID %s, got %s", d.ID, loaded.ID)
	}
	if loaded.Results.Credits != 1200 {
		t.Errorf("Expected 1200 credits, got %d", loaded.Results.Credits)
	}
	if len(loaded.Timeline) != 3 {
		t.Errorf("Expected 3 timeline entries, got %d", len(loaded.Timeline))
	}
	if !loaded.Timeline[1].Forced {
		t.Error("Expected forced flag to survive the round trip")
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00.0"},
		{7.52, "00:07.5"},
		{65.0, "01:05.0"},
		{125.96, "02:06.0"},
	}

	for _, tt := range tests {
		if got := formatElapsed(tt.seconds); got != tt.want {
			t.Errorf("formatElapsed(%v): expected %s, got %s", tt.seconds, tt.want, got)
		}
	}
}
