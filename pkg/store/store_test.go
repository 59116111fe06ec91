package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/talonworks/sortie/pkg/battle"
	"github.com/talonworks/sortie/pkg/report"
)

func testDebrief(id, scenario string, generatedAt time.Time, victory bool) *report.Debrief {
	return &report.Debrief{
		ID:              id,
		Scenario:        scenario,
		GeneratedAt:     generatedAt,
		Tactic:          battle.TacticAggressive,
		Seed:            3,
		Victory:         victory,
		DurationSeconds: 80,
		Results: battle.BattleResults{
			Victory: victory,
			Credits: 500,
			Salvage: 4,
		},
		Timeline: []report.LogEntry{
			{At: 10, Type: battle.EventDestroy, Attacker: "allied-0", Target: "enemy-0"},
		},
	}
}

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "debriefs.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close returned error: %v", err)
		}
	})
	return s
}

func TestSaveAndListDebriefs(t *testing.T) {
	s := openTestStore(t)

	older := testDebrief("aaaa-1", "patrol-intercept", time.Now().Add(-time.Hour), true)
	newer := testDebrief("bbbb-2", "outnumbered", time.Now(), false)

	if err := s.SaveDebrief(older); err != nil {
		t.Fatalf("SaveDebrief returned error: %v", err)
	}
	if err := s.SaveDebrief(newer); err != nil {
		t.Fatalf("SaveDebrief returned error: %v", err)
	}

	records, err := s.ListDebriefs(0)
	if err != nil {
		t.Fatalf("ListDebriefs returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].ID != "bbbb-2" {
		t.Errorf("Expected newest record first, got %s", records[0].ID)
	}
	if len(records[0].Payload) != 0 {
		t.Error("Expected list records to omit the payload")
	}
	if records[0].Victory {
		t.Error("Expected newest record to be a defeat")
	}

	limited, err := s.ListDebriefs(1)
	if err != nil {
		t.Fatalf("ListDebriefs returned error: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("Expected 1 record with limit, got %d", len(limited))
	}
}

func TestLoadDebriefRoundTrip(t *testing.T) {
	s := openTestStore(t)

	saved := testDebrief("cccc-3", "flight-school", time.Now(), true)
	if err := s.SaveDebrief(saved); err != nil {
		t.Fatalf("SaveDebrief returned error: %v", err)
	}

	loaded, err := s.LoadDebrief("cccc-3")
	if err != nil {
		t.Fatalf("LoadDebrief returned error: %v", err)
	}
	if loaded.Scenario != "flight-school" {
		t.Errorf("Expected scenario flight-school, got %s", loaded.Scenario)
	}
	if loaded.Results.Credits != 500 {
		t.Errorf("Expected 500 credits, got %d", loaded.Results.Credits)
	}
	if len(loaded.Timeline) != 1 {
		t.Errorf("Expected 1 timeline entry, got %d", len(loaded.Timeline))
	}

	byPrefix, err := s.LoadDebrief("cccc")
	if err != nil {
		t.Fatalf("LoadDebrief by prefix returned error: %v", err)
	}
	if byPrefix.ID != "cccc-3" {
		t.Errorf("Expected prefix to resolve cccc-3, got %s", byPrefix.ID)
	}

	if _, err := s.LoadDebrief("missing"); err == nil {
		t.Error("Expected error for a missing debrief")
	}
}

func TestPurge(t *testing.T) {
	s := openTestStore(t)

	for i, id := range []string{"dddd-4", "eeee-5"} {
		d := testDebrief(id, "patrol-intercept", time.Now().Add(time.Duration(i)*time.Minute), true)
		if err := s.SaveDebrief(d); err != nil {
			t.Fatalf("SaveDebrief returned error: %v", err)
		}
	}

	removed, err := s.Purge()
	if err != nil {
		t.Fatalf("Purge returned error: %v", err)
	}
	if removed != 2 {
		t.Errorf("Expected 2 removed, got %d", removed)
	}

	records, err := s.ListDebriefs(0)
	if err != nil {
		t.Fatalf("ListDebriefs returned error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected empty archive after purge, got %d records", len(records))
	}
}
