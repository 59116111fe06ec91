package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/talonworks/sortie/pkg/battle"
	"github.com/talonworks/sortie/pkg/logger"
)

// Debrief is the post-battle record: the fixed results plus everything the
// log observed on the way there.
type Debrief struct {
	ID              string               `json:"id"`
	Scenario        string               `json:"scenario"`
	GeneratedAt     time.Time            `json:"generated_at"`
	Tactic          battle.Tactic        `json:"tactic"`
	Seed            int64                `json:"seed"`
	Victory         bool                 `json:"victory"`
	DurationSeconds float64              `json:"duration_seconds"`
	Results         battle.BattleResults `json:"results"`
	Timeline        []LogEntry           `json:"timeline,omitempty"`
	Phases          []PhaseChange        `json:"phases,omitempty"`
}

// NewDebrief builds a debrief from a finished battle. The battle must have
// reached a terminal phase; log may be nil when no timeline was recorded.
func NewDebrief(in battle.Input, b *battle.Battle, log *BattleLog) (*Debrief, error) {
	results, done := b.Results()
	if !done {
		return nil, fmt.Errorf("battle has not ended (phase %s)", b.Phase())
	}

	d := &Debrief{
		ID:              uuid.New().String(),
		Scenario:        in.Label,
		GeneratedAt:     time.Now(),
		Tactic:          in.Tactic,
		Seed:            in.Seed,
		Victory:         results.Victory,
		DurationSeconds: b.Elapsed(),
		Results:         results,
	}

	if log != nil {
		d.Timeline = log.Events()
		d.Phases = log.Phases()
	}

	return d, nil
}

// WriteJSON saves the debrief as indented JSON.
func (d *Debrief) WriteJSON(path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal debrief: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// WriteMarkdown saves the debrief as a Markdown report.
func (d *Debrief) WriteMarkdown(path string) error {
	return os.WriteFile(path, []byte(d.Markdown()), 0644)
}

// Markdown renders the debrief as a Markdown report.
func (d *Debrief) Markdown() string {
	var sb strings.Builder

	sb.WriteString("# Battle Debrief\n\n")
	sb.WriteString(fmt.Sprintf("**Scenario:** %s\n", d.Scenario))
	sb.WriteString(fmt.Sprintf("**Debrief ID:** %s\n", d.ID))
	sb.WriteString(fmt.Sprintf("**Generated:** %s\n", d.GeneratedAt.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("**Tactic:** %s | **Seed:** %d\n\n", d.Tactic, d.Seed))

	sb.WriteString("## Outcome\n\n")
	sb.WriteString(fmt.Sprintf("**Result:** %s\n\n", d.outcomeWord()))
	sb.WriteString(fmt.Sprintf("**Duration:** %s\n\n", formatElapsed(d.DurationSeconds)))
	sb.WriteString(fmt.Sprintf("**Rewards:** %d credits, %d salvage\n\n", d.Results.Credits, d.Results.Salvage))

	sb.WriteString("## Forces\n\n")
	sb.WriteString(fmt.Sprintf("- **Allied:** %d surviving, %d destroyed, %d escaped\n",
		d.Results.SurvivingAllied, d.Results.DestroyedAllied, d.Results.EscapedAllied))
	sb.WriteString(fmt.Sprintf("- **Enemy:** %d surviving, %d destroyed, %d escaped\n\n",
		d.Results.SurvivingEnemy, d.Results.DestroyedEnemy, d.Results.EscapedEnemy))

	if len(d.Results.Units) > 0 {
		sb.WriteString("## Units\n\n")
		sb.WriteString("| Unit | Team | Kills | Damage | Status |\n")
		sb.WriteString("|------|------|-------|--------|--------|\n")
		for _, u := range d.Results.Units {
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %.0f | %s |\n",
				u.Name, u.Team, u.Kills, u.DamageDealt, unitStatus(u)))
		}
		sb.WriteString("\n")
	}

	if len(d.Timeline) > 0 {
		sb.WriteString("## Timeline\n\n")
		for _, entry := range d.Timeline {
			sb.WriteString(fmt.Sprintf("- `%s` %s\n", formatElapsed(entry.At), timelineLine(entry)))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// PrintConsole prints the debrief to the terminal.
func (d *Debrief) PrintConsole() {
	logger.Section("Battle Debrief")

	logger.KeyValue("Scenario", d.Scenario)
	logger.KeyValue("Tactic", string(d.Tactic))
	logger.KeyValue("Seed", d.Seed)
	logger.KeyValue("Duration", formatElapsed(d.DurationSeconds))

	if d.Victory {
		colorVictory.Println("\n  VICTORY")
	} else {
		colorDefeat.Println("\n  DEFEAT")
	}
	fmt.Printf("  %d credits, %d salvage\n", d.Results.Credits, d.Results.Salvage)

	if len(d.Results.Units) > 0 {
		fmt.Println()
		table := logger.NewTable("UNIT", "TEAM", "KILLS", "DAMAGE", "STATUS")
		for _, u := range d.Results.Units {
			table.AddRow(u.Name, string(u.Team),
				fmt.Sprintf("%d", u.Kills),
				fmt.Sprintf("%.0f", u.DamageDealt),
				unitStatus(u))
		}
		table.Print()
	}

	if len(d.Timeline) > 0 {
		fmt.Printf("\n  %d events recorded", len(d.Timeline))
		if forced := d.forcedCount(); forced > 0 {
			fmt.Printf(" (%d forced)", forced)
		}
		fmt.Println()
	}
}

// forcedCount returns how many timeline events landed by enforcement.
func (d *Debrief) forcedCount() int {
	n := 0
	for _, entry := range d.Timeline {
		if entry.Forced {
			n++
		}
	}
	return n
}

func (d *Debrief) outcomeWord() string {
	if d.Victory {
		return "Victory"
	}
	return "Defeat"
}

// unitStatus describes how a unit left the battle.
func unitStatus(u battle.UnitResult) string {
	switch {
	case u.Escaped:
		return "escaped"
	case u.Survived:
		return "survived"
	default:
		return "destroyed"
	}
}

// timelineLine renders one timeline entry for the Markdown report.
func timelineLine(entry LogEntry) string {
	switch entry.Type {
	case battle.EventEscape:
		return fmt.Sprintf("**escape** %s breaks off", entry.Attacker)
	case battle.EventDestroy:
		line := fmt.Sprintf("**destroy** %s destroys %s", entry.Attacker, entry.Target)
		if entry.Forced {
			line += " (forced)"
		}
		return line
	case battle.EventMiss:
		return fmt.Sprintf("**miss** %s misses %s", entry.Attacker, entry.Target)
	default:
		return fmt.Sprintf("**hit** %s hits %s for %.0f", entry.Attacker, entry.Target, entry.Damage)
	}
}
