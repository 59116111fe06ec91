// Package report records battle milestones and turns them into debriefs
// that can be printed, saved to disk, or archived.
package report

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/talonworks/sortie/pkg/battle"
)

// LogEntry is one executed script event, timestamped in battle seconds.
type LogEntry struct {
	At       float64          `json:"at"`
	Type     battle.EventType `json:"type"`
	Attacker battle.EntityID  `json:"attacker,omitempty"`
	Target   battle.EntityID  `json:"target,omitempty"`
	Damage   float64          `json:"damage,omitempty"`
	Forced   bool             `json:"forced,omitempty"`
}

// PhaseChange records one lifecycle transition.
type PhaseChange struct {
	At   float64      `json:"at"`
	From battle.Phase `json:"from"`
	To   battle.Phase `json:"to"`
}

// Color definitions
var (
	colorHit     = color.New(color.FgYellow)
	colorMiss    = color.New(color.FgHiBlack)
	colorDestroy = color.New(color.FgRed, color.Bold)
	colorEscape  = color.New(color.FgCyan)
	colorPhase   = color.New(color.FgBlue, color.Bold)
	colorVictory = color.New(color.FgGreen, color.Bold)
	colorDefeat  = color.New(color.FgRed, color.Bold)
)

// BattleLog collects executed events and phase changes from a running
// battle. It satisfies battle.Observer and is safe for concurrent reads
// while the battle advances on another goroutine.
type BattleLog struct {
	echo    bool
	entries []LogEntry
	phases  []PhaseChange
	mu      sync.RWMutex
}

// NewBattleLog creates a battle log. With echo enabled every milestone is
// also printed to the console as it happens.
func NewBattleLog(echo bool) *BattleLog {
	return &BattleLog{
		echo:    echo,
		entries: make([]LogEntry, 0),
		phases:  make([]PhaseChange, 0),
	}
}

// OnEvent implements battle.Observer.
func (l *BattleLog) OnEvent(ev battle.ExecutedEvent) {
	entry := LogEntry{
		At:       ev.At,
		Type:     ev.Event.Type,
		Attacker: ev.Event.Attacker,
		Target:   ev.Event.Target,
		Damage:   ev.Event.Damage,
		Forced:   ev.Forced,
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()

	if l.echo {
		l.echoEvent(entry)
	}
}

// OnPhaseChange implements battle.Observer.
func (l *BattleLog) OnPhaseChange(from, to battle.Phase, elapsed float64) {
	change := PhaseChange{At: elapsed, From: from, To: to}

	l.mu.Lock()
	l.phases = append(l.phases, change)
	l.mu.Unlock()

	if l.echo {
		fmt.Printf("[%s] %s %s -> %s\n",
			formatElapsed(elapsed),
			colorPhase.Sprintf("%-8s", "PHASE"),
			from, to)
	}
}

// Events returns a copy of the recorded events.
func (l *BattleLog) Events() []LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := make([]LogEntry, len(l.entries))
	copy(entries, l.entries)
	return entries
}

// Phases returns a copy of the recorded phase changes.
func (l *BattleLog) Phases() []PhaseChange {
	l.mu.RLock()
	defer l.mu.RUnlock()

	phases := make([]PhaseChange, len(l.phases))
	copy(phases, l.phases)
	return phases
}

// echoEvent prints a colored console line for an event.
func (l *BattleLog) echoEvent(entry LogEntry) {
	label := eventColor(entry.Type).Sprintf("%-8s", strings.ToUpper(string(entry.Type)))

	var detail string
	switch entry.Type {
	case battle.EventEscape:
		detail = fmt.Sprintf("%s breaks off", entry.Attacker)
	case battle.EventDestroy:
		detail = fmt.Sprintf("%s -> %s", entry.Attacker, entry.Target)
		if entry.Forced {
			detail += " (forced)"
		}
	default:
		detail = fmt.Sprintf("%s -> %s (%.0f dmg)", entry.Attacker, entry.Target, entry.Damage)
	}

	fmt.Printf("[%s] %s %s\n", formatElapsed(entry.At), label, detail)
}

// eventColor returns the color for an event type.
func eventColor(t battle.EventType) *color.Color {
	switch t {
	case battle.EventHit:
		return colorHit
	case battle.EventMiss:
		return colorMiss
	case battle.EventDestroy:
		return colorDestroy
	case battle.EventEscape:
		return colorEscape
	default:
		return colorHit
	}
}

// formatElapsed renders battle seconds as MM:SS.s.
func formatElapsed(seconds float64) string {
	minutes := int(seconds) / 60
	rest := seconds - float64(minutes*60)
	return fmt.Sprintf("%02d:%04.1f", minutes, rest)
}
