package battle

import "sort"

// EventType classifies one scripted combat beat.
type EventType string

const (
	EventHit     EventType = "hit"     // non-lethal damage lands
	EventMiss    EventType = "miss"    // attack whiffs, flavor only
	EventDestroy EventType = "destroy" // target is killed by attacker
	EventEscape  EventType = "escape"  // unit breaks off and leaves the fight
)

// ScheduledEvent is one immutable beat of the battle script. Timestamps are
// seconds from battle start. For escape events the Attacker field names the
// escaping unit and Target is empty.
type ScheduledEvent struct {
	Timestamp float64   `json:"timestamp"`
	Type      EventType `json:"type"`
	Attacker  EntityID  `json:"attacker,omitempty"`
	Target    EntityID  `json:"target,omitempty"`
	Damage    float64   `json:"damage,omitempty"`
}

// BattleScript is the ordered event timeline decided before the first tick.
// Once generated it is never mutated; the simulation only consumes it and
// tracks execution separately.
type BattleScript struct {
	Events []ScheduledEvent `json:"events"`
}

// Sorted reports whether the event list is ordered by non-decreasing
// timestamp.
func (s *BattleScript) Sorted() bool {
	return sort.SliceIsSorted(s.Events, func(i, j int) bool {
		return s.Events[i].Timestamp < s.Events[j].Timestamp
	})
}

// LastDestroyTime returns the timestamp of the final destroy event, if any.
func (s *BattleScript) LastDestroyTime() (float64, bool) {
	last, found := 0.0, false
	for _, ev := range s.Events {
		if ev.Type == EventDestroy {
			last, found = ev.Timestamp, true
		}
	}
	return last, found
}

// clone returns a deep copy so callers can hold the script without being
// able to reach the generator's backing array.
func (s *BattleScript) clone() BattleScript {
	events := make([]ScheduledEvent, len(s.Events))
	copy(events, s.Events)
	return BattleScript{Events: events}
}

// UnitResult carries the per-unit line of the results record.
type UnitResult struct {
	ID          EntityID `json:"id"`
	Name        string   `json:"name"`
	Team        Team     `json:"team"`
	Kills       int      `json:"kills"`
	DamageDealt float64  `json:"damageDealt"`
	Survived    bool     `json:"survived"`
	Escaped     bool     `json:"escaped"`
}

// BattleResults is the aggregate outcome record, fixed before simulation
// and handed unchanged to the progression layer once the battle ends.
type BattleResults struct {
	Victory         bool         `json:"victory"`
	SurvivingAllied int          `json:"survivingAllied"`
	DestroyedAllied int          `json:"destroyedAllied"`
	EscapedAllied   int          `json:"escapedAllied"`
	SurvivingEnemy  int          `json:"survivingEnemy"`
	DestroyedEnemy  int          `json:"destroyedEnemy"`
	EscapedEnemy    int          `json:"escapedEnemy"`
	DurationSeconds float64      `json:"durationSeconds"`
	Credits         int          `json:"credits"`
	Salvage         int          `json:"salvage"`
	Units           []UnitResult `json:"units"`
}

// Outcome pairs the script with its aggregate results. Preview tooling can
// save an Outcome and feed it back into a later battle instead of
// regenerating it.
type Outcome struct {
	Script  BattleScript  `json:"script"`
	Results BattleResults `json:"results"`
}

// clone deep-copies the outcome so a battle owns its script storage.
func (o *Outcome) clone() *Outcome {
	c := &Outcome{Script: o.Script.clone(), Results: o.Results}
	c.Results.Units = make([]UnitResult, len(o.Results.Units))
	copy(c.Results.Units, o.Results.Units)
	return c
}
