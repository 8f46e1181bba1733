package match

import (
	"time"
)

// ResultFlag is the outcome of a single player inside a match.
type ResultFlag string

const (
	FlagWinner ResultFlag = "winner"
	FlagLoser  ResultFlag = "loser"
	FlagDrawer ResultFlag = "drawer"
)

// Valid verifies that the flag is one of the known outcomes.
func (f ResultFlag) Valid() bool {
	return f == FlagWinner || f == FlagLoser || f == FlagDrawer
}

// Player is a single participant of a finished match, as yielded by the replay parser.
type Player struct {
	Name     string
	SlotID   int
	TeamID   int
	Flag     ResultFlag
	Category string // Optional per player category override.
}

// Outcome is a finished match, immutable once ingested.
type Outcome struct {
	ID       string
	Players  []Player
	Category string
	PlayedAt time.Time
}

// StatPatch holds the statistics decoded from the telemetry for a single player.
// Every field is optional, a nil pointer means the telemetry didn't carry that field.
type StatPatch struct {
	Kills       *int
	Deaths      *int
	Assists     *int
	Gold        *int
	DamageDealt *int
	DamageTaken *int
	RandomClass *bool
	Class       *string
}

// Empty returns true if no field of the patch was ever set.
func (p *StatPatch) Empty() bool {
	return p.Kills == nil &&
		p.Deaths == nil &&
		p.Assists == nil &&
		p.Gold == nil &&
		p.DamageDealt == nil &&
		p.DamageTaken == nil &&
		p.RandomClass == nil &&
		p.Class == nil
}
