// internal/game/types.go
//
// Core type definitions for the guessing game engine.
// Defines:
//   - Tile: per-attribute result of comparing a guess with the target.
//   - Mode: daily (fixed target) or unlimited (random target).
//   - State: progress of a single in-progress or finished game.

package game

import "time"

// MaxGuesses is the guess budget for one game.
const MaxGuesses = 6

// Status is the lifecycle state of a game.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won"
	StatusLost       Status = "lost"
)

// MatchKind describes how one attribute of a guess relates to the target.
type MatchKind string

const (
	MatchExact       MatchKind = "exact"
	MatchPartial     MatchKind = "partial"
	MatchOverlap     MatchKind = "overlap"
	MatchNone        MatchKind = "none"
	MatchOrdinalUp   MatchKind = "ordinal_up"   // target is later
	MatchOrdinalDown MatchKind = "ordinal_down" // target is earlier
	MatchUnknown     MatchKind = "unknown"
)

// Severity is the colour a tile is rendered with.
type Severity string

const (
	SeverityGreen   Severity = "green"
	SeverityYellow  Severity = "yellow"
	SeverityRed     Severity = "red"
	SeverityNeutral Severity = "neutral"
)

// Direction points from the guess towards the target on ordinal columns.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Column names one feedback column.
type Column string

const (
	ColumnIdentity Column = "identity"
	ColumnBatch    Column = "batch"
	ColumnIndustry Column = "industry"
	ColumnStatus   Column = "status"
	ColumnBadges   Column = "badges"
	ColumnRegions  Column = "regions"
)

// Columns is the fixed output order of Compare.
var Columns = []Column{
	ColumnIdentity,
	ColumnBatch,
	ColumnIndustry,
	ColumnStatus,
	ColumnBadges,
	ColumnRegions,
}

// Tile is the feedback for one attribute of one guess. Never persisted.
type Tile struct {
	Column    Column    `json:"column"`
	Kind      MatchKind `json:"matchKind"`
	Severity  Severity  `json:"severity"`
	Direction Direction `json:"direction,omitempty"`
}

// ModeKind distinguishes deterministic daily games from unlimited practice.
type ModeKind string

const (
	ModeDaily     ModeKind = "daily"
	ModeUnlimited ModeKind = "unlimited"
)

// Mode is passed to Start and fully determines how the target is chosen.
type Mode struct {
	Kind     ModeKind
	TargetID string // daily only
}

// DailyMode plays against the given target id.
func DailyMode(targetID string) Mode { return Mode{Kind: ModeDaily, TargetID: targetID} }

// UnlimitedMode plays against a randomly picked pool entry.
func UnlimitedMode() Mode { return Mode{Kind: ModeUnlimited} }

// State holds one game's progress. Values are snapshots: transitions return
// a new State and never modify their argument.
type State struct {
	TargetID       string    `json:"targetId"`
	TargetSlug     string    `json:"targetSlug"`
	Guesses        []string  `json:"guesses"`
	Status         Status    `json:"status"`
	StartedAt      time.Time `json:"startedAt"`
	DatasetVersion string    `json:"datasetVersion"`
	Mode           ModeKind  `json:"mode"`
}

// Finished reports whether the game reached a terminal status.
func (s State) Finished() bool { return s.Status != StatusInProgress }

// Remaining returns how many guesses are left.
func (s State) Remaining() int {
	if s.Finished() {
		return 0
	}
	return MaxGuesses - len(s.Guesses)
}

// HasGuessed reports whether slug is already in the guess history.
func (s State) HasGuessed(slug string) bool {
	for _, g := range s.Guesses {
		if g == slug {
			return true
		}
	}
	return false
}
