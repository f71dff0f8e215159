// internal/game/engine.go
//
// Game state machine.
// Responsibilities:
//   - Bind a target from the candidate pool (Initialize, Start).
//   - Apply guesses: in_progress → won / lost, with frozen history afterwards.
//   - Replay a stored game into feedback rows.
//
// Notes:
//   - Every transition returns a new State; the argument is never mutated,
//     so each result is a snapshot suitable for persistence.
//   - Initialization failures are returned to the caller. The machine never
//     substitutes another target; fallback policy lives with the caller.
package game

import (
	"fmt"
	"time"

	"github.com/robalobadob/ycdle/internal/apperr"
	"github.com/robalobadob/ycdle/internal/catalog"
)

// Pool is the candidate pool a target is bound from.
type Pool interface {
	Len() int
	At(i int) catalog.Entity
	ByID(id string) (catalog.Entity, bool)
}

// Lookup resolves guessed slugs and stored target ids.
type Lookup interface {
	BySlug(slug string) (catalog.Entity, bool)
	ByID(id string) (catalog.Entity, bool)
}

// Picker returns an index in [0, n). Unlimited mode uses it to draw a target.
type Picker func(n int) int

// Initialize binds targetID from pool and returns a fresh in-progress daily
// game stamped with datasetVersion.
func Initialize(pool Pool, targetID, datasetVersion string, now time.Time) (State, error) {
	if pool == nil || pool.Len() == 0 {
		return State{}, apperr.New("game.initialize", apperr.KindNoCandidates, "candidate pool is empty")
	}
	target, ok := pool.ByID(targetID)
	if !ok {
		return State{}, apperr.New("game.initialize", apperr.KindTargetNotFound,
			fmt.Sprintf("target %q is not in the candidate pool", targetID))
	}
	return State{
		TargetID:       target.ID,
		TargetSlug:     target.Slug,
		Guesses:        []string{},
		Status:         StatusInProgress,
		StartedAt:      now.UTC(),
		DatasetVersion: datasetVersion,
		Mode:           ModeDaily,
	}, nil
}

// Start resolves mode into a target and initializes the game. Unlimited mode
// draws with pick; daily mode uses the mode's target id.
func Start(pool Pool, mode Mode, datasetVersion string, now time.Time, pick Picker) (State, error) {
	switch mode.Kind {
	case ModeDaily:
		return Initialize(pool, mode.TargetID, datasetVersion, now)
	case ModeUnlimited:
		if pool == nil || pool.Len() == 0 {
			return State{}, apperr.New("game.start", apperr.KindNoCandidates, "candidate pool is empty")
		}
		i := pick(pool.Len())
		if i < 0 || i >= pool.Len() {
			return State{}, apperr.New("game.start", apperr.KindInvalidInput,
				fmt.Sprintf("picker returned %d for pool of %d", i, pool.Len()))
		}
		s, err := Initialize(pool, pool.At(i).ID, datasetVersion, now)
		if err != nil {
			return State{}, err
		}
		s.Mode = ModeUnlimited
		return s, nil
	default:
		return State{}, apperr.New("game.start", apperr.KindInvalidInput, fmt.Sprintf("unknown mode %q", mode.Kind))
	}
}

// ApplyGuess records guessSlug and returns the next state.
//
// Rules, in order:
//   - finished games are returned unchanged;
//   - a slug already guessed is a free no-op;
//   - otherwise the slug is appended; matching the target's slug wins, and
//     reaching MaxGuesses without a match loses.
func ApplyGuess(s State, guessSlug string) State {
	if s.Status != StatusInProgress {
		return s
	}
	if s.HasGuessed(guessSlug) || len(s.Guesses) >= MaxGuesses {
		return s
	}

	next := s
	next.Guesses = make([]string, len(s.Guesses), len(s.Guesses)+1)
	copy(next.Guesses, s.Guesses)
	next.Guesses = append(next.Guesses, guessSlug)

	switch {
	case guessSlug == s.TargetSlug:
		next.Status = StatusWon
	case len(next.Guesses) == MaxGuesses:
		next.Status = StatusLost
	}
	return next
}

// Replay recomputes the feedback row of every guess in s.
func Replay(s State, lookup Lookup) ([][]Tile, error) {
	target, ok := lookup.ByID(s.TargetID)
	if !ok {
		return nil, apperr.New("game.replay", apperr.KindTargetNotFound,
			fmt.Sprintf("target %q is not in the catalog", s.TargetID))
	}
	rows := make([][]Tile, 0, len(s.Guesses))
	for _, slug := range s.Guesses {
		g, ok := lookup.BySlug(slug)
		if !ok {
			return nil, apperr.New("game.replay", apperr.KindNotFound,
				fmt.Sprintf("guess %q is not in the catalog", slug))
		}
		rows = append(rows, Compare(g, target))
	}
	return rows, nil
}
