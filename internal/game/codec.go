package game

import (
	"encoding/json"
	"fmt"

	"github.com/robalobadob/ycdle/internal/apperr"
)

// Marshal encodes a snapshot for the state store.
func Marshal(s State) ([]byte, error) {
	if s.Guesses == nil {
		s.Guesses = []string{}
	}
	return json.Marshal(s)
}

// Unmarshal decodes a stored snapshot and rejects ones that break the state
// invariants, so a corrupted record never reaches ApplyGuess.
func Unmarshal(b []byte) (State, error) {
	var s State
	if err := json.Unmarshal(b, &s); err != nil {
		return State{}, apperr.Wrap("game.unmarshal", apperr.KindInvalidInput, err)
	}
	if s.Guesses == nil {
		s.Guesses = []string{}
	}
	if err := Validate(s); err != nil {
		return State{}, err
	}
	return s, nil
}

// Validate checks the state invariants.
func Validate(s State) error {
	fail := func(format string, args ...any) error {
		return apperr.New("game.validate", apperr.KindInvalidInput, fmt.Sprintf(format, args...))
	}
	if s.TargetID == "" || s.TargetSlug == "" {
		return fail("missing target")
	}
	if s.Mode != ModeDaily && s.Mode != ModeUnlimited {
		return fail("unknown mode %q", s.Mode)
	}
	n := len(s.Guesses)
	if n > MaxGuesses {
		return fail("%d guesses exceeds budget of %d", n, MaxGuesses)
	}
	seen := make(map[string]struct{}, n)
	for i, g := range s.Guesses {
		if _, dup := seen[g]; dup {
			return fail("duplicate guess %q", g)
		}
		seen[g] = struct{}{}
		if g == s.TargetSlug && i != n-1 {
			return fail("guesses continue after the target was found")
		}
	}
	hit := n > 0 && s.Guesses[n-1] == s.TargetSlug

	switch s.Status {
	case StatusWon:
		if !hit {
			return fail("won without guessing the target")
		}
	case StatusLost:
		if n != MaxGuesses || hit {
			return fail("lost with %d guesses", n)
		}
	case StatusInProgress:
		if hit || n == MaxGuesses {
			return fail("in progress after the game ended")
		}
	default:
		return fail("unknown status %q", s.Status)
	}
	return nil
}
