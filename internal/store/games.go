package store

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/ycdle/internal/apperr"
	"github.com/robalobadob/ycdle/internal/game"
)

const (
	gamePrefix   = "game:"
	solvedPrefix = "solved:"
)

// Games persists game snapshots in a byte Store.
type Games struct {
	kv Store
}

// NewGames wraps kv.
func NewGames(kv Store) *Games { return &Games{kv: kv} }

// Save writes the snapshot for id.
func (g *Games) Save(ctx context.Context, id string, s game.State) error {
	b, err := game.Marshal(s)
	if err != nil {
		return apperr.Wrap("games.save", apperr.KindInvalidInput, err)
	}
	return g.kv.Set(ctx, gamePrefix+id, b)
}

// Load returns the snapshot for id. Snapshots from another dataset version or
// that fail validation are discarded and reported as not found, so the caller
// starts a fresh game.
func (g *Games) Load(ctx context.Context, id, datasetVersion string) (game.State, error) {
	b, err := g.kv.Get(ctx, gamePrefix+id)
	if err != nil {
		return game.State{}, err
	}
	s, err := game.Unmarshal(b)
	if err != nil {
		log.Warn().Err(err).Str("gameId", id).Msg("discarding unreadable game state")
		_ = g.kv.Delete(ctx, gamePrefix+id)
		return game.State{}, apperr.New("games.load", apperr.KindNotFound, id)
	}
	if s.DatasetVersion != datasetVersion {
		log.Info().Str("gameId", id).Str("stored", s.DatasetVersion).Str("current", datasetVersion).
			Msg("discarding game from another dataset version")
		_ = g.kv.Delete(ctx, gamePrefix+id)
		return game.State{}, apperr.New("games.load", apperr.KindNotFound, id)
	}
	return s, nil
}

// Delete drops the snapshot for id.
func (g *Games) Delete(ctx context.Context, id string) error {
	return g.kv.Delete(ctx, gamePrefix+id)
}

// MarkSolved records that id's solve for dateKey was counted. It returns
// false when it had already been recorded; of concurrent callers exactly one
// gets true.
func (g *Games) MarkSolved(ctx context.Context, id, dateKey string) (bool, error) {
	return g.kv.SetIfAbsent(ctx, solvedKey(id, dateKey), []byte{1})
}

// UnmarkSolved withdraws a MarkSolved claim whose count could not be stored.
func (g *Games) UnmarkSolved(ctx context.Context, id, dateKey string) error {
	return g.kv.Delete(ctx, solvedKey(id, dateKey))
}

func solvedKey(id, dateKey string) string { return solvedPrefix + id + ":" + dateKey }
