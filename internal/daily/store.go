package daily

import (
	"context"
	"database/sql"

	"github.com/robalobadob/ycdle/internal/apperr"
)

// Tally is the solve count for one UTC date.
type Tally struct {
	DateKey string `json:"dateKey"`
	Solves  int64  `json:"solves"`
}

// Store is the SQLite-backed solve counter. Increments are a single
// upsert statement, so concurrent callers never lose an add.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Increment adds one solve to dateKey and returns the new total.
func (s *Store) Increment(ctx context.Context, dateKey string) (Tally, error) {
	if !ValidDateKey(dateKey) {
		return Tally{}, apperr.New("solves.increment", apperr.KindInvalidInput, "date key must be YYYY-MM-DD")
	}
	var n int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO daily_solves(date_key, solves) VALUES(?, 1)
		 ON CONFLICT(date_key) DO UPDATE SET
		     solves = solves + 1,
		     updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		 RETURNING solves`, dateKey,
	).Scan(&n)
	if err != nil {
		return Tally{}, apperr.Wrap("solves.increment", apperr.KindStorage, err)
	}
	return Tally{DateKey: dateKey, Solves: n}, nil
}

// Count returns the solves recorded for dateKey; unseen dates count zero.
func (s *Store) Count(ctx context.Context, dateKey string) (Tally, error) {
	if !ValidDateKey(dateKey) {
		return Tally{}, apperr.New("solves.count", apperr.KindInvalidInput, "date key must be YYYY-MM-DD")
	}
	var n int64
	err := s.db.QueryRowContext(ctx,
		`SELECT solves FROM daily_solves WHERE date_key=?`, dateKey,
	).Scan(&n)
	if err == sql.ErrNoRows {
		return Tally{DateKey: dateKey}, nil
	}
	if err != nil {
		return Tally{}, apperr.Wrap("solves.count", apperr.KindStorage, err)
	}
	return Tally{DateKey: dateKey, Solves: n}, nil
}
