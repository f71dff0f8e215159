// internal/httpserver/routes_solves.go
//
// Solve counter endpoints:
//   - POST /api/solves {dateKey, gameId?} → {dateKey, solves}
//   - GET  /api/solves?date=YYYY-MM-DD   → {dateKey, solves}
//
// The counter is a best-effort display figure. Storage failures are logged and
// answered with the last count this process saw (or zero), never an error.
// When gameId is sent, the game must be a won daily game and its solve is
// counted at most once.

package httpserver

import (
	"context"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/ycdle/internal/apperr"
	"github.com/robalobadob/ycdle/internal/daily"
	"github.com/robalobadob/ycdle/internal/game"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("datekey", func(fl validator.FieldLevel) bool {
		_, err := daily.ParseDateKey(fl.Field().String())
		return err == nil
	})
	return v
}

// validateStruct runs struct tag validation, reporting failures as
// apperr.KindInvalidInput.
func validateStruct(op string, v any) error {
	if err := validate.Struct(v); err != nil {
		return apperr.New(op, apperr.KindInvalidInput, err.Error())
	}
	return nil
}

// lastKnown remembers the most recent count per date for degraded replies.
type lastKnown struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newLastKnown() *lastKnown { return &lastKnown{counts: make(map[string]int64)} }

func (l *lastKnown) get(dateKey string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts[dateKey]
}

func (l *lastKnown) put(t daily.Tally) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.counts) > 366 {
		l.counts = make(map[string]int64)
	}
	l.counts[t.DateKey] = t.Solves
}

// mountSolves registers the solve counter routes.
func (s *Server) mountSolves(r chi.Router) {
	r.Get("/api/solves", s.handleGetSolves)
	r.With(s.rateLimited).Post("/api/solves", s.handlePostSolves)
}

type solvesQuery struct {
	DateKey string `validate:"required,datekey"`
}

type solvesReq struct {
	DateKey string `json:"dateKey" validate:"required,datekey"`
	GameID  string `json:"gameId"  validate:"omitempty,uuid"`
}

func (s *Server) handleGetSolves(w http.ResponseWriter, r *http.Request) {
	q := solvesQuery{DateKey: r.URL.Query().Get("date")}
	if q.DateKey == "" {
		q.DateKey = daily.DateKey(s.deps.Selector.Now())
	}
	if err := validateStruct("solves.get", q); err != nil {
		writeError(w, r, err)
		return
	}

	t, err := s.deps.Solves.Count(r.Context(), q.DateKey)
	if err != nil {
		writeJSON(w, http.StatusOK, s.degraded(q.DateKey, err))
		return
	}
	s.solves.put(t)
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handlePostSolves(w http.ResponseWriter, r *http.Request) {
	var req solvesReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateStruct("solves.post", req); err != nil {
		writeError(w, r, err)
		return
	}

	if req.GameID != "" {
		counted, err := s.claimSolve(r.Context(), req.GameID, req.DateKey)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !counted {
			s.metrics.solves.WithLabelValues("duplicate").Inc()
			t, err := s.deps.Solves.Count(r.Context(), req.DateKey)
			if err != nil {
				writeJSON(w, http.StatusOK, s.degraded(req.DateKey, err))
				return
			}
			s.solves.put(t)
			writeJSON(w, http.StatusOK, t)
			return
		}
	}

	t, err := s.deps.Solves.Increment(r.Context(), req.DateKey)
	if err != nil {
		// The claim must not outlive a lost increment or a retry would be
		// taken for a duplicate.
		if req.GameID != "" {
			if uerr := s.deps.Games.UnmarkSolved(r.Context(), req.GameID, req.DateKey); uerr != nil {
				log.Error().Err(uerr).Str("gameId", req.GameID).Msg("withdraw solve claim")
			}
		}
		writeJSON(w, http.StatusOK, s.degraded(req.DateKey, err))
		return
	}
	s.metrics.solves.WithLabelValues("recorded").Inc()
	s.solves.put(t)
	writeJSON(w, http.StatusOK, t)
}

// claimSolve checks that gameID is a won daily game for dateKey and records
// the claim. It returns false when the solve was already counted.
func (s *Server) claimSolve(ctx context.Context, gameID, dateKey string) (bool, error) {
	st, err := s.deps.Games.Load(ctx, gameID, s.deps.Catalog.Current().Version())
	if err != nil {
		return false, err
	}
	if st.Mode != game.ModeDaily || st.Status != game.StatusWon {
		return false, apperr.New("solves.claim", apperr.KindInvalidInput, "game is not a won daily game")
	}
	if daily.DateKey(st.StartedAt) != dateKey {
		return false, apperr.New("solves.claim", apperr.KindInvalidInput, "game was not played on "+dateKey)
	}
	return s.deps.Games.MarkSolved(ctx, gameID, dateKey)
}

func (s *Server) degraded(dateKey string, err error) daily.Tally {
	n := s.solves.get(dateKey)
	s.metrics.solves.WithLabelValues("degraded").Inc()
	log.Warn().Err(err).Str("dateKey", dateKey).Int64("lastKnown", n).Msg("solve counter unavailable, serving last known count")
	return daily.Tally{DateKey: dateKey, Solves: n}
}
