// internal/httpserver/routes_game.go
//
// Game session endpoints:
//   - POST /game/new   {mode}          → {gameId, mode, fallback, state}
//   - POST /game/guess {gameId, slug}  → {tiles, accepted, state}
//   - GET  /game/{id}                  → {gameId, state, rows}
//
// Sessions are snapshots in the state store keyed by a random UUID. A stored
// daily game is dropped once today's target no longer matches it, and any game
// is dropped when the dataset version changes.
// When the daily target cannot be resolved, /game/new starts an unlimited game
// instead and says so with fallback=true.

package httpserver

import (
	"context"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/ycdle/internal/apperr"
	"github.com/robalobadob/ycdle/internal/game"
)

// randomPick is the default unlimited-mode picker.
func randomPick(n int) int { return rand.Intn(n) }

// mountGame registers the game session routes.
func (s *Server) mountGame(r chi.Router) {
	r.Route("/game", func(r chi.Router) {
		r.Post("/new", s.handleNewGame)
		r.Post("/guess", s.handleGuess)
		r.Get("/{id}", s.handleGetGame)
	})
}

// stateView is the client-facing game state. The target stays hidden until
// the game is over.
type stateView struct {
	Guesses        []string      `json:"guesses"`
	Status         game.Status   `json:"status"`
	Remaining      int           `json:"remaining"`
	MaxGuesses     int           `json:"maxGuesses"`
	StartedAt      time.Time     `json:"startedAt"`
	DatasetVersion string        `json:"datasetVersion"`
	Mode           game.ModeKind `json:"mode"`
	Answer         string        `json:"answer,omitempty"`
}

func viewOf(st game.State) stateView {
	v := stateView{
		Guesses:        st.Guesses,
		Status:         st.Status,
		Remaining:      st.Remaining(),
		MaxGuesses:     game.MaxGuesses,
		StartedAt:      st.StartedAt,
		DatasetVersion: st.DatasetVersion,
		Mode:           st.Mode,
	}
	if v.Guesses == nil {
		v.Guesses = []string{}
	}
	if st.Finished() {
		v.Answer = st.TargetSlug
	}
	return v
}

// ------------------------------ /game/new ------------------------------------

type newGameReq struct {
	Mode string `json:"mode" validate:"omitempty,oneof=daily unlimited"`
}

type newGameRes struct {
	GameID   string        `json:"gameId"`
	Mode     game.ModeKind `json:"mode"`
	Fallback bool          `json:"fallback"`
	State    stateView     `json:"state"`
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateStruct("game.new", req); err != nil {
		writeError(w, r, err)
		return
	}
	mode := game.ModeKind(req.Mode)
	if mode == "" {
		mode = game.ModeDaily
	}

	st, fallback, err := s.startGame(mode)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id := uuid.NewString()
	if err := s.deps.Games.Save(r.Context(), id, st); err != nil {
		writeError(w, r, err)
		return
	}
	s.metrics.gamesStarted.WithLabelValues(string(st.Mode), boolLabel(fallback)).Inc()
	log.Debug().Str("gameId", id).Str("mode", string(st.Mode)).Bool("fallback", fallback).Msg("game started")

	writeJSON(w, http.StatusOK, newGameRes{GameID: id, Mode: st.Mode, Fallback: fallback, State: viewOf(st)})
}

// startGame starts a game in mode. A daily start that fails for any reason
// becomes an unlimited game with fallback set.
func (s *Server) startGame(mode game.ModeKind) (game.State, bool, error) {
	pool := s.pool()
	now := s.deps.Selector.Now()

	if mode == game.ModeDaily {
		st, err := s.startDaily(pool.Version())
		if err == nil {
			return st, false, nil
		}
		log.Warn().Err(err).Msg("daily selection failed, starting unlimited game")
		st, err = game.Start(pool, game.UnlimitedMode(), pool.Version(), now, s.deps.Pick)
		return st, true, err
	}
	st, err := game.Start(pool, game.UnlimitedMode(), pool.Version(), now, s.deps.Pick)
	return st, false, err
}

func (s *Server) startDaily(version string) (game.State, error) {
	sel, err := s.deps.Selector.Today()
	if err != nil {
		return game.State{}, err
	}
	return game.Start(s.pool(), game.DailyMode(sel.TargetID), version, s.deps.Selector.Now(), nil)
}

// loadGame fetches a live session, dropping it when its daily target has
// rolled over.
func (s *Server) loadGame(ctx context.Context, id string) (game.State, error) {
	if _, err := uuid.Parse(id); err != nil {
		return game.State{}, apperr.New("game.load", apperr.KindNotFound, id)
	}
	st, err := s.deps.Games.Load(ctx, id, s.deps.Catalog.Current().Version())
	if err != nil {
		return game.State{}, err
	}
	if st.Mode == game.ModeDaily {
		if sel, err := s.deps.Selector.Today(); err == nil && sel.TargetID != st.TargetID {
			log.Info().Str("gameId", id).Msg("daily game expired")
			_ = s.deps.Games.Delete(ctx, id)
			return game.State{}, apperr.New("game.load", apperr.KindNotFound, id)
		}
	}
	return st, nil
}

// ----------------------------- /game/guess -----------------------------------

type guessReq struct {
	GameID string `json:"gameId" validate:"required"`
	Slug   string `json:"slug"   validate:"required"`
}

type guessRes struct {
	Tiles    []game.Tile `json:"tiles"`
	Accepted bool        `json:"accepted"`
	State    stateView   `json:"state"`
}

// handleGuess scores the guessed company against the target and records it.
// Duplicate guesses and guesses on a finished game are scored but not
// recorded (accepted=false).
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Slug = strings.TrimSpace(req.Slug)
	if err := validateStruct("game.guess", req); err != nil {
		writeError(w, r, err)
		return
	}

	st, err := s.loadGame(r.Context(), req.GameID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	c := s.deps.Catalog.Current()
	guess, ok := c.BySlug(req.Slug)
	if !ok {
		writeError(w, r, apperr.New("game.guess", apperr.KindInvalidInput, "unknown slug "+req.Slug))
		return
	}
	target, ok := c.ByID(st.TargetID)
	if !ok {
		writeError(w, r, apperr.New("game.guess", apperr.KindTargetNotFound, "target "+st.TargetID+" is not in the catalog"))
		return
	}

	next := game.ApplyGuess(st, guess.Slug)
	accepted := len(next.Guesses) != len(st.Guesses)
	if accepted {
		if err := s.deps.Games.Save(r.Context(), req.GameID, next); err != nil {
			writeError(w, r, err)
			return
		}
		s.metrics.guesses.WithLabelValues(string(next.Status)).Inc()
	}

	writeJSON(w, http.StatusOK, guessRes{
		Tiles:    game.Compare(guess, target),
		Accepted: accepted,
		State:    viewOf(next),
	})
}

// ------------------------------ /game/{id} -----------------------------------

type getGameRes struct {
	GameID string        `json:"gameId"`
	State  stateView     `json:"state"`
	Rows   [][]game.Tile `json:"rows"`
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	st, err := s.loadGame(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows, err := game.Replay(st, s.deps.Catalog.Current())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, getGameRes{GameID: id, State: viewOf(st), Rows: rows})
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
