// internal/httpserver/routes_daily.go
//
// GET /api/daily resolves today's target.
//   - Normal responses carry only {"yc_id"} and are cacheable until the next
//     UTC midnight, when the target changes.
//   - Debug responses (see debugAllowed) add the seed and selection details,
//     honor ?offset=N and are never cached.
//   - X-Day-Number and X-Seed-Fingerprint are always set on success.

package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/ycdle/internal/apperr"
	"github.com/robalobadob/ycdle/internal/daily"
)

// mountDaily registers the selection route.
func (s *Server) mountDaily(r chi.Router) {
	r.Get("/api/daily", s.handleDaily)
}

type dailyRes struct {
	TargetID string `json:"yc_id"`
}

type dailyDebugRes struct {
	TargetID       string `json:"yc_id"`
	Seed           string `json:"seed"`
	Day            int64  `json:"day"`
	Index          int    `json:"index"`
	Offset         int    `json:"offset"`
	PoolSize       int    `json:"poolSize"`
	DateKey        string `json:"dateKey"`
	DatasetVersion string `json:"datasetVersion"`
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	debug := s.debugAllowed(r)

	offset := 0
	if raw := r.URL.Query().Get("offset"); debug && raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, apperr.New("daily.offset", apperr.KindInvalidInput, "offset must be an integer"))
			return
		}
		offset = n
	}

	sel, err := s.deps.Selector.Select(offset)
	if err != nil {
		s.metrics.selections.WithLabelValues(string(apperr.KindOf(err))).Inc()
		writeError(w, r, err)
		return
	}
	s.metrics.selections.WithLabelValues("ok").Inc()

	h := w.Header()
	h.Set("X-Day-Number", strconv.FormatInt(sel.Day, 10))
	h.Set("X-Seed-Fingerprint", daily.Fingerprint(s.deps.Selector.Seed()))

	if debug {
		h.Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, dailyDebugRes{
			TargetID:       sel.TargetID,
			Seed:           s.deps.Selector.Seed(),
			Day:            sel.Day,
			Index:          sel.Index,
			Offset:         sel.Offset,
			PoolSize:       sel.PoolSize,
			DateKey:        sel.DateKey,
			DatasetVersion: sel.Version,
		})
		return
	}

	now := s.deps.Selector.Now().UTC()
	next := daily.NextMidnight(now)
	maxAge := int(next.Sub(now) / time.Second)
	h.Set("Cache-Control", "public, max-age="+strconv.Itoa(maxAge))
	h.Set("Expires", next.Format(http.TimeFormat))
	writeJSON(w, http.StatusOK, dailyRes{TargetID: sel.TargetID})
}
