// internal/httpserver/server.go
//
// HTTP server wiring for the daily company-guessing game.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs,
//     request logging, metrics).
//   - Public endpoints: "/", "/health", "/metrics".
//   - Daily selection: GET /api/daily.
//   - Solve counter: GET/POST /api/solves.
//   - Game sessions: POST /game/new, POST /game/guess, GET /game/{id}.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled for a single client origin.
//   - Errors are classified with apperr and mapped to a status code in one
//     place (writeError).

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/ycdle/internal/apperr"
	"github.com/robalobadob/ycdle/internal/catalog"
	"github.com/robalobadob/ycdle/internal/daily"
	"github.com/robalobadob/ycdle/internal/game"
	"github.com/robalobadob/ycdle/internal/store"
)

// Config holds the transport settings of the server.
type Config struct {
	ClientOrigin     string
	DebugTokenSecret string
	SolvesRatePerMin int
	RequestTimeout   time.Duration

	// OpenDebug allows ?debug=1 without a token when no secret is configured.
	OpenDebug bool
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	Catalog  *catalog.Source
	Badge    string
	Selector *daily.Selector
	Solves   *daily.Store
	Games    *store.Games

	// Pick draws unlimited-mode targets. Defaults to a uniform random pick.
	Pick game.Picker

	// Registry receives the server's metrics. Defaults to a fresh registry.
	Registry *prometheus.Registry
}

// Server bundles router and handler dependencies.
type Server struct {
	r       *chi.Mux
	cfg     Config
	deps    Deps
	metrics *metrics
	limiter *ipLimiter
	solves  *lastKnown
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg Config, deps Deps) *Server {
	if deps.Pick == nil {
		deps.Pick = randomPick
	}
	if deps.Registry == nil {
		deps.Registry = prometheus.NewRegistry()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.SolvesRatePerMin <= 0 {
		cfg.SolvesRatePerMin = 30
	}
	if cfg.ClientOrigin == "" {
		cfg.ClientOrigin = "http://localhost:5173"
	}

	s := &Server{
		r:       chi.NewRouter(),
		cfg:     cfg,
		deps:    deps,
		metrics: newMetrics(deps.Registry),
		limiter: newIPLimiter(cfg.SolvesRatePerMin),
		solves:  newLastKnown(),
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                   // add X-Request-ID
	s.r.Use(chimw.RealIP)                      // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger(s.metrics))          // access log + request metrics
	s.r.Use(chimw.Recoverer)                   // recover from panics
	s.r.Use(chimw.Timeout(cfg.RequestTimeout)) // bound handler time
	s.r.Use(jsonContentType)                   // default JSON responses
	s.r.Use(cors(cfg.ClientOrigin))            // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"ycdle","endpoints":["/health","/metrics","GET /api/daily","GET|POST /api/solves","POST /game/new","POST /game/guess","GET /game/{id}"]}`))
	})
	s.r.Get("/health", s.handleHealth)
	s.r.Handle("/metrics", s.metrics.handler())

	s.mountDaily(s.r)
	s.mountSolves(s.r)
	s.mountGame(s.r)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Handler exposes the router (useful for tests and custom listeners).
func (s *Server) Handler() http.Handler { return s.r }

// Start serves HTTP on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info().Msg("shutting down http server")
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	c := s.deps.Catalog.Current()
	pool := s.pool()
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":             true,
		"datasetVersion": c.Version(),
		"companies":      c.Len(),
		"poolSize":       pool.Len(),
	})
}

// pool returns the current candidate pool.
func (s *Server) pool() *catalog.Catalog { return s.deps.Catalog.Eligible(s.deps.Badge) }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Expose-Headers", "X-Day-Number, X-Seed-Fingerprint")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger writes one access-log line per request and records request
// metrics under the matched route pattern.
func requestLogger(m *metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)
			m.observeRequest(r.Method, route, status, elapsed)

			ev := log.Info()
			if status >= 500 {
				ev = log.Warn()
			}
			ev.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Dur("duration", elapsed).
				Str("requestId", chimw.GetReqID(r.Context())).
				Msg("request")
		})
	}
}

// ------------------------------ replies -------------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error's kind to an HTTP status.
func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindInvalidInput:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindTargetNotFound:
		return http.StatusConflict
	case apperr.KindNoCandidates:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError replies with {"error": kind, "message": ...}. Server-side
// failures are logged and their details withheld from the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	kind := apperr.KindOf(err)
	if kind == "" {
		kind = apperr.KindStorage
	}
	body := map[string]string{"error": string(kind)}
	if status >= 500 {
		log.Error().Err(err).Str("path", r.URL.Path).Str("requestId", chimw.GetReqID(r.Context())).Msg("request failed")
	} else {
		body["message"] = err.Error()
	}
	writeJSON(w, status, body)
}

// decodeJSON reads a JSON body into v, reporting malformed input as
// apperr.KindInvalidInput. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<16))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return apperr.New("http.decode", apperr.KindInvalidInput, "bad_json: "+err.Error())
	}
	return nil
}
