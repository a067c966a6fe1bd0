// internal/httpserver/server.go
//
// HTTP server wiring for the CronoIndovina backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health".
//   - Game endpoints (optional auth): /game/today, /game/guess, /game/next,
//     /game/leaderboard.
//   - Auth + stats endpoints (require auth): /auth/*, /stats/me.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Optional auth decorates requests with user context when a valid token
//     is present; guests play via an anonymous cookie identity.

package httpserver

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/cronoindovina/go-server/internal/config"
	"github.com/cronoindovina/go-server/internal/controller"
	"github.com/cronoindovina/go-server/internal/store"
)

// Server bundles router, config, controller, and DB handle.
type Server struct {
	r    *chi.Mux
	cfg  *config.Config
	db   *sql.DB
	ctrl *controller.Controller
	st   *store.SQLite
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg *config.Config, db *sql.DB, ctrl *controller.Controller, st *store.SQLite) *Server {
	s := &Server{r: chi.NewRouter(), cfg: cfg, db: db, ctrl: ctrl, st: st}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(s.cors)                          // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"cronoindovina-go","endpoints":["/health","GET /game/today","POST /game/guess","POST /game/next","/auth/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	// Game endpoints — OPTIONAL AUTH (guests can play)
	s.r.Group(func(r chi.Router) {
		r.Use(s.withOptionalAuth)
		r.Get("/game/today", s.handleToday)
		r.Post("/game/guess", s.handleGuess)
		r.Post("/game/next", s.handleNext)
		r.Get("/game/leaderboard", s.handleLeaderboard)
	})

	// Auth + stats (require auth)
	s.mountAuthRoutes()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }
