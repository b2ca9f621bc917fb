// internal/httpserver/server.go
//
// HTTP server wiring for the Path Recall backend.
// Responsibilities:
//   - Router + middleware (request IDs, access log, panic recovery, CORS,
//     timeouts, JSON content type, player sessions).
//   - Public endpoints: "/" (game page), "/static/*", "/health".
//   - Round endpoints (session scoped): mounted under /api (routes_round.go).
//
// Notes:
//   - The WebSocket route is kept out of the handler timeout; the timeout
//     middleware would otherwise write to a hijacked connection.
//   - Every request under the session group carries a player ID, minted on
//     first visit.

package httpserver

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/pathrecall/assets"
	"github.com/robalobadob/pathrecall/internal/config"
	"github.com/robalobadob/pathrecall/internal/events"
	"github.com/robalobadob/pathrecall/internal/grid"
	"github.com/robalobadob/pathrecall/internal/path"
	"github.com/robalobadob/pathrecall/internal/session"
	"github.com/robalobadob/pathrecall/internal/store"
)

// Server bundles router, round store, event hub and round settings.
type Server struct {
	r        *chi.Mux
	cfg      config.Config
	grid     grid.Grid
	store    store.Store
	hub      *events.Hub
	sessions *session.Manager
	page     *template.Template

	src   path.Source
	after func(d time.Duration, f func())
	now   func() time.Time
}

// Option customizes a Server.
type Option func(*Server)

// WithSource sets the randomness used for path generation.
func WithSource(src path.Source) Option {
	return func(s *Server) { s.src = src }
}

// WithTimer replaces time.AfterFunc for the display timer.
func WithTimer(after func(d time.Duration, f func())) Option {
	return func(s *Server) { s.after = after }
}

// WithClock replaces time.Now, which also picks the daily path's date.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg config.Config, st store.Store, hub *events.Hub, sessions *session.Manager, opts ...Option) (*Server, error) {
	g, err := grid.New(cfg.GridSize)
	if err != nil {
		return nil, fmt.Errorf("httpserver: %w", err)
	}
	page, err := assets.Templates()
	if err != nil {
		return nil, fmt.Errorf("httpserver: parse templates: %w", err)
	}

	s := &Server{
		r:        chi.NewRouter(),
		cfg:      cfg,
		grid:     g,
		store:    st,
		hub:      hub,
		sessions: sessions,
		page:     page,
		src:      path.CryptoSource{},
		after:    func(d time.Duration, f func()) { time.AfterFunc(d, f) },
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(accessLog)       // request-scoped zerolog logger + access line
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(s.cors)          // credentials-friendly CORS

	// --- public ---
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(assets.StaticFS())))

	// --- player scoped ---
	s.r.Group(func(r chi.Router) {
		r.Use(sessions.Middleware)
		r.Get("/", s.handleIndex)
		s.mountRound(r)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s, nil
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ServeHTTP lets the Server be used directly as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.r.ServeHTTP(w, r) }

// handleIndex renders the game page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := s.page.ExecuteTemplate(w, "index.tmpl", assets.Page{
		GridSize:      s.grid.Size,
		DefaultLength: s.cfg.DefaultLength,
		MaxLength:     s.cfg.MaxLength,
		DisplayMs:     s.cfg.DisplayTime.Milliseconds(),
	})
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("render index")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// accessLog puts a request-scoped logger in the context and writes one
// line per request once the handler returns.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		l := log.With().Str("reqId", chimw.GetReqID(r.Context())).Logger()
		r = r.WithContext(l.WithContext(r.Context()))

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		l.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("dur", time.Since(start)).
			Msg("http")
	})
}
