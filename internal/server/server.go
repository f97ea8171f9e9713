package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lazypower/lifehack/internal/engine"
	"github.com/lazypower/lifehack/internal/store"
)

// Server is the lifehack HTTP API server.
type Server struct {
	db      *store.DB
	mgr     *engine.Manager
	logger  *slog.Logger
	router  chi.Router
	version string
	started time.Time
}

// New creates a new Server over the given database, manager and version string.
func New(db *store.DB, mgr *engine.Manager, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		db:      db,
		mgr:     mgr,
		logger:  logger,
		version: version,
		started: time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/items", s.handleListItems)
		r.Post("/items", s.handleAddItem)
		r.Put("/items/{id}", s.handleUpdateItem)
		r.Delete("/items/{id}", s.handleRetireItem)
		r.Post("/items/{id}/replace", s.handleReplaceItem)
		r.Post("/items/{id}/snooze", s.handleSnooze)

		r.Get("/retired", s.handleListRetired)
		r.Post("/retired/{id}/restore", s.handleRestore)
		r.Delete("/retired/{id}", s.handlePermanentDelete)

		r.Post("/deliveries", s.handleDeliver)
		r.Get("/deliveries/last", s.handleLastDelivery)
		r.Post("/deliveries/{id}/feedback", s.handleFeedback)

		r.Get("/today", s.handleToday)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.Ping(); err != nil {
		dbOK = false
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"version":      s.version,
		"uptime":       time.Since(s.started).Seconds(),
		"db":           dbOK,
		"db_path":      s.db.Path,
		"active_items": len(s.mgr.ActiveItems()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeMutationError reports a failed Manager call. A persistence failure
// still leaves the change applied in memory, which the message says.
func (s *Server) writeMutationError(w http.ResponseWriter, err error) {
	var perr *engine.PersistError
	if errors.As(err, &perr) {
		s.logger.Error("state not saved", "op", perr.Op, "error", perr.Err)
		writeError(w, http.StatusInternalServerError, "change applied but not saved: "+perr.Err.Error())
		return
	}
	s.logger.Error("request failed", "error", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}
