// Package api provides the HTTP server for the Koru achievement engine.
// It exposes the engine's read views and the activity-recording entry point
// to UI collaborators and external reporting tools.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/koru-wellness/koru/internal/app/stats"
)

// Options bounds the read queries the server serves.
type Options struct {
	HistoryLimit     int
	LeaderboardLimit int
	RecentDays       int
	CORSOrigins      []string
}

// Server is the Koru HTTP API server.
type Server struct {
	stats          *stats.Repository
	opts           Options
	metricsEnabled bool
}

// NewServer creates a new API server over the stats repository.
func NewServer(repo *stats.Repository, opts Options) *Server {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 50
	}
	if opts.LeaderboardLimit <= 0 {
		opts.LeaderboardLimit = 10
	}
	if opts.RecentDays <= 0 {
		opts.RecentDays = 7
	}
	return &Server{stats: repo, opts: opts}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(s.corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"version": "0.1.0",
		})
	})

	// Achievement engine endpoints
	r.Route("/api/achievements", func(r chi.Router) {
		r.Get("/catalog", s.handleCatalog)
		r.Get("/leaderboard", s.handleLeaderboard)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/stats", s.handleUserStats)
			r.Get("/summary", s.handleSummary)
			r.Get("/badges", s.handleBadges)
			r.Get("/history", s.handleHistory)
			r.Get("/recent", s.handleRecent)
			r.Post("/activity", s.handleRecordActivity)
			r.Post("/reset", s.handleReset)
		})
	})

	// Prometheus metrics endpoint
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware adds CORS headers. The Allow-Origin header takes a single
// value, so with several configured origins the request's Origin is echoed
// back when it matches. No configured origins (or "*") allows everything,
// matching local-development use.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	allowAll := len(s.opts.CORSOrigins) == 0
	allowed := make(map[string]bool, len(s.opts.CORSOrigins))
	for _, origin := range s.opts.CORSOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case allowAll:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case allowed[origin]:
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
