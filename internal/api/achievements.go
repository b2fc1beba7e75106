package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/koru-wellness/koru/internal/app/rules"
	"github.com/koru-wellness/koru/internal/domain"
	"github.com/koru-wellness/koru/internal/infra/catalog"
)

// --- GET /api/achievements/catalog ---

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"activityPoints":    catalog.ActivityPoints,
		"levels":            catalog.Levels,
		"streakBonuses":     catalog.StreakBonuses,
		"badges":            catalog.Badges,
		"dailyPointsTarget": rules.GetDailyPointsTarget(),
	})
}

// --- GET /api/achievements/users/{userID}/stats ---

func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	userStats, err := s.stats.UserStats(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userStats)
}

// --- GET /api/achievements/users/{userID}/summary ---

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	userStats, err := s.stats.UserStats(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"stats":         userStats,
		"level":         rules.CalculateLevel(userStats.TotalPoints),
		"levelProgress": rules.CalculateLevelProgress(userStats.TotalPoints),
		"badgeCount":    len(userStats.UnlockedBadges),
		"badgeTotal":    len(catalog.Badges),
	})
}

// --- GET /api/achievements/users/{userID}/badges ---

type badgeStatus struct {
	domain.Badge
	Unlocked bool `json:"unlocked"`
	Progress int  `json:"progress"`
}

func (s *Server) handleBadges(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	userStats, err := s.stats.UserStats(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]badgeStatus, 0, len(catalog.Badges))
	for _, badge := range catalog.Badges {
		progress, _ := rules.GetBadgeProgress(badge.ID, userStats)
		out = append(out, badgeStatus{
			Badge:    badge,
			Unlocked: userStats.HasBadge(badge.ID),
			Progress: progress,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"badges": out})
}

// --- GET /api/achievements/users/{userID}/history ---

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	limit := queryInt(r, "limit", s.opts.HistoryLimit)

	entries, err := s.stats.PointsHistory(r.Context(), userID, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.PointsHistoryEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"history": entries})
}

// --- GET /api/achievements/users/{userID}/recent ---

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	days := queryInt(r, "days", s.opts.RecentDays)

	entries, err := s.stats.RecentActivity(r.Context(), userID, days)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.PointsHistoryEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"activity": entries})
}

// --- GET /api/achievements/leaderboard ---

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", s.opts.LeaderboardLimit)

	board, err := s.stats.Leaderboard(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if board == nil {
		board = []domain.UserStats{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"leaderboard": board})
}

// --- POST /api/achievements/users/{userID}/activity ---

type recordActivityRequest struct {
	Activity   domain.ActivityType `json:"activity"`
	PointsHint int                 `json:"pointsHint,omitempty"`
}

func (s *Server) handleRecordActivity(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req recordActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.stats.RecordActivity(r.Context(), userID, req.Activity, req.PointsHint)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// --- POST /api/achievements/users/{userID}/reset ---

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if err := s.stats.ResetUserStats(r.Context(), userID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// writeDomainError maps the domain error taxonomy onto HTTP statuses:
// caller errors are 400, load failures 502, write failures 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnknownActivity),
		errors.Is(err, domain.ErrUnknownBadge),
		errors.Is(err, domain.ErrNoUser):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrLoadFailed):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
