// Package stats implements the Stats Repository and the Activity Recorder.
// The repository owns durable load/create/save of one UserStats aggregate
// per user, with a transparent degraded mode: when the store is unavailable
// or persistence is administratively disabled, reads return defaults,
// queries return empty, and writes are discarded — none of that is an error.
package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/koru-wellness/koru/internal/app/rules"
	"github.com/koru-wellness/koru/internal/domain"
	"github.com/koru-wellness/koru/internal/infra/catalog"
	"github.com/koru-wellness/koru/internal/infra/metrics"
)

// Collection names in the backing store.
const (
	ColUserStats     = "userStats"
	ColPointsHistory = "pointsHistory"
)

// Repository loads, creates, and persists UserStats aggregates.
type Repository struct {
	store   domain.RecordStore
	persist bool
	now     func() time.Time // test hook
}

// NewRepository creates a repository over the given store. A nil store or
// persist=false puts the repository in degraded mode.
func NewRepository(store domain.RecordStore, persist bool) *Repository {
	return &Repository{store: store, persist: persist, now: time.Now}
}

// WithClock overrides the repository's time source. Used by tests to pin
// calendar dates; returns the repository for chaining.
func (r *Repository) WithClock(now func() time.Time) *Repository {
	r.now = now
	return r
}

// Degraded reports whether the repository operates without durable storage.
func (r *Repository) Degraded() bool {
	return r.store == nil || !r.persist
}

// UserStats returns the user's aggregate. Read-through-create: an absent
// record is created and persisted atomically, so concurrent first access
// cannot duplicate it. A partially-shaped stored record is backfilled with
// defaults rather than rejected.
func (r *Repository) UserStats(ctx context.Context, userID string) (domain.UserStats, error) {
	if userID == "" {
		return domain.UserStats{}, domain.ErrNoUser
	}
	if r.Degraded() {
		metrics.DegradedFallbacks.Inc()
		return rules.NewDefaultUserStats(userID, r.now()), nil
	}

	var result domain.UserStats
	err := r.store.UpdateRecord(ctx, ColUserStats, userID, func(current domain.Record) (domain.Record, error) {
		if current == nil {
			result = rules.NewDefaultUserStats(userID, r.now())
			return statsToRecord(result)
		}
		result = r.backfill(userID, current)
		return nil, nil // no write needed on plain reads
	})
	if err != nil {
		log.Printf("[stats] load %s: %v", userID, err)
		metrics.StoreErrors.WithLabelValues("read").Inc()
		return domain.UserStats{}, fmt.Errorf("%w: %v", domain.ErrLoadFailed, err)
	}
	return result, nil
}

// UpdateUserStats merge-writes the aggregate with UpdatedAt refreshed.
// No-op in degraded mode.
func (r *Repository) UpdateUserStats(ctx context.Context, stats domain.UserStats) error {
	if stats.UserID == "" {
		return domain.ErrNoUser
	}
	if r.Degraded() {
		metrics.DegradedFallbacks.Inc()
		return nil
	}

	stats.UpdatedAt = r.now().Format(rules.DateLayout)
	rec, err := statsToRecord(stats)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}
	if err := r.store.WriteRecord(ctx, ColUserStats, stats.UserID, rec, true); err != nil {
		log.Printf("[stats] update %s: %v", stats.UserID, err)
		metrics.StoreErrors.WithLabelValues("write").Inc()
		return fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}
	return nil
}

// AddPointsHistoryEntry appends an immutable history record.
// No-op in degraded mode.
func (r *Repository) AddPointsHistoryEntry(ctx context.Context, userID string, activity domain.ActivityType, pointsEarned int, badgesUnlocked []string) error {
	if r.Degraded() {
		metrics.DegradedFallbacks.Inc()
		return nil
	}
	if badgesUnlocked == nil {
		badgesUnlocked = []string{}
	}

	// Timestamps are stored in UTC so the lexicographic range filter in
	// RecentActivity stays correct across local offset changes.
	entry := domain.Record{
		"userId":         userID,
		"activity":       string(activity),
		"pointsEarned":   pointsEarned,
		"timestamp":      r.now().UTC().Format(time.RFC3339),
		"badgesUnlocked": badgesUnlocked,
	}
	if _, err := r.store.AppendRecord(ctx, ColPointsHistory, entry); err != nil {
		log.Printf("[stats] append history for %s: %v", userID, err)
		metrics.StoreErrors.WithLabelValues("append").Inc()
		return fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}
	return nil
}

// PointsHistory returns the user's most recent history entries,
// newest first. Empty in degraded mode, never an error.
func (r *Repository) PointsHistory(ctx context.Context, userID string, limit int) ([]domain.PointsHistoryEntry, error) {
	if r.Degraded() {
		metrics.DegradedFallbacks.Inc()
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	recs, err := r.store.QueryRecords(ctx, ColPointsHistory, domain.Query{
		Filters:    []domain.Filter{{Field: "userId", Op: "==", Value: userID}},
		OrderBy:    "timestamp",
		Descending: true,
		Limit:      limit,
	})
	if err != nil {
		log.Printf("[stats] history query for %s: %v", userID, err)
		metrics.StoreErrors.WithLabelValues("query").Inc()
		return nil, fmt.Errorf("%w: %v", domain.ErrLoadFailed, err)
	}
	return decodeHistory(recs)
}

// RecentActivity returns history entries from the last N days, newest first.
func (r *Repository) RecentActivity(ctx context.Context, userID string, days int) ([]domain.PointsHistoryEntry, error) {
	if r.Degraded() {
		metrics.DegradedFallbacks.Inc()
		return nil, nil
	}
	if days <= 0 {
		days = 7
	}

	since := r.now().UTC().AddDate(0, 0, -days).Format(time.RFC3339)
	recs, err := r.store.QueryRecords(ctx, ColPointsHistory, domain.Query{
		Filters: []domain.Filter{
			{Field: "userId", Op: "==", Value: userID},
			{Field: "timestamp", Op: ">=", Value: since},
		},
		OrderBy:    "timestamp",
		Descending: true,
	})
	if err != nil {
		log.Printf("[stats] recent query for %s: %v", userID, err)
		metrics.StoreErrors.WithLabelValues("query").Inc()
		return nil, fmt.Errorf("%w: %v", domain.ErrLoadFailed, err)
	}
	return decodeHistory(recs)
}

// Leaderboard returns the top users by total points, descending.
func (r *Repository) Leaderboard(ctx context.Context, limit int) ([]domain.UserStats, error) {
	if r.Degraded() {
		metrics.DegradedFallbacks.Inc()
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	recs, err := r.store.QueryRecords(ctx, ColUserStats, domain.Query{
		OrderBy:    "totalPoints",
		Descending: true,
		Limit:      limit,
	})
	if err != nil {
		log.Printf("[stats] leaderboard query: %v", err)
		metrics.StoreErrors.WithLabelValues("query").Inc()
		return nil, fmt.Errorf("%w: %v", domain.ErrLoadFailed, err)
	}

	out := make([]domain.UserStats, 0, len(recs))
	for _, rec := range recs {
		userID, _ := rec["userId"].(string)
		out = append(out, r.backfill(userID, rec))
	}
	return out, nil
}

// ResetUserStats replaces the aggregate with fresh defaults.
// No-op in degraded mode.
func (r *Repository) ResetUserStats(ctx context.Context, userID string) error {
	if userID == "" {
		return domain.ErrNoUser
	}
	if r.Degraded() {
		metrics.DegradedFallbacks.Inc()
		return nil
	}

	rec, err := statsToRecord(rules.NewDefaultUserStats(userID, r.now()))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}
	if err := r.store.WriteRecord(ctx, ColUserStats, userID, rec, false); err != nil {
		log.Printf("[stats] reset %s: %v", userID, err)
		metrics.StoreErrors.WithLabelValues("write").Inc()
		return fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}
	return nil
}

// AwardBadge adds a badge to the user's set manually, recomputing totals.
// Already-held badges are a no-op. The award is recorded in history.
func (r *Repository) AwardBadge(ctx context.Context, userID, badgeID string) error {
	if _, ok := catalog.BadgeByID(badgeID); !ok {
		return domain.ErrUnknownBadge
	}
	if r.Degraded() {
		metrics.DegradedFallbacks.Inc()
		return nil
	}

	awarded := false
	err := r.store.UpdateRecord(ctx, ColUserStats, userID, func(current domain.Record) (domain.Record, error) {
		stats := r.recordOrDefault(userID, current)
		if stats.HasBadge(badgeID) {
			return nil, nil
		}
		stats.UnlockedBadges = append(stats.UnlockedBadges, badgeID)
		stats.TotalPoints = rules.CalculateTotalPoints(stats)
		stats.UpdatedAt = r.now().Format(rules.DateLayout)
		awarded = true
		return statsToRecord(stats)
	})
	if err != nil {
		log.Printf("[stats] award badge %s to %s: %v", badgeID, userID, err)
		metrics.StoreErrors.WithLabelValues("write").Inc()
		return fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}
	if !awarded {
		return nil
	}

	metrics.BadgesUnlocked.WithLabelValues(badgeID).Inc()
	return r.AddPointsHistoryEntry(ctx, userID, domain.ActivityStreakMilestone, 0, []string{badgeID})
}

// UpdateUserStreak sets the streak fields manually (streak corrections).
// Pass longestStreak < 0 to keep the larger of the stored and new values.
func (r *Repository) UpdateUserStreak(ctx context.Context, userID string, currentStreak, longestStreak int) error {
	if r.Degraded() {
		metrics.DegradedFallbacks.Inc()
		return nil
	}

	err := r.store.UpdateRecord(ctx, ColUserStats, userID, func(current domain.Record) (domain.Record, error) {
		stats := r.recordOrDefault(userID, current)
		stats.CurrentStreak = currentStreak
		if longestStreak >= 0 {
			stats.LongestStreak = longestStreak
		} else if currentStreak > stats.LongestStreak {
			stats.LongestStreak = currentStreak
		}
		stats.LastActivityDate = r.now().Format(rules.DateLayout)
		stats.TotalPoints = rules.CalculateTotalPoints(stats)
		stats.UpdatedAt = r.now().Format(rules.DateLayout)
		return statsToRecord(stats)
	})
	if err != nil {
		log.Printf("[stats] update streak for %s: %v", userID, err)
		metrics.StoreErrors.WithLabelValues("write").Inc()
		return fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}
	return nil
}

// ─── Codec ──────────────────────────────────────────────────────────────────

func statsToRecord(s domain.UserStats) (domain.Record, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var rec domain.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// backfill decodes a stored record into UserStats, filling any missing
// fields so schema evolution never fails a read.
func (r *Repository) backfill(userID string, rec domain.Record) domain.UserStats {
	var stats domain.UserStats
	if raw, err := json.Marshal(rec); err == nil {
		_ = json.Unmarshal(raw, &stats)
	}

	stats.UserID = userID
	if stats.ActivityCounts == nil {
		stats.ActivityCounts = make(map[domain.ActivityType]int, len(catalog.ActivityPoints))
	}
	for activity := range catalog.ActivityPoints {
		if _, ok := stats.ActivityCounts[activity]; !ok {
			stats.ActivityCounts[activity] = 0
		}
	}
	if stats.UnlockedBadges == nil {
		stats.UnlockedBadges = []string{}
	}
	today := r.now().Format(rules.DateLayout)
	if stats.CreatedAt == "" {
		stats.CreatedAt = today
	}
	if stats.UpdatedAt == "" {
		stats.UpdatedAt = today
	}
	return stats
}

func (r *Repository) recordOrDefault(userID string, rec domain.Record) domain.UserStats {
	if rec == nil {
		return rules.NewDefaultUserStats(userID, r.now())
	}
	return r.backfill(userID, rec)
}

func decodeHistory(recs []domain.Record) ([]domain.PointsHistoryEntry, error) {
	out := make([]domain.PointsHistoryEntry, 0, len(recs))
	for _, rec := range recs {
		raw, err := json.Marshal(rec)
		if err != nil {
			return nil, err
		}
		var e domain.PointsHistoryEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
