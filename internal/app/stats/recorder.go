package stats

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/koru-wellness/koru/internal/app/rules"
	"github.com/koru-wellness/koru/internal/domain"
	"github.com/koru-wellness/koru/internal/infra/catalog"
	"github.com/koru-wellness/koru/internal/infra/metrics"
)

// ActivityResult is what RecordActivity reports back to the caller.
type ActivityResult struct {
	NewBadges   []string `json:"newBadges"`
	TotalPoints int      `json:"totalPoints"`
}

// RecordActivity processes one "activity occurred" event as a single logical
// transaction: bump the count, advance the streak for daily activities,
// unlock any badges now earned, re-derive TotalPoints, persist, and append a
// history entry carrying the points delta and new badge IDs.
//
// The read-modify-write runs inside the store's transactional update, so
// concurrent recordings for the same user serialize instead of clobbering
// each other. pointsHint is accepted for caller display purposes only; the
// stored total always comes from rules.CalculateTotalPoints.
func (r *Repository) RecordActivity(ctx context.Context, userID string, activity domain.ActivityType, pointsHint int) (ActivityResult, error) {
	_ = pointsHint

	if userID == "" {
		return ActivityResult{}, domain.ErrNoUser
	}
	if !catalog.KnownActivity(activity) {
		return ActivityResult{}, domain.ErrUnknownActivity
	}
	if r.Degraded() {
		// Activity is silently not tracked durably.
		metrics.DegradedFallbacks.Inc()
		return ActivityResult{NewBadges: []string{}}, nil
	}

	var (
		result ActivityResult
		delta  int
	)
	err := r.store.UpdateRecord(ctx, ColUserStats, userID, func(current domain.Record) (domain.Record, error) {
		before := r.recordOrDefault(userID, current)
		prevPoints := before.TotalPoints

		updated, err := rules.UpdateActivityCount(before, activity, 1)
		if err != nil {
			return nil, err
		}

		if domain.IsDailyActivity(activity) {
			streaked := rules.UpdateStreak(updated, true, r.now())
			updated.CurrentStreak = streaked.CurrentStreak
			updated.LastActivityDate = streaked.LastActivityDate
			if streaked.LongestStreak > updated.LongestStreak {
				updated.LongestStreak = streaked.LongestStreak
			}
		}

		newBadgeIDs := []string{}
		for _, badge := range rules.GetNewlyUnlockedBadges(updated) {
			newBadgeIDs = append(newBadgeIDs, badge.ID)
		}
		updated.UnlockedBadges = append(updated.UnlockedBadges, newBadgeIDs...)

		updated.TotalPoints = rules.CalculateTotalPoints(updated)
		updated.UpdatedAt = r.now().Format(rules.DateLayout)

		result = ActivityResult{NewBadges: newBadgeIDs, TotalPoints: updated.TotalPoints}
		delta = updated.TotalPoints - prevPoints
		return statsToRecord(updated)
	})
	if err != nil {
		if errors.Is(err, domain.ErrUnknownActivity) {
			return ActivityResult{}, err
		}
		log.Printf("[stats] record %s for %s: %v", activity, userID, err)
		metrics.StoreErrors.WithLabelValues("write").Inc()
		return ActivityResult{}, fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}

	// History append failing after the stats write is still a reportable
	// error — the caller must not treat the recording as fully applied.
	if err := r.AddPointsHistoryEntry(ctx, userID, activity, delta, result.NewBadges); err != nil {
		return ActivityResult{}, err
	}

	metrics.ActivitiesRecorded.WithLabelValues(string(activity)).Inc()
	if delta > 0 {
		metrics.PointsAwarded.WithLabelValues(string(activity)).Add(float64(delta))
	}
	for _, id := range result.NewBadges {
		metrics.BadgesUnlocked.WithLabelValues(id).Inc()
	}

	return result, nil
}
