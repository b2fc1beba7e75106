package rules

import (
	"github.com/koru-wellness/koru/internal/domain"
	"github.com/koru-wellness/koru/internal/infra/catalog"
)

// CalculateTotalPoints recomputes the aggregate from scratch:
// per-activity counts × point values, plus the highest streak bonus met,
// plus the reward of every unlocked badge. This is the single source of
// truth for TotalPoints — callers recompute after any mutation instead of
// incrementing, so the three contributing sources can never drift.
func CalculateTotalPoints(stats domain.UserStats) int {
	total := 0

	for activity, count := range stats.ActivityCounts {
		if points, ok := catalog.ActivityPoints[activity]; ok {
			total += points * count
		}
	}

	total += CheckStreakBonus(stats.CurrentStreak)

	for _, badgeID := range stats.UnlockedBadges {
		if badge, ok := catalog.BadgeByID(badgeID); ok {
			total += badge.Points
		}
	}

	return total
}

// UpdateActivityCount returns a new stats value with the activity's count
// bumped by increment and TotalPoints re-derived. Activities outside the
// catalog are a caller error — no counter key is silently created.
func UpdateActivityCount(stats domain.UserStats, activity domain.ActivityType, increment int) (domain.UserStats, error) {
	if !catalog.KnownActivity(activity) {
		return domain.UserStats{}, domain.ErrUnknownActivity
	}

	out := stats.Clone()
	out.ActivityCounts[activity] += increment
	out.TotalPoints = CalculateTotalPoints(out)
	return out, nil
}
