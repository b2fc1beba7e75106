package rules

import (
	"time"

	"github.com/koru-wellness/koru/internal/domain"
	"github.com/koru-wellness/koru/internal/infra/catalog"
)

// CheckStreakBonus returns the bonus for the highest streak threshold met,
// not the cumulative sum of all thresholds. 0 if no threshold is met.
func CheckStreakBonus(currentStreak int) int {
	for _, threshold := range catalog.StreakThresholds() {
		if currentStreak >= threshold {
			return catalog.StreakBonuses[threshold]
		}
	}
	return 0
}

// UpdateStreak applies the streak state machine at calendar-day granularity
// and returns a new stats value with TotalPoints re-derived.
//
//	isActiveToday=false            → streak broken, reset to 0
//	lastActivityDate == today      → no change (idempotent re-entry same day)
//	lastActivityDate == yesterday  → streak extends by 1
//	anything else (gap or first)   → streak restarts at 1
func UpdateStreak(stats domain.UserStats, isActiveToday bool, day time.Time) domain.UserStats {
	out := stats.Clone()
	today := day.Format(DateLayout)

	if !isActiveToday {
		out.CurrentStreak = 0
		out.TotalPoints = CalculateTotalPoints(out)
		return out
	}

	switch stats.LastActivityDate {
	case today:
		return stats
	case day.AddDate(0, 0, -1).Format(DateLayout):
		out.CurrentStreak++
	default:
		out.CurrentStreak = 1
	}

	out.LastActivityDate = today
	if out.CurrentStreak > out.LongestStreak {
		out.LongestStreak = out.CurrentStreak
	}
	out.TotalPoints = CalculateTotalPoints(out)
	return out
}

// NewDefaultUserStats returns a zeroed aggregate for a new user: all counts 0,
// empty badge set, no streak, created/updated stamped with the given day.
func NewDefaultUserStats(userID string, day time.Time) domain.UserStats {
	today := day.Format(DateLayout)
	counts := make(map[domain.ActivityType]int, len(catalog.ActivityPoints))
	for activity := range catalog.ActivityPoints {
		counts[activity] = 0
	}
	return domain.UserStats{
		UserID:           userID,
		TotalPoints:      0,
		CurrentStreak:    0,
		LongestStreak:    0,
		LastActivityDate: "",
		ActivityCounts:   counts,
		UnlockedBadges:   []string{},
		CreatedAt:        today,
		UpdatedAt:        today,
	}
}
