package rules

import (
	"github.com/koru-wellness/koru/internal/domain"
	"github.com/koru-wellness/koru/internal/infra/catalog"
)

// CheckBadgeUnlocked reports whether the stats satisfy the badge's
// requirement. Returns domain.ErrUnknownBadge for an ID not in the catalog.
//
// Streak requirements test the overall CurrentStreak even when the
// requirement names a specific activity — per-activity streaks are not
// tracked. Milestone requirements always evaluate as met; see the catalog
// note on the missing flag tracking.
func CheckBadgeUnlocked(badgeID string, stats domain.UserStats) (bool, error) {
	badge, ok := catalog.BadgeByID(badgeID)
	if !ok {
		return false, domain.ErrUnknownBadge
	}

	req := badge.Requirements
	switch req.Type {
	case domain.ReqCount:
		if req.Activity == "" {
			return false, nil
		}
		return stats.ActivityCounts[req.Activity] >= req.Target, nil
	case domain.ReqStreak:
		return stats.CurrentStreak >= req.Target, nil
	case domain.ReqPoints:
		return stats.TotalPoints >= req.Target, nil
	case domain.ReqMilestone:
		return true, nil
	default:
		return false, nil
	}
}

// GetBadgeProgress returns progress toward a badge as a percentage in
// [0,100], using the same per-type logic as CheckBadgeUnlocked.
// Milestone badges are binary: 0 or 100.
func GetBadgeProgress(badgeID string, stats domain.UserStats) (int, error) {
	badge, ok := catalog.BadgeByID(badgeID)
	if !ok {
		return 0, domain.ErrUnknownBadge
	}

	req := badge.Requirements
	switch req.Type {
	case domain.ReqCount:
		if req.Activity == "" {
			return 0, nil
		}
		return clampPct(stats.ActivityCounts[req.Activity], req.Target), nil
	case domain.ReqStreak:
		return clampPct(stats.CurrentStreak, req.Target), nil
	case domain.ReqPoints:
		return clampPct(stats.TotalPoints, req.Target), nil
	case domain.ReqMilestone:
		unlocked, err := CheckBadgeUnlocked(badgeID, stats)
		if err != nil || !unlocked {
			return 0, err
		}
		return 100, nil
	default:
		return 0, nil
	}
}

// GetNewlyUnlockedBadges returns every catalog badge whose requirement is met
// and whose ID is not yet in stats.UnlockedBadges, in catalog order.
func GetNewlyUnlockedBadges(stats domain.UserStats) []domain.Badge {
	var newly []domain.Badge
	for _, badge := range catalog.Badges {
		if stats.HasBadge(badge.ID) {
			continue
		}
		unlocked, err := CheckBadgeUnlocked(badge.ID, stats)
		if err == nil && unlocked {
			newly = append(newly, badge)
		}
	}
	return newly
}

func clampPct(current, target int) int {
	if target <= 0 {
		return 100
	}
	pct := current * 100 / target
	if pct > 100 {
		pct = 100
	}
	return pct
}
