// Package rules implements the pure achievement rules engine.
// Every function here is side-effect free and total over well-typed input;
// the only failures are caller errors (unknown activity or badge ID).
// State mutation helpers return a fresh UserStats with TotalPoints re-derived.
package rules

import (
	"github.com/koru-wellness/koru/internal/domain"
	"github.com/koru-wellness/koru/internal/infra/catalog"
)

// DateLayout is the calendar-date format stored on UserStats.
const DateLayout = "2006-01-02"

// CalculateLevel returns the highest level whose threshold is ≤ totalPoints.
// Never fails — the lowest level has a zero threshold and is always eligible.
func CalculateLevel(totalPoints int) domain.Level {
	best := catalog.Levels[0]
	for _, l := range catalog.Levels {
		if totalPoints >= l.PointsRequired && l.Level > best.Level {
			best = l
		}
	}
	return best
}

// CalculateLevelProgress returns progress toward the next level as a
// percentage in [0,100]. At the top level it is always 100.
func CalculateLevelProgress(totalPoints int) int {
	current := CalculateLevel(totalPoints)
	idx := 0
	for i, l := range catalog.Levels {
		if l.Level == current.Level {
			idx = i
			break
		}
	}
	if idx == len(catalog.Levels)-1 {
		return 100
	}

	next := catalog.Levels[idx+1]
	earned := totalPoints - current.PointsRequired
	span := next.PointsRequired - current.PointsRequired
	progress := earned * 100 / span
	if progress > 100 {
		progress = 100
	}
	return progress
}

// GetDailyPointsTarget returns the points a user earns by completing the
// basic daily wellness loop: mood check, breathing exercise, daily goal.
func GetDailyPointsTarget() int {
	return catalog.ActivityPoints[domain.ActivityMoodCheck] +
		catalog.ActivityPoints[domain.ActivityBreathing] +
		catalog.ActivityPoints[domain.ActivityDailyGoal]
}
