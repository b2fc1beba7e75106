// Package domain — achievement engine types.
// The achievement engine converts discrete wellness activities into points,
// streaks, levels, and badges. Design rule: totalPoints is always re-derived,
// never incremented ad hoc.
package domain

// ─── Activity Types ─────────────────────────────────────────────────────────

// ActivityType identifies a kind of wellness activity.
type ActivityType string

const (
	ActivityBreathing       ActivityType = "breathing_exercise"
	ActivityWorkout         ActivityType = "workout"
	ActivityJournal         ActivityType = "journal_entry"
	ActivityMoodCheck       ActivityType = "mood_check"
	ActivityMeditation      ActivityType = "meditation"
	ActivityMusicSession    ActivityType = "music_session"
	ActivityChatSession     ActivityType = "chat_session"
	ActivityDailyGoal       ActivityType = "daily_goal_complete"
	ActivityStreakMilestone ActivityType = "streak_milestone"
	ActivityProfileComplete ActivityType = "profile_complete"
	ActivityOnboarding      ActivityType = "onboarding_complete"
)

// DailyActivities are the activities that advance the daily streak.
var DailyActivities = []ActivityType{
	ActivityMoodCheck,
	ActivityBreathing,
	ActivityDailyGoal,
}

// IsDailyActivity reports whether the activity counts toward the streak.
func IsDailyActivity(a ActivityType) bool {
	for _, d := range DailyActivities {
		if a == d {
			return true
		}
	}
	return false
}

// ─── User Stats ─────────────────────────────────────────────────────────────

// UserStats is the per-user aggregate the engine mutates. One record per user.
// Invariant: TotalPoints == sum(activity counts × point values)
// + highest streak bonus met + sum of unlocked badge rewards.
type UserStats struct {
	UserID           string               `json:"userId"`
	TotalPoints      int                  `json:"totalPoints"`
	CurrentStreak    int                  `json:"currentStreak"`
	LongestStreak    int                  `json:"longestStreak"`
	LastActivityDate string               `json:"lastActivityDate"` // "YYYY-MM-DD", local; "" before first activity
	ActivityCounts   map[ActivityType]int `json:"activityCounts"`
	UnlockedBadges   []string             `json:"unlockedBadges"`
	CreatedAt        string               `json:"createdAt"`
	UpdatedAt        string               `json:"updatedAt"`
}

// HasBadge reports whether the badge ID is already unlocked.
func (s UserStats) HasBadge(badgeID string) bool {
	for _, id := range s.UnlockedBadges {
		if id == badgeID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy. Rules Engine functions operate on copies so
// callers never see a half-applied mutation.
func (s UserStats) Clone() UserStats {
	out := s
	out.ActivityCounts = make(map[ActivityType]int, len(s.ActivityCounts))
	for k, v := range s.ActivityCounts {
		out.ActivityCounts[k] = v
	}
	out.UnlockedBadges = append([]string(nil), s.UnlockedBadges...)
	return out
}

// ─── Badges ─────────────────────────────────────────────────────────────────

// BadgeCategory groups badges by theme.
type BadgeCategory string

const (
	CatWellness    BadgeCategory = "wellness"
	CatSocial      BadgeCategory = "social"
	CatGrowth      BadgeCategory = "growth"
	CatConsistency BadgeCategory = "consistency"
	CatMilestone   BadgeCategory = "milestone"
)

// BadgeType is the badge rarity tier.
type BadgeType string

const (
	TierBronze   BadgeType = "bronze"
	TierSilver   BadgeType = "silver"
	TierGold     BadgeType = "gold"
	TierPlatinum BadgeType = "platinum"
)

// RequirementType selects the unlock predicate for a badge.
type RequirementType string

const (
	ReqCount     RequirementType = "count"
	ReqStreak    RequirementType = "streak"
	ReqPoints    RequirementType = "points"
	ReqMilestone RequirementType = "milestone"
)

// BadgeRequirement is the declarative unlock condition.
// For ReqStreak the Activity field is informational only — the unlock check
// tests the overall CurrentStreak, not a per-activity streak.
type BadgeRequirement struct {
	Type     RequirementType `json:"type"`
	Target   int             `json:"target"`
	Activity ActivityType    `json:"activity,omitempty"`
}

// Badge is an immutable catalog definition. Only its ID is persisted per user.
type Badge struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	Icon         string           `json:"icon"`
	Category     BadgeCategory    `json:"category"`
	Type         BadgeType        `json:"type"`
	Points       int              `json:"points"` // reward added to totalPoints once, on unlock
	Requirements BadgeRequirement `json:"requirements"`
}

// ─── Levels ─────────────────────────────────────────────────────────────────

// Level is an immutable catalog definition. A user's level is the highest
// level whose threshold is ≤ totalPoints.
type Level struct {
	Level          int    `json:"level"`
	Name           string `json:"name"`
	PointsRequired int    `json:"pointsRequired"`
	Icon           string `json:"icon"`
}

// ─── Points History ─────────────────────────────────────────────────────────

// PointsHistoryEntry is an append-only record of one recorded activity.
// Never mutated after creation.
type PointsHistoryEntry struct {
	ID             string       `json:"id"`
	UserID         string       `json:"userId"`
	Activity       ActivityType `json:"activity"`
	PointsEarned   int          `json:"pointsEarned"`
	Timestamp      string       `json:"timestamp"` // ISO instant
	BadgesUnlocked []string     `json:"badgesUnlocked"`
}
