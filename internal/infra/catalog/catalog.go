// Package catalog holds the static achievement data: the activity point
// table, level thresholds, streak bonuses, and badge definitions.
// This is the engine's "rulebook" — consumers treat it as read-only.
package catalog

import (
	"sort"

	"github.com/koru-wellness/koru/internal/domain"
)

// ActivityPoints maps each activity kind to the points it earns per occurrence.
var ActivityPoints = map[domain.ActivityType]int{
	domain.ActivityBreathing:       25,
	domain.ActivityWorkout:         50,
	domain.ActivityJournal:         30,
	domain.ActivityMoodCheck:       15,
	domain.ActivityMeditation:      40,
	domain.ActivityMusicSession:    10,
	domain.ActivityChatSession:     5,
	domain.ActivityDailyGoal:       20,
	domain.ActivityStreakMilestone: 100,
	domain.ActivityProfileComplete: 50,
	domain.ActivityOnboarding:      100,
}

// KnownActivity reports whether the activity is in the fixed catalog set.
// Count-based operations reject anything outside it.
func KnownActivity(a domain.ActivityType) bool {
	_, ok := ActivityPoints[a]
	return ok
}

// ActivityTypes returns every catalog activity in sorted order, for stable
// listings.
func ActivityTypes() []domain.ActivityType {
	out := make([]domain.ActivityType, 0, len(ActivityPoints))
	for a := range ActivityPoints {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Levels is the ascending level ladder. A user's level is the highest entry
// whose PointsRequired ≤ totalPoints; Seedling is always eligible.
var Levels = []domain.Level{
	{Level: 1, Name: "Seedling", PointsRequired: 0, Icon: "🌱"},
	{Level: 2, Name: "Sprout", PointsRequired: 100, Icon: "🌿"},
	{Level: 3, Name: "Sapling", PointsRequired: 300, Icon: "🌵"},
	{Level: 4, Name: "Young Tree", PointsRequired: 600, Icon: "🌴"},
	{Level: 5, Name: "Tree", PointsRequired: 1000, Icon: "🌲"},
	{Level: 6, Name: "Forest", PointsRequired: 2000, Icon: "🌳"},
	{Level: 7, Name: "Green Valley", PointsRequired: 4000, Icon: "⛰️"},
	{Level: 8, Name: "Mountain", PointsRequired: 8000, Icon: "🏔️"},
	{Level: 9, Name: "Koru Spirit", PointsRequired: 16000, Icon: "✨"},
	{Level: 10, Name: "Koru Guardian", PointsRequired: 32000, Icon: "🔮"},
}

// StreakBonuses maps streak-day thresholds to one-time bonus points.
// Only the highest threshold met contributes, not the cumulative sum.
var StreakBonuses = map[int]int{
	3:   25,
	7:   75,
	14:  150,
	30:  300,
	60:  500,
	90:  750,
	180: 1500,
	365: 3000,
}

// StreakThresholds returns the bonus thresholds in descending order.
func StreakThresholds() []int {
	out := make([]int, 0, len(StreakBonuses))
	for k := range StreakBonuses {
		out = append(out, k)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

// Badges is the built-in badge catalog. Definition order is the order
// newly unlocked badges are reported in.
// Note: milestone requirements currently evaluate as always-met (matching
// shipped behavior); the flag tracking they imply needs product input.
var Badges = []domain.Badge{
	{
		ID: "mood-tracker-bronze", Name: "Mood Tracker",
		Description: "Log your mood for 3 consecutive days",
		Icon:        "😊", Category: domain.CatWellness, Type: domain.TierBronze, Points: 50,
		Requirements: domain.BadgeRequirement{Type: domain.ReqStreak, Target: 3, Activity: domain.ActivityMoodCheck},
	},
	{
		ID: "mindful-moments-bronze", Name: "Mindful Moments",
		Description: "Complete 5 mindfulness exercises",
		Icon:        "🧘", Category: domain.CatWellness, Type: domain.TierBronze, Points: 75,
		Requirements: domain.BadgeRequirement{Type: domain.ReqCount, Target: 5, Activity: domain.ActivityBreathing},
	},
	{
		ID: "mood-master-silver", Name: "Mood Master",
		Description: "Maintain a 7-day mood logging streak",
		Icon:        "🌟", Category: domain.CatWellness, Type: domain.TierSilver, Points: 150,
		Requirements: domain.BadgeRequirement{Type: domain.ReqStreak, Target: 7, Activity: domain.ActivityMoodCheck},
	},
	{
		ID: "exercise-enthusiast-silver", Name: "Exercise Enthusiast",
		Description: "Complete 20 mindfulness exercises",
		Icon:        "💪", Category: domain.CatWellness, Type: domain.TierSilver, Points: 200,
		Requirements: domain.BadgeRequirement{Type: domain.ReqCount, Target: 20, Activity: domain.ActivityBreathing},
	},
	{
		ID: "wellness-guru-gold", Name: "Wellness Guru",
		Description: "Achieve a 30-day mood tracking streak",
		Icon:        "🏆", Category: domain.CatWellness, Type: domain.TierGold, Points: 500,
		Requirements: domain.BadgeRequirement{Type: domain.ReqStreak, Target: 30, Activity: domain.ActivityMoodCheck},
	},
	{
		ID: "chat-starter-bronze", Name: "Chat Starter",
		Description: "Send 10 messages to your AI companion",
		Icon:        "💬", Category: domain.CatSocial, Type: domain.TierBronze, Points: 30,
		Requirements: domain.BadgeRequirement{Type: domain.ReqCount, Target: 10, Activity: domain.ActivityChatSession},
	},
	{
		ID: "journal-writer-bronze", Name: "Journal Writer",
		Description: "Write 3 journal entries",
		Icon:        "📝", Category: domain.CatSocial, Type: domain.TierBronze, Points: 60,
		Requirements: domain.BadgeRequirement{Type: domain.ReqCount, Target: 3, Activity: domain.ActivityJournal},
	},
	{
		ID: "conversation-master-silver", Name: "Conversation Master",
		Description: "Have meaningful chats for 5 consecutive days",
		Icon:        "🗣️", Category: domain.CatSocial, Type: domain.TierSilver, Points: 100,
		Requirements: domain.BadgeRequirement{Type: domain.ReqStreak, Target: 5, Activity: domain.ActivityChatSession},
	},
	{
		ID: "storyteller-silver", Name: "Storyteller",
		Description: "Write 10 journal entries",
		Icon:        "📖", Category: domain.CatSocial, Type: domain.TierSilver, Points: 180,
		Requirements: domain.BadgeRequirement{Type: domain.ReqCount, Target: 10, Activity: domain.ActivityJournal},
	},
	{
		ID: "first-steps-bronze", Name: "First Steps",
		Description: "Complete your profile setup",
		Icon:        "👤", Category: domain.CatGrowth, Type: domain.TierBronze, Points: 100,
		Requirements: domain.BadgeRequirement{Type: domain.ReqMilestone, Target: 1},
	},
	{
		ID: "point-collector-silver", Name: "Point Collector",
		Description: "Earn 500 total points",
		Icon:        "💎", Category: domain.CatGrowth, Type: domain.TierSilver, Points: 100,
		Requirements: domain.BadgeRequirement{Type: domain.ReqPoints, Target: 500},
	},
	{
		ID: "level-achiever-gold", Name: "Level Achiever",
		Description: "Reach Level 5 (Tree)",
		Icon:        "🌲", Category: domain.CatGrowth, Type: domain.TierGold, Points: 300,
		Requirements: domain.BadgeRequirement{Type: domain.ReqPoints, Target: 1000},
	},
	{
		ID: "daily-visitor-bronze", Name: "Daily Visitor",
		Description: "Be active for 3 consecutive days",
		Icon:        "📅", Category: domain.CatConsistency, Type: domain.TierBronze, Points: 40,
		Requirements: domain.BadgeRequirement{Type: domain.ReqStreak, Target: 3, Activity: domain.ActivityMoodCheck},
	},
	{
		ID: "week-warrior-silver", Name: "Week Warrior",
		Description: "Stay active for 7 consecutive days",
		Icon:        "⭐", Category: domain.CatConsistency, Type: domain.TierSilver, Points: 200,
		Requirements: domain.BadgeRequirement{Type: domain.ReqStreak, Target: 7},
	},
	{
		ID: "month-master-gold", Name: "Month Master",
		Description: "Maintain 30-day overall activity streak",
		Icon:        "👑", Category: domain.CatConsistency, Type: domain.TierGold, Points: 750,
		Requirements: domain.BadgeRequirement{Type: domain.ReqStreak, Target: 30},
	},
	{
		ID: "koru-champion-platinum", Name: "Koru Champion",
		Description: "Reach maximum level (Koru Guardian)",
		Icon:        "🏅", Category: domain.CatMilestone, Type: domain.TierPlatinum, Points: 1000,
		Requirements: domain.BadgeRequirement{Type: domain.ReqPoints, Target: 32000},
	},
}

// BadgeByID returns the badge definition, or false if the ID is unknown.
func BadgeByID(id string) (domain.Badge, bool) {
	for _, b := range Badges {
		if b.ID == id {
			return b, true
		}
	}
	return domain.Badge{}, false
}

// BadgesByCategory returns all badges in a category, in definition order.
func BadgesByCategory(c domain.BadgeCategory) []domain.Badge {
	var out []domain.Badge
	for _, b := range Badges {
		if b.Category == c {
			out = append(out, b)
		}
	}
	return out
}

// BadgesByType returns all badges of a rarity tier, in definition order.
func BadgesByType(t domain.BadgeType) []domain.Badge {
	var out []domain.Badge
	for _, b := range Badges {
		if b.Type == t {
			out = append(out, b)
		}
	}
	return out
}

// BadgeCategories lists every category.
func BadgeCategories() []domain.BadgeCategory {
	return []domain.BadgeCategory{
		domain.CatWellness, domain.CatSocial, domain.CatGrowth,
		domain.CatConsistency, domain.CatMilestone,
	}
}

// BadgeTypes lists every rarity tier.
func BadgeTypes() []domain.BadgeType {
	return []domain.BadgeType{
		domain.TierBronze, domain.TierSilver, domain.TierGold, domain.TierPlatinum,
	}
}

// LevelByRank returns the level with the given rank, or false if out of range.
func LevelByRank(rank int) (domain.Level, bool) {
	for _, l := range Levels {
		if l.Level == rank {
			return l, true
		}
	}
	return domain.Level{}, false
}
