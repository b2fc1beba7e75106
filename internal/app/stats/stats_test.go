package stats_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/koru-wellness/koru/internal/app/rules"
	"github.com/koru-wellness/koru/internal/app/stats"
	"github.com/koru-wellness/koru/internal/domain"
	"github.com/koru-wellness/koru/internal/infra/sqlite"
)

var base = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

func testDB(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// testRepo returns a repository with a pinned, adjustable clock.
func testRepo(t *testing.T) (*stats.Repository, *time.Time) {
	t.Helper()
	now := base
	repo := stats.NewRepository(testDB(t), true).WithClock(func() time.Time { return now })
	return repo, &now
}

// ═══════════════════════════════════════════════════════════════════════════
// Load / Create
// ═══════════════════════════════════════════════════════════════════════════

func TestUserStats_CreatesDefaults(t *testing.T) {
	repo, _ := testRepo(t)
	ctx := context.Background()

	s, err := repo.UserStats(ctx, "user-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.UserID != "user-1" || s.TotalPoints != 0 || s.CurrentStreak != 0 {
		t.Errorf("unexpected defaults: %+v", s)
	}
	if len(s.UnlockedBadges) != 0 {
		t.Errorf("expected no badges, got %v", s.UnlockedBadges)
	}

	// Second load returns the persisted record, not a fresh create.
	again, err := repo.UserStats(ctx, "user-1")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.CreatedAt != s.CreatedAt {
		t.Errorf("expected stable CreatedAt, got %q then %q", s.CreatedAt, again.CreatedAt)
	}
}

func TestUserStats_EmptyUserID(t *testing.T) {
	repo, _ := testRepo(t)
	_, err := repo.UserStats(context.Background(), "")
	if !errors.Is(err, domain.ErrNoUser) {
		t.Errorf("expected ErrNoUser, got %v", err)
	}
}

func TestUserStats_BackfillsPartialRecord(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	// A record written by an older build: missing counts, badges, dates.
	err := db.WriteRecord(ctx, stats.ColUserStats, "user-1", domain.Record{
		"userId":      "user-1",
		"totalPoints": float64(150),
	}, false)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	repo := stats.NewRepository(db, true).WithClock(func() time.Time { return base })
	s, err := repo.UserStats(ctx, "user-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.TotalPoints != 150 {
		t.Errorf("expected stored points kept, got %d", s.TotalPoints)
	}
	if s.ActivityCounts == nil || s.ActivityCounts[domain.ActivityMoodCheck] != 0 {
		t.Error("expected activity counts backfilled to zero")
	}
	if s.UnlockedBadges == nil {
		t.Error("expected badge slice backfilled")
	}
	if s.CreatedAt == "" || s.UpdatedAt == "" {
		t.Error("expected dates backfilled")
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Degraded Mode
// ═══════════════════════════════════════════════════════════════════════════

func TestDegraded_NilStore(t *testing.T) {
	repo := stats.NewRepository(nil, true)
	ctx := context.Background()

	if !repo.Degraded() {
		t.Fatal("expected degraded with nil store")
	}

	s, err := repo.UserStats(ctx, "user-1")
	if err != nil {
		t.Fatalf("degraded load must not error: %v", err)
	}
	if s.UserID != "user-1" || s.TotalPoints != 0 {
		t.Errorf("expected defaults, got %+v", s)
	}

	if err := repo.UpdateUserStats(ctx, s); err != nil {
		t.Errorf("degraded write must be a no-op, got %v", err)
	}
	if err := repo.ResetUserStats(ctx, "user-1"); err != nil {
		t.Errorf("degraded reset must be a no-op, got %v", err)
	}

	hist, err := repo.PointsHistory(ctx, "user-1", 10)
	if err != nil || len(hist) != 0 {
		t.Errorf("expected empty history without error, got %v, %v", hist, err)
	}
	board, err := repo.Leaderboard(ctx, 10)
	if err != nil || len(board) != 0 {
		t.Errorf("expected empty leaderboard without error, got %v, %v", board, err)
	}
}

func TestDegraded_PersistenceDisabled(t *testing.T) {
	repo := stats.NewRepository(testDB(t), false)
	ctx := context.Background()

	if !repo.Degraded() {
		t.Fatal("expected degraded with persistence disabled")
	}

	res, err := repo.RecordActivity(ctx, "user-1", domain.ActivityMoodCheck, 0)
	if err != nil {
		t.Fatalf("degraded record must not error: %v", err)
	}
	if res.TotalPoints != 0 || len(res.NewBadges) != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}

	// Reads keep answering with defaults. Nothing reached the store.
	s, _ := repo.UserStats(ctx, "user-1")
	if s.ActivityCounts[domain.ActivityMoodCheck] != 0 {
		t.Error("degraded recording leaked into stats")
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Store Failures
// ═══════════════════════════════════════════════════════════════════════════
// A failing store with persistence enabled is a real error, not degraded
// mode: reads wrap ErrLoadFailed, mutations wrap ErrWriteFailed.

// brokenRepo returns a persist=true repository whose store has been closed.
func brokenRepo(t *testing.T) *stats.Repository {
	t.Helper()
	store, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	store.Close()
	return stats.NewRepository(store, true).WithClock(func() time.Time { return base })
}

func TestUserStats_StoreFailureIsLoadFailed(t *testing.T) {
	repo := brokenRepo(t)
	if repo.Degraded() {
		t.Fatal("a failing store must not count as degraded mode")
	}

	_, err := repo.UserStats(context.Background(), "user-1")
	if !errors.Is(err, domain.ErrLoadFailed) {
		t.Errorf("expected ErrLoadFailed, got %v", err)
	}
}

func TestRecordActivity_StoreFailureIsWriteFailed(t *testing.T) {
	repo := brokenRepo(t)
	_, err := repo.RecordActivity(context.Background(), "user-1", domain.ActivityMoodCheck, 0)
	if !errors.Is(err, domain.ErrWriteFailed) {
		t.Errorf("expected ErrWriteFailed, got %v", err)
	}
}

func TestUpdateUserStats_StoreFailureIsWriteFailed(t *testing.T) {
	repo := brokenRepo(t)
	s := rules.NewDefaultUserStats("user-1", base)
	if err := repo.UpdateUserStats(context.Background(), s); !errors.Is(err, domain.ErrWriteFailed) {
		t.Errorf("expected ErrWriteFailed, got %v", err)
	}
}

func TestPointsHistory_StoreFailureIsLoadFailed(t *testing.T) {
	repo := brokenRepo(t)
	if _, err := repo.PointsHistory(context.Background(), "user-1", 10); !errors.Is(err, domain.ErrLoadFailed) {
		t.Errorf("expected ErrLoadFailed, got %v", err)
	}
	if _, err := repo.Leaderboard(context.Background(), 10); !errors.Is(err, domain.ErrLoadFailed) {
		t.Errorf("expected ErrLoadFailed, got %v", err)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Activity Recording
// ═══════════════════════════════════════════════════════════════════════════

func TestRecordActivity_UnknownActivity(t *testing.T) {
	repo, _ := testRepo(t)
	_, err := repo.RecordActivity(context.Background(), "user-1", "juggling", 0)
	if !errors.Is(err, domain.ErrUnknownActivity) {
		t.Errorf("expected ErrUnknownActivity, got %v", err)
	}
}

func TestRecordActivity_EmptyUser(t *testing.T) {
	repo, _ := testRepo(t)
	_, err := repo.RecordActivity(context.Background(), "", domain.ActivityMoodCheck, 0)
	if !errors.Is(err, domain.ErrNoUser) {
		t.Errorf("expected ErrNoUser, got %v", err)
	}
}

func TestRecordActivity_FirstMoodCheck(t *testing.T) {
	repo, _ := testRepo(t)
	ctx := context.Background()

	res, err := repo.RecordActivity(ctx, "user-1", domain.ActivityMoodCheck, 0)
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	// 15 activity points plus the always-met profile milestone badge (100).
	if res.TotalPoints != 115 {
		t.Errorf("expected 115 total points, got %d", res.TotalPoints)
	}
	if len(res.NewBadges) != 1 || res.NewBadges[0] != "first-steps-bronze" {
		t.Errorf("expected first-steps-bronze unlocked, got %v", res.NewBadges)
	}

	s, _ := repo.UserStats(ctx, "user-1")
	if s.CurrentStreak != 1 {
		t.Errorf("expected streak 1, got %d", s.CurrentStreak)
	}
	if s.ActivityCounts[domain.ActivityMoodCheck] != 1 {
		t.Errorf("expected count 1, got %d", s.ActivityCounts[domain.ActivityMoodCheck])
	}
}

func TestRecordActivity_SameDayKeepsStreak(t *testing.T) {
	repo, now := testRepo(t)
	ctx := context.Background()

	repo.RecordActivity(ctx, "user-1", domain.ActivityMoodCheck, 0)
	*now = base.Add(3 * time.Hour)
	res, err := repo.RecordActivity(ctx, "user-1", domain.ActivityMoodCheck, 0)
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	s, _ := repo.UserStats(ctx, "user-1")
	if s.CurrentStreak != 1 {
		t.Errorf("expected streak still 1 same day, got %d", s.CurrentStreak)
	}
	if s.ActivityCounts[domain.ActivityMoodCheck] != 2 {
		t.Errorf("expected count 2, got %d", s.ActivityCounts[domain.ActivityMoodCheck])
	}
	// 2×15 + milestone badge 100
	if res.TotalPoints != 130 {
		t.Errorf("expected 130 points, got %d", res.TotalPoints)
	}
}

func TestRecordActivity_ThreeDayStreakUnlocksBadges(t *testing.T) {
	repo, now := testRepo(t)
	ctx := context.Background()

	var last stats.ActivityResult
	for i := 0; i < 3; i++ {
		*now = base.AddDate(0, 0, i)
		res, err := repo.RecordActivity(ctx, "user-1", domain.ActivityMoodCheck, 0)
		if err != nil {
			t.Fatalf("day %d: %v", i, err)
		}
		last = res
	}

	s, _ := repo.UserStats(ctx, "user-1")
	if s.CurrentStreak != 3 || s.LongestStreak != 3 {
		t.Fatalf("expected streak 3/3, got %d/%d", s.CurrentStreak, s.LongestStreak)
	}

	// Both three-day streak badges unlock on day three.
	want := map[string]bool{"mood-tracker-bronze": true, "daily-visitor-bronze": true}
	for _, id := range last.NewBadges {
		delete(want, id)
	}
	if len(want) != 0 {
		t.Errorf("expected both streak-3 badges on day 3, missing %v (got %v)", want, last.NewBadges)
	}

	// 3×15 activity + 25 streak bonus + badges 100+50+40.
	if s.TotalPoints != 260 {
		t.Errorf("expected 260 total points, got %d", s.TotalPoints)
	}
	if s.TotalPoints != rules.CalculateTotalPoints(s) {
		t.Errorf("stored total drifted from derivation")
	}
}

func TestRecordActivity_GapResetsStreak(t *testing.T) {
	repo, now := testRepo(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		*now = base.AddDate(0, 0, i)
		if _, err := repo.RecordActivity(ctx, "user-1", domain.ActivityMoodCheck, 0); err != nil {
			t.Fatalf("day %d: %v", i, err)
		}
	}

	*now = base.AddDate(0, 0, 9)
	if _, err := repo.RecordActivity(ctx, "user-1", domain.ActivityMoodCheck, 0); err != nil {
		t.Fatalf("after gap: %v", err)
	}

	s, _ := repo.UserStats(ctx, "user-1")
	if s.CurrentStreak != 1 {
		t.Errorf("expected streak reset to 1, got %d", s.CurrentStreak)
	}
	if s.LongestStreak != 3 {
		t.Errorf("expected longest preserved at 3, got %d", s.LongestStreak)
	}
	// Unlocked badges are kept; their points stay in the total.
	if !s.HasBadge("mood-tracker-bronze") {
		t.Error("expected streak badge retained after streak break")
	}
}

func TestRecordActivity_NonDailySkipsStreak(t *testing.T) {
	repo, _ := testRepo(t)
	ctx := context.Background()

	if _, err := repo.RecordActivity(ctx, "user-1", domain.ActivityWorkout, 0); err != nil {
		t.Fatalf("record: %v", err)
	}

	s, _ := repo.UserStats(ctx, "user-1")
	if s.CurrentStreak != 0 {
		t.Errorf("expected workout not to start a streak, got %d", s.CurrentStreak)
	}
	if s.ActivityCounts[domain.ActivityWorkout] != 1 {
		t.Errorf("expected count 1, got %d", s.ActivityCounts[domain.ActivityWorkout])
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Points History
// ═══════════════════════════════════════════════════════════════════════════

func TestPointsHistory_RecordsDelta(t *testing.T) {
	repo, now := testRepo(t)
	ctx := context.Background()

	repo.RecordActivity(ctx, "user-1", domain.ActivityMoodCheck, 0)
	*now = base.Add(10 * time.Minute)
	repo.RecordActivity(ctx, "user-1", domain.ActivityWorkout, 0)

	hist, err := repo.PointsHistory(ctx, "user-1", 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(hist))
	}

	// Newest first. The workout added exactly 50; the first mood check
	// added 15 plus the 100-point milestone badge.
	if hist[0].Activity != domain.ActivityWorkout || hist[0].PointsEarned != 50 {
		t.Errorf("unexpected newest entry: %+v", hist[0])
	}
	if hist[1].Activity != domain.ActivityMoodCheck || hist[1].PointsEarned != 115 {
		t.Errorf("unexpected oldest entry: %+v", hist[1])
	}
	if len(hist[1].BadgesUnlocked) != 1 || hist[1].BadgesUnlocked[0] != "first-steps-bronze" {
		t.Errorf("expected badge recorded in history, got %v", hist[1].BadgesUnlocked)
	}
}

func TestPointsHistory_IsolatedPerUser(t *testing.T) {
	repo, now := testRepo(t)
	ctx := context.Background()

	repo.RecordActivity(ctx, "user-1", domain.ActivityMoodCheck, 0)
	*now = base.Add(time.Minute)
	repo.RecordActivity(ctx, "user-2", domain.ActivityWorkout, 0)

	hist, err := repo.PointsHistory(ctx, "user-1", 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 1 {
		t.Fatalf("expected 1 entry for user-1, got %d", len(hist))
	}
	if hist[0].UserID != "user-1" {
		t.Errorf("expected user-1 entry, got %q", hist[0].UserID)
	}
}

func TestPointsHistory_TimestampsStoredUTC(t *testing.T) {
	store := testDB(t)
	ctx := context.Background()

	// A clock pinned east of UTC; stored timestamps must still be UTC so
	// the range filter's string comparison works across offset changes.
	loc := time.FixedZone("UTC+13", 13*3600)
	now := time.Date(2025, 7, 1, 23, 30, 0, 0, loc)
	repo := stats.NewRepository(store, true).WithClock(func() time.Time { return now })

	if _, err := repo.RecordActivity(ctx, "user-1", domain.ActivityMoodCheck, 0); err != nil {
		t.Fatalf("record: %v", err)
	}

	hist, err := repo.PointsHistory(ctx, "user-1", 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(hist))
	}

	parsed, err := time.Parse(time.RFC3339, hist[0].Timestamp)
	if err != nil {
		t.Fatalf("parse timestamp %q: %v", hist[0].Timestamp, err)
	}
	if _, offset := parsed.Zone(); offset != 0 {
		t.Errorf("expected UTC timestamp, got %q", hist[0].Timestamp)
	}
	if !parsed.Equal(now) {
		t.Errorf("timestamp %v does not match recording time %v", parsed, now)
	}

	// An entry written under a different offset still lands inside the
	// query window.
	now = time.Date(2025, 7, 3, 10, 0, 0, 0, time.UTC)
	recent, err := repo.RecentActivity(ctx, "user-1", 7)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 1 {
		t.Errorf("expected entry inside 7-day window, got %d", len(recent))
	}
}

func TestRecentActivity_FiltersByWindow(t *testing.T) {
	repo, now := testRepo(t)
	ctx := context.Background()

	repo.RecordActivity(ctx, "user-1", domain.ActivityMoodCheck, 0)
	*now = base.AddDate(0, 0, 20)
	repo.RecordActivity(ctx, "user-1", domain.ActivityJournal, 0)

	recent, err := repo.RecentActivity(ctx, "user-1", 7)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected 1 entry within 7 days, got %d", len(recent))
	}
	if recent[0].Activity != domain.ActivityJournal {
		t.Errorf("expected the recent journal entry, got %+v", recent[0])
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Badge Awards / Streak Corrections / Leaderboard / Reset
// ═══════════════════════════════════════════════════════════════════════════

func TestAwardBadge(t *testing.T) {
	repo, _ := testRepo(t)
	ctx := context.Background()

	if err := repo.AwardBadge(ctx, "user-1", "journal-writer-bronze"); err != nil {
		t.Fatalf("award: %v", err)
	}

	s, _ := repo.UserStats(ctx, "user-1")
	if !s.HasBadge("journal-writer-bronze") {
		t.Fatal("expected badge held")
	}
	if s.TotalPoints != 60 {
		t.Errorf("expected badge reward in total, got %d", s.TotalPoints)
	}

	hist, _ := repo.PointsHistory(ctx, "user-1", 10)
	if len(hist) != 1 || len(hist[0].BadgesUnlocked) != 1 {
		t.Errorf("expected one award history entry, got %v", hist)
	}
}

func TestAwardBadge_Idempotent(t *testing.T) {
	repo, _ := testRepo(t)
	ctx := context.Background()

	repo.AwardBadge(ctx, "user-1", "journal-writer-bronze")
	if err := repo.AwardBadge(ctx, "user-1", "journal-writer-bronze"); err != nil {
		t.Fatalf("second award: %v", err)
	}

	s, _ := repo.UserStats(ctx, "user-1")
	if s.TotalPoints != 60 {
		t.Errorf("expected reward counted once, got %d", s.TotalPoints)
	}
	hist, _ := repo.PointsHistory(ctx, "user-1", 10)
	if len(hist) != 1 {
		t.Errorf("expected single history entry, got %d", len(hist))
	}
}

func TestAwardBadge_Unknown(t *testing.T) {
	repo, _ := testRepo(t)
	err := repo.AwardBadge(context.Background(), "user-1", "no-such-badge")
	if !errors.Is(err, domain.ErrUnknownBadge) {
		t.Errorf("expected ErrUnknownBadge, got %v", err)
	}
}

func TestUpdateUserStreak_KeepLongest(t *testing.T) {
	repo, _ := testRepo(t)
	ctx := context.Background()

	if err := repo.UpdateUserStreak(ctx, "user-1", 5, -1); err != nil {
		t.Fatalf("set streak: %v", err)
	}
	if err := repo.UpdateUserStreak(ctx, "user-1", 2, -1); err != nil {
		t.Fatalf("lower streak: %v", err)
	}

	s, _ := repo.UserStats(ctx, "user-1")
	if s.CurrentStreak != 2 {
		t.Errorf("expected current 2, got %d", s.CurrentStreak)
	}
	if s.LongestStreak != 5 {
		t.Errorf("expected longest kept at 5, got %d", s.LongestStreak)
	}
}

func TestUpdateUserStreak_ExplicitLongest(t *testing.T) {
	repo, _ := testRepo(t)
	ctx := context.Background()

	if err := repo.UpdateUserStreak(ctx, "user-1", 2, 9); err != nil {
		t.Fatalf("set streak: %v", err)
	}
	s, _ := repo.UserStats(ctx, "user-1")
	if s.CurrentStreak != 2 || s.LongestStreak != 9 {
		t.Errorf("expected 2/9, got %d/%d", s.CurrentStreak, s.LongestStreak)
	}
}

func TestLeaderboard_OrdersByPoints(t *testing.T) {
	repo, _ := testRepo(t)
	ctx := context.Background()

	repo.RecordActivity(ctx, "low", domain.ActivityChatSession, 0) // 5 + 100
	repo.RecordActivity(ctx, "high", domain.ActivityWorkout, 0)    // 50 + 100
	repo.RecordActivity(ctx, "mid", domain.ActivityMeditation, 0)  // 40 + 100

	board, err := repo.Leaderboard(ctx, 2)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(board))
	}
	if board[0].UserID != "high" || board[1].UserID != "mid" {
		t.Errorf("unexpected order: %s, %s", board[0].UserID, board[1].UserID)
	}
}

func TestResetUserStats(t *testing.T) {
	repo, _ := testRepo(t)
	ctx := context.Background()

	repo.RecordActivity(ctx, "user-1", domain.ActivityWorkout, 0)
	if err := repo.ResetUserStats(ctx, "user-1"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	s, _ := repo.UserStats(ctx, "user-1")
	if s.TotalPoints != 0 || s.CurrentStreak != 0 {
		t.Errorf("expected zeroed stats, got %+v", s)
	}
	if s.ActivityCounts[domain.ActivityWorkout] != 0 {
		t.Errorf("expected counts cleared, got %d", s.ActivityCounts[domain.ActivityWorkout])
	}
	if len(s.UnlockedBadges) != 0 {
		t.Errorf("expected badges cleared, got %v", s.UnlockedBadges)
	}
}
