// Package session holds the reactive achievement view for one user session.
// A Controller is constructed at session start and torn down at session end;
// there is no process-wide singleton. All state changes flow through a
// tagged command type processed by a single pure transition function.
package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/koru-wellness/koru/internal/app/rules"
	"github.com/koru-wellness/koru/internal/app/stats"
	"github.com/koru-wellness/koru/internal/domain"
	"github.com/koru-wellness/koru/internal/infra/catalog"
	"github.com/koru-wellness/koru/internal/infra/metrics"
)

// loadErrMsg is the generic user-facing message for load failures.
const loadErrMsg = "Failed to load achievement data"

// State is the view consumed by UI collaborators. Fields are derived from
// UserStats on every transition; BadgeNotifications is a FIFO of badge IDs
// pending a "newly unlocked" notification.
type State struct {
	UserStats          *domain.UserStats
	CurrentLevel       domain.Level
	LevelProgress      int
	UnlockedBadges     []domain.Badge
	AvailableBadges    []domain.Badge
	Loading            bool
	Err                string
	BadgeNotifications []string
}

// ─── Commands ───────────────────────────────────────────────────────────────
// The state machine is driven by a closed set of commands; apply is the only
// place state is computed.

type command interface{ isCommand() }

type cmdSetLoading struct{ loading bool }
type cmdSetError struct{ msg string }
type cmdSetStats struct{ stats domain.UserStats }
type cmdActivityRecorded struct {
	stats     domain.UserStats
	newBadges []string
}
type cmdClearNotification struct{ badgeID string }
type cmdReset struct{ userID string }

func (cmdSetLoading) isCommand()        {}
func (cmdSetError) isCommand()          {}
func (cmdSetStats) isCommand()          {}
func (cmdActivityRecorded) isCommand()  {}
func (cmdClearNotification) isCommand() {}
func (cmdReset) isCommand()             {}

// apply is the pure transition function: State × command → State.
func apply(s State, c command) State {
	switch c := c.(type) {
	case cmdSetLoading:
		s.Loading = c.loading
		return s

	case cmdSetError:
		s.Err = c.msg
		s.Loading = false
		return s

	case cmdSetStats:
		return withDerived(s, c.stats)

	case cmdActivityRecorded:
		s = withDerived(s, c.stats)
		s.BadgeNotifications = append(s.BadgeNotifications, c.newBadges...)
		return s

	case cmdClearNotification:
		kept := s.BadgeNotifications[:0:0]
		for _, id := range s.BadgeNotifications {
			if id != c.badgeID {
				kept = append(kept, id)
			}
		}
		s.BadgeNotifications = kept
		return s

	case cmdReset:
		return withDerived(initialState(), rules.NewDefaultUserStats(c.userID, time.Now()))

	default:
		return s
	}
}

// withDerived recomputes every stats-derived field.
func withDerived(s State, us domain.UserStats) State {
	s.UserStats = &us
	s.CurrentLevel = rules.CalculateLevel(us.TotalPoints)
	s.LevelProgress = rules.CalculateLevelProgress(us.TotalPoints)

	var unlocked []domain.Badge
	for _, b := range catalog.Badges {
		if us.HasBadge(b.ID) {
			unlocked = append(unlocked, b)
		}
	}
	s.UnlockedBadges = unlocked
	s.Loading = false
	s.Err = ""
	return s
}

func initialState() State {
	return State{
		CurrentLevel:    catalog.Levels[0],
		AvailableBadges: catalog.Badges,
	}
}

// ─── Controller ─────────────────────────────────────────────────────────────

// Controller owns one session's state. Mutation entry points serialize on
// the mutex; loads carry a generation token so a load superseded by logout
// or a user switch discards its result instead of applying stale data.
type Controller struct {
	repo *stats.Repository

	mu      sync.Mutex
	state   State
	userID  string
	loadGen int
}

// NewController creates a controller in the Uninitialized state.
func NewController(repo *stats.Repository) *Controller {
	metrics.SessionsActive.Inc()
	return &Controller{repo: repo, state: initialState()}
}

// Close tears the session down.
func (c *Controller) Close() {
	metrics.SessionsActive.Dec()
}

// Start binds the controller to a user and loads their stats.
// On load failure the error message is set and prior stats are kept.
func (c *Controller) Start(ctx context.Context, userID string) error {
	c.mu.Lock()
	c.userID = userID
	c.loadGen++
	gen := c.loadGen
	c.state = apply(c.state, cmdSetLoading{loading: true})
	c.mu.Unlock()

	return c.load(ctx, userID, gen)
}

// RefreshUserStats reloads the bound user's stats from the repository.
func (c *Controller) RefreshUserStats(ctx context.Context) error {
	c.mu.Lock()
	userID := c.userID
	gen := c.loadGen
	c.mu.Unlock()
	if userID == "" {
		return domain.ErrNoUser
	}
	return c.load(ctx, userID, gen)
}

func (c *Controller) load(ctx context.Context, userID string, gen int) error {
	loaded, err := c.repo.UserStats(ctx, userID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.loadGen || c.userID != userID {
		return nil // superseded by logout or user switch — discard
	}
	if err != nil {
		log.Printf("[session] load stats for %s: %v", userID, err)
		c.state = apply(c.state, cmdSetError{msg: loadErrMsg})
		return err
	}
	c.state = apply(c.state, cmdSetStats{stats: loaded})
	return nil
}

// End clears the session on logout: default stats for an empty user, no
// pending notifications. In-flight loads for the previous user are discarded.
func (c *Controller) End() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = ""
	c.loadGen++
	c.state = apply(c.state, cmdReset{userID: ""})
}

// RecordUserActivity runs the Activity Recorder for the bound user and folds
// the outcome into the view. Newly unlocked badge IDs join the notification
// queue. A write failure is surfaced to the caller; the view is re-read from
// the repository so an optimistic update is never trusted as durable.
func (c *Controller) RecordUserActivity(ctx context.Context, activity domain.ActivityType, pointsHint int) error {
	c.mu.Lock()
	userID := c.userID
	c.mu.Unlock()
	if userID == "" {
		return domain.ErrNoUser
	}

	result, err := c.repo.RecordActivity(ctx, userID, activity, pointsHint)
	if err != nil {
		// Reconcile the view with whatever actually persisted.
		_ = c.RefreshUserStats(ctx)
		return err
	}

	updated, loadErr := c.repo.UserStats(ctx, userID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.userID != userID {
		return nil // logged out while recording
	}
	if loadErr != nil {
		c.state = apply(c.state, cmdSetError{msg: loadErrMsg})
		return loadErr
	}
	c.state = apply(c.state, cmdActivityRecorded{stats: updated, newBadges: result.NewBadges})
	metrics.NotificationsPending.Set(float64(len(c.state.BadgeNotifications)))
	return nil
}

// ResetUserStats resets the bound user's aggregate and view.
func (c *Controller) ResetUserStats(ctx context.Context) error {
	c.mu.Lock()
	userID := c.userID
	c.mu.Unlock()
	if userID == "" {
		return domain.ErrNoUser
	}

	if err := c.repo.ResetUserStats(ctx, userID); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.userID != userID {
		return nil
	}
	c.state = apply(c.state, cmdReset{userID: userID})
	metrics.NotificationsPending.Set(0)
	return nil
}

// ClearBadgeNotification removes a badge ID from the queue regardless of
// position, so explicit dismissal can race auto-dismiss safely.
func (c *Controller) ClearBadgeNotification(badgeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = apply(c.state, cmdClearNotification{badgeID: badgeID})
	metrics.NotificationsPending.Set(float64(len(c.state.BadgeNotifications)))
}

// NextNotification dequeues the oldest pending badge notification.
func (c *Controller) NextNotification() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.state.BadgeNotifications) == 0 {
		return "", false
	}
	id := c.state.BadgeNotifications[0]
	c.state = apply(c.state, cmdClearNotification{badgeID: id})
	metrics.NotificationsPending.Set(float64(len(c.state.BadgeNotifications)))
	return id, true
}

// Snapshot returns a copy of the current view.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	if s.UserStats != nil {
		us := s.UserStats.Clone()
		s.UserStats = &us
	}
	s.UnlockedBadges = append([]domain.Badge(nil), s.UnlockedBadges...)
	s.BadgeNotifications = append([]string(nil), s.BadgeNotifications...)
	return s
}
