// Package blocker implements the auto-blocking scheduler: a periodic cycle
// that records one block action per eligible user, subject to a 100-action
// quota that resets 10 minutes after the last recorded action.
package blocker

import (
	"fmt"
	"time"

	"github.com/fuckp0/feedsheild/internal/storage"
)

const (
	// WindowLimit is the maximum number of block actions per quota window.
	WindowLimit = 100
	// WindowDuration is how long the day counter must sit untouched before
	// its window count resets to zero.
	WindowDuration = 600 * time.Second
)

// Tracker decides, per user and per invocation, whether one more block
// action may be recorded, and persists the outcome.
type Tracker struct {
	store  storage.Store
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewTracker(store storage.Store) *Tracker {
	return &Tracker{
		store:  store,
		limit:  WindowLimit,
		window: WindowDuration,
		now:    time.Now,
	}
}

// TryIncrement records one block action for the user if the quota allows it.
// It returns whether an action was recorded. The read-modify-write of the
// counters is atomic in the store, so concurrent calls for the same user
// never overcommit the last slot below the cap.
//
// The window counter is not a sliding window: it resets only once the last
// recorded action is at least WindowDuration old. A user who fills the cap
// is therefore blocked until 10 minutes after their last successful action.
func (t *Tracker) TryIncrement(userID uint) (bool, error) {
	now := t.now()

	counter, err := t.store.GetDayCounter(userID, now)
	if err != nil {
		return false, fmt.Errorf("read day counter for user %d: %w", userID, err)
	}

	// Stale window: write the reset immediately, even if the increment
	// below never happens.
	if counter.LastBlockAt != nil && now.Sub(*counter.LastBlockAt) >= t.window {
		if err := t.store.ResetDayCounter(userID, now); err != nil {
			return false, fmt.Errorf("reset day counter for user %d: %w", userID, err)
		}
		counter.Blocked = 0
	}

	if counter.Blocked >= t.limit {
		return false, nil
	}

	applied, err := t.store.IncrementBlockCounters(userID, now, now, t.limit)
	if err != nil {
		return false, fmt.Errorf("increment counters for user %d: %w", userID, err)
	}
	return applied, nil
}
