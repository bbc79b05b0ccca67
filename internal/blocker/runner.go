package blocker

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/fuckp0/feedsheild/internal/sentry"
	"github.com/fuckp0/feedsheild/internal/storage"
)

// DefaultInterval paces cycles so a user can reach the 100-action cap just
// as the 10-minute window elapses (600s / 100 = 6s).
const DefaultInterval = 6 * time.Second

// Runner drives the periodic blocking cycles. A failed or panicking cycle
// never stops the schedule; the next tick always runs.
type Runner struct {
	store    storage.Store
	tracker  *Tracker
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRunner(store storage.Store, tracker *Tracker, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		store:    store,
		tracker:  tracker,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the background loop. Call Shutdown to stop it.
func (r *Runner) Start() {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		log.Printf("Auto-blocker started (interval %s)", r.interval)

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-r.ctx.Done():
				log.Println("Auto-blocker: shutdown signal received, stopping")
				return
			case <-ticker.C:
				r.runCycle()
			}
		}
	}()
}

// Shutdown cancels the loop and waits for an in-flight cycle to finish,
// respecting the provided context's deadline. Abandoning a cycle is safe:
// per-user writes are atomic, so a half-processed cycle simply resumes on
// the next period after restart.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runCycle processes every eligible user once. Per-user failures are logged
// and skipped so one broken user cannot starve the rest.
func (r *Runner) runCycle() {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("Panic recovered in blocking cycle: %v", rec)
		}
	}()

	users, err := r.eligibleUsers()
	if err != nil {
		sentry.CaptureError(err, "blocking cycle: listing eligible users")
		return
	}

	for _, userID := range users {
		select {
		case <-r.ctx.Done():
			return
		default:
		}

		blocked, err := r.tracker.TryIncrement(userID)
		if err != nil {
			sentry.CaptureErrorf(err, "blocking cycle: user %d", userID)
			continue
		}
		if blocked {
			log.Printf("Auto-blocked account for user %d", userID)
		}
	}
}

// eligibleUsers returns the users subject to blocking this cycle: those
// with at least one payment record and at least one connected account.
// The set is re-queried fresh every cycle so it reflects current state.
func (r *Runner) eligibleUsers() ([]uint, error) {
	paid, err := r.store.ListPaidUserIDs()
	if err != nil {
		return nil, err
	}

	eligible := make([]uint, 0, len(paid))
	for _, userID := range paid {
		accounts, err := r.store.ListConnectedAccounts(userID)
		if err != nil {
			sentry.CaptureErrorf(err, "blocking cycle: listing accounts for user %d", userID)
			continue
		}
		for _, account := range accounts {
			if account.Connected {
				eligible = append(eligible, userID)
				break
			}
		}
	}
	return eligible, nil
}
