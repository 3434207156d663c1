package sources

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/mdaehl/PaperStream/internal/domain"
)

// Throttler enforces an adapter's outgoing request policy: a minimum
// interval between calls and an optional per-run call budget. It is safe
// for concurrent use.
type Throttler struct {
	source  string
	limiter *rate.Limiter
	budget  int

	mu    sync.Mutex
	calls int
}

// NewThrottler creates a throttler for the named source.
// minInterval is the minimum spacing between two calls; zero disables
// interval pacing. budget caps calls per run; zero means unlimited.
func NewThrottler(source string, minInterval time.Duration, budget int) *Throttler {
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}
	return &Throttler{
		source:  source,
		limiter: rate.NewLimiter(limit, 1),
		budget:  budget,
	}
}

// Acquire blocks until the next call is allowed, or fails fast with
// domain.BudgetExceededError once the budget is spent. The budget check
// happens before any waiting so an exhausted throttler never sleeps.
func (t *Throttler) Acquire(ctx context.Context) error {
	t.mu.Lock()
	if t.budget > 0 && t.calls >= t.budget {
		t.mu.Unlock()
		return domain.NewBudgetExceededError(t.source, t.budget)
	}
	t.calls++
	t.mu.Unlock()

	return t.limiter.Wait(ctx)
}

// Calls returns the number of calls granted so far.
func (t *Throttler) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

// Remaining returns the number of calls left in the budget, or -1 for an
// unlimited throttler.
func (t *Throttler) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.budget == 0 {
		return -1
	}
	left := t.budget - t.calls
	if left < 0 {
		return 0
	}
	return left
}
