package finance

import (
	"time"
)

// =============================================================================
// ENGINE - Pure computation over the record store
// =============================================================================

// Engine derives daily totals, cycle budgets, account balances, and
// monthly plans from the record store. It holds no mutable state of
// its own: every result is a deterministic function of the store's
// current contents and the passed-in dates.
type Engine struct {
	store Store

	// now is injectable for tests; occurrence statuses and end-of-month
	// prediction are the only consumers.
	now func() time.Time
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// WithClock overrides the engine's notion of "today". Used by tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

func (e *Engine) today() Date {
	return DateOf(e.now())
}

// Store exposes the underlying record store for callers that write
// records directly (the engine only reads).
func (e *Engine) Store() Store {
	return e.store
}
