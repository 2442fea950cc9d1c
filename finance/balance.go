/*
balance.go - Running account balance ("account money")

PURPOSE:
  The account balance is a sparse series of user-entered snapshots
  plus forward-propagated daily deltas:

    balance(d) = snapshot(s) + sum of dailyTotal over (s, d]

  where s is the latest snapshot day at or before d. A snapshot IS the
  end-of-day balance for its own day. With no snapshot at or before d,
  accumulation starts at zero from the earliest recorded day.

INVARIANTS:
  - Snapshot values are never derived or rewritten by the engine;
    editing a past expense changes every derived balance after the
    nearest preceding snapshot, but no snapshot value.
  - Writing a snapshot clears later snapshots (store contract), so one
    base point exists going forward. Past days keep deriving from
    whatever snapshot preceded them.
*/
package finance

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// BalanceOn returns the account balance as of end of day.
func (e *Engine) BalanceOn(ctx context.Context, day Date) (decimal.Decimal, error) {
	snap, err := e.store.LatestSnapshotOn(ctx, day)
	if err != nil {
		return decimal.Zero, fmt.Errorf("load snapshot for %s: %w", day, err)
	}

	var base decimal.Decimal
	var from Date
	switch {
	case snap != nil && snap.Date.Equal(day):
		return snap.Value, nil
	case snap != nil:
		base = snap.Value
		from = snap.Date.AddDays(1)
	default:
		earliest, err := e.store.EarliestRecordDate(ctx)
		if err != nil {
			return decimal.Zero, fmt.Errorf("find earliest record: %w", err)
		}
		if earliest == nil || earliest.After(day) {
			return decimal.Zero, nil
		}
		base = decimal.Zero
		from = *earliest
	}

	return e.accumulate(ctx, base, from, day)
}

// accumulate replays daily totals over [from, to] on top of base.
func (e *Engine) accumulate(ctx context.Context, base decimal.Decimal, from, to Date) (decimal.Decimal, error) {
	entries, err := e.store.Entries(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("load entries: %w", err)
	}
	today := e.today()

	balance := base
	for d := from; d.BeforeOrEqual(to); d = d.AddDays(1) {
		points, err := e.store.PointExpenses(ctx, d)
		if err != nil {
			return decimal.Zero, fmt.Errorf("load point expenses %s: %w", d, err)
		}
		balance = balance.Add(dailyTotal(points, expandEntries(entries, d, today)))
	}
	return balance, nil
}

// SetSnapshot records a user-entered balance as of end of day. This is
// the one engine-state write the UI performs; it never rewrites past
// days, which keep deriving from earlier snapshots.
func (e *Engine) SetSnapshot(ctx context.Context, day Date, value decimal.Decimal) error {
	return e.store.SaveSnapshot(ctx, Snapshot{Date: day, Value: value})
}

// SetTodaySnapshot is the common write path: the user edits "money in
// account" for the current day.
func (e *Engine) SetTodaySnapshot(ctx context.Context, value decimal.Decimal) error {
	return e.SetSnapshot(ctx, e.today(), value)
}
