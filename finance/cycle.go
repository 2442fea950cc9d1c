/*
cycle.go - Budget cycle resolution

PURPOSE:
  A budget cycle is a roughly month-long period that starts on a
  configurable reset day and may span a calendar-month boundary. A
  cycle with reset day 28 runs Dec 28 through Jan 27.

THE CRITICAL RULE:
  Budget-limit lookups use the CycleConfig keyed by the month in which
  the cycle STARTS, not the month of the date being evaluated. A cycle
  starting Dec 28, evaluated on Jan 15, uses December's limit. Looking
  up January instead silently resets the limit mid-cycle, which is the
  single easiest correctness bug to reintroduce here.

CONFIG INHERITANCE:
  A month with no stored config inherits from the nearest earlier
  stored month, up to 24 months back. A user who configures a limit
  once keeps it until they change it. Nothing stored anywhere means
  limit 0 and reset day 1.
*/
package finance

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// inheritanceWindow bounds the backward walk for config inheritance.
const inheritanceWindow = 24

// defaultResetDay applies when no config exists at all.
const defaultResetDay = 1

// ClampResetDay forces a reset day into [1, 31]. Read paths clamp
// defensively rather than fail mid-aggregation.
func ClampResetDay(day int) int {
	if day < 1 {
		return 1
	}
	if day > 31 {
		return 31
	}
	return day
}

// effectiveResetDay clamps the configured reset day to the length of a
// concrete month, so reset day 31 still resolves in February.
func effectiveResetDay(d Date, resetDay int) int {
	resetDay = ClampResetDay(resetDay)
	if days := DaysInMonth(d.Year(), d.Month()); resetDay > days {
		return days
	}
	return resetDay
}

// CycleStart returns the first day of the budget cycle containing d.
// If d's day-of-month is at or past the reset day, the cycle starts in
// d's month; otherwise it started in the previous month.
func CycleStart(d Date, resetDay int) Date {
	if d.Day() >= effectiveResetDay(d, resetDay) {
		return NewDate(d.Year(), d.Month(), effectiveResetDay(d, resetDay))
	}
	prev := StartOfMonth(d.Year(), d.Month()).AddDays(-1) // last day of previous month
	return NewDate(prev.Year(), prev.Month(), effectiveResetDay(prev, resetDay))
}

// CycleFor returns the full cycle period containing d: from the cycle
// start through the day before the next reset. The next reset is the
// effective reset day of the month after the start month, so a cycle
// starting Jan 31 with reset day 31 ends Feb 27 (Feb 28 clamps the
// next reset).
func CycleFor(d Date, resetDay int) Period {
	start := CycleStart(d, resetDay)
	next := StartOfMonth(start.Year(), start.Month()).AddMonths(1)
	nextStart := NewDate(next.Year(), next.Month(), effectiveResetDay(next, resetDay))
	return Period{Start: start, End: nextStart.AddDays(-1)}
}

// =============================================================================
// CONFIG RESOLUTION
// =============================================================================

// ConfigFor resolves the cycle config for a month key, walking back
// through earlier months when the key itself was never configured.
// Returns a zero-limit, day-1 config when nothing is stored anywhere.
func (e *Engine) ConfigFor(ctx context.Context, monthKey string) (CycleConfig, error) {
	key := monthKey
	for i := 0; i <= inheritanceWindow; i++ {
		cfg, err := e.store.CycleConfig(ctx, key)
		if err != nil {
			return CycleConfig{}, fmt.Errorf("load cycle config %s: %w", key, err)
		}
		if cfg != nil {
			out := *cfg
			out.ResetDay = ClampResetDay(out.ResetDay)
			return out, nil
		}
		prev, ok := PrevMonthKey(key)
		if !ok {
			break
		}
		key = prev
	}
	return CycleConfig{ResetDay: defaultResetDay}, nil
}

// resetDayFor resolves the reset day in effect for a month.
func (e *Engine) resetDayFor(ctx context.Context, monthKey string) (int, error) {
	cfg, err := e.ConfigFor(ctx, monthKey)
	if err != nil {
		return 0, err
	}
	return cfg.ResetDay, nil
}

// cycleLimit resolves the budget limit for the cycle containing d,
// keyed by the cycle's start month per the critical rule above.
func (e *Engine) cycleLimit(ctx context.Context, d Date, resetDay int) (CycleConfig, Date, error) {
	start := CycleStart(d, resetDay)
	cfg, err := e.ConfigFor(ctx, start.MonthKey())
	if err != nil {
		return CycleConfig{}, Date{}, err
	}
	return cfg, start, nil
}

// RemainingLimitOn returns the budget left in the cycle containing day:
// the cycle's limit minus the expense portion of every day from the
// cycle start through day, floored at zero. Income never replenishes
// the limit.
func (e *Engine) RemainingLimitOn(ctx context.Context, day Date) (decimal.Decimal, error) {
	resetDay, err := e.resetDayFor(ctx, day.MonthKey())
	if err != nil {
		return decimal.Zero, err
	}
	cfg, start, err := e.cycleLimit(ctx, day, resetDay)
	if err != nil {
		return decimal.Zero, err
	}

	entries, err := e.store.Entries(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("load entries: %w", err)
	}
	today := e.today()

	spent := decimal.Zero
	for d := start; d.BeforeOrEqual(day); d = d.AddDays(1) {
		points, err := e.store.PointExpenses(ctx, d)
		if err != nil {
			return decimal.Zero, fmt.Errorf("load point expenses %s: %w", d, err)
		}
		spent = spent.Add(dailyExpensesOnly(points, expandEntries(entries, d, today)).Neg())
	}

	remaining := cfg.DesiredMonthlyExpense.Sub(spent)
	if remaining.IsNegative() {
		return decimal.Zero, nil
	}
	return remaining, nil
}
