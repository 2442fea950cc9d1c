/*
engine_test.go - Executable specifications for cycle and budget behavior

PURPOSE:
  These tests document the core cycle rules:
  1. Cycle resolution - reset day, clamping, month spanning
  2. Config inheritance - a limit set once applies until changed
  3. Limit lookup - always keyed by the cycle's START month
  4. Remaining limit - expenses only, floored at zero

READING THESE TESTS:
  Each test has GIVEN/WHEN/THEN comments explaining the scenario and
  assertions with explanatory messages.
*/
package finance_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vicvanse/pixelfin/finance"
	memstore "github.com/vicvanse/pixelfin/finance/store"
)

// =============================================================================
// TEST INFRASTRUCTURE
// =============================================================================

func newTestEngine(today string) (*finance.Engine, *memstore.Memory) {
	mem := memstore.NewMemory()
	now, err := time.Parse(finance.DateKeyLayout, today)
	if err != nil {
		panic(err)
	}
	engine := finance.NewEngine(mem).WithClock(func() time.Time { return now })
	return engine, mem
}

func d(s string) finance.Date {
	return finance.MustDate(s)
}

func dec(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func mustAddExpense(t *testing.T, e *finance.Engine, day, amount string) {
	t.Helper()
	if _, err := e.AddPointExpense(context.Background(), d(day), "test", dec(amount), ""); err != nil {
		t.Fatalf("add point expense: %v", err)
	}
}

func mustSaveConfig(t *testing.T, e *finance.Engine, monthKey, limit string, resetDay int) {
	t.Helper()
	cfg := finance.CycleConfig{DesiredMonthlyExpense: dec(limit), ResetDay: resetDay}
	if err := e.SaveCycleConfig(context.Background(), monthKey, cfg); err != nil {
		t.Fatalf("save config %s: %v", monthKey, err)
	}
}

// =============================================================================
// CYCLE RESOLUTION
// =============================================================================

func TestCycleStart_DayAtOrPastResetDay_StartsThisMonth(t *testing.T) {
	// GIVEN: reset day 28
	// WHEN: resolving a day on or after the 28th
	// THEN: the cycle starts on the 28th of the same month
	got := finance.CycleStart(d("2026-01-30"), 28)
	if !got.Equal(d("2026-01-28")) {
		t.Errorf("expected cycle start 2026-01-28, got %s", got)
	}
	got = finance.CycleStart(d("2026-01-28"), 28)
	if !got.Equal(d("2026-01-28")) {
		t.Errorf("reset day itself should begin its cycle, got %s", got)
	}
}

func TestCycleStart_DayBeforeResetDay_StartsPreviousMonth(t *testing.T) {
	// GIVEN: reset day 28
	// WHEN: resolving Jan 15
	// THEN: the cycle started Dec 28 of the previous year
	got := finance.CycleStart(d("2026-01-15"), 28)
	if !got.Equal(d("2025-12-28")) {
		t.Errorf("expected cycle start 2025-12-28, got %s", got)
	}
}

func TestCycleStart_ResetDayClampedToShortMonth(t *testing.T) {
	// GIVEN: reset day 31
	// WHEN: resolving a February day at or past the clamped reset
	// THEN: the cycle starts on Feb 28 (the month's last day)
	got := finance.CycleStart(d("2026-02-28"), 31)
	if !got.Equal(d("2026-02-28")) {
		t.Errorf("expected clamped cycle start 2026-02-28, got %s", got)
	}

	// Feb 27 is before the clamped reset, so the cycle started Jan 31.
	got = finance.CycleStart(d("2026-02-27"), 31)
	if !got.Equal(d("2026-01-31")) {
		t.Errorf("expected cycle start 2026-01-31, got %s", got)
	}
}

func TestCycleFor_EveryDayBelongsToExactlyOneCycle(t *testing.T) {
	// GIVEN: any reset day
	// WHEN: walking a year cycle by cycle
	// THEN: every day of a cycle resolves to that same cycle, and the
	//       day after its end starts the next one; cycles tile the
	//       calendar with no gaps and no overlaps
	for _, resetDay := range []int{1, 15, 28, 29, 31} {
		day := d("2025-06-01")
		stop := d("2026-06-01")
		for day.Before(stop) {
			cycle := finance.CycleFor(day, resetDay)
			if !cycle.Contains(day) {
				t.Fatalf("resetDay %d: %s not in its own cycle %s", resetDay, day, cycle)
			}
			for x := cycle.Start; x.BeforeOrEqual(cycle.End); x = x.AddDays(1) {
				got := finance.CycleFor(x, resetDay)
				if !got.Start.Equal(cycle.Start) || !got.End.Equal(cycle.End) {
					t.Fatalf("resetDay %d: %s resolves to %s, but cycle-mate %s resolves to %s",
						resetDay, cycle.Start, cycle, x, got)
				}
			}
			next := finance.CycleFor(cycle.End.AddDays(1), resetDay)
			if !next.Start.Equal(cycle.End.AddDays(1)) {
				t.Fatalf("resetDay %d: gap after cycle %s, next starts %s", resetDay, cycle, next.Start)
			}
			day = cycle.End.AddDays(1)
		}
	}
}

func TestCycleFor_EndsBeforeClampedResetInShortMonth(t *testing.T) {
	// GIVEN: reset day 31
	// WHEN: resolving the cycle that starts Jan 31
	// THEN: it ends Feb 27, because February clamps the next reset to
	//       the 28th; Feb 28 opens the following cycle
	cycle := finance.CycleFor(d("2026-02-10"), 31)
	if !cycle.Start.Equal(d("2026-01-31")) {
		t.Errorf("expected cycle start 2026-01-31, got %s", cycle.Start)
	}
	if !cycle.End.Equal(d("2026-02-27")) {
		t.Errorf("expected cycle end 2026-02-27, got %s", cycle.End)
	}

	next := finance.CycleFor(d("2026-02-28"), 31)
	if !next.Start.Equal(d("2026-02-28")) {
		t.Errorf("expected next cycle start 2026-02-28, got %s", next.Start)
	}
	if !next.End.Equal(d("2026-03-30")) {
		t.Errorf("expected next cycle end 2026-03-30, got %s", next.End)
	}
}

// =============================================================================
// CONFIG INHERITANCE
// =============================================================================

func TestConfigFor_InheritsFromNearestEarlierMonth(t *testing.T) {
	// GIVEN: config stored only for 2025-10
	// WHEN: resolving 2026-02
	// THEN: the October config applies
	engine, _ := newTestEngine("2026-02-10")
	mustSaveConfig(t, engine, "2025-10", "1500", 5)

	cfg, err := engine.ConfigFor(context.Background(), "2026-02")
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.DesiredMonthlyExpense.Equal(dec("1500")) {
		t.Errorf("expected inherited limit 1500, got %s", cfg.DesiredMonthlyExpense)
	}
	if cfg.ResetDay != 5 {
		t.Errorf("expected inherited reset day 5, got %d", cfg.ResetDay)
	}
}

func TestConfigFor_NothingStored_ZeroLimitDayOne(t *testing.T) {
	// GIVEN: an empty store
	// WHEN: resolving any month
	// THEN: limit 0, reset day 1
	engine, _ := newTestEngine("2026-02-10")

	cfg, err := engine.ConfigFor(context.Background(), "2026-02")
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.DesiredMonthlyExpense.IsZero() {
		t.Errorf("expected zero limit, got %s", cfg.DesiredMonthlyExpense)
	}
	if cfg.ResetDay != 1 {
		t.Errorf("expected reset day 1, got %d", cfg.ResetDay)
	}
}

func TestConfigFor_LaterConfigOverridesInherited(t *testing.T) {
	// GIVEN: configs for 2025-10 and 2026-01
	// WHEN: resolving 2026-03
	// THEN: the January config wins (nearest earlier)
	engine, _ := newTestEngine("2026-03-10")
	mustSaveConfig(t, engine, "2025-10", "1500", 5)
	mustSaveConfig(t, engine, "2026-01", "2000", 10)

	cfg, err := engine.ConfigFor(context.Background(), "2026-03")
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.DesiredMonthlyExpense.Equal(dec("2000")) {
		t.Errorf("expected limit 2000, got %s", cfg.DesiredMonthlyExpense)
	}
}

// =============================================================================
// REMAINING LIMIT
// =============================================================================

func TestRemainingLimit_UsesCycleStartMonthConfig(t *testing.T) {
	// GIVEN: December configured {1000, reset 28}, January configured
	//        {2000, reset 28}, expenses on Dec 30 and Jan 5
	// WHEN: computing the remaining limit on Jan 5
	// THEN: the cycle started Dec 28, so DECEMBER's 1000 applies,
	//       not January's 2000
	engine, _ := newTestEngine("2026-01-05")
	mustSaveConfig(t, engine, "2025-12", "1000", 28)
	mustSaveConfig(t, engine, "2026-01", "2000", 28)
	mustAddExpense(t, engine, "2025-12-30", "-300")
	mustAddExpense(t, engine, "2026-01-05", "-200")

	remaining, err := engine.RemainingLimitOn(context.Background(), d("2026-01-05"))
	if err != nil {
		t.Fatal(err)
	}
	if !remaining.Equal(dec("500")) {
		t.Errorf("expected 1000 - 300 - 200 = 500, got %s", remaining)
	}
}

func TestRemainingLimit_IncomeNeverReplenishes(t *testing.T) {
	// GIVEN: limit 1000, an expense of 400 and income of 900 in-cycle
	// WHEN: computing the remaining limit
	// THEN: 600 remains; the income is ignored
	engine, _ := newTestEngine("2026-03-15")
	mustSaveConfig(t, engine, "2026-03", "1000", 1)
	mustAddExpense(t, engine, "2026-03-10", "-400")
	mustAddExpense(t, engine, "2026-03-12", "900")

	remaining, err := engine.RemainingLimitOn(context.Background(), d("2026-03-15"))
	if err != nil {
		t.Fatal(err)
	}
	if !remaining.Equal(dec("600")) {
		t.Errorf("expected 600, got %s", remaining)
	}
}

func TestRemainingLimit_FlooredAtZero(t *testing.T) {
	// GIVEN: limit 100 and expenses totaling 250
	// WHEN: computing the remaining limit
	// THEN: zero, never negative
	engine, _ := newTestEngine("2026-03-15")
	mustSaveConfig(t, engine, "2026-03", "100", 1)
	mustAddExpense(t, engine, "2026-03-10", "-250")

	remaining, err := engine.RemainingLimitOn(context.Background(), d("2026-03-15"))
	if err != nil {
		t.Fatal(err)
	}
	if !remaining.IsZero() {
		t.Errorf("expected 0, got %s", remaining)
	}
}
