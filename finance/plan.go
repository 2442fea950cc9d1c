/*
plan.go - Monthly plan assembly

PURPOSE:
  Produces one row per calendar day of a requested month: net daily
  delta, remaining cycle budget, account balance, reserve balance, and
  display line items. Also derives the month summary, the predicted
  end-of-month balance, and budget tips.

REMAINING LIMIT:
  remaining = max(0, cycleLimit - accumulatedExpensesSinceCycleStart)
  where the accumulation sums only the expense (negative) portion of
  each day. Income inside a cycle never replenishes the limit. The
  cycle limit comes from the config of the month the cycle STARTS in
  (see cycle.go), so days before the reset day spend against the
  previous month's limit.

Rows are independent of each other and of call order; a full month is
recomputed wholesale on any input change. Rebuilding twice with the
same records yields identical rows.
*/
package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BuildOptions optionally pins the budget inputs for cycles starting
// in the viewed month. Nil fields fall back to stored config.
type BuildOptions struct {
	DesiredLimit *decimal.Decimal
	ResetDay     *int
}

// MonthBalance brackets the viewed month: the account balance at the
// end of the previous month and at the end of this one.
type MonthBalance struct {
	Initial decimal.Decimal
	Final   decimal.Decimal
}

// MonthSummary aggregates a built month for display.
type MonthSummary struct {
	TotalExpense       decimal.Decimal // positive magnitude
	TotalGain          decimal.Decimal
	TotalReserved      decimal.Decimal // deposits only
	DayWithMostExpense int
	DayWithMostGain    int
	PositiveDays       int
	NegativeDays       int
}

// BudgetTip is a rule-derived hint about the month in progress.
type BudgetTip struct {
	Type    TipType
	Message string
}

type TipType string

const (
	TipLimit      TipType = "limit"
	TipWarning    TipType = "warning"
	TipSuggestion TipType = "suggestion"
	TipAlert      TipType = "alert"
)

// MonthData is the full derived view of one month.
type MonthData struct {
	Year                int
	Month               time.Month
	Rows                []Row
	Summary             MonthSummary
	Balance             MonthBalance
	PredictedEndBalance decimal.Decimal
	Tips                []BudgetTip
}

// BuildMonth produces one Row per calendar day of the month.
func (e *Engine) BuildMonth(ctx context.Context, year int, month time.Month, opts BuildOptions) ([]Row, error) {
	data, err := e.BuildMonthData(ctx, year, month, opts)
	if err != nil {
		return nil, err
	}
	return data.Rows, nil
}

// BuildMonthData builds the rows plus summary, month balance,
// prediction, and tips in a single pass.
func (e *Engine) BuildMonthData(ctx context.Context, year int, month time.Month, opts BuildOptions) (*MonthData, error) {
	viewKey := MonthKey(year, month)
	daysInMonth := DaysInMonth(year, month)
	first := StartOfMonth(year, month)
	today := e.today()

	resetDay, err := e.resolveResetDay(ctx, viewKey, opts)
	if err != nil {
		return nil, err
	}

	entries, err := e.store.Entries(ctx)
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}

	// Budget state for the cycle containing day 1. When the reset day
	// is past 1 that cycle started in the previous month: seed the
	// expense accumulator with the days already elapsed and use the
	// start month's limit.
	firstCycleStart := CycleStart(first, resetDay)
	limit, err := e.limitForCycle(ctx, firstCycleStart, viewKey, opts)
	if err != nil {
		return nil, err
	}
	spent := decimal.Zero
	for d := firstCycleStart; d.Before(first); d = d.AddDays(1) {
		expenses, err := e.dayExpensesOnly(ctx, entries, d, today)
		if err != nil {
			return nil, err
		}
		spent = spent.Add(expenses.Neg())
	}

	// Running balances enter the month from its last prior day.
	prevDay := first.AddDays(-1)
	balance, err := e.BalanceOn(ctx, prevDay)
	if err != nil {
		return nil, err
	}
	reserve, err := e.ReserveBalanceOn(ctx, prevDay)
	if err != nil {
		return nil, err
	}

	data := &MonthData{Year: year, Month: month, Rows: make([]Row, 0, daysInMonth)}
	data.Balance.Initial = balance

	summary := MonthSummary{DayWithMostExpense: 1, DayWithMostGain: 1}
	maxExpense, maxGain := decimal.Zero, decimal.Zero

	for day := 1; day <= daysInMonth; day++ {
		d := NewDate(year, month, day)

		points, err := e.store.PointExpenses(ctx, d)
		if err != nil {
			return nil, fmt.Errorf("load point expenses %s: %w", d, err)
		}
		occurrences := expandEntries(entries, d, today)
		total := dailyTotal(points, occurrences)
		expenses := dailyExpensesOnly(points, occurrences).Neg() // positive magnitude
		gains := total.Add(expenses)

		// New cycle begins when the day matches the effective reset
		// day of its month.
		if day == effectiveResetDay(d, resetDay) {
			limit, err = e.limitForCycle(ctx, d, viewKey, opts)
			if err != nil {
				return nil, err
			}
			spent = decimal.Zero
		}
		spent = spent.Add(expenses)
		remaining := limit.Sub(spent)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}

		// Account balance: a snapshot on this exact day overrides the
		// propagated value.
		snap, err := e.store.LatestSnapshotOn(ctx, d)
		if err != nil {
			return nil, fmt.Errorf("load snapshot for %s: %w", d, err)
		}
		if snap != nil && snap.Date.Equal(d) {
			balance = snap.Value
		} else {
			balance = balance.Add(total)
		}

		// Reserve: cumulative, cycle-independent.
		movements, err := e.store.ReserveMovements(ctx, d)
		if err != nil {
			return nil, fmt.Errorf("load reserve movements %s: %w", d, err)
		}
		for _, m := range movements {
			reserve = reserve.Add(m.Value)
			if m.Value.IsPositive() {
				summary.TotalReserved = summary.TotalReserved.Add(m.Value)
			}
		}

		data.Rows = append(data.Rows, Row{
			Day:            day,
			Date:           d,
			TotalDaily:     total,
			RemainingLimit: remaining,
			AccountBalance: balance,
			ReserveBalance: reserve,
			LineItems:      lineItems(points, occurrences),
		})

		summary.TotalExpense = summary.TotalExpense.Add(expenses)
		summary.TotalGain = summary.TotalGain.Add(gains)
		if expenses.GreaterThan(maxExpense) {
			maxExpense = expenses
			summary.DayWithMostExpense = day
		}
		if gains.GreaterThan(maxGain) {
			maxGain = gains
			summary.DayWithMostGain = day
		}
		if total.IsPositive() {
			summary.PositiveDays++
		} else if total.IsNegative() {
			summary.NegativeDays++
		}

		data.Balance.Final = data.Balance.Final.Add(total)
	}

	data.Balance.Final = data.Balance.Initial.Add(data.Balance.Final)
	data.Summary = summary
	data.PredictedEndBalance = predictEndOfMonth(data, today)
	data.Tips = budgetTips(data, today)
	return data, nil
}

func (e *Engine) resolveResetDay(ctx context.Context, viewKey string, opts BuildOptions) (int, error) {
	if opts.ResetDay != nil {
		return ClampResetDay(*opts.ResetDay), nil
	}
	return e.resetDayFor(ctx, viewKey)
}

// limitForCycle resolves the budget limit for a cycle starting on
// start. A pinned limit applies only to cycles starting in the viewed
// month; earlier cycles always read their own start month's config.
func (e *Engine) limitForCycle(ctx context.Context, start Date, viewKey string, opts BuildOptions) (decimal.Decimal, error) {
	if opts.DesiredLimit != nil && start.MonthKey() == viewKey {
		return *opts.DesiredLimit, nil
	}
	cfg, err := e.ConfigFor(ctx, start.MonthKey())
	if err != nil {
		return decimal.Zero, err
	}
	return cfg.DesiredMonthlyExpense, nil
}

func (e *Engine) dayExpensesOnly(ctx context.Context, entries []FinancialEntry, d Date, today Date) (decimal.Decimal, error) {
	points, err := e.store.PointExpenses(ctx, d)
	if err != nil {
		return decimal.Zero, fmt.Errorf("load point expenses %s: %w", d, err)
	}
	return dailyExpensesOnly(points, expandEntries(entries, d, today)), nil
}

// =============================================================================
// PREDICTION AND TIPS
// =============================================================================

// predictEndOfMonth extrapolates the final balance for the month in
// progress from the average realized daily balance so far. For any
// other month it is simply the computed final balance.
func predictEndOfMonth(data *MonthData, today Date) decimal.Decimal {
	if today.Year() != data.Year || today.Month() != data.Month {
		return data.Balance.Final
	}
	currentDay := today.Day()
	accumulated := data.Balance.Initial
	for _, row := range data.Rows {
		if row.Day > currentDay {
			break
		}
		accumulated = accumulated.Add(row.TotalDaily)
	}
	average := accumulated.Div(decimal.NewFromInt(int64(currentDay)))
	return average.Mul(decimal.NewFromInt(int64(len(data.Rows))))
}

// budgetTips derives hints for the month in progress. Other months get
// no tips beyond the standing suggestion.
func budgetTips(data *MonthData, today Date) []BudgetTip {
	var tips []BudgetTip
	isCurrent := today.Year() == data.Year && today.Month() == data.Month

	if isCurrent {
		currentDay := today.Day()
		dayCount := decimal.NewFromInt(int64(currentDay))

		avgDailyExpense := data.Summary.TotalExpense.Div(dayCount)
		suggested := avgDailyExpense.Mul(decimal.NewFromFloat(1.1))
		tips = append(tips, BudgetTip{
			Type:    TipLimit,
			Message: fmt.Sprintf("Suggested daily limit: %s", suggested.StringFixed(2)),
		})

		if tip, ok := spendingSpikeTip(data.Rows, currentDay); ok {
			tips = append(tips, tip)
		}
		if tip, ok := reserveDropTip(data.Rows, currentDay); ok {
			tips = append(tips, tip)
		}
		if data.Summary.NegativeDays*2 > data.Summary.PositiveDays*3 { // negative > 1.5x positive
			tips = append(tips, BudgetTip{
				Type: TipSuggestion,
				Message: fmt.Sprintf("Negative days (%d) outnumber positive days (%d). Consider cutting expenses.",
					data.Summary.NegativeDays, data.Summary.PositiveDays),
			})
		}
	}

	if len(tips) == 0 {
		tips = append(tips, BudgetTip{
			Type:    TipSuggestion,
			Message: "Keep recording your movements to stay on top of your spending.",
		})
	}
	return tips
}

// spendingSpikeTip flags today's expenses running well above the
// trailing 7-day average.
func spendingSpikeTip(rows []Row, currentDay int) (BudgetTip, bool) {
	recentTotal := decimal.Zero
	recentDays := 0
	var todayExpense decimal.Decimal
	for _, row := range rows {
		if row.Day > currentDay || row.Day <= currentDay-7 {
			continue
		}
		expense := rowExpense(row)
		recentTotal = recentTotal.Add(expense)
		recentDays++
		if row.Day == currentDay {
			todayExpense = expense
		}
	}
	if recentDays == 0 {
		return BudgetTip{}, false
	}
	recentAvg := recentTotal.Div(decimal.NewFromInt(int64(recentDays)))
	if recentAvg.IsZero() || todayExpense.LessThanOrEqual(recentAvg.Mul(decimal.NewFromFloat(1.2))) {
		return BudgetTip{}, false
	}
	percent := todayExpense.Div(recentAvg).Sub(decimal.NewFromInt(1)).Mul(decimal.NewFromInt(100))
	return BudgetTip{
		Type:    TipWarning,
		Message: fmt.Sprintf("Today's spending is %s%% above the last 7 days' average", percent.StringFixed(0)),
	}, true
}

// reserveDropTip flags the reserve falling more than 20% since the
// start of the month.
func reserveDropTip(rows []Row, currentDay int) (BudgetTip, bool) {
	if len(rows) == 0 || currentDay < 1 || currentDay > len(rows) {
		return BudgetTip{}, false
	}
	initial := rows[0].ReserveBalance
	current := rows[currentDay-1].ReserveBalance
	if !initial.IsPositive() {
		return BudgetTip{}, false
	}
	drop := initial.Sub(current)
	if drop.LessThanOrEqual(initial.Mul(decimal.NewFromFloat(0.2))) {
		return BudgetTip{}, false
	}
	percent := drop.Div(initial).Mul(decimal.NewFromInt(100))
	return BudgetTip{
		Type:    TipAlert,
		Message: fmt.Sprintf("Reserve dropped %s%% this month", percent.StringFixed(0)),
	}, true
}

// rowExpense recovers the expense magnitude of a row from its items.
func rowExpense(row Row) decimal.Decimal {
	total := decimal.Zero
	for _, item := range row.LineItems {
		if item.Amount.IsNegative() {
			total = total.Add(item.Amount.Neg())
		}
	}
	return total
}
