/*
daily.go - Per-day aggregation

PURPOSE:
  Combines point-expense totals and expanded entry occurrences into a
  single net daily delta, and exposes the display line items for a
  day. Point expenses and financial entries are distinct record kinds
  that coexist for migration reasons; the union never double-counts.

A day with no matching records totals zero with an empty item list,
never an error.
*/
package finance

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// DailyTotal returns the signed net delta for one day: point expenses
// plus entry occurrences.
func (e *Engine) DailyTotal(ctx context.Context, day Date) (decimal.Decimal, error) {
	points, err := e.store.PointExpenses(ctx, day)
	if err != nil {
		return decimal.Zero, fmt.Errorf("load point expenses %s: %w", day, err)
	}
	occurrences, err := e.OccurrencesOn(ctx, day)
	if err != nil {
		return decimal.Zero, err
	}
	return dailyTotal(points, occurrences), nil
}

// DailyLineItems returns the display items for one day, point expenses
// first (in stored order), then entry occurrences.
func (e *Engine) DailyLineItems(ctx context.Context, day Date) ([]LineItem, error) {
	points, err := e.store.PointExpenses(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("load point expenses %s: %w", day, err)
	}
	occurrences, err := e.OccurrencesOn(ctx, day)
	if err != nil {
		return nil, err
	}
	return lineItems(points, occurrences), nil
}

// =============================================================================
// PURE AGGREGATION CORE
// =============================================================================
// The plan builder and balance accumulator load entries once and call
// these per day, so a month costs one entry read plus per-day lookups.

func dailyTotal(points []PointExpense, occurrences []Occurrence) decimal.Decimal {
	total := decimal.Zero
	for _, p := range points {
		total = total.Add(p.Amount)
	}
	for _, o := range occurrences {
		total = total.Add(o.Amount)
	}
	return total
}

// dailyExpensesOnly sums the negative (expense) portion of a day:
// each item contributes min(0, amount). Income never offsets it.
func dailyExpensesOnly(points []PointExpense, occurrences []Occurrence) decimal.Decimal {
	total := decimal.Zero
	for _, p := range points {
		if p.Amount.IsNegative() {
			total = total.Add(p.Amount)
		}
	}
	for _, o := range occurrences {
		if o.Amount.IsNegative() {
			total = total.Add(o.Amount)
		}
	}
	return total
}

func lineItems(points []PointExpense, occurrences []Occurrence) []LineItem {
	items := make([]LineItem, 0, len(points)+len(occurrences))
	for _, p := range points {
		items = append(items, LineItem{
			ID:          p.ID,
			Description: p.Description,
			Amount:      p.Amount,
			Category:    p.Category,
			Status:      StatusReceived,
		})
	}
	for _, o := range occurrences {
		items = append(items, LineItem{
			ID:               o.EntryID,
			Description:      o.Description,
			Amount:           o.Amount,
			Category:         o.Category,
			Recurring:        o.Recurring,
			InstallmentIndex: o.InstallmentIndex,
			InstallmentTotal: o.InstallmentTotal,
			Status:           o.Status,
		})
	}
	return items
}
