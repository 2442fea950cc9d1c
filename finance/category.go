package finance

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// uncategorized is the bucket for records with no category set.
const uncategorized = "Uncategorized"

// CategoryTotals sums every expense item over [from, to] by category.
// Only negative amounts count; income categories never appear. The
// result is ordered by total ascending, largest expense first.
func (e *Engine) CategoryTotals(ctx context.Context, from, to Date) ([]CategoryTotal, error) {
	if to.Before(from) {
		return []CategoryTotal{}, nil
	}

	totals := map[string]decimal.Decimal{}
	add := func(category string, amount decimal.Decimal) {
		if !amount.IsNegative() {
			return
		}
		if category == "" {
			category = uncategorized
		}
		totals[category] = totals[category].Add(amount)
	}

	points, err := e.store.PointExpensesInRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load point expenses: %w", err)
	}
	for _, p := range points {
		add(p.Category, p.Amount)
	}

	entries, err := e.store.Entries(ctx)
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}
	today := e.today()
	for d := from; d.BeforeOrEqual(to); d = d.AddDays(1) {
		for _, occ := range expandEntries(entries, d, today) {
			add(occ.Category, occ.Amount)
		}
	}

	result := make([]CategoryTotal, 0, len(totals))
	for category, total := range totals {
		result = append(result, CategoryTotal{Category: category, Total: total})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Total.Equal(result[j].Total) {
			return result[i].Category < result[j].Category
		}
		return result[i].Total.LessThan(result[j].Total)
	})
	return result, nil
}
