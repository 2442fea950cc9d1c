package finance

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RESERVE LEDGER - Cumulative, cycle-independent savings balance
// =============================================================================
// The reserve is the running sum of all movements across all recorded
// history. Budget cycles and reset days never touch it.

// ReserveBalanceOn returns the reserve balance as of end of day: the
// sum of every movement dated on or before it.
func (e *Engine) ReserveBalanceOn(ctx context.Context, day Date) (decimal.Decimal, error) {
	movements, err := e.store.ReserveMovementsThrough(ctx, day)
	if err != nil {
		return decimal.Zero, fmt.Errorf("load reserve movements: %w", err)
	}
	total := decimal.Zero
	for _, m := range movements {
		total = total.Add(m.Value)
	}
	return total, nil
}

// AddReserveMovement records a deposit (positive) or withdrawal
// (negative) for a day.
func (e *Engine) AddReserveMovement(ctx context.Context, day Date, description string, value decimal.Decimal) (ReserveMovement, error) {
	m := ReserveMovement{
		ID:          newRecordID(day),
		Date:        day,
		Description: description,
		Value:       value,
	}
	if err := e.store.AddReserveMovement(ctx, m); err != nil {
		return ReserveMovement{}, err
	}
	return m, nil
}

// RemoveReserveMovement deletes one movement by id+date.
func (e *Engine) RemoveReserveMovement(ctx context.Context, day Date, id string) error {
	return e.store.RemoveReserveMovement(ctx, day, id)
}

// newRecordID builds a date-prefixed id, unique enough for records
// created through this engine.
func newRecordID(day Date) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	suffix := make([]byte, 8)
	for i := range suffix {
		suffix[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return day.Key() + "-" + string(suffix)
}
