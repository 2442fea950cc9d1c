/*
records.go - Record write paths

PURPOSE:
  Thin write operations over the store: point expenses, financial
  entries, and cycle config. The engine never derives or rewrites
  record values; these paths validate shape, stamp ids and timestamps,
  and hand off to the store.
*/
package finance

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// AddPointExpense records a one-off amount on a day. Negative amounts
// are expenses, positive amounts income.
func (e *Engine) AddPointExpense(ctx context.Context, day Date, description string, amount decimal.Decimal, category string) (PointExpense, error) {
	p := PointExpense{
		ID:          newRecordID(day),
		Date:        day,
		Description: description,
		Amount:      amount,
		Category:    category,
	}
	if err := e.store.AddPointExpense(ctx, p); err != nil {
		return PointExpense{}, err
	}
	return p, nil
}

// RemovePointExpense deletes one point expense by id+date.
func (e *Engine) RemovePointExpense(ctx context.Context, day Date, id string) error {
	return e.store.RemovePointExpense(ctx, day, id)
}

// AddEntry validates and stores a financial entry. A missing ID is
// generated; timestamps are stamped with the engine clock.
func (e *Engine) AddEntry(ctx context.Context, entry FinancialEntry) (FinancialEntry, error) {
	if err := validateEntry(&entry); err != nil {
		return FinancialEntry{}, err
	}
	if entry.ID == "" {
		entry.ID = newRecordID(entryAnchorDate(&entry))
	}
	entry.CreatedAt = e.now()
	entry.UpdatedAt = entry.CreatedAt
	if err := e.store.AddEntry(ctx, entry); err != nil {
		return FinancialEntry{}, err
	}
	return entry, nil
}

// UpdateEntry replaces a stored entry wholesale.
func (e *Engine) UpdateEntry(ctx context.Context, entry FinancialEntry) error {
	if err := validateEntry(&entry); err != nil {
		return err
	}
	entry.UpdatedAt = e.now()
	return e.store.UpdateEntry(ctx, entry)
}

// RemoveEntry deletes an entry and with it every occurrence it would
// ever produce, past ones included.
func (e *Engine) RemoveEntry(ctx context.Context, id string) error {
	return e.store.RemoveEntry(ctx, id)
}

// Entry returns one entry by id.
func (e *Engine) Entry(ctx context.Context, id string) (FinancialEntry, error) {
	return e.store.Entry(ctx, id)
}

// Entries returns all stored entries in insertion order.
func (e *Engine) Entries(ctx context.Context) ([]FinancialEntry, error) {
	return e.store.Entries(ctx)
}

// SaveCycleConfig stores the budget limit and reset day for one month.
// Later months without their own config inherit it.
func (e *Engine) SaveCycleConfig(ctx context.Context, monthKey string, cfg CycleConfig) error {
	if cfg.ResetDay < 1 || cfg.ResetDay > 31 {
		return ErrInvalidResetDay
	}
	return e.store.SaveCycleConfig(ctx, monthKey, cfg)
}

var errEntryShape = errors.New("finance: entry shape invalid for its frequency")

func validateEntry(entry *FinancialEntry) error {
	switch entry.Frequency {
	case FrequencyOneOff:
		if entry.Date == nil {
			return errEntryShape
		}
	case FrequencyRecurring:
		if entry.StartDate == nil {
			return errEntryShape
		}
		if entry.Installments == nil && entry.Recurrence == "" {
			return errEntryShape
		}
	default:
		return errEntryShape
	}
	return nil
}

// entryAnchorDate picks the date used to prefix a generated entry id.
func entryAnchorDate(entry *FinancialEntry) Date {
	if entry.Date != nil {
		return *entry.Date
	}
	if entry.StartDate != nil {
		return *entry.StartDate
	}
	return Date{}
}
