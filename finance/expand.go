/*
expand.go - Recurring and installment entry expansion

PURPOSE:
  Determines which stored FinancialEntry records are active on a given
  calendar day and materializes their per-day contribution without
  mutating the stored record.

ACTIVATION RULES:
  one-off:   active iff entry.Date == day
  recurring: active iff day >= StartDate, day <= EndDate (when set),
             day is not excluded, and day matches the cadence:
               mensal:    same day-of-month as StartDate (clamped)
               quinzenal: every 15 days from StartDate
               anual:     same month and day as StartDate
  installments: index = monthsBetween(StartDate, day) + 1; active only
             while 1 <= index <= Total, overriding open-endedness.
             Installment entries always fire on the monthly cadence.

Each entry contributes at most one occurrence per day, so the output
needs no dedup. Ordering is the insertion order of stored records.
*/
package finance

import (
	"context"
	"fmt"
)

// biweeklyInterval is the quinzenal cadence in days.
const biweeklyInterval = 15

// OccurrencesOn materializes every entry occurrence active on day.
// Canceled occurrences are omitted; a day with none returns an empty
// slice, never an error.
func (e *Engine) OccurrencesOn(ctx context.Context, day Date) ([]Occurrence, error) {
	entries, err := e.store.Entries(ctx)
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}
	return expandEntries(entries, day, e.today()), nil
}

// expandEntries is the pure core of the expander, shared with the
// monthly plan builder and category aggregation so a month's worth of
// days needs only one store read.
func expandEntries(entries []FinancialEntry, day Date, today Date) []Occurrence {
	occurrences := []Occurrence{}
	for i := range entries {
		if occ, ok := occurrenceOn(&entries[i], day, today); ok {
			occurrences = append(occurrences, occ)
		}
	}
	return occurrences
}

func occurrenceOn(entry *FinancialEntry, day Date, today Date) (Occurrence, bool) {
	switch entry.Frequency {
	case FrequencyOneOff:
		if entry.Date == nil || !entry.Date.Equal(day) {
			return Occurrence{}, false
		}
		status := entry.Status
		if status == "" {
			status = StatusReceived
		}
		if status == StatusCanceled {
			return Occurrence{}, false
		}
		return Occurrence{
			EntryID:     entry.ID,
			Description: entry.Description,
			Amount:      entry.Amount,
			Category:    entry.Category,
			Status:      status,
		}, true

	case FrequencyRecurring:
		index, ok := recurringActiveOn(entry, day)
		if !ok {
			return Occurrence{}, false
		}
		status := occurrenceStatus(entry, day, today)
		if status == StatusCanceled {
			return Occurrence{}, false
		}
		occ := Occurrence{
			EntryID:     entry.ID,
			Description: entry.Description,
			Amount:      entry.Amount,
			Category:    entry.Category,
			Recurring:   true,
			Status:      status,
		}
		if entry.Installments != nil {
			occ.InstallmentIndex = index
			occ.InstallmentTotal = entry.Installments.Total
		}
		return occ, true
	}

	// Unknown frequency: treat the record as corrupt and skip it
	// rather than abort the aggregation.
	return Occurrence{}, false
}

// recurringActiveOn applies the activation rules. The returned index
// is the 1-based installment index, 0 for non-installment entries.
func recurringActiveOn(entry *FinancialEntry, day Date) (int, bool) {
	if entry.StartDate == nil {
		return 0, false
	}
	start := *entry.StartDate

	if day.Before(start) {
		return 0, false
	}
	// EndDate before StartDate means never active, not an error.
	if entry.EndDate != nil && (entry.EndDate.Before(start) || day.After(*entry.EndDate)) {
		return 0, false
	}
	for _, excluded := range entry.ExcludedDates {
		if excluded.Equal(day) {
			return 0, false
		}
	}

	if entry.Installments != nil && entry.Installments.Total > 0 {
		index := start.MonthsBetween(day) + 1
		if index < 1 || index > entry.Installments.Total {
			return 0, false
		}
		// Installments always run on the monthly cadence.
		if !sameDayOfMonthClamped(start, day) {
			return 0, false
		}
		return index, true
	}

	switch entry.Recurrence {
	case RecurMonthly:
		return 0, sameDayOfMonthClamped(start, day)
	case RecurBiweekly:
		diff := start.DaysBetween(day)
		return 0, diff >= 0 && diff%biweeklyInterval == 0
	case RecurAnnual:
		return 0, day.Month() == start.Month() && day.Day() == start.Day()
	}
	return 0, false
}

// sameDayOfMonthClamped matches the start's day-of-month against a
// concrete day, clamping for short months: an entry starting on the
// 31st fires on Feb 28.
func sameDayOfMonthClamped(start, day Date) bool {
	want := start.Day()
	if days := DaysInMonth(day.Year(), day.Month()); want > days {
		want = days
	}
	return day.Day() == want
}

// occurrenceStatus resolves the status of one occurrence: an explicit
// per-occurrence override wins; otherwise past occurrences are pending
// and future ones expected.
func occurrenceStatus(entry *FinancialEntry, day Date, today Date) Status {
	if s, ok := entry.OccurrenceStatuses[day.Key()]; ok {
		return s
	}
	if day.BeforeOrEqual(today) {
		return StatusPending
	}
	return StatusExpected
}

// =============================================================================
// RECURRENCE MANAGEMENT
// =============================================================================

// ActiveRecurringEntries returns recurring entries that are still open
// as of today: EndDate unset or not yet past. Future-dated recurrences
// are included.
func (e *Engine) ActiveRecurringEntries(ctx context.Context) ([]FinancialEntry, error) {
	entries, err := e.store.Entries(ctx)
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}
	today := e.today()
	active := []FinancialEntry{}
	for _, entry := range entries {
		if entry.Frequency != FrequencyRecurring || entry.StartDate == nil {
			continue
		}
		if entry.EndDate != nil && entry.EndDate.Before(today) {
			continue
		}
		active = append(active, entry)
	}
	return active, nil
}

// EndRecurrence stops a recurring entry from the given day on, by
// setting EndDate to the day before. Occurrences strictly before
// `from` are untouched; `from` and later days yield nothing.
func (e *Engine) EndRecurrence(ctx context.Context, id string, from Date) error {
	entry, err := e.store.Entry(ctx, id)
	if err != nil {
		return err
	}
	if entry.Frequency != FrequencyRecurring {
		return ErrNotRecurring
	}
	end := from.AddDays(-1)
	entry.EndDate = &end
	entry.UpdatedAt = e.now()
	return e.store.UpdateEntry(ctx, entry)
}

// ExcludeOccurrence skips a single date of a recurrence without ending
// it, for occurrences that were waived or rescheduled.
func (e *Engine) ExcludeOccurrence(ctx context.Context, id string, day Date) error {
	entry, err := e.store.Entry(ctx, id)
	if err != nil {
		return err
	}
	if entry.Frequency != FrequencyRecurring {
		return ErrNotRecurring
	}
	for _, excluded := range entry.ExcludedDates {
		if excluded.Equal(day) {
			return nil
		}
	}
	entry.ExcludedDates = append(entry.ExcludedDates, day)
	entry.UpdatedAt = e.now()
	return e.store.UpdateEntry(ctx, entry)
}

// SetOccurrenceStatus overrides the status of one occurrence of a
// recurring entry.
func (e *Engine) SetOccurrenceStatus(ctx context.Context, id string, day Date, status Status) error {
	entry, err := e.store.Entry(ctx, id)
	if err != nil {
		return err
	}
	if entry.Frequency != FrequencyRecurring {
		return ErrNotRecurring
	}
	if entry.OccurrenceStatuses == nil {
		entry.OccurrenceStatuses = map[string]Status{}
	}
	entry.OccurrenceStatuses[day.Key()] = status
	entry.UpdatedAt = e.now()
	return e.store.UpdateEntry(ctx, entry)
}
