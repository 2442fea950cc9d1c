/*
store.go - Persistence interface for financial records

PURPOSE:
  Defines the boundary between the engine and the record store. The
  engine treats the store as a synchronous key-value source over four
  record collections plus per-month cycle config. Implementations can
  be in-memory (finance/store) or SQLite (store/sqlite).

COLLECTIONS:
  point expenses     date-indexed, immutable, deleted by id+date
  financial entries  id-indexed, editable (end a recurrence = update)
  reserve movements  date-indexed
  snapshots          sparse date -> balance map
  cycle config       month key (YYYY-MM) -> {limit, reset day}

CONTRACT NOTES:
  - Date keys must sort lexically (YYYY-MM-DD); range queries rely
    on it.
  - SaveSnapshot removes every snapshot dated after the one written,
    so exactly one base point exists going forward. Past snapshots
    are never touched.
  - The engine offers no transactional isolation: callers serialize
    writes against month rebuilds.
*/
package finance

import "context"

// Store is the engine's record source. All reads return defensive
// copies; the engine never mutates what it reads.
type Store interface {
	// ---- Point expenses ----

	// PointExpenses returns all point expenses recorded on a day.
	PointExpenses(ctx context.Context, day Date) ([]PointExpense, error)

	// PointExpensesInRange returns point expenses in [from, to],
	// ordered by date.
	PointExpensesInRange(ctx context.Context, from, to Date) ([]PointExpense, error)

	AddPointExpense(ctx context.Context, e PointExpense) error
	RemovePointExpense(ctx context.Context, day Date, id string) error

	// ---- Financial entries ----

	// Entries returns every stored entry in insertion order. The
	// expander filters by date; the set is small enough that the
	// engine loads it whole.
	Entries(ctx context.Context) ([]FinancialEntry, error)

	Entry(ctx context.Context, id string) (FinancialEntry, error)
	AddEntry(ctx context.Context, e FinancialEntry) error
	UpdateEntry(ctx context.Context, e FinancialEntry) error
	RemoveEntry(ctx context.Context, id string) error

	// ---- Reserve movements ----

	ReserveMovements(ctx context.Context, day Date) ([]ReserveMovement, error)

	// ReserveMovementsThrough returns every movement dated on or
	// before day, across all history.
	ReserveMovementsThrough(ctx context.Context, day Date) ([]ReserveMovement, error)

	AddReserveMovement(ctx context.Context, m ReserveMovement) error
	RemoveReserveMovement(ctx context.Context, day Date, id string) error

	// ---- Account snapshots ----

	// LatestSnapshotOn returns the most recent snapshot dated on or
	// before day, or (nil, nil) when none exists.
	LatestSnapshotOn(ctx context.Context, day Date) (*Snapshot, error)

	// SaveSnapshot writes a snapshot and deletes all snapshots dated
	// strictly after it. Last-write-wins per day.
	SaveSnapshot(ctx context.Context, s Snapshot) error

	// ---- Cycle config ----

	// CycleConfig returns the config stored for a month key, or
	// (nil, nil) when the month was never configured.
	CycleConfig(ctx context.Context, monthKey string) (*CycleConfig, error)

	SaveCycleConfig(ctx context.Context, monthKey string, cfg CycleConfig) error

	// ---- Bounds ----

	// EarliestRecordDate returns the earliest day with any point
	// expense, entry date/start date, reserve movement, or snapshot,
	// or (nil, nil) on an empty store. Balance accumulation starts
	// here when no snapshot precedes the queried day.
	EarliestRecordDate(ctx context.Context) (*Date, error)
}
