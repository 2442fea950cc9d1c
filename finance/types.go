/*
Package finance implements the budget cycle and ledger calculation
engine for a personal finance tracker.

PURPOSE:
  This package turns a set of discrete financial records (one-off
  entries, recurring and installment entries, reserve movements, and
  user-entered account balances) into a day-by-day ledger for any
  month, under a user-configurable budget cycle that need not align
  with calendar months.

KEY CONCEPTS IN THIS FILE (types.go):
  - PointExpense: legacy one-off record keyed by calendar day
  - FinancialEntry: generalized record, one-off or recurring
  - ReserveMovement: deposit/withdrawal on a cycle-independent balance
  - Snapshot: user-entered account balance as of end of a day
  - CycleConfig: per-month budget limit and cycle reset day

DESIGN PRINCIPLES:
  1. Precision: all money is decimal.Decimal, never float
  2. Signed amounts: negative is an expense, positive is income
  3. Derivation over mutation: the engine only reads records and
     derives values; user actions write records through the Store
  4. Explicit time: year/month/date are parameters on every call,
     never ambient state

SEE ALSO:
  - cycle.go:   budget cycle resolution
  - expand.go:  recurring/installment occurrence expansion
  - daily.go:   per-day aggregation
  - balance.go: account balance propagation
  - reserve.go: reserve ledger
  - plan.go:    monthly plan assembly
*/
package finance

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ENUMERATIONS - Persisted values keep the original app's vocabulary
// =============================================================================

// Frequency distinguishes one-off records from recurring ones.
type Frequency string

const (
	FrequencyOneOff    Frequency = "pontual"
	FrequencyRecurring Frequency = "recorrente"
)

// Nature marks an entry as expense or income. The stored Amount is
// always signed to match (negative for expenses); Nature exists for
// display and validation, not arithmetic.
type Nature string

const (
	NatureExpense Nature = "gasto"
	NatureIncome  Nature = "ganho"
)

// Recurrence is the cadence of a recurring entry.
type Recurrence string

const (
	RecurMonthly  Recurrence = "mensal"    // same day-of-month as start, clamped
	RecurBiweekly Recurrence = "quinzenal" // every 15 days from start
	RecurAnnual   Recurrence = "anual"     // same month and day, once a year
)

// Status tracks whether an occurrence has actually happened. Only
// canceled changes arithmetic: canceled occurrences contribute nothing.
type Status string

const (
	StatusReceived Status = "received"
	StatusPending  Status = "pending"
	StatusExpected Status = "expected"
	StatusCanceled Status = "canceled"
)

// =============================================================================
// RECORDS
// =============================================================================

// PointExpense is the legacy one-off record kind. Immutable once
// created; deleted by id+date. Coexists with one-off FinancialEntry
// records for migration reasons and the two are never deduplicated.
type PointExpense struct {
	ID            string
	Date          Date
	Description   string
	Amount        decimal.Decimal // signed: negative = expense
	Category      string
	RelatedGoalID *int64
}

// Installments marks an entry as an installment purchase. The
// per-occurrence index is derived from the occurrence month, never
// stored per occurrence.
type Installments struct {
	Total   int
	Current int // informational, as entered by the user
}

// FinancialEntry is the generalized record: a one-off or recurring
// financial commitment.
//
// INVARIANTS:
//   - A recurring entry with EndDate set is inactive strictly after
//     EndDate. Ending a recurrence sets EndDate; past occurrences
//     remain intact.
//   - Installment entries are recurring monthly entries whose index is
//     index = monthsBetween(StartDate, occurrence) + 1, active only
//     while 1 <= index <= Total.
//   - EndDate before StartDate means the entry is never active.
type FinancialEntry struct {
	ID          string
	Description string
	Nature      Nature
	Frequency   Frequency
	Amount      decimal.Decimal // signed
	Status      Status          // one-off entries; default received

	// One-off
	Date *Date

	// Recurring
	StartDate     *Date
	EndDate       *Date // nil = open-ended
	Recurrence    Recurrence
	ExcludedDates []Date // skipped occurrences; recurrence stays active
	Installments  *Installments

	PaymentMethod string
	Category      string

	// Per-occurrence status overrides for recurring entries, keyed by
	// date key. Unset occurrences default to pending when past and
	// expected when future.
	OccurrenceStatuses map[string]Status

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReserveMovement is a deposit (positive) or withdrawal (negative) on
// the reserve balance. The reserve is cumulative across all history
// and ignores budget cycles entirely.
type ReserveMovement struct {
	ID          string
	Date        Date
	Description string
	Value       decimal.Decimal // signed
}

// Snapshot is a user-entered account balance "as of end of Date". Only
// days the user explicitly edited have snapshots; every other day
// derives its balance from the nearest earlier snapshot plus daily
// deltas.
type Snapshot struct {
	Date  Date
	Value decimal.Decimal
}

// CycleConfig is the per-month budget configuration, keyed by the
// calendar month (YYYY-MM) in which a cycle STARTS, not the month
// being viewed.
type CycleConfig struct {
	DesiredMonthlyExpense decimal.Decimal
	ResetDay              int // 1-31, day the budget cycle rolls over
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// Occurrence is one day's materialized instance of a FinancialEntry.
// Expansion never mutates the stored entry.
type Occurrence struct {
	EntryID          string
	Description      string
	Amount           decimal.Decimal
	Category         string
	Recurring        bool
	InstallmentIndex int // 1-based; 0 when not an installment
	InstallmentTotal int
	Status           Status
}

// LineItem is a display row for one day: a point expense or an entry
// occurrence, formatted for the UI.
type LineItem struct {
	ID               string
	Description      string
	Amount           decimal.Decimal
	Category         string
	Recurring        bool
	InstallmentIndex int
	InstallmentTotal int
	Status           Status
}

// Row is one calendar day of a monthly plan.
type Row struct {
	Day            int
	Date           Date
	TotalDaily     decimal.Decimal
	RemainingLimit decimal.Decimal
	AccountBalance decimal.Decimal
	ReserveBalance decimal.Decimal
	LineItems      []LineItem
}

// CategoryTotal aggregates signed amounts under a free-text category
// label over a date range.
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}
