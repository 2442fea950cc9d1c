package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vicvanse/pixelfin/finance"
	"github.com/vicvanse/pixelfin/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func day(s string) finance.Date { return finance.MustDate(s) }

func amount(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

// =============================================================================
// ROUND TRIPS
// =============================================================================

func TestSQLite_PointExpenseRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	goal := int64(7)
	expense := finance.PointExpense{
		ID:            "2026-03-10-abc",
		Date:          day("2026-03-10"),
		Description:   "groceries",
		Amount:        amount("-45.90"),
		Category:      "food",
		RelatedGoalID: &goal,
	}
	require.NoError(t, store.AddPointExpense(ctx, expense))

	got, err := store.PointExpenses(ctx, day("2026-03-10"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, expense.ID, got[0].ID)
	assert.True(t, got[0].Amount.Equal(amount("-45.90")))
	require.NotNil(t, got[0].RelatedGoalID)
	assert.Equal(t, int64(7), *got[0].RelatedGoalID)

	require.NoError(t, store.RemovePointExpense(ctx, day("2026-03-10"), expense.ID))
	assert.ErrorIs(t, store.RemovePointExpense(ctx, day("2026-03-10"), expense.ID), finance.ErrExpenseNotFound)
}

func TestSQLite_EntryRoundTripWithSideFields(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	start := day("2026-01-10")
	entry := finance.FinancialEntry{
		ID:            "rent",
		Description:   "monthly rent",
		Nature:        finance.NatureExpense,
		Frequency:     finance.FrequencyRecurring,
		Amount:        amount("-1200"),
		StartDate:     &start,
		Recurrence:    finance.RecurMonthly,
		ExcludedDates: []finance.Date{day("2026-02-10")},
		Installments:  &finance.Installments{Total: 12, Current: 3},
		Category:      "housing",
		OccurrenceStatuses: map[string]finance.Status{
			"2026-03-10": finance.StatusReceived,
		},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.AddEntry(ctx, entry))

	got, err := store.Entry(ctx, "rent")
	require.NoError(t, err)
	assert.Equal(t, finance.RecurMonthly, got.Recurrence)
	require.NotNil(t, got.StartDate)
	assert.True(t, got.StartDate.Equal(start))
	require.Len(t, got.ExcludedDates, 1)
	assert.True(t, got.ExcludedDates[0].Equal(day("2026-02-10")))
	require.NotNil(t, got.Installments)
	assert.Equal(t, 12, got.Installments.Total)
	assert.Equal(t, finance.StatusReceived, got.OccurrenceStatuses["2026-03-10"])
}

func TestSQLite_UpdateEntry_MissingIsNotFound(t *testing.T) {
	store := newTestStore(t)
	err := store.UpdateEntry(context.Background(), finance.FinancialEntry{ID: "nope", Amount: amount("-1")})
	assert.ErrorIs(t, err, finance.ErrEntryNotFound)
}

func TestSQLite_UpdateEntry_Replaces(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	start := day("2026-01-10")
	entry := finance.FinancialEntry{
		ID: "gym", Frequency: finance.FrequencyRecurring, Recurrence: finance.RecurMonthly,
		Amount: amount("-90"), StartDate: &start,
	}
	require.NoError(t, store.AddEntry(ctx, entry))

	end := day("2026-03-14")
	entry.EndDate = &end
	require.NoError(t, store.UpdateEntry(ctx, entry))

	got, err := store.Entry(ctx, "gym")
	require.NoError(t, err)
	require.NotNil(t, got.EndDate)
	assert.True(t, got.EndDate.Equal(end))

	entries, err := store.Entries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "update must not create a second row")
}

// =============================================================================
// SNAPSHOTS AND BOUNDS
// =============================================================================

func TestSQLite_SaveSnapshot_ClearsLaterInOneTransaction(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, s := range []finance.Snapshot{
		{Date: day("2026-03-01"), Value: amount("500")},
		{Date: day("2026-03-20"), Value: amount("900")},
	} {
		require.NoError(t, store.SaveSnapshot(ctx, s))
	}
	require.NoError(t, store.SaveSnapshot(ctx, finance.Snapshot{Date: day("2026-03-10"), Value: amount("700")}))

	latest, err := store.LatestSnapshotOn(ctx, day("2026-12-31"))
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.True(t, latest.Date.Equal(day("2026-03-10")))

	earlier, err := store.LatestSnapshotOn(ctx, day("2026-03-05"))
	require.NoError(t, err)
	require.NotNil(t, earlier)
	assert.True(t, earlier.Date.Equal(day("2026-03-01")), "past snapshots survive")
}

func TestSQLite_CycleConfigUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	missing, err := store.CycleConfig(ctx, "2026-03")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, store.SaveCycleConfig(ctx, "2026-03", finance.CycleConfig{DesiredMonthlyExpense: amount("1000"), ResetDay: 28}))
	require.NoError(t, store.SaveCycleConfig(ctx, "2026-03", finance.CycleConfig{DesiredMonthlyExpense: amount("1500"), ResetDay: 10}))

	got, err := store.CycleConfig(ctx, "2026-03")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.DesiredMonthlyExpense.Equal(amount("1500")))
	assert.Equal(t, 10, got.ResetDay)
}

func TestSQLite_EarliestRecordDate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	got, err := store.EarliestRecordDate(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.AddPointExpense(ctx, finance.PointExpense{ID: "e", Date: day("2026-03-05"), Amount: amount("-1")}))
	require.NoError(t, store.AddReserveMovement(ctx, finance.ReserveMovement{ID: "m", Date: day("2026-01-15"), Value: amount("10")}))

	got, err = store.EarliestRecordDate(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Equal(day("2026-01-15")))
}

// =============================================================================
// MALFORMED RECORDS
// =============================================================================

func TestSQLite_MalformedRowsAreSkippedNotFatal(t *testing.T) {
	// GIVEN: healthy records written through the store, plus rows with
	//        an unparseable amount and an unparseable date injected
	//        directly into the database
	path := filepath.Join(t.TempDir(), "finance.db")
	store, err := sqlite.New(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	ctx := context.Background()

	require.NoError(t, store.AddPointExpense(ctx, finance.PointExpense{
		ID: "healthy", Date: day("2026-03-10"), Description: "groceries", Amount: amount("-10"),
	}))
	start := day("2026-01-10")
	require.NoError(t, store.AddEntry(ctx, finance.FinancialEntry{
		ID: "rent", Frequency: finance.FrequencyRecurring, Recurrence: finance.RecurMonthly,
		Amount: amount("-1200"), StartDate: &start,
	}))

	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	_, err = raw.Exec(`INSERT INTO point_expenses (id, date, description, amount, category)
		VALUES ('bad-amount', '2026-03-10', 'x', 'not-a-number', '')`)
	require.NoError(t, err)
	_, err = raw.Exec(`INSERT INTO point_expenses (id, date, description, amount, category)
		VALUES ('bad-date', '2026-03-99', 'x', '-5', '')`)
	require.NoError(t, err)
	_, err = raw.Exec(`INSERT INTO financial_entries (id, frequency, amount, created_at, updated_at)
		VALUES ('corrupt', 'recorrente', 'garbage', '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z')`)
	require.NoError(t, err)

	// THEN: reads return the healthy records with no error
	got, err := store.PointExpenses(ctx, day("2026-03-10"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "healthy", got[0].ID)

	ranged, err := store.PointExpensesInRange(ctx, day("2026-03-01"), day("2026-04-30"))
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, "healthy", ranged[0].ID)

	entries, err := store.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "rent", entries[0].ID)
}

// The engine runs against SQLite exactly as it does against memory.
func TestSQLite_EngineEndToEnd(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now, err := time.Parse(finance.DateKeyLayout, "2026-03-15")
	require.NoError(t, err)
	engine := finance.NewEngine(store).WithClock(func() time.Time { return now })

	require.NoError(t, engine.SaveCycleConfig(ctx, "2026-03", finance.CycleConfig{DesiredMonthlyExpense: amount("1000"), ResetDay: 1}))
	require.NoError(t, engine.SetSnapshot(ctx, day("2026-03-01"), amount("500")))
	_, err = engine.AddPointExpense(ctx, day("2026-03-02"), "groceries", amount("-50"), "food")
	require.NoError(t, err)

	balance, err := engine.BalanceOn(ctx, day("2026-03-05"))
	require.NoError(t, err)
	assert.True(t, balance.Equal(amount("450")))

	remaining, err := engine.RemainingLimitOn(ctx, day("2026-03-05"))
	require.NoError(t, err)
	assert.True(t, remaining.Equal(amount("950")))
}
