package store

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vicvanse/pixelfin/finance"
)

func day(s string) finance.Date { return finance.MustDate(s) }

func amount(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestMemory_PointExpensesInRange_OrderedByDate(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	for _, e := range []finance.PointExpense{
		{ID: "c", Date: day("2026-03-10"), Amount: amount("-3")},
		{ID: "a", Date: day("2026-03-01"), Amount: amount("-1")},
		{ID: "b", Date: day("2026-03-05"), Amount: amount("-2")},
		{ID: "x", Date: day("2026-04-01"), Amount: amount("-9")},
	} {
		if err := m.AddPointExpense(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	got, err := m.PointExpensesInRange(ctx, day("2026-03-01"), day("2026-03-31"))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 expenses, got %d", len(got))
	}
	for i, want := range []string{"a", "b", "c"} {
		if got[i].ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, got[i].ID)
		}
	}
}

func TestMemory_RemovePointExpense_MissingIsNotFound(t *testing.T) {
	m := NewMemory()
	err := m.RemovePointExpense(context.Background(), day("2026-03-01"), "nope")
	if err != finance.ErrExpenseNotFound {
		t.Errorf("expected ErrExpenseNotFound, got %v", err)
	}
}

func TestMemory_Entries_InsertionOrderSurvivesRemoval(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	for _, id := range []string{"one", "two", "three"} {
		e := finance.FinancialEntry{ID: id, Frequency: finance.FrequencyOneOff, Amount: amount("-1")}
		if err := m.AddEntry(ctx, e); err != nil {
			t.Fatal(err)
		}
	}
	if err := m.RemoveEntry(ctx, "two"); err != nil {
		t.Fatal(err)
	}

	entries, err := m.Entries(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].ID != "one" || entries[1].ID != "three" {
		t.Errorf("unexpected entries after removal: %+v", entries)
	}

	// The index still resolves the survivors.
	got, err := m.Entry(ctx, "three")
	if err != nil || got.ID != "three" {
		t.Errorf("expected to find entry three, got %+v err %v", got, err)
	}
}

func TestMemory_Entries_ReturnsDefensiveCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	start := day("2026-01-10")
	e := finance.FinancialEntry{
		ID:            "rent",
		Frequency:     finance.FrequencyRecurring,
		Recurrence:    finance.RecurMonthly,
		Amount:        amount("-1200"),
		StartDate:     &start,
		ExcludedDates: []finance.Date{day("2026-02-10")},
	}
	if err := m.AddEntry(ctx, e); err != nil {
		t.Fatal(err)
	}

	loaded, err := m.Entry(ctx, "rent")
	if err != nil {
		t.Fatal(err)
	}
	loaded.ExcludedDates[0] = day("2026-03-10")
	*loaded.StartDate = day("2025-01-01")

	reloaded, err := m.Entry(ctx, "rent")
	if err != nil {
		t.Fatal(err)
	}
	if !reloaded.ExcludedDates[0].Equal(day("2026-02-10")) {
		t.Error("stored excluded dates were mutated through a read")
	}
	if !reloaded.StartDate.Equal(day("2026-01-10")) {
		t.Error("stored start date was mutated through a read")
	}
}

func TestMemory_LatestSnapshotOn(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	if err := m.SaveSnapshot(ctx, finance.Snapshot{Date: day("2026-03-01"), Value: amount("500")}); err != nil {
		t.Fatal(err)
	}
	if err := m.SaveSnapshot(ctx, finance.Snapshot{Date: day("2026-03-10"), Value: amount("700")}); err != nil {
		t.Fatal(err)
	}

	snap, err := m.LatestSnapshotOn(ctx, day("2026-03-05"))
	if err != nil {
		t.Fatal(err)
	}
	if snap == nil || !snap.Date.Equal(day("2026-03-01")) {
		t.Fatalf("expected 2026-03-01, got %v", snap)
	}

	snap, err = m.LatestSnapshotOn(ctx, day("2026-02-28"))
	if err != nil {
		t.Fatal(err)
	}
	if snap != nil {
		t.Fatalf("expected nil before any snapshot, got %v", snap)
	}
}

func TestMemory_SaveSnapshot_DeletesStrictlyLater(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	for _, s := range []finance.Snapshot{
		{Date: day("2026-03-01"), Value: amount("500")},
		{Date: day("2026-03-10"), Value: amount("700")},
		{Date: day("2026-03-20"), Value: amount("900")},
	} {
		if err := m.SaveSnapshot(ctx, s); err != nil {
			t.Fatal(err)
		}
	}
	if err := m.SaveSnapshot(ctx, finance.Snapshot{Date: day("2026-03-10"), Value: amount("650")}); err != nil {
		t.Fatal(err)
	}

	snap, err := m.LatestSnapshotOn(ctx, day("2026-12-31"))
	if err != nil {
		t.Fatal(err)
	}
	if snap == nil || !snap.Date.Equal(day("2026-03-10")) || !snap.Value.Equal(amount("650")) {
		t.Fatalf("expected rewritten 2026-03-10=650 as latest, got %v", snap)
	}
}

func TestMemory_EarliestRecordDate_AcrossCollections(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	got, err := m.EarliestRecordDate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("expected nil on empty store, got %v", got)
	}

	if err := m.AddPointExpense(ctx, finance.PointExpense{ID: "e", Date: day("2026-03-05"), Amount: amount("-1")}); err != nil {
		t.Fatal(err)
	}
	start := day("2026-02-10")
	if err := m.AddEntry(ctx, finance.FinancialEntry{ID: "r", Frequency: finance.FrequencyRecurring, Recurrence: finance.RecurMonthly, Amount: amount("-1"), StartDate: &start}); err != nil {
		t.Fatal(err)
	}
	if err := m.AddReserveMovement(ctx, finance.ReserveMovement{ID: "m", Date: day("2026-01-15"), Value: amount("10")}); err != nil {
		t.Fatal(err)
	}

	got, err = m.EarliestRecordDate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || !got.Equal(day("2026-01-15")) {
		t.Fatalf("expected 2026-01-15, got %v", got)
	}
}
