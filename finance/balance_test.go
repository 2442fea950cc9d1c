package finance_test

import (
	"context"
	"testing"

	"github.com/vicvanse/pixelfin/finance"
)

// =============================================================================
// BALANCE PROPAGATION
// =============================================================================

func TestBalance_PropagatesForwardFromSnapshot(t *testing.T) {
	// GIVEN: balance 500 on March 1, a 50 expense on March 2
	// WHEN: computing balances through the following days
	// THEN: March 1 is 500, March 2 onward is 450 until the next delta
	engine, _ := newTestEngine("2026-03-15")
	ctx := context.Background()
	if err := engine.SetSnapshot(ctx, d("2026-03-01"), dec("500")); err != nil {
		t.Fatal(err)
	}
	mustAddExpense(t, engine, "2026-03-02", "-50")

	cases := []struct {
		day  string
		want string
	}{
		{"2026-03-01", "500"},
		{"2026-03-02", "450"},
		{"2026-03-05", "450"},
	}
	for _, tc := range cases {
		got, err := engine.BalanceOn(ctx, d(tc.day))
		if err != nil {
			t.Fatal(err)
		}
		if !got.Equal(dec(tc.want)) {
			t.Errorf("balance on %s: expected %s, got %s", tc.day, tc.want, got)
		}
	}
}

func TestBalance_ExactDaySnapshotWinsOverDeltas(t *testing.T) {
	// GIVEN: an expense on March 1 AND a snapshot on March 1
	// WHEN: computing the balance for March 1
	// THEN: the snapshot value is returned untouched; the user's entered
	//       balance already reflects whatever happened that day
	engine, _ := newTestEngine("2026-03-15")
	ctx := context.Background()
	mustAddExpense(t, engine, "2026-03-01", "-100")
	if err := engine.SetSnapshot(ctx, d("2026-03-01"), dec("500")); err != nil {
		t.Fatal(err)
	}

	got, err := engine.BalanceOn(ctx, d("2026-03-01"))
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(dec("500")) {
		t.Errorf("expected snapshot value 500, got %s", got)
	}
}

func TestBalance_NoSnapshot_AccumulatesFromEarliestRecord(t *testing.T) {
	// GIVEN: no snapshots, expenses on March 1 and March 3
	// WHEN: computing the balance on March 5
	// THEN: base 0 plus all deltas from the earliest record
	engine, _ := newTestEngine("2026-03-15")
	mustAddExpense(t, engine, "2026-03-01", "-100")
	mustAddExpense(t, engine, "2026-03-03", "250")

	got, err := engine.BalanceOn(context.Background(), d("2026-03-05"))
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(dec("150")) {
		t.Errorf("expected 150, got %s", got)
	}
}

func TestBalance_EmptyStore_Zero(t *testing.T) {
	engine, _ := newTestEngine("2026-03-15")
	got, err := engine.BalanceOn(context.Background(), d("2026-03-05"))
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsZero() {
		t.Errorf("expected 0 on empty store, got %s", got)
	}
}

func TestBalance_EditingPastExpenseShiftsDerivedDaysOnly(t *testing.T) {
	// GIVEN: snapshot March 1 = 500, expense March 2 = -50
	// WHEN: a second March 2 expense is recorded after the fact
	// THEN: derived balances move, the snapshot does not
	engine, _ := newTestEngine("2026-03-15")
	ctx := context.Background()
	if err := engine.SetSnapshot(ctx, d("2026-03-01"), dec("500")); err != nil {
		t.Fatal(err)
	}
	mustAddExpense(t, engine, "2026-03-02", "-50")
	mustAddExpense(t, engine, "2026-03-02", "-30")

	got, err := engine.BalanceOn(ctx, d("2026-03-02"))
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(dec("420")) {
		t.Errorf("expected 420, got %s", got)
	}

	snap, err := engine.BalanceOn(ctx, d("2026-03-01"))
	if err != nil {
		t.Fatal(err)
	}
	if !snap.Equal(dec("500")) {
		t.Errorf("snapshot day must stay 500, got %s", snap)
	}
}

func TestSetSnapshot_ClearsLaterSnapshots(t *testing.T) {
	// GIVEN: snapshots on March 1 and March 10
	// WHEN: writing a snapshot on March 5
	// THEN: March 10 is gone; days after March 5 derive from March 5,
	//       days before still derive from March 1
	engine, mem := newTestEngine("2026-03-15")
	ctx := context.Background()
	if err := engine.SetSnapshot(ctx, d("2026-03-01"), dec("500")); err != nil {
		t.Fatal(err)
	}
	if err := engine.SetSnapshot(ctx, d("2026-03-10"), dec("900")); err != nil {
		t.Fatal(err)
	}
	if err := engine.SetSnapshot(ctx, d("2026-03-05"), dec("700")); err != nil {
		t.Fatal(err)
	}

	snap, err := mem.LatestSnapshotOn(ctx, d("2026-03-20"))
	if err != nil {
		t.Fatal(err)
	}
	if snap == nil || !snap.Date.Equal(d("2026-03-05")) {
		t.Fatalf("expected latest snapshot 2026-03-05, got %v", snap)
	}

	earlier, err := mem.LatestSnapshotOn(ctx, d("2026-03-03"))
	if err != nil {
		t.Fatal(err)
	}
	if earlier == nil || !earlier.Date.Equal(d("2026-03-01")) {
		t.Fatalf("past snapshot must survive, got %v", earlier)
	}
}

// =============================================================================
// RESERVE LEDGER
// =============================================================================

func TestReserve_CumulativeAcrossAllHistory(t *testing.T) {
	// GIVEN: deposits and a withdrawal across three months
	// WHEN: computing the reserve balance at different days
	// THEN: each is the plain cumulative sum through that day
	engine, _ := newTestEngine("2026-03-15")
	ctx := context.Background()
	for _, m := range []struct{ day, value string }{
		{"2026-01-10", "200"},
		{"2026-02-10", "200"},
		{"2026-03-01", "-150"},
	} {
		if _, err := engine.AddReserveMovement(ctx, d(m.day), "move", dec(m.value)); err != nil {
			t.Fatal(err)
		}
	}

	cases := []struct{ day, want string }{
		{"2026-01-10", "200"},
		{"2026-02-28", "400"},
		{"2026-03-15", "250"},
		{"2025-12-31", "0"},
	}
	for _, tc := range cases {
		got, err := engine.ReserveBalanceOn(ctx, d(tc.day))
		if err != nil {
			t.Fatal(err)
		}
		if !got.Equal(dec(tc.want)) {
			t.Errorf("reserve on %s: expected %s, got %s", tc.day, tc.want, got)
		}
	}
}

func TestReserve_IndependentOfCyclesAndBudget(t *testing.T) {
	// GIVEN: a reserve deposit and a budget with expenses
	// WHEN: computing the remaining limit and reserve
	// THEN: neither affects the other
	engine, _ := newTestEngine("2026-03-15")
	ctx := context.Background()
	mustSaveConfig(t, engine, "2026-03", "1000", 1)
	mustAddExpense(t, engine, "2026-03-10", "-400")
	if _, err := engine.AddReserveMovement(ctx, d("2026-03-10"), "savings", dec("300")); err != nil {
		t.Fatal(err)
	}

	remaining, err := engine.RemainingLimitOn(ctx, d("2026-03-15"))
	if err != nil {
		t.Fatal(err)
	}
	if !remaining.Equal(dec("600")) {
		t.Errorf("reserve deposit must not consume budget: expected 600, got %s", remaining)
	}

	reserve, err := engine.ReserveBalanceOn(ctx, d("2026-03-15"))
	if err != nil {
		t.Fatal(err)
	}
	if !reserve.Equal(dec("300")) {
		t.Errorf("expenses must not touch reserve: expected 300, got %s", reserve)
	}
}

func TestRemoveReserveMovement_MissingID(t *testing.T) {
	engine, _ := newTestEngine("2026-03-15")
	err := engine.RemoveReserveMovement(context.Background(), d("2026-03-10"), "nope")
	if !finance.IsNotFound(err) {
		t.Errorf("expected not-found error, got %v", err)
	}
}
