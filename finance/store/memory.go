// Package store provides finance.Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/vicvanse/pixelfin/finance"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu         sync.RWMutex
	expenses   map[string][]finance.PointExpense // date key -> expenses
	entries    []finance.FinancialEntry          // insertion order
	entryIndex map[string]int                    // id -> position in entries
	reserve    map[string][]finance.ReserveMovement
	snapshots  map[string]finance.Snapshot // date key -> snapshot
	config     map[string]finance.CycleConfig
}

func NewMemory() *Memory {
	return &Memory{
		expenses:   make(map[string][]finance.PointExpense),
		entryIndex: make(map[string]int),
		reserve:    make(map[string][]finance.ReserveMovement),
		snapshots:  make(map[string]finance.Snapshot),
		config:     make(map[string]finance.CycleConfig),
	}
}

// ---- Point expenses ----

func (m *Memory) PointExpenses(_ context.Context, day finance.Date) ([]finance.PointExpense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored := m.expenses[day.Key()]
	result := make([]finance.PointExpense, len(stored))
	copy(result, stored)
	return result, nil
}

func (m *Memory) PointExpensesInRange(_ context.Context, from, to finance.Date) ([]finance.PointExpense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.expenses))
	for k := range m.expenses {
		if k >= from.Key() && k <= to.Key() {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var result []finance.PointExpense
	for _, k := range keys {
		result = append(result, m.expenses[k]...)
	}
	return result, nil
}

func (m *Memory) AddPointExpense(_ context.Context, e finance.PointExpense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expenses[e.Date.Key()] = append(m.expenses[e.Date.Key()], e)
	return nil
}

func (m *Memory) RemovePointExpense(_ context.Context, day finance.Date, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := m.expenses[day.Key()]
	for i, e := range stored {
		if e.ID == id {
			m.expenses[day.Key()] = append(stored[:i:i], stored[i+1:]...)
			return nil
		}
	}
	return finance.ErrExpenseNotFound
}

// ---- Financial entries ----

func (m *Memory) Entries(_ context.Context) ([]finance.FinancialEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]finance.FinancialEntry, len(m.entries))
	for i := range m.entries {
		result[i] = copyEntry(m.entries[i])
	}
	return result, nil
}

func (m *Memory) Entry(_ context.Context, id string) (finance.FinancialEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.entryIndex[id]
	if !ok {
		return finance.FinancialEntry{}, finance.ErrEntryNotFound
	}
	return copyEntry(m.entries[i]), nil
}

func (m *Memory) AddEntry(_ context.Context, e finance.FinancialEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entryIndex[e.ID]; ok {
		// Same id twice is an update, not a duplicate row.
		m.entries[m.entryIndex[e.ID]] = copyEntry(e)
		return nil
	}
	m.entryIndex[e.ID] = len(m.entries)
	m.entries = append(m.entries, copyEntry(e))
	return nil
}

func (m *Memory) UpdateEntry(_ context.Context, e finance.FinancialEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.entryIndex[e.ID]
	if !ok {
		return finance.ErrEntryNotFound
	}
	m.entries[i] = copyEntry(e)
	return nil
}

func (m *Memory) RemoveEntry(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.entryIndex[id]
	if !ok {
		return finance.ErrEntryNotFound
	}
	m.entries = append(m.entries[:i:i], m.entries[i+1:]...)
	delete(m.entryIndex, id)
	for j := i; j < len(m.entries); j++ {
		m.entryIndex[m.entries[j].ID] = j
	}
	return nil
}

// ---- Reserve movements ----

func (m *Memory) ReserveMovements(_ context.Context, day finance.Date) ([]finance.ReserveMovement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored := m.reserve[day.Key()]
	result := make([]finance.ReserveMovement, len(stored))
	copy(result, stored)
	return result, nil
}

func (m *Memory) ReserveMovementsThrough(_ context.Context, day finance.Date) ([]finance.ReserveMovement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.reserve))
	for k := range m.reserve {
		if k <= day.Key() {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var result []finance.ReserveMovement
	for _, k := range keys {
		result = append(result, m.reserve[k]...)
	}
	return result, nil
}

func (m *Memory) AddReserveMovement(_ context.Context, mv finance.ReserveMovement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reserve[mv.Date.Key()] = append(m.reserve[mv.Date.Key()], mv)
	return nil
}

func (m *Memory) RemoveReserveMovement(_ context.Context, day finance.Date, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := m.reserve[day.Key()]
	for i, mv := range stored {
		if mv.ID == id {
			m.reserve[day.Key()] = append(stored[:i:i], stored[i+1:]...)
			return nil
		}
	}
	return finance.ErrMovementNotFound
}

// ---- Account snapshots ----

func (m *Memory) LatestSnapshotOn(_ context.Context, day finance.Date) (*finance.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var best *finance.Snapshot
	for k := range m.snapshots {
		if k > day.Key() {
			continue
		}
		s := m.snapshots[k]
		if best == nil || s.Date.After(best.Date) {
			copied := s
			best = &copied
		}
	}
	return best, nil
}

func (m *Memory) SaveSnapshot(_ context.Context, s finance.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k := range m.snapshots {
		if k > s.Date.Key() {
			delete(m.snapshots, k)
		}
	}
	m.snapshots[s.Date.Key()] = s
	return nil
}

// ---- Cycle config ----

func (m *Memory) CycleConfig(_ context.Context, monthKey string) (*finance.CycleConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cfg, ok := m.config[monthKey]
	if !ok {
		return nil, nil
	}
	copied := cfg
	return &copied, nil
}

func (m *Memory) SaveCycleConfig(_ context.Context, monthKey string, cfg finance.CycleConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config[monthKey] = cfg
	return nil
}

// ---- Bounds ----

func (m *Memory) EarliestRecordDate(_ context.Context) (*finance.Date, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var earliest *finance.Date
	consider := func(d finance.Date) {
		if earliest == nil || d.Before(*earliest) {
			copied := d
			earliest = &copied
		}
	}

	for _, stored := range m.expenses {
		for _, e := range stored {
			consider(e.Date)
		}
	}
	for i := range m.entries {
		if m.entries[i].Date != nil {
			consider(*m.entries[i].Date)
		}
		if m.entries[i].StartDate != nil {
			consider(*m.entries[i].StartDate)
		}
	}
	for _, stored := range m.reserve {
		for _, mv := range stored {
			consider(mv.Date)
		}
	}
	for _, s := range m.snapshots {
		consider(s.Date)
	}
	return earliest, nil
}

// copyEntry deep-copies the entry's slice and map fields so callers
// never alias stored state.
func copyEntry(e finance.FinancialEntry) finance.FinancialEntry {
	if e.Date != nil {
		d := *e.Date
		e.Date = &d
	}
	if e.StartDate != nil {
		d := *e.StartDate
		e.StartDate = &d
	}
	if e.EndDate != nil {
		d := *e.EndDate
		e.EndDate = &d
	}
	if e.Installments != nil {
		inst := *e.Installments
		e.Installments = &inst
	}
	if e.ExcludedDates != nil {
		e.ExcludedDates = append([]finance.Date{}, e.ExcludedDates...)
	}
	if e.OccurrenceStatuses != nil {
		statuses := make(map[string]finance.Status, len(e.OccurrenceStatuses))
		for k, v := range e.OccurrenceStatuses {
			statuses[k] = v
		}
		e.OccurrenceStatuses = statuses
	}
	return e
}
