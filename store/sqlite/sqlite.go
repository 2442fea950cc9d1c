/*
Package sqlite provides a SQLite-backed implementation of finance.Store.

PURPOSE:
  Persists the five record collections behind the calculation engine.
  In production the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

KEY TABLES:
  point_expenses:    one-off records keyed by date
  financial_entries: one-off and recurring entries (JSON side fields)
  reserve_movements: reserve ledger deposits/withdrawals
  account_snapshots: sparse date -> balance map, one row per day
  cycle_config:      month key -> {limit, reset day}

DATE ENCODING:
  All dates are stored as TEXT date keys (YYYY-MM-DD) and month keys
  (YYYY-MM) so lexical comparison in SQL matches chronological order.

MALFORMED RECORDS:
  Rows whose stored amount or date fails to parse are skipped during
  scans rather than failing the whole query. A single corrupt record
  must not take down month rendering.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - finance/store.go: interface definition
  - finance/store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/vicvanse/pixelfin/finance"
)

// Store implements finance.Store using SQLite.
type Store struct {
	db *sql.DB
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS point_expenses (
		id TEXT NOT NULL,
		date TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		amount TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		related_goal_id INTEGER,
		seq INTEGER PRIMARY KEY AUTOINCREMENT
	);

	CREATE INDEX IF NOT EXISTS idx_point_expenses_date
		ON point_expenses(date);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_point_expenses_id_date
		ON point_expenses(id, date);

	CREATE TABLE IF NOT EXISTS financial_entries (
		id TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		nature TEXT NOT NULL DEFAULT '',
		frequency TEXT NOT NULL,
		amount TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT '',
		date TEXT,
		start_date TEXT,
		end_date TEXT,
		recurrence TEXT NOT NULL DEFAULT '',
		excluded_dates_json TEXT,
		installments_json TEXT,
		payment_method TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		occurrence_statuses_json TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		seq INTEGER PRIMARY KEY AUTOINCREMENT
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_financial_entries_id
		ON financial_entries(id);
	CREATE INDEX IF NOT EXISTS idx_financial_entries_start
		ON financial_entries(start_date);

	CREATE TABLE IF NOT EXISTS reserve_movements (
		id TEXT NOT NULL,
		date TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		value TEXT NOT NULL,
		seq INTEGER PRIMARY KEY AUTOINCREMENT
	);

	CREATE INDEX IF NOT EXISTS idx_reserve_movements_date
		ON reserve_movements(date);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_reserve_movements_id_date
		ON reserve_movements(id, date);

	CREATE TABLE IF NOT EXISTS account_snapshots (
		date TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS cycle_config (
		month_key TEXT PRIMARY KEY,
		desired_monthly_expense TEXT NOT NULL,
		reset_day INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// POINT EXPENSES
// =============================================================================

func (s *Store) PointExpenses(ctx context.Context, day finance.Date) ([]finance.PointExpense, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, description, amount, category, related_goal_id
		FROM point_expenses WHERE date = ? ORDER BY seq`, day.Key())
	if err != nil {
		return nil, fmt.Errorf("query point expenses: %w", err)
	}
	defer rows.Close()
	return scanPointExpenses(rows)
}

func (s *Store) PointExpensesInRange(ctx context.Context, from, to finance.Date) ([]finance.PointExpense, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, description, amount, category, related_goal_id
		FROM point_expenses WHERE date >= ? AND date <= ? ORDER BY date, seq`,
		from.Key(), to.Key())
	if err != nil {
		return nil, fmt.Errorf("query point expenses: %w", err)
	}
	defer rows.Close()
	return scanPointExpenses(rows)
}

func scanPointExpenses(rows *sql.Rows) ([]finance.PointExpense, error) {
	result := []finance.PointExpense{}
	for rows.Next() {
		var (
			p                     finance.PointExpense
			dateStr, amountStr    string
			relatedGoal           sql.NullInt64
		)
		if err := rows.Scan(&p.ID, &dateStr, &p.Description, &amountStr, &p.Category, &relatedGoal); err != nil {
			return nil, err
		}
		date, err := finance.ParseDate(dateStr)
		if err != nil {
			continue // malformed row, skip
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			continue
		}
		p.Date = date
		p.Amount = amount
		if relatedGoal.Valid {
			p.RelatedGoalID = &relatedGoal.Int64
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (s *Store) AddPointExpense(ctx context.Context, e finance.PointExpense) error {
	var relatedGoal interface{}
	if e.RelatedGoalID != nil {
		relatedGoal = *e.RelatedGoalID
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO point_expenses (id, date, description, amount, category, related_goal_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Date.Key(), e.Description, e.Amount.String(), e.Category, relatedGoal)
	if err != nil {
		return fmt.Errorf("insert point expense: %w", err)
	}
	return nil
}

func (s *Store) RemovePointExpense(ctx context.Context, day finance.Date, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM point_expenses WHERE id = ? AND date = ?`, id, day.Key())
	if err != nil {
		return fmt.Errorf("delete point expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return finance.ErrExpenseNotFound
	}
	return nil
}

// =============================================================================
// FINANCIAL ENTRIES
// =============================================================================

func (s *Store) Entries(ctx context.Context) ([]finance.FinancialEntry, error) {
	rows, err := s.db.QueryContext(ctx, entrySelect+` ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	result := []finance.FinancialEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			continue // malformed row, skip
		}
		result = append(result, *entry)
	}
	return result, rows.Err()
}

func (s *Store) Entry(ctx context.Context, id string) (finance.FinancialEntry, error) {
	rows, err := s.db.QueryContext(ctx, entrySelect+` WHERE id = ?`, id)
	if err != nil {
		return finance.FinancialEntry{}, fmt.Errorf("query entry: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return finance.FinancialEntry{}, err
		}
		return finance.FinancialEntry{}, finance.ErrEntryNotFound
	}
	entry, err := scanEntry(rows)
	if err != nil {
		return finance.FinancialEntry{}, err
	}
	if entry == nil {
		return finance.FinancialEntry{}, finance.ErrEntryNotFound
	}
	return *entry, nil
}

const entrySelect = `
	SELECT id, description, nature, frequency, amount, status,
	       date, start_date, end_date, recurrence,
	       excluded_dates_json, installments_json,
	       payment_method, category, occurrence_statuses_json,
	       created_at, updated_at
	FROM financial_entries`

// scanEntry reads one entry row. Returns (nil, nil) for rows whose
// stored values no longer parse.
func scanEntry(rows *sql.Rows) (*finance.FinancialEntry, error) {
	var (
		e                                  finance.FinancialEntry
		amountStr                          string
		dateStr, startStr, endStr         sql.NullString
		excludedJSON, instJSON, statusJSON sql.NullString
		createdStr, updatedStr             string
	)
	if err := rows.Scan(&e.ID, &e.Description, &e.Nature, &e.Frequency, &amountStr,
		&e.Status, &dateStr, &startStr, &endStr, &e.Recurrence,
		&excludedJSON, &instJSON, &e.PaymentMethod, &e.Category, &statusJSON,
		&createdStr, &updatedStr); err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, nil
	}
	e.Amount = amount

	if e.Date, err = scanNullDate(dateStr); err != nil {
		return nil, nil
	}
	if e.StartDate, err = scanNullDate(startStr); err != nil {
		return nil, nil
	}
	if e.EndDate, err = scanNullDate(endStr); err != nil {
		return nil, nil
	}

	if excludedJSON.Valid && excludedJSON.String != "" {
		if err := json.Unmarshal([]byte(excludedJSON.String), &e.ExcludedDates); err != nil {
			return nil, nil
		}
	}
	if instJSON.Valid && instJSON.String != "" {
		e.Installments = &finance.Installments{}
		if err := json.Unmarshal([]byte(instJSON.String), e.Installments); err != nil {
			return nil, nil
		}
	}
	if statusJSON.Valid && statusJSON.String != "" {
		if err := json.Unmarshal([]byte(statusJSON.String), &e.OccurrenceStatuses); err != nil {
			return nil, nil
		}
	}

	e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	e.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedStr)
	return &e, nil
}

func scanNullDate(v sql.NullString) (*finance.Date, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	d, err := finance.ParseDate(v.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Store) AddEntry(ctx context.Context, e finance.FinancialEntry) error {
	return s.writeEntry(ctx, e, `
		INSERT INTO financial_entries
			(id, description, nature, frequency, amount, status,
			 date, start_date, end_date, recurrence,
			 excluded_dates_json, installments_json,
			 payment_method, category, occurrence_statuses_json,
			 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			description = excluded.description,
			nature = excluded.nature,
			frequency = excluded.frequency,
			amount = excluded.amount,
			status = excluded.status,
			date = excluded.date,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			recurrence = excluded.recurrence,
			excluded_dates_json = excluded.excluded_dates_json,
			installments_json = excluded.installments_json,
			payment_method = excluded.payment_method,
			category = excluded.category,
			occurrence_statuses_json = excluded.occurrence_statuses_json,
			updated_at = excluded.updated_at`)
}

func (s *Store) UpdateEntry(ctx context.Context, e finance.FinancialEntry) error {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM financial_entries WHERE id = ?`, e.ID).Scan(&exists)
	if err == sql.ErrNoRows {
		return finance.ErrEntryNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup entry: %w", err)
	}
	return s.AddEntry(ctx, e)
}

func (s *Store) writeEntry(ctx context.Context, e finance.FinancialEntry, query string) error {
	excludedJSON, err := marshalOrNil(e.ExcludedDates, len(e.ExcludedDates) > 0)
	if err != nil {
		return err
	}
	instJSON, err := marshalOrNil(e.Installments, e.Installments != nil)
	if err != nil {
		return err
	}
	statusJSON, err := marshalOrNil(e.OccurrenceStatuses, len(e.OccurrenceStatuses) > 0)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, query,
		e.ID, e.Description, string(e.Nature), string(e.Frequency),
		e.Amount.String(), string(e.Status),
		nullDateKey(e.Date), nullDateKey(e.StartDate), nullDateKey(e.EndDate),
		string(e.Recurrence), excludedJSON, instJSON,
		e.PaymentMethod, e.Category, statusJSON,
		e.CreatedAt.UTC().Format(time.RFC3339Nano),
		e.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("write entry: %w", err)
	}
	return nil
}

func (s *Store) RemoveEntry(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM financial_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return finance.ErrEntryNotFound
	}
	return nil
}

func marshalOrNil(v interface{}, present bool) (interface{}, error) {
	if !present {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal entry field: %w", err)
	}
	return string(b), nil
}

func nullDateKey(d *finance.Date) interface{} {
	if d == nil {
		return nil
	}
	return d.Key()
}

// =============================================================================
// RESERVE MOVEMENTS
// =============================================================================

func (s *Store) ReserveMovements(ctx context.Context, day finance.Date) ([]finance.ReserveMovement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, description, value
		FROM reserve_movements WHERE date = ? ORDER BY seq`, day.Key())
	if err != nil {
		return nil, fmt.Errorf("query reserve movements: %w", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

func (s *Store) ReserveMovementsThrough(ctx context.Context, day finance.Date) ([]finance.ReserveMovement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, description, value
		FROM reserve_movements WHERE date <= ? ORDER BY date, seq`, day.Key())
	if err != nil {
		return nil, fmt.Errorf("query reserve movements: %w", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

func scanMovements(rows *sql.Rows) ([]finance.ReserveMovement, error) {
	result := []finance.ReserveMovement{}
	for rows.Next() {
		var (
			m                 finance.ReserveMovement
			dateStr, valueStr string
		)
		if err := rows.Scan(&m.ID, &dateStr, &m.Description, &valueStr); err != nil {
			return nil, err
		}
		date, err := finance.ParseDate(dateStr)
		if err != nil {
			continue
		}
		value, err := decimal.NewFromString(valueStr)
		if err != nil {
			continue
		}
		m.Date = date
		m.Value = value
		result = append(result, m)
	}
	return result, rows.Err()
}

func (s *Store) AddReserveMovement(ctx context.Context, m finance.ReserveMovement) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reserve_movements (id, date, description, value)
		VALUES (?, ?, ?, ?)`,
		m.ID, m.Date.Key(), m.Description, m.Value.String())
	if err != nil {
		return fmt.Errorf("insert reserve movement: %w", err)
	}
	return nil
}

func (s *Store) RemoveReserveMovement(ctx context.Context, day finance.Date, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM reserve_movements WHERE id = ? AND date = ?`, id, day.Key())
	if err != nil {
		return fmt.Errorf("delete reserve movement: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return finance.ErrMovementNotFound
	}
	return nil
}

// =============================================================================
// ACCOUNT SNAPSHOTS
// =============================================================================

func (s *Store) LatestSnapshotOn(ctx context.Context, day finance.Date) (*finance.Snapshot, error) {
	var dateStr, valueStr string
	err := s.db.QueryRowContext(ctx, `
		SELECT date, value FROM account_snapshots
		WHERE date <= ? ORDER BY date DESC LIMIT 1`, day.Key()).Scan(&dateStr, &valueStr)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}

	date, err := finance.ParseDate(dateStr)
	if err != nil {
		return nil, nil
	}
	value, err := decimal.NewFromString(valueStr)
	if err != nil {
		return nil, nil
	}
	return &finance.Snapshot{Date: date, Value: value}, nil
}

// SaveSnapshot writes a snapshot and clears every later one, in a
// single transaction so a crash never leaves two base points ahead.
func (s *Store) SaveSnapshot(ctx context.Context, snap finance.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM account_snapshots WHERE date > ?`, snap.Date.Key()); err != nil {
		return fmt.Errorf("clear later snapshots: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO account_snapshots (date, value) VALUES (?, ?)
		ON CONFLICT(date) DO UPDATE SET value = excluded.value`,
		snap.Date.Key(), snap.Value.String()); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return tx.Commit()
}

// =============================================================================
// CYCLE CONFIG
// =============================================================================

func (s *Store) CycleConfig(ctx context.Context, monthKey string) (*finance.CycleConfig, error) {
	var limitStr string
	var resetDay int
	err := s.db.QueryRowContext(ctx, `
		SELECT desired_monthly_expense, reset_day
		FROM cycle_config WHERE month_key = ?`, monthKey).Scan(&limitStr, &resetDay)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query cycle config: %w", err)
	}

	limit, err := decimal.NewFromString(limitStr)
	if err != nil {
		return nil, nil
	}
	return &finance.CycleConfig{DesiredMonthlyExpense: limit, ResetDay: resetDay}, nil
}

func (s *Store) SaveCycleConfig(ctx context.Context, monthKey string, cfg finance.CycleConfig) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cycle_config (month_key, desired_monthly_expense, reset_day)
		VALUES (?, ?, ?)
		ON CONFLICT(month_key) DO UPDATE SET
			desired_monthly_expense = excluded.desired_monthly_expense,
			reset_day = excluded.reset_day`,
		monthKey, cfg.DesiredMonthlyExpense.String(), cfg.ResetDay)
	if err != nil {
		return fmt.Errorf("write cycle config: %w", err)
	}
	return nil
}

// =============================================================================
// BOUNDS
// =============================================================================

func (s *Store) EarliestRecordDate(ctx context.Context) (*finance.Date, error) {
	var earliest sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT MIN(d) FROM (
			SELECT MIN(date) AS d FROM point_expenses
			UNION ALL
			SELECT MIN(COALESCE(date, start_date)) FROM financial_entries
			UNION ALL
			SELECT MIN(date) FROM reserve_movements
			UNION ALL
			SELECT MIN(date) FROM account_snapshots
		)`).Scan(&earliest)
	if err != nil {
		return nil, fmt.Errorf("query earliest record: %w", err)
	}
	if !earliest.Valid || earliest.String == "" {
		return nil, nil
	}
	d, err := finance.ParseDate(earliest.String)
	if err != nil {
		return nil, nil
	}
	return &d, nil
}
