/*
handlers.go - HTTP API handlers for the finance engine

PURPOSE:
  Exposes the calculation engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Month view:
    GET    /api/months/{year}/{month}   Full month plan (rows, summary, tips)

  Days:
    GET    /api/days/{date}             Daily total and line items

  Point expenses:
    POST   /api/expenses                Record a point expense
    DELETE /api/expenses/{date}/{id}    Delete one

  Entries:
    GET    /api/entries                 List all entries
    GET    /api/entries/active          Active recurring entries
    POST   /api/entries                 Create an entry
    GET    /api/entries/{id}            Get one entry
    PUT    /api/entries/{id}            Replace an entry
    DELETE /api/entries/{id}            Delete (with all its occurrences)
    POST   /api/entries/{id}/end        End recurrence from a day on
    POST   /api/entries/{id}/exclude    Skip one occurrence date
    POST   /api/entries/{id}/status     Override one occurrence status

  Reserve:
    GET    /api/reserve                 Reserve balance (?date=)
    POST   /api/reserve/movements       Record a movement
    DELETE /api/reserve/movements/{date}/{id}

  Account balance:
    GET    /api/balance                 Balance as of a day (?date=)
    PUT    /api/balance                 Record a snapshot (today by default)

  Config:
    GET    /api/config/{month}          Resolved config for a month key
    PUT    /api/config/{month}          Store config for a month key

  Categories:
    GET    /api/categories              Expense totals by category (?from=&to=)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Record not found
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/vicvanse/pixelfin/finance"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine *finance.Engine
}

// NewHandler creates a new handler over the engine.
func NewHandler(engine *finance.Engine) *Handler {
	return &Handler{Engine: engine}
}

// =============================================================================
// MONTH VIEW
// =============================================================================

// GetMonth returns the full derived view of one month.
// GET /api/months/{year}/{month}?limit=1500&reset_day=28
func (h *Handler) GetMonth(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1 {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	monthNum, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || monthNum < 1 || monthNum > 12 {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return
	}

	var opts finance.BuildOptions
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := decimal.NewFromString(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		opts.DesiredLimit = &limit
	}
	if v := r.URL.Query().Get("reset_day"); v != "" {
		day, err := strconv.Atoi(v)
		if err != nil || day < 1 || day > 31 {
			writeError(w, http.StatusBadRequest, "Invalid reset_day", err)
			return
		}
		opts.ResetDay = &day
	}

	data, err := h.Engine.BuildMonthData(r.Context(), year, time.Month(monthNum), opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build month", err)
		return
	}
	writeJSON(w, http.StatusOK, monthDTO(data))
}

// GetDay returns the daily total and line items for one day.
// GET /api/days/{date}
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	day, err := finance.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	total, err := h.Engine.DailyTotal(r.Context(), day)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute daily total", err)
		return
	}
	items, err := h.Engine.DailyLineItems(r.Context(), day)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load line items", err)
		return
	}

	row := finance.Row{Day: day.Day(), Date: day, TotalDaily: total, LineItems: items}
	writeJSON(w, http.StatusOK, rowDTO(row))
}

// =============================================================================
// POINT EXPENSES
// =============================================================================

// CreateExpense records a point expense.
// POST /api/expenses
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	day, err := finance.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}

	expense, err := h.Engine.AddPointExpense(r.Context(), day, req.Description, amount, req.Category)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record expense", err)
		return
	}
	writeJSON(w, http.StatusCreated, expenseDTO(expense))
}

// DeleteExpense removes one point expense.
// DELETE /api/expenses/{date}/{id}
func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	day, err := finance.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	if err := h.Engine.RemovePointExpense(r.Context(), day, chi.URLParam(r, "id")); err != nil {
		if finance.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Expense not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete expense", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// FINANCIAL ENTRIES
// =============================================================================

// ListEntries returns all stored entries.
// GET /api/entries
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Engine.Entries(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list entries", err)
		return
	}
	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = entryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListActiveEntries returns recurring entries still open as of today.
// GET /api/entries/active
func (h *Handler) ListActiveEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Engine.ActiveRecurringEntries(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list active entries", err)
		return
	}
	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = entryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEntry returns one entry.
// GET /api/entries/{id}
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.Engine.Entry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if finance.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Entry not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to load entry", err)
		return
	}
	writeJSON(w, http.StatusOK, entryDTO(entry))
}

// CreateEntry stores a new financial entry.
// POST /api/entries
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req SaveEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	entry, err := entryFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid entry", err)
		return
	}

	created, err := h.Engine.AddEntry(r.Context(), entry)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to create entry", err)
		return
	}
	writeJSON(w, http.StatusCreated, entryDTO(created))
}

// UpdateEntry replaces a stored entry.
// PUT /api/entries/{id}
func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req SaveEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	entry, err := entryFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid entry", err)
		return
	}
	entry.ID = id

	// Preserve occurrence-level state the save request does not carry.
	if existing, err := h.Engine.Entry(r.Context(), id); err == nil {
		entry.ExcludedDates = existing.ExcludedDates
		entry.OccurrenceStatuses = existing.OccurrenceStatuses
		entry.CreatedAt = existing.CreatedAt
	}

	if err := h.Engine.UpdateEntry(r.Context(), entry); err != nil {
		if finance.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Entry not found", err)
			return
		}
		writeError(w, http.StatusBadRequest, "Failed to update entry", err)
		return
	}
	writeJSON(w, http.StatusOK, entryDTO(entry))
}

// DeleteEntry removes an entry and every occurrence it produced.
// DELETE /api/entries/{id}
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.Engine.RemoveEntry(r.Context(), chi.URLParam(r, "id")); err != nil {
		if finance.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Entry not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete entry", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EndEntry stops a recurrence from a given day on.
// POST /api/entries/{id}/end
func (h *Handler) EndEntry(w http.ResponseWriter, r *http.Request) {
	var req EndRecurrenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	from, err := finance.ParseDate(req.From)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	if err := h.Engine.EndRecurrence(r.Context(), chi.URLParam(r, "id"), from); err != nil {
		switch {
		case finance.IsNotFound(err):
			writeError(w, http.StatusNotFound, "Entry not found", err)
		case errors.Is(err, finance.ErrNotRecurring):
			writeError(w, http.StatusBadRequest, "Entry is not recurring", err)
		default:
			writeError(w, http.StatusInternalServerError, "Failed to end recurrence", err)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExcludeEntryDate skips one occurrence of a recurrence.
// POST /api/entries/{id}/exclude
func (h *Handler) ExcludeEntryDate(w http.ResponseWriter, r *http.Request) {
	var req ExcludeOccurrenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	day, err := finance.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	if err := h.Engine.ExcludeOccurrence(r.Context(), chi.URLParam(r, "id"), day); err != nil {
		switch {
		case finance.IsNotFound(err):
			writeError(w, http.StatusNotFound, "Entry not found", err)
		case errors.Is(err, finance.ErrNotRecurring):
			writeError(w, http.StatusBadRequest, "Entry is not recurring", err)
		default:
			writeError(w, http.StatusInternalServerError, "Failed to exclude occurrence", err)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetEntryOccurrenceStatus overrides one occurrence's status.
// POST /api/entries/{id}/status
func (h *Handler) SetEntryOccurrenceStatus(w http.ResponseWriter, r *http.Request) {
	var req OccurrenceStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	day, err := finance.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	status := finance.Status(req.Status)
	switch status {
	case finance.StatusReceived, finance.StatusPending, finance.StatusExpected, finance.StatusCanceled:
	default:
		writeError(w, http.StatusBadRequest, "Invalid status", nil)
		return
	}

	if err := h.Engine.SetOccurrenceStatus(r.Context(), chi.URLParam(r, "id"), day, status); err != nil {
		switch {
		case finance.IsNotFound(err):
			writeError(w, http.StatusNotFound, "Entry not found", err)
		case errors.Is(err, finance.ErrNotRecurring):
			writeError(w, http.StatusBadRequest, "Entry is not recurring", err)
		default:
			writeError(w, http.StatusInternalServerError, "Failed to set status", err)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// RESERVE
// =============================================================================

// GetReserve returns the reserve balance as of a day (today by default).
// GET /api/reserve?date=2026-03-15
func (h *Handler) GetReserve(w http.ResponseWriter, r *http.Request) {
	day, err := queryDate(r, "date", finance.DateOf(time.Now()))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	balance, err := h.Engine.ReserveBalanceOn(r.Context(), day)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute reserve balance", err)
		return
	}
	writeJSON(w, http.StatusOK, BalanceDTO{Date: day.Key(), Value: balance.String()})
}

// CreateMovement records a reserve deposit or withdrawal.
// POST /api/reserve/movements
func (h *Handler) CreateMovement(w http.ResponseWriter, r *http.Request) {
	var req CreateMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	day, err := finance.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	value, err := decimal.NewFromString(req.Value)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid value", err)
		return
	}

	movement, err := h.Engine.AddReserveMovement(r.Context(), day, req.Description, value)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record movement", err)
		return
	}
	writeJSON(w, http.StatusCreated, movementDTO(movement))
}

// DeleteMovement removes one reserve movement.
// DELETE /api/reserve/movements/{date}/{id}
func (h *Handler) DeleteMovement(w http.ResponseWriter, r *http.Request) {
	day, err := finance.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	if err := h.Engine.RemoveReserveMovement(r.Context(), day, chi.URLParam(r, "id")); err != nil {
		if finance.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Movement not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete movement", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ACCOUNT BALANCE
// =============================================================================

// GetBalance returns the account balance as of a day (today by default).
// GET /api/balance?date=2026-03-15
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	day, err := queryDate(r, "date", finance.DateOf(time.Now()))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	balance, err := h.Engine.BalanceOn(r.Context(), day)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute balance", err)
		return
	}
	writeJSON(w, http.StatusOK, BalanceDTO{Date: day.Key(), Value: balance.String()})
}

// SetBalance records a user-entered account balance snapshot.
// PUT /api/balance
func (h *Handler) SetBalance(w http.ResponseWriter, r *http.Request) {
	var req SetSnapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	value, err := decimal.NewFromString(req.Value)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid value", err)
		return
	}

	if req.Date == "" {
		err = h.Engine.SetTodaySnapshot(r.Context(), value)
	} else {
		var day finance.Date
		if day, err = finance.ParseDate(req.Date); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date", err)
			return
		}
		err = h.Engine.SetSnapshot(r.Context(), day, value)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save snapshot", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// CYCLE CONFIG
// =============================================================================

// GetConfig returns the resolved config for a month key, inheritance
// applied.
// GET /api/config/{month}
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	monthKey := chi.URLParam(r, "month")
	if _, err := time.Parse(finance.MonthKeyLayout, monthKey); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month key", err)
		return
	}

	cfg, err := h.Engine.ConfigFor(r.Context(), monthKey)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load config", err)
		return
	}
	writeJSON(w, http.StatusOK, ConfigDTO{
		MonthKey:              monthKey,
		DesiredMonthlyExpense: cfg.DesiredMonthlyExpense.String(),
		ResetDay:              cfg.ResetDay,
	})
}

// SetConfig stores the budget config for a month key.
// PUT /api/config/{month}
func (h *Handler) SetConfig(w http.ResponseWriter, r *http.Request) {
	monthKey := chi.URLParam(r, "month")
	if _, err := time.Parse(finance.MonthKeyLayout, monthKey); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month key", err)
		return
	}

	var req ConfigDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	limit, err := decimal.NewFromString(req.DesiredMonthlyExpense)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid desired_monthly_expense", err)
		return
	}

	cfg := finance.CycleConfig{DesiredMonthlyExpense: limit, ResetDay: req.ResetDay}
	if err := h.Engine.SaveCycleConfig(r.Context(), monthKey, cfg); err != nil {
		if errors.Is(err, finance.ErrInvalidResetDay) {
			writeError(w, http.StatusBadRequest, "Invalid reset day", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to save config", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// CATEGORIES
// =============================================================================

// GetCategoryTotals returns expense totals by category over a range.
// GET /api/categories?from=2026-03-01&to=2026-03-31
func (h *Handler) GetCategoryTotals(w http.ResponseWriter, r *http.Request) {
	from, err := finance.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from date", err)
		return
	}
	to, err := finance.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to date", err)
		return
	}

	totals, err := h.Engine.CategoryTotals(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute category totals", err)
		return
	}
	dtos := make([]CategoryTotalDTO, len(totals))
	for i, t := range totals {
		dtos[i] = CategoryTotalDTO{Category: t.Category, Total: t.Total.String()}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func queryDate(r *http.Request, param string, fallback finance.Date) (finance.Date, error) {
	v := r.URL.Query().Get(param)
	if v == "" {
		return fallback, nil
	}
	return finance.ParseDate(v)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
