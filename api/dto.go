/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY ENCODING:
  Amounts travel as JSON strings ("-45.90") so clients never round
  through binary floats. Dates are YYYY-MM-DD, month keys YYYY-MM.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - finance/types.go: Domain records these map to
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/vicvanse/pixelfin/finance"
)

// =============================================================================
// MONTH VIEW
// =============================================================================

// MonthDTO is the full derived view of one month.
type MonthDTO struct {
	Year                int           `json:"year"`
	Month               int           `json:"month"`
	Rows                []RowDTO      `json:"rows"`
	Summary             SummaryDTO    `json:"summary"`
	InitialBalance      string        `json:"initial_balance"`
	FinalBalance        string        `json:"final_balance"`
	PredictedEndBalance string        `json:"predicted_end_balance"`
	Tips                []BudgetTipDTO `json:"tips"`
}

// RowDTO is one calendar day of a monthly plan.
type RowDTO struct {
	Day            int           `json:"day"`
	Date           string        `json:"date"`
	TotalDaily     string        `json:"total_daily"`
	RemainingLimit string        `json:"remaining_limit"`
	AccountBalance string        `json:"account_balance"`
	ReserveBalance string        `json:"reserve_balance"`
	LineItems      []LineItemDTO `json:"line_items"`
}

// LineItemDTO is a display item for one day.
type LineItemDTO struct {
	ID               string `json:"id"`
	Description      string `json:"description"`
	Amount           string `json:"amount"`
	Category         string `json:"category,omitempty"`
	Recurring        bool   `json:"recurring,omitempty"`
	InstallmentIndex int    `json:"installment_index,omitempty"`
	InstallmentTotal int    `json:"installment_total,omitempty"`
	Status           string `json:"status"`
}

// SummaryDTO aggregates a built month.
type SummaryDTO struct {
	TotalExpense       string `json:"total_expense"`
	TotalGain          string `json:"total_gain"`
	TotalReserved      string `json:"total_reserved"`
	DayWithMostExpense int    `json:"day_with_most_expense"`
	DayWithMostGain    int    `json:"day_with_most_gain"`
	PositiveDays       int    `json:"positive_days"`
	NegativeDays       int    `json:"negative_days"`
}

// BudgetTipDTO is a rule-derived hint about the month in progress.
type BudgetTipDTO struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// =============================================================================
// POINT EXPENSES
// =============================================================================

// ExpenseDTO represents a point expense in API responses.
type ExpenseDTO struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Category    string `json:"category,omitempty"`
}

// CreateExpenseRequest is the request to record a point expense.
type CreateExpenseRequest struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
}

// =============================================================================
// FINANCIAL ENTRIES
// =============================================================================

// EntryDTO represents a financial entry in API responses.
type EntryDTO struct {
	ID                 string            `json:"id"`
	Description        string            `json:"description"`
	Nature             string            `json:"nature"`
	Frequency          string            `json:"frequency"`
	Amount             string            `json:"amount"`
	Status             string            `json:"status,omitempty"`
	Date               *string           `json:"date,omitempty"`
	StartDate          *string           `json:"start_date,omitempty"`
	EndDate            *string           `json:"end_date,omitempty"`
	Recurrence         string            `json:"recurrence,omitempty"`
	ExcludedDates      []string          `json:"excluded_dates,omitempty"`
	InstallmentTotal   int               `json:"installment_total,omitempty"`
	PaymentMethod      string            `json:"payment_method,omitempty"`
	Category           string            `json:"category,omitempty"`
	OccurrenceStatuses map[string]string `json:"occurrence_statuses,omitempty"`
}

// SaveEntryRequest creates or replaces a financial entry.
type SaveEntryRequest struct {
	Description      string  `json:"description"`
	Nature           string  `json:"nature"`
	Frequency        string  `json:"frequency"`
	Amount           string  `json:"amount"`
	Status           string  `json:"status"`
	Date             *string `json:"date"`
	StartDate        *string `json:"start_date"`
	EndDate          *string `json:"end_date"`
	Recurrence       string  `json:"recurrence"`
	InstallmentTotal int     `json:"installment_total"`
	PaymentMethod    string  `json:"payment_method"`
	Category         string  `json:"category"`
}

// EndRecurrenceRequest stops a recurrence from a given day on.
type EndRecurrenceRequest struct {
	From string `json:"from"`
}

// ExcludeOccurrenceRequest skips one date of a recurrence.
type ExcludeOccurrenceRequest struct {
	Date string `json:"date"`
}

// OccurrenceStatusRequest overrides one occurrence's status.
type OccurrenceStatusRequest struct {
	Date   string `json:"date"`
	Status string `json:"status"`
}

// =============================================================================
// RESERVE / BALANCE / CONFIG
// =============================================================================

// MovementDTO represents a reserve movement.
type MovementDTO struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Value       string `json:"value"`
}

// CreateMovementRequest records a reserve deposit or withdrawal.
type CreateMovementRequest struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Value       string `json:"value"`
}

// BalanceDTO is the account or reserve balance as of a day.
type BalanceDTO struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

// SetSnapshotRequest records a user-entered account balance.
type SetSnapshotRequest struct {
	Date  string `json:"date,omitempty"` // empty = today
	Value string `json:"value"`
}

// ConfigDTO is the per-month budget configuration.
type ConfigDTO struct {
	MonthKey              string `json:"month_key"`
	DesiredMonthlyExpense string `json:"desired_monthly_expense"`
	ResetDay              int    `json:"reset_day"`
}

// CategoryTotalDTO aggregates expenses under a category label.
type CategoryTotalDTO struct {
	Category string `json:"category"`
	Total    string `json:"total"`
}

// =============================================================================
// MAPPERS
// =============================================================================

func monthDTO(data *finance.MonthData) MonthDTO {
	rows := make([]RowDTO, len(data.Rows))
	for i, row := range data.Rows {
		rows[i] = rowDTO(row)
	}
	tips := make([]BudgetTipDTO, len(data.Tips))
	for i, tip := range data.Tips {
		tips[i] = BudgetTipDTO{Type: string(tip.Type), Message: tip.Message}
	}
	return MonthDTO{
		Year:                data.Year,
		Month:               int(data.Month),
		Rows:                rows,
		Summary:             summaryDTO(data.Summary),
		InitialBalance:      data.Balance.Initial.String(),
		FinalBalance:        data.Balance.Final.String(),
		PredictedEndBalance: data.PredictedEndBalance.String(),
		Tips:                tips,
	}
}

func rowDTO(row finance.Row) RowDTO {
	items := make([]LineItemDTO, len(row.LineItems))
	for i, item := range row.LineItems {
		items[i] = LineItemDTO{
			ID:               item.ID,
			Description:      item.Description,
			Amount:           item.Amount.String(),
			Category:         item.Category,
			Recurring:        item.Recurring,
			InstallmentIndex: item.InstallmentIndex,
			InstallmentTotal: item.InstallmentTotal,
			Status:           string(item.Status),
		}
	}
	return RowDTO{
		Day:            row.Day,
		Date:           row.Date.Key(),
		TotalDaily:     row.TotalDaily.String(),
		RemainingLimit: row.RemainingLimit.String(),
		AccountBalance: row.AccountBalance.String(),
		ReserveBalance: row.ReserveBalance.String(),
		LineItems:      items,
	}
}

func summaryDTO(s finance.MonthSummary) SummaryDTO {
	return SummaryDTO{
		TotalExpense:       s.TotalExpense.String(),
		TotalGain:          s.TotalGain.String(),
		TotalReserved:      s.TotalReserved.String(),
		DayWithMostExpense: s.DayWithMostExpense,
		DayWithMostGain:    s.DayWithMostGain,
		PositiveDays:       s.PositiveDays,
		NegativeDays:       s.NegativeDays,
	}
}

func expenseDTO(p finance.PointExpense) ExpenseDTO {
	return ExpenseDTO{
		ID:          p.ID,
		Date:        p.Date.Key(),
		Description: p.Description,
		Amount:      p.Amount.String(),
		Category:    p.Category,
	}
}

func entryDTO(e finance.FinancialEntry) EntryDTO {
	dto := EntryDTO{
		ID:            e.ID,
		Description:   e.Description,
		Nature:        string(e.Nature),
		Frequency:     string(e.Frequency),
		Amount:        e.Amount.String(),
		Status:        string(e.Status),
		Recurrence:    string(e.Recurrence),
		PaymentMethod: e.PaymentMethod,
		Category:      e.Category,
	}
	dto.Date = dateKeyPtr(e.Date)
	dto.StartDate = dateKeyPtr(e.StartDate)
	dto.EndDate = dateKeyPtr(e.EndDate)
	if e.Installments != nil {
		dto.InstallmentTotal = e.Installments.Total
	}
	for _, d := range e.ExcludedDates {
		dto.ExcludedDates = append(dto.ExcludedDates, d.Key())
	}
	if len(e.OccurrenceStatuses) > 0 {
		dto.OccurrenceStatuses = make(map[string]string, len(e.OccurrenceStatuses))
		for k, v := range e.OccurrenceStatuses {
			dto.OccurrenceStatuses[k] = string(v)
		}
	}
	return dto
}

func movementDTO(m finance.ReserveMovement) MovementDTO {
	return MovementDTO{
		ID:          m.ID,
		Date:        m.Date.Key(),
		Description: m.Description,
		Value:       m.Value.String(),
	}
}

func dateKeyPtr(d *finance.Date) *string {
	if d == nil {
		return nil
	}
	k := d.Key()
	return &k
}

// entryFromRequest builds the domain record from a save request.
func entryFromRequest(req SaveEntryRequest) (finance.FinancialEntry, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return finance.FinancialEntry{}, err
	}
	entry := finance.FinancialEntry{
		Description:   req.Description,
		Nature:        finance.Nature(req.Nature),
		Frequency:     finance.Frequency(req.Frequency),
		Amount:        amount,
		Status:        finance.Status(req.Status),
		Recurrence:    finance.Recurrence(req.Recurrence),
		PaymentMethod: req.PaymentMethod,
		Category:      req.Category,
	}
	if entry.Date, err = parseDatePtr(req.Date); err != nil {
		return finance.FinancialEntry{}, err
	}
	if entry.StartDate, err = parseDatePtr(req.StartDate); err != nil {
		return finance.FinancialEntry{}, err
	}
	if entry.EndDate, err = parseDatePtr(req.EndDate); err != nil {
		return finance.FinancialEntry{}, err
	}
	if req.InstallmentTotal > 0 {
		entry.Installments = &finance.Installments{Total: req.InstallmentTotal}
	}
	return entry, nil
}

func parseDatePtr(s *string) (*finance.Date, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := finance.ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
