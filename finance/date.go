package finance

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Calendar day abstraction (every engine key is a day)
// =============================================================================

// Date is a calendar day, normalized to midnight UTC. The engine never
// deals in times finer than a day: records are keyed by day, cycles
// start on a day, balances are "as of end of day".
type Date struct {
	t time.Time
}

// DateKeyLayout is the canonical storage format. Keys in this format
// sort lexically in chronological order, which the persistence layer
// relies on.
const DateKeyLayout = "2006-01-02"

// MonthKeyLayout keys per-month configuration (e.g. "2025-01").
const MonthKeyLayout = "2006-01"

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD key.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateKeyLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date key %q: %w", s, err)
	}
	return DateOf(t), nil
}

// MustDate is for tests and literals known to be valid.
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.t.After(other.t) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.t.Before(other.t) }

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{t: d.t.AddDate(0, n, 0)} }
func (d Date) AddYears(n int) Date  { return Date{t: d.t.AddDate(n, 0, 0)} }

// Properties
func (d Date) Year() int         { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int          { return d.t.Day() }
func (d Date) IsZero() bool      { return d.t.IsZero() }

func (d Date) Key() string      { return d.t.Format(DateKeyLayout) }
func (d Date) MonthKey() string { return d.t.Format(MonthKeyLayout) }
func (d Date) String() string   { return d.Key() }

// DaysBetween returns the whole days from d to other (negative if
// other is earlier).
func (d Date) DaysBetween(other Date) int {
	return int(other.t.Sub(d.t).Hours() / 24)
}

// MonthsBetween counts calendar-month boundaries between d and other,
// ignoring the day-of-month. Jan 31 to Feb 1 is one month.
func (d Date) MonthsBetween(other Date) int {
	return (other.Year()-d.Year())*12 + int(other.Month()) - int(d.Month())
}

// MarshalJSON / UnmarshalJSON use the canonical key format.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Key() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date %s", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// MONTH HELPERS
// =============================================================================

// DaysInMonth returns the length of a calendar month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func StartOfMonth(year int, month time.Month) Date {
	return NewDate(year, month, 1)
}

func EndOfMonth(year int, month time.Month) Date {
	return NewDate(year, month, DaysInMonth(year, month))
}

// MonthKey formats a year/month pair as a config key.
func MonthKey(year int, month time.Month) string {
	return StartOfMonth(year, month).MonthKey()
}

// PrevMonthKey returns the key of the month before the given key.
// Returns false for an unparseable key.
func PrevMonthKey(monthKey string) (string, bool) {
	t, err := time.Parse(MonthKeyLayout, monthKey)
	if err != nil {
		return "", false
	}
	return t.AddDate(0, -1, 0).Format(MonthKeyLayout), true
}

// =============================================================================
// PERIOD - Inclusive day range
// =============================================================================

// Period is an inclusive [Start, End] range of days. Budget cycles and
// month views are both periods.
type Period struct {
	Start Date
	End   Date
}

func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days returns every day in the period in order.
func (p Period) Days() []Date {
	var days []Date
	for d := p.Start; d.BeforeOrEqual(p.End); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
