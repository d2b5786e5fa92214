package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income Kind = iota + 1
	Expense
)

type (
	// Kind is the category of a ledger entry.
	Kind int

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Entry struct {
		Date        Date
		Kind        Kind
		Description string
		Amount      Money
	}

	// Ledger is the ordered, append-only collection of entries.
	Ledger []Entry

	// Period selects a year and month. Month 0 selects the whole year.
	Period struct {
		Year  int
		Month int
	}
)

var (
	ErrInvalidDay       = errors.New("invalid day")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidYear      = errors.New("invalid year")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidKind      = errors.New("invalid entry type")
	ErrEmptyDescription = errors.New("empty description")
	ErrLongDescription  = errors.New("description too long (max 200 characters)")
)

const maxDescriptionLen = 200

// String returns the label used on screen and in the ledger file.
func (k Kind) String() string {
	switch k {
	case Income:
		return "Entrada"
	case Expense:
		return "Saída"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

// ParseKind accepts the Portuguese labels (with or without accents) and
// the English names, case-insensitive.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "entrada", "income", "in":
		return Income, nil
	case "saída", "saida", "expense", "out":
		return Expense, nil
	}
	return 0, ErrInvalidKind
}

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseDate parses ISO (YYYY-MM-DD) and day-first (DD/MM/YYYY) dates.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t.Year(), int(t.Month()), t.Day()), nil
		}
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// Format renders the date day-first, as shown to the user.
func (d Date) Format() string {
	return d.Time.Format("02/01/2006")
}

// ISO renders the date as YYYY-MM-DD, as persisted.
func (d Date) ISO() string {
	return d.Time.Format("2006-01-02")
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Sub returns m minus o; the result may be negative.
func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

func (e Entry) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if !e.Kind.Valid() {
		return ErrInvalidKind
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len([]rune(e.Description)) > maxDescriptionLen {
		return ErrLongDescription
	}
	return e.Amount.Validate()
}

// Validate checks the period. Month 0 is allowed and means the whole year.
func (p Period) Validate() error {
	if p.Year < 1 || p.Year > 9999 {
		return ErrInvalidYear
	}
	if p.Month < 0 || p.Month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// WholeYear reports whether the period covers every month of its year.
func (p Period) WholeYear() bool {
	return p.Month == 0
}

// Contains reports whether d falls inside the period.
func (p Period) Contains(d Date) bool {
	if d.Year() != p.Year {
		return false
	}
	return p.WholeYear() || d.Month() == p.Month
}

func (p Period) String() string {
	if p.WholeYear() {
		return fmt.Sprintf("%04d", p.Year)
	}
	return fmt.Sprintf("%02d/%04d", p.Month, p.Year)
}

// Before orders periods chronologically.
func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Month < o.Month
}

// PeriodOf returns the month containing d.
func PeriodOf(d Date) Period {
	return Period{Year: d.Year(), Month: d.Month()}
}
