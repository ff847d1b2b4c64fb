package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const dateLayout = "2006-01-02"

type (
	TransactionType string

	// Date is a calendar date without time of day, always in UTC.
	Date struct {
		time.Time
	}

	Transaction struct {
		ID        string          `json:"id"`
		UserID    string          `json:"user_id"`
		Type      TransactionType `json:"type"`
		Category  string          `json:"category"`
		Item      string          `json:"item"`
		Amount    Money           `json:"amount"`
		Date      Date            `json:"date"`
		CreatedAt time.Time       `json:"created_at"`
	}

	Bill struct {
		ID        string    `json:"id"`
		UserID    string    `json:"user_id"`
		Name      string    `json:"name"`
		Amount    Money     `json:"amount"`
		DueDate   Date      `json:"due_date"`
		IsPaid    bool      `json:"is_paid"`
		CreatedAt time.Time `json:"created_at"`
	}

	// Budget is unique per (UserID, Period).
	Budget struct {
		UserID    string    `json:"user_id"`
		Period    Period    `json:"budget_period"`
		Amount    Money     `json:"amount"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	Notification struct {
		ID        string    `json:"id"`
		UserID    string    `json:"user_id"`
		Message   string    `json:"message"`
		CreatedAt time.Time `json:"created_at"`
	}

	User struct {
		ID           string    `json:"id"`
		Email        string    `json:"email"`
		Username     string    `json:"username,omitempty"`
		PasswordHash string    `json:"-"`
		CreatedAt    time.Time `json:"created_at"`
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrEmptyCategory   = errors.New("empty category")
	ErrEmptyItem       = errors.New("empty item")
	ErrEmptyName       = errors.New("empty bill name")
	ErrInvalidPeriod   = errors.New("invalid budget period")
	ErrEmptyUser       = errors.New("missing user")
	ErrInvalidEmail    = errors.New("invalid email")
	ErrPasswordTooWeak = errors.New("password must be at least 6 characters")
)

// NewID returns a fresh random record identifier.
func NewID() string {
	return uuid.NewString()
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Period returns the budget period the date falls in.
func (d Date) Period() Period {
	return Period{Year: d.Year(), Month: d.Time.Month()}
}

// AddDays returns the date n days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }
func (d Date) After(o Date) bool  { return d.Time.After(o.Time) }
func (d Date) Equal(o Date) bool  { return d.Time.Equal(o.Time) }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

// UnmarshalJSON accepts YYYY-MM-DD and RFC3339 values.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	*d = DateOf(t)
	return nil
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Sign returns "+" for income and "-" for expense.
func (t TransactionType) Sign() string {
	if t == Income {
		return "+"
	}
	return "-"
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(t.Item) == "" {
		return ErrEmptyItem
	}
	if len(t.Item) > 200 {
		return errors.New("item too long (max 200 characters)")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	return t.Date.Validate()
}

func (b Bill) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	return b.DueDate.Validate()
}

// Overdue reports whether the bill is unpaid and its due date is before today.
func (b Bill) Overdue(today Date) bool {
	return !b.IsPaid && b.DueDate.Before(today)
}

func (b Budget) Validate() error {
	if b.UserID == "" {
		return ErrEmptyUser
	}
	if err := b.Period.Validate(); err != nil {
		return err
	}
	return b.Amount.Validate()
}
