package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateJSON(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"2025-03-05"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.Year() != 2025 || d.Month() != 3 || d.Day() != 5 {
		t.Fatalf("unexpected date %v", d)
	}
	if err := json.Unmarshal([]byte(`"2025-03-05T22:10:00Z"`), &d); err != nil {
		t.Fatalf("unmarshal rfc3339: %v", err)
	}
	if d.String() != "2025-03-05" {
		t.Fatalf("expected time of day dropped, got %s", d)
	}
	if err := json.Unmarshal([]byte(`"yesterday"`), &d); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Type:     Expense,
		Category: "Food",
		Item:     "Groceries",
		Amount:   Cents(1200),
		Date:     NewDate(2025, 1, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	tests := []struct {
		name string
		mut  func(*Transaction)
		want error
	}{
		{"bad type", func(tx *Transaction) { tx.Type = "transfer" }, ErrInvalidType},
		{"empty category", func(tx *Transaction) { tx.Category = "  " }, ErrEmptyCategory},
		{"empty item", func(tx *Transaction) { tx.Item = "" }, ErrEmptyItem},
		{"zero amount", func(tx *Transaction) { tx.Amount = Cents(0) }, ErrInvalidAmount},
		{"nan amount", func(tx *Transaction) { tx.Amount = NaN() }, ErrInvalidAmount},
		{"zero date", func(tx *Transaction) { tx.Date = Date{} }, ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := good
			tt.mut(&tx)
			if err := tx.Validate(); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestBillOverdue(t *testing.T) {
	today := NewDate(2025, 6, 15)
	cases := []struct {
		name string
		bill Bill
		want bool
	}{
		{"due yesterday unpaid", Bill{DueDate: NewDate(2025, 6, 14)}, true},
		{"due yesterday paid", Bill{DueDate: NewDate(2025, 6, 14), IsPaid: true}, false},
		{"due today", Bill{DueDate: today}, false},
		{"due tomorrow", Bill{DueDate: NewDate(2025, 6, 16)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.bill.Overdue(today); got != tc.want {
				t.Fatalf("Overdue() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBudgetValidate(t *testing.T) {
	b := Budget{UserID: "u1", Period: Period{Year: 2025, Month: time.March}, Amount: Cents(100000)}
	if err := b.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	b.Amount = Cents(0)
	if err := b.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	b.Amount = Cents(1)
	b.Period = Period{}
	if err := b.Validate(); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}
