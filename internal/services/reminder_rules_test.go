package services

import (
	"testing"

	"ledger/internal/core"
)

func TestReminderRules_Matches(t *testing.T) {
	today := core.NewDate(2024, 3, 15)
	bill := func(y, m, d int, paid bool) core.Bill {
		return core.Bill{Name: "Rent", Amount: core.ParseAmount("800"), DueDate: core.NewDate(y, m, d), IsPaid: paid}
	}

	tests := []struct {
		name   string
		bill   core.Bill
		window int
		want   ReminderKind
		match  bool
	}{
		{name: "due yesterday - overdue", bill: bill(2024, 3, 14, false), window: 3, want: ReminderOverdue, match: true},
		{name: "due last month - overdue", bill: bill(2024, 2, 1, false), window: 3, want: ReminderOverdue, match: true},
		{name: "due today", bill: bill(2024, 3, 15, false), window: 3, want: ReminderDueToday, match: true},
		{name: "due tomorrow - soon", bill: bill(2024, 3, 16, false), window: 3, want: ReminderDueSoon, match: true},
		{name: "due at window edge - soon", bill: bill(2024, 3, 18, false), window: 3, want: ReminderDueSoon, match: true},
		{name: "due past window - no reminder", bill: bill(2024, 3, 19, false), window: 3, match: false},
		{name: "zero window - tomorrow not soon", bill: bill(2024, 3, 16, false), window: 0, match: false},
		{name: "paid overdue bill - no reminder", bill: bill(2024, 3, 1, true), window: 3, match: false},
		{name: "paid bill due today - no reminder", bill: bill(2024, 3, 15, true), window: 3, match: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, _, ok := matchReminder(tt.bill, today, tt.window)
			if ok != tt.match {
				t.Fatalf("matchReminder() matched = %v, want %v", ok, tt.match)
			}
			if ok && kind != tt.want {
				t.Errorf("matchReminder() kind = %v, want %v", kind, tt.want)
			}
		})
	}
}

func TestReminderRules_Messages(t *testing.T) {
	b := core.Bill{Name: "Water", Amount: core.ParseAmount("30.5"), DueDate: core.NewDate(2024, 3, 20)}

	tests := []struct {
		kind ReminderKind
		want string
	}{
		{ReminderOverdue, "Bill overdue: Water was due 2024-03-20"},
		{ReminderDueToday, "Bill due today: Water (₹30.50)"},
		{ReminderDueSoon, "Bill due soon: Water on 2024-03-20 (₹30.50)"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			rule, err := GetReminderRule(tt.kind)
			if err != nil {
				t.Fatalf("GetReminderRule() error = %v", err)
			}
			if got := rule.Message(b, core.DefaultCurrencySymbol); got != tt.want {
				t.Errorf("Message() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetReminderRule_Unknown(t *testing.T) {
	if _, err := GetReminderRule("weekly_digest"); err == nil {
		t.Error("GetReminderRule() expected error for unknown kind")
	}
}
