// This file implements the Strategy Pattern for bill reminders. Each reminder
// kind (overdue, due today, due soon) has a rule deciding whether an unpaid
// bill matches and how the reminder reads.

package services

import (
	"fmt"

	"ledger/internal/core"
)

type ReminderKind string

const (
	ReminderOverdue  ReminderKind = "overdue"
	ReminderDueToday ReminderKind = "due_today"
	ReminderDueSoon  ReminderKind = "due_soon"
)

// ReminderRule is the strategy interface for one reminder kind.
type ReminderRule interface {
	// Matches reports whether an unpaid bill should be reminded today.
	// window is the number of days ahead considered "soon".
	Matches(b core.Bill, today core.Date, window int) bool
	// Message renders the notification text.
	Message(b core.Bill, currency string) string
}

// OverdueRule matches bills whose due date has passed.
type OverdueRule struct{}

func (OverdueRule) Matches(b core.Bill, today core.Date, _ int) bool {
	return b.Overdue(today)
}

func (OverdueRule) Message(b core.Bill, _ string) string {
	return fmt.Sprintf("Bill overdue: %s was due %s", b.Name, b.DueDate)
}

// DueTodayRule matches bills due today.
type DueTodayRule struct{}

func (DueTodayRule) Matches(b core.Bill, today core.Date, _ int) bool {
	return !b.IsPaid && b.DueDate.Equal(today)
}

func (DueTodayRule) Message(b core.Bill, currency string) string {
	return fmt.Sprintf("Bill due today: %s (%s)", b.Name, b.Amount.Format(currency))
}

// DueSoonRule matches bills due after today and within the window.
type DueSoonRule struct{}

func (DueSoonRule) Matches(b core.Bill, today core.Date, window int) bool {
	if b.IsPaid || window <= 0 {
		return false
	}
	return b.DueDate.After(today) && !b.DueDate.After(today.AddDays(window))
}

func (DueSoonRule) Message(b core.Bill, currency string) string {
	return fmt.Sprintf("Bill due soon: %s on %s (%s)", b.Name, b.DueDate, b.Amount.Format(currency))
}

// reminderRules maps reminder kinds to their rules; reminderOrder fixes the
// evaluation order so a bill gets at most one reminder per run.
var (
	reminderRules = map[ReminderKind]ReminderRule{
		ReminderOverdue:  OverdueRule{},
		ReminderDueToday: DueTodayRule{},
		ReminderDueSoon:  DueSoonRule{},
	}
	reminderOrder = []ReminderKind{ReminderOverdue, ReminderDueToday, ReminderDueSoon}
)

// GetReminderRule returns the rule for a kind.
func GetReminderRule(kind ReminderKind) (ReminderRule, error) {
	rule, ok := reminderRules[kind]
	if !ok {
		return nil, fmt.Errorf("unknown reminder kind: %s", kind)
	}
	return rule, nil
}

// RegisterReminderRule adds or replaces a rule. New kinds are evaluated after the built-in ones.
func RegisterReminderRule(kind ReminderKind, rule ReminderRule) {
	if _, exists := reminderRules[kind]; !exists {
		reminderOrder = append(reminderOrder, kind)
	}
	reminderRules[kind] = rule
}

// matchReminder returns the first rule matching the bill.
func matchReminder(b core.Bill, today core.Date, window int) (ReminderKind, ReminderRule, bool) {
	for _, kind := range reminderOrder {
		rule := reminderRules[kind]
		if rule.Matches(b, today, window) {
			return kind, rule, true
		}
	}
	return "", nil, false
}
