// Package engine derives a period's financial state from transaction and bill
// records. Every function here is pure: no I/O, no errors, no shared state.
package engine

import "ledger/internal/core"

// DailyStat is the per-day aggregate used for calendar rendering.
type DailyStat struct {
	Day        int        `json:"day"`
	Income     core.Money `json:"income_total"`
	Expense    core.Money `json:"expense_total"`
	HasBillDue bool       `json:"has_bill_due"`
}

// Totals is the income/expense sum over a set of transactions.
type Totals struct {
	Income  core.Money `json:"total_income"`
	Expense core.Money `json:"total_expense"`
}

// Balance is income minus expense.
func (t Totals) Balance() core.Money {
	return t.Income.Sub(t.Expense)
}

// AggregateByDay bins transactions and bills by their own day of month.
//
// Only days with at least one transaction or bill appear in the result.
// Transactions with a NaN amount are skipped entirely. Bill amounts are never
// summed: a bill only sets HasBillDue. Callers are expected to pass records
// already restricted to one month; anything else is still binned by day.
func AggregateByDay(transactions []core.Transaction, bills []core.Bill) map[int]DailyStat {
	days := make(map[int]DailyStat)

	for _, t := range transactions {
		if t.Amount.IsNaN() || t.Date.IsZero() {
			continue
		}
		day := t.Date.Day()
		stat, ok := days[day]
		if !ok {
			stat = DailyStat{Day: day}
		}
		if t.Type == core.Income {
			stat.Income = stat.Income.Add(t.Amount)
		} else {
			stat.Expense = stat.Expense.Add(t.Amount)
		}
		days[day] = stat
	}

	for _, b := range bills {
		if b.DueDate.IsZero() {
			continue
		}
		day := b.DueDate.Day()
		stat, ok := days[day]
		if !ok {
			stat = DailyStat{Day: day}
		}
		stat.HasBillDue = true
		days[day] = stat
	}

	return days
}

// AggregateTotals sums amounts by type over all given transactions.
func AggregateTotals(transactions []core.Transaction) Totals {
	var totals Totals
	for _, t := range transactions {
		if t.Type == core.Income {
			totals.Income = totals.Income.Add(t.Amount)
		} else {
			totals.Expense = totals.Expense.Add(t.Amount)
		}
	}
	return totals
}
