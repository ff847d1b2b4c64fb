package store

import (
	"sort"
	"strings"

	"ledger/internal/core"
)

// Match reports whether t passes every constraint of the filter except Limit.
func (f TransactionFilter) Match(t core.Transaction) bool {
	if f.UserID != "" && t.UserID != f.UserID {
		return false
	}
	if !f.From.IsZero() && t.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && t.Date.After(f.To) {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.Category != "" && !containsFold(t.Category, f.Category) {
		return false
	}
	if f.Item != "" && !containsFold(t.Item, f.Item) {
		return false
	}
	return true
}

// Sort orders transactions in place according to the filter's Order.
func (f TransactionFilter) Sort(txs []core.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		a, b := txs[i], txs[j]
		if !a.Date.Equal(b.Date) {
			if f.Order == OldestFirst {
				return a.Date.Before(b.Date)
			}
			return a.Date.After(b.Date)
		}
		if f.Order == OldestFirst {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}

func (f BillFilter) Match(b core.Bill) bool {
	if f.UserID != "" && b.UserID != f.UserID {
		return false
	}
	if !f.From.IsZero() && b.DueDate.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && b.DueDate.After(f.To) {
		return false
	}
	if f.UnpaidOnly && b.IsPaid {
		return false
	}
	return true
}

// SortBills orders bills by due date, then creation time.
func SortBills(bills []core.Bill) {
	sort.SliceStable(bills, func(i, j int) bool {
		if !bills[i].DueDate.Equal(bills[j].DueDate) {
			return bills[i].DueDate.Before(bills[j].DueDate)
		}
		return bills[i].CreatedAt.Before(bills[j].CreatedAt)
	})
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
