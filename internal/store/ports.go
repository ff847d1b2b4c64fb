// Package store defines the persistence ports of the ledger. Every method is
// scoped by user ID: a record owned by someone else is reported as ErrNotFound.
package store

import (
	"context"
	"errors"

	"ledger/internal/core"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// Order selects how transactions are sorted.
type Order int

const (
	// NewestFirst sorts by date descending, then creation time descending.
	NewestFirst Order = iota
	// OldestFirst sorts by date ascending, then creation time ascending.
	OldestFirst
)

// TransactionFilter narrows a transaction listing. Zero values mean "no constraint".
type TransactionFilter struct {
	UserID   string
	From     core.Date // inclusive
	To       core.Date // inclusive
	Type     core.TransactionType
	Category string // case-insensitive substring
	Item     string // case-insensitive substring
	Limit    int
	Order    Order
}

// ForPeriod returns a filter covering one month for a user.
func ForPeriod(userID string, p core.Period) TransactionFilter {
	return TransactionFilter{UserID: userID, From: p.Start(), To: p.End(), Order: OldestFirst}
}

// BillFilter narrows a bill listing on due date. Results are ordered by due date ascending.
type BillFilter struct {
	UserID     string
	From       core.Date
	To         core.Date
	UnpaidOnly bool
}

type TransactionStore interface {
	CreateTransaction(ctx context.Context, t core.Transaction) error
	UpdateTransaction(ctx context.Context, t core.Transaction) error
	DeleteTransaction(ctx context.Context, userID, id string) error
	GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error)
	ListTransactions(ctx context.Context, f TransactionFilter) ([]core.Transaction, error)
}

type BillStore interface {
	CreateBill(ctx context.Context, b core.Bill) error
	UpdateBill(ctx context.Context, b core.Bill) error
	DeleteBill(ctx context.Context, userID, id string) error
	GetBill(ctx context.Context, userID, id string) (core.Bill, error)
	MarkBillPaid(ctx context.Context, userID, id string) error
	ListBills(ctx context.Context, f BillFilter) ([]core.Bill, error)
	// ListUnpaidDueBefore returns unpaid bills of every user due on or before the date.
	ListUnpaidDueBefore(ctx context.Context, date core.Date) ([]core.Bill, error)
}

type BudgetStore interface {
	// UpsertBudget stores the budget for (UserID, Period). The last write wins.
	UpsertBudget(ctx context.Context, b core.Budget) error
	GetBudget(ctx context.Context, userID string, p core.Period) (core.Budget, error)
}

type NotificationStore interface {
	AddNotification(ctx context.Context, n core.Notification) error
	// ListNotifications returns newest first. A limit <= 0 returns all.
	ListNotifications(ctx context.Context, userID string, limit int) ([]core.Notification, error)
	DeleteNotification(ctx context.Context, userID, id string) error
}

type UserStore interface {
	CreateUser(ctx context.Context, u core.User) error
	GetUser(ctx context.Context, id string) (core.User, error)
	GetUserByEmail(ctx context.Context, email string) (core.User, error)
	UpdateEmail(ctx context.Context, id, email string) error
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	// DeleteUser removes the user and all of their data, budgets included.
	DeleteUser(ctx context.Context, id string) error
}

// Store is the full persistence surface used by the services.
type Store interface {
	TransactionStore
	BillStore
	BudgetStore
	NotificationStore
	UserStore

	// ClearUserData deletes transactions, bills and notifications. Budgets are kept.
	ClearUserData(ctx context.Context, userID string) error
	Ping(ctx context.Context) error
	Close() error
}
