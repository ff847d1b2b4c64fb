// Package storetest holds the behavioural suite every store.Store implementation must pass.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/core"
	"ledger/internal/store"
)

// Run executes the suite. newStore must return an empty store per call.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("TransactionCRUD", func(t *testing.T) { testTransactionCRUD(t, newStore(t)) })
	t.Run("TransactionFilters", func(t *testing.T) { testTransactionFilters(t, newStore(t)) })
	t.Run("Bills", func(t *testing.T) { testBills(t, newStore(t)) })
	t.Run("BudgetUpsert", func(t *testing.T) { testBudgetUpsert(t, newStore(t)) })
	t.Run("Notifications", func(t *testing.T) { testNotifications(t, newStore(t)) })
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("ClearAndDelete", func(t *testing.T) { testClearAndDelete(t, newStore(t)) })
}

var base = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func mkUser(t *testing.T, s store.Store, id string) {
	t.Helper()
	require.NoError(t, s.CreateUser(context.Background(), core.User{
		ID: id, Email: id + "@example.com", PasswordHash: "x", CreatedAt: base,
	}))
}

func mkTx(id, user string, typ core.TransactionType, cents int64, day int, created time.Duration) core.Transaction {
	return core.Transaction{
		ID:        id,
		UserID:    user,
		Type:      typ,
		Category:  "Food",
		Item:      "item " + id,
		Amount:    core.Cents(cents),
		Date:      core.NewDate(2025, 3, day),
		CreatedAt: base.Add(created),
	}
}

func txIDs(txs []core.Transaction) []string {
	out := make([]string, len(txs))
	for i, t := range txs {
		out[i] = t.ID
	}
	return out
}

func testTransactionCRUD(t *testing.T, s store.Store) {
	ctx := context.Background()
	mkUser(t, s, "u1")
	mkUser(t, s, "u2")

	tx := mkTx("t1", "u1", core.Expense, 1250, 3, 0)
	require.NoError(t, s.CreateTransaction(ctx, tx))

	got, err := s.GetTransaction(ctx, "u1", "t1")
	require.NoError(t, err)
	assert.Equal(t, int64(1250), got.Amount.Cents)
	assert.Equal(t, "2025-03-03", got.Date.String())
	assert.Equal(t, core.Expense, got.Type)

	_, err = s.GetTransaction(ctx, "u2", "t1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	tx.Item = "renamed"
	tx.Amount = core.Cents(999)
	require.NoError(t, s.UpdateTransaction(ctx, tx))
	got, err = s.GetTransaction(ctx, "u1", "t1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Item)
	assert.Equal(t, int64(999), got.Amount.Cents)

	other := tx
	other.UserID = "u2"
	assert.ErrorIs(t, s.UpdateTransaction(ctx, other), store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteTransaction(ctx, "u2", "t1"), store.ErrNotFound)

	require.NoError(t, s.DeleteTransaction(ctx, "u1", "t1"))
	_, err = s.GetTransaction(ctx, "u1", "t1")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteTransaction(ctx, "u1", "t1"), store.ErrNotFound)
}

func testTransactionFilters(t *testing.T, s store.Store) {
	ctx := context.Background()
	mkUser(t, s, "u1")
	mkUser(t, s, "u2")

	rent := mkTx("rent", "u1", core.Expense, 80000, 1, 0)
	rent.Category = "Housing"
	rent.Item = "Monthly Rent"
	salary := mkTx("salary", "u1", core.Income, 300000, 1, time.Minute)
	salary.Category = "Salary"
	coffee := mkTx("coffee", "u1", core.Expense, 350, 15, 0)
	april := mkTx("april", "u1", core.Expense, 100, 1, 0)
	april.Date = core.NewDate(2025, 4, 1)
	foreign := mkTx("foreign", "u2", core.Expense, 100, 2, 0)

	for _, tx := range []core.Transaction{rent, salary, coffee, april, foreign} {
		require.NoError(t, s.CreateTransaction(ctx, tx))
	}

	all, err := s.ListTransactions(ctx, store.TransactionFilter{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"april", "coffee", "salary", "rent"}, txIDs(all))

	march, err := s.ListTransactions(ctx, store.ForPeriod("u1", core.NewDate(2025, 3, 1).Period()))
	require.NoError(t, err)
	assert.Equal(t, []string{"rent", "salary", "coffee"}, txIDs(march))

	incomes, err := s.ListTransactions(ctx, store.TransactionFilter{UserID: "u1", Type: core.Income})
	require.NoError(t, err)
	assert.Equal(t, []string{"salary"}, txIDs(incomes))

	byCategory, err := s.ListTransactions(ctx, store.TransactionFilter{UserID: "u1", Category: "hous"})
	require.NoError(t, err)
	assert.Equal(t, []string{"rent"}, txIDs(byCategory))

	byItem, err := s.ListTransactions(ctx, store.TransactionFilter{UserID: "u1", Item: "RENT"})
	require.NoError(t, err)
	assert.Equal(t, []string{"rent"}, txIDs(byItem))

	latest, err := s.ListTransactions(ctx, store.TransactionFilter{UserID: "u1", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"april", "coffee"}, txIDs(latest))

	none, err := s.ListTransactions(ctx, store.TransactionFilter{UserID: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testBills(t *testing.T, s store.Store) {
	ctx := context.Background()
	mkUser(t, s, "u1")
	mkUser(t, s, "u2")

	bills := []core.Bill{
		{ID: "b2", UserID: "u1", Name: "Power", Amount: core.Cents(4000), DueDate: core.NewDate(2025, 3, 20), CreatedAt: base},
		{ID: "b1", UserID: "u1", Name: "Water", Amount: core.Cents(2000), DueDate: core.NewDate(2025, 3, 5), CreatedAt: base},
		{ID: "b3", UserID: "u2", Name: "Phone", Amount: core.Cents(1500), DueDate: core.NewDate(2025, 3, 1), CreatedAt: base},
	}
	for _, b := range bills {
		require.NoError(t, s.CreateBill(ctx, b))
	}

	list, err := s.ListBills(ctx, store.BillFilter{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b1", list[0].ID)
	assert.Equal(t, "b2", list[1].ID)

	require.NoError(t, s.MarkBillPaid(ctx, "u1", "b1"))
	assert.ErrorIs(t, s.MarkBillPaid(ctx, "u2", "b1"), store.ErrNotFound)

	got, err := s.GetBill(ctx, "u1", "b1")
	require.NoError(t, err)
	assert.True(t, got.IsPaid)

	unpaid, err := s.ListBills(ctx, store.BillFilter{UserID: "u1", UnpaidOnly: true})
	require.NoError(t, err)
	require.Len(t, unpaid, 1)
	assert.Equal(t, "b2", unpaid[0].ID)

	due, err := s.ListUnpaidDueBefore(ctx, core.NewDate(2025, 3, 10))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "b3", due[0].ID)

	updated := bills[0]
	updated.Name = "Electricity"
	require.NoError(t, s.UpdateBill(ctx, updated))
	got, err = s.GetBill(ctx, "u1", "b2")
	require.NoError(t, err)
	assert.Equal(t, "Electricity", got.Name)

	require.NoError(t, s.DeleteBill(ctx, "u1", "b2"))
	_, err = s.GetBill(ctx, "u1", "b2")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testBudgetUpsert(t *testing.T, s store.Store) {
	ctx := context.Background()
	mkUser(t, s, "u1")
	p := core.Period{Year: 2025, Month: time.March}

	_, err := s.GetBudget(ctx, "u1", p)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.UpsertBudget(ctx, core.Budget{UserID: "u1", Period: p, Amount: core.Cents(100000), UpdatedAt: base}))
	require.NoError(t, s.UpsertBudget(ctx, core.Budget{UserID: "u1", Period: p, Amount: core.Cents(150000), UpdatedAt: base.Add(time.Hour)}))

	got, err := s.GetBudget(ctx, "u1", p)
	require.NoError(t, err)
	assert.Equal(t, int64(150000), got.Amount.Cents)
	assert.Equal(t, p, got.Period)

	_, err = s.GetBudget(ctx, "u1", p.Next())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testNotifications(t *testing.T, s store.Store) {
	ctx := context.Background()
	mkUser(t, s, "u1")

	for i, msg := range []string{"first", "second", "third"} {
		require.NoError(t, s.AddNotification(ctx, core.Notification{
			ID: msg, UserID: "u1", Message: msg, CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	list, err := s.ListNotifications(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "third", list[0].Message)
	assert.Equal(t, "first", list[2].Message)

	limited, err := s.ListNotifications(ctx, "u1", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "third", limited[0].Message)

	dup := core.Notification{ID: "second", UserID: "u1", Message: "again", CreatedAt: base}
	assert.ErrorIs(t, s.AddNotification(ctx, dup), store.ErrConflict)

	assert.ErrorIs(t, s.DeleteNotification(ctx, "u2", "second"), store.ErrNotFound)
	require.NoError(t, s.DeleteNotification(ctx, "u1", "second"))
	list, err = s.ListNotifications(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	require.NoError(t, s.AddNotification(ctx, dup), "a deleted ID can be reused")
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()
	mkUser(t, s, "u1")
	mkUser(t, s, "u2")

	err := s.CreateUser(ctx, core.User{ID: "u3", Email: "u1@example.com", PasswordHash: "x", CreatedAt: base})
	assert.ErrorIs(t, err, store.ErrConflict)

	u, err := s.GetUserByEmail(ctx, "u1@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	_, err = s.GetUserByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, s.UpdateEmail(ctx, "u1", "u2@example.com"), store.ErrConflict)
	require.NoError(t, s.UpdateEmail(ctx, "u1", "new@example.com"))
	require.NoError(t, s.UpdatePasswordHash(ctx, "u1", "hash2"))

	u, err = s.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", u.Email)
	assert.Equal(t, "hash2", u.PasswordHash)

	assert.ErrorIs(t, s.UpdatePasswordHash(ctx, "ghost", "h"), store.ErrNotFound)
}

func testClearAndDelete(t *testing.T, s store.Store) {
	ctx := context.Background()
	mkUser(t, s, "u1")
	mkUser(t, s, "u2")
	p := core.Period{Year: 2025, Month: time.March}

	require.NoError(t, s.CreateTransaction(ctx, mkTx("t1", "u1", core.Expense, 100, 1, 0)))
	require.NoError(t, s.CreateTransaction(ctx, mkTx("t2", "u2", core.Expense, 100, 1, 0)))
	require.NoError(t, s.CreateBill(ctx, core.Bill{ID: "b1", UserID: "u1", Name: "Rent", Amount: core.Cents(1), DueDate: core.NewDate(2025, 3, 1), CreatedAt: base}))
	require.NoError(t, s.AddNotification(ctx, core.Notification{ID: "n1", UserID: "u1", Message: "m", CreatedAt: base}))
	require.NoError(t, s.UpsertBudget(ctx, core.Budget{UserID: "u1", Period: p, Amount: core.Cents(500), UpdatedAt: base}))

	require.NoError(t, s.ClearUserData(ctx, "u1"))

	txs, err := s.ListTransactions(ctx, store.TransactionFilter{UserID: "u1"})
	require.NoError(t, err)
	assert.Empty(t, txs)
	bills, err := s.ListBills(ctx, store.BillFilter{UserID: "u1"})
	require.NoError(t, err)
	assert.Empty(t, bills)
	notes, err := s.ListNotifications(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Empty(t, notes)

	_, err = s.GetBudget(ctx, "u1", p)
	assert.NoError(t, err, "budgets survive a data clear")

	others, err := s.ListTransactions(ctx, store.TransactionFilter{UserID: "u2"})
	require.NoError(t, err)
	assert.Len(t, others, 1)

	require.NoError(t, s.DeleteUser(ctx, "u1"))
	_, err = s.GetUser(ctx, "u1")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetBudget(ctx, "u1", p)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteUser(ctx, "u1"), store.ErrNotFound)
}
