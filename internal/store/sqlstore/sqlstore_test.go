package sqlstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/core"
	"ledger/internal/store"
	"ledger/internal/store/storetest"
)

func newSQLiteStore(t *testing.T) store.Store {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, newSQLiteStore)
}

// Set LEDGER_TEST_DATABASE_URL to a disposable database to run the suite on postgres.
func TestPostgresStore(t *testing.T) {
	url := os.Getenv("LEDGER_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("LEDGER_TEST_DATABASE_URL not set")
	}
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := NewPostgres(url)
		require.NoError(t, err)
		_, err = s.db.Exec(`TRUNCATE notifications, budgets, bills, transactions, users`)
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestSQLiteStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ledger.db")
	ctx := context.Background()

	s, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.CreateUser(ctx, core.User{ID: "u1", Email: "a@example.com", PasswordHash: "h"}))
	require.NoError(t, s.Close())

	s, err = NewSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	u, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", u.Email)
}

func TestSQLiteStore_LikeWildcardsAreLiteral(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, core.User{ID: "u1", Email: "a@example.com", PasswordHash: "h"}))

	for id, item := range map[string]string{"a": "100% cotton", "b": "1000 cotton"} {
		require.NoError(t, s.CreateTransaction(ctx, core.Transaction{
			ID: id, UserID: "u1", Type: core.Expense, Category: "Clothes", Item: item,
			Amount: core.Cents(100), Date: core.NewDate(2025, 3, 1),
		}))
	}

	txs, err := s.ListTransactions(ctx, store.TransactionFilter{UserID: "u1", Item: "0%"})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "a", txs[0].ID)
}

func TestDialect_Rebind(t *testing.T) {
	q := "SELECT * FROM t WHERE a = ? AND b = ? LIMIT ?"
	assert.Equal(t, q, sqliteDialect.rebind(q))
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2 LIMIT $3", postgresDialect.rebind(q))
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, `%groc%`, likePattern("GROC"))
	assert.Equal(t, `%50\%\_off%`, likePattern("50%_off"))
}
