package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/auth"
	"ledger/internal/core"
	"ledger/internal/store"
	"ledger/internal/store/memory"
)

func newAccountService(t *testing.T) (*AccountService, *auth.Tokens, *memory.Store) {
	t.Helper()
	st := memory.New()
	opts, _ := testOptions()
	tokens := auth.NewTokens("0123456789abcdef0123", time.Hour)
	return NewAccountService(st, tokens, opts), tokens, st
}

func TestAccountService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, tokens, _ := newAccountService(t)

	sess, err := svc.Authenticate(ctx, auth.ModeRegister, Credentials{Email: " Ana@Example.com ", Password: "secret1", Username: "ana"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", sess.User.Email)
	assert.NotEmpty(t, sess.User.PasswordHash)

	userID, err := tokens.Verify(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, userID)

	login, err := svc.Authenticate(ctx, auth.ModeLogin, Credentials{Email: "ANA@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, login.User.ID)

	_, err = svc.Authenticate(ctx, auth.ModeLogin, Credentials{Email: "ana@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, auth.ModeLogin, Credentials{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, auth.ModeRegister, Credentials{Email: "ana@example.com", Password: "another1"})
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestAccountService_RegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAccountService(t)

	_, err := svc.Register(ctx, Credentials{Email: "ana@example.com", Password: "12345"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, core.ErrPasswordTooWeak)

	_, err = svc.Register(ctx, Credentials{Email: "not-an-email", Password: "secret1"})
	assert.ErrorIs(t, err, core.ErrInvalidEmail)
}

func TestAccountService_Settings(t *testing.T) {
	ctx := context.Background()
	svc, _, st := newAccountService(t)

	sess, err := svc.Register(ctx, Credentials{Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, Credentials{Email: "bo@example.com", Password: "secret1"})
	require.NoError(t, err)
	id := sess.User.ID

	assert.ErrorIs(t, svc.ChangePassword(ctx, id, "wrong", "newsecret"), auth.ErrInvalidCredentials)
	assert.ErrorIs(t, svc.ChangePassword(ctx, id, "secret1", "123"), ErrValidation)
	require.NoError(t, svc.ChangePassword(ctx, id, "secret1", "newsecret"))
	_, err = svc.Login(ctx, Credentials{Email: "ana@example.com", Password: "newsecret"})
	require.NoError(t, err)

	_, err = svc.ChangeEmail(ctx, id, "ana@example.com")
	assert.ErrorIs(t, err, ErrSameEmail)
	_, err = svc.ChangeEmail(ctx, id, "bo@example.com")
	assert.ErrorIs(t, err, store.ErrConflict)
	u, err := svc.ChangeEmail(ctx, id, "ana.new@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ana.new@example.com", u.Email)

	require.NoError(t, st.CreateTransaction(ctx, core.Transaction{
		ID: "t1", UserID: id, Type: core.Expense, Category: "c", Item: "i",
		Amount: core.ParseAmount("1"), Date: core.NewDate(2024, 3, 1),
	}))
	require.NoError(t, st.UpsertBudget(ctx, core.Budget{UserID: id, Period: core.Period{Year: 2024, Month: 3}, Amount: core.ParseAmount("10")}))

	require.NoError(t, svc.ClearData(ctx, id))
	list, err := st.ListTransactions(ctx, store.TransactionFilter{UserID: id})
	require.NoError(t, err)
	assert.Empty(t, list)
	_, err = st.GetBudget(ctx, id, core.Period{Year: 2024, Month: 3})
	assert.NoError(t, err, "clearing data keeps budgets")

	require.NoError(t, svc.DeleteAccount(ctx, id))
	_, err = svc.User(ctx, id)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.GetBudget(ctx, id, core.Period{Year: 2024, Month: 3})
	assert.ErrorIs(t, err, store.ErrNotFound)
}
